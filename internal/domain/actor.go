package domain

// Actor is whoever triggers an operation: a customer acting on their own
// records, or staff acting on anyone's.
type Actor struct {
	ID    string
	Staff bool
}

// Owns reports whether the actor may see records belonging to customerID.
// Records the actor cannot see are reported as not found.
func (a Actor) Owns(customerID string) bool {
	return a.Staff || (a.ID != "" && a.ID == customerID)
}
