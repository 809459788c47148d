package domain

import "time"

// MinimumBoxInches is assumed for any dimension a record leaves blank.
const MinimumBoxInches = 12.0

const cubicInchesPerCubicFoot = 1728.0

// ItemStatus tracks where an item physically is.
type ItemStatus string

const (
	ItemAtHome    ItemStatus = "at_home"
	ItemInTransit ItemStatus = "in_transit"
	ItemInStorage ItemStatus = "in_storage"
)

// Item is a stored belonging or box.
type Item struct {
	ID                  string     `json:"id"`
	CustomerID          string     `json:"customerId"`
	Name                string     `json:"name"`
	LengthIn            float64    `json:"lengthIn"`
	WidthIn             float64    `json:"widthIn"`
	HeightIn            float64    `json:"heightIn"`
	WeightLbs           float64    `json:"weightLbs"`
	CubicFeet           float64    `json:"cubicFeet"`
	EstimatedValueCents int64      `json:"estimatedValueCents"`
	Category            string     `json:"category,omitempty"`
	ContainerType       string     `json:"containerType,omitempty"`
	Status              ItemStatus `json:"status"`
	PhotoURLs           []string   `json:"photoUrls"`
	ReturnVisitID       string     `json:"returnVisitId,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
}

// CubicFeet converts inch dimensions to cubic feet.
func CubicFeet(lengthIn, widthIn, heightIn float64) float64 {
	return lengthIn * widthIn * heightIn / cubicInchesPerCubicFoot
}

// Recompute derives CubicFeet from the dimensions. Any stored value is ignored.
func (i *Item) Recompute() {
	i.CubicFeet = CubicFeet(i.LengthIn, i.WidthIn, i.HeightIn)
}

// Deletable reports whether the item may be removed.
func (i *Item) Deletable() bool {
	return i.Status != ItemInStorage
}
