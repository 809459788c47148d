// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	// RoleStaff marks warehouse and crew accounts.
	RoleStaff = "staff"
	// RoleAdmin marks back-office accounts.
	RoleAdmin = "admin"
)

// Identity represents the authenticated caller.
// This interface abstracts identity extraction from the web framework,
// allowing handlers to access user information without depending on Gin.
type Identity interface {
	// UserID returns the caller's customer record ID (or staff account ID).
	UserID() string
	// HasRole checks if the caller has a specific role.
	HasRole(role string) bool
	// IsStaff reports whether the caller may act on any customer's records.
	IsStaff() bool
}

type identity struct {
	userID string
	roles  []string
}

func (i *identity) UserID() string {
	return i.userID
}

func (i *identity) HasRole(role string) bool {
	for _, r := range i.roles {
		if r == role {
			return true
		}
	}
	return false
}

func (i *identity) IsStaff() bool {
	return i.HasRole(RoleStaff) || i.HasRole(RoleAdmin)
}

// GetIdentity extracts the Identity from a Gin context.
// The returned identity has an empty UserID when the request carried no
// valid token.
func GetIdentity(c *gin.Context) Identity {
	userID, userOK := c.Get(ContextUserIDKey)
	roles, rolesOK := c.Get(ContextRolesKey)

	if !userOK {
		return &identity{}
	}

	uid, ok := userID.(string)
	if !ok || uid == "" {
		return &identity{}
	}

	var roleList []string
	if rolesOK {
		roleList, _ = roles.([]string)
	}

	return &identity{userID: uid, roles: roleList}
}

// MustGetIdentity extracts the Identity from a Gin context.
// If the user is not authenticated, it aborts with 401 Unauthorized and returns nil.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if id.UserID() == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Kind: "unauthorized", Error: "unauthorized"})
		return nil
	}
	return id
}
