// Package model provides data models for the blood-bank admin backend.
package model

// Admin roles accepted by the admin API.
const (
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SuperAdmin"
)

// User is the authenticated principal taken from the request token
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
}

// IsAdmin returns true if user may perform administrative actions
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

// Actor returns the audit identity of the user. The username is used when no id is set.
func (u *User) Actor() Actor {
	id := u.ID
	if id == "" {
		id = u.Username
	}
	return Actor{ID: id, Role: u.Role}
}
