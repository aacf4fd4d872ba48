// Package model defines domain entities for the application.
package model

import "time"

// Role identifies the authorization level carried in a session token.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// IsValid checks if the role is a known value.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User represents an account that owns notes.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize
	Memo         *string   `json:"memo,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserPatch lists the optional fields a profile update may supply.
// A nil field leaves the stored value untouched.
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
	Memo     *string
	IsActive *bool
}

// IsEmpty returns true if the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Password == nil && p.Memo == nil && p.IsActive == nil
}

// Apply merges the patch into the user, field by field.
// Password is intentionally excluded: the caller must hash it and set
// PasswordHash itself.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Memo != nil {
		u.Memo = p.Memo
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
}

// Identity is the authenticated caller derived from a validated token.
type Identity struct {
	ID    string
	Email string
	Role  Role
}

// IsAdmin returns true if the identity carries the admin role.
func (i *Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
