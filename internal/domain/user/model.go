package user

import (
	"errors"
	"strings"

	"kitaportal/internal/domain/child"
)

// Role constants. Every session carries exactly one of these.
const (
	RoleParent = "parent"
	RoleAdmin  = "admin"
)

// User is the backend account identity as consumed by the portal.
// The portal never sees password material; authentication happens in
// the backend and the portal only holds the resulting session.
type User struct {
	ID             uint          `json:"id"`
	Email          string        `json:"email"`
	Role           string        `json:"role"`
	FirstName      string        `json:"first_name"`
	LastName       string        `json:"last_name"`
	Phone          string        `json:"phone"`
	ProfilePicture string        `json:"profile_picture"`
	Children       []child.Child `json:"children,omitempty"`
}

// ValidRole reports whether s is a known role.
func ValidRole(s string) bool {
	return s == RoleParent || s == RoleAdmin
}

// Validate checks the user's invariants.
// POST: returns nil if valid, error describing the first violation otherwise
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("user email cannot be empty")
	}
	if !strings.Contains(u.Email, "@") {
		return errors.New("user email must contain @")
	}
	if !ValidRole(u.Role) {
		return errors.New("user role must be 'parent' or 'admin'")
	}
	return nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayName returns the name shown in page headers: first/last name
// when present, otherwise the email address.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}
