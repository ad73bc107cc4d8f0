package domain

import (
	"strings"
	"time"
)

// Role controls which role-scoped listing returns a user and what the user may do.
type Role string

const (
	RoleStaff      Role = "staff"
	RoleManager    Role = "manager"
	RoleAdmin      Role = "admin"
	RoleUnassigned Role = "unassigned"
)

// ParseRole normalizes s into a Role. An empty string maps to RoleUnassigned.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if r == "" {
		return RoleUnassigned, nil
	}
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStaff, RoleManager, RoleAdmin, RoleUnassigned:
		return true
	}
	return false
}

// SelfAssignable reports whether a user may pick r for themselves at signup.
func (r Role) SelfAssignable() bool {
	return r.Valid() && r != RoleAdmin
}

func (r Role) String() string { return string(r) }

// User is an account in the credential store.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	ProfilePic   string    `json:"profilePic,omitempty"`
	Token        string    `json:"token,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Public returns a copy of u without its session token, safe to expose to other users.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Token = ""
	return &clone
}

// NormalizeEmail lowercases and trims an identity email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
