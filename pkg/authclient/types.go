// Package authclient is the client side of the inventory auth API: an HTTP
// gateway plus a Store that mirrors the outcome of every call into in-memory
// state and a durable Mirror.
package authclient

import (
	"context"
	"time"
)

// Roles understood by the auth API.
const (
	RoleStaff      = "staff"
	RoleManager    = "manager"
	RoleAdmin      = "admin"
	RoleUnassigned = "unassigned"
)

// User is the account record returned by the auth API.
type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	ProfilePic string    `json:"profilePic,omitempty"`
	Token      string    `json:"token,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// SignupRequest carries the fields of a new account. Role may be empty.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// Gateway is the set of network operations the Store dispatches.
type Gateway interface {
	Signup(ctx context.Context, req SignupRequest) (*User, error)
	Login(ctx context.Context, email, password string) (*User, error)
	Logout(ctx context.Context, token string) error
	UpdateProfile(ctx context.Context, token, profilePic string) (*User, error)
	ListUsers(ctx context.Context, token, role string) ([]User, error)
	RemoveUser(ctx context.Context, token, userID string) error
}
