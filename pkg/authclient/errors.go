package authclient

import (
	"errors"
	"fmt"
)

// ErrInFlight is returned when an operation is dispatched while the same
// operation is still waiting for its response.
var ErrInFlight = errors.New("authclient: operation already in flight")

// APIError is a non-2xx response from the auth API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("authclient: status %d", e.Status)
	}
	return fmt.Sprintf("authclient: status %d: %s", e.Status, e.Message)
}

// OpError is the failure of a Store operation. Message is the text to show
// the user: the server's error text when present, otherwise a fallback for Op.
type OpError struct {
	Op      string
	Message string
}

func (e *OpError) Error() string {
	return e.Message
}

// Operation names used in OpError.Op.
const (
	OpSignup        = "signup"
	OpLogin         = "login"
	OpLogout        = "logout"
	OpUpdateProfile = "updateProfile"
	OpStaffUsers    = "staffUsers"
	OpManagerUsers  = "managerUsers"
	OpAdminUsers    = "adminUsers"
	OpRemoveUser    = "removeUser"
)

// Message shown when an update is attempted with no stored session.
const msgNotAuthenticated = "User not authenticated. Please log in again."

var fallbackMessages = map[string]string{
	OpSignup:        "Signup failed",
	OpLogin:         "Login failed",
	OpUpdateProfile: "Failed to update profile",
	OpStaffUsers:    "Failed to get staff user",
	OpManagerUsers:  "Failed to get manager user",
	OpAdminUsers:    "Failed to get admin user",
	OpRemoveUser:    "Failed to delete user",
}

// opError converts a gateway failure into the message-only form kept by the Store.
func opError(op string, err error) *OpError {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return &OpError{Op: op, Message: apiErr.Message}
	}
	return &OpError{Op: op, Message: fallbackMessages[op]}
}
