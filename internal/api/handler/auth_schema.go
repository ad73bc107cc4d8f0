package handler

import "github.com/stockroom/inventory-system/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Requests ---

type signupRequest struct {
	Name     string `json:"name"     validate:"required,notblank,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
	Role     string `json:"role"     validate:"omitempty,oneof=staff manager unassigned admin"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	ProfilePic string `json:"profilePic" validate:"required"`
}

type assignRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=staff manager admin unassigned"`
}

// --- Responses ---

type signupResponse struct {
	SavedUser *domain.User `json:"savedUser"`
}

type userResponse struct {
	User *domain.User `json:"user"`
}

type updatedUserResponse struct {
	UpdatedUser *domain.User `json:"updatedUser"`
}
