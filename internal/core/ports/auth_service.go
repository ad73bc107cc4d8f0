package ports

import (
	"context"
	"time"

	"github.com/stockroom/inventory-system/internal/core/domain"
)

// SignupInput carries the identity fields and password of a new account.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// Claims is the verified content of a session token.
type Claims struct {
	UserID    string
	Role      domain.Role
	TokenID   string
	ExpiresAt time.Time
}

// TokenVerifier validates a bearer token against signature, expiry and the session registry.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

// AuthService is the auth gateway use-case surface.
type AuthService interface {
	TokenVerifier

	Signup(ctx context.Context, in SignupInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
	Logout(ctx context.Context, userID string) error
	Me(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID, profilePic string) (*domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error)
	AssignRole(ctx context.Context, actorID, targetID string, role domain.Role) (*domain.User, error)
	RemoveUser(ctx context.Context, actorID, targetID string) error
}
