package ports

import (
	"context"
	"time"

	"github.com/stockroom/inventory-system/internal/core/domain"
)

// UserRepository is the credential store: durable user records keyed by id and email.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// ListByRole returns every user holding role, oldest first. No match is not an error.
	ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error)
	UpdateProfilePic(ctx context.Context, id, profilePic string, at time.Time) (*domain.User, error)
	UpdateRole(ctx context.Context, id string, role domain.Role, at time.Time) (*domain.User, error)
	// SetToken stores the last issued session token; an empty token clears it.
	SetToken(ctx context.Context, id, token string) error
	Delete(ctx context.Context, id string) error
}
