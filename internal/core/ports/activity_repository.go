package ports

import (
	"context"

	"github.com/stockroom/inventory-system/internal/core/domain"
)

// ActivityRepository persists the auth activity audit trail.
type ActivityRepository interface {
	Insert(ctx context.Context, activity *domain.Activity) error
	// Recent returns at most limit activities, newest first.
	Recent(ctx context.Context, limit int) ([]*domain.Activity, error)
}
