package ports

import (
	"context"

	"github.com/stockroom/inventory-system/internal/core/domain"
)

// ActivityPublisher hands an activity off for asynchronous recording.
type ActivityPublisher interface {
	Publish(activity domain.Activity)
}

// ActivityNotifier pushes a recorded activity to real-time subscribers.
type ActivityNotifier interface {
	Notify(activity domain.Activity)
}

// ActivityService records activities and serves the audit trail.
type ActivityService interface {
	Process(ctx context.Context, activity domain.Activity) error
	Recent(ctx context.Context, limit int) ([]*domain.Activity, error)
}
