package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/stockroom/inventory-system/internal/core/domain"
	"github.com/stockroom/inventory-system/internal/core/ports"
)

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 200
)

type activityService struct {
	repo     ports.ActivityRepository
	notifier ports.ActivityNotifier
	log      zerolog.Logger
}

// NewActivityService returns an ActivityService that persists activities and then
// pushes them to notifier. notifier may be nil.
func NewActivityService(repo ports.ActivityRepository, notifier ports.ActivityNotifier, log zerolog.Logger) ports.ActivityService {
	return &activityService{
		repo:     repo,
		notifier: notifier,
		log:      log,
	}
}

// Process persists a single activity and fans it out to real-time subscribers.
func (s *activityService) Process(ctx context.Context, activity domain.Activity) error {
	if activity.Action == "" {
		return fmt.Errorf("process activity: missing action")
	}

	if err := s.repo.Insert(ctx, &activity); err != nil {
		return fmt.Errorf("process activity: insert: %w", err)
	}

	// Notification is best effort; the audit record is already durable.
	if s.notifier != nil {
		s.notifier.Notify(activity)
	}

	s.log.Debug().
		Str("action", string(activity.Action)).
		Str("actor_id", activity.ActorID).
		Str("target_id", activity.TargetID).
		Msg("activity recorded")

	return nil
}

// Recent returns the newest activities. limit is clamped to (0, maxRecentLimit].
func (s *activityService) Recent(ctx context.Context, limit int) ([]*domain.Activity, error) {
	switch {
	case limit <= 0:
		limit = defaultRecentLimit
	case limit > maxRecentLimit:
		limit = maxRecentLimit
	}

	items, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	if items == nil {
		items = []*domain.Activity{}
	}
	return items, nil
}
