package events

import (
	"context"
	"fmt"
	"time"

	"campusEvents/domain"
	"campusEvents/pkg/apperror"
	"campusEvents/pkg/logger"

	"github.com/google/uuid"
)

type EventRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Event, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Event, error)
	FindActive(ctx context.Context, limit int) ([]domain.Event, error)
	FindByClusters(ctx context.Context, clusterIDs []uuid.UUID, limit int) ([]domain.Event, error)
	AddReaction(ctx context.Context, id uuid.UUID, likesDelta, dislikesDelta int) (domain.Event, error)
	DeactivateExpired(ctx context.Context, before time.Time) (int64, error)
}

type EventService struct {
	repo EventRepository
}

func NewEventService(repo EventRepository) *EventService {
	return &EventService{repo: repo}
}

func (s *EventService) GetByID(ctx context.Context, id uuid.UUID) (domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return domain.Event{}, fmt.Errorf("context error: %w", err)
	}

	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if apperror.IsNotFound(err) {
			return domain.Event{}, err
		}
		return domain.Event{}, apperror.Dependency("failed to load event", err)
	}
	return event, nil
}

func (s *EventService) ListActive(ctx context.Context, limit int) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	events, err := s.repo.FindActive(ctx, limit)
	if err != nil {
		return nil, apperror.Dependency("failed to list events", err)
	}
	return events, nil
}

// Bulk fetches events by id, preserving input order. Unknown ids are left
// out rather than treated as an error.
func (s *EventService) Bulk(ctx context.Context, ids []uuid.UUID) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	found, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Dependency("failed to load events", err)
	}

	byID := make(map[uuid.UUID]domain.Event, len(found))
	for _, e := range found {
		byID[e.ID] = e
	}

	events := make([]domain.Event, 0, len(ids))
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			events = append(events, e)
		}
	}
	return events, nil
}

func (s *EventService) ListByClusters(ctx context.Context, clusterIDs []uuid.UUID, limit int) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if len(clusterIDs) == 0 {
		return nil, apperror.Validation("at least one cluster id is required")
	}

	events, err := s.repo.FindByClusters(ctx, clusterIDs, limit)
	if err != nil {
		return nil, apperror.Dependency("failed to list events by clusters", err)
	}
	return events, nil
}

func (s *EventService) Like(ctx context.Context, id uuid.UUID) (domain.Event, error) {
	return s.react(ctx, id, 1, 0)
}

func (s *EventService) Dislike(ctx context.Context, id uuid.UUID) (domain.Event, error) {
	return s.react(ctx, id, 0, 1)
}

func (s *EventService) react(ctx context.Context, id uuid.UUID, likes, dislikes int) (domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return domain.Event{}, fmt.Errorf("context error: %w", err)
	}

	event, err := s.repo.AddReaction(ctx, id, likes, dislikes)
	if err != nil {
		if apperror.IsNotFound(err) {
			return domain.Event{}, err
		}
		return domain.Event{}, apperror.Dependency("failed to update event reaction", err)
	}
	return event, nil
}

// DeactivateExpired flips is_active off for events whose end date has
// passed. Called by the daily sweep.
func (s *EventService) DeactivateExpired(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	count, err := s.repo.DeactivateExpired(ctx, time.Now())
	if err != nil {
		return 0, apperror.Dependency("failed to deactivate expired events", err)
	}
	if count > 0 {
		logger.Info("deactivated expired events", "count", count)
	}
	return count, nil
}
