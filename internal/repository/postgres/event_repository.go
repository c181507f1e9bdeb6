package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campusEvents/domain"
	"campusEvents/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventRepository struct {
	DB *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{
		DB: db,
	}
}

func (r *EventRepository) Create(ctx context.Context, event *domain.Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	return nil
}

func (r *EventRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return domain.Event{}, fmt.Errorf("context error: %w", err)
	}

	var event domain.Event
	err := r.DB.WithContext(ctx).First(&event, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Event{}, apperror.NotFound("event not found")
		}
		return domain.Event{}, fmt.Errorf("failed to find event: %w", err)
	}

	return event, nil
}

func (r *EventRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var events []domain.Event
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to find events: %w", err)
	}

	return events, nil
}

func (r *EventRepository) FindActive(ctx context.Context, limit int) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	query := r.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Order("start_date NULLS LAST, created_at")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var events []domain.Event
	if err := query.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to find active events: %w", err)
	}

	return events, nil
}

// FindActiveWithEmbedding pages through scorable events in creation
// order so repeated recalculation runs see the same sequence.
func (r *EventRepository) FindActiveWithEmbedding(ctx context.Context, offset, limit int) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var events []domain.Event
	err := r.DB.WithContext(ctx).
		Where("is_active = ? AND vector_embedding IS NOT NULL", true).
		Order("created_at, id").
		Offset(offset).
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find scorable events: %w", err)
	}

	return events, nil
}

func (r *EventRepository) FindByClusters(ctx context.Context, clusterIDs []uuid.UUID, limit int) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	query := r.DB.WithContext(ctx).
		Joins("JOIN event_clusters ec ON ec.event_id = events.id").
		Where("ec.cluster_id IN ? AND events.is_active = ?", clusterIDs, true).
		Distinct().
		Order("events.start_date NULLS LAST, events.created_at")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var events []domain.Event
	if err := query.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to find events by clusters: %w", err)
	}

	return events, nil
}

// Exists implements the ingestion duplicate check: title plus whichever
// of start date and link the candidate carries; title alone when it
// carries neither.
func (r *EventRepository) Exists(ctx context.Context, title string, startDate *time.Time, link string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("context error: %w", err)
	}

	query := r.DB.WithContext(ctx).Model(&domain.Event{}).Where("title = ?", title)
	switch {
	case startDate != nil && link != "":
		query = query.Where("start_date = ? AND link = ?", startDate, link)
	case startDate != nil:
		query = query.Where("start_date = ?", startDate)
	case link != "":
		query = query.Where("link = ?", link)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check for duplicate event: %w", err)
	}

	return count > 0, nil
}

func (r *EventRepository) AddReaction(ctx context.Context, id uuid.UUID, likesDelta, dislikesDelta int) (domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return domain.Event{}, fmt.Errorf("context error: %w", err)
	}

	updates := map[string]interface{}{}
	if likesDelta != 0 {
		updates["likes_count"] = gorm.Expr("likes_count + ?", likesDelta)
	}
	if dislikesDelta != 0 {
		updates["dislikes_count"] = gorm.Expr("dislikes_count + ?", dislikesDelta)
	}

	result := r.DB.WithContext(ctx).Model(&domain.Event{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return domain.Event{}, fmt.Errorf("failed to update event reaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.Event{}, apperror.NotFound("event not found")
	}

	return r.FindByID(ctx, id)
}

// DeactivateExpired flips is_active off for events whose end date lies
// strictly before the given day.
func (r *EventRepository) DeactivateExpired(ctx context.Context, before time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Model(&domain.Event{}).
		Where("is_active = ? AND end_date IS NOT NULL AND end_date < ?", true, before.Truncate(24*time.Hour)).
		Update("is_active", false)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to deactivate events: %w", result.Error)
	}

	return result.RowsAffected, nil
}
