package postgres

import (
	"context"
	"fmt"

	"campusEvents/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FeedbackRepository struct {
	DB *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{
		DB: db,
	}
}

func (r *FeedbackRepository) Create(ctx context.Context, fb *domain.Feedback) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(fb).Error; err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}

	return nil
}

func (r *FeedbackRepository) FindByStudent(ctx context.Context, studentID uuid.UUID, limit int) ([]domain.Feedback, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	query := r.DB.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var items []domain.Feedback
	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to find feedback: %w", err)
	}

	return items, nil
}
