package postgres

import (
	"context"
	"fmt"

	"campusEvents/domain"
	"campusEvents/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RecommendationRepository struct {
	DB *gorm.DB
}

func NewRecommendationRepository(db *gorm.DB) *RecommendationRepository {
	return &RecommendationRepository{
		DB: db,
	}
}

// ReplaceForStudent deletes the student's previous recommendation set and
// inserts the new one in a single transaction. A reader never observes
// the two sets mixed.
func (r *RecommendationRepository) ReplaceForStudent(ctx context.Context, studentID uuid.UUID, recs []domain.Recommendation) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", studentID).Delete(&domain.Recommendation{}).Error; err != nil {
			return fmt.Errorf("failed to delete prior recommendations: %w", err)
		}

		if len(recs) > 0 {
			if err := tx.CreateInBatches(recs, 500).Error; err != nil {
				return fmt.Errorf("failed to insert recommendations: %w", err)
			}
		}

		return nil
	})
}

func (r *RecommendationRepository) FindByStudent(ctx context.Context, studentID uuid.UUID, limit int) ([]domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	query := r.DB.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("score DESC, created_at, id")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var recs []domain.Recommendation
	if err := query.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to find recommendations: %w", err)
	}

	return recs, nil
}

func (r *RecommendationRepository) Delete(ctx context.Context, id uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Delete(&domain.Recommendation{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete recommendation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("recommendation not found")
	}

	return nil
}
