package postgres

import (
	"context"
	"errors"
	"fmt"

	"campusEvents/domain"
	"campusEvents/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FavoriteRepository struct {
	DB *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) *FavoriteRepository {
	return &FavoriteRepository{
		DB: db,
	}
}

func (r *FavoriteRepository) Exists(ctx context.Context, studentID, eventID uuid.UUID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("context error: %w", err)
	}

	var count int64
	err := r.DB.WithContext(ctx).Model(&domain.Favorite{}).
		Where("student_id = ? AND event_id = ?", studentID, eventID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}

	return count > 0, nil
}

func (r *FavoriteRepository) Create(ctx context.Context, favorite *domain.Favorite) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(favorite).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.Conflict("event is already in favorites")
		}
		return fmt.Errorf("failed to create favorite: %w", err)
	}

	return nil
}

func (r *FavoriteRepository) Delete(ctx context.Context, studentID, eventID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).
		Where("student_id = ? AND event_id = ?", studentID, eventID).
		Delete(&domain.Favorite{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete favorite: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("favorite not found")
	}

	return nil
}

func (r *FavoriteRepository) FindByStudent(ctx context.Context, studentID uuid.UUID, limit int) ([]domain.Favorite, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	query := r.DB.WithContext(ctx).
		Preload("Event").
		Where("student_id = ?", studentID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var favorites []domain.Favorite
	if err := query.Find(&favorites).Error; err != nil {
		return nil, fmt.Errorf("failed to find favorites: %w", err)
	}

	return favorites, nil
}

func (r *FavoriteRepository) CountByStudent(ctx context.Context, studentID uuid.UUID) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	var count int64
	err := r.DB.WithContext(ctx).Model(&domain.Favorite{}).
		Where("student_id = ?", studentID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count favorites: %w", err)
	}

	return count, nil
}
