package postgres

import (
	"context"
	"fmt"
	"strings"

	"campusEvents/domain"

	"gorm.io/gorm"
)

type DirectionRepository struct {
	DB *gorm.DB
}

func NewDirectionRepository(db *gorm.DB) *DirectionRepository {
	return &DirectionRepository{
		DB: db,
	}
}

func (r *DirectionRepository) FindAll(ctx context.Context) ([]domain.Direction, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var directions []domain.Direction
	if err := r.DB.WithContext(ctx).Order("title").Find(&directions).Error; err != nil {
		return nil, fmt.Errorf("failed to find directions: %w", err)
	}

	return directions, nil
}

// Create inserts a direction without a cluster. A concurrent insert of
// the same title resolves to the existing row.
func (r *DirectionRepository) Create(ctx context.Context, title string) (domain.Direction, error) {
	if err := ctx.Err(); err != nil {
		return domain.Direction{}, fmt.Errorf("context error: %w", err)
	}

	title = strings.TrimSpace(title)

	var direction domain.Direction
	err := r.DB.WithContext(ctx).
		Where("LOWER(title) = LOWER(?)", title).
		Attrs(domain.Direction{Title: title}).
		FirstOrCreate(&direction).Error
	if err != nil {
		return domain.Direction{}, fmt.Errorf("failed to create direction: %w", err)
	}

	return direction, nil
}
