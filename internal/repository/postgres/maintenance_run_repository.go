package postgres

import (
	"context"
	"fmt"

	"campusEvents/domain"

	"gorm.io/gorm"
)

type MaintenanceRunRepository struct {
	DB *gorm.DB
}

func NewMaintenanceRunRepository(db *gorm.DB) *MaintenanceRunRepository {
	return &MaintenanceRunRepository{
		DB: db,
	}
}

func (r *MaintenanceRunRepository) Record(ctx context.Context, run *domain.MaintenanceRun) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to record maintenance run: %w", err)
	}

	return nil
}

func (r *MaintenanceRunRepository) FindRecent(ctx context.Context, limit int) ([]domain.MaintenanceRun, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if limit <= 0 {
		limit = 50
	}

	var runs []domain.MaintenanceRun
	err := r.DB.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find maintenance runs: %w", err)
	}

	return runs, nil
}
