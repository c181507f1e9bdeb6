package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Tables in foreign-key order: referencing tables first.
var resetTables = []string{
	"recommendations",
	"feedback",
	"favorites",
	"event_clusters",
	"events",
	"bot_users",
	"students",
	"directions",
	"clusters",
	"maintenance_runs",
}

// ResetRepository implements the full database reset behind the
// confirmation-gated maintenance operation.
type ResetRepository struct {
	DB *gorm.DB
}

func NewResetRepository(db *gorm.DB) *ResetRepository {
	return &ResetRepository{
		DB: db,
	}
}

func (r *ResetRepository) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range resetTables {
			stmt := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("failed to truncate %s: %w", table, err)
			}
		}
		return nil
	})
}
