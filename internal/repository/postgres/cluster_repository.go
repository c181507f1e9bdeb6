package postgres

import (
	"context"
	"fmt"

	"campusEvents/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClusterRepository struct {
	DB *gorm.DB
}

func NewClusterRepository(db *gorm.DB) *ClusterRepository {
	return &ClusterRepository{
		DB: db,
	}
}

// FindAllWithCentroid returns clusters in insertion order; assignment
// relies on that order for stable tie-breaking.
func (r *ClusterRepository) FindAllWithCentroid(ctx context.Context) ([]domain.Cluster, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var clusters []domain.Cluster
	err := r.DB.WithContext(ctx).
		Where("centroid IS NOT NULL").
		Order("created_at, id").
		Find(&clusters).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find clusters: %w", err)
	}

	return clusters, nil
}

// ReplaceTaxonomy swaps the whole cluster and direction set in one
// transaction. Join rows referencing the old clusters go with them.
func (r *ClusterRepository) ReplaceTaxonomy(ctx context.Context, clusters []domain.Cluster, directions []domain.Direction) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("UPDATE students SET direction_id = NULL").Error; err != nil {
			return fmt.Errorf("failed to detach students from directions: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&domain.EventCluster{}).Error; err != nil {
			return fmt.Errorf("failed to delete event cluster links: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&domain.Direction{}).Error; err != nil {
			return fmt.Errorf("failed to delete directions: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&domain.Cluster{}).Error; err != nil {
			return fmt.Errorf("failed to delete clusters: %w", err)
		}

		if len(clusters) > 0 {
			if err := tx.CreateInBatches(clusters, 100).Error; err != nil {
				return fmt.Errorf("failed to insert clusters: %w", err)
			}
		}
		if len(directions) > 0 {
			if err := tx.CreateInBatches(directions, 200).Error; err != nil {
				return fmt.Errorf("failed to insert directions: %w", err)
			}
		}

		return nil
	})
}

// Link attaches an event to a cluster. Links are additive; a repeated
// pair is ignored.
func (r *ClusterRepository) Link(ctx context.Context, eventID, clusterID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	link := domain.EventCluster{EventID: eventID, ClusterID: clusterID}
	err := r.DB.WithContext(ctx).
		Where("event_id = ? AND cluster_id = ?", eventID, clusterID).
		FirstOrCreate(&link).Error
	if err != nil {
		return fmt.Errorf("failed to link event to cluster: %w", err)
	}

	return nil
}
