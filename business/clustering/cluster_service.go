package clustering

import (
	"context"
	"fmt"
	"strings"

	"campusEvents/business/similarity"
	"campusEvents/domain"
	"campusEvents/pkg/logger"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// ---- Repository interfaces ----

type ClusterRepository interface {
	FindAllWithCentroid(ctx context.Context) ([]domain.Cluster, error)
}

type DirectionRepository interface {
	FindAll(ctx context.Context) ([]domain.Direction, error)
}

// TaxonomyRepository swaps the full cluster+direction set atomically.
type TaxonomyRepository interface {
	ReplaceTaxonomy(ctx context.Context, clusters []domain.Cluster, directions []domain.Direction) error
}

type Embedder interface {
	Generate(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// ---- Service ----

type ClusterService struct {
	clusterRepo   ClusterRepository
	directionRepo DirectionRepository
	taxonomyRepo  TaxonomyRepository
	embedder      Embedder
	threshold     float64
}

func NewClusterService(
	clusterRepo ClusterRepository,
	directionRepo DirectionRepository,
	taxonomyRepo TaxonomyRepository,
	embedder Embedder,
	threshold float64,
) *ClusterService {
	return &ClusterService{
		clusterRepo:   clusterRepo,
		directionRepo: directionRepo,
		taxonomyRepo:  taxonomyRepo,
		embedder:      embedder,
		threshold:     threshold,
	}
}

// Centroids loads every cluster centroid in insertion order, ready for
// Assign.
func (s *ClusterService) Centroids(ctx context.Context) ([]Centroid, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	clusters, err := s.clusterRepo.FindAllWithCentroid(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cluster centroids: %w", err)
	}

	centroids := make([]Centroid, 0, len(clusters))
	for _, c := range clusters {
		if c.Centroid == nil {
			continue
		}
		centroids = append(centroids, Centroid{
			ClusterID: c.ID,
			Vector:    c.Centroid.Slice(),
		})
	}

	return centroids, nil
}

type ClusterizeStats struct {
	DirectionsTotal   int  `json:"directions_total"`
	NewDirections     int  `json:"new_directions"`
	ClustersCreated   int  `json:"clusters_created"`
	DirectionsCreated int  `json:"directions_created"`
	Skipped           bool `json:"skipped"`
}

// ClusterizeDirections embeds the given direction titles, groups them by
// centroid similarity and replaces the stored taxonomy with the result.
// Without force, the run is skipped when every title is already a known
// direction.
func (s *ClusterService) ClusterizeDirections(ctx context.Context, titles []string, force bool) (ClusterizeStats, error) {
	if err := ctx.Err(); err != nil {
		return ClusterizeStats{}, fmt.Errorf("context error: %w", err)
	}

	unique := dedupeTitles(titles)
	stats := ClusterizeStats{DirectionsTotal: len(unique)}

	if len(unique) == 0 {
		stats.Skipped = true
		return stats, nil
	}

	existing, err := s.directionRepo.FindAll(ctx)
	if err != nil {
		return stats, fmt.Errorf("load existing directions: %w", err)
	}

	known := make(map[string]struct{}, len(existing))
	for _, d := range existing {
		known[strings.ToLower(strings.TrimSpace(d.Title))] = struct{}{}
	}
	for _, title := range unique {
		if _, ok := known[strings.ToLower(title)]; !ok {
			stats.NewDirections++
		}
	}

	if !force && len(known) > 0 && stats.NewDirections == 0 {
		logger.Info("clusterize skipped, no new directions", "directions", len(unique))
		stats.Skipped = true
		return stats, nil
	}

	embeddings, err := s.embedder.Generate(ctx, unique)
	if err != nil {
		return stats, fmt.Errorf("embed direction titles: %w", err)
	}
	if len(embeddings) != len(unique) {
		return stats, fmt.Errorf("embedder returned %d vectors for %d titles", len(embeddings), len(unique))
	}

	normalized := make([][]float32, len(embeddings))
	for i, e := range embeddings {
		normalized[i] = similarity.Normalize(e)
	}

	groups, err := GroupByThreshold(normalized, s.threshold)
	if err != nil {
		return stats, fmt.Errorf("group directions: %w", err)
	}

	clusters := make([]domain.Cluster, 0, len(groups))
	directions := make([]domain.Direction, 0, len(unique))

	for i, g := range groups {
		centroid := pgvector.NewVector(g.Centroid)
		cluster := domain.Cluster{
			ID:       uuid.New(),
			Title:    fmt.Sprintf("Кластер %d", i+1),
			Centroid: &centroid,
		}
		clusters = append(clusters, cluster)

		for _, member := range g.Members {
			clusterID := cluster.ID
			directions = append(directions, domain.Direction{
				ID:        uuid.New(),
				Title:     unique[member],
				ClusterID: &clusterID,
			})
		}
	}

	if err := s.taxonomyRepo.ReplaceTaxonomy(ctx, clusters, directions); err != nil {
		return stats, fmt.Errorf("replace taxonomy: %w", err)
	}

	stats.ClustersCreated = len(clusters)
	stats.DirectionsCreated = len(directions)

	logger.Info("directions clusterized",
		"directions", len(directions),
		"clusters", len(clusters),
	)

	return stats, nil
}

func dedupeTitles(titles []string) []string {
	seen := make(map[string]struct{}, len(titles))
	out := make([]string, 0, len(titles))
	for _, t := range titles {
		trimmed := strings.TrimSpace(t)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
