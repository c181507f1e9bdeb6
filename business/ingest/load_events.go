package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"campusEvents/business/clustering"
	"campusEvents/domain"
	"campusEvents/pkg/apperror"
	"campusEvents/pkg/logger"
	"campusEvents/pkg/metrics"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// EventStore is the write side the event loader needs. Exists implements
// the duplicate check over title plus whichever of start date and link
// the candidate row carries.
type EventStore interface {
	Exists(ctx context.Context, title string, startDate *time.Time, link string) (bool, error)
	Create(ctx context.Context, event *domain.Event) error
}

// ClusterLinker persists event-to-cluster assignments. Links are additive,
// existing rows for the event stay untouched.
type ClusterLinker interface {
	Link(ctx context.Context, eventID, clusterID uuid.UUID) error
}

// CentroidSource yields the cluster centroids used for assignment.
type CentroidSource interface {
	Centroids(ctx context.Context) ([]clustering.Centroid, error)
}

type LoadEventsOptions struct {
	AssignClusters      bool
	ClusterTopK         int
	SimilarityThreshold float64
	// Limit caps how many records are loaded; zero means all.
	Limit int
}

type LoadStats struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
	Total   int `json:"total_in_file"`
}

// EventLoader inserts processed event records into the store, skipping
// duplicates and optionally attaching cluster assignments.
type EventLoader struct {
	store     EventStore
	linker    ClusterLinker
	centroids CentroidSource
}

func NewEventLoader(store EventStore, linker ClusterLinker, centroids CentroidSource) *EventLoader {
	return &EventLoader{
		store:     store,
		linker:    linker,
		centroids: centroids,
	}
}

// LoadJSON reads a processed events file and inserts every record that is
// not already present. A failing record counts as skipped, it never aborts
// the batch.
func (l *EventLoader) LoadJSON(ctx context.Context, path string, opts LoadEventsOptions) (LoadStats, error) {
	stats := LoadStats{}

	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("context error: %w", err)
	}

	records, err := readEventsFile(path)
	if err != nil {
		return stats, err
	}
	if len(records) == 0 {
		return stats, apperror.NotFound(fmt.Sprintf("file contains no events: %s", path))
	}

	stats.Total = len(records)
	if opts.Limit > 0 && len(records) > opts.Limit {
		records = records[:opts.Limit]
	}

	var centroids []clustering.Centroid
	if opts.AssignClusters {
		centroids, err = l.centroids.Centroids(ctx)
		if err != nil {
			return stats, apperror.Dependency("failed to load cluster centroids", err)
		}
		if len(centroids) == 0 {
			logger.Warn("no clusters with centroids, assignment skipped")
		}
	}

	today := time.Now()

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("context error: %w", err)
		}

		event := recordToEvent(rec, today)

		exists, err := l.store.Exists(ctx, event.Title, event.StartDate, event.Link)
		if err != nil {
			return stats, apperror.Dependency("failed to check for duplicate event", err)
		}
		if exists {
			stats.Skipped++
			metrics.IngestRecordsTotal.WithLabelValues("event", "skipped").Inc()
			continue
		}

		if err := l.store.Create(ctx, &event); err != nil {
			stats.Skipped++
			metrics.IngestRecordsTotal.WithLabelValues("event", "skipped").Inc()
			logger.Error("failed to insert event", "title", event.Title, "error", err)
			continue
		}

		if opts.AssignClusters && len(centroids) > 0 {
			l.assignClusters(ctx, event, centroids, opts)
		}

		stats.Added++
		metrics.IngestRecordsTotal.WithLabelValues("event", "added").Inc()
	}

	logger.Info("loaded events",
		"file", path,
		"added", stats.Added,
		"skipped", stats.Skipped,
		"total", stats.Total,
	)

	return stats, nil
}

func (l *EventLoader) assignClusters(ctx context.Context, event domain.Event, centroids []clustering.Centroid, opts LoadEventsOptions) {
	var embedding []float32
	if event.VectorEmbedding != nil {
		embedding = event.VectorEmbedding.Slice()
	}

	assignments, err := clustering.Assign(embedding, centroids, opts.ClusterTopK, opts.SimilarityThreshold)
	if err != nil {
		logger.Warn("cluster assignment skipped", "title", event.Title, "error", err)
		return
	}
	if len(assignments) == 0 {
		logger.Debug("no cluster cleared the threshold", "title", event.Title)
		return
	}

	for _, a := range assignments {
		if err := l.linker.Link(ctx, event.ID, a.ClusterID); err != nil {
			logger.Error("failed to link event to cluster",
				"title", event.Title,
				"cluster_id", a.ClusterID,
				"error", err,
			)
		}
	}
}

func readEventsFile(path string) ([]EventRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperror.NotFound(fmt.Sprintf("file not found: %s", path))
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var records []EventRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, apperror.Validation(fmt.Sprintf("invalid events file %s: %v", path, err))
	}
	return records, nil
}

func recordToEvent(rec EventRecord, today time.Time) domain.Event {
	event := domain.Event{
		Title:            rec.Title,
		ShortDescription: rec.ShortDescription,
		Description:      rec.Description,
		Format:           rec.Format,
		Link:             rec.Link,
		ImageURL:         rec.ImageURL,
	}

	if rec.StartDate != nil {
		t := rec.StartDate.Time
		event.StartDate = &t
	}
	if rec.EndDate != nil {
		t := rec.EndDate.Time
		event.EndDate = &t
	}
	if len(rec.VectorEmbedding) > 0 {
		v := pgvector.NewVector(rec.VectorEmbedding)
		event.VectorEmbedding = &v
	}

	event.IsActive = IsActiveOn(today, event.StartDate, event.EndDate)

	return event
}
