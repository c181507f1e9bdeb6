package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"campusEvents/domain"
	"campusEvents/pkg/apperror"
	"campusEvents/pkg/logger"
	"campusEvents/pkg/metrics"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// StudentStore is the write side the student loader needs.
type StudentStore interface {
	FindParticipantIDs(ctx context.Context) ([]string, error)
	CreateBatch(ctx context.Context, students []domain.Student) error
}

// DirectionStore resolves specialty titles to directions, creating rows
// for titles the store has not seen yet.
type DirectionStore interface {
	FindAll(ctx context.Context) ([]domain.Direction, error)
	Create(ctx context.Context, title string) (domain.Direction, error)
}

// StudentLoader inserts processed student records into the store, skipping
// participant ids that already exist.
type StudentLoader struct {
	students           StudentStore
	directions         DirectionStore
	defaultInstitution string
	batchSize          int
}

func NewStudentLoader(students StudentStore, directions DirectionStore, defaultInstitution string, batchSize int) *StudentLoader {
	if batchSize <= 0 {
		batchSize = 100
	}

	return &StudentLoader{
		students:           students,
		directions:         directions,
		defaultInstitution: defaultInstitution,
		batchSize:          batchSize,
	}
}

// LoadJSON reads a processed students file and batch-inserts every record
// whose participant id is new. Re-running the same file adds nothing.
// limit caps how many records are loaded; zero means all.
func (l *StudentLoader) LoadJSON(ctx context.Context, path string, limit int) (LoadStats, error) {
	stats := LoadStats{}

	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("context error: %w", err)
	}

	records, err := readStudentsFile(path)
	if err != nil {
		return stats, err
	}
	if len(records) == 0 {
		return stats, apperror.NotFound(fmt.Sprintf("file contains no students: %s", path))
	}

	stats.Total = len(records)
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	existing, err := l.existingParticipantIDs(ctx)
	if err != nil {
		return stats, err
	}

	directions, err := l.directionIndex(ctx)
	if err != nil {
		return stats, err
	}

	batch := make([]domain.Student, 0, l.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := l.students.CreateBatch(ctx, batch); err != nil {
			return apperror.Dependency("failed to insert students", err)
		}
		stats.Added += len(batch)
		metrics.IngestRecordsTotal.WithLabelValues("student", "added").Add(float64(len(batch)))
		batch = batch[:0]
		return nil
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("context error: %w", err)
		}

		participantID := strings.TrimSpace(rec.ParticipantID)
		if participantID == "" || len(rec.Vector) == 0 {
			stats.Skipped++
			metrics.IngestRecordsTotal.WithLabelValues("student", "skipped").Inc()
			continue
		}
		if _, dup := existing[participantID]; dup {
			stats.Skipped++
			metrics.IngestRecordsTotal.WithLabelValues("student", "skipped").Inc()
			continue
		}

		directionID, err := l.resolveDirection(ctx, directions, rec.Specialty)
		if err != nil {
			return stats, err
		}

		embedding := pgvector.NewVector(rec.Vector)
		existing[participantID] = struct{}{}

		batch = append(batch, domain.Student{
			ParticipantID:    participantID,
			Institution:      l.defaultInstitution,
			DirectionID:      directionID,
			ProfileEmbedding: &embedding,
		})

		if len(batch) >= l.batchSize {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}

	if err := flush(); err != nil {
		return stats, err
	}

	logger.Info("loaded students",
		"file", path,
		"added", stats.Added,
		"skipped", stats.Skipped,
		"total", stats.Total,
	)

	return stats, nil
}

func (l *StudentLoader) existingParticipantIDs(ctx context.Context) (map[string]struct{}, error) {
	ids, err := l.students.FindParticipantIDs(ctx)
	if err != nil {
		return nil, apperror.Dependency("failed to list existing students", err)
	}

	existing := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		existing[id] = struct{}{}
	}
	return existing, nil
}

func (l *StudentLoader) directionIndex(ctx context.Context) (map[string]uuid.UUID, error) {
	directions, err := l.directions.FindAll(ctx)
	if err != nil {
		return nil, apperror.Dependency("failed to list directions", err)
	}

	index := make(map[string]uuid.UUID, len(directions))
	for _, d := range directions {
		index[directionKey(d.Title)] = d.ID
	}
	return index, nil
}

// resolveDirection maps a specialty title onto a direction id, creating
// the direction when the title is new. Lookup is case-insensitive so a
// re-run never duplicates directions.
func (l *StudentLoader) resolveDirection(ctx context.Context, index map[string]uuid.UUID, specialty string) (*uuid.UUID, error) {
	specialty = strings.TrimSpace(specialty)
	if specialty == "" {
		return nil, nil
	}

	key := directionKey(specialty)
	if id, ok := index[key]; ok {
		return &id, nil
	}

	direction, err := l.directions.Create(ctx, specialty)
	if err != nil {
		return nil, apperror.Dependency("failed to create direction", err)
	}

	index[key] = direction.ID
	return &direction.ID, nil
}

func directionKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

func readStudentsFile(path string) ([]StudentRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperror.NotFound(fmt.Sprintf("file not found: %s", path))
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var records []StudentRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, apperror.Validation(fmt.Sprintf("invalid students file %s: %v", path, err))
	}
	return records, nil
}
