package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"campusEvents/business/similarity"
	"campusEvents/domain"
	"campusEvents/pkg/apperror"
	"campusEvents/pkg/logger"
	"campusEvents/pkg/metrics"

	"github.com/google/uuid"
)

const defaultBatchSize = 1000

// ---- Repository interfaces ----

type StudentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Student, error)
	FindIDsWithEmbedding(ctx context.Context) ([]uuid.UUID, error)
}

type EventRepository interface {
	// FindActiveWithEmbedding pages through active events carrying an
	// embedding, ordered by created_at then id so repeated runs see the
	// same sequence.
	FindActiveWithEmbedding(ctx context.Context, offset, limit int) ([]domain.Event, error)
}

type RecommendationRepository interface {
	// ReplaceForStudent deletes the student's prior recommendations and
	// inserts the new set within one transaction.
	ReplaceForStudent(ctx context.Context, studentID uuid.UUID, recs []domain.Recommendation) error
	FindByStudent(ctx context.Context, studentID uuid.UUID, limit int) ([]domain.Recommendation, error)
	Delete(ctx context.Context, id uint64) error
}

// Locker serializes recalculation per student. Acquire reports busy via
// ok=false rather than an error.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), ok bool, err error)
}

type Cache interface {
	GetRecommendations(ctx context.Context, studentID uuid.UUID, limit int) ([]domain.Recommendation, bool)
	SetRecommendations(ctx context.Context, studentID uuid.UUID, limit int, recs []domain.Recommendation)
	Invalidate(ctx context.Context, studentID uuid.UUID)
}

// ---- Usecase / Service ----

type RecommendService struct {
	studentRepo StudentRepository
	eventRepo   EventRepository
	recRepo     RecommendationRepository
	locker      Locker
	cache       Cache
	batchSize   int
}

func NewRecommendService(
	studentRepo StudentRepository,
	eventRepo EventRepository,
	recRepo RecommendationRepository,
	locker Locker,
	cache Cache,
	batchSize int,
) *RecommendService {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	return &RecommendService{
		studentRepo: studentRepo,
		eventRepo:   eventRepo,
		recRepo:     recRepo,
		locker:      locker,
		cache:       cache,
		batchSize:   batchSize,
	}
}

type RecalculateStats struct {
	TotalCalculated   int `json:"total_calculated"`
	TotalSaved        int `json:"total_saved"`
	StudentsProcessed int `json:"students_processed"`
	StudentsFailed    int `json:"students_failed"`
	EventsProcessed   int `json:"events_processed"`
}

// Get returns the student's stored recommendations, best score first.
func (s *RecommendService) Get(ctx context.Context, studentID uuid.UUID, limit int) ([]domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if s.cache != nil {
		if recs, ok := s.cache.GetRecommendations(ctx, studentID, limit); ok {
			return recs, nil
		}
	}

	recs, err := s.recRepo.FindByStudent(ctx, studentID, limit)
	if err != nil {
		return nil, apperror.Dependency("failed to load recommendations", err)
	}

	if s.cache != nil {
		s.cache.SetRecommendations(ctx, studentID, limit, recs)
	}

	return recs, nil
}

// Delete removes a single recommendation row. Cached responses for the
// owning student age out on their own TTL.
func (s *RecommendService) Delete(ctx context.Context, id uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := s.recRepo.Delete(ctx, id); err != nil {
		if apperror.IsNotFound(err) {
			return err
		}
		return apperror.Dependency("failed to delete recommendation", err)
	}

	return nil
}

// RecalculateForStudent rescores every active event for one student and
// replaces the stored recommendation set. A student without a profile
// embedding yields zero-stat success. limit > 0 caps how many rows persist.
func (s *RecommendService) RecalculateForStudent(ctx context.Context, studentID uuid.UUID, minScore float64, limit int) (RecalculateStats, error) {
	if err := ctx.Err(); err != nil {
		return RecalculateStats{}, fmt.Errorf("context error: %w", err)
	}

	release, ok, err := s.locker.Acquire(ctx, lockKey(studentID))
	if err != nil {
		return RecalculateStats{}, apperror.Dependency("failed to acquire recalculation lock", err)
	}
	if !ok {
		return RecalculateStats{}, apperror.Conflict("recalculation already in progress for this student")
	}
	defer release()

	student, err := s.studentRepo.FindByID(ctx, studentID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return RecalculateStats{}, err
		}
		return RecalculateStats{}, apperror.Dependency("failed to load student", err)
	}

	return s.recalculateLocked(ctx, student, minScore, limit)
}

// RecalculateAll replaces recommendations for every embedded student.
// The unit of atomicity is one student: already-replaced students stay
// committed when the run is cancelled or a later student fails.
func (s *RecommendService) RecalculateAll(ctx context.Context, minScore float64, batchSize int) (RecalculateStats, error) {
	if err := ctx.Err(); err != nil {
		return RecalculateStats{}, fmt.Errorf("context error: %w", err)
	}
	if batchSize > 0 {
		s = s.withBatchSize(batchSize)
	}

	started := time.Now()
	defer func() {
		metrics.RecalculateLatency.Observe(time.Since(started).Seconds())
	}()

	studentIDs, err := s.studentRepo.FindIDsWithEmbedding(ctx)
	if err != nil {
		return RecalculateStats{}, apperror.Dependency("failed to list students", err)
	}

	total := RecalculateStats{}

	for _, id := range studentIDs {
		if err := ctx.Err(); err != nil {
			logger.Warn("recalculation cancelled",
				"students_processed", total.StudentsProcessed,
				"students_total", len(studentIDs),
			)
			return total, fmt.Errorf("context error: %w", err)
		}

		stats, err := s.RecalculateForStudent(ctx, id, minScore, 0)
		if err != nil {
			total.StudentsFailed++
			logger.Error("failed to recalculate student", "student_id", id, "error", err)
			continue
		}

		total.TotalCalculated += stats.TotalCalculated
		total.TotalSaved += stats.TotalSaved
		total.StudentsProcessed++
		if stats.EventsProcessed > total.EventsProcessed {
			total.EventsProcessed = stats.EventsProcessed
		}
	}

	logger.Info("recalculation finished",
		"students_processed", total.StudentsProcessed,
		"students_failed", total.StudentsFailed,
		"recommendations_saved", total.TotalSaved,
	)

	return total, nil
}

func (s *RecommendService) withBatchSize(batchSize int) *RecommendService {
	clone := *s
	clone.batchSize = batchSize
	return &clone
}

func (s *RecommendService) recalculateLocked(ctx context.Context, student domain.Student, minScore float64, limit int) (RecalculateStats, error) {
	stats := RecalculateStats{}

	if student.ProfileEmbedding == nil {
		// a student cannot be scored without an embedding; not an error
		return stats, nil
	}

	profile := student.ProfileEmbedding.Slice()
	if similarity.IsZero(profile) {
		return stats, nil
	}

	type scored struct {
		eventID uuid.UUID
		score   float64
	}

	retained := make([]scored, 0)

	offset := 0
	for {
		events, err := s.eventRepo.FindActiveWithEmbedding(ctx, offset, s.batchSize)
		if err != nil {
			return stats, apperror.Dependency("failed to load events", err)
		}
		if len(events) == 0 {
			break
		}

		for _, event := range events {
			if event.VectorEmbedding == nil {
				continue
			}

			score, err := similarity.Cosine(profile, event.VectorEmbedding.Slice())
			if err != nil {
				if errors.Is(err, similarity.ErrDimensionMismatch) {
					return stats, fmt.Errorf("event %s: %w", event.ID, err)
				}
				return stats, fmt.Errorf("failed to score event %s: %w", event.ID, err)
			}

			stats.EventsProcessed++
			stats.TotalCalculated++

			if score >= minScore {
				retained = append(retained, scored{eventID: event.ID, score: score})
			}
		}

		if len(events) < s.batchSize {
			break
		}
		offset += len(events)
	}

	// events arrive in creation order, so a stable sort keeps ties
	// deterministic across runs
	sort.SliceStable(retained, func(i, j int) bool {
		return retained[i].score > retained[j].score
	})

	if limit > 0 && len(retained) > limit {
		retained = retained[:limit]
	}

	recs := make([]domain.Recommendation, 0, len(retained))
	for _, r := range retained {
		recs = append(recs, domain.Recommendation{
			StudentID: student.ID,
			EventID:   r.eventID,
			Score:     r.score,
		})
	}

	if err := s.recRepo.ReplaceForStudent(ctx, student.ID, recs); err != nil {
		return stats, apperror.Dependency("failed to replace recommendations", err)
	}

	stats.TotalSaved = len(recs)
	stats.StudentsProcessed = 1
	metrics.RecommendationsSaved.Add(float64(len(recs)))

	if s.cache != nil {
		s.cache.Invalidate(ctx, student.ID)
	}

	return stats, nil
}

func lockKey(studentID uuid.UUID) string {
	return fmt.Sprintf("recalc|student=%s", studentID)
}
