//go:build !integration

package recommend

import (
	"context"
	"testing"
	"time"

	"campusEvents/domain"
	"campusEvents/pkg/apperror"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// ---- fakes ----

type fakeStudentRepo struct {
	students map[uuid.UUID]domain.Student
}

func (f *fakeStudentRepo) FindByID(_ context.Context, id uuid.UUID) (domain.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return domain.Student{}, apperror.NotFound("student not found")
	}
	return s, nil
}

func (f *fakeStudentRepo) FindIDsWithEmbedding(_ context.Context) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(f.students))
	for id, s := range f.students {
		if s.ProfileEmbedding != nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type fakeEventRepo struct {
	events []domain.Event
}

func (f *fakeEventRepo) FindActiveWithEmbedding(_ context.Context, offset, limit int) ([]domain.Event, error) {
	if offset >= len(f.events) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.events) {
		end = len(f.events)
	}
	return f.events[offset:end], nil
}

type fakeRecRepo struct {
	byStudent map[uuid.UUID][]domain.Recommendation
	replaces  int
}

func (f *fakeRecRepo) ReplaceForStudent(_ context.Context, studentID uuid.UUID, recs []domain.Recommendation) error {
	if f.byStudent == nil {
		f.byStudent = make(map[uuid.UUID][]domain.Recommendation)
	}
	f.byStudent[studentID] = recs
	f.replaces++
	return nil
}

func (f *fakeRecRepo) FindByStudent(_ context.Context, studentID uuid.UUID, limit int) ([]domain.Recommendation, error) {
	recs := f.byStudent[studentID]
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

func (f *fakeRecRepo) Delete(_ context.Context, id uint64) error {
	for studentID, recs := range f.byStudent {
		for i, rec := range recs {
			if rec.ID == id {
				f.byStudent[studentID] = append(recs[:i:i], recs[i+1:]...)
				return nil
			}
		}
	}
	return apperror.NotFound("recommendation not found")
}

type fakeLocker struct {
	held map[string]bool
}

func (f *fakeLocker) Acquire(_ context.Context, key string) (func(), bool, error) {
	if f.held == nil {
		f.held = make(map[string]bool)
	}
	if f.held[key] {
		return nil, false, nil
	}
	f.held[key] = true
	return func() { delete(f.held, key) }, true, nil
}

// ---- fixtures ----

func vec(values ...float32) *pgvector.Vector {
	v := pgvector.NewVector(values)
	return &v
}

func eventFixture(title string, embedding *pgvector.Vector, createdAt time.Time) domain.Event {
	return domain.Event{
		ID:              uuid.New(),
		Title:           title,
		VectorEmbedding: embedding,
		IsActive:        true,
		CreatedAt:       createdAt,
	}
}

func newService(studentRepo *fakeStudentRepo, eventRepo *fakeEventRepo, recRepo *fakeRecRepo) *RecommendService {
	return NewRecommendService(studentRepo, eventRepo, recRepo, &fakeLocker{}, nil, 2)
}

// ---- tests ----

func TestRecalculateForStudent_ScoringScenario(t *testing.T) {
	studentID := uuid.New()
	studentRepo := &fakeStudentRepo{students: map[uuid.UUID]domain.Student{
		studentID: {ID: studentID, ParticipantID: "P-1", ProfileEmbedding: vec(1, 0, 0)},
	}}

	base := time.Now()
	matched := eventFixture("match", vec(1, 0, 0), base)
	orthogonal := eventFixture("orthogonal", vec(0, 1, 0), base.Add(time.Minute))
	opposite := eventFixture("opposite", vec(-1, 0, 0), base.Add(2*time.Minute))

	eventRepo := &fakeEventRepo{events: []domain.Event{matched, orthogonal, opposite}}
	recRepo := &fakeRecRepo{}

	svc := newService(studentRepo, eventRepo, recRepo)

	stats, err := svc.RecalculateForStudent(context.Background(), studentID, 0.0, 0)
	if err != nil {
		t.Fatalf("RecalculateForStudent error: %v", err)
	}

	if stats.EventsProcessed != 3 {
		t.Errorf("events processed = %d, want 3", stats.EventsProcessed)
	}
	if stats.TotalSaved != 2 {
		t.Errorf("total saved = %d, want 2 (negative score excluded)", stats.TotalSaved)
	}

	recs := recRepo.byStudent[studentID]
	if len(recs) != 2 {
		t.Fatalf("persisted %d recommendations, want 2", len(recs))
	}
	if recs[0].EventID != matched.ID || recs[0].Score < 0.999 {
		t.Errorf("first recommendation should be the exact match with score 1.0, got %+v", recs[0])
	}
	if recs[1].EventID != orthogonal.ID {
		t.Errorf("second recommendation should be the orthogonal event")
	}
}

func TestRecalculateForStudent_Deterministic(t *testing.T) {
	studentID := uuid.New()
	studentRepo := &fakeStudentRepo{students: map[uuid.UUID]domain.Student{
		studentID: {ID: studentID, ProfileEmbedding: vec(1, 0)},
	}}

	// two events with identical scores; creation order must break the tie
	base := time.Now()
	first := eventFixture("first", vec(1, 0), base)
	second := eventFixture("second", vec(1, 0), base.Add(time.Second))

	eventRepo := &fakeEventRepo{events: []domain.Event{first, second}}
	recRepo := &fakeRecRepo{}
	svc := newService(studentRepo, eventRepo, recRepo)

	for run := 0; run < 3; run++ {
		if _, err := svc.RecalculateForStudent(context.Background(), studentID, 0.0, 0); err != nil {
			t.Fatalf("run %d error: %v", run, err)
		}

		recs := recRepo.byStudent[studentID]
		if len(recs) != 2 {
			t.Fatalf("run %d persisted %d rows, want 2", run, len(recs))
		}
		if recs[0].EventID != first.ID || recs[1].EventID != second.ID {
			t.Errorf("run %d: tie not broken by creation order", run)
		}
	}
}

func TestRecalculateForStudent_ReplacesPriorSet(t *testing.T) {
	studentID := uuid.New()
	studentRepo := &fakeStudentRepo{students: map[uuid.UUID]domain.Student{
		studentID: {ID: studentID, ProfileEmbedding: vec(1, 0)},
	}}

	stale := domain.Recommendation{StudentID: studentID, EventID: uuid.New(), Score: 0.9}
	recRepo := &fakeRecRepo{byStudent: map[uuid.UUID][]domain.Recommendation{
		studentID: {stale},
	}}

	event := eventFixture("only", vec(0.5, 0.5), time.Now())
	svc := newService(studentRepo, &fakeEventRepo{events: []domain.Event{event}}, recRepo)

	if _, err := svc.RecalculateForStudent(context.Background(), studentID, 0.0, 0); err != nil {
		t.Fatalf("RecalculateForStudent error: %v", err)
	}

	recs := recRepo.byStudent[studentID]
	if len(recs) != 1 {
		t.Fatalf("persisted %d rows, want exactly 1", len(recs))
	}
	if recs[0].EventID == stale.EventID {
		t.Error("stale recommendation survived the replace")
	}
}

func TestRecalculateForStudent_Limit(t *testing.T) {
	studentID := uuid.New()
	studentRepo := &fakeStudentRepo{students: map[uuid.UUID]domain.Student{
		studentID: {ID: studentID, ProfileEmbedding: vec(1, 0)},
	}}

	base := time.Now()
	events := []domain.Event{
		eventFixture("a", vec(1, 0), base),
		eventFixture("b", vec(0.9, 0.1), base.Add(time.Second)),
		eventFixture("c", vec(0.8, 0.2), base.Add(2*time.Second)),
	}

	recRepo := &fakeRecRepo{}
	svc := newService(studentRepo, &fakeEventRepo{events: events}, recRepo)

	stats, err := svc.RecalculateForStudent(context.Background(), studentID, 0.0, 2)
	if err != nil {
		t.Fatalf("RecalculateForStudent error: %v", err)
	}
	if stats.TotalSaved != 2 {
		t.Errorf("total saved = %d, want 2", stats.TotalSaved)
	}
	if len(recRepo.byStudent[studentID]) != 2 {
		t.Errorf("persisted %d rows, want 2", len(recRepo.byStudent[studentID]))
	}
}

func TestRecalculateForStudent_NoEmbedding(t *testing.T) {
	studentID := uuid.New()
	studentRepo := &fakeStudentRepo{students: map[uuid.UUID]domain.Student{
		studentID: {ID: studentID},
	}}
	recRepo := &fakeRecRepo{}

	svc := newService(studentRepo, &fakeEventRepo{}, recRepo)

	stats, err := svc.RecalculateForStudent(context.Background(), studentID, 0.0, 0)
	if err != nil {
		t.Fatalf("missing embedding must not be an error, got %v", err)
	}
	if stats.TotalSaved != 0 || stats.EventsProcessed != 0 {
		t.Errorf("stats = %+v, want all zero", stats)
	}
	if recRepo.replaces != 0 {
		t.Error("replace must not run for a student without an embedding")
	}
}

func TestRecalculateForStudent_StudentNotFound(t *testing.T) {
	svc := newService(&fakeStudentRepo{}, &fakeEventRepo{}, &fakeRecRepo{})

	_, err := svc.RecalculateForStudent(context.Background(), uuid.New(), 0.0, 0)
	if !apperror.IsNotFound(err) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestRecalculateForStudent_LockedIsConflict(t *testing.T) {
	studentID := uuid.New()
	studentRepo := &fakeStudentRepo{students: map[uuid.UUID]domain.Student{
		studentID: {ID: studentID, ProfileEmbedding: vec(1, 0)},
	}}

	locker := &fakeLocker{held: map[string]bool{lockKey(studentID): true}}
	svc := NewRecommendService(studentRepo, &fakeEventRepo{}, &fakeRecRepo{}, locker, nil, 10)

	_, err := svc.RecalculateForStudent(context.Background(), studentID, 0.0, 0)
	if !apperror.IsConflict(err) {
		t.Errorf("expected Conflict while lock is held, got %v", err)
	}
}

func TestRecalculateAll(t *testing.T) {
	withEmbedding := uuid.New()
	withoutEmbedding := uuid.New()
	studentRepo := &fakeStudentRepo{students: map[uuid.UUID]domain.Student{
		withEmbedding:    {ID: withEmbedding, ProfileEmbedding: vec(1, 0)},
		withoutEmbedding: {ID: withoutEmbedding},
	}}

	events := []domain.Event{eventFixture("e", vec(1, 0), time.Now())}
	recRepo := &fakeRecRepo{}
	svc := newService(studentRepo, &fakeEventRepo{events: events}, recRepo)

	stats, err := svc.RecalculateAll(context.Background(), 0.0, 500)
	if err != nil {
		t.Fatalf("RecalculateAll error: %v", err)
	}

	if stats.StudentsProcessed != 1 {
		t.Errorf("students processed = %d, want 1 (only the embedded student)", stats.StudentsProcessed)
	}
	if stats.TotalSaved != 1 {
		t.Errorf("total saved = %d, want 1", stats.TotalSaved)
	}
}

func TestRecalculateAll_Cancelled(t *testing.T) {
	studentID := uuid.New()
	studentRepo := &fakeStudentRepo{students: map[uuid.UUID]domain.Student{
		studentID: {ID: studentID, ProfileEmbedding: vec(1, 0)},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := newService(studentRepo, &fakeEventRepo{}, &fakeRecRepo{})
	if _, err := svc.RecalculateAll(ctx, 0.0, 0); err == nil {
		t.Error("cancelled context should surface an error")
	}
}
