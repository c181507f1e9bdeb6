package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"campusEvents/domain"
	"campusEvents/pkg/apperror"

	"github.com/google/uuid"
)

type fakeEventStore struct {
	created []domain.Event
}

func (f *fakeEventStore) Exists(_ context.Context, title string, startDate *time.Time, link string) (bool, error) {
	for _, e := range f.created {
		if e.Title != title {
			continue
		}
		sameDate := (e.StartDate == nil) == (startDate == nil)
		if e.StartDate != nil && startDate != nil {
			sameDate = e.StartDate.Equal(*startDate)
		}
		hasDate := startDate != nil
		hasLink := link != ""
		switch {
		case hasDate && hasLink:
			if sameDate && e.Link == link {
				return true, nil
			}
		case hasDate:
			if sameDate {
				return true, nil
			}
		case hasLink:
			if e.Link == link {
				return true, nil
			}
		default:
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEventStore) Create(_ context.Context, event *domain.Event) error {
	event.ID = uuid.New()
	f.created = append(f.created, *event)
	return nil
}

type fakeStudentStore struct {
	students map[string]domain.Student
}

func (f *fakeStudentStore) FindParticipantIDs(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(f.students))
	for id := range f.students {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeStudentStore) CreateBatch(_ context.Context, students []domain.Student) error {
	if f.students == nil {
		f.students = make(map[string]domain.Student)
	}
	for _, s := range students {
		f.students[s.ParticipantID] = s
	}
	return nil
}

type fakeDirectionStore struct {
	directions []domain.Direction
}

func (f *fakeDirectionStore) FindAll(_ context.Context) ([]domain.Direction, error) {
	return f.directions, nil
}

func (f *fakeDirectionStore) Create(_ context.Context, title string) (domain.Direction, error) {
	d := domain.Direction{ID: uuid.New(), Title: title}
	f.directions = append(f.directions, d)
	return d, nil
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadEventsJSON_SkipsDuplicates(t *testing.T) {
	payload := `[
		{"title": "Хакатон", "start_date": "15.03.2025", "link": "https://example.org/1"},
		{"title": "Хакатон", "start_date": "15.03.2025", "link": "https://example.org/1"},
		{"title": "Лекция", "link": "https://example.org/2"}
	]`
	path := writeFile(t, "events.json", payload)

	store := &fakeEventStore{}
	loader := NewEventLoader(store, nil, nil)

	stats, err := loader.LoadJSON(context.Background(), path, LoadEventsOptions{})
	if err != nil {
		t.Fatalf("LoadJSON error: %v", err)
	}

	if stats.Added != 2 || stats.Skipped != 1 || stats.Total != 3 {
		t.Errorf("stats = %+v, want added=2 skipped=1 total=3", stats)
	}

	// second run over the same file adds nothing
	stats, err = loader.LoadJSON(context.Background(), path, LoadEventsOptions{})
	if err != nil {
		t.Fatalf("second LoadJSON error: %v", err)
	}
	if stats.Added != 0 || stats.Skipped != 3 {
		t.Errorf("second run stats = %+v, want added=0 skipped=3", stats)
	}
}

func TestLoadEventsJSON_Limit(t *testing.T) {
	payload := `[
		{"title": "Один"},
		{"title": "Два"},
		{"title": "Три"}
	]`
	path := writeFile(t, "events.json", payload)

	store := &fakeEventStore{}
	loader := NewEventLoader(store, nil, nil)

	stats, err := loader.LoadJSON(context.Background(), path, LoadEventsOptions{Limit: 2})
	if err != nil {
		t.Fatalf("LoadJSON error: %v", err)
	}
	if stats.Added != 2 || stats.Total != 3 {
		t.Errorf("stats = %+v, want added=2 total=3", stats)
	}
}

func TestLoadEventsJSON_MissingFile(t *testing.T) {
	loader := NewEventLoader(&fakeEventStore{}, nil, nil)

	_, err := loader.LoadJSON(context.Background(), filepath.Join(t.TempDir(), "absent.json"), LoadEventsOptions{})
	if !apperror.IsNotFound(err) {
		t.Errorf("expected NotFound for a missing file, got %v", err)
	}
}

func TestLoadStudentsJSON_Idempotent(t *testing.T) {
	payload := `[
		{"participant_id": "P-1", "specialty": "Информатика", "profile": "x", "vector": [0.1, 0.2]},
		{"participant_id": "P-2", "specialty": "информатика", "profile": "y", "vector": [0.3, 0.4]},
		{"participant_id": "P-3", "profile": "z", "vector": []}
	]`
	path := writeFile(t, "students.json", payload)

	students := &fakeStudentStore{}
	directions := &fakeDirectionStore{}
	loader := NewStudentLoader(students, directions, "Университет", 100)

	stats, err := loader.LoadJSON(context.Background(), path, 0)
	if err != nil {
		t.Fatalf("LoadJSON error: %v", err)
	}

	if stats.Added != 2 || stats.Skipped != 1 {
		t.Errorf("stats = %+v, want added=2 skipped=1 (empty vector skipped)", stats)
	}
	if len(directions.directions) != 1 {
		t.Errorf("case-insensitive specialty resolution created %d directions, want 1", len(directions.directions))
	}
	if got := students.students["P-1"].Institution; got != "Университет" {
		t.Errorf("default institution not substituted: %q", got)
	}

	stats, err = loader.LoadJSON(context.Background(), path, 0)
	if err != nil {
		t.Fatalf("second LoadJSON error: %v", err)
	}
	if stats.Added != 0 {
		t.Errorf("second run added %d, want 0", stats.Added)
	}
	if len(students.students) != 2 {
		t.Errorf("store holds %d students after the second run, want 2", len(students.students))
	}
}

func TestLoadStudentsJSON_Limit(t *testing.T) {
	var parts []string
	for _, id := range []string{"A", "B", "C", "D"} {
		parts = append(parts, `{"participant_id": "`+id+`", "profile": "p", "vector": [0.5]}`)
	}
	path := writeFile(t, "students.json", "["+strings.Join(parts, ",")+"]")

	students := &fakeStudentStore{}
	loader := NewStudentLoader(students, &fakeDirectionStore{}, "Университет", 2)

	stats, err := loader.LoadJSON(context.Background(), path, 3)
	if err != nil {
		t.Fatalf("LoadJSON error: %v", err)
	}
	if stats.Added != 3 || stats.Total != 4 {
		t.Errorf("stats = %+v, want added=3 total=4", stats)
	}
}

func TestNormalizeScore(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"650", 650, true},
		{"650.4", 650, true},
		{"649,6", 650, true},
		{"200", 200, true},
		{"800", 800, true},
		{"199", 0, false},
		{"801", 0, false},
		{"-", 0, false},
		{"", 0, false},
		{"nan", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range cases {
		got, ok := NormalizeScore(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("NormalizeScore(%q) = (%d, %v), want (%d, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestProfileDescription(t *testing.T) {
	competencies := []Competency{
		{Name: "Лидерство", Score: 700},
		{Name: "Планирование", Score: 500},
		{Name: "Коммуникация", Score: 300},
	}

	first := ProfileDescription("Информатика", competencies)
	second := ProfileDescription("Информатика", competencies)
	if first != second {
		t.Error("profile text must be deterministic for identical input")
	}

	if !strings.Contains(first, "Специальность: Информатика.") {
		t.Error("specialty missing from profile")
	}
	if !strings.Contains(first, "Лидерство") || !strings.Contains(first, "Сильные стороны") {
		t.Error("motivator section missing")
	}
	if !strings.Contains(first, "Коммуникация") || !strings.Contains(first, "Зоны развития") {
		t.Error("demotivator section missing")
	}

	if got := ProfileDescription("", nil); got != "Студент с базовым профилем компетенций." {
		t.Errorf("empty profile fallback wrong: %q", got)
	}
}
