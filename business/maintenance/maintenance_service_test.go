package maintenance

import (
	"context"
	"errors"
	"testing"

	"campusEvents/business/clustering"
	"campusEvents/business/ingest"
	"campusEvents/business/recommend"
	"campusEvents/domain"
	"campusEvents/pkg/apperror"
)

type fakeResetter struct {
	calls int
	err   error
}

func (f *fakeResetter) Reset(_ context.Context) error {
	f.calls++
	return f.err
}

type fakeRecalculator struct {
	stats recommend.RecalculateStats
	err   error
}

func (f *fakeRecalculator) RecalculateAll(_ context.Context, _ float64, _ int) (recommend.RecalculateStats, error) {
	return f.stats, f.err
}

type fakeStudentLoader struct {
	stats ingest.LoadStats
}

func (f *fakeStudentLoader) LoadJSON(_ context.Context, _ string, _ int) (ingest.LoadStats, error) {
	return f.stats, nil
}

type fakeClusterizer struct {
	stats clustering.ClusterizeStats
}

func (f *fakeClusterizer) ClusterizeDirections(_ context.Context, _ []string, _ bool) (clustering.ClusterizeStats, error) {
	return f.stats, nil
}

type fakeRunRecorder struct {
	runs []domain.MaintenanceRun
}

func (f *fakeRunRecorder) Record(_ context.Context, run *domain.MaintenanceRun) error {
	f.runs = append(f.runs, *run)
	return nil
}

func TestResetDatabase_TokenGate(t *testing.T) {
	resetter := &fakeResetter{}
	svc := NewService(nil, nil, nil, nil, nil, nil, nil, resetter, nil, Paths{}, Defaults{})

	for _, token := range []string{"", "reset", "RESET ", "yes", "CONFIRM"} {
		_, err := svc.ResetDatabase(context.Background(), token)
		if !apperror.IsConfirmation(err) {
			t.Errorf("token %q: expected ConfirmationError, got %v", token, err)
		}
	}
	if resetter.calls != 0 {
		t.Fatalf("resetter ran %d times without a valid token", resetter.calls)
	}

	result, err := svc.ResetDatabase(context.Background(), ResetToken)
	if err != nil {
		t.Fatalf("ResetDatabase with valid token: %v", err)
	}
	if resetter.calls != 1 {
		t.Errorf("resetter ran %d times, want 1", resetter.calls)
	}
	if result.Message == "" || result.Log == "" {
		t.Errorf("result must carry message and log, got %+v", result)
	}
}

func TestResetDatabase_ErrorRecorded(t *testing.T) {
	resetter := &fakeResetter{err: errors.New("boom")}
	runs := &fakeRunRecorder{}
	svc := NewService(nil, nil, nil, nil, nil, nil, nil, resetter, runs, Paths{}, Defaults{})

	_, err := svc.ResetDatabase(context.Background(), ResetToken)
	if err == nil {
		t.Fatal("expected error from resetter")
	}

	if len(runs.runs) != 1 {
		t.Fatalf("recorded %d runs, want 1", len(runs.runs))
	}
	if runs.runs[0].Status != "error" || runs.runs[0].Operation != OpResetDatabase {
		t.Errorf("unexpected audit row: %+v", runs.runs[0])
	}
}

func TestRecalculate_ResultShape(t *testing.T) {
	recalc := &fakeRecalculator{stats: recommend.RecalculateStats{
		TotalCalculated:   50,
		TotalSaved:        40,
		StudentsProcessed: 5,
	}}
	runs := &fakeRunRecorder{}
	svc := NewService(nil, nil, nil, nil, nil, nil, recalc, nil, runs, Paths{}, Defaults{})

	result, err := svc.Recalculate(context.Background(), 0.0, 1000)
	if err != nil {
		t.Fatalf("Recalculate error: %v", err)
	}

	if result.Stats["total_saved"] != 40 {
		t.Errorf("stats missing total_saved: %+v", result.Stats)
	}
	if result.Log == "" {
		t.Error("result must carry an execution log")
	}

	if len(runs.runs) != 1 || runs.runs[0].Status != "success" {
		t.Errorf("audit row not recorded: %+v", runs.runs)
	}
}

func TestLoadStudentsJSON_PartialSuccessIsSuccess(t *testing.T) {
	loader := &fakeStudentLoader{stats: ingest.LoadStats{Added: 40, Skipped: 10, Total: 50}}
	runs := &fakeRunRecorder{}
	svc := NewService(nil, nil, nil, loader, nil, nil, nil, nil, runs, Paths{StudentsOutput: "students.json"}, Defaults{})

	result, err := svc.LoadStudentsJSON(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("LoadStudentsJSON error: %v", err)
	}

	if result.Message != "added 40, skipped 10 of 50 students" {
		t.Errorf("message = %q", result.Message)
	}
	if result.Stats["skipped"] != 10 {
		t.Errorf("skipped count missing from stats: %+v", result.Stats)
	}
	if runs.runs[0].Operation != OpLoadStudents {
		t.Errorf("audit operation = %q", runs.runs[0].Operation)
	}
}

func TestInfo(t *testing.T) {
	svc := NewService(nil, nil, nil, nil, nil, &fakeClusterizer{}, nil, nil, nil,
		Paths{EventsInput: "sources/events.csv", EventsOutput: "results/events.json"},
		Defaults{ClusterTopK: 3, SimilarityThreshold: 0.35},
	)

	result := svc.Info()
	if result.Stats["events_input_file"] != "sources/events.csv" {
		t.Errorf("paths missing from info: %+v", result.Stats)
	}
	if result.Stats["cluster_top_k_default"] != 3 {
		t.Errorf("defaults missing from info: %+v", result.Stats)
	}
}
