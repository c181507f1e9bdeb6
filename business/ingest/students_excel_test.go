package ingest

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

type fakeEmbedder struct {
	calls int
}

func (f *fakeEmbedder) Generate(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, 0, 0}
	}
	return vectors, nil
}

func (f *fakeEmbedder) Dimensions() int { return 3 }

func writeAssessmentWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	// exports carry preamble rows above the header
	if err := f.SetSheetRow(sheet, "A1", &[]any{"Отчёт по оценке"}); err != nil {
		t.Fatal(err)
	}
	header := []any{
		columnAcademicYear, columnParticipantID, columnInstitution, columnSpecialty,
		"Лидерство", "Коммуникация",
	}
	if err := f.SetSheetRow(sheet, "A3", &header); err != nil {
		t.Fatal(err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, 4+i)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}

	path := filepath.Join(t.TempDir(), "students.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProcessExcel(t *testing.T) {
	input := writeAssessmentWorkbook(t, [][]any{
		{"2024/2025", "P-1", "ТюмГУ", "Информатика", 700, 300},
		{"2024/2025", "P-2", "Другой вуз", "История", 650, 500},
		{"2024/2025", "", "ТюмГУ", "Физика", 600, 400},
		{"2024/2025", "P-3", "ТюмГУ", "Математика", "-", "nan"},
	})
	output := filepath.Join(t.TempDir(), "students.json")

	embedder := &fakeEmbedder{}
	pipeline := NewStudentPipeline(embedder, "ТюмГУ")

	stats, err := pipeline.ProcessExcel(context.Background(), input, output)
	if err != nil {
		t.Fatalf("ProcessExcel error: %v", err)
	}

	// P-2 is another institution, the third row has no participant id,
	// P-3 has no valid score
	if stats.Processed != 1 || stats.Skipped != 3 {
		t.Errorf("stats = %+v, want processed=1 skipped=3", stats)
	}
	if embedder.calls != 1 {
		t.Errorf("embedder called %d times, want 1 batch", embedder.calls)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	var records []StudentRecord
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("output is not valid json: %v", err)
	}
	if len(records) != 1 || records[0].ParticipantID != "P-1" {
		t.Fatalf("unexpected records: %+v", records)
	}
	if records[0].Profile == "" || len(records[0].Vector) != 3 {
		t.Errorf("profile or vector missing: %+v", records[0])
	}
}

func TestPreprocessExcelAndTitles(t *testing.T) {
	input := writeAssessmentWorkbook(t, [][]any{
		{"2023/2024", "P-1", "ТюмГУ", "Информатика", 700, 300},
		{"2024/2025", "P-1", "ТюмГУ", "Прикладная информатика", 700, 300},
		{"2024/2025", "P-2", "ТюмГУ", "отсутствует", 650, 500},
		{"2024/2025", "P-3", "Другой вуз", "История", 650, 500},
		{"2024/2025", "P-4", "ТюмГУ", "Информатика", 600, 400},
	})
	output := filepath.Join(t.TempDir(), "filtered.xlsx")

	pre := NewDirectionPreprocessor("ТюмГУ")
	stats, err := pre.PreprocessExcel(input, output)
	if err != nil {
		t.Fatalf("PreprocessExcel error: %v", err)
	}

	// P-1 deduped to its latest year, P-2 dropped for a missing
	// specialty, P-3 filtered by institution
	if stats.Rows != 2 {
		t.Errorf("rows = %d, want 2", stats.Rows)
	}

	titles, err := DirectionTitles(output)
	if err != nil {
		t.Fatalf("DirectionTitles error: %v", err)
	}
	want := map[string]bool{"Прикладная информатика": true, "Информатика": true}
	if len(titles) != 2 {
		t.Fatalf("titles = %v, want 2 distinct", titles)
	}
	for _, title := range titles {
		if !want[title] {
			t.Errorf("unexpected title %q", title)
		}
	}
}
