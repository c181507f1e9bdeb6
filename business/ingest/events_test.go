package ingest

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in      string
		want    string // empty means nil
		invalid bool
	}{
		{in: "15.03.2025 18:30", want: "2025-03-15T18:30:00"},
		{in: "15.03.2025", want: "2025-03-15T00:00:00"},
		{in: "2025-03-15 18:30:00", want: "2025-03-15T18:30:00"},
		{in: "2025-03-15", want: "2025-03-15T00:00:00"},
		{in: "15/03/2025", want: "2025-03-15T00:00:00"},
		{in: "", want: ""},
		{in: "  ", want: ""},
		{in: "None", want: ""},
		{in: "nan", want: ""},
		{in: "не дата", invalid: true},
		{in: "32.13.2025", invalid: true},
	}

	for _, tc := range cases {
		got, ok := ParseDate(tc.in)
		if tc.invalid {
			if ok {
				t.Errorf("ParseDate(%q) should be rejected", tc.in)
			}
			continue
		}
		if !ok {
			t.Errorf("ParseDate(%q) unexpectedly rejected", tc.in)
			continue
		}
		if tc.want == "" {
			if got != nil {
				t.Errorf("ParseDate(%q) = %v, want nil", tc.in, got)
			}
			continue
		}
		if got == nil || got.Format("2006-01-02T15:04:05") != tc.want {
			t.Errorf("ParseDate(%q) = %v, want %s", tc.in, got, tc.want)
		}
	}
}

func TestIsActiveOn(t *testing.T) {
	today := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	past := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	future := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	if !IsActiveOn(today, nil, nil) {
		t.Error("event without dates must stay active")
	}
	if IsActiveOn(today, &past, &past) {
		t.Error("event ended in the past must be inactive")
	}
	if !IsActiveOn(today, &past, &future) {
		t.Error("running event must be active")
	}
	if !IsActiveOn(today, &future, nil) {
		t.Error("upcoming event must be active")
	}
	if IsActiveOn(today, &past, nil) {
		t.Error("started-in-the-past event without end date must be inactive")
	}
}

func TestProcessCSV(t *testing.T) {
	var rows strings.Builder
	rows.WriteString("title,link,description,start_date,end_date,image\n")
	for i := 0; i < 8; i++ {
		rows.WriteString("Хакатон,https://example.org/1,Описание мероприятия,15.03.2025,16.03.2025,\n")
	}
	// malformed: non-empty start date that no layout accepts
	rows.WriteString("Сломанное,https://example.org/2,Описание,когда-нибудь,,\n")
	// malformed: no title
	rows.WriteString(",https://example.org/3,Описание,15.03.2025,,\n")

	dir := t.TempDir()
	input := filepath.Join(dir, "events.csv")
	output := filepath.Join(dir, "events.json")
	if err := os.WriteFile(input, []byte(rows.String()), 0o644); err != nil {
		t.Fatal(err)
	}

	pipeline := NewEventPipeline(nil)
	stats, err := pipeline.ProcessCSV(context.Background(), input, output)
	if err != nil {
		t.Fatalf("ProcessCSV error: %v", err)
	}

	if stats.Processed != 8 {
		t.Errorf("processed = %d, want 8", stats.Processed)
	}
	if stats.Malformed != 2 {
		t.Errorf("malformed = %d, want 2", stats.Malformed)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}

	var records []EventRecord
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("output is not valid json: %v", err)
	}
	if len(records) != 8 {
		t.Fatalf("output holds %d records, want 8", len(records))
	}
	if records[0].Title != "Хакатон" {
		t.Errorf("title not preserved: %q", records[0].Title)
	}
	if records[0].StartDate == nil || records[0].StartDate.Day() != 15 {
		t.Errorf("start date not parsed: %v", records[0].StartDate)
	}
}

func TestNormalizeFormat(t *testing.T) {
	cases := map[string]string{
		"true":    "онлайн",
		"True":    "онлайн",
		"онлайн":  "онлайн",
		"false":   "офлайн",
		"offline": "офлайн",
		"":        "",
		"maybe":   "",
	}
	for in, want := range cases {
		if got := normalizeFormat(in); got != want {
			t.Errorf("normalizeFormat(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestShortDescription(t *testing.T) {
	if got := shortDescription("Короткое описание."); got != "Короткое описание." {
		t.Errorf("short text must pass through, got %q", got)
	}

	long := strings.Repeat("слово ", 200)
	got := shortDescription(long)
	if len([]rune(got)) > shortDescriptionLimit+1 {
		t.Errorf("short description too long: %d runes", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "…") {
		t.Error("truncated description must end with an ellipsis")
	}
}
