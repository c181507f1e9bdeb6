package ingest

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"campusEvents/pkg/apperror"
	"campusEvents/pkg/logger"
)

const shortDescriptionLimit = 300

// Embedder turns texts into fixed-width vectors. Dimensions reports the
// width every returned vector has.
type Embedder interface {
	Generate(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// Timestamp marshals without a timezone so processed files stay readable,
// and accepts every layout the raw sources use when read back.
type Timestamp struct {
	time.Time
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format("2006-01-02 15:04:05"))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	parsed, ok := ParseDate(raw)
	if !ok {
		return fmt.Errorf("unsupported date value %q", raw)
	}
	if parsed != nil {
		t.Time = *parsed
	}
	return nil
}

// EventRecord is one normalized event row as stored in the processed
// JSON file between the processing and loading stages.
type EventRecord struct {
	Title            string     `json:"title"`
	ShortDescription string     `json:"short_description,omitempty"`
	Description      string     `json:"description,omitempty"`
	Format           string     `json:"format,omitempty"`
	StartDate        *Timestamp `json:"start_date,omitempty"`
	EndDate          *Timestamp `json:"end_date,omitempty"`
	Link             string     `json:"link,omitempty"`
	ImageURL         string     `json:"image_url,omitempty"`
	VectorEmbedding  []float32  `json:"vector_embedding,omitempty"`
}

type ProcessEventsStats struct {
	Processed int    `json:"processed"`
	Malformed int    `json:"malformed"`
	InputFile string `json:"input_file"`
	OutputFile string `json:"output_file"`
}

// EventPipeline converts raw event CSV exports into normalized JSON.
type EventPipeline struct {
	embedder Embedder
}

// NewEventPipeline builds the processing stage. A nil embedder is allowed
// and leaves vector_embedding empty for a later pass.
func NewEventPipeline(embedder Embedder) *EventPipeline {
	return &EventPipeline{embedder: embedder}
}

// ProcessCSV reads the raw export, normalizes each row and writes the
// result as indented JSON. Rows with a missing title or an unparsable
// non-empty date are excluded and counted as malformed.
func (p *EventPipeline) ProcessCSV(ctx context.Context, inputPath, outputPath string) (ProcessEventsStats, error) {
	stats := ProcessEventsStats{InputFile: inputPath, OutputFile: outputPath}

	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("context error: %w", err)
	}

	file, err := os.Open(inputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, apperror.NotFound(fmt.Sprintf("file not found: %s", inputPath))
		}
		return stats, fmt.Errorf("failed to open %s: %w", inputPath, err)
	}
	defer file.Close()

	records, malformed, err := readEventRows(file)
	if err != nil {
		return stats, err
	}
	stats.Malformed = malformed

	if p.embedder != nil && len(records) > 0 {
		texts := make([]string, len(records))
		for i, rec := range records {
			texts[i] = embeddingText(rec)
		}

		vectors, err := p.embedder.Generate(ctx, texts)
		if err != nil {
			return stats, apperror.Dependency("failed to embed events", err)
		}
		if len(vectors) != len(records) {
			return stats, fmt.Errorf("embedder returned %d vectors for %d events", len(vectors), len(records))
		}
		for i := range records {
			records[i].VectorEmbedding = vectors[i]
		}
	}

	if err := writeJSONFile(outputPath, records); err != nil {
		return stats, err
	}

	stats.Processed = len(records)
	logger.Info("processed events csv",
		"input", inputPath,
		"output", outputPath,
		"processed", stats.Processed,
		"malformed", stats.Malformed,
	)

	return stats, nil
}

func readEventRows(r io.Reader) ([]EventRecord, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, apperror.Validation("csv file is empty or has no header")
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns["title"]; !ok {
		return nil, 0, apperror.Validation("csv file has no title column")
	}

	cell := func(row []string, names ...string) string {
		for _, name := range names {
			idx, ok := columns[name]
			if !ok || idx >= len(row) {
				continue
			}
			if v := strings.TrimSpace(row[idx]); v != "" {
				return v
			}
		}
		return ""
	}

	var records []EventRecord
	malformed := 0

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			malformed++
			continue
		}

		title := cell(row, "title")
		if title == "" {
			malformed++
			continue
		}

		start, ok := ParseDate(cell(row, "start_date"))
		if !ok {
			malformed++
			continue
		}
		end, ok := ParseDate(cell(row, "end_date"))
		if !ok {
			malformed++
			continue
		}

		description := cell(row, "description")

		rec := EventRecord{
			Title:            title,
			ShortDescription: shortDescription(description),
			Description:      description,
			Format:           normalizeFormat(cell(row, "online", "format")),
			Link:             cell(row, "link"),
			ImageURL:         cell(row, "image", "image_url"),
		}
		if start != nil {
			rec.StartDate = &Timestamp{Time: *start}
		}
		if end != nil {
			rec.EndDate = &Timestamp{Time: *end}
		}

		records = append(records, rec)
	}

	return records, malformed, nil
}

// normalizeFormat maps the raw online marker onto the format label the
// store uses.
func normalizeFormat(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "онлайн", "online":
		return "онлайн"
	case "false", "0", "no", "офлайн", "offline":
		return "офлайн"
	default:
		return ""
	}
}

// shortDescription keeps the first sentences of the description up to a
// fixed rune length, cutting on a word boundary.
func shortDescription(description string) string {
	description = strings.TrimSpace(description)
	if description == "" {
		return ""
	}
	if utf8.RuneCountInString(description) <= shortDescriptionLimit {
		return description
	}

	runes := []rune(description)
	cut := shortDescriptionLimit
	for i := cut; i > cut/2; i-- {
		if runes[i] == ' ' {
			cut = i
			break
		}
	}

	return strings.TrimSpace(string(runes[:cut])) + "…"
}

func embeddingText(rec EventRecord) string {
	parts := []string{rec.Title}
	if rec.Description != "" {
		parts = append(parts, rec.Description)
	}
	return strings.Join(parts, ". ")
}

func writeJSONFile(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
