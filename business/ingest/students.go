package ingest

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"campusEvents/pkg/apperror"
	"campusEvents/pkg/logger"

	"github.com/xuri/excelize/v2"
)

const embeddingBatchSize = 32

// Column headers of the assessment export. Competency order follows the
// source file and drives the deterministic profile text.
const (
	columnParticipantID = "ID участника проекта"
	columnSpecialty     = "Специальность"
	columnInstitution   = "Учебное заведение"
	columnAcademicYear  = "Учебный год"
)

var competencyColumns = []string{
	"Анализ информации",
	"Планирование",
	"Ориентация на результат",
	"Стрессоустойчивость",
	"Партнерство/Сотрудничество",
	"Следование правилам и процедурам",
	"Саморазвитие",
	"Лидерство",
	"Эмоциональный интеллект",
	"Клиентоориентированность",
	"Коммуникация",
	"Пассивный словарный запас",
	"Автономия",
	"Альтруизм",
	"Вызов",
	"Заработок",
	"Карьера",
	"Креативность",
	"Отношения",
	"Признание",
	"Принадлежность",
	"Саморазвитие.1",
	"Смысл",
	"Сотрудничество",
	"Стабильность",
	"Традиция",
	"Управление",
	"Условия труда",
}

// Competency is one scored dimension of a student's assessment.
type Competency struct {
	Name  string
	Score int
}

// StudentRecord is one normalized student row in the processed JSON file.
type StudentRecord struct {
	ParticipantID string    `json:"participant_id"`
	Specialty     string    `json:"specialty,omitempty"`
	Profile       string    `json:"profile"`
	Vector        []float32 `json:"vector,omitempty"`
}

type ProcessStudentsStats struct {
	Processed  int    `json:"processed"`
	Skipped    int    `json:"skipped"`
	InputFile  string `json:"input_file"`
	OutputFile string `json:"output_file"`
}

// StudentPipeline converts raw assessment Excel exports into normalized
// JSON records with profile embeddings.
type StudentPipeline struct {
	embedder          Embedder
	targetInstitution string
}

// NewStudentPipeline builds the student processing stage. An empty
// targetInstitution disables the institution filter.
func NewStudentPipeline(embedder Embedder, targetInstitution string) *StudentPipeline {
	return &StudentPipeline{
		embedder:          embedder,
		targetInstitution: targetInstitution,
	}
}

// ProcessExcel reads the assessment export, builds a profile text per
// student and embeds the profiles in batches. Rows without a participant
// id or without a single valid competency score are counted as skipped.
func (p *StudentPipeline) ProcessExcel(ctx context.Context, inputPath, outputPath string) (ProcessStudentsStats, error) {
	stats := ProcessStudentsStats{InputFile: inputPath, OutputFile: outputPath}

	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("context error: %w", err)
	}

	table, err := readExcelTable(inputPath, []string{columnParticipantID, columnSpecialty})
	if err != nil {
		return stats, err
	}

	records := make([]StudentRecord, 0, len(table.rows))
	seen := make(map[string]struct{}, len(table.rows))

	for _, row := range table.rows {
		if p.targetInstitution != "" {
			if table.cell(row, columnInstitution) != p.targetInstitution {
				stats.Skipped++
				continue
			}
		}

		participantID := table.cell(row, columnParticipantID)
		if participantID == "" {
			stats.Skipped++
			continue
		}
		if _, dup := seen[participantID]; dup {
			stats.Skipped++
			continue
		}

		competencies := extractCompetencies(table, row)
		if len(competencies) == 0 {
			stats.Skipped++
			continue
		}

		specialty := table.cell(row, columnSpecialty)
		seen[participantID] = struct{}{}

		records = append(records, StudentRecord{
			ParticipantID: participantID,
			Specialty:     specialty,
			Profile:       ProfileDescription(specialty, competencies),
		})
	}

	if len(records) == 0 {
		return stats, apperror.Validation(fmt.Sprintf("no usable student rows in %s", inputPath))
	}

	if err := p.embedProfiles(ctx, records); err != nil {
		return stats, err
	}

	if err := writeJSONFile(outputPath, records); err != nil {
		return stats, err
	}

	stats.Processed = len(records)
	logger.Info("processed students excel",
		"input", inputPath,
		"output", outputPath,
		"processed", stats.Processed,
		"skipped", stats.Skipped,
	)

	return stats, nil
}

func (p *StudentPipeline) embedProfiles(ctx context.Context, records []StudentRecord) error {
	for start := 0; start < len(records); start += embeddingBatchSize {
		end := start + embeddingBatchSize
		if end > len(records) {
			end = len(records)
		}

		texts := make([]string, 0, end-start)
		for _, rec := range records[start:end] {
			texts = append(texts, rec.Profile)
		}

		vectors, err := p.embedder.Generate(ctx, texts)
		if err != nil {
			return apperror.Dependency("failed to embed student profiles", err)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("embedder returned %d vectors for %d profiles", len(vectors), len(texts))
		}

		for i := range vectors {
			records[start+i].Vector = vectors[i]
		}
	}

	return nil
}

// NormalizeScore validates a raw competency cell against the 200..800
// t-score band the assessment uses.
func NormalizeScore(value string) (int, bool) {
	value = strings.TrimSpace(value)
	switch strings.ToLower(value) {
	case "", "-", "none", "null", "nan":
		return 0, false
	}

	score, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	if score < 200 || score > 800 {
		return 0, false
	}

	return int(score + 0.5), true
}

func extractCompetencies(table *excelTable, row []string) []Competency {
	competencies := make([]Competency, 0, len(competencyColumns))
	for _, name := range competencyColumns {
		score, ok := NormalizeScore(table.cell(row, name))
		if !ok {
			continue
		}
		competencies = append(competencies, Competency{Name: name, Score: score})
	}
	return competencies
}

// Score bands of the assessment scale.
func scoreBand(score int) string {
	switch {
	case score >= 600:
		return "motivator"
	case score >= 400:
		return "neutral"
	default:
		return "demotivator"
	}
}

// ProfileDescription renders a student's specialty and competency scores
// into the text that gets embedded. Identical inputs always produce
// identical text.
func ProfileDescription(specialty string, competencies []Competency) string {
	var motivators, demotivators, neutrals []string
	for _, c := range competencies {
		switch scoreBand(c.Score) {
		case "motivator":
			motivators = append(motivators, c.Name)
		case "demotivator":
			demotivators = append(demotivators, c.Name)
		default:
			neutrals = append(neutrals, c.Name)
		}
	}

	var parts []string
	if specialty != "" {
		parts = append(parts, fmt.Sprintf("Специальность: %s.", specialty))
	}
	if len(motivators) > 0 {
		parts = append(parts, fmt.Sprintf(
			"Сильные стороны и конкурентные преимущества: %s. Эти компетенции развиты выше среднего уровня и являются ресурсной зоной.",
			strings.Join(motivators, ", "),
		))
	}
	if len(demotivators) > 0 {
		parts = append(parts, fmt.Sprintf(
			"Зоны развития: %s. Эти компетенции требуют дополнительного развития и проявляются ниже необходимого уровня.",
			strings.Join(demotivators, ", "),
		))
	}
	if len(neutrals) > 0 {
		shown := neutrals
		suffix := ""
		if len(neutrals) > 8 {
			shown = neutrals[:8]
			suffix = fmt.Sprintf(" и еще %d компетенций", len(neutrals)-8)
		}
		parts = append(parts, fmt.Sprintf(
			"Компетенции со средним уровнем развития: %s%s. Эти компетенции имеют потенциал для развития.",
			strings.Join(shown, ", "), suffix,
		))
	}

	if len(parts) == 0 {
		return "Студент с базовым профилем компетенций."
	}

	return strings.Join(parts, " ") +
		" Студент заинтересован в мероприятиях, которые помогают развивать компетенции и использовать сильные стороны для профессионального роста."
}

// ---- Excel plumbing ----

type excelTable struct {
	columns map[string]int
	rows    [][]string
}

func (t *excelTable) cell(row []string, column string) string {
	idx, ok := t.columns[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// readExcelTable opens the first sheet and locates the header row by
// scanning for the required columns. Source exports carry preamble rows
// above the header.
func readExcelTable(path string, requiredColumns []string) (*excelTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperror.NotFound(fmt.Sprintf("failed to open %s: %v", path, err))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperror.Validation(fmt.Sprintf("no sheets in %s", path))
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	headerIdx := -1
	for i, row := range rows {
		if containsAll(row, requiredColumns) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, apperror.Validation(fmt.Sprintf("required columns %v not found in %s", requiredColumns, path))
	}

	columns := make(map[string]int, len(rows[headerIdx]))
	for i, name := range rows[headerIdx] {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, taken := columns[name]; taken {
			// repeated header names get pandas-style numeric suffixes
			suffix := 1
			for {
				candidate := fmt.Sprintf("%s.%d", name, suffix)
				if _, taken := columns[candidate]; !taken {
					name = candidate
					break
				}
				suffix++
			}
		}
		columns[name] = i
	}

	return &excelTable{columns: columns, rows: rows[headerIdx+1:]}, nil
}

func containsAll(row []string, required []string) bool {
	present := make(map[string]struct{}, len(row))
	for _, cell := range row {
		present[strings.TrimSpace(cell)] = struct{}{}
	}
	for _, name := range required {
		if _, ok := present[name]; !ok {
			return false
		}
	}
	return true
}
