package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"campusEvents/pkg/apperror"
	"campusEvents/pkg/logger"

	"github.com/xuri/excelize/v2"
)

// Columns kept in the filtered directions file.
var directionColumnsToKeep = []string{
	columnAcademicYear,
	columnParticipantID,
	columnInstitution,
	columnSpecialty,
	"Сводный отчёт",
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
}

type PreprocessStats struct {
	Rows       int    `json:"rows"`
	Columns    int    `json:"columns"`
	InputFile  string `json:"input_file"`
	OutputFile string `json:"output_file"`
}

// DirectionPreprocessor filters the raw assessment export down to the
// rows and columns the directions pipeline consumes.
type DirectionPreprocessor struct {
	targetInstitution string
}

func NewDirectionPreprocessor(targetInstitution string) *DirectionPreprocessor {
	return &DirectionPreprocessor{targetInstitution: targetInstitution}
}

// PreprocessExcel drops rows without a usable specialty, filters by
// institution when one is configured, and keeps only the latest record per
// participant. The result is written as a fresh workbook.
func (p *DirectionPreprocessor) PreprocessExcel(inputPath, outputPath string) (PreprocessStats, error) {
	stats := PreprocessStats{InputFile: inputPath, OutputFile: outputPath}

	required := []string{columnSpecialty, columnInstitution, columnAcademicYear, columnParticipantID}
	table, err := readExcelTable(inputPath, required)
	if err != nil {
		return stats, err
	}

	kept := make([][]string, 0, len(table.rows))
	for _, row := range table.rows {
		specialty := table.cell(row, columnSpecialty)
		if specialty == "" || strings.Contains(strings.ToLower(specialty), "отсутствует") {
			continue
		}
		if p.targetInstitution != "" && table.cell(row, columnInstitution) != p.targetInstitution {
			continue
		}
		kept = append(kept, row)
	}

	// latest academic year wins per participant
	sort.SliceStable(kept, func(i, j int) bool {
		pi := table.cell(kept[i], columnParticipantID)
		pj := table.cell(kept[j], columnParticipantID)
		if pi != pj {
			return pi < pj
		}
		return table.cell(kept[i], columnAcademicYear) > table.cell(kept[j], columnAcademicYear)
	})

	deduped := kept[:0]
	lastParticipant := ""
	for _, row := range kept {
		participant := table.cell(row, columnParticipantID)
		if participant == lastParticipant {
			continue
		}
		lastParticipant = participant
		deduped = append(deduped, row)
	}

	columns := make([]string, 0, len(directionColumnsToKeep))
	for _, name := range directionColumnsToKeep {
		if _, ok := table.columns[name]; ok {
			columns = append(columns, name)
		}
	}

	if err := writeExcelFile(outputPath, columns, deduped, table); err != nil {
		return stats, err
	}

	stats.Rows = len(deduped)
	stats.Columns = len(columns)
	logger.Info("preprocessed directions excel",
		"input", inputPath,
		"output", outputPath,
		"rows", stats.Rows,
		"columns", stats.Columns,
	)

	return stats, nil
}

// DirectionTitles reads the filtered file and returns the distinct
// specialty titles in first-seen order.
func DirectionTitles(path string) ([]string, error) {
	table, err := readExcelTable(path, []string{columnSpecialty})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(table.rows))
	titles := make([]string, 0, len(table.rows))

	for _, row := range table.rows {
		title := table.cell(row, columnSpecialty)
		if title == "" {
			continue
		}
		key := strings.ToLower(title)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		titles = append(titles, title)
	}

	if len(titles) == 0 {
		return nil, apperror.Validation(fmt.Sprintf("no direction titles in %s", path))
	}

	return titles, nil
}

func writeExcelFile(path string, columns []string, rows [][]string, table *excelTable) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	header := make([]any, len(columns))
	for i, name := range columns {
		header[i] = name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		values := make([]any, len(columns))
		for j, name := range columns {
			values[j] = table.cell(row, name)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
