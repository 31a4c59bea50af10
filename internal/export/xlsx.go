// Package export renders extraction rows into an XLSX workbook: a results
// sheet with one row per (document, configuration) pair and a summary sheet
// with run statistics.
package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/docsift/docsift/constants"
	"github.com/docsift/docsift/internal/resolver"
)

const (
	resultsSheet = "Extraction Results"
	summarySheet = "Summary"
)

var headers = []string{"PDF Name", "Config Name", "Extracted Value", "Status", "Extraction Time"}

// Service produces XLSX bytes for extraction results.
type Service struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger, now: time.Now}
}

// WriteXLSX returns an XLSX workbook (as bytes) for the given rows.
func (s *Service) WriteXLSX(rows []resolver.Result) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	if index, _ := f.GetSheetIndex(resultsSheet); index == -1 {
		if _, err := f.NewSheet(resultsSheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(resultsSheet)
	f.SetActiveSheet(activeIndex)

	if err := s.writeResults(f, rows); err != nil {
		return nil, err
	}
	if err := s.writeSummary(f, rows); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(rows),
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// SaveFile writes the workbook to disk, creating parent directories.
func (s *Service) SaveFile(path string, rows []resolver.Result) error {
	data, err := s.WriteXLSX(rows)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	s.logger.Info("export.file.ok", "path", path)
	return nil
}

func (s *Service) writeResults(f *excelize.File, rows []resolver.Result) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"366092"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	okStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C6EFCE"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	failStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(resultsSheet, cell, h)
		_ = f.SetCellStyle(resultsSheet, cell, cell, headerStyle)
	}

	stamp := s.now().Format("2006-01-02 15:04:05")
	for i, r := range rows {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(resultsSheet, cell, v)
		}
		write(1, filepath.Base(r.SourceID))
		write(2, r.ConfigName)
		write(3, r.Value)
		write(4, string(r.Status))
		write(5, stamp)

		statusCell, _ := excelize.CoordinatesToCellName(4, row)
		if r.Success {
			_ = f.SetCellStyle(resultsSheet, statusCell, statusCell, okStyle)
		} else {
			_ = f.SetCellStyle(resultsSheet, statusCell, statusCell, failStyle)
		}
	}

	// Widen columns and keep the header visible while scrolling.
	_ = f.SetColWidth(resultsSheet, "A", "A", 32) // document
	_ = f.SetColWidth(resultsSheet, "B", "B", 24) // configuration
	_ = f.SetColWidth(resultsSheet, "C", "C", 40) // value
	_ = f.SetColWidth(resultsSheet, "D", "D", 14) // status
	_ = f.SetColWidth(resultsSheet, "E", "E", 20) // timestamp
	_ = f.SetPanes(resultsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
	if len(rows) > 0 {
		_ = f.AutoFilter(resultsSheet, "A1:E1", nil)
	}
	return nil
}

func (s *Service) writeSummary(f *excelize.File, rows []resolver.Result) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}

	var succeeded, noMatch, readErrors int
	perConfig := make(map[string]int)
	seen := make(map[string]struct{})
	configOrder := make([]string, 0)
	for _, r := range rows {
		// Every configuration gets one summary line, including those whose
		// rows all failed, so perConfig alone cannot track first sight.
		if _, ok := seen[r.ConfigName]; !ok {
			seen[r.ConfigName] = struct{}{}
			configOrder = append(configOrder, r.ConfigName)
			perConfig[r.ConfigName] = 0
		}
		switch r.Status {
		case constants.StatusSuccess:
			succeeded++
			perConfig[r.ConfigName]++
		case constants.StatusReadError:
			readErrors++
		default:
			noMatch++
		}
	}

	rate := 0.0
	if len(rows) > 0 {
		rate = float64(succeeded) / float64(len(rows)) * 100
	}

	lines := []struct {
		label string
		value any
	}{
		{"Total Extractions", len(rows)},
		{"Successful", succeeded},
		{"No Match", noMatch},
		{"Read Errors", readErrors},
		{"Success Rate %", fmt.Sprintf("%.1f", rate)},
		{"Generated", s.now().Format("2006-01-02 15:04:05")},
	}

	row := 1
	write := func(label string, value any) {
		lCell, _ := excelize.CoordinatesToCellName(1, row)
		vCell, _ := excelize.CoordinatesToCellName(2, row)
		_ = f.SetCellValue(summarySheet, lCell, label)
		_ = f.SetCellValue(summarySheet, vCell, value)
		row++
	}
	for _, l := range lines {
		write(l.label, l.value)
	}
	row++
	write("Successes by Configuration", "")
	for _, name := range configOrder {
		write(name, perConfig[name])
	}

	_ = f.SetColWidth(summarySheet, "A", "A", 30)
	_ = f.SetColWidth(summarySheet, "B", "B", 22)
	return nil
}
