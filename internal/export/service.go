// Package export renders run reports as XLSX workbooks for moderators.
package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/assessly/docgrader/internal/pipeline"
)

// Service produces XLSX bytes for one or more run reports.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

const (
	sheetSummary  = "Summary"
	sheetCriteria = "Criteria"
	sheetLint     = "Lint"
)

// ReportXLSX returns a workbook with one summary row per run, one criteria
// row per check, and one lint row per changed feedback line.
func (s *Service) ReportXLSX(reports []pipeline.Report) ([]byte, error) {
	start := time.Now()
	f := excelize.NewFile()

	if err := s.writeSummary(f, reports); err != nil {
		return nil, err
	}
	if err := s.writeCriteria(f, reports); err != nil {
		return nil, err
	}
	if err := s.writeLint(f, reports); err != nil {
		return nil, err
	}

	// excelize starts with "Sheet1"; drop it once ours exist
	_ = f.DeleteSheet("Sheet1")
	if idx, _ := f.GetSheetIndex(sheetSummary); idx >= 0 {
		f.SetActiveSheet(idx)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.xlsx.ok",
		"reports", len(reports),
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func newSheet(f *excelize.File, name string, headers []string) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("new sheet %s: %w", name, err)
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(name, cell, h); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func (s *Service) writeSummary(f *excelize.File, reports []pipeline.Report) error {
	headers := []string{
		"Run ID", "Unit", "State", "Gate OK", "Blockers",
		"Required Codes", "Grade", "Final Confidence", "Resubmission", "Duration (ms)",
	}
	if err := newSheet(f, sheetSummary, headers); err != nil {
		return err
	}

	row := 2
	for _, r := range reports {
		grade := ""
		resub := ""
		if r.Decision != nil {
			grade = string(r.Decision.OverallGrade)
			resub = fmt.Sprintf("%t", r.Decision.ResubmissionRequired)
		}
		conf := ""
		if r.Confidence != nil {
			conf = fmt.Sprintf("%.2f", r.Confidence.FinalConfidence)
		}
		writeRow(f, sheetSummary, row, []any{
			r.RunID,
			r.UnitTitle,
			string(r.State),
			r.Gate.OK,
			strings.Join(r.Gate.Blockers, "; "),
			strings.Join(r.RequiredCodeStrings(), ", "),
			grade,
			conf,
			resub,
			r.Duration.Milliseconds(),
		})
		row++
	}

	_ = f.SetColWidth(sheetSummary, "A", "A", 38)
	_ = f.SetColWidth(sheetSummary, "B", "B", 28)
	_ = f.SetColWidth(sheetSummary, "C", "C", 14)
	_ = f.SetColWidth(sheetSummary, "E", "F", 30)
	return nil
}

func (s *Service) writeCriteria(f *excelize.File, reports []pipeline.Report) error {
	headers := []string{
		"Run ID", "Code", "Decision", "Confidence", "Evidence Count", "First Evidence Page", "Rationale",
	}
	if err := newSheet(f, sheetCriteria, headers); err != nil {
		return err
	}

	row := 2
	for _, r := range reports {
		if r.Decision == nil {
			continue
		}
		for _, c := range r.Decision.Checks {
			firstPage := ""
			usable := 0
			for _, ev := range c.Evidence {
				if ev.Empty() {
					continue
				}
				if usable == 0 {
					firstPage = fmt.Sprintf("%d", ev.Page)
				}
				usable++
			}
			writeRow(f, sheetCriteria, row, []any{
				r.RunID,
				c.Code.String(),
				string(c.Decision),
				c.Confidence,
				usable,
				firstPage,
				truncate(c.Rationale, 140),
			})
			row++
		}
	}

	_ = f.SetColWidth(sheetCriteria, "A", "A", 38)
	_ = f.SetColWidth(sheetCriteria, "G", "G", 60)
	return nil
}

func (s *Service) writeLint(f *excelize.File, reports []pipeline.Report) error {
	headers := []string{"Run ID", "Line", "Text"}
	if err := newSheet(f, sheetLint, headers); err != nil {
		return err
	}

	row := 2
	for _, r := range reports {
		if r.Feedback == nil || !r.Feedback.Changed {
			continue
		}
		lines := strings.Split(r.Feedback.Text, "\n")
		for _, n := range r.Feedback.ChangedLines {
			text := ""
			if n >= 1 && n <= len(lines) {
				text = lines[n-1]
			}
			writeRow(f, sheetLint, row, []any{r.RunID, n, truncate(text, 200)})
			row++
		}
	}

	_ = f.SetColWidth(sheetLint, "A", "A", 38)
	_ = f.SetColWidth(sheetLint, "C", "C", 80)
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
