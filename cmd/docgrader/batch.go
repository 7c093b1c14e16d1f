package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/assessly/docgrader/internal/common"
	"github.com/assessly/docgrader/internal/export"
	"github.com/assessly/docgrader/internal/extract"
	"github.com/assessly/docgrader/internal/grader/openai"
	"github.com/assessly/docgrader/internal/pipeline"
	"github.com/assessly/docgrader/internal/readiness"
)

var (
	batchBriefPath string
	batchDir       string
	batchUnitTitle string
	batchXLSXOut   string
	batchWorkers   int
	batchTimeout   time.Duration
	batchExts      []string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Grade every submission in a directory against one brief",
	RunE:  runBatch,
}

func init() {
	batchCmd.Flags().StringVar(&batchBriefPath, "brief", "", "assignment brief file")
	batchCmd.Flags().StringVar(&batchDir, "dir", "", "directory of submission files")
	batchCmd.Flags().StringVar(&batchUnitTitle, "unit", "", "unit title shown to the grader")
	batchCmd.Flags().StringVar(&batchXLSXOut, "xlsx", "", "write a combined XLSX report to this path")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 4, "concurrent grading workers")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 3*time.Minute, "per-submission timeout")
	batchCmd.Flags().StringSliceVar(&batchExts, "ext", nil, "submission extensions to include (default txt, md)")
	_ = batchCmd.MarkFlagRequired("brief")
	_ = batchCmd.MarkFlagRequired("dir")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, _ []string) error {
	if err := common.NewValidator().Field("brief", batchBriefPath, common.Required, common.FileExists).Error(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	pol, err := loadPolicy(cmd.Context())
	if err != nil {
		return err
	}

	submissions, err := pipeline.ScanSubmissions(batchDir, batchExts)
	if err != nil {
		return fmt.Errorf("scan %s: %w", batchDir, err)
	}
	if len(submissions) == 0 {
		return fmt.Errorf("no submissions found under %s", batchDir)
	}
	logger.Info("cli.batch.scanned", "dir", batchDir, "submissions", len(submissions))

	client := openai.NewClient(openai.Config{
		APIKey:             cfg.Grader.APIKey,
		BaseURL:            cfg.Grader.BaseURL,
		Model:              cfg.Grader.Model,
		Temperature:        cfg.Grader.Temperature,
		Timeout:            cfg.Grader.Timeout,
		SanitizeOnMismatch: true,
	}, logger)

	proc := pipeline.NewProcessor(logger, extract.NewTextFileExtractor(logger), client, client, pol)
	runner := pipeline.NewBatchRunner(proc,
		pipeline.WithWorkers(batchWorkers),
		pipeline.WithRunTimeout(batchTimeout),
	)

	results := runner.Run(cmd.Context(), pipeline.Request{
		UnitTitle: batchUnitTitle,
		BriefPath: batchBriefPath,
		Facts:     readiness.Facts{StudentLinked: true, AssignmentLinked: true},
	}, submissions)

	type line struct {
		Submission string `json:"submission"`
		State      string `json:"state,omitempty"`
		Grade      string `json:"grade,omitempty"`
		Error      string `json:"error,omitempty"`
	}
	summary := make([]line, 0, len(results))
	for _, r := range results {
		l := line{Submission: r.SubmissionPath}
		if r.Err != nil {
			l.Error = r.Err.Error()
		} else {
			l.State = string(r.Report.State)
			if r.Report.Decision != nil {
				l.Grade = string(r.Report.Decision.OverallGrade)
			}
		}
		summary = append(summary, l)
	}
	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	cmd.Println(string(out))

	if batchXLSXOut != "" {
		raw, err := export.NewService(logger).ReportXLSX(pipeline.Reports(results))
		if err != nil {
			return fmt.Errorf("render xlsx: %w", err)
		}
		if err := os.WriteFile(batchXLSXOut, raw, 0o644); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
		logger.Info("cli.batch.xlsx_written", "path", batchXLSXOut, "bytes", len(raw))
	}
	return nil
}
