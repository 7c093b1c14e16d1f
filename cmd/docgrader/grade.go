package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/assessly/docgrader/internal/common"
	"github.com/assessly/docgrader/internal/export"
	"github.com/assessly/docgrader/internal/extract"
	"github.com/assessly/docgrader/internal/grader/openai"
	"github.com/assessly/docgrader/internal/pipeline"
	"github.com/assessly/docgrader/internal/readiness"
)

var (
	gradeBriefPath      string
	gradeSubmissionPath string
	gradeUnitTitle      string
	gradeXLSXOut        string
	gradeStudent        bool
	gradeAssignment     bool
)

var gradeCmd = &cobra.Command{
	Use:   "grade",
	Short: "Run the full pipeline: extract, gate, grade, validate, score, lint",
	RunE:  runGrade,
}

func init() {
	gradeCmd.Flags().StringVar(&gradeBriefPath, "brief", "", "assignment brief file")
	gradeCmd.Flags().StringVar(&gradeSubmissionPath, "submission", "", "student submission file")
	gradeCmd.Flags().StringVar(&gradeUnitTitle, "unit", "", "unit title shown to the grader")
	gradeCmd.Flags().StringVar(&gradeXLSXOut, "xlsx", "", "also write an XLSX report to this path")
	gradeCmd.Flags().BoolVar(&gradeStudent, "student-linked", true, "submission is linked to a student record")
	gradeCmd.Flags().BoolVar(&gradeAssignment, "assignment-linked", true, "submission is linked to an assignment record")
	_ = gradeCmd.MarkFlagRequired("brief")
	_ = gradeCmd.MarkFlagRequired("submission")
	rootCmd.AddCommand(gradeCmd)
}

func runGrade(cmd *cobra.Command, _ []string) error {
	v := common.NewValidator().
		Field("brief", gradeBriefPath, common.Required, common.FileExists).
		Field("submission", gradeSubmissionPath, common.Required, common.FileExists)
	if err := v.Error(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	pol, err := loadPolicy(cmd.Context())
	if err != nil {
		return err
	}

	client := openai.NewClient(openai.Config{
		APIKey:             cfg.Grader.APIKey,
		BaseURL:            cfg.Grader.BaseURL,
		Model:              cfg.Grader.Model,
		Temperature:        cfg.Grader.Temperature,
		Timeout:            cfg.Grader.Timeout,
		SanitizeOnMismatch: true,
	}, logger)

	proc := pipeline.NewProcessor(logger, extract.NewTextFileExtractor(logger), client, client, pol)
	rep, err := proc.Run(cmd.Context(), pipeline.Request{
		UnitTitle:      gradeUnitTitle,
		BriefPath:      gradeBriefPath,
		SubmissionPath: gradeSubmissionPath,
		Facts: readiness.Facts{
			StudentLinked:    gradeStudent,
			AssignmentLinked: gradeAssignment,
		},
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	cmd.Println(string(out))

	if gradeXLSXOut != "" {
		raw, err := export.NewService(logger).ReportXLSX([]pipeline.Report{rep})
		if err != nil {
			return fmt.Errorf("render xlsx: %w", err)
		}
		if err := os.WriteFile(gradeXLSXOut, raw, 0o644); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
		logger.Info("cli.grade.xlsx_written", "path", gradeXLSXOut, "bytes", len(raw))
	}
	return nil
}
