package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/assessly/docgrader/constants"
	"github.com/assessly/docgrader/internal/common"
	"github.com/assessly/docgrader/internal/extract"
	"github.com/assessly/docgrader/internal/readiness"
	"github.com/assessly/docgrader/internal/textnorm"
)

var (
	readinessStudentLinked    bool
	readinessAssignmentLinked bool
	readinessPriorGrading     bool
)

var readinessCmd = &cobra.Command{
	Use:   "readiness [file]",
	Short: "Evaluate the extraction-quality gate and automation state for a submission",
	Args:  cobra.ExactArgs(1),
	RunE:  runReadiness,
}

func init() {
	readinessCmd.Flags().BoolVar(&readinessStudentLinked, "student-linked", false, "submission is linked to a student record")
	readinessCmd.Flags().BoolVar(&readinessAssignmentLinked, "assignment-linked", false, "submission is linked to an assignment record")
	readinessCmd.Flags().BoolVar(&readinessPriorGrading, "prior-grading", false, "a grading already exists for this submission")
	rootCmd.AddCommand(readinessCmd)
}

func runReadiness(cmd *cobra.Command, args []string) error {
	path := args[0]
	if err := common.NewValidator().Field("file", path, common.Required, common.FileExists).Error(); err != nil {
		return err
	}
	pol, err := loadPolicy(cmd.Context())
	if err != nil {
		return err
	}

	ex := extract.NewTextFileExtractor(logger)
	res, err := ex.Extract(cmd.Context(), path, constants.DocTypeRaw)
	if err != nil {
		return fmt.Errorf("extract submission: %w", err)
	}

	gate := readiness.Evaluate(readiness.Input{
		Status:                  res.Status,
		Text:                    res.Text,
		PageCount:               res.PageCount,
		Confidence:              res.Confidence,
		CoverMetadataReady:      res.CoverMetadataReady,
		CoverMetadataConfidence: res.CoverMetadataConfidence,
		HasPageBreaks:           textnorm.HasPageBreaks(res.Text),
	}, pol.Readiness)

	state := readiness.DeriveState(
		readiness.Quality{Gate: gate, Route: constants.RouteAuto, Confidence: res.Confidence},
		readiness.Facts{
			StudentLinked:      readinessStudentLinked,
			AssignmentLinked:   readinessAssignmentLinked,
			PriorGradingExists: readinessPriorGrading,
		},
		pol.Automation,
	)

	out, err := json.MarshalIndent(struct {
		Gate  readiness.Readiness       `json:"gate"`
		State constants.AutomationState `json:"state"`
	}{gate, state}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	cmd.Println(string(out))
	return nil
}
