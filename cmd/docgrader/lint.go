package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/assessly/docgrader/constants"
	"github.com/assessly/docgrader/internal/common"
	"github.com/assessly/docgrader/internal/decision"
	"github.com/assessly/docgrader/internal/feedback"
)

var (
	lintDecisionPath string
	lintGradeWord    string
	lintSourcePath   string
)

var lintCmd = &cobra.Command{
	Use:   "lint [feedback-file]",
	Short: "Rewrite feedback text that overclaims, leaks template terms, or judges the student",
	Args:  cobra.ExactArgs(1),
	RunE:  runLint,
}

func init() {
	lintCmd.Flags().StringVar(&lintDecisionPath, "decision", "", "decision JSON whose checks back the claims")
	lintCmd.Flags().StringVar(&lintGradeWord, "grade", "PASS", "overall grade word the feedback accompanies")
	lintCmd.Flags().StringVar(&lintSourcePath, "source", "", "submission text; cited vocabulary is never stripped")
	rootCmd.AddCommand(lintCmd)
}

func runLint(cmd *cobra.Command, args []string) error {
	path := args[0]
	if err := common.NewValidator().Field("feedback", path, common.Required, common.FileExists).Error(); err != nil {
		return err
	}
	grade, ok := constants.CanonicalGradeWord(lintGradeWord)
	if !ok {
		return fmt.Errorf("unknown grade word %q", lintGradeWord)
	}
	pol, err := loadPolicy(cmd.Context())
	if err != nil {
		return err
	}

	text, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read feedback: %w", err)
	}

	var checks []decision.CriterionCheck
	if lintDecisionPath != "" {
		raw, err := os.ReadFile(lintDecisionPath)
		if err != nil {
			return fmt.Errorf("read decision: %w", err)
		}
		dec, err := decision.Decode(raw)
		if err != nil {
			return fmt.Errorf("decode decision: %w", err)
		}
		checks = dec.Checks
		grade = dec.OverallGrade
	}

	sourceContext := ""
	if lintSourcePath != "" {
		src, err := os.ReadFile(lintSourcePath)
		if err != nil {
			return fmt.Errorf("read source: %w", err)
		}
		sourceContext = string(src)
	}

	res := feedback.Sanitize(string(text), checks, grade, sourceContext, pol.Feedback)
	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	cmd.Println(string(out))
	return nil
}
