package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/assessly/docgrader/constants"
	"github.com/assessly/docgrader/internal/brief"
	"github.com/assessly/docgrader/internal/common"
	"github.com/assessly/docgrader/internal/extract"
)

var briefCmd = &cobra.Command{
	Use:   "brief [file]",
	Short: "Parse an assignment brief into tasks, parts, tables and codes",
	Args:  cobra.ExactArgs(1),
	RunE:  runBrief,
}

func init() {
	rootCmd.AddCommand(briefCmd)
}

func runBrief(cmd *cobra.Command, args []string) error {
	path := args[0]
	if err := common.NewValidator().Field("file", path, common.Required, common.FileExists).Error(); err != nil {
		return err
	}

	ex := extract.NewTextFileExtractor(logger)
	res, err := ex.Extract(cmd.Context(), path, constants.DocTypeBrief)
	if err != nil {
		return fmt.Errorf("extract brief: %w", err)
	}
	if res.Status != constants.StatusDone {
		return fmt.Errorf("brief not extractable: status %s", res.Status)
	}

	doc := brief.Parse(res.Text, constants.DocTypeBrief, res.Equations)
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	cmd.Println(string(out))
	return nil
}
