package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/assessly/docgrader/internal/policy"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Inspect and manage the grading policy",
	RunE:  runPolicyShow,
}

var policyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective policy",
	RunE:  runPolicyShow,
}

var policyInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective policy into the configured store",
	RunE:  runPolicyInit,
}

func init() {
	policyCmd.AddCommand(policyShowCmd)
	policyCmd.AddCommand(policyInitCmd)
	rootCmd.AddCommand(policyCmd)
}

func runPolicyShow(cmd *cobra.Command, _ []string) error {
	pol, err := loadPolicy(cmd.Context())
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(pol, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal policy: %w", err)
	}
	cmd.Println(string(out))
	return nil
}

func runPolicyInit(cmd *cobra.Command, _ []string) error {
	if cfg.Policy.StorePath == "" {
		return errors.New("POLICY_STORE_PATH is not set")
	}
	pol, err := loadPolicy(cmd.Context())
	if err != nil {
		return err
	}

	store, err := policy.NewSQLiteStore(cfg.Policy.StorePath)
	if err != nil {
		return fmt.Errorf("open policy store: %w", err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Warn("cli.policy.store_close_error", "error", cerr)
		}
	}()

	if err := policy.Save(cmd.Context(), store, pol); err != nil {
		return fmt.Errorf("save policy: %w", err)
	}
	logger.Info("cli.policy.saved", "path", store.Path())
	return nil
}
