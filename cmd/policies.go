package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/h2fleet/h2fleet/config"
	"github.com/h2fleet/h2fleet/core/fleet"
)

var policiesCmd = &cobra.Command{
	Use:   "policies",
	Short: "List available allocation policies",
	RunE:  runPolicies,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration file",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(policiesCmd)
	rootCmd.AddCommand(validateCmd)
}

func runPolicies(cmd *cobra.Command, args []string) error {
	for _, p := range fleet.Policies() {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "ok: %d stacks, policy %s\n", cfg.Fleet.NStacks, cfg.Fleet.Policy)
	return nil
}
