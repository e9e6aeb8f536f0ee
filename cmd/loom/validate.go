package main

import (
	"fmt"

	"github.com/aretw0/loom/pkg/nodes"
	"github.com/aretw0/loom/pkg/scene"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <scene>",
	Short: "Check the scene for consistency",
	Long: `Loads the scene and reports duplicate names, unknown node types, rejected
connections and unresolved outputs.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := scene.Load(args[0])
		if err != nil {
			return err
		}
		issues := s.Validate(nodes.Builtin())
		for _, issue := range issues {
			fmt.Fprintln(cmd.OutOrStdout(), "- "+issue.String())
		}
		if len(issues) > 0 {
			return fmt.Errorf("validation failed: %d issue(s)", len(issues))
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Scene is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
