package main

import (
	"fmt"

	"github.com/aretw0/loom/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <scene>",
	Short: "Describe every node and attribute",
	Long: `Builds the scene, optionally evaluates it, and renders a report of the nodes,
their attribute kinds, dirty state and current values.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine(cmd, args[0])
		if err != nil {
			return err
		}
		if err := applySets(cmd, eng); err != nil {
			return err
		}
		if evaluate, _ := cmd.Flags().GetBool("eval"); evaluate {
			if _, err := eng.Evaluate(cmd.Context()); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		title := eng.Name
		if title == "" {
			title = args[0]
		}
		nodes := eng.Inspect()
		rendered, err := tui.NewRenderer(out)(tui.Report(title, nodes))
		if err != nil {
			return fmt.Errorf("failed to render report: %w", err)
		}
		fmt.Fprint(out, rendered)
		for _, n := range nodes {
			fmt.Fprintf(out, "%-24s %s\n", n.Path, tui.Status(out, n.Dirty()))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	addSetFlag(inspectCmd)
	inspectCmd.Flags().Bool("eval", true, "Evaluate the outputs before reporting")
}
