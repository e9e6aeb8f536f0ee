package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <scene>",
	Short: "Export the attribute graph visualization",
	Long:  `Builds the scene and outputs a Mermaid diagram (graph LR) of its nodes and connections.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine(cmd, args[0])
		if err != nil {
			return err
		}
		if evaluate, _ := cmd.Flags().GetBool("eval"); evaluate {
			if _, err := eng.Evaluate(cmd.Context()); err != nil {
				return err
			}
		}
		fmt.Fprint(cmd.OutOrStdout(), eng.Mermaid())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("eval", false, "Evaluate the outputs first so that clean nodes are marked")
}
