package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var evalCmd = &cobra.Command{
	Use:   "eval <scene>",
	Short: "Evaluate the scene outputs",
	Long:  `Builds the scene, applies the --set assignments and prints every declared output as a value literal.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine(cmd, args[0])
		if err != nil {
			return err
		}
		if err := applySets(cmd, eng); err != nil {
			return err
		}
		outputs, err := eng.Evaluate(cmd.Context())
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(outputs)
		}
		printOutputs(cmd, outputs)
		return nil
	},
}

func printOutputs(cmd *cobra.Command, outputs map[string]string) {
	paths := make([]string, 0, len(outputs))
	for p := range outputs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		v := outputs[p]
		if v == "" {
			v = "<unresolved>"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", p, v)
	}
}

func init() {
	rootCmd.AddCommand(evalCmd)
	addSetFlag(evalCmd)
	evalCmd.Flags().Bool("json", false, "Print the outputs as a JSON object")
}
