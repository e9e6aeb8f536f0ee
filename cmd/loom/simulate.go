package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <scene>",
	Short: "Advance a simulation session",
	Long: `Runs the scene for a number of steps. Stateful nodes read the state committed
by the previous step of the session. With --redis the session survives the
process and concurrent runs of the same session are serialized by a lock.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, _ := cmd.Flags().GetInt("steps")
		session, _ := cmd.Flags().GetString("session")
		reset, _ := cmd.Flags().GetBool("reset")
		if steps < 1 {
			return fmt.Errorf("invalid --steps %d: must be at least 1", steps)
		}

		opts, done, err := storeOptions(cmd)
		if err != nil {
			return err
		}
		defer done()
		eng, err := openEngine(cmd, args[0], opts...)
		if err != nil {
			return err
		}
		if err := applySets(cmd, eng); err != nil {
			return err
		}
		if reset {
			if err := eng.Reset(cmd.Context(), session); err != nil {
				return err
			}
		}

		for i := 0; i < steps; i++ {
			res, err := eng.Step(cmd.Context(), session)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "step %d\n", res.Step)
			printOutputs(cmd, res.Outputs)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	addSetFlag(simulateCmd)
	simulateCmd.Flags().IntP("steps", "n", 1, "Number of steps to run")
	simulateCmd.Flags().StringP("session", "s", "default", "Simulation session id")
	simulateCmd.Flags().Bool("reset", false, "Discard the stored session state first")
	addStoreFlags(simulateCmd)
}
