package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/loom"
	"github.com/aretw0/loom/internal/logging"
	"github.com/aretw0/loom/internal/presentation/tui"
	"github.com/aretw0/loom/pkg/observability"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "loom",
	Short: "Loom evaluates lazy attribute graphs",
	Long: `Loom loads a scene (a YAML or JSON description of nodes and connections),
builds its attribute graph and evaluates the requested outputs on demand.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		tui.PrintBanner(cmd.OutOrStdout())
		_ = cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Int("parallel", 0, "Evaluate independent nodes with up to N workers")
	rootCmd.PersistentFlags().Bool("trace", false, "Log every node evaluation")
}

// openEngine loads the scene named by the first argument and applies the
// persistent flags.
func openEngine(cmd *cobra.Command, path string, opts ...loom.Option) (*loom.Engine, error) {
	levelName, _ := cmd.Flags().GetString("log-level")
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	logger := logging.New(level)
	parallel, _ := cmd.Flags().GetInt("parallel")
	trace, _ := cmd.Flags().GetBool("trace")

	base := []loom.Option{loom.WithLogger(logger), loom.WithParallelism(parallel)}
	if trace {
		base = append(base, loom.WithLifecycleHooks(observability.LogHooks(logger)))
	}
	eng, err := loom.Open(path, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene: %w", err)
	}
	return eng, nil
}

// applySets writes every "path=literal" assignment of the --set flag.
func applySets(cmd *cobra.Command, eng *loom.Engine) error {
	sets, _ := cmd.Flags().GetStringArray("set")
	for _, s := range sets {
		path, literal, ok := strings.Cut(s, "=")
		if !ok {
			return fmt.Errorf("invalid --set %q: expected path=literal", s)
		}
		if err := eng.Set(cmd.Context(), strings.TrimSpace(path), strings.TrimSpace(literal)); err != nil {
			return err
		}
	}
	return nil
}

func addSetFlag(cmd *cobra.Command) {
	cmd.Flags().StringArray("set", nil, `Set an input before evaluating ("node.attr=[1] 3"), repeatable`)
}
