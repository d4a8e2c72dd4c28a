package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/flowmaker/pkg/cli"
	"mercator-hq/flowmaker/pkg/watch"
)

var watchFlags struct {
	mode     string
	outDir   string
	debounce time.Duration
	once     bool
}

var watchCmd = &cobra.Command{
	Use:   "watch <path>",
	Short: "Recompile sources when they change",
	Long: `Watch a source file or directory and write <name>` + ".mmd" + ` next to each
source (or into --out-dir) whenever it changes.

All sources are compiled once on start. When a source fails to compile the
previous output is kept and the error is logged with its line.

Examples:
  flowmaker watch algorithms/
  flowmaker watch algorithm.pseudo --out-dir build/
  flowmaker watch algorithms/ --once`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchFlags.mode, "mode", "m", "", "rendering mode; render.default_mode when empty")
	watchCmd.Flags().StringVar(&watchFlags.outDir, "out-dir", "", "override watch.output_dir")
	watchCmd.Flags().DurationVar(&watchFlags.debounce, "debounce", 0, "override watch.debounce")
	watchCmd.Flags().BoolVar(&watchFlags.once, "once", false, "compile all sources once and exit")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := state.cfg.Watch
	if watchFlags.outDir != "" {
		cfg.OutputDir = watchFlags.outDir
	}
	if watchFlags.debounce > 0 {
		cfg.Debounce = watchFlags.debounce
	}

	w, err := watch.New(cfg, newRenderer(nil, nil),
		watch.WithMode(watchFlags.mode),
		watch.WithLogger(state.logger),
	)
	if err != nil {
		return err
	}

	defer w.Stop()

	if watchFlags.once {
		failed := 0
		for _, res := range w.BuildAll(cmd.Context(), args[0]) {
			if res.Err != nil {
				failed++
			}
		}
		if failed > 0 {
			return cli.NewCommandError("watch", fmt.Errorf("%d source(s) failed to compile", failed))
		}
		return nil
	}

	ctx, cancel := cli.SetupSignalHandler(cmd.Context())
	defer cancel()

	return w.Watch(ctx, args[0])
}
