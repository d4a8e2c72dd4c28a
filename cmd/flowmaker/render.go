package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/flowmaker/pkg/cli"
	"mercator-hq/flowmaker/pkg/diagram"
	"mercator-hq/flowmaker/pkg/render"
)

var renderFlags struct {
	mode  string
	out   string
	share bool
}

// renderOutput is the render command result.
type renderOutput struct {
	*render.Result
	ShareURL string `json:"share_url,omitempty"`
}

func (r renderOutput) Text() string {
	if r.ShareURL == "" {
		return r.Graph
	}
	return r.Graph + r.ShareURL + "\n"
}

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Compile a source into flowchart text",
	Long: `Compile a pseudocode source into Mermaid flowchart text.

The source is read from the file argument, or from stdin when the argument
is omitted or "-". Compile errors are printed with the offending line.

Examples:
  flowmaker render algorithm.pseudo
  cat outline.txt | flowmaker render --mode tree_diagram
  flowmaker render algorithm.pseudo --out algorithm.mmd
  flowmaker render algorithm.pseudo --share -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderFlags.mode, "mode", "m", "", "rendering mode (flowchart, tree_diagram); render.default_mode when empty")
	renderCmd.Flags().StringVar(&renderFlags.out, "out", "", "write the graph to this file instead of stdout")
	renderCmd.Flags().BoolVar(&renderFlags.share, "share", false, "also print a share link")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	f, err := formatter()
	if err != nil {
		return err
	}

	var path string
	if len(args) == 1 {
		path = args[0]
	}
	source, err := readSource(cmd, path)
	if err != nil {
		return err
	}

	res, err := newRenderer(nil, nil).Render(cmd.Context(), renderFlags.mode, source)
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), cli.CompileErrorDetail(err))
		return cli.NewCommandError("render", err)
	}

	if renderFlags.out != "" {
		if err := os.WriteFile(renderFlags.out, []byte(res.Graph), 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		state.logger.Info("graph written", "path", renderFlags.out, "mode", res.Mode)
		return nil
	}

	out := renderOutput{Result: res}
	if renderFlags.share {
		out.ShareURL, err = diagram.ShareURLForMode(state.cfg.Server.ShareBaseURL, res.Mode, source)
		if err != nil {
			return err
		}
	}
	return f.FormatTo(cmd.OutOrStdout(), out)
}
