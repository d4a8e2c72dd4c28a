package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/flowmaker/pkg/cli"
	pseudoerrors "mercator-hq/flowmaker/pkg/pseudo/errors"
	"mercator-hq/flowmaker/pkg/render"
)

var lintFlags struct {
	mode     string
	progress bool
}

var lintCmd = &cobra.Command{
	Use:   "lint [path...]",
	Short: "Check sources for compile errors",
	Long: `Compile source files and report errors without writing output.

Directories are searched recursively for files with a watch.extensions
extension. Hidden files and directories are skipped. The command exits
non-zero when any source fails to compile.

Examples:
  # Lint a single file
  flowmaker lint algorithm.pseudo

  # Lint a directory
  flowmaker lint algorithms/

  # JSON output for CI/CD
  flowmaker lint algorithms/ -o json`,
	Args: cobra.MinimumNArgs(1),
	RunE: lintSources,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.mode, "mode", "m", "", "rendering mode; render.default_mode when empty")
	lintCmd.Flags().BoolVar(&lintFlags.progress, "progress", false, "show progress on stderr")
}

// LintResult is the outcome for one source file.
type LintResult struct {
	File  string     `json:"file"`
	Valid bool       `json:"valid"`
	Error *LintError `json:"error,omitempty"`

	detail string
}

// LintError describes a compile error.
type LintError struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	Line       *int   `json:"line,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// LintReport is the lint command result.
type LintReport struct {
	Files  []LintResult `json:"files"`
	Failed int          `json:"failed"`
}

func (r LintReport) Text() string {
	var sb strings.Builder
	for _, res := range r.Files {
		if res.Valid {
			fmt.Fprintf(&sb, "✓ %s\n", res.File)
			continue
		}
		fmt.Fprintf(&sb, "✗ %s\n", res.File)
		for _, line := range strings.Split(strings.TrimRight(res.detail, "\n"), "\n") {
			fmt.Fprintf(&sb, "    %s\n", line)
		}
	}
	fmt.Fprintf(&sb, "\n%d file(s), %d failed\n", len(r.Files), r.Failed)
	return sb.String()
}

func lintSources(cmd *cobra.Command, args []string) error {
	f, err := formatter()
	if err != nil {
		return err
	}

	files, err := collectSources(args, state.cfg.Watch.Extensions)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no source files found")
	}

	progress := cli.NewProgressReporter(cmd.ErrOrStderr(), "files")
	if !lintFlags.progress {
		progress = cli.NoProgress{}
	}

	renderer := newRenderer(nil, nil)
	report := LintReport{Files: make([]LintResult, 0, len(files))}

	progress.Start(int64(len(files)))
	for i, file := range files {
		res := lintFile(cmd, renderer, file)
		if !res.Valid {
			report.Failed++
		}
		report.Files = append(report.Files, res)
		progress.Update(int64(i + 1))
	}
	progress.Finish()

	if err := f.FormatTo(cmd.OutOrStdout(), report); err != nil {
		return err
	}
	if report.Failed > 0 {
		return cli.NewCommandError("lint", fmt.Errorf("%d of %d file(s) failed to compile", report.Failed, len(files)))
	}
	return nil
}

func lintFile(cmd *cobra.Command, renderer *render.Service, path string) LintResult {
	result := LintResult{File: path, Valid: true}

	source, err := readSource(cmd, path)
	if err == nil {
		_, err = renderer.Render(cmd.Context(), lintFlags.mode, source)
	}
	if err == nil {
		return result
	}

	result.Valid = false
	result.detail = cli.CompileErrorDetail(err)
	result.Error = &LintError{Type: "io_error", Message: err.Error()}

	var perr *pseudoerrors.Error
	if errors.As(err, &perr) {
		result.Error.Type = string(perr.Type)
		result.Error.Suggestion = perr.Suggestion
		if perr.HasLine() {
			line := perr.Line
			result.Error.Line = &line
		}
	}
	return result
}

// collectSources expands paths into source files. Files named explicitly are
// kept regardless of extension; directories contribute matching files.
func collectSources(paths, extensions []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			hidden := p != path && strings.HasPrefix(d.Name(), ".")
			if d.IsDir() {
				if hidden {
					return filepath.SkipDir
				}
				return nil
			}
			if !hidden && slices.Contains(extensions, filepath.Ext(p)) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", path, err)
		}
	}
	return files, nil
}
