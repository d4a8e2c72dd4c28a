package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/flowmaker/pkg/cli"
	"mercator-hq/flowmaker/pkg/diagram"
	"mercator-hq/flowmaker/pkg/diagram/retention"
)

var diagramCmd = &cobra.Command{
	Use:   "diagram",
	Short: "Manage stored diagrams",
	Long: `Save, inspect and prune diagrams in the configured storage backend, and
encode or decode share links.`,
}

var diagramFlags struct {
	mode          string
	activity      string
	limit         int
	offset        int
	sort          string
	updatedAfter  string
	updatedBefore string
	base          string
	decode        bool
	days          int
	maxRecords    int64
}

var diagramSaveCmd = &cobra.Command{
	Use:   "save <activity> [file]",
	Short: "Compile and save the diagram for an activity",
	Long: `Compile a source and store it as the activity's diagram, replacing any
diagram saved earlier for the same activity. Sources that fail to compile
are not saved.

Examples:
  flowmaker diagram save lesson-1 algorithm.pseudo
  cat outline.txt | flowmaker diagram save lesson-2 --mode tree_diagram`,
	Args: cobra.RangeArgs(1, 2),
	RunE: saveDiagram,
}

var diagramGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show a stored diagram",
	Long: `Show a stored diagram by id, or the diagram saved for --activity.

Examples:
  flowmaker diagram get 3f2c9a4e-...
  flowmaker diagram get --activity lesson-1 -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: getDiagram,
}

var diagramListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored diagrams",
	Long: `List stored diagrams, most recently updated first.

Examples:
  flowmaker diagram list
  flowmaker diagram list --mode flowchart --limit 10
  flowmaker diagram list --updated-after 2026-01-01T00:00:00Z --sort asc`,
	Args: cobra.NoArgs,
	RunE: listDiagrams,
}

var diagramDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored diagram",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteDiagram,
}

var diagramShareCmd = &cobra.Command{
	Use:   "share [file]",
	Short: "Encode a source as a share link",
	Long: `Encode a source as a share link, or decode a link or ?diagram= value back
into its source with --decode.

Examples:
  flowmaker diagram share algorithm.pseudo
  flowmaker diagram share --decode 'http://localhost:3000/flowchart?diagram=cmVhZCBu'`,
	Args: cobra.MaximumNArgs(1),
	RunE: shareDiagram,
}

var diagramPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply the retention policy once",
	Long: `Remove diagrams not updated within retention.days, then the least
recently updated diagrams beyond retention.max_records.

Examples:
  flowmaker diagram prune
  flowmaker diagram prune --days 30 --max-records 1000`,
	Args: cobra.NoArgs,
	RunE: pruneDiagrams,
}

func init() {
	diagramSaveCmd.Flags().StringVarP(&diagramFlags.mode, "mode", "m", "", "rendering mode; render.default_mode when empty")

	diagramGetCmd.Flags().StringVar(&diagramFlags.activity, "activity", "", "get the diagram saved for this activity")

	diagramListCmd.Flags().StringVar(&diagramFlags.activity, "activity", "", "filter by activity")
	diagramListCmd.Flags().StringVarP(&diagramFlags.mode, "mode", "m", "", "filter by mode")
	diagramListCmd.Flags().IntVar(&diagramFlags.limit, "limit", 50, "maximum number of diagrams")
	diagramListCmd.Flags().IntVar(&diagramFlags.offset, "offset", 0, "number of diagrams to skip")
	diagramListCmd.Flags().StringVar(&diagramFlags.sort, "sort", diagram.SortNewest, "sort by update time (asc, desc)")
	diagramListCmd.Flags().StringVar(&diagramFlags.updatedAfter, "updated-after", "", "only diagrams updated after this RFC3339 time")
	diagramListCmd.Flags().StringVar(&diagramFlags.updatedBefore, "updated-before", "", "only diagrams updated before this RFC3339 time")

	diagramShareCmd.Flags().StringVarP(&diagramFlags.mode, "mode", "m", "", "mode path appended to the share base URL")
	diagramShareCmd.Flags().StringVar(&diagramFlags.base, "base", "", "override server.share_base_url")
	diagramShareCmd.Flags().BoolVar(&diagramFlags.decode, "decode", false, "decode a share link or value instead")

	diagramPruneCmd.Flags().IntVar(&diagramFlags.days, "days", -1, "override retention.days")
	diagramPruneCmd.Flags().Int64Var(&diagramFlags.maxRecords, "max-records", -1, "override retention.max_records")

	diagramCmd.AddCommand(diagramSaveCmd, diagramGetCmd, diagramListCmd, diagramDeleteCmd, diagramShareCmd, diagramPruneCmd)
	rootCmd.AddCommand(diagramCmd)
}

// DiagramView is a stored diagram as printed by the diagram commands.
type DiagramView struct {
	*diagram.Diagram
	ShareURL string `json:"share_url,omitempty"`
}

func (v DiagramView) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ID:       %s\n", v.ID)
	if v.ActivityID != "" {
		fmt.Fprintf(&sb, "Activity: %s\n", v.ActivityID)
	}
	fmt.Fprintf(&sb, "Mode:     %s\n", v.Mode)
	fmt.Fprintf(&sb, "Created:  %s\n", v.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "Updated:  %s\n", v.UpdatedAt.Format(time.RFC3339))
	if v.ShareURL != "" {
		fmt.Fprintf(&sb, "Share:    %s\n", v.ShareURL)
	}
	sb.WriteString("\n")
	sb.WriteString(v.Graph)
	return sb.String()
}

// DiagramList is the diagram list result.
type DiagramList struct {
	Diagrams []*diagram.Diagram `json:"diagrams"`
	Total    int64              `json:"total"`
}

func (l DiagramList) Text() string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tACTIVITY\tMODE\tUPDATED")
	for _, d := range l.Diagrams {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.ID, d.ActivityID, d.Mode, d.UpdatedAt.Format(time.RFC3339))
	}
	tw.Flush()
	fmt.Fprintf(&sb, "\n%d of %d diagram(s)\n", len(l.Diagrams), l.Total)
	return sb.String()
}

// ShareOutput is the diagram share result.
type ShareOutput struct {
	URL    string `json:"url,omitempty"`
	Source string `json:"source,omitempty"`
}

func (s ShareOutput) Text() string {
	if s.URL != "" {
		return s.URL
	}
	return s.Source
}

// PruneOutput is the diagram prune result.
type PruneOutput struct {
	Pruned    int64 `json:"pruned"`
	Remaining int64 `json:"remaining"`
}

func (p PruneOutput) Text() string {
	return fmt.Sprintf("Pruned %d diagram(s), %d remaining", p.Pruned, p.Remaining)
}

// withManager opens storage, runs fn and closes storage.
func withManager(fn func(*diagram.Manager) error) error {
	manager, err := openManager(nil)
	if err != nil {
		return cli.NewCommandError("diagram", fmt.Errorf("failed to open storage: %w", err))
	}
	defer manager.Store().Close()
	return fn(manager)
}

func (v *DiagramView) withShare() error {
	u, err := diagram.ShareURLForMode(state.cfg.Server.ShareBaseURL, v.Mode, v.Source)
	if err != nil {
		return err
	}
	v.ShareURL = u
	return nil
}

func saveDiagram(cmd *cobra.Command, args []string) error {
	f, err := formatter()
	if err != nil {
		return err
	}

	var path string
	if len(args) == 2 {
		path = args[1]
	}
	source, err := readSource(cmd, path)
	if err != nil {
		return err
	}

	return withManager(func(m *diagram.Manager) error {
		d, err := m.Save(cmd.Context(), &diagram.Diagram{
			ActivityID: args[0],
			Mode:       diagramFlags.mode,
			Source:     source,
		})
		if err != nil {
			var compileErr *diagram.CompileError
			if errors.As(err, &compileErr) {
				fmt.Fprint(cmd.ErrOrStderr(), cli.CompileErrorDetail(compileErr.Cause))
			}
			return cli.NewCommandError("diagram save", err)
		}

		view := DiagramView{Diagram: d}
		if err := view.withShare(); err != nil {
			return err
		}
		return f.FormatTo(cmd.OutOrStdout(), view)
	})
}

func getDiagram(cmd *cobra.Command, args []string) error {
	f, err := formatter()
	if err != nil {
		return err
	}
	if (len(args) == 1) == (diagramFlags.activity != "") {
		return cli.NewConfigError("id", "specify exactly one of <id> or --activity")
	}

	return withManager(func(m *diagram.Manager) error {
		var d *diagram.Diagram
		var err error
		if diagramFlags.activity != "" {
			d, err = m.GetByActivity(cmd.Context(), diagramFlags.activity)
		} else {
			d, err = m.Get(cmd.Context(), args[0])
		}
		if err != nil {
			return cli.NewCommandError("diagram get", err)
		}

		view := DiagramView{Diagram: d}
		if err := view.withShare(); err != nil {
			return err
		}
		return f.FormatTo(cmd.OutOrStdout(), view)
	})
}

func listDiagrams(cmd *cobra.Command, args []string) error {
	f, err := formatter()
	if err != nil {
		return err
	}

	q := &diagram.Query{
		ActivityID: diagramFlags.activity,
		Mode:       diagramFlags.mode,
		Limit:      diagramFlags.limit,
		Offset:     diagramFlags.offset,
		SortOrder:  diagramFlags.sort,
	}
	if q.SortOrder != diagram.SortNewest && q.SortOrder != diagram.SortOldest {
		return cli.NewConfigError("sort", fmt.Sprintf("invalid sort %q: must be 'asc' or 'desc'", q.SortOrder))
	}
	if q.Limit < 0 || q.Offset < 0 {
		return cli.NewConfigError("limit", "limit and offset must be non-negative")
	}
	if q.UpdatedAfter, err = parseTimeFlag("updated-after", diagramFlags.updatedAfter); err != nil {
		return err
	}
	if q.UpdatedBefore, err = parseTimeFlag("updated-before", diagramFlags.updatedBefore); err != nil {
		return err
	}

	return withManager(func(m *diagram.Manager) error {
		diagrams, err := m.List(cmd.Context(), q)
		if err != nil {
			return cli.NewCommandError("diagram list", err)
		}
		total, err := m.Store().Count(cmd.Context(), &diagram.Query{
			ActivityID:    q.ActivityID,
			Mode:          q.Mode,
			UpdatedAfter:  q.UpdatedAfter,
			UpdatedBefore: q.UpdatedBefore,
		})
		if err != nil {
			return cli.NewCommandError("diagram list", err)
		}
		if diagrams == nil {
			diagrams = []*diagram.Diagram{}
		}
		return f.FormatTo(cmd.OutOrStdout(), DiagramList{Diagrams: diagrams, Total: total})
	})
}

func parseTimeFlag(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, cli.NewConfigError(name, fmt.Sprintf("invalid time %q: must be RFC3339", value))
	}
	return t, nil
}

func deleteDiagram(cmd *cobra.Command, args []string) error {
	return withManager(func(m *diagram.Manager) error {
		if err := m.Delete(cmd.Context(), args[0]); err != nil {
			return cli.NewCommandError("diagram delete", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted diagram %s\n", args[0])
		return nil
	})
}

func shareDiagram(cmd *cobra.Command, args []string) error {
	f, err := formatter()
	if err != nil {
		return err
	}

	var path string
	if len(args) == 1 {
		path = args[0]
	}

	if diagramFlags.decode {
		value := path
		if value == "" || value == "-" {
			in, err := readSource(cmd, "")
			if err != nil {
				return err
			}
			value = strings.TrimSpace(in)
		}
		source, err := decodeShareArg(value)
		if err != nil {
			return cli.NewCommandError("diagram share", err)
		}
		return f.FormatTo(cmd.OutOrStdout(), ShareOutput{Source: source})
	}

	source, err := readSource(cmd, path)
	if err != nil {
		return err
	}
	base := state.cfg.Server.ShareBaseURL
	if diagramFlags.base != "" {
		base = diagramFlags.base
	}

	var u string
	if diagramFlags.mode != "" {
		u, err = diagram.ShareURLForMode(base, diagramFlags.mode, source)
	} else {
		u, err = diagram.ShareURL(base, source)
	}
	if err != nil {
		return cli.NewConfigError("base", err.Error())
	}
	return f.FormatTo(cmd.OutOrStdout(), ShareOutput{URL: u})
}

// decodeShareArg accepts a full share link or a bare ?diagram= value.
func decodeShareArg(value string) (string, error) {
	if _, query, ok := strings.Cut(value, "?"); ok {
		for _, pair := range strings.Split(query, "&") {
			if v, ok := strings.CutPrefix(pair, diagram.ShareParam+"="); ok {
				return diagram.DecodeShare(v)
			}
		}
		return "", fmt.Errorf("link has no %s parameter", diagram.ShareParam)
	}
	return diagram.DecodeShare(value)
}

func pruneDiagrams(cmd *cobra.Command, args []string) error {
	f, err := formatter()
	if err != nil {
		return err
	}

	cfg := state.cfg.Retention
	if diagramFlags.days >= 0 {
		cfg.Days = diagramFlags.days
	}
	if diagramFlags.maxRecords >= 0 {
		cfg.MaxRecords = diagramFlags.maxRecords
	}

	return withManager(func(m *diagram.Manager) error {
		pruned, err := retention.NewPruner(m.Store(), cfg).Prune(cmd.Context())
		if err != nil {
			return cli.NewCommandError("diagram prune", err)
		}
		remaining, err := m.Store().Count(cmd.Context(), &diagram.Query{})
		if err != nil {
			return cli.NewCommandError("diagram prune", err)
		}
		return f.FormatTo(cmd.OutOrStdout(), PruneOutput{Pruned: pruned, Remaining: remaining})
	})
}
