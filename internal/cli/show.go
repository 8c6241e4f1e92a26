package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/1broseidon/xwlm/internal/extract"
	"github.com/1broseidon/xwlm/internal/geometry"
	"github.com/1broseidon/xwlm/internal/session"
)

type monitorView struct {
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	X             int      `json:"x"`
	Y             int      `json:"y"`
	Width         int      `json:"width"`
	Height        int      `json:"height"`
	LogicalWidth  int      `json:"logical_width"`
	LogicalHeight int      `json:"logical_height"`
	Refresh       float64  `json:"refresh,omitempty"`
	Scale         float64  `json:"scale"`
	Transform     string   `json:"transform"`
	Enabled       bool     `json:"enabled"`
	Workspaces    []string `json:"workspaces,omitempty"`
}

type layoutView struct {
	Dialect    string        `json:"dialect"`
	ConfigPath string        `json:"config_path"`
	Monitors   []monitorView `json:"monitors"`
	Orphans    []string      `json:"orphaned_workspaces,omitempty"`
}

func newLayoutView(sess *session.Session) layoutView {
	v := layoutView{
		Dialect:    string(sess.Dialect().Kind()),
		ConfigPath: sess.ConfigPath(),
	}
	for _, m := range sess.Snapshot().Monitors {
		b := m.Bounds()
		v.Monitors = append(v.Monitors, monitorView{
			Name:          m.Name,
			Description:   m.Description,
			X:             m.X,
			Y:             m.Y,
			Width:         m.Width,
			Height:        m.Height,
			LogicalWidth:  b.Width,
			LogicalHeight: b.Height,
			Refresh:       m.Refresh,
			Scale:         m.Scale,
			Transform:     m.Transform.String(),
			Enabled:       m.Enabled,
			Workspaces:    append([]string(nil), m.Workspaces...),
		})
	}
	for _, a := range sess.Orphans() {
		v.Orphans = append(v.Orphans, a.Workspace+"→"+a.Monitor)
	}
	return v
}

func formatMode(m monitorView) string {
	if m.Width == 0 || m.Height == 0 {
		return "preferred"
	}
	mode := fmt.Sprintf("%dx%d", m.Width, m.Height)
	if m.Refresh > 0 {
		mode += "@" + strconv.FormatFloat(m.Refresh, 'f', -1, 64)
	}
	return mode
}

func printLayout(w io.Writer, v layoutView) {
	printSection(w, fmt.Sprintf("%s layout", v.Dialect))
	printLabelValue(w, "Config", v.ConfigPath)
	fmt.Fprintln(w)

	rows := make([][]string, 0, len(v.Monitors))
	for _, m := range v.Monitors {
		state := "on"
		if !m.Enabled {
			state = "off"
		}
		rows = append(rows, []string{
			m.Name,
			state,
			formatMode(m),
			fmt.Sprintf("%d,%d", m.X, m.Y),
			strconv.FormatFloat(m.Scale, 'f', -1, 64),
			m.Transform,
			strings.Join(m.Workspaces, " "),
		})
	}
	printTable(w, []string{"NAME", "STATE", "MODE", "POS", "SCALE", "TRANSFORM", "WORKSPACES"}, rows)

	if len(v.Orphans) > 0 {
		fmt.Fprintln(w)
		printWarning(w, "workspaces bound to unknown monitors: "+strings.Join(v.Orphans, ", "))
	}
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current monitor layout",
	Long: `Show the monitor layout read from the compositor config, merged with the
monitors the compositor currently reports.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := commandSession(cmd)
		if err != nil {
			return err
		}
		v := newLayoutView(sess)
		if jsonOutput {
			return outputJSON(cmd.OutOrStdout(), v)
		}
		printLayout(cmd.OutOrStdout(), v)
		return nil
	},
}

type recordView struct {
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Text     string `json:"text"`
}

type extractView struct {
	Root     string       `json:"root"`
	Files    []string     `json:"files"`
	Records  []recordView `json:"records"`
	Warnings []string     `json:"warnings,omitempty"`
}

func newExtractView(res *extract.Result) extractView {
	v := extractView{
		Root:  res.Source.Root,
		Files: append([]string(nil), res.Source.Files...),
	}
	for _, r := range res.MonitorRecords {
		v.Records = append(v.Records, recordView{Kind: "monitor", Name: r.Monitor.Name, Location: r.Location.String(), Text: r.Raw})
	}
	for _, r := range res.WorkspaceRecords {
		v.Records = append(v.Records, recordView{Kind: "workspace", Name: r.Assignment.Workspace, Location: r.Location.String(), Text: r.Raw})
	}
	for _, w := range res.Warnings {
		v.Warnings = append(v.Warnings, w.Error())
	}
	return v
}

var (
	consolidate     bool
	consolidateInto string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "List monitor and workspace declarations found in the config tree",
	Long: `Walk the compositor config and every file it includes, and list each
monitor and workspace declaration with the file and line it came from.

With --consolidate the declarations are moved into one new file next to the
root config (or --to PATH) which the root config then includes.`,
	Example: `  xwlm extract
  xwlm extract --consolidate --dry-run
  xwlm extract --consolidate --to displays.conf`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if consolidateInto != "" && !consolidate {
			return errors.New("--to requires --consolidate")
		}
		sess, err := commandSession(cmd)
		if err != nil {
			return err
		}
		if consolidate {
			return runConsolidate(cmd, sess)
		}
		v := newExtractView(sess.Result())
		if jsonOutput {
			return outputJSON(cmd.OutOrStdout(), v)
		}

		w := cmd.OutOrStdout()
		printSection(w, "Config tree")
		for _, f := range v.Files {
			_, _ = infoColor.Fprintf(w, "  • %s\n", f)
		}
		fmt.Fprintln(w)
		printSection(w, "Declarations")
		if len(v.Records) == 0 {
			_, _ = valueColor.Fprintln(w, "  none found")
		}
		for _, r := range v.Records {
			_, _ = labelColor.Fprintf(w, "  %-9s %-10s ", r.Kind, r.Name)
			_, _ = valueColor.Fprintln(w, r.Location)
			for _, line := range strings.Split(r.Text, "\n") {
				fmt.Fprintf(w, "      %s\n", strings.TrimSpace(line))
			}
		}
		if len(v.Warnings) > 0 {
			fmt.Fprintln(w)
			printSection(w, "Warnings")
			for _, msg := range v.Warnings {
				printWarning(w, msg)
			}
		}
		return nil
	},
}

func runConsolidate(cmd *cobra.Command, sess *session.Session) error {
	if dryRun {
		plan, err := sess.ConsolidatePlan(consolidateInto)
		if err != nil {
			return err
		}
		return printPlan(cmd.OutOrStdout(), plan.Diff(), len(plan.Files), skippedNames(plan.Skipped))
	}
	report, err := sess.Consolidate(cmd.Context(), consolidateInto)
	if err != nil {
		return err
	}
	return printReport(cmd, report)
}

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show what apply would change in the config files",
	Long: `Show the line diff between the compositor config on disk and the layout
xwlm would write, including monitors the compositor reports that the config
does not mention yet.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := commandSession(cmd)
		if err != nil {
			return err
		}
		plan, err := sess.Plan()
		if err != nil {
			return err
		}
		return printPlan(cmd.OutOrStdout(), plan.Diff(), len(plan.Files), skippedNames(plan.Skipped))
	},
}

func skippedNames(as []geometry.Assignment) []string {
	var out []string
	for _, a := range as {
		out = append(out, a.Workspace)
	}
	return out
}

type planView struct {
	Diff     string   `json:"diff"`
	Files    int      `json:"files"`
	Skipped  []string `json:"skipped_workspaces,omitempty"`
	UpToDate bool     `json:"up_to_date"`
}

func printPlan(w io.Writer, diff string, files int, skipped []string) error {
	if jsonOutput {
		return outputJSON(w, planView{Diff: diff, Files: files, Skipped: skipped, UpToDate: files == 0})
	}
	if files == 0 {
		printSuccess(w, "config is up to date")
	} else {
		printDiff(w, diff)
	}
	if len(skipped) > 0 {
		printWarning(w, "workspace assignments not supported by this compositor: "+strings.Join(skipped, ", "))
	}
	return nil
}

func init() {
	extractCmd.Flags().BoolVar(&consolidate, "consolidate", false, "Move all monitor and workspace declarations into one included file")
	extractCmd.Flags().StringVar(&consolidateInto, "to", "", "File to consolidate into (default: monitors.conf, outputs.conf or outputs next to the root config)")
	extractCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "With --consolidate, print the diff instead of writing it")
}
