package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/1broseidon/xwlm/internal/geometry"
	"github.com/1broseidon/xwlm/internal/layout"
	"github.com/1broseidon/xwlm/internal/session"
)

var (
	dryRun    bool
	moveDX    int
	moveDY    int
	scaleBy   float64
	toggleOn  bool
	toggleOff bool
)

// errNoChange marks an edit that leaves the layout as it is.
var errNoChange = errors.New("no change")

// runEdit opens a session, applies the operation built by build and
// writes the result, or prints the diff under --dry-run.
func runEdit(cmd *cobra.Command, build func(sess *session.Session) (layout.Operation, error)) error {
	sess, err := commandSession(cmd)
	if err != nil {
		return err
	}
	op, err := build(sess)
	if errors.Is(err, errNoChange) {
		printSuccess(cmd.OutOrStdout(), "nothing to change")
		return nil
	}
	if err != nil {
		return err
	}
	if op != nil {
		if err := sess.Apply(op); err != nil {
			return err
		}
	}
	return commit(cmd, sess)
}

// commit writes the session's layout, or previews it under --dry-run.
func commit(cmd *cobra.Command, sess *session.Session) error {
	w := cmd.OutOrStdout()
	if dryRun {
		plan, err := sess.Plan()
		if err != nil {
			return err
		}
		return printPlan(w, plan.Diff(), len(plan.Files), skippedNames(plan.Skipped))
	}
	report, err := sess.Save(cmd.Context())
	if err != nil {
		return err
	}
	return printReport(cmd, report)
}

type reportView struct {
	FilesWritten []string `json:"files_written"`
	Skipped      []string `json:"skipped_workspaces,omitempty"`
	Reloaded     bool     `json:"reloaded"`
	ReloadError  string   `json:"reload_error,omitempty"`
}

func printReport(cmd *cobra.Command, report *session.SaveReport) error {
	v := reportView{Skipped: skippedNames(report.Plan.Skipped), Reloaded: report.Reloaded}
	for _, f := range report.Plan.Files {
		v.FilesWritten = append(v.FilesWritten, f.Path)
	}
	if report.ReloadErr != nil {
		v.ReloadError = report.ReloadErr.Error()
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		return outputJSON(w, v)
	}
	if len(v.FilesWritten) == 0 {
		printSuccess(w, "config is up to date")
	} else {
		printSuccess(w, "wrote "+countNoun(len(v.FilesWritten), "file", "files"))
		for _, f := range v.FilesWritten {
			printLabelValue(w, "file", f)
		}
	}
	if len(v.Skipped) > 0 {
		printWarning(w, "workspace assignments not supported by this compositor: "+strings.Join(v.Skipped, ", "))
	}
	switch {
	case v.ReloadError != "":
		printError(cmd.ErrOrStderr(), "compositor reload failed: "+v.ReloadError)
	case v.Reloaded:
		printSuccess(w, "compositor reloaded")
	}
	return nil
}

// currentOp builds an operation from the monitor's current state.
func currentOp(sess *session.Session, name string, build func(cur geometry.Monitor) (layout.Operation, error)) (layout.Operation, error) {
	cur, ok := sess.Snapshot().Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", geometry.ErrUnknownMonitor, name)
	}
	return build(cur)
}

func parseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size %q (want WIDTHxHEIGHT)", s)
	}
	w, err := strconv.Atoi(strings.TrimSpace(ws))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid width in %q", s)
	}
	h, err := strconv.Atoi(strings.TrimSpace(hs))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid height in %q", s)
	}
	return w, h, nil
}

var moveCmd = &cobra.Command{
	Use:     "move MONITOR",
	Short:   "Move a monitor by a relative offset",
	Example: "  xwlm move HDMI-A-1 --dx 1920\n  xwlm move DP-2 --dy=-1080",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEdit(cmd, func(*session.Session) (layout.Operation, error) {
			if moveDX == 0 && moveDY == 0 {
				return nil, errNoChange
			}
			return layout.Move{Monitor: args[0], DX: moveDX, DY: moveDY}, nil
		})
	},
}

var placeCmd = &cobra.Command{
	Use:     "place MONITOR X Y",
	Short:   "Move a monitor to an absolute position",
	Example: "  xwlm place eDP-1 0 1440",
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		x, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid x %q", args[1])
		}
		y, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid y %q", args[2])
		}
		return runEdit(cmd, func(*session.Session) (layout.Operation, error) {
			return layout.Place{Monitor: args[0], X: x, Y: y}, nil
		})
	},
}

var resizeCmd = &cobra.Command{
	Use:     "resize MONITOR WIDTHxHEIGHT",
	Short:   "Set a monitor's mode size",
	Example: "  xwlm resize DP-1 3840x2160",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, h, err := parseSize(args[1])
		if err != nil {
			return err
		}
		return runEdit(cmd, func(*session.Session) (layout.Operation, error) {
			return layout.Resize{Monitor: args[0], Width: w, Height: h}, nil
		})
	},
}

var scaleCmd = &cobra.Command{
	Use:   "scale MONITOR [SCALE]",
	Short: "Set or adjust a monitor's scale",
	Long: `Set a monitor's scale, or change it by --by. Scale is clamped to 0.1-10 and
rounded to two decimals.`,
	Example: "  xwlm scale eDP-1 1.5\n  xwlm scale eDP-1 --by=-0.25",
	Args:    cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		byChanged := cmd.Flags().Changed("by")
		switch {
		case len(args) == 2 && byChanged:
			return errors.New("give either SCALE or --by, not both")
		case len(args) == 1 && !byChanged:
			return errors.New("give SCALE or --by")
		}
		if byChanged {
			return runEdit(cmd, func(*session.Session) (layout.Operation, error) {
				return layout.Rescale{Monitor: args[0], Delta: scaleBy}, nil
			})
		}
		target, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid scale %q", args[1])
		}
		return runEdit(cmd, func(sess *session.Session) (layout.Operation, error) {
			return currentOp(sess, args[0], func(cur geometry.Monitor) (layout.Operation, error) {
				if geometry.ClampScale(target) == cur.Scale {
					return nil, errNoChange
				}
				return layout.Rescale{Monitor: cur.Name, Delta: target - cur.EffectiveScale()}, nil
			})
		})
	},
}

var rotateCmd = &cobra.Command{
	Use:   "rotate MONITOR [TRANSFORM]",
	Short: "Set a monitor's transform, or step to the next one",
	Long: `Set a monitor's transform: normal, 90, 180, 270, flipped, flipped-90,
flipped-180 or flipped-270. Without TRANSFORM the monitor steps to the next
one in that order.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return runEdit(cmd, func(*session.Session) (layout.Operation, error) {
				return layout.Rotate{Monitor: args[0]}, nil
			})
		}
		t, err := geometry.ParseTransformName(args[1])
		if err != nil {
			return err
		}
		return runEdit(cmd, func(*session.Session) (layout.Operation, error) {
			return layout.RotateTo{Monitor: args[0], Transform: t}, nil
		})
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle MONITOR",
	Short: "Enable or disable a monitor",
	Long: `Flip a monitor between enabled and disabled, or force a state with --on or
--off. The last enabled monitor cannot be disabled.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if toggleOn && toggleOff {
			return errors.New("--on and --off are mutually exclusive")
		}
		return runEdit(cmd, func(sess *session.Session) (layout.Operation, error) {
			return currentOp(sess, args[0], func(cur geometry.Monitor) (layout.Operation, error) {
				if (toggleOn && cur.Enabled) || (toggleOff && !cur.Enabled) {
					return nil, errNoChange
				}
				return layout.Toggle{Monitor: cur.Name}, nil
			})
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Line up enabled monitors left to right",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEdit(cmd, func(*session.Session) (layout.Operation, error) {
			return layout.Reset{}, nil
		})
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Write the current layout back to the config files",
	Long: `Write the layout xwlm sees into the compositor config without editing it
first. Monitors the compositor reports that the config does not declare are
added. Use --dry-run to preview.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEdit(cmd, func(*session.Session) (layout.Operation, error) {
			return nil, nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{moveCmd, placeCmd, resizeCmd, scaleCmd, rotateCmd, toggleCmd, resetCmd, applyCmd} {
		c.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Print the config diff instead of writing it")
	}
	moveCmd.Flags().IntVar(&moveDX, "dx", 0, "Horizontal offset in logical pixels")
	moveCmd.Flags().IntVar(&moveDY, "dy", 0, "Vertical offset in logical pixels")
	scaleCmd.Flags().Float64Var(&scaleBy, "by", 0, "Change the scale by this amount")
	toggleCmd.Flags().BoolVar(&toggleOn, "on", false, "Enable the monitor")
	toggleCmd.Flags().BoolVar(&toggleOff, "off", false, "Disable the monitor")
}
