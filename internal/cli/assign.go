package cli

import (
	"github.com/spf13/cobra"
)

var assignCmd = &cobra.Command{
	Use:   "assign WORKSPACE MONITOR",
	Short: "Bind a workspace to a monitor",
	Long: `Bind a workspace to a monitor and write the change to the compositor
config immediately. River has no per-output workspace config, so the
assignment is reported as skipped there.`,
	Example: "  xwlm assign 3 HDMI-A-1",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := commandSession(cmd)
		if err != nil {
			return err
		}
		report, err := sess.AssignWorkspace(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return printReport(cmd, report)
	},
}

var unassignCmd = &cobra.Command{
	Use:   "unassign WORKSPACE",
	Short: "Remove a workspace binding",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := commandSession(cmd)
		if err != nil {
			return err
		}
		report, err := sess.UnassignWorkspace(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printReport(cmd, report)
	},
}
