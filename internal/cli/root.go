// Package cli implements the xwlm command tree.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	settingsPath     string
	compositorConfig string
	compositorFlag   string
	jsonOutput       bool
	verbose          bool

	groupTitleColor   = color.New(color.FgCyan, color.Bold)
	sectionTitleColor = color.New(color.FgBlue, color.Bold)
)

var rootCmd = &cobra.Command{
	Use:     "xwlm",
	Version: "dev",
	Short:   "Monitor layout editor for Wayland compositors",
	Long: `xwlm edits monitor layout and workspace placement for Hyprland, Sway and River.

Run without a command to open the interactive editor. Changes are written back
into the compositor's own config files, in place, and the compositor is asked
to reload.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	RunE: runEditor,
}

// SetVersion sets the version printed by --version and reported over MCP.
func SetVersion(v string) {
	if v == "" {
		return
	}
	rootCmd.Version = v
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

// customHelpFunc prints help with colored group titles.
func customHelpFunc(cmd *cobra.Command, args []string) {
	var help strings.Builder

	if cmd.Long != "" {
		help.WriteString(cmd.Long)
		help.WriteString("\n\n")
	} else if cmd.Short != "" {
		help.WriteString(cmd.Short)
		help.WriteString("\n\n")
	}

	help.WriteString(sectionTitleColor.Sprint("Usage:"))
	help.WriteString("\n")
	fmt.Fprintf(&help, "  %s\n", cmd.UseLine())
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(&help, "  %s [command]\n", cmd.CommandPath())
	}
	help.WriteString("\n")

	for _, group := range cmd.Groups() {
		help.WriteString(groupTitleColor.Sprint(group.Title))
		help.WriteString("\n")
		for _, c := range cmd.Commands() {
			if c.GroupID == group.ID && c.IsAvailableCommand() {
				fmt.Fprintf(&help, "  %-11s %s\n", c.Name(), c.Short)
			}
		}
		help.WriteString("\n")
	}

	hasUngrouped := false
	for _, c := range cmd.Commands() {
		if c.GroupID == "" && c.IsAvailableCommand() {
			if !hasUngrouped {
				help.WriteString(sectionTitleColor.Sprint("Commands:"))
				help.WriteString("\n")
				hasUngrouped = true
			}
			fmt.Fprintf(&help, "  %-11s %s\n", c.Name(), c.Short)
		}
	}
	if hasUngrouped {
		help.WriteString("\n")
	}

	if cmd.HasExample() {
		help.WriteString(sectionTitleColor.Sprint("Examples:"))
		help.WriteString("\n")
		help.WriteString(cmd.Example)
		help.WriteString("\n\n")
	}

	if cmd.HasAvailableLocalFlags() || cmd.HasAvailableInheritedFlags() {
		help.WriteString(sectionTitleColor.Sprint("Flags:"))
		help.WriteString("\n")
		help.WriteString(cmd.LocalFlags().FlagUsages())
		help.WriteString(cmd.InheritedFlags().FlagUsages())
		help.WriteString("\n")
	}

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(&help, "Use \"%s [command] --help\" for more information about a command.\n", cmd.CommandPath())
	}

	fmt.Fprint(cmd.OutOrStdout(), help.String())
}

func init() {
	rootCmd.SetHelpFunc(customHelpFunc)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&settingsPath, "config", "", "xwlm settings file (default: ~/.config/xwlm/config.yaml)")
	pf.StringVarP(&compositorConfig, "compositor-config", "c", "", "Compositor config file to edit (default: detected)")
	pf.StringVar(&compositorFlag, "compositor", "", "Compositor dialect: hyprland, sway or river (default: from settings)")
	pf.BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")

	rootCmd.AddGroup(&cobra.Group{ID: "inspect", Title: "Inspect:"})
	rootCmd.AddGroup(&cobra.Group{ID: "edit", Title: "Edit Layout:"})
	rootCmd.AddGroup(&cobra.Group{ID: "workspaces", Title: "Workspaces:"})
	rootCmd.AddGroup(&cobra.Group{ID: "tooling", Title: "Settings & Tooling:"})

	versionCmd := &cobra.Command{
		Use:     "version",
		Short:   "Print the xwlm version",
		Args:    cobra.NoArgs,
		GroupID: "tooling",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), rootCmd.Version)
		},
	}
	rootCmd.AddCommand(versionCmd)

	helpCmd := &cobra.Command{
		Use:     "help [command]",
		Short:   "Help about any command",
		GroupID: "tooling",
		Run: func(cmd *cobra.Command, args []string) {
			target, _, err := cmd.Root().Find(args)
			if err != nil || target == nil {
				target = cmd.Root()
			}
			_ = target.Help()
		},
	}
	rootCmd.SetHelpCommand(helpCmd)

	for _, c := range []*cobra.Command{showCmd, extractCmd, diffCmd} {
		c.GroupID = "inspect"
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{moveCmd, placeCmd, resizeCmd, scaleCmd, rotateCmd, toggleCmd, resetCmd, applyCmd} {
		c.GroupID = "edit"
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{assignCmd, unassignCmd} {
		c.GroupID = "workspaces"
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{configCmd, setupCmd, mcpCmd} {
		c.GroupID = "tooling"
		rootCmd.AddCommand(c)
	}
}

// Execute runs the command tree.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
