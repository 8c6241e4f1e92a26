package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1broseidon/xwlm/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server on stdio",
	Long: `Start the MCP server on stdio so an assistant can inspect and rearrange
monitors. Logs go to the log file, never to stdout.`,
	Example: "  claude mcp add xwlm -- xwlm mcp serve",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadSettings()
		if err != nil {
			return err
		}
		logger, closer, err := fileLogger(res.Config)
		if err != nil {
			return err
		}
		defer closer.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sess, err := openSession(ctx, res.Config, logger)
		if err != nil {
			logger.Error("mcp session failed", "error", err)
			return err
		}
		server := mcp.NewServer(sess, mcp.Options{Logger: logger, Version: rootCmd.Version})
		if err := server.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("mcp server error", "error", err)
			return err
		}
		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
}
