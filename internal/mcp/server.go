// Package mcp exposes the layout session over the Model Context Protocol
// so an assistant can inspect and rearrange monitors.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/xwlm/internal/session"
)

const (
	ServerName    = "xwlm"
	ServerVersion = "0.1.0"
)

// Options configures NewServer.
type Options struct {
	Logger  *slog.Logger
	Version string
}

// Server is the MCP server for one layout session.
type Server struct {
	mcpServer *mcpsdk.Server
	sess      *session.Session
	logger    *slog.Logger
}

// NewServer creates an MCP server whose tools edit sess.
func NewServer(sess *session.Session, opts Options) *Server {
	s := &Server{sess: sess, logger: opts.Logger}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	version := opts.Version
	if version == "" {
		version = ServerVersion
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: version,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("mcp server starting", "dialect", string(s.sess.Dialect().Kind()), "config", s.sess.ConfigPath())
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_monitors",
		Description: "List every monitor in the layout being edited: position, mode, scale, transform, enabled state and bound workspaces. Positions are in logical pixels. Pass rescan to drop unsaved edits and re-read the compositor config and live outputs.",
	}, s.handleListMonitors)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_monitor",
		Description: "Move a monitor by a relative offset. Monitors it would overlap are pushed aside; positions never go negative.",
	}, s.handleMoveMonitor)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "place_monitor",
		Description: "Move a monitor to an absolute position. Monitors it would overlap are pushed aside.",
	}, s.handlePlaceMonitor)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "resize_monitor",
		Description: "Set a monitor's mode size in pixels. The logical size is the mode divided by the scale.",
	}, s.handleResizeMonitor)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "scale_monitor",
		Description: "Set a monitor's scale (absolute via scale, or relative via delta). Scale is clamped to 0.1-10 and rounded to two decimals.",
	}, s.handleScaleMonitor)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "rotate_monitor",
		Description: "Set a monitor's transform, or step to the next one when transform is omitted. 90 and 270 variants swap width and height.",
	}, s.handleRotateMonitor)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_monitor",
		Description: "Enable or disable a monitor. Disabling the last enabled monitor is rejected.",
	}, s.handleToggleMonitor)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reset_layout",
		Description: "Line up all enabled monitors left to right at y=0 in config order.",
	}, s.handleResetLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "assign_workspace",
		Description: "Bind a workspace to a monitor, or unbind it when monitor is empty. The change is written to the compositor config immediately.",
	}, s.handleAssignWorkspace)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "preview_config",
		Description: "Show the line diff that apply_config would write for the current layout, without writing anything.",
	}, s.handlePreviewConfig)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "apply_config",
		Description: "Write the current layout back into the compositor config files and, when enabled in settings, ask the compositor to reload.",
	}, s.handleApplyConfig)
}
