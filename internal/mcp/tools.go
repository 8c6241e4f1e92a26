package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/xwlm/internal/generate"
	"github.com/1broseidon/xwlm/internal/geometry"
	"github.com/1broseidon/xwlm/internal/layout"
	"github.com/1broseidon/xwlm/internal/session"
)

func monitorInfo(m geometry.Monitor) MonitorInfo {
	b := m.Bounds()
	return MonitorInfo{
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
		Primary:       m.Primary,
		Workspaces:    append([]string(nil), m.Workspaces...),
	}
}

func (s *Server) layoutOutput(operation string) LayoutOutput {
	snap := s.sess.Snapshot()
	out := LayoutOutput{
		Dialect:    string(s.sess.Dialect().Kind()),
		ConfigPath: s.sess.ConfigPath(),
		Operation:  operation,
		Dirty:      s.sess.Dirty(),
		Monitors:   make([]MonitorInfo, 0, len(snap.Monitors)),
	}
	for _, m := range snap.Monitors {
		out.Monitors = append(out.Monitors, monitorInfo(m))
	}
	return out
}

func requireMonitor(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("monitor is required")
	}
	return nil
}

// edit applies op and returns the resulting layout.
func (s *Server) edit(op layout.Operation) (*mcpsdk.CallToolResult, LayoutOutput, error) {
	if err := s.sess.Apply(op); err != nil {
		s.logger.Warn("mcp edit rejected", "op", op.String(), "error", err)
		return nil, LayoutOutput{}, err
	}
	s.logger.Info("mcp edit", "op", op.String())
	return nil, s.layoutOutput(op.String()), nil
}

// editCurrent builds an operation from the monitor's current state and
// applies it in one step. A nil operation means nothing needs to change.
func (s *Server) editCurrent(name string, build func(cur geometry.Monitor) (layout.Operation, error)) (*mcpsdk.CallToolResult, LayoutOutput, error) {
	var applied layout.Operation
	err := s.sess.WithModel(func(md *layout.Model) (bool, error) {
		cur, ok := md.Snapshot().Lookup(name)
		if !ok {
			return false, fmt.Errorf("%w: %s", geometry.ErrUnknownMonitor, name)
		}
		op, err := build(cur)
		if err != nil || op == nil {
			return false, err
		}
		applied = op
		return true, md.Apply(op)
	})
	if err != nil {
		s.logger.Warn("mcp edit rejected", "monitor", name, "error", err)
		return nil, LayoutOutput{}, err
	}
	desc := "no change"
	if applied != nil {
		desc = applied.String()
		s.logger.Info("mcp edit", "op", desc)
	}
	return nil, s.layoutOutput(desc), nil
}

func (s *Server) handleListMonitors(ctx context.Context, _ *mcpsdk.CallToolRequest, args ListMonitorsInput) (*mcpsdk.CallToolResult, LayoutOutput, error) {
	if args.Rescan {
		if err := s.sess.Rescan(ctx); err != nil {
			return nil, LayoutOutput{}, err
		}
	}
	return nil, s.layoutOutput(""), nil
}

func (s *Server) handleMoveMonitor(_ context.Context, _ *mcpsdk.CallToolRequest, args MoveMonitorInput) (*mcpsdk.CallToolResult, LayoutOutput, error) {
	if err := requireMonitor(args.Monitor); err != nil {
		return nil, LayoutOutput{}, err
	}
	return s.edit(layout.Move{Monitor: args.Monitor, DX: args.DX, DY: args.DY})
}

func (s *Server) handlePlaceMonitor(_ context.Context, _ *mcpsdk.CallToolRequest, args PlaceMonitorInput) (*mcpsdk.CallToolResult, LayoutOutput, error) {
	if err := requireMonitor(args.Monitor); err != nil {
		return nil, LayoutOutput{}, err
	}
	return s.edit(layout.Place{Monitor: args.Monitor, X: args.X, Y: args.Y})
}

func (s *Server) handleResizeMonitor(_ context.Context, _ *mcpsdk.CallToolRequest, args ResizeMonitorInput) (*mcpsdk.CallToolResult, LayoutOutput, error) {
	if err := requireMonitor(args.Monitor); err != nil {
		return nil, LayoutOutput{}, err
	}
	return s.edit(layout.Resize{Monitor: args.Monitor, Width: args.Width, Height: args.Height})
}

func (s *Server) handleScaleMonitor(_ context.Context, _ *mcpsdk.CallToolRequest, args ScaleMonitorInput) (*mcpsdk.CallToolResult, LayoutOutput, error) {
	if err := requireMonitor(args.Monitor); err != nil {
		return nil, LayoutOutput{}, err
	}
	switch {
	case args.Scale == nil && args.Delta == nil:
		return nil, LayoutOutput{}, errors.New("one of scale or delta is required")
	case args.Scale != nil && args.Delta != nil:
		return nil, LayoutOutput{}, errors.New("scale and delta are mutually exclusive")
	case args.Delta != nil:
		return s.edit(layout.Rescale{Monitor: args.Monitor, Delta: *args.Delta})
	}
	target := *args.Scale
	return s.editCurrent(args.Monitor, func(cur geometry.Monitor) (layout.Operation, error) {
		if geometry.ClampScale(target) == cur.Scale {
			return nil, nil
		}
		return layout.Rescale{Monitor: cur.Name, Delta: target - cur.EffectiveScale()}, nil
	})
}

func (s *Server) handleRotateMonitor(_ context.Context, _ *mcpsdk.CallToolRequest, args RotateMonitorInput) (*mcpsdk.CallToolResult, LayoutOutput, error) {
	if err := requireMonitor(args.Monitor); err != nil {
		return nil, LayoutOutput{}, err
	}
	if strings.TrimSpace(args.Transform) == "" {
		return s.edit(layout.Rotate{Monitor: args.Monitor})
	}
	t, err := geometry.ParseTransformName(args.Transform)
	if err != nil {
		return nil, LayoutOutput{}, err
	}
	return s.edit(layout.RotateTo{Monitor: args.Monitor, Transform: t})
}

func (s *Server) handleToggleMonitor(_ context.Context, _ *mcpsdk.CallToolRequest, args ToggleMonitorInput) (*mcpsdk.CallToolResult, LayoutOutput, error) {
	if err := requireMonitor(args.Monitor); err != nil {
		return nil, LayoutOutput{}, err
	}
	return s.editCurrent(args.Monitor, func(cur geometry.Monitor) (layout.Operation, error) {
		if args.Enabled != nil && *args.Enabled == cur.Enabled {
			return nil, nil
		}
		return layout.Toggle{Monitor: cur.Name}, nil
	})
}

func (s *Server) handleResetLayout(_ context.Context, _ *mcpsdk.CallToolRequest, _ ResetLayoutInput) (*mcpsdk.CallToolResult, LayoutOutput, error) {
	return s.edit(layout.Reset{})
}

func (s *Server) handleAssignWorkspace(ctx context.Context, _ *mcpsdk.CallToolRequest, args AssignWorkspaceInput) (*mcpsdk.CallToolResult, AssignWorkspaceOutput, error) {
	ws := strings.TrimSpace(args.Workspace)
	if ws == "" {
		return nil, AssignWorkspaceOutput{}, errors.New("workspace is required")
	}

	var report *session.SaveReport
	var err error
	if strings.TrimSpace(args.Monitor) == "" {
		report, err = s.sess.UnassignWorkspace(ctx, ws)
	} else {
		report, err = s.sess.AssignWorkspace(ctx, ws, args.Monitor)
	}
	if err != nil {
		s.logger.Warn("mcp workspace assignment failed", "workspace", ws, "monitor", args.Monitor, "error", err)
		return nil, AssignWorkspaceOutput{}, err
	}

	out := AssignWorkspaceOutput{
		Workspace:    ws,
		Monitor:      args.Monitor,
		FilesWritten: filePaths(report.Plan),
		Unsupported:  len(report.Plan.Skipped) > 0,
		Reloaded:     report.Reloaded,
	}
	if report.ReloadErr != nil {
		out.ReloadError = report.ReloadErr.Error()
	}
	s.logger.Info("mcp workspace assignment", "workspace", ws, "monitor", args.Monitor, "files", len(out.FilesWritten))
	return nil, out, nil
}

func (s *Server) handlePreviewConfig(_ context.Context, _ *mcpsdk.CallToolRequest, _ PreviewConfigInput) (*mcpsdk.CallToolResult, PreviewConfigOutput, error) {
	plan, err := s.sess.Plan()
	if err != nil {
		return nil, PreviewConfigOutput{}, err
	}
	out := PreviewConfigOutput{
		Files:             make([]FileDiff, 0, len(plan.Files)),
		SkippedWorkspaces: skippedWorkspaces(plan),
		UpToDate:          plan.Empty(),
	}
	for _, f := range plan.Files {
		var b strings.Builder
		for _, l := range f.Diff() {
			b.WriteString(l.String())
			b.WriteByte('\n')
		}
		out.Files = append(out.Files, FileDiff{Path: f.Path, Diff: b.String()})
	}
	return nil, out, nil
}

func (s *Server) handleApplyConfig(ctx context.Context, _ *mcpsdk.CallToolRequest, _ ApplyConfigInput) (*mcpsdk.CallToolResult, ApplyConfigOutput, error) {
	report, err := s.sess.Save(ctx)
	if err != nil {
		s.logger.Error("mcp apply failed", "error", err)
		return nil, ApplyConfigOutput{}, err
	}
	out := ApplyConfigOutput{
		FilesWritten:      filePaths(report.Plan),
		SkippedWorkspaces: skippedWorkspaces(report.Plan),
		Reloaded:          report.Reloaded,
	}
	if report.ReloadErr != nil {
		out.ReloadError = report.ReloadErr.Error()
	}
	s.logger.Info("mcp apply", "files", len(out.FilesWritten), "reloaded", out.Reloaded)
	return nil, out, nil
}

func filePaths(p *generate.Plan) []string {
	out := make([]string, 0, len(p.Files))
	for _, f := range p.Files {
		out = append(out, f.Path)
	}
	return out
}

func skippedWorkspaces(p *generate.Plan) []string {
	var out []string
	for _, a := range p.Skipped {
		out = append(out, a.Workspace)
	}
	return out
}
