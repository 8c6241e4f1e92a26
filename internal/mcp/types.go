package mcp

// MonitorInfo describes one monitor in the current layout.
type MonitorInfo struct {
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
	Primary       bool     `json:"primary,omitempty"`
	Workspaces    []string `json:"workspaces,omitempty"`
}

// ListMonitorsInput is the input for the list_monitors tool.
type ListMonitorsInput struct {
	Rescan bool `json:"rescan,omitempty" jsonschema:"Discard unsaved edits and re-read the config and live monitors first"`
}

// LayoutOutput is returned by list_monitors and every layout edit.
type LayoutOutput struct {
	Dialect    string        `json:"dialect"`
	ConfigPath string        `json:"config_path"`
	Operation  string        `json:"operation,omitempty"`
	Dirty      bool          `json:"dirty"`
	Monitors   []MonitorInfo `json:"monitors"`
}

// MoveMonitorInput is the input for the move_monitor tool.
type MoveMonitorInput struct {
	Monitor string `json:"monitor" jsonschema:"Output name, e.g. DP-1"`
	DX      int    `json:"dx,omitempty" jsonschema:"Horizontal offset in logical pixels"`
	DY      int    `json:"dy,omitempty" jsonschema:"Vertical offset in logical pixels"`
}

// PlaceMonitorInput is the input for the place_monitor tool.
type PlaceMonitorInput struct {
	Monitor string `json:"monitor" jsonschema:"Output name, e.g. DP-1"`
	X       int    `json:"x" jsonschema:"Absolute X position in logical pixels"`
	Y       int    `json:"y" jsonschema:"Absolute Y position in logical pixels"`
}

// ResizeMonitorInput is the input for the resize_monitor tool.
type ResizeMonitorInput struct {
	Monitor string `json:"monitor" jsonschema:"Output name, e.g. DP-1"`
	Width   int    `json:"width" jsonschema:"Mode width in pixels"`
	Height  int    `json:"height" jsonschema:"Mode height in pixels"`
}

// ScaleMonitorInput is the input for the scale_monitor tool.
type ScaleMonitorInput struct {
	Monitor string   `json:"monitor" jsonschema:"Output name, e.g. DP-1"`
	Scale   *float64 `json:"scale,omitempty" jsonschema:"Absolute scale factor (0.1 to 10)"`
	Delta   *float64 `json:"delta,omitempty" jsonschema:"Relative scale change, e.g. 0.1 or -0.25"`
}

// RotateMonitorInput is the input for the rotate_monitor tool.
type RotateMonitorInput struct {
	Monitor   string `json:"monitor" jsonschema:"Output name, e.g. DP-1"`
	Transform string `json:"transform,omitempty" jsonschema:"Target transform: normal, 90, 180, 270, flipped, flipped-90, flipped-180 or flipped-270. Omit to step to the next transform."`
}

// ToggleMonitorInput is the input for the toggle_monitor tool.
type ToggleMonitorInput struct {
	Monitor string `json:"monitor" jsonschema:"Output name, e.g. DP-1"`
	Enabled *bool  `json:"enabled,omitempty" jsonschema:"Desired state. Omit to flip the current state."`
}

// ResetLayoutInput is the input for the reset_layout tool.
type ResetLayoutInput struct{}

// AssignWorkspaceInput is the input for the assign_workspace tool.
type AssignWorkspaceInput struct {
	Workspace string `json:"workspace" jsonschema:"Workspace id, e.g. 1"`
	Monitor   string `json:"monitor,omitempty" jsonschema:"Output name to bind the workspace to. Empty removes the binding."`
}

// AssignWorkspaceOutput is the output for the assign_workspace tool.
type AssignWorkspaceOutput struct {
	Workspace    string   `json:"workspace"`
	Monitor      string   `json:"monitor,omitempty"`
	FilesWritten []string `json:"files_written"`
	Unsupported  bool     `json:"unsupported,omitempty"`
	Reloaded     bool     `json:"reloaded"`
	ReloadError  string   `json:"reload_error,omitempty"`
}

// PreviewConfigInput is the input for the preview_config tool.
type PreviewConfigInput struct{}

// FileDiff is the pending change to one config file.
type FileDiff struct {
	Path string `json:"path"`
	Diff string `json:"diff"`
}

// PreviewConfigOutput is the output for the preview_config tool.
type PreviewConfigOutput struct {
	Files             []FileDiff `json:"files"`
	SkippedWorkspaces []string   `json:"skipped_workspaces,omitempty"`
	UpToDate          bool       `json:"up_to_date"`
}

// ApplyConfigInput is the input for the apply_config tool.
type ApplyConfigInput struct{}

// ApplyConfigOutput is the output for the apply_config tool.
type ApplyConfigOutput struct {
	FilesWritten      []string `json:"files_written"`
	SkippedWorkspaces []string `json:"skipped_workspaces,omitempty"`
	Reloaded          bool     `json:"reloaded"`
	ReloadError       string   `json:"reload_error,omitempty"`
}
