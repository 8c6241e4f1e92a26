package config

import (
	"fmt"
	"sort"
)

// Keys lists the settings Explain understands.
func Keys() []string {
	keys := make([]string, 0, len(lookups))
	for k := range lookups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var lookups = map[string]func(*Config) any{
	"compositor":         func(c *Config) any { return c.Compositor },
	"config_path":        func(c *Config) any { return c.ConfigPath },
	"workspace_count":    func(c *Config) any { return c.WorkspaceCount },
	"max_include_depth":  func(c *Config) any { return c.MaxIncludeDepth },
	"reload_after_apply": func(c *Config) any { return c.ReloadAfterApply },
	"reload_timeout":     func(c *Config) any { return c.ReloadTimeout.String() },
	"move_step":          func(c *Config) any { return c.MoveStep },
	"log_level":          func(c *Config) any { return c.LogLevel },
	"log_file":           func(c *Config) any { return c.LogFilePath() },
}

// Explain returns the effective value of key and where it came from.
func Explain(res *LoadResult, key string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	lookup, ok := lookups[key]
	if !ok {
		return nil, Source{}, fmt.Errorf("unknown setting %q", key)
	}
	if src, ok := res.Sources[key]; ok {
		return lookup(res.Config), src, nil
	}
	return lookup(res.Config), Source{Kind: SourceDefault}, nil
}
