//go:build !linux

package platform

import (
	"context"

	"github.com/1broseidon/xwlm/internal/geometry"
)

// X11 is only implemented on Linux.
type X11 struct{}

func (X11) Name() string { return "randr" }

func (X11) Monitors(context.Context) ([]geometry.Monitor, error) {
	return nil, ErrUnavailable
}
