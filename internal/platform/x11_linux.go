//go:build linux

package platform

import (
	"context"
	"fmt"
	"os"

	"github.com/1broseidon/xwlm/internal/geometry"
	"github.com/1broseidon/xwlm/internal/x11"
)

// X11 reads outputs through RandR. Under Xwayland the names and positions
// follow the compositor's wl_output layout.
type X11 struct{}

func (X11) Name() string { return "randr" }

func (X11) Monitors(ctx context.Context) ([]geometry.Monitor, error) {
	if os.Getenv("DISPLAY") == "" {
		return nil, fmt.Errorf("%w: DISPLAY is not set", ErrUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	defer conn.Close()
	return conn.Outputs()
}
