// Package layout holds the mutable monitor layout for a session: the
// current selection, workspace bookkeeping, and the single entry point
// through which geometry operations are applied.
package layout

import (
	"fmt"

	"github.com/1broseidon/xwlm/internal/geometry"
)

// Operation is one edit of the layout. The set is closed; see the types
// below.
type Operation interface {
	apply(geometry.Layout) (geometry.Layout, error)
	String() string
}

// Move translates a monitor by DX, DY.
type Move struct {
	Monitor string
	DX, DY  int
}

func (o Move) apply(l geometry.Layout) (geometry.Layout, error) {
	return geometry.Move(l, o.Monitor, o.DX, o.DY)
}

func (o Move) String() string { return fmt.Sprintf("move %s %+d,%+d", o.Monitor, o.DX, o.DY) }

// Place moves a monitor to an absolute position.
type Place struct {
	Monitor string
	X, Y    int
}

func (o Place) apply(l geometry.Layout) (geometry.Layout, error) {
	return geometry.Place(l, o.Monitor, o.X, o.Y)
}

func (o Place) String() string { return fmt.Sprintf("place %s %d,%d", o.Monitor, o.X, o.Y) }

// Resize sets a monitor's mode size.
type Resize struct {
	Monitor       string
	Width, Height int
}

func (o Resize) apply(l geometry.Layout) (geometry.Layout, error) {
	return geometry.Resize(l, o.Monitor, o.Width, o.Height)
}

func (o Resize) String() string { return fmt.Sprintf("resize %s %dx%d", o.Monitor, o.Width, o.Height) }

// Rescale changes a monitor's scale by Delta.
type Rescale struct {
	Monitor string
	Delta   float64
}

func (o Rescale) apply(l geometry.Layout) (geometry.Layout, error) {
	return geometry.Rescale(l, o.Monitor, o.Delta)
}

func (o Rescale) String() string { return fmt.Sprintf("rescale %s %+.2f", o.Monitor, o.Delta) }

// Rotate advances a monitor to the next transform in the cycle.
type Rotate struct {
	Monitor string
}

func (o Rotate) apply(l geometry.Layout) (geometry.Layout, error) {
	m, ok := l.Lookup(o.Monitor)
	if !ok {
		return l, &geometry.OpError{Op: "rotate", Monitor: o.Monitor, Err: geometry.ErrUnknownMonitor}
	}
	return geometry.Rotate(l, o.Monitor, m.Transform.Next())
}

func (o Rotate) String() string { return "rotate " + o.Monitor }

// RotateTo sets a monitor's transform directly.
type RotateTo struct {
	Monitor   string
	Transform geometry.Transform
}

func (o RotateTo) apply(l geometry.Layout) (geometry.Layout, error) {
	return geometry.Rotate(l, o.Monitor, o.Transform)
}

func (o RotateTo) String() string { return fmt.Sprintf("rotate %s %s", o.Monitor, o.Transform) }

// Toggle enables or disables a monitor.
type Toggle struct {
	Monitor string
}

func (o Toggle) apply(l geometry.Layout) (geometry.Layout, error) {
	return geometry.Toggle(l, o.Monitor)
}

func (o Toggle) String() string { return "toggle " + o.Monitor }

// Reset restores the default left-to-right arrangement.
type Reset struct{}

func (Reset) apply(l geometry.Layout) (geometry.Layout, error) {
	return geometry.Reset(l), nil
}

func (Reset) String() string { return "reset" }
