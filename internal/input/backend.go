// Package input is the boundary to the host's pointer and keyboard injection.
//
// The relay only decides which action to perform and with what parameters; a Backend
// performs it. Two backends ship: xdotool drives an X11 session through the xdotool
// binary, and Log records every call without touching the host.
package input

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Button is a pointer button
type Button string

const (
	ButtonLeft  Button = "left"
	ButtonRight Button = "right"
)

// Backend performs input actions on the host
type Backend interface {
	// Move shifts the pointer by a relative delta in pixels
	Move(ctx context.Context, dx, dy float64) error
	// Click presses and releases a pointer button
	Click(ctx context.Context, button Button) error
	// Scroll turns the wheel by steps; positive scrolls up, negative down
	Scroll(ctx context.Context, steps int) error
	// PressCombo presses keys in order, then releases them in reverse
	PressCombo(ctx context.Context, keys []string) error
}

// ErrNoKeys is returned by PressCombo for an empty key list
var ErrNoKeys = errors.New("no keys to press")

// Backend names accepted by New
const (
	BackendXdotool = "xdotool"
	BackendLog     = "log"
)

// Options configures backend construction
type Options struct {
	Name    string
	Xdotool XdotoolOptions
	Logger  Logger
}

// New builds the backend selected by name
func New(opts Options) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Name)) {
	case BackendXdotool:
		return NewXdotool(opts.Xdotool)
	case BackendLog, "dryrun":
		return NewLog(opts.Logger), nil
	default:
		return nil, fmt.Errorf("unknown input backend %q", opts.Name)
	}
}
