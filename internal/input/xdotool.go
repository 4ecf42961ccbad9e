package input

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Runner executes an external command
type Runner func(ctx context.Context, name string, args ...string) error

// XdotoolOptions configures the xdotool backend
type XdotoolOptions struct {
	// Command is the xdotool binary; resolved through PATH when not absolute
	Command string
	// Timeout bounds each invocation
	Timeout time.Duration
	// Runner overrides process execution
	Runner Runner
}

// Xdotool drives an X11 session through the xdotool binary
type Xdotool struct {
	command string
	timeout time.Duration
	run     Runner

	// sub-pixel remainders carried between moves
	mu     sync.Mutex
	carryX float64
	carryY float64
}

// xdotool keysym names for the lowercase keys decoded from hotkey identifiers
var keysyms = map[string]string{
	"ctrl":      "ctrl",
	"control":   "ctrl",
	"alt":       "alt",
	"shift":     "shift",
	"win":       "super",
	"cmd":       "super",
	"super":     "super",
	"enter":     "Return",
	"return":    "Return",
	"tab":       "Tab",
	"esc":       "Escape",
	"escape":    "Escape",
	"space":     "space",
	"backspace": "BackSpace",
	"delete":    "Delete",
	"del":       "Delete",
	"home":      "Home",
	"end":       "End",
	"pageup":    "Prior",
	"pagedown":  "Next",
	"up":        "Up",
	"down":      "Down",
	"left":      "Left",
	"right":     "Right",
}

// NewXdotool creates the backend, failing when the binary cannot be found
func NewXdotool(opts XdotoolOptions) (*Xdotool, error) {
	command := opts.Command
	if command == "" {
		command = "xdotool"
	}
	run := opts.Runner
	if run == nil {
		resolved, err := exec.LookPath(command)
		if err != nil {
			return nil, fmt.Errorf("xdotool backend: %w", err)
		}
		command = resolved
		run = execRunner
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Xdotool{command: command, timeout: timeout, run: run}, nil
}

func execRunner(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, msg)
		}
		return fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return nil
}

func (x *Xdotool) exec(ctx context.Context, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()
	return x.run(ctx, x.command, args...)
}

func (x *Xdotool) Move(ctx context.Context, dx, dy float64) error {
	x.mu.Lock()
	fx, fy := dx+x.carryX, dy+x.carryY
	ix, iy := math.Trunc(fx), math.Trunc(fy)
	x.carryX, x.carryY = fx-ix, fy-iy
	x.mu.Unlock()

	if ix == 0 && iy == 0 {
		return nil
	}
	return x.exec(ctx, "mousemove_relative", "--",
		strconv.FormatInt(int64(ix), 10), strconv.FormatInt(int64(iy), 10))
}

func (x *Xdotool) Click(ctx context.Context, button Button) error {
	switch button {
	case ButtonLeft:
		return x.exec(ctx, "click", "1")
	case ButtonRight:
		return x.exec(ctx, "click", "3")
	default:
		return fmt.Errorf("unsupported button %q", button)
	}
}

func (x *Xdotool) Scroll(ctx context.Context, steps int) error {
	if steps == 0 {
		return nil
	}
	wheel := "4"
	if steps < 0 {
		wheel = "5"
		steps = -steps
	}
	return x.exec(ctx, "click", "--repeat", strconv.Itoa(steps), "--delay", "0", wheel)
}

func (x *Xdotool) PressCombo(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return ErrNoKeys
	}
	syms := make([]string, len(keys))
	for i, k := range keys {
		k = strings.ToLower(strings.TrimSpace(k))
		if sym, ok := keysyms[k]; ok {
			syms[i] = sym
			continue
		}
		syms[i] = k
	}
	return x.exec(ctx, "key", "--clearmodifiers", strings.Join(syms, "+"))
}
