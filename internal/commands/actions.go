package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/mouse-relay/internal/catalog"
	"github.com/mouse-relay/internal/input"
)

// ClickHandler clicks a pointer button
type ClickHandler struct {
	name    string
	button  input.Button
	backend input.Backend
}

// NewClickHandler creates a click handler
func NewClickHandler(name string, button input.Button, backend input.Backend) *ClickHandler {
	return &ClickHandler{name: name, button: button, backend: backend}
}

func (h *ClickHandler) Handle(ctx context.Context) error {
	return h.backend.Click(ctx, h.button)
}

func (h *ClickHandler) GetName() string {
	return h.name
}

func (h *ClickHandler) GetDescription() string {
	return fmt.Sprintf("Click the %s pointer button", h.button)
}

// ScrollHandler turns the wheel by a fixed number of steps
type ScrollHandler struct {
	name    string
	steps   int
	backend input.Backend
}

// NewScrollHandler creates a scroll handler; positive steps scroll up
func NewScrollHandler(name string, steps int, backend input.Backend) *ScrollHandler {
	return &ScrollHandler{name: name, steps: steps, backend: backend}
}

func (h *ScrollHandler) Handle(ctx context.Context) error {
	return h.backend.Scroll(ctx, h.steps)
}

func (h *ScrollHandler) GetName() string {
	return h.name
}

func (h *ScrollHandler) GetDescription() string {
	if h.steps >= 0 {
		return fmt.Sprintf("Scroll up %d steps", h.steps)
	}
	return fmt.Sprintf("Scroll down %d steps", -h.steps)
}

// HotkeyHandler presses a key combination decoded from its identifier
type HotkeyHandler struct {
	name    string
	keys    []string
	backend input.Backend
}

// NewHotkeyHandler decodes the keys from a HOTKEY_ identifier. Identifiers that
// decode to zero keys are rejected.
func NewHotkeyHandler(name string, backend input.Backend) (*HotkeyHandler, error) {
	keys, err := catalog.DecodeHotkey(name)
	if err != nil {
		return nil, err
	}
	return &HotkeyHandler{name: name, keys: keys, backend: backend}, nil
}

func (h *HotkeyHandler) Handle(ctx context.Context) error {
	return h.backend.PressCombo(ctx, h.keys)
}

func (h *HotkeyHandler) GetName() string {
	return h.name
}

func (h *HotkeyHandler) GetDescription() string {
	return "Press " + strings.Join(h.keys, "+")
}

// Keys returns the decoded key sequence
func (h *HotkeyHandler) Keys() []string {
	return append([]string(nil), h.keys...)
}

// RegisterCatalogActions registers a handler for every action in the catalog
func RegisterCatalogActions(registry *ActionRegistry, c *catalog.Catalog, backend input.Backend, scrollStep int) error {
	for _, e := range c.Entries() {
		name := string(e.Action)
		switch e.Action {
		case catalog.LeftClick:
			registry.Register(NewClickHandler(name, input.ButtonLeft, backend))
		case catalog.RightClick:
			registry.Register(NewClickHandler(name, input.ButtonRight, backend))
		case catalog.ScrollUp:
			registry.Register(NewScrollHandler(name, scrollStep, backend))
		case catalog.ScrollDown:
			registry.Register(NewScrollHandler(name, -scrollStep, backend))
		default:
			if !catalog.IsHotkey(name) {
				return fmt.Errorf("%w: no handler for catalog action %s", ErrUnknownAction, name)
			}
			h, err := NewHotkeyHandler(name, backend)
			if err != nil {
				return fmt.Errorf("catalog action %s: %w", name, err)
			}
			registry.Register(h)
		}
	}
	return nil
}
