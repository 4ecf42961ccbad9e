package commands

import (
	"context"
	"errors"
	"sort"
)

// ActionHandler performs one named action against the input backend
type ActionHandler interface {
	// Handle performs the action
	Handle(ctx context.Context) error

	// GetName returns the action identifier the handler is registered under
	GetName() string

	// GetDescription returns a human-readable description
	GetDescription() string
}

// ActionRegistry maps action identifiers to handlers
type ActionRegistry struct {
	handlers map[string]ActionHandler
}

// NewActionRegistry creates an empty registry
func NewActionRegistry() *ActionRegistry {
	return &ActionRegistry{
		handlers: make(map[string]ActionHandler),
	}
}

// Register adds a handler, replacing any previous handler with the same name
func (r *ActionRegistry) Register(handler ActionHandler) {
	r.handlers[handler.GetName()] = handler
}

// Get returns a handler by name
func (r *ActionRegistry) Get(name string) (ActionHandler, bool) {
	handler, exists := r.handlers[name]
	return handler, exists
}

// List returns all registered action names, sorted
func (r *ActionRegistry) List() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var (
	// ErrBadArguments is returned when a command's fields are missing or not numeric
	ErrBadArguments = errors.New("bad arguments")
	// ErrUnknownAction is returned when no handler exists for a keyword
	ErrUnknownAction = errors.New("unknown action")
)

// OutcomeKind classifies what happened to a datagram
type OutcomeKind int

const (
	// OutcomeOK means the command was applied: an action ran or session state changed
	OutcomeOK OutcomeKind = iota
	// OutcomeParseError means the payload or its fields were malformed; nothing ran
	OutcomeParseError
	// OutcomeUnresolved means voice text matched nothing confidently; nothing ran
	OutcomeUnresolved
	// OutcomeInvocationError means an action was attempted and failed
	OutcomeInvocationError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeParseError:
		return "parse_error"
	case OutcomeUnresolved:
		return "unresolved"
	case OutcomeInvocationError:
		return "invocation_error"
	default:
		return "invalid"
	}
}
