package commands

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mouse-relay/internal/input"
	"github.com/mouse-relay/internal/protocol"
	"github.com/mouse-relay/internal/state"
	"github.com/mouse-relay/internal/voice"
)

// Outcome reports what Handle did with one datagram
type Outcome struct {
	Kind    OutcomeKind
	Command protocol.Command
	// Action is the action that ran or was attempted, if any
	Action string
	// Voice is set for VOICE_RAW commands
	Voice *voice.Result
	Err   error
}

// Dispatcher turns parsed commands into backend invocations.
// Handle is not safe for concurrent use with itself; the command loop calls it
// one datagram at a time so session mutations stay ordered.
type Dispatcher struct {
	resolver *voice.Resolver
	session  *state.Session
	backend  input.Backend
	registry *ActionRegistry
	logger   *zap.Logger
}

// NewDispatcher wires a dispatcher. Every catalog action known to the resolver's
// catalog must already be present in registry.
func NewDispatcher(resolver *voice.Resolver, session *state.Session, backend input.Backend, registry *ActionRegistry, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		resolver: resolver,
		session:  session,
		backend:  backend,
		registry: registry,
		logger:   logger,
	}
}

// Handle processes one raw datagram payload. It never panics on input and never
// returns an error; failures are reported through the Outcome.
func (d *Dispatcher) Handle(ctx context.Context, raw string) Outcome {
	cmd, err := protocol.Parse(raw)
	if err != nil {
		return d.finish(Outcome{Kind: OutcomeParseError, Err: err})
	}

	var out Outcome
	switch cmd.Kind {
	case protocol.KindVoice:
		out = d.handleVoice(ctx, cmd)
	case protocol.KindMoveDelta:
		out = d.handleMove(ctx, cmd)
	case protocol.KindSetScale:
		out = d.handleSetScale(cmd)
	case protocol.KindAction, protocol.KindUnknown:
		out = d.invoke(ctx, cmd.Keyword)
	case protocol.KindHotkey:
		out = d.handleHotkey(ctx, cmd.Keyword)
	default:
		out = Outcome{Kind: OutcomeParseError, Err: fmt.Errorf("unhandled command kind %s", cmd.Kind)}
	}
	out.Command = cmd
	return d.finish(out)
}

// handleVoice resolves the first field after the keyword; later fields are ignored
func (d *Dispatcher) handleVoice(ctx context.Context, cmd protocol.Command) Outcome {
	res := d.resolver.Resolve(cmd.Arg(0))
	if !res.Resolved {
		return Outcome{Kind: OutcomeUnresolved, Voice: &res}
	}
	out := d.invoke(ctx, string(res.Action))
	out.Voice = &res
	return out
}

func (d *Dispatcher) handleMove(ctx context.Context, cmd protocol.Command) Outcome {
	fields := strings.Split(cmd.Arg(0), ",")
	if len(fields) != 2 {
		return Outcome{Kind: OutcomeParseError, Err: fmt.Errorf("%w: %s wants dx,dy", ErrBadArguments, cmd.Keyword)}
	}
	dx, err := parseReal(fields[0])
	if err != nil {
		return Outcome{Kind: OutcomeParseError, Err: err}
	}
	dy, err := parseReal(fields[1])
	if err != nil {
		return Outcome{Kind: OutcomeParseError, Err: err}
	}

	sx, sy := d.session.Apply(dx, dy)
	if err := d.safeCall(func() error { return d.backend.Move(ctx, sx, sy) }); err != nil {
		return Outcome{Kind: OutcomeInvocationError, Action: cmd.Keyword, Err: err}
	}
	return Outcome{Kind: OutcomeOK, Action: cmd.Keyword}
}

func (d *Dispatcher) handleSetScale(cmd protocol.Command) Outcome {
	if len(cmd.Args) == 0 {
		return Outcome{Kind: OutcomeParseError, Err: fmt.Errorf("%w: %s wants a factor", ErrBadArguments, cmd.Keyword)}
	}
	scale, err := parseReal(cmd.Arg(0))
	if err != nil {
		return Outcome{Kind: OutcomeParseError, Err: err}
	}
	prev := d.session.SetScale(scale)
	d.logger.Info("Scale updated", zap.Float64("previous", prev), zap.Float64("scale", scale))
	return Outcome{Kind: OutcomeOK, Action: cmd.Keyword}
}

func (d *Dispatcher) handleHotkey(ctx context.Context, name string) Outcome {
	if _, ok := d.registry.Get(name); ok {
		return d.invoke(ctx, name)
	}
	h, err := NewHotkeyHandler(name, d.backend)
	if err != nil {
		return Outcome{Kind: OutcomeParseError, Action: name, Err: err}
	}
	return d.run(ctx, h)
}

// invoke runs the handler registered under name
func (d *Dispatcher) invoke(ctx context.Context, name string) Outcome {
	h, ok := d.registry.Get(name)
	if !ok {
		return Outcome{Kind: OutcomeInvocationError, Action: name, Err: fmt.Errorf("%w: %s", ErrUnknownAction, name)}
	}
	return d.run(ctx, h)
}

func (d *Dispatcher) run(ctx context.Context, h ActionHandler) Outcome {
	if err := d.safeCall(func() error { return h.Handle(ctx) }); err != nil {
		return Outcome{Kind: OutcomeInvocationError, Action: h.GetName(), Err: err}
	}
	return Outcome{Kind: OutcomeOK, Action: h.GetName()}
}

// safeCall converts a backend panic into an error
func (d *Dispatcher) safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("input backend panic: %v", r)
		}
	}()
	return fn()
}

func (d *Dispatcher) finish(out Outcome) Outcome {
	fields := []zap.Field{
		zap.Stringer("outcome", out.Kind),
		zap.String("keyword", out.Command.Keyword),
	}
	if out.Action != "" {
		fields = append(fields, zap.String("action", out.Action))
	}
	if out.Voice != nil {
		fields = append(fields,
			zap.String("text", out.Voice.Text),
			zap.String("candidate", string(out.Voice.Action)),
			zap.Int("score", out.Voice.Score),
			zap.Bool("exact", out.Voice.Exact))
	}

	switch out.Kind {
	case OutcomeOK:
		d.logger.Info("Command handled", fields...)
	case OutcomeUnresolved:
		d.logger.Debug("Voice command not understood", fields...)
	default:
		d.logger.Warn("Command dropped", append(fields, zap.Error(out.Err))...)
	}
	return out
}

func parseReal(field string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrBadArguments, field)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q is not finite", ErrBadArguments, field)
	}
	return v, nil
}
