package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mouse-relay/internal/catalog"
	"github.com/mouse-relay/internal/input"
	"github.com/mouse-relay/internal/state"
	"github.com/mouse-relay/internal/voice"
)

type call struct {
	op     string
	dx, dy float64
	button input.Button
	steps  int
	keys   []string
}

type fakeBackend struct {
	calls  []call
	err    error
	panics bool
}

func (f *fakeBackend) record(c call) error {
	if f.panics {
		panic("display went away")
	}
	f.calls = append(f.calls, c)
	return f.err
}

func (f *fakeBackend) Move(_ context.Context, dx, dy float64) error {
	return f.record(call{op: "move", dx: dx, dy: dy})
}

func (f *fakeBackend) Click(_ context.Context, button input.Button) error {
	return f.record(call{op: "click", button: button})
}

func (f *fakeBackend) Scroll(_ context.Context, steps int) error {
	return f.record(call{op: "scroll", steps: steps})
}

func (f *fakeBackend) PressCombo(_ context.Context, keys []string) error {
	return f.record(call{op: "combo", keys: keys})
}

type fixture struct {
	dispatcher *Dispatcher
	backend    *fakeBackend
	session    *state.Session
	logs       *observer.ObservedLogs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	c := catalog.Default()
	backend := &fakeBackend{}
	registry := NewActionRegistry()
	require.NoError(t, RegisterCatalogActions(registry, c, backend, 5))
	session := state.NewSession(state.DefaultScale)
	core, logs := observer.New(zapcore.DebugLevel)
	d := NewDispatcher(voice.NewResolver(c), session, backend, registry, zap.New(core))
	return &fixture{dispatcher: d, backend: backend, session: session, logs: logs}
}

func TestMoveDeltaUsesDefaultScale(t *testing.T) {
	f := newFixture(t)

	out := f.dispatcher.Handle(context.Background(), "MOVE_DELTA:1,1")
	require.Equal(t, OutcomeOK, out.Kind)
	require.Len(t, f.backend.calls, 1)
	assert.InDelta(t, 1.6667, f.backend.calls[0].dx, 1e-9)
	assert.InDelta(t, 1.6667, f.backend.calls[0].dy, 1e-9)
}

func TestSetScaleThenMove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out := f.dispatcher.Handle(ctx, "SET_SCALE:2.0")
	require.Equal(t, OutcomeOK, out.Kind)
	assert.Empty(t, f.backend.calls, "SET_SCALE must not touch the backend")
	assert.Equal(t, 2.0, f.session.Scale())

	out = f.dispatcher.Handle(ctx, "MOVE_DELTA:3,4")
	require.Equal(t, OutcomeOK, out.Kind)
	require.Len(t, f.backend.calls, 1)
	assert.Equal(t, call{op: "move", dx: 6.0, dy: 8.0}, f.backend.calls[0])

	out = f.dispatcher.Handle(ctx, "SET_SCALE:-1")
	require.Equal(t, OutcomeOK, out.Kind)
	f.dispatcher.Handle(ctx, "MOVE_DELTA: -2 , 0.5")
	assert.Equal(t, call{op: "move", dx: 2, dy: -0.5}, f.backend.calls[1])
}

func TestMalformedInputIsAbsorbed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		kind    OutcomeKind
		err     error
	}{
		{"non numeric delta", "MOVE_DELTA:abc,def", OutcomeParseError, ErrBadArguments},
		{"single delta field", "MOVE_DELTA:3", OutcomeParseError, ErrBadArguments},
		{"three delta fields", "MOVE_DELTA:1,2,3", OutcomeParseError, ErrBadArguments},
		{"missing delta", "MOVE_DELTA", OutcomeParseError, ErrBadArguments},
		{"nan delta", "MOVE_DELTA:NaN,1", OutcomeParseError, ErrBadArguments},
		{"missing scale", "SET_SCALE", OutcomeParseError, ErrBadArguments},
		{"bad scale", "SET_SCALE:fast", OutcomeParseError, ErrBadArguments},
		{"empty hotkey", "HOTKEY_", OutcomeParseError, catalog.ErrNoKeys},
		{"empty voice", "VOICE_RAW", OutcomeUnresolved, nil},
		{"blank voice", "VOICE_RAW:   ", OutcomeUnresolved, nil},
		{"empty payload", "   ", OutcomeParseError, nil},
		{"unknown keyword", "TELEPORT:home", OutcomeInvocationError, ErrUnknownAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			var out Outcome
			require.NotPanics(t, func() {
				out = f.dispatcher.Handle(context.Background(), tt.payload)
			})
			assert.Equal(t, tt.kind, out.Kind)
			if tt.err != nil {
				assert.ErrorIs(t, out.Err, tt.err)
			}
			assert.Empty(t, f.backend.calls)
			assert.Equal(t, state.DefaultScale, f.session.Scale())
		})
	}
}

func TestDirectActions(t *testing.T) {
	tests := []struct {
		payload string
		want    call
	}{
		{"LEFT_CLICK", call{op: "click", button: input.ButtonLeft}},
		{"RIGHT_CLICK", call{op: "click", button: input.ButtonRight}},
		{"SCROLL_UP", call{op: "scroll", steps: 5}},
		{"SCROLL_DOWN", call{op: "scroll", steps: -5}},
		{"scroll_down", call{op: "scroll", steps: -5}},
		{"HOTKEY_CTRL_C", call{op: "combo", keys: []string{"ctrl", "c"}}},
		{"HOTKEY_ALT_TAB", call{op: "combo", keys: []string{"alt", "tab"}}},
		{"HOTKEY_CTRL_SHIFT_T", call{op: "combo", keys: []string{"ctrl", "shift", "t"}}},
	}

	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			f := newFixture(t)
			out := f.dispatcher.Handle(context.Background(), tt.payload)
			require.Equal(t, OutcomeOK, out.Kind, "err: %v", out.Err)
			assert.Nil(t, out.Voice, "direct actions bypass the voice engine")
			require.Len(t, f.backend.calls, 1)
			assert.Equal(t, tt.want, f.backend.calls[0])
		})
	}
}

func TestVoiceCommands(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		action  string
		exact   bool
		want    call
	}{
		{"exact english", "VOICE_RAW:copy", "HOTKEY_CTRL_C", true, call{op: "combo", keys: []string{"ctrl", "c"}}},
		{"exact hebrew", "VOICE_RAW:למטה", "SCROLL_DOWN", true, call{op: "scroll", steps: -5}},
		{"fuzzy", "VOICE_RAW:scrol up", "SCROLL_UP", false, call{op: "scroll", steps: 5}},
		{"first field only", "VOICE_RAW:copy:and then something else entirely", "HOTKEY_CTRL_C", true, call{op: "combo", keys: []string{"ctrl", "c"}}},
		{"trailing field ignored", "VOICE_RAW:paste:x", "HOTKEY_CTRL_V", true, call{op: "combo", keys: []string{"ctrl", "v"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			out := f.dispatcher.Handle(context.Background(), tt.payload)
			require.Equal(t, OutcomeOK, out.Kind, "err: %v", out.Err)
			require.NotNil(t, out.Voice)
			assert.Equal(t, tt.exact, out.Voice.Exact)
			assert.Equal(t, tt.action, out.Action)
			require.Len(t, f.backend.calls, 1)
			assert.Equal(t, tt.want, f.backend.calls[0])
		})
	}
}

func TestVoiceUnresolvedDoesNothing(t *testing.T) {
	f := newFixture(t)

	out := f.dispatcher.Handle(context.Background(), "VOICE_RAW:please make me a sandwich")
	assert.Equal(t, OutcomeUnresolved, out.Kind)
	assert.NoError(t, out.Err)
	require.NotNil(t, out.Voice)
	assert.False(t, out.Voice.Resolved)
	assert.Empty(t, f.backend.calls)

	entries := f.logs.FilterMessage("Voice command not understood").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap(), "candidate")
	assert.Contains(t, entries[0].ContextMap(), "score")
}

func TestInvocationFailureIsReported(t *testing.T) {
	f := newFixture(t)
	f.backend.err = errors.New("no display")

	out := f.dispatcher.Handle(context.Background(), "LEFT_CLICK")
	assert.Equal(t, OutcomeInvocationError, out.Kind)
	assert.EqualError(t, out.Err, "no display")
	assert.Equal(t, "LEFT_CLICK", out.Action)

	// The dispatcher keeps serving after a failure
	f.backend.err = nil
	out = f.dispatcher.Handle(context.Background(), "RIGHT_CLICK")
	assert.Equal(t, OutcomeOK, out.Kind)

	assert.Len(t, f.logs.FilterMessage("Command dropped").All(), 1)
}

func TestBackendPanicIsRecovered(t *testing.T) {
	f := newFixture(t)
	f.backend.panics = true

	var out Outcome
	require.NotPanics(t, func() {
		out = f.dispatcher.Handle(context.Background(), "MOVE_DELTA:1,2")
	})
	assert.Equal(t, OutcomeInvocationError, out.Kind)
	assert.ErrorContains(t, out.Err, "display went away")
}

func TestRegisterCatalogActions(t *testing.T) {
	registry := NewActionRegistry()
	require.NoError(t, RegisterCatalogActions(registry, catalog.Default(), &fakeBackend{}, 3))

	for _, e := range catalog.Default().Entries() {
		h, ok := registry.Get(string(e.Action))
		require.True(t, ok, "missing handler for %s", e.Action)
		assert.Equal(t, string(e.Action), h.GetName())
		assert.NotEmpty(t, h.GetDescription())
	}
	assert.Len(t, registry.List(), len(catalog.Default().Entries()))

	h, _ := registry.Get("HOTKEY_CTRL_Z")
	assert.Equal(t, []string{"ctrl", "z"}, h.(*HotkeyHandler).Keys())
	h, _ = registry.Get("SCROLL_DOWN")
	assert.Equal(t, "Scroll down 3 steps", h.GetDescription())
}

func TestOutcomeKindString(t *testing.T) {
	assert.Equal(t, "ok", OutcomeOK.String())
	assert.Equal(t, "parse_error", OutcomeParseError.String())
	assert.Equal(t, "unresolved", OutcomeUnresolved.String())
	assert.Equal(t, "invocation_error", OutcomeInvocationError.String())
	assert.Equal(t, "invalid", OutcomeKind(42).String())
}
