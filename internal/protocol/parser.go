// Package protocol decodes command-channel datagrams.
//
// A datagram is KEYWORD or KEYWORD:ARG[:ARG...]. The keyword is trimmed and
// uppercased; arguments are passed through unparsed. Parsing assigns a Kind so the
// dispatcher can switch over a closed set instead of comparing strings.
package protocol

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/mouse-relay/internal/catalog"
)

// Wire keywords
const (
	KeywordVoice     = "VOICE_RAW"
	KeywordMoveDelta = "MOVE_DELTA"
	KeywordSetScale  = "SET_SCALE"
)

// Delimiter separates the keyword from its arguments
const Delimiter = ":"

// Kind is the keyword family of a parsed command
type Kind int

const (
	// KindUnknown is a keyword outside every known family; it is still dispatched by name
	KindUnknown Kind = iota
	KindVoice
	KindMoveDelta
	KindSetScale
	// KindAction is a built-in click, scroll or hotkey action
	KindAction
	// KindHotkey is a HOTKEY_ identifier outside the built-in catalog
	KindHotkey
)

var kindNames = map[Kind]string{
	KindUnknown:   "unknown",
	KindVoice:     "voice",
	KindMoveDelta: "move_delta",
	KindSetScale:  "set_scale",
	KindAction:    "action",
	KindHotkey:    "hotkey",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

var (
	// ErrEmptyPayload is returned for datagrams that are empty after trimming
	ErrEmptyPayload = errors.New("empty payload")
	// ErrEmptyKeyword is returned when the payload starts with the delimiter
	ErrEmptyKeyword = errors.New("empty keyword")
	// ErrInvalidEncoding is returned for payloads that are not valid UTF-8
	ErrInvalidEncoding = errors.New("payload is not valid UTF-8")
)

// Command is a single decoded datagram
type Command struct {
	Keyword string
	Args    []string
	Kind    Kind
}

// Parse decodes a datagram payload
func Parse(payload string) (Command, error) {
	if !utf8.ValidString(payload) {
		return Command{}, ErrInvalidEncoding
	}
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return Command{}, ErrEmptyPayload
	}

	parts := strings.Split(payload, Delimiter)
	keyword := strings.ToUpper(strings.TrimSpace(parts[0]))
	if keyword == "" {
		return Command{}, ErrEmptyKeyword
	}

	return Command{
		Keyword: keyword,
		Args:    parts[1:],
		Kind:    classify(keyword),
	}, nil
}

func classify(keyword string) Kind {
	switch {
	case keyword == KeywordVoice:
		return KindVoice
	case keyword == KeywordMoveDelta:
		return KindMoveDelta
	case keyword == KeywordSetScale:
		return KindSetScale
	case catalog.Known(keyword):
		return KindAction
	case catalog.IsHotkey(keyword):
		return KindHotkey
	default:
		return KindUnknown
	}
}

// Arg returns argument i, or "" when absent
func (c Command) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

// Format renders a command back to its wire form
func Format(keyword string, args ...string) string {
	if len(args) == 0 {
		return keyword
	}
	return keyword + Delimiter + strings.Join(args, Delimiter)
}
