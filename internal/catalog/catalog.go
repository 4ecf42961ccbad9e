package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Action identifies an effect the relay can cause on the host
type Action string

// Built-in actions, in catalog declaration order
const (
	RightClick         Action = "RIGHT_CLICK"
	LeftClick          Action = "LEFT_CLICK"
	ScrollDown         Action = "SCROLL_DOWN"
	ScrollUp           Action = "SCROLL_UP"
	HotkeyCopy         Action = "HOTKEY_CTRL_C"
	HotkeyPaste        Action = "HOTKEY_CTRL_V"
	HotkeyCut          Action = "HOTKEY_CTRL_X"
	HotkeyUndo         Action = "HOTKEY_CTRL_Z"
	HotkeySave         Action = "HOTKEY_CTRL_S"
	HotkeySwitchWindow Action = "HOTKEY_ALT_TAB"
	HotkeyEnter        Action = "HOTKEY_ENTER"
)

// HotkeyPrefix marks an action whose keys are encoded in its identifier
const HotkeyPrefix = "HOTKEY_"

var (
	// ErrNoKeys is returned when a hotkey identifier decodes to zero keys
	ErrNoKeys = errors.New("hotkey identifier has no keys")
	// ErrUnknownAction is returned for synonyms attached to an action outside the catalog
	ErrUnknownAction = errors.New("unknown action")
	// ErrNoSynonyms is returned when an entry would be left without phrases
	ErrNoSynonyms = errors.New("action has no synonyms")
)

// Entry binds an action to the phrases that select it
type Entry struct {
	Action   Action
	Synonyms []string
}

// Catalog is the ordered, immutable set of actions and their synonyms
type Catalog struct {
	entries []Entry
	index   map[Action]int
}

// defaultEntries holds the English and Hebrew phrase lists shipped with the relay
func defaultEntries() []Entry {
	return []Entry{
		{RightClick, []string{"right click", "right", "רייט קליק", "רייט", "ראית", "ימין", "צד ימין"}},
		{LeftClick, []string{"left click", "left", "לפט קליק", "לפט", "שמאל", "קליק", "תעשה קליק"}},
		{ScrollDown, []string{"scroll down", "down", "דאון", "למטה", "תרד", "גלילה למטה"}},
		{ScrollUp, []string{"scroll up", "up", "אפ", "למעלה", "תעלה", "גלילה למעלה"}},
		{HotkeyCopy, []string{"copy", "העתק", "קופי", "תעתיק", "תעשה העתק"}},
		{HotkeyPaste, []string{"paste", "הדבק", "פייסט", "תדביק"}},
		{HotkeyCut, []string{"cut", "גזור", "קאט", "תגזור"}},
		{HotkeyUndo, []string{"undo", "בטל", "אנדו", "חזור אחורה"}},
		{HotkeySave, []string{"save", "שמור", "סייב", "תשמור"}},
		{HotkeySwitchWindow, []string{"switch", "החלף חלון", "אלט טאב", "טאב", "חלון הבא"}},
		{HotkeyEnter, []string{"enter", "אנטר", "כנס", "שורה חדשה"}},
	}
}

// Default returns the built-in catalog
func Default() *Catalog {
	c, _ := New(defaultEntries())
	return c
}

// New builds a catalog from entries. Phrases are stored in Normalize form.
func New(entries []Entry) (*Catalog, error) {
	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[Action]int, len(entries)),
	}
	for _, e := range entries {
		if _, dup := c.index[e.Action]; dup {
			return nil, fmt.Errorf("duplicate catalog entry %s", e.Action)
		}
		phrases := cleanPhrases(e.Synonyms)
		if len(phrases) == 0 {
			return nil, fmt.Errorf("%s: %w", e.Action, ErrNoSynonyms)
		}
		c.index[e.Action] = len(c.entries)
		c.entries = append(c.entries, Entry{Action: e.Action, Synonyms: phrases})
	}
	return c, nil
}

// WithSynonyms returns a copy of the catalog with extra phrases appended to existing actions.
// Declaration order is preserved.
func (c *Catalog) WithSynonyms(extra map[string][]string) (*Catalog, error) {
	entries := c.Entries()
	for name, phrases := range extra {
		i, ok := c.index[Action(strings.ToUpper(strings.TrimSpace(name)))]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAction, name)
		}
		entries[i].Synonyms = append(entries[i].Synonyms, phrases...)
	}
	return New(entries)
}

// Entries returns a copy of the catalog entries in declaration order
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		out[i] = Entry{Action: e.Action, Synonyms: append([]string(nil), e.Synonyms...)}
	}
	return out
}

// Synonyms returns the phrases for an action
func (c *Catalog) Synonyms(a Action) []string {
	i, ok := c.index[a]
	if !ok {
		return nil
	}
	return append([]string(nil), c.entries[i].Synonyms...)
}

// IsHotkey reports whether the identifier carries an encoded key combination
func IsHotkey(name string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(name)), HotkeyPrefix)
}

// DecodeHotkey extracts the lowercase key sequence from a HOTKEY_ identifier.
// HOTKEY_CTRL_C yields [ctrl c].
func DecodeHotkey(name string) ([]string, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if !strings.HasPrefix(name, HotkeyPrefix) {
		return nil, fmt.Errorf("%q is not a hotkey identifier", name)
	}
	var keys []string
	for _, part := range strings.Split(strings.TrimPrefix(name, HotkeyPrefix), "_") {
		if part == "" {
			continue
		}
		keys = append(keys, strings.ToLower(part))
	}
	if len(keys) == 0 {
		return nil, ErrNoKeys
	}
	return keys, nil
}

func cleanPhrases(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		p = Normalize(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

var builtin = func() map[Action]struct{} {
	m := make(map[Action]struct{})
	for _, e := range defaultEntries() {
		m[e.Action] = struct{}{}
	}
	return m
}()

// Known reports whether name is one of the built-in actions
func Known(name string) bool {
	_, ok := builtin[Action(name)]
	return ok
}
