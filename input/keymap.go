package input

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/gdamore/tcell/v2"
)

// Named terminal keys accepted in bindings
var terminalKeys = map[string][]tcell.Key{
	"escape":    {tcell.KeyEscape},
	"enter":     {tcell.KeyEnter},
	"tab":       {tcell.KeyTab},
	"backtab":   {tcell.KeyBacktab},
	"backspace": {tcell.KeyBackspace, tcell.KeyBackspace2},
	"delete":    {tcell.KeyDelete},
	"insert":    {tcell.KeyInsert},
	"up":        {tcell.KeyUp},
	"down":      {tcell.KeyDown},
	"left":      {tcell.KeyLeft},
	"right":     {tcell.KeyRight},
	"home":      {tcell.KeyHome},
	"end":       {tcell.KeyEnd},
	"page_up":   {tcell.KeyPgUp},
	"page_down": {tcell.KeyPgDn},
}

// Rune aliases for keys that are awkward as bare strings
var runeAliases = map[string]rune{
	"space":     ' ',
	"backslash": '\\',
}

// DefaultBindings returns the stock device key to terminal key name table
func DefaultBindings() map[string][]string {
	return map[string][]string{
		"up":    {"up", "k"},
		"down":  {"down", "j"},
		"left":  {"left", "h"},
		"right": {"right", "l"},
		"ok":    {"enter", "space"},
		"back":  {"escape", "backspace", "ctrl_c"},
	}
}

// Keymap translates terminal key strokes into device keys
type Keymap struct {
	keys  map[tcell.Key]Key
	runes map[rune]Key
}

// NewKeymap builds a keymap from device key name → terminal key names
// Returns error on unknown device keys, unknown terminal key names, or a terminal key bound twice
func NewKeymap(bindings map[string][]string) (*Keymap, error) {
	m := &Keymap{
		keys:  make(map[tcell.Key]Key),
		runes: make(map[rune]Key),
	}

	// Sorted for deterministic conflict reporting
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		key, ok := KeyByName(strings.ToLower(strings.TrimSpace(name)))
		if !ok {
			return nil, fmt.Errorf("unknown device key: %q", name)
		}

		for _, termName := range bindings[name] {
			if err := m.bind(key, termName); err != nil {
				return nil, fmt.Errorf("[%s] %w", name, err)
			}
		}
	}

	return m, nil
}

// DefaultKeymap returns the keymap built from DefaultBindings
func DefaultKeymap() *Keymap {
	m, err := NewKeymap(DefaultBindings())
	if err != nil {
		panic(fmt.Sprintf("default bindings: %v", err))
	}
	return m
}

// bind resolves one terminal key name and assigns it to key
func (m *Keymap) bind(key Key, name string) error {
	lower := strings.ToLower(name)

	if tks, ok := terminalKeys[lower]; ok {
		for _, tk := range tks {
			if prev, dup := m.keys[tk]; dup && prev != key {
				return fmt.Errorf("key %q already bound to %s", name, prev)
			}
			m.keys[tk] = key
		}
		return nil
	}

	if letter, ok := strings.CutPrefix(lower, "ctrl_"); ok {
		if len(letter) != 1 || letter[0] < 'a' || letter[0] > 'z' {
			return fmt.Errorf("invalid control key: %q", name)
		}
		tk := tcell.KeyCtrlA + tcell.Key(letter[0]-'a')
		if prev, dup := m.keys[tk]; dup && prev != key {
			return fmt.Errorf("key %q already bound to %s", name, prev)
		}
		m.keys[tk] = key
		return nil
	}

	r, err := resolveRune(name)
	if err != nil {
		return err
	}
	if prev, dup := m.runes[r]; dup && prev != key {
		return fmt.Errorf("key %q already bound to %s", name, prev)
	}
	m.runes[r] = key
	return nil
}

// Translate maps a terminal stroke to a device key
// Alt-modified strokes report long=true; terminals cannot report hold duration
func (m *Keymap) Translate(ev *tcell.EventKey) (key Key, long bool, ok bool) {
	long = ev.Modifiers()&tcell.ModAlt != 0

	tk := ev.Key()
	if tk == tcell.KeyRune {
		r := ev.Rune()
		// Some terminals report control chords as a modified rune
		if ev.Modifiers()&tcell.ModCtrl != 0 {
			lower := unicode.ToLower(r)
			if lower >= 'a' && lower <= 'z' {
				key, ok = m.keys[tcell.KeyCtrlA+tcell.Key(lower-'a')]
				return key, long, ok
			}
		}
		key, ok = m.runes[r]
		return key, long, ok
	}

	key, ok = m.keys[tk]
	return key, long, ok
}

// resolveRune converts a binding string to a rune
// Accepts single characters and named aliases
func resolveRune(s string) (rune, error) {
	if r, ok := runeAliases[strings.ToLower(s)]; ok {
		return r, nil
	}

	runes := []rune(s)
	if len(runes) == 1 {
		return runes[0], nil
	}

	return 0, fmt.Errorf("invalid key name: %q (expected named key, ctrl_<letter>, or single character)", s)
}
