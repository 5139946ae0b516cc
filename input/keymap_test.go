package input

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestKeymap_DefaultTranslate(t *testing.T) {
	m := DefaultKeymap()

	tests := []struct {
		name     string
		ev       *tcell.EventKey
		wantKey  Key
		wantLong bool
		wantOK   bool
	}{
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), KeyBack, false, true},
		{"backspace", tcell.NewEventKey(tcell.KeyBackspace, 0, tcell.ModNone), KeyBack, false, true},
		{"backspace2", tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone), KeyBack, false, true},
		{"ctrl_c", tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl), KeyBack, false, true},
		{"ctrl rune c", tcell.NewEventKey(tcell.KeyRune, 'c', tcell.ModCtrl), KeyBack, false, true},
		{"enter", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), KeyOK, false, true},
		{"space", tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), KeyOK, false, true},
		{"arrow up", tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), KeyUp, false, true},
		{"vi j", tcell.NewEventKey(tcell.KeyRune, 'j', tcell.ModNone), KeyDown, false, true},
		{"alt h long", tcell.NewEventKey(tcell.KeyRune, 'h', tcell.ModAlt), KeyLeft, true, true},
		{"alt escape long", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModAlt), KeyBack, true, true},
		{"unmapped rune", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), 0, false, false},
		{"unmapped key", tcell.NewEventKey(tcell.KeyF5, 0, tcell.ModNone), 0, false, false},
		{"unmapped ctrl", tcell.NewEventKey(tcell.KeyCtrlX, 0, tcell.ModCtrl), 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, long, ok := m.Translate(tt.ev)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if key != tt.wantKey {
				t.Errorf("key = %s, want %s", key, tt.wantKey)
			}
			if long != tt.wantLong {
				t.Errorf("long = %v, want %v", long, tt.wantLong)
			}
		})
	}
}

func TestNewKeymap_Errors(t *testing.T) {
	tests := []struct {
		name     string
		bindings map[string][]string
		want     string
	}{
		{"unknown device key", map[string][]string{"menu": {"m"}}, "unknown device key"},
		{"bad name", map[string][]string{"back": {"esc_key"}}, "invalid key name"},
		{"bad control", map[string][]string{"back": {"ctrl_1"}}, "invalid control key"},
		{"conflict", map[string][]string{"back": {"q"}, "ok": {"q"}}, "already bound"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewKeymap(tt.bindings)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestNewKeymap_Override(t *testing.T) {
	m, err := NewKeymap(map[string][]string{"back": {"q", "Backspace"}})
	if err != nil {
		t.Fatal(err)
	}

	if key, _, ok := m.Translate(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)); !ok || key != KeyBack {
		t.Errorf("q = %s/%v, want back", key, ok)
	}
	if _, _, ok := m.Translate(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)); ok {
		t.Error("escape must be unbound when bindings replace defaults")
	}
}

func TestKeyNames(t *testing.T) {
	for k := KeyUp; k < keyCount; k++ {
		got, ok := KeyByName(k.String())
		if !ok || got != k {
			t.Errorf("KeyByName(%q) = %v/%v", k.String(), got, ok)
		}
	}
	if Key(200).String() != "unknown" {
		t.Error("out of range key must stringify as unknown")
	}
	if TypeShort.String() != "short" || Type(99).String() != "unknown" {
		t.Error("type names mismatch")
	}
}
