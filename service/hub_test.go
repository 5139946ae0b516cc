package service

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

type fakeService struct {
	name     string
	deps     []string
	trace    *[]string
	initErr  error
	startErr error
}

func (f *fakeService) Name() string           { return f.name }
func (f *fakeService) Dependencies() []string { return f.deps }

func (f *fakeService) Init(h *Hub) error {
	*f.trace = append(*f.trace, "init:"+f.name)
	return f.initErr
}

func (f *fakeService) Start() error {
	*f.trace = append(*f.trace, "start:"+f.name)
	return f.startErr
}

func (f *fakeService) Stop() error {
	*f.trace = append(*f.trace, "stop:"+f.name)
	return nil
}

func newHubWith(t *testing.T, trace *[]string, svcs ...*fakeService) *Hub {
	t.Helper()
	h := NewHub()
	for _, s := range svcs {
		s.trace = trace
		if err := h.Register(s); err != nil {
			t.Fatalf("Register %s: %v", s.name, err)
		}
	}
	return h
}

func TestHub_LifecycleOrder(t *testing.T) {
	var trace []string
	h := newHubWith(t, &trace,
		&fakeService{name: "gui", deps: []string{"display", "input"}},
		&fakeService{name: "input", deps: []string{"display"}},
		&fakeService{name: "display"},
	)

	if err := h.InitAll(); err != nil {
		t.Fatalf("InitAll: %v", err)
	}
	if err := h.StartAll(); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	h.StopAll()

	want := []string{
		"init:display", "init:input", "init:gui",
		"start:display", "start:input", "start:gui",
		"stop:gui", "stop:input", "stop:display",
	}
	if !reflect.DeepEqual(trace, want) {
		t.Errorf("trace = %v, want %v", trace, want)
	}
}

func TestHub_RegisterDuplicate(t *testing.T) {
	var trace []string
	h := newHubWith(t, &trace, &fakeService{name: "gui"})
	if err := h.Register(&fakeService{name: "gui", trace: &trace}); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}

func TestHub_SortErrors(t *testing.T) {
	tests := []struct {
		name string
		svcs []*fakeService
		want string
	}{
		{
			name: "missing dependency",
			svcs: []*fakeService{{name: "gui", deps: []string{"display"}}},
			want: "unregistered",
		},
		{
			name: "cycle",
			svcs: []*fakeService{
				{name: "a", deps: []string{"b"}},
				{name: "b", deps: []string{"a"}},
			},
			want: "circular",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var trace []string
			h := newHubWith(t, &trace, tt.svcs...)
			err := h.InitAll()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("InitAll err = %v, want containing %q", err, tt.want)
			}
			if len(trace) != 0 {
				t.Errorf("no service should be touched, got %v", trace)
			}
		})
	}
}

func TestHub_InitRollback(t *testing.T) {
	var trace []string
	h := newHubWith(t, &trace,
		&fakeService{name: "display"},
		&fakeService{name: "input", deps: []string{"display"}, initErr: errors.New("boom")},
	)

	if err := h.InitAll(); err == nil {
		t.Fatal("expected init error")
	}
	want := []string{"init:display", "init:input", "stop:display"}
	if !reflect.DeepEqual(trace, want) {
		t.Errorf("trace = %v, want %v", trace, want)
	}
}

func TestHub_StartRollback(t *testing.T) {
	var trace []string
	h := newHubWith(t, &trace,
		&fakeService{name: "display"},
		&fakeService{name: "input", deps: []string{"display"}, startErr: errors.New("boom")},
	)

	if err := h.InitAll(); err != nil {
		t.Fatalf("InitAll: %v", err)
	}
	if err := h.StartAll(); err == nil {
		t.Fatal("expected start error")
	}
	want := []string{"init:display", "init:input", "start:display", "start:input", "stop:display"}
	if !reflect.DeepEqual(trace, want) {
		t.Errorf("trace = %v, want %v", trace, want)
	}
}

func TestHub_OpenClose(t *testing.T) {
	var trace []string
	h := newHubWith(t, &trace, &fakeService{name: "gui"})

	if _, err := Open[*fakeService](h, "gui"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Open before start: err = %v, want ErrUnavailable", err)
	}
	if _, err := Open[*fakeService](h, "missing"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Open missing: err = %v, want ErrUnavailable", err)
	}

	if err := h.InitAll(); err != nil {
		t.Fatal(err)
	}
	if err := h.StartAll(); err != nil {
		t.Fatal(err)
	}
	defer h.StopAll()

	if _, err := Open[*strings.Builder](h, "gui"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Open wrong type: err = %v, want ErrUnavailable", err)
	}

	svc, err := Open[*fakeService](h, "gui")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if svc.name != "gui" {
		t.Errorf("opened %q", svc.name)
	}
	if _, err := Open[*fakeService](h, "gui"); err != nil {
		t.Fatalf("second Open: %v", err)
	}
	if got := h.Refs("gui"); got != 2 {
		t.Errorf("Refs = %d, want 2", got)
	}

	for i := 0; i < 2; i++ {
		if err := h.Close("gui"); err != nil {
			t.Fatalf("Close %d: %v", i, err)
		}
	}
	if got := h.Refs("gui"); got != 0 {
		t.Errorf("Refs = %d, want 0", got)
	}
	if err := h.Close("gui"); !errors.Is(err, ErrNotOpen) {
		t.Errorf("extra Close: err = %v, want ErrNotOpen", err)
	}
}

func TestHub_OpenAfterStop(t *testing.T) {
	var trace []string
	h := newHubWith(t, &trace, &fakeService{name: "gui"})
	if err := h.InitAll(); err != nil {
		t.Fatal(err)
	}
	if err := h.StartAll(); err != nil {
		t.Fatal(err)
	}
	h.StopAll()

	if _, err := Open[*fakeService](h, "gui"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Open after stop: err = %v, want ErrUnavailable", err)
	}
}

func TestMustGet_Panics(t *testing.T) {
	h := NewHub()
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for missing service")
		}
	}()
	MustGet[*fakeService](h, "gui")
}
