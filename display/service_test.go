package display

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
)

func startSim(t *testing.T) (*Service, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	s := NewService(WithScreen(sim))
	if err := s.Init(nil); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { s.Stop() })
	return s, sim
}

func TestService_RoutesKeys(t *testing.T) {
	s, sim := startSim(t)

	sim.InjectKey(tcell.KeyEnter, 0, tcell.ModNone)
	sim.InjectKey(tcell.KeyRune, 'k', tcell.ModNone)

	want := []tcell.Key{tcell.KeyEnter, tcell.KeyRune}
	for i, k := range want {
		select {
		case ev := <-s.Keys():
			if ev.Key() != k {
				t.Errorf("key %d = %v, want %v", i, ev.Key(), k)
			}
		case <-time.After(time.Second):
			t.Fatalf("key %d not delivered", i)
		}
	}
}

func TestService_CoalescesResize(t *testing.T) {
	s, sim := startSim(t)

	for i := 0; i < 5; i++ {
		sim.PostEvent(tcell.NewEventResize(40+i, 12))
	}
	// Barrier: once the key arrives every resize before it has been routed
	sim.PostEvent(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	select {
	case <-s.Keys():
	case <-time.After(time.Second):
		t.Fatal("barrier key not delivered")
	}

	select {
	case <-s.Resizes():
	default:
		t.Fatal("expected pending resize notification")
	}
	select {
	case <-s.Resizes():
		t.Fatal("resize notifications must coalesce into one slot")
	default:
	}
}

func TestService_StopIdempotent(t *testing.T) {
	sim := tcell.NewSimulationScreen("UTF-8")
	s := NewService(WithScreen(sim))

	// Stop before Init is a no-op
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop before Init: %v", err)
	}
	if err := s.Start(); err == nil {
		t.Fatal("Start before Init must fail")
	}

	if err := s.Init(nil); err != nil {
		t.Fatal(err)
	}
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		s.Stop()
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
}
