package service

import (
	"errors"
	"fmt"
	"log"
	"sync"
)

var (
	// ErrUnavailable is returned by Open when a record is missing, not started, or of another type
	ErrUnavailable = errors.New("record unavailable")

	// ErrNotOpen is returned by Close when the record holds no open reference
	ErrNotOpen = errors.New("record not open")
)

// Hub is the record registry of the host
// Manages service lifecycle and reference-counted access by name
type Hub struct {
	mu         sync.RWMutex
	services   map[string]Service
	registered []string        // Registration order, keeps sorting deterministic
	sorted     []string        // Topological order, computed on InitAll
	started    map[string]bool // Records accepting Open
	startOrder []string        // Services that completed Start(), for rollback and StopAll
	refs       map[string]int
}

// NewHub creates an empty record hub
func NewHub() *Hub {
	return &Hub{
		services: make(map[string]Service),
		started:  make(map[string]bool),
		refs:     make(map[string]int),
	}
}

// Register adds a service instance to the hub
// Clears cached sort order to force recomputation
func (h *Hub) Register(svc Service) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	name := svc.Name()
	if _, exists := h.services[name]; exists {
		return fmt.Errorf("service already registered: %s", name)
	}

	h.services[name] = svc
	h.registered = append(h.registered, name)
	h.sorted = nil
	return nil
}

// Get retrieves a service by name
func (h *Hub) Get(name string) (Service, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	svc, ok := h.services[name]
	return svc, ok
}

// MustGet retrieves a service and casts to type T
// Panics if service not found or type mismatch; intended for declared dependencies in Init
func MustGet[T any](h *Hub, name string) T {
	svc, ok := h.Get(name)
	if !ok {
		panic(fmt.Sprintf("service not found: %s", name))
	}

	typed, ok := svc.(T)
	if !ok {
		panic(fmt.Sprintf("service %s: type mismatch, got %T", name, svc))
	}
	return typed
}

// Open acquires a reference to a started record and casts it to T
// Every successful Open must be paired with exactly one Close
func Open[T any](h *Hub, name string) (T, error) {
	var zero T

	h.mu.Lock()
	defer h.mu.Unlock()

	svc, ok := h.services[name]
	if !ok {
		return zero, fmt.Errorf("open %s: %w", name, ErrUnavailable)
	}
	if !h.started[name] {
		return zero, fmt.Errorf("open %s: not started: %w", name, ErrUnavailable)
	}
	typed, ok := svc.(T)
	if !ok {
		return zero, fmt.Errorf("open %s: type %T: %w", name, svc, ErrUnavailable)
	}

	h.refs[name]++
	return typed, nil
}

// Close releases one reference obtained by Open
func (h *Hub) Close(name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.refs[name] == 0 {
		return fmt.Errorf("close %s: %w", name, ErrNotOpen)
	}
	h.refs[name]--
	return nil
}

// Refs returns the number of open references held on a record
func (h *Hub) Refs(name string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.refs[name]
}

// InitAll resolves dependencies and calls Init on all services
// On failure, calls Stop on already-initialized services in reverse order
func (h *Hub) InitAll() error {
	h.mu.Lock()
	if h.sorted == nil {
		order, err := h.topologicalSort()
		if err != nil {
			h.mu.Unlock()
			return err
		}
		h.sorted = order
	}
	order := append([]string(nil), h.sorted...)
	h.mu.Unlock()

	// Init runs unlocked: services resolve their dependencies through the hub
	var initialized []Service
	for _, name := range order {
		svc, _ := h.Get(name)
		if err := svc.Init(h); err != nil {
			for i := len(initialized) - 1; i >= 0; i-- {
				initialized[i].Stop()
			}
			return fmt.Errorf("service %s init failed: %w", name, err)
		}
		initialized = append(initialized, svc)
	}

	return nil
}

// StartAll calls Start on all services in topological order
// On failure, calls Stop on already-started services in reverse order
func (h *Hub) StartAll() error {
	h.mu.RLock()
	order := append([]string(nil), h.sorted...)
	h.mu.RUnlock()

	if order == nil {
		return fmt.Errorf("start before init")
	}

	for _, name := range order {
		svc, _ := h.Get(name)
		if err := svc.Start(); err != nil {
			h.StopAll()
			return fmt.Errorf("service %s start failed: %w", name, err)
		}

		h.mu.Lock()
		h.started[name] = true
		h.startOrder = append(h.startOrder, name)
		h.mu.Unlock()
	}

	return nil
}

// StopAll calls Stop on all started services in reverse start order
// Logs errors but does not fail - ensures all services get Stop called
func (h *Hub) StopAll() {
	h.mu.Lock()
	order := h.startOrder
	h.startOrder = nil
	h.started = make(map[string]bool)
	h.mu.Unlock()

	for i := len(order) - 1; i >= 0; i-- {
		name := order[i]
		svc, ok := h.Get(name)
		if !ok {
			continue
		}
		if refs := h.Refs(name); refs > 0 {
			log.Printf("hub: stopping %s with %d open references", name, refs)
		}
		if err := svc.Stop(); err != nil {
			log.Printf("hub: stop %s: %v", name, err)
		}
	}
}

// topologicalSort computes initialization order using Kahn's algorithm
// Ties resolve in registration order; returns error if a dependency is missing or circular
func (h *Hub) topologicalSort() ([]string, error) {
	inDegree := make(map[string]int)
	dependents := make(map[string][]string) // dep -> services that depend on it

	for _, name := range h.registered {
		inDegree[name] = 0
	}

	for _, name := range h.registered {
		for _, dep := range h.services[name].Dependencies() {
			if _, exists := h.services[dep]; !exists {
				return nil, fmt.Errorf("service %s depends on unregistered service: %s", name, dep)
			}
			inDegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var queue []string
	for _, name := range h.registered {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	var result []string
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		result = append(result, name)

		for _, dependent := range dependents[name] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(result) != len(h.services) {
		return nil, fmt.Errorf("circular dependency detected in services")
	}

	return result, nil
}

// Names returns registered service names in registration order
func (h *Hub) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]string(nil), h.registered...)
}
