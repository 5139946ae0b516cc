package service

// Service defines the lifecycle interface for host records
// Records are long-lived platform subsystems applications open by name: display, input, gui
//
// Lifecycle:
//  1. Construction (via NewService in the owning package)
//  2. Init(hub) - resolve dependencies through the hub
//  3. Start() - launch background goroutines
//  4. [runtime operation, applications Open/Close the record]
//  5. Stop() - halt goroutines, release resources
type Service interface {
	// Name returns the unique record name
	Name() string

	// Dependencies returns names of records that must Init and Start before this one
	// Return nil or empty slice if no dependencies
	Dependencies() []string

	// Init resolves dependencies from the hub
	// Dependencies are guaranteed initialized, not yet started
	Init(h *Hub) error

	// Start begins service operation (launches goroutines if any)
	// Called after all services have initialized, in dependency order
	Start() error

	// Stop halts service operation and releases resources
	// Must be idempotent - safe to call multiple times
	Stop() error
}
