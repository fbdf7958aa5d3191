// Package registry maps action type identifiers to their specs and handlers.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/vandyand/agentic-workflow-engine/pkg/protocol"
)

var (
	// ErrDuplicateAction indicates an action id was registered twice.
	ErrDuplicateAction = errors.New("action already registered")

	// ErrUnknownAction indicates a lookup for an id that was never registered.
	ErrUnknownAction = errors.New("action not registered")

	// ErrInvalidSpec indicates an action spec without an id or handler.
	ErrInvalidSpec = errors.New("invalid action spec")
)

// Registry holds the process-wide action set. Registration happens during
// process initialization; afterwards the registry is read-only and safe for
// concurrent lookup from any number of steps.
type Registry struct {
	logger *slog.Logger
	mu     sync.RWMutex
	specs  map[string]protocol.ActionSpec
}

func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		logger: logger,
		specs:  make(map[string]protocol.ActionSpec),
	}
}

// Register adds an action spec under its id.
func (r *Registry) Register(spec protocol.ActionSpec) error {
	if spec.ID == "" || spec.Handler == nil {
		return fmt.Errorf("%w: id and handler are required", ErrInvalidSpec)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.specs[spec.ID]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateAction, spec.ID)
	}

	r.specs[spec.ID] = spec
	r.logger.Debug("Registered action", "action_id", spec.ID)

	return nil
}

// Lookup resolves an action id to its spec.
func (r *Registry) Lookup(id string) (protocol.ActionSpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, ok := r.specs[id]
	if !ok {
		return protocol.ActionSpec{}, fmt.Errorf("%w: %q", ErrUnknownAction, id)
	}

	return spec, nil
}

// Actions returns all registered specs sorted by id.
func (r *Registry) Actions() []protocol.ActionSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := make([]protocol.ActionSpec, 0, len(r.specs))
	for _, spec := range r.specs {
		specs = append(specs, spec)
	}

	sort.Slice(specs, func(i, j int) bool { return specs[i].ID < specs[j].ID })

	return specs
}
