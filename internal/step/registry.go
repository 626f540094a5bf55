package step

import (
	"sync"

	"github.com/rxtech-lab/argo-steps/pkg/errors"
)

// StepRegistry looks up step definitions by id.
type StepRegistry interface {
	Get(id string) (*Definition, error)
	GetAll() []*Definition
}

// Registry is an ordered, in-memory StepRegistry.
type Registry struct {
	definitions map[string]*Definition
	order       []string
	mu          sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		definitions: make(map[string]*Definition),
		order:       nil,
		mu:          sync.RWMutex{},
	}
}

// Register adds a definition. Ids must be unique.
func (r *Registry) Register(def *Definition) error {
	if def == nil {
		return errors.New(errors.ErrCodeInvalidParameter, "Register: definition is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.definitions[def.ID()]; exists {
		return errors.Newf(errors.ErrCodeDuplicateStep, "Register: step %s already registered", def.ID())
	}

	r.definitions[def.ID()] = def
	r.order = append(r.order, def.ID())

	return nil
}

// Get implements StepRegistry.
func (r *Registry) Get(id string) (*Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, exists := r.definitions[id]
	if !exists {
		return nil, errors.NewLoadError(id, "step definition not found", nil)
	}

	return def, nil
}

// GetAll returns every definition in registration order.
func (r *Registry) GetAll() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]*Definition, 0, len(r.order))
	for _, id := range r.order {
		defs = append(defs, r.definitions[id])
	}

	return defs
}
