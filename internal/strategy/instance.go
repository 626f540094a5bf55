package strategy

import (
	"maps"
	"slices"

	"github.com/rxtech-lab/argo-steps/internal/step"
)

// StepInstance binds a step definition to one strategy's static configuration
// and runtime bindings.
type StepInstance struct {
	id              string
	description     string
	definition      *step.Definition
	configBindings  map[string]any
	runtimeBindings map[string]string
	reevaluates     []*StepInstance
}

// NewStepInstance creates an instance without reevaluation targets.
// Hydrate wires reevaluation targets for instances loaded from configuration.
func NewStepInstance(id string, definition *step.Definition, configBindings map[string]any, runtimeBindings map[string]string) *StepInstance {
	return &StepInstance{
		id:              id,
		description:     "",
		definition:      definition,
		configBindings:  maps.Clone(configBindings),
		runtimeBindings: maps.Clone(runtimeBindings),
		reevaluates:     nil,
	}
}

// ID returns the instance id.
func (s *StepInstance) ID() string { return s.id }

// Description returns the optional description, falling back to the definition's.
func (s *StepInstance) Description() string {
	if s.description == "" && s.definition != nil {
		return s.definition.Description()
	}

	return s.description
}

// Definition returns the shared step definition.
func (s *StepInstance) Definition() *step.Definition { return s.definition }

// ConfigValue looks up a static config value.
func (s *StepInstance) ConfigValue(key string) (any, bool) {
	v, ok := s.configBindings[key]

	return v, ok
}

// ConfigBindings returns a copy of the static configuration.
func (s *StepInstance) ConfigBindings() map[string]any { return maps.Clone(s.configBindings) }

// RuntimeBindings returns a copy of the runtime rename table.
func (s *StepInstance) RuntimeBindings() map[string]string { return maps.Clone(s.runtimeBindings) }

// RuntimeName returns the context output name a runtime binding key reads.
func (s *StepInstance) RuntimeName(key string) string {
	if name, ok := s.runtimeBindings[key]; ok && name != "" {
		return name
	}

	return key
}

// Reevaluates returns the instances re-run after this one succeeds, in order.
func (s *StepInstance) Reevaluates() []*StepInstance { return slices.Clone(s.reevaluates) }

func (s *StepInstance) String() string { return s.id }
