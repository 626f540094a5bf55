package strategy

import (
	"sort"
	"strings"

	"github.com/rxtech-lab/argo-steps/internal/step"
	"github.com/rxtech-lab/argo-steps/pkg/errors"
)

// RawStepInstance is the serialized form of a StepInstance.
type RawStepInstance struct {
	ID              string            `yaml:"id" json:"id" jsonschema:"title=ID,description=Instance id, unique within the strategy" validate:"required"`
	Step            string            `yaml:"step,omitempty" json:"step,omitempty" jsonschema:"title=Step,description=Step definition id; defaults to the instance id"`
	Description     string            `yaml:"description,omitempty" json:"description,omitempty" jsonschema:"title=Description"`
	ConfigBindings  map[string]any    `yaml:"config_bindings,omitempty" json:"config_bindings,omitempty" jsonschema:"title=Config Bindings,description=Static values read by config-sourced inputs"`
	RuntimeBindings map[string]string `yaml:"runtime_bindings,omitempty" json:"runtime_bindings,omitempty" jsonschema:"title=Runtime Bindings,description=Rename of runtime keys to context output names"`
	Reevaluates     []string          `yaml:"reevaluates,omitempty" json:"reevaluates,omitempty" jsonschema:"title=Reevaluates,description=Sibling instance ids re-run after this step succeeds"`
}

// RawStrategyConfig is the serialized form of a StrategyConfig.
type RawStrategyConfig struct {
	Name        string            `yaml:"name" json:"name" jsonschema:"title=Name" validate:"required"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty" jsonschema:"title=Description"`
	Steps       []RawStepInstance `yaml:"steps" json:"steps" jsonschema:"title=Steps" validate:"required,min=1,dive"`
}

// StrategyConfig is a named, ordered collection of step instances.
// It is immutable once hydrated.
type StrategyConfig struct {
	name        string
	description string
	steps       []*StepInstance
	byID        map[string]*StepInstance
}

// Name returns the strategy name.
func (c *StrategyConfig) Name() string { return c.name }

// Description returns the optional strategy description.
func (c *StrategyConfig) Description() string { return c.description }

// Steps returns the instances in declared order.
func (c *StrategyConfig) Steps() []*StepInstance {
	steps := make([]*StepInstance, len(c.steps))
	copy(steps, c.steps)

	return steps
}

// Step looks up an instance by id.
func (c *StrategyConfig) Step(id string) (*StepInstance, bool) {
	s, ok := c.byID[id]

	return s, ok
}

// Hydrate builds a StrategyConfig from its serialized form. All instances are
// built first; reevaluation ids are then resolved to sibling instances and the
// resulting graph is checked for cycles.
func Hydrate(raw RawStrategyConfig, registry step.StepRegistry) (*StrategyConfig, error) {
	if strings.TrimSpace(raw.Name) == "" {
		return nil, errors.New(errors.ErrCodeStrategyConfigError, "strategy name cannot be empty")
	}

	if registry == nil {
		return nil, errors.New(errors.ErrCodeStrategyConfigError, "step registry is nil")
	}

	cfg := &StrategyConfig{
		name:        raw.Name,
		description: raw.Description,
		steps:       make([]*StepInstance, 0, len(raw.Steps)),
		byID:        make(map[string]*StepInstance, len(raw.Steps)),
	}

	for _, rawStep := range raw.Steps {
		if strings.TrimSpace(rawStep.ID) == "" {
			return nil, errors.Newf(errors.ErrCodeStrategyConfigError, "strategy %s: step id cannot be empty", raw.Name)
		}

		if _, dup := cfg.byID[rawStep.ID]; dup {
			return nil, errors.Newf(errors.ErrCodeDuplicateStep, "strategy %s: duplicate step id %s", raw.Name, rawStep.ID)
		}

		definitionID := rawStep.Step
		if definitionID == "" {
			definitionID = rawStep.ID
		}

		def, err := registry.Get(definitionID)
		if err != nil {
			return nil, err
		}

		if err := checkConfigKeys(raw.Name, rawStep, def); err != nil {
			return nil, err
		}

		inst := NewStepInstance(rawStep.ID, def, rawStep.ConfigBindings, rawStep.RuntimeBindings)
		inst.description = rawStep.Description

		cfg.steps = append(cfg.steps, inst)
		cfg.byID[inst.id] = inst
	}

	for i, rawStep := range raw.Steps {
		inst := cfg.steps[i]

		for _, targetID := range rawStep.Reevaluates {
			target, ok := cfg.byID[targetID]
			if !ok {
				return nil, errors.Newf(errors.ErrCodeUnknownReevaluation,
					"strategy %s: step %s reevaluates unknown step %s", raw.Name, inst.id, targetID)
			}

			inst.reevaluates = append(inst.reevaluates, target)
		}
	}

	if cycle := findCycle(cfg.steps); cycle != nil {
		return nil, &errors.CycleError{Strategy: raw.Name, Cycle: cycle}
	}

	return cfg, nil
}

// checkConfigKeys rejects config bindings that no config-sourced input reads.
func checkConfigKeys(strategyName string, rawStep RawStepInstance, def *step.Definition) error {
	accepted := make(map[string]struct{})
	for _, key := range def.ConfigKeys() {
		accepted[key] = struct{}{}
	}

	var unknown []string

	for key := range rawStep.ConfigBindings {
		if _, ok := accepted[key]; !ok {
			unknown = append(unknown, key)
		}
	}

	if len(unknown) > 0 {
		sort.Strings(unknown)

		return errors.Newf(errors.ErrCodeStrategyConfigError,
			"strategy %s: step %s has config values not used by step %s: %s",
			strategyName, rawStep.ID, def.ID(), strings.Join(unknown, ", "))
	}

	return nil
}

const (
	unvisited = iota
	visiting
	done
)

// findCycle returns the first reevaluation cycle found, as a path whose first
// id is repeated at the end, or nil when the graph is acyclic.
func findCycle(steps []*StepInstance) []string {
	state := make(map[*StepInstance]int, len(steps))

	var path []*StepInstance

	var visit func(s *StepInstance) []string

	visit = func(s *StepInstance) []string {
		state[s] = visiting

		path = append(path, s)

		for _, next := range s.reevaluates {
			switch state[next] {
			case visiting:
				var cycle []string

				for i := len(path) - 1; i >= 0; i-- {
					if path[i] == next {
						for _, p := range path[i:] {
							cycle = append(cycle, p.id)
						}

						break
					}
				}

				return append(cycle, next.id)
			case unvisited:
				if cycle := visit(next); cycle != nil {
					return cycle
				}
			}
		}

		path = path[:len(path)-1]
		state[s] = done

		return nil
	}

	for _, s := range steps {
		if state[s] == unvisited {
			if cycle := visit(s); cycle != nil {
				return cycle
			}
		}
	}

	return nil
}
