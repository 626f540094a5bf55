package engine

import (
	"slices"

	"github.com/rxtech-lab/argo-steps/internal/execution"
	"github.com/rxtech-lab/argo-steps/internal/step"
	"github.com/rxtech-lab/argo-steps/internal/strategy"
	"github.com/rxtech-lab/argo-steps/internal/types"
	"github.com/rxtech-lab/argo-steps/pkg/errors"
)

// Market keys beyond the bar's own fields.
const (
	MarketKeyBar    = "bar"
	MarketKeyWindow = "window"
	MarketKeyCloses = "closes"
)

// MarketView is the bar being processed and the window of bars up to and
// including it, oldest first.
type MarketView struct {
	Bar    types.MarketData
	Window []types.MarketData
}

// Value looks up a market key.
func (m MarketView) Value(key string) (any, bool) {
	switch key {
	case MarketKeyBar:
		return m.Bar, true
	case MarketKeyWindow:
		return slices.Clone(m.Window), true
	case MarketKeyCloses:
		closes := make([]float64, len(m.Window))
		for i, bar := range m.Window {
			closes[i] = bar.Close
		}

		return closes, true
	default:
		return m.Bar.Field(key)
	}
}

// Resolver computes the keyword arguments of a step instance from the
// execution context, the instance configuration and the current bar.
type Resolver struct{}

// NewResolver creates a Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve builds the arguments for inst. It has no side effects.
func (r *Resolver) Resolve(inst *strategy.StepInstance, ctx *execution.Context, market MarketView) (step.Args, error) {
	def := inst.Definition()
	if def == nil {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "step %s has no definition", inst.ID())
	}

	args := make(step.Args)

	for _, param := range def.Params() {
		binding, _ := def.Input(param)

		switch binding.Source {
		case step.SourceRuntime:
			name := inst.RuntimeName(binding.Key)

			value := ctx.LatestOutput(name)
			if value.IsNone() {
				return nil, &errors.MissingRuntimeValue{StepID: inst.ID(), Param: param, Key: name}
			}

			args[param] = value.Unwrap()
		case step.SourceConfig:
			value, ok := inst.ConfigValue(binding.Key)
			if !ok {
				return nil, &errors.MissingConfigValue{StepID: inst.ID(), Param: param, Key: binding.Key}
			}

			args[param] = value
		case step.SourceMarket:
			value, ok := market.Value(binding.Key)
			if !ok {
				return nil, &errors.MissingRuntimeValue{StepID: inst.ID(), Param: param, Key: binding.Key}
			}

			args[param] = value
		default:
			return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "step %s: unknown source %q", inst.ID(), binding.Source)
		}
	}

	return args, nil
}
