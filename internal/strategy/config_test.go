package strategy

import (
	"testing"

	"github.com/rxtech-lab/argo-steps/internal/step"
	"github.com/rxtech-lab/argo-steps/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type HydrateTestSuite struct {
	suite.Suite
	registry *step.Registry
}

func TestHydrateSuite(t *testing.T) {
	suite.Run(t, new(HydrateTestSuite))
}

func newTestRegistry() *step.Registry {
	loader := step.NewFunctionCatalog()
	noop := step.Func([]string{"value", "period"}, func(step.Args) (step.Outputs, error) {
		return step.Outputs{"result": 1}, nil
	})

	if err := loader.Register("test.noop", noop); err != nil {
		panic(err)
	}

	registry := step.NewRegistry()

	for _, id := range []string{"a", "b", "c"} {
		def, err := step.NewDefinition(id, "test.noop",
			map[string]step.InputBinding{"value": step.Runtime("input"), "period": step.Config("period")},
			map[string]step.OutputBinding{"result": step.As(id + "_out")},
			loader)
		if err != nil {
			panic(err)
		}

		if err := registry.Register(def); err != nil {
			panic(err)
		}
	}

	return registry
}

func (suite *HydrateTestSuite) SetupTest() {
	suite.registry = newTestRegistry()
}

func (suite *HydrateTestSuite) TestHydrate() {
	cfg, err := Hydrate(RawStrategyConfig{
		Name:        "trend_follow",
		Description: "follows the trend",
		Steps: []RawStepInstance{
			{ID: "a", ConfigBindings: map[string]any{"period": 20}, RuntimeBindings: map[string]string{"input": "close"}},
			{ID: "b", Reevaluates: []string{"a"}},
			{ID: "c_slow", Step: "c", Description: "slow copy", Reevaluates: []string{"a", "b"}},
		},
	}, suite.registry)
	suite.Require().NoError(err)

	suite.Equal("trend_follow", cfg.Name())
	suite.Equal("follows the trend", cfg.Description())

	steps := cfg.Steps()
	suite.Require().Len(steps, 3)
	suite.Equal([]string{"a", "b", "c_slow"}, []string{steps[0].ID(), steps[1].ID(), steps[2].ID()})

	a, ok := cfg.Step("a")
	suite.Require().True(ok)
	suite.Same(steps[0], a)
	suite.Equal("close", a.RuntimeName("input"))
	suite.Equal("other", a.RuntimeName("other"))

	period, ok := a.ConfigValue("period")
	suite.True(ok)
	suite.Equal(20, period)

	c, _ := cfg.Step("c_slow")
	suite.Equal("c", c.Definition().ID())
	suite.Equal("slow copy", c.Description())
	suite.Require().Len(c.Reevaluates(), 2)
	suite.Same(a, c.Reevaluates()[0])
	suite.Same(steps[1], c.Reevaluates()[1])

	_, ok = cfg.Step("missing")
	suite.False(ok)
}

func (suite *HydrateTestSuite) TestDefinitionsAreShared() {
	cfg, err := Hydrate(RawStrategyConfig{
		Name:  "shared",
		Steps: []RawStepInstance{{ID: "a"}, {ID: "a2", Step: "a"}},
	}, suite.registry)
	suite.Require().NoError(err)

	steps := cfg.Steps()
	suite.Same(steps[0].Definition(), steps[1].Definition())
}

func (suite *HydrateTestSuite) TestHydrateErrors() {
	tests := []struct {
		name string
		raw  RawStrategyConfig
		code errors.ErrorCode
	}{
		{
			name: "empty name",
			raw:  RawStrategyConfig{Steps: []RawStepInstance{{ID: "a"}}},
			code: errors.ErrCodeStrategyConfigError,
		},
		{
			name: "duplicate id",
			raw:  RawStrategyConfig{Name: "s", Steps: []RawStepInstance{{ID: "a"}, {ID: "a"}}},
			code: errors.ErrCodeDuplicateStep,
		},
		{
			name: "unknown definition",
			raw:  RawStrategyConfig{Name: "s", Steps: []RawStepInstance{{ID: "z"}}},
			code: errors.ErrCodeLoadError,
		},
		{
			name: "unused config key",
			raw:  RawStrategyConfig{Name: "s", Steps: []RawStepInstance{{ID: "a", ConfigBindings: map[string]any{"lookback": 3}}}},
			code: errors.ErrCodeStrategyConfigError,
		},
		{
			name: "dangling reevaluation",
			raw:  RawStrategyConfig{Name: "s", Steps: []RawStepInstance{{ID: "a", Reevaluates: []string{"ghost"}}}},
			code: errors.ErrCodeUnknownReevaluation,
		},
		{
			name: "self cycle",
			raw:  RawStrategyConfig{Name: "s", Steps: []RawStepInstance{{ID: "a", Reevaluates: []string{"a"}}}},
			code: errors.ErrCodeCycleError,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			cfg, err := Hydrate(tc.raw, suite.registry)
			suite.Nil(cfg)
			suite.Require().Error(err)
			suite.Equal(tc.code, errors.GetCode(err))
		})
	}
}

func (suite *HydrateTestSuite) TestCycleRejectedAtHydration() {
	_, err := Hydrate(RawStrategyConfig{
		Name: "loop",
		Steps: []RawStepInstance{
			{ID: "a", Reevaluates: []string{"b"}},
			{ID: "b", Reevaluates: []string{"c"}},
			{ID: "c", Reevaluates: []string{"a"}},
		},
	}, suite.registry)
	suite.Require().Error(err)

	var cycleErr *errors.CycleError
	suite.Require().True(errors.As(err, &cycleErr))
	suite.Equal("loop", cycleErr.Strategy)
	suite.Equal([]string{"a", "b", "c", "a"}, cycleErr.Cycle)
	suite.Contains(err.Error(), "a -> b -> c -> a")
}

func (suite *HydrateTestSuite) TestDiamondIsNotACycle() {
	_, err := Hydrate(RawStrategyConfig{
		Name: "diamond",
		Steps: []RawStepInstance{
			{ID: "a"},
			{ID: "b", Reevaluates: []string{"a"}},
			{ID: "c", Reevaluates: []string{"a", "b"}},
		},
	}, suite.registry)
	suite.NoError(err)
}

func (suite *HydrateTestSuite) TestNilRegistry() {
	_, err := Hydrate(RawStrategyConfig{Name: "s", Steps: []RawStepInstance{{ID: "a"}}}, nil)
	suite.Error(err)
}

func (suite *HydrateTestSuite) TestInstanceAccessorsReturnCopies() {
	cfg, err := Hydrate(RawStrategyConfig{
		Name: "copies",
		Steps: []RawStepInstance{
			{ID: "a", ConfigBindings: map[string]any{"period": 5}, RuntimeBindings: map[string]string{"input": "close"}},
			{ID: "b", Reevaluates: []string{"a"}},
		},
	}, suite.registry)
	suite.Require().NoError(err)

	a, _ := cfg.Step("a")
	a.ConfigBindings()["period"] = 99
	a.RuntimeBindings()["input"] = "open"

	period, _ := a.ConfigValue("period")
	suite.Equal(5, period)
	suite.Equal("close", a.RuntimeName("input"))

	b, _ := cfg.Step("b")
	b.Reevaluates()[0] = nil
	suite.Same(a, b.Reevaluates()[0])

	cfg.Steps()[0] = nil
	suite.NotNil(cfg.Steps()[0])
}
