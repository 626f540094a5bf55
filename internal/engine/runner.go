package engine

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-steps/internal/execution"
	"github.com/rxtech-lab/argo-steps/internal/logger"
	"github.com/rxtech-lab/argo-steps/internal/strategy"
	"github.com/rxtech-lab/argo-steps/internal/types"
	"github.com/rxtech-lab/argo-steps/pkg/errors"
	"go.uber.org/zap"
)

// Attempt is one step execution within a bar. Depth is 0 for top-level steps
// and grows by one per reevaluation level.
type Attempt struct {
	Step   *strategy.StepInstance
	Result execution.StepEvaluationResult
	Depth  int
}

// BarReport is the outcome of running one bar.
type BarReport struct {
	Context  *execution.Context
	Bar      types.MarketData
	Attempts []Attempt
	// HaltedAt is the top-level step whose failure stopped the bar.
	HaltedAt optional.Option[string]
}

// Halted reports whether a top-level failure stopped the bar early.
func (r BarReport) Halted() bool { return r.HaltedAt.IsSome() }

// Runner executes the steps of one strategy, bar by bar.
type Runner struct {
	config   *strategy.StrategyConfig
	resolver *Resolver
	log      *logger.Logger
	observer optional.Option[Observer]
	sink     optional.Option[HistorySink]
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the runner logger. The default discards everything.
func WithLogger(log *logger.Logger) RunnerOption {
	return func(r *Runner) {
		if log != nil {
			r.log = log
		}
	}
}

// WithObserver registers an observer for attempts and bars.
func WithObserver(observer Observer) RunnerOption {
	return func(r *Runner) {
		if observer != nil {
			r.observer = optional.Some(observer)
		}
	}
}

// WithHistorySink registers a sink that receives every recorded attempt.
func WithHistorySink(sink HistorySink) RunnerOption {
	return func(r *Runner) {
		if sink != nil {
			r.sink = optional.Some(sink)
		}
	}
}

// NewRunner creates a runner for config.
func NewRunner(config *strategy.StrategyConfig, opts ...RunnerOption) (*Runner, error) {
	if config == nil {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "strategy config is nil")
	}

	r := &Runner{
		config:   config,
		resolver: NewResolver(),
		log:      logger.NewNopLogger(),
		observer: optional.None[Observer](),
		sink:     optional.None[HistorySink](),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Strategy returns the strategy the runner executes.
func (r *Runner) Strategy() *strategy.StrategyConfig { return r.config }

// RunBar runs every step of the strategy, in declared order, against bar.
// window holds the bars up to and including bar. A step failure halts the
// remaining top-level steps for this bar; an OutputCollisionError or a sink
// error is returned to the caller.
func (r *Runner) RunBar(ctx *execution.Context, bar types.MarketData, window []types.MarketData) (BarReport, error) {
	if ctx == nil {
		return BarReport{}, errors.New(errors.ErrCodeInvalidParameter, "execution context is nil")
	}

	market := MarketView{Bar: bar, Window: window}
	report := BarReport{
		Context:  ctx,
		Bar:      bar,
		Attempts: nil,
		HaltedAt: optional.None[string](),
	}

	for _, inst := range r.config.Steps() {
		ok, err := r.execute(ctx, inst, market, 0, &report)
		if err != nil {
			return report, err
		}

		if !ok {
			report.HaltedAt = optional.Some(inst.ID())

			r.log.Warn("Halting bar after step failure",
				zap.String("strategy", r.config.Name()),
				zap.String("step", inst.ID()),
				zap.Time("bar", bar.Time),
			)

			break
		}
	}

	if r.observer.IsSome() {
		r.observer.Unwrap().OnBar(r.config.Name(), report)
	}

	return report, nil
}

// execute runs inst, records the attempt and, on success, runs its
// reevaluation targets against the same bar. It reports whether inst succeeded.
func (r *Runner) execute(ctx *execution.Context, inst *strategy.StepInstance, market MarketView, depth int, report *BarReport) (bool, error) {
	start := time.Now()
	result := r.invoke(ctx, inst, market)
	duration := time.Since(start)

	if err := ctx.AddResult(market.Bar.Time, inst, result); err != nil {
		r.log.Error("Failed to record step result",
			zap.String("strategy", r.config.Name()),
			zap.String("step", inst.ID()),
			zap.Time("bar", market.Bar.Time),
			zap.Error(err),
		)

		return false, err
	}

	attempt := Attempt{Step: inst, Result: result, Depth: depth}
	report.Attempts = append(report.Attempts, attempt)

	if result.IsSuccess() {
		r.log.Debug("Step succeeded",
			zap.String("strategy", r.config.Name()),
			zap.String("step", inst.ID()),
			zap.Int("depth", depth),
			zap.Duration("duration", duration),
		)
	} else {
		r.log.Warn("Step failed",
			zap.String("strategy", r.config.Name()),
			zap.String("step", inst.ID()),
			zap.Int("depth", depth),
			zap.String("message", result.Message()),
		)
	}

	if r.observer.IsSome() {
		r.observer.Unwrap().OnAttempt(r.config.Name(), attempt, duration)
	}

	if r.sink.IsSome() {
		entry, _ := ctx.Last()
		if err := r.sink.Unwrap().Record(market.Bar, entry); err != nil {
			return false, fmt.Errorf("failed to persist attempt of step %s: %w", inst.ID(), err)
		}
	}

	if !result.IsSuccess() {
		return false, nil
	}

	for _, target := range inst.Reevaluates() {
		// A failed reevaluation is recorded but does not stop the bar.
		if _, err := r.execute(ctx, target, market, depth+1, report); err != nil {
			return false, err
		}
	}

	return true, nil
}

// invoke resolves the arguments of inst and calls its function. Errors and
// panics become failed results.
func (r *Runner) invoke(ctx *execution.Context, inst *strategy.StepInstance, market MarketView) (result execution.StepEvaluationResult) {
	ts := optional.Some(market.Bar.Time)

	defer func() {
		if rec := recover(); rec != nil {
			err := errors.Newf(errors.ErrCodeStepPanicked, "step %s panicked: %v", inst.ID(), rec)
			result = execution.Failure(ts, err.Error(), err).WithStack(string(debug.Stack()))
		}
	}()

	args, err := r.resolver.Resolve(inst, ctx, market)
	if err != nil {
		return execution.Failure(ts, err.Error(), err)
	}

	outputs, err := inst.Definition().Invoke(args)
	if err != nil {
		wrapped := errors.Wrapf(errors.ErrCodeStepFailed, err, "step %s failed", inst.ID())

		return execution.Failure(ts, wrapped.Error(), wrapped)
	}

	return execution.Success(ts, outputs)
}
