package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-steps/internal/datasource"
	"github.com/rxtech-lab/argo-steps/internal/execution"
	"github.com/rxtech-lab/argo-steps/internal/logger"
	"github.com/rxtech-lab/argo-steps/internal/types"
	"github.com/rxtech-lab/argo-steps/pkg/errors"
	"go.uber.org/zap"
)

// OnSymbolStartCallback is called before the first bar of a symbol is processed.
// runID identifies the execution context created for the symbol.
type OnSymbolStartCallback func(runID string, symbol string, totalBars int) error

// OnBarCallback is called after each bar has been processed.
type OnBarCallback func(symbol string, current int, total int, report BarReport) error

// OnSymbolEndCallback is called after the last bar of a symbol.
type OnSymbolEndCallback func(run SymbolRun)

// BatchCallbacks holds the optional lifecycle callbacks of a batch run.
// Callbacks returning an error abort the run.
type BatchCallbacks struct {
	OnSymbolStart optional.Option[OnSymbolStartCallback]
	OnBar         optional.Option[OnBarCallback]
	OnSymbolEnd   optional.Option[OnSymbolEndCallback]
}

// SymbolRun summarizes the batch run of one symbol.
type SymbolRun struct {
	RunID   string
	Symbol  string
	Context *execution.Context
	Bars    int
	Halts   int
}

// window keeps the most recent bars, oldest first. A size of 0 keeps every bar.
type window struct {
	size int
	bars []types.MarketData
}

func (w *window) push(bar types.MarketData) []types.MarketData {
	w.bars = append(w.bars, bar)
	if w.size > 0 && len(w.bars) > w.size {
		w.bars = w.bars[len(w.bars)-w.size:]
	}

	return w.bars
}

func (w *window) last() (types.MarketData, bool) {
	if len(w.bars) == 0 {
		return types.MarketData{}, false
	}

	return w.bars[len(w.bars)-1], true
}

// Batch runs a strategy over a full price series. Every symbol gets its own
// execution context.
type Batch struct {
	runner     *Runner
	series     datasource.PriceSeries
	windowSize int
	log        *logger.Logger
}

// NewBatch creates a batch driver. windowSize bounds the bars exposed to
// steps through the market source; 0 exposes the whole history.
func NewBatch(runner *Runner, series datasource.PriceSeries, windowSize int, log *logger.Logger) *Batch {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Batch{
		runner:     runner,
		series:     series,
		windowSize: windowSize,
		log:        log,
	}
}

// Run processes every bar matching query. ctx is checked between bars only.
func (b *Batch) Run(ctx context.Context, query datasource.Query, callbacks BatchCallbacks) ([]SymbolRun, error) {
	if b.runner == nil || b.series == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "batch needs a runner and a price series")
	}

	var symbols []string

	if query.Symbol.IsSome() {
		symbols = []string{query.Symbol.Unwrap()}
	} else {
		all, err := b.series.Symbols()
		if err != nil {
			return nil, fmt.Errorf("failed to list symbols: %w", err)
		}

		symbols = all
	}

	runs := make([]SymbolRun, 0, len(symbols))

	for _, symbol := range symbols {
		symbolQuery := query
		symbolQuery.Symbol = optional.Some(symbol)

		run, err := b.runSymbol(ctx, symbolQuery, callbacks)
		if err != nil {
			return runs, err
		}

		runs = append(runs, run)
	}

	return runs, nil
}

func (b *Batch) runSymbol(ctx context.Context, query datasource.Query, callbacks BatchCallbacks) (SymbolRun, error) {
	symbol := query.Symbol.Unwrap()

	total, err := b.series.Count(query)
	if err != nil {
		return SymbolRun{}, fmt.Errorf("failed to count bars for %s: %w", symbol, err)
	}

	run := SymbolRun{
		RunID:   uuid.New().String(),
		Symbol:  symbol,
		Context: execution.NewContext(),
		Bars:    0,
		Halts:   0,
	}

	b.log.Info("Running strategy",
		zap.String("strategy", b.runner.Strategy().Name()),
		zap.String("symbol", symbol),
		zap.String("run_id", run.RunID),
		zap.Int("bars", total),
	)

	if callbacks.OnSymbolStart.IsSome() {
		if err := callbacks.OnSymbolStart.Unwrap()(run.RunID, symbol, total); err != nil {
			return run, err
		}
	}

	win := &window{size: b.windowSize, bars: nil}

	for bar, err := range b.series.ReadAll(query) {
		if err != nil {
			return run, fmt.Errorf("failed to read bars for %s: %w", symbol, err)
		}

		if err := ctx.Err(); err != nil {
			return run, err
		}

		report, err := b.runner.RunBar(run.Context, bar, win.push(bar))
		if err != nil {
			return run, err
		}

		run.Bars++

		if report.Halted() {
			run.Halts++
		}

		if callbacks.OnBar.IsSome() {
			if err := callbacks.OnBar.Unwrap()(symbol, run.Bars, total, report); err != nil {
				return run, err
			}
		}
	}

	if callbacks.OnSymbolEnd.IsSome() {
		callbacks.OnSymbolEnd.Unwrap()(run)
	}

	return run, nil
}

// Live feeds bars one at a time into a single long-lived execution context.
type Live struct {
	runner  *Runner
	runID   string
	context *execution.Context
	window  *window
	symbol  optional.Option[string]
}

// NewLive creates a live driver with a fresh execution context.
func NewLive(runner *Runner, windowSize int) *Live {
	return &Live{
		runner:  runner,
		runID:   uuid.New().String(),
		context: execution.NewContext(),
		window:  &window{size: windowSize, bars: nil},
		symbol:  optional.None[string](),
	}
}

// RunID identifies the live session.
func (l *Live) RunID() string { return l.runID }

// Context returns the execution context shared by every bar.
func (l *Live) Context() *execution.Context { return l.context }

// OnBar runs the strategy for bar. Bars must belong to one symbol and arrive
// in time order.
func (l *Live) OnBar(bar types.MarketData) (BarReport, error) {
	if l.symbol.IsSome() && l.symbol.Unwrap() != bar.Symbol {
		return BarReport{}, errors.Newf(errors.ErrCodeInvalidParameter,
			"live session %s is bound to %s, got bar for %s", l.runID, l.symbol.Unwrap(), bar.Symbol)
	}

	if last, ok := l.window.last(); ok && bar.Time.Before(last.Time) {
		return BarReport{}, errors.Newf(errors.ErrCodeInvalidParameter,
			"bar at %s is older than the previous bar at %s", bar.Time, last.Time)
	}

	l.symbol = optional.Some(bar.Symbol)

	return l.runner.RunBar(l.context, bar, l.window.push(bar))
}
