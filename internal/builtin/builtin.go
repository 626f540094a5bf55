// Package builtin provides the technical analysis and risk step functions
// shipped with the engine.
package builtin

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/rxtech-lab/argo-steps/internal/step"
	"github.com/rxtech-lab/argo-steps/internal/types"
)

// Function references registered by Register.
const (
	RefSMA          = "technical.sma"
	RefEMA          = "technical.ema"
	RefRSI          = "technical.rsi"
	RefATR          = "technical.atr"
	RefDetectTrend  = "technical.detect_trend"
	RefBarRange     = "technical.bar_range"
	RefWideRangeBar = "technical.wide_range_bar"
	RefATRStop      = "risk.atr_stop"
	RefPositionSize = "risk.position_size"
)

// Trend labels produced by detect_trend.
const (
	TrendUp   = "UP"
	TrendDown = "DOWN"
	TrendFlat = "FLAT"
)

// Register adds every builtin function to catalog.
func Register(catalog *step.FunctionCatalog) error {
	closes := sampleCloses()
	window := sampleWindow()

	functions := map[string]step.Function{
		RefSMA: step.WithSample(step.ScalarFunc([]string{"closes", "period"}, smaStep),
			step.Args{"closes": closes, "period": 3}),
		RefEMA: step.WithSample(step.ScalarFunc([]string{"closes", "period"}, emaStep),
			step.Args{"closes": closes, "period": 3}),
		RefRSI: step.WithSample(step.ScalarFunc([]string{"closes", "period"}, rsiStep),
			step.Args{"closes": closes, "period": 3}),
		RefATR: step.WithSample(step.ScalarFunc([]string{"window", "period"}, atrStep),
			step.Args{"window": window, "period": 3}),
		RefBarRange: step.WithSample(step.ScalarFunc([]string{"high", "low"}, barRangeStep),
			step.Args{"high": 11.0, "low": 9.0}),
		RefDetectTrend: step.WithSample(step.Func([]string{"closes", "fast_period", "slow_period"}, detectTrendStep),
			step.Args{"closes": closes, "fast_period": 2, "slow_period": 4}),
		RefWideRangeBar: step.WithSample(step.Func([]string{"window", "lookback_bars", "min_size_increase_pct", "comparison_method"}, wideRangeBarStep),
			step.Args{"window": window, "lookback_bars": 5, "min_size_increase_pct": 50.0, "comparison_method": string(ComparisonMax)}),
		RefATRStop: step.WithSample(step.Func([]string{"close", "atr", "multiplier", "side"}, atrStopStep),
			step.Args{"close": 100.0, "atr": 1.5, "multiplier": 2.0, "side": SideLong}),
		RefPositionSize: step.WithSample(step.Func([]string{"equity", "risk_pct", "entry", "stop"}, positionSizeStep),
			step.Args{"equity": 100000.0, "risk_pct": 1.0, "entry": 100.0, "stop": 97.0}),
	}

	for _, ref := range slices.Sorted(maps.Keys(functions)) {
		if err := catalog.Register(ref, functions[ref]); err != nil {
			return fmt.Errorf("failed to register %s: %w", ref, err)
		}
	}

	return nil
}

// NewCatalog returns a function catalog holding every builtin function.
func NewCatalog() (*step.FunctionCatalog, error) {
	catalog := step.NewFunctionCatalog()
	if err := Register(catalog); err != nil {
		return nil, err
	}

	return catalog, nil
}

func sampleCloses() []float64 {
	return []float64{10, 10.5, 10.2, 10.8, 11.1, 10.9, 11.4, 11.8}
}

// sampleWindow is ten quiet bars followed by one upside breakout bar.
func sampleWindow() []types.MarketData {
	start := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	bars := make([]types.MarketData, 0, 11)

	for i := range 10 {
		bars = append(bars, types.MarketData{
			Symbol: "SAMPLE",
			Time:   start.Add(time.Duration(i) * time.Minute),
			Open:   10, High: 11, Low: 9, Close: 10, Volume: 100,
		})
	}

	return append(bars, types.MarketData{
		Symbol: "SAMPLE",
		Time:   start.Add(10 * time.Minute),
		Open:   10.5, High: 14, Low: 10, Close: 13.5, Volume: 400,
	})
}

func closesArg(args step.Args, name string) ([]float64, error) {
	v, ok := args[name]
	if !ok {
		return nil, fmt.Errorf("argument %s is missing", name)
	}

	closes, ok := v.([]float64)
	if !ok {
		return nil, fmt.Errorf("argument %s: expected []float64, got %T", name, v)
	}

	return closes, nil
}

func windowArg(args step.Args, name string) ([]types.MarketData, error) {
	v, ok := args[name]
	if !ok {
		return nil, fmt.Errorf("argument %s is missing", name)
	}

	bars, ok := v.([]types.MarketData)
	if !ok {
		return nil, fmt.Errorf("argument %s: expected []MarketData, got %T", name, v)
	}

	return bars, nil
}

func closesAndPeriod(args step.Args) ([]float64, int, error) {
	closes, err := closesArg(args, "closes")
	if err != nil {
		return nil, 0, err
	}

	period, err := args.Int("period")
	if err != nil {
		return nil, 0, err
	}

	return closes, period, nil
}

func smaStep(args step.Args) (any, error) {
	closes, period, err := closesAndPeriod(args)
	if err != nil {
		return nil, err
	}

	return sma(closes, period)
}

func emaStep(args step.Args) (any, error) {
	closes, period, err := closesAndPeriod(args)
	if err != nil {
		return nil, err
	}

	return ema(closes, period)
}

func rsiStep(args step.Args) (any, error) {
	closes, period, err := closesAndPeriod(args)
	if err != nil {
		return nil, err
	}

	return rsi(closes, period)
}

func atrStep(args step.Args) (any, error) {
	bars, err := windowArg(args, "window")
	if err != nil {
		return nil, err
	}

	period, err := args.Int("period")
	if err != nil {
		return nil, err
	}

	return atr(bars, period)
}

func barRangeStep(args step.Args) (any, error) {
	high, err := args.Float("high")
	if err != nil {
		return nil, err
	}

	low, err := args.Float("low")
	if err != nil {
		return nil, err
	}

	return high - low, nil
}

func detectTrendStep(args step.Args) (step.Outputs, error) {
	closes, err := closesArg(args, "closes")
	if err != nil {
		return nil, err
	}

	fastPeriod, err := args.Int("fast_period")
	if err != nil {
		return nil, err
	}

	slowPeriod, err := args.Int("slow_period")
	if err != nil {
		return nil, err
	}

	if fastPeriod >= slowPeriod {
		return nil, fmt.Errorf("fast_period (%d) must be shorter than slow_period (%d)", fastPeriod, slowPeriod)
	}

	fast, err := sma(closes, fastPeriod)
	if err != nil {
		return nil, err
	}

	slow, err := sma(closes, slowPeriod)
	if err != nil {
		return nil, err
	}

	trend := TrendFlat

	switch {
	case fast > slow:
		trend = TrendUp
	case fast < slow:
		trend = TrendDown
	}

	return step.Outputs{
		"trend":   trend,
		"fast_ma": fast,
		"slow_ma": slow,
	}, nil
}

func wideRangeBarStep(args step.Args) (step.Outputs, error) {
	bars, err := windowArg(args, "window")
	if err != nil {
		return nil, err
	}

	lookback, err := args.Int("lookback_bars")
	if err != nil {
		return nil, err
	}

	minIncrease, err := args.Float("min_size_increase_pct")
	if err != nil {
		return nil, err
	}

	method, err := args.StringOr("comparison_method", string(ComparisonMax))
	if err != nil {
		return nil, err
	}

	wrb, err := detectWideRangeBar(bars, lookback, minIncrease, ComparisonMethod(method))
	if err != nil {
		return nil, err
	}

	return step.Outputs{
		"is_wide_range":     wrb.IsWideRange,
		"size_increase_pct": wrb.SizeIncreasePct,
		"series_length":     wrb.SeriesLength,
	}, nil
}

func atrStopStep(args step.Args) (step.Outputs, error) {
	values := make(map[string]float64, 3)

	for _, name := range []string{"close", "atr", "multiplier"} {
		v, err := args.Float(name)
		if err != nil {
			return nil, err
		}

		values[name] = v
	}

	side, err := args.StringOr("side", SideLong)
	if err != nil {
		return nil, err
	}

	stop, err := atrStop(values["close"], values["atr"], values["multiplier"], side)
	if err != nil {
		return nil, err
	}

	return step.Outputs{"stop": stop.InexactFloat64()}, nil
}

func positionSizeStep(args step.Args) (step.Outputs, error) {
	values := make(map[string]float64, 4)

	for _, name := range []string{"equity", "risk_pct", "entry", "stop"} {
		v, err := args.Float(name)
		if err != nil {
			return nil, err
		}

		values[name] = v
	}

	size, err := positionSize(values["equity"], values["risk_pct"], values["entry"], values["stop"], 0)
	if err != nil {
		return nil, err
	}

	return step.Outputs{
		"quantity":      size.Quantity.InexactFloat64(),
		"risk_amount":   size.RiskAmount.InexactFloat64(),
		"risk_per_unit": size.RiskPerUnit.InexactFloat64(),
	}, nil
}
