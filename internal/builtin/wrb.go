package builtin

import (
	"github.com/rxtech-lab/argo-steps/internal/types"
	"github.com/rxtech-lab/argo-steps/pkg/errors"
)

// ComparisonMethod selects how the lookback bar ranges are reduced to the
// reference size a wide range bar is measured against.
type ComparisonMethod string

const (
	ComparisonMax ComparisonMethod = "max"
	ComparisonAvg ComparisonMethod = "avg"
)

// WideRangeBar is the outcome of a wide range bar check on the latest bar.
type WideRangeBar struct {
	IsWideRange     bool
	SizeIncreasePct float64
	SeriesLength    int
}

func directional(curr, prev types.MarketData) bool {
	up := curr.High > prev.High && curr.Low > prev.Low && curr.Close > prev.High
	down := curr.Low < prev.Low && curr.High < prev.High && curr.Close < prev.Low

	return up != down
}

// wrbSeries returns the index of the first bar of the directional series
// ending at the last bar, and the high-low range the series spans. The
// series is empty when the last bar is not directional against the one
// before it.
func wrbSeries(bars []types.MarketData) (int, float64, bool) {
	last := len(bars) - 1
	start := last + 1

	for pos := last; pos > 0; pos-- {
		if !directional(bars[pos], bars[pos-1]) {
			break
		}

		start = pos
	}

	if start > last {
		return 0, 0, false
	}

	high := bars[start].High
	low := bars[start].Low

	for _, bar := range bars[start+1:] {
		high = max(high, bar.High)
		low = min(low, bar.Low)
	}

	return start, high - low, true
}

// detectWideRangeBar checks whether the directional series ending at the
// latest bar is at least minIncreasePct percent wider than the lookback bars
// preceding it.
func detectWideRangeBar(bars []types.MarketData, lookback int, minIncreasePct float64, method ComparisonMethod) (WideRangeBar, error) {
	if lookback <= 0 {
		return WideRangeBar{}, errors.Newf(errors.ErrCodeInvalidPeriod, "lookback_bars must be a positive integer, got %d", lookback)
	}

	if method != ComparisonMax && method != ComparisonAvg {
		return WideRangeBar{}, errors.Newf(errors.ErrCodeInvalidParameter, "unknown comparison method %q", method)
	}

	if len(bars) < lookback+1 {
		return WideRangeBar{}, errors.NewInsufficientDataErrorf(lookback+1, len(bars), symbolOf(bars),
			"not enough bars for the lookback period: need %d, have %d", lookback+1, len(bars))
	}

	start, seriesRange, ok := wrbSeries(bars)
	if !ok {
		return WideRangeBar{IsWideRange: false, SizeIncreasePct: 0, SeriesLength: 0}, nil
	}

	if start < lookback {
		return WideRangeBar{}, errors.NewInsufficientDataErrorf(start+lookback+1, len(bars), symbolOf(bars),
			"not enough bars before the wide range series: need %d, have %d", lookback, start)
	}

	reference := 0.0

	for _, bar := range bars[start-lookback : start] {
		switch method {
		case ComparisonMax:
			reference = max(reference, bar.Range())
		case ComparisonAvg:
			reference += bar.Range() / float64(lookback)
		}
	}

	if reference == 0 {
		return WideRangeBar{}, errors.New(errors.ErrCodeInvalidParameter, "cannot calculate size increase: reference bar size is zero")
	}

	increase := (seriesRange/reference - 1) * 100

	return WideRangeBar{
		IsWideRange:     increase >= minIncreasePct,
		SizeIncreasePct: increase,
		SeriesLength:    len(bars) - start,
	}, nil
}
