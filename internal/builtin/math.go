package builtin

import (
	"math"

	"github.com/rxtech-lab/argo-steps/internal/types"
	"github.com/rxtech-lab/argo-steps/pkg/errors"
)

func requirePeriod(period int) error {
	if period <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	return nil
}

// sma averages the last period values.
func sma(values []float64, period int) (float64, error) {
	if err := requirePeriod(period); err != nil {
		return 0, err
	}

	if len(values) < period {
		return 0, errors.NewInsufficientDataErrorf(period, len(values), "",
			"insufficient data for SMA: need %d values, have %d", period, len(values))
	}

	sum := 0.0
	for _, v := range values[len(values)-period:] {
		sum += v
	}

	return sum / float64(period), nil
}

// ema seeds with the SMA of the first period values and then applies
// alpha = 2/(period+1) over the rest, like pandas ewm(span=period, adjust=False).
func ema(values []float64, period int) (float64, error) {
	if err := requirePeriod(period); err != nil {
		return 0, err
	}

	if len(values) < period {
		return 0, errors.NewInsufficientDataErrorf(period, len(values), "",
			"insufficient data for EMA: need %d values, have %d", period, len(values))
	}

	seed := 0.0
	for _, v := range values[:period] {
		seed += v
	}

	seed /= float64(period)

	alpha := 2.0 / float64(period+1)

	result := seed
	for _, v := range values[period:] {
		result = v*alpha + result*(1-alpha)
	}

	return result, nil
}

// rsi uses Wilder's smoothing over period+1 or more closes.
func rsi(closes []float64, period int) (float64, error) {
	if err := requirePeriod(period); err != nil {
		return 0, err
	}

	if len(closes) < period+1 {
		return 0, errors.NewInsufficientDataErrorf(period+1, len(closes), "",
			"insufficient data for RSI: need %d closes, have %d", period+1, len(closes))
	}

	gains := make([]float64, 0, len(closes)-1)
	losses := make([]float64, 0, len(closes)-1)

	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains = append(gains, change)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -change)
		}
	}

	avgGain := 0.0
	avgLoss := 0.0

	for i := range period {
		avgGain += gains[i]
		avgLoss += losses[i]
	}

	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period; i < len(gains); i++ {
		avgGain = (avgGain*float64(period-1) + gains[i]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i]) / float64(period)
	}

	if avgLoss == 0 {
		return 100, nil
	}

	rs := avgGain / avgLoss

	return 100 - (100 / (1 + rs)), nil
}

// trueRanges returns one true range per bar after the first.
func trueRanges(bars []types.MarketData) []float64 {
	if len(bars) < 2 {
		return nil
	}

	ranges := make([]float64, 0, len(bars)-1)

	for i := 1; i < len(bars); i++ {
		prevClose := bars[i-1].Close
		ranges = append(ranges, math.Max(
			bars[i].Range(),
			math.Max(math.Abs(bars[i].High-prevClose), math.Abs(bars[i].Low-prevClose)),
		))
	}

	return ranges
}

// atr is the EMA of the true ranges in bars.
func atr(bars []types.MarketData, period int) (float64, error) {
	if err := requirePeriod(period); err != nil {
		return 0, err
	}

	ranges := trueRanges(bars)
	if len(ranges) < period {
		return 0, errors.NewInsufficientDataErrorf(period+1, len(bars), symbolOf(bars),
			"insufficient data for ATR: need %d bars, have %d", period+1, len(bars))
	}

	return ema(ranges, period)
}

func symbolOf(bars []types.MarketData) string {
	if len(bars) == 0 {
		return ""
	}

	return bars[len(bars)-1].Symbol
}
