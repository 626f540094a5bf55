package builtin

import (
	"github.com/rxtech-lab/argo-steps/pkg/errors"
	"github.com/shopspring/decimal"
)

// Position sides accepted by atr_stop.
const (
	SideLong  = "long"
	SideShort = "short"
)

// atrStop places the stop multiplier ATRs away from close, below it for long
// positions and above it for short ones.
func atrStop(closePrice, atr, multiplier float64, side string) (decimal.Decimal, error) {
	if atr < 0 || multiplier <= 0 {
		return decimal.Zero, errors.Newf(errors.ErrCodeInvalidParameter,
			"atr must be non-negative and multiplier positive, got atr=%v multiplier=%v", atr, multiplier)
	}

	distance := decimal.NewFromFloat(atr).Mul(decimal.NewFromFloat(multiplier))
	price := decimal.NewFromFloat(closePrice)

	switch side {
	case SideLong:
		return price.Sub(distance), nil
	case SideShort:
		return price.Add(distance), nil
	default:
		return decimal.Zero, errors.Newf(errors.ErrCodeInvalidParameter, "side must be %s or %s, got %q", SideLong, SideShort, side)
	}
}

// PositionSize is the quantity that risks riskPct percent of equity between
// entry and stop.
type PositionSize struct {
	Quantity    decimal.Decimal
	RiskAmount  decimal.Decimal
	RiskPerUnit decimal.Decimal
}

// positionSize rounds the quantity down to precision decimal places.
func positionSize(equity, riskPct, entry, stop float64, precision int32) (PositionSize, error) {
	if equity <= 0 {
		return PositionSize{}, errors.Newf(errors.ErrCodeInvalidParameter, "equity must be positive, got %v", equity)
	}

	if riskPct <= 0 || riskPct > 100 {
		return PositionSize{}, errors.Newf(errors.ErrCodeInvalidParameter, "risk_pct must be in (0, 100], got %v", riskPct)
	}

	perUnit := decimal.NewFromFloat(entry).Sub(decimal.NewFromFloat(stop)).Abs()
	if perUnit.IsZero() {
		return PositionSize{}, errors.New(errors.ErrCodeInvalidParameter, "entry and stop must differ")
	}

	riskAmount := decimal.NewFromFloat(equity).Mul(decimal.NewFromFloat(riskPct)).Div(decimal.NewFromInt(100))

	return PositionSize{
		Quantity:    riskAmount.Div(perUnit).RoundDown(precision),
		RiskAmount:  riskAmount,
		RiskPerUnit: perUnit,
	}, nil
}
