package types

import "time"

// MarketData is one bar of price data for a symbol.
type MarketData struct {
	Id     string    `json:"id" yaml:"id" csv:"id"`
	Symbol string    `json:"symbol" yaml:"symbol" csv:"symbol"`
	Time   time.Time `json:"time" yaml:"time" csv:"time"`
	Open   float64   `json:"open" yaml:"open" csv:"open"`
	High   float64   `json:"high" yaml:"high" csv:"high"`
	Low    float64   `json:"low" yaml:"low" csv:"low"`
	Close  float64   `json:"close" yaml:"close" csv:"close"`
	Volume float64   `json:"volume" yaml:"volume" csv:"volume"`
}

// Field returns a named field of the bar. The second return value is false
// for unknown names.
func (m MarketData) Field(name string) (any, bool) {
	switch name {
	case "time":
		return m.Time, true
	case "symbol":
		return m.Symbol, true
	case "open":
		return m.Open, true
	case "high":
		return m.High, true
	case "low":
		return m.Low, true
	case "close":
		return m.Close, true
	case "volume":
		return m.Volume, true
	default:
		return nil, false
	}
}

// Range returns the high-low range of the bar.
func (m MarketData) Range() float64 {
	return m.High - m.Low
}
