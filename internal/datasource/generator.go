package datasource

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-steps/internal/types"
)

// GeneratorConfig configures synthetic bar generation.
type GeneratorConfig struct {
	// Symbol is the symbol stamped on every bar.
	Symbol string `yaml:"symbol" json:"symbol" validate:"required"`
	// Start is the time of the first bar.
	Start time.Time `yaml:"start" json:"start"`
	// Interval is the spacing between bars.
	Interval time.Duration `yaml:"interval" json:"interval" validate:"gt=0"`
	// Count is the number of bars.
	Count int `yaml:"count" json:"count" validate:"gte=0"`
	// InitialPrice is the open of the first bar.
	InitialPrice float64 `yaml:"initial_price" json:"initial_price" validate:"gt=0"`
	// Volatility is the standard deviation of the per-bar return.
	Volatility float64 `yaml:"volatility" json:"volatility" validate:"gte=0"`
	// Trend is the total drift spread across the series.
	Trend float64 `yaml:"trend" json:"trend"`
	// VolumeBase is the average volume per bar.
	VolumeBase float64 `yaml:"volume_base" json:"volume_base" validate:"gte=0"`
	// VolumeVariance is the relative volume spread, 0 to 1.
	VolumeVariance float64 `yaml:"volume_variance" json:"volume_variance" validate:"gte=0,lte=1"`
}

// DefaultGeneratorConfig returns one trading day of one-minute bars.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:         "TEST",
		Start:          time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC),
		Interval:       time.Minute,
		Count:          390,
		InitialPrice:   100.0,
		Volatility:     0.002,
		Trend:          0.0,
		VolumeBase:     10000,
		VolumeVariance: 0.3,
	}
}

// Generator produces reproducible synthetic bars following a geometric
// Brownian motion.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator. Equal seeds produce equal series.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		//nolint:gosec // synthetic data, not security sensitive
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Generate returns config.Count bars in time order.
func (g *Generator) Generate(config GeneratorConfig) []types.MarketData {
	bars := make([]types.MarketData, 0, config.Count)
	price := config.InitialPrice
	current := config.Start

	drift := 0.0
	if config.Count > 0 {
		drift = config.Trend / float64(config.Count)
	}

	for range config.Count {
		open := price

		// Box-Muller
		u1 := 1 - g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		closePrice := open * (1 + config.Volatility*z + drift)
		if closePrice <= 0 {
			closePrice = open * 0.99
		}

		high := math.Max(open, closePrice) + g.rng.Float64()*config.Volatility*open*0.5
		low := math.Min(open, closePrice) - g.rng.Float64()*config.Volatility*open*0.5

		if low <= 0 {
			low = math.Min(open, closePrice) * 0.99
		}

		volume := config.VolumeBase * (1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance)

		bars = append(bars, types.MarketData{
			Id:     "",
			Symbol: config.Symbol,
			Time:   current,
			Open:   round(open, 4),
			High:   round(high, 4),
			Low:    round(low, 4),
			Close:  round(closePrice, 4),
			Volume: round(volume, 2),
		})

		price = closePrice
		current = current.Add(config.Interval)
	}

	return bars
}

// GenerateSymbols generates one series per symbol, varying the starting price
// and volatility slightly between symbols.
func (g *Generator) GenerateSymbols(symbols []string, base GeneratorConfig) []types.MarketData {
	var bars []types.MarketData

	for _, symbol := range symbols {
		config := base
		config.Symbol = symbol
		config.InitialPrice = base.InitialPrice * (0.8 + g.rng.Float64()*0.4)
		config.Volatility = base.Volatility * (0.8 + g.rng.Float64()*0.4)

		bars = append(bars, g.Generate(config)...)
	}

	return bars
}

func round(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))

	return math.Round(val*pow) / pow
}
