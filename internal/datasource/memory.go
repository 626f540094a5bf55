package datasource

import (
	"slices"
	"sort"

	"github.com/rxtech-lab/argo-steps/internal/types"
)

// MemorySeries is a PriceSeries over an in-memory slice of bars.
type MemorySeries struct {
	bars []types.MarketData
}

// NewMemorySeries copies bars and sorts them by time.
func NewMemorySeries(bars []types.MarketData) *MemorySeries {
	sorted := slices.Clone(bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	return &MemorySeries{bars: sorted}
}

// ReadAll implements PriceSeries.
func (m *MemorySeries) ReadAll(query Query) func(yield func(types.MarketData, error) bool) {
	return func(yield func(types.MarketData, error) bool) {
		for _, bar := range m.bars {
			if !query.Matches(bar) {
				continue
			}

			if !yield(bar, nil) {
				return
			}
		}
	}
}

// Count implements PriceSeries.
func (m *MemorySeries) Count(query Query) (int, error) {
	count := 0

	for _, bar := range m.bars {
		if query.Matches(bar) {
			count++
		}
	}

	return count, nil
}

// Symbols implements PriceSeries.
func (m *MemorySeries) Symbols() ([]string, error) {
	seen := make(map[string]struct{})

	var symbols []string

	for _, bar := range m.bars {
		if _, ok := seen[bar.Symbol]; ok {
			continue
		}

		seen[bar.Symbol] = struct{}{}
		symbols = append(symbols, bar.Symbol)
	}

	sort.Strings(symbols)

	return symbols, nil
}

// Close implements PriceSeries.
func (m *MemorySeries) Close() error { return nil }
