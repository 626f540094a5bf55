package datasource

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-steps/internal/types"
)

// Query narrows a read to one symbol and an inclusive time range. Zero value reads everything.
type Query struct {
	Symbol optional.Option[string]
	Start  optional.Option[time.Time]
	End    optional.Option[time.Time]
}

// Matches reports whether bar falls inside the query.
func (q Query) Matches(bar types.MarketData) bool {
	if q.Symbol.IsSome() && bar.Symbol != q.Symbol.Unwrap() {
		return false
	}

	if q.Start.IsSome() && bar.Time.Before(q.Start.Unwrap()) {
		return false
	}

	if q.End.IsSome() && bar.Time.After(q.End.Unwrap()) {
		return false
	}

	return true
}

// PriceSeries yields bars in ascending time order.
type PriceSeries interface {
	// ReadAll yields every bar matching query, oldest first.
	ReadAll(query Query) func(yield func(types.MarketData, error) bool)
	// Count returns the number of bars matching query.
	Count(query Query) (int, error)
	// Symbols returns the distinct symbols in the series, sorted.
	Symbols() ([]string, error)
	// Close releases any resources held by the series.
	Close() error
}
