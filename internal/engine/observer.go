package engine

import (
	"time"

	"github.com/rxtech-lab/argo-steps/internal/execution"
	"github.com/rxtech-lab/argo-steps/internal/types"
)

// Observer is notified of every attempt and every processed bar.
type Observer interface {
	// OnAttempt is called after an attempt has been recorded in the context.
	OnAttempt(strategy string, attempt Attempt, duration time.Duration)
	// OnBar is called once per bar after all steps for it have run.
	OnBar(strategy string, report BarReport)
}

// HistorySink persists recorded attempts.
type HistorySink interface {
	Record(bar types.MarketData, entry execution.HistoryEntry) error
}
