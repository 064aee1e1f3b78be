package ports

import (
	"context"
	"time"

	"github.com/recipe-app/healthcare-backend/internal/core/domain"
)

// Reporter receives the human-facing notices of an import run: one per row
// and one final summary.
type Reporter interface {
	Success(msg string)
	Warning(msg string)
	Error(msg string)
}

// ImportMetrics records import outcomes. Implementations must tolerate being
// called once per row.
type ImportMetrics interface {
	ObserveRow(outcome domain.RowOutcome)
	ObserveRun(phase domain.ImportPhase, created int, elapsed time.Duration)
}

// RunLock guards against two imports running at the same time. Acquire
// returns false when another holder owns the lock.
type RunLock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// ImportService imports specializations from a CSV file.
type ImportService interface {
	Import(ctx context.Context, path string) (*domain.ImportSummary, error)
}
