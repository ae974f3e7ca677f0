package contracts

import (
	"context"
	"errors"
	"time"
)

// ErrCountInvariant signals that a batch's total != inserted + updated.
// This is a logic bug in the counting path, not an environment problem,
// and is logged distinctly from ordinary storage errors.
var ErrCountInvariant = errors.New("batch count invariant violated: total != inserted + updated")

// MarketDataProvider fetches all instrument bars for one calendar date.
// An empty result is a valid, terminal answer meaning "non-trading day".
// Any returned error is treated as transient by the ingestion fetcher.
type MarketDataProvider interface {
	FetchDailyBars(ctx context.Context, date time.Time) ([]Bar, error)
}

// Calendar answers whether a date is a trading day (neither weekend nor
// designated holiday). Implementations must be pure lookups.
type Calendar interface {
	IsTradingDay(d time.Time) bool
}

// TaskLogger appends one audit entry. Fire-and-forget: implementations log
// their own failures and never propagate them to the caller.
type TaskLogger interface {
	LogRun(ctx context.Context, taskName, status, message string)
}
