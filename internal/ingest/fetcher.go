package ingest

import (
	"context"
	"time"

	"github.com/quantumstock/backend/internal/contracts"
	"github.com/quantumstock/backend/pkg/logger"
)

// RetryPolicy controls how the fetcher reacts to provider errors.
// MaxAttempts <= 0 means unbounded: the production policy assumes a human
// operator interrupts the process rather than the loop giving up.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultRetryPolicy is the production policy: retry forever, sleeping a
// fixed 65 seconds between attempts to stay clear of the provider's
// per-minute quota window.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 0,
		Backoff:     65 * time.Second,
	}
}

// Fetcher retrieves one calendar day of bars from the provider, retrying
// any provider error under its policy. An empty result is terminal: it
// means "non-trading day" and is never retried.
type Fetcher struct {
	provider contracts.MarketDataProvider
	policy   RetryPolicy
	logger   *logger.Logger
}

// NewFetcher creates a new Fetcher.
func NewFetcher(provider contracts.MarketDataProvider, policy RetryPolicy, log *logger.Logger) *Fetcher {
	return &Fetcher{
		provider: provider,
		policy:   policy,
		logger:   log.WithField("module", "ingest"),
	}
}

// FetchDay blocks until the provider returns data (possibly empty) for the
// date, the policy's attempt budget runs out, or the context is cancelled.
// Retries are invisible to the caller: the date is not processed until a
// result comes back.
func (f *Fetcher) FetchDay(ctx context.Context, date time.Time) ([]contracts.Bar, error) {
	attempt := 0

	for {
		bars, err := f.provider.FetchDailyBars(ctx, date)
		if err == nil {
			if len(bars) == 0 {
				f.logger.WithField("trade_date", date.Format("2006-01-02")).
					Debug("No data, non-trading day")
			}
			return bars, nil
		}

		attempt++
		if f.policy.MaxAttempts > 0 && attempt >= f.policy.MaxAttempts {
			return nil, err
		}

		f.logger.WithError(err).WithFields(map[string]interface{}{
			"trade_date": date.Format("2006-01-02"),
			"attempt":    attempt,
			"backoff":    f.policy.Backoff,
		}).Warn("Provider fetch failed, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.policy.Backoff):
		}
	}
}
