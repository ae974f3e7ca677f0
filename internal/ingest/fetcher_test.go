package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumstock/backend/internal/contracts"
	"github.com/quantumstock/backend/pkg/logger"
)

// fakeProvider fails a fixed number of times before answering.
type fakeProvider struct {
	failures int
	calls    int
	bars     []contracts.Bar
}

func (p *fakeProvider) FetchDailyBars(ctx context.Context, date time.Time) ([]contracts.Bar, error) {
	p.calls++
	if p.calls <= p.failures {
		return nil, errors.New("rate limited")
	}
	return p.bars, nil
}

func testBars(n int) []contracts.Bar {
	bars := make([]contracts.Bar, n)
	for i := range bars {
		bars[i] = contracts.Bar{
			Instrument: "000001.SZ",
			TradeDate:  time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
			Close:      10,
		}
	}
	return bars
}

func TestFetchDayRetriesUntilSuccess(t *testing.T) {
	provider := &fakeProvider{failures: 2, bars: testBars(3)}
	fetcher := NewFetcher(provider, RetryPolicy{MaxAttempts: 0, Backoff: 0}, logger.NewNop())

	bars, err := fetcher.FetchDay(context.Background(), time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, bars, 3)
	assert.Equal(t, 3, provider.calls, "two failures then one success")
}

func TestFetchDayEmptyIsTerminal(t *testing.T) {
	provider := &fakeProvider{bars: nil}
	fetcher := NewFetcher(provider, RetryPolicy{MaxAttempts: 0, Backoff: 0}, logger.NewNop())

	bars, err := fetcher.FetchDay(context.Background(), time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, bars)
	assert.Equal(t, 1, provider.calls, "a non-trading day must not be retried")
}

func TestFetchDayBoundedAttempts(t *testing.T) {
	provider := &fakeProvider{failures: 100}
	fetcher := NewFetcher(provider, RetryPolicy{MaxAttempts: 3, Backoff: 0}, logger.NewNop())

	_, err := fetcher.FetchDay(context.Background(), time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.Equal(t, 3, provider.calls)
}

func TestFetchDayContextCancel(t *testing.T) {
	provider := &fakeProvider{failures: 100}
	fetcher := NewFetcher(provider, RetryPolicy{MaxAttempts: 0, Backoff: time.Hour}, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := fetcher.FetchDay(ctx, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC))
	require.ErrorIs(t, err, context.Canceled)
}

func TestDefaultRetryPolicy(t *testing.T) {
	policy := DefaultRetryPolicy()
	assert.Equal(t, 0, policy.MaxAttempts, "unbounded")
	assert.Equal(t, 65*time.Second, policy.Backoff)
}
