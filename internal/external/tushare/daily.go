package tushare

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/quantumstock/backend/internal/contracts"
)

// dailyFields matches the columns of the bars table one to one.
const dailyFields = "ts_code,trade_date,open,high,low,close,pre_close,change,pct_chg,vol,amount"

// FetchDailyBars retrieves all instrument bars for one calendar date.
// An empty slice means the date is not a trading day; that is a valid,
// terminal answer and callers must not retry it. Every error return
// (transport, rate limit, malformed payload) is transient from the
// caller's point of view.
func (c *Client) FetchDailyBars(ctx context.Context, date time.Time) ([]contracts.Bar, error) {
	req := request{
		APIName: "daily",
		Token:   c.token,
		Params: map[string]string{
			"trade_date": date.Format("20060102"),
		},
		Fields: dailyFields,
	}

	resp, err := c.httpClient.PostJSON(ctx, c.baseURL, req)
	if err != nil {
		return nil, fmt.Errorf("tushare daily request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tushare daily: unexpected status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tushare daily: read response body failed: %w", err)
	}

	var envelope response
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("tushare daily: decode response failed: %w", err)
	}

	// Nonzero codes cover auth failures and per-minute quota rejections;
	// both are retried the same way by the fetcher.
	if envelope.Code != 0 {
		return nil, fmt.Errorf("tushare daily: provider error %d: %s", envelope.Code, envelope.Msg)
	}

	bars, err := c.parseDailyItems(envelope.Data.Fields, envelope.Data.Items)
	if err != nil {
		return nil, fmt.Errorf("tushare daily: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"trade_date": date.Format("2006-01-02"),
		"count":      len(bars),
	}).Debug("Fetched daily bars")

	return bars, nil
}

// parseDailyItems converts the positional item rows into Bars using the
// field order the provider announced.
func (c *Client) parseDailyItems(fields []string, items [][]interface{}) ([]contracts.Bar, error) {
	idx := make(map[string]int, len(fields))
	for i, f := range fields {
		idx[f] = i
	}

	for _, required := range []string{"ts_code", "trade_date"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("response missing field %q", required)
		}
	}

	bars := make([]contracts.Bar, 0, len(items))
	for _, row := range items {
		code, ok := stringAt(row, idx["ts_code"])
		if !ok {
			continue
		}
		dateStr, ok := stringAt(row, idx["trade_date"])
		if !ok || len(dateStr) != 8 {
			continue
		}
		tradeDate, err := time.Parse("20060102", dateStr)
		if err != nil {
			continue
		}

		// Null numeric values become 0, matching how corrected rows are
		// stored downstream.
		bars = append(bars, contracts.Bar{
			Instrument: code,
			TradeDate:  tradeDate,
			Open:       floatAt(row, idx, "open"),
			High:       floatAt(row, idx, "high"),
			Low:        floatAt(row, idx, "low"),
			Close:      floatAt(row, idx, "close"),
			PrevClose:  floatAt(row, idx, "pre_close"),
			ChangeAmt:  floatAt(row, idx, "change"),
			ChangePct:  floatAt(row, idx, "pct_chg"),
			Volume:     floatAt(row, idx, "vol"),
			Turnover:   floatAt(row, idx, "amount"),
		})
	}

	return bars, nil
}

func stringAt(row []interface{}, i int) (string, bool) {
	if i < 0 || i >= len(row) {
		return "", false
	}
	s, ok := row[i].(string)
	return s, ok
}

func floatAt(row []interface{}, idx map[string]int, field string) float64 {
	i, ok := idx[field]
	if !ok || i >= len(row) {
		return 0
	}
	switch v := row[i].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}
