package contracts

import "time"

// Bar is one instrument's OHLCV snapshot for one trading date.
// Uniquely identified by (Instrument, TradeDate); value columns may be
// corrected later via upsert, identity columns never change.
type Bar struct {
	Instrument string    `json:"instrument"`
	TradeDate  time.Time `json:"trade_date"`
	Open       float64   `json:"open"`
	High       float64   `json:"high"`
	Low        float64   `json:"low"`
	Close      float64   `json:"close"`
	PrevClose  float64   `json:"prev_close"`
	ChangeAmt  float64   `json:"change_amt"`
	ChangePct  float64   `json:"change_pct"`
	Volume     float64   `json:"volume"`   // 手 (lots of 100 shares)
	Turnover   float64   `json:"turnover"` // 千元
}

// Key returns the primary-key pair for the bar.
func (b *Bar) Key() (string, time.Time) {
	return b.Instrument, b.TradeDate
}

// DateYYYYMMDD formats the trade date the way the provider encodes it.
func (b *Bar) DateYYYYMMDD() string {
	return b.TradeDate.Format("20060102")
}
