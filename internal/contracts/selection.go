package contracts

import "time"

// Selection is a Bar that passed the screening rule, tagged with the run
// that produced it and the two calendar-derived dates.
//
// RunID is part of the primary key (run_id, instrument, trade_date), not a
// surrogate: it encodes run timestamp, requested range and a free-text note.
// The favorite/observation flags are mutated by user actions after the run,
// never by the screening engine.
type Selection struct {
	RunID string `json:"run_id"`
	Bar

	BuyDate  time.Time `json:"buy_date"`
	GoldDate time.Time `json:"gold_date"`

	IsFavorite    bool       `json:"is_favorite"`
	FavoriteAt    *time.Time `json:"favorite_at,omitempty"`
	IsObservation bool       `json:"is_observation"`
	ObservationAt *time.Time `json:"observation_at,omitempty"`
}
