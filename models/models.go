package models

import (
	"time"
)

// DateLayout is the wire and cache-key format for calendar dates.
const DateLayout = "2006-01-02"

// PriceBar holds one daily closing observation for a ticker.
type PriceBar struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries is a sequence of daily bars ordered ascending by date.
type PriceSeries []PriceBar

// Last returns the most recent bar. Caller must check length first.
func (s PriceSeries) Last() PriceBar {
	return s[len(s)-1]
}

// SnapshotRow is one ranked entry of a daily snapshot. Difference and
// Change are always derived from Latest and Previous, never stored
// independently.
type SnapshotRow struct {
	Symbol     string  `json:"Symbol"`
	Latest     float64 `json:"Latest"`
	Previous   float64 `json:"Previous"`
	Difference float64 `json:"Difference"`
	Change     float64 `json:"Change"`
}

// Snapshot is the ranked set of per-symbol price deltas for one date,
// sorted descending by Difference.
type Snapshot []SnapshotRow

// HistoryPoint is one entry of a per-symbol history response.
type HistoryPoint struct {
	Date  string  `json:"Date"`
	Close float64 `json:"Close"`
}
