package snapshot

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"nsewatch/models"
	"nsewatch/provider"
	"nsewatch/universe"
)

// SkipReason explains why a ticker was excluded from a snapshot.
type SkipReason string

const (
	SkipMissingSeries SkipReason = "missing from batch response"
	SkipTooFewBars    SkipReason = "fewer than 2 observations"
	SkipStaleDate     SkipReason = "last observation not on target date"
	SkipZeroPrevious  SkipReason = "previous close is zero"
)

// Skip records one excluded ticker. Skips never abort a build.
type Skip struct {
	Ticker string
	Reason SkipReason
}

// lookbackDays absorbs weekends and holidays so a previous close is
// always inside the fetch window.
const lookbackDays = 7

var hundred = decimal.NewFromInt(100)

// Builder assembles a ranked day-over-day snapshot from one batch
// download.
type Builder struct {
	Provider provider.Client
}

func NewBuilder(p provider.Client) *Builder {
	return &Builder{Provider: p}
}

// Build fetches daily history for the whole universe over
// [target-7d, target+1d) in a single batch call and reconciles it into
// a snapshot for the target date. An empty snapshot means "no data",
// which is a valid result; only a failed batch download is an error,
// reported as models.FetchError.
func (b *Builder) Build(ctx context.Context, target time.Time, tickers []universe.Ticker) (models.Snapshot, []Skip, error) {
	start := target.AddDate(0, 0, -lookbackDays)
	end := target.AddDate(0, 0, 1) // end exclusive

	yahooTickers := make([]string, len(tickers))
	for i, t := range tickers {
		yahooTickers[i] = t.Yahoo
	}

	batch, err := b.Provider.DailyHistory(ctx, yahooTickers, start, end)
	if err != nil {
		return nil, nil, &models.FetchError{Err: err}
	}

	targetDate := target.Format(models.DateLayout)
	snap := make(models.Snapshot, 0, len(tickers))
	var skips []Skip

	for _, t := range tickers {
		row, reason := reconcile(t, batch, targetDate)
		if reason != "" {
			skips = append(skips, Skip{Ticker: t.Yahoo, Reason: reason})
			continue
		}
		snap = append(snap, row)
	}

	// Ties keep encounter order.
	sort.SliceStable(snap, func(i, j int) bool {
		return snap[i].Difference > snap[j].Difference
	})

	return snap, skips, nil
}

// reconcile extracts one ticker's sub-series and derives its row.
func reconcile(t universe.Ticker, batch *provider.BatchResult, targetDate string) (models.SnapshotRow, SkipReason) {
	var row models.SnapshotRow

	series, ok := batch.Series(t.Yahoo)
	if !ok {
		return row, SkipMissingSeries
	}
	if len(series) < 2 {
		return row, SkipTooFewBars
	}
	last := series.Last()
	if last.Date.Format(models.DateLayout) != targetDate {
		return row, SkipStaleDate
	}
	prev := series[len(series)-2]
	if prev.Close == 0 {
		return row, SkipZeroPrevious
	}

	// Rounding is half away from zero throughout (decimal.Round).
	latest := decimal.NewFromFloat(last.Close)
	previous := decimal.NewFromFloat(prev.Close)
	diff := latest.Sub(previous).Round(2)
	change := diff.Div(previous).Mul(hundred).Round(2)

	row = models.SnapshotRow{
		Symbol:     t.Symbol,
		Latest:     latest.Round(2).InexactFloat64(),
		Previous:   previous.Round(2).InexactFloat64(),
		Difference: diff.InexactFloat64(),
		Change:     change.InexactFloat64(),
	}
	return row, ""
}
