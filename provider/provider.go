package provider

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"nsewatch/models"
)

// DefaultHistoryPeriod is used when a history request carries no period.
const DefaultHistoryPeriod = "1mo"

// Client is the market-data surface the snapshot service depends on.
type Client interface {
	// DailyHistory fetches daily bars for all tickers in one batch
	// round trip. The window is [start, end) per provider convention.
	DailyHistory(ctx context.Context, tickers []string, start, end time.Time) (*BatchResult, error)
	// Details returns the provider's raw info object for one ticker.
	Details(ctx context.Context, ticker string) (map[string]any, error)
	// History returns daily closes for one ticker over a named period.
	History(ctx context.Context, ticker string, period string) (models.PriceSeries, error)
}

// BatchResult holds a batch download in either of the provider's two
// response shapes: keyed by ticker when several tickers were requested,
// or a single flat series when only one was. The shape is resolved once
// at decode time; Series hides it from callers.
type BatchResult struct {
	perTicker map[string]models.PriceSeries
	single    models.PriceSeries
	singleFor string
}

// NewPerTickerResult builds a ticker-keyed batch result.
func NewPerTickerResult(series map[string]models.PriceSeries) *BatchResult {
	return &BatchResult{perTicker: series}
}

// NewSingleResult builds a flat single-ticker batch result.
func NewSingleResult(ticker string, series models.PriceSeries) *BatchResult {
	return &BatchResult{single: series, singleFor: ticker}
}

// Series returns the sub-series for one ticker, reporting whether the
// response contained it at all.
func (b *BatchResult) Series(ticker string) (models.PriceSeries, bool) {
	if b.singleFor != "" {
		if ticker != b.singleFor {
			return nil, false
		}
		return b.single, true
	}
	series, ok := b.perTicker[ticker]
	return series, ok
}

// sparkSeries is the wire form of one ticker's series: parallel arrays
// of unix timestamps and closes, with nulls for missing observations.
type sparkSeries struct {
	Timestamp []int64       `json:"timestamp"`
	Close     []interface{} `json:"close"`
}

func (s *sparkSeries) toPriceSeries() models.PriceSeries {
	bars := make(models.PriceSeries, 0, len(s.Timestamp))
	for i, ts := range s.Timestamp {
		if i >= len(s.Close) || s.Close[i] == nil {
			continue // missing observation, dropped
		}
		bars = append(bars, models.PriceBar{
			Date:  time.Unix(ts, 0),
			Close: toFloat(s.Close[i]),
		})
	}
	return bars
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

// decodeBatch resolves the two response shapes. A top-level "timestamp"
// key means the flat single-ticker form; anything else is treated as a
// ticker-keyed map.
func decodeBatch(data []byte, tickers []string) (*BatchResult, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode batch response: %w", err)
	}

	if _, flat := probe["timestamp"]; flat {
		if len(tickers) != 1 {
			return nil, fmt.Errorf("flat batch response for %d tickers", len(tickers))
		}
		var series sparkSeries
		if err := json.Unmarshal(data, &series); err != nil {
			return nil, fmt.Errorf("decode flat series: %w", err)
		}
		return &BatchResult{single: series.toPriceSeries(), singleFor: tickers[0]}, nil
	}

	result := &BatchResult{perTicker: make(map[string]models.PriceSeries, len(probe))}
	for ticker, raw := range probe {
		var series sparkSeries
		if err := json.Unmarshal(raw, &series); err != nil {
			// A malformed sub-series skips that ticker, not the batch.
			continue
		}
		result.perTicker[ticker] = series.toPriceSeries()
	}
	return result, nil
}
