package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"nsewatch/models"
	"nsewatch/provider"
	"nsewatch/universe"
)

type fakeProvider struct {
	batch      *provider.BatchResult
	batchErr   error
	batchCalls int
	lastStart  time.Time
	lastEnd    time.Time

	info       map[string]any
	history    models.PriceSeries
	callErr    error
	detailArgs []string
}

func (f *fakeProvider) DailyHistory(_ context.Context, _ []string, start, end time.Time) (*provider.BatchResult, error) {
	f.batchCalls++
	f.lastStart, f.lastEnd = start, end
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	return f.batch, nil
}

func (f *fakeProvider) Details(_ context.Context, ticker string) (map[string]any, error) {
	f.detailArgs = append(f.detailArgs, ticker)
	if f.callErr != nil {
		return nil, f.callErr
	}
	return f.info, nil
}

func (f *fakeProvider) History(_ context.Context, ticker string, _ string) (models.PriceSeries, error) {
	f.detailArgs = append(f.detailArgs, ticker)
	if f.callErr != nil {
		return nil, f.callErr
	}
	return f.history, nil
}

var target = time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)

func bar(day int, c float64) models.PriceBar {
	return models.PriceBar{Date: time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC), Close: c}
}

func tickers(symbols ...string) []universe.Ticker {
	ts := make([]universe.Ticker, len(symbols))
	for i, s := range symbols {
		ts[i] = universe.Ticker{Symbol: s, Yahoo: s + ".NS"}
	}
	return ts
}

func TestBuildDeltaAndExclusions(t *testing.T) {
	fake := &fakeProvider{batch: provider.NewPerTickerResult(map[string]models.PriceSeries{
		"AAA.NS": {bar(15, 95.00), bar(16, 100.00)},
		"BBB.NS": {bar(16, 50.00)},
	})}

	snap, skips, err := NewBuilder(fake).Build(context.Background(), target, tickers("AAA", "BBB", "CCC"))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(snap) != 1 {
		t.Fatalf("Expected 1 surviving row, got %d", len(snap))
	}
	row := snap[0]
	if row.Symbol != "AAA" {
		t.Errorf("Expected raw symbol without suffix, got %s", row.Symbol)
	}
	if row.Latest != 100.00 || row.Previous != 95.00 {
		t.Errorf("Unexpected closes: %+v", row)
	}
	if row.Difference != 5.00 {
		t.Errorf("Expected difference 5.00, got %v", row.Difference)
	}
	if row.Change != 5.26 {
		t.Errorf("Expected change 5.26, got %v", row.Change)
	}

	if len(skips) != 2 {
		t.Fatalf("Expected 2 skips, got %+v", skips)
	}
	reasons := map[string]SkipReason{}
	for _, s := range skips {
		reasons[s.Ticker] = s.Reason
	}
	if reasons["BBB.NS"] != SkipTooFewBars {
		t.Errorf("Expected BBB skipped for too few bars, got %s", reasons["BBB.NS"])
	}
	if reasons["CCC.NS"] != SkipMissingSeries {
		t.Errorf("Expected CCC skipped as missing, got %s", reasons["CCC.NS"])
	}
}

func TestBuildFetchWindow(t *testing.T) {
	fake := &fakeProvider{batch: provider.NewPerTickerResult(nil)}

	_, _, err := NewBuilder(fake).Build(context.Background(), target, tickers("AAA"))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	wantStart := time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)
	if !fake.lastStart.Equal(wantStart) || !fake.lastEnd.Equal(wantEnd) {
		t.Errorf("Expected window [%v, %v), got [%v, %v)", wantStart, wantEnd, fake.lastStart, fake.lastEnd)
	}
}

func TestBuildStaleLastObservation(t *testing.T) {
	fake := &fakeProvider{batch: provider.NewPerTickerResult(map[string]models.PriceSeries{
		// Last bar is the 15th; target is the 16th. No trading on the
		// requested date means exclusion, not a stale row.
		"AAA.NS": {bar(12, 90.00), bar(15, 95.00)},
	})}

	snap, skips, err := NewBuilder(fake).Build(context.Background(), target, tickers("AAA"))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(snap) != 0 {
		t.Fatalf("Expected empty snapshot, got %+v", snap)
	}
	if len(skips) != 1 || skips[0].Reason != SkipStaleDate {
		t.Errorf("Expected stale-date skip, got %+v", skips)
	}
}

func TestBuildFlatSingleTickerResponse(t *testing.T) {
	fake := &fakeProvider{batch: provider.NewSingleResult("AAA.NS",
		models.PriceSeries{bar(15, 200.00), bar(16, 210.00)})}

	snap, _, err := NewBuilder(fake).Build(context.Background(), target, tickers("AAA"))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(snap) != 1 || snap[0].Difference != 10.00 {
		t.Errorf("Unexpected snapshot from flat response: %+v", snap)
	}
}

func TestBuildSortDescendingStable(t *testing.T) {
	fake := &fakeProvider{batch: provider.NewPerTickerResult(map[string]models.PriceSeries{
		"AAA.NS": {bar(15, 100.00), bar(16, 101.00)},
		"BBB.NS": {bar(15, 100.00), bar(16, 105.00)},
		"CCC.NS": {bar(15, 200.00), bar(16, 201.00)},
		"DDD.NS": {bar(15, 100.00), bar(16, 99.00)},
	})}

	snap, _, err := NewBuilder(fake).Build(context.Background(), target,
		tickers("AAA", "BBB", "CCC", "DDD"))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	got := make([]string, len(snap))
	for i, r := range snap {
		got[i] = r.Symbol
	}
	// BBB +5.00 first; AAA and CCC tie at +1.00 and keep encounter
	// order; DDD -1.00 last.
	want := []string{"BBB", "AAA", "CCC", "DDD"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected order %v, got %v", want, got)
		}
	}
}

func TestBuildZeroPreviousClose(t *testing.T) {
	fake := &fakeProvider{batch: provider.NewPerTickerResult(map[string]models.PriceSeries{
		"AAA.NS": {bar(15, 0.00), bar(16, 10.00)},
	})}

	snap, skips, err := NewBuilder(fake).Build(context.Background(), target, tickers("AAA"))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(snap) != 0 || len(skips) != 1 || skips[0].Reason != SkipZeroPrevious {
		t.Errorf("Expected zero-previous skip, got snap=%+v skips=%+v", snap, skips)
	}
}

func TestBuildBatchFailure(t *testing.T) {
	fake := &fakeProvider{batchErr: errors.New("connection reset")}

	_, _, err := NewBuilder(fake).Build(context.Background(), target, tickers("AAA"))
	if err == nil {
		t.Fatal("Expected error for batch failure, got nil")
	}
	var fetchErr *models.FetchError
	if !errors.As(err, &fetchErr) {
		t.Errorf("Expected FetchError, got %T: %v", err, err)
	}
}

func TestBuildRounding(t *testing.T) {
	fake := &fakeProvider{batch: provider.NewPerTickerResult(map[string]models.PriceSeries{
		// 0.005 differences round half away from zero.
		"AAA.NS": {bar(15, 100.000), bar(16, 100.005)},
	})}

	snap, _, err := NewBuilder(fake).Build(context.Background(), target, tickers("AAA"))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(snap) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(snap))
	}
	if snap[0].Difference != 0.01 {
		t.Errorf("Expected half-away-from-zero rounding to 0.01, got %v", snap[0].Difference)
	}
	if snap[0].Latest != 100.01 {
		t.Errorf("Expected latest rounded to 100.01, got %v", snap[0].Latest)
	}
}
