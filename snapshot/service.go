package snapshot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nsewatch/logger"
	"nsewatch/models"
	"nsewatch/provider"
	"nsewatch/universe"
)

// knownSuffixes are exchange qualifiers accepted as already qualified.
var knownSuffixes = []string{".NS", ".BO"}

// Service ties the cache policy, cache store, universe loader and
// builder into the date-keyed retrieval flow, and delegates per-symbol
// detail/history lookups straight to the provider.
type Service struct {
	universe *universe.Loader
	provider provider.Client
	builder  *Builder
	store    *Store
	policy   *Policy
	suffix   string
	log      *logger.Log
}

func NewService(u *universe.Loader, p provider.Client, store *Store, policy *Policy, suffix string, log *logger.Log) *Service {
	return &Service{
		universe: u,
		provider: p,
		builder:  NewBuilder(p),
		store:    store,
		policy:   policy,
		suffix:   suffix,
		log:      log,
	}
}

// Today returns the current calendar date per the injected clock.
func (s *Service) Today() string {
	return s.policy.Today()
}

// SnapshotForDate returns the ranked snapshot for one date, serving
// from cache when the policy allows and rebuilding otherwise. An empty
// snapshot is a valid "no data" result. Cache read and write failures
// degrade (rebuild, skip persisting) and never fail the request.
func (s *Service) SnapshotForDate(ctx context.Context, date string) (models.Snapshot, error) {
	target, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	if s.policy.UseCache(date) && s.store.Exists(date) {
		snap, err := s.store.Read(date)
		if err == nil {
			s.log.WithComponent("snapshot").WithFields(logger.Fields{
				"date": date, "rows": len(snap),
			}).Debug("cache hit")
			return snap, nil
		}
		s.log.WithComponent("snapshot").WithError(err).WithFields(logger.Fields{
			"date": date,
		}).Warn("unreadable cache entry, rebuilding")
	}

	tickers, err := s.universe.Load()
	if err != nil {
		return nil, err
	}

	snap, skips, err := s.builder.Build(ctx, target, tickers)
	if err != nil {
		return nil, err
	}
	for _, skip := range skips {
		s.log.WithComponent("snapshot").WithFields(logger.Fields{
			"date":   date,
			"ticker": skip.Ticker,
			"reason": string(skip.Reason),
		}).Debug("ticker skipped")
	}

	if len(snap) > 0 && s.policy.Persist(date) {
		if err := s.store.Write(date, snap); err != nil {
			s.log.WithComponent("snapshot").WithError(err).WithFields(logger.Fields{
				"date": date,
			}).Error("failed to persist snapshot")
		}
	}

	return snap, nil
}

// WarmToday builds and, once past market close, persists today's
// snapshot. Used by the scheduled warm job and the snapshot command.
func (s *Service) WarmToday(ctx context.Context) error {
	_, err := s.SnapshotForDate(ctx, s.Today())
	return err
}

// Qualify appends the default exchange suffix unless the symbol already
// carries a recognized one.
func (s *Service) Qualify(symbol string) string {
	for _, suffix := range knownSuffixes {
		if strings.HasSuffix(symbol, suffix) {
			return symbol
		}
	}
	return symbol + s.suffix
}

// Details returns the provider's raw info object for a symbol. Never
// cached.
func (s *Service) Details(ctx context.Context, symbol string) (map[string]any, error) {
	ticker := s.Qualify(symbol)
	info, err := s.provider.Details(ctx, ticker)
	if err != nil {
		return nil, &models.ProviderError{Symbol: ticker, Err: err}
	}
	return info, nil
}

// History returns daily closes for a symbol over a named period,
// flattened for the HTTP layer. Never cached.
func (s *Service) History(ctx context.Context, symbol, period string) ([]models.HistoryPoint, error) {
	ticker := s.Qualify(symbol)
	if period == "" {
		period = provider.DefaultHistoryPeriod
	}
	series, err := s.provider.History(ctx, ticker, period)
	if err != nil {
		return nil, &models.ProviderError{Symbol: ticker, Err: err}
	}

	points := make([]models.HistoryPoint, len(series))
	for i, bar := range series {
		points[i] = models.HistoryPoint{
			Date:  bar.Date.Format(models.DateLayout),
			Close: bar.Close,
		}
	}
	return points, nil
}
