package snapshot

import (
	"time"

	"nsewatch/models"
)

// Clock supplies the current time. Injected so the market-close
// boundary can be pinned in tests.
type Clock func() time.Time

// Policy decides cache usability per request. Intraday snapshots for
// today are never cached because prices are still moving; once the
// market closes, today's snapshot becomes immutable and cacheable like
// any past date.
type Policy struct {
	CloseHour   int
	CloseMinute int
	Now         Clock
}

func NewPolicy(closeHour, closeMinute int, now Clock) *Policy {
	if now == nil {
		now = time.Now
	}
	return &Policy{CloseHour: closeHour, CloseMinute: closeMinute, Now: now}
}

// Today returns the current calendar date string.
func (p *Policy) Today() string {
	return p.Now().Format(models.DateLayout)
}

func (p *Policy) pastClose() bool {
	now := p.Now()
	closeAt := time.Date(now.Year(), now.Month(), now.Day(),
		p.CloseHour, p.CloseMinute, 0, 0, now.Location())
	return !now.Before(closeAt)
}

// UseCache reports whether an existing cache entry may serve the date.
func (p *Policy) UseCache(date string) bool {
	if date != p.Today() {
		return true
	}
	return p.pastClose()
}

// Persist reports whether a freshly built snapshot for the date should
// be written to the cache.
func (p *Policy) Persist(date string) bool {
	if date != p.Today() {
		return true
	}
	return p.pastClose()
}
