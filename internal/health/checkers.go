package health

import (
	"context"
	"time"
)

// LastFetch describes the most recent memoized fetch of a component.
type LastFetch struct {
	Err   error
	At    time.Time
	Items int
}

// FetchHealthChecker reports on the last memoized fetch and how old it is
// against the cache ttl. It never triggers a fetch itself. With
// requireItems an empty result counts as degraded.
type FetchHealthChecker struct {
	name         string
	ttl          time.Duration
	last         func() (LastFetch, bool)
	requireItems bool
	now          func() time.Time
}

func NewGenerationHealthChecker(ttl time.Duration, last func() (LastFetch, bool)) *FetchHealthChecker {
	return &FetchHealthChecker{name: "generation", ttl: ttl, last: last, now: time.Now}
}

func NewNewsHealthChecker(ttl time.Duration, last func() (LastFetch, bool)) *FetchHealthChecker {
	return &FetchHealthChecker{name: "news", ttl: ttl, last: last, requireItems: true, now: time.Now}
}

func (c *FetchHealthChecker) Check(ctx context.Context) ComponentHealth {
	h := ComponentHealth{
		Name:       c.name,
		Status:     StatusHealthy,
		TTLSeconds: c.ttl.Seconds(),
	}

	last, ok := c.last()
	if !ok {
		h.Message = "not fetched yet"
		return h
	}

	at := last.At.UTC()
	h.FetchedAt = &at
	h.AgeSeconds = c.now().Sub(last.At).Seconds()
	h.Expired = c.now().Sub(last.At) >= c.ttl
	h.Items = last.Items

	switch {
	case last.Err != nil:
		h.Status = StatusDegraded
		h.Message = last.Err.Error()
	case c.requireItems && last.Items == 0:
		h.Status = StatusDegraded
		h.Message = "no items"
	}
	return h
}
