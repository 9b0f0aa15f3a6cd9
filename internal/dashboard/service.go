package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/speedwagon-io/plantwatch/internal/cache"
	"github.com/speedwagon-io/plantwatch/internal/model"
)

type StatusFetcher interface {
	Fetch(ctx context.Context) (*model.GenerationReading, error)
}

type NewsFetcher interface {
	Fetch(ctx context.Context) []model.NewsItem
}

// NewsFetcherFunc adapts a function to NewsFetcher.
type NewsFetcherFunc func(ctx context.Context) []model.NewsItem

func (f NewsFetcherFunc) Fetch(ctx context.Context) []model.NewsItem {
	return f(ctx)
}

// Snapshot is everything the page needs. Exactly one of Reading and
// FetchError is set.
type Snapshot struct {
	PlantName   string                   `json:"plant_name"`
	Reading     *model.GenerationReading `json:"reading,omitempty"`
	FetchError  string                   `json:"fetch_error,omitempty"`
	News        []model.NewsItem         `json:"news"`
	GeneratedAt time.Time                `json:"generated_at"`
}

type Options struct {
	PlantName   string
	StatusTTL   time.Duration
	NewsTTL     time.Duration
	LoadTimeout time.Duration
	Clock       func() time.Time
}

type Service struct {
	log       *slog.Logger
	plantName string
	now       func() time.Time
	status    *cache.TTL[*model.GenerationReading]
	news      *cache.TTL[[]model.NewsItem]
}

func NewService(log *slog.Logger, status StatusFetcher, news NewsFetcher, opts Options) *Service {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	loadNews := func(ctx context.Context) ([]model.NewsItem, error) {
		return news.Fetch(ctx), nil
	}

	return &Service{
		log:       log,
		plantName: opts.PlantName,
		now:       now,
		status: cache.NewTTL[*model.GenerationReading](opts.StatusTTL, status.Fetch,
			cache.WithClock[*model.GenerationReading](now),
			cache.WithLoadTimeout[*model.GenerationReading](opts.LoadTimeout),
		),
		news: cache.NewTTL[[]model.NewsItem](opts.NewsTTL, loadNews,
			cache.WithClock[[]model.NewsItem](now),
			cache.WithLoadTimeout[[]model.NewsItem](opts.LoadTimeout),
		),
	}
}

// Load reads status and news concurrently, each through its cache. Status
// errors become FetchError; news failures are already an empty list.
func (s *Service) Load(ctx context.Context) Snapshot {
	snap := Snapshot{PlantName: s.plantName}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		reading, err := s.status.Get(ctx)
		if err != nil {
			snap.FetchError = err.Error()
			return
		}
		snap.Reading = reading
	}()

	go func() {
		defer wg.Done()
		items, _ := s.news.Get(ctx)
		if items == nil {
			items = []model.NewsItem{}
		}
		snap.News = items
	}()

	wg.Wait()
	snap.GeneratedAt = s.now()

	return snap
}

// Warm refreshes both caches every interval until ctx is done. A
// non-positive interval returns immediately.
func (s *Service) Warm(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	s.log.Info("starting cache warmer", slog.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("context cancelled, stopping cache warmer")
			return
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *Service) refresh(ctx context.Context) {
	snap := s.Load(ctx)
	if snap.FetchError != "" {
		s.log.Warn("status refresh failed", slog.String("error", snap.FetchError))
		return
	}
	s.log.Debug("caches refreshed",
		slog.String("fetch_id", snap.Reading.FetchID),
		slog.Int("news", len(snap.News)),
	)
}

// Ready reports whether a status result, successful or not, exists.
func (s *Service) Ready() bool {
	_, ok := s.status.Peek()
	return ok
}

// LastStatus returns the memoized status result without fetching.
func (s *Service) LastStatus() (cache.Result[*model.GenerationReading], bool) {
	return s.status.Peek()
}

// LastNews returns the memoized news list without fetching.
func (s *Service) LastNews() (cache.Result[[]model.NewsItem], bool) {
	return s.news.Peek()
}
