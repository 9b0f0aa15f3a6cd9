// Package news searches news sources for mentions of the plant. Fetching is
// best effort: every failure degrades to an empty list.
package news

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/speedwagon-io/plantwatch/internal/config"
	"github.com/speedwagon-io/plantwatch/internal/lib/logger/sl"
	"github.com/speedwagon-io/plantwatch/internal/model"
)

type SourceKind string

const (
	SourceRSS        SourceKind = "rss"
	SourceHTMLSearch SourceKind = "html_search"
)

func ParseSourceKind(s string) (SourceKind, error) {
	switch SourceKind(strings.ToLower(strings.TrimSpace(s))) {
	case SourceRSS:
		return SourceRSS, nil
	case SourceHTMLSearch, "html":
		return SourceHTMLSearch, nil
	default:
		return "", fmt.Errorf("unknown news source %q", s)
	}
}

// Source returns at most limit items for query, in the source's order.
type Source interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]model.NewsItem, error)
}

type Fetcher struct {
	log      *slog.Logger
	sources  map[SourceKind]Source
	limiters map[SourceKind]*rate.Limiter
}

// NewFetcher wraps sources with a limiter allowing one request per
// minInterval each. A non-positive minInterval disables limiting.
func NewFetcher(log *slog.Logger, minInterval time.Duration, sources map[SourceKind]Source) *Fetcher {
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}

	limiters := make(map[SourceKind]*rate.Limiter, len(sources))
	for kind := range sources {
		limiters[kind] = rate.NewLimiter(limit, 1)
	}

	return &Fetcher{
		log:      log,
		sources:  sources,
		limiters: limiters,
	}
}

// NewSources builds both search strategies on one HTTP client.
func NewSources(cfg config.NewsConfig) map[SourceKind]Source {
	client := &http.Client{Timeout: cfg.Timeout}

	return map[SourceKind]Source{
		SourceRSS:        NewRSSSource(client, cfg.RSS, cfg.UserAgent),
		SourceHTMLSearch: NewHTMLSearchSource(client, cfg.HTMLSearch, cfg.UserAgent),
	}
}

// Fetch never fails: errors are logged and yield an empty slice. The result
// never holds more than maxItems entries.
func (f *Fetcher) Fetch(ctx context.Context, query string, maxItems int, kind SourceKind) []model.NewsItem {
	items := []model.NewsItem{}
	if maxItems <= 0 {
		return items
	}

	src, ok := f.sources[kind]
	if !ok {
		f.log.Warn("news source not configured", slog.String("source", string(kind)))
		return items
	}

	log := f.log.With(
		slog.String("source", src.Name()),
		slog.String("query", query),
	)

	if err := f.limiters[kind].Wait(ctx); err != nil {
		log.Warn("news request not sent", sl.Err(err))
		return items
	}

	found, err := src.Search(ctx, query, maxItems)
	if err != nil {
		log.Warn("failed to fetch news", sl.Err(err))
		return items
	}

	if len(found) > maxItems {
		found = found[:maxItems]
	}
	items = append(items, found...)

	log.Debug("news fetched", slog.Int("count", len(items)))
	return items
}

func get(ctx context.Context, client *http.Client, rawURL, userAgent string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return resp.Body, nil
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
