package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/speedwagon-io/plantwatch/internal/config"
	"github.com/speedwagon-io/plantwatch/internal/model"
)

// Feed dates look like "Thu, 12 Feb 2026 08:00:00 GMT"; the day is enough.
const rssDateLength = 16

type RSSSource struct {
	client    *http.Client
	cfg       config.RSSConfig
	userAgent string
}

func NewRSSSource(client *http.Client, cfg config.RSSConfig, userAgent string) *RSSSource {
	return &RSSSource{
		client:    client,
		cfg:       cfg,
		userAgent: userAgent,
	}
}

func (s *RSSSource) Name() string {
	return string(SourceRSS)
}

func (s *RSSSource) searchURL(query string) (string, error) {
	u, err := url.Parse(s.cfg.URL)
	if err != nil {
		return "", fmt.Errorf("invalid feed url: %w", err)
	}

	params := u.Query()
	params.Set("q", query)
	if s.cfg.Language != "" {
		params.Set("hl", s.cfg.Language)
	}
	if s.cfg.Region != "" {
		params.Set("gl", s.cfg.Region)
	}
	if s.cfg.Language != "" && s.cfg.Region != "" {
		params.Set("ceid", s.cfg.Region+":"+s.cfg.Language)
	}
	u.RawQuery = params.Encode()

	return u.String(), nil
}

func (s *RSSSource) Search(ctx context.Context, query string, limit int) ([]model.NewsItem, error) {
	feedURL, err := s.searchURL(query)
	if err != nil {
		return nil, err
	}

	body, err := get(ctx, s.client, feedURL, s.userAgent)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	feed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]model.NewsItem, 0, min(limit, len(feed.Items)))
	for _, entry := range feed.Items {
		if len(items) == limit {
			break
		}

		published := entry.Published
		if published == "" {
			published = entry.Updated
		}

		items = append(items, model.NewsItem{
			Title:     strings.TrimSpace(entry.Title),
			Link:      strings.TrimSpace(entry.Link),
			Published: truncateRunes(strings.TrimSpace(published), rssDateLength),
		})
	}

	return items, nil
}
