package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/speedwagon-io/plantwatch/internal/config"
	"github.com/speedwagon-io/plantwatch/internal/model"
)

// HTMLSearchSource scrapes a site's search results page. Each result block
// is matched by ItemSelector; title, link and date are looked up inside it.
type HTMLSearchSource struct {
	client    *http.Client
	cfg       config.HTMLSearchConfig
	userAgent string
}

func NewHTMLSearchSource(client *http.Client, cfg config.HTMLSearchConfig, userAgent string) *HTMLSearchSource {
	return &HTMLSearchSource{
		client:    client,
		cfg:       cfg,
		userAgent: userAgent,
	}
}

func (s *HTMLSearchSource) Name() string {
	return string(SourceHTMLSearch)
}

func (s *HTMLSearchSource) Search(ctx context.Context, query string, limit int) ([]model.NewsItem, error) {
	pageURL, err := url.Parse(s.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid search url: %w", err)
	}
	params := pageURL.Query()
	params.Set(s.cfg.QueryParam, query)
	pageURL.RawQuery = params.Encode()

	body, err := get(ctx, s.client, pageURL.String(), s.userAgent)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search page: %w", err)
	}

	items := make([]model.NewsItem, 0, limit)
	doc.Find(s.cfg.ItemSelector).EachWithBreak(func(_ int, block *goquery.Selection) bool {
		if item, ok := s.extract(block, pageURL); ok {
			items = append(items, item)
		}
		return len(items) < limit
	})

	return items, nil
}

func (s *HTMLSearchSource) extract(block *goquery.Selection, base *url.URL) (model.NewsItem, bool) {
	link := block
	if !block.Is(s.cfg.LinkSelector) {
		link = block.Find(s.cfg.LinkSelector).First()
	}

	href, ok := link.Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		return model.NewsItem{}, false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return model.NewsItem{}, false
	}

	title := collapseSpace(block.Find(s.cfg.TitleSelector).First().Text())
	if title == "" {
		title = collapseSpace(link.Text())
	}
	if title == "" {
		return model.NewsItem{}, false
	}

	date := block.Find(s.cfg.DateSelector).First()
	published := collapseSpace(date.Text())
	if published == "" {
		published, _ = date.Attr("datetime")
	}

	return model.NewsItem{
		Title:     title,
		Link:      base.ResolveReference(ref).String(),
		Published: strings.TrimSpace(published),
	}, true
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
