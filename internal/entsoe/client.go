// Package entsoe queries the ENTSO-E Transparency Platform REST API for
// actual generation per production unit.
package entsoe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/speedwagon-io/plantwatch/internal/model"
)

const (
	documentTypeActualGeneration = "A73"
	processTypeRealised          = "A16"
	periodLayout                 = "200601021504"

	// The platform serves actual generation per unit for at most one day
	// per request.
	maxQueryWindow = 24 * time.Hour

	defaultConcurrency       = 4
	defaultRequestsPerMinute = 400
)

// ErrNoData is returned when the platform acknowledges the query but has no
// time series for the requested period.
var ErrNoData = errors.New("no matching data found")

type Client struct {
	log         *slog.Logger
	baseURL     string
	token       string
	client      *http.Client
	limiter     *rate.Limiter
	concurrency int
}

type Option func(*Client)

// WithConcurrency bounds how many day windows are requested at once.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithRequestsPerMinute paces requests to the platform. Zero or less
// disables pacing.
func WithRequestsPerMinute(n int) Option {
	return func(c *Client) {
		if n <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
	}
}

func NewClient(log *slog.Logger, baseURL, token string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		log:     log,
		baseURL: baseURL,
		token:   token,
		client: &http.Client{
			Timeout: timeout,
		},
		concurrency: defaultConcurrency,
	}
	c.limiter = rate.NewLimiter(rate.Every(time.Minute/defaultRequestsPerMinute), 1)

	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

type window struct {
	start, end time.Time
}

func (w window) String() string {
	return w.start.UTC().Format(periodLayout) + "-" + w.end.UTC().Format(periodLayout)
}

// splitWindows cuts [start, end) into consecutive windows no longer than size.
func splitWindows(start, end time.Time, size time.Duration) []window {
	var windows []window
	for from := start; from.Before(end); from = from.Add(size) {
		to := from.Add(size)
		if to.After(end) {
			to = end
		}
		windows = append(windows, window{start: from, end: to})
	}
	return windows
}

// QueryGenerationPerPlant returns one series per production unit in the
// bidding zone for [start, end). Longer periods are requested one day at a
// time and merged; days without data are skipped. ErrNoData is returned only
// when no day had any.
func (c *Client) QueryGenerationPerPlant(ctx context.Context, area string, start, end time.Time) ([]model.Series, error) {
	domain, err := AreaCode(area)
	if err != nil {
		return nil, err
	}
	if !end.After(start) {
		return nil, fmt.Errorf("invalid period: end %s is not after start %s", end, start)
	}

	windows := splitWindows(start, end, maxQueryWindow)
	docs := make([]*marketDocument, len(windows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, w := range windows {
		g.Go(func() error {
			doc, err := c.queryWindow(gctx, domain, w)
			if errors.Is(err, ErrNoData) {
				c.log.Debug("no generation data for window", slog.String("window", w.String()))
				return nil
			}
			if err != nil {
				return fmt.Errorf("window %s: %w", w, err)
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := newSeriesSet()
	received := 0
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		received++
		if err := set.add(doc); err != nil {
			return nil, err
		}
	}
	if received == 0 {
		return nil, ErrNoData
	}

	series := set.series()

	c.log.Debug("generation per plant received",
		slog.String("area", area),
		slog.Int("series", len(series)),
		slog.Int("windows", len(windows)),
		slog.Time("start", start),
		slog.Time("end", end),
	)

	return series, nil
}

func (c *Client) queryWindow(ctx context.Context, domain string, w window) (*marketDocument, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("documentType", documentTypeActualGeneration)
	params.Set("processType", processTypeRealised)
	params.Set("in_Domain", domain)
	params.Set("periodStart", w.start.UTC().Format(periodLayout))
	params.Set("periodEnd", w.end.UTC().Format(periodLayout))
	params.Set("securityToken", c.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", redactToken(err, c.token))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	doc, parseErr := parseDocument(body)

	if resp.StatusCode != http.StatusOK {
		if parseErr == nil && doc.isAcknowledgement() {
			if doc.noMatchingData() {
				return nil, ErrNoData
			}
			return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, doc.reasonText())
		}
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if parseErr != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", parseErr)
	}

	if doc.isAcknowledgement() {
		if doc.noMatchingData() {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("request rejected: %s", doc.reasonText())
	}

	return doc, nil
}

// redactToken keeps the security token out of url.Error messages.
func redactToken(err error, token string) error {
	if token == "" {
		return err
	}
	msg := err.Error()
	if !strings.Contains(msg, token) {
		return err
	}
	return errors.New(strings.ReplaceAll(msg, token, "***"))
}
