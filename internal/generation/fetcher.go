// Package generation derives the running status and uptime of one plant
// from its generation time series.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/speedwagon-io/plantwatch/internal/lib/logger/sl"
	"github.com/speedwagon-io/plantwatch/internal/model"
)

var (
	ErrDataUnavailable = errors.New("data unavailable")
	ErrUpstream        = errors.New("upstream failure")
)

type SeriesProvider interface {
	QueryGenerationPerPlant(ctx context.Context, area string, start, end time.Time) ([]model.Series, error)
}

type Params struct {
	PlantName          string
	Area               string
	PlantFragment      string
	Lookback           time.Duration
	RunningThresholdMW float64
	DownThresholdMW    float64
	Location           *time.Location
}

type Fetcher struct {
	log      *slog.Logger
	provider SeriesProvider
	params   Params
	now      func() time.Time
}

type Option func(*Fetcher)

func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) {
		f.now = now
	}
}

func NewFetcher(log *slog.Logger, provider SeriesProvider, params Params, opts ...Option) *Fetcher {
	if params.Location == nil {
		params.Location = time.UTC
	}

	f := &Fetcher{
		log:      log,
		provider: provider,
		params:   params,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fetcher) Params() Params {
	return f.params
}

// Fetch queries the lookback window ending now and derives the reading.
// Upstream failures wrap ErrUpstream, a missing plant column or an empty
// series wraps ErrDataUnavailable.
func (f *Fetcher) Fetch(ctx context.Context) (*model.GenerationReading, error) {
	end := f.now().In(f.params.Location)
	start := end.Add(-f.params.Lookback)

	series, err := f.provider.QueryGenerationPerPlant(ctx, f.params.Area, start, end)
	if err != nil {
		f.log.Warn("generation query failed",
			slog.String("area", f.params.Area),
			sl.Err(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	column, err := f.selectColumn(series)
	if err != nil {
		return nil, err
	}

	current, ok := column.Last()
	if !ok {
		return nil, fmt.Errorf("%w: no values for %q in window", ErrDataUnavailable, column.Label)
	}

	var stats *model.UptimeStats
	if f.params.Lookback > 24*time.Hour {
		stats = UptimeFromDailyMaxima(DailyMaxima(column.Points, f.params.Location), f.params.DownThresholdMW)
	}

	reading := model.NewGenerationReading(
		f.params.PlantName,
		column.Label,
		current,
		IsRunning(current.Value, f.params.RunningThresholdMW),
		stats,
	)

	f.log.Debug("generation reading computed",
		slog.String("fetch_id", reading.FetchID),
		slog.String("column", column.Label),
		slog.Float64("current_mw", reading.CurrentOutputMW),
		slog.Bool("is_running", reading.IsRunning),
	)

	return reading, nil
}

// selectColumn picks the first series whose label contains the plant
// fragment. The match is case sensitive.
func (f *Fetcher) selectColumn(series []model.Series) (model.Series, error) {
	var matches []string
	var selected model.Series

	for _, s := range series {
		if !strings.Contains(s.Label, f.params.PlantFragment) {
			continue
		}
		if len(matches) == 0 {
			selected = s
		}
		matches = append(matches, s.Label)
	}

	if len(matches) == 0 {
		return model.Series{}, fmt.Errorf("%w: no column matching %q", ErrDataUnavailable, f.params.PlantFragment)
	}

	if len(matches) > 1 {
		f.log.Warn("several columns match plant fragment, using the first",
			slog.String("fragment", f.params.PlantFragment),
			slog.Any("columns", matches),
		)
	}

	return selected, nil
}

func IsRunning(currentMW, thresholdMW float64) bool {
	return currentMW > thresholdMW
}
