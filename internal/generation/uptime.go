package generation

import (
	"math"
	"sort"
	"time"

	"github.com/speedwagon-io/plantwatch/internal/model"
)

type DailyMax struct {
	Day   time.Time
	MaxMW float64
}

// DailyMaxima resamples points to the highest value of each calendar day in
// loc. Days without points are absent from the result.
func DailyMaxima(points []model.Point, loc *time.Location) []DailyMax {
	if loc == nil {
		loc = time.UTC
	}

	byDay := make(map[time.Time]float64)
	for _, p := range points {
		t := p.Time.In(loc)
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		if v, ok := byDay[day]; !ok || p.Value > v {
			byDay[day] = p.Value
		}
	}

	days := make([]DailyMax, 0, len(byDay))
	for day, v := range byDay {
		days = append(days, DailyMax{Day: day, MaxMW: v})
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Day.Before(days[j].Day)
	})
	return days
}

// UptimeFromDailyMaxima counts days whose maximum is below downThresholdMW.
// It returns nil when there are no days to count.
func UptimeFromDailyMaxima(days []DailyMax, downThresholdMW float64) *model.UptimeStats {
	if len(days) == 0 {
		return nil
	}

	down := 0
	for _, d := range days {
		if d.MaxMW < downThresholdMW {
			down++
		}
	}

	up := len(days) - down
	return &model.UptimeStats{
		DaysDown:     down,
		DaysWithData: len(days),
		UptimePct:    round1(100 * float64(up) / float64(len(days))),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
