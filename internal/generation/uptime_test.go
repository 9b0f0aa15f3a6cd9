package generation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speedwagon-io/plantwatch/internal/model"
)

func TestDailyMaxima(t *testing.T) {
	loc := time.FixedZone("EET", 2*60*60)

	points := []model.Point{
		// 23:30 UTC on the 16th is already the 17th in loc.
		{Time: time.Date(2026, 10, 16, 23, 30, 0, 0, time.UTC), Value: 50},
		{Time: time.Date(2026, 10, 17, 8, 0, 0, 0, loc), Value: 3},
		{Time: time.Date(2026, 10, 16, 8, 0, 0, 0, loc), Value: 7},
		{Time: time.Date(2026, 10, 16, 9, 0, 0, 0, loc), Value: 9},
	}

	days := DailyMaxima(points, loc)
	require.Len(t, days, 2)

	assert.Equal(t, time.Date(2026, 10, 16, 0, 0, 0, 0, loc), days[0].Day)
	assert.Equal(t, 9.0, days[0].MaxMW)
	assert.Equal(t, time.Date(2026, 10, 17, 0, 0, 0, 0, loc), days[1].Day)
	assert.Equal(t, 50.0, days[1].MaxMW)
}

func TestUptimeFromDailyMaxima(t *testing.T) {
	day := func(v float64) DailyMax { return DailyMax{MaxMW: v} }

	t.Run("scenario 5 5 20 5", func(t *testing.T) {
		stats := UptimeFromDailyMaxima([]DailyMax{day(5), day(5), day(20), day(5)}, 10)
		require.NotNil(t, stats)
		assert.Equal(t, 3, stats.DaysDown)
		assert.Equal(t, 25.0, stats.UptimePct)
	})

	t.Run("threshold value counts as up", func(t *testing.T) {
		stats := UptimeFromDailyMaxima([]DailyMax{day(10), day(9.99)}, 10)
		require.NotNil(t, stats)
		assert.Equal(t, 1, stats.DaysDown)
		assert.Equal(t, 50.0, stats.UptimePct)
	})

	t.Run("rounds to one decimal", func(t *testing.T) {
		stats := UptimeFromDailyMaxima([]DailyMax{day(0), day(50), day(50)}, 10)
		require.NotNil(t, stats)
		assert.Equal(t, 66.7, stats.UptimePct)
	})

	t.Run("no days yields no stats", func(t *testing.T) {
		assert.Nil(t, UptimeFromDailyMaxima(nil, 10))
	})

	t.Run("down plus up equals days with data", func(t *testing.T) {
		values := []float64{0, 12, 3, 400, 9, 11, 10, 0, 0, 55, 1}
		days := make([]DailyMax, 0, len(values))
		for _, v := range values {
			days = append(days, day(v))
		}

		stats := UptimeFromDailyMaxima(days, 10)
		require.NotNil(t, stats)
		assert.Equal(t, len(values), stats.DaysDown+stats.DaysUp())
		assert.Equal(t, round1(100*float64(stats.DaysUp())/float64(len(values))), stats.UptimePct)
	})
}
