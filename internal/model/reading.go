package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const Unavailable = "---"

type UptimeStats struct {
	DaysDown     int     `json:"days_down"`
	DaysWithData int     `json:"days_with_data"`
	UptimePct    float64 `json:"uptime_pct"`
}

func (s UptimeStats) DaysUp() int {
	return s.DaysWithData - s.DaysDown
}

// GenerationReading is the derived status of the tracked plant. A nil Stats
// means days down and uptime are not computed for this lookback window.
type GenerationReading struct {
	FetchID         string       `json:"fetch_id"`
	PlantName       string       `json:"plant_name"`
	Column          string       `json:"column"`
	CurrentOutputMW float64      `json:"current_output_mw"`
	ObservedAt      time.Time    `json:"observed_at"`
	IsRunning       bool         `json:"is_running"`
	Stats           *UptimeStats `json:"stats"`
}

func NewGenerationReading(plantName, column string, current Point, isRunning bool, stats *UptimeStats) *GenerationReading {
	return &GenerationReading{
		FetchID:         uuid.New().String(),
		PlantName:       plantName,
		Column:          column,
		CurrentOutputMW: current.Value,
		ObservedAt:      current.Time,
		IsRunning:       isRunning,
		Stats:           stats,
	}
}

func (r *GenerationReading) DaysDownText() string {
	if r.Stats == nil {
		return Unavailable
	}
	return fmt.Sprintf("%d", r.Stats.DaysDown)
}

func (r *GenerationReading) UptimeText() string {
	if r.Stats == nil {
		return Unavailable
	}
	return fmt.Sprintf("%.1f", r.Stats.UptimePct)
}
