package model

import "time"

type Point struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Series is the generation of one production unit, ordered by time.
type Series struct {
	Label      string  `json:"label"`
	ResourceID string  `json:"resource_id,omitempty"`
	PSRType    string  `json:"psr_type,omitempty"`
	Points     []Point `json:"points"`
}

func (s Series) Last() (Point, bool) {
	if len(s.Points) == 0 {
		return Point{}, false
	}
	return s.Points[len(s.Points)-1], true
}
