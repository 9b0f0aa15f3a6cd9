package entsoe

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/speedwagon-io/plantwatch/internal/model"
)

const (
	acknowledgementDocument = "Acknowledgement_MarketDocument"
	curveTypeVariableBlocks = "A03"
)

var intervalLayouts = []string{"2006-01-02T15:04Z", time.RFC3339}

type marketDocument struct {
	XMLName    xml.Name
	TimeSeries []timeSeries `xml:"TimeSeries"`
	Reasons    []reason     `xml:"Reason"`
}

type reason struct {
	Code string `xml:"code"`
	Text string `xml:"text"`
}

type timeSeries struct {
	MRID         string   `xml:"mRID"`
	CurveType    string   `xml:"curveType"`
	PSRType      string   `xml:"MktPSRType>psrType"`
	ResourceID   string   `xml:"MktPSRType>PowerSystemResources>mRID"`
	ResourceName string   `xml:"MktPSRType>PowerSystemResources>name"`
	OutDomain    string   `xml:"outBiddingZone_Domain.mRID"`
	Periods      []period `xml:"Period"`
}

type period struct {
	Start      string  `xml:"timeInterval>start"`
	End        string  `xml:"timeInterval>end"`
	Resolution string  `xml:"resolution"`
	Points     []point `xml:"Point"`
}

type point struct {
	Position int     `xml:"position"`
	Quantity float64 `xml:"quantity"`
}

func parseDocument(body []byte) (*marketDocument, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("empty response body")
	}

	var doc marketDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *marketDocument) isAcknowledgement() bool {
	return d.XMLName.Local == acknowledgementDocument
}

// noMatchingData reports the platform's "No matching data found" reason. The
// platform uses code 999 for most rejections, so the text is what tells them
// apart.
func (d *marketDocument) noMatchingData() bool {
	for _, r := range d.Reasons {
		if strings.Contains(strings.ToLower(r.Text), "no matching data found") {
			return true
		}
	}
	return false
}

func (d *marketDocument) reasonText() string {
	texts := make([]string, 0, len(d.Reasons))
	for _, r := range d.Reasons {
		if t := strings.TrimSpace(r.Text); t != "" {
			texts = append(texts, t)
		}
	}
	if len(texts) == 0 {
		return "no reason given"
	}
	return strings.Join(texts, "; ")
}

// seriesSet merges time series of the same production unit across one or
// more documents and keeps the order in which units first appear.
// Consumption series (those with an out domain) are skipped.
type seriesSet struct {
	order  []string
	byUnit map[string]*model.Series
	values map[string]map[time.Time]float64
}

func newSeriesSet() *seriesSet {
	return &seriesSet{
		byUnit: make(map[string]*model.Series),
		values: make(map[string]map[time.Time]float64),
	}
}

func (s *seriesSet) add(d *marketDocument) error {
	for _, ts := range d.TimeSeries {
		if ts.OutDomain != "" {
			continue
		}

		key := ts.ResourceID
		if key == "" {
			key = ts.ResourceName
		}
		if key == "" {
			key = ts.MRID
		}

		if _, ok := s.byUnit[key]; !ok {
			label := ts.ResourceName
			if label == "" {
				label = key
			}
			s.byUnit[key] = &model.Series{
				Label:      label,
				ResourceID: ts.ResourceID,
				PSRType:    ts.PSRType,
			}
			s.values[key] = make(map[time.Time]float64)
			s.order = append(s.order, key)
		}

		for _, p := range ts.Periods {
			if err := p.collect(ts.CurveType, s.values[key]); err != nil {
				return fmt.Errorf("time series %s: %w", key, err)
			}
		}
	}
	return nil
}

func (s *seriesSet) series() []model.Series {
	result := make([]model.Series, 0, len(s.order))
	for _, key := range s.order {
		unit := *s.byUnit[key]
		unit.Points = make([]model.Point, 0, len(s.values[key]))
		for t, v := range s.values[key] {
			unit.Points = append(unit.Points, model.Point{Time: t, Value: v})
		}
		sort.Slice(unit.Points, func(i, j int) bool {
			return unit.Points[i].Time.Before(unit.Points[j].Time)
		})
		result = append(result, unit)
	}
	return result
}

func (p period) collect(curveType string, into map[time.Time]float64) error {
	start, err := parseIntervalTime(p.Start)
	if err != nil {
		return err
	}
	step, err := parseResolution(p.Resolution)
	if err != nil {
		return err
	}

	if curveType != curveTypeVariableBlocks {
		for _, pt := range p.Points {
			into[start.Add(time.Duration(pt.Position-1)*step)] = pt.Quantity
		}
		return nil
	}

	end, err := parseIntervalTime(p.End)
	if err != nil {
		return err
	}

	// A03 curves only carry a point when the value changes.
	byPosition := make(map[int]float64, len(p.Points))
	for _, pt := range p.Points {
		byPosition[pt.Position] = pt.Quantity
	}

	positions := int(end.Sub(start) / step)
	var (
		last float64
		seen bool
	)
	for pos := 1; pos <= positions; pos++ {
		if v, ok := byPosition[pos]; ok {
			last, seen = v, true
		}
		if seen {
			into[start.Add(time.Duration(pos-1)*step)] = last
		}
	}
	return nil
}

func parseIntervalTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range intervalLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid interval time %q", s)
}

// parseResolution understands the ISO 8601 durations used by the platform:
// PT15M, PT30M, PT60M, PT1H, P1D and P7D.
func parseResolution(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	var (
		num  string
		unit time.Duration
	)
	switch {
	case strings.HasPrefix(s, "PT") && strings.HasSuffix(s, "M"):
		num, unit = s[2:len(s)-1], time.Minute
	case strings.HasPrefix(s, "PT") && strings.HasSuffix(s, "H"):
		num, unit = s[2:len(s)-1], time.Hour
	case strings.HasPrefix(s, "P") && strings.HasSuffix(s, "D"):
		num, unit = s[1:len(s)-1], 24*time.Hour
	default:
		return 0, fmt.Errorf("unsupported resolution %q", s)
	}

	n, err := strconv.Atoi(num)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("unsupported resolution %q", s)
	}
	return time.Duration(n) * unit, nil
}
