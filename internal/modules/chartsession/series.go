package chartsession

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Point is one sample of the price series.
type Point struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

// Summary holds series-wide values used for axis scaling.
type Summary struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// Timestamp layouts the backend is known to emit, most common first.
var seriesTimeLayouts = []string{
	"2006-01-02 15:04:05-07:00",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseSeries converts the backend's timestamp→price map into a series
// ordered by strictly increasing timestamp. An unparseable timestamp fails
// the whole series; a half-parsed chart is no better than a failed fetch.
func parseSeries(raw map[string]float64) ([]Point, error) {
	points := make([]Point, 0, len(raw))
	for ts, price := range raw {
		t, err := parseSeriesTime(ts)
		if err != nil {
			return nil, fmt.Errorf("invalid series timestamp %q: %w", ts, err)
		}
		points = append(points, Point{Time: t, Price: price})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Time.Before(points[j].Time)
	})

	return points, nil
}

func parseSeriesTime(ts string) (time.Time, error) {
	var lastErr error
	for _, layout := range seriesTimeLayouts {
		t, err := time.Parse(layout, ts)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// summarize computes axis-scaling values over the series prices.
func summarize(points []Point) Summary {
	prices := make([]float64, len(points))
	for i, p := range points {
		prices[i] = p.Price
	}
	return Summary{
		Min:  floats.Min(prices),
		Max:  floats.Max(prices),
		Mean: stat.Mean(prices, nil),
	}
}
