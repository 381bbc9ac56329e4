// Package series turns chronological monthly trend points into the
// parallel value series the dashboard charts render.
package series

import (
	"math"

	"github.com/salesops/leadscope/internal/lead"
)

// Point is one bar in a chart series.
type Point struct {
	Month string
	Value float64
}

// Series is a named sequence of points plus the max used for bar
// scaling. Max is never below 1 so empty or all-zero months still
// divide cleanly.
type Series struct {
	Label  string
	Points []Point
	Max    float64
}

// Result carries the three chart series and the headline card values
// derived from the most recent month.
type Result struct {
	Totals       Series
	HighPriority Series
	AvgScore     Series

	// Headlines, from the last (most recent) trend point. Zero when
	// there is no trend data at all.
	LatestTotal        int
	LatestHighPriority int
	LatestAvgScorePct  int

	// Estimated is set when any contributing point carried
	// synthesized priority or score numbers.
	Estimated bool
}

// Build derives the chart series from trend points, which are assumed
// chronological (oldest first).
func Build(trend []lead.TrendPoint) Result {
	res := Result{
		Totals:       Series{Label: "Leads"},
		HighPriority: Series{Label: "High Priority"},
		AvgScore:     Series{Label: "Avg Score"},
	}
	res.Totals.Points = make([]Point, 0, len(trend))
	res.HighPriority.Points = make([]Point, 0, len(trend))
	res.AvgScore.Points = make([]Point, 0, len(trend))

	for _, p := range trend {
		res.Totals.Points = append(res.Totals.Points, Point{p.Month, float64(p.Total)})
		res.HighPriority.Points = append(res.HighPriority.Points, Point{p.Month, float64(p.HighPriority)})
		res.AvgScore.Points = append(res.AvgScore.Points, Point{p.Month, p.AvgScore})
		if p.Estimated {
			res.Estimated = true
		}
	}
	res.Totals.Max = maxValue(res.Totals.Points)
	res.HighPriority.Max = maxValue(res.HighPriority.Points)
	res.AvgScore.Max = maxValue(res.AvgScore.Points)

	if len(trend) > 0 {
		last := trend[len(trend)-1]
		res.LatestTotal = last.Total
		res.LatestHighPriority = last.HighPriority
		res.LatestAvgScorePct = int(math.Round(last.AvgScore * 100))
	}
	return res
}

func maxValue(points []Point) float64 {
	max := 1.0
	for _, p := range points {
		if p.Value > max {
			max = p.Value
		}
	}
	return max
}
