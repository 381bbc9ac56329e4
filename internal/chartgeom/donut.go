// Package chartgeom computes the SVG-compatible geometry behind the
// priority donut and the score gauge. The values are pure functions of
// the inputs so renders stay deterministic.
package chartgeom

import "math"

// Donut dimensions. NormalizedRadius is the radius minus half the
// stroke, which keeps the stroke inside the viewbox.
const (
	DonutRadius      = 80.0
	DonutStroke      = 24.0
	NormalizedRadius = DonutRadius - DonutStroke/2
)

// DonutCircumference is the dash length of a full segment.
var DonutCircumference = 2 * math.Pi * NormalizedRadius

// DonutSegment is one band's arc.
type DonutSegment struct {
	Label string
	Count int
	// Percent of the total, 0..100.
	Percent float64
	// DashOffset shortens the dash so the visible arc covers
	// Percent of the circle.
	DashOffset float64
	// RotateDeg positions the segment's start, measured clockwise
	// from the top of the donut.
	RotateDeg float64
}

// Donut lays out the low, medium and high segments, stacked in that
// order starting at the top. A zero total yields three empty segments
// rather than NaN percentages.
func Donut(low, medium, high int) []DonutSegment {
	total := low + medium + high
	pct := func(count int) float64 {
		if total == 0 {
			return 0
		}
		return 100 * float64(count) / float64(total)
	}
	lowPct := pct(low)
	medPct := pct(medium)
	highPct := pct(high)

	return []DonutSegment{
		{
			Label:      "Low",
			Count:      low,
			Percent:    lowPct,
			DashOffset: DonutCircumference - lowPct/100*DonutCircumference,
			RotateDeg:  0,
		},
		{
			Label:      "Medium",
			Count:      medium,
			Percent:    medPct,
			DashOffset: DonutCircumference - medPct/100*DonutCircumference,
			RotateDeg:  lowPct * 3.6,
		},
		{
			Label:      "High",
			Count:      high,
			Percent:    highPct,
			DashOffset: DonutCircumference - highPct/100*DonutCircumference,
			RotateDeg:  (lowPct + medPct) * 3.6,
		},
	}
}
