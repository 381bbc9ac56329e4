package chartgeom

// GaugeArcTotal is the path length of the full semicircular arc.
const GaugeArcTotal = 251.2

// Gauge holds the needle and arc geometry for a 0..100 score shown on
// a semicircular gauge.
type Gauge struct {
	Score float64
	// NeedleDeg sweeps -90 (score 0) to +90 (score 100).
	NeedleDeg float64
	// ArcLength is the filled portion of the arc path.
	ArcLength float64
}

// NewGauge clamps the score to [0,100] and derives the geometry.
func NewGauge(score float64) Gauge {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return Gauge{
		Score:     score,
		NeedleDeg: score/100*180 - 90,
		ArcLength: score / 100 * GaugeArcTotal,
	}
}
