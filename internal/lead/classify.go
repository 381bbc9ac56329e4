package lead

// Band is the priority classification of a lead score.
type Band int

const (
	// Pending means no score exists yet. It is not a band over [0,1]
	// and never matches High, Medium or Low filters.
	Pending Band = iota
	Low
	Medium
	High
)

// Classification thresholds over the score range [0,1].
const (
	highThreshold   = 0.75
	mediumThreshold = 0.5
)

// Classify maps a probability score to its priority band. A nil score
// is Pending. The three bands partition [0,1]: High is [0.75,1],
// Medium is [0.5,0.75), Low is [0,0.5).
func Classify(score *float64) Band {
	if score == nil {
		return Pending
	}
	switch s := *score; {
	case s >= highThreshold:
		return High
	case s >= mediumThreshold:
		return Medium
	default:
		return Low
	}
}

func (b Band) String() string {
	switch b {
	case High:
		return "high"
	case Medium:
		return "medium"
	case Low:
		return "low"
	default:
		return "pending"
	}
}

// Label is the display form shown in badges and legends.
func (b Band) Label() string {
	switch b {
	case High:
		return "High"
	case Medium:
		return "Medium"
	case Low:
		return "Low"
	default:
		return "Pending"
	}
}

// Priority returns the band of the customer's current score.
func (c Customer) Priority() Band { return Classify(c.Score) }
