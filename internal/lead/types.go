package lead

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Customer is the canonical lead record every view consumes. Raw API
// payloads are normalized into this shape at the decode boundary; no
// component downstream looks at alternate field spellings.
type Customer struct {
	ID              int64
	FullName        string
	Age             int
	Job             string
	Marital         string
	Education       string
	HasDefault      bool
	HasHousingLoan  bool
	HasPersonalLoan bool
	Contact         string
	Month           string
	DayOfWeek       string
	Campaign        int
	PDays           int
	Previous        int
	POutcome        string
	Balance         *float64
	Score           *float64
	WillSubscribe   *bool
	PredictedAt     *time.Time
	ModelVersion    string
	Email           string
	Phone           string
	CreatedAt       *time.Time
	UpdatedAt       *time.Time
}

// DisplayName resolves the label shown for the customer: full_name,
// then name, then a synthetic fallback.
func (c Customer) DisplayName() string {
	if c.FullName != "" {
		return c.FullName
	}
	return fmt.Sprintf("Customer #%d", c.ID)
}

// Scored reports whether a probability score exists. A missing score is
// a distinct "pending" state, never the same as a score of 0.
func (c Customer) Scored() bool { return c.Score != nil }

// DisplayScore coerces a missing score to 0 for display only.
func (c Customer) DisplayScore() float64 {
	if c.Score == nil {
		return 0
	}
	return *c.Score
}

// Stats is the normalized customer-statistics object.
type Stats struct {
	TotalCustomers        int
	AvgAge                float64
	WithHousingLoan       int
	WithPersonalLoan      int
	UniqueJobs            int
	UniqueEducationLevels int
	PendingCalls          int
	MonthlyConversions    int
	MonthlyTrend          []TrendPoint
	HighPriorityCount     int
	AvgScore              float64
}

// TrendPoint is one month of lead volume. HighPriority and AvgScore may
// be synthesized when the backend omits them; Estimated marks that.
type TrendPoint struct {
	Month        string
	Total        int
	HighPriority int
	AvgScore     float64
	Estimated    bool
}

// PredictionStats is the normalized aggregate prediction statistics.
type PredictionStats struct {
	TotalPredictions            int
	AverageScore                float64
	PositivePredictions         int
	NegativePredictions         int
	HighestScore                float64
	LowestScore                 float64
	ConversionRate              float64
	HighPriorityCount           int
	MediumPriorityCount         int
	LowPriorityCount            int
	CustomersWithPredictions    int
	CustomersWithoutPredictions int
}

// HistoryEntry is one historical scoring event for a customer.
// Immutable once fetched; ordered by PredictedAt descending for display.
type HistoryEntry struct {
	ID            int64
	CustomerID    int64
	Score         float64
	PredictedAt   time.Time
	WillSubscribe *bool
	ModelVersion  string
}

// JobStatus is a read-only snapshot of the backend auto-predict job.
type JobStatus struct {
	Enabled  bool
	Running  bool
	LastRun  *time.Time
	NextRun  *time.Time
	RunCount int
}

// CacheStats is a read-only snapshot of the backend prediction cache.
type CacheStats struct {
	Hits   int
	Misses int
	Keys   int
}

// HitRate returns the cache hit percentage rounded to one decimal,
// and 0 when there is no traffic at all.
func (c CacheStats) HitRate() float64 {
	total := c.Hits + c.Misses
	if total == 0 {
		return 0
	}
	rate := 100 * float64(c.Hits) / float64(total)
	return float64(int(rate*10+0.5)) / 10
}

// UploadSummary is the normalized result of a CSV bulk upload.
type UploadSummary struct {
	Message  string
	Imported int
	Failed   int
	Errors   []string
}

// AutoCloses reports whether the import view should close on its own:
// only a fully clean import does.
func (u UploadSummary) AutoCloses() bool {
	return u.Failed == 0 && u.Imported > 0
}

// BatchResult is the normalized outcome of a batch prediction call.
type BatchResult struct {
	Predicted int
	Success   int
	Failed    int
}

// flexFloat tolerates backends that serialize numbers as strings
// ("0.62") or as raw JSON numbers.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*f = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}

// flexTime parses RFC3339 timestamps, tolerating date-only values and
// returning nil for anything unparseable rather than failing the record.
func flexTime(raw *string) *time.Time {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, strings.TrimSpace(*raw)); err == nil {
			return &t
		}
	}
	return nil
}

// firstString returns the first non-empty value.
func firstString(vals ...*string) string {
	for _, v := range vals {
		if v != nil && strings.TrimSpace(*v) != "" {
			return strings.TrimSpace(*v)
		}
	}
	return ""
}

func firstInt(vals ...*int) int {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return 0
}

func firstFloat(vals ...*flexFloat) float64 {
	for _, v := range vals {
		if v != nil {
			return float64(*v)
		}
	}
	return 0
}

func firstBool(vals ...*bool) *bool {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

var _ json.Unmarshaler = (*flexFloat)(nil)
