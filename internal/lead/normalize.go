package lead

import (
	"encoding/json"
	"strings"
)

// The backend has shipped several revisions that disagree on field
// casing (totalCustomers vs total_customers, willSubscribe vs
// will_subscribe). Everything in this file maps known aliases to the
// canonical structs in types.go, camelCase preferred, snake_case
// fallback, zero value when neither is present. Normalization never
// returns an error for absent or malformed optional fields.

type rawCustomer struct {
	ID             int64      `json:"id"`
	FullName       *string    `json:"full_name"`
	FullNameCamel  *string    `json:"fullName"`
	Name           *string    `json:"name"`
	Age            int        `json:"age"`
	Job            string     `json:"job"`
	Marital        string     `json:"marital"`
	Education      string     `json:"education"`
	HasDefault     bool       `json:"has_default"`
	HasHousing     bool       `json:"has_housing_loan"`
	HasPersonal    bool       `json:"has_personal_loan"`
	Contact        string     `json:"contact"`
	Month          string     `json:"month"`
	DayOfWeek      string     `json:"day_of_week"`
	Campaign       int        `json:"campaign"`
	PDays          int        `json:"pdays"`
	Previous       int        `json:"previous"`
	POutcome       string     `json:"poutcome"`
	Balance        *float64   `json:"balance"`
	Score          *flexFloat `json:"probability_score"`
	ScoreCamel     *flexFloat `json:"probabilityScore"`
	WillSub        *bool      `json:"will_subscribe"`
	WillSubCamel   *bool      `json:"willSubscribe"`
	PredictedAt    *string    `json:"predicted_at"`
	PredAtCamel    *string    `json:"predictedAt"`
	ModelVersion   *string    `json:"model_version"`
	ModelVerCamel  *string    `json:"modelVersion"`
	ModelVerLegacy *string    `json:"version"`
	Email          *string    `json:"email"`
	Phone          *string    `json:"phone"`
	CreatedAt      *string    `json:"created_at"`
	UpdatedAt      *string    `json:"updated_at"`
}

// UnmarshalJSON decodes a customer through the alias map above.
func (c *Customer) UnmarshalJSON(data []byte) error {
	var raw rawCustomer
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = raw.normalize()
	return nil
}

func (raw rawCustomer) normalize() Customer {
	c := Customer{
		ID:              raw.ID,
		FullName:        firstString(raw.FullNameCamel, raw.FullName, raw.Name),
		Age:             raw.Age,
		Job:             raw.Job,
		Marital:         raw.Marital,
		Education:       raw.Education,
		HasDefault:      raw.HasDefault,
		HasHousingLoan:  raw.HasHousing,
		HasPersonalLoan: raw.HasPersonal,
		Contact:         raw.Contact,
		Month:           raw.Month,
		DayOfWeek:       raw.DayOfWeek,
		Campaign:        raw.Campaign,
		PDays:           raw.PDays,
		Previous:        raw.Previous,
		POutcome:        raw.POutcome,
		Balance:         raw.Balance,
		WillSubscribe:   firstBool(raw.WillSubCamel, raw.WillSub),
		PredictedAt:     flexTime(pickStr(raw.PredAtCamel, raw.PredictedAt)),
		ModelVersion:    firstString(raw.ModelVerCamel, raw.ModelVersion, raw.ModelVerLegacy),
		Email:           firstString(raw.Email),
		Phone:           firstString(raw.Phone),
		CreatedAt:       flexTime(raw.CreatedAt),
		UpdatedAt:       flexTime(raw.UpdatedAt),
	}
	if raw.ScoreCamel != nil {
		s := float64(*raw.ScoreCamel)
		c.Score = &s
	} else if raw.Score != nil {
		s := float64(*raw.Score)
		c.Score = &s
	}
	return c
}

func pickStr(vals ...*string) *string {
	for _, v := range vals {
		if v != nil && strings.TrimSpace(*v) != "" {
			return v
		}
	}
	return nil
}

type rawStats struct {
	TotalCustomers      *int        `json:"totalCustomers"`
	TotalCustomersSnake *int        `json:"total_customers"`
	AvgAge              *flexFloat  `json:"avgAge"`
	AvgAgeSnake         *flexFloat  `json:"avg_age"`
	WithHousing         *int        `json:"withHousingLoan"`
	WithHousingSnake    *int        `json:"with_housing_loan"`
	WithPersonal        *int        `json:"withPersonalLoan"`
	WithPersonalSnake   *int        `json:"with_personal_loan"`
	UniqueJobs          *int        `json:"uniqueJobs"`
	UniqueJobsSnake     *int        `json:"unique_jobs"`
	UniqueEdu           *int        `json:"uniqueEducationLevels"`
	UniqueEduSnake      *int        `json:"unique_education_levels"`
	PendingCalls        *int        `json:"pendingCalls"`
	PendingCallsSnake   *int        `json:"pending_calls"`
	MonthlyConv         *int        `json:"monthlyConversions"`
	MonthlyConvSnake    *int        `json:"monthly_conversions"`
	Trend               []rawTrend  `json:"monthlyTrend"`
	TrendSnake          []rawTrend  `json:"monthly_trend"`
	HighPriority        *int        `json:"highPriorityCount"`
	HighPrioritySnake   *int        `json:"high_priority_count"`
	AvgScore            *flexFloat  `json:"avgScore"`
	AvgScoreSnake       *flexFloat  `json:"avg_score"`
}

type rawTrend struct {
	Month             string     `json:"month"`
	Total             int        `json:"total"`
	HighPriority      *int       `json:"highPriority"`
	HighPrioritySnake *int       `json:"high_priority"`
	AvgScore          *flexFloat `json:"avgScore"`
	AvgScoreSnake     *flexFloat `json:"avg_score"`
}

// UnmarshalJSON decodes customer statistics through the alias map.
func (s *Stats) UnmarshalJSON(data []byte) error {
	var raw rawStats
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	trend := raw.Trend
	if trend == nil {
		trend = raw.TrendSnake
	}
	points := make([]TrendPoint, 0, len(trend))
	for _, t := range trend {
		points = append(points, t.normalize())
	}
	*s = Stats{
		TotalCustomers:        firstInt(raw.TotalCustomers, raw.TotalCustomersSnake),
		AvgAge:                firstFloat(raw.AvgAge, raw.AvgAgeSnake),
		WithHousingLoan:       firstInt(raw.WithHousing, raw.WithHousingSnake),
		WithPersonalLoan:      firstInt(raw.WithPersonal, raw.WithPersonalSnake),
		UniqueJobs:            firstInt(raw.UniqueJobs, raw.UniqueJobsSnake),
		UniqueEducationLevels: firstInt(raw.UniqueEdu, raw.UniqueEduSnake),
		PendingCalls:          firstInt(raw.PendingCalls, raw.PendingCallsSnake),
		MonthlyConversions:    firstInt(raw.MonthlyConv, raw.MonthlyConvSnake),
		MonthlyTrend:          points,
		HighPriorityCount:     firstInt(raw.HighPriority, raw.HighPrioritySnake),
		AvgScore:              firstFloat(raw.AvgScore, raw.AvgScoreSnake),
	}
	return nil
}

// Synthesized fallbacks for trend points the backend ships without
// priority or score breakdowns. The ratios match the historical
// dashboard behavior; Estimated flags the numbers as fabricated so the
// UI can label them instead of presenting them as measured.
const (
	estimatedHighPriorityRatio = 0.25
	estimatedAvgScore          = 0.7
)

func (t rawTrend) normalize() TrendPoint {
	p := TrendPoint{Month: t.Month, Total: t.Total}
	high := t.HighPriority
	if high == nil {
		high = t.HighPrioritySnake
	}
	score := t.AvgScore
	if score == nil {
		score = t.AvgScoreSnake
	}
	if high != nil {
		p.HighPriority = *high
	} else {
		p.HighPriority = int(float64(t.Total) * estimatedHighPriorityRatio)
		p.Estimated = true
	}
	if score != nil {
		p.AvgScore = float64(*score)
	} else {
		p.AvgScore = estimatedAvgScore
		p.Estimated = true
	}
	return p
}

type rawPredictionStats struct {
	TotalPredictions *int       `json:"totalPredictions"`
	TotalSnake       *int       `json:"total_predictions"`
	AverageScore     *flexFloat `json:"averageScore"`
	AverageSnake     *flexFloat `json:"average_score"`
	Positive         *int       `json:"positivePredictions"`
	PositiveSnake    *int       `json:"positive_predictions"`
	Negative         *int       `json:"negativePredictions"`
	NegativeSnake    *int       `json:"negative_predictions"`
	Highest          *flexFloat `json:"highestScore"`
	HighestSnake     *flexFloat `json:"highest_score"`
	Lowest           *flexFloat `json:"lowestScore"`
	LowestSnake      *flexFloat `json:"lowest_score"`
	Conversion       *flexFloat `json:"conversionRate"`
	ConversionSnake  *flexFloat `json:"conversion_rate"`
	High             *int       `json:"highPriorityCount"`
	HighSnake        *int       `json:"high_priority_count"`
	Medium           *int       `json:"mediumPriorityCount"`
	MediumSnake      *int       `json:"medium_priority_count"`
	Low              *int       `json:"lowPriorityCount"`
	LowSnake         *int       `json:"low_priority_count"`
	With             *int       `json:"customersWithPredictions"`
	WithSnake        *int       `json:"customers_with_predictions"`
	Without          *int       `json:"customersWithoutPredictions"`
	WithoutSnake     *int       `json:"customers_without_predictions"`
}

// UnmarshalJSON decodes prediction statistics through the alias map.
func (s *PredictionStats) UnmarshalJSON(data []byte) error {
	var raw rawPredictionStats
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = PredictionStats{
		TotalPredictions:            firstInt(raw.TotalPredictions, raw.TotalSnake),
		AverageScore:                firstFloat(raw.AverageScore, raw.AverageSnake),
		PositivePredictions:         firstInt(raw.Positive, raw.PositiveSnake),
		NegativePredictions:         firstInt(raw.Negative, raw.NegativeSnake),
		HighestScore:                firstFloat(raw.Highest, raw.HighestSnake),
		LowestScore:                 firstFloat(raw.Lowest, raw.LowestSnake),
		ConversionRate:              firstFloat(raw.Conversion, raw.ConversionSnake),
		HighPriorityCount:           firstInt(raw.High, raw.HighSnake),
		MediumPriorityCount:         firstInt(raw.Medium, raw.MediumSnake),
		LowPriorityCount:            firstInt(raw.Low, raw.LowSnake),
		CustomersWithPredictions:    firstInt(raw.With, raw.WithSnake),
		CustomersWithoutPredictions: firstInt(raw.Without, raw.WithoutSnake),
	}
	return nil
}

type rawHistory struct {
	ID             int64      `json:"id"`
	CustomerID     int64      `json:"customer_id"`
	CustomerCamel  *int64     `json:"customerId"`
	Score          *flexFloat `json:"probability_score"`
	ScoreCamel     *flexFloat `json:"probabilityScore"`
	PredictedAt    *string    `json:"predicted_at"`
	PredAtCamel    *string    `json:"predictedAt"`
	WillSub        *bool      `json:"will_subscribe"`
	WillSubCamel   *bool      `json:"willSubscribe"`
	ModelVersion   *string    `json:"model_version"`
	ModelVerCamel  *string    `json:"modelVersion"`
	ModelVerLegacy *string    `json:"version"`
}

// UnmarshalJSON decodes one prediction-history entry through the alias map.
func (h *HistoryEntry) UnmarshalJSON(data []byte) error {
	var raw rawHistory
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	entry := HistoryEntry{
		ID:            raw.ID,
		CustomerID:    raw.CustomerID,
		WillSubscribe: firstBool(raw.WillSubCamel, raw.WillSub),
		ModelVersion:  firstString(raw.ModelVerCamel, raw.ModelVersion, raw.ModelVerLegacy),
	}
	if raw.CustomerCamel != nil {
		entry.CustomerID = *raw.CustomerCamel
	}
	if raw.ScoreCamel != nil {
		entry.Score = float64(*raw.ScoreCamel)
	} else if raw.Score != nil {
		entry.Score = float64(*raw.Score)
	}
	if ts := flexTime(pickStr(raw.PredAtCamel, raw.PredictedAt)); ts != nil {
		entry.PredictedAt = *ts
	}
	*h = entry
	return nil
}

type rawJobStatus struct {
	Enabled       bool    `json:"enabled"`
	Running       bool    `json:"running"`
	IsRunning     *bool   `json:"isRunning"`
	LastRun       *string `json:"lastRun"`
	LastRunSnake  *string `json:"last_run"`
	NextRun       *string `json:"nextRun"`
	NextRunSnake  *string `json:"next_run"`
	RunCount      *int    `json:"runCount"`
	RunCountSnake *int    `json:"run_count"`
}

// UnmarshalJSON decodes the job snapshot through the alias map.
func (j *JobStatus) UnmarshalJSON(data []byte) error {
	var raw rawJobStatus
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	running := raw.Running
	if raw.IsRunning != nil {
		running = *raw.IsRunning
	}
	*j = JobStatus{
		Enabled:  raw.Enabled,
		Running:  running,
		LastRun:  flexTime(pickStr(raw.LastRun, raw.LastRunSnake)),
		NextRun:  flexTime(pickStr(raw.NextRun, raw.NextRunSnake)),
		RunCount: firstInt(raw.RunCount, raw.RunCountSnake),
	}
	return nil
}

type rawUpload struct {
	Message string `json:"message"`
	Summary *struct {
		Created int `json:"successfullyCreated"`
		Failed  int `json:"failedToCreate"`
	} `json:"summary"`
	Imported         *int              `json:"imported"`
	Failed           *int              `json:"failed"`
	ValidationErrors []json.RawMessage `json:"validationErrors"`
	InsertionErrors  []json.RawMessage `json:"insertionErrors"`
	Data             json.RawMessage   `json:"data"`
}

// NormalizeUpload maps either upload response revision (flat
// imported/failed or nested summary counters, wrapped in a response
// envelope or not) to one shape.
func NormalizeUpload(data []byte) UploadSummary {
	var raw rawUpload
	if err := json.Unmarshal(data, &raw); err != nil {
		return UploadSummary{Message: "CSV upload processed"}
	}
	if raw.Summary == nil && raw.Imported == nil && len(raw.Data) > 0 {
		inner := NormalizeUpload(raw.Data)
		if raw.Message != "" {
			inner.Message = raw.Message
		}
		return inner
	}
	out := UploadSummary{Message: raw.Message}
	if out.Message == "" {
		out.Message = "CSV upload processed"
	}
	switch {
	case raw.Summary != nil:
		out.Imported = raw.Summary.Created
		out.Failed = raw.Summary.Failed
	default:
		out.Imported = firstInt(raw.Imported)
		out.Failed = firstInt(raw.Failed)
	}
	for _, e := range append(raw.ValidationErrors, raw.InsertionErrors...) {
		var msg string
		if err := json.Unmarshal(e, &msg); err != nil {
			msg = string(e)
		}
		out.Errors = append(out.Errors, msg)
	}
	return out
}
