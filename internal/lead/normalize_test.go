package lead

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCustomerAliasResolution(t *testing.T) {
	t.Parallel()

	var c Customer
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": 42,
		"name": "Budi Santoso",
		"age": 37,
		"job": "technician",
		"probability_score": "0.81",
		"willSubscribe": true,
		"model_version": "v2.1",
		"predicted_at": "2026-08-01T09:30:00Z"
	}`), &c))
	require.Equal(t, int64(42), c.ID)
	require.Equal(t, "Budi Santoso", c.DisplayName())
	require.NotNil(t, c.Score)
	require.InDelta(t, 0.81, *c.Score, 1e-9)
	require.NotNil(t, c.WillSubscribe)
	require.True(t, *c.WillSubscribe)
	require.Equal(t, "v2.1", c.ModelVersion)
	require.NotNil(t, c.PredictedAt)
	t.Log("string score and mixed casing resolved")

	// full_name beats name, camelCase score beats snake.
	var c2 Customer
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": 9,
		"full_name": "Siti Aminah",
		"name": "ignored",
		"probabilityScore": 0.4,
		"probability_score": 0.9
	}`), &c2))
	require.Equal(t, "Siti Aminah", c2.FullName)
	require.InDelta(t, 0.4, *c2.Score, 1e-9)
}

func TestCustomerDisplayNameFallback(t *testing.T) {
	t.Parallel()

	var c Customer
	require.NoError(t, json.Unmarshal([]byte(`{"id": 1051}`), &c))
	require.Equal(t, "Customer #1051", c.DisplayName())
	require.Nil(t, c.Score)
	require.False(t, c.Scored())
}

func TestNormalizationIsIdempotent(t *testing.T) {
	t.Parallel()

	payload := []byte(`{"id":3,"name":"Agus","probability_score":"0.55","balance":1200.5}`)
	var first Customer
	require.NoError(t, json.Unmarshal(payload, &first))

	// Re-encoding the canonical form and decoding again must not
	// change any field.
	round, err := json.Marshal(struct {
		ID      int64    `json:"id"`
		Name    string   `json:"full_name"`
		Score   *float64 `json:"probability_score"`
		Balance *float64 `json:"balance"`
	}{first.ID, first.FullName, first.Score, first.Balance})
	require.NoError(t, err)

	var second Customer
	require.NoError(t, json.Unmarshal(round, &second))
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, first.DisplayName(), second.DisplayName())
	require.Equal(t, first.Score, second.Score)
	require.Equal(t, first.Balance, second.Balance)
}

func TestStatsAliasPreference(t *testing.T) {
	t.Parallel()

	var s Stats
	require.NoError(t, json.Unmarshal([]byte(`{
		"totalCustomers": 4000,
		"total_customers": 1,
		"avg_age": "41.2",
		"highPriorityCount": 180,
		"monthlyTrend": [
			{"month": "Jun", "total": 100, "highPriority": 30, "avgScore": 0.66},
			{"month": "Jul", "total": 80}
		]
	}`), &s))
	require.Equal(t, 4000, s.TotalCustomers)
	require.InDelta(t, 41.2, s.AvgAge, 1e-9)
	require.Equal(t, 180, s.HighPriorityCount)
	require.Len(t, s.MonthlyTrend, 2)

	jun := s.MonthlyTrend[0]
	require.False(t, jun.Estimated)
	require.Equal(t, 30, jun.HighPriority)

	// Missing breakdowns synthesize 25% of total and 0.7, flagged.
	jul := s.MonthlyTrend[1]
	require.True(t, jul.Estimated)
	require.Equal(t, 20, jul.HighPriority)
	require.InDelta(t, 0.7, jul.AvgScore, 1e-9)
}

func TestPredictionStatsDefaultsToZero(t *testing.T) {
	t.Parallel()

	var s PredictionStats
	require.NoError(t, json.Unmarshal([]byte(`{"average_score":0.58,"high_priority_count":12}`), &s))
	require.InDelta(t, 0.58, s.AverageScore, 1e-9)
	require.Equal(t, 12, s.HighPriorityCount)
	require.Equal(t, 0, s.TotalPredictions)
	require.Equal(t, 0, s.MediumPriorityCount)
}

func TestHistoryEntryModelVersionAliases(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		payload string
		want    string
	}{
		{"snake", `{"id":1,"customer_id":5,"probability_score":0.7,"model_version":"v1"}`, "v1"},
		{"camel wins", `{"id":2,"customerId":5,"probabilityScore":0.7,"modelVersion":"v3","model_version":"v1"}`, "v3"},
		{"legacy version key", `{"id":3,"customer_id":5,"probability_score":"0.7","version":"legacy-9"}`, "legacy-9"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var h HistoryEntry
			require.NoError(t, json.Unmarshal([]byte(tc.payload), &h))
			require.Equal(t, tc.want, h.ModelVersion)
			require.Equal(t, int64(5), h.CustomerID)
			require.InDelta(t, 0.7, h.Score, 1e-9)
		})
	}
}

func TestNormalizeUpload(t *testing.T) {
	t.Parallel()

	clean := NormalizeUpload([]byte(`{
		"message": "CSV processed",
		"summary": {"successfullyCreated": 120, "failedToCreate": 0}
	}`))
	require.Equal(t, 120, clean.Imported)
	require.Equal(t, 0, clean.Failed)
	require.True(t, clean.AutoCloses())

	dirty := NormalizeUpload([]byte(`{
		"summary": {"successfullyCreated": 10, "failedToCreate": 3},
		"validationErrors": ["row 4: bad age", "row 9: missing job"]
	}`))
	require.Equal(t, 10, dirty.Imported)
	require.Equal(t, 3, dirty.Failed)
	require.Len(t, dirty.Errors, 2)
	require.False(t, dirty.AutoCloses())

	// Envelope-wrapped revision keeps the outer message.
	wrapped := NormalizeUpload([]byte(`{
		"success": true,
		"message": "Upload selesai",
		"data": {"summary": {"successfullyCreated": 7, "failedToCreate": 1}}
	}`))
	require.Equal(t, "Upload selesai", wrapped.Message)
	require.Equal(t, 7, wrapped.Imported)
	require.Equal(t, 1, wrapped.Failed)

	// Flat revision without the nested summary object.
	flat := NormalizeUpload([]byte(`{"imported": 5, "failed": 0}`))
	require.Equal(t, 5, flat.Imported)
	require.True(t, flat.AutoCloses())

	// Nothing imported never auto-closes.
	empty := NormalizeUpload([]byte(`{"imported": 0, "failed": 0}`))
	require.False(t, empty.AutoCloses())
}

func TestCacheHitRate(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0.0, CacheStats{}.HitRate())
	require.Equal(t, 100.0, CacheStats{Hits: 10}.HitRate())
	require.Equal(t, 66.7, CacheStats{Hits: 2, Misses: 1}.HitRate())
	require.Equal(t, 0.0, CacheStats{Misses: 25}.HitRate())
}

func TestJobStatusRunningAliases(t *testing.T) {
	t.Parallel()

	var j JobStatus
	require.NoError(t, json.Unmarshal([]byte(`{
		"enabled": true,
		"isRunning": true,
		"lastRun": "2026-08-29T10:00:00Z",
		"run_count": 14
	}`), &j))
	require.True(t, j.Enabled)
	require.True(t, j.Running)
	require.NotNil(t, j.LastRun)
	require.Nil(t, j.NextRun)
	require.Equal(t, 14, j.RunCount)
}
