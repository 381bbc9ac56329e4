package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/salesops/leadscope/internal/logger"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second, logger.New("", "error"))
}

func ok(w http.ResponseWriter, data interface{}) {
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "ok",
		"data":    data,
	})
}

func TestLoginInstallsToken(t *testing.T) {
	t.Parallel()

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "admin@bank.id", body["email"])
		ok(w, map[string]interface{}{
			"token": "tok-123",
			"user":  map[string]interface{}{"id": 1, "email": "admin@bank.id"},
		})
	}))

	res, err := c.Login(context.Background(), "admin@bank.id", "secret1")
	require.NoError(t, err)
	require.Equal(t, "tok-123", res.Token)
	require.Equal(t, "admin@bank.id", res.User.Email)
	require.Equal(t, "tok-123", c.Token())
}

func TestBearerTokenAttached(t *testing.T) {
	t.Parallel()

	var auth atomic.Value
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		ok(w, map[string]interface{}{"customers": []interface{}{}, "pagination": map[string]interface{}{}})
	}))
	c.SetToken("tok-9")

	_, err := c.Customers(context.Background(), ListParams{})
	require.NoError(t, err)
	require.Equal(t, "Bearer tok-9", auth.Load())
}

func TestErrorPrefersBackendMessage(t *testing.T) {
	t.Parallel()

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "Email sudah terdaftar",
		})
	}))

	_, err := c.Register(context.Background(), "Budi", "budi@bank.id", "secret1")
	require.Error(t, err)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Equal(t, "Email sudah terdaftar", apiErr.Message)
}

func TestErrorGenericFallback(t *testing.T) {
	t.Parallel()

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte("not json"))
	}))

	err := c.DeleteCustomer(context.Background(), 5)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "request failed with status 409", apiErr.Message)
}

func TestUnauthorizedClearsTokenAndFiresHook(t *testing.T) {
	t.Parallel()

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "Unauthorized"})
	}))
	c.SetToken("expired")
	var fired atomic.Bool
	c.OnUnauthorized(func() { fired.Store(true) })

	_, err := c.CustomerStats(context.Background())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Empty(t, c.Token())
	require.True(t, fired.Load())
}

func TestGetRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		ok(w, map[string]interface{}{"hits": 4, "misses": 1, "keys": 3})
	}))

	stats, err := c.CacheStats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, stats.Hits)
	require.GreaterOrEqual(t, calls.Load(), int32(3))
	t.Log("recovered after transient 502s")
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "Customer tidak ditemukan"})
	}))

	_, err := c.PredictionHistory(context.Background(), 77)
	require.Error(t, err)
	require.Equal(t, int32(1), calls.Load())
}

func TestCustomersQueryParams(t *testing.T) {
	t.Parallel()

	housing := true
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "2", q.Get("page"))
		require.Equal(t, "20", q.Get("limit"))
		require.Equal(t, "budi", q.Get("search"))
		require.Equal(t, "probability_score", q.Get("sortBy"))
		require.Equal(t, "DESC", q.Get("order"))
		require.Equal(t, "true", q.Get("housing"))
		require.Empty(t, q.Get("minAge"))
		ok(w, map[string]interface{}{
			"customers": []map[string]interface{}{
				{"id": 1, "name": "Budi Santoso", "probability_score": "0.82"},
			},
			"pagination": map[string]interface{}{"page": 2, "totalPages": 8, "total": 160},
		})
	}))

	page, err := c.Customers(context.Background(), ListParams{
		Page: 2, Limit: 20, Search: "budi",
		SortBy: "probability_score", Order: "DESC",
		Housing: &housing,
	})
	require.NoError(t, err)
	require.Len(t, page.Customers, 1)
	require.Equal(t, "Budi Santoso", page.Customers[0].DisplayName())
	require.NotNil(t, page.Customers[0].Score)
	require.InDelta(t, 0.82, *page.Customers[0].Score, 1e-9)
	require.Equal(t, 8, page.Pagination.TotalPages)
}

func TestUploadCSV(t *testing.T) {
	t.Parallel()

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/customers/upload-csv", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("csvfile")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "leads.csv", header.Filename)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "CSV processed",
			"summary": map[string]int{"successfullyCreated": 2, "failedToCreate": 1},
			"validationErrors": []string{"row 3: invalid age"},
		})
	}))

	sum, err := c.UploadCSV(context.Background(), "leads.csv", strings.NewReader("age,job\n30,teacher\n"))
	require.NoError(t, err)
	require.Equal(t, 2, sum.Imported)
	require.Equal(t, 1, sum.Failed)
	require.Equal(t, []string{"row 3: invalid age"}, sum.Errors)
	require.False(t, sum.AutoCloses())
}

func TestPredictBatchPayload(t *testing.T) {
	t.Parallel()

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string][]int64
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, []int64{3, 5, 8}, body["customerIds"])
		ok(w, map[string]int{"predicted": 3, "success": 2, "failed": 1})
	}))

	res, err := c.PredictBatch(context.Background(), []int64{3, 5, 8})
	require.NoError(t, err)
	require.Equal(t, 3, res.Predicted)
	require.Equal(t, 2, res.Success)
	require.Equal(t, 1, res.Failed)
}

func TestCreateCustomer(t *testing.T) {
	t.Parallel()

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/customers", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "Budi Santoso", body["full_name"])
		require.Equal(t, float64(35), body["age"])
		require.Equal(t, true, body["has_housing_loan"])
		ok(w, map[string]interface{}{"id": 31, "full_name": "Budi Santoso", "age": 35})
	}))

	balance := 1250.5
	cust, err := c.CreateCustomer(context.Background(), CustomerPayload{
		FullName: "Budi Santoso", Age: 35, Job: "technician",
		Housing: true, Balance: &balance,
	})
	require.NoError(t, err)
	require.Equal(t, int64(31), cust.ID)
	require.Equal(t, "Budi Santoso", cust.DisplayName())
}

func TestUpdateCustomer(t *testing.T) {
	t.Parallel()

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/customers/7", r.URL.Path)
		require.Equal(t, http.MethodPut, r.Method)
		ok(w, map[string]interface{}{"id": 7, "full_name": "Siti Aminah", "age": 42})
	}))

	cust, err := c.UpdateCustomer(context.Background(), 7, CustomerPayload{
		FullName: "Siti Aminah", Age: 42,
	})
	require.NoError(t, err)
	require.Equal(t, int64(7), cust.ID)
	require.Equal(t, 42, cust.Age)
}

func TestMe(t *testing.T) {
	t.Parallel()

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/me", r.URL.Path)
		require.Equal(t, "Bearer tok-me", r.Header.Get("Authorization"))
		ok(w, map[string]interface{}{"id": 3, "name": "Admin", "email": "admin@bank.id", "role": "admin"})
	}))
	c.SetToken("tok-me")

	user, err := c.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(3), user.ID)
	require.Equal(t, "admin@bank.id", user.Email)
}

func TestTopLeadsUnwrapsLeads(t *testing.T) {
	t.Parallel()

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "5", r.URL.Query().Get("limit"))
		require.Equal(t, "0.75", r.URL.Query().Get("threshold"))
		ok(w, map[string]interface{}{
			"leads":     []map[string]interface{}{{"id": 11, "full_name": "Siti Aminah"}},
			"count":     1,
			"threshold": 0.75,
		})
	}))

	leads, err := c.TopLeads(context.Background(), 5, 0.75)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	require.Equal(t, int64(11), leads[0].ID)
}
