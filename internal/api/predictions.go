package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/salesops/leadscope/internal/lead"
)

// TopLeads fetches the highest-scoring customers. limit and threshold
// are optional; zero means backend defaults.
func (c *Client) TopLeads(ctx context.Context, limit int, threshold float64) ([]lead.Customer, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if threshold > 0 {
		q.Set("threshold", strconv.FormatFloat(threshold, 'f', -1, 64))
	}
	var res struct {
		Leads     []lead.Customer `json:"leads"`
		Count     int             `json:"count"`
		Threshold float64         `json:"threshold"`
	}
	if err := c.get(ctx, "/predictions/top-leads", q, &res); err != nil {
		return nil, err
	}
	return res.Leads, nil
}

// PredictionStats fetches the aggregate prediction statistics.
func (c *Client) PredictionStats(ctx context.Context) (lead.PredictionStats, error) {
	var stats lead.PredictionStats
	if err := c.get(ctx, "/predictions/stats", nil, &stats); err != nil {
		return lead.PredictionStats{}, err
	}
	return stats, nil
}

// PredictCustomer requests a fresh score for one customer.
func (c *Client) PredictCustomer(ctx context.Context, id int64) (lead.Customer, error) {
	var cust lead.Customer
	path := fmt.Sprintf("/predictions/customer/%d", id)
	if err := c.send(ctx, http.MethodPost, path, nil, &cust); err != nil {
		return lead.Customer{}, err
	}
	return cust, nil
}

// PredictBatch scores a set of customers in one call.
func (c *Client) PredictBatch(ctx context.Context, ids []int64) (lead.BatchResult, error) {
	payload := map[string][]int64{"customerIds": ids}
	var res lead.BatchResult
	if err := c.send(ctx, http.MethodPost, "/predictions/batch", payload, &res); err != nil {
		return lead.BatchResult{}, err
	}
	return res, nil
}

// PredictionHistory fetches past scoring events for one customer,
// newest first.
func (c *Client) PredictionHistory(ctx context.Context, id int64) ([]lead.HistoryEntry, error) {
	var res struct {
		History []lead.HistoryEntry `json:"history"`
	}
	path := fmt.Sprintf("/predictions/customer/%d/history", id)
	if err := c.get(ctx, path, nil, &res); err != nil {
		return nil, err
	}
	return res.History, nil
}

// JobStatus fetches the auto-predict job snapshot.
func (c *Client) JobStatus(ctx context.Context) (lead.JobStatus, error) {
	var status lead.JobStatus
	if err := c.get(ctx, "/predictions/job/status", nil, &status); err != nil {
		return lead.JobStatus{}, err
	}
	return status, nil
}

// CacheStats fetches the prediction cache counters.
func (c *Client) CacheStats(ctx context.Context) (lead.CacheStats, error) {
	var stats lead.CacheStats
	if err := c.get(ctx, "/predictions/cache/stats", nil, &stats); err != nil {
		return lead.CacheStats{}, err
	}
	return stats, nil
}

// TriggerResult is the outcome of a manual job run.
type TriggerResult struct {
	Message string `json:"message"`
	Results struct {
		Total   int `json:"total"`
		Success int `json:"success"`
		Failed  int `json:"failed"`
	} `json:"results"`
}

// TriggerJob starts a manual prediction job run.
func (c *Client) TriggerJob(ctx context.Context) (TriggerResult, error) {
	var res TriggerResult
	if err := c.send(ctx, http.MethodPost, "/predictions/job/trigger", nil, &res); err != nil {
		return TriggerResult{}, err
	}
	return res, nil
}
