package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/salesops/leadscope/internal/lead"
)

// ListParams are the customer list query options. Zero values are
// omitted from the query string.
type ListParams struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	Order     string
	MinAge    int
	MaxAge    int
	Job       string
	Education string
	Marital   string
	Housing   *bool
	Loan      *bool
	Default   *bool
}

func (p ListParams) values() url.Values {
	q := url.Values{}
	setInt := func(key string, v int) {
		if v > 0 {
			q.Set(key, strconv.Itoa(v))
		}
	}
	setStr := func(key, v string) {
		if v != "" {
			q.Set(key, v)
		}
	}
	setBool := func(key string, v *bool) {
		if v != nil {
			q.Set(key, strconv.FormatBool(*v))
		}
	}
	setInt("page", p.Page)
	setInt("limit", p.Limit)
	setStr("search", p.Search)
	setStr("sortBy", p.SortBy)
	setStr("order", p.Order)
	setInt("minAge", p.MinAge)
	setInt("maxAge", p.MaxAge)
	setStr("job", p.Job)
	setStr("education", p.Education)
	setStr("marital", p.Marital)
	setBool("housing", p.Housing)
	setBool("loan", p.Loan)
	setBool("hasDefault", p.Default)
	return q
}

// Pagination mirrors the backend's list metadata.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// CustomerPage is one page of the customer list.
type CustomerPage struct {
	Customers  []lead.Customer `json:"customers"`
	Pagination Pagination      `json:"pagination"`
}

// Customers fetches one page of the customer list.
func (c *Client) Customers(ctx context.Context, p ListParams) (CustomerPage, error) {
	var page CustomerPage
	if err := c.get(ctx, "/customers", p.values(), &page); err != nil {
		return CustomerPage{}, err
	}
	return page, nil
}

// CustomerStats fetches the aggregate customer statistics.
func (c *Client) CustomerStats(ctx context.Context) (lead.Stats, error) {
	var stats lead.Stats
	if err := c.get(ctx, "/customers/stats", nil, &stats); err != nil {
		return lead.Stats{}, err
	}
	return stats, nil
}

// CustomerPayload is the writable subset of a customer record.
type CustomerPayload struct {
	FullName  string   `json:"full_name,omitempty"`
	Age       int      `json:"age"`
	Job       string   `json:"job"`
	Marital   string   `json:"marital"`
	Education string   `json:"education"`
	Default   bool     `json:"has_default"`
	Housing   bool     `json:"has_housing_loan"`
	Loan      bool     `json:"has_personal_loan"`
	Contact   string   `json:"contact,omitempty"`
	Balance   *float64 `json:"balance,omitempty"`
	Email     string   `json:"email,omitempty"`
	Phone     string   `json:"phone,omitempty"`
}

// CreateCustomer adds a customer record.
func (c *Client) CreateCustomer(ctx context.Context, p CustomerPayload) (lead.Customer, error) {
	var cust lead.Customer
	if err := c.send(ctx, http.MethodPost, "/customers", p, &cust); err != nil {
		return lead.Customer{}, err
	}
	return cust, nil
}

// UpdateCustomer updates a customer record.
func (c *Client) UpdateCustomer(ctx context.Context, id int64, p CustomerPayload) (lead.Customer, error) {
	var cust lead.Customer
	if err := c.send(ctx, http.MethodPut, fmt.Sprintf("/customers/%d", id), p, &cust); err != nil {
		return lead.Customer{}, err
	}
	return cust, nil
}

// DeleteCustomer removes a customer record.
func (c *Client) DeleteCustomer(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("/customers/%d", id), nil, nil)
}

// UploadCSV streams a CSV file as multipart form data. The field name
// must be csvfile, matching the backend's upload middleware.
func (c *Client) UploadCSV(ctx context.Context, filename string, file io.Reader) (lead.UploadSummary, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("csvfile", filename)
	if err != nil {
		return lead.UploadSummary{}, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return lead.UploadSummary{}, err
	}
	if err := w.Close(); err != nil {
		return lead.UploadSummary{}, err
	}

	u := c.baseURL + "/customers/upload-csv"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, &buf)
	if err != nil {
		return lead.UploadSummary{}, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return lead.UploadSummary{}, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if err := c.settle(resp.StatusCode, body, nil); err != nil {
		return lead.UploadSummary{}, err
	}
	return lead.NormalizeUpload(body), nil
}

// CSVTemplate downloads the import template as raw bytes.
func (c *Client) CSVTemplate(ctx context.Context) ([]byte, error) {
	u := c.baseURL + "/customers/csv-template"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.fail(resp.StatusCode, body)
	}
	return body, nil
}
