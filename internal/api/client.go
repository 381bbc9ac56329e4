// Package api is the REST client for the lead-scoring backend. Every
// response arrives in a {success, message, data} envelope; data is
// decoded into the normalized types of internal/lead.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/salesops/leadscope/internal/logger"
)

// Error carries the HTTP status and the best human-readable message
// for a failed request: the backend's message when it sent one, a
// generic fallback otherwise.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// Client talks to the backend. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	log     *logger.Logger

	mu    sync.RWMutex
	token string
	on401 func()
}

// New builds a client for the given base URL (trailing slash
// tolerated) with the given request timeout.
func New(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// SetToken installs the bearer token attached to every request. An
// empty token means unauthenticated.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// OnUnauthorized registers the hook run when any request comes back
// 401. The client clears its own token first.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	c.on401 = fn
	c.mu.Unlock()
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// get issues a GET with exponential-backoff retry on network errors
// and 5xx responses. GETs are idempotent so retrying is safe.
func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	log := c.log.WithRequest(http.MethodGet, u)

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = c.http.Timeout
	bo.InitialInterval = 200 * time.Millisecond

	var lastErr error
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			lastErr = err
			return backoff.Permanent(err)
		}
		c.authorize(req)
		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			return err
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)

		if resp.StatusCode >= 500 {
			lastErr = c.fail(resp.StatusCode, body)
			return lastErr
		}
		if err := c.settle(resp.StatusCode, body, out); err != nil {
			lastErr = err
			return backoff.Permanent(err)
		}
		return nil
	}
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		log.WithError(lastErr).Warn("request failed")
		return lastErr
	}
	log.Debug("request ok")
	return nil
}

// send issues a non-idempotent request (POST/PUT/DELETE) exactly once.
func (c *Client) send(ctx context.Context, method, path string, payload, out interface{}) error {
	u := c.baseURL + path
	log := c.log.WithRequest(method, u)

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).Warn("request failed")
		return err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if err := c.settle(resp.StatusCode, data, out); err != nil {
		log.WithError(err).Warn("request failed")
		return err
	}
	log.Debug("request ok")
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// settle turns a terminal response into either decoded data or an
// *Error. A 401 clears the token and fires the logout hook.
func (c *Client) settle(status int, body []byte, out interface{}) error {
	if status == http.StatusUnauthorized {
		c.mu.Lock()
		c.token = ""
		hook := c.on401
		c.mu.Unlock()
		if hook != nil {
			hook()
		}
		return c.fail(status, body)
	}
	if status < 200 || status >= 300 {
		return c.fail(status, body)
	}
	if out == nil {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &Error{Status: status, Message: "unexpected response from server"}
	}
	if env.Data == nil {
		// Some endpoints answer without the envelope.
		return json.Unmarshal(body, out)
	}
	return json.Unmarshal(env.Data, out)
}

func (c *Client) fail(status int, body []byte) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil {
		if env.Message != "" {
			return &Error{Status: status, Message: env.Message}
		}
		if env.Error != "" {
			return &Error{Status: status, Message: env.Error}
		}
	}
	return &Error{Status: status, Message: fmt.Sprintf("request failed with status %d", status)}
}
