// Package moses is the HTTP client for the internal analytics query
// service. It sends one FQL query per call and returns the loosely
// typed "rows" array of the response.
package moses

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mrankitsharma08/FQL/internal/domain/models"
)

// DefaultTimeout bounds a single query round-trip.
const DefaultTimeout = 30 * time.Second

// Fetcher issues one query against the analytics service.
//
// Implementations must return a non-nil error for every failure mode
// (transport error, timeout, non-2xx status, non-JSON body, missing
// "rows" key) so callers can distinguish "fetch failed" from "fetch
// succeeded with zero rows". The pipeline decides whether to degrade
// a failure to an empty row set; the client never does.
type Fetcher interface {
	FetchRows(ctx context.Context, query string, cookie string) ([]models.RawRow, error)
}

// Client is the production Fetcher, bound to a single fixed endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient builds a Client for the given endpoint URL. A
// non-positive timeout falls back to DefaultTimeout.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

// queryRequest is the wire format of a query call. Extrapolation is
// always disabled so that returned sums are exact, not sampled.
type queryRequest struct {
	Query             string `json:"query"`
	ExtrapolationFlag bool   `json:"extrapolationFlag"`
}

// FetchRows posts the query with the caller's session cookie and
// returns the decoded rows. No retry is performed; the context and
// the client timeout bound the call.
func (c *Client) FetchRows(ctx context.Context, query string, cookie string) ([]models.RawRow, error) {
	body, err := json.Marshal(queryRequest{Query: query, ExtrapolationFlag: false})
	if err != nil {
		return nil, fmt.Errorf("marshal query request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query analytics service: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("analytics service returned status %d", res.StatusCode)
	}

	var payload struct {
		Rows json.RawMessage `json:"rows"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response body: %w", err)
	}
	if payload.Rows == nil {
		return nil, fmt.Errorf("response has no rows field")
	}

	var rows []models.RawRow
	if err := json.Unmarshal(payload.Rows, &rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return rows, nil
}
