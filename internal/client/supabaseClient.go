package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"meet-and-greet/internal/config"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SupabaseClient talks to the PostgREST endpoint of a Supabase project.
type SupabaseClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// SupabaseError is a non-2xx PostgREST answer.
type SupabaseError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details"`
	Hint       string `json:"hint"`
}

func (e *SupabaseError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("supabase status %d", e.StatusCode)
}

func NewSupabaseClient(cfg *config.Supabase, httpClient *http.Client) (*SupabaseClient, error) {
	if cfg.URL == "" {
		return nil, errors.New("supabase url is required")
	}
	if cfg.ServiceKey == "" {
		return nil, errors.New("supabase service role key is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 30 * time.Second,
		}
	}
	return &SupabaseClient{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.ServiceKey,
	}, nil
}

// From starts a request against one table.
func (c *SupabaseClient) From(table string) *SupabaseQuery {
	return &SupabaseQuery{client: c, table: table, params: url.Values{}}
}

type SupabaseQuery struct {
	client *SupabaseClient
	table  string
	params url.Values
}

func (q *SupabaseQuery) Eq(column string, value string) *SupabaseQuery {
	q.params.Add(column, "eq."+value)
	return q
}

func (q *SupabaseQuery) In(column string, values []string) *SupabaseQuery {
	q.params.Add(column, "in.("+strings.Join(values, ",")+")")
	return q
}

func (q *SupabaseQuery) Order(column string, ascending bool) *SupabaseQuery {
	dir := "asc"
	if !ascending {
		dir = "desc"
	}
	q.params.Set("order", column+"."+dir)
	return q
}

// Select runs a GET and decodes the returned rows into out.
func (q *SupabaseQuery) Select(ctx context.Context, columns string, out interface{}) error {
	if columns != "" {
		q.params.Set("select", columns)
	}
	req, err := q.newRequest(ctx, http.MethodGet, nil)
	if err != nil {
		return err
	}
	return q.client.do(req, out)
}

// Insert posts rows and decodes the stored representation into out.
func (q *SupabaseQuery) Insert(ctx context.Context, rows interface{}, out interface{}) error {
	req, err := q.newRequest(ctx, http.MethodPost, rows)
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", "return=representation")
	return q.client.do(req, out)
}

// Update patches every row matching the filters and decodes the updated rows into out.
func (q *SupabaseQuery) Update(ctx context.Context, patch interface{}, out interface{}) error {
	if len(q.params) == 0 {
		return errors.New("refusing to update without a filter")
	}
	req, err := q.newRequest(ctx, http.MethodPatch, patch)
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", "return=representation")
	return q.client.do(req, out)
}

func (q *SupabaseQuery) newRequest(ctx context.Context, method string, payload interface{}) (*http.Request, error) {
	reqURL := fmt.Sprintf("%s/rest/v1/%s", q.client.baseURL, q.table)
	if len(q.params) > 0 {
		reqURL += "?" + q.params.Encode()
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal req payload: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("apikey", q.client.apiKey)
	req.Header.Set("Authorization", "Bearer "+q.client.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *SupabaseClient) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &SupabaseError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(body, apiErr)
		return apiErr
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode supabase response: %w", err)
	}
	return nil
}
