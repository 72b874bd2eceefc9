// Package pocketbase is a small REST/JSON client for the PocketBase-style
// backend that owns the users and todos collections. The service
// authenticates once with a service account and then performs collection
// CRUD with filter-string queries on behalf of its handlers.
package pocketbase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// Error is the backend's error envelope
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend error %d: %s", e.Code, e.Message)
}

// Client talks to one PocketBase instance
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// NewClient creates a client for the backend at baseURL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

type authResponse struct {
	Token string `json:"token"`
}

// AuthWithPassword authenticates the service account against the given
// auth collection and stores the returned bearer token for later calls.
func (c *Client) AuthWithPassword(ctx context.Context, collection, identity, password string) error {
	body := map[string]string{
		"identity": identity,
		"password": password,
	}

	var resp authResponse
	path := fmt.Sprintf("/api/collections/%s/auth-with-password", collection)
	if err := c.do(ctx, http.MethodPost, path, nil, body, &resp); err != nil {
		return fmt.Errorf("service authentication failed: %w", err)
	}
	if resp.Token == "" {
		return errors.New("service authentication returned no token")
	}

	c.token = resp.Token
	return nil
}

type listResponse struct {
	Page       int             `json:"page"`
	PerPage    int             `json:"perPage"`
	TotalItems int             `json:"totalItems"`
	Items      json.RawMessage `json:"items"`
}

// ListRecords fetches records from a collection, optionally constrained
// by a PocketBase filter expression, and decodes the items into out
// (a pointer to a slice of record structs).
func (c *Client) ListRecords(ctx context.Context, collection, filter, sort string, perPage int, out any) error {
	query := url.Values{}
	if filter != "" {
		query.Set("filter", filter)
	}
	if sort != "" {
		query.Set("sort", sort)
	}
	if perPage > 0 {
		query.Set("perPage", fmt.Sprintf("%d", perPage))
	}

	var resp listResponse
	path := fmt.Sprintf("/api/collections/%s/records", collection)
	if err := c.do(ctx, http.MethodGet, path, query, nil, &resp); err != nil {
		return err
	}

	if err := json.Unmarshal(resp.Items, out); err != nil {
		return fmt.Errorf("failed to decode %s records: %w", collection, err)
	}
	return nil
}

// GetRecord fetches one record by ID
func (c *Client) GetRecord(ctx context.Context, collection, id string, out any) error {
	path := fmt.Sprintf("/api/collections/%s/records/%s", collection, url.PathEscape(id))
	return c.do(ctx, http.MethodGet, path, nil, nil, out)
}

// CreateRecord inserts a record and decodes the stored result into out
func (c *Client) CreateRecord(ctx context.Context, collection string, record, out any) error {
	path := fmt.Sprintf("/api/collections/%s/records", collection)
	return c.do(ctx, http.MethodPost, path, nil, record, out)
}

// UpdateRecord patches a record by ID and decodes the stored result into out
func (c *Client) UpdateRecord(ctx context.Context, collection, id string, record, out any) error {
	path := fmt.Sprintf("/api/collections/%s/records/%s", collection, url.PathEscape(id))
	return c.do(ctx, http.MethodPatch, path, nil, record, out)
}

// DeleteRecord removes a record by ID
func (c *Client) DeleteRecord(ctx context.Context, collection, id string) error {
	path := fmt.Sprintf("/api/collections/%s/records/%s", collection, url.PathEscape(id))
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Code: resp.StatusCode, Message: "request failed"}
		// Best effort: the envelope may be absent on proxy errors
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		apiErr.Code = resp.StatusCode
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode backend response: %w", err)
	}
	return nil
}

// escapeFilterValue makes a string safe for embedding in a filter
// expression such as `email = "..."`
func escapeFilterValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `"`, `\"`)
}
