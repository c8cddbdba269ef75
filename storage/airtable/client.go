package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shakhna/portal/core"
)

const (
	apiRoot = "https://api.airtable.com/v0"

	// The store caps list responses; only the first page is ever requested.
	// Callers must tolerate truncation.
	pageSize = 100
)

type (
	// Record is the store's record shape: an opaque id plus a field map.
	Record struct {
		ID          string                 `json:"id"`
		Fields      map[string]interface{} `json:"fields"`
		CreatedTime time.Time              `json:"createdTime,omitempty"`
	}

	listEnvelope struct {
		Records []Record `json:"records"`
	}

	errorEnvelope struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}

	// Client talks to one base of the hosted tabular store. No timeouts and no
	// retries: a failed call is terminal for its operation.
	Client struct {
		BaseURL    string
		Token      string
		HTTPClient *http.Client
	}
)

// ReadError is a non-success list/get status.
type ReadError struct {
	Table  string
	Status int
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("%s: list error [%d]", e.Table, e.Status)
}

// WriteError is a non-success create/update status, carrying the store's
// message (missing required field, malformed link, ...).
type WriteError struct {
	Table   string
	Status  int
	Message string
}

func (e *WriteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: write error [%d]", e.Table, e.Status)
	}
	return fmt.Sprintf("%s: write error [%d]: %s", e.Table, e.Status, e.Message)
}

func NewClient(baseID, token string) *Client {
	return &Client{
		BaseURL:    apiRoot + "/" + baseID,
		Token:      token,
		HTTPClient: http.DefaultClient,
	}
}

// List returns the first page of a table's records, optionally restricted by a
// filter formula (see formula.go for safe construction).
func (c *Client) List(ctx context.Context, table, filter string) ([]Record, error) {
	u := c.tableURL(table) + "?pageSize=" + fmt.Sprint(pageSize)
	if filter != "" {
		u += "&filterByFormula=" + url.QueryEscape(filter)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if !success(res.StatusCode) {
		return nil, &ReadError{Table: table, Status: res.StatusCode}
	}
	var env listEnvelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return nil, err
	}
	return env.Records, nil
}

// Get fetches a single record by id.
func (c *Client) Get(ctx context.Context, table, id string) (Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.tableURL(table)+"/"+url.PathEscape(id), nil)
	if err != nil {
		return Record{}, err
	}
	res, err := c.do(req)
	if err != nil {
		return Record{}, err
	}
	defer res.Body.Close()

	if !success(res.StatusCode) {
		return Record{}, &ReadError{Table: table, Status: res.StatusCode}
	}
	var rec Record
	if err := json.NewDecoder(res.Body).Decode(&rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Create writes a new record; the store expects {"fields": {...}}.
func (c *Client) Create(ctx context.Context, table string, fields map[string]interface{}) (Record, error) {
	return c.write(ctx, http.MethodPost, table, c.tableURL(table), fields)
}

// Update patches an existing record's fields.
func (c *Client) Update(ctx context.Context, table, id string, fields map[string]interface{}) (Record, error) {
	return c.write(ctx, http.MethodPatch, table, c.tableURL(table)+"/"+url.PathEscape(id), fields)
}

func (c *Client) write(ctx context.Context, method, table, u string, fields map[string]interface{}) (Record, error) {
	body, err := json.Marshal(map[string]interface{}{"fields": fields})
	if err != nil {
		return Record{}, err
	}
	req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(body))
	if err != nil {
		return Record{}, err
	}
	res, err := c.do(req)
	if err != nil {
		return Record{}, err
	}
	defer res.Body.Close()

	if !success(res.StatusCode) {
		var env errorEnvelope
		_ = json.NewDecoder(res.Body).Decode(&env) // message is best-effort
		return Record{}, &WriteError{Table: table, Status: res.StatusCode, Message: env.Error.Message}
	}
	var rec Record
	if err := json.NewDecoder(res.Body).Decode(&rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Content-Type", "application/json")
	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	// a rejected token is a deployment fault no retry can fix
	if res.StatusCode == http.StatusUnauthorized {
		res.Body.Close()
		return nil, core.NewShutdownError("store token rejected")
	}
	return res, nil
}

func (c *Client) tableURL(table string) string {
	return c.BaseURL + "/" + url.PathEscape(table)
}

func success(status int) bool {
	return status >= 200 && status < 300
}
