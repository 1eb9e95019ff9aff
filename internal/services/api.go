// REST backend for hosted Postgres deployments (PostgREST dialect)
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/desertthunder/badmusic/internal/shared"
)

// RESTBackend implements [Backend] over HTTP.
type RESTBackend struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ Backend = (*RESTBackend)(nil)

// NewRESTBackend creates a backend for the service at baseURL authenticated with apiKey.
func NewRESTBackend(baseURL, apiKey string, client *http.Client) *RESTBackend {
	if baseURL == "" {
		baseURL = "http://127.0.0.1:54321"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &RESTBackend{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: client,
	}
}

// Name identifies the backend in logs
func (b *RESTBackend) Name() string { return "rest" }

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports a 2xx status.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ReadField performs GET /rest/v1/{table}?id=eq.{id}&select={field}.
func (b *RESTBackend) ReadField(ctx context.Context, table, id, field string) (any, error) {
	if err := CheckIdentifiers(table, field); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("id", "eq."+id)
	q.Set("select", field)

	resp, err := b.do(ctx, http.MethodGet, "/rest/v1/"+table+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: %s %d: %s", shared.ErrAPIRequest, table, resp.StatusCode, string(resp.Body))
	}

	var rows []map[string]any
	if err := json.Unmarshal(resp.Body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s %s", shared.ErrTrackNotFound, table, id)
	}
	return rows[0][field], nil
}

// InvokeProcedure performs POST /rest/v1/rpc/{name} with args as the JSON body.
func (b *RESTBackend) InvokeProcedure(ctx context.Context, name string, args map[string]any) (any, error) {
	if err := CheckIdentifiers(name); err != nil {
		return nil, err
	}

	body, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to encode arguments: %w", err)
	}

	resp, err := b.do(ctx, http.MethodPost, "/rest/v1/rpc/"+name, body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnknownProcedure, name)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: rpc %s %d: %s", shared.ErrAPIRequest, name, resp.StatusCode, string(resp.Body))
	}
	if !resp.IsJSON {
		return nil, fmt.Errorf("%w: rpc %s returned non-JSON body", shared.ErrAPIRequest, name)
	}
	return resp.JSONData, nil
}

// UpdateField performs PATCH /rest/v1/{table}?id=eq.{id} with {field: value}.
func (b *RESTBackend) UpdateField(ctx context.Context, table, id, field string, value any) error {
	if err := CheckIdentifiers(table, field); err != nil {
		return err
	}

	body, err := json.Marshal(map[string]any{field: value})
	if err != nil {
		return fmt.Errorf("failed to encode update: %w", err)
	}

	q := url.Values{}
	q.Set("id", "eq."+id)

	resp, err := b.do(ctx, http.MethodPatch, "/rest/v1/"+table+"?"+q.Encode(), body)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("%w: update %s %d: %s", shared.ErrAPIRequest, table, resp.StatusCode, string(resp.Body))
	}
	return nil
}

// do sends a request and returns the raw response, decoding JSON bodies when possible.
func (b *RESTBackend) do(ctx context.Context, method, path string, data []byte) (*APIResponse, error) {
	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPatch {
		req.Header.Set("Prefer", "return=minimal")
	}
	if b.apiKey != "" {
		req.Header.Set("apikey", b.apiKey)
		req.Header.Set("Authorization", "Bearer "+b.apiKey)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       raw,
	}

	var jsonData any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &jsonData); err == nil {
			apiResp.IsJSON = true
			apiResp.JSONData = jsonData
		}
	}

	return apiResp, nil
}
