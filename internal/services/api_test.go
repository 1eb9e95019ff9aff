package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/badmusic/internal/shared"
	tu "github.com/desertthunder/badmusic/internal/testing"
)

func TestRESTBackend(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			customClient := &http.Client{}
			b := NewRESTBackend("http://example.com", "key", customClient)

			if b.baseURL != "http://example.com" {
				t.Errorf("expected baseURL 'http://example.com', got %s", b.baseURL)
			}
			if b.httpClient != customClient {
				t.Error("expected custom client to be used")
			}
		})

		t.Run("With Empty BaseURL and Nil Client", func(t *testing.T) {
			b := NewRESTBackend("", "", nil)

			if b.baseURL != "http://127.0.0.1:54321" {
				t.Errorf("expected default baseURL, got %s", b.baseURL)
			}
			if b.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})
	})

	t.Run("ReadField", func(t *testing.T) {
		t.Run("Returns Column Value", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET method, got %s", r.Method)
				}
				if r.URL.Path != "/rest/v1/suno_songs" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				if got := r.URL.Query().Get("id"); got != "eq.abc" {
					t.Errorf("expected id filter eq.abc, got %s", got)
				}
				if got := r.URL.Query().Get("select"); got != "count" {
					t.Errorf("expected select=count, got %s", got)
				}
				if r.Header.Get("apikey") != "anon" || r.Header.Get("Authorization") != "Bearer anon" {
					t.Errorf("missing auth headers: %v", r.Header)
				}

				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode([]map[string]any{{"count": 12}})
			}))
			defer server.Close()

			b := NewRESTBackend(server.URL, "anon", nil)
			v, err := b.ReadField(context.Background(), "suno_songs", "abc", "count")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if n, _ := AsInt(v); n != 12 {
				t.Errorf("expected 12, got %v", v)
			}
		})

		t.Run("Null Column", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[{"count": null}]`))
			}))
			defer server.Close()

			v, err := NewRESTBackend(server.URL, "", nil).ReadField(context.Background(), "songs", "a", "count")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if v != nil {
				t.Errorf("expected nil value, got %v", v)
			}
		})

		t.Run("Missing Row", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[]`))
			}))
			defer server.Close()

			_, err := NewRESTBackend(server.URL, "", nil).ReadField(context.Background(), "songs", "nope", "count")
			if !errors.Is(err, shared.ErrTrackNotFound) {
				t.Errorf("expected ErrTrackNotFound, got %v", err)
			}
		})

		t.Run("Server Error", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			}))
			defer server.Close()

			_, err := NewRESTBackend(server.URL, "", nil).ReadField(context.Background(), "songs", "a", "count")
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("Invalid Identifier", func(t *testing.T) {
			_, err := NewRESTBackend("http://example.com", "", nil).ReadField(context.Background(), "songs", "a", "count;drop")
			if !errors.Is(err, shared.ErrInvalidField) {
				t.Errorf("expected ErrInvalidField, got %v", err)
			}
		})
	})

	t.Run("InvokeProcedure", func(t *testing.T) {
		t.Run("Posts Arguments", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/rest/v1/rpc/increment" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				var args map[string]any
				if err := json.NewDecoder(r.Body).Decode(&args); err != nil {
					t.Fatalf("failed to decode body: %v", err)
				}
				x, _ := AsInt(args["x"])
				json.NewEncoder(w).Encode(x + 1)
			}))
			defer server.Close()

			v, err := NewRESTBackend(server.URL, "", nil).InvokeProcedure(context.Background(), "increment", map[string]any{"x": 4})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if n, _ := AsInt(v); n != 5 {
				t.Errorf("expected 5, got %v", v)
			}
		})

		t.Run("Unknown Procedure", func(t *testing.T) {
			server := httptest.NewServer(http.NotFoundHandler())
			defer server.Close()

			_, err := NewRESTBackend(server.URL, "", nil).InvokeProcedure(context.Background(), "missing", nil)
			if !errors.Is(err, shared.ErrUnknownProcedure) {
				t.Errorf("expected ErrUnknownProcedure, got %v", err)
			}
		})

		t.Run("Non-JSON Result", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("plain text response"))
			}))
			defer server.Close()

			_, err := NewRESTBackend(server.URL, "", nil).InvokeProcedure(context.Background(), "increment", nil)
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})
	})

	t.Run("UpdateField", func(t *testing.T) {
		t.Run("Patches Row", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPatch {
					t.Errorf("expected PATCH, got %s", r.Method)
				}
				if r.URL.Query().Get("id") != "eq.abc" {
					t.Errorf("unexpected filter %s", r.URL.RawQuery)
				}
				if r.Header.Get("Prefer") != "return=minimal" {
					t.Errorf("expected Prefer header")
				}
				body, _ := io.ReadAll(r.Body)
				if string(body) != `{"count":6}` {
					t.Errorf("unexpected body %s", body)
				}
				w.WriteHeader(http.StatusNoContent)
			}))
			defer server.Close()

			if err := NewRESTBackend(server.URL, "", nil).UpdateField(context.Background(), "songs", "abc", "count", 6); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("Rejected Update", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "forbidden", http.StatusForbidden)
			}))
			defer server.Close()

			err := NewRESTBackend(server.URL, "", nil).UpdateField(context.Background(), "songs", "abc", "count", 6)
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})
	})

	t.Run("Transport Failures", func(t *testing.T) {
		t.Run("Failed Request Creation", func(t *testing.T) {
			b := NewRESTBackend("http://example.com\x00", "", nil)
			_, err := b.ReadField(context.Background(), "songs", "a", "count")
			if err == nil || !strings.Contains(err.Error(), "failed to create request") {
				t.Errorf("expected 'failed to create request' error, got %v", err)
			}
		})

		t.Run("Failed HTTP Request", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed")),
			}

			_, err := NewRESTBackend("http://example.com", "", client).ReadField(context.Background(), "songs", "a", "count")
			if err == nil || !strings.Contains(err.Error(), "request failed") {
				t.Errorf("expected 'request failed' error, got %v", err)
			}
		})

		t.Run("Failed Response Body Read", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     http.Header{},
				}, nil),
			}

			_, err := NewRESTBackend("http://example.com", "", client).InvokeProcedure(context.Background(), "increment", nil)
			if err == nil || !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected 'failed to read response' error, got %v", err)
			}
		})
	})
}
