// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/badmusic/internal/shared"
)

// MockBackend is an in-memory test double for [services.Backend].
//
// Rows are keyed by table and id. The Err fields make the matching step fail.
type MockBackend struct {
	mu    sync.Mutex
	rows  map[string]map[string]any
	calls []string

	ReadErr  error
	RPCErr   error
	WriteErr error
	// Delay is applied before every call, honoring context cancellation.
	Delay time.Duration
}

// NewMockBackend creates an empty MockBackend.
func NewMockBackend() *MockBackend {
	return &MockBackend{rows: map[string]map[string]any{}}
}

// Set stores value under table/id/field, creating the row if needed.
func (m *MockBackend) Set(table, id, field string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := table + "/" + id
	if m.rows[key] == nil {
		m.rows[key] = map[string]any{}
	}
	m.rows[key][field] = value
}

// Get returns the stored value for table/id/field.
func (m *MockBackend) Get(table, id, field string) any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[table+"/"+id][field]
}

// Calls returns the recorded call log, e.g. "read suno_songs/a.count".
func (m *MockBackend) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

func (m *MockBackend) record(ctx context.Context, call string) error {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
	return nil
}

func (m *MockBackend) ReadField(ctx context.Context, table, id, field string) (any, error) {
	if err := m.record(ctx, fmt.Sprintf("read %s/%s.%s", table, id, field)); err != nil {
		return nil, err
	}
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[table+"/"+id]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", shared.ErrTrackNotFound, table, id)
	}
	return row[field], nil
}

func (m *MockBackend) InvokeProcedure(ctx context.Context, name string, args map[string]any) (any, error) {
	if err := m.record(ctx, fmt.Sprintf("rpc %s(%v)", name, args["x"])); err != nil {
		return nil, err
	}
	if m.RPCErr != nil {
		return nil, m.RPCErr
	}
	if name != "increment" {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnknownProcedure, name)
	}

	x, _ := args["x"].(int64)
	return x + 1, nil
}

func (m *MockBackend) UpdateField(ctx context.Context, table, id, field string, value any) error {
	if err := m.record(ctx, fmt.Sprintf("write %s/%s.%s=%v", table, id, field, value)); err != nil {
		return err
	}
	if m.WriteErr != nil {
		return m.WriteErr
	}

	m.Set(table, id, field, value)
	return nil
}

func (m *MockBackend) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// AssertFileExists fails the test when path is missing.
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

// MustReadFile returns the file's contents or fails the test.
func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
