// package services defines interface Backend for the hosted data service
//
// REST (PostgREST dialect), Postgres
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/desertthunder/badmusic/internal/shared"
)

// Backend is the opaque remote data service.
type Backend interface {
	// ReadField returns the value of field for the row with the given id.
	// A NULL column yields a nil value; a missing row yields [shared.ErrTrackNotFound].
	ReadField(ctx context.Context, table, id, field string) (any, error)

	// InvokeProcedure calls a named remote procedure with named arguments and returns its result.
	InvokeProcedure(ctx context.Context, name string, args map[string]any) (any, error)

	// UpdateField sets field to value on the row with the given id.
	UpdateField(ctx context.Context, table, id, field string, value any) error

	// Name identifies the backend in logs
	Name() string
}

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidIdentifier reports whether s is safe to splice into a query as a table, column or function name.
func ValidIdentifier(s string) bool {
	return identPattern.MatchString(s)
}

// CheckIdentifiers returns [shared.ErrInvalidField] for the first unsafe name.
func CheckIdentifiers(names ...string) error {
	for _, n := range names {
		if !ValidIdentifier(n) {
			return fmt.Errorf("%w: %q", shared.ErrInvalidField, n)
		}
	}
	return nil
}

// AsInt converts a value returned by a backend into an int64.
//
// nil counts as zero, matching how an unset play count is treated.
func AsInt(v any) (int64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%w: non-integer value %v", shared.ErrInvalidInput, n)
		}
		return int64(n), nil
	case json.Number:
		return n.Int64()
	case string:
		return strconv.ParseInt(n, 10, 64)
	case []byte:
		return strconv.ParseInt(string(n), 10, 64)
	default:
		return 0, fmt.Errorf("%w: unexpected %T", shared.ErrInvalidInput, v)
	}
}
