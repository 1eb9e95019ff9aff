package playback

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/badmusic/internal/models"
	"github.com/desertthunder/badmusic/internal/services"
	"github.com/desertthunder/badmusic/internal/shared"
)

const (
	countField         = "count"
	incrementProcedure = "increment"
)

// PlayCounter bumps a track's play count on the remote backend.
type PlayCounter struct {
	backend services.Backend
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewPlayCounter creates a counter that starts at most ratePerSec chains per second.
// A non-positive rate disables limiting.
func NewPlayCounter(backend services.Backend, ratePerSec float64, logger *log.Logger) *PlayCounter {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	limit := rate.Inf
	if ratePerSec > 0 {
		limit = rate.Limit(ratePerSec)
	}

	return &PlayCounter{
		backend: backend,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// Increment reads the count, asks the backend to increment it and writes the result back.
//
// A missing count is treated as zero. The first failing step aborts the chain
// and is logged; nothing is retried or rolled back.
func (p *PlayCounter) Increment(ctx context.Context, ref models.TrackRef) (int64, error) {
	logger := shared.WithLogger(p.logger, "track", ref.ID, "catalog", ref.Catalog.String(), "backend", p.backend.Name())

	n, err := p.increment(ctx, ref)
	if err != nil {
		logger.Error("play count increment failed", "error", err)
		return 0, err
	}

	logger.Debug("play count incremented", "count", n)
	return n, nil
}

func (p *PlayCounter) increment(ctx context.Context, ref models.TrackRef) (int64, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limit wait: %w", err)
	}

	table := ref.Catalog.Table()
	if table == "" {
		return 0, fmt.Errorf("%w: %d", shared.ErrUnknownCatalog, int(ref.Catalog))
	}

	current, err := p.backend.ReadField(ctx, table, ref.ID, countField)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", shared.ErrRemoteRead, err)
	}

	x, err := services.AsInt(current)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", shared.ErrRemoteRead, err)
	}

	result, err := p.backend.InvokeProcedure(ctx, incrementProcedure, map[string]any{"x": x})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", shared.ErrRemoteRPC, err)
	}

	next, err := services.AsInt(result)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", shared.ErrRemoteRPC, err)
	}

	if err := p.backend.UpdateField(ctx, table, ref.ID, countField, next); err != nil {
		return 0, fmt.Errorf("%w: %w", shared.ErrRemoteWrite, err)
	}

	return next, nil
}
