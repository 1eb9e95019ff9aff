package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/badmusic/internal/catalog"
	"github.com/desertthunder/badmusic/internal/models"
	"github.com/desertthunder/badmusic/internal/playback"
	"github.com/desertthunder/badmusic/internal/player"
	"github.com/desertthunder/badmusic/internal/shared"
)

const settleMargin = 100 * time.Millisecond

// AcceptedPlay records one request that made it through debounce and cooldown.
type AcceptedPlay struct {
	ID      string `json:"id"`
	AfterMS int64  `json:"after_ms"`
}

// PlayResult is printed by the play command once the pipeline settles.
type PlayResult struct {
	Requested []string               `json:"requested"`
	Accepted  []AcceptedPlay         `json:"accepted"`
	State     player.State           `json:"state"`
	Track     *catalog.TrackMetadata `json:"track,omitempty"`
}

// Play feeds each id to a live coordinator, waits for every timer and play count
// increment to finish, then prints which requests were accepted and the final state.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one song id is required", shared.ErrMissingArgument)
	}

	c, err := models.ParseCatalog(cmd.String("catalog"))
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	var (
		mu       sync.Mutex
		accepted []AcceptedPlay
		start    = time.Now()
	)
	coord, err := r.coordinator(ctx, playback.OnAccept(func(at time.Time, req playback.Request) {
		mu.Lock()
		defer mu.Unlock()
		accepted = append(accepted, AcceptedPlay{ID: req.ID, AfterMS: at.Sub(start).Milliseconds()})
	}))
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- coord.Run(runCtx) }()

	gap := cmd.Duration("gap")
	for i, id := range ids {
		if i > 0 && gap > 0 {
			if err := sleep(ctx, gap); err != nil {
				coord.Shutdown()
				return err
			}
		}
		if err := coord.RequestPlay(ctx, id, ids, c); err != nil {
			coord.Shutdown()
			return err
		}
	}

	if err := r.settle(ctx, coord); err != nil {
		coord.Shutdown()
		return err
	}

	coord.Close()
	if err := <-done; err != nil {
		return err
	}
	coord.Wait()

	mu.Lock()
	result := PlayResult{Requested: ids, Accepted: accepted, State: coord.Store().Snapshot()}
	mu.Unlock()

	if ref := result.State.ActiveRef(); !ref.IsZero() {
		meta, err := r.library.Catalogs().Resolve(ctx, ref)
		if err != nil {
			r.logger.Warn("failed to resolve active track", "ref", ref, "error", err)
		}
		result.Track = meta
	}

	return r.writeJSON(result, cmd.Bool("pretty"))
}

// settle waits out both windows after the last request, then until no stage has a deadline.
func (r *Runner) settle(ctx context.Context, coord *playback.Coordinator) error {
	pc := r.config.Playback
	if err := sleep(ctx, pc.Debounce()+pc.Cooldown()+settleMargin); err != nil {
		return err
	}

	for {
		deadline, ok := coord.NextDeadline()
		if !ok {
			return nil
		}
		if err := sleep(ctx, max(time.Until(deadline), 0)+settleMargin); err != nil {
			return err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
