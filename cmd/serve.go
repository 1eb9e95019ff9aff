package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/badmusic/internal/catalog"
	"github.com/desertthunder/badmusic/internal/player"
	"github.com/desertthunder/badmusic/internal/server"
	"github.com/desertthunder/badmusic/internal/shared"
)

// Serve runs the coordinator behind the HTTP API until the process is interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	coord, err := r.coordinator(ctx)
	if err != nil {
		return err
	}
	defer coord.Shutdown()

	cache, err := catalog.NewCache(r.library.Catalogs(), r.config.Playback.CacheSize, nil)
	if err != nil {
		return fmt.Errorf("failed to create metadata cache: %w", err)
	}
	defer cache.Close()

	logger := shared.WithLogger(r.logger, "component", "api")
	api := server.NewAPI(coord, cache, r.urls(), player.NewWaveStore(), logger)
	router := server.NewAPIRouter(api, r.config.Server.RateLimit, logger)

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}
	srv := server.New(addr, router, logger)

	return runAll(ctx, coord.Run, srv.Run)
}

// runAll runs every fn until one returns, then cancels the rest and waits for
// all of them, so in-flight requests finish draining before Serve returns.
// Context cancellation is not reported as an error.
func runAll(ctx context.Context, fns ...func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error, len(fns))
	for _, fn := range fns {
		go func() { errs <- fn(ctx) }()
	}

	var first error
	for range fns {
		err := <-errs
		cancel()
		if first == nil && err != nil && !errors.Is(err, context.Canceled) {
			first = err
		}
	}
	return first
}
