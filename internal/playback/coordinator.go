package playback

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/badmusic/internal/models"
	"github.com/desertthunder/badmusic/internal/player"
	"github.com/desertthunder/badmusic/internal/shared"
)

// Request asks for ID to become the active track, with Queue as its next/previous context.
type Request struct {
	ID      string         `json:"id"`
	Queue   []string       `json:"queue"`
	Catalog models.Catalog `json:"catalog"`
}

// Ref returns the requested track tagged with its catalog.
func (r Request) Ref() models.TrackRef {
	return models.TrackRef{Catalog: r.Catalog, ID: r.ID}
}

// Coordinator turns bursts of play requests into at most one accepted request per cooldown window.
type Coordinator struct {
	store   *player.Store
	counter *PlayCounter
	logger  *log.Logger

	debounceWindow time.Duration
	cooldownWindow time.Duration
	clock          func() time.Time
	onAccept       func(time.Time, Request)

	mu       sync.Mutex
	debounce *Debouncer[Request]
	cooldown *Cooldown[Request]

	requests chan Request
	done     chan struct{}
	closer   sync.Once

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithDebounce sets the idle time required before a request moves on.
func WithDebounce(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.debounceWindow = d
		}
	}
}

// WithCooldown sets the minimum spacing between accepted requests.
func WithCooldown(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.cooldownWindow = d
		}
	}
}

// WithLogger sets the coordinator's logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock replaces time.Now for [Coordinator.Run].
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.clock = now
		}
	}
}

// OnAccept registers a hook called inside the serialized step after the store is updated.
func OnAccept(fn func(at time.Time, req Request)) Option {
	return func(c *Coordinator) {
		c.onAccept = fn
	}
}

// NewCoordinator creates a coordinator writing to store. A nil counter skips play counting.
func NewCoordinator(store *player.Store, counter *PlayCounter, opts ...Option) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Coordinator{
		store:          store,
		counter:        counter,
		logger:         log.New(io.Discard),
		debounceWindow: DefaultDebounce,
		cooldownWindow: DefaultCooldown,
		clock:          time.Now,
		requests:       make(chan Request, 64),
		done:           make(chan struct{}),
		ctx:            ctx,
		cancel:         cancel,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.debounce = NewDebouncer[Request](c.debounceWindow)
	c.cooldown = NewCooldown[Request](c.cooldownWindow)
	return c
}

// Store returns the player store the coordinator writes to.
func (c *Coordinator) Store() *player.Store { return c.store }

// RequestPlay queues a request for the running coordinator.
func (c *Coordinator) RequestPlay(ctx context.Context, id string, queue []string, catalog models.Catalog) error {
	req, err := newRequest(id, queue, catalog)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return shared.ErrClosed
	default:
	}

	select {
	case c.requests <- req:
		return nil
	case <-c.done:
		return shared.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func newRequest(id string, queue []string, catalog models.Catalog) (Request, error) {
	if id == "" {
		return Request{}, fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}
	if !catalog.Valid() {
		return Request{}, fmt.Errorf("%w: %d", shared.ErrUnknownCatalog, int(catalog))
	}
	return Request{ID: id, Queue: slices.Clone(queue), Catalog: catalog}, nil
}

// Run serializes queued requests and timer expirations until ctx is cancelled or Close is called.
//
// Cancelling ctx also cancels in-flight play count increments.
func (c *Coordinator) Run(ctx context.Context) error {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		if deadline, ok := c.NextDeadline(); ok {
			timer.Reset(max(deadline.Sub(c.clock()), 0))
		} else {
			timer.Stop()
		}

		select {
		case <-ctx.Done():
			c.cancel()
			return ctx.Err()
		case <-c.done:
			return nil
		case req := <-c.requests:
			c.Submit(c.clock(), req)
		case <-timer.C:
			c.Advance(c.clock())
		}
	}
}

// Submit feeds a request into the debounce stage at the given time.
func (c *Coordinator) Submit(now time.Time, req Request) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger.Debug("play requested", "track", req.ID, "catalog", req.Catalog.String())
	c.debounce.Push(now, req)
}

// Advance fires every stage whose deadline is at or before now.
//
// The debounce stage fires first so a request arriving together with the end of
// a cooldown overwrites the pending slot before it is replayed.
func (c *Coordinator) Advance(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if req, ok := c.debounce.Fire(now); ok {
		c.offer(now, req)
	}
	if req, ok := c.cooldown.Release(now); ok {
		c.offer(now, req)
	}
}

// NextDeadline reports the earliest time at which Advance has work to do.
func (c *Coordinator) NextDeadline() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	d, dok := c.debounce.Deadline()
	cd, cok := c.cooldown.Deadline()
	switch {
	case dok && cok:
		if cd.Before(d) {
			return cd, true
		}
		return d, true
	case dok:
		return d, true
	case cok:
		return cd, true
	default:
		return time.Time{}, false
	}
}

// Pending returns the request parked in the cooldown slot, if any.
func (c *Coordinator) Pending() (Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cooldown.Pending()
}

func (c *Coordinator) offer(now time.Time, req Request) {
	if !c.cooldown.Offer(now, req) {
		c.logger.Debug("play request pending", "track", req.ID)
		return
	}
	c.accept(now, req)
}

// accept loads the track into the store in one mutation and starts the play count increment.
func (c *Coordinator) accept(now time.Time, req Request) {
	if err := c.store.Load(req.ID, req.Queue, req.Catalog); err != nil {
		c.logger.Warn("loading accepted track failed", "track", req.ID, "error", err)
	}

	c.logger.Info("play accepted", "track", req.ID, "catalog", req.Catalog.String())

	if c.onAccept != nil {
		c.onAccept(now, req)
	}

	if c.counter == nil {
		return
	}

	c.wg.Add(1)
	go func(ref models.TrackRef) {
		defer c.wg.Done()
		_, _ = c.counter.Increment(c.ctx, ref)
	}(req.Ref())
}

// Wait blocks until every started play count increment has finished.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Close stops Run and rejects further requests. In-flight increments keep running; use Wait.
func (c *Coordinator) Close() {
	c.closer.Do(func() { close(c.done) })
}

// Shutdown closes the coordinator, cancels in-flight increments and waits for them.
func (c *Coordinator) Shutdown() {
	c.Close()
	c.cancel()
	c.wg.Wait()
}
