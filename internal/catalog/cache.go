package catalog

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/desertthunder/badmusic/internal/models"
)

const (
	DefaultCacheSize = 256
	fetchTimeout     = 10 * time.Second
)

// RefResolver is satisfied by [Catalogs].
type RefResolver interface {
	Resolve(ctx context.Context, ref models.TrackRef) (*TrackMetadata, error)
}

// NotifyFunc is called after a background fetch finishes.
type NotifyFunc func(ref models.TrackRef, meta *TrackMetadata, err error)

// Cache memoizes resolved metadata.
//
// Lookup never blocks: a miss starts one background fetch per ref and
// returns immediately. Failed fetches are not cached and not retried.
type Cache struct {
	resolver RefResolver
	entries  *lru.Cache[models.TrackRef, *TrackMetadata]
	group    singleflight.Group
	notify   NotifyFunc

	ctx    context.Context
	cancel context.CancelFunc
}

// NewCache wraps r with an LRU of the given size.
func NewCache(r RefResolver, size int, notify NotifyFunc) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}

	entries, err := lru.New[models.TrackRef, *TrackMetadata](size)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Cache{
		resolver: r,
		entries:  entries,
		notify:   notify,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Lookup returns cached metadata, or starts a background fetch and reports a miss.
func (c *Cache) Lookup(ref models.TrackRef) (*TrackMetadata, bool) {
	if meta, ok := c.entries.Get(ref); ok {
		return meta, true
	}
	if ref.IsZero() {
		return nil, false
	}

	go func() {
		meta, err := c.fetch(c.ctx, ref)
		if c.notify != nil {
			c.notify(ref, meta, err)
		}
	}()

	return nil, false
}

// Get returns metadata for ref, fetching it if needed.
func (c *Cache) Get(ctx context.Context, ref models.TrackRef) (*TrackMetadata, error) {
	if meta, ok := c.entries.Get(ref); ok {
		return meta, nil
	}

	return c.fetch(ctx, ref)
}

// Invalidate drops ref so the next lookup refetches it.
func (c *Cache) Invalidate(ref models.TrackRef) {
	c.entries.Remove(ref)
}

// Len reports the number of cached entries.
func (c *Cache) Len() int { return c.entries.Len() }

// Close cancels background fetches.
func (c *Cache) Close() { c.cancel() }

// fetch resolves ref once for all concurrent callers.
//
// The shared resolve runs under the cache's own context so one caller giving
// up does not fail the others; each caller only stops waiting on its own ctx.
func (c *Cache) fetch(ctx context.Context, ref models.TrackRef) (*TrackMetadata, error) {
	ch := c.group.DoChan(ref.String(), func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(c.ctx, fetchTimeout)
		defer cancel()

		meta, err := c.resolver.Resolve(fetchCtx, ref)
		if err != nil {
			return nil, err
		}
		c.entries.Add(ref, meta)
		return meta, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*TrackMetadata), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
