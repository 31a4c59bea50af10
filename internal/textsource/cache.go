package textsource

import (
	"context"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cached memoizes extracted text per path so N configurations against one
// document read or convert it once. Only successful extractions are cached.
type Cached struct {
	inner  Source
	cache  *gocache.Cache
	logger *slog.Logger
}

func NewCached(inner Source, ttl time.Duration, logger *slog.Logger) *Cached {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cached{
		inner:  inner,
		cache:  gocache.New(ttl, 2*ttl),
		logger: logger,
	}
}

func (c *Cached) Extract(ctx context.Context, path string) (Document, error) {
	if v, found := c.cache.Get(path); found {
		c.logger.Debug("textsource.cache.hit", "path", path)
		return v.(Document), nil
	}

	doc, err := c.inner.Extract(ctx, path)
	if err != nil {
		return doc, err
	}
	c.cache.Set(path, doc, gocache.DefaultExpiration)
	return doc, nil
}
