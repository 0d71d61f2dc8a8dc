package render

import (
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"

	"github.com/hostpulse/hostpulse/share/logger"
)

// BuildResult is one chart produced by a rebuild pass.
type BuildResult struct {
	PNG []byte
	Err error
}

// BuildFunc renders every chart the server serves, keyed by CacheKey.
// Failures are reported per chart so one bad chart cannot block the rest.
type BuildFunc func() map[string]BuildResult

// Cache memoizes rendered charts for one sampling interval. Any miss
// rebuilds every chart in a single pass under one lock, so a burst of
// dashboard requests costs at most one render per interval.
type Cache struct {
	log    *logger.Logger
	build  BuildFunc
	charts *gocache.Cache

	// mu serializes rebuilds, not lookups
	mu sync.Mutex
}

// NewCache returns a chart cache whose entries expire after ttl, normally
// the sampling interval. A shorter ttl only wastes renders: the underlying
// data cannot change faster than the sampler writes it.
func NewCache(ttl time.Duration, log *logger.Logger, build BuildFunc) *Cache {
	return &Cache{
		log:    log,
		build:  build,
		charts: gocache.New(ttl, 2*ttl),
	}
}

// CacheKey names the cache entry for one window and metric pair.
func CacheKey(window, metric string) string {
	return window + "/" + metric
}

// Get returns the cached PNG for the key, rebuilding all charts on a miss.
func (c *Cache) Get(key string) ([]byte, error) {
	if png, ok := c.charts.Get(key); ok {
		return png.([]byte), nil
	}
	return c.rebuild(key)
}

func (c *Cache) rebuild(want string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// a rebuild that finished while we waited for the lock counts
	if png, ok := c.charts.Get(want); ok {
		return png.([]byte), nil
	}

	built := c.build()

	var errs *multierror.Error
	for key, res := range built {
		if res.Err != nil {
			errs = multierror.Append(errs, errors.Wrap(res.Err, key))
			continue
		}
		c.charts.Set(key, res.PNG, gocache.DefaultExpiration)
	}
	if err := errs.ErrorOrNil(); err != nil && c.log != nil {
		c.log.Debugf("chart rebuild: %v", err)
	}

	res, ok := built[want]
	if !ok {
		return nil, ErrNoData
	}
	return res.PNG, res.Err
}

// Prewarm renders any expired charts ahead of demand. The scheduler calls
// it once per sampling interval so dashboard requests hit a warm cache.
func (c *Cache) Prewarm(keys []string) {
	for _, key := range keys {
		if _, err := c.Get(key); err != nil && !errors.Is(err, ErrNoData) && c.log != nil {
			c.log.Errorf("prewarm %s: %v", key, err)
		}
	}
}

// Flush drops every cached chart so the next request rebuilds from fresh
// samples. The live broadcaster calls it whenever a new sample appears.
func (c *Cache) Flush() {
	c.charts.Flush()
}
