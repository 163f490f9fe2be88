package weather

import (
	"context"
	"encoding/gob"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

func init() {
	// Cached values cross the gob boundary as interface{}.
	gob.Register([]Observation(nil))
}

// CachedArchive memoizes archive responses keyed by request parameters.
// Entries never expire; re-runs over the same coordinate and date span hit
// the cache instead of the upstream API. When a file path is configured the
// cache is loaded at construction and written back by Persist.
type CachedArchive struct {
	inner Archive
	cache *gocache.Cache
	path  string
}

func NewCachedArchive(inner Archive, path string) *CachedArchive {
	c := gocache.New(gocache.NoExpiration, 0)

	if path != "" {
		if err := c.LoadFile(path); err != nil {
			if !os.IsNotExist(err) {
				log.Printf("weather: could not load response cache from %s: %v", path, err)
			}
		} else {
			log.Printf("weather: loaded %d cached archive responses from %s", c.ItemCount(), path)
		}
	}

	return &CachedArchive{
		inner: inner,
		cache: c,
		path:  path,
	}
}

func (c *CachedArchive) Fetch(ctx context.Context, latitude, longitude float64, startDate, endDate time.Time) ([]Observation, error) {
	key := cacheKey(latitude, longitude, startDate, endDate)

	if v, ok := c.cache.Get(key); ok {
		if observations, ok := v.([]Observation); ok {
			return observations, nil
		}
	}

	observations, err := c.inner.Fetch(ctx, latitude, longitude, startDate, endDate)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, observations, gocache.NoExpiration)
	return observations, nil
}

// Persist writes the cache to the configured file. A no-op when no file path
// was configured.
func (c *CachedArchive) Persist() error {
	if c.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	if err := c.cache.SaveFile(c.path); err != nil {
		return fmt.Errorf("save response cache: %w", err)
	}
	return nil
}

// Clear drops every cached response and removes the cache file.
func (c *CachedArchive) Clear() error {
	c.cache.Flush()
	if c.path == "" {
		return nil
	}
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove cache file: %w", err)
	}
	return nil
}

func cacheKey(latitude, longitude float64, startDate, endDate time.Time) string {
	return fmt.Sprintf("%.4f,%.4f|%s|%s",
		latitude, longitude,
		startDate.Format(dateParamLayout), endDate.Format(dateParamLayout))
}
