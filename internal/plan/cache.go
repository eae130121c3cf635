package plan

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const megabyte = 1024 * 1024

// MaxPlanBytes is the largest serialized plan the service stores.
const MaxPlanBytes = 32 * 1024

// MinSnapshotCacheSizeBytes keeps room for a MaxPlanBytes plan, as freecache
// refuses entries larger than 1/1024 of its size.
const MinSnapshotCacheSizeBytes = 64 * megabyte

// SnapshotCache keeps the serialized active plan per owner, so materializing views
// does not hit the database on every request. Every write to a plan invalidates it.
//
// Reads fill the cache with Fill, passing the generation seen before loading the plan.
// A fill racing with an invalidation is dropped, so a plan read before a write never
// outlives it in the cache.
type SnapshotCache struct {
	cache     *freecache.Cache
	expireSec int

	mu          sync.Mutex
	generations map[string]uint64
}

func NewSnapshotCache(sizeBytes, expireSec int) *SnapshotCache {
	if sizeBytes < MinSnapshotCacheSizeBytes {
		sizeBytes = MinSnapshotCacheSizeBytes
	}
	return &SnapshotCache{
		cache:       freecache.NewCache(sizeBytes),
		expireSec:   expireSec,
		generations: map[string]uint64{},
	}
}

func cacheKey(owner string) []byte {
	return []byte("plan::" + owner)
}

// Get returns a fresh copy of the cached plan.
func (c *SnapshotCache) Get(owner string) (*Plan, bool) {
	raw, err := c.cache.Get(cacheKey(owner))
	if err != nil {
		if !errors.Is(err, freecache.ErrNotFound) {
			log.Warnf("plan cache get [%s]: %s", owner, err)
		}
		return nil, false
	}

	p, err := Decode(bytes.NewReader(raw))
	if err != nil {
		log.Errorf("plan cache, decode [%s]: %s", owner, err)
		c.Invalidate(owner)
		return nil, false
	}
	return p, true
}

// Generation changes every time the owner's entry is invalidated.
func (c *SnapshotCache) Generation(owner string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[owner]
}

// Set stores the plan unconditionally.
func (c *SnapshotCache) Set(owner string, p *Plan) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.set(owner, p)
}

// Fill stores a plan loaded from the repo, unless the entry was invalidated after
// generation was read. It reports whether the plan was stored.
func (c *SnapshotCache) Fill(owner string, p *Plan, generation uint64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[owner] != generation {
		return false, nil
	}
	if err := c.set(owner, p); err != nil {
		return false, err
	}
	return true, nil
}

func (c *SnapshotCache) set(owner string, p *Plan) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	if err := c.cache.Set(cacheKey(owner), raw, c.expireSec); err != nil {
		return fmt.Errorf("cache plan of %d bytes: %w", len(raw), err)
	}
	return nil
}

func (c *SnapshotCache) Invalidate(owner string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[owner]++
	c.cache.Del(cacheKey(owner))
}
