package routes

import "sync"

// UnreachableJumps is the sentinel stored for pairs with no route. It is
// distinct from a cache miss: a cached -1 means "known unreachable, never
// retry", absence means "not yet resolved".
const UnreachableJumps = -1

type cacheKey struct {
	origin int32
	dest   int32
	flag   string
}

// JumpCache is the in-memory tier of the distance cache, shared across all
// concurrent lookups. Writes are idempotent: jump counts for a pair are
// deterministic, so racing writers are harmless.
type JumpCache struct {
	mu sync.RWMutex
	m  map[cacheKey]int
}

// NewJumpCache creates an empty cache.
func NewJumpCache() *JumpCache {
	return &JumpCache{m: make(map[cacheKey]int)}
}

// Get returns the cached jump count for a triple. unreachable is true when
// the pair is a known dead end; ok is false when the triple was never resolved.
func (c *JumpCache) Get(origin, dest int32, flag string) (jumps int, unreachable, ok bool) {
	c.mu.RLock()
	v, ok := c.m[cacheKey{origin, dest, flag}]
	c.mu.RUnlock()
	if !ok {
		return 0, false, false
	}
	if v == UnreachableJumps {
		return 0, true, true
	}
	return v, false, true
}

// Put stores a resolved jump count for a triple.
func (c *JumpCache) Put(origin, dest int32, flag string, jumps int) {
	c.mu.Lock()
	c.m[cacheKey{origin, dest, flag}] = jumps
	c.mu.Unlock()
}

// PutUnreachable marks a triple as having no route.
func (c *JumpCache) PutUnreachable(origin, dest int32, flag string) {
	c.Put(origin, dest, flag, UnreachableJumps)
}

// Len returns the number of cached triples.
func (c *JumpCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

// Clear drops every cached fact. Facts live until cleared or process exit.
func (c *JumpCache) Clear() {
	c.mu.Lock()
	c.m = make(map[cacheKey]int)
	c.mu.Unlock()
}
