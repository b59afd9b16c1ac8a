package routes

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"

	"eve-trader/internal/logger"
	"eve-trader/internal/ratelimit"
)

const (
	// DefaultFlag is the only route profile persisted to the durable store.
	DefaultFlag = "secure"
	// maxConcurrentLookups bounds in-flight remote route requests.
	maxConcurrentLookups = 20
)

// Pair identifies an origin/destination system pair to resolve.
type Pair struct {
	Origin int32
	Dest   int32
}

// Result is the outcome of resolving one pair. Exactly one of three shapes:
// a jump count, Unreachable, or Err (transient failure, safe to retry later).
type Result struct {
	Jumps       int
	Unreachable bool
	Err         error
}

// RouteStore is the durable cache for secure-route jump counts. Implemented
// by the db package; jumps may be UnreachableJumps.
type RouteStore interface {
	GetRoute(origin, dest int32) (jumps int, ok bool)
	SetRoute(origin, dest int32, jumps int)
	AllRoutes() (map[Pair]int, error)
}

// Resolver answers jump-count queries through a two-tier cache backed by
// rate-limited, concurrency-bounded remote lookups. Identical in-flight
// triples collapse to a single remote call via singleflight.
type Resolver struct {
	cache   *JumpCache
	store   RouteStore // nil disables the durable tier
	source  RouteSource
	limiter *ratelimit.Limiter
	breaker *gobreaker.CircuitBreaker[int]
	group   singleflight.Group
	sem     chan struct{}
}

// NewResolver creates a resolver over the given remote source and durable
// store. A nil store keeps the resolver purely in-memory.
func NewResolver(source RouteSource, store RouteStore) *Resolver {
	settings := gobreaker.Settings{
		Name:    "route-lookups",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 10
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Routes", fmt.Sprintf("circuit breaker %s: %s -> %s", name, from, to))
		},
	}
	return &Resolver{
		cache:   NewJumpCache(),
		store:   store,
		source:  source,
		limiter: ratelimit.New(20, maxConcurrentLookups),
		breaker: gobreaker.NewCircuitBreaker[int](settings),
		sem:     make(chan struct{}, maxConcurrentLookups),
	}
}

// Cache exposes the in-memory tier (used by tests and status reporting).
func (r *Resolver) Cache() *JumpCache {
	return r.cache
}

// Preload bulk-loads the durable store into the in-memory tier. Called once
// at startup so known routes never hit the network again.
func (r *Resolver) Preload() int {
	if r.store == nil {
		return 0
	}
	all, err := r.store.AllRoutes()
	if err != nil {
		logger.Warn("Routes", fmt.Sprintf("preload failed: %v", err))
		return 0
	}
	for p, jumps := range all {
		r.cache.Put(p.Origin, p.Dest, DefaultFlag, jumps)
	}
	return len(all)
}

// ResolveJumps resolves a batch of pairs under one route flag. Results are
// positional: results[i] answers pairs[i]. Cache hits return synchronously;
// misses fan out under the concurrency bound. An individual failure degrades
// its own pair only.
func (r *Resolver) ResolveJumps(ctx context.Context, pairs []Pair, flag string) []Result {
	results := make([]Result, len(pairs))

	var wg sync.WaitGroup
	for i, p := range pairs {
		if res, ok := r.resolveLocal(p, flag); ok {
			results[i] = res
			continue
		}
		wg.Add(1)
		go func(i int, p Pair) {
			defer wg.Done()
			results[i] = r.lookup(ctx, p, flag)
		}(i, p)
	}
	wg.Wait()
	return results
}

// resolveLocal answers a pair from the zero-jump rule, the in-memory tier,
// or the durable tier, without any remote call.
func (r *Resolver) resolveLocal(p Pair, flag string) (Result, bool) {
	if p.Origin == p.Dest {
		return Result{Jumps: 0}, true
	}
	if jumps, unreachable, ok := r.cache.Get(p.Origin, p.Dest, flag); ok {
		return Result{Jumps: jumps, Unreachable: unreachable}, true
	}
	if flag == DefaultFlag && r.store != nil {
		if jumps, ok := r.store.GetRoute(p.Origin, p.Dest); ok {
			r.cache.Put(p.Origin, p.Dest, flag, jumps)
			if jumps == UnreachableJumps {
				return Result{Unreachable: true}, true
			}
			return Result{Jumps: jumps}, true
		}
	}
	return Result{}, false
}

// lookup performs the remote resolution for one pair. Concurrent callers for
// the same triple share one flight; the winner writes both cache tiers.
func (r *Resolver) lookup(ctx context.Context, p Pair, flag string) Result {
	key := fmt.Sprintf("%d:%d:%s", p.Origin, p.Dest, flag)
	v, _, _ := r.group.Do(key, func() (interface{}, error) {
		// A racing batch may have resolved this triple while we queued.
		if res, ok := r.resolveLocal(p, flag); ok {
			return res, nil
		}
		return r.fetch(ctx, p, flag), nil
	})
	return v.(Result)
}

func (r *Resolver) fetch(ctx context.Context, p Pair, flag string) Result {
	r.sem <- struct{}{}
	defer func() { <-r.sem }()

	if err := r.limiter.Wait(ctx); err != nil {
		return Result{Err: err}
	}

	jumps, err := r.breaker.Execute(func() (int, error) {
		return r.source.Jumps(ctx, p.Origin, p.Dest, flag)
	})
	if errors.Is(err, ErrNoRoute) {
		// Topological fact: cache it so the pair is never retried.
		r.cache.PutUnreachable(p.Origin, p.Dest, flag)
		if flag == DefaultFlag && r.store != nil {
			r.store.SetRoute(p.Origin, p.Dest, UnreachableJumps)
		}
		return Result{Unreachable: true}
	}
	if err != nil {
		// Resolver unavailability, not a fact: never cached, retried on a
		// future batch.
		return Result{Err: err}
	}

	r.cache.Put(p.Origin, p.Dest, flag, jumps)
	if flag == DefaultFlag && r.store != nil {
		r.store.SetRoute(p.Origin, p.Dest, jumps)
	}
	return Result{Jumps: jumps}
}
