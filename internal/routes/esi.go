package routes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const esiBaseURL = "https://esi.evetech.net/latest"

// ErrNoRoute is the authoritative "no route exists" answer from the route
// service. Unlike transport errors it is a topological fact and is cached.
var ErrNoRoute = errors.New("no route found")

// RouteSource resolves a single origin/destination pair to a jump count.
// Implementations must be safe for concurrent use.
type RouteSource interface {
	Jumps(ctx context.Context, origin, dest int32, flag string) (int, error)
}

// ESIRouteSource queries the ESI route endpoint. The response is the list of
// systems along the route; the jump count is one less than its length.
type ESIRouteSource struct {
	http    *http.Client
	baseURL string
}

// NewESIRouteSource creates a route source with a short per-request timeout,
// so one stuck lookup degrades a single pair rather than stalling a batch.
func NewESIRouteSource() *ESIRouteSource {
	return &ESIRouteSource{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: esiBaseURL,
	}
}

// SetBaseURL overrides the ESI endpoint, mainly for tests and proxies.
func (s *ESIRouteSource) SetBaseURL(url string) {
	s.baseURL = url
}

// Jumps fetches the route between two systems under the given route flag
// (shortest, secure, insecure). Returns ErrNoRoute on a 404.
func (s *ESIRouteSource) Jumps(ctx context.Context, origin, dest int32, flag string) (int, error) {
	url := fmt.Sprintf("%s/route/%d/%d/?flag=%s&datasource=tranquility",
		s.baseURL, origin, dest, flag)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", "eve-trader/1.0 (github.com)")
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case 200:
		var systems []int32
		if err := json.NewDecoder(resp.Body).Decode(&systems); err != nil {
			return 0, fmt.Errorf("decode route: %w", err)
		}
		if len(systems) == 0 {
			return 0, nil
		}
		return len(systems) - 1, nil
	case 404:
		return 0, ErrNoRoute
	default:
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("route %d: %s", resp.StatusCode, string(body))
	}
}
