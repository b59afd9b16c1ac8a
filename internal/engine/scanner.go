package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"eve-trader/internal/logger"
	"eve-trader/internal/market"
	"eve-trader/internal/routes"
)

// Scan states. A scan moves idle -> scanning -> {complete | error}; a stop
// request ends in complete with Stopped set on the status.
const (
	StateIdle     = "idle"
	StateScanning = "scanning"
	StateComplete = "complete"
	StateError    = "error"
)

// itemBatchSize is the number of items scanned concurrently.
const itemBatchSize = 5

// ErrScanActive is returned when a scan is requested while one is running.
// Concurrent scans are rejected, not queued.
var ErrScanActive = errors.New("scan already in progress")

// Market supplies the tradeable item catalog and per-item order books.
type Market interface {
	FetchMarketGroups() ([]market.Group, error)
	FetchGroupTypes(groupID int32) ([]market.GroupType, error)
	FetchOrderBook(typeID int32) (*market.OrderBook, error)
}

// DistanceResolver supplies jump counts for system pairs in bulk.
type DistanceResolver interface {
	ResolveJumps(ctx context.Context, pairs []routes.Pair, flag string) []routes.Result
}

// ScanSummary describes a finished scan for the history log.
type ScanSummary struct {
	GroupID   int32
	Strategy  string
	Items     int
	Trades    int
	TopProfit float64
	Duration  time.Duration
	State     string
}

// TradeSink receives ranked trades as they are found. Append-only; the
// scanner never reads it back.
type TradeSink interface {
	ClearTrades() error
	SaveTrades(trades []RankedTrade) error
	RecordScan(s ScanSummary) error
}

// Status is a point-in-time snapshot of the scanner, observed via polling.
type Status struct {
	State       string `json:"state"`
	Progress    int    `json:"progress"`
	CurrentItem string `json:"current_item"`
	Scanned     int    `json:"scanned"`
	Total       int    `json:"total"`
	Stopped     bool   `json:"stopped,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Scanner orchestrates the per-item pipeline: fetch listings, match, resolve
// distances once per item, rank, and emit to the sink.
type Scanner struct {
	market   Market
	resolver DistanceResolver
	sink     TradeSink

	mu        sync.Mutex
	state     string
	current   string
	scanned   int
	total     int
	stopped   bool
	lastError string
	topProfit float64

	stopFlag atomic.Bool

	pairsRequested atomic.Int64
	pairsResolved  atomic.Int64
	tradesFound    atomic.Int64
}

// NewScanner creates a Scanner over the given collaborators.
func NewScanner(m Market, r DistanceResolver, sink TradeSink) *Scanner {
	return &Scanner{
		market:   m,
		resolver: r,
		sink:     sink,
		state:    StateIdle,
	}
}

type scanItem struct {
	id   int32
	name string
}

// Start validates the parameters and launches the scan in the background.
// Returns ErrScanActive if a scan is already running.
func (s *Scanner) Start(ctx context.Context, p ScanParams) error {
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.state == StateScanning {
		s.mu.Unlock()
		return ErrScanActive
	}
	s.state = StateScanning
	s.current = ""
	s.scanned = 0
	s.total = 0
	s.stopped = false
	s.lastError = ""
	s.topProfit = 0
	s.mu.Unlock()

	s.stopFlag.Store(false)
	s.pairsRequested.Store(0)
	s.pairsResolved.Store(0)
	s.tradesFound.Store(0)

	go s.run(ctx, p)
	return nil
}

// Stop requests the running scan to end. Advisory: checked before each item
// starts; in-flight work finishes and already-emitted trades remain valid.
func (s *Scanner) Stop() {
	s.stopFlag.Store(true)
}

// Status returns the current scan status.
func (s *Scanner) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	progress := 0
	if s.total > 0 {
		progress = s.scanned * 100 / s.total
	}
	if s.state == StateComplete {
		progress = 100
	}
	return Status{
		State:       s.state,
		Progress:    progress,
		CurrentItem: s.current,
		Scanned:     s.scanned,
		Total:       s.total,
		Stopped:     s.stopped,
		Error:       s.lastError,
	}
}

func (s *Scanner) run(ctx context.Context, p ScanParams) {
	start := time.Now()

	s.setCurrent("Loading market groups...")
	groups, err := s.market.FetchMarketGroups()
	if err != nil {
		s.finish(p, start, fmt.Sprintf("load market groups: %v", err))
		return
	}

	var items []scanItem
	for _, gid := range market.ExpandLeafGroups(groups, p.GroupID) {
		types, err := s.market.FetchGroupTypes(gid)
		if err != nil {
			logger.Warn("Scan", fmt.Sprintf("group %d types: %v", gid, err))
			continue
		}
		for _, t := range types {
			items = append(items, scanItem{id: t.TypeID, name: t.TypeName})
		}
	}

	s.mu.Lock()
	s.total = len(items)
	s.mu.Unlock()

	if err := s.sink.ClearTrades(); err != nil {
		logger.Warn("Scan", fmt.Sprintf("clear trades: %v", err))
	}

	for i := 0; i < len(items); i += itemBatchSize {
		if s.stopFlag.Load() {
			break
		}
		end := i + itemBatchSize
		if end > len(items) {
			end = len(items)
		}

		var wg sync.WaitGroup
		for _, it := range items[i:end] {
			if s.stopFlag.Load() {
				break
			}
			wg.Add(1)
			go func(it scanItem) {
				defer wg.Done()
				s.scanOne(ctx, p, it)
				s.mu.Lock()
				s.scanned++
				s.mu.Unlock()
			}(it)
		}
		wg.Wait()
	}

	// Candidates were produced but not a single pair could be resolved:
	// the distance service was unavailable for the whole scan.
	if s.pairsRequested.Load() > 0 && s.pairsResolved.Load() == 0 {
		s.finish(p, start, "distance resolver unavailable")
		return
	}
	s.finish(p, start, "")
}

// scanOne runs the full pipeline for a single item. All failures are
// contained here: a bad item degrades to zero trades, never an aborted scan.
func (s *Scanner) scanOne(ctx context.Context, p ScanParams, it scanItem) {
	s.setCurrent(it.name)

	book, err := s.market.FetchOrderBook(it.id)
	if err != nil {
		logger.Warn("Scan", fmt.Sprintf("%s: order book: %v", it.name, err))
		return
	}
	if book == nil || len(book.Orders) == 0 {
		return
	}

	sells, buys := s.partition(book, p)
	if len(sells) == 0 || len(buys) == 0 {
		return
	}

	cands := MatchTrades(sells, buys, p)
	if len(cands) == 0 {
		return
	}

	// One resolution call per item over the deduplicated system pairs.
	seen := make(map[routes.Pair]bool)
	var pairs []routes.Pair
	for _, c := range cands {
		pr := routes.Pair{Origin: c.Origin.SystemID, Dest: c.Dest.SystemID}
		if !seen[pr] {
			seen[pr] = true
			pairs = append(pairs, pr)
		}
	}

	results := s.resolver.ResolveJumps(ctx, pairs, p.RouteFlag)
	resolved := make(map[routes.Pair]routes.Result, len(pairs))
	for i, pr := range pairs {
		resolved[pr] = results[i]
		s.pairsRequested.Add(1)
		if results[i].Err == nil {
			s.pairsResolved.Add(1)
		}
	}

	unitVolume := book.ItemType.Volume
	if unitVolume <= 0 {
		unitVolume = 1
	}
	ranked := RankTrades(it.id, it.name, unitVolume, cands, resolved, p)
	if len(ranked) == 0 {
		return
	}

	if err := s.sink.SaveTrades(ranked); err != nil {
		logger.Warn("Scan", fmt.Sprintf("%s: save trades: %v", it.name, err))
		return
	}
	s.tradesFound.Add(int64(len(ranked)))

	s.mu.Lock()
	for _, r := range ranked {
		if r.Profit > s.topProfit {
			s.topProfit = r.Profit
		}
	}
	s.mu.Unlock()
}

// partition splits an order book into sell-side and buy-side location
// groups, dropping listings outside the allowed risk tiers and listings
// whose system metadata is missing.
func (s *Scanner) partition(book *market.OrderBook, p ScanParams) (sells, buys []LocationGroup) {
	var sellListings, buyListings []Listing
	for _, o := range book.Orders {
		sys, ok := book.System(o.SystemID)
		if !ok {
			continue
		}
		if !riskAllowed(p.RiskTiers, sys.Security) {
			continue
		}
		l := Listing{
			Price:       o.Price,
			Volume:      o.VolumeRemain,
			SystemID:    o.SystemID,
			SystemName:  sys.Name,
			StationID:   o.LocationID,
			StationName: book.StationName(o.LocationID),
			Security:    sys.Security,
		}
		if o.IsBuyOrder {
			buyListings = append(buyListings, l)
		} else {
			sellListings = append(sellListings, l)
		}
	}
	return NewLocationGroups(sellListings, false), NewLocationGroups(buyListings, true)
}

func (s *Scanner) setCurrent(name string) {
	s.mu.Lock()
	s.current = name
	s.mu.Unlock()
}

// finish moves the scan to its terminal state and records the summary.
func (s *Scanner) finish(p ScanParams, start time.Time, errMsg string) {
	s.mu.Lock()
	s.stopped = s.stopFlag.Load()
	if errMsg != "" {
		s.state = StateError
		s.lastError = errMsg
	} else {
		s.state = StateComplete
		s.current = ""
	}
	items := s.scanned
	top := s.topProfit
	state := s.state
	s.mu.Unlock()

	if errMsg != "" {
		logger.Error("Scan", errMsg)
	} else {
		logger.Success("Scan", fmt.Sprintf("%d items scanned, %d trades found",
			items, s.tradesFound.Load()))
	}

	summary := ScanSummary{
		GroupID:   p.GroupID,
		Strategy:  p.Strategy.String(),
		Items:     items,
		Trades:    int(s.tradesFound.Load()),
		TopProfit: top,
		Duration:  time.Since(start),
		State:     state,
	}
	if err := s.sink.RecordScan(summary); err != nil {
		logger.Warn("Scan", fmt.Sprintf("record scan: %v", err))
	}
}
