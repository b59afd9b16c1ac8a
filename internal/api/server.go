package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"

	"eve-trader/internal/config"
	"eve-trader/internal/db"
	"eve-trader/internal/engine"
	"eve-trader/internal/market"
)

// Server is the HTTP control surface over the scanner and the trade store.
type Server struct {
	mu      sync.RWMutex
	cfg     *config.Config
	scanner *engine.Scanner
	db      *db.DB
}

// NewServer creates a Server with the given settings, scanner, and database.
func NewServer(cfg *config.Config, scanner *engine.Scanner, database *db.DB) *Server {
	return &Server{cfg: cfg, scanner: scanner, db: database}
}

// Handler returns the HTTP handler with all API routes and CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/scan", s.handleScan)
	mux.HandleFunc("POST /api/stop", s.handleStop)
	mux.HandleFunc("GET /api/trades", s.handleTrades)
	mux.HandleFunc("GET /api/groups", s.handleGroups)
	mux.HandleFunc("GET /api/config", s.handleGetConfig)
	mux.HandleFunc("POST /api/config", s.handleSetConfig)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(204)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.scanner.Status()
	writeJSON(w, map[string]interface{}{
		"scan": status,
		"db":   s.db.Stats(),
	})
}

// scanRequest carries per-scan overrides of the stored settings. Zero-valued
// fields keep their configured defaults.
type scanRequest struct {
	GroupID       int32    `json:"group_id"`
	Preset        string   `json:"preset"`
	MinProfit     *float64 `json:"min_profit"`
	CargoCapacity *float64 `json:"cargo_capacity"`
	TradeMode     string   `json:"trade_mode"`
	RouteFlag     string   `json:"route_flag"`
	RiskTiers     []string `json:"risk_tiers"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	s.mu.RLock()
	cfg := *s.cfg
	s.mu.RUnlock()

	if req.Preset != "" {
		preset, ok := market.GroupPresets[req.Preset]
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown group preset: "+req.Preset)
			return
		}
		cfg.GroupID = preset.ID
	}
	if req.GroupID > 0 {
		cfg.GroupID = req.GroupID
	}
	if req.MinProfit != nil {
		cfg.MinProfit = *req.MinProfit
	}
	if req.CargoCapacity != nil {
		cfg.CargoCapacity = *req.CargoCapacity
	}
	if req.TradeMode != "" {
		cfg.TradeMode = req.TradeMode
	}
	if req.RouteFlag != "" {
		cfg.RouteFlag = req.RouteFlag
	}
	if len(req.RiskTiers) > 0 {
		cfg.RiskTiers = req.RiskTiers
	}

	strategy, err := engine.ParseStrategy(cfg.TradeMode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	params := engine.ScanParams{
		GroupID:          cfg.GroupID,
		MinProfit:        cfg.MinProfit,
		CargoCapacity:    cfg.CargoCapacity,
		Strategy:         strategy,
		RouteFlag:        cfg.RouteFlag,
		RiskTiers:        cfg.RiskTiers,
		BrokerFeePercent: cfg.BrokerFeePercent,
		SalesTaxPercent:  cfg.SalesTaxPercent,
		BidUndercut:      cfg.BidUndercut,
		AskOvercut:       cfg.AskOvercut,
	}

	if err := s.scanner.Start(context.Background(), params); err != nil {
		if errors.Is(err, engine.ErrScanActive) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, map[string]string{"status": "started"})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.scanner.Stop()
	writeJSON(w, map[string]string{"status": "stopping"})
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	sortBy := r.URL.Query().Get("sort")
	trades := s.db.TopTrades(limit, sortBy)
	if trades == nil {
		trades = []engine.RankedTrade{}
	}
	writeJSON(w, trades)
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, market.GroupPresets)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, s.cfg)
}

func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := *s.cfg
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid config body")
		return
	}
	if _, err := engine.ParseStrategy(cfg.TradeMode); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	*s.cfg = cfg
	if err := s.db.SaveSettings(s.cfg); err != nil {
		writeError(w, http.StatusInternalServerError, "persist config: "+err.Error())
		return
	}
	writeJSON(w, s.cfg)
}
