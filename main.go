package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"eve-trader/internal/api"
	"eve-trader/internal/db"
	"eve-trader/internal/engine"
	"eve-trader/internal/logger"
	"eve-trader/internal/market"
	"eve-trader/internal/routes"
)

var version = "dev"

func main() {
	godotenv.Load()

	port := flag.Int("port", 13370, "HTTP server port")
	dbPath := flag.String("db", envOrDefault("TRADER_DB", db.DefaultPath()), "SQLite database path")
	flag.Parse()

	logger.Banner(version)

	database, err := db.Open(*dbPath)
	if err != nil {
		logger.Error("DB", fmt.Sprintf("Failed to open database: %v", err))
		os.Exit(1)
	}
	defer database.Close()

	cfg := database.LoadSettings()

	marketClient := market.NewClient()
	if base := os.Getenv("MARKET_BASE_URL"); base != "" {
		marketClient.SetBaseURL(base)
	}

	routeSource := routes.NewESIRouteSource()
	if base := os.Getenv("ESI_BASE_URL"); base != "" {
		routeSource.SetBaseURL(base)
	}

	resolver := routes.NewResolver(routeSource, database)
	logger.Section("Route Cache")
	logger.Stats("Preloaded routes", fmt.Sprintf("%d", resolver.Preload()))

	scanner := engine.NewScanner(marketClient, resolver, database)

	srv := api.NewServer(cfg, scanner, database)

	addr := fmt.Sprintf("127.0.0.1:%d", *port)
	logger.Server(addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		logger.Error("Server", fmt.Sprintf("Failed: %v", err))
		os.Exit(1)
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
