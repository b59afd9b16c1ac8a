package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"eve-trader/internal/logger"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection.
type DB struct {
	sql *sql.DB
}

// DefaultPath returns the database location: the working directory, so the
// file is stable across go run / go build, with the executable directory as
// a fallback for deployed builds.
func DefaultPath() string {
	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, "trader.db")
	}
	exe, _ := os.Executable()
	return filepath.Join(filepath.Dir(exe), "trader.db")
}

// Open opens (or creates) the SQLite database at path and runs migrations.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	logger.Success("DB", fmt.Sprintf("Opened %s", path))
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	version := 0
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS settings (
				key   TEXT PRIMARY KEY,
				value TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS routes (
				origin_system_id      INTEGER NOT NULL,
				destination_system_id INTEGER NOT NULL,
				jumps                 INTEGER NOT NULL,
				PRIMARY KEY (origin_system_id, destination_system_id)
			);

			CREATE TABLE IF NOT EXISTS trades (
				id                INTEGER PRIMARY KEY AUTOINCREMENT,
				type_id           INTEGER,
				type_name         TEXT,
				strategy          TEXT,
				buy_price         REAL,
				sell_price        REAL,
				units             INTEGER,
				volume_m3         REAL,
				profit            REAL,
				profit_mil        REAL,
				isk_per_m3        REAL,
				jumps             INTEGER,
				trips             INTEGER,
				total_jumps       INTEGER,
				profit_per_jump   REAL,
				from_system_id    INTEGER,
				from_system_name  TEXT,
				from_station_id   INTEGER,
				from_station_name TEXT,
				from_security     REAL,
				to_system_id      INTEGER,
				to_system_name    TEXT,
				to_station_id     INTEGER,
				to_station_name   TEXT,
				to_security       REAL
			);
			CREATE INDEX IF NOT EXISTS idx_trades_ppj ON trades(profit_per_jump DESC);
			CREATE INDEX IF NOT EXISTS idx_trades_type ON trades(type_id);

			CREATE TABLE IF NOT EXISTS scan_history (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp   TEXT NOT NULL,
				group_id    INTEGER NOT NULL,
				strategy    TEXT NOT NULL,
				items       INTEGER NOT NULL,
				trades      INTEGER NOT NULL,
				top_profit  REAL NOT NULL,
				duration_ms INTEGER NOT NULL,
				state       TEXT NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_scan_history_ts ON scan_history(timestamp);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		logger.Info("DB", "Applied migration v1")
	}

	return nil
}

// Stats returns row counts for the status endpoint.
func (d *DB) Stats() map[string]int {
	stats := make(map[string]int)
	for name, query := range map[string]string{
		"trades":        "SELECT COUNT(*) FROM trades",
		"cached_routes": "SELECT COUNT(*) FROM routes",
		"scans":         "SELECT COUNT(*) FROM scan_history",
	} {
		var n int
		d.sql.QueryRow(query).Scan(&n)
		stats[name] = n
	}
	return stats
}

// SqlDB returns the underlying *sql.DB for use by other packages.
func (d *DB) SqlDB() *sql.DB {
	return d.sql
}
