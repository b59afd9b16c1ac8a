package db

import (
	"log"
	"time"

	"eve-trader/internal/engine"
)

// ClearTrades drops all stored trades before a fresh scan.
func (d *DB) ClearTrades() error {
	_, err := d.sql.Exec("DELETE FROM trades")
	return err
}

// SaveTrades bulk-inserts ranked trades inside one transaction.
func (d *DB) SaveTrades(trades []engine.RankedTrade) error {
	if len(trades) == 0 {
		return nil
	}

	tx, err := d.sql.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO trades (
		type_id, type_name, strategy, buy_price, sell_price, units, volume_m3,
		profit, profit_mil, isk_per_m3, jumps, trips, total_jumps, profit_per_jump,
		from_system_id, from_system_name, from_station_id, from_station_name, from_security,
		to_system_id, to_system_name, to_station_id, to_station_name, to_security
	) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, t := range trades {
		stmt.Exec(
			t.TypeID, t.TypeName, t.Strategy, t.BuyPrice, t.SellPrice, t.Units, t.VolumeM3,
			t.Profit, t.ProfitMil, t.ISKPerM3, t.Jumps, t.Trips, t.TotalJumps, t.ProfitPerJump,
			t.Origin.SystemID, t.Origin.SystemName, t.Origin.StationID, t.Origin.StationName, t.Origin.Security,
			t.Dest.SystemID, t.Dest.SystemName, t.Dest.StationID, t.Dest.StationName, t.Dest.Security,
		)
	}

	return tx.Commit()
}

// tradeSortColumns whitelists the ORDER BY targets for TopTrades.
var tradeSortColumns = map[string]string{
	"profit_per_jump": "profit_per_jump",
	"profit":          "profit",
	"profit_mil":      "profit_mil",
	"isk_per_m3":      "isk_per_m3",
	"jumps":           "jumps",
}

// TopTrades returns the best stored trades sorted by the given column
// (descending). Unknown sort keys fall back to profit_per_jump.
func (d *DB) TopTrades(limit int, sortBy string) []engine.RankedTrade {
	col, ok := tradeSortColumns[sortBy]
	if !ok {
		col = "profit_per_jump"
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := d.sql.Query(`
		SELECT type_id, type_name, strategy, buy_price, sell_price, units, volume_m3,
			profit, profit_mil, isk_per_m3, jumps, trips, total_jumps, profit_per_jump,
			from_system_id, from_system_name, from_station_id, from_station_name, from_security,
			to_system_id, to_system_name, to_station_id, to_station_name, to_security
		FROM trades ORDER BY `+col+` DESC LIMIT ?`, limit)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var trades []engine.RankedTrade
	for rows.Next() {
		var t engine.RankedTrade
		rows.Scan(
			&t.TypeID, &t.TypeName, &t.Strategy, &t.BuyPrice, &t.SellPrice, &t.Units, &t.VolumeM3,
			&t.Profit, &t.ProfitMil, &t.ISKPerM3, &t.Jumps, &t.Trips, &t.TotalJumps, &t.ProfitPerJump,
			&t.Origin.SystemID, &t.Origin.SystemName, &t.Origin.StationID, &t.Origin.StationName, &t.Origin.Security,
			&t.Dest.SystemID, &t.Dest.SystemName, &t.Dest.StationID, &t.Dest.StationName, &t.Dest.Security,
		)
		trades = append(trades, t)
	}
	return trades
}

// RecordScan appends a scan summary to the history log.
func (d *DB) RecordScan(s engine.ScanSummary) error {
	_, err := d.sql.Exec(`INSERT INTO scan_history
		(timestamp, group_id, strategy, items, trades, top_profit, duration_ms, state)
		VALUES (?,?,?,?,?,?,?,?)`,
		time.Now().UTC().Format(time.RFC3339), s.GroupID, s.Strategy,
		s.Items, s.Trades, s.TopProfit, s.Duration.Milliseconds(), s.State,
	)
	if err != nil {
		log.Printf("[DB] RecordScan: %v", err)
	}
	return err
}
