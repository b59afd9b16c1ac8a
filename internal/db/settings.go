package db

import (
	"encoding/json"
	"log"
	"strconv"

	"eve-trader/internal/config"
)

// LoadSettings reads scanner settings from SQLite. Missing keys keep their
// defaults.
func (d *DB) LoadSettings() *config.Config {
	cfg := config.Default()

	rows, err := d.sql.Query("SELECT key, value FROM settings")
	if err != nil {
		return cfg
	}
	defer rows.Close()

	m := make(map[string]string)
	for rows.Next() {
		var k, v string
		rows.Scan(&k, &v)
		m[k] = v
	}
	if len(m) == 0 {
		return cfg
	}

	if v, ok := m["group_id"]; ok {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			cfg.GroupID = int32(n)
		}
	}
	if v, ok := m["min_profit"]; ok {
		cfg.MinProfit, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := m["cargo_capacity"]; ok {
		cfg.CargoCapacity, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := m["trade_mode"]; ok {
		cfg.TradeMode = v
	}
	if v, ok := m["route_flag"]; ok {
		cfg.RouteFlag = v
	}
	if v, ok := m["risk_tiers"]; ok {
		var tiers []string
		if err := json.Unmarshal([]byte(v), &tiers); err == nil && len(tiers) > 0 {
			cfg.RiskTiers = tiers
		}
	}
	if v, ok := m["broker_fee_percent"]; ok {
		cfg.BrokerFeePercent, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := m["sales_tax_percent"]; ok {
		cfg.SalesTaxPercent, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := m["bid_undercut"]; ok {
		cfg.BidUndercut, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := m["ask_overcut"]; ok {
		cfg.AskOvercut, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := m["max_results"]; ok {
		cfg.MaxResults, _ = strconv.Atoi(v)
	}
	return cfg
}

// SaveSettings persists scanner settings as key/value rows.
func (d *DB) SaveSettings(cfg *config.Config) error {
	tiers, _ := json.Marshal(cfg.RiskTiers)
	kv := map[string]string{
		"group_id":           strconv.FormatInt(int64(cfg.GroupID), 10),
		"min_profit":         formatFloat(cfg.MinProfit),
		"cargo_capacity":     formatFloat(cfg.CargoCapacity),
		"trade_mode":         cfg.TradeMode,
		"route_flag":         cfg.RouteFlag,
		"risk_tiers":         string(tiers),
		"broker_fee_percent": formatFloat(cfg.BrokerFeePercent),
		"sales_tax_percent":  formatFloat(cfg.SalesTaxPercent),
		"bid_undercut":       formatFloat(cfg.BidUndercut),
		"ask_overcut":        formatFloat(cfg.AskOvercut),
		"max_results":        strconv.Itoa(cfg.MaxResults),
	}

	tx, err := d.sql.Begin()
	if err != nil {
		return err
	}
	for k, v := range kv {
		if _, err := tx.Exec("INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", k, v); err != nil {
			tx.Rollback()
			log.Printf("[DB] SaveSettings %s: %v", k, err)
			return err
		}
	}
	return tx.Commit()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
