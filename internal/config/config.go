package config

// Config holds scanner settings (in-memory representation).
// Persistence is handled by internal/db package.
type Config struct {
	GroupID          int32    `json:"group_id"`
	MinProfit        float64  `json:"min_profit"`
	CargoCapacity    float64  `json:"cargo_capacity"`
	TradeMode        string   `json:"trade_mode"`
	RouteFlag        string   `json:"route_flag"`
	RiskTiers        []string `json:"risk_tiers"`
	BrokerFeePercent float64  `json:"broker_fee_percent"`
	SalesTaxPercent  float64  `json:"sales_tax_percent"`
	BidUndercut      float64  `json:"bid_undercut"`
	AskOvercut       float64  `json:"ask_overcut"`
	MaxResults       int      `json:"max_results"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		GroupID:          533, // Materials
		MinProfit:        10_000_000,
		CargoCapacity:    830_000,
		TradeMode:        "instant",
		RouteFlag:        "secure",
		RiskTiers:        []string{"highsec"},
		BrokerFeePercent: 3,
		SalesTaxPercent:  3.6,
		BidUndercut:      0.95,
		AskOvercut:       1.05,
		MaxResults:       50,
	}
}
