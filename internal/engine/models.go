package engine

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
)

// Strategy selects how the matcher pairs sell-side and buy-side listings.
type Strategy int

const (
	// StrategyInstant buys from existing sell orders and sells to existing buy orders.
	StrategyInstant Strategy = iota
	// StrategyPlaceBuy places a buy order undercutting local sellers, then sells to existing buy orders.
	StrategyPlaceBuy
	// StrategyPlaceSell buys from existing sell orders, then places a sell order overcutting remote buyers.
	StrategyPlaceSell
	// StrategyPatient places both the buy order and the sell order.
	StrategyPatient
)

var strategyNames = map[Strategy]string{
	StrategyInstant:   "instant",
	StrategyPlaceBuy:  "buy_orders",
	StrategyPlaceSell: "sell_orders",
	StrategyPatient:   "patient",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy maps a wire tag ("instant", "buy_orders", "sell_orders",
// "patient") to its Strategy. Unknown tags are a configuration error.
func ParseStrategy(tag string) (Strategy, error) {
	for s, name := range strategyNames {
		if name == tag {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown trade mode %q", tag)
}

// Listing is one side of an order book entry at a station, immutable once
// read from the market feed.
type Listing struct {
	Price       float64
	Volume      int32
	SystemID    int32
	SystemName  string
	StationID   int64
	StationName string
	Security    float64
}

// LocationGroup holds one station's listings, sorted for matching:
// ascending by price on the sell side, descending on the buy side.
type LocationGroup struct {
	StationID int64
	Listings  []Listing
}

// NewLocationGroups partitions listings by station. Sell-side groups are
// sorted cheapest-first, buy-side groups richest-first, so the matcher can
// walk each group front to back. Groups are ordered by station id to keep
// matcher output deterministic.
func NewLocationGroups(listings []Listing, buySide bool) []LocationGroup {
	byStation := make(map[int64][]Listing)
	for _, l := range listings {
		byStation[l.StationID] = append(byStation[l.StationID], l)
	}

	groups := make([]LocationGroup, 0, len(byStation))
	for id, ls := range byStation {
		sort.Slice(ls, func(i, j int) bool {
			if buySide {
				return ls[i].Price > ls[j].Price
			}
			return ls[i].Price < ls[j].Price
		})
		groups = append(groups, LocationGroup{StationID: id, Listings: ls})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].StationID < groups[j].StationID
	})
	return groups
}

// Endpoint identifies one end of a trade: a station within a solar system.
type Endpoint struct {
	SystemID    int32   `json:"system_id"`
	SystemName  string  `json:"system_name"`
	StationID   int64   `json:"station_id"`
	StationName string  `json:"station_name"`
	Security    float64 `json:"security"`
}

// TradeCandidate is the matcher's output: a priced, volume-bounded trade
// between two stations, before any travel distance is known. At most one
// candidate survives per (origin station, destination station) pair per item.
type TradeCandidate struct {
	BuyPrice  float64
	SellPrice float64
	Units     int64
	NetProfit float64
	Origin    Endpoint
	Dest      Endpoint
	Strategy  Strategy
}

// RankedTrade is a TradeCandidate joined with its resolved jump distance.
// This is the unit handed to the trade sink.
type RankedTrade struct {
	TypeID        int32    `json:"type_id"`
	TypeName      string   `json:"type_name"`
	BuyPrice      float64  `json:"buy_price"`
	SellPrice     float64  `json:"sell_price"`
	Units         int64    `json:"units"`
	VolumeM3      float64  `json:"volume_m3"`
	Profit        float64  `json:"profit"`
	ProfitMil     float64  `json:"profit_mil"`
	ISKPerM3      float64  `json:"isk_per_m3"`
	Jumps         int      `json:"jumps"`
	Trips         int      `json:"trips"`
	TotalJumps    int      `json:"total_jumps"`
	ProfitPerJump float64  `json:"profit_per_jump"`
	Origin        Endpoint `json:"origin"`
	Dest          Endpoint `json:"dest"`
	Strategy      string   `json:"strategy"`
}

// ScanParams holds the input parameters for a market scan.
type ScanParams struct {
	GroupID          int32    `validate:"gt=0"`
	MinProfit        float64  `validate:"gte=0"`
	CargoCapacity    float64  `validate:"gt=0"`
	Strategy         Strategy `validate:"gte=0,lte=3"`
	RouteFlag        string   `validate:"oneof=shortest secure insecure"`
	RiskTiers        []string `validate:"required,min=1,dive,oneof=highsec lowsec nullsec"`
	BrokerFeePercent float64  `validate:"gte=0,lte=100"`
	SalesTaxPercent  float64  `validate:"gte=0,lte=100"`
	BidUndercut      float64  `validate:"gt=0,lte=1"`
	AskOvercut       float64  `validate:"gte=1,lte=2"`
}

var validate = validator.New()

// Validate rejects malformed parameters before a scan starts.
func (p ScanParams) Validate() error {
	if err := validate.Struct(p); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			e := errs[0]
			return fmt.Errorf("invalid scan params: field %s failed %q (value %v)",
				e.Field(), e.Tag(), e.Value())
		}
		return fmt.Errorf("invalid scan params: %w", err)
	}
	return nil
}

// riskAllowed reports whether a system's security status falls in one of the
// allowed bands: highsec >= 0.5, lowsec 0.1 to 0.5, nullsec below 0.1.
func riskAllowed(tiers []string, security float64) bool {
	for _, t := range tiers {
		switch t {
		case "highsec":
			if security >= 0.5 {
				return true
			}
		case "lowsec":
			if security >= 0.1 && security < 0.5 {
				return true
			}
		case "nullsec":
			if security < 0.1 {
				return true
			}
		}
	}
	return false
}
