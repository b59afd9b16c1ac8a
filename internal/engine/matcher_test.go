package engine

import (
	"math"
	"strings"
	"testing"
)

func testParams(strategy Strategy) ScanParams {
	return ScanParams{
		GroupID:          533,
		MinProfit:        0,
		CargoCapacity:    830_000,
		Strategy:         strategy,
		RouteFlag:        "secure",
		RiskTiers:        []string{"highsec"},
		BrokerFeePercent: 0,
		SalesTaxPercent:  0,
		BidUndercut:      0.95,
		AskOvercut:       1.05,
	}
}

func listing(price float64, volume int32, systemID int32, stationID int64) Listing {
	return Listing{
		Price:       price,
		Volume:      volume,
		SystemID:    systemID,
		SystemName:  "System",
		StationID:   stationID,
		StationName: "Station",
		Security:    0.9,
	}
}

func TestNetProfit_FeeFormula(t *testing.T) {
	p := testParams(StrategyInstant)
	p.BrokerFeePercent = 3
	p.SalesTaxPercent = 3.6

	// 250 gross, minus 15 broker on the buy leg, minus 49.5 on the sell leg.
	net := netProfit(500, 750, p)
	if math.Abs(net-185.5) > 1e-9 {
		t.Errorf("netProfit(500, 750) = %v, want 185.5", net)
	}
}

func TestNetProfit_ZeroFees(t *testing.T) {
	net := netProfit(500, 750, testParams(StrategyInstant))
	if math.Abs(net-250) > 1e-9 {
		t.Errorf("netProfit with zero fees = %v, want 250", net)
	}
}

func TestMatchInstant_MinProfitFilter(t *testing.T) {
	sells := NewLocationGroups([]Listing{listing(500, 1, 1, 101)}, false)
	buys := NewLocationGroups([]Listing{listing(750, 1, 2, 102)}, true)

	p := testParams(StrategyInstant)
	p.BrokerFeePercent = 3
	p.SalesTaxPercent = 3.6

	p.MinProfit = 100
	if got := MatchTrades(sells, buys, p); len(got) != 1 {
		t.Fatalf("min_profit=100: got %d candidates, want 1", len(got))
	}

	p.MinProfit = 200
	if got := MatchTrades(sells, buys, p); len(got) != 0 {
		t.Errorf("min_profit=200: got %d candidates, want 0", len(got))
	}
}

func TestMatchInstant_BlendedWalk(t *testing.T) {
	sells := NewLocationGroups([]Listing{
		listing(10, 100, 1, 101),
		listing(12, 100, 1, 101),
	}, false)
	buys := NewLocationGroups([]Listing{
		listing(15, 150, 2, 102),
		listing(11, 100, 2, 102),
	}, true)

	got := MatchTrades(sells, buys, testParams(StrategyInstant))
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	c := got[0]

	// 100 units at 10 plus 50 units at 12 fill the 150-unit buy at 15; the
	// walk stops when the 12 sell meets the 11 buy.
	if c.Units != 150 {
		t.Errorf("units = %d, want 150", c.Units)
	}
	if math.Abs(c.NetProfit-650) > 1e-9 {
		t.Errorf("net profit = %v, want 650", c.NetProfit)
	}
	wantBuy := 1600.0 / 150
	if math.Abs(c.BuyPrice-wantBuy) > 1e-9 {
		t.Errorf("blended buy price = %v, want %v", c.BuyPrice, wantBuy)
	}
	if math.Abs(c.SellPrice-15) > 1e-9 {
		t.Errorf("blended sell price = %v, want 15", c.SellPrice)
	}
}

func TestMatchInstant_SameStationSkipped(t *testing.T) {
	sells := NewLocationGroups([]Listing{listing(10, 10, 1, 101)}, false)
	buys := NewLocationGroups([]Listing{listing(20, 10, 1, 101)}, true)

	if got := MatchTrades(sells, buys, testParams(StrategyInstant)); len(got) != 0 {
		t.Errorf("same-station pair produced %d candidates, want 0", len(got))
	}
}

func TestMatchInstant_NoCrossedBook(t *testing.T) {
	sells := NewLocationGroups([]Listing{listing(20, 10, 1, 101)}, false)
	buys := NewLocationGroups([]Listing{listing(10, 10, 2, 102)}, true)

	if got := MatchTrades(sells, buys, testParams(StrategyInstant)); len(got) != 0 {
		t.Errorf("uncrossed book produced %d candidates, want 0", len(got))
	}
}

func TestMatchPlaceBuy(t *testing.T) {
	sells := NewLocationGroups([]Listing{listing(100, 10, 1, 101)}, false)
	buys := NewLocationGroups([]Listing{
		listing(150, 5, 2, 102),
		listing(90, 20, 2, 102),
	}, true)

	got := MatchTrades(sells, buys, testParams(StrategyPlaceBuy))
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	c := got[0]
	if math.Abs(c.BuyPrice-95) > 1e-9 {
		t.Errorf("bid = %v, want 95 (0.95 undercut of 100)", c.BuyPrice)
	}
	// The 90 buy is below the bid and must not match.
	if math.Abs(c.SellPrice-150) > 1e-9 {
		t.Errorf("sell price = %v, want 150", c.SellPrice)
	}
	if c.Units != 5 {
		t.Errorf("units = %d, want 5", c.Units)
	}
	if !strings.HasSuffix(c.Origin.StationName, " (Buy Order)") {
		t.Errorf("origin station %q missing placed-order annotation", c.Origin.StationName)
	}
	if strings.Contains(c.Dest.StationName, "(") {
		t.Errorf("dest station %q should not be annotated", c.Dest.StationName)
	}
}

func TestMatchPlaceSell(t *testing.T) {
	sells := NewLocationGroups([]Listing{
		listing(150, 4, 1, 101),
		listing(220, 9, 1, 101),
	}, false)
	buys := NewLocationGroups([]Listing{listing(200, 10, 2, 102)}, true)

	got := MatchTrades(sells, buys, testParams(StrategyPlaceSell))
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	c := got[0]
	if math.Abs(c.SellPrice-210) > 1e-9 {
		t.Errorf("ask = %v, want 210 (1.05 overcut of 200)", c.SellPrice)
	}
	// The 220 sell is above the ask and must not match.
	if math.Abs(c.BuyPrice-150) > 1e-9 {
		t.Errorf("buy price = %v, want 150", c.BuyPrice)
	}
	if c.Units != 4 {
		t.Errorf("units = %d, want 4", c.Units)
	}
	if !strings.HasSuffix(c.Dest.StationName, " (Sell Order)") {
		t.Errorf("dest station %q missing placed-order annotation", c.Dest.StationName)
	}
}

func TestMatchPatient(t *testing.T) {
	sells := NewLocationGroups([]Listing{listing(100, 8, 1, 101)}, false)
	buys := NewLocationGroups([]Listing{listing(200, 5, 2, 102)}, true)

	got := MatchTrades(sells, buys, testParams(StrategyPatient))
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	c := got[0]
	if math.Abs(c.BuyPrice-95) > 1e-9 || math.Abs(c.SellPrice-210) > 1e-9 {
		t.Errorf("prices = %v/%v, want 95/210", c.BuyPrice, c.SellPrice)
	}
	if c.Units != 5 {
		t.Errorf("units = %d, want 5", c.Units)
	}
	if !strings.HasSuffix(c.Origin.StationName, " (Buy Order)") ||
		!strings.HasSuffix(c.Dest.StationName, " (Sell Order)") {
		t.Errorf("endpoints %q -> %q missing placed-order annotations",
			c.Origin.StationName, c.Dest.StationName)
	}
}

func TestMatchPatient_CrossedSyntheticPricesSkipped(t *testing.T) {
	sells := NewLocationGroups([]Listing{listing(100, 8, 1, 101)}, false)
	buys := NewLocationGroups([]Listing{listing(90, 5, 2, 102)}, true)

	p := testParams(StrategyPatient)
	p.BidUndercut = 1
	p.AskOvercut = 1
	if got := MatchTrades(sells, buys, p); len(got) != 0 {
		t.Errorf("bid >= ask produced %d candidates, want 0", len(got))
	}
}

func TestBestPerPair(t *testing.T) {
	cands := []TradeCandidate{
		{NetProfit: 100, Origin: Endpoint{StationID: 101}, Dest: Endpoint{StationID: 102}},
		{NetProfit: 300, Origin: Endpoint{StationID: 101}, Dest: Endpoint{StationID: 102}},
		{NetProfit: 200, Origin: Endpoint{StationID: 101}, Dest: Endpoint{StationID: 103}},
	}
	got := bestPerPair(cands)
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	if got[0].NetProfit != 300 || got[1].NetProfit != 200 {
		t.Errorf("profits = %v, %v; want 300, 200 (descending)", got[0].NetProfit, got[1].NetProfit)
	}
}
