package engine

import "testing"

func TestParseStrategy(t *testing.T) {
	cases := map[string]Strategy{
		"instant":     StrategyInstant,
		"buy_orders":  StrategyPlaceBuy,
		"sell_orders": StrategyPlaceSell,
		"patient":     StrategyPatient,
	}
	for tag, want := range cases {
		got, err := ParseStrategy(tag)
		if err != nil {
			t.Errorf("ParseStrategy(%q): %v", tag, err)
			continue
		}
		if got != want {
			t.Errorf("ParseStrategy(%q) = %v, want %v", tag, got, want)
		}
		if got.String() != tag {
			t.Errorf("%v.String() = %q, want %q", got, got.String(), tag)
		}
	}
}

func TestParseStrategy_Unknown(t *testing.T) {
	if _, err := ParseStrategy("yolo"); err == nil {
		t.Error("ParseStrategy(\"yolo\") should fail")
	}
}

func TestNewLocationGroups_SellSideAscending(t *testing.T) {
	groups := NewLocationGroups([]Listing{
		listing(30, 1, 1, 101),
		listing(10, 1, 1, 101),
		listing(20, 1, 1, 101),
	}, false)
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	prices := groups[0].Listings
	if prices[0].Price != 10 || prices[1].Price != 20 || prices[2].Price != 30 {
		t.Errorf("sell side not ascending: %v, %v, %v", prices[0].Price, prices[1].Price, prices[2].Price)
	}
}

func TestNewLocationGroups_BuySideDescending(t *testing.T) {
	groups := NewLocationGroups([]Listing{
		listing(10, 1, 1, 101),
		listing(30, 1, 1, 101),
		listing(20, 1, 1, 101),
	}, true)
	prices := groups[0].Listings
	if prices[0].Price != 30 || prices[1].Price != 20 || prices[2].Price != 10 {
		t.Errorf("buy side not descending: %v, %v, %v", prices[0].Price, prices[1].Price, prices[2].Price)
	}
}

func TestNewLocationGroups_PartitionsByStation(t *testing.T) {
	groups := NewLocationGroups([]Listing{
		listing(10, 1, 1, 102),
		listing(10, 1, 1, 101),
		listing(10, 1, 1, 102),
	}, false)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].StationID != 101 || groups[1].StationID != 102 {
		t.Errorf("groups not ordered by station id: %d, %d", groups[0].StationID, groups[1].StationID)
	}
	if len(groups[1].Listings) != 2 {
		t.Errorf("station 102 has %d listings, want 2", len(groups[1].Listings))
	}
}

func TestRiskAllowed(t *testing.T) {
	cases := []struct {
		tiers    []string
		security float64
		want     bool
	}{
		{[]string{"highsec"}, 0.9, true},
		{[]string{"highsec"}, 0.5, true},
		{[]string{"highsec"}, 0.4, false},
		{[]string{"lowsec"}, 0.4, true},
		{[]string{"lowsec"}, 0.1, true},
		{[]string{"lowsec"}, 0.05, false},
		{[]string{"lowsec"}, 0.5, false},
		{[]string{"nullsec"}, 0.05, true},
		{[]string{"nullsec"}, -1.0, true},
		{[]string{"nullsec"}, 0.1, false},
		{[]string{"highsec", "lowsec"}, 0.3, true},
		{[]string{"highsec", "lowsec", "nullsec"}, -0.5, true},
	}
	for _, c := range cases {
		if got := riskAllowed(c.tiers, c.security); got != c.want {
			t.Errorf("riskAllowed(%v, %v) = %v, want %v", c.tiers, c.security, got, c.want)
		}
	}
}

func TestScanParamsValidate(t *testing.T) {
	valid := testParams(StrategyInstant)
	if err := valid.Validate(); err != nil {
		t.Errorf("valid params rejected: %v", err)
	}

	p := valid
	p.GroupID = 0
	if err := p.Validate(); err == nil {
		t.Error("zero group id accepted")
	}

	p = valid
	p.CargoCapacity = 0
	if err := p.Validate(); err == nil {
		t.Error("zero cargo capacity accepted")
	}

	p = valid
	p.RouteFlag = "scenic"
	if err := p.Validate(); err == nil {
		t.Error("bogus route flag accepted")
	}

	p = valid
	p.RiskTiers = nil
	if err := p.Validate(); err == nil {
		t.Error("empty risk tiers accepted")
	}

	p = valid
	p.RiskTiers = []string{"wormhole"}
	if err := p.Validate(); err == nil {
		t.Error("bogus risk tier accepted")
	}

	p = valid
	p.BidUndercut = 1.5
	if err := p.Validate(); err == nil {
		t.Error("undercut above 1 accepted")
	}
}
