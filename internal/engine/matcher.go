package engine

import "sort"

// MatchTrades runs the configured strategy over an item's grouped sell and
// buy listings and returns at most one candidate per (origin, destination)
// station pair. Pure function: no I/O, no shared state. An empty result is a
// normal outcome, not an error.
func MatchTrades(sells, buys []LocationGroup, p ScanParams) []TradeCandidate {
	var cands []TradeCandidate
	switch p.Strategy {
	case StrategyInstant:
		cands = matchInstant(sells, buys, p)
	case StrategyPlaceBuy:
		cands = matchPlaceBuy(sells, buys, p)
	case StrategyPlaceSell:
		cands = matchPlaceSell(sells, buys, p)
	case StrategyPatient:
		cands = matchPatient(sells, buys, p)
	}
	return bestPerPair(cands)
}

// netProfit applies fees to a trade's acquisition cost and disposal revenue:
// broker fee on both legs, sales tax on the disposal leg only.
func netProfit(cost, revenue float64, p ScanParams) float64 {
	gross := revenue - cost
	return gross - cost*p.BrokerFeePercent/100 - revenue*(p.BrokerFeePercent+p.SalesTaxPercent)/100
}

func endpoint(l Listing) Endpoint {
	return Endpoint{
		SystemID:    l.SystemID,
		SystemName:  l.SystemName,
		StationID:   l.StationID,
		StationName: l.StationName,
		Security:    l.Security,
	}
}

// placedOrder annotates the display name of a synthesized-order side so
// downstream consumers can tell placed-order trades from instant ones.
func placedOrder(e Endpoint, label string) Endpoint {
	e.StationName += " (" + label + ")"
	return e
}

// matchInstant walks each (sell location, buy location) pair in price order,
// consuming volume from the cheapest sell and the richest buy simultaneously
// until either side runs out or the next sell price meets the next buy price.
// The walk blends price levels into a single averaged-price candidate per
// location pair.
func matchInstant(sells, buys []LocationGroup, p ScanParams) []TradeCandidate {
	var out []TradeCandidate
	for _, sg := range sells {
		for _, bg := range buys {
			if sg.StationID == bg.StationID {
				continue
			}

			var units int64
			var cost, revenue float64
			si, bi := 0, 0
			sellLeft := int64(sg.Listings[0].Volume)
			buyLeft := int64(bg.Listings[0].Volume)
			for si < len(sg.Listings) && bi < len(bg.Listings) {
				s, b := sg.Listings[si], bg.Listings[bi]
				if s.Price >= b.Price {
					break
				}
				n := sellLeft
				if buyLeft < n {
					n = buyLeft
				}
				units += n
				cost += s.Price * float64(n)
				revenue += b.Price * float64(n)
				sellLeft -= n
				buyLeft -= n
				if sellLeft == 0 {
					si++
					if si < len(sg.Listings) {
						sellLeft = int64(sg.Listings[si].Volume)
					}
				}
				if buyLeft == 0 {
					bi++
					if bi < len(bg.Listings) {
						buyLeft = int64(bg.Listings[bi].Volume)
					}
				}
			}
			if units == 0 {
				continue
			}

			net := netProfit(cost, revenue, p)
			if net < p.MinProfit {
				continue
			}
			out = append(out, TradeCandidate{
				BuyPrice:  cost / float64(units),
				SellPrice: revenue / float64(units),
				Units:     units,
				NetProfit: net,
				Origin:    endpoint(sg.Listings[0]),
				Dest:      endpoint(bg.Listings[0]),
				Strategy:  StrategyInstant,
			})
		}
	}
	return out
}

// matchPlaceBuy synthesizes a buy order priced just under each location's
// cheapest sell listing, then sells the acquired stock into existing buy
// orders elsewhere.
func matchPlaceBuy(sells, buys []LocationGroup, p ScanParams) []TradeCandidate {
	var out []TradeCandidate
	for _, sg := range sells {
		cheapest := sg.Listings[0]
		bid := cheapest.Price * p.BidUndercut
		for _, bg := range buys {
			if sg.StationID == bg.StationID {
				continue
			}
			for _, b := range bg.Listings {
				if bid >= b.Price {
					// Listings are price-descending; nothing further matches.
					break
				}
				units := int64(cheapest.Volume)
				if int64(b.Volume) < units {
					units = int64(b.Volume)
				}
				cost := bid * float64(units)
				revenue := b.Price * float64(units)
				net := netProfit(cost, revenue, p)
				if net < p.MinProfit {
					continue
				}
				out = append(out, TradeCandidate{
					BuyPrice:  bid,
					SellPrice: b.Price,
					Units:     units,
					NetProfit: net,
					Origin:    placedOrder(endpoint(cheapest), "Buy Order"),
					Dest:      endpoint(b),
					Strategy:  StrategyPlaceBuy,
				})
			}
		}
	}
	return out
}

// matchPlaceSell buys from existing sell listings and synthesizes a sell
// order priced just over the best buy order at the destination.
func matchPlaceSell(sells, buys []LocationGroup, p ScanParams) []TradeCandidate {
	var out []TradeCandidate
	for _, bg := range buys {
		best := bg.Listings[0]
		ask := best.Price * p.AskOvercut
		for _, sg := range sells {
			if sg.StationID == bg.StationID {
				continue
			}
			for _, s := range sg.Listings {
				if s.Price >= ask {
					// Listings are price-ascending; nothing further matches.
					break
				}
				units := int64(s.Volume)
				if int64(best.Volume) < units {
					units = int64(best.Volume)
				}
				cost := s.Price * float64(units)
				revenue := ask * float64(units)
				net := netProfit(cost, revenue, p)
				if net < p.MinProfit {
					continue
				}
				out = append(out, TradeCandidate{
					BuyPrice:  s.Price,
					SellPrice: ask,
					Units:     units,
					NetProfit: net,
					Origin:    endpoint(s),
					Dest:      placedOrder(endpoint(best), "Sell Order"),
					Strategy:  StrategyPlaceSell,
				})
			}
		}
	}
	return out
}

// matchPatient synthesizes both sides: a buy order under the cheapest sell at
// the origin and a sell order over the best buy at the destination.
func matchPatient(sells, buys []LocationGroup, p ScanParams) []TradeCandidate {
	var out []TradeCandidate
	for _, sg := range sells {
		cheapest := sg.Listings[0]
		bid := cheapest.Price * p.BidUndercut
		for _, bg := range buys {
			if sg.StationID == bg.StationID {
				continue
			}
			best := bg.Listings[0]
			ask := best.Price * p.AskOvercut
			if bid >= ask {
				continue
			}
			units := int64(cheapest.Volume)
			if int64(best.Volume) < units {
				units = int64(best.Volume)
			}
			cost := bid * float64(units)
			revenue := ask * float64(units)
			net := netProfit(cost, revenue, p)
			if net < p.MinProfit {
				continue
			}
			out = append(out, TradeCandidate{
				BuyPrice:  bid,
				SellPrice: ask,
				Units:     units,
				NetProfit: net,
				Origin:    placedOrder(endpoint(cheapest), "Buy Order"),
				Dest:      placedOrder(endpoint(best), "Sell Order"),
				Strategy:  StrategyPatient,
			})
		}
	}
	return out
}

// bestPerPair keeps only the highest-net-profit candidate for each
// (origin station, destination station) pair, ordered most profitable first.
func bestPerPair(cands []TradeCandidate) []TradeCandidate {
	type pair struct{ origin, dest int64 }
	best := make(map[pair]TradeCandidate)
	for _, c := range cands {
		k := pair{c.Origin.StationID, c.Dest.StationID}
		if cur, ok := best[k]; !ok || c.NetProfit > cur.NetProfit {
			best[k] = c
		}
	}
	out := make([]TradeCandidate, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].NetProfit > out[j].NetProfit
	})
	return out
}
