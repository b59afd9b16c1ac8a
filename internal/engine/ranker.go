package engine

import (
	"math"

	"eve-trader/internal/routes"
)

// RankTrades joins matched candidates with their resolved jump distances and
// computes the travel-normalized profit metrics. Candidates whose pair is
// unreachable or failed to resolve are excluded entirely, not scored zero.
func RankTrades(typeID int32, typeName string, unitVolume float64, cands []TradeCandidate, resolved map[routes.Pair]routes.Result, p ScanParams) []RankedTrade {
	ranked := make([]RankedTrade, 0, len(cands))
	for _, c := range cands {
		res, ok := resolved[routes.Pair{Origin: c.Origin.SystemID, Dest: c.Dest.SystemID}]
		if !ok || res.Unreachable || res.Err != nil {
			continue
		}

		volumeM3 := float64(c.Units) * unitVolume
		trips := 1
		if p.CargoCapacity > 0 {
			trips = int(math.Ceil(volumeM3 / p.CargoCapacity))
			if trips < 1 {
				trips = 1
			}
		}
		totalJumps := res.Jumps * 2 * trips

		profitPerJump := c.NetProfit
		if totalJumps > 0 {
			profitPerJump = c.NetProfit / float64(totalJumps)
		}

		iskPerM3 := 0.0
		if volumeM3 > 0 {
			iskPerM3 = c.NetProfit / volumeM3
		}

		ranked = append(ranked, RankedTrade{
			TypeID:        typeID,
			TypeName:      typeName,
			BuyPrice:      c.BuyPrice,
			SellPrice:     c.SellPrice,
			Units:         c.Units,
			VolumeM3:      volumeM3,
			Profit:        c.NetProfit,
			ProfitMil:     c.NetProfit / 1_000_000,
			ISKPerM3:      iskPerM3,
			Jumps:         res.Jumps,
			Trips:         trips,
			TotalJumps:    totalJumps,
			ProfitPerJump: profitPerJump,
			Origin:        c.Origin,
			Dest:          c.Dest,
			Strategy:      c.Strategy.String(),
		})
	}
	return ranked
}
