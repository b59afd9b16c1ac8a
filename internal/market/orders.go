package market

import (
	"fmt"
	"strconv"
)

// Order mirrors one entry of the Tycoon order book response.
type Order struct {
	OrderID      int64   `json:"orderId"`
	TypeID       int32   `json:"typeId"`
	IsBuyOrder   bool    `json:"isBuyOrder"`
	Price        float64 `json:"price"`
	VolumeRemain int32   `json:"volumeRemain"`
	SystemID     int32   `json:"systemId"`
	LocationID   int64   `json:"locationId"`
}

// SystemInfo carries the security status and display name of a solar system
// referenced by the order book.
type SystemInfo struct {
	Name     string  `json:"name"`
	Security float64 `json:"security"`
}

// ItemType holds the per-unit packaged volume of the traded item.
type ItemType struct {
	Volume float64 `json:"volume"`
}

// OrderBook is the full market snapshot for one item: every live order plus
// the lookup maps needed to display them.
type OrderBook struct {
	Orders         []Order               `json:"orders"`
	Systems        map[string]SystemInfo `json:"systems"`
	StationNames   map[string]string     `json:"stationNames"`
	StructureNames map[string]string     `json:"structureNames"`
	ItemType       ItemType              `json:"itemType"`
}

// structureIDFloor separates NPC stations from player structures in the
// location id space.
const structureIDFloor = 70_000_000

// StationName resolves a location id to its display name.
func (b *OrderBook) StationName(locationID int64) string {
	key := strconv.FormatInt(locationID, 10)
	if locationID > structureIDFloor {
		if name, ok := b.StructureNames[key]; ok {
			return name
		}
		return "Unknown Structure"
	}
	if name, ok := b.StationNames[key]; ok {
		return name
	}
	return "Unknown Station"
}

// System returns the metadata for a system id referenced by an order.
func (b *OrderBook) System(systemID int32) (SystemInfo, bool) {
	info, ok := b.Systems[strconv.FormatInt(int64(systemID), 10)]
	return info, ok
}

// FetchOrderBook fetches the current order book for one item type.
func (c *Client) FetchOrderBook(typeID int32) (*OrderBook, error) {
	var book OrderBook
	url := fmt.Sprintf("%s/market/orders/%d", c.baseURL, typeID)
	if err := c.GetJSON(url, &book); err != nil {
		return nil, err
	}
	return &book, nil
}
