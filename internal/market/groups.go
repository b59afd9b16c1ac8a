package market

import "fmt"

// Group is one node of the market group tree.
type Group struct {
	MarketGroupID   int32  `json:"marketGroupID"`
	ParentGroupID   int32  `json:"parentGroupID"`
	MarketGroupName string `json:"marketGroupName"`
	HasTypes        bool   `json:"hasTypes"`
}

// GroupType is one tradeable item inside a leaf market group.
type GroupType struct {
	TypeID   int32  `json:"typeID"`
	TypeName string `json:"typeName"`
}

// GroupPreset is a named top-level market group exposed through the API.
type GroupPreset struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

// GroupPresets are the scan entry points offered by the UI.
var GroupPresets = map[string]GroupPreset{
	"materials":      {533, "Materials"},
	"ships":          {4, "Ships"},
	"ship_equipment": {9, "Ship Equipment"},
	"drones":         {157, "Drones"},
	"implants":       {24, "Implants & Boosters"},
	"manufacture":    {475, "Manufacture & Research"},
	"modifications":  {955, "Ship Modifications"},
	"pilot_services": {1922, "Pilot's Services"},
}

// FetchMarketGroups fetches the full market group tree.
func (c *Client) FetchMarketGroups() ([]Group, error) {
	var groups []Group
	if err := c.GetJSON(c.baseURL+"/market/groups", &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// FetchGroupTypes fetches the item types of one leaf market group.
func (c *Client) FetchGroupTypes(groupID int32) ([]GroupType, error) {
	var types []GroupType
	url := fmt.Sprintf("%s/market/groups/%d/types", c.baseURL, groupID)
	if err := c.GetJSON(url, &types); err != nil {
		return nil, err
	}
	return types, nil
}

// ExpandLeafGroups walks the group tree below parentID and returns every
// descendant group that directly carries item types. A parent that is itself
// a leaf expands to just itself.
func ExpandLeafGroups(groups []Group, parentID int32) []int32 {
	var leaves []int32
	for _, g := range groups {
		if g.MarketGroupID == parentID && g.HasTypes {
			leaves = append(leaves, g.MarketGroupID)
		}
	}
	for _, g := range groups {
		if g.ParentGroupID != parentID {
			continue
		}
		if g.HasTypes {
			leaves = append(leaves, g.MarketGroupID)
		} else {
			leaves = append(leaves, ExpandLeafGroups(groups, g.MarketGroupID)...)
		}
	}
	return leaves
}
