package model

import "time"

// ItemName uniquely identifies a shop item in the catalog
type ItemName string

// ShopItem is one entry in the requisition catalog
type ShopItem struct {
	Name              ItemName       `json:"name"`
	Category          string         `json:"category"`
	Cost              int            `json:"cost"`
	RenownRequirement string         `json:"renownRequirement"`
	Stats             map[string]any `json:"stats,omitempty"`
}

// InventoryEntry is a player's holding of one item.
// The (player, item) pair is unique; repeat purchases increment Quantity.
type InventoryEntry struct {
	Player   PlayerName `json:"player"`
	Item     ItemName   `json:"item"`
	Quantity int        `json:"quantity"`
}

// Transaction is one immutable ledger row recording a completed purchase.
// Rows are only ever appended by the requisition engine, never mutated.
type Transaction struct {
	Player          PlayerName `json:"player"`
	Item            ItemName   `json:"item"`
	UnitCost        int        `json:"unitCost"`
	Quantity        int        `json:"quantity"`
	TotalCost       int        `json:"totalCost"`
	PreviousBalance int        `json:"previousBalance"`
	NewBalance      int        `json:"newBalance"`
	CreatedAt       time.Time  `json:"createdAt"`
}
