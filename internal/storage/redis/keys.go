package redis

import (
	"fmt"

	"github.com/alexpolo1/dwroller-sub001/internal/model"
)

// Key prefix for all requisition data
const keyPrefix = "dwroller"

// playerKey returns the Redis key for a player record
func playerKey(name model.PlayerName) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, name)
}

// playerIndexKey returns the Redis key for the SET of player names
func playerIndexKey() string {
	return fmt.Sprintf("%s:idx:players", keyPrefix)
}

// itemKey returns the Redis key for a catalog item
func itemKey(name model.ItemName) string {
	return fmt.Sprintf("%s:item:%s", keyPrefix, name)
}

// itemIndexKey returns the Redis key for the SET of item names
func itemIndexKey() string {
	return fmt.Sprintf("%s:idx:items", keyPrefix)
}

// inventoryKey returns the Redis key for a player's inventory HASH
// (field = item name, value = quantity)
func inventoryKey(name model.PlayerName) string {
	return fmt.Sprintf("%s:inv:%s", keyPrefix, name)
}

// ledgerKey returns the Redis key for a player's transaction LIST
func ledgerKey(name model.PlayerName) string {
	return fmt.Sprintf("%s:ledger:%s", keyPrefix, name)
}
