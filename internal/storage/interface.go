package storage

import (
	"context"

	"github.com/alexpolo1/dwroller-sub001/internal/model"
)

// PurchaseFunc decides a purchase from a consistent snapshot of the
// player and item rows. Returning an error aborts the purchase with no
// mutation; returning a transaction commits the new balance, the
// inventory increment, and the ledger row atomically. Backends may call
// the func more than once if their transaction retries, so it must be
// side-effect free.
type PurchaseFunc func(player *model.Player, item *model.ShopItem) (*model.Transaction, error)

// Storage defines the interface for data persistence
type Storage interface {
	// Player operations. CreatePlayer fails with model.ErrDuplicateName
	// if the name is taken (case-sensitive); SavePlayer overwrites.
	CreatePlayer(ctx context.Context, player *model.Player) error
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, name model.PlayerName) (*model.Player, error)
	ListPlayers(ctx context.Context) ([]*model.Player, error)
	DeletePlayer(ctx context.Context, name model.PlayerName) (bool, error)

	// Catalog operations. The catalog is read-only at runtime; SaveItem
	// exists for seeding.
	SaveItem(ctx context.Context, item *model.ShopItem) error
	GetItem(ctx context.Context, name model.ItemName) (*model.ShopItem, error)
	ListItems(ctx context.Context) ([]*model.ShopItem, error)
	ListItemsByCategory(ctx context.Context, category string) ([]*model.ShopItem, error)

	// Inventory and ledger reads. Both tolerate names with no live
	// player row: rows referencing deleted players remain readable as
	// audit history.
	GetInventory(ctx context.Context, name model.PlayerName) ([]*model.InventoryEntry, error)
	GetTransactions(ctx context.Context, name model.PlayerName) ([]*model.Transaction, error)

	// ApplyPurchase runs decide against a consistent snapshot of the
	// player and item, then applies the balance decrement, inventory
	// upsert, and ledger append as one atomic unit. Concurrent
	// purchases for the same player serialize; no reader observes a
	// partial application. Missing rows fail with
	// model.ErrPlayerNotFound / model.ErrItemNotFound before decide
	// runs.
	ApplyPurchase(ctx context.Context, name model.PlayerName, item model.ItemName, decide PurchaseFunc) (*model.Transaction, error)
}
