package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/alexpolo1/dwroller-sub001/internal/model"
	"github.com/alexpolo1/dwroller-sub001/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players   map[model.PlayerName]*model.Player
	items     map[model.ItemName]*model.ShopItem
	inventory map[inventoryKey]*model.InventoryEntry
	ledger    []*model.Transaction
}

type inventoryKey struct {
	player model.PlayerName
	item   model.ItemName
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:   make(map[model.PlayerName]*model.Player),
		items:     make(map[model.ItemName]*model.ShopItem),
		inventory: make(map[inventoryKey]*model.InventoryEntry),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.players[player.Name]; exists {
		return model.ErrDuplicateName
	}
	s.players[player.Name] = player
	return nil
}

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[player.Name] = player
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, name model.PlayerName) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[name]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return player, nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	players := make([]*model.Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool {
		return players[i].Name < players[j].Name
	})
	return players, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, name model.PlayerName) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[name]; !ok {
		return false, nil
	}
	// Inventory and ledger rows survive as audit history
	delete(s.players, name)
	return true, nil
}

// Catalog operations

func (s *Storage) SaveItem(ctx context.Context, item *model.ShopItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.Name] = item
	return nil
}

func (s *Storage) GetItem(ctx context.Context, name model.ItemName) (*model.ShopItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[name]
	if !ok {
		return nil, model.ErrItemNotFound
	}
	return item, nil
}

func (s *Storage) ListItems(ctx context.Context) ([]*model.ShopItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedItems(func(*model.ShopItem) bool { return true }), nil
}

func (s *Storage) ListItemsByCategory(ctx context.Context, category string) ([]*model.ShopItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedItems(func(item *model.ShopItem) bool { return item.Category == category }), nil
}

func (s *Storage) sortedItems(keep func(*model.ShopItem) bool) []*model.ShopItem {
	items := make([]*model.ShopItem, 0, len(s.items))
	for _, item := range s.items {
		if keep(item) {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Name < items[j].Name
	})
	return items
}

// Inventory and ledger reads

func (s *Storage) GetInventory(ctx context.Context, name model.PlayerName) ([]*model.InventoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var entries []*model.InventoryEntry
	for key, entry := range s.inventory {
		if key.player == name {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Item < entries[j].Item
	})
	return entries, nil
}

func (s *Storage) GetTransactions(ctx context.Context, name model.PlayerName) ([]*model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var txns []*model.Transaction
	for _, txn := range s.ledger {
		if txn.Player == name {
			txns = append(txns, txn)
		}
	}
	return txns, nil
}

// ApplyPurchase serializes purchases under the write lock, so the
// read-decide-write sequence is a single critical section and
// concurrent purchases for one player cannot both spend the same
// balance.
func (s *Storage) ApplyPurchase(ctx context.Context, name model.PlayerName, item model.ItemName, decide storage.PurchaseFunc) (*model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, ok := s.players[name]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	shopItem, ok := s.items[item]
	if !ok {
		return nil, model.ErrItemNotFound
	}

	// decide gets copies; nothing is mutated until it approves
	playerSnapshot := *player
	itemSnapshot := *shopItem
	txn, err := decide(&playerSnapshot, &itemSnapshot)
	if err != nil {
		return nil, err
	}

	player.RequisitionPoints = txn.NewBalance
	key := inventoryKey{player: name, item: item}
	if entry, exists := s.inventory[key]; exists {
		entry.Quantity += txn.Quantity
	} else {
		s.inventory[key] = &model.InventoryEntry{
			Player:   name,
			Item:     item,
			Quantity: txn.Quantity,
		}
	}
	s.ledger = append(s.ledger, txn)
	return txn, nil
}
