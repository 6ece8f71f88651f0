// Package shop is the read side of the armoury: the item catalog plus
// per-player inventory and transaction history.
package shop

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/alexpolo1/dwroller-sub001/internal/model"
	"github.com/alexpolo1/dwroller-sub001/internal/storage"
)

// Service provides catalog and ledger operations
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new ShopService
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// GetAllItems returns the full catalog ordered by name
func (s *Service) GetAllItems(ctx context.Context) ([]*model.ShopItem, error) {
	return s.storage.ListItems(ctx)
}

// GetItemsByCategory returns catalog items in one category
func (s *Service) GetItemsByCategory(ctx context.Context, category string) ([]*model.ShopItem, error) {
	return s.storage.ListItemsByCategory(ctx, category)
}

// GetPlayerInventory returns a player's holdings. Names with no live
// player row return whatever rows exist, so audit history for deleted
// players stays readable.
func (s *Service) GetPlayerInventory(ctx context.Context, name model.PlayerName) ([]*model.InventoryEntry, error) {
	return s.storage.GetInventory(ctx, name)
}

// GetPlayerTransactions returns a player's ledger rows in append order
func (s *Service) GetPlayerTransactions(ctx context.Context, name model.PlayerName) ([]*model.Transaction, error) {
	return s.storage.GetTransactions(ctx, name)
}

// catalogFile is the on-disk seed format: a flat list of items
type catalogFile struct {
	Items []catalogItem `json:"items"`
}

type catalogItem struct {
	Name              string         `json:"name"`
	Category          string         `json:"category"`
	Cost              int            `json:"cost"`
	RenownRequirement string         `json:"renownRequirement"`
	Stats             map[string]any `json:"stats,omitempty"`
}

// LoadCatalogFile seeds the catalog from a JSON file. Existing items
// with the same name are overwritten; renown requirements are
// canonicalized so the purchase gate never sees a misspelled rank.
func (s *Service) LoadCatalogFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	loaded := 0
	for _, entry := range file.Items {
		if entry.Name == "" {
			s.logger.Warn("skipping catalog entry with empty name", slog.String("path", path))
			continue
		}
		requirement, matched := model.CanonicalRenown(entry.RenownRequirement)
		if !matched && entry.RenownRequirement != "" {
			s.logger.Warn("unknown renown requirement, defaulting to None",
				slog.String("item", entry.Name),
				slog.String("requirement", entry.RenownRequirement),
			)
		}
		cost := entry.Cost
		if cost < 0 {
			cost = 0
		}
		item := &model.ShopItem{
			Name:              model.ItemName(entry.Name),
			Category:          entry.Category,
			Cost:              cost,
			RenownRequirement: requirement,
			Stats:             entry.Stats,
		}
		if err := s.storage.SaveItem(ctx, item); err != nil {
			return loaded, err
		}
		loaded++
	}

	s.logger.Info("catalog loaded", slog.String("path", path), slog.Int("items", loaded))
	return loaded, nil
}
