// Package player is the store facade for player records. Raw payloads
// pass through the normalizer before anything touches storage, keeping
// validation a pure function and storage dumb.
package player

import (
	"context"
	"errors"
	"log/slog"

	"github.com/alexpolo1/dwroller-sub001/internal/model"
	"github.com/alexpolo1/dwroller-sub001/internal/normalize"
	"github.com/alexpolo1/dwroller-sub001/internal/storage"
)

// Service provides player record operations
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new PlayerService
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// GetAll returns all players ordered by name. Persistence failures
// degrade to an empty result rather than surfacing to the caller.
func (s *Service) GetAll(ctx context.Context) []*model.Player {
	players, err := s.storage.ListPlayers(ctx)
	if err != nil {
		s.logger.Error("list players failed", slog.String("error", err.Error()))
		return nil
	}
	return players
}

// GetByName retrieves one player record
func (s *Service) GetByName(ctx context.Context, name model.PlayerName) (*model.Player, error) {
	return s.storage.GetPlayer(ctx, name)
}

// Create repairs a raw payload and persists the canonical record.
// The returned issues are advisory; creation fails only on a duplicate
// name or a storage error.
func (s *Service) Create(ctx context.Context, raw map[string]any) (*model.Player, []normalize.Issue, error) {
	record, issues := normalize.Normalize(raw)
	if len(issues) > 0 {
		s.logger.Info("player payload repaired",
			slog.String("name", string(record.Name)),
			slog.Int("issues", len(issues)),
		)
	}
	if err := s.storage.CreatePlayer(ctx, record); err != nil {
		return nil, issues, err
	}
	return record, issues, nil
}

// Update merges a partial payload over the stored record and persists
// the re-normalized result. tabInfo/rollerInfo/shopInfo merge at
// top-level-key granularity; the merge pass re-applies the nested
// tabInfo flatten since upstream callers are not fully trusted.
// Returns false if no record matches.
func (s *Service) Update(ctx context.Context, name model.PlayerName, partial map[string]any) (*model.Player, []normalize.Issue, bool, error) {
	existing, err := s.storage.GetPlayer(ctx, name)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil, nil, false, nil
		}
		return nil, nil, false, err
	}

	record, issues := normalize.Merge(existing, partial)
	if err := s.storage.SavePlayer(ctx, record); err != nil {
		return nil, issues, false, err
	}
	return record, issues, true, nil
}

// Delete hard-deletes a player record. Inventory and ledger rows are
// deliberately not cascaded; they remain as audit history.
func (s *Service) Delete(ctx context.Context, name model.PlayerName) (bool, error) {
	return s.storage.DeletePlayer(ctx, name)
}
