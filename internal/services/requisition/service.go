// Package requisition is the purchase engine: it spends a player's
// requisition points against the catalog under balance and renown
// constraints. The decision logic lives here; atomicity comes from the
// storage backend's ApplyPurchase boundary.
package requisition

import (
	"context"
	"log/slog"
	"math"

	"github.com/alexpolo1/dwroller-sub001/internal/dependencies/clock"
	"github.com/alexpolo1/dwroller-sub001/internal/model"
	"github.com/alexpolo1/dwroller-sub001/internal/storage"
)

// MaxQuantity bounds a single purchase. Anything above it is a bad
// request, and the bound keeps cost*quantity well inside int range for
// any catalog cost the normalizer admits.
const MaxQuantity = 1_000_000

// Service executes purchases
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new RequisitionService
func New(storage storage.Storage, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clk,
		logger:  logger,
	}
}

// Purchase atomically spends quantity * item cost from the player's
// balance, increments their inventory, and appends a ledger row. The
// whole read-decide-write sequence runs inside the storage backend's
// transaction boundary: a failure at any step leaves no mutation
// visible, and concurrent purchases for the same player serialize on
// the balance row.
//
// There is no idempotency key. If a purchase times out at the storage
// layer but actually committed, a caller-level retry will spend again;
// retry policy is the caller's responsibility.
func (s *Service) Purchase(ctx context.Context, name model.PlayerName, item model.ItemName, quantity int) (*model.Transaction, error) {
	if quantity < 1 || quantity > MaxQuantity {
		return nil, model.ErrInvalidQuantity
	}

	txn, err := s.storage.ApplyPurchase(ctx, name, item, func(p *model.Player, it *model.ShopItem) (*model.Transaction, error) {
		// A price that would overflow cannot possibly be affordable;
		// refuse before the multiply so the total never wraps
		if it.Cost > 0 && quantity > math.MaxInt/it.Cost {
			return nil, model.ErrInsufficientFunds
		}
		totalCost := it.Cost * quantity
		if p.RequisitionPoints < totalCost {
			return nil, model.ErrInsufficientFunds
		}
		// Unknown renown strings rank lowest rather than erroring
		if model.RenownRank(p.RenownLevel) < model.RenownRank(it.RenownRequirement) {
			return nil, model.ErrInsufficientRenown
		}
		return &model.Transaction{
			Player:          p.Name,
			Item:            it.Name,
			UnitCost:        it.Cost,
			Quantity:        quantity,
			TotalCost:       totalCost,
			PreviousBalance: p.RequisitionPoints,
			NewBalance:      p.RequisitionPoints - totalCost,
			CreatedAt:       s.clock.Now().UTC(),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchase completed",
		slog.String("player", string(txn.Player)),
		slog.String("item", string(txn.Item)),
		slog.Int("quantity", txn.Quantity),
		slog.Int("total_cost", txn.TotalCost),
		slog.Int("new_balance", txn.NewBalance),
	)
	return txn, nil
}
