package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/alexpolo1/dwroller-sub001/internal/model"
	"github.com/alexpolo1/dwroller-sub001/internal/storage"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	store, err := New(filepath.Join(s.T().TempDir(), "dwroller.db"))
	s.Require().NoError(err)
	s.storage = store
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
}

func (s *StorageSuite) player(name string, balance int) *model.Player {
	return &model.Player{
		Name:              model.PlayerName(name),
		RollerInfo:        map[string]any{"lastRoll": float64(42)},
		RequisitionPoints: balance,
		RenownLevel:       model.RenownDistinguished,
		Tab: model.TabInfo{
			Characteristics: map[string]int{"ws": 45},
			Skills:          map[string]model.SkillRating{"Dodge": {Trained: true}},
			Renown:          model.RenownDistinguished,
		},
	}
}

func (s *StorageSuite) item(name, category string, cost int) *model.ShopItem {
	return &model.ShopItem{
		Name:              model.ItemName(name),
		Category:          category,
		Cost:              cost,
		RenownRequirement: model.RenownNone,
		Stats:             map[string]any{"damage": "1d10+9"},
	}
}

func spend(qty int) storage.PurchaseFunc {
	return func(p *model.Player, it *model.ShopItem) (*model.Transaction, error) {
		total := it.Cost * qty
		if p.RequisitionPoints < total {
			return nil, model.ErrInsufficientFunds
		}
		return &model.Transaction{
			Player:          p.Name,
			Item:            it.Name,
			UnitCost:        it.Cost,
			Quantity:        qty,
			TotalCost:       total,
			PreviousBalance: p.RequisitionPoints,
			NewBalance:      p.RequisitionPoints - total,
			CreatedAt:       time.Now().UTC(),
		}, nil
	}
}

// Player tests

func (s *StorageSuite) TestCreateAndGetPlayerRoundTripsJSONColumns() {
	err := s.storage.CreatePlayer(s.ctx, s.player("Artemis", 80))
	s.Require().NoError(err)

	got, err := s.storage.GetPlayer(s.ctx, "Artemis")
	s.Require().NoError(err)
	s.Equal(80, got.RequisitionPoints)
	s.Equal(model.RenownDistinguished, got.RenownLevel)
	s.Equal(float64(42), got.RollerInfo["lastRoll"])
	s.Equal(45, got.Tab.Characteristics["ws"])
	s.True(got.Tab.Skills["Dodge"].Trained)
}

func (s *StorageSuite) TestCreateDuplicateNameFails() {
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, s.player("Artemis", 80)))

	err := s.storage.CreatePlayer(s.ctx, s.player("Artemis", 10))
	s.ErrorIs(err, model.ErrDuplicateName)

	got, _ := s.storage.GetPlayer(s.ctx, "Artemis")
	s.Equal(80, got.RequisitionPoints)
}

func (s *StorageSuite) TestGetPlayerNotFound() {
	_, err := s.storage.GetPlayer(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestListPlayersOrderedByName() {
	_ = s.storage.CreatePlayer(s.ctx, s.player("Cassius", 0))
	_ = s.storage.CreatePlayer(s.ctx, s.player("Artemis", 0))

	players, err := s.storage.ListPlayers(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(players, 2)
	s.Equal(model.PlayerName("Artemis"), players[0].Name)
}

func (s *StorageSuite) TestSavePlayerUpserts() {
	p := s.player("Artemis", 80)
	s.Require().NoError(s.storage.SavePlayer(s.ctx, p))
	p.RequisitionPoints = 55
	s.Require().NoError(s.storage.SavePlayer(s.ctx, p))

	got, _ := s.storage.GetPlayer(s.ctx, "Artemis")
	s.Equal(55, got.RequisitionPoints)
}

func (s *StorageSuite) TestDeletePlayer() {
	_ = s.storage.CreatePlayer(s.ctx, s.player("Artemis", 0))

	deleted, err := s.storage.DeletePlayer(s.ctx, "Artemis")
	s.Require().NoError(err)
	s.True(deleted)

	deleted, err = s.storage.DeletePlayer(s.ctx, "Artemis")
	s.Require().NoError(err)
	s.False(deleted)
}

// Catalog tests

func (s *StorageSuite) TestItemsByCategory() {
	_ = s.storage.SaveItem(s.ctx, s.item("Bolter", "Ranged", 5))
	_ = s.storage.SaveItem(s.ctx, s.item("Chainsword", "Melee", 5))

	ranged, err := s.storage.ListItemsByCategory(s.ctx, "Ranged")
	s.Require().NoError(err)
	s.Require().Len(ranged, 1)
	s.Equal(model.ItemName("Bolter"), ranged[0].Name)
	s.Equal("1d10+9", ranged[0].Stats["damage"])
}

// Purchase tests

func (s *StorageSuite) TestApplyPurchaseCommitsAllThreeMutations() {
	_ = s.storage.CreatePlayer(s.ctx, s.player("Artemis", 100))
	_ = s.storage.SaveItem(s.ctx, s.item("Bolter", "Ranged", 30))

	txn, err := s.storage.ApplyPurchase(s.ctx, "Artemis", "Bolter", spend(2))
	s.Require().NoError(err)
	s.Equal(40, txn.NewBalance)

	player, _ := s.storage.GetPlayer(s.ctx, "Artemis")
	s.Equal(40, player.RequisitionPoints)

	inv, _ := s.storage.GetInventory(s.ctx, "Artemis")
	s.Require().Len(inv, 1)
	s.Equal(2, inv[0].Quantity)

	txns, _ := s.storage.GetTransactions(s.ctx, "Artemis")
	s.Require().Len(txns, 1)
	s.Equal(100, txns[0].PreviousBalance)
	s.Equal(60, txns[0].TotalCost)
	s.False(txns[0].CreatedAt.IsZero())
}

func (s *StorageSuite) TestApplyPurchaseRollsBackOnAbort() {
	_ = s.storage.CreatePlayer(s.ctx, s.player("Artemis", 50))
	_ = s.storage.SaveItem(s.ctx, s.item("Bolter", "Ranged", 30))

	_, err := s.storage.ApplyPurchase(s.ctx, "Artemis", "Bolter", spend(2))
	s.ErrorIs(err, model.ErrInsufficientFunds)

	player, _ := s.storage.GetPlayer(s.ctx, "Artemis")
	s.Equal(50, player.RequisitionPoints)
	inv, _ := s.storage.GetInventory(s.ctx, "Artemis")
	s.Empty(inv)
	txns, _ := s.storage.GetTransactions(s.ctx, "Artemis")
	s.Empty(txns)
}

func (s *StorageSuite) TestApplyPurchaseMissingRows() {
	_, err := s.storage.ApplyPurchase(s.ctx, "nobody", "Bolter", spend(1))
	s.ErrorIs(err, model.ErrPlayerNotFound)

	_ = s.storage.CreatePlayer(s.ctx, s.player("Artemis", 50))
	_, err = s.storage.ApplyPurchase(s.ctx, "Artemis", "Vortex Grenade", spend(1))
	s.ErrorIs(err, model.ErrItemNotFound)
}

func (s *StorageSuite) TestLedgerSurvivesPlayerDeletion() {
	_ = s.storage.CreatePlayer(s.ctx, s.player("Artemis", 100))
	_ = s.storage.SaveItem(s.ctx, s.item("Bolter", "Ranged", 10))
	_, err := s.storage.ApplyPurchase(s.ctx, "Artemis", "Bolter", spend(1))
	s.Require().NoError(err)

	_, err = s.storage.DeletePlayer(s.ctx, "Artemis")
	s.Require().NoError(err)

	txns, err := s.storage.GetTransactions(s.ctx, "Artemis")
	s.Require().NoError(err)
	s.Len(txns, 1)
}

func (s *StorageSuite) TestConcurrentPurchasesSerialize() {
	_ = s.storage.CreatePlayer(s.ctx, s.player("Artemis", 60))
	_ = s.storage.SaveItem(s.ctx, s.item("Bolter", "Ranged", 40))

	// Each purchase is affordable alone but not together
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.storage.ApplyPurchase(s.ctx, "Artemis", "Bolter", spend(1))
		}(i)
	}
	wg.Wait()

	var succeeded, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, model.ErrInsufficientFunds):
			insufficient++
		}
	}
	s.Equal(1, succeeded)
	s.Equal(1, insufficient)

	player, _ := s.storage.GetPlayer(s.ctx, "Artemis")
	s.Equal(20, player.RequisitionPoints)
}
