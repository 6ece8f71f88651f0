package requisition

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/alexpolo1/dwroller-sub001/internal/dependencies/mocks"
	"github.com/alexpolo1/dwroller-sub001/internal/model"
	"github.com/alexpolo1/dwroller-sub001/internal/storage/memory"
	"github.com/alexpolo1/dwroller-sub001/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) seedPlayer(name string, balance int, renown string) {
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, &model.Player{
		Name:              model.PlayerName(name),
		RequisitionPoints: balance,
		RenownLevel:       renown,
	}))
}

func (s *ServiceSuite) seedItem(name string, cost int, requirement string) {
	s.Require().NoError(s.storage.SaveItem(s.ctx, &model.ShopItem{
		Name:              model.ItemName(name),
		Category:          "Ranged",
		Cost:              cost,
		RenownRequirement: requirement,
	}))
}

func (s *ServiceSuite) TestPurchaseSuccess() {
	s.seedPlayer("Artemis", 100, model.RenownRespected)
	s.seedItem("Bolter", 30, model.RenownNone)

	txn, err := s.service.Purchase(s.ctx, "Artemis", "Bolter", 2)
	s.Require().NoError(err)
	s.Equal(40, txn.NewBalance)
	s.Equal(100, txn.PreviousBalance)
	s.Equal(60, txn.TotalCost)
	s.Equal(s.clock.CurrentTime, txn.CreatedAt)

	player, _ := s.storage.GetPlayer(s.ctx, "Artemis")
	s.Equal(40, player.RequisitionPoints)

	txns, _ := s.storage.GetTransactions(s.ctx, "Artemis")
	s.Require().Len(txns, 1)
	s.Equal(100, txns[0].PreviousBalance)
	s.Equal(40, txns[0].NewBalance)
	s.Equal(60, txns[0].TotalCost)
}

func (s *ServiceSuite) TestInsufficientFunds() {
	s.seedPlayer("Artemis", 50, model.RenownRespected)
	s.seedItem("Bolter", 30, model.RenownNone)

	_, err := s.service.Purchase(s.ctx, "Artemis", "Bolter", 2)
	s.ErrorIs(err, model.ErrInsufficientFunds)

	player, _ := s.storage.GetPlayer(s.ctx, "Artemis")
	s.Equal(50, player.RequisitionPoints, "balance unchanged")
	txns, _ := s.storage.GetTransactions(s.ctx, "Artemis")
	s.Empty(txns, "no ledger row on failure")
}

func (s *ServiceSuite) TestInsufficientRenown() {
	s.seedPlayer("Artemis", 1000, model.RenownNone)
	s.seedItem("Plasma Gun", 30, model.RenownRespected)

	_, err := s.service.Purchase(s.ctx, "Artemis", "Plasma Gun", 1)
	s.ErrorIs(err, model.ErrInsufficientRenown)

	player, _ := s.storage.GetPlayer(s.ctx, "Artemis")
	s.Equal(1000, player.RequisitionPoints)
	inv, _ := s.storage.GetInventory(s.ctx, "Artemis")
	s.Empty(inv)
}

func (s *ServiceSuite) TestUnknownRenownRanksLowest() {
	s.seedPlayer("Artemis", 1000, "Living Legend")
	s.seedItem("Plasma Gun", 30, model.RenownRespected)

	_, err := s.service.Purchase(s.ctx, "Artemis", "Plasma Gun", 1)
	s.ErrorIs(err, model.ErrInsufficientRenown, "unrecognized player renown ranks 0")

	// An unrecognized requirement also ranks 0, so anyone can buy
	s.seedItem("Mystery Box", 10, "???")
	txn, err := s.service.Purchase(s.ctx, "Artemis", "Mystery Box", 1)
	s.Require().NoError(err)
	s.Equal(990, txn.NewBalance)
}

func (s *ServiceSuite) TestMissingPlayerOrItem() {
	s.seedItem("Bolter", 30, model.RenownNone)

	_, err := s.service.Purchase(s.ctx, "nobody", "Bolter", 1)
	s.ErrorIs(err, model.ErrPlayerNotFound)

	s.seedPlayer("Artemis", 100, model.RenownNone)
	_, err = s.service.Purchase(s.ctx, "Artemis", "Vortex Grenade", 1)
	s.ErrorIs(err, model.ErrItemNotFound)
}

func (s *ServiceSuite) TestInvalidQuantity() {
	s.seedPlayer("Artemis", 100, model.RenownNone)
	s.seedItem("Bolter", 30, model.RenownNone)

	_, err := s.service.Purchase(s.ctx, "Artemis", "Bolter", 0)
	s.ErrorIs(err, model.ErrInvalidQuantity)
	_, err = s.service.Purchase(s.ctx, "Artemis", "Bolter", -3)
	s.ErrorIs(err, model.ErrInvalidQuantity)
}

func (s *ServiceSuite) TestHugeQuantityCannotWrapToFree() {
	// cost * quantity near 2^64 wraps to a tiny or negative total;
	// such quantities must be rejected outright with nothing mutated
	s.seedPlayer("Artemis", 10, model.RenownNone)
	s.seedItem("Bolter", 4, model.RenownNone)

	for _, qty := range []int{MaxQuantity + 1, 1 << 62} {
		_, err := s.service.Purchase(s.ctx, "Artemis", "Bolter", qty)
		s.ErrorIs(err, model.ErrInvalidQuantity)
	}

	p, err := s.storage.GetPlayer(s.ctx, "Artemis")
	s.Require().NoError(err)
	s.Equal(10, p.RequisitionPoints)

	inv, err := s.storage.GetInventory(s.ctx, "Artemis")
	s.Require().NoError(err)
	s.Empty(inv)

	txns, err := s.storage.GetTransactions(s.ctx, "Artemis")
	s.Require().NoError(err)
	s.Empty(txns)
}

func (s *ServiceSuite) TestOverflowingPriceIsUnaffordable() {
	s.seedPlayer("Artemis", 10, model.RenownNone)
	s.seedItem("Relic Blade", math.MaxInt/2, model.RenownNone)

	_, err := s.service.Purchase(s.ctx, "Artemis", "Relic Blade", 3)
	s.ErrorIs(err, model.ErrInsufficientFunds)

	p, err := s.storage.GetPlayer(s.ctx, "Artemis")
	s.Require().NoError(err)
	s.Equal(10, p.RequisitionPoints)
}

func (s *ServiceSuite) TestZeroCostItemIsFree() {
	s.seedPlayer("Artemis", 0, model.RenownNone)
	s.seedItem("Ration Pack", 0, model.RenownNone)

	txn, err := s.service.Purchase(s.ctx, "Artemis", "Ration Pack", 3)
	s.Require().NoError(err)
	s.Equal(0, txn.NewBalance)

	inv, _ := s.storage.GetInventory(s.ctx, "Artemis")
	s.Require().Len(inv, 1)
	s.Equal(3, inv[0].Quantity)
}

// Two concurrent purchases, each affordable alone but not together,
// must resolve to exactly one success and one InsufficientFunds.
func (s *ServiceSuite) TestConcurrentDoubleSpendRace() {
	s.seedPlayer("Artemis", 60, model.RenownRespected)
	s.seedItem("Bolter", 40, model.RenownNone)

	const attempts = 2
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.service.Purchase(s.ctx, "Artemis", "Bolter", 1)
		}(i)
	}
	wg.Wait()

	var succeeded, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, model.ErrInsufficientFunds):
			rejected++
		default:
			s.Failf("unexpected error", "%v", err)
		}
	}
	s.Equal(1, succeeded)
	s.Equal(1, rejected)

	player, _ := s.storage.GetPlayer(s.ctx, "Artemis")
	s.Equal(20, player.RequisitionPoints)

	txns, _ := s.storage.GetTransactions(s.ctx, "Artemis")
	s.Len(txns, 1)
}
