package factory

import (
	"context"
	"time"

	"github.com/alexpolo1/dwroller-sub001/internal/dependencies/mocks"
	"github.com/alexpolo1/dwroller-sub001/internal/model"
	"github.com/alexpolo1/dwroller-sub001/internal/services/auth"
	"github.com/alexpolo1/dwroller-sub001/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	app := newWithDependencies(store, mockClock, auth.DefaultConfig(), nil)

	return &TestApp{
		App:       app,
		MockClock: mockClock,
	}
}

// LoadTestCatalog seeds a small armoury catalog for testing
func (t *TestApp) LoadTestCatalog(ctx context.Context) error {
	items := []*model.ShopItem{
		{Name: "Bolter", Category: "Ranged", Cost: 5, RenownRequirement: model.RenownNone},
		{Name: "Bolt Pistol", Category: "Ranged", Cost: 3, RenownRequirement: model.RenownNone},
		{Name: "Combat Knife", Category: "Melee", Cost: 1, RenownRequirement: model.RenownNone},
		{Name: "Chainsword", Category: "Melee", Cost: 5, RenownRequirement: model.RenownNone},
		{Name: "Plasma Gun", Category: "Ranged", Cost: 25, RenownRequirement: model.RenownRespected},
		{Name: "Storm Shield", Category: "Wargear", Cost: 35, RenownRequirement: model.RenownDistinguished},
		{Name: "Thunder Hammer", Category: "Melee", Cost: 40, RenownRequirement: model.RenownFamed},
	}
	for _, it := range items {
		if err := t.Storage.SaveItem(ctx, it); err != nil {
			return err
		}
	}
	return nil
}
