package response

import (
	"time"

	"github.com/alexpolo1/dwroller-sub001/internal/model"
	"github.com/alexpolo1/dwroller-sub001/internal/normalize"
	"github.com/alexpolo1/dwroller-sub001/internal/services/auth"
)

// Player is a player record in API responses. It is the canonical raw
// form of the record with the password hash stripped.
type Player = map[string]any

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	raw := normalize.AsRaw(p)
	delete(raw, "pwHash")
	return raw
}

// Issue reports a field the normalizer repaired or flagged
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// IssuesFromNormalize converts normalizer issues for API responses
func IssuesFromNormalize(issues []normalize.Issue) []Issue {
	if len(issues) == 0 {
		return nil
	}
	out := make([]Issue, len(issues))
	for i, is := range issues {
		out[i] = Issue{Field: is.Field, Message: is.Message}
	}
	return out
}

// PlayerResponse is the response for player create and update endpoints
type PlayerResponse struct {
	Player Player  `json:"player"`
	Issues []Issue `json:"issues,omitempty"`
}

// AuthResponse is the response for the login endpoint
type AuthResponse struct {
	Player       string    `json:"player"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Player:       string(s.Player),
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// ShopItem represents a catalog entry in API responses
type ShopItem struct {
	Name              string         `json:"name"`
	Category          string         `json:"category,omitempty"`
	Cost              int            `json:"cost"`
	RenownRequirement string         `json:"renownRequirement"`
	Stats             map[string]any `json:"stats,omitempty"`
}

// ShopItemFromModel converts a model.ShopItem
func ShopItemFromModel(it *model.ShopItem) ShopItem {
	return ShopItem{
		Name:              string(it.Name),
		Category:          it.Category,
		Cost:              it.Cost,
		RenownRequirement: it.RenownRequirement,
		Stats:             it.Stats,
	}
}

// ShopItemsFromModel converts a catalog listing
func ShopItemsFromModel(items []*model.ShopItem) []ShopItem {
	out := make([]ShopItem, len(items))
	for i, it := range items {
		out[i] = ShopItemFromModel(it)
	}
	return out
}

// InventoryEntry represents an owned item line
type InventoryEntry struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// InventoryFromModel converts a player's inventory
func InventoryFromModel(entries []*model.InventoryEntry) []InventoryEntry {
	out := make([]InventoryEntry, len(entries))
	for i, e := range entries {
		out[i] = InventoryEntry{Item: string(e.Item), Quantity: e.Quantity}
	}
	return out
}

// Transaction represents a ledger row
type Transaction struct {
	Player          string    `json:"player"`
	Item            string    `json:"item"`
	UnitCost        int       `json:"unitCost"`
	Quantity        int       `json:"quantity"`
	TotalCost       int       `json:"totalCost"`
	PreviousBalance int       `json:"previousBalance"`
	NewBalance      int       `json:"newBalance"`
	CreatedAt       time.Time `json:"createdAt"`
}

// TransactionFromModel converts a model.Transaction
func TransactionFromModel(t *model.Transaction) Transaction {
	return Transaction{
		Player:          string(t.Player),
		Item:            string(t.Item),
		UnitCost:        t.UnitCost,
		Quantity:        t.Quantity,
		TotalCost:       t.TotalCost,
		PreviousBalance: t.PreviousBalance,
		NewBalance:      t.NewBalance,
		CreatedAt:       t.CreatedAt,
	}
}

// TransactionsFromModel converts a ledger listing
func TransactionsFromModel(txns []*model.Transaction) []Transaction {
	out := make([]Transaction, len(txns))
	for i, t := range txns {
		out[i] = TransactionFromModel(t)
	}
	return out
}
