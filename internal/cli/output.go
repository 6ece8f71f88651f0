package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case PlayerList:
		o.printPlayerList(v)
	case PlayerResult:
		o.printPlayerResult(v)
	case AuthResult:
		o.printAuthResult(v)
	case ShopItemList:
		o.printShopItemList(v)
	case InventoryList:
		o.printInventoryList(v)
	case Transaction:
		o.printTransaction(v)
	case TransactionList:
		o.printTransactionList(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player is a raw player record as returned by the API
type Player map[string]any

// PlayerList wraps a player listing for output dispatch
type PlayerList []Player

// Issue is a normalization repair note
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// PlayerResult combines a record with its repair issues
type PlayerResult struct {
	Player Player  `json:"player"`
	Issues []Issue `json:"issues,omitempty"`
}

// AuthResult is the login response
type AuthResult struct {
	Player       string    `json:"player"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// ShopItem response type
type ShopItem struct {
	Name              string `json:"name"`
	Category          string `json:"category,omitempty"`
	Cost              int    `json:"cost"`
	RenownRequirement string `json:"renownRequirement"`
}

// ShopItemList wraps a catalog listing for output dispatch
type ShopItemList []ShopItem

// InventoryEntry response type
type InventoryEntry struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// InventoryList wraps an inventory listing for output dispatch
type InventoryList []InventoryEntry

// Transaction response type
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

// TransactionList wraps a ledger listing for output dispatch
type TransactionList []Transaction

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayer(p Player) {
	name, _ := p["name"].(string)
	renown, _ := p["renownLevel"].(string)
	fmt.Printf("Player: %s\n", name)
	fmt.Printf("Renown: %s\n", renown)
	if rp, ok := p["requisitionPoints"].(float64); ok {
		fmt.Printf("Requisition Points: %d\n", int(rp))
	}
	if tab, ok := p["tabInfo"].(map[string]any); ok {
		if wounds, ok := tab["wounds"].(float64); ok {
			fmt.Printf("Wounds: %d\n", int(wounds))
		}
		if xp, ok := tab["xp"].(float64); ok {
			fmt.Printf("XP: %d\n", int(xp))
		}
	}
}

func (o *Output) printPlayerList(players PlayerList) {
	fmt.Printf("Players (%d):\n", len(players))
	for _, p := range players {
		name, _ := p["name"].(string)
		renown, _ := p["renownLevel"].(string)
		rp := 0
		if v, ok := p["requisitionPoints"].(float64); ok {
			rp = int(v)
		}
		fmt.Printf("  - %s (%s, %d RP)\n", name, renown, rp)
	}
}

func (o *Output) printPlayerResult(r PlayerResult) {
	o.printPlayer(r.Player)
	if len(r.Issues) > 0 {
		fmt.Printf("Repairs (%d):\n", len(r.Issues))
		for _, is := range r.Issues {
			fmt.Printf("  - %s: %s\n", is.Field, is.Message)
		}
	}
}

func (o *Output) printAuthResult(a AuthResult) {
	fmt.Printf("Player: %s\n", a.Player)
	fmt.Printf("Token: %s\n", a.SessionToken)
	fmt.Printf("Expires: %s\n", a.ExpiresAt.Format(time.RFC3339))
}

func (o *Output) printShopItemList(items ShopItemList) {
	fmt.Printf("Items (%d):\n", len(items))
	for _, it := range items {
		category := it.Category
		if category == "" {
			category = "Uncategorized"
		}
		fmt.Printf("  - %s [%s] %d RP (renown: %s)\n", it.Name, category, it.Cost, it.RenownRequirement)
	}
}

func (o *Output) printInventoryList(entries InventoryList) {
	fmt.Printf("Inventory (%d):\n", len(entries))
	for _, e := range entries {
		fmt.Printf("  - %s x%d\n", e.Item, e.Quantity)
	}
}

func (o *Output) printTransaction(t Transaction) {
	fmt.Printf("Purchased: %s x%d\n", t.Item, t.Quantity)
	fmt.Printf("Total Cost: %d RP\n", t.TotalCost)
	fmt.Printf("Balance: %d -> %d\n", t.PreviousBalance, t.NewBalance)
}

func (o *Output) printTransactionList(txns TransactionList) {
	fmt.Printf("Transactions (%d):\n", len(txns))
	for _, t := range txns {
		fmt.Printf("  - %s  %s x%d  -%d RP  (%d -> %d)\n",
			t.CreatedAt.Format(time.RFC3339), t.Item, t.Quantity, t.TotalCost, t.PreviousBalance, t.NewBalance)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
