package request

// Player create and update bodies are raw sheets handled as
// map[string]any so the normalizer can see every submitted key.

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"pw"`
}

// PurchaseRequest is the request body for buying a shop item.
// Quantity is a pointer so an omitted field (defaults to one unit) is
// distinguishable from an explicit, invalid zero.
type PurchaseRequest struct {
	Item     string `json:"item"`
	Quantity *int   `json:"quantity"`
}
