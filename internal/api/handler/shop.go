package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/alexpolo1/dwroller-sub001/internal/api/response"
	"github.com/alexpolo1/dwroller-sub001/internal/model"
	"github.com/alexpolo1/dwroller-sub001/internal/services/shop"
)

// ShopHandler handles catalog, inventory and ledger endpoints
type ShopHandler struct {
	shopService *shop.Service
}

// NewShopHandler creates a new shop handler
func NewShopHandler(shopService *shop.Service) *ShopHandler {
	return &ShopHandler{
		shopService: shopService,
	}
}

// ListItems handles GET /api/v1/shop/items with an optional category
// query filter
func (h *ShopHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	var (
		items []*model.ShopItem
		err   error
	)
	if category := r.URL.Query().Get("category"); category != "" {
		items, err = h.shopService.GetItemsByCategory(r.Context(), category)
	} else {
		items, err = h.shopService.GetAllItems(r.Context())
	}
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ShopItemsFromModel(items))
}

// GetInventory handles GET /api/v1/players/{name}/inventory
func (h *ShopHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	name := model.PlayerName(mux.Vars(r)["name"])

	entries, err := h.shopService.GetPlayerInventory(r.Context(), name)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.InventoryFromModel(entries))
}

// GetTransactions handles GET /api/v1/players/{name}/transactions
func (h *ShopHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	name := model.PlayerName(mux.Vars(r)["name"])

	txns, err := h.shopService.GetPlayerTransactions(r.Context(), name)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.TransactionsFromModel(txns))
}
