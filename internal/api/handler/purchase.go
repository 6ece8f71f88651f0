package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/alexpolo1/dwroller-sub001/internal/api/request"
	"github.com/alexpolo1/dwroller-sub001/internal/api/response"
	"github.com/alexpolo1/dwroller-sub001/internal/model"
	"github.com/alexpolo1/dwroller-sub001/internal/services/requisition"
)

// PurchaseHandler handles the requisition purchase endpoint
type PurchaseHandler struct {
	requisitionService *requisition.Service
}

// NewPurchaseHandler creates a new purchase handler
func NewPurchaseHandler(requisitionService *requisition.Service) *PurchaseHandler {
	return &PurchaseHandler{
		requisitionService: requisitionService,
	}
}

// Purchase handles POST /api/v1/players/{name}/purchase
func (h *PurchaseHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	name := model.PlayerName(mux.Vars(r)["name"])

	var req request.PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Item == "" {
		WriteError(w, NewInvalidRequestError("item is required"))
		return
	}
	// Omitted quantity means a single unit; an explicit zero is the
	// caller's mistake and falls through to validation
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	txn, err := h.requisitionService.Purchase(r.Context(), name, model.ItemName(req.Item), quantity)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.TransactionFromModel(txn))
}
