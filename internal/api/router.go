package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/alexpolo1/dwroller-sub001/internal/api/handler"
	"github.com/alexpolo1/dwroller-sub001/internal/api/middleware"
	"github.com/alexpolo1/dwroller-sub001/internal/services/auth"
	"github.com/alexpolo1/dwroller-sub001/internal/services/player"
	"github.com/alexpolo1/dwroller-sub001/internal/services/requisition"
	"github.com/alexpolo1/dwroller-sub001/internal/services/shop"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger             *slog.Logger
	AuthService        *auth.Service
	PlayerService      *player.Service
	ShopService        *shop.Service
	RequisitionService *requisition.Service
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.PlayerService, cfg.AuthService)
	shopHandler := handler.NewShopHandler(cfg.ShopService)
	purchaseHandler := handler.NewPurchaseHandler(cfg.RequisitionService)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Player record routes
	api.HandleFunc("/players", playerHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/players", playerHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/players/login", playerHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/players/{name}", playerHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/players/{name}", playerHandler.Update).Methods(http.MethodPatch)

	// Deleting a record requires a session for that player
	api.Handle("/players/{name}", authMiddleware(http.HandlerFunc(playerHandler.Delete))).Methods(http.MethodDelete)

	// Catalog, inventory and ledger routes
	api.HandleFunc("/shop/items", shopHandler.ListItems).Methods(http.MethodGet)
	api.HandleFunc("/players/{name}/inventory", shopHandler.GetInventory).Methods(http.MethodGet)
	api.HandleFunc("/players/{name}/transactions", shopHandler.GetTransactions).Methods(http.MethodGet)
	api.HandleFunc("/players/{name}/purchase", purchaseHandler.Purchase).Methods(http.MethodPost)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
