package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexpolo1/dwroller-sub001/internal/api"
	"github.com/alexpolo1/dwroller-sub001/internal/api/response"
	"github.com/alexpolo1/dwroller-sub001/internal/factory"
	"github.com/alexpolo1/dwroller-sub001/internal/model"
	"github.com/alexpolo1/dwroller-sub001/internal/storage/memory"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	storage *memory.Storage
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// API tests are integration tests - use production factory with real clock
	app, err := factory.New(factory.Config{Logger: logger})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:             logger,
		AuthService:        app.AuthService,
		PlayerService:      app.PlayerService,
		ShopService:        app.ShopService,
		RequisitionService: app.RequisitionService,
	})

	return &testServer{
		handler: router,
		storage: app.Storage.(*memory.Storage),
	}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) seedItem(t *testing.T, name string, cost int, requirement string) {
	t.Helper()
	err := ts.storage.SaveItem(context.Background(), &model.ShopItem{
		Name:              model.ItemName(name),
		Category:          "Ranged",
		Cost:              cost,
		RenownRequirement: requirement,
	})
	require.NoError(t, err)
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestCreatePlayer(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]any{
		"name":              "  Brother   Artemis ",
		"requisitionPoints": 60,
		"renownLevel":       "respected",
		"tabInfo":           map[string]any{"wounds": -3},
	}
	rr := ts.request(http.MethodPost, "/api/v1/players", body, "")
	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp response.PlayerResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Brother Artemis", resp.Player["name"])
	assert.Equal(t, "Respected", resp.Player["renownLevel"])
	assert.NotEmpty(t, resp.Issues, "negative wounds clamp surfaces as an issue")
}

func TestCreatePlayerDuplicateName(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]any{"name": "Artemis"}
	rr := ts.request(http.MethodPost, "/api/v1/players", body, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/players", body, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "DUPLICATE_NAME")
}

func TestGetAndListPlayers(t *testing.T) {
	ts := newTestServer(t)

	for _, name := range []string{"Cassius", "Artemis"} {
		rr := ts.request(http.MethodPost, "/api/v1/players", map[string]any{"name": name}, "")
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := ts.request(http.MethodGet, "/api/v1/players", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var list []response.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "Artemis", list[0]["name"], "listing is name ordered")

	rr = ts.request(http.MethodGet, "/api/v1/players/Cassius", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/players/Unknown", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "PLAYER_NOT_FOUND")
}

func TestUpdatePlayerMerges(t *testing.T) {
	ts := newTestServer(t)

	create := map[string]any{
		"name":    "Artemis",
		"tabInfo": map[string]any{"wounds": 21, "xp": 1000},
	}
	rr := ts.request(http.MethodPost, "/api/v1/players", create, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	patch := map[string]any{"tabInfo": map[string]any{"wounds": 17}}
	rr = ts.request(http.MethodPatch, "/api/v1/players/Artemis", patch, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.PlayerResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	tab := resp.Player["tabInfo"].(map[string]any)
	assert.EqualValues(t, 17, tab["wounds"])
	assert.EqualValues(t, 1000, tab["xp"], "untouched keys survive the merge")
}

func TestPasswordNeverLeavesServer(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]any{"name": "Artemis", "pw": "secret123"}
	rr := ts.request(http.MethodPost, "/api/v1/players", body, "")
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.NotContains(t, rr.Body.String(), "secret123")
	assert.NotContains(t, rr.Body.String(), "pwHash")

	rr = ts.request(http.MethodGet, "/api/v1/players/Artemis", nil, "")
	assert.NotContains(t, rr.Body.String(), "pwHash")

	// The hashed credential works for login
	loginBody := map[string]string{"name": "Artemis", "pw": "secret123"}
	rr = ts.request(http.MethodPost, "/api/v1/players/login", loginBody, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var authResp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &authResp))
	assert.NotEmpty(t, authResp.SessionToken)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]any{"name": "Artemis", "pw": "secret123"}
	rr := ts.request(http.MethodPost, "/api/v1/players", body, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	loginBody := map[string]string{"name": "Artemis", "pw": "wrong"}
	rr = ts.request(http.MethodPost, "/api/v1/players/login", loginBody, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_CREDENTIALS")
}

func TestDeleteRequiresOwnSession(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/players", map[string]any{"name": "Artemis", "pw": "pw1"}, "")
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = ts.request(http.MethodPost, "/api/v1/players", map[string]any{"name": "Cassius", "pw": "pw2"}, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	// No token
	rr = ts.request(http.MethodDelete, "/api/v1/players/Artemis", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// Someone else's token
	token := login(t, ts, "Cassius", "pw2")
	rr = ts.request(http.MethodDelete, "/api/v1/players/Artemis", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// Own token
	token = login(t, ts, "Artemis", "pw1")
	rr = ts.request(http.MethodDelete, "/api/v1/players/Artemis", nil, token)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/players/Artemis", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestShopItemsWithCategoryFilter(t *testing.T) {
	ts := newTestServer(t)

	ts.seedItem(t, "Bolter", 5, model.RenownNone)
	require.NoError(t, ts.storage.SaveItem(context.Background(), &model.ShopItem{
		Name: "Chainsword", Category: "Melee", Cost: 5, RenownRequirement: model.RenownNone,
	}))

	rr := ts.request(http.MethodGet, "/api/v1/shop/items", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var items []response.ShopItem
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &items))
	assert.Len(t, items, 2)

	rr = ts.request(http.MethodGet, "/api/v1/shop/items?category=Melee", nil, "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Chainsword", items[0].Name)
}

func TestPurchaseFlow(t *testing.T) {
	ts := newTestServer(t)

	ts.seedItem(t, "Bolter", 30, model.RenownNone)
	body := map[string]any{"name": "Artemis", "requisitionPoints": 100, "renownLevel": "Respected"}
	rr := ts.request(http.MethodPost, "/api/v1/players", body, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	purchase := map[string]any{"item": "Bolter", "quantity": 2}
	rr = ts.request(http.MethodPost, "/api/v1/players/Artemis/purchase", purchase, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var txn response.Transaction
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &txn))
	assert.Equal(t, 40, txn.NewBalance)
	assert.Equal(t, 60, txn.TotalCost)

	rr = ts.request(http.MethodGet, "/api/v1/players/Artemis/inventory", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var inv []response.InventoryEntry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &inv))
	require.Len(t, inv, 1)
	assert.Equal(t, 2, inv[0].Quantity)

	rr = ts.request(http.MethodGet, "/api/v1/players/Artemis/transactions", nil, "")
	var txns []response.Transaction
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &txns))
	require.Len(t, txns, 1)
	assert.Equal(t, 100, txns[0].PreviousBalance)
}

func TestPurchaseFailures(t *testing.T) {
	ts := newTestServer(t)

	ts.seedItem(t, "Bolter", 30, model.RenownNone)
	ts.seedItem(t, "Plasma Gun", 10, model.RenownFamed)
	body := map[string]any{"name": "Artemis", "requisitionPoints": 40, "renownLevel": "None"}
	rr := ts.request(http.MethodPost, "/api/v1/players", body, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	// Not enough points
	rr = ts.request(http.MethodPost, "/api/v1/players/Artemis/purchase", map[string]any{"item": "Bolter", "quantity": 2}, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "INSUFFICIENT_FUNDS")

	// Not enough renown
	rr = ts.request(http.MethodPost, "/api/v1/players/Artemis/purchase", map[string]any{"item": "Plasma Gun"}, "")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "INSUFFICIENT_RENOWN")

	// Bad quantity; an explicit zero is rejected, only an omitted
	// quantity defaults to one
	for _, qty := range []int{-1, 0} {
		rr = ts.request(http.MethodPost, "/api/v1/players/Artemis/purchase", map[string]any{"item": "Bolter", "quantity": qty}, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "INVALID_QUANTITY")
	}

	// Unknown item
	rr = ts.request(http.MethodPost, "/api/v1/players/Artemis/purchase", map[string]any{"item": "Vortex Grenade"}, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "ITEM_NOT_FOUND")

	// Unknown player
	rr = ts.request(http.MethodPost, "/api/v1/players/Nobody/purchase", map[string]any{"item": "Bolter"}, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "PLAYER_NOT_FOUND")
}

// Helper functions

func login(t *testing.T, ts *testServer, name, password string) string {
	t.Helper()

	body := map[string]string{"name": name, "pw": password}
	rr := ts.request(http.MethodPost, "/api/v1/players/login", body, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	return resp.SessionToken
}
