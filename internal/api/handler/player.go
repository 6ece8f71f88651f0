package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/alexpolo1/dwroller-sub001/internal/api/middleware"
	"github.com/alexpolo1/dwroller-sub001/internal/api/request"
	"github.com/alexpolo1/dwroller-sub001/internal/api/response"
	"github.com/alexpolo1/dwroller-sub001/internal/model"
	"github.com/alexpolo1/dwroller-sub001/internal/services/auth"
	"github.com/alexpolo1/dwroller-sub001/internal/services/player"
)

// PlayerHandler handles player record endpoints
type PlayerHandler struct {
	playerService *player.Service
	authService   *auth.Service
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(playerService *player.Service, authService *auth.Service) *PlayerHandler {
	return &PlayerHandler{
		playerService: playerService,
		authService:   authService,
	}
}

// Create handles POST /api/v1/players. The body is a raw sheet; it is
// repaired, persisted, and returned in canonical form alongside any
// repair issues.
func (h *PlayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	raw, err := decodeSheet(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	record, issues, err := h.playerService.Create(r.Context(), raw)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.PlayerResponse{
		Player: response.PlayerFromModel(record),
		Issues: response.IssuesFromNormalize(issues),
	})
}

// List handles GET /api/v1/players
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	players := h.playerService.GetAll(r.Context())
	out := make([]response.Player, len(players))
	for i, p := range players {
		out[i] = response.PlayerFromModel(p)
	}
	response.JSON(w, http.StatusOK, out)
}

// Get handles GET /api/v1/players/{name}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := model.PlayerName(mux.Vars(r)["name"])

	record, err := h.playerService.GetByName(r.Context(), name)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(record))
}

// Update handles PATCH /api/v1/players/{name}. The body is a partial
// sheet merged over the stored record.
func (h *PlayerHandler) Update(w http.ResponseWriter, r *http.Request) {
	name := model.PlayerName(mux.Vars(r)["name"])

	raw, err := decodeSheet(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	record, issues, found, err := h.playerService.Update(r.Context(), name, raw)
	if err != nil {
		WriteError(w, err)
		return
	}
	if !found {
		WriteError(w, model.ErrPlayerNotFound)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerResponse{
		Player: response.PlayerFromModel(record),
		Issues: response.IssuesFromNormalize(issues),
	})
}

// Delete handles DELETE /api/v1/players/{name}. Requires a session for
// the named player.
func (h *PlayerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := model.PlayerName(mux.Vars(r)["name"])

	if middleware.SessionPlayer(r.Context()) != name {
		WriteError(w, NewUnauthorizedError())
		return
	}

	found, err := h.playerService.Delete(r.Context(), name)
	if err != nil {
		WriteError(w, err)
		return
	}
	if !found {
		WriteError(w, model.ErrPlayerNotFound)
		return
	}

	response.NoContent(w)
}

// Login handles POST /api/v1/players/login
func (h *PlayerHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Name == "" {
		WriteError(w, NewInvalidRequestError("name is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("pw is required"))
		return
	}

	session, err := h.authService.Login(r.Context(), model.PlayerName(req.Name), req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponseFromSession(session))
}

// decodeSheet decodes a raw sheet body. A plaintext "pw" field is
// hashed into "pwHash" before the payload goes anywhere near storage;
// a client-supplied "pwHash" is discarded.
func decodeSheet(r *http.Request) (map[string]any, error) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, NewInvalidRequestError("invalid request body")
	}

	delete(raw, "pwHash")
	if pw, ok := raw["pw"].(string); ok && pw != "" {
		hash, err := auth.HashPassword(pw)
		if err != nil {
			return nil, NewInternalError()
		}
		delete(raw, "pw")
		raw["pwHash"] = hash
	}

	return raw, nil
}
