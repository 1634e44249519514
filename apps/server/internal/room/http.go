package room

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"tienlen-lite/apps/server/internal/user"
)

type HTTPHandler struct {
	rooms *Service
}

type createRoomRequest struct {
	UserID     string `json:"user_id"`
	MaxPlayers int    `json:"max_players"`
	Password   string `json:"password"`
}

type joinRoomRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

type leaveRoomRequest struct {
	PlayerID uuid.UUID `json:"player_id"`
}

type roomResponse struct {
	Room     *Public   `json:"room"`
	PlayerID uuid.UUID `json:"player_id"`
}

type leaveResponse struct {
	Room *Public `json:"room"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHTTPHandler(rooms *Service) *HTTPHandler {
	return &HTTPHandler{rooms: rooms}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /rooms", h.handleCreate)
	mux.HandleFunc("POST /rooms/{code}/join", h.handleJoin)
	mux.HandleFunc("POST /rooms/{code}/leave", h.handleLeave)
}

func (h *HTTPHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if req.MaxPlayers == 0 {
		req.MaxPlayers = DefaultMaxPlayers
	}
	if req.MaxPlayers < 2 || req.MaxPlayers > 4 {
		writeError(w, http.StatusBadRequest, "max_players must be between 2 and 4")
		return
	}

	view, playerID, err := h.rooms.Create(r.Context(), req.UserID, req.MaxPlayers, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roomResponse{Room: &view, PlayerID: playerID})
}

func (h *HTTPHandler) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	view, playerID, err := h.rooms.Join(r.Context(), r.PathValue("code"), req.UserID, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roomResponse{Room: &view, PlayerID: playerID})
}

func (h *HTTPHandler) handleLeave(w http.ResponseWriter, r *http.Request) {
	var req leaveRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.rooms.RemovePlayer(r.Context(), r.PathValue("code"), req.PlayerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leaveResponse{Room: view})
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrRoomNotFound), errors.Is(err, ErrPlayerNotFound), errors.Is(err, user.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidPassword):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrRoomFull):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "room operation failed")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
