package chat

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"anitrack/internal/httpx"

	"github.com/gorilla/websocket"
)

const maxFrameBytes = 8 << 10

type HTTPHandler struct {
	svc      *Service
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewHTTPHandler accepts upgrades from the listed origins; an empty list or
// "*" accepts any origin.
func NewHTTPHandler(svc *Service, hub *Hub, allowedOrigins []string) *HTTPHandler {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}
	return &HTTPHandler{
		svc: svc,
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowAll || origin == "" || allowed[origin]
			},
		},
	}
}

type postRequest struct {
	Room string `json:"room" validate:"omitempty,max=64"`
	Body string `json:"body" validate:"required,max=2000"`
}

// incoming is a frame sent by a socket client.
type incoming struct {
	Body string `json:"body"`
}

// List handles GET /v1/chat/messages
// @Summary Recent chat messages
// @Tags chat
// @Produce json
// @Param room query string false "Room name" default(global)
// @Param limit query int false "Max messages" default(50)
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/chat/messages [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	msgs, err := h.svc.Recent(r.Context(), r.URL.Query().Get("room"), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, msgs, map[string]any{"total": len(msgs)})
}

// Post handles POST /v1/chat/messages
// @Summary Send a chat message
// @Tags chat
// @Accept json
// @Produce json
// @Success 201 {object} httpx.SuccessResponse
// @Router /v1/chat/messages [post]
func (h *HTTPHandler) Post(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}

	var req postRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	m, err := h.svc.Post(r.Context(), userID, httpx.UsernameFrom(r), req.Room, req.Body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, m)
}

// Subscribe handles GET /v1/chat/ws. Frames received on the socket are stored
// like POSTed messages; everything in the room is pushed back as events.
func (h *HTTPHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	roomName, ok := NormalizeRoom(r.URL.Query().Get("room"))
	if !ok {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "room name too long", nil)
		return
	}
	username := httpx.UsernameFrom(r)

	// warm the room so the join replay is not empty after a restart
	if _, err := h.svc.Recent(r.Context(), roomName, 0); err != nil {
		log.Printf("[chat] history load failed room=%s err=%v", roomName, err)
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	ws.SetReadLimit(maxFrameBytes)
	ctx := r.Context()

	h.hub.Join(roomName, ws, username)

	for {
		_, payload, err := ws.ReadMessage()
		if err != nil {
			break
		}
		var in incoming
		body := string(payload)
		if err := json.Unmarshal(payload, &in); err == nil && in.Body != "" {
			body = in.Body
		}
		if strings.TrimSpace(body) == "" {
			continue
		}
		if _, err := h.svc.Post(ctx, userID, username, roomName, body); err != nil {
			log.Printf("[chat] socket post failed room=%s user_id=%s err=%v", roomName, userID, err)
		}
	}

	h.hub.Leave(roomName, ws)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrInvalidInput) {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	log.Printf("[chat] request failed err=%v", err)
	httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
}
