package listsync

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"anitrack/internal/httpx"
	"anitrack/internal/platform/jikan"
	"anitrack/internal/platform/mal"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

type importRequest struct {
	Username string `json:"username" validate:"omitempty,max=64"`
}

// Link handles GET /v1/mal/link
// @Summary Start linking a MyAnimeList account
// @Tags mal
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 503 {object} httpx.ErrorResponse
// @Router /v1/mal/link [get]
func (h *HTTPHandler) Link(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}

	u, err := h.svc.LinkStart(userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]string{"authorize_url": u}, nil)
}

// Unlink handles DELETE /v1/mal/link
func (h *HTTPHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	if err := h.svc.Unlink(r.Context(), userID); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONNoContent(w)
}

// Callback handles GET /v1/mal/callback, the OAuth redirect target. The state
// parameter identifies the user, so no bearer token is expected here.
// @Summary Complete MyAnimeList linking
// @Tags mal
// @Param state query string true "OAuth state"
// @Param code query string true "Authorization code"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/mal/callback [get]
func (h *HTTPHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "MAL_DENIED", "authorization was not granted: "+e, nil)
		return
	}
	state, code := q.Get("state"), q.Get("code")
	if state == "" || code == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "state and code are required", nil)
		return
	}

	if _, err := h.svc.LinkComplete(r.Context(), state, code); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]bool{"linked": true}, nil)
}

// Repair handles POST /v1/sync/repair
// @Summary Fill missing metadata from the public API
// @Tags sync
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/sync/repair [post]
func (h *HTTPHandler) Repair(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}

	run, err := h.svc.Repair(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, run, nil)
}

// Push handles POST /v1/sync/mal/push
// @Summary Push the library to MyAnimeList
// @Tags sync
// @Success 200 {object} httpx.SuccessResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /v1/sync/mal/push [post]
func (h *HTTPHandler) Push(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}

	run, err := h.svc.Push(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, run, nil)
}

// Import handles POST /v1/sync/mal/import
// @Summary Import a MyAnimeList list
// @Description Reads the linked account, or the public export of username when no account is linked.
// @Tags sync
// @Accept json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /v1/sync/mal/import [post]
func (h *HTTPHandler) Import(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}

	var req importRequest
	if r.ContentLength != 0 {
		if !httpx.DecodeJSON(w, r, &req) {
			return
		}
	}

	run, err := h.svc.Import(r.Context(), userID, strings.TrimSpace(req.Username))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, run, nil)
}

// Runs handles GET /v1/sync/runs
func (h *HTTPHandler) Runs(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	runs, err := h.svc.Runs(r.Context(), userID, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, runs, map[string]any{"total": len(runs)})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var malStatus *mal.StatusError
	var jikanStatus *jikan.StatusError
	switch {
	case errors.Is(err, ErrNotLinked):
		httpx.JSONError(w, r, http.StatusConflict, "MAL_NOT_LINKED", "link a MyAnimeList account first", nil)
	case errors.Is(err, ErrInvalidState):
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_STATE", err.Error(), nil)
	case errors.Is(err, ErrNotConfigured):
		httpx.JSONError(w, r, http.StatusServiceUnavailable, "MAL_NOT_CONFIGURED", err.Error(), nil)
	case errors.Is(err, mal.ErrUnauthorized), errors.Is(err, mal.ErrNotFound),
		errors.As(err, &malStatus), errors.As(err, &jikanStatus):
		log.Printf("[listsync] upstream failed err=%v", err)
		httpx.JSONError(w, r, http.StatusBadGateway, "UPSTREAM_ERROR", err.Error(), nil)
	default:
		log.Printf("[listsync] request failed err=%v", err)
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}
