package insight

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"anitrack/internal/httpx"
	"anitrack/internal/library"
	"anitrack/internal/season"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

// DNA handles GET /v1/me/dna
// @Summary Top genres of the user's library
// @Tags insight
// @Produce json
// @Param n query int false "Number of genres (3, 5 or 10)"
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/me/dna [get]
func (h *HTTPHandler) DNA(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}

	n := TopGenresForProfile
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || (v != TopGenresForRecommendations && v != TopGenresForProfile && v != TopGenresForStats) {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "n must be 3, 5 or 10", nil)
			return
		}
		n = v
	}

	dna, err := h.svc.DNA(r.Context(), userID, n)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, dna, nil)
}

// Recommendations handles GET /v1/me/recommendations
func (h *HTTPHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}

	query := r.URL.Query()
	feed, ok := season.ParseFeed(query.Get("feed"))
	if !ok {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "feed must be now or upcoming", nil)
		return
	}
	limit := DashboardRecommendations
	if raw := query.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || (v != DashboardRecommendations && v != SeasonRecommendations) {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be 4 or 6", nil)
			return
		}
		limit = v
	}

	recs, err := h.svc.Recommendations(r.Context(), userID, feed, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, recs, nil)
}

// Achievements handles GET /v1/me/achievements
func (h *HTTPHandler) Achievements(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}

	badges, err := h.svc.Achievements(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, badges, nil)
}

// Stats handles GET /v1/me/stats
func (h *HTTPHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}

	sum, err := h.svc.Stats(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, sum, nil)
}

// Countdowns handles GET /v1/me/countdowns
func (h *HTTPHandler) Countdowns(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}

	items, err := h.svc.Countdowns(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, items, nil)
}

// TierBoard handles GET /v1/tiers
func (h *HTTPHandler) TierBoard(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}

	rows, err := h.svc.TierBoard(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, rows, nil)
}

// Drop handles POST /v1/tiers/drop
// @Summary Move an entry between tier rows
// @Tags insight
// @Accept json
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 422 {object} httpx.ErrorResponse
// @Router /v1/tiers/drop [post]
func (h *HTTPHandler) Drop(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}

	var ev DropEvent
	if !httpx.DecodeJSON(w, r, &ev) {
		return
	}

	m, changed, err := h.svc.ApplyDrop(r.Context(), userID, ev)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"changed": changed, "mutation": m}, nil)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrUnknownTarget) {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "drop target not found", nil)
		return
	}
	if errors.Is(err, library.ErrNotFound) || errors.Is(err, library.ErrNotRankable) || errors.Is(err, library.ErrInvalidInput) {
		library.WriteError(w, r, err)
		return
	}
	log.Printf("[insight] request failed path=%s err=%v", r.URL.Path, err)
	httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
}
