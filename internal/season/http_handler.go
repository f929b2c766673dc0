package season

import (
	"log"
	"net/http"

	"anitrack/internal/httpx"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

// List handles GET /v1/season
// @Summary Season catalog
// @Tags season
// @Produce json
// @Param feed query string false "now (default) or upcoming"
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/season [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	feed, ok := ParseFeed(r.URL.Query().Get("feed"))
	if !ok {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "feed must be now or upcoming", nil)
		return
	}

	items, err := h.svc.List(r.Context(), feed)
	if err != nil {
		log.Printf("[season] list failed feed=%s err=%v", feed, err)
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, r, items, map[string]any{"feed": feed, "total": len(items)})
}

// Refresh handles POST /internal/jobs/season-refresh
// @Summary Refresh the season catalog from the metadata API
// @Tags internal
// @Param X-Internal-Secret header string true "Internal secret for authentication"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /internal/jobs/season-refresh [post]
func (h *HTTPHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	run, err := h.svc.Refresh(r.Context())
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "REFRESH_FAILED", err.Error(), nil)
		return
	}
	httpx.JSONSuccess(w, r, run, nil)
}
