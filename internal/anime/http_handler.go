package anime

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"anitrack/internal/httpx"
	"anitrack/internal/platform/jikan"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

// Search handles GET /v1/anime/search
// @Summary Search anime
// @Description Search the metadata API by title
// @Tags anime
// @Produce json
// @Param q query string true "Search query"
// @Param limit query int false "Max results" default(10)
// @Success 200 {object} httpx.SuccessResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /v1/anime/search [get]
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "q is required", nil)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	items, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeUpstreamError(w, r, "search", err)
		return
	}
	httpx.JSONSuccess(w, r, items, map[string]any{"total": len(items)})
}

// Get handles GET /v1/anime/{malId}
// @Summary Anime details
// @Tags anime
// @Produce json
// @Param malId path int true "MyAnimeList id"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /v1/anime/{malId} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	malID, ok := malIDParam(w, r)
	if !ok {
		return
	}
	a, err := h.svc.Get(r.Context(), malID)
	if err != nil {
		writeUpstreamError(w, r, "get", err)
		return
	}
	httpx.JSONSuccess(w, r, a, nil)
}

// Resource handles GET /v1/anime/{malId}/{resource}
func (h *HTTPHandler) Resource(w http.ResponseWriter, r *http.Request) {
	malID, ok := malIDParam(w, r)
	if !ok {
		return
	}
	res, err := ParseResource(r.PathValue("resource"))
	if err != nil {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Unknown resource", []httpx.ErrorDetail{
			{Field: "resource", Message: "must be one of recommendations, themes, relations, characters, news"},
		})
		return
	}

	data, err := h.svc.Resource(r.Context(), malID, res)
	if err != nil {
		writeUpstreamError(w, r, string(res), err)
		return
	}
	httpx.JSONSuccess(w, r, data, nil)
}

// Schedule handles GET /v1/schedule
// @Summary Weekly broadcast schedule
// @Tags anime
// @Produce json
// @Param day query string false "monday..sunday"
// @Param page query int false "Page number" default(1)
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/schedule [get]
func (h *HTTPHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	day := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("day")))
	if !ValidScheduleDay(day) {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "day must be a weekday name", nil)
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	items, pagination, err := h.svc.Schedule(r.Context(), day, page)
	if err != nil {
		writeUpstreamError(w, r, "schedule", err)
		return
	}
	httpx.JSONSuccess(w, r, items, map[string]any{
		"page":          pagination.CurrentPage,
		"has_next_page": pagination.HasNextPage,
	})
}

func malIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	malID, err := strconv.Atoi(r.PathValue("malId"))
	if err != nil || malID <= 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "malId must be a positive integer", nil)
		return 0, false
	}
	return malID, true
}

func writeUpstreamError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, jikan.ErrNotFound) {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Anime not found", nil)
		return
	}
	log.Printf("[anime] upstream failed op=%s err=%v", op, err)
	httpx.JSONError(w, r, http.StatusBadGateway, "UPSTREAM_ERROR", "Metadata service unavailable", nil)
}
