package library

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"anitrack/internal/httpx"
)

type HTTPHandler struct {
	svc     *Service
	catalog Catalog
}

func NewHTTPHandler(svc *Service, catalog Catalog) *HTTPHandler {
	return &HTTPHandler{svc: svc, catalog: catalog}
}

type broadcastRequest struct {
	Day  string `json:"day" validate:"required,weekday"`
	Time string `json:"time" validate:"required,clock"`
}

type addRequest struct {
	MalID            int               `json:"mal_id" validate:"required,gt=0"`
	Title            string            `json:"title" validate:"required,max=500"`
	ImageURL         string            `json:"image_url" validate:"omitempty,url"`
	TotalEpisodes    int               `json:"total_episodes" validate:"gte=0"`
	Genres           []string          `json:"genres" validate:"omitempty,dive,required,max=100"`
	Studio           string            `json:"studio" validate:"max=200"`
	Broadcast        *broadcastRequest `json:"broadcast"`
	AiredFrom        *time.Time        `json:"aired_from"`
	YoutubeTrailerID string            `json:"youtube_trailer_id" validate:"max=64"`
	Status           string            `json:"status" validate:"omitempty,oneof=watching completed on_hold dropped plan_to_watch"`
}

type patchRequest struct {
	EpisodesWatched *int    `json:"episodes_watched"`
	Status          *string `json:"status" validate:"omitempty,oneof=watching completed on_hold dropped plan_to_watch"`
	Score           *int    `json:"score" validate:"omitempty,gte=0,lte=10"`
	Notes           *string `json:"notes" validate:"omitempty,max=10000"`
	Tier            *string `json:"tier" validate:"omitempty,oneof=S A B C D Unranked"`
	RewatchCount    *int    `json:"rewatch_count" validate:"omitempty,gte=0"`
}

func (p patchRequest) toPatch() Patch {
	out := Patch{
		EpisodesWatched: p.EpisodesWatched,
		Score:           p.Score,
		Notes:           p.Notes,
		RewatchCount:    p.RewatchCount,
	}
	if p.Status != nil {
		st := Status(*p.Status)
		out.Status = &st
	}
	if p.Tier != nil {
		t := Tier(*p.Tier)
		out.Tier = &t
	}
	return out
}

// List handles GET /v1/library
// @Summary List library entries
// @Tags library
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/library [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}

	entries, err := h.svc.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if s := r.URL.Query().Get("status"); s != "" {
		status, err := ParseStatus(s)
		if err != nil {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "unknown status", nil)
			return
		}
		filtered := make([]Entry, 0, len(entries))
		for _, e := range entries {
			if e.Status == status {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	httpx.JSONSuccess(w, r, entries, map[string]any{"total": len(entries)})
}

// Add handles POST /v1/library
// @Summary Add an anime to the library
// @Tags library
// @Accept json
// @Produce json
// @Success 201 {object} httpx.SuccessResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /v1/library [post]
func (h *HTTPHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}

	var req addRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	in := NewEntry{
		MalID:            req.MalID,
		Title:            req.Title,
		ImageURL:         req.ImageURL,
		TotalEpisodes:    req.TotalEpisodes,
		Genres:           req.Genres,
		Studio:           req.Studio,
		AiredFrom:        req.AiredFrom,
		YoutubeTrailerID: req.YoutubeTrailerID,
		Status:           Status(req.Status),
	}
	if req.Broadcast != nil {
		in.Broadcast = &Broadcast{Day: req.Broadcast.Day, Time: req.Broadcast.Time}
	}

	e, err := h.svc.Add(r.Context(), userID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, e)
}

type catalogAddRequest struct {
	MalID int `json:"mal_id" validate:"required,gt=0"`
}

// AddFromCatalog handles POST /v1/library/from-catalog
func (h *HTTPHandler) AddFromCatalog(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}

	var req catalogAddRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	in, err := h.catalog.Lookup(r.Context(), req.MalID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	e, err := h.svc.Add(r.Context(), userID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, e)
}

// Get handles GET /v1/library/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}

	e, err := h.svc.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, e, nil)
}

// Update handles PATCH /v1/library/{id}
// @Summary Update progress, status, score, notes, tier or rewatch count
// @Tags library
// @Accept json
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/library/{id} [patch]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}

	var req patchRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	e, err := h.svc.Update(r.Context(), userID, r.PathValue("id"), req.toPatch())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, e, nil)
}

// Increment handles POST /v1/library/{id}/increment
func (h *HTTPHandler) Increment(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}

	e, err := h.svc.Increment(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, e, nil)
}

// Remove handles DELETE /v1/library/{id}
func (h *HTTPHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}

	if err := h.svc.Remove(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONNoContent(w)
}

// EpisodeHistory handles GET /v1/history/episodes
func (h *HTTPHandler) EpisodeHistory(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := h.svc.EpisodeHistory(r.Context(), userID, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, records, nil)
}

// TierHistory handles GET /v1/history/tiers
func (h *HTTPHandler) TierHistory(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := h.svc.TierHistory(r.Context(), userID, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, records, nil)
}

// WriteError maps library errors onto the JSON error envelope. Other packages
// that write through Service reuse it.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, err)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "library entry not found", nil)
	case errors.Is(err, ErrAlreadyExists):
		httpx.JSONError(w, r, http.StatusConflict, "ALREADY_EXISTS", "anime already in library", nil)
	case errors.Is(err, ErrNotRankable):
		httpx.JSONError(w, r, http.StatusUnprocessableEntity, "NOT_RANKABLE", "entry cannot be ranked in its current status", nil)
	case errors.Is(err, ErrInvalidInput):
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	default:
		log.Printf("[library] request failed path=%s err=%v", r.URL.Path, err)
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}
