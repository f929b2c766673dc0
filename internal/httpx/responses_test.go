package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSuccess_IncludesRequestID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(ContextWithRequestID(r.Context(), "req-1"))
	w := httptest.NewRecorder()

	JSONSuccess(w, r, map[string]string{"key": "value"}, map[string]any{"total": 3})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, true, body["success"])
	meta := body["meta"].(map[string]any)
	assert.Equal(t, "req-1", meta["request_id"])
	assert.Equal(t, float64(3), meta["total"])
}

func TestJSONError_Envelope(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Entry not found", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
	assert.Nil(t, body.Meta)
}

type progressReq struct {
	EpisodesWatched *int   `json:"episodes_watched" validate:"omitempty,gte=0"`
	Score           *int   `json:"score" validate:"omitempty,gte=0,lte=10"`
	Day             string `json:"day" validate:"omitempty,weekday"`
	Time            string `json:"time" validate:"omitempty,clock"`
}

func TestDecodeJSON(t *testing.T) {
	cases := []struct {
		name string
		body string
		ok   bool
	}{
		{"valid", `{"episodes_watched":3,"score":8,"day":"Mondays","time":"23:30"}`, true},
		{"score out of range", `{"score":11}`, false},
		{"bad weekday", `{"day":"Funday"}`, false},
		{"bad clock", `{"time":"25:00"}`, false},
		{"malformed", `{`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))

			var req progressReq
			ok := DecodeJSON(w, r, &req)

			assert.Equal(t, tc.ok, ok)
			if !tc.ok {
				assert.Equal(t, http.StatusBadRequest, w.Code)
			}
		})
	}
}
