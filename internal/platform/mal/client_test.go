package mal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(srv *httptest.Server, relay string) *Client {
	c := NewClient(Config{
		ClientID:     "cid",
		ClientSecret: "secret",
		RedirectURI:  "http://localhost/cb",
		RelayURL:     relay,
		AuthBaseURL:  srv.URL,
		APIBaseURL:   srv.URL + "/v2",
	}, WithHTTPClient(srv.Client()))
	c.now = func() time.Time { return time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC) }
	return c
}

func TestClient_AuthorizeURL(t *testing.T) {
	c := NewClient(Config{ClientID: "cid", RedirectURI: "http://localhost/cb"})
	u, err := url.Parse(c.AuthorizeURL("st", "verifier-123"))
	require.NoError(t, err)

	assert.Equal(t, "myanimelist.net", u.Host)
	assert.Equal(t, "/v1/oauth2/authorize", u.Path)
	q := u.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "st", q.Get("state"))
	assert.Equal(t, "verifier-123", q.Get("code_challenge"))
	assert.Equal(t, "plain", q.Get("code_challenge_method"))
}

func TestClient_ExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/oauth2/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "verifier-123", r.PostForm.Get("code_verifier"))
		assert.Equal(t, "cid", r.PostForm.Get("client_id"))
		fmt.Fprint(w, `{"token_type":"Bearer","expires_in":3600,"access_token":"at","refresh_token":"rt"}`)
	}))
	defer srv.Close()

	tok, err := newTestClient(srv, "").ExchangeCode(context.Background(), "the-code", "verifier-123")
	require.NoError(t, err)
	assert.Equal(t, "at", tok.AccessToken)
	assert.Equal(t, "rt", tok.RefreshToken)
	assert.Equal(t, time.Date(2024, 4, 10, 13, 0, 0, 0, time.UTC), tok.ExpiresAt)
}

func TestClient_RefreshUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv, "").Refresh(context.Background(), "stale")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClient_ListAnimeFollowsPaging(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))
		assert.Equal(t, "/v2/users/@me/animelist", r.URL.Path)
		if r.URL.Query().Get("offset") == "" {
			fmt.Fprintf(w, `{"data":[{"node":{"id":1,"title":"Cowboy Bebop","num_episodes":26},"list_status":{"status":"completed","score":9,"num_episodes_watched":26}}],
				"paging":{"next":"%s/v2/users/@me/animelist?offset=1"}}`, srv.URL)
			return
		}
		fmt.Fprint(w, `{"data":[{"node":{"id":5114,"title":"FMA:B","genres":[{"id":1,"name":"Action"}]},"list_status":{"status":"watching","num_episodes_watched":3}}],"paging":{}}`)
	}))
	defer srv.Close()

	items, err := newTestClient(srv, "").ListAnime(context.Background(), "at")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 26, items[0].ListStatus.NumEpisodesWatched)
	assert.Equal(t, "Action", items[1].Node.Genres[0].Name)
}

func TestClient_UpdateListStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/v2/anime/52991/my_list_status", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "watching", r.PostForm.Get("status"))
		assert.Equal(t, "12", r.PostForm.Get("num_watched_episodes"))
		assert.Equal(t, "8", r.PostForm.Get("score"))
		fmt.Fprint(w, `{"status":"watching","score":8,"num_episodes_watched":12}`)
	}))
	defer srv.Close()

	out, err := newTestClient(srv, "").UpdateListStatus(context.Background(), "at", 52991, ListStatus{Status: StatusWatching, Score: 8, NumEpisodesWatched: 12})
	require.NoError(t, err)
	assert.Equal(t, 12, out.NumEpisodesWatched)
}

func TestClient_ExportListPagesBy300(t *testing.T) {
	var offsets []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/animelist/some_user/load.json", r.URL.Path)
		offset := r.URL.Query().Get("offset")
		offsets = append(offsets, offset)

		n := exportPageSize
		if offset != "0" {
			n = 2
		}
		page := make([]map[string]any, 0, n)
		for i := 0; i < n; i++ {
			page = append(page, map[string]any{"anime_id": i + 1, "anime_title": "t", "status": 2})
		}
		require.NoError(t, json.NewEncoder(w).Encode(page))
	}))
	defer srv.Close()

	items, err := newTestClient(srv, "").ExportList(context.Background(), "some_user")
	require.NoError(t, err)
	assert.Len(t, items, exportPageSize+2)
	assert.Equal(t, []string{"0", "300"}, offsets)
}

func TestExportItem_Decode(t *testing.T) {
	var items []ExportItem
	require.NoError(t, json.Unmarshal([]byte(`[
		{"anime_id":1,"anime_title":"Cowboy Bebop","status":6},
		{"anime_id":2,"anime_title":86,"status":1},
		{"anime_id":3,"anime_title":null,"status":9}
	]`), &items))

	assert.Equal(t, "Cowboy Bebop", items[0].Title())
	assert.Equal(t, StatusPlanToWatch, items[0].ListStatus())
	assert.Equal(t, "86", items[1].Title())
	assert.Equal(t, StatusWatching, items[1].ListStatus())
	assert.Equal(t, "", items[2].Title())
	assert.Equal(t, StatusPlanToWatch, items[2].ListStatus())
}

func TestClient_RelayPrefix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/relay", r.URL.Path)
		target := r.URL.Query().Get("url")
		assert.True(t, strings.HasSuffix(target, "/animelist/u/load.json?offset=0&status=7"), target)
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	items, err := newTestClient(srv, srv.URL+"/relay?url=").ExportList(context.Background(), "u")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestToken_Expired(t *testing.T) {
	now := time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)
	assert.False(t, Token{}.Expired(now, time.Minute))
	assert.True(t, Token{ExpiresAt: now.Add(30 * time.Second)}.Expired(now, time.Minute))
	assert.False(t, Token{ExpiresAt: now.Add(time.Hour)}.Expired(now, time.Minute))
}
