// Package mal talks to MyAnimeList: the OAuth2 token endpoints, the v2 list
// API and the legacy public list export.
package mal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultAuthBaseURL = "https://myanimelist.net"
	DefaultAPIBaseURL  = "https://api.myanimelist.net/v2"

	exportPageSize = 300
	listPageSize   = 1000
)

var (
	ErrUnauthorized = errors.New("mal: unauthorized")
	ErrNotFound     = errors.New("mal: not found")
)

type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("mal: unexpected status code: %d: %s", e.Code, e.Body)
}

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	// RelayURL, when set, is prepended to every outgoing URL (the URL is
	// query-escaped), e.g. "https://relay.example/?url=".
	RelayURL    string
	AuthBaseURL string
	APIBaseURL  string
	UserAgent   string
	RPS         float64
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	now        func() time.Time
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.AuthBaseURL == "" {
		cfg.AuthBaseURL = DefaultAuthBaseURL
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	cfg.AuthBaseURL = strings.TrimRight(cfg.AuthBaseURL, "/")
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		limiter:    rate.NewLimiter(limit, 1),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether OAuth credentials are present.
func (c *Client) Configured() bool {
	return c.cfg.ClientID != ""
}

// AuthorizeURL builds the consent URL. MAL only supports the plain PKCE
// method, so the verifier is sent as the challenge.
func (c *Client) AuthorizeURL(state, verifier string) string {
	v := url.Values{}
	v.Set("response_type", "code")
	v.Set("client_id", c.cfg.ClientID)
	v.Set("state", state)
	v.Set("redirect_uri", c.cfg.RedirectURI)
	v.Set("code_challenge", verifier)
	v.Set("code_challenge_method", "plain")
	return c.cfg.AuthBaseURL + "/v1/oauth2/authorize?" + v.Encode()
}

func (c *Client) ExchangeCode(ctx context.Context, code, verifier string) (Token, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("code_verifier", verifier)
	form.Set("redirect_uri", c.cfg.RedirectURI)
	return c.token(ctx, form)
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (Token, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	return c.token(ctx, form)
}

func (c *Client) token(ctx context.Context, form url.Values) (Token, error) {
	form.Set("client_id", c.cfg.ClientID)
	if c.cfg.ClientSecret != "" {
		form.Set("client_secret", c.cfg.ClientSecret)
	}

	var t Token
	err := c.send(ctx, http.MethodPost, c.cfg.AuthBaseURL+"/v1/oauth2/token", "", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", &t)
	if err != nil {
		return Token{}, err
	}
	if t.AccessToken == "" {
		return Token{}, errors.New("mal: token response without access_token")
	}
	if t.ExpiresIn > 0 {
		t.ExpiresAt = c.now().Add(time.Duration(t.ExpiresIn) * time.Second).UTC()
	}
	return t, nil
}

// ListAnime reads the authenticated user's whole list, following paging.next.
func (c *Client) ListAnime(ctx context.Context, accessToken string) ([]ListItem, error) {
	v := url.Values{}
	v.Set("fields", "list_status,num_episodes,genres")
	v.Set("limit", strconv.Itoa(listPageSize))
	v.Set("nsfw", "true")
	next := c.cfg.APIBaseURL + "/users/@me/animelist?" + v.Encode()

	out := []ListItem{}
	for next != "" {
		var p listPage
		if err := c.send(ctx, http.MethodGet, next, accessToken, nil, "", &p); err != nil {
			return nil, err
		}
		out = append(out, p.Data...)
		next = p.Paging.Next
	}
	return out, nil
}

// UpdateListStatus upserts the user's my_list_status for one anime.
func (c *Client) UpdateListStatus(ctx context.Context, accessToken string, malID int, s ListStatus) (ListStatus, error) {
	form := url.Values{}
	form.Set("status", s.Status)
	form.Set("score", strconv.Itoa(s.Score))
	form.Set("num_watched_episodes", strconv.Itoa(s.NumEpisodesWatched))
	form.Set("num_times_rewatched", strconv.Itoa(s.NumTimesRewatched))
	form.Set("is_rewatching", strconv.FormatBool(s.IsRewatching))

	var out ListStatus
	u := fmt.Sprintf("%s/anime/%d/my_list_status", c.cfg.APIBaseURL, malID)
	if err := c.send(ctx, http.MethodPatch, u, accessToken, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", &out); err != nil {
		return ListStatus{}, err
	}
	return out, nil
}

// ExportList reads a public list through the legacy load.json endpoint. No
// token is needed; private lists answer with an error.
func (c *Client) ExportList(ctx context.Context, username string) ([]ExportItem, error) {
	out := []ExportItem{}
	for offset := 0; ; offset += exportPageSize {
		v := url.Values{}
		v.Set("offset", strconv.Itoa(offset))
		v.Set("status", "7")
		u := fmt.Sprintf("%s/animelist/%s/load.json?%s", c.cfg.AuthBaseURL, url.PathEscape(username), v.Encode())

		var page []ExportItem
		if err := c.send(ctx, http.MethodGet, u, "", nil, "", &page); err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(page) < exportPageSize {
			return out, nil
		}
	}
}

func (c *Client) send(ctx context.Context, method, u, accessToken string, body io.Reader, contentType string, target any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	if c.cfg.RelayURL != "" {
		u = c.cfg.RelayURL + url.QueryEscape(u)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	} else if c.cfg.ClientID != "" {
		req.Header.Set("X-MAL-CLIENT-ID", c.cfg.ClientID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("mal: decode response: %w", err)
	}
	return nil
}
