// Package jikan is a read-only client for the Jikan REST API, the public
// mirror of MyAnimeList metadata.
package jikan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

var ErrNotFound = errors.New("jikan: not found")

// StatusError is returned for non-retryable upstream responses.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("jikan: unexpected status code: %d", e.Code)
}

type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBackoff sets the first retry delay; later retries double it.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

func NewClient(baseURL, userAgent string, rps float64, maxRetries int, opts ...Option) *Client {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	c := &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		userAgent:  userAgent,
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    rate.NewLimiter(limit, 1),
		maxRetries: maxRetries,
		backoff:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SearchAnime(ctx context.Context, q string, limit int) ([]Anime, error) {
	if limit <= 0 || limit > 25 {
		limit = 10
	}
	v := url.Values{}
	v.Set("q", q)
	v.Set("limit", strconv.Itoa(limit))
	v.Set("sfw", "true")

	var res Page
	if err := c.get(ctx, "/anime?"+v.Encode(), &res); err != nil {
		return nil, err
	}
	return res.Data, nil
}

func (c *Client) GetAnime(ctx context.Context, malID int) (Anime, error) {
	var res struct {
		Data Anime `json:"data"`
	}
	if err := c.get(ctx, fmt.Sprintf("/anime/%d", malID), &res); err != nil {
		return Anime{}, err
	}
	return res.Data, nil
}

func (c *Client) GetRecommendations(ctx context.Context, malID int) ([]Recommendation, error) {
	var res struct {
		Data []Recommendation `json:"data"`
	}
	if err := c.get(ctx, fmt.Sprintf("/anime/%d/recommendations", malID), &res); err != nil {
		return nil, err
	}
	return nonNil(res.Data), nil
}

func (c *Client) GetThemes(ctx context.Context, malID int) (Themes, error) {
	var res struct {
		Data Themes `json:"data"`
	}
	if err := c.get(ctx, fmt.Sprintf("/anime/%d/themes", malID), &res); err != nil {
		return Themes{}, err
	}
	res.Data.Openings = nonNil(res.Data.Openings)
	res.Data.Endings = nonNil(res.Data.Endings)
	return res.Data, nil
}

func (c *Client) GetRelations(ctx context.Context, malID int) ([]Relation, error) {
	var res struct {
		Data []Relation `json:"data"`
	}
	if err := c.get(ctx, fmt.Sprintf("/anime/%d/relations", malID), &res); err != nil {
		return nil, err
	}
	return nonNil(res.Data), nil
}

func (c *Client) GetCharacters(ctx context.Context, malID int) ([]CharacterRole, error) {
	var res struct {
		Data []CharacterRole `json:"data"`
	}
	if err := c.get(ctx, fmt.Sprintf("/anime/%d/characters", malID), &res); err != nil {
		return nil, err
	}
	return nonNil(res.Data), nil
}

func (c *Client) GetNews(ctx context.Context, malID int) ([]NewsItem, error) {
	var res struct {
		Data []NewsItem `json:"data"`
	}
	if err := c.get(ctx, fmt.Sprintf("/anime/%d/news", malID), &res); err != nil {
		return nil, err
	}
	return nonNil(res.Data), nil
}

// SeasonNow returns one page of the currently airing season.
func (c *Client) SeasonNow(ctx context.Context, page int) (Page, error) {
	return c.page(ctx, "/seasons/now", page, nil)
}

func (c *Client) SeasonUpcoming(ctx context.Context, page int) (Page, error) {
	return c.page(ctx, "/seasons/upcoming", page, nil)
}

// Schedules returns one page of the weekly broadcast schedule. An empty day
// returns every day.
func (c *Client) Schedules(ctx context.Context, day string, page int) (Page, error) {
	v := url.Values{}
	if day != "" {
		v.Set("filter", strings.ToLower(day))
	}
	return c.page(ctx, "/schedules", page, v)
}

func (c *Client) page(ctx context.Context, path string, page int, v url.Values) (Page, error) {
	if v == nil {
		v = url.Values{}
	}
	if page < 1 {
		page = 1
	}
	v.Set("page", strconv.Itoa(page))

	var res Page
	if err := c.get(ctx, path+"?"+v.Encode(), &res); err != nil {
		return Page{}, err
	}
	res.Data = nonNil(res.Data)
	return res, nil
}

func (c *Client) get(ctx context.Context, path string, target interface{}) error {
	u := c.baseURL + path

	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			// Backoff: base, 2x, 4x...
			backoff := c.backoff * time.Duration(1<<uint(i-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		retry, err := c.do(ctx, u, target)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

func (c *Client) do(ctx context.Context, u string, target interface{}) (retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return false, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return true, &StatusError{Code: resp.StatusCode}
	default:
		return false, &StatusError{Code: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return false, fmt.Errorf("jikan: decode %s: %w", u, err)
	}
	return false, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
