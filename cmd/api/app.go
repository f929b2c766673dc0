package main

import (
	"context"
	"net/http"
	"time"

	"anitrack/internal/anime"
	"anitrack/internal/chat"
	"anitrack/internal/config"
	"anitrack/internal/httpx"
	"anitrack/internal/insight"
	"anitrack/internal/library"
	"anitrack/internal/listsync"
	"anitrack/internal/platform/jikan"
	"anitrack/internal/platform/mal"
	"anitrack/internal/season"
	"anitrack/internal/syncrun"
	"anitrack/internal/user"
	"anitrack/internal/worker"

	"github.com/jackc/pgx/v5/pgxpool"
)

const maxRequestBytes = 1 << 20

// app holds the handlers and background jobs of one server process.
type app struct {
	users    *user.HTTPHandler
	library  *library.HTTPHandler
	insight  *insight.HTTPHandler
	season   *season.HTTPHandler
	anime    *anime.HTTPHandler
	listsync *listsync.HTTPHandler
	chat     *chat.HTTPHandler

	scheduler    *season.Scheduler
	chatListener *chat.Listener
	rateLimiter  *httpx.RateLimitMiddleware
}

func newApp(cfg config.Config, dbPool *pgxpool.Pool) *app {
	jikanClient := jikan.NewClient(cfg.JikanBaseURL, cfg.UserAgent, cfg.JikanRPS, cfg.JikanMaxRetries)
	malClient := mal.NewClient(mal.Config{
		ClientID:     cfg.MALClientID,
		ClientSecret: cfg.MALClientSecret,
		RedirectURI:  cfg.MALRedirectURI,
		RelayURL:     cfg.MALRelayURL,
		UserAgent:    cfg.UserAgent,
	})

	runRepo := syncrun.NewPostgresRepo(dbPool, cfg.DBTimeout)

	userSvc := user.NewService(user.NewPostgresRepo(dbPool, cfg.DBTimeout), cfg.JWTSecret, cfg.JWTTTL)

	libraryRepo := library.NewPostgresRepo(dbPool, cfg.DBTimeout)
	reader := library.NewCachedReader(libraryRepo, cfg.LibraryCacheTTL)
	librarySvc := library.NewService(libraryRepo, reader)

	seasonSvc := season.NewService(season.NewPostgresRepo(dbPool, cfg.DBTimeout), jikanClient, runRepo)
	insightSvc := insight.NewService(reader, seasonSvc, librarySvc)

	runner := worker.New("listsync", cfg.SyncInterval, cfg.SyncConcurrency)
	syncSvc := listsync.NewService(
		librarySvc,
		jikanClient,
		malClient,
		listsync.NewPostgresTokenRepo(dbPool, cfg.DBTimeout),
		runRepo,
		runner,
		listsync.NewVerifierStore(listsync.DefaultVerifierTTL),
	)

	hub := chat.NewHub(cfg.ChatHistorySize)
	chatSvc := chat.NewService(chat.NewPostgresRepo(dbPool, cfg.DBTimeout), hub)

	return &app{
		users:    user.NewHTTPHandler(userSvc),
		library:  library.NewHTTPHandler(librarySvc, seasonSvc),
		insight:  insight.NewHTTPHandler(insightSvc),
		season:   season.NewHTTPHandler(seasonSvc),
		anime:    anime.NewHTTPHandler(anime.NewService(jikanClient)),
		listsync: listsync.NewHTTPHandler(syncSvc),
		chat:     chat.NewHTTPHandler(chatSvc, hub, cfg.CORSOrigins),

		scheduler:    season.NewScheduler(seasonSvc, cfg.SeasonRefreshInterval),
		chatListener: chat.NewListener(dbPool, chatSvc),
		rateLimiter:  httpx.NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}
}

// pinger is satisfied by *pgxpool.Pool.
type pinger interface {
	Ping(ctx context.Context) error
}

func (a *app) routes(cfg config.Config, db pinger) http.Handler {
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.HandleFunc("POST /v1/users/register", a.users.Register)
	router.HandleFunc("POST /v1/users/login", a.users.Login)

	// The MAL redirect lands here without our bearer token; the state carries the user.
	router.HandleFunc("GET /v1/mal/callback", a.listsync.Callback)

	auth := httpx.AuthMiddleware(cfg.JWTSecret)
	protected := func(pattern string, h http.HandlerFunc) {
		router.Handle(pattern, auth(h))
	}

	protected("GET /me", a.users.Me)

	protected("GET /v1/library", a.library.List)
	protected("POST /v1/library", a.library.Add)
	protected("POST /v1/library/from-catalog", a.library.AddFromCatalog)
	protected("GET /v1/library/{id}", a.library.Get)
	protected("PATCH /v1/library/{id}", a.library.Update)
	protected("DELETE /v1/library/{id}", a.library.Remove)
	protected("POST /v1/library/{id}/increment", a.library.Increment)
	protected("GET /v1/history/episodes", a.library.EpisodeHistory)
	protected("GET /v1/history/tiers", a.library.TierHistory)

	protected("GET /v1/me/dna", a.insight.DNA)
	protected("GET /v1/me/recommendations", a.insight.Recommendations)
	protected("GET /v1/me/achievements", a.insight.Achievements)
	protected("GET /v1/me/stats", a.insight.Stats)
	protected("GET /v1/me/countdowns", a.insight.Countdowns)
	protected("GET /v1/tiers", a.insight.TierBoard)
	protected("POST /v1/tiers/drop", a.insight.Drop)

	protected("GET /v1/season", a.season.List)

	protected("GET /v1/anime/search", a.anime.Search)
	protected("GET /v1/anime/{malId}", a.anime.Get)
	protected("GET /v1/anime/{malId}/{resource}", a.anime.Resource)
	protected("GET /v1/schedule", a.anime.Schedule)

	protected("GET /v1/mal/link", a.listsync.Link)
	protected("DELETE /v1/mal/link", a.listsync.Unlink)
	protected("POST /v1/sync/repair", a.listsync.Repair)
	protected("POST /v1/sync/mal/push", a.listsync.Push)
	protected("POST /v1/sync/mal/import", a.listsync.Import)
	protected("GET /v1/sync/runs", a.listsync.Runs)

	protected("GET /v1/chat/messages", a.chat.List)
	protected("POST /v1/chat/messages", a.chat.Post)
	protected("GET /v1/chat/ws", a.chat.Subscribe)

	internal := httpx.InternalSecretMiddleware(cfg.InternalSecret)
	router.Handle("POST /internal/jobs/season-refresh", internal(http.HandlerFunc(a.season.Refresh)))

	return httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware,
		httpx.RecoveryMiddleware,
		httpx.CORSMiddleware(cfg.CORSOrigins),
		httpx.SecurityHeadersMiddleware,
		a.rateLimiter.Middleware,
		httpx.RequestSizeLimitMiddleware(maxRequestBytes),
	)
}
