package main

import (
	"context"
	"fmt"
	"time"

	"anitrack/internal/config"
	"anitrack/internal/insight"
	"anitrack/internal/library"
	"anitrack/internal/listsync"
	"anitrack/internal/platform/jikan"
	"anitrack/internal/platform/mal"
	"anitrack/internal/season"
	"anitrack/internal/syncrun"
	"anitrack/internal/worker"

	"github.com/jackc/pgx/v5/pgxpool"
)

// services are the jobs a command can run.
type services struct {
	season  *season.Service
	sync    *listsync.Service
	insight *insight.Service
}

// opener builds the services and returns a func releasing what they hold.
type opener func(ctx context.Context) (*services, func(), error)

func openServices(ctx context.Context) (*services, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database (%s): %w", config.RedactDSN(cfg.DatabaseDSN), err)
	}

	jikanClient := jikan.NewClient(cfg.JikanBaseURL, cfg.UserAgent, cfg.JikanRPS, cfg.JikanMaxRetries)
	malClient := mal.NewClient(mal.Config{
		ClientID:     cfg.MALClientID,
		ClientSecret: cfg.MALClientSecret,
		RedirectURI:  cfg.MALRedirectURI,
		RelayURL:     cfg.MALRelayURL,
		UserAgent:    cfg.UserAgent,
	})
	runRepo := syncrun.NewPostgresRepo(pool, cfg.DBTimeout)

	libraryRepo := library.NewPostgresRepo(pool, cfg.DBTimeout)
	reader := library.NewCachedReader(libraryRepo, cfg.LibraryCacheTTL)
	librarySvc := library.NewService(libraryRepo, reader)
	seasonSvc := season.NewService(season.NewPostgresRepo(pool, cfg.DBTimeout), jikanClient, runRepo)

	svc := &services{
		season:  seasonSvc,
		insight: insight.NewService(reader, seasonSvc, librarySvc),
		sync: listsync.NewService(
			librarySvc,
			jikanClient,
			malClient,
			listsync.NewPostgresTokenRepo(pool, cfg.DBTimeout),
			runRepo,
			worker.New("listsync", cfg.SyncInterval, cfg.SyncConcurrency),
			listsync.NewVerifierStore(listsync.DefaultVerifierTTL),
		),
	}
	return svc, pool.Close, nil
}
