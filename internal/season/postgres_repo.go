package season

import (
	"context"
	"errors"
	"time"

	"anitrack/internal/library"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) Upsert(ctx context.Context, c Candidate) error {
	const sql = `
		INSERT INTO season_catalog (
			mal_id, feed, title, image_url, genres, episode_count, season, year, studio,
			broadcast_day, broadcast_time, aired_from, score, youtube_trailer_id, refreshed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (mal_id) DO UPDATE SET
			feed = EXCLUDED.feed,
			title = EXCLUDED.title,
			image_url = EXCLUDED.image_url,
			genres = EXCLUDED.genres,
			episode_count = EXCLUDED.episode_count,
			season = EXCLUDED.season,
			year = EXCLUDED.year,
			studio = EXCLUDED.studio,
			broadcast_day = EXCLUDED.broadcast_day,
			broadcast_time = EXCLUDED.broadcast_time,
			aired_from = EXCLUDED.aired_from,
			score = EXCLUDED.score,
			youtube_trailer_id = EXCLUDED.youtube_trailer_id,
			refreshed_at = EXCLUDED.refreshed_at`

	if c.Genres == nil {
		c.Genres = []string{}
	}
	var day, clock *string
	if c.Broadcast != nil {
		day, clock = &c.Broadcast.Day, &c.Broadcast.Time
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(timeoutCtx, sql,
		c.MalID, c.Feed, c.Title, c.ImageURL, c.Genres, c.EpisodeCount, c.Season, c.Year, c.Studio,
		day, clock, c.AiredFrom, c.Score, c.YoutubeTrailerID, c.RefreshedAt,
	)
	return err
}

const candidateColumns = `
	mal_id, feed, title, image_url, genres, episode_count, season, year, studio,
	broadcast_day, broadcast_time, aired_from, score, youtube_trailer_id, refreshed_at`

func scanCandidate(row pgx.Row) (Candidate, error) {
	var (
		c          Candidate
		day, clock *string
	)
	err := row.Scan(&c.MalID, &c.Feed, &c.Title, &c.ImageURL, &c.Genres, &c.EpisodeCount, &c.Season,
		&c.Year, &c.Studio, &day, &clock, &c.AiredFrom, &c.Score, &c.YoutubeTrailerID, &c.RefreshedAt)
	if err != nil {
		return Candidate{}, err
	}
	if day != nil && *day != "" {
		c.Broadcast = &library.Broadcast{Day: *day}
		if clock != nil {
			c.Broadcast.Time = *clock
		}
	}
	if c.Genres == nil {
		c.Genres = []string{}
	}
	return c, nil
}

// List returns the feed ordered by score, then title.
func (r *PostgresRepo) List(ctx context.Context, feed Feed) ([]Candidate, error) {
	sql := `SELECT` + candidateColumns + `
		FROM season_catalog
		WHERE feed = $1
		ORDER BY score DESC, title ASC`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, sql, feed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Get(ctx context.Context, malID int) (Candidate, error) {
	sql := `SELECT` + candidateColumns + ` FROM season_catalog WHERE mal_id = $1`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	c, err := scanCandidate(r.db.QueryRow(timeoutCtx, sql, malID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Candidate{}, ErrNotFound
	}
	return c, err
}

func (r *PostgresRepo) Count(ctx context.Context, feed Feed) (int, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var n int
	err := r.db.QueryRow(timeoutCtx, `SELECT COUNT(*) FROM season_catalog WHERE feed = $1`, feed).Scan(&n)
	return n, err
}

func (r *PostgresRepo) Prune(ctx context.Context, feed Feed, before time.Time) (int64, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, `DELETE FROM season_catalog WHERE feed = $1 AND refreshed_at < $2`, feed, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
