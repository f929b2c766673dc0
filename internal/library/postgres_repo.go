package library

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

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

const entryColumns = `
	id, user_id, mal_id, title, image_url, total_episodes, episodes_watched, status, score,
	genres, tier, rewatch_count, notes, studio, broadcast_day, broadcast_time, aired_from,
	youtube_trailer_id, created_at, updated_at`

func scanEntry(row pgx.Row) (Entry, error) {
	var (
		e             Entry
		broadcastDay  *string
		broadcastTime *string
	)
	err := row.Scan(
		&e.ID, &e.UserID, &e.MalID, &e.Title, &e.ImageURL, &e.TotalEpisodes, &e.EpisodesWatched,
		&e.Status, &e.Score, &e.Genres, &e.Tier, &e.RewatchCount, &e.Notes, &e.Studio,
		&broadcastDay, &broadcastTime, &e.AiredFrom, &e.YoutubeTrailerID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return Entry{}, err
	}
	if broadcastDay != nil && *broadcastDay != "" {
		b := &Broadcast{Day: *broadcastDay}
		if broadcastTime != nil {
			b.Time = *broadcastTime
		}
		e.Broadcast = b
	}
	if e.Genres == nil {
		e.Genres = []string{}
	}
	return e, nil
}

// genresColumn keeps a nil slice from being written as NULL.
func genresColumn(g []string) []string {
	if g == nil {
		return []string{}
	}
	return g
}

func broadcastColumns(b *Broadcast) (day, clock *string) {
	if b == nil || b.Day == "" {
		return nil, nil
	}
	d, t := b.Day, b.Time
	return &d, &t
}

func (r *PostgresRepo) List(ctx context.Context, userID string) ([]Entry, error) {
	query := `SELECT` + entryColumns + `
		FROM library_entries
		WHERE user_id = $1
		ORDER BY updated_at DESC, id`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *PostgresRepo) Get(ctx context.Context, userID, id string) (Entry, error) {
	query := `SELECT` + entryColumns + ` FROM library_entries WHERE user_id = $1 AND id = $2`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	e, err := scanEntry(r.db.QueryRow(timeoutCtx, query, userID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	return e, err
}

func (r *PostgresRepo) GetByMalID(ctx context.Context, userID string, malID int) (Entry, error) {
	query := `SELECT` + entryColumns + ` FROM library_entries WHERE user_id = $1 AND mal_id = $2`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	e, err := scanEntry(r.db.QueryRow(timeoutCtx, query, userID, malID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	return e, err
}

func (r *PostgresRepo) Insert(ctx context.Context, e *Entry) error {
	const query = `
	INSERT INTO library_entries (
		user_id, mal_id, title, image_url, total_episodes, episodes_watched, status, score,
		genres, tier, rewatch_count, notes, studio, broadcast_day, broadcast_time, aired_from,
		youtube_trailer_id
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	RETURNING id, created_at, updated_at
	`
	day, clock := broadcastColumns(e.Broadcast)
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query,
		e.UserID, e.MalID, e.Title, e.ImageURL, e.TotalEpisodes, e.EpisodesWatched, e.Status, e.Score,
		genresColumn(e.Genres), e.Tier, e.RewatchCount, e.Notes, e.Studio, day, clock, e.AiredFrom, e.YoutubeTrailerID,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrAlreadyExists
	}
	return err
}

func (r *PostgresRepo) Update(ctx context.Context, e *Entry, h History) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(timeoutCtx)
	if err != nil {
		return err
	}
	defer tx.Rollback(timeoutCtx)

	const updateSQL = `
	UPDATE library_entries SET
		title = $3, image_url = $4, total_episodes = $5, episodes_watched = $6, status = $7,
		score = $8, genres = $9, tier = $10, rewatch_count = $11, notes = $12, studio = $13,
		broadcast_day = $14, broadcast_time = $15, aired_from = $16, youtube_trailer_id = $17,
		updated_at = NOW()
	WHERE user_id = $1 AND id = $2
	RETURNING updated_at
	`
	day, clock := broadcastColumns(e.Broadcast)
	err = tx.QueryRow(timeoutCtx, updateSQL,
		e.UserID, e.ID, e.Title, e.ImageURL, e.TotalEpisodes, e.EpisodesWatched, e.Status,
		e.Score, genresColumn(e.Genres), e.Tier, e.RewatchCount, e.Notes, e.Studio, day, clock, e.AiredFrom,
		e.YoutubeTrailerID,
	).Scan(&e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if ep := h.Episode; ep != nil {
		const episodeSQL = `
		INSERT INTO episode_history (user_id, entry_id, mal_id, title, episode, previous, watched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
		`
		if err := tx.QueryRow(timeoutCtx, episodeSQL,
			ep.UserID, ep.EntryID, ep.MalID, ep.Title, ep.Episode, ep.Previous, ep.WatchedAt,
		).Scan(&ep.ID); err != nil {
			return err
		}
	}

	if tc := h.Tier; tc != nil {
		const tierSQL = `
		INSERT INTO tier_history (user_id, entry_id, mal_id, title, from_tier, to_tier, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
		`
		if err := tx.QueryRow(timeoutCtx, tierSQL,
			tc.UserID, tc.EntryID, tc.MalID, tc.Title, tc.FromTier, tc.ToTier, tc.ChangedAt,
		).Scan(&tc.ID); err != nil {
			return err
		}
	}

	return tx.Commit(timeoutCtx)
}

func (r *PostgresRepo) Delete(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM library_entries WHERE user_id = $1 AND id = $2`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, query, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) ListEpisodeHistory(ctx context.Context, userID string, limit int) ([]EpisodeRecord, error) {
	const query = `
	SELECT id, user_id, COALESCE(entry_id::text, ''), mal_id, title, episode, previous, watched_at
	FROM episode_history
	WHERE user_id = $1
	ORDER BY watched_at DESC
	LIMIT $2
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []EpisodeRecord{}
	for rows.Next() {
		var rec EpisodeRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.EntryID, &rec.MalID, &rec.Title, &rec.Episode, &rec.Previous, &rec.WatchedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *PostgresRepo) ListTierHistory(ctx context.Context, userID string, limit int) ([]TierChangeRecord, error) {
	const query = `
	SELECT id, user_id, COALESCE(entry_id::text, ''), mal_id, title, from_tier, to_tier, changed_at
	FROM tier_history
	WHERE user_id = $1
	ORDER BY changed_at DESC
	LIMIT $2
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []TierChangeRecord{}
	for rows.Next() {
		var rec TierChangeRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.EntryID, &rec.MalID, &rec.Title, &rec.FromTier, &rec.ToTier, &rec.ChangedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
