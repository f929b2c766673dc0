package listsync

import (
	"context"
	"errors"
	"time"

	"anitrack/internal/platform/mal"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresTokenRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresTokenRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresTokenRepo {
	return &PostgresTokenRepo{db: db, timeout: timeout}
}

func (r *PostgresTokenRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresTokenRepo) Get(ctx context.Context, userID string) (mal.Token, error) {
	const query = `
	SELECT access_token, refresh_token, token_type, expires_at
	FROM mal_oauth_token
	WHERE user_id = $1
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var (
		t         mal.Token
		expiresAt *time.Time
	)
	err := r.db.QueryRow(timeoutCtx, query, userID).Scan(&t.AccessToken, &t.RefreshToken, &t.TokenType, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return mal.Token{}, ErrNotLinked
	}
	if err != nil {
		return mal.Token{}, err
	}
	if expiresAt != nil {
		t.ExpiresAt = expiresAt.UTC()
	}
	return t, nil
}

func (r *PostgresTokenRepo) Upsert(ctx context.Context, userID string, t mal.Token) error {
	const query = `
	INSERT INTO mal_oauth_token (user_id, access_token, refresh_token, token_type, expires_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, NOW())
	ON CONFLICT (user_id) DO UPDATE SET
		access_token = EXCLUDED.access_token,
		refresh_token = EXCLUDED.refresh_token,
		token_type = EXCLUDED.token_type,
		expires_at = EXCLUDED.expires_at,
		updated_at = NOW()
	`
	var expiresAt *time.Time
	if !t.ExpiresAt.IsZero() {
		expiresAt = &t.ExpiresAt
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(timeoutCtx, query, userID, t.AccessToken, t.RefreshToken, t.TokenType, expiresAt)
	return err
}

func (r *PostgresTokenRepo) Delete(ctx context.Context, userID string) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(timeoutCtx, `DELETE FROM mal_oauth_token WHERE user_id = $1`, userID)
	return err
}
