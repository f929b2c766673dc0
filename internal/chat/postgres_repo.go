package chat

import (
	"context"
	"errors"
	"time"

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

func (r *PostgresRepo) Insert(ctx context.Context, m *Message) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(timeoutCtx)
	if err != nil {
		return err
	}
	defer tx.Rollback(timeoutCtx)

	const query = `
	INSERT INTO chat_messages (room, user_id, username, body)
	VALUES ($1, $2, $3, $4)
	RETURNING id, created_at
	`
	if err := tx.QueryRow(timeoutCtx, query, m.Room, m.UserID, m.Username, m.Body).Scan(&m.ID, &m.CreatedAt); err != nil {
		return err
	}
	// delivered on commit only
	if _, err := tx.Exec(timeoutCtx, `SELECT pg_notify($1, $2)`, NotifyChannel, m.ID); err != nil {
		return err
	}
	return tx.Commit(timeoutCtx)
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Message, error) {
	const query = `
	SELECT id, room, user_id, username, body, created_at
	FROM chat_messages
	WHERE id = $1
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var m Message
	err := r.db.QueryRow(timeoutCtx, query, id).Scan(&m.ID, &m.Room, &m.UserID, &m.Username, &m.Body, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Message{}, ErrNotFound
	}
	return m, err
}

func (r *PostgresRepo) ListRecent(ctx context.Context, room string, limit int) ([]Message, error) {
	const query = `
	SELECT id, room, user_id, username, body, created_at
	FROM (
		SELECT id, room, user_id, username, body, created_at
		FROM chat_messages
		WHERE room = $1
		ORDER BY created_at DESC
		LIMIT $2
	) recent
	ORDER BY created_at ASC
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, query, room, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Room, &m.UserID, &m.Username, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
