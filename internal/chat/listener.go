package chat

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Listener holds one pooled connection on LISTEN chat_messages and hands
// every notification to Service.Deliver. A dropped connection is re-acquired
// after a pause.
type Listener struct {
	pool    *pgxpool.Pool
	svc     *Service
	backoff time.Duration
}

func NewListener(pool *pgxpool.Pool, svc *Service) *Listener {
	return &Listener{pool: pool, svc: svc, backoff: 2 * time.Second}
}

// Run blocks until ctx is done.
func (l *Listener) Run(ctx context.Context) {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return
		}
		log.Printf("[chat] listener dropped err=%v retry_in=%s", err, l.backoff)
		select {
		case <-time.After(l.backoff):
		case <-ctx.Done():
			return
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+NotifyChannel); err != nil {
		return err
	}
	log.Printf("[chat] listening channel=%s", NotifyChannel)

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				// the connection may be mid-command; drop it from the pool
				_ = conn.Conn().Close(context.Background())
			}
			return err
		}
		if err := l.svc.Deliver(ctx, n.Payload); err != nil {
			log.Printf("[chat] deliver failed id=%s err=%v", n.Payload, err)
		}
	}
}
