package realtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"heat/internal/rowschema"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orders の UPDATE トリガーが pg_notify するチャネル名
const OrderChangesChannel = "order_changes"

// PGListener は Postgres の LISTEN で受けた通知を Publisher に流す
type PGListener struct {
	pool    *pgxpool.Pool
	channel string
	out     Publisher
	log     zerolog.Logger

	retryWait time.Duration
}

func NewPGListener(pool *pgxpool.Pool, out Publisher, log zerolog.Logger) *PGListener {
	return &PGListener{
		pool:      pool,
		channel:   OrderChangesChannel,
		out:       out,
		log:       log,
		retryWait: 2 * time.Second,
	}
}

// Run は ctx が終わるまで購読を続ける。接続が切れたら待って張り直す。
func (l *PGListener) Run(ctx context.Context) error {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		l.log.Error().Err(err).Str("channel", l.channel).Msg("listen failed, retrying")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(l.retryWait):
		}
	}
}

func (l *PGListener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	l.log.Info().Str("channel", l.channel).Msg("listening for order changes")

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			return fmt.Errorf("wait: %w", err)
		}
		l.handle([]byte(n.Payload))
	}
}

func (l *PGListener) handle(payload []byte) {
	ch, err := rowschema.OrderChange(payload)
	if err != nil {
		l.log.Warn().Err(err).Msg("skip malformed order change")
		return
	}
	l.out.Publish(ch)
}
