package outbox

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Appender buffers an outbox row as part of an in-flight transaction. The
// caller commits tx itself; Append only executes the insert — entity writes
// and outbox writes land in the same pgx.Tx so they commit or roll back
// together (spec.md §4.5).
type Appender interface {
	Append(ctx context.Context, tx pgx.Tx, msg Message) error
}

// PgAppender is the pgx-backed Appender. It has no state of its own beyond
// the SQL it issues — the transaction boundary lives entirely with the
// caller.
type PgAppender struct{}

// NewPgAppender constructs a PgAppender.
func NewPgAppender() *PgAppender {
	return &PgAppender{}
}

const insertOutboxSQL = `
INSERT INTO outbox_messages
	(id, aggregate_id, aggregate_type, message_type, payload, user_id, origin_device_id, created_at_utc, attempt_count)
VALUES
	($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

// Append inserts one immutable outbox row. It returns an error on any
// infrastructure failure; the caller decides (per spec.md §7) whether that
// failure is fatal to the enclosing mutation.
func (a *PgAppender) Append(ctx context.Context, tx pgx.Tx, msg Message) error {
	_, err := tx.Exec(ctx, insertOutboxSQL,
		msg.ID,
		msg.AggregateID,
		string(msg.AggregateType),
		string(msg.MessageType),
		msg.Payload,
		msg.UserID,
		msg.OriginDeviceID,
		msg.CreatedAtUtc,
		msg.AttemptCount,
	)
	return err
}
