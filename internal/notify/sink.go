package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DeliverArgs is the payload of a notification delivery job. The row id is
// generated at enqueue time so redelivery after a worker retry stays
// idempotent.
type DeliverArgs struct {
	ID          uuid.UUID `json:"id"`
	ToEmail     string    `json:"to_email"`
	Message     string    `json:"message"`
	ActionRoute string    `json:"action_route"`
	At          time.Time `json:"at"`
}

func (DeliverArgs) Kind() string { return "notification_deliver" }

// EnqueueTxFunc enqueues a delivery job within the given transaction.
// Provided by main using river.Client.InsertTx.
type EnqueueTxFunc func(ctx context.Context, tx pgx.Tx, args DeliverArgs) error

// Sink is the append-only notification emitter consumed by the workflows.
// AppendTx rides the caller's transaction: a rolled-back workflow emits
// nothing, a committed one is delivered out-of-band by the River worker.
type Sink interface {
	AppendTx(ctx context.Context, tx pgx.Tx, toEmail, message, actionRoute string) error
}

type sink struct {
	enqueue EnqueueTxFunc
}

func NewSink(enqueue EnqueueTxFunc) Sink {
	return &sink{enqueue: enqueue}
}

var _ Sink = (*sink)(nil)

func (s *sink) AppendTx(ctx context.Context, tx pgx.Tx, toEmail, message, actionRoute string) error {
	return s.enqueue(ctx, tx, DeliverArgs{
		ID:          uuid.New(),
		ToEmail:     toEmail,
		Message:     message,
		ActionRoute: actionRoute,
		At:          time.Now().UTC(),
	})
}
