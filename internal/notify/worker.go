package notify

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/earnstack/backend/internal/models"
)

// Inserter is the contract the delivery worker needs from the repository.
type Inserter interface {
	Insert(ctx context.Context, n *models.Notification) error
}

// DeliverWorker materializes enqueued notification jobs into inbox rows.
type DeliverWorker struct {
	river.WorkerDefaults[DeliverArgs]
	repo Inserter
	log  *slog.Logger
}

func NewDeliverWorker(repo Inserter, log *slog.Logger) *DeliverWorker {
	if log == nil {
		log = slog.Default()
	}
	return &DeliverWorker{repo: repo, log: log}
}

func (w *DeliverWorker) Work(ctx context.Context, job *river.Job[DeliverArgs]) error {
	args := job.Args
	err := w.repo.Insert(ctx, &models.Notification{
		ID:          args.ID,
		ToEmail:     args.ToEmail,
		Message:     args.Message,
		ActionRoute: args.ActionRoute,
		Time:        args.At,
		Unread:      true,
	})
	if err != nil {
		return err
	}
	w.log.Info("notification delivered", "to", args.ToEmail, "id", args.ID)
	return nil
}
