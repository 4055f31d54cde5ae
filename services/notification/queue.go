package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"medislot/models"
	"medislot/services/tasks"
)

// TaskEnqueuer is the part of *asynq.Client the queue notifier needs.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueNotifier hands cancellation notices to the background worker.
type QueueNotifier struct {
	enqueuer TaskEnqueuer
	logger   *zap.Logger
}

func NewQueueNotifier(enqueuer TaskEnqueuer, logger *zap.Logger) (*QueueNotifier, error) {
	if enqueuer == nil {
		return nil, fmt.Errorf("queue notifier initialization error: enqueuer is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueueNotifier{enqueuer: enqueuer, logger: logger}, nil
}

// NotifyCancelled enqueues one task per notice. Every notice is attempted;
// the failures are returned joined.
func (q *QueueNotifier) NotifyCancelled(ctx context.Context, notices []models.CancellationNotice) error {
	var errs []error
	for _, notice := range notices {
		task, opts, err := tasks.NewCancellationTask(notice)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		info, err := q.enqueuer.EnqueueContext(ctx, task, opts...)
		switch {
		case errors.Is(err, asynq.ErrTaskIDConflict):
			q.logger.Debug("cancellation notice already queued", zap.String("slotId", notice.SlotID))
		case err != nil:
			errs = append(errs, fmt.Errorf("enqueue notice for slot %s: %w", notice.SlotID, err))
		default:
			q.logger.Debug("cancellation notice queued",
				zap.String("slotId", notice.SlotID),
				zap.String("taskId", info.ID))
		}
	}
	return errors.Join(errs...)
}
