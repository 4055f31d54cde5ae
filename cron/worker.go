package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"medislot/services/notification"
	"medislot/services/tasks"
)

const workerStartAttempts = 5

// CancellationWorker delivers queued cancellation notices as pushes.
type CancellationWorker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

func NewCancellationWorker(redisOpts asynq.RedisClientOpt, notifSvc notification.NotificationService, logger *zap.Logger) *CancellationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			Logger:   logger.Sugar(),
			LogLevel: asynq.WarnLevel,
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSlotCancelled, HandleCancellationTask(notifSvc, logger))

	return &CancellationWorker{srv: srv, mux: mux, logger: logger}
}

// Start runs the worker in background, retrying startup with backoff.
func (w *CancellationWorker) Start() {
	go func() {
		w.logger.Info("starting cancellation worker")
		for attempts := 1; attempts <= workerStartAttempts; attempts++ {
			err := w.srv.Start(w.mux)
			if err == nil {
				return
			}
			w.logger.Error("cancellation worker failed to start",
				zap.Int("attempt", attempts),
				zap.Int("maxAttempts", workerStartAttempts),
				zap.Error(err))
			if attempts == workerStartAttempts {
				w.logger.Error("cancellation worker gave up; notices stay queued")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
}

// Shutdown waits for in-flight tasks and stops the worker.
func (w *CancellationWorker) Shutdown() {
	w.srv.Shutdown()
}

// HandleCancellationTask pushes one cancellation notice. Undecodable payloads
// are dropped without retry.
func HandleCancellationTask(notifSvc notification.NotificationService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		notice, err := tasks.ParseCancellationTask(task)
		if err != nil {
			logger.Error("invalid cancellation payload", zap.Error(err))
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}

		if err := notifSvc.SendCancellationNotice(ctx, notice); err != nil {
			logger.Warn("failed to send cancellation notice",
				zap.String("slotId", notice.SlotID),
				zap.String("patientId", notice.PatientID),
				zap.Error(err))
			return err
		}
		return nil
	}
}
