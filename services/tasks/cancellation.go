package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"medislot/models"
)

const TypeSlotCancelled = "slot:cancelled"

// cancellationMaxRetry bounds redelivery of one push.
const cancellationMaxRetry = 5

// NewCancellationTask wraps a notice for the worker. Tasks are keyed by slot
// id so a notice queued twice for the same slot is delivered once.
func NewCancellationTask(notice models.CancellationNotice) (*asynq.Task, []asynq.Option, error) {
	if notice.SlotID == "" || notice.PatientID == "" {
		return nil, nil, fmt.Errorf("cancellation task needs slot and patient ids")
	}
	b, err := json.Marshal(notice)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSlotCancelled, b)
	opts := []asynq.Option{
		asynq.MaxRetry(cancellationMaxRetry),
		asynq.TaskID(TypeSlotCancelled + ":" + notice.SlotID),
	}

	return task, opts, nil
}

// ParseCancellationTask decodes a task built by NewCancellationTask.
func ParseCancellationTask(task *asynq.Task) (models.CancellationNotice, error) {
	var notice models.CancellationNotice
	if err := json.Unmarshal(task.Payload(), &notice); err != nil {
		return notice, fmt.Errorf("decode %s payload: %w", task.Type(), err)
	}
	return notice, nil
}
