package notification

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medislot/models"
	"medislot/services/tasks"
)

type fakeSender struct {
	sent []*messaging.Message
	err  error
}

func (f *fakeSender) Send(ctx context.Context, message *messaging.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, message)
	return "projects/clinic/messages/1", nil
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
	errs  map[string]error
}

func (f *fakeEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	notice, err := tasks.ParseCancellationTask(task)
	if err != nil {
		return nil, err
	}
	if err := f.errs[notice.SlotID]; err != nil {
		return nil, err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "task-" + notice.SlotID, Type: task.Type()}, nil
}

var notice = models.CancellationNotice{
	SlotID:     "slot-1",
	PatientID:  "pat-1",
	ProviderID: "prov-1",
	Date:       "2026-10-16",
	Time:       "09:30",
	Message:    "Appointment cancelled. Provider is on leave today. Please reschedule your visit.",
}

func TestSendCancellationNoticeTargetsPatientTopic(t *testing.T) {
	sender := &fakeSender{}
	svc, err := NewDefaultNotificationService(sender, nil)
	require.NoError(t, err)

	require.NoError(t, svc.SendCancellationNotice(context.Background(), notice))
	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "patient_pat-1", msg.Topic)
	assert.Empty(t, msg.Token)
	assert.Equal(t, notice.Message, msg.Notification.Body)
	assert.Equal(t, "slot-1", msg.Data["slotId"])
	assert.Equal(t, "09:30", msg.Data["time"])
}

func TestSendCancellationNoticeErrors(t *testing.T) {
	_, err := NewDefaultNotificationService(nil, nil)
	assert.Error(t, err)

	sendErr := errors.New("fcm unavailable")
	svc, err := NewDefaultNotificationService(&fakeSender{err: sendErr}, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.SendCancellationNotice(context.Background(), notice), sendErr)

	noPatient := notice
	noPatient.PatientID = ""
	assert.Error(t, svc.SendCancellationNotice(context.Background(), noPatient))
}

func TestQueueNotifierEnqueuesEachNotice(t *testing.T) {
	enq := &fakeEnqueuer{}
	q, err := NewQueueNotifier(enq, nil)
	require.NoError(t, err)

	second := notice
	second.SlotID = "slot-2"
	require.NoError(t, q.NotifyCancelled(context.Background(), []models.CancellationNotice{notice, second}))
	require.Len(t, enq.tasks, 2)
	assert.Equal(t, tasks.TypeSlotCancelled, enq.tasks[0].Type())
}

func TestQueueNotifierKeepsGoingAfterFailure(t *testing.T) {
	queueDown := errors.New("redis down")
	enq := &fakeEnqueuer{errs: map[string]error{
		"slot-1": queueDown,
		"slot-2": asynq.ErrTaskIDConflict,
	}}
	q, err := NewQueueNotifier(enq, nil)
	require.NoError(t, err)

	second := notice
	second.SlotID = "slot-2"
	third := notice
	third.SlotID = "slot-3"
	err = q.NotifyCancelled(context.Background(), []models.CancellationNotice{notice, second, third})
	assert.ErrorIs(t, err, queueDown)
	assert.NotErrorIs(t, err, asynq.ErrTaskIDConflict)
	require.Len(t, enq.tasks, 1)
}
