package notification

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"

	"medislot/models"
)

// PushSender delivers one FCM message. *messaging.Client satisfies it.
type PushSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// NotificationService defines methods for sending FCM pushes.
type NotificationService interface {
	SendCancellationNotice(ctx context.Context, notice models.CancellationNotice) error
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	sender PushSender
	logger *zap.Logger
}

func NewDefaultNotificationService(sender PushSender, logger *zap.Logger) (*DefaultNotificationService, error) {
	if sender == nil {
		return nil, fmt.Errorf("notification service initialization error: push sender is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultNotificationService{sender: sender, logger: logger}, nil
}

// PatientTopic is the FCM topic a patient's devices subscribe to.
func PatientTopic(patientID string) string {
	return "patient_" + patientID
}

// SendCancellationNotice pushes the admin message of a cancelled booking to
// the patient's topic.
func (s *DefaultNotificationService) SendCancellationNotice(ctx context.Context, notice models.CancellationNotice) error {
	if notice.PatientID == "" {
		return fmt.Errorf("SendCancellationNotice: slot %s has no patient", notice.SlotID)
	}

	msg := &messaging.Message{
		Topic: PatientTopic(notice.PatientID),
		Notification: &messaging.Notification{
			Title: "Appointment cancelled",
			Body:  notice.Message,
		},
		Data: map[string]string{
			"type":       "appointment_cancelled",
			"slotId":     notice.SlotID,
			"providerId": notice.ProviderID,
			"date":       notice.Date,
			"time":       notice.Time,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	response, err := s.sender.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("SendCancellationNotice: failed to send FCM message: %w", err)
	}

	s.logger.Info("cancellation notice sent",
		zap.String("slotId", notice.SlotID),
		zap.String("patientId", notice.PatientID),
		zap.String("messageId", response))
	return nil
}
