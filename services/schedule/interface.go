package schedule

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	slotRepo "medislot/database/repository/slot"
	"medislot/metrics"
	"medislot/models"
)

// ScheduleService is the slot scheduling and booking engine.
type ScheduleService interface {
	// Provider-facing writes
	ReconcileDay(ctx context.Context, req models.ReconcileDayRequest) (*models.ReconcileResult, error)
	PlanWeek(ctx context.Context, req models.PlanWeekRequest) (*models.PlanResult, error)
	BlockDay(ctx context.Context, providerID, date string) (*models.HolidayResult, error)

	// Patient-facing write
	BookSlot(ctx context.Context, req models.BookSlotRequest) (*models.BookingConfirmation, error)

	// Read views
	ListProviderDay(ctx context.Context, providerID, date string) ([]models.Slot, error)
	ListPatientBookings(ctx context.Context, patientID string) ([]models.Slot, error)
	ListProviderHistory(ctx context.Context, providerID string) ([]models.Slot, error)
}

// DayViewCache is an optional read-through cache for ListProviderDay.
// Generation is read before the store; Set must drop the snapshot if the
// day was invalidated in between.
type DayViewCache interface {
	Get(ctx context.Context, providerID, date string) ([]models.Slot, bool, error)
	Generation(ctx context.Context, providerID, date string) (int64, error)
	Set(ctx context.Context, providerID, date string, generation int64, slots []models.Slot) error
	Invalidate(ctx context.Context, providerID string, dates ...string) error
}

// CancellationNotifier is told about bookings cancelled by a committed batch.
type CancellationNotifier interface {
	NotifyCancelled(ctx context.Context, notices []models.CancellationNotice) error
}

// DefaultScheduleService is the production implementation. Cache, Notifier
// and Metrics are optional.
type DefaultScheduleService struct {
	Repo        slotRepo.SlotRepository
	Cache       DayViewCache
	Notifier    CancellationNotifier
	Metrics     *metrics.SchedulingMetrics
	Logger      *zap.Logger
	Now         func() time.Time
	MaxPlanDays int
}

func NewDefaultScheduleService(
	repo slotRepo.SlotRepository,
	cache DayViewCache,
	notifier CancellationNotifier,
	m *metrics.SchedulingMetrics,
	logger *zap.Logger,
	maxPlanDays int,
) (*DefaultScheduleService, error) {
	if repo == nil {
		return nil, fmt.Errorf("schedule service initialization error: slot repository is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxPlanDays <= 0 {
		maxPlanDays = DefaultMaxPlanDays
	}
	return &DefaultScheduleService{
		Repo:        repo,
		Cache:       cache,
		Notifier:    notifier,
		Metrics:     m,
		Logger:      logger,
		Now:         time.Now,
		MaxPlanDays: maxPlanDays,
	}, nil
}

func (s *DefaultScheduleService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *DefaultScheduleService) log() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// commit writes one operation's batch and records failures.
func (s *DefaultScheduleService) commit(ctx context.Context, operation string, b *slotRepo.Batch) error {
	if err := s.Repo.CommitBatch(ctx, b); err != nil {
		s.Metrics.ObserveBatchFailure(operation)
		s.log().Error("schedule batch rejected",
			zap.String("operation", operation),
			zap.Int("writes", b.Len()),
			zap.Error(err))
		return storeErr(operation, err)
	}
	return nil
}

// afterCommit runs the side effects of a committed batch. None of them can
// fail the operation: the batch is already durable.
func (s *DefaultScheduleService) afterCommit(ctx context.Context, operation, providerID string, dates []string, created int, cancelled []models.Slot, deleted int) {
	s.Metrics.ObserveSlotChanges(operation, created, len(cancelled), deleted)

	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx, providerID, dates...); err != nil {
			s.log().Warn("failed to invalidate day view cache",
				zap.String("providerId", providerID),
				zap.Strings("dates", dates),
				zap.Error(err))
		}
	}

	if s.Notifier == nil || len(cancelled) == 0 {
		return
	}
	notices := make([]models.CancellationNotice, 0, len(cancelled))
	for _, slot := range cancelled {
		if slot.PatientID == "" {
			continue
		}
		notices = append(notices, models.CancellationNotice{
			SlotID:     slot.ID,
			PatientID:  slot.PatientID,
			ProviderID: slot.ProviderID,
			Date:       slot.Date,
			Time:       slot.Time,
			Message:    slot.AdminMessage,
		})
	}
	if len(notices) == 0 {
		return
	}
	if err := s.Notifier.NotifyCancelled(ctx, notices); err != nil {
		s.log().Warn("failed to queue cancellation notices",
			zap.String("operation", operation),
			zap.Int("notices", len(notices)),
			zap.Error(err))
	}
}
