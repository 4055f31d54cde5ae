package schedule

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	slotRepo "medislot/database/repository/slot"
	"medislot/metrics"
	"medislot/models"
)

// BookingConfirmedMessage is returned with every successful booking.
const BookingConfirmedMessage = "Appointment Confirmed Successfully!"

// BookSlot claims one slot for one patient. The read and the write happen in
// a single store transaction, so of any number of concurrent callers on the
// same slot at most one succeeds and the rest get ErrConflict.
func (s *DefaultScheduleService) BookSlot(ctx context.Context, req models.BookSlotRequest) (*models.BookingConfirmation, error) {
	if err := requireID("slotId", req.SlotID); err != nil {
		s.Metrics.ObserveBooking(metrics.OutcomeInvalid)
		return nil, err
	}
	if err := requireID("patientId", req.Patient.ID); err != nil {
		s.Metrics.ObserveBooking(metrics.OutcomeInvalid)
		return nil, err
	}

	booked, err := s.Repo.UpdateInTransaction(ctx, req.SlotID, func(current models.Slot) (*models.SlotPatch, error) {
		// Cancelled is terminal and Holiday is always booked.
		if current.IsBooked || !current.IsLive() {
			return nil, ErrConflict
		}
		patch := models.BookingPatch(req.Patient, req.Provider)
		return &patch, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrConflict):
		s.Metrics.ObserveBooking(metrics.OutcomeConflict)
		s.log().Debug("booking lost the race",
			zap.String("slotId", req.SlotID),
			zap.String("patientId", req.Patient.ID))
		return nil, ErrConflict
	case errors.Is(err, slotRepo.ErrNotFound):
		s.Metrics.ObserveBooking(metrics.OutcomeNotFound)
		return nil, fmt.Errorf("%w: %s", ErrNotFound, req.SlotID)
	default:
		s.Metrics.ObserveBooking(metrics.OutcomeError)
		s.log().Error("booking transaction failed",
			zap.String("slotId", req.SlotID),
			zap.Error(err))
		return nil, storeErr("book", err)
	}

	s.Metrics.ObserveBooking(metrics.OutcomeConfirmed)
	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx, booked.ProviderID, booked.Date); err != nil {
			s.log().Warn("failed to invalidate day view cache",
				zap.String("providerId", booked.ProviderID),
				zap.String("date", booked.Date),
				zap.Error(err))
		}
	}
	s.log().Info("slot booked",
		zap.String("slotId", booked.ID),
		zap.String("providerId", booked.ProviderID),
		zap.String("patientId", booked.PatientID))

	return &models.BookingConfirmation{
		Confirmed: true,
		Slot:      *booked,
		Message:   BookingConfirmedMessage,
	}, nil
}
