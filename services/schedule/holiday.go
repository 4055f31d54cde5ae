package schedule

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	slotRepo "medislot/database/repository/slot"
	"medislot/models"
)

// LeaveNotice is written on bookings cancelled by a holiday.
const LeaveNotice = "Appointment cancelled. Provider is on leave today. Please reschedule your visit."

// BlockDay clears the provider's live slots on date and leaves a single
// Holiday marker. Booked slots are cancelled, free slots deleted. An existing
// marker is kept, so repeating the call is harmless.
func (s *DefaultScheduleService) BlockDay(ctx context.Context, providerID, date string) (*models.HolidayResult, error) {
	if err := requireID("providerId", providerID); err != nil {
		return nil, err
	}
	if _, err := parseDate(date); err != nil {
		return nil, err
	}

	existing, err := s.Repo.ListByProviderDate(ctx, providerID, date, true)
	if err != nil {
		return nil, storeErr("holiday", err)
	}

	batch := &slotRepo.Batch{}
	var cancelled []models.Slot
	deleted := 0
	hasMarker := false
	for _, slot := range existing {
		switch {
		case slot.Status == models.SlotStatusHoliday && !hasMarker:
			hasMarker = true
		case slot.IsBooked:
			batch.Update(slot.ID, models.CancelPatch(LeaveNotice))
			slot.AdminMessage = LeaveNotice
			if slot.Status != models.SlotStatusHoliday {
				cancelled = append(cancelled, slot)
			}
		default:
			batch.Delete(slot.ID)
			deleted++
		}
	}
	created := 0
	if !hasMarker {
		batch.Create(holidayMarker(providerID, date))
		created = 1
	}

	if err := s.commit(ctx, "holiday", batch); err != nil {
		return nil, err
	}
	s.afterCommit(ctx, "holiday", providerID, []string{date}, created, cancelled, deleted)

	s.log().Info("day blocked for holiday",
		zap.String("providerId", providerID),
		zap.String("date", date),
		zap.Int("cancelled", len(cancelled)),
		zap.Int("deleted", deleted))

	return &models.HolidayResult{
		Cancelled: len(cancelled),
		Message:   fmt.Sprintf("Date marked as Holiday. %d existing bookings were cancelled.", len(cancelled)),
	}, nil
}

func holidayMarker(providerID, date string) models.Slot {
	return models.Slot{
		ProviderID:      providerID,
		Date:            date,
		Time:            models.HolidayMarkerTime,
		DurationMinutes: 0,
		LocationLabel:   models.HolidayMarkerLocation,
		IsBooked:        true,
		Status:          models.SlotStatusHoliday,
	}
}
