package schedule

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	slotRepo "medislot/database/repository/slot"
	"medislot/models"
)

// ScheduleUpdatedNotice is written on bookings cancelled by a reconcile.
const ScheduleUpdatedNotice = "Provider updated the schedule."

// ReconcileDay makes the provider's live slots at the requested times match
// the requested window. Colliding booked slots are cancelled and kept as
// history, colliding free slots are deleted, and live slots at other times
// are left alone. Everything commits as one batch.
func (s *DefaultScheduleService) ReconcileDay(ctx context.Context, req models.ReconcileDayRequest) (*models.ReconcileResult, error) {
	if err := requireID("providerId", req.ProviderID); err != nil {
		return nil, err
	}
	if _, err := parseDate(req.Date); err != nil {
		return nil, err
	}
	start, err := parseClock(req.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := parseClock(req.EndTime)
	if err != nil {
		return nil, err
	}
	if start >= end {
		return nil, validationErr("startTime %s must be before endTime %s", req.StartTime, req.EndTime)
	}
	requested, err := GenerateTimeSlots(req.StartTime, req.EndTime, req.DurationMinutes)
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]struct{}, len(requested))
	for _, label := range requested {
		wanted[label] = struct{}{}
	}

	existing, err := s.Repo.ListByProviderDate(ctx, req.ProviderID, req.Date, true)
	if err != nil {
		return nil, storeErr("reconcile", err)
	}

	batch := &slotRepo.Batch{}
	var cancelled []models.Slot
	deleted := 0
	for _, slot := range existing {
		if _, hit := wanted[slot.Time]; !hit {
			continue
		}
		if slot.IsBooked {
			batch.Update(slot.ID, models.CancelPatch(ScheduleUpdatedNotice))
			slot.AdminMessage = ScheduleUpdatedNotice
			cancelled = append(cancelled, slot)
			continue
		}
		batch.Delete(slot.ID)
		deleted++
	}
	for _, label := range requested {
		batch.Create(newActiveSlot(req.ProviderID, req.Date, label, req.DurationMinutes, req.LocationLabel))
	}

	if err := s.commit(ctx, "reconcile", batch); err != nil {
		return nil, err
	}
	s.afterCommit(ctx, "reconcile", req.ProviderID, []string{req.Date}, len(requested), cancelled, deleted)

	overwritten := len(cancelled) + deleted
	s.log().Info("day reconciled",
		zap.String("providerId", req.ProviderID),
		zap.String("date", req.Date),
		zap.Int("created", len(requested)),
		zap.Int("cancelled", len(cancelled)),
		zap.Int("deleted", deleted))

	result := &models.ReconcileResult{Overwritten: overwritten, Created: len(requested)}
	if overwritten > 0 {
		result.Message = fmt.Sprintf("Updated! Replaced %d old slots and added %d new ones.", overwritten, len(requested)-overwritten)
	} else {
		result.Message = fmt.Sprintf("Success! Added %d new slots to your day.", len(requested))
	}
	return result, nil
}

func newActiveSlot(providerID, date, label string, duration int, location string) models.Slot {
	return models.Slot{
		ProviderID:      providerID,
		Date:            date,
		Time:            label,
		DurationMinutes: duration,
		LocationLabel:   location,
		IsBooked:        false,
		Status:          models.SlotStatusActive,
	}
}
