package schedule

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"medislot/models"
)

// ListProviderDay returns every slot for the provider on date, cancelled
// history included, ordered by time.
func (s *DefaultScheduleService) ListProviderDay(ctx context.Context, providerID, date string) ([]models.Slot, error) {
	if err := requireID("providerId", providerID); err != nil {
		return nil, err
	}
	if _, err := parseDate(date); err != nil {
		return nil, err
	}

	cacheable := false
	var generation int64
	if s.Cache != nil {
		cached, ok, err := s.Cache.Get(ctx, providerID, date)
		if err != nil {
			s.log().Warn("day view cache read failed", zap.String("providerId", providerID), zap.Error(err))
		} else if ok {
			return nonNil(cached), nil
		}
		if generation, err = s.Cache.Generation(ctx, providerID, date); err != nil {
			s.log().Warn("day view generation read failed", zap.String("providerId", providerID), zap.Error(err))
		} else {
			cacheable = true
		}
	}

	slots, err := s.Repo.ListByProviderDate(ctx, providerID, date, false)
	if err != nil {
		return nil, storeErr("list provider day", err)
	}
	slots = nonNil(slots)
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Time < slots[j].Time })

	if cacheable {
		if err := s.Cache.Set(ctx, providerID, date, generation, slots); err != nil {
			s.log().Warn("day view cache write failed", zap.String("providerId", providerID), zap.Error(err))
		}
	}
	return slots, nil
}

// ListPatientBookings returns the patient's slots, latest date and time first.
func (s *DefaultScheduleService) ListPatientBookings(ctx context.Context, patientID string) ([]models.Slot, error) {
	if err := requireID("patientId", patientID); err != nil {
		return nil, err
	}
	slots, err := s.Repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, storeErr("list patient bookings", err)
	}
	return newestFirst(slots), nil
}

// ListProviderHistory returns the provider's booked slots, latest first.
// Holiday markers count as booked and are included.
func (s *DefaultScheduleService) ListProviderHistory(ctx context.Context, providerID string) ([]models.Slot, error) {
	if err := requireID("providerId", providerID); err != nil {
		return nil, err
	}
	slots, err := s.Repo.ListBookedByProvider(ctx, providerID)
	if err != nil {
		return nil, storeErr("list provider history", err)
	}
	return newestFirst(slots), nil
}

func newestFirst(slots []models.Slot) []models.Slot {
	slots = nonNil(slots)
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Instant() > slots[j].Instant() })
	return slots
}

func nonNil(slots []models.Slot) []models.Slot {
	if slots == nil {
		return []models.Slot{}
	}
	return slots
}
