package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	slotRepo "medislot/database/repository/slot"
	"medislot/models"
)

// PlanWeek creates Active slots for each of the next RangeDays days, starting
// today, from the weekly template. It never reconciles against slots that
// already exist.
func (s *DefaultScheduleService) PlanWeek(ctx context.Context, req models.PlanWeekRequest) (*models.PlanResult, error) {
	if err := requireID("providerId", req.ProviderID); err != nil {
		return nil, err
	}
	if req.DurationMinutes <= 0 {
		return nil, validationErr("duration must be positive, got %d", req.DurationMinutes)
	}
	days := req.RangeDays
	if days <= 0 {
		days = DefaultPlanDays
	}
	if days > s.MaxPlanDays && s.MaxPlanDays > 0 {
		return nil, validationErr("range %d exceeds the %d day planning limit", days, s.MaxPlanDays)
	}
	plan, err := resolveTemplate(req.WeeklySchedule)
	if err != nil {
		return nil, err
	}

	today := s.now()
	batch := &slotRepo.Batch{}
	var dates []string
	for i := 0; i < days; i++ {
		day := time.Date(today.Year(), today.Month(), today.Day()+i, 0, 0, 0, 0, today.Location())
		date := day.Format(DateLayout)
		staged := 0
		for _, session := range plan[day.Weekday()] {
			if session.StartTime == "" || session.EndTime == "" || session.LocationLabel == "" {
				continue
			}
			labels, err := GenerateTimeSlots(session.StartTime, session.EndTime, req.DurationMinutes)
			if err != nil {
				return nil, err
			}
			for _, label := range labels {
				batch.Create(newActiveSlot(req.ProviderID, date, label, req.DurationMinutes, session.LocationLabel))
				staged++
			}
		}
		if staged > 0 {
			dates = append(dates, date)
		}
	}

	if batch.Empty() {
		return &models.PlanResult{
			Created: 0,
			Days:    days,
			Message: "No slots were generated. Check your weekly plan.",
		}, nil
	}
	if err := s.commit(ctx, "plan", batch); err != nil {
		return nil, err
	}
	created := len(batch.Creates)
	s.afterCommit(ctx, "plan", req.ProviderID, dates, created, nil, 0)

	s.log().Info("weekly plan created",
		zap.String("providerId", req.ProviderID),
		zap.Int("days", days),
		zap.Int("created", created))

	return &models.PlanResult{
		Created: created,
		Days:    days,
		Message: fmt.Sprintf("Success! Created %d slots for the next %d days.", created, days),
	}, nil
}

// resolveTemplate keys the template by weekday, accepting "Mon" or "Monday"
// in any case.
func resolveTemplate(template models.WeeklyTemplate) (map[time.Weekday][]models.Session, error) {
	plan := make(map[time.Weekday][]models.Session, len(template))
	for key, sessions := range template {
		wd, ok := parseWeekday(key)
		if !ok {
			return nil, validationErr("unknown weekday %q in weekly schedule", key)
		}
		plan[wd] = append(plan[wd], sessions...)
	}
	return plan, nil
}

func parseWeekday(name string) (time.Weekday, bool) {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		full := wd.String()
		if strings.EqualFold(name, full) || strings.EqualFold(name, full[:3]) {
			return wd, true
		}
	}
	return 0, false
}
