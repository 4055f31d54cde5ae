package schedule

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the calendar-day format of Slot.Date.
	DateLayout = "2006-01-02"
	// ClockLayout is the 24-hour wall clock format of Slot.Time.
	ClockLayout = "15:04"

	DefaultPlanDays    = 7
	DefaultMaxPlanDays = 90
)

// GenerateTimeSlots returns the start labels of every whole slot of duration
// minutes that fits in [start, end). A trailing remainder shorter than
// duration is dropped. start >= end yields an empty slice.
func GenerateTimeSlots(start, end string, duration int) ([]string, error) {
	if duration <= 0 {
		return nil, validationErr("duration must be positive, got %d", duration)
	}
	from, err := parseClock(start)
	if err != nil {
		return nil, err
	}
	to, err := parseClock(end)
	if err != nil {
		return nil, err
	}

	labels := []string{}
	for t := from; t+duration <= to; t += duration {
		labels = append(labels, formatClock(t))
	}
	return labels, nil
}

// parseClock converts "HH:MM" to minutes after midnight.
func parseClock(label string) (int, error) {
	t, err := time.Parse(ClockLayout, label)
	if err != nil {
		return 0, validationErr("time %q must be HH:MM", label)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func parseDate(date string) (time.Time, error) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, validationErr("date %q must be YYYY-MM-DD", date)
	}
	return d, nil
}
