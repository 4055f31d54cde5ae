package models

// ReconcileDayRequest declares a provider's availability window for one date.
type ReconcileDayRequest struct {
	ProviderID      string `json:"providerId" binding:"required"`
	Date            string `json:"date" binding:"required"`
	StartTime       string `json:"startTime" binding:"required"`
	EndTime         string `json:"endTime" binding:"required"`
	DurationMinutes int    `json:"duration" binding:"required"`
	LocationLabel   string `json:"location"`
}

// Session is one working block inside a weekly template.
type Session struct {
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
	LocationLabel string `json:"location"`
}

// WeeklyTemplate maps a weekday name ("Mon" or "Monday") to its sessions.
type WeeklyTemplate map[string][]Session

// PlanWeekRequest generates slots for the next RangeDays days from a template.
type PlanWeekRequest struct {
	ProviderID      string         `json:"providerId" binding:"required"`
	WeeklySchedule  WeeklyTemplate `json:"weeklySchedule" binding:"required"`
	DurationMinutes int            `json:"duration" binding:"required"`
	RangeDays       int            `json:"range"`
}

// BlockDayRequest marks a provider's date as a holiday.
type BlockDayRequest struct {
	ProviderID string `json:"providerId" binding:"required"`
	Date       string `json:"date" binding:"required"`
}

// BookSlotRequest claims one slot for one patient.
type BookSlotRequest struct {
	SlotID   string           `json:"slotId" binding:"required"`
	Patient  PatientInfo      `json:"patient"`
	Provider ProviderSnapshot `json:"provider"`
}

// ReconcileResult summarises a ReconcileDay call.
type ReconcileResult struct {
	Overwritten int    `json:"overwritten"`
	Created     int    `json:"created"`
	Message     string `json:"message"`
}

// PlanResult summarises a PlanWeek call.
type PlanResult struct {
	Created int    `json:"created"`
	Days    int    `json:"days"`
	Message string `json:"message"`
}

// HolidayResult summarises a BlockDay call.
type HolidayResult struct {
	Cancelled int    `json:"cancelled"`
	Message   string `json:"message"`
}

// BookingConfirmation is returned by a successful booking.
type BookingConfirmation struct {
	Confirmed bool   `json:"confirmed"`
	Slot      Slot   `json:"slot"`
	Message   string `json:"message"`
}

// CancellationNotice is the payload sent to a patient whose booking was cancelled.
type CancellationNotice struct {
	SlotID     string `json:"slotId"`
	PatientID  string `json:"patientId"`
	ProviderID string `json:"providerId"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Message    string `json:"message"`
}
