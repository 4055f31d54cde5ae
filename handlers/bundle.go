package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all your endpoint handlers into one struct.
type HandlerBundle struct {
	// Provider schedule endpoints
	ReconcileDayHandler gin.HandlerFunc
	PlanWeekHandler     gin.HandlerFunc
	BlockDayHandler     gin.HandlerFunc

	// Booking endpoint
	BookSlotHandler gin.HandlerFunc

	// Read views
	ProviderDayHandler     gin.HandlerFunc
	PatientBookingsHandler gin.HandlerFunc
	ProviderHistoryHandler gin.HandlerFunc

	// Operations
	HealthHandler  gin.HandlerFunc
	MetricsHandler gin.HandlerFunc
}

// NewHandlerBundle wires the schedule handler's endpoints into a bundle.
func NewHandlerBundle(sh *ScheduleHandler, health, metrics gin.HandlerFunc) *HandlerBundle {
	return &HandlerBundle{
		ReconcileDayHandler:    sh.ReconcileDayHandler,
		PlanWeekHandler:        sh.PlanWeekHandler,
		BlockDayHandler:        sh.BlockDayHandler,
		BookSlotHandler:        sh.BookSlotHandler,
		ProviderDayHandler:     sh.ProviderDayHandler,
		PatientBookingsHandler: sh.PatientBookingsHandler,
		ProviderHistoryHandler: sh.ProviderHistoryHandler,
		HealthHandler:          health,
		MetricsHandler:         metrics,
	}
}
