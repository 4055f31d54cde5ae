package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"medislot/handlers"
)

// RegisterScheduleRoutes registers the provider-facing schedule writes.
func RegisterScheduleRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/schedule")
	{
		api.POST("/day", hb.ReconcileDayHandler)
		api.POST("/weekly", hb.PlanWeekHandler)
		api.POST("/holiday", hb.BlockDayHandler)
	}
}

// RegisterAppointmentRoutes registers booking and the read views.
func RegisterAppointmentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/appointments/book", hb.BookSlotHandler)

	providers := r.Group("/api/providers/:providerID")
	{
		providers.GET("/slots", hb.ProviderDayHandler)
		providers.GET("/appointments", hb.ProviderHistoryHandler)
	}
	r.GET("/api/patients/:patientID/bookings", hb.PatientBookingsHandler)
}

// RegisterOpsRoutes registers health and metrics endpoints.
func RegisterOpsRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
	if hb.MetricsHandler != nil {
		r.GET("/metrics", hb.MetricsHandler)
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	RegisterScheduleRoutes(r, hb)
	RegisterAppointmentRoutes(r, hb)
	RegisterOpsRoutes(r, hb)
}
