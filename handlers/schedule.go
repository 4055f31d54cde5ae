package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medislot/middleware"
	"medislot/models"
	"medislot/services/schedule"
	"medislot/utils"
)

// ScheduleHandler exposes the scheduling engine over HTTP.
type ScheduleHandler struct {
	Service schedule.ScheduleService
}

func NewScheduleHandler(service schedule.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{Service: service}
}

func (h *ScheduleHandler) ReconcileDayHandler(c *gin.Context) {
	var req models.ReconcileDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	result, err := h.Service.ReconcileDay(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err, "Failed to update schedule")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ScheduleHandler) PlanWeekHandler(c *gin.Context) {
	var req models.PlanWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	result, err := h.Service.PlanWeek(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err, "Failed to create weekly schedule")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ScheduleHandler) BlockDayHandler(c *gin.Context) {
	var req models.BlockDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	result, err := h.Service.BlockDay(c.Request.Context(), req.ProviderID, req.Date)
	if err != nil {
		writeServiceError(c, err, "Failed to set holiday")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ScheduleHandler) BookSlotHandler(c *gin.Context) {
	var req models.BookSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	confirmation, err := h.Service.BookSlot(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err, "Booking failed")
		return
	}
	middleware.RequestLogger(c).Info("Appointment confirmed",
		zap.String("slotId", confirmation.Slot.ID),
		zap.String("patientId", confirmation.Slot.PatientID))
	c.JSON(http.StatusOK, confirmation)
}

func (h *ScheduleHandler) ProviderDayHandler(c *gin.Context) {
	providerID := c.Param("providerID")
	date := c.Query("date")
	if providerID == "" || date == "" {
		utils.JSONError(c, http.StatusBadRequest, "Missing date or providerId", "")
		return
	}

	slots, err := h.Service.ListProviderDay(c.Request.Context(), providerID, date)
	if err != nil {
		writeServiceError(c, err, "Failed to fetch slots")
		return
	}
	c.JSON(http.StatusOK, slots)
}

func (h *ScheduleHandler) PatientBookingsHandler(c *gin.Context) {
	slots, err := h.Service.ListPatientBookings(c.Request.Context(), c.Param("patientID"))
	if err != nil {
		writeServiceError(c, err, "Failed to fetch bookings")
		return
	}
	c.JSON(http.StatusOK, slots)
}

func (h *ScheduleHandler) ProviderHistoryHandler(c *gin.Context) {
	slots, err := h.Service.ListProviderHistory(c.Request.Context(), c.Param("providerID"))
	if err != nil {
		writeServiceError(c, err, "Failed to fetch appointments")
		return
	}
	c.JSON(http.StatusOK, slots)
}

// writeServiceError maps engine errors onto HTTP statuses.
func writeServiceError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, schedule.ErrValidation):
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
	case errors.Is(err, schedule.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "Slot does not exist", err.Error())
	case errors.Is(err, schedule.ErrConflict):
		utils.JSONError(c, http.StatusConflict, "Sorry, this slot was just taken by someone else.", "")
	default:
		middleware.RequestLogger(c).Error(message, zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, message, "")
	}
}
