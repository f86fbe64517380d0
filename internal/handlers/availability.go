package handlers

import (
	"errors"

	"mindmirror-server/internal/middleware"
	"mindmirror-server/internal/models"
	"mindmirror-server/internal/scheduling"
	"mindmirror-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// AvailabilityHandler exposes the therapist calendar operations.
type AvailabilityHandler struct {
	Svc *scheduling.Service
}

// NewAvailabilityHandler creates a new AvailabilityHandler.
func NewAvailabilityHandler(svc *scheduling.Service) *AvailabilityHandler {
	return &AvailabilityHandler{Svc: svc}
}

// respondSchedulingError maps scheduling errors onto the response envelope.
func respondSchedulingError(c *gin.Context, err error) {
	switch {
	case scheduling.IsValidation(err):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, scheduling.ErrAppointmentNotFound),
		errors.Is(err, scheduling.ErrTherapistNotFound):
		utils.NotFound(c, err.Error())
	default:
		utils.InternalServerError(c, err.Error())
	}
}

// canManageTherapist allows a therapist to manage their own calendar and an
// admin to manage anyone's.
func canManageTherapist(c *gin.Context, therapistID string) bool {
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)
	if role == models.RoleAdmin {
		return true
	}
	return role == models.RoleTherapist && userID == therapistID
}

// SetAvailabilityRequest represents the request body for setting availability.
type SetAvailabilityRequest struct {
	Date         string `json:"date" binding:"required"`
	Availability string `json:"availability" binding:"required,oneof=none morning evening full_day"`
}

// SetAvailability handles upserting a therapist's regular availability for a date.
func (h *AvailabilityHandler) SetAvailability(c *gin.Context) {
	therapistID := c.Param("id")
	if !canManageTherapist(c, therapistID) {
		utils.Forbidden(c, "You can only manage your own availability.")
		return
	}

	var req SetAvailabilityRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	rec, err := h.Svc.SetAvailability(c.Request.Context(), therapistID, req.Date,
		models.Availability(req.Availability))
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Availability saved successfully", rec)
}

// GetAvailability handles reading the effective availability for a date.
func (h *AvailabilityHandler) GetAvailability(c *gin.Context) {
	therapistID := c.Param("id")
	date := c.Query("date")

	view, err := h.Svc.GetAvailability(c.Request.Context(), therapistID, date)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Availability fetched successfully", view)
}

// SetTentativeRequest represents the request body for the tentative overlay.
type SetTentativeRequest struct {
	Date         string `json:"date" binding:"required"`
	Availability string `json:"availability" binding:"required,oneof=none morning evening full_day"`
	Reason       string `json:"reason"`
}

// SetTentativeAvailability handles upserting the tentative overlay.
func (h *AvailabilityHandler) SetTentativeAvailability(c *gin.Context) {
	therapistID := c.Param("id")
	if !canManageTherapist(c, therapistID) {
		utils.Forbidden(c, "You can only manage your own availability.")
		return
	}

	var req SetTentativeRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	rec, err := h.Svc.SetTentativeAvailability(c.Request.Context(), therapistID, req.Date,
		models.Availability(req.Availability), req.Reason)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Tentative availability saved successfully", rec)
}

// RemoveTentativeRequest represents the request body for clearing the overlay.
type RemoveTentativeRequest struct {
	Date string `json:"date" binding:"required"`
}

// RemoveTentativeAvailability clears the overlay so reads revert to the
// regular value.
func (h *AvailabilityHandler) RemoveTentativeAvailability(c *gin.Context) {
	therapistID := c.Param("id")
	if !canManageTherapist(c, therapistID) {
		utils.Forbidden(c, "You can only manage your own availability.")
		return
	}

	var req RemoveTentativeRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if err := h.Svc.RemoveTentativeAvailability(c.Request.Context(), therapistID, req.Date); err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Tentative availability removed successfully", nil)
}

// DeriveAvailabilityRequest carries a slot selection to classify.
type DeriveAvailabilityRequest struct {
	TimeSlots []string `json:"timeSlots" binding:"required,min=1"`
}

// DeriveAvailabilityType classifies a slot selection into an availability
// type. The calendar view uses this when a therapist picks individual slots.
func (h *AvailabilityHandler) DeriveAvailabilityType(c *gin.Context) {
	var req DeriveAvailabilityRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	availability, err := scheduling.DeriveAvailabilityType(req.TimeSlots)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Availability type derived successfully", gin.H{
		"availabilityType": availability,
	})
}
