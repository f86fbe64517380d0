package handlers

import (
	"mindmirror-server/internal/middleware"
	"mindmirror-server/internal/models"
	"mindmirror-server/internal/scheduling"
	"mindmirror-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	Svc *scheduling.Service
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(svc *scheduling.Service) *AppointmentHandler {
	return &AppointmentHandler{Svc: svc}
}

// BookAppointmentRequest represents the request body for booking a session.
type BookAppointmentRequest struct {
	TherapistID string `json:"therapistId" binding:"required"`
	Date        string `json:"date" binding:"required"`
	TimeSlot    string `json:"timeSlot" binding:"required"`
	PaymentID   string `json:"paymentId"`
}

// BookAppointment creates an appointment for the authenticated patient.
// Admins may book on a patient's behalf by supplying patientId.
func (h *AppointmentHandler) BookAppointment(c *gin.Context) {
	var req struct {
		BookAppointmentRequest
		PatientID string `json:"patientId"`
	}
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	role, _ := middleware.GetUserRoleFromContext(c)

	patientID := userID
	if req.PatientID != "" && req.PatientID != userID {
		if role != models.RoleAdmin {
			utils.Forbidden(c, "Patients can only book appointments for themselves.")
			return
		}
		patientID = req.PatientID
	}

	appt, err := h.Svc.BookAppointment(c.Request.Context(), patientID, req.TherapistID,
		req.Date, req.TimeSlot, req.PaymentID)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Created(c, "Appointment booked successfully", appt)
}

// ListForTherapist returns all appointments for a therapist, any status.
func (h *AppointmentHandler) ListForTherapist(c *gin.Context) {
	therapistID := c.Param("id")
	if !canManageTherapist(c, therapistID) {
		utils.Forbidden(c, "You can only view your own appointments.")
		return
	}

	appts, err := h.Svc.ListAppointments(c.Request.Context(), therapistID)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Appointments fetched successfully", appts)
}

// ListUpcomingForTherapist returns the paid upcoming list only.
func (h *AppointmentHandler) ListUpcomingForTherapist(c *gin.Context) {
	therapistID := c.Param("id")
	if !canManageTherapist(c, therapistID) {
		utils.Forbidden(c, "You can only view your own appointments.")
		return
	}

	appts, err := h.Svc.UpcomingAppointments(c.Request.Context(), therapistID)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Upcoming appointments fetched successfully", appts)
}

// CancelRequest optionally carries a cancellation reason.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// Cancel cancels one appointment by id and notifies the patient.
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	appointmentID := c.Param("id")

	var req CancelRequest
	// Body is optional for single cancellation.
	_ = c.ShouldBindJSON(&req)

	appt, err := h.Svc.CancelAppointment(c.Request.Context(), appointmentID, req.Reason)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Appointment cancelled successfully", appt)
}

// Complete marks one appointment completed.
func (h *AppointmentHandler) Complete(c *gin.Context) {
	appointmentID := c.Param("id")

	appt, err := h.Svc.CompleteAppointment(c.Request.Context(), appointmentID)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Appointment marked as completed", appt)
}

// CancelByCriteriaRequest selects a subset of one day's appointments. When
// timeSlots is non-empty it takes priority over availabilityType.
type CancelByCriteriaRequest struct {
	TherapistID      string   `json:"therapistId" binding:"required"`
	Date             string   `json:"date" binding:"required"`
	AvailabilityType string   `json:"availabilityType" binding:"omitempty,oneof=morning evening full_day"`
	TimeSlots        []string `json:"timeSlots"`
	Reason           string   `json:"reason"`
	ShouldReschedule bool     `json:"shouldReschedule"`
}

// CancelByCriteria cancels or marks for reschedule every matching active
// appointment on one therapist-day. Zero matches is a soft success; the
// message tells an empty day apart from a filter that matched nothing.
func (h *AppointmentHandler) CancelByCriteria(c *gin.Context) {
	var req CancelByCriteriaRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if !canManageTherapist(c, req.TherapistID) {
		utils.Forbidden(c, "You can only manage your own appointments.")
		return
	}

	result, err := h.Svc.CancelByCriteria(c.Request.Context(), scheduling.CancelCriteria{
		TherapistID:      req.TherapistID,
		Date:             req.Date,
		AvailabilityType: models.Availability(req.AvailabilityType),
		TimeSlots:        req.TimeSlots,
		Reason:           req.Reason,
		Reschedule:       req.ShouldReschedule,
	})
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, result.Message, result)
}
