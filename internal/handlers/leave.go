package handlers

import (
	"fmt"

	"mindmirror-server/internal/scheduling"
	"mindmirror-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// LeaveHandler exposes therapist leave management.
type LeaveHandler struct {
	Svc *scheduling.Service
}

// NewLeaveHandler creates a new LeaveHandler.
func NewLeaveHandler(svc *scheduling.Service) *LeaveHandler {
	return &LeaveHandler{Svc: svc}
}

// CreateLeaveRequest represents the request body for declaring a leave.
type CreateLeaveRequest struct {
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate" binding:"required"`
	Reason    string `json:"reason"`
}

// CreateLeave persists a leave interval and cancels the appointments that
// fall inside it.
func (h *LeaveHandler) CreateLeave(c *gin.Context) {
	therapistID := c.Param("id")
	if !canManageTherapist(c, therapistID) {
		utils.Forbidden(c, "You can only manage your own leave.")
		return
	}

	var req CreateLeaveRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	leave, cancelled, err := h.Svc.CreateLeave(c.Request.Context(), therapistID,
		req.StartDate, req.EndDate, req.Reason)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	msg := fmt.Sprintf("Leave created; %d appointment(s) cancelled", cancelled)
	utils.Created(c, msg, gin.H{
		"leave":                 leave,
		"cancelledAppointments": cancelled,
	})
}

// ListLeaves returns all leave records for the therapist. The calendar view
// uses these to shade leave dates.
func (h *LeaveHandler) ListLeaves(c *gin.Context) {
	therapistID := c.Param("id")

	leaves, err := h.Svc.ListLeaves(c.Request.Context(), therapistID)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Leaves fetched successfully", leaves)
}
