// Package scheduling is the sole mutator of availability, leave and
// appointment state. Handlers call into it; it orchestrates the store
// reads/writes and the patient notifications that cancellations and
// reschedules trigger.
package scheduling

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"mindmirror-server/internal/models"
	"mindmirror-server/internal/notify"
	"mindmirror-server/internal/utils"
)

type Service struct {
	db       *gorm.DB
	notifier notify.Notifier
}

func NewService(db *gorm.DB, notifier notify.Notifier) *Service {
	return &Service{db: db, notifier: notifier}
}

// AvailabilityView is what the read path returns: the effective availability
// for one therapist-day, with the tentative marker when the overlay won.
type AvailabilityView struct {
	TherapistID  string              `json:"therapistId"`
	Date         string              `json:"date"`
	Availability models.Availability `json:"availability"`
	Tentative    bool                `json:"tentative"`
	Reason       string              `json:"reason,omitempty"`
}

func validateKey(therapistID, date string) error {
	if strings.TrimSpace(therapistID) == "" {
		return validationError("therapist id is required")
	}
	if !utils.IsCalendarDate(date) {
		return validationError("date must be in YYYY-MM-DD format")
	}
	return nil
}

func (s *Service) availabilityRow(ctx context.Context, therapistID, date string) (*models.AvailabilityRecord, error) {
	var rec models.AvailabilityRecord
	err := s.db.WithContext(ctx).
		Where("therapist_id = ? AND date = ?", therapistID, date).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// SetAvailability upserts the regular availability for one therapist-day.
// The tentative overlay on the same row is left untouched; clearing it is the
// caller's responsibility.
func (s *Service) SetAvailability(ctx context.Context, therapistID, date string, availability models.Availability) (*models.AvailabilityRecord, error) {
	if err := validateKey(therapistID, date); err != nil {
		return nil, err
	}
	if !models.ValidAvailability(availability) {
		return nil, validationError("availability must be one of none, morning, evening, full_day")
	}

	rec, err := s.availabilityRow(ctx, therapistID, date)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		rec = &models.AvailabilityRecord{
			TherapistID:  therapistID,
			Date:         date,
			Availability: availability,
		}
		if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
			return nil, fmt.Errorf("create availability: %w", err)
		}
		return rec, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load availability: %w", err)
	}

	rec.Availability = availability
	if err := s.db.WithContext(ctx).Save(rec).Error; err != nil {
		return nil, fmt.Errorf("update availability: %w", err)
	}
	return rec, nil
}

// SetTentativeAvailability upserts the tentative overlay fields on the keyed
// row, creating the row when the therapist has no regular value for the date.
func (s *Service) SetTentativeAvailability(ctx context.Context, therapistID, date string, availability models.Availability, reason string) (*models.AvailabilityRecord, error) {
	if err := validateKey(therapistID, date); err != nil {
		return nil, err
	}
	if !models.ValidAvailability(availability) {
		return nil, validationError("availability must be one of none, morning, evening, full_day")
	}

	rec, err := s.availabilityRow(ctx, therapistID, date)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		rec = &models.AvailabilityRecord{
			TherapistID:           therapistID,
			Date:                  date,
			Availability:          models.AvailabilityNone,
			Tentative:             true,
			TentativeAvailability: availability,
			TentativeReason:       reason,
		}
		if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
			return nil, fmt.Errorf("create tentative availability: %w", err)
		}
		return rec, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load availability: %w", err)
	}

	rec.Tentative = true
	rec.TentativeAvailability = availability
	rec.TentativeReason = reason
	if err := s.db.WithContext(ctx).Save(rec).Error; err != nil {
		return nil, fmt.Errorf("update tentative availability: %w", err)
	}
	return rec, nil
}

// GetAvailability resolves the effective availability for one therapist-day.
// A tentative overlay wins over the regular value; a missing row reads as
// none.
func (s *Service) GetAvailability(ctx context.Context, therapistID, date string) (AvailabilityView, error) {
	view := AvailabilityView{TherapistID: therapistID, Date: date, Availability: models.AvailabilityNone}
	if err := validateKey(therapistID, date); err != nil {
		return view, err
	}

	rec, err := s.availabilityRow(ctx, therapistID, date)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return view, nil
	}
	if err != nil {
		return view, fmt.Errorf("load availability: %w", err)
	}

	if rec.Tentative {
		view.Availability = rec.TentativeAvailability
		view.Tentative = true
		view.Reason = rec.TentativeReason
		return view, nil
	}

	view.Availability = rec.Availability
	return view, nil
}

// RemoveTentativeAvailability clears the overlay so reads revert to the
// regular value. Removing an overlay that does not exist is a no-op.
func (s *Service) RemoveTentativeAvailability(ctx context.Context, therapistID, date string) error {
	if err := validateKey(therapistID, date); err != nil {
		return err
	}

	rec, err := s.availabilityRow(ctx, therapistID, date)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load availability: %w", err)
	}

	rec.Tentative = false
	rec.TentativeAvailability = ""
	rec.TentativeReason = ""
	if err := s.db.WithContext(ctx).Save(rec).Error; err != nil {
		return fmt.Errorf("clear tentative availability: %w", err)
	}
	return nil
}

// CreateLeave persists the leave record and cascades: every scheduled or
// rescheduled appointment of the therapist inside the inclusive interval is
// cancelled and the affected patient notified. The cascade is best-effort
// sequential; a failure on one appointment never aborts the rest, and the
// leave record persists even if part of the cascade fails.
func (s *Service) CreateLeave(ctx context.Context, therapistID, startDate, endDate, reason string) (*models.LeaveRecord, int, error) {
	if strings.TrimSpace(therapistID) == "" {
		return nil, 0, validationError("therapist id is required")
	}
	if !utils.IsCalendarDate(startDate) || !utils.IsCalendarDate(endDate) {
		return nil, 0, validationError("start and end dates must be in YYYY-MM-DD format")
	}
	if startDate > endDate {
		return nil, 0, validationError("start date must not be after end date")
	}

	leave := &models.LeaveRecord{
		TherapistID: therapistID,
		StartDate:   startDate,
		EndDate:     endDate,
		Reason:      reason,
	}
	if err := s.db.WithContext(ctx).Create(leave).Error; err != nil {
		return nil, 0, fmt.Errorf("create leave: %w", err)
	}

	var affected []models.Appointment
	err := s.db.WithContext(ctx).
		Where("therapist_id = ? AND status IN ? AND date BETWEEN ? AND ?",
			therapistID,
			[]models.AppointmentStatus{models.StatusScheduled, models.StatusRescheduled},
			startDate, endDate).
		Find(&affected).Error
	if err != nil {
		return leave, 0, fmt.Errorf("load appointments for leave cascade: %w", err)
	}

	leaveReason := reason
	if leaveReason == "" {
		leaveReason = "therapist leave"
	}

	cancelled := 0
	for i := range affected {
		appt := &affected[i]
		appt.Status = models.StatusCancelled
		if err := s.db.WithContext(ctx).Save(appt).Error; err != nil {
			log.Printf("leave cascade: failed to cancel appointment %s: %v", appt.ID, err)
			continue
		}
		cancelled++
		s.notifyPatient(ctx, appt, "Appointment cancelled",
			fmt.Sprintf("Your appointment on %s (%s) was cancelled because your therapist is on leave: %s.",
				appt.Date, appt.TimeSlot, leaveReason))
	}

	return leave, cancelled, nil
}

// ListLeaves returns all leave records for the therapist, newest first.
func (s *Service) ListLeaves(ctx context.Context, therapistID string) ([]models.LeaveRecord, error) {
	if strings.TrimSpace(therapistID) == "" {
		return nil, validationError("therapist id is required")
	}
	var leaves []models.LeaveRecord
	err := s.db.WithContext(ctx).
		Where("therapist_id = ?", therapistID).
		Order("start_date desc").
		Find(&leaves).Error
	if err != nil {
		return nil, fmt.Errorf("list leaves: %w", err)
	}
	return leaves, nil
}

// BookAppointment creates an appointment with status scheduled. The slot must
// come from the fixed catalog; its availability type is derived from the
// slot's block.
func (s *Service) BookAppointment(ctx context.Context, patientID, therapistID, date, timeSlot, paymentID string) (*models.Appointment, error) {
	if strings.TrimSpace(patientID) == "" {
		return nil, validationError("patient id is required")
	}
	if err := validateKey(therapistID, date); err != nil {
		return nil, err
	}
	if !KnownSlot(timeSlot) {
		return nil, validationError("unknown time slot: " + timeSlot)
	}

	appt := &models.Appointment{
		PatientID:        patientID,
		TherapistID:      therapistID,
		Date:             date,
		TimeSlot:         timeSlot,
		AvailabilityType: slotBlock(timeSlot),
		Status:           models.StatusScheduled,
		PaymentID:        paymentID,
	}
	if err := s.db.WithContext(ctx).Create(appt).Error; err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	return appt, nil
}

// ListAppointments returns all appointments for a therapist, any status.
func (s *Service) ListAppointments(ctx context.Context, therapistID string) ([]models.Appointment, error) {
	if strings.TrimSpace(therapistID) == "" {
		return nil, validationError("therapist id is required")
	}
	var appts []models.Appointment
	err := s.db.WithContext(ctx).
		Where("therapist_id = ?", therapistID).
		Order("date asc, time_slot asc").
		Find(&appts).Error
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}

// UpcomingAppointments returns the therapist's confirmed upcoming list: only
// paid appointments (payment id set) that are still scheduled or rescheduled.
func (s *Service) UpcomingAppointments(ctx context.Context, therapistID string) ([]models.Appointment, error) {
	if strings.TrimSpace(therapistID) == "" {
		return nil, validationError("therapist id is required")
	}
	var appts []models.Appointment
	err := s.db.WithContext(ctx).
		Where("therapist_id = ? AND payment_id <> '' AND status IN ?",
			therapistID,
			[]models.AppointmentStatus{models.StatusScheduled, models.StatusRescheduled}).
		Order("date asc, time_slot asc").
		Find(&appts).Error
	if err != nil {
		return nil, fmt.Errorf("list upcoming appointments: %w", err)
	}
	return appts, nil
}

// UpdateStatus sets an appointment's status without checking the transition.
// Nothing prevents re-cancelling a cancelled appointment; the state machine
// is documented but deliberately not enforced at this layer.
func (s *Service) UpdateStatus(ctx context.Context, appointmentID string, status models.AppointmentStatus) (*models.Appointment, error) {
	if !models.ValidStatus(status) {
		return nil, validationError("unknown appointment status: " + string(status))
	}

	var appt models.Appointment
	err := s.db.WithContext(ctx).First(&appt, "id = ?", appointmentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	appt.Status = status
	if err := s.db.WithContext(ctx).Save(&appt).Error; err != nil {
		return nil, fmt.Errorf("update appointment status: %w", err)
	}
	return &appt, nil
}

// CancelAppointment cancels a single appointment by id and notifies the
// patient.
func (s *Service) CancelAppointment(ctx context.Context, appointmentID, reason string) (*models.Appointment, error) {
	appt, err := s.UpdateStatus(ctx, appointmentID, models.StatusCancelled)
	if err != nil {
		return nil, err
	}
	body := fmt.Sprintf("Your appointment on %s (%s) has been cancelled.", appt.Date, appt.TimeSlot)
	if reason != "" {
		body += " Reason: " + reason + "."
	}
	s.notifyPatient(ctx, appt, "Appointment cancelled", body)
	return appt, nil
}

// CompleteAppointment marks an appointment completed.
func (s *Service) CompleteAppointment(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	return s.UpdateStatus(ctx, appointmentID, models.StatusCompleted)
}

// CancelCriteria selects a subset of one day's appointments. TimeSlots takes
// priority over AvailabilityType; with neither set the whole day matches.
type CancelCriteria struct {
	TherapistID      string
	Date             string
	AvailabilityType models.Availability
	TimeSlots        []string
	Reason           string
	Reschedule       bool
}

// CancelResult reports the outcome of a criteria-based cancellation. A zero
// Affected count is a soft outcome, not an error; Message distinguishes an
// empty day from a filter that matched nothing.
type CancelResult struct {
	Affected int    `json:"affected"`
	Message  string `json:"message"`
}

// CancelByCriteria cancels (or marks for reschedule) every active appointment
// on one therapist-day that matches the criteria, notifying each affected
// patient. Notification failures are isolated per appointment.
func (s *Service) CancelByCriteria(ctx context.Context, crit CancelCriteria) (CancelResult, error) {
	if err := validateKey(crit.TherapistID, crit.Date); err != nil {
		return CancelResult{}, err
	}
	if crit.AvailabilityType != "" && !models.ValidAvailability(crit.AvailabilityType) {
		return CancelResult{}, validationError("unknown availability type: " + string(crit.AvailabilityType))
	}
	for _, slot := range crit.TimeSlots {
		if !KnownSlot(slot) {
			return CancelResult{}, validationError("unknown time slot: " + slot)
		}
	}

	var dayAppts []models.Appointment
	err := s.db.WithContext(ctx).
		Where("therapist_id = ? AND date = ?", crit.TherapistID, crit.Date).
		Find(&dayAppts).Error
	if err != nil {
		return CancelResult{}, fmt.Errorf("load appointments: %w", err)
	}

	if len(dayAppts) == 0 {
		return CancelResult{Affected: 0, Message: "No appointments scheduled on this date"}, nil
	}

	matched := narrow(dayAppts, crit)

	active := matched[:0:0]
	for _, appt := range matched {
		if appt.Status == models.StatusScheduled || appt.Status == models.StatusRescheduled {
			active = append(active, appt)
		}
	}

	if len(active) == 0 {
		return CancelResult{Affected: 0, Message: "No appointments match the selected criteria"}, nil
	}

	verb := "cancelled"
	newStatus := models.StatusCancelled
	subject := "Appointment cancelled"
	if crit.Reschedule {
		verb = "marked for reschedule"
		newStatus = models.StatusRescheduled
		subject = "Appointment rescheduled"
	}

	affected := 0
	for i := range active {
		appt := &active[i]
		appt.Status = newStatus
		if err := s.db.WithContext(ctx).Save(appt).Error; err != nil {
			log.Printf("criteria cancellation: failed to update appointment %s: %v", appt.ID, err)
			continue
		}
		affected++

		body := fmt.Sprintf("Your appointment on %s (%s) has been %s.", appt.Date, appt.TimeSlot, verb)
		if crit.Reason != "" {
			body += " Reason: " + crit.Reason + "."
		}
		if crit.Reschedule {
			body += " You will be contacted with a new slot."
		}
		s.notifyPatient(ctx, appt, subject, body)
	}

	return CancelResult{
		Affected: affected,
		Message:  fmt.Sprintf("%d appointment(s) %s", affected, verb),
	}, nil
}

// narrow applies the criteria precedence: an explicit slot list wins, then
// the availability type, then the whole day.
func narrow(appts []models.Appointment, crit CancelCriteria) []models.Appointment {
	if len(crit.TimeSlots) > 0 {
		slots := make(map[string]struct{}, len(crit.TimeSlots))
		for _, s := range crit.TimeSlots {
			slots[s] = struct{}{}
		}
		out := appts[:0:0]
		for _, a := range appts {
			if _, ok := slots[a.TimeSlot]; ok {
				out = append(out, a)
			}
		}
		return out
	}

	if crit.AvailabilityType != "" {
		out := appts[:0:0]
		for _, a := range appts {
			if a.AvailabilityType == crit.AvailabilityType {
				out = append(out, a)
			}
		}
		return out
	}

	return appts
}

// notifyPatient delivers a message to the appointment's patient. Delivery is
// fire-and-forget: lookup and send failures are logged and swallowed so one
// bad address never aborts a batch.
func (s *Service) notifyPatient(ctx context.Context, appt *models.Appointment, subject, body string) {
	var patient models.User
	if err := s.db.WithContext(ctx).First(&patient, "id = ?", appt.PatientID).Error; err != nil {
		log.Printf("notify: failed to load patient %s for appointment %s: %v", appt.PatientID, appt.ID, err)
		return
	}
	if err := s.notifier.Send(ctx, patient.Email, subject, body); err != nil {
		log.Printf("notify: failed to send to %s for appointment %s: %v", patient.Email, appt.ID, err)
	}
}
