package models

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusScheduled   AppointmentStatus = "scheduled"
	StatusRescheduled AppointmentStatus = "rescheduled"
	StatusCancelled   AppointmentStatus = "cancelled"
	StatusCompleted   AppointmentStatus = "completed"
)

// ValidStatus reports whether s is a known appointment status.
func ValidStatus(s AppointmentStatus) bool {
	switch s {
	case StatusScheduled, StatusRescheduled, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Appointment represents one booked session between a patient and a
// therapist. An appointment with PaymentID set is confirmed/paid and is the
// only kind surfaced in the therapist's upcoming list.
type Appointment struct {
	BaseModel
	PatientID        string            `gorm:"size:36;index" json:"patientId"`
	TherapistID      string            `gorm:"size:36;index" json:"therapistId"`
	Date             string            `gorm:"size:10;index;not null" json:"date"`
	TimeSlot         string            `gorm:"size:20;not null" json:"timeSlot"`
	AvailabilityType Availability      `gorm:"size:20;not null" json:"availabilityType"`
	Status           AppointmentStatus `gorm:"size:20;default:'scheduled'" json:"status"`
	PaymentID        string            `gorm:"size:64" json:"paymentId,omitempty"`

	// Relations
	Patient   User `gorm:"foreignKey:PatientID" json:"-"`
	Therapist User `gorm:"foreignKey:TherapistID" json:"-"`
}
