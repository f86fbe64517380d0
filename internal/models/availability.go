package models

// Availability classifies a therapist's openness for bookings on one date.
type Availability string

const (
	AvailabilityNone    Availability = "none"
	AvailabilityMorning Availability = "morning"
	AvailabilityEvening Availability = "evening"
	AvailabilityFullDay Availability = "full_day"
)

// ValidAvailability reports whether a is one of the known classifications.
func ValidAvailability(a Availability) bool {
	switch a {
	case AvailabilityNone, AvailabilityMorning, AvailabilityEvening, AvailabilityFullDay:
		return true
	}
	return false
}

// AvailabilityRecord holds one therapist's availability for one calendar day.
// The tentative overlay lives on the same row as the regular value; the two
// are independent fields and reads check the overlay first. Dates are stored
// as "2006-01-02" strings so the (therapist, date) key compares exactly.
type AvailabilityRecord struct {
	BaseModel
	TherapistID           string       `gorm:"size:36;not null;uniqueIndex:idx_therapist_date" json:"therapistId"`
	Date                  string       `gorm:"size:10;not null;uniqueIndex:idx_therapist_date" json:"date"`
	Availability          Availability `gorm:"size:20;default:'none'" json:"availability"`
	Tentative             bool         `gorm:"default:false" json:"tentative"`
	TentativeAvailability Availability `gorm:"size:20" json:"tentativeAvailability,omitempty"`
	TentativeReason       string       `gorm:"size:255" json:"tentativeReason,omitempty"`

	Therapist User `gorm:"foreignKey:TherapistID" json:"-"`
}

func (AvailabilityRecord) TableName() string {
	return "availability_records"
}
