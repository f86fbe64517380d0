package models

// LeaveRecord is a therapist-declared unavailable date range. StartDate and
// EndDate are inclusive "2006-01-02" strings. Overlapping leaves for the same
// therapist may coexist; records are never updated or deleted.
type LeaveRecord struct {
	BaseModel
	TherapistID string `gorm:"size:36;index;not null" json:"therapistId"`
	StartDate   string `gorm:"size:10;not null" json:"startDate"`
	EndDate     string `gorm:"size:10;not null" json:"endDate"`
	Reason      string `gorm:"size:255" json:"reason,omitempty"`

	Therapist User `gorm:"foreignKey:TherapistID" json:"-"`
}

func (LeaveRecord) TableName() string {
	return "leave_records"
}

// Covers reports whether date falls inside the leave interval. Dates are
// normalized day strings, so lexicographic comparison is date comparison.
func (l *LeaveRecord) Covers(date string) bool {
	return l.StartDate <= date && date <= l.EndDate
}
