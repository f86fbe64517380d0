package scheduling

import (
	"testing"

	"mindmirror-server/internal/models"
)

func TestDeriveAvailabilityType(t *testing.T) {
	tests := []struct {
		name  string
		slots []string
		want  models.Availability
	}{
		{
			name:  "pure morning selection",
			slots: []string{"09:00-10:00", "10:00-11:00"},
			want:  models.AvailabilityMorning,
		},
		{
			name:  "single evening slot",
			slots: []string{"14:00-15:00"},
			want:  models.AvailabilityEvening,
		},
		{
			name:  "mixed selection degrades to full day",
			slots: []string{"09:00-10:00", "11:00-12:00", "14:00-15:00"},
			want:  models.AvailabilityFullDay,
		},
		{
			name:  "all eight slots",
			slots: TimeSlots,
			want:  models.AvailabilityFullDay,
		},
		{
			name:  "boundary slot belongs to evening",
			slots: []string{"13:00-14:00"},
			want:  models.AvailabilityEvening,
		},
		{
			name:  "last morning slot",
			slots: []string{"12:00-13:00"},
			want:  models.AvailabilityMorning,
		},
		{
			name:  "duplicates do not fake a full day",
			slots: []string{"09:00-10:00", "09:00-10:00"},
			want:  models.AvailabilityMorning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeriveAvailabilityType(tt.slots)
			if err != nil {
				t.Fatalf("DeriveAvailabilityType(%v): %v", tt.slots, err)
			}
			if got != tt.want {
				t.Fatalf("DeriveAvailabilityType(%v) = %s, want %s", tt.slots, got, tt.want)
			}
		})
	}
}

func TestDeriveAvailabilityType_Errors(t *testing.T) {
	if _, err := DeriveAvailabilityType(nil); !IsValidation(err) {
		t.Fatalf("empty selection: err = %v, want ValidationError", err)
	}
	if _, err := DeriveAvailabilityType([]string{"08:00-09:00"}); !IsValidation(err) {
		t.Fatalf("off-catalog slot: err = %v, want ValidationError", err)
	}
}
