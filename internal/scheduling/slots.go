package scheduling

import (
	"mindmirror-server/internal/models"
)

// TimeSlots is the fixed bookable slot catalog. Slots starting before 13:00
// belong to the morning block, the rest to the evening block.
var TimeSlots = []string{
	"09:00-10:00",
	"10:00-11:00",
	"11:00-12:00",
	"12:00-13:00",
	"13:00-14:00",
	"14:00-15:00",
	"15:00-16:00",
	"16:00-17:00",
}

const eveningBoundary = "13:00"

// KnownSlot reports whether slot is in the catalog.
func KnownSlot(slot string) bool {
	for _, s := range TimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// slotBlock classifies one catalog slot by its start time.
func slotBlock(slot string) models.Availability {
	if slot[:len(eveningBoundary)] < eveningBoundary {
		return models.AvailabilityMorning
	}
	return models.AvailabilityEvening
}

// DeriveAvailabilityType classifies a slot selection. All eight slots give
// full_day, a purely pre-13:00 selection gives morning, a purely post-13:00
// selection gives evening, and a mixed selection degrades to full_day (the
// source platform's explicit rule, kept as-is).
func DeriveAvailabilityType(slots []string) (models.Availability, error) {
	if len(slots) == 0 {
		return "", validationError("at least one time slot is required")
	}

	seen := make(map[string]struct{}, len(slots))
	morning, evening := false, false
	for _, slot := range slots {
		if !KnownSlot(slot) {
			return "", validationError("unknown time slot: " + slot)
		}
		if _, dup := seen[slot]; dup {
			continue
		}
		seen[slot] = struct{}{}
		if slotBlock(slot) == models.AvailabilityMorning {
			morning = true
		} else {
			evening = true
		}
	}

	if len(seen) == len(TimeSlots) {
		return models.AvailabilityFullDay, nil
	}
	if morning && evening {
		return models.AvailabilityFullDay, nil
	}
	if morning {
		return models.AvailabilityMorning, nil
	}
	return models.AvailabilityEvening, nil
}
