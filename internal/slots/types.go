package slots

import (
	"fmt"
	"time"
)

// DateFormat is the calendar-date layout used throughout the engine.
const DateFormat = "2006-01-02"

// BusyInterval represents a UTC time range during which the calendar
// owner is unavailable. Start must be before End; intervals are not
// assumed sorted or non-overlapping.
type BusyInterval struct {
	Start time.Time
	End   time.Time
}

// FreeSlot represents a bookable time range of exactly the requested
// slot length, fully inside one date's working window.
type FreeSlot struct {
	Start time.Time
	End   time.Time
}

// Spec holds the scheduling parameters for a free-slot computation.
type Spec struct {
	// Dates are calendar dates in "2006-01-02" form. Malformed entries
	// are skipped without failing the remaining dates.
	Dates []string

	// Offset is a fixed UTC offset such as "-07:00" or "+05:30".
	// An empty offset means UTC.
	Offset string

	// WorkdayStart and WorkdayEnd bound the working day in hours of the
	// requested offset. Start is inclusive, end is exclusive.
	WorkdayStart int
	WorkdayEnd   int

	// SlotLengthMinutes is the exact length of every emitted slot.
	SlotLengthMinutes int

	// BufferMinutes expands every busy interval on both ends before
	// overlap testing, to avoid back-to-back scheduling.
	BufferMinutes int
}

// DefaultSpec returns a Spec with the standard business-hour defaults
// (9-18 workday, 30 minute slots, 5 minute buffer) for the given dates.
func DefaultSpec(dates []string, offset string) Spec {
	return Spec{
		Dates:             dates,
		Offset:            offset,
		WorkdayStart:      9,
		WorkdayEnd:        18,
		SlotLengthMinutes: 30,
		BufferMinutes:     5,
	}
}

// Validate checks the spec parameters that apply to every date.
func (s Spec) Validate() error {
	if s.WorkdayStart < 0 || s.WorkdayEnd > 24 || s.WorkdayStart >= s.WorkdayEnd {
		return fmt.Errorf("invalid workday bounds %d-%d", s.WorkdayStart, s.WorkdayEnd)
	}
	if s.SlotLengthMinutes <= 0 {
		return fmt.Errorf("slot length must be positive, got %d", s.SlotLengthMinutes)
	}
	if s.BufferMinutes < 0 {
		return fmt.Errorf("buffer must not be negative, got %d", s.BufferMinutes)
	}
	return nil
}

// SlotLength returns the slot length as a duration.
func (s Spec) SlotLength() time.Duration {
	return time.Duration(s.SlotLengthMinutes) * time.Minute
}

// Buffer returns the conflict buffer as a duration.
func (s Spec) Buffer() time.Duration {
	return time.Duration(s.BufferMinutes) * time.Minute
}
