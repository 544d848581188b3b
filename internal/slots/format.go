package slots

import (
	"strings"
	"time"
)

// Label renders a free slot as a human-presentable time range in the
// given location, e.g. "9:00 AM - 9:30 AM".
func (s FreeSlot) Label(loc *time.Location) string {
	return s.Start.In(loc).Format("3:04 PM") + " - " + s.End.In(loc).Format("3:04 PM")
}

// Date returns the calendar date of the slot in the given location.
func (s FreeSlot) Date(loc *time.Location) string {
	return s.Start.In(loc).Format(DateFormat)
}

// FormatList renders free slots grouped by date, one slot per line, for
// inclusion in prompts and reply bodies.
func FormatList(free []FreeSlot, loc *time.Location) string {
	var b strings.Builder
	lastDate := ""
	for _, s := range free {
		date := s.Start.In(loc).Format("Monday, January 2")
		if date != lastDate {
			if lastDate != "" {
				b.WriteString("\n")
			}
			b.WriteString(date)
			b.WriteString(":\n")
			lastDate = date
		}
		b.WriteString("  - ")
		b.WriteString(s.Label(loc))
		b.WriteString("\n")
	}
	return b.String()
}
