package oracle

// Intent classifies what the sender of a meeting-related message wants.
type Intent string

const (
	IntentPropose    Intent = "propose"
	IntentConfirm    Intent = "confirm"
	IntentCancel     Intent = "cancel"
	IntentReschedule Intent = "reschedule"
	IntentVague      Intent = "vague"
)

// CandidateSlot is a concrete slot recommendation produced by the model.
type CandidateSlot struct {
	Date     string `json:"date"`
	TimeSlot string `json:"time_slot"`
	Timezone string `json:"timezone,omitempty"`
}

// MeetingRequestContext is the structured classification of a message.
// A nil context means the message is not meeting-related.
type MeetingRequestContext struct {
	PreferredDates []string        `json:"preferred_dates,omitempty"`
	PreferredDays  []string        `json:"preferred_days,omitempty"`
	PreferredTime  string          `json:"preferred_time,omitempty"`
	CandidateSlots []CandidateSlot `json:"candidate_slots,omitempty"`
	Intent         Intent          `json:"intent,omitempty"`
	MeetingType    string          `json:"meeting_type,omitempty"`
	Notes          string          `json:"notes,omitempty"`
}

// CandidateDates returns the deduplicated working set of calendar dates
// for slot computation, preserving first-seen order. Preferred dates
// come first, followed by dates referenced by candidate slots.
func (c *MeetingRequestContext) CandidateDates() []string {
	if c == nil {
		return nil
	}

	seen := make(map[string]bool)
	var dates []string
	add := func(d string) {
		if d != "" && !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}

	for _, d := range c.PreferredDates {
		add(d)
	}
	for _, s := range c.CandidateSlots {
		add(s.Date)
	}
	return dates
}

// Timezone returns the fixed UTC offset referenced by the candidate
// slots, or the empty string when the model did not state one.
func (c *MeetingRequestContext) Timezone() string {
	if c == nil {
		return ""
	}
	for _, s := range c.CandidateSlots {
		if s.Timezone != "" {
			return s.Timezone
		}
	}
	return ""
}

// IsEmpty reports whether the context carries no scheduling signal at
// all, which the pipeline treats the same as "not meeting-related".
func (c *MeetingRequestContext) IsEmpty() bool {
	return c == nil ||
		(len(c.PreferredDates) == 0 &&
			len(c.PreferredDays) == 0 &&
			len(c.CandidateSlots) == 0 &&
			c.PreferredTime == "" &&
			c.Intent == "")
}
