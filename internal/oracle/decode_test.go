package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeClassification(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    *MeetingRequestContext
		wantNil bool
		wantErr bool
	}{
		{
			name:    "empty string is not meeting-related",
			raw:     "",
			wantNil: true,
		},
		{
			name:    "empty array is not meeting-related",
			raw:     "[]",
			wantNil: true,
		},
		{
			name:    "empty object is not meeting-related",
			raw:     "{}",
			wantNil: true,
		},
		{
			name: "legacy date list",
			raw:  `["2025-07-25", "2025-07-28"]`,
			want: &MeetingRequestContext{
				PreferredDates: []string{"2025-07-25", "2025-07-28"},
				Intent:         IntentVague,
			},
		},
		{
			name: "structured context",
			raw: `{
				"preferred_dates": ["2025-07-25"],
				"preferred_days": ["friday"],
				"preferred_time": "morning",
				"intent": "propose",
				"meeting_type": "sync call"
			}`,
			want: &MeetingRequestContext{
				PreferredDates: []string{"2025-07-25"},
				PreferredDays:  []string{"friday"},
				PreferredTime:  "morning",
				Intent:         IntentPropose,
				MeetingType:    "sync call",
			},
		},
		{
			name: "fenced json",
			raw:  "```json\n[\"2025-07-25\"]\n```",
			want: &MeetingRequestContext{
				PreferredDates: []string{"2025-07-25"},
				Intent:         IntentVague,
			},
		},
		{
			name:    "fenced empty array",
			raw:     "```\n[]\n```",
			wantNil: true,
		},
		{
			name:    "prose instead of json",
			raw:     "Sure, I can help with that!",
			wantErr: true,
		},
		{
			name:    "array of non-strings",
			raw:     `[{"date": "2025-07-25"}]`,
			wantErr: true,
		},
		{
			name:    "truncated object",
			raw:     `{"preferred_dates": ["2025-07-`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeClassification(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformedResponse)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCandidateDates(t *testing.T) {
	ctx := &MeetingRequestContext{
		PreferredDates: []string{"2025-07-25", "2025-07-28"},
		CandidateSlots: []CandidateSlot{
			{Date: "2025-07-25", TimeSlot: "9:00 AM - 9:30 AM"},
			{Date: "2025-07-29", TimeSlot: "2:00 PM - 2:30 PM"},
			{Date: ""},
		},
	}

	assert.Equal(t, []string{"2025-07-25", "2025-07-28", "2025-07-29"}, ctx.CandidateDates())
}

func TestCandidateDatesNilContext(t *testing.T) {
	var ctx *MeetingRequestContext
	assert.Nil(t, ctx.CandidateDates())
}

func TestTimezone(t *testing.T) {
	ctx := &MeetingRequestContext{
		CandidateSlots: []CandidateSlot{
			{Date: "2025-07-25"},
			{Date: "2025-07-28", Timezone: "-07:00"},
		},
	}
	assert.Equal(t, "-07:00", ctx.Timezone())

	var empty *MeetingRequestContext
	assert.Equal(t, "", empty.Timezone())
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, (*MeetingRequestContext)(nil).IsEmpty())
	assert.True(t, (&MeetingRequestContext{}).IsEmpty())
	assert.False(t, (&MeetingRequestContext{Intent: IntentCancel}).IsEmpty())
	assert.False(t, (&MeetingRequestContext{PreferredDays: []string{"friday"}}).IsEmpty())
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "no fence", raw: `["a"]`, want: `["a"]`},
		{name: "fence with language", raw: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "fence without language", raw: "```\n[]\n```", want: "[]"},
		{name: "surrounding whitespace", raw: "  \n```json\n[]\n```\n ", want: "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFence(tt.raw))
		})
	}
}
