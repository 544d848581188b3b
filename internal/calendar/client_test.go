package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	calendar "google.golang.org/api/calendar/v3"

	"github.com/teemow/meetsched/internal/slots"
)

func TestDateSpan(t *testing.T) {
	tests := []struct {
		name    string
		dates   []string
		offset  string
		wantMin string
		wantMax string
		wantOK  bool
	}{
		{
			name:    "single date utc",
			dates:   []string{"2025-07-25"},
			offset:  "",
			wantMin: "2025-07-25T00:00:00Z",
			wantMax: "2025-07-26T00:00:00Z",
			wantOK:  true,
		},
		{
			name:    "single date with offset",
			dates:   []string{"2025-07-25"},
			offset:  "-07:00",
			wantMin: "2025-07-25T07:00:00Z",
			wantMax: "2025-07-26T07:00:00Z",
			wantOK:  true,
		},
		{
			name:    "multiple dates span both",
			dates:   []string{"2025-07-28", "2025-07-25"},
			offset:  "",
			wantMin: "2025-07-25T00:00:00Z",
			wantMax: "2025-07-29T00:00:00Z",
			wantOK:  true,
		},
		{
			name:    "malformed dates skipped",
			dates:   []string{"garbage", "2025-07-25"},
			offset:  "",
			wantMin: "2025-07-25T00:00:00Z",
			wantMax: "2025-07-26T00:00:00Z",
			wantOK:  true,
		},
		{
			name:   "all malformed",
			dates:  []string{"garbage", "2025-13-40"},
			offset: "",
			wantOK: false,
		},
		{
			name:   "empty input",
			dates:  nil,
			offset: "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timeMin, timeMax, ok := dateSpan(tt.dates, tt.offset)
			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}

			wantMin, err := time.Parse(time.RFC3339, tt.wantMin)
			require.NoError(t, err)
			wantMax, err := time.Parse(time.RFC3339, tt.wantMax)
			require.NoError(t, err)
			assert.True(t, timeMin.Equal(wantMin), "timeMin = %v, want %v", timeMin, wantMin)
			assert.True(t, timeMax.Equal(wantMax), "timeMax = %v, want %v", timeMax, wantMax)
		})
	}
}

func TestBusyFromResponse(t *testing.T) {
	res := &calendar.FreeBusyResponse{
		Calendars: map[string]calendar.FreeBusyCalendar{
			"primary": {
				Busy: []*calendar.TimePeriod{
					{Start: "2025-07-25T14:00:00-07:00", End: "2025-07-25T14:30:00-07:00"},
					{Start: "not-a-time", End: "2025-07-25T15:00:00-07:00"},
				},
			},
			"team": {
				Busy: []*calendar.TimePeriod{
					{Start: "2025-07-25T10:00:00Z", End: "2025-07-25T11:00:00Z"},
				},
			},
		},
	}

	busy := busyFromResponse(res)
	require.Len(t, busy, 2)

	// All instants are UTC regardless of the wire offset.
	for _, b := range busy {
		assert.Equal(t, time.UTC, b.Start.Location())
		assert.Equal(t, time.UTC, b.End.Location())
	}

	want := slots.BusyInterval{
		Start: time.Date(2025, 7, 25, 21, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 7, 25, 21, 30, 0, 0, time.UTC),
	}
	assert.Contains(t, busy, want)
}

func TestBusyFromResponseNil(t *testing.T) {
	assert.Nil(t, busyFromResponse(nil))
	assert.Nil(t, busyFromResponse(&calendar.FreeBusyResponse{}))
}

func TestNewClientForAccountWithProviderNilProvider(t *testing.T) {
	_, err := NewClientForAccountWithProvider(context.Background(), "default", nil, nil)
	assert.ErrorContains(t, err, "token provider cannot be nil")
}
