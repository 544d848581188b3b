package slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts.UTC()
}

func busyRange(t *testing.T, start, end string) BusyInterval {
	t.Helper()
	return BusyInterval{Start: mustTime(t, start), End: mustTime(t, end)}
}

func TestParseOffset(t *testing.T) {
	tests := []struct {
		name        string
		offset      string
		wantSeconds int
		wantErr     bool
	}{
		{name: "empty means UTC", offset: "", wantSeconds: 0},
		{name: "zulu", offset: "Z", wantSeconds: 0},
		{name: "utc word", offset: "UTC", wantSeconds: 0},
		{name: "negative hours", offset: "-07:00", wantSeconds: -7 * 3600},
		{name: "positive half hour", offset: "+05:30", wantSeconds: 5*3600 + 30*60},
		{name: "hours only", offset: "+2", wantSeconds: 2 * 3600},
		{name: "garbage", offset: "pacific", wantErr: true},
		{name: "out of range", offset: "+25:00", wantErr: true},
		{name: "negative minute component", offset: "+05:-30", wantErr: true},
		{name: "double sign", offset: "--07", wantErr: true},
		{name: "signed hour after sign", offset: "+-07:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := ParseOffset(tt.offset)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			_, seconds := time.Now().In(loc).Zone()
			assert.Equal(t, tt.wantSeconds, seconds)
		})
	}
}

func TestComputeFreeSlotsEmptyBusy(t *testing.T) {
	spec := DefaultSpec([]string{"2025-07-25"}, "-07:00")

	free, err := ComputeFreeSlots(nil, spec)
	require.NoError(t, err)

	// 9-18 workday with 30 minute slots yields exactly 18 slots.
	require.Len(t, free, 18)
	assert.Equal(t, mustTime(t, "2025-07-25T09:00:00-07:00"), free[0].Start)
	assert.Equal(t, mustTime(t, "2025-07-25T17:30:00-07:00"), free[17].Start)
	for _, s := range free {
		assert.Equal(t, 30*time.Minute, s.End.Sub(s.Start))
	}
}

func TestComputeFreeSlotsFullDayBusy(t *testing.T) {
	spec := DefaultSpec([]string{"2025-07-25"}, "-07:00")
	busy := []BusyInterval{
		busyRange(t, "2025-07-25T09:00:00-07:00", "2025-07-25T18:00:00-07:00"),
	}

	free, err := ComputeFreeSlots(busy, spec)
	require.NoError(t, err)
	assert.Empty(t, free)
}

func TestComputeFreeSlotsBufferScenario(t *testing.T) {
	// Busy 14:00-14:30 with a 5 minute buffer excludes the adjacent
	// 13:30-14:00 and 14:30-15:00 slots in addition to 14:00-14:30.
	spec := DefaultSpec([]string{"2025-07-25"}, "-07:00")
	busy := []BusyInterval{
		busyRange(t, "2025-07-25T14:00:00-07:00", "2025-07-25T14:30:00-07:00"),
	}

	free, err := ComputeFreeSlots(busy, spec)
	require.NoError(t, err)
	require.Len(t, free, 15)

	excluded := map[time.Time]bool{
		mustTime(t, "2025-07-25T13:30:00-07:00"): true,
		mustTime(t, "2025-07-25T14:00:00-07:00"): true,
		mustTime(t, "2025-07-25T14:30:00-07:00"): true,
	}
	for _, s := range free {
		assert.Falsef(t, excluded[s.Start], "slot starting %v should be excluded", s.Start)
	}
}

func TestComputeFreeSlotsBufferBoundary(t *testing.T) {
	// A slot whose gap to the busy interval equals the buffer exactly
	// stays free; a smaller gap conflicts.
	spec := Spec{
		Dates:             []string{"2025-07-25"},
		Offset:            "",
		WorkdayStart:      9,
		WorkdayEnd:        12,
		SlotLengthMinutes: 30,
		BufferMinutes:     5,
	}

	tests := []struct {
		name      string
		busyStart string
		wantFree  bool
	}{
		{name: "gap equals buffer", busyStart: "2025-07-25T10:05:00Z", wantFree: true},
		{name: "gap below buffer", busyStart: "2025-07-25T10:04:00Z", wantFree: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			busy := []BusyInterval{
				busyRange(t, tt.busyStart, "2025-07-25T11:00:00Z"),
			}
			free, err := ComputeFreeSlots(busy, spec)
			require.NoError(t, err)

			found := false
			for _, s := range free {
				if s.Start.Equal(mustTime(t, "2025-07-25T09:30:00Z")) {
					found = true
				}
			}
			assert.Equal(t, tt.wantFree, found)
		})
	}
}

func TestComputeFreeSlotsDeterministic(t *testing.T) {
	spec := DefaultSpec([]string{"2025-07-25"}, "-07:00")
	busy := []BusyInterval{
		busyRange(t, "2025-07-25T10:00:00-07:00", "2025-07-25T11:00:00-07:00"),
		busyRange(t, "2025-07-25T15:00:00-07:00", "2025-07-25T15:30:00-07:00"),
		busyRange(t, "2025-07-25T09:30:00-07:00", "2025-07-25T10:30:00-07:00"),
	}
	reversed := []BusyInterval{busy[2], busy[1], busy[0]}

	a, err := ComputeFreeSlots(busy, spec)
	require.NoError(t, err)
	b, err := ComputeFreeSlots(reversed, spec)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestComputeFreeSlotsSkipsMalformedDates(t *testing.T) {
	spec := DefaultSpec([]string{"not-a-date", "2025-07-25", "2025-13-40"}, "-07:00")

	free, err := ComputeFreeSlots(nil, spec)
	require.NoError(t, err)
	// Only the valid date contributes slots.
	assert.Len(t, free, 18)
}

func TestComputeFreeSlotsBusyOutsideDay(t *testing.T) {
	spec := DefaultSpec([]string{"2025-07-25"}, "-07:00")
	busy := []BusyInterval{
		busyRange(t, "2025-07-24T10:00:00-07:00", "2025-07-24T11:00:00-07:00"),
		busyRange(t, "2025-07-25T20:00:00-07:00", "2025-07-25T21:00:00-07:00"),
	}

	free, err := ComputeFreeSlots(busy, spec)
	require.NoError(t, err)
	assert.Len(t, free, 18)
}

func TestComputeFreeSlotsNoPartialTrailingSlot(t *testing.T) {
	spec := Spec{
		Dates:             []string{"2025-07-25"},
		WorkdayStart:      9,
		WorkdayEnd:        10,
		SlotLengthMinutes: 45,
	}

	free, err := ComputeFreeSlots(nil, spec)
	require.NoError(t, err)
	require.Len(t, free, 1)
	assert.Equal(t, mustTime(t, "2025-07-25T09:00:00Z"), free[0].Start)
	assert.Equal(t, mustTime(t, "2025-07-25T09:45:00Z"), free[0].End)
}

func TestComputeFreeSlotsIgnoresInvertedIntervals(t *testing.T) {
	spec := DefaultSpec([]string{"2025-07-25"}, "")
	busy := []BusyInterval{
		{Start: mustTime(t, "2025-07-25T11:00:00Z"), End: mustTime(t, "2025-07-25T10:00:00Z")},
	}

	free, err := ComputeFreeSlots(busy, spec)
	require.NoError(t, err)
	assert.Len(t, free, 18)
}

func TestComputeFreeSlotsInvalidSpec(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
	}{
		{name: "inverted workday", spec: Spec{Dates: []string{"2025-07-25"}, WorkdayStart: 18, WorkdayEnd: 9, SlotLengthMinutes: 30}},
		{name: "zero slot length", spec: Spec{Dates: []string{"2025-07-25"}, WorkdayStart: 9, WorkdayEnd: 18}},
		{name: "negative buffer", spec: Spec{Dates: []string{"2025-07-25"}, WorkdayStart: 9, WorkdayEnd: 18, SlotLengthMinutes: 30, BufferMinutes: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeFreeSlots(nil, tt.spec)
			assert.Error(t, err)
		})
	}
}

func TestGapModeAgreesWithEnumerativeMode(t *testing.T) {
	tests := []struct {
		name string
		busy []BusyInterval
	}{
		{name: "no busy intervals", busy: nil},
		{
			name: "single interval",
			busy: []BusyInterval{
				busyRange(t, "2025-07-25T14:00:00-07:00", "2025-07-25T14:30:00-07:00"),
			},
		},
		{
			name: "overlapping out of order",
			busy: []BusyInterval{
				busyRange(t, "2025-07-25T15:00:00-07:00", "2025-07-25T16:00:00-07:00"),
				busyRange(t, "2025-07-25T09:00:00-07:00", "2025-07-25T09:45:00-07:00"),
				busyRange(t, "2025-07-25T15:30:00-07:00", "2025-07-25T16:30:00-07:00"),
			},
		},
		{
			name: "interval straddling day start",
			busy: []BusyInterval{
				busyRange(t, "2025-07-25T08:00:00-07:00", "2025-07-25T09:20:00-07:00"),
			},
		},
		{
			name: "full day cover",
			busy: []BusyInterval{
				busyRange(t, "2025-07-25T08:00:00-07:00", "2025-07-25T19:00:00-07:00"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := DefaultSpec([]string{"2025-07-25", "2025-07-28"}, "-07:00")

			enumerated, err := ComputeFreeSlots(tt.busy, spec)
			require.NoError(t, err)
			gapped, err := ComputeFreeSlotsGaps(tt.busy, spec)
			require.NoError(t, err)

			assert.Equal(t, enumerated, gapped)
		})
	}
}

func TestGapModeMultipleDatesSorted(t *testing.T) {
	// Dates given out of order still produce output sorted by start.
	spec := DefaultSpec([]string{"2025-07-28", "2025-07-25"}, "-07:00")

	free, err := ComputeFreeSlotsGaps(nil, spec)
	require.NoError(t, err)
	require.Len(t, free, 36)
	for i := 1; i < len(free); i++ {
		assert.True(t, free[i].Start.After(free[i-1].Start))
	}
}

func TestFreeSlotLabel(t *testing.T) {
	loc, err := ParseOffset("-07:00")
	require.NoError(t, err)

	s := FreeSlot{
		Start: mustTime(t, "2025-07-25T09:00:00-07:00"),
		End:   mustTime(t, "2025-07-25T09:30:00-07:00"),
	}
	assert.Equal(t, "9:00 AM - 9:30 AM", s.Label(loc))
	assert.Equal(t, "2025-07-25", s.Date(loc))
}

func TestFormatListGroupsByDate(t *testing.T) {
	loc, err := ParseOffset("-07:00")
	require.NoError(t, err)

	free := []FreeSlot{
		{Start: mustTime(t, "2025-07-25T09:00:00-07:00"), End: mustTime(t, "2025-07-25T09:30:00-07:00")},
		{Start: mustTime(t, "2025-07-25T10:00:00-07:00"), End: mustTime(t, "2025-07-25T10:30:00-07:00")},
		{Start: mustTime(t, "2025-07-28T09:00:00-07:00"), End: mustTime(t, "2025-07-28T09:30:00-07:00")},
	}

	out := FormatList(free, loc)
	assert.Contains(t, out, "Friday, July 25:")
	assert.Contains(t, out, "Monday, July 28:")
	assert.Contains(t, out, "  - 9:00 AM - 9:30 AM")
	assert.Contains(t, out, "  - 10:00 AM - 10:30 AM")
}
