package slots

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ParseOffset converts a fixed UTC offset string such as "-07:00",
// "+05:30" or "Z" into a time.Location. An empty string means UTC.
// Named zones with DST rules are intentionally not supported; callers
// that need wall-clock correctness across DST transitions must resolve
// the offset per date before calling the engine.
func ParseOffset(offset string) (*time.Location, error) {
	offset = strings.TrimSpace(offset)
	if offset == "" || offset == "Z" || strings.EqualFold(offset, "UTC") {
		return time.UTC, nil
	}

	sign := 1
	switch offset[0] {
	case '+':
		offset = offset[1:]
	case '-':
		sign = -1
		offset = offset[1:]
	}

	// The sign was consumed above; a '+' or '-' left in either
	// component would parse as a signed int and corrupt the offset.
	parts := strings.SplitN(offset, ":", 2)
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 14 {
		return nil, fmt.Errorf("invalid UTC offset %q", offset)
	}
	minutes := 0
	if len(parts) == 2 {
		minutes, err = strconv.Atoi(parts[1])
		if err != nil || minutes < 0 || minutes > 59 {
			return nil, fmt.Errorf("invalid UTC offset %q", offset)
		}
	}

	seconds := sign * (hours*3600 + minutes*60)
	name := fmt.Sprintf("UTC%+03d:%02d", sign*hours, minutes)
	return time.FixedZone(name, seconds), nil
}

// dayWindow returns the UTC working-day boundary [start, end) for a
// calendar date in the given location.
func dayWindow(date string, loc *time.Location, startHour, endHour int) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation(DateFormat, date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), startHour, 0, 0, 0, loc)
	end := time.Date(day.Year(), day.Month(), day.Day(), endHour, 0, 0, 0, loc)
	return start.UTC(), end.UTC(), nil
}

// buffered expands a busy interval by the spec's buffer on both ends.
func buffered(b BusyInterval, buffer time.Duration) BusyInterval {
	return BusyInterval{Start: b.Start.Add(-buffer), End: b.End.Add(buffer)}
}

// overlaps reports whether the half-open ranges [aStart, aEnd) and
// [bStart, bEnd) intersect.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// ComputeFreeSlots partitions each date's working day into contiguous
// slots of the spec's length and returns those that do not overlap any
// buffer-expanded busy interval. Busy interval order does not affect
// the result. Malformed dates in the spec are skipped; an error is
// returned only when the spec itself is invalid.
func ComputeFreeSlots(busy []BusyInterval, spec Spec) ([]FreeSlot, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	loc, err := ParseOffset(spec.Offset)
	if err != nil {
		return nil, err
	}

	expanded := make([]BusyInterval, 0, len(busy))
	for _, b := range busy {
		if !b.Start.Before(b.End) {
			continue
		}
		expanded = append(expanded, buffered(b, spec.Buffer()))
	}

	var free []FreeSlot
	for _, date := range spec.Dates {
		dayStart, dayEnd, err := dayWindow(date, loc, spec.WorkdayStart, spec.WorkdayEnd)
		if err != nil {
			continue
		}

		for start := dayStart; !start.Add(spec.SlotLength()).After(dayEnd); start = start.Add(spec.SlotLength()) {
			end := start.Add(spec.SlotLength())
			conflict := false
			for _, b := range expanded {
				if overlaps(start, end, b.Start, b.End) {
					conflict = true
					break
				}
			}
			if !conflict {
				free = append(free, FreeSlot{Start: start, End: end})
			}
		}
	}

	sortSlots(free)
	return free, nil
}

// ComputeFreeSlotsGaps computes the same free slots as ComputeFreeSlots
// by walking the sorted, merged busy intervals of each day and emitting
// slots in the gaps between them. This avoids testing every slot start
// against every interval and is the preferred mode when busy intervals
// are sparse relative to the day.
func ComputeFreeSlotsGaps(busy []BusyInterval, spec Spec) ([]FreeSlot, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	loc, err := ParseOffset(spec.Offset)
	if err != nil {
		return nil, err
	}

	var free []FreeSlot
	for _, date := range spec.Dates {
		dayStart, dayEnd, err := dayWindow(date, loc, spec.WorkdayStart, spec.WorkdayEnd)
		if err != nil {
			continue
		}

		merged := mergeForDay(busy, spec.Buffer(), dayStart, dayEnd)

		cursor := dayStart
		for _, b := range merged {
			free = appendGapSlots(free, dayStart, cursor, b.Start, spec.SlotLength())
			if b.End.After(cursor) {
				cursor = b.End
			}
		}
		free = appendGapSlots(free, dayStart, cursor, dayEnd, spec.SlotLength())
	}

	sortSlots(free)
	return free, nil
}

// appendGapSlots emits slots covering [from, to), aligned to slot-length
// boundaries counted from the day start so both computation modes agree.
func appendGapSlots(free []FreeSlot, dayStart, from, to time.Time, slotLen time.Duration) []FreeSlot {
	if !from.Before(to) {
		return free
	}

	// Snap the cursor up to the next slot boundary.
	elapsed := from.Sub(dayStart)
	if rem := elapsed % slotLen; rem != 0 {
		from = from.Add(slotLen - rem)
	}

	for ; !from.Add(slotLen).After(to); from = from.Add(slotLen) {
		free = append(free, FreeSlot{Start: from, End: from.Add(slotLen)})
	}
	return free
}

// mergeForDay buffers, clips and merges the busy intervals that touch
// the working-day window, returning them sorted by start.
func mergeForDay(busy []BusyInterval, buffer time.Duration, dayStart, dayEnd time.Time) []BusyInterval {
	var clipped []BusyInterval
	for _, b := range busy {
		if !b.Start.Before(b.End) {
			continue
		}
		e := buffered(b, buffer)
		if !e.Start.Before(dayEnd) || !e.End.After(dayStart) {
			continue
		}
		if e.Start.Before(dayStart) {
			e.Start = dayStart
		}
		if e.End.After(dayEnd) {
			e.End = dayEnd
		}
		clipped = append(clipped, e)
	}

	sort.Slice(clipped, func(i, j int) bool {
		if clipped[i].Start.Equal(clipped[j].Start) {
			return clipped[i].End.Before(clipped[j].End)
		}
		return clipped[i].Start.Before(clipped[j].Start)
	})

	var merged []BusyInterval
	for _, b := range clipped {
		if n := len(merged); n > 0 && !b.Start.After(merged[n-1].End) {
			if b.End.After(merged[n-1].End) {
				merged[n-1].End = b.End
			}
			continue
		}
		merged = append(merged, b)
	}
	return merged
}

func sortSlots(free []FreeSlot) {
	sort.Slice(free, func(i, j int) bool {
		return free[i].Start.Before(free[j].Start)
	})
}
