// Package slots computes conflict-free meeting slots from a set of busy
// calendar intervals and scheduling parameters.
//
// The engine is pure: it performs no I/O and owns no state. Callers
// supply UTC-normalized busy intervals (typically from the calendar
// freebusy API) plus a Spec describing dates, a fixed UTC offset,
// business-hour bounds, slot length and a conflict buffer. Two
// computation modes are provided:
//
//   - ComputeFreeSlots enumerates every fixed slot of the working day
//     and tests it against the buffer-expanded busy intervals.
//   - ComputeFreeSlotsGaps walks the sorted, merged busy intervals and
//     emits slots in the gaps between them.
//
// Both modes return identical results for well-formed input; the gap
// mode is preferred when busy intervals are sparse.
//
// Overlap testing is half-open: a slot [start, end) conflicts with a
// buffered interval [bStart, bEnd) iff start < bEnd && end > bStart.
// A slot whose gap to a busy interval equals the buffer exactly is
// therefore still free.
package slots
