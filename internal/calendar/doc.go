// Package calendar provides the Google Calendar-backed busy source for
// the scheduling pipeline.
//
// The client answers a single question: which intervals are busy on a
// set of calendar dates. It queries the freebusy API across one or more
// calendars, normalizes every interval to UTC, and leaves gap analysis
// to the slots package. No timezone ambiguity crosses this boundary:
// instants leave the package as UTC or not at all.
package calendar
