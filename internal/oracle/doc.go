// Package oracle classifies inbound message text for meeting intent and
// ranks candidate meeting slots, using the Gemini API as the underlying
// model.
//
// The package owns the boundary between free-form model output and the
// pipeline's normalized view: two response shapes are recognized (the
// legacy bare array of dates and the structured MeetingRequestContext
// object) and both are resolved here, so callers only ever see one
// shape. Malformed or non-JSON model output fails the call with
// ErrMalformedResponse; the pipeline decides whether to retry or treat
// the message as not meeting-related. The oracle never guesses.
package oracle
