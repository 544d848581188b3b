package pipeline

import (
	"context"
	"time"

	"github.com/teemow/meetsched/internal/gmail"
	"github.com/teemow/meetsched/internal/oracle"
	"github.com/teemow/meetsched/internal/slots"
)

// MessageSource lists, fetches and acknowledges inbound messages.
// Implemented by the gmail client; faked in tests.
type MessageSource interface {
	ListUnread(ctx context.Context, maxResults int64) ([]string, error)
	Get(ctx context.Context, id string) (*gmail.Message, error)
	MarkProcessed(ctx context.Context, id string, archive bool) error
}

// BusySource supplies UTC-normalized busy intervals for a set of
// calendar dates.
type BusySource interface {
	BusyIntervals(ctx context.Context, dates []string, offset string) ([]slots.BusyInterval, error)
}

// IntentOracle classifies message text for meeting intent and ranks
// candidate slots against the engine's free-slot constraint.
type IntentOracle interface {
	Classify(ctx context.Context, text string, today time.Time, offset string) (*oracle.MeetingRequestContext, error)
	Rank(ctx context.Context, text string, today time.Time, offset string, free []slots.FreeSlot) (*oracle.MeetingRequestContext, error)
}

// ReplySink composes and transmits the outbound reply. The controller
// treats it as a single fallible call.
type ReplySink interface {
	Reply(ctx context.Context, original *gmail.Message, body string) (string, error)
}

// Config holds the tunables of the pipeline controller.
type Config struct {
	// MaxResults bounds how many unread ids one poll considers.
	MaxResults int64

	// Offset is the default fixed UTC offset used for slot computation
	// when the oracle does not state one.
	Offset string

	// Workday bounds, slot length and buffer feed the slot engine.
	WorkdayStart      int
	WorkdayEnd        int
	SlotLengthMinutes int
	BufferMinutes     int

	// Archive also removes processed messages from the inbox.
	Archive bool

	// DryRun runs the full pipeline but suppresses the reply and
	// mark-processed side effects.
	DryRun bool

	// Now returns the current time; defaults to time.Now. Injectable
	// for tests.
	Now func() time.Time
}

// DefaultConfig returns the standard pipeline configuration.
func DefaultConfig() Config {
	return Config{
		MaxResults:        10,
		Offset:            "",
		WorkdayStart:      9,
		WorkdayEnd:        18,
		SlotLengthMinutes: 30,
		BufferMinutes:     5,
	}
}

// Outcome is the terminal state of one message's trip through the
// pipeline, used for logging and metrics.
type Outcome string

const (
	// OutcomeReplied: meeting-related, reply sent, acknowledged.
	OutcomeReplied Outcome = "replied"

	// OutcomeNonMeeting: classified as not meeting-related, acknowledged
	// without a reply.
	OutcomeNonMeeting Outcome = "non_meeting"

	// OutcomeReplyFailed: reply transmission failed but the message was
	// still acknowledged to prevent a double-reply on a later poll.
	OutcomeReplyFailed Outcome = "reply_failed"

	// OutcomeFailed: a step before the reply errored; the message is
	// acknowledged anyway (failed-acknowledged) so it cannot wedge the
	// pipeline in a retry storm.
	OutcomeFailed Outcome = "failed"

	// OutcomeDryRun: pipeline completed without side effects.
	OutcomeDryRun Outcome = "dry_run"
)

// PollResult summarizes one poll for logging and tests.
type PollResult struct {
	Listed     int
	Claimed    int
	Replied    int
	NonMeeting int
	Failed     int
}
