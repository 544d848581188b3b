package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/teemow/meetsched/internal/gmail"
	"github.com/teemow/meetsched/internal/instrumentation"
	"github.com/teemow/meetsched/internal/logging"
	"github.com/teemow/meetsched/internal/oracle"
	"github.com/teemow/meetsched/internal/slots"
)

// Controller orchestrates the per-message pipeline: discover, claim,
// classify, compute slots, reply, acknowledge. It owns the ProcessedSet
// exclusively; no other component reads or mutates it.
type Controller struct {
	source    MessageSource
	busy      BusySource
	oracle    IntentOracle
	sink      ReplySink
	processed *ProcessedSet
	cfg       Config
	logger    *slog.Logger
	metrics   *instrumentation.Metrics
	audit     *instrumentation.AuditLogger
}

// SetAuditLogger attaches an audit trail for outbound replies. A nil
// audit logger disables the trail.
func (c *Controller) SetAuditLogger(audit *instrumentation.AuditLogger) {
	c.audit = audit
}

// NewController wires the pipeline collaborators together.
func NewController(source MessageSource, busy BusySource, intentOracle IntentOracle, sink ReplySink, cfg Config, logger *slog.Logger, metrics *instrumentation.Metrics) *Controller {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultConfig().MaxResults
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}

	return &Controller{
		source:    source,
		busy:      busy,
		oracle:    intentOracle,
		sink:      sink,
		processed: NewProcessedSet(),
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
	}
}

// Processed exposes the number of claimed message ids, for diagnostics.
func (c *Controller) Processed() int {
	return c.processed.Len()
}

// PollOnce runs one discovery pass: list unread ids, claim the unseen
// ones, and run each through the pipeline. A listing failure aborts the
// poll (nothing was claimed yet, so the next tick retries cleanly); a
// failure inside one message's pipeline never aborts the others.
func (c *Controller) PollOnce(ctx context.Context) (PollResult, error) {
	start := c.cfg.Now()
	var res PollResult

	ids, err := c.source.ListUnread(ctx, c.cfg.MaxResults)
	if err != nil {
		c.metrics.RecordPoll(ctx, instrumentation.StatusError, time.Since(start))
		return res, fmt.Errorf("failed to list unread messages: %w", err)
	}
	res.Listed = len(ids)

	// Claim in a single pre-pass so a future concurrent fan-out could
	// never double-claim an id.
	var claimed []string
	for _, id := range ids {
		if c.processed.Claim(id) {
			claimed = append(claimed, id)
		}
	}
	res.Claimed = len(claimed)

	for _, id := range claimed {
		outcome := c.processMessage(ctx, id)
		c.metrics.RecordMessage(ctx, string(outcome))

		switch outcome {
		case OutcomeReplied, OutcomeDryRun:
			res.Replied++
		case OutcomeNonMeeting:
			res.NonMeeting++
		default:
			res.Failed++
		}
	}

	c.metrics.RecordPoll(ctx, instrumentation.StatusSuccess, time.Since(start))
	c.logger.Info("poll complete",
		slog.Int("listed", res.Listed),
		slog.Int("claimed", res.Claimed),
		slog.Int("replied", res.Replied),
		slog.Int("non_meeting", res.NonMeeting),
		slog.Int("failed", res.Failed),
	)
	return res, nil
}

// processMessage drives one claimed message to a terminal state. The
// message is acknowledged at the source on every path except a fetch
// failure; a reply failure is logged but never blocks acknowledgement,
// so a missed reply can never turn into a double-reply later.
func (c *Controller) processMessage(ctx context.Context, id string) Outcome {
	logger := c.logger.With(slog.String("message_id", id))

	msg, err := c.source.Get(ctx, id)
	if err != nil {
		if gmail.IsPermanent(err) {
			logger.Error("message fetch failed permanently", logging.Err(err))
		} else {
			logger.Warn("message fetch failed, will retry after restart", logging.Err(err))
		}
		return OutcomeFailed
	}
	logger = logger.With(logging.UserHash(msg.From))

	now := c.cfg.Now()
	classifyStart := time.Now()
	request, err := c.oracle.Classify(ctx, msg.Snippet, now, c.cfg.Offset)
	c.metrics.RecordOracleOperation(ctx, instrumentation.OperationClassify, statusOf(err), time.Since(classifyStart))
	if err != nil {
		if errors.Is(err, oracle.ErrMalformedResponse) {
			// Unparseable model output counts as "not meeting-related".
			logger.Warn("classification unparseable, treating as non-meeting", logging.Err(err))
			c.acknowledge(ctx, logger, id)
			return OutcomeNonMeeting
		}
		logger.Error("classification failed", logging.Err(err))
		c.acknowledge(ctx, logger, id)
		return OutcomeFailed
	}

	if request.IsEmpty() {
		logger.Debug("message is not meeting-related")
		c.acknowledge(ctx, logger, id)
		return OutcomeNonMeeting
	}

	dates := request.CandidateDates()
	if len(dates) == 0 {
		logger.Info("meeting intent without usable dates, skipping reply",
			slog.String("intent", string(request.Intent)))
		c.acknowledge(ctx, logger, id)
		return OutcomeNonMeeting
	}

	offset := request.Timezone()
	if offset == "" {
		offset = c.cfg.Offset
	}

	free, err := c.computeFreeSlots(ctx, dates, offset)
	if err != nil {
		logger.Error("slot computation failed", logging.Err(err))
		c.acknowledge(ctx, logger, id)
		return OutcomeFailed
	}

	rankStart := time.Now()
	ranked, err := c.oracle.Rank(ctx, msg.Snippet, now, offset, free)
	c.metrics.RecordOracleOperation(ctx, instrumentation.OperationRank, statusOf(err), time.Since(rankStart))
	if err != nil {
		logger.Error("slot ranking failed", logging.Err(err))
		c.acknowledge(ctx, logger, id)
		return OutcomeFailed
	}

	body := composeReply(ranked)

	if c.cfg.DryRun {
		logger.Info("dry run, reply suppressed",
			slog.Int("candidate_slots", len(ranked.CandidateSlots)))
		return OutcomeDryRun
	}

	event := instrumentation.NewReplyEvent(msg.ID, msg.ThreadID, msg.From).
		WithSlotCount(len(ranked.CandidateSlots)).
		WithSpanContext(ctx)

	outcome := OutcomeReplied
	if _, err := c.sink.Reply(ctx, msg, body); err != nil {
		// A missed reply is preferable to a reprocessing loop that
		// could double-reply later.
		logger.Error("reply transmission failed", logging.Err(err))
		outcome = OutcomeReplyFailed
		c.audit.LogReply(event.Complete(false, err))
	} else {
		logger.Info("reply sent", slog.Int("candidate_slots", len(ranked.CandidateSlots)))
		c.audit.LogReply(event.Complete(true, nil))
	}

	c.acknowledge(ctx, logger, id)
	return outcome
}

// statusOf maps an error to the metric status label.
func statusOf(err error) string {
	if err != nil {
		return instrumentation.StatusError
	}
	return instrumentation.StatusSuccess
}

// computeFreeSlots fetches busy intervals for the candidate dates and
// runs the gap-based engine over them.
func (c *Controller) computeFreeSlots(ctx context.Context, dates []string, offset string) ([]slots.FreeSlot, error) {
	busy, err := c.busy.BusyIntervals(ctx, dates, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch busy intervals: %w", err)
	}

	spec := slots.Spec{
		Dates:             dates,
		Offset:            offset,
		WorkdayStart:      c.cfg.WorkdayStart,
		WorkdayEnd:        c.cfg.WorkdayEnd,
		SlotLengthMinutes: c.cfg.SlotLengthMinutes,
		BufferMinutes:     c.cfg.BufferMinutes,
	}
	return slots.ComputeFreeSlotsGaps(busy, spec)
}

// acknowledge marks the message processed at the source. Failures are
// logged only: the id stays claimed in-process, and the message remains
// unread at the source for a future process to pick up. In dry-run mode
// the source is left untouched on every path.
func (c *Controller) acknowledge(ctx context.Context, logger *slog.Logger, id string) {
	if c.cfg.DryRun {
		logger.Info("dry run, acknowledgement suppressed")
		return
	}
	if err := c.source.MarkProcessed(ctx, id, c.cfg.Archive); err != nil {
		logger.Error("failed to mark message processed", logging.Err(err))
	}
}

// composeReply renders the ranked candidate slots as a plain-text reply
// body. Formatting beyond this is the sink's responsibility.
func composeReply(request *oracle.MeetingRequestContext) string {
	var b strings.Builder
	b.WriteString("Hi,\n\nThanks for reaching out. Here are a few times that would work:\n\n")

	for _, s := range request.CandidateSlots {
		b.WriteString("  - ")
		b.WriteString(s.Date)
		b.WriteString(": ")
		b.WriteString(s.TimeSlot)
		if s.Timezone != "" {
			b.WriteString(" (UTC")
			b.WriteString(s.Timezone)
			b.WriteString(")")
		}
		b.WriteString("\n")
	}

	b.WriteString("\nLet me know which of these works best and I'll send an invite.\n")
	if request.Notes != "" {
		b.WriteString("\n")
		b.WriteString(request.Notes)
		b.WriteString("\n")
	}
	return b.String()
}
