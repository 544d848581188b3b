package schedule_tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/meetsched/internal/instrumentation"
	"github.com/teemow/meetsched/internal/oracle"
	"github.com/teemow/meetsched/internal/pipeline"
	"github.com/teemow/meetsched/internal/slots"
	"github.com/teemow/meetsched/internal/tools/common"
)

// Deps carries the collaborators the scheduling tools operate on. Any
// of them may be nil; tools depending on a missing collaborator return
// a tool error explaining what is not configured.
type Deps struct {
	// Busy answers busy-interval queries, usually the Calendar client.
	Busy pipeline.BusySource

	// Oracle classifies message text for meeting intent.
	Oracle pipeline.IntentOracle

	// Monitor triggers on-demand polls of the running pipeline.
	Monitor *pipeline.Monitor

	// Config supplies the default engine parameters.
	Config pipeline.Config

	// Metrics records tool invocations. May be nil.
	Metrics *instrumentation.Metrics
}

// RegisterScheduleTools registers the scheduling tools with the MCP server.
func RegisterScheduleTools(s *mcpserver.MCPServer, deps Deps) error {
	if deps.Config.WorkdayEnd == 0 {
		deps.Config = pipeline.DefaultConfig()
	}

	computeTool := mcp.NewTool("compute_free_slots",
		mcp.WithDescription("Compute conflict-free meeting slots for one or more dates, honoring calendar busy intervals and buffer time"),
		mcp.WithString("dates",
			mcp.Required(),
			mcp.Description("Calendar date in YYYY-MM-DD form (string) or array of dates"),
		),
		mcp.WithString("offset",
			mcp.Description("Fixed UTC offset for the workday, e.g. '-07:00' (default: the monitor's offset)"),
		),
		mcp.WithNumber("workdayStart",
			mcp.Description("Workday start hour, 0-23 (default: 9)"),
		),
		mcp.WithNumber("workdayEnd",
			mcp.Description("Workday end hour, 1-24 (default: 18)"),
		),
		mcp.WithNumber("slotLengthMinutes",
			mcp.Description("Slot length in minutes (default: 30)"),
		),
		mcp.WithNumber("bufferMinutes",
			mcp.Description("Buffer around busy intervals in minutes (default: 5)"),
		),
	)

	s.AddTool(computeTool, common.InstrumentedToolHandler("compute_free_slots", deps.Metrics,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleComputeFreeSlots(ctx, request, deps)
		}))

	classifyTool := mcp.NewTool("classify_message",
		mcp.WithDescription("Classify a message text for meeting intent and extract preferred dates"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The message text to classify"),
		),
		mcp.WithString("offset",
			mcp.Description("Fixed UTC offset used to resolve relative dates, e.g. '-07:00'"),
		),
	)

	s.AddTool(classifyTool, common.InstrumentedToolHandler("classify_message", deps.Metrics,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleClassifyMessage(ctx, request, deps)
		}))

	pollTool := mcp.NewTool("poll_inbox",
		mcp.WithDescription("Run one inbox poll immediately: classify unread messages and reply to meeting requests with free slots"),
	)

	s.AddTool(pollTool, common.InstrumentedToolHandler("poll_inbox", deps.Metrics,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handlePollInbox(ctx, deps)
		}))

	return nil
}

func handleComputeFreeSlots(ctx context.Context, request mcp.CallToolRequest, deps Deps) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	dates, err := parseDates(args["dates"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	offset := deps.Config.Offset
	if v, ok := args["offset"].(string); ok && v != "" {
		offset = v
	}

	spec := slots.Spec{
		Dates:             dates,
		Offset:            offset,
		WorkdayStart:      intArg(args, "workdayStart", deps.Config.WorkdayStart),
		WorkdayEnd:        intArg(args, "workdayEnd", deps.Config.WorkdayEnd),
		SlotLengthMinutes: intArg(args, "slotLengthMinutes", deps.Config.SlotLengthMinutes),
		BufferMinutes:     intArg(args, "bufferMinutes", deps.Config.BufferMinutes),
	}
	if err := spec.Validate(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid slot parameters: %v", err)), nil
	}

	var busy []slots.BusyInterval
	if deps.Busy != nil {
		busy, err = deps.Busy.BusyIntervals(ctx, dates, offset)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch busy intervals: %v", err)), nil
		}
	}

	free, err := slots.ComputeFreeSlotsGaps(busy, spec)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to compute free slots: %v", err)), nil
	}

	if len(free) == 0 {
		return mcp.NewToolResultText("No free slots on the requested dates."), nil
	}

	loc, err := slots.ParseOffset(offset)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid offset: %v", err)), nil
	}

	result := fmt.Sprintf("Found %d free slots:\n\n%s", len(free), slots.FormatList(free, loc))
	return mcp.NewToolResultText(result), nil
}

func handleClassifyMessage(ctx context.Context, request mcp.CallToolRequest, deps Deps) (*mcp.CallToolResult, error) {
	if deps.Oracle == nil {
		return mcp.NewToolResultError("No classifier is configured. Set GEMINI_API_KEY to enable classification."), nil
	}

	args := request.GetArguments()

	text, ok := args["text"].(string)
	if !ok || text == "" {
		return mcp.NewToolResultError("text is required"), nil
	}

	offset := deps.Config.Offset
	if v, ok := args["offset"].(string); ok && v != "" {
		offset = v
	}

	now := deps.Config.Now
	if now == nil {
		now = time.Now
	}

	req, err := deps.Oracle.Classify(ctx, text, now(), offset)
	if err != nil {
		if errors.Is(err, oracle.ErrMalformedResponse) {
			return mcp.NewToolResultText("The classifier could not produce a usable answer; treating the message as not meeting-related."), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Classification failed: %v", err)), nil
	}

	if req.IsEmpty() {
		return mcp.NewToolResultText("The message is not meeting-related."), nil
	}

	var b strings.Builder
	b.WriteString("Meeting request detected.\n")
	if req.Intent != "" {
		fmt.Fprintf(&b, "Intent: %s\n", req.Intent)
	}
	if req.MeetingType != "" {
		fmt.Fprintf(&b, "Meeting type: %s\n", req.MeetingType)
	}
	if dates := req.CandidateDates(); len(dates) > 0 {
		fmt.Fprintf(&b, "Candidate dates: %s\n", strings.Join(dates, ", "))
	}
	if req.PreferredTime != "" {
		fmt.Fprintf(&b, "Preferred time: %s\n", req.PreferredTime)
	}
	if len(req.CandidateSlots) > 0 {
		fmt.Fprintf(&b, "Candidate slots: %d\n", len(req.CandidateSlots))
	}
	if req.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", req.Notes)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handlePollInbox(ctx context.Context, deps Deps) (*mcp.CallToolResult, error) {
	if deps.Monitor == nil {
		return mcp.NewToolResultError("The inbox pipeline is not configured. Store a Google OAuth token and set GEMINI_API_KEY to enable polls."), nil
	}

	res, err := deps.Monitor.PollNow(ctx)
	if err != nil {
		if errors.Is(err, pipeline.ErrPollInProgress) {
			return mcp.NewToolResultError("A poll is already in progress; try again shortly."), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Poll failed: %v", err)), nil
	}

	result := fmt.Sprintf("Poll complete: %d listed, %d claimed, %d replied, %d non-meeting, %d failed",
		res.Listed, res.Claimed, res.Replied, res.NonMeeting, res.Failed)
	return mcp.NewToolResultText(result), nil
}

// parseDates parses the dates argument, which can be either a single
// date string or an array of date strings.
func parseDates(param interface{}) ([]string, error) {
	if param == nil {
		return nil, fmt.Errorf("dates is required")
	}

	var result []string

	switch v := param.(type) {
	case string:
		if v == "" {
			return nil, fmt.Errorf("dates cannot be empty")
		}
		result = []string{v}
	case []interface{}:
		if len(v) == 0 {
			return nil, fmt.Errorf("dates cannot be empty")
		}
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("dates[%d] must be a string", i)
			}
			if str == "" {
				return nil, fmt.Errorf("dates[%d] cannot be empty", i)
			}
			result = append(result, str)
		}
	default:
		return nil, fmt.Errorf("dates must be a string or array of strings")
	}

	return result, nil
}

// intArg reads a numeric argument, falling back to def when absent.
// JSON numbers arrive as float64.
func intArg(args map[string]interface{}, name string, def int) int {
	if v, ok := args[name]; ok {
		if f, ok := v.(float64); ok {
			return int(f)
		}
	}
	return def
}
