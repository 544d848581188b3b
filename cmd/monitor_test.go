package cmd

import (
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
)

func TestMonitorOptionsPipelineConfig(t *testing.T) {
	opts := monitorOptions{
		offset:       "-07:00",
		workdayStart: 8,
		workdayEnd:   17,
		slotLength:   45,
		buffer:       10,
		maxResults:   25,
		archive:      true,
		dryRun:       true,
		interval:     2 * time.Minute,
	}

	cfg := opts.pipelineConfig()

	assert.Equal(t, "-07:00", cfg.Offset)
	assert.Equal(t, 8, cfg.WorkdayStart)
	assert.Equal(t, 17, cfg.WorkdayEnd)
	assert.Equal(t, 45, cfg.SlotLengthMinutes)
	assert.Equal(t, 10, cfg.BufferMinutes)
	assert.Equal(t, int64(25), cfg.MaxResults)
	assert.True(t, cfg.Archive)
	assert.True(t, cfg.DryRun)
}

func TestGenerateToolsMarkdown(t *testing.T) {
	tools := []mcp.Tool{
		mcp.NewTool("compute_free_slots",
			mcp.WithDescription("Compute conflict-free meeting slots"),
			mcp.WithString("dates", mcp.Required(), mcp.Description("Dates to consider")),
			mcp.WithString("offset", mcp.Description("Fixed UTC offset")),
		),
		mcp.NewTool("poll_inbox",
			mcp.WithDescription("Trigger one inbox poll"),
		),
	}

	md := generateToolsMarkdown(tools)

	assert.Contains(t, md, "# MCP Tools Reference")
	assert.Contains(t, md, "### compute_free_slots")
	assert.Contains(t, md, "### poll_inbox")
	assert.Contains(t, md, "- `dates` (required): Dates to consider")
	assert.Contains(t, md, "- `offset` (optional): Fixed UTC offset")
}
