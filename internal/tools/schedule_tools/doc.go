// Package schedule_tools provides MCP tools for the meeting scheduler:
// computing conflict-free slots, classifying message text for meeting
// intent, and triggering on-demand inbox polls.
package schedule_tools
