// Package cmd implements the command-line interface for meetsched.
//
// This package provides the following commands:
//   - monitor: Poll the Gmail inbox and reply to meeting requests with free slots
//   - slots: Compute free meeting slots for a set of dates and print them
//   - serve: Start the MCP server to provide scheduling tools for AI assistants
//   - auth: Obtain and store Google OAuth tokens for an account
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The monitor command is the default command when no subcommand is specified.
package cmd
