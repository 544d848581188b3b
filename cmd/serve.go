package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/meetsched/internal/calendar"
	"github.com/teemow/meetsched/internal/gmail"
	"github.com/teemow/meetsched/internal/instrumentation"
	"github.com/teemow/meetsched/internal/oracle"
	"github.com/teemow/meetsched/internal/pipeline"
	"github.com/teemow/meetsched/internal/tools/schedule_tools"
)

func newServeCmd() *cobra.Command {
	var (
		debugMode bool
		account   string
		offset    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server over stdio to provide
scheduling tools for AI assistants.

Tools:
  - compute_free_slots: conflict-free slots for a set of dates
  - classify_message: meeting-intent classification for a message text
  - poll_inbox: run one on-demand inbox poll

The calendar lookup needs a stored Google OAuth token (see 'meetsched
auth'); classification needs a GEMINI_API_KEY environment variable.
With both in place the full pipeline is hosted and poll_inbox works;
tools whose collaborator is missing report that instead of failing the
server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(debugMode, account, offset)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&account, "account", "default", "Google account name to use (default: 'default')")
	cmd.Flags().StringVar(&offset, "offset", "+00:00", "Default fixed UTC offset for slot computation, e.g. '-07:00'")

	return cmd
}

func runServe(debugMode bool, account, offset string) error {
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := setupLogger(debugMode)

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Error("instrumentation shutdown failed", slog.Any("error", err))
		}
	}()

	cfg := pipeline.DefaultConfig()
	cfg.Offset = offset

	deps := schedule_tools.Deps{
		Config:  cfg,
		Metrics: provider.Metrics(),
	}

	// The calendar and classifier collaborators are optional in serve
	// mode; tools that need a missing one explain what to configure.
	if calendar.HasTokenForAccount(account) {
		calendarClient, err := calendar.NewClientForAccount(shutdownCtx, account)
		if err != nil {
			return fmt.Errorf("failed to create Calendar client for account %s: %w", account, err)
		}
		calendarClient.WithMetrics(provider.Metrics())
		deps.Busy = calendarClient
	} else {
		logger.Warn("no stored token, calendar lookups disabled", slog.String("account", account))
	}

	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		oracleClient, err := oracle.NewClient(shutdownCtx, apiKey, os.Getenv("GEMINI_MODEL"))
		if err != nil {
			return fmt.Errorf("failed to create classifier client: %w", err)
		}
		deps.Oracle = oracleClient
	} else {
		logger.Warn("GEMINI_API_KEY not set, classification disabled")
	}

	// With every collaborator present the full pipeline is hosted too,
	// so poll_inbox can trigger on-demand polls without a separate
	// monitor process.
	if deps.Busy != nil && deps.Oracle != nil && gmail.HasTokenForAccount(account) {
		gmailClient, err := gmail.NewClientForAccount(shutdownCtx, account)
		if err != nil {
			return fmt.Errorf("failed to create Gmail client for account %s: %w", account, err)
		}
		gmailClient.WithMetrics(provider.Metrics())

		controller := pipeline.NewController(gmailClient, deps.Busy, deps.Oracle, gmailClient, cfg, logger, provider.Metrics())
		if provider.Enabled() {
			controller.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging))
		}
		deps.Monitor = pipeline.NewMonitor(controller, 0, 0, logger)
	} else {
		logger.Warn("pipeline collaborators incomplete, poll_inbox disabled")
	}

	mcpSrv := mcpserver.NewMCPServer("meetsched", version,
		mcpserver.WithToolCapabilities(true),
	)

	if err := schedule_tools.RegisterScheduleTools(mcpSrv, deps); err != nil {
		return fmt.Errorf("failed to register scheduling tools: %w", err)
	}

	return runStdioServer(mcpSrv)
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}
