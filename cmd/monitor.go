package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/meetsched/internal/calendar"
	"github.com/teemow/meetsched/internal/gmail"
	"github.com/teemow/meetsched/internal/instrumentation"
	"github.com/teemow/meetsched/internal/oracle"
	"github.com/teemow/meetsched/internal/pipeline"
	"github.com/teemow/meetsched/internal/server"
)

// monitorOptions holds the flag values of the monitor command.
type monitorOptions struct {
	account  string
	interval time.Duration
	deadline time.Duration

	offset       string
	workdayStart int
	workdayEnd   int
	slotLength   int
	buffer       int
	maxResults   int64
	archive      bool
	dryRun       bool

	metricsEnabled bool
	metricsAddr    string
	debug          bool
}

// pipelineConfig maps the flag values onto the pipeline configuration.
func (o monitorOptions) pipelineConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.Offset = o.offset
	cfg.WorkdayStart = o.workdayStart
	cfg.WorkdayEnd = o.workdayEnd
	cfg.SlotLengthMinutes = o.slotLength
	cfg.BufferMinutes = o.buffer
	cfg.MaxResults = o.maxResults
	cfg.Archive = o.archive
	cfg.DryRun = o.dryRun
	return cfg
}

func newMonitorCmd() *cobra.Command {
	var opts monitorOptions

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Poll the inbox and reply to meeting requests with free slots",
		Long: `Poll the Gmail inbox for unread messages, classify each one for
meeting intent, compute conflict-free slots from your calendar, and
reply with candidate times.

Each message is replied to at most once per process: a message is
claimed before any reply is attempted, and a failed reply is never
retried. Use --dry-run to see what would happen without sending
anything.

Requires Google OAuth tokens (see 'meetsched auth') and a GEMINI_API_KEY
environment variable for classification.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonitor(opts)
		},
	}

	cmd.Flags().StringVar(&opts.account, "account", "default", "Google account name to use (default: 'default')")
	cmd.Flags().DurationVar(&opts.interval, "interval", pipeline.DefaultPollInterval, "Delay between inbox polls")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", pipeline.DefaultTickDeadline, "Deadline for one poll; a hung poll is abandoned at this point")
	cmd.Flags().StringVar(&opts.offset, "offset", "+00:00", "Fixed UTC offset for the workday, e.g. '-07:00'")
	cmd.Flags().IntVar(&opts.workdayStart, "workday-start", 9, "Workday start hour, 0-23")
	cmd.Flags().IntVar(&opts.workdayEnd, "workday-end", 18, "Workday end hour, 1-24")
	cmd.Flags().IntVar(&opts.slotLength, "slot-length", 30, "Slot length in minutes")
	cmd.Flags().IntVar(&opts.buffer, "buffer", 5, "Buffer around busy intervals in minutes")
	cmd.Flags().Int64Var(&opts.maxResults, "max-results", 10, "Maximum unread messages considered per poll")
	cmd.Flags().BoolVar(&opts.archive, "archive", false, "Also archive processed messages instead of only marking them read")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Run the full pipeline but send no replies and mark nothing processed")
	cmd.Flags().BoolVar(&opts.metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	return cmd
}

func runMonitor(opts monitorOptions) error {
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := setupLogger(opts.debug)

	// Load metrics config from environment if not set via flags
	if os.Getenv("METRICS_ENABLED") == "false" {
		opts.metricsEnabled = false
	}
	if opts.metricsAddr == ":9090" {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			opts.metricsAddr = addr
		}
	}

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

	gmailClient, err := gmail.NewClientForAccount(shutdownCtx, opts.account)
	if err != nil {
		return fmt.Errorf("failed to create Gmail client for account %s: %w", opts.account, err)
	}
	gmailClient.WithMetrics(provider.Metrics())

	calendarClient, err := calendar.NewClientForAccount(shutdownCtx, opts.account)
	if err != nil {
		return fmt.Errorf("failed to create Calendar client for account %s: %w", opts.account, err)
	}
	calendarClient.WithMetrics(provider.Metrics())

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required for message classification")
	}
	oracleClient, err := oracle.NewClient(shutdownCtx, apiKey, os.Getenv("GEMINI_MODEL"))
	if err != nil {
		return fmt.Errorf("failed to create classifier client: %w", err)
	}

	cfg := opts.pipelineConfig()
	controller := pipeline.NewController(gmailClient, calendarClient, oracleClient, gmailClient, cfg, logger, provider.Metrics())
	if provider.Enabled() {
		controller.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging))
	}

	monitor := pipeline.NewMonitor(controller, opts.interval, opts.deadline, logger)

	// Start metrics server if enabled
	var metricsServer *server.MetricsServer
	if opts.metricsEnabled && provider.Enabled() {
		health := server.NewHealthChecker()
		health.RegisterCheck("gmail_token", func() error {
			if !gmail.HasTokenForAccount(opts.account) {
				return fmt.Errorf("no stored token for account %q", opts.account)
			}
			return nil
		})

		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    opts.metricsAddr,
			InstrumentationProvider: provider,
			Health:                  health,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		logger.Info("metrics server started", slog.String("addr", metricsServer.Addr()))

		defer func() {
			health.SetShuttingDown()
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Error("metrics server shutdown failed", slog.Any("error", err))
			}
		}()
	}

	logger.Info("monitor starting",
		slog.String("account", opts.account),
		slog.String("offset", opts.offset),
		slog.Bool("dry_run", opts.dryRun),
	)

	err = monitor.Run(shutdownCtx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// setupLogger configures the default slog logger. Logs go to stderr so
// stdio transports keep stdout for themselves.
func setupLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
