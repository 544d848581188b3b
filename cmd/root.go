package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the meetsched application
var rootCmd = &cobra.Command{
	Use:   "meetsched",
	Short: "Replies to meeting requests in your Gmail inbox with free calendar slots",
	Long: `meetsched watches your Gmail inbox for meeting requests, computes
conflict-free slots from your calendar, and replies with candidate times.

It can run as:
  - A polling monitor (default)
  - A one-shot slot calculator
  - An MCP (Model Context Protocol) server for AI assistants`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "meetsched version %s\n" .Version}}`)

	// Load a .env file if one is present so GEMINI_API_KEY and friends
	// can live next to the binary during development.
	_ = godotenv.Load()

	// If no subcommand is provided, run the monitor command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "monitor")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newMonitorCmd())
	rootCmd.AddCommand(newSlotsCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
