package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stepflow",
		Short: "Stepflow - scripted step-by-step LLM dialogues",
		Long: `Stepflow drives a fixed, scripted dialogue with a language model one
step at a time: each advance sends the next scripted prompt, streams the
model reply, and persists both turns.

Model and store credentials come from the environment (or a .env file):
OPENAI_API_KEY, OPENAI_BASE_URL, STEPFLOW_MODEL, STEPFLOW_DB,
STEPFLOW_LOG_DIR.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newHistoryCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
