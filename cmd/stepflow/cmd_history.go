package main

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/rainbowcity/stepflow/internal/config"
	"github.com/rainbowcity/stepflow/internal/store"
)

var historyFull bool

func newHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <session-id>",
		Short: "Show persisted turns for a session",
		Long: `Show the turns persisted for a session, independent of any live
session state. Requires STEPFLOW_DB to point at the turn store.`,
		Args: cobra.ExactArgs(1),
		RunE: historyCommandE,
	}

	cmd.Flags().BoolVar(&historyFull, "full", false, "Print full turn contents instead of previews")

	return cmd
}

func historyCommandE(cmd *cobra.Command, args []string) error {
	sessionID := args[0]

	cfg := config.Load()
	if !cfg.PersistenceConfigured() {
		return fmt.Errorf("STEPFLOW_DB is not set; no turn store to read")
	}

	db, err := store.OpenSQLite(cfg.DBPath, nil)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	records, err := db.History(cmd.Context(), sessionID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Printf("no persisted turns for session %s\n", sessionID)
		return nil
	}

	for _, r := range records {
		content := strings.ReplaceAll(strings.TrimSpace(r.Content), "\n", " ")
		if !historyFull {
			content = runewidth.Truncate(content, 80, "…")
		}
		fmt.Printf("%s  %-5s  %s\n", r.CreatedAt.Format("2006-01-02 15:04:05"), r.MessageType, content)
	}
	fmt.Printf("\n%d turns for session %s\n", len(records), sessionID)
	return nil
}
