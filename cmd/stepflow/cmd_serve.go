package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rainbowcity/stepflow/internal/config"
	"github.com/rainbowcity/stepflow/internal/webserver"
)

var (
	servePort       int
	serveNoBrowser  bool
	serveSessionID  string
	serveScriptPath string
	serveMock       bool
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [script.yaml]",
		Short: "Serve the dialogue in a local web UI",
		Long: `Serve a scripted dialogue session over a local web UI.

The page shows the transcript, a single advance button (disabled while a
reply is streaming or after the script finishes), the session id, and a
view of the persisted history. Model replies stream to the page as
server-sent events.`,
		Args: cobra.MaximumNArgs(1),
		RunE: serveCommandE,
	}

	cmd.Flags().IntVarP(&servePort, "port", "p", 3000, "Port to listen on")
	cmd.Flags().BoolVar(&serveNoBrowser, "no-browser", false, "Do not open a browser")
	cmd.Flags().StringVar(&serveSessionID, "session", "", "Resume an existing session id (default: new id)")
	cmd.Flags().BoolVar(&serveMock, "mock", false, "Use the built-in mock model instead of a live endpoint")

	return cmd
}

func serveCommandE(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		serveScriptPath = args[0]
	}

	d, err := setupDialogue(config.Load(), serveScriptPath, serveSessionID, serveMock)
	if err != nil {
		return err
	}
	defer d.close()

	srv, err := webserver.New(webserver.Config{
		Port:      servePort,
		NoBrowser: serveNoBrowser,
		Runtime:   d.runtime,
		Session:   d.session,
		Store:     d.store,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx)
}
