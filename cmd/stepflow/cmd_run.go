package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rainbowcity/stepflow/internal/config"
)

var (
	runScriptPath string
	runSessionID  string
	runMock       bool
	runAssumeYes  bool
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [script.yaml]",
		Short: "Run a scripted dialogue in the terminal",
		Long: `Run a scripted dialogue step by step in the terminal.

Each step sends the next scripted prompt to the model and streams the reply
to stdout. Without a script argument the built-in seven-step script is used.
In an interactive terminal each step asks for confirmation first; use --yes
to send every step without asking.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCommandE,
	}

	cmd.Flags().StringVar(&runSessionID, "session", "", "Resume an existing session id (default: new id)")
	cmd.Flags().BoolVar(&runMock, "mock", false, "Use the built-in mock model instead of a live endpoint")
	cmd.Flags().BoolVarP(&runAssumeYes, "yes", "y", false, "Send every step without confirmation")

	return cmd
}

func runCommandE(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		runScriptPath = args[0]
	}

	d, err := setupDialogue(config.Load(), runScriptPath, runSessionID, runMock)
	if err != nil {
		return err
	}
	defer d.close()

	ctx := cmd.Context()
	interactive := !runAssumeYes && term.IsTerminal(int(os.Stdin.Fd()))

	fmt.Printf("session %s — script %q, %d steps\n\n", d.session.ID(), d.script.Name, d.script.Len())

	for {
		snap := d.session.Snapshot()
		if snap.Finished {
			break
		}

		step, ok := d.script.StepAt(snap.Cursor)
		if !ok {
			// Exhausted; let the runtime mark the session finished.
			if _, err := d.runtime.Advance(ctx, d.session); err != nil {
				return fmt.Errorf("finishing session: %w", err)
			}
			break
		}

		if interactive && !confirmStep(step.Index, d.script.Len(), step.Prompt) {
			fmt.Println("stopped; resume later with --session", d.session.ID())
			return nil
		}

		if _, err := d.runtime.Advance(ctx, d.session); err != nil {
			return fmt.Errorf("advancing: %w", err)
		}

		fmt.Printf("[operator] %s\n\n[assistant] ", strings.TrimSpace(step.Prompt))
		err := d.runtime.StreamResponse(ctx, d.session, func(fragment string) error {
			_, werr := fmt.Print(fragment)
			return werr
		})
		fmt.Print("\n\n")
		if err != nil {
			return &SessionFailureError{
				Message: fmt.Sprintf("session %s halted: %v", d.session.ID(), err),
			}
		}
	}

	fmt.Println("End of conversation sequence.")
	return nil
}

// confirmStep asks before sending a scripted prompt, previewing its first
// line.
func confirmStep(index, total int, prompt string) bool {
	preview := strings.TrimSpace(prompt)
	if i := strings.IndexByte(preview, '\n'); i >= 0 {
		preview = preview[:i]
	}
	preview = runewidth.Truncate(preview, 60, "…")

	confirmed := true
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Send step %d/%d: %s", index+1, total, preview)).
				Affirmative("Send").
				Negative("Stop").
				Value(&confirmed),
		),
	).Run()
	if err != nil {
		// Treat an aborted prompt (ctrl-c) as a stop, not a crash.
		if !errors.Is(err, huh.ErrUserAborted) {
			fmt.Fprintln(os.Stderr, "confirm prompt failed:", err)
		}
		return false
	}
	return confirmed
}
