package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess       = 0 // Script ran to completion
	ExitSessionFailed = 1 // Session halted on a model failure
	ExitError         = 2 // Configuration or runtime error
)

// SessionFailureError indicates the dialogue started but was halted by a
// model transport failure, as opposed to a configuration problem.
type SessionFailureError struct {
	Message string
}

func (e *SessionFailureError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var sessionErr *SessionFailureError
		if errors.As(err, &sessionErr) {
			os.Exit(ExitSessionFailed)
		}

		os.Exit(ExitError)
	}
}
