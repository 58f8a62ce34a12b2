package chat

import "context"

// Client is the interface for streaming model completions.
type Client interface {
	// Stream sends the ordered message list and calls emit once per text
	// fragment, in arrival order, as the reply is produced. It returns the
	// concatenated reply text. A transport or provider error, including one
	// raised mid-stream, is returned as the error; fragments already
	// emitted are not retracted.
	Stream(ctx context.Context, msgs []Message, emit func(fragment string) error) (string, error)
}
