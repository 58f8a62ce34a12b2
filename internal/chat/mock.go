package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockClient is a scripted in-memory Client for tests and offline runs. It
// records every message list it receives and replays canned replies as
// word-sized fragments.
type MockClient struct {
	mu sync.Mutex

	// Replies are returned in order, one per Stream call. When exhausted,
	// a generic echo reply is produced.
	Replies []string

	// FailOnCall makes the Nth call (1-based) fail after emitting
	// FailAfterFragments fragments. Zero means never fail.
	FailOnCall         int
	FailAfterFragments int

	calls [][]Message
}

// Calls returns a copy of the message lists passed to Stream so far.
func (m *MockClient) Calls() [][]Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]Message, len(m.calls))
	for i, c := range m.calls {
		out[i] = append([]Message(nil), c...)
	}
	return out
}

// Stream implements Client.
func (m *MockClient) Stream(ctx context.Context, msgs []Message, emit func(string) error) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, append([]Message(nil), msgs...))
	call := len(m.calls)
	reply := fmt.Sprintf("mock reply %d", call)
	if call-1 < len(m.Replies) {
		reply = m.Replies[call-1]
	}
	failCall := m.FailOnCall
	failAfter := m.FailAfterFragments
	m.mu.Unlock()

	var full strings.Builder
	for i, word := range strings.Fields(reply) {
		if failCall == call && i >= failAfter {
			return full.String(), fmt.Errorf("mock transport failure on call %d", call)
		}
		frag := word
		if i > 0 {
			frag = " " + word
		}
		full.WriteString(frag)
		if err := emit(frag); err != nil {
			return full.String(), err
		}
		select {
		case <-ctx.Done():
			return full.String(), ctx.Err()
		default:
		}
	}

	if failCall == call && failAfter >= len(strings.Fields(reply)) {
		return full.String(), fmt.Errorf("mock transport failure on call %d", call)
	}
	return full.String(), nil
}
