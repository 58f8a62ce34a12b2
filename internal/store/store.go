// Package store persists the append-only log of dialogue turns. Writes are
// best-effort from the caller's point of view: the session runtime logs a
// failure and keeps going, so implementations report errors but must never
// be load-bearing for live progression.
package store

import (
	"context"
	"errors"
	"time"
)

// Message types as persisted, matching the chat_history row shape.
const (
	MessageHuman = "human"
	MessageAI    = "ai"
)

// ErrDisabled is returned by the Disabled store when no persistence
// backend is configured.
var ErrDisabled = errors.New("persistence not configured")

// Record is one persisted turn.
type Record struct {
	SessionID   string    `json:"session_id"`
	MessageType string    `json:"message_type"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"timestamp"`
}

// Store is the persistence contract: append one turn, fetch a session's
// turns in insertion order. History is for out-of-band inspection only and
// never drives live sequencer state.
type Store interface {
	Append(ctx context.Context, sessionID, messageType, content string) error
	History(ctx context.Context, sessionID string) ([]Record, error)
	Close() error
}

// Disabled is the Store used when no backend is configured. Every call
// reports ErrDisabled so callers surface a warning instead of crashing.
type Disabled struct{}

func (Disabled) Append(context.Context, string, string, string) error {
	return ErrDisabled
}

func (Disabled) History(context.Context, string) ([]Record, error) {
	return nil, ErrDisabled
}

func (Disabled) Close() error { return nil }
