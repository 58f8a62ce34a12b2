// Package runtime drives one scripted dialogue session: it advances through
// the script one step at a time, streams the model reply to the
// presentation layer, and keeps the persisted turn log up to date.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rainbowcity/stepflow/internal/chat"
	"github.com/rainbowcity/stepflow/internal/script"
	"github.com/rainbowcity/stepflow/internal/session"
	"github.com/rainbowcity/stepflow/internal/store"
)

// ErrInvalidState is returned when an operation is requested in a state
// that does not allow it: advancing while a reply is streaming or after the
// session finished. The session is left unchanged.
var ErrInvalidState = errors.New("operation not valid in current session state")

// Turn is one message in the transcript.
type Turn struct {
	Role     chat.Role `json:"role"`
	Content  string    `json:"content"`
	Position int       `json:"position"`
	At       time.Time `json:"at"`
}

// Session is the mutable state of one script run. All access goes through
// Runtime operations; the embedded mutex serializes them per session, so no
// cross-session locking exists.
type Session struct {
	mu sync.Mutex

	id        string
	turns     []Turn
	cursor    int
	streaming bool
	inFlight  bool
	finished  bool
	err       error
}

// NewSession creates a session, generating an id when none is supplied so
// an existing session can be resumed under its original key.
func NewSession(id string) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	return &Session{id: id}
}

// ID returns the opaque session identifier.
func (s *Session) ID() string { return s.id }

// State is a point-in-time copy of session state, safe to hand to
// presentation layers.
type State struct {
	ID        string `json:"session_id"`
	Turns     []Turn `json:"turns"`
	Cursor    int    `json:"cursor"`
	Streaming bool   `json:"streaming"`
	Finished  bool   `json:"finished"`
	Error     string `json:"error,omitempty"`
}

// Snapshot returns a copy of the current session state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		ID:        s.id,
		Turns:     append([]Turn(nil), s.turns...),
		Cursor:    s.cursor,
		Streaming: s.streaming,
		Finished:  s.finished,
	}
	if s.err != nil {
		st.Error = s.err.Error()
	}
	return st
}

// Err reports the terminal error, if the session finished because a stream
// failed. A cleanly exhausted script leaves it nil.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Runtime mediates between the script, the model client, the store, and the
// presentation layer.
type Runtime struct {
	script *script.Script
	client chat.Client
	store  store.Store
	events session.Recorder
	logger *slog.Logger
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithStore sets the persistence backend. Defaults to store.Disabled.
func WithStore(st store.Store) Option {
	return func(r *Runtime) { r.store = st }
}

// WithRecorder sets the session event log. Defaults to a no-op recorder.
func WithRecorder(rec session.Recorder) Option {
	return func(r *Runtime) { r.events = rec }
}

// WithLogger sets the slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) { r.logger = l }
}

// New creates a Runtime for the given script and model client.
func New(sc *script.Script, client chat.Client, opts ...Option) *Runtime {
	r := &Runtime{
		script: sc,
		client: client,
		store:  store.Disabled{},
		events: session.NopRecorder{},
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Script returns the script this runtime steps through.
func (r *Runtime) Script() *script.Script { return r.script }

// TotalSteps returns the script length.
func (r *Runtime) TotalSteps() int { return r.script.Len() }

// Advance sends the next scripted operator turn. It returns ErrInvalidState
// while a reply is streaming or after the session finished, leaving the
// session untouched. Script exhaustion is not an error: the session is
// marked finished and a nil step is returned.
func (r *Runtime) Advance(ctx context.Context, s *Session) (*script.Step, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.streaming || s.finished {
		return nil, fmt.Errorf("advance session %s: %w", s.id, ErrInvalidState)
	}

	step, ok := r.script.StepAt(s.cursor)
	if !ok {
		s.finished = true
		return nil, nil
	}

	s.turns = append(s.turns, Turn{
		Role:     chat.RoleUser,
		Content:  step.Prompt,
		Position: len(s.turns),
		At:       time.Now().UTC(),
	})
	r.persist(ctx, s.id, store.MessageHuman, step.Prompt)

	if err := r.events.Record(session.NewEvent(session.EventStepStart,
		session.StepStartData(step.Index, r.script.Len(), step.Instruction != ""))); err != nil {
		r.logger.Warn("recording step start", "session", s.id, "error", err)
	}

	s.streaming = true
	s.cursor++

	r.logger.Debug("advanced", "session", s.id, "step", step.Index, "of", r.script.Len())
	return &step, nil
}

// StreamResponse streams the model reply for the step just advanced,
// forwarding each fragment to emit as it is produced. On success the
// assistant turn is appended and persisted; on failure the session is
// forced finished with the error recorded and the failed step's reply is
// not added to the history.
func (r *Runtime) StreamResponse(ctx context.Context, s *Session, emit func(fragment string) error) error {
	s.mu.Lock()
	if !s.streaming || s.inFlight {
		s.mu.Unlock()
		return fmt.Errorf("stream session %s: %w", s.id, ErrInvalidState)
	}
	s.inFlight = true
	stepIndex := s.cursor - 1
	msgs := r.buildModelInput(s, stepIndex)
	s.mu.Unlock()

	start := time.Now()
	reply, err := r.client.Stream(ctx, msgs, emit)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	s.streaming = false

	if err != nil {
		// No partial retry: resending a scripted prompt out of order is
		// worse than halting, so a failed stream is terminal.
		s.finished = true
		s.err = err
		r.logger.Error("model stream failed", "session", s.id, "step", stepIndex, "error", err)
		if recErr := r.events.Record(session.NewEvent(session.EventError,
			session.ErrorData(err.Error(), stepIndex))); recErr != nil {
			r.logger.Warn("recording stream error", "session", s.id, "error", recErr)
		}
		return fmt.Errorf("streaming step %d: %w", stepIndex, err)
	}

	s.turns = append(s.turns, Turn{
		Role:     chat.RoleAssistant,
		Content:  reply,
		Position: len(s.turns),
		At:       time.Now().UTC(),
	})
	r.persist(ctx, s.id, store.MessageAI, reply)

	if err := r.events.Record(session.NewEvent(session.EventStepComplete,
		session.StepCompleteData(stepIndex, len(reply), time.Since(start).Milliseconds()))); err != nil {
		r.logger.Warn("recording step complete", "session", s.id, "error", err)
	}

	if s.cursor >= r.script.Len() {
		s.finished = true
		if err := r.events.Record(session.NewEvent(session.EventSessionComplete,
			session.CompleteData(s.cursor, len(s.turns), false))); err != nil {
			r.logger.Warn("recording session complete", "session", s.id, "error", err)
		}
		r.logger.Info("session complete", "session", s.id, "steps", s.cursor)
	}

	return nil
}

// buildModelInput translates the turn history into role-tagged messages,
// prepending the step's steering instruction as a system message when one
// exists. Steering text is never stored as a regular turn. Caller holds
// s.mu.
func (r *Runtime) buildModelInput(s *Session, stepIndex int) []chat.Message {
	msgs := make([]chat.Message, 0, len(s.turns)+1)
	if step, ok := r.script.StepAt(stepIndex); ok && step.Instruction != "" {
		msgs = append(msgs, chat.Message{Role: chat.RoleSystem, Content: step.Instruction})
	}
	for _, t := range s.turns {
		msgs = append(msgs, chat.Message{Role: t.Role, Content: t.Content})
	}
	return msgs
}

// persist appends one turn to the store, best-effort: failures are logged
// and never block progression.
func (r *Runtime) persist(ctx context.Context, sessionID, messageType, content string) {
	err := r.store.Append(ctx, sessionID, messageType, content)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrDisabled):
		r.logger.Debug("turn not persisted", "session", sessionID, "reason", err)
	default:
		r.logger.Warn("failed to persist turn", "session", sessionID, "type", messageType, "error", err)
	}
}
