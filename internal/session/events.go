// Package session records dialogue session activity as an append-only JSONL
// event log, used for out-of-band inspection. Live sequencer state never
// depends on it.
package session

import "time"

// EventType identifies the kind of session event.
type EventType string

const (
	EventSessionStart    EventType = "session_start"
	EventSessionComplete EventType = "session_complete"
	EventStepStart       EventType = "step_start"
	EventStepComplete    EventType = "step_complete"
	EventError           EventType = "error"
)

// Event is a single timestamped entry in a session log.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Type      EventType      `json:"type"`
	Data      map[string]any `json:"data,omitempty"`
}

// NewEvent creates an event with the current timestamp.
func NewEvent(t EventType, data map[string]any) Event {
	return Event{
		Timestamp: time.Now().UTC(),
		Type:      t,
		Data:      data,
	}
}

// StartData returns event data for a session start.
func StartData(sessionID, scriptName, model string, totalSteps int) map[string]any {
	return map[string]any{
		"session_id":  sessionID,
		"script":      scriptName,
		"model":       model,
		"total_steps": totalSteps,
	}
}

// StepStartData returns event data for the start of a scripted step.
func StepStartData(stepIndex, totalSteps int, hasInstruction bool) map[string]any {
	return map[string]any{
		"step":            stepIndex,
		"total_steps":     totalSteps,
		"has_instruction": hasInstruction,
	}
}

// StepCompleteData returns event data for a completed step.
func StepCompleteData(stepIndex, replyChars int, durationMs int64) map[string]any {
	return map[string]any{
		"step":        stepIndex,
		"reply_chars": replyChars,
		"duration_ms": durationMs,
	}
}

// CompleteData returns event data for a finished session.
func CompleteData(stepsCompleted, turns int, errored bool) map[string]any {
	return map[string]any{
		"steps_completed": stepsCompleted,
		"turns":           turns,
		"errored":         errored,
	}
}

// ErrorData returns event data for an error.
func ErrorData(message string, stepIndex int) map[string]any {
	return map[string]any{
		"message": message,
		"step":    stepIndex,
	}
}
