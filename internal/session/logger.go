package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Recorder defines the interface for session event logging.
type Recorder interface {
	Record(event Event) error
	Close() error
}

// JSONLRecorder writes events as newline-delimited JSON.
type JSONLRecorder struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
	path string
}

// NewJSONLRecorder creates a recorder that appends NDJSON to the given
// path. Parent directories are created automatically.
func NewJSONLRecorder(path string) (*JSONLRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating session log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening session log: %w", err)
	}

	return &JSONLRecorder{
		file: f,
		enc:  json.NewEncoder(f),
		path: path,
	}, nil
}

// Record writes a single event as one JSON line.
func (r *JSONLRecorder) Record(event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enc.Encode(event)
}

// Close flushes and closes the underlying file.
func (r *JSONLRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file.Close()
}

// Path returns the file path of the session log.
func (r *JSONLRecorder) Path() string {
	return r.path
}

// NopRecorder discards all events. Used when event logging is disabled.
type NopRecorder struct{}

// Record is a no-op.
func (NopRecorder) Record(Event) error { return nil }

// Close is a no-op.
func (NopRecorder) Close() error { return nil }

// LogPath returns the per-session log path inside dir.
func LogPath(dir, sessionID string) string {
	return filepath.Join(dir, fmt.Sprintf("%s.jsonl", sessionID))
}
