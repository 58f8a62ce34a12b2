package webserver

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yuin/goldmark"

	stepruntime "github.com/rainbowcity/stepflow/internal/runtime"
	"github.com/rainbowcity/stepflow/internal/store"
)

//go:embed index.html
var indexHTML []byte

type handlers struct {
	cfg Config
	md  goldmark.Markdown
}

// registerRoutes sets up the API and the transcript page on the given mux.
func registerRoutes(mux *http.ServeMux, cfg Config) {
	h := &handlers{cfg: cfg, md: goldmark.New()}

	mux.HandleFunc("GET /api/health", h.health)
	mux.HandleFunc("GET /api/state", h.state)
	mux.HandleFunc("POST /api/advance", h.advance)
	mux.HandleFunc("GET /api/stream", h.stream)
	mux.HandleFunc("GET /api/history", h.history)
	mux.HandleFunc("GET /api/transcript", h.transcript)
	mux.HandleFunc("GET /", h.index)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func (h *handlers) index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML) //nolint:errcheck
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// state returns the live session snapshot, the equivalent of the original
// debug sidebar.
func (h *handlers) state(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.cfg.Session.Snapshot())
}

// advance appends the next scripted operator turn. The reply is then
// fetched via /api/stream.
func (h *handlers) advance(w http.ResponseWriter, r *http.Request) {
	step, err := h.cfg.Runtime.Advance(r.Context(), h.cfg.Session)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, stepruntime.ErrInvalidState) {
			status = http.StatusConflict
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	if step == nil {
		writeJSON(w, http.StatusOK, map[string]any{"finished": true})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"step":        step.Index,
		"total_steps": h.cfg.Runtime.TotalSteps(),
		"prompt":      step.Prompt,
	})
}

// stream forwards model fragments as server-sent events, one event per
// fragment, flushed as produced.
func (h *handlers) stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	writeEvent := func(event string, payload any) {
		b, err := json.Marshal(payload)
		if err != nil {
			return
		}
		if event != "" {
			w.Write([]byte("event: " + event + "\n")) //nolint:errcheck
		}
		w.Write([]byte("data: "))  //nolint:errcheck
		w.Write(b)                 //nolint:errcheck
		w.Write([]byte("\n\n"))    //nolint:errcheck
		flusher.Flush()
	}

	err := h.cfg.Runtime.StreamResponse(r.Context(), h.cfg.Session, func(fragment string) error {
		writeEvent("", map[string]string{"delta": fragment})
		return nil
	})
	if err != nil {
		writeEvent("error", map[string]string{"error": err.Error()})
		return
	}
	writeEvent("done", h.cfg.Session.Snapshot())
}

// history reads persisted turns from the store, independent of live
// session state.
func (h *handlers) history(w http.ResponseWriter, r *http.Request) {
	records, err := h.cfg.Store.History(r.Context(), h.cfg.Session.ID())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrDisabled) {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	if records == nil {
		records = []store.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

type transcriptEntry struct {
	Role string `json:"role"`
	HTML string `json:"html"`
}

// transcript returns the live turns rendered as HTML.
func (h *handlers) transcript(w http.ResponseWriter, _ *http.Request) {
	snapshot := h.cfg.Session.Snapshot()
	entries := make([]transcriptEntry, 0, len(snapshot.Turns))
	for _, turn := range snapshot.Turns {
		var buf bytes.Buffer
		if err := h.md.Convert([]byte(turn.Content), &buf); err != nil {
			h.cfg.Logger.Warn("rendering turn", "position", turn.Position, "error", err)
			continue
		}
		entries = append(entries, transcriptEntry{
			Role: string(turn.Role),
			HTML: buf.String(),
		})
	}
	writeJSON(w, http.StatusOK, entries)
}
