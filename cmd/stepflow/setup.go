package main

import (
	"fmt"
	"log/slog"

	"github.com/rainbowcity/stepflow/internal/chat"
	"github.com/rainbowcity/stepflow/internal/config"
	"github.com/rainbowcity/stepflow/internal/runtime"
	"github.com/rainbowcity/stepflow/internal/script"
	"github.com/rainbowcity/stepflow/internal/session"
	"github.com/rainbowcity/stepflow/internal/store"
)

// dialogue bundles everything a command needs to drive one session.
type dialogue struct {
	script   *script.Script
	runtime  *runtime.Runtime
	session  *runtime.Session
	store    store.Store
	recorder session.Recorder
	model    string
}

// close releases the store and the event log.
func (d *dialogue) close() {
	if err := d.recorder.Close(); err != nil {
		slog.Warn("closing session log", "error", err)
	}
	if err := d.store.Close(); err != nil {
		slog.Warn("closing store", "error", err)
	}
}

// setupDialogue wires script, client, store, and event log from config and
// flags. Missing credentials degrade the affected collaborator instead of
// failing here.
func setupDialogue(cfg config.Config, scriptPath, sessionID string, useMock bool) (*dialogue, error) {
	sc := script.Default()
	if scriptPath != "" {
		loaded, err := script.Load(scriptPath)
		if err != nil {
			return nil, fmt.Errorf("loading script: %w", err)
		}
		sc = loaded
	}

	var client chat.Client
	if useMock {
		client = &chat.MockClient{}
	} else {
		if !cfg.ModelConfigured() {
			slog.Warn("OPENAI_API_KEY not set; model calls will fail")
		}
		client = chat.NewOpenAIClient(chat.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.Model,
		})
	}

	var st store.Store = store.Disabled{}
	if cfg.PersistenceConfigured() {
		db, err := store.OpenSQLite(cfg.DBPath, nil)
		if err != nil {
			// Best-effort persistence: report and continue without it.
			slog.Warn("store unavailable, continuing without persistence", "path", cfg.DBPath, "error", err)
		} else {
			st = db
		}
	} else {
		slog.Debug("STEPFLOW_DB not set; turns will not be persisted")
	}

	sess := runtime.NewSession(sessionID)

	var rec session.Recorder = session.NopRecorder{}
	if cfg.LogDir != "" {
		jl, err := session.NewJSONLRecorder(session.LogPath(cfg.LogDir, sess.ID()))
		if err != nil {
			slog.Warn("session log unavailable", "error", err)
		} else {
			rec = jl
		}
	}

	rt := runtime.New(sc, client,
		runtime.WithStore(st),
		runtime.WithRecorder(rec),
	)

	if err := rec.Record(session.NewEvent(session.EventSessionStart,
		session.StartData(sess.ID(), sc.Name, cfg.Model, sc.Len()))); err != nil {
		slog.Warn("recording session start", "error", err)
	}

	return &dialogue{
		script:   sc,
		runtime:  rt,
		session:  sess,
		store:    st,
		recorder: rec,
		model:    cfg.Model,
	}, nil
}
