// Package net wires the HTTP surface: websocket entry, health, and the
// monitoring/result endpoints.
package net

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"slimepit/server/internal/net/ws"
	"slimepit/server/internal/room"
)

// HandlerConfig bundles what the HTTP layer needs.
type HandlerConfig struct {
	Manager *room.Manager
	Logger  *zap.SugaredLogger
}

// NewHandler builds the server mux.
func NewHandler(cfg HandlerConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	mux := http.NewServeMux()
	mux.Handle("/ws", ws.NewHandler(cfg.Manager, log))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/results", handleResults(cfg.Manager))
	mux.HandleFunc("/diagnostics", handleDiagnostics(cfg.Manager))
	mux.HandleFunc("/metrics", handleMetrics(cfg.Manager))
	return mux
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

// handleResults serves GET /results?room=<id>: the per-user score
// summary, available until the room's ledger is disposed.
func handleResults(manager *room.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := r.URL.Query().Get("room")
		if roomID == "" {
			http.Error(w, "missing room query", http.StatusBadRequest)
			return
		}
		summary, ok := manager.Results().Summary(roomID)
		if !ok {
			http.Error(w, "unknown room", http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]any{"room": roomID, "results": summary})
	}
}

// handleDiagnostics serves GET /diagnostics?room=<id>: per-session
// liveness and ack state.
func handleDiagnostics(manager *room.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := r.URL.Query().Get("room")
		if roomID == "" {
			http.Error(w, "missing room query", http.StatusBadRequest)
			return
		}
		rm, ok := manager.Get(roomID)
		if !ok {
			http.Error(w, "unknown room", http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]any{"room": roomID, "sessions": rm.Diagnostics()})
	}
}

// handleMetrics serves GET /metrics?room=<id>.
func handleMetrics(manager *room.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := r.URL.Query().Get("room")
		if roomID == "" {
			http.Error(w, "missing room query", http.StatusBadRequest)
			return
		}
		rm, ok := manager.Get(roomID)
		if !ok {
			http.Error(w, "unknown room", http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]any{"room": roomID, "metrics": rm.Metrics().Snapshot()})
	}
}
