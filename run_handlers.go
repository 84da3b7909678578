package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/ocupoint/linksim/pkg/dfe"
	"github.com/ocupoint/linksim/pkg/pipeline"
)

// handleRunStart triggers one pipeline.Run in the background and broadcasts
// its result on completion: method check, busy guard, apply config, launch
// background work, respond.
func handleRunStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	override := serverState.snapshotConfig()
	// An empty body is a valid "run with current config" request; only a
	// non-empty, malformed body is an error.
	if err := json.NewDecoder(r.Body).Decode(&override); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := triggerRun(override); err != nil {
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": err.Error()})
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
}

// triggerRun validates cfg, marks a run in progress, and launches it in the
// background. It is the shared entry point for the HTTP and WebSocket
// triggers.
func triggerRun(cfg pipeline.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	serverState.mu.Lock()
	if serverState.Running {
		serverState.mu.Unlock()
		return fmt.Errorf("a run is already in progress")
	}
	serverState.Config = cfg
	serverState.Running = true
	serverState.LastError = ""
	addr := serverState.DeviceAddr
	serverState.mu.Unlock()

	go broadcastJSON(map[string]interface{}{"type": "run_status", "running": true})
	go performRun(cfg, addr)
	return nil
}

// performRun executes one pipeline pass off the request goroutine and
// publishes the outcome into serverState, broadcasting a completion event.
func performRun(cfg pipeline.Config, remoteAddr string) {
	var runner dfe.Runner
	if remoteAddr != "" {
		runner = dfe.NewRemoteClient(remoteAddr, cfg.DFEConfig(cfg.DerivedTiming()))
	}

	result, err := pipeline.Run(cfg, runner)

	serverState.mu.Lock()
	serverState.Running = false
	serverState.LastRunAt = time.Now()
	if err != nil {
		serverState.LastError = err.Error()
		serverState.mu.Unlock()
		log.Printf("run failed: %v", err)
		go broadcastJSON(map[string]interface{}{
			"type":    "run_status",
			"running": false,
			"error":   err.Error(),
		})
		return
	}
	serverState.Result = result
	serverState.mu.Unlock()

	go broadcastJSON(map[string]interface{}{
		"type":    "run_status",
		"running": false,
		"run_id":  result.RunID,
	})
}

// handleRunStatus reports whether a run is in progress and the outcome of
// the last one.
func handleRunStatus(w http.ResponseWriter, r *http.Request) {
	serverState.mu.RLock()
	defer serverState.mu.RUnlock()

	resp := map[string]interface{}{
		"running":     serverState.Running,
		"last_run_at": serverState.LastRunAt,
		"last_error":  serverState.LastError,
	}
	if serverState.Result != nil {
		resp["run_id"] = serverState.Result.RunID
	}
	json.NewEncoder(w).Encode(resp)
}

// handleRunCancel always reports failure: cancellation mid-run is not
// supported, a run is a single synchronous pipeline.Run call.
func handleRunCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	http.Error(w, "run cancellation is not supported", http.StatusNotImplemented)
}
