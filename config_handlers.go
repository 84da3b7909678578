package main

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/ocupoint/linksim/pkg/pipeline"
)

// handleConfigGet returns the configuration the next run will use.
func handleConfigGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	json.NewEncoder(w).Encode(serverState.snapshotConfig())
}

// handleConfigUpdate merges the posted fields into the next run's Config and
// broadcasts the resulting configuration to connected clients, following the
// method-check -> decode -> validate -> apply -> respond -> broadcast shape
// the per-register hardware handlers used.
func handleConfigUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	serverState.mu.RLock()
	next := serverState.Config
	serverState.mu.RUnlock()

	if err := json.NewDecoder(r.Body).Decode(&next); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := next.Validate(); err != nil {
		log.Printf("rejected config update: %v", err)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	serverState.mu.Lock()
	serverState.Config = next
	serverState.mu.Unlock()

	json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "config": next})
	go broadcastJSON(map[string]interface{}{"type": "config_update", "config": next})
}

// handleConfigReset restores the DefaultConfig scenario.
func handleConfigReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	def := pipeline.DefaultConfig()
	serverState.mu.Lock()
	serverState.Config = def
	serverState.mu.Unlock()

	json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "config": def})
	go broadcastJSON(map[string]interface{}{"type": "config_update", "config": def})
}
