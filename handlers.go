package main

import (
	"net/http"

	"github.com/segmentio/encoding/json"
)

// handleResult returns the last completed run's Result, the pipeline's plot
// sink, as JSON. segmentio/encoding/json is used here rather than
// encoding/json because a Result's waveform slices can run into the tens of
// thousands of float64s per stage.
func handleResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result := serverState.snapshotResult()
	if result == nil {
		http.Error(w, "no run has completed yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// handleHealth is a liveness probe: it never touches serverState's locks so
// it stays responsive even while a run is in flight.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
