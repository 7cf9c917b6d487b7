package web

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"math"
	"net/http"
	"sync"
	"time"
)

// TargetRequest is a commanded hand coordinate.
type TargetRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MoveFunc runs one motion cycle toward the given target.
// It is called from the POST /target handler in a goroutine.
type MoveFunc func(x, y float64) error

// ValidateTarget rejects non-finite coordinates before they reach the
// planner; range checking is the planner's job.
func ValidateTarget(t TargetRequest) error {
	if math.IsNaN(t.X) || math.IsInf(t.X, 0) {
		return fmt.Errorf("x must be finite, got %g", t.X)
	}
	if math.IsNaN(t.Y) || math.IsInf(t.Y, 0) {
		return fmt.Errorf("y must be finite, got %g", t.Y)
	}
	return nil
}

// StateResponse is the current arm pose as reported to clients.
type StateResponse struct {
	Hand      [2]float64 `json:"hand"`
	Elbow     [2]float64 `json:"elbow"`
	Target    [2]float64 `json:"target"`
	Reachable bool       `json:"reachable"`
}

// StateFunc returns the current arm pose.
type StateFunc func() StateResponse

// ArmInfo holds the fixed geometry shown on the jog page.
type ArmInfo struct {
	UpperArmMm float64 `json:"upper_arm_mm"`
	LowerArmMm float64 `json:"lower_arm_mm"`
	ReachMm    float64 `json:"reach_mm"`
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	Broadcaster  *StatusBroadcaster
	Move         MoveFunc
	CurrentState StateFunc
	Info         ArmInfo

	movingMu sync.Mutex
	moving   bool

	staticFS fs.FS
}

// NewHandlers creates handlers with the given dependencies.
// If move is nil, POST /target will return 503 Service Unavailable.
func NewHandlers(broadcaster *StatusBroadcaster, move MoveFunc, state StateFunc, info ArmInfo, staticFS fs.FS) *Handlers {
	return &Handlers{
		Broadcaster:  broadcaster,
		Move:         move,
		CurrentState: state,
		Info:         info,
		staticFS:     staticFS,
	}
}

// HandleInfo returns the fixed arm geometry as JSON.
func (h *Handlers) HandleInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Info)
}

// HandleState returns the current pose as JSON.
func (h *Handlers) HandleState(w http.ResponseWriter, r *http.Request) {
	if h.CurrentState == nil {
		http.Error(w, "state not available", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.CurrentState())
}

// ServeIndex serves the main HTML page (root path only).
func (h *Handlers) ServeIndex(w http.ResponseWriter, r *http.Request) {
	data, err := fs.ReadFile(h.staticFS, "index.html")
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// HandleTarget handles POST /target to command a move.
// A move already in progress returns 409: one motion cycle runs to
// completion before the next target is accepted.
func (h *Handlers) HandleTarget(w http.ResponseWriter, r *http.Request) {
	var target TargetRequest
	if err := json.NewDecoder(r.Body).Decode(&target); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if err := ValidateTarget(target); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if h.Move == nil {
		http.Error(w, "motion not configured", http.StatusServiceUnavailable)
		return
	}

	h.movingMu.Lock()
	if h.moving {
		h.movingMu.Unlock()
		http.Error(w, "move already in progress", http.StatusConflict)
		return
	}
	h.moving = true
	h.movingMu.Unlock()

	// Run in goroutine; clear moving when done
	go func() {
		defer func() {
			h.movingMu.Lock()
			h.moving = false
			h.movingMu.Unlock()
		}()

		if err := h.Move(target.X, target.Y); err != nil {
			h.Broadcaster.Broadcast("error", "Move failed: "+err.Error())
			log.Printf("move failed: %v", err)
		} else {
			h.Broadcaster.Broadcast("info", "Move complete")
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "started"})
}

// HandleStatusStream handles GET /status/stream for SSE.
func (h *Handlers) HandleStatusStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // nginx

	ch, unsub := h.Broadcaster.Subscribe()
	defer unsub()

	// Send initial comment to establish connection
	w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	// Heartbeat while idle
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			w.Write([]byte("data: " + msg + "\n\n"))
			flusher.Flush()

		case <-ticker.C:
			w.Write([]byte(": heartbeat\n\n"))
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
