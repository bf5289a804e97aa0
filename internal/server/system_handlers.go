package server

import (
	"encoding/json"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/quantum-synth/internal/modules/synth"
)

// SystemHandlers handles system-wide monitoring endpoints
type SystemHandlers struct {
	log     zerolog.Logger
	dbPath  string
	service *synth.Service
	repo    *synth.Repository
	started time.Time
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(service *synth.Service, repo *synth.Repository, dbPath string, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		log:     log.With().Str("component", "system_handlers").Logger(),
		dbPath:  dbPath,
		service: service,
		repo:    repo,
		started: time.Now(),
	}
}

// SystemStatusResponse represents the system status response
type SystemStatusResponse struct {
	Status        string      `json:"status"`
	UptimeSeconds float64     `json:"uptime_seconds"`
	CPUPercent    float64     `json:"cpu_percent"`
	RAMPercent    float64     `json:"ram_percent"`
	Goroutines    int         `json:"goroutines"`
	EventCount    int         `json:"event_count"`
	Session       SessionInfo `json:"session"`
}

// SessionInfo describes the live synthesis session
type SessionInfo struct {
	NumQubits  int `json:"num_qubits"`
	SampleRate int `json:"sample_rate"`
	GateCount  int `json:"gate_count"`
	Depth      int `json:"circuit_depth"`
	TrackCount int `json:"track_count"`
}

// DatabaseStatsResponse represents event database statistics
type DatabaseStatsResponse struct {
	Path        string  `json:"path"`
	SizeMB      float64 `json:"size_mb"`
	EventCount  int     `json:"event_count"`
	LastChecked string  `json:"last_checked"`
}

// HandleSystemStatus returns host load plus a snapshot of the session.
// GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	cpuPercent := 0.0
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		cpuPercent = percents[0]
	} else if err != nil {
		h.log.Warn().Err(err).Msg("Failed to read CPU usage")
	}

	ramPercent := 0.0
	if vm, err := mem.VirtualMemory(); err == nil {
		ramPercent = vm.UsedPercent
	} else {
		h.log.Warn().Err(err).Msg("Failed to read memory usage")
	}

	eventCount := 0
	if h.repo != nil {
		if count, err := h.repo.Count(); err == nil {
			eventCount = count
		} else {
			h.log.Warn().Err(err).Msg("Failed to count events")
		}
	}

	info := h.service.CircuitInfo()
	response := SystemStatusResponse{
		Status:        "running",
		UptimeSeconds: time.Since(h.started).Seconds(),
		CPUPercent:    cpuPercent,
		RAMPercent:    ramPercent,
		Goroutines:    runtime.NumGoroutine(),
		EventCount:    eventCount,
		Session: SessionInfo{
			NumQubits:  info.NumQubits,
			SampleRate: h.service.SampleRate(),
			GateCount:  info.GateCount,
			Depth:      info.CircuitDepth,
			TrackCount: len(h.service.TrackSummaries()),
		},
	}

	h.writeJSON(w, response)
}

// HandleDatabaseStats returns event database statistics
// GET /api/system/database
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting database stats")

	sizeMB := 0.0
	if info, err := os.Stat(h.dbPath); err == nil {
		sizeMB = float64(info.Size()) / 1024 / 1024
	}

	eventCount := 0
	if h.repo != nil {
		if count, err := h.repo.Count(); err == nil {
			eventCount = count
		}
	}

	response := DatabaseStatsResponse{
		Path:        h.dbPath,
		SizeMB:      sizeMB,
		EventCount:  eventCount,
		LastChecked: time.Now().Format(time.RFC3339),
	}

	h.writeJSON(w, response)
}

// writeJSON writes a JSON response
func (h *SystemHandlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
