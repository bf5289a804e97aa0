package synth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/quantum-synth/internal/modules/quantum"
)

// eventViewLimit caps how many history entries one request can pull.
const eventViewLimit = 100

// Handler handles synthesizer HTTP requests.
type Handler struct {
	service *Service
	repo    *Repository
	log     zerolog.Logger
}

// NewHandler creates a synthesizer handler. repo may be nil; the events
// endpoint then serves the in-memory history.
func NewHandler(service *Service, repo *Repository, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		repo:    repo,
		log:     log.With().Str("handler", "synth").Logger(),
	}
}

type singleQubitRequest struct {
	Qubit int `json:"qubit"`
}

type cnotRequest struct {
	Control int `json:"control"`
	Target  int `json:"target"`
}

// HandleApplyHadamard applies H to one qubit.
// POST /api/circuit/hadamard
func (h *Handler) HandleApplyHadamard(w http.ResponseWriter, r *http.Request) {
	var req singleQubitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.ApplyHadamard(req.Qubit)
	if err != nil {
		h.writeGateError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// HandleApplyPauliX applies X to one qubit.
// POST /api/circuit/pauli-x
func (h *Handler) HandleApplyPauliX(w http.ResponseWriter, r *http.Request) {
	var req singleQubitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.ApplyPauliX(req.Qubit)
	if err != nil {
		h.writeGateError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// HandleApplyCNOT applies a controlled-NOT.
// POST /api/circuit/cnot
func (h *Handler) HandleApplyCNOT(w http.ResponseWriter, r *http.Request) {
	var req cnotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.ApplyCNOT(req.Control, req.Target)
	if err != nil {
		h.writeGateError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// HandleReset clears the circuit and track set.
// POST /api/circuit/reset
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.service.Reset()
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// HandleLoadDemo loads a predefined circuit by name.
// POST /api/circuit/demo/{name}
func (h *Handler) HandleLoadDemo(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	result, err := h.service.LoadDemo(name)
	if err != nil {
		if errors.Is(err, ErrUnknownDemo) {
			h.writeError(w, http.StatusNotFound, fmt.Sprintf("Demo %q not found", name))
			return
		}
		h.writeGateError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"demo":   name,
		"result": result,
	})
}

// HandleGetCircuit returns circuit depth, gate count and frequencies.
// GET /api/circuit
func (h *Handler) HandleGetCircuit(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.CircuitInfo())
}

// HandleGetGates returns the ordered gate sequence.
// GET /api/circuit/gates
func (h *Handler) HandleGetGates(w http.ResponseWriter, r *http.Request) {
	gates := h.service.GateSequence()
	if gates == nil {
		gates = []quantum.GateRecord{}
	}
	h.writeJSON(w, http.StatusOK, gates)
}

// HandleGetProbabilities returns the latest per-qubit measurement snapshot.
// GET /api/probabilities
func (h *Handler) HandleGetProbabilities(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.QubitProbabilities())
}

// HandleGetTracks returns summaries of the current track set.
// GET /api/tracks
func (h *Handler) HandleGetTracks(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.TrackSummaries())
}

// HandleGetAudio streams the mixed WAV. ?download=1 sets an attachment name.
// GET /api/audio
func (h *Handler) HandleGetAudio(w http.ResponseWriter, r *http.Request) {
	wav := h.service.WAV()

	w.Header().Set("Content-Type", "audio/wav")
	if r.URL.Query().Get("download") == "1" {
		filename := fmt.Sprintf("quantum_synth_%d.wav", time.Now().Unix())
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(wav)))
	if _, err := w.Write(wav); err != nil {
		h.log.Error().Err(err).Msg("Failed to write WAV response")
	}
}

// HandleGetAudioBase64 returns the mixed WAV as base64 text.
// GET /api/audio/base64
func (h *Handler) HandleGetAudioBase64(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"audio_base64": h.service.AudioBase64(),
		"sample_rate":  h.service.SampleRate(),
		"format":       "wav",
	})
}

// HandleGetEvents returns recent synthesis events, newest first.
// GET /api/events?limit=N
func (h *Handler) HandleGetEvents(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed <= 0 || parsed > eventViewLimit {
			h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid limit, must be 1-%d", eventViewLimit))
			return
		}
		limit = parsed
	}

	if h.repo != nil {
		eventList, err := h.repo.Recent(limit)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to read synthesis events")
			h.writeError(w, http.StatusInternalServerError, "Failed to read events")
			return
		}
		if eventList == nil {
			eventList = []SynthesisEvent{}
		}
		h.writeJSON(w, http.StatusOK, eventList)
		return
	}
	h.writeJSON(w, http.StatusOK, h.service.RecentEvents(limit))
}

// HandleGetDemos lists the available demo circuits.
// GET /api/circuit/demos
func (h *Handler) HandleGetDemos(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, DemoNames())
}

// writeGateError maps argument errors to 400 and everything else to 500.
func (h *Handler) writeGateError(w http.ResponseWriter, err error) {
	if errors.Is(err, quantum.ErrInvalidQubitIndex) || errors.Is(err, quantum.ErrInvalidGateParameters) {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.log.Error().Err(err).Msg("Gate application failed")
	h.writeError(w, http.StatusInternalServerError, err.Error())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
