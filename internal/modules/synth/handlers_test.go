package synth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/quantum-synth/internal/events"
	"github.com/aristath/quantum-synth/internal/modules/quantum"
)

func newTestHandler(t *testing.T, withRepo bool) (*Handler, *chi.Mux) {
	t.Helper()

	register, err := quantum.NewRegister(3, quantum.NewCategoricalSampler(42), zerolog.Nop())
	require.NoError(t, err)

	var repo *Repository
	if withRepo {
		repo = NewRepository(setupTestDB(t), zerolog.Nop())
	}

	service, err := NewService(testConfig(), register, repo, events.NewManager(zerolog.Nop()), zerolog.Nop())
	require.NoError(t, err)

	handler := NewHandler(service, repo, zerolog.Nop())

	router := chi.NewRouter()
	router.Post("/api/circuit/hadamard", handler.HandleApplyHadamard)
	router.Post("/api/circuit/pauli-x", handler.HandleApplyPauliX)
	router.Post("/api/circuit/cnot", handler.HandleApplyCNOT)
	router.Post("/api/circuit/reset", handler.HandleReset)
	router.Post("/api/circuit/demo/{name}", handler.HandleLoadDemo)
	router.Get("/api/circuit", handler.HandleGetCircuit)
	router.Get("/api/circuit/gates", handler.HandleGetGates)
	router.Get("/api/circuit/demos", handler.HandleGetDemos)
	router.Get("/api/probabilities", handler.HandleGetProbabilities)
	router.Get("/api/tracks", handler.HandleGetTracks)
	router.Get("/api/audio", handler.HandleGetAudio)
	router.Get("/api/audio/base64", handler.HandleGetAudioBase64)
	router.Get("/api/events", handler.HandleGetEvents)
	return handler, router
}

func doRequest(router *chi.Mux, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleApplyHadamard(t *testing.T) {
	_, router := newTestHandler(t, false)

	w := doRequest(router, "POST", "/api/circuit/hadamard", `{"qubit": 0}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var result GateResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "h", result.GateType)
	assert.Equal(t, []int{0}, result.AffectedQubits)
	assert.Equal(t, 1, result.TrackCount)
}

func TestHandleApplyHadamard_InvalidBody(t *testing.T) {
	_, router := newTestHandler(t, false)

	w := doRequest(router, "POST", "/api/circuit/hadamard", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleApplyHadamard_InvalidQubit(t *testing.T) {
	_, router := newTestHandler(t, false)

	w := doRequest(router, "POST", "/api/circuit/hadamard", `{"qubit": 99}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "qubit")
}

func TestHandleApplyCNOT_EqualQubits(t *testing.T) {
	_, router := newTestHandler(t, false)

	w := doRequest(router, "POST", "/api/circuit/cnot", `{"control": 1, "target": 1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleApplyCNOT(t *testing.T) {
	_, router := newTestHandler(t, false)

	w := doRequest(router, "POST", "/api/circuit/cnot", `{"control": 0, "target": 1}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var result GateResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "cx", result.GateType)
	assert.Equal(t, []int{0, 1}, result.AffectedQubits)
}

func TestHandleReset(t *testing.T) {
	_, router := newTestHandler(t, false)

	doRequest(router, "POST", "/api/circuit/hadamard", `{"qubit": 0}`)
	w := doRequest(router, "POST", "/api/circuit/reset", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, "GET", "/api/circuit/gates", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestHandleLoadDemo(t *testing.T) {
	_, router := newTestHandler(t, false)

	w := doRequest(router, "POST", "/api/circuit/demo/superposition", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "superposition", resp["demo"])
}

func TestHandleLoadDemo_Unknown(t *testing.T) {
	_, router := newTestHandler(t, false)

	w := doRequest(router, "POST", "/api/circuit/demo/nonsense", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleGetCircuit(t *testing.T) {
	_, router := newTestHandler(t, false)

	doRequest(router, "POST", "/api/circuit/hadamard", `{"qubit": 0}`)
	w := doRequest(router, "GET", "/api/circuit", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var info CircuitInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, 3, info.NumQubits)
	assert.Equal(t, 1, info.GateCount)
	assert.Equal(t, 220.0, info.QubitFrequencies[0])
}

func TestHandleGetDemos(t *testing.T) {
	_, router := newTestHandler(t, false)

	w := doRequest(router, "GET", "/api/circuit/demos", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var names []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &names))
	assert.Contains(t, names, "entanglement")
}

func TestHandleGetProbabilities(t *testing.T) {
	_, router := newTestHandler(t, false)

	doRequest(router, "POST", "/api/circuit/pauli-x", `{"qubit": 2}`)
	w := doRequest(router, "GET", "/api/probabilities", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var probs map[string]float64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &probs))
	assert.Equal(t, 1.0, probs["2"])
}

func TestHandleGetTracks(t *testing.T) {
	_, router := newTestHandler(t, false)

	doRequest(router, "POST", "/api/circuit/hadamard", `{"qubit": 1}`)
	w := doRequest(router, "GET", "/api/tracks", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var tracks []TrackSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tracks))
	require.Len(t, tracks, 1)
	assert.Equal(t, 1, tracks[0].QubitID)
	assert.Equal(t, 330.0, tracks[0].Frequency)
}

func TestHandleGetAudio(t *testing.T) {
	_, router := newTestHandler(t, false)

	w := doRequest(router, "GET", "/api/audio", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "audio/wav", w.Header().Get("Content-Type"))
	assert.Empty(t, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "RIFF", w.Body.String()[0:4])
}

func TestHandleGetAudio_Download(t *testing.T) {
	_, router := newTestHandler(t, false)

	w := doRequest(router, "GET", "/api/audio?download=1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "quantum_synth_")
}

func TestHandleGetAudioBase64(t *testing.T) {
	_, router := newTestHandler(t, false)

	w := doRequest(router, "GET", "/api/audio/base64", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "wav", resp["format"])
	assert.Equal(t, float64(8000), resp["sample_rate"])
	assert.NotEmpty(t, resp["audio_base64"])
}

func TestHandleGetEvents_FromRepo(t *testing.T) {
	_, router := newTestHandler(t, true)

	doRequest(router, "POST", "/api/circuit/hadamard", `{"qubit": 0}`)
	doRequest(router, "POST", "/api/circuit/pauli-x", `{"qubit": 1}`)

	w := doRequest(router, "GET", "/api/events?limit=1", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var eventList []SynthesisEvent
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &eventList))
	require.Len(t, eventList, 1)
	assert.Equal(t, "x", eventList[0].GateType)
}

func TestHandleGetEvents_InMemoryFallback(t *testing.T) {
	_, router := newTestHandler(t, false)

	doRequest(router, "POST", "/api/circuit/hadamard", `{"qubit": 0}`)

	w := doRequest(router, "GET", "/api/events", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var eventList []SynthesisEvent
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &eventList))
	require.Len(t, eventList, 1)
	assert.Equal(t, "h", eventList[0].GateType)
}

func TestHandleGetEvents_InvalidLimit(t *testing.T) {
	_, router := newTestHandler(t, false)

	for _, q := range []string{"?limit=0", "?limit=-3", "?limit=9999", "?limit=abc"} {
		w := doRequest(router, "GET", "/api/events"+q, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, "query %s", q)
	}
}
