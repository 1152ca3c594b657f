package consultation

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pharmacy-consult-sim/internal/simulation"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	svc, _ := newTestService(t, nil)
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		RegisterRoutes(r, NewHandler(svc, zap.NewNop()))
	})
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) ConsultationView {
	t.Helper()
	var v ConsultationView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func createConsultation(t *testing.T, h http.Handler, body any) ConsultationView {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/consultation", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeView(t, rec)
}

func TestHandler_FullConsultation(t *testing.T) {
	h := newTestRouter(t)
	trainee := uuid.New()
	v := createConsultation(t, h, CreateConsultationRequest{TraineeID: trainee.String()})
	assert.Equal(t, trainee, v.TraineeID)
	assert.Equal(t, simulation.PhaseStart, v.Phase)

	base := "/api/consultation/" + v.ID.String()
	for _, a := range []simulation.ActionID{
		simulation.ActionBegin,
		simulation.AskAction(simulation.QuestionCurrentMeds),
		simulation.ActionGatherMore,
		simulation.AskAction(simulation.QuestionMedicalHistory),
		simulation.ActionRecommendDrug,
	} {
		rec := doJSON(t, h, http.MethodPost, base+"/actions", ActionRequest{Action: a})
		require.Equal(t, http.StatusOK, rec.Code, "action %s: %s", a, rec.Body.String())
	}

	rec := doJSON(t, h, http.MethodPost, base+"/actions", ActionRequest{Action: simulation.ActionAcetaminophen, Payload: "Paracetamol 500mg"})
	require.Equal(t, http.StatusOK, rec.Code)
	v = decodeView(t, rec)
	assert.True(t, v.Terminated)
	assert.Equal(t, 125, v.Score)
	require.NotNil(t, v.Outcome)
	assert.Equal(t, simulation.SeverityOptimal, v.Outcome.Severity)
	assert.Equal(t, simulation.GradeExcellent, v.Grade)

	rec = doJSON(t, h, http.MethodGet, base+"/history?kind=recommendation", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []simulation.HistoryEntry
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Paracetamol 500mg", entries[0].Text)

	rec = doJSON(t, h, http.MethodPost, base+"/conclude", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, simulation.PhaseSummary, decodeView(t, rec).Phase)

	rec = doJSON(t, h, http.MethodPost, base+"/restart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	v = decodeView(t, rec)
	assert.Equal(t, simulation.PhasePresentation, v.Phase)
	assert.Equal(t, 2, v.Playthrough)

	rec = doJSON(t, h, http.MethodPost, base+"/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	v = decodeView(t, rec)
	assert.Equal(t, simulation.PhaseStart, v.Phase)
	assert.Equal(t, 1, v.Playthrough)
}

func TestHandler_ResponseNeverLeaksHiddenConditions(t *testing.T) {
	h := newTestRouter(t)
	rec := doJSON(t, h, http.MethodPost, "/api/consultation", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"hidden"`)
	assert.NotContains(t, rec.Body.String(), `"anticoagulant"`)
}

func TestHandler_InvalidActionIsConflict(t *testing.T) {
	h := newTestRouter(t)
	v := createConsultation(t, h, nil)

	rec := doJSON(t, h, http.MethodPost, "/api/consultation/"+v.ID.String()+"/actions", ActionRequest{Action: simulation.ActionNSAID})
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, simulation.PhaseStart, resp.Phase)
	assert.Equal(t, []simulation.ActionID{simulation.ActionBegin}, resp.Eligible)

	rec = doJSON(t, h, http.MethodGet, "/api/consultation/"+v.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, simulation.PhaseStart, decodeView(t, rec).Phase)
}

func TestHandler_ForcedHiddenConditions(t *testing.T) {
	h := newTestRouter(t)
	v := createConsultation(t, h, CreateConsultationRequest{Hidden: &simulation.HiddenConditions{}})

	base := "/api/consultation/" + v.ID.String()
	for _, a := range []simulation.ActionID{simulation.ActionBegin, simulation.AskAction(simulation.QuestionCurrentMeds)} {
		rec := doJSON(t, h, http.MethodPost, base+"/actions", ActionRequest{Action: a})
		require.Equal(t, http.StatusOK, rec.Code)
		v = decodeView(t, rec)
	}
	assert.Equal(t, simulation.StartingScore, v.Score)
	assert.False(t, v.Discovered.AnticoagulantRevealed)
}

func TestHandler_BadRequests(t *testing.T) {
	h := newTestRouter(t)
	v := createConsultation(t, h, nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"malformed id", http.MethodGet, "/api/consultation/not-a-uuid", "", http.StatusBadRequest},
		{"unknown consultation", http.MethodGet, "/api/consultation/" + uuid.NewString(), "", http.StatusNotFound},
		{"missing action", http.MethodPost, "/api/consultation/" + v.ID.String() + "/actions", `{}`, http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/api/consultation/" + v.ID.String() + "/actions", `{`, http.StatusBadRequest},
		{"malformed create", http.MethodPost, "/api/consultation", `[`, http.StatusBadRequest},
		{"conclude too early", http.MethodPost, "/api/consultation/" + v.ID.String() + "/conclude", "", http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestHandler_Outcomes(t *testing.T) {
	h := newTestRouter(t)
	rec := doJSON(t, h, http.MethodGet, "/api/outcomes", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []simulation.Evaluation
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rows))
	assert.Len(t, rows, 32)
}
