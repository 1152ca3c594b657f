package consultation

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"pharmacy-consult-sim/internal/simulation"
)

type Handler struct {
	svc    Service
	logger *zap.Logger
}

func NewHandler(svc Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

type CreateConsultationRequest struct {
	TraineeID string `json:"trainee_id"`
	// Hidden forces the patient's undisclosed conditions, for scripted
	// training runs.
	Hidden *simulation.HiddenConditions `json:"hidden,omitempty"`
}

type ActionRequest struct {
	Action  simulation.ActionID `json:"action"`
	Payload string              `json:"payload,omitempty"`
}

type errorResponse struct {
	Error    string                `json:"error"`
	Phase    simulation.Phase      `json:"phase,omitempty"`
	Eligible []simulation.ActionID `json:"eligible_actions,omitempty"`
}

func (h *Handler) CreateConsultation(w http.ResponseWriter, r *http.Request) {
	var req CreateConsultationRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
			return
		}
	}

	tid, err := uuid.Parse(req.TraineeID)
	if err != nil {
		// Anonymous trainees get a fresh id
		tid = uuid.New()
	}

	c, err := h.svc.CreateConsultation(r.Context(), tid, req.Hidden)
	if err != nil {
		h.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, h.svc.View(c))
}

func (h *Handler) GetConsultation(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	c, err := h.svc.GetConsultation(r.Context(), id)
	if err != nil {
		h.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.View(c))
}

func (h *Handler) ApplyAction(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Action == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}
	c, err := h.svc.ApplyAction(r.Context(), id, req.Action, req.Payload)
	h.respond(w, c, err)
}

func (h *Handler) Conclude(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	c, err := h.svc.Conclude(r.Context(), id)
	h.respond(w, c, err)
}

func (h *Handler) Restart(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	c, err := h.svc.Restart(r.Context(), id)
	h.respond(w, c, err)
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	c, err := h.svc.Reset(r.Context(), id)
	h.respond(w, c, err)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	c, err := h.svc.GetConsultation(r.Context(), id)
	if err != nil {
		h.writeError(w, err, nil)
		return
	}
	kind := simulation.EntryKind(r.URL.Query().Get("kind"))
	entries := []simulation.HistoryEntry{}
	if kind == "" {
		for _, e := range c.Session.History.All() {
			entries = append(entries, e)
		}
	} else {
		for e := range c.Session.History.OfKind(kind) {
			entries = append(entries, e)
		}
	}
	writeJSON(w, http.StatusOK, entries)
}

// Outcomes lists every drug and condition combination with its result.
func (h *Handler) Outcomes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, simulation.Matrix())
}

func (h *Handler) respond(w http.ResponseWriter, c *Consultation, err error) {
	if err != nil {
		h.writeError(w, err, c)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.View(c))
}

func (h *Handler) writeError(w http.ResponseWriter, err error, c *Consultation) {
	switch {
	case errors.Is(err, simulation.ErrInvalidAction):
		resp := errorResponse{Error: err.Error()}
		if c != nil && c.Session != nil {
			v := h.svc.View(c)
			resp.Phase = v.Phase
			resp.Eligible = v.Eligible
		}
		writeJSON(w, http.StatusConflict, resp)
	case errors.Is(err, ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		h.logger.Error("consultation request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid consultation id"})
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/consultation", h.CreateConsultation)
	r.Route("/consultation/{id}", func(r chi.Router) {
		r.Get("/", h.GetConsultation)
		r.Post("/actions", h.ApplyAction)
		r.Post("/conclude", h.Conclude)
		r.Post("/restart", h.Restart)
		r.Post("/reset", h.Reset)
		r.Get("/history", h.History)
	})
	r.Get("/outcomes", h.Outcomes)
}
