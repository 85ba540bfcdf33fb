package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"curare-challenge/internal/app"
	"curare-challenge/internal/domain"
)

// StepHandler serves clients that keep the session state themselves and
// send it back with every action.
type StepHandler struct {
	service            *app.GameService
	defaultChallengeID string
}

func NewStepHandler(service *app.GameService, defaultChallengeID string) *StepHandler {
	return &StepHandler{service: service, defaultChallengeID: defaultChallengeID}
}

type stepRequest struct {
	ChallengeID string          `json:"challengeId"`
	State       json.RawMessage `json:"state"`
	Advance     bool            `json:"advance"`
	End         bool            `json:"end"`
	actionPayload
}

type stepResponse struct {
	State   domain.Session  `json:"state"`
	View    domain.StepView `json:"view"`
	Results *domain.Results `json:"results,omitempty"`
}

// ServeStep handles POST /api/step.
func (h *StepHandler) ServeStep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req stepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ChallengeID == "" {
		req.ChallengeID = h.defaultChallengeID
	}

	session, err := h.service.AdvanceState(r.Context(), req.ChallengeID, req.State, req.action(req.Advance, req.End))
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := h.service.View(r.Context(), session)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := stepResponse{State: session, View: view}
	if view.Phase == domain.PhaseResults {
		results, err := h.service.ResultsFor(r.Context(), session)
		if err != nil {
			writeError(w, err)
			return
		}
		resp.Results = &results
	}
	writeJSON(w, http.StatusOK, resp)
}

// ServeResults handles GET /api/results?sessionId=.
func (h *StepHandler) ServeResults(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "missing sessionId", http.StatusBadRequest)
		return
	}
	results, err := h.service.Results(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrChallengeNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidChallenge):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		log.Printf("request failed: %v", err)
	}
	writeJSON(w, status, errorPayload{Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
