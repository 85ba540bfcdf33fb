package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"curare-challenge/internal/catalog"
	"curare-challenge/internal/domain"
)

func TestStepHandlerRoundTrip(t *testing.T) {
	handler := NewStepHandler(newTestService(), catalog.ChallengeID)

	first := postStep(t, handler, map[string]any{"advance": true, "timestamp": 1000})
	if first.View.Phase != domain.PhaseQuestion || first.View.Question.ID != "Q1" {
		t.Fatalf("expected Q1, got %+v", first.View)
	}

	state, _ := json.Marshal(first.State)
	second := postStep(t, handler, map[string]any{
		"state":     json.RawMessage(state),
		"advance":   true,
		"timestamp": 61000,
		"release":   "R3",
	})
	if second.State.ID != first.State.ID || second.State.Step != 2 || second.State.Times[0] != 60 {
		t.Fatalf("unexpected state %+v", second.State)
	}

	state, _ = json.Marshal(second.State)
	final := postStep(t, handler, map[string]any{"state": json.RawMessage(state), "end": true})
	if final.View.Phase != domain.PhaseResults || final.Results == nil {
		t.Fatalf("expected results, got %+v", final.View)
	}

	rec := httptest.NewRecorder()
	handler.ServeResults(rec, httptest.NewRequest(http.MethodGet, "/api/results?sessionId="+final.State.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected archived results, got %d: %s", rec.Code, rec.Body.String())
	}
	var archived domain.Results
	if err := json.NewDecoder(rec.Body).Decode(&archived); err != nil {
		t.Fatalf("decode results: %v", err)
	}
	if archived.SessionID != final.State.ID || len(archived.Matches) != 2 {
		t.Fatalf("unexpected archived results %+v", archived)
	}
}

func TestStepHandlerErrors(t *testing.T) {
	handler := NewStepHandler(newTestService(), catalog.ChallengeID)

	rec := httptest.NewRecorder()
	handler.ServeStep(rec, httptest.NewRequest(http.MethodGet, "/api/step", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeStep(rec, httptest.NewRequest(http.MethodPost, "/api/step", bytes.NewBufferString("{")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeStep(rec, httptest.NewRequest(http.MethodPost, "/api/step", bytes.NewBufferString(`{"challengeId":"nope"}`)))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown challenge, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeResults(rec, httptest.NewRequest(http.MethodGet, "/api/results?sessionId=missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown session, got %d", rec.Code)
	}
}

func postStep(t *testing.T, handler *StepHandler, body map[string]any) stepResponse {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	rec := httptest.NewRecorder()
	handler.ServeStep(rec, httptest.NewRequest(http.MethodPost, "/api/step", bytes.NewReader(raw)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp stepResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}
