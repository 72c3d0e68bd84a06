package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"tripcraft/itinerary"
)

type stubSaver struct {
	calls int
	last  itinerary.TripPayload
	id    string
	err   error
}

func (s *stubSaver) SaveTrip(ctx context.Context, p itinerary.TripPayload) (string, error) {
	s.calls++
	s.last = p
	return s.id, s.err
}

func newBuilderRouter(t *testing.T, saver itinerary.TripSaver) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewBuilderHandler(itinerary.NewManager(t.TempDir()), saver)
	h.Register(r.Group("/api/builder"))
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, session, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(sessionHeader, session)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) builderView {
	t.Helper()
	var v builderView
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response: %v\nbody: %s", err, w.Body.String())
	}
	return v
}

func TestBuilderWizardFlow(t *testing.T) {
	saver := &stubSaver{id: "trip-99"}
	r := newBuilderRouter(t, saver)
	session := "wizard-flow-session"

	w := doJSON(t, r, "POST", "/api/builder/setup", session,
		`{"destination": "Tokyo", "budget": 50000, "start_date": "2026-09-10", "end_date": "2026-09-15"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("setup status = %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, "POST", "/api/builder/selections", session,
		`{"category": "hotels", "item": {"id": "h1", "title": "Park Hotel", "price": 20000, "rating": 4.5}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("add hotel status = %d: %s", w.Code, w.Body.String())
	}
	view := decodeView(t, w)
	if view.TotalCost != 20000 {
		t.Errorf("TotalCost = %.2f; want 20000", view.TotalCost)
	}
	if len(view.CompletedSteps) != 1 || view.CompletedSteps[0] != "hotels" {
		t.Errorf("CompletedSteps = %v; want [hotels]", view.CompletedSteps)
	}

	// Price given as a currency string must be parsed, not rejected
	w = doJSON(t, r, "POST", "/api/builder/selections", session,
		`{"category": "activities", "item": {"id": "a1", "title": "Tour", "price": "$10,000"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("add activity status = %d: %s", w.Code, w.Body.String())
	}
	view = decodeView(t, w)
	if view.TotalCost != 30000 {
		t.Errorf("TotalCost = %.2f; want 30000", view.TotalCost)
	}
	if view.Budget.OverBudget {
		t.Error("should not be over budget at 30000/50000")
	}
	if view.Budget.Remaining != 20000 {
		t.Errorf("Remaining = %.2f; want 20000", view.Budget.Remaining)
	}

	w = doJSON(t, r, "POST", "/api/builder/confirm", session, "")
	if w.Code != http.StatusOK {
		t.Fatalf("confirm status = %d: %s", w.Code, w.Body.String())
	}
	if saver.calls != 1 {
		t.Fatalf("saver calls = %d; want 1", saver.calls)
	}
	if saver.last.Destination != "Tokyo" || saver.last.TotalSpent != 30000 {
		t.Errorf("payload = %+v", saver.last)
	}
	if !strings.Contains(w.Body.String(), "trip-99") {
		t.Errorf("response missing trip id: %s", w.Body.String())
	}
}

func TestConfirmBlockedOverBudget(t *testing.T) {
	saver := &stubSaver{id: "trip-1"}
	r := newBuilderRouter(t, saver)
	session := "over-budget-session"

	doJSON(t, r, "POST", "/api/builder/setup", session,
		`{"destination": "Tokyo", "budget": 1000, "start_date": "2026-09-10", "end_date": "2026-09-15"}`)
	doJSON(t, r, "POST", "/api/builder/selections", session,
		`{"category": "travel", "item": {"id": "f1", "title": "Flight", "price": 2500}}`)

	w := doJSON(t, r, "POST", "/api/builder/confirm", session, "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("confirm status = %d; want 422: %s", w.Code, w.Body.String())
	}
	if saver.calls != 0 {
		t.Errorf("saver called %d times despite over budget", saver.calls)
	}
}

func TestConfirmRequiresSetupStep(t *testing.T) {
	saver := &stubSaver{}
	r := newBuilderRouter(t, saver)

	w := doJSON(t, r, "POST", "/api/builder/confirm", "no-setup-session", "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("confirm status = %d; want 422", w.Code)
	}
	if saver.calls != 0 {
		t.Error("saver called without a trip setup")
	}
}

func TestSaverFailureSurfacesAndKeepsState(t *testing.T) {
	saver := &stubSaver{err: errors.New("persistence down")}
	r := newBuilderRouter(t, saver)
	session := "failing-saver-session"

	doJSON(t, r, "POST", "/api/builder/setup", session,
		`{"destination": "Rome", "budget": 5000, "start_date": "2026-05-01", "end_date": "2026-05-04"}`)
	doJSON(t, r, "POST", "/api/builder/selections", session,
		`{"category": "dining", "item": {"id": "d1", "title": "Trattoria", "price": 80}}`)
	before := decodeView(t, doJSON(t, r, "GET", "/api/builder", session, ""))

	w := doJSON(t, r, "POST", "/api/builder/confirm", session, "")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("confirm status = %d; want 502: %s", w.Code, w.Body.String())
	}

	after := decodeView(t, doJSON(t, r, "GET", "/api/builder", session, ""))
	beforeJSON, _ := json.Marshal(before)
	afterJSON, _ := json.Marshal(after)
	if string(beforeJSON) != string(afterJSON) {
		t.Errorf("builder state changed by failed confirm:\nbefore: %s\nafter:  %s", beforeJSON, afterJSON)
	}
}

func TestValidationRejectedBeforeMutation(t *testing.T) {
	r := newBuilderRouter(t, &stubSaver{})
	session := "validation-session"

	cases := []struct {
		name, path, body string
	}{
		{"negative budget", "/api/builder/setup", `{"destination": "Rome", "budget": -5, "start_date": "2026-05-01", "end_date": "2026-05-04"}`},
		{"inverted dates", "/api/builder/setup", `{"destination": "Rome", "budget": 100, "start_date": "2026-05-04", "end_date": "2026-05-01"}`},
		{"bad date format", "/api/builder/setup", `{"destination": "Rome", "budget": 100, "start_date": "01/05/2026", "end_date": "2026-05-04"}`},
		{"unknown category", "/api/builder/selections", `{"category": "spa", "item": {"id": "x", "title": "X", "price": 10}}`},
		{"unparseable price", "/api/builder/selections", `{"category": "dining", "item": {"id": "x", "title": "X", "price": "call for price"}}`},
		{"negative price", "/api/builder/selections", `{"category": "dining", "item": {"id": "x", "title": "X", "price": -3}}`},
	}
	for _, tc := range cases {
		w := doJSON(t, r, "POST", tc.path, session, tc.body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d; want 400: %s", tc.name, w.Code, w.Body.String())
		}
	}

	view := decodeView(t, doJSON(t, r, "GET", "/api/builder", session, ""))
	if view.Setup != nil || view.TotalCost != 0 {
		t.Errorf("rejected requests mutated state: %+v", view)
	}
}

func TestRemoveSelectionUnmarksStep(t *testing.T) {
	r := newBuilderRouter(t, &stubSaver{})
	session := "remove-session"

	w := doJSON(t, r, "POST", "/api/builder/selections", session,
		`{"category": "travel", "item": {"id": "f1", "title": "Flight", "price": 300}}`)
	view := decodeView(t, w)
	id := view.Travel[0].ID

	w = doJSON(t, r, "DELETE", "/api/builder/selections/travel/"+id, session, "")
	view = decodeView(t, w)
	if len(view.Travel) != 0 {
		t.Errorf("travel list not empty after remove: %+v", view.Travel)
	}
	if len(view.CompletedSteps) != 0 {
		t.Errorf("travel step still marked: %v", view.CompletedSteps)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	r := newBuilderRouter(t, &stubSaver{})

	doJSON(t, r, "POST", "/api/builder/selections", "session-one",
		`{"category": "hotels", "item": {"id": "h1", "title": "Hotel", "price": 100}}`)

	view := decodeView(t, doJSON(t, r, "GET", "/api/builder", "session-two", ""))
	if view.TotalCost != 0 {
		t.Errorf("state leaked between sessions: %+v", view)
	}
}

func TestMissingSessionIDGetsOneAssigned(t *testing.T) {
	r := newBuilderRouter(t, &stubSaver{})

	w := doJSON(t, r, "GET", "/api/builder", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get(sessionHeader) == "" {
		t.Error("no session ID assigned to a fresh client")
	}
}

func TestResetReturnsEmptyState(t *testing.T) {
	r := newBuilderRouter(t, &stubSaver{})
	session := "reset-session"

	doJSON(t, r, "POST", "/api/builder/setup", session,
		`{"destination": "Rome", "budget": 100, "start_date": "2026-05-01", "end_date": "2026-05-04"}`)
	genBefore := decodeView(t, doJSON(t, r, "GET", "/api/builder", session, "")).Generation

	view := decodeView(t, doJSON(t, r, "POST", "/api/builder/reset", session, ""))
	if view.Setup != nil || view.TotalCost != 0 {
		t.Errorf("state not empty after reset: %+v", view)
	}
	if view.Generation <= genBefore {
		t.Errorf("generation %d not bumped past %d by reset", view.Generation, genBefore)
	}
}
