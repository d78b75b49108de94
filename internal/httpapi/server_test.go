package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MrWong99/modelarena/internal/arena"
	"github.com/MrWong99/modelarena/internal/orchestrate"
	"github.com/MrWong99/modelarena/pkg/provider/chat"
	"github.com/MrWong99/modelarena/pkg/provider/chat/mock"
	"github.com/MrWong99/modelarena/pkg/types"
)

func newTestServer(t *testing.T, adapter *mock.Adapter) *Server {
	t.Helper()
	reg := chat.NewRegistry()
	if adapter != nil {
		if err := reg.Register(adapter); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}
	return New(Config{
		Registry:   reg,
		Comparator: orchestrate.New(reg, nil, 0, 0),
		Sessions:   arena.NewManager(reg, nil, 0),
	})
}

func defaultAdapter() *mock.Adapter {
	return &mock.Adapter{
		Vendor: "mock",
		Catalog: []types.ModelConfig{
			{ID: "m1", DisplayName: "Model One", Provider: "mock"},
			{ID: "m2", DisplayName: "Model Two", Provider: "mock"},
		},
		ResponseFor: map[string]*types.ModelResponse{
			"m1": {Content: "hello from m1", Model: types.ModelConfig{ID: "m1"}},
			"m2": {Content: "hello from m2", Model: types.ModelConfig{ID: "m2"}},
		},
	}
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestListModels(t *testing.T) {
	srv := newTestServer(t, defaultAdapter())
	rec := doJSON(t, srv.Handler(), "GET", "/api/models", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var models []types.ModelConfig
	if err := json.NewDecoder(rec.Body).Decode(&models); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(models) != 2 {
		t.Errorf("catalog has %d models, want 2", len(models))
	}
}

func TestRespond(t *testing.T) {
	adapter := defaultAdapter()
	srv := newTestServer(t, adapter)

	rec := doJSON(t, srv.Handler(), "POST", "/api/models/respond", map[string]any{
		"modelId": "m1",
		"prompt":  "Say hi",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp types.ModelResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Content != "hello from m1" {
		t.Errorf("content = %q", resp.Content)
	}

	last := adapter.LastCall()
	if len(last.Messages) != 1 || last.Messages[0].Role != types.RoleUser {
		t.Errorf("adapter received %+v, want one user message", last.Messages)
	}
}

func TestRespond_Validation(t *testing.T) {
	srv := newTestServer(t, defaultAdapter())
	h := srv.Handler()

	rec := doJSON(t, h, "POST", "/api/models/respond", map[string]any{"prompt": "p"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing modelId status = %d, want 400", rec.Code)
	}

	req := httptest.NewRequest("POST", "/api/models/respond", bytes.NewReader([]byte("{not json")))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad JSON status = %d, want 400", rr.Code)
	}
}

func TestRespond_UnknownModelIsConfigurationError(t *testing.T) {
	srv := newTestServer(t, defaultAdapter())
	rec := doJSON(t, srv.Handler(), "POST", "/api/models/respond", map[string]any{
		"modelId": "ghost",
		"prompt":  "Say hi",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body struct {
		Kind string `json:"kind"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Kind != string(chat.KindConfiguration) {
		t.Errorf("kind = %q, want configuration", body.Kind)
	}
}

func TestRespond_TransientFailureIsBadGateway(t *testing.T) {
	adapter := defaultAdapter()
	adapter.ErrFor = map[string]error{
		"m1": chat.TransientErr("mock", "m1", errors.New("rate limited")),
	}
	srv := newTestServer(t, adapter)

	rec := doJSON(t, srv.Handler(), "POST", "/api/models/respond", map[string]any{
		"modelId": "m1",
		"prompt":  "Say hi",
	})
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestCompare(t *testing.T) {
	adapter := defaultAdapter()
	adapter.ErrFor = map[string]error{
		"m2": chat.TransientErr("mock", "m2", errors.New("timeout")),
	}
	srv := newTestServer(t, adapter)

	rec := doJSON(t, srv.Handler(), "POST", "/api/compare", map[string]any{
		"prompt":         "Say hi",
		"selectedModels": []string{"m1", "m2"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var res orchestrate.Result
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res) != 2 {
		t.Fatalf("result has %d keys, want 2", len(res))
	}
	if res["m1"].Response == nil || res["m1"].Response.Content != "hello from m1" {
		t.Errorf("m1 = %+v", res["m1"])
	}
	if res["m2"].Failure == nil || res["m2"].Failure.Kind != chat.KindTransient {
		t.Errorf("m2 = %+v", res["m2"])
	}
}

func TestCompare_Validation(t *testing.T) {
	srv := newTestServer(t, defaultAdapter())
	h := srv.Handler()

	rec := doJSON(t, h, "POST", "/api/compare", map[string]any{"selectedModels": []string{"m1"}})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing prompt status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, h, "POST", "/api/compare", map[string]any{"prompt": "p"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty model list status = %d, want 400", rec.Code)
	}
}

func TestRetry(t *testing.T) {
	adapter := defaultAdapter()
	srv := newTestServer(t, adapter)

	rec := doJSON(t, srv.Handler(), "POST", "/api/compare/retry", map[string]any{
		"modelId": "m2",
		"prompt":  "Say hi",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var res map[string]orchestrate.Outcome
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res) != 1 {
		t.Fatalf("retry result has %d keys, want 1", len(res))
	}
	if res["m2"].Response == nil {
		t.Errorf("m2 = %+v", res["m2"])
	}
}

func TestSessionLifecycle(t *testing.T) {
	srv := newTestServer(t, defaultAdapter())
	h := srv.Handler()

	rec := doJSON(t, h, "POST", "/api/sessions", map[string]any{
		"mode":      "debate",
		"topic":     "Tabs vs spaces",
		"intensity": 3,
		"seats": []map[string]string{
			{"id": "seat-a", "model_id": "m1"},
			{"id": "seat-b", "model_id": "m2"},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body)
	}
	var created sessionView
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.State != arena.StateAwaitingOpening {
		t.Errorf("state = %q, want awaiting_opening", created.State)
	}

	// Two turns, alternating seats.
	for i, wantSeat := range []string{"seat-a", "seat-b"} {
		rec = doJSON(t, h, "POST", "/api/sessions/"+created.ID+"/turns", map[string]any{})
		if rec.Code != http.StatusOK {
			t.Fatalf("turn %d status = %d, body = %s", i+1, rec.Code, rec.Body)
		}
		var turn arena.Turn
		if err := json.NewDecoder(rec.Body).Decode(&turn); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if turn.SeatID != wantSeat {
			t.Errorf("turn %d seat = %q, want %q", i+1, turn.SeatID, wantSeat)
		}
	}

	// Transcript visible via GET.
	rec = doJSON(t, h, "GET", "/api/sessions/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var view sessionView
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(view.Turns) != 2 {
		t.Errorf("transcript has %d turns, want 2", len(view.Turns))
	}

	// Finish, then further turns are rejected.
	rec = doJSON(t, h, "POST", "/api/sessions/"+created.ID+"/finish", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("finish status = %d", rec.Code)
	}
	rec = doJSON(t, h, "POST", "/api/sessions/"+created.ID+"/turns", map[string]any{})
	if rec.Code != http.StatusGone {
		t.Errorf("turn after finish status = %d, want 410", rec.Code)
	}

	// Delete removes it.
	rec = doJSON(t, h, "DELETE", "/api/sessions/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}
	rec = doJSON(t, h, "GET", "/api/sessions/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestSession_TurnLimitEnforced(t *testing.T) {
	reg := chat.NewRegistry()
	if err := reg.Register(defaultAdapter()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	srv := New(Config{
		Registry:   reg,
		Comparator: orchestrate.New(reg, nil, 0, 0),
		Sessions:   arena.NewManager(reg, nil, 0),
		MaxTurns:   2,
	})
	h := srv.Handler()

	rec := doJSON(t, h, "POST", "/api/sessions", map[string]any{
		"mode":      "debate",
		"topic":     "Tabs vs spaces",
		"intensity": 3,
		"seats": []map[string]string{
			{"id": "seat-a", "model_id": "m1"},
			{"id": "seat-b", "model_id": "m2"},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body)
	}
	var created sessionView
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	for i := range 2 {
		rec = doJSON(t, h, "POST", "/api/sessions/"+created.ID+"/turns", map[string]any{})
		if rec.Code != http.StatusOK {
			t.Fatalf("turn %d status = %d, body = %s", i+1, rec.Code, rec.Body)
		}
	}

	rec = doJSON(t, h, "POST", "/api/sessions/"+created.ID+"/turns", map[string]any{})
	if rec.Code != http.StatusConflict {
		t.Errorf("turn past the limit status = %d, want 409", rec.Code)
	}

	// The session itself stays usable for reads and an explicit finish.
	rec = doJSON(t, h, "POST", "/api/sessions/"+created.ID+"/finish", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("finish status = %d, want 200", rec.Code)
	}
}

func TestSession_InvalidConfigRejected(t *testing.T) {
	srv := newTestServer(t, defaultAdapter())
	rec := doJSON(t, srv.Handler(), "POST", "/api/sessions", map[string]any{
		"mode":  "debate",
		"topic": "t",
		// intensity missing (zero → out of range)
		"seats": []map[string]string{
			{"id": "a", "model_id": "m1"},
			{"id": "b", "model_id": "m2"},
		},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSession_UnknownID(t *testing.T) {
	srv := newTestServer(t, defaultAdapter())
	rec := doJSON(t, srv.Handler(), "GET", "/api/sessions/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestProbes(t *testing.T) {
	srv := newTestServer(t, defaultAdapter())
	h := srv.Handler()

	rec := doJSON(t, h, "GET", "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", rec.Code)
	}
	rec = doJSON(t, h, "GET", "/readyz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("readyz status = %d, want 200", rec.Code)
	}

	// A server with no registered vendors is alive but not ready.
	empty := newTestServer(t, nil)
	h = empty.Handler()
	rec = doJSON(t, h, "GET", "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("empty healthz status = %d, want 200", rec.Code)
	}
	rec = doJSON(t, h, "GET", "/readyz", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("empty readyz status = %d, want 503", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, defaultAdapter())
	rec := doJSON(t, srv.Handler(), "GET", "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("metrics status = %d, want 200", rec.Code)
	}
}
