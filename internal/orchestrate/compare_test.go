package orchestrate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrWong99/modelarena/pkg/provider/chat"
	"github.com/MrWong99/modelarena/pkg/provider/chat/mock"
	"github.com/MrWong99/modelarena/pkg/types"
)

func newTestRegistry(t *testing.T, adapters ...chat.Adapter) *chat.Registry {
	t.Helper()
	reg := chat.NewRegistry()
	for _, a := range adapters {
		if err := reg.Register(a); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}
	return reg
}

func prompt() []types.Message {
	return []types.Message{{Role: types.RoleUser, Content: "compare this"}}
}

func TestCompare_AllSucceed(t *testing.T) {
	reg := newTestRegistry(t, &mock.Adapter{
		Vendor: "mock",
		Catalog: []types.ModelConfig{
			{ID: "m1", Provider: "mock"},
			{ID: "m2", Provider: "mock"},
		},
		ResponseFor: map[string]*types.ModelResponse{
			"m1": {Content: "answer one", Model: types.ModelConfig{ID: "m1"}},
			"m2": {Content: "answer two", Model: types.ModelConfig{ID: "m2"}},
		},
	})
	c := New(reg, nil, 0, 0)

	res, err := c.Compare(context.Background(), []string{"m1", "m2"}, prompt(), types.CallOptions{})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if len(res) != 2 {
		t.Fatalf("result has %d entries, want 2", len(res))
	}
	if res["m1"].Response == nil || res["m1"].Response.Content != "answer one" {
		t.Errorf("m1 outcome = %+v", res["m1"])
	}
	if res["m2"].Response == nil || res["m2"].Response.Content != "answer two" {
		t.Errorf("m2 outcome = %+v", res["m2"])
	}
}

func TestCompare_OneFailureDoesNotHideSiblings(t *testing.T) {
	reg := newTestRegistry(t, &mock.Adapter{
		Vendor: "mock",
		Catalog: []types.ModelConfig{
			{ID: "m1", Provider: "mock"},
			{ID: "m2", Provider: "mock"},
		},
		ResponseFor: map[string]*types.ModelResponse{
			"m1": {Content: "fast answer", Model: types.ModelConfig{ID: "m1"}},
		},
		ErrFor: map[string]error{
			"m2": chat.TransientErr("mock", "m2", errors.New("deadline exceeded")),
		},
	})
	c := New(reg, nil, 0, 0)

	res, err := c.Compare(context.Background(), []string{"m1", "m2"}, prompt(), types.CallOptions{})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	if res["m1"].Response == nil || res["m1"].Response.Content != "fast answer" {
		t.Errorf("m1 success missing: %+v", res["m1"])
	}
	if res["m2"].Failure == nil {
		t.Fatalf("m2 failure missing: %+v", res["m2"])
	}
	if res["m2"].Failure.Kind != chat.KindTransient {
		t.Errorf("m2 failure kind = %q, want transient", res["m2"].Failure.Kind)
	}
	if res["m2"].Response != nil {
		t.Error("m2 has both response and failure")
	}
}

func TestCompare_SlowModelTimesOutAlone(t *testing.T) {
	reg := newTestRegistry(t, &mock.Adapter{
		Vendor: "mock",
		Catalog: []types.ModelConfig{
			{ID: "m1", Provider: "mock"},
			{ID: "m2", Provider: "mock"},
		},
		ResponseFor: map[string]*types.ModelResponse{
			"m1": {Content: "quick", Model: types.ModelConfig{ID: "m1"}},
			"m2": {Content: "never seen", Model: types.ModelConfig{ID: "m2"}},
		},
		DelayFor: map[string]time.Duration{
			"m2": 5 * time.Second,
		},
	})
	c := New(reg, nil, 50*time.Millisecond, 0)

	start := time.Now()
	res, err := c.Compare(context.Background(), []string{"m1", "m2"}, prompt(), types.CallOptions{})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Compare took %v; the per-call timeout should have bounded it", elapsed)
	}

	if res["m1"].Response == nil {
		t.Errorf("m1 should succeed: %+v", res["m1"])
	}
	if res["m2"].Failure == nil {
		t.Fatalf("m2 should time out: %+v", res["m2"])
	}
	if res["m2"].Failure.Kind != chat.KindTransient {
		t.Errorf("timeout kind = %q, want transient", res["m2"].Failure.Kind)
	}
}

func TestCompare_OuterDeadlineBoundsWholeFanOut(t *testing.T) {
	reg := newTestRegistry(t, &mock.Adapter{
		Vendor: "mock",
		Catalog: []types.ModelConfig{
			{ID: "m1", Provider: "mock"},
			{ID: "m2", Provider: "mock"},
		},
		Delay: 5 * time.Second,
	})
	c := New(reg, nil, 0, 50*time.Millisecond)

	start := time.Now()
	res, err := c.Compare(context.Background(), []string{"m1", "m2"}, prompt(), types.CallOptions{})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Compare took %v; the fan-out deadline should have bounded it", elapsed)
	}
	for _, id := range []string{"m1", "m2"} {
		if res[id].Failure == nil {
			t.Fatalf("%s should time out: %+v", id, res[id])
		}
		if res[id].Failure.Kind != chat.KindTransient {
			t.Errorf("%s failure kind = %q, want transient", id, res[id].Failure.Kind)
		}
	}
}

func TestNew_FanOutDeadlineNeverBelowCallTimeout(t *testing.T) {
	c := New(chat.NewRegistry(), nil, time.Minute, time.Second)
	if c.compareTimeout != time.Minute {
		t.Errorf("compareTimeout = %v, want raised to the per-call timeout", c.compareTimeout)
	}

	c = New(chat.NewRegistry(), nil, time.Second, time.Minute)
	if c.compareTimeout != time.Minute {
		t.Errorf("compareTimeout = %v, want left at one minute", c.compareTimeout)
	}
}

func TestCompare_UnknownModelIsConfigurationFailure(t *testing.T) {
	reg := newTestRegistry(t, &mock.Adapter{
		Vendor:   "mock",
		Catalog:  []types.ModelConfig{{ID: "m1", Provider: "mock"}},
		Response: &types.ModelResponse{Content: "ok", Model: types.ModelConfig{ID: "m1"}},
	})
	c := New(reg, nil, 0, 0)

	res, err := c.Compare(context.Background(), []string{"m1", "ghost-model"}, prompt(), types.CallOptions{})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if res["m1"].Response == nil {
		t.Errorf("m1 should succeed")
	}
	f := res["ghost-model"].Failure
	if f == nil {
		t.Fatal("unknown model should produce a failure outcome")
	}
	if f.Kind != chat.KindConfiguration {
		t.Errorf("unknown model kind = %q, want configuration", f.Kind)
	}
}

func TestCompare_ResultKeysMatchRequestedIDs(t *testing.T) {
	reg := newTestRegistry(t, &mock.Adapter{
		Vendor:   "mock",
		Catalog:  []types.ModelConfig{{ID: "m1", Provider: "mock"}},
		Response: &types.ModelResponse{Content: "ok", Model: types.ModelConfig{ID: "m1"}},
	})
	c := New(reg, nil, 0, 0)

	ids := []string{"m1", "m1", "nope"}
	res, err := c.Compare(context.Background(), ids, prompt(), types.CallOptions{})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	// Duplicates collapse; every distinct requested id is present verbatim.
	if len(res) != 2 {
		t.Fatalf("result has %d entries, want 2", len(res))
	}
	for _, id := range []string{"m1", "nope"} {
		if _, ok := res[id]; !ok {
			t.Errorf("result missing key %q", id)
		}
	}
}

func TestCompare_EmptyModelList(t *testing.T) {
	c := New(chat.NewRegistry(), nil, 0, 0)
	_, err := c.Compare(context.Background(), nil, prompt(), types.CallOptions{})
	if !errors.Is(err, ErrNoModels) {
		t.Errorf("error = %v, want ErrNoModels", err)
	}
}

func TestCompare_CancelledContext(t *testing.T) {
	c := New(chat.NewRegistry(), nil, 0, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Compare(ctx, []string{"m1"}, prompt(), types.CallOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestRetry_ReplacesSingleSlot(t *testing.T) {
	adapter := &mock.Adapter{
		Vendor: "mock",
		Catalog: []types.ModelConfig{
			{ID: "m1", Provider: "mock"},
			{ID: "m2", Provider: "mock"},
		},
		ResponseFor: map[string]*types.ModelResponse{
			"m1": {Content: "kept", Model: types.ModelConfig{ID: "m1"}},
		},
		ErrFor: map[string]error{
			"m2": chat.TransientErr("mock", "m2", errors.New("overloaded")),
		},
	}
	reg := newTestRegistry(t, adapter)
	c := New(reg, nil, 0, 0)

	res, err := c.Compare(context.Background(), []string{"m1", "m2"}, prompt(), types.CallOptions{})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if res["m2"].Failure == nil {
		t.Fatal("m2 should fail initially")
	}

	// Vendor recovers; retry only m2.
	adapter.ErrFor = map[string]error{}
	adapter.ResponseFor["m2"] = &types.ModelResponse{Content: "recovered", Model: types.ModelConfig{ID: "m2"}}

	res["m2"] = c.Retry(context.Background(), "m2", prompt(), types.CallOptions{})

	if res["m1"].Response == nil || res["m1"].Response.Content != "kept" {
		t.Errorf("retry must not disturb sibling results: %+v", res["m1"])
	}
	if res["m2"].Response == nil || res["m2"].Response.Content != "recovered" {
		t.Errorf("retried slot = %+v, want recovered response", res["m2"])
	}
}
