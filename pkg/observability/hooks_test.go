package observability

import (
	"context"
	"testing"
	"time"
)

// recordingPipelineHooks captures events for assertions.
type recordingPipelineHooks struct {
	NoopPipelineHooks
	measureStarts []string
	layoutStarts  int
}

func (h *recordingPipelineHooks) OnMeasureStart(_ context.Context, phase string, _, _ int) {
	h.measureStarts = append(h.measureStarts, phase)
}

func (h *recordingPipelineHooks) OnLayoutStart(context.Context, int, int) {
	h.layoutStarts++
}

type recordingCacheHooks struct {
	NoopCacheHooks
	hits int
}

func (h *recordingCacheHooks) OnCacheHit(context.Context, string) {
	h.hits++
}

func TestHookRegistration(t *testing.T) {
	defer Reset()

	rec := &recordingPipelineHooks{}
	SetPipelineHooks(rec)

	ctx := context.Background()
	Pipeline().OnMeasureStart(ctx, PhaseBefore, 4, 2)
	Pipeline().OnMeasureStart(ctx, PhaseAfter, 4, 2)
	Pipeline().OnLayoutStart(ctx, 4, 2)
	Pipeline().OnLayoutComplete(ctx, time.Millisecond, nil) // embedded noop

	if len(rec.measureStarts) != 2 || rec.measureStarts[0] != PhaseBefore || rec.measureStarts[1] != PhaseAfter {
		t.Errorf("measure phases = %v, want [before after]", rec.measureStarts)
	}
	if rec.layoutStarts != 1 {
		t.Errorf("layout starts = %d, want 1", rec.layoutStarts)
	}
}

func TestCacheHookRegistration(t *testing.T) {
	defer Reset()

	rec := &recordingCacheHooks{}
	SetCacheHooks(rec)

	Cache().OnCacheHit(context.Background(), "layout")
	if rec.hits != 1 {
		t.Errorf("hits = %d, want 1", rec.hits)
	}
}

func TestSetNilKeepsCurrent(t *testing.T) {
	defer Reset()

	rec := &recordingPipelineHooks{}
	SetPipelineHooks(rec)
	SetPipelineHooks(nil)

	Pipeline().OnLayoutStart(context.Background(), 1, 0)
	if rec.layoutStarts != 1 {
		t.Error("nil registration should keep the current hooks")
	}
}

func TestReset(t *testing.T) {
	rec := &recordingPipelineHooks{}
	SetPipelineHooks(rec)
	Reset()

	Pipeline().OnLayoutStart(context.Background(), 1, 0)
	if rec.layoutStarts != 0 {
		t.Error("Reset should restore the no-op hooks")
	}
}
