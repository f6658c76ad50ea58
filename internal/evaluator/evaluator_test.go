package evaluator

import (
	"testing"

	"github.com/heist-scheme/heist/internal/config"
	"github.com/heist-scheme/heist/internal/datum"
)

func newTestState() *State {
	return NewState(config.DefaultProfile())
}

func TestIsTruthyDefaultFalseySet(t *testing.T) {
	s := newTestState()
	if s.IsTruthy(datum.False) {
		t.Error("#f should be falsey by default")
	}
	if !s.IsTruthy(datum.True) {
		t.Error("#t should be truthy")
	}
	if !s.IsTruthy(datum.EmptyList) {
		t.Error("() is not falsey by default in this core")
	}
}

func TestSetFalseyExpandsTheFalseySet(t *testing.T) {
	s := newTestState()
	if !s.IsTruthy(datum.EmptyList) {
		t.Fatal("precondition: () should start out truthy")
	}
	if result := s.SetFalsey(datum.EmptyList); IsError(result) {
		t.Fatalf("SetFalsey(()) errored: %v", result)
	}
	if s.IsTruthy(datum.EmptyList) {
		t.Error("() should be falsey after SetFalsey")
	}
	s.SetTruthy(datum.EmptyList)
	if !s.IsTruthy(datum.EmptyList) {
		t.Error("() should be truthy again after SetTruthy")
	}
}

func TestSetFalseyRejectsTrue(t *testing.T) {
	s := newTestState()
	result := s.SetFalsey(datum.True)
	if !IsError(result) {
		t.Fatal("SetFalsey(#t) should error; #t can never be made falsey")
	}
}

func TestJumpTakeJumpRoundTrip(t *testing.T) {
	s := newTestState()
	if s.HasPendingJump() {
		t.Fatal("fresh state should have no pending jump")
	}
	s.Jump(datum.NewInt(5))
	if !s.HasPendingJump() {
		t.Fatal("expected a pending jump after Jump")
	}
	v, ok := s.TakeJump()
	if !ok || v.(datum.Number).Value.String() != "5" {
		t.Fatalf("TakeJump() = %v, %v, want 5, true", v, ok)
	}
	if s.HasPendingJump() {
		t.Fatal("TakeJump should clear the pending jump")
	}
	if _, ok := s.TakeJump(); ok {
		t.Fatal("a second TakeJump with nothing pending should report false")
	}
}

func TestPushPopFrameTracksCallStack(t *testing.T) {
	s := newTestState()
	s.PushFrame(datum.StackFrame{Name: "outer"})
	s.PushFrame(datum.StackFrame{Name: "inner"})
	if len(s.CallStack) != 2 {
		t.Fatalf("CallStack len = %d, want 2", len(s.CallStack))
	}
	s.PopFrame()
	if len(s.CallStack) != 1 || s.CallStack[0].Name != "outer" {
		t.Fatalf("after one PopFrame, CallStack = %v", s.CallStack)
	}
	s.PopFrame()
	s.PopFrame() // popping past empty must not panic
	if len(s.CallStack) != 0 {
		t.Fatalf("CallStack len = %d, want 0", len(s.CallStack))
	}
}

func TestErrorfStampsCurrentCallStack(t *testing.T) {
	s := newTestState()
	s.PushFrame(datum.StackFrame{Name: "f"})
	err := s.Errorf(datum.ErrType, "boom %d", 42)
	if err.Message == "" {
		t.Fatal("expected a non-empty error message")
	}
	if len(err.StackTrace) != 1 || err.StackTrace[0].Name != "f" {
		t.Fatalf("StackTrace = %v, want one frame named f", err.StackTrace)
	}
	if !IsError(err) {
		t.Fatal("a *datum.Error built by Errorf should satisfy IsError")
	}
}
