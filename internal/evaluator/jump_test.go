package evaluator

import (
	"testing"

	"github.com/heist-scheme/heist/internal/config"
	"github.com/heist-scheme/heist/internal/datum"
)

func TestNewJumpIsErrorPropagates(t *testing.T) {
	s := newTestState()
	j := s.NewJump(datum.NewInt(7))
	if !IsError(j) {
		t.Fatal("a *Jump must satisfy IsError so it unwinds through the same channel errors do")
	}
	if !s.HasPendingJump() {
		t.Fatal("NewJump should also record the value in the pending-jump slot")
	}
	v, ok := s.TakeJump()
	if !ok || v.(datum.Number).Value.String() != "7" {
		t.Fatalf("TakeJump() = %v, %v, want 7, true", v, ok)
	}
}

func TestCatchJumpConvertsAnEscapingJumpIntoItsValue(t *testing.T) {
	s := NewState(config.DefaultProfile())
	thunk := &datum.Primitive{Name: "thunk", Fn: func(_ []datum.Datum, _ datum.Environment) datum.Datum {
		return s.NewJump(datum.NewInt(42))
	}}
	result := s.CatchJump(thunk, nil)
	n, ok := result.(datum.Number)
	if !ok || n.Value.String() != "42" {
		t.Fatalf("CatchJump result = %v, want 42", result)
	}
	if s.HasPendingJump() {
		t.Fatal("CatchJump should clear the pending jump it caught")
	}
}

func TestCatchJumpPassesThroughAnOrdinaryResult(t *testing.T) {
	s := NewState(config.DefaultProfile())
	thunk := &datum.Primitive{Name: "thunk", Fn: func(_ []datum.Datum, _ datum.Environment) datum.Datum {
		return datum.NewInt(1)
	}}
	result := s.CatchJump(thunk, nil)
	if n, ok := result.(datum.Number); !ok || n.Value.String() != "1" {
		t.Fatalf("CatchJump result = %v, want 1 (no jump occurred)", result)
	}
}

func TestCatchJumpPassesThroughAnError(t *testing.T) {
	s := NewState(config.DefaultProfile())
	thunk := &datum.Primitive{Name: "thunk", Fn: func(_ []datum.Datum, _ datum.Environment) datum.Datum {
		return s.Errorf(datum.ErrType, "boom")
	}}
	result := s.CatchJump(thunk, nil)
	if !IsError(result) {
		t.Fatal("CatchJump must not swallow an ordinary error, only a Jump")
	}
	if _, isJump := result.(*Jump); isJump {
		t.Fatal("an error should not be mistaken for a Jump")
	}
}
