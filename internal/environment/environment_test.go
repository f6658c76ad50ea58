package environment

import (
	"testing"

	"github.com/heist-scheme/heist/internal/datum"
)

// extend calls Extend and asserts back to the concrete type, since
// datum.Environment (the interface Extend returns) deliberately omits
// Splice/IsGlobal/Root — they are implementation details the analyzer and
// evaluator never need.
func extend(e *Environment) *Environment {
	return e.Extend().(*Environment)
}

func TestDefineAndLookup(t *testing.T) {
	g := New()
	g.Define("x", datum.NewInt(1))
	v, ok := g.Lookup("x")
	if !ok || v.(datum.Number).Value.String() != "1" {
		t.Fatalf("Lookup(x) = %v, %v", v, ok)
	}
	if _, ok := g.Lookup("y"); ok {
		t.Fatal("expected y to be unbound")
	}
}

func TestExtendShadowsOuter(t *testing.T) {
	g := New()
	g.Define("x", datum.NewInt(1))
	leaf := extend(g)
	leaf.Define("x", datum.NewInt(2))

	v, _ := leaf.Lookup("x")
	if v.(datum.Number).Value.String() != "2" {
		t.Fatalf("leaf lookup = %v, want 2", v)
	}
	v, _ = g.Lookup("x")
	if v.(datum.Number).Value.String() != "1" {
		t.Fatalf("outer lookup = %v, want unchanged 1", v)
	}
}

func TestLookupWalksOutward(t *testing.T) {
	g := New()
	g.Define("x", datum.NewInt(1))
	leaf := extend(extend(g))
	v, ok := leaf.Lookup("x")
	if !ok || v.(datum.Number).Value.String() != "1" {
		t.Fatalf("nested lookup = %v, %v", v, ok)
	}
}

func TestSetBangMutatesDefiningFrame(t *testing.T) {
	g := New()
	g.Define("x", datum.NewInt(1))
	leaf := extend(g)
	if ok := leaf.SetBang("x", datum.NewInt(42)); !ok {
		t.Fatal("SetBang should find x in the outer frame")
	}
	v, _ := g.Lookup("x")
	if v.(datum.Number).Value.String() != "42" {
		t.Fatalf("global x after set! = %v, want 42", v)
	}
	if ok := leaf.SetBang("never-defined", datum.NewInt(0)); ok {
		t.Fatal("SetBang on an unbound name should report false")
	}
}

func TestMacroTableIsSeparateFromValueStore(t *testing.T) {
	g := New()
	g.Define("m", datum.NewInt(1))
	g.DefineMacro("m", datum.Symbol("a-macro-rule"))
	if _, ok := g.Lookup("m"); !ok {
		t.Fatal("value binding for m should still be visible")
	}
	rule, ok := g.LookupMacro("m")
	if !ok || rule != datum.Datum(datum.Symbol("a-macro-rule")) {
		t.Fatalf("LookupMacro(m) = %v, %v", rule, ok)
	}
	if _, ok := g.LookupMacro("never-a-macro"); ok {
		t.Fatal("expected no macro binding for an undefined name")
	}
}

func TestSpliceInsertsCallerFramesBetweenLeafAndBase(t *testing.T) {
	base := New()
	base.Define("base-var", datum.NewInt(100))

	callerOuter := extend(base)
	callerOuter.Define("caller-var", datum.NewInt(7))
	caller := extend(callerOuter)

	leaf := extend(base)
	Splice(leaf, caller, base)

	v, ok := leaf.Lookup("caller-var")
	if !ok || v.(datum.Number).Value.String() != "7" {
		t.Fatalf("spliced leaf should see caller's frame var, got %v, %v", v, ok)
	}
	v, ok = leaf.Lookup("base-var")
	if !ok || v.(datum.Number).Value.String() != "100" {
		t.Fatalf("spliced leaf should still see base frame var, got %v, %v", v, ok)
	}
}

func TestSpliceSharesMutationWithCallerFrame(t *testing.T) {
	base := New()
	caller := extend(base)
	caller.Define("shared", datum.NewInt(1))

	leaf := extend(base)
	Splice(leaf, caller, base)

	if ok := leaf.SetBang("shared", datum.NewInt(2)); !ok {
		t.Fatal("expected shared to be found through the spliced chain")
	}
	v, _ := caller.Lookup("shared")
	if v.(datum.Number).Value.String() != "2" {
		t.Fatal("mutation through the spliced view should be visible in the caller's own view")
	}
}

func TestIsGlobalAndRoot(t *testing.T) {
	g := New()
	if !g.IsGlobal() {
		t.Fatal("a freshly created environment has no outer frame")
	}
	leaf := extend(extend(g))
	if leaf.IsGlobal() {
		t.Fatal("an extended frame is not global")
	}
	if leaf.Root() != g {
		t.Fatal("Root() should walk back to the original global frame")
	}
}
