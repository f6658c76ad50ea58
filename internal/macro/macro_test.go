package macro

import (
	"testing"

	"github.com/heist-scheme/heist/internal/datum"
)

func expr(items ...datum.Datum) *datum.Expression { return &datum.Expression{Items: items} }
func sym(s string) datum.Symbol                    { return datum.Symbol(s) }

func TestExpandMyOr(t *testing.T) {
	// (syntax-rules () ((_ ) #f) ((_ a) a) ((_ a b ...) (if a a (my-or b ...))))
	rules, err := Build("my-or", nil, "...",
		[]*datum.Expression{
			expr(expr(sym("_")), datum.False),
			expr(expr(sym("_"), sym("a")), sym("a")),
			expr(
				expr(sym("_"), sym("a"), sym("b"), sym("...")),
				expr(sym("if"), sym("a"), sym("a"), expr(sym("my-or"), sym("b"), sym("..."))),
			),
		})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	use := expr(sym("my-or"), sym("x"), sym("y"), sym("z"))
	got, err := Expand(rules, use)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	want := "(if x x (my-or y z))"
	if got.Write() != want {
		t.Fatalf("got %s, want %s", got.Write(), want)
	}
}

func TestSwapHygieneRenamesInternalTmp(t *testing.T) {
	// (syntax-rules () ((_ a b) (let ((tmp a)) (set! a b) (set! b tmp))))
	rules, err := Build("swap!", nil, "...", []*datum.Expression{
		expr(
			expr(sym("_"), sym("a"), sym("b")),
			expr(sym("let"),
				expr(expr(sym("tmp"), sym("a"))),
				expr(sym("set!"), sym("a"), sym("b")),
				expr(sym("set!"), sym("b"), sym("tmp")),
			),
		),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	use := expr(sym("swap!"), sym("tmp"), sym("other"))
	got, err := Expand(rules, use)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	outer := got.(*datum.Expression)
	bindings := outer.Items[1].(*datum.Expression)
	boundName, _ := bindings.Items[0].(*datum.Expression).Head()
	if boundName == "tmp" {
		t.Fatalf("internal tmp was not hygienically renamed: %s", got.Write())
	}
	// the user's own `tmp` argument (bound to "a") must still read as `tmp`.
	setForms := outer.Items[2].(*datum.Expression)
	if setForms.Items[1] != sym("tmp") {
		t.Fatalf("user tmp reference was incorrectly renamed: %s", got.Write())
	}
}

func TestVariadicLengthConsistencyAcrossTemplate(t *testing.T) {
	// (syntax-rules () ((_ (p q) ...) ((p q) ...))) applied to (m (x 1) (y 2))
	// mirrors the spec's per-template-level consistency example, adapted to
	// a single pattern variable pair repeated in lockstep.
	rules, err := Build("m", nil, "...", []*datum.Expression{
		expr(
			expr(sym("_"), expr(sym("p"), sym("q")), sym("...")),
			expr(expr(sym("p"), sym("q")), sym("...")),
		),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	use := expr(sym("m"), expr(sym("x"), datum.NewInt(1)), expr(sym("y"), datum.NewInt(2)))
	got, err := Expand(rules, use)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	want := "((x 1) (y 2))"
	if got.Write() != want {
		t.Fatalf("got %s, want %s", got.Write(), want)
	}
}

func TestNoRuleMatchesIsError(t *testing.T) {
	rules, err := Build("only-one-arg", nil, "...", []*datum.Expression{
		expr(expr(sym("_"), sym("a")), sym("a")),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	use := expr(sym("only-one-arg"), sym("x"), sym("y"))
	if _, err := Expand(rules, use); err == nil {
		t.Fatal("expected no-match error")
	}
}

func TestDuplicatePatternIdentifierRejected(t *testing.T) {
	_, err := Build("bad", nil, "...", []*datum.Expression{
		expr(expr(sym("_"), sym("a"), sym("a")), sym("a")),
	})
	if err == nil {
		t.Fatal("expected duplicate-identifier error")
	}
}
