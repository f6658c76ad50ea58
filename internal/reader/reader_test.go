package reader

import (
	"testing"

	"github.com/heist-scheme/heist/internal/datum"
)

func mustReadOne(t *testing.T, src string) datum.Datum {
	t.Helper()
	forms, err := ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll(%q): %v", src, err)
	}
	if len(forms) != 1 {
		t.Fatalf("ReadAll(%q): got %d forms, want 1", src, len(forms))
	}
	return forms[0]
}

func TestReadAtoms(t *testing.T) {
	cases := map[string]string{
		"42":       "42",
		"-17":      "-17",
		"3.5":      "3.5",
		"1/2":      "1/2",
		"#t":       "#t",
		"#f":       "#f",
		"abc":      "abc",
		`"hi\n"`:   "\"hi\\n\"",
		"#\\space": "#\\space",
		"#\\a":     "#\\a",
	}
	for src, want := range cases {
		d := mustReadOne(t, src)
		if got := d.Write(); got != want {
			t.Errorf("Write(%q) = %q, want %q", src, got, want)
		}
	}
}

func TestReadList(t *testing.T) {
	d := mustReadOne(t, "(+ 1 2)")
	expr, ok := d.(*datum.Expression)
	if !ok {
		t.Fatalf("got %T, want *datum.Expression", d)
	}
	if len(expr.Items) != 3 {
		t.Fatalf("got %d items, want 3", len(expr.Items))
	}
	head, ok := expr.Head()
	if !ok || head != "+" {
		t.Fatalf("head = %v, %v", head, ok)
	}
}

func TestReadDottedPair(t *testing.T) {
	d := mustReadOne(t, "(a . b)")
	expr := d.(*datum.Expression)
	if len(expr.Items) != 3 {
		t.Fatalf("got %d items, want 3 (a, dot, b)", len(expr.Items))
	}
	if expr.Items[1] != datum.DotSymbol {
		t.Fatalf("middle item = %v, want dot symbol", expr.Items[1])
	}
}

func TestReadVariadicDotted(t *testing.T) {
	d := mustReadOne(t, "(lambda (a . rest) rest)")
	expr := d.(*datum.Expression)
	params := expr.Items[1].(*datum.Expression)
	if params.Items[1] != datum.DotSymbol {
		t.Fatalf("params = %v", params.Write())
	}
}

func TestReadQuoteShorthand(t *testing.T) {
	d := mustReadOne(t, "'(1 2)")
	expr := d.(*datum.Expression)
	head, ok := expr.Head()
	if !ok || head != "quote" {
		t.Fatalf("head = %v, %v", head, ok)
	}
	if len(expr.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(expr.Items))
	}
}

func TestReadQuasiquoteUnquoteSplicing(t *testing.T) {
	d := mustReadOne(t, "`(1 ,@xs)")
	outer := d.(*datum.Expression)
	if h, _ := outer.Head(); h != "quasiquote" {
		t.Fatalf("head = %v", h)
	}
	inner := outer.Items[1].(*datum.Expression)
	splice := inner.Items[1].(*datum.Expression)
	if h, _ := splice.Head(); h != "unquote-splicing" {
		t.Fatalf("splice head = %v", h)
	}
}

func TestReadVectorLiteral(t *testing.T) {
	d := mustReadOne(t, "#(1 2 3)")
	expr := d.(*datum.Expression)
	if h, _ := expr.Head(); h != "vector" {
		t.Fatalf("head = %v", h)
	}
	if len(expr.Args()) != 3 {
		t.Fatalf("got %d args", len(expr.Args()))
	}
}

func TestReadCommentsAndAtmosphere(t *testing.T) {
	src := `
		; a line comment
		#| a block
		   comment |#
		(+ 1 2) ; trailing
	`
	d := mustReadOne(t, src)
	if d.(*datum.Expression).Write() != "(+ 1 2)" {
		t.Fatalf("got %v", d.Write())
	}
}

func TestReadAllMultipleForms(t *testing.T) {
	forms, err := ReadAll("(define x 1) (define y 2)")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(forms) != 2 {
		t.Fatalf("got %d forms, want 2", len(forms))
	}
}

func TestReadUnterminatedListErrors(t *testing.T) {
	if _, err := ReadAll("(+ 1 2"); err == nil {
		t.Fatal("expected error for unterminated list")
	}
}

func TestReadUnterminatedStringErrors(t *testing.T) {
	if _, err := ReadAll(`"abc`); err == nil {
		t.Fatal("expected error for unterminated string")
	}
}
