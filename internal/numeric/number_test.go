package numeric

import (
	"math"
	"math/big"
	"testing"
)

func ratOf(num, den int64) *big.Rat { return big.NewRat(num, den) }

func TestStringRepresentations(t *testing.T) {
	cases := []struct {
		n    Number
		want string
	}{
		{NewInt(42), "42"},
		{NewInt(-7), "-7"},
		{NewRat(ratOf(1, 2)), "1/2"},
		{NewFloat(3.5), "3.5"},
		{NewFloat(2), "2."},
		{NewFloat(math.Inf(1)), "+inf.0"},
	}
	for _, c := range cases {
		if got := c.n.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}

func TestNewRatNormalizesToInteger(t *testing.T) {
	n := NewRat(ratOf(4, 2))
	if n.Kind() != KindInteger {
		t.Fatalf("kind = %v, want KindInteger", n.Kind())
	}
	if n.String() != "2" {
		t.Fatalf("String() = %q, want 2", n.String())
	}
}

func TestArithmetic(t *testing.T) {
	a, b := NewInt(3), NewInt(4)
	if got := Add(a, b).String(); got != "7" {
		t.Errorf("Add = %s, want 7", got)
	}
	if got := Sub(a, b).String(); got != "-1" {
		t.Errorf("Sub = %s, want -1", got)
	}
	if got := Mul(a, b).String(); got != "12" {
		t.Errorf("Mul = %s, want 12", got)
	}
	q, err := Div(NewInt(1), NewInt(2))
	if err != nil {
		t.Fatalf("Div: %v", err)
	}
	if got := q.String(); got != "1/2" {
		t.Errorf("Div = %s, want 1/2", got)
	}
}

func TestDivByZeroErrors(t *testing.T) {
	if _, err := Div(NewInt(1), NewInt(0)); err == nil {
		t.Fatal("expected error dividing by zero")
	}
}

func TestExactInexactRoundTrip(t *testing.T) {
	n := NewRat(ratOf(1, 4))
	if !n.IsExact() {
		t.Fatal("expected exact")
	}
	inexact := n.Inexact()
	if inexact.IsExact() {
		t.Fatal("expected inexact after Inexact()")
	}
	if inexact.ToFloat() != 0.25 {
		t.Fatalf("ToFloat() = %v, want 0.25", inexact.ToFloat())
	}
	back := inexact.Exact()
	if !back.IsExact() {
		t.Fatal("expected exact after Exact()")
	}
}

func TestCmpOrdersAcrossRepresentations(t *testing.T) {
	if Cmp(NewInt(1), NewRat(ratOf(3, 2))) >= 0 {
		t.Fatal("expected 1 < 3/2")
	}
	if Cmp(NewFloat(2.0), NewInt(2)) != 0 {
		t.Fatal("expected 2.0 == 2")
	}
}

func TestFloorCeilingTruncateRound(t *testing.T) {
	threeHalves := NewRat(ratOf(3, 2))
	if got := threeHalves.Floor().String(); got != "1" {
		t.Errorf("Floor(3/2) = %s, want 1", got)
	}
	if got := threeHalves.Ceiling().String(); got != "2" {
		t.Errorf("Ceiling(3/2) = %s, want 2", got)
	}
	negThreeHalves := Neg(threeHalves)
	if got := negThreeHalves.Truncate().String(); got != "-1" {
		t.Errorf("Truncate(-3/2) = %s, want -1", got)
	}
}

func TestQuotientRemainderModulo(t *testing.T) {
	q, err := Quotient(NewInt(7), NewInt(2))
	if err != nil || q.String() != "3" {
		t.Fatalf("Quotient(7,2) = %v, %v, want 3", q.String(), err)
	}
	r, err := Remainder(NewInt(-7), NewInt(2))
	if err != nil || r.String() != "-1" {
		t.Fatalf("Remainder(-7,2) = %v, %v, want -1", r.String(), err)
	}
	m, err := Modulo(NewInt(-7), NewInt(2))
	if err != nil || m.String() != "1" {
		t.Fatalf("Modulo(-7,2) = %v, %v, want 1", m.String(), err)
	}
}

func TestBitwiseOps(t *testing.T) {
	and, err := BitAnd(NewInt(6), NewInt(3))
	if err != nil || and.String() != "2" {
		t.Fatalf("BitAnd(6,3) = %v, %v, want 2", and.String(), err)
	}
	or, err := BitOr(NewInt(6), NewInt(1))
	if err != nil || or.String() != "7" {
		t.Fatalf("BitOr(6,1) = %v, %v, want 7", or.String(), err)
	}
	if _, err := BitAnd(NewFloat(1.5), NewInt(1)); err == nil {
		t.Fatal("expected error bitwise-anding an inexact operand")
	}
}

func TestParseInt(t *testing.T) {
	n, ok := ParseInt("ff", 16)
	if !ok || n.String() != "255" {
		t.Fatalf("ParseInt(ff,16) = %v, %v, want 255", n.String(), ok)
	}
	if _, ok := ParseInt("zz", 16); ok {
		t.Fatal("expected ParseInt to reject zz in base 16")
	}
}
