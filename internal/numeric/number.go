// Package numeric is the core's opaque view onto the numeric tower: exact
// unbounded integers, exact rationals, and inexact (host-float) values,
// together with the arithmetic, comparison, rounding, transcendental, and
// bitwise operations spec.md §3 lists for Datum's Number case.
//
// The core treats this package as an external collaborator — analyze and
// evaluate never branch on Kind directly outside of a handful of primitive
// entry points (+, -, *, /, comparisons, rounding, bit ops); everywhere
// else a Number is passed around opaquely. math/big is the standard
// library's arbitrary-precision package and stands in for the dedicated
// bignum library none of the retrieval pack carries (see DESIGN.md).
package numeric

import (
	"fmt"
	"math"
	"math/big"
)

// Kind distinguishes the three numeric representations a Number may hold.
type Kind int

const (
	KindInteger Kind = iota
	KindRational
	KindFloat
)

// Number is an exact integer, an exact rational, or an inexact float.
// The zero value is the exact integer 0.
type Number struct {
	kind Kind
	i    *big.Int
	r    *big.Rat
	f    float64
}

func (n Number) Kind() Kind   { return n.kind }
func (n Number) IsExact() bool { return n.kind != KindFloat }

// NewInt wraps a machine integer as an exact Number.
func NewInt(v int64) Number { return Number{kind: KindInteger, i: big.NewInt(v)} }

// NewBigInt wraps an arbitrary-precision integer as an exact Number.
func NewBigInt(v *big.Int) Number { return Number{kind: KindInteger, i: new(big.Int).Set(v)} }

// NewRat wraps an arbitrary-precision rational as an exact Number,
// normalizing to an integer when the denominator reduces to 1.
func NewRat(v *big.Rat) Number {
	if v.IsInt() {
		return NewBigInt(new(big.Int).Set(v.Num()))
	}
	return Number{kind: KindRational, r: new(big.Rat).Set(v)}
}

// NewFloat wraps a host double as an inexact Number.
func NewFloat(v float64) Number { return Number{kind: KindFloat, f: v} }

// ParseInt parses a base-n integer literal into an exact Number.
func ParseInt(s string, base int) (Number, bool) {
	i, ok := new(big.Int).SetString(s, base)
	if !ok {
		return Number{}, false
	}
	return NewBigInt(i), true
}

// ParseFloat parses a decimal literal into an inexact Number.
func ParseFloat(s string) (Number, bool) {
	f, ok := new(big.Float).SetString(s)
	if !ok {
		return Number{}, false
	}
	v, _ := f.Float64()
	return NewFloat(v), true
}

func (n Number) asRat() *big.Rat {
	switch n.kind {
	case KindInteger:
		return new(big.Rat).SetInt(n.i)
	case KindRational:
		return n.r
	default:
		panic("numeric: asRat on inexact Number")
	}
}

// ToFloat widens any Number to a host float64.
func (n Number) ToFloat() float64 {
	switch n.kind {
	case KindInteger:
		f := new(big.Float).SetInt(n.i)
		v, _ := f.Float64()
		return v
	case KindRational:
		v, _ := n.r.Float64()
		return v
	default:
		return n.f
	}
}

// Exact converts an inexact Number to the nearest exact rational.
func (n Number) Exact() Number {
	if n.kind != KindFloat {
		return n
	}
	r := new(big.Rat)
	if r.SetFloat64(n.f) == nil {
		return NewInt(0)
	}
	return NewRat(r)
}

// Inexact converts any Number to its float64 representation.
func (n Number) Inexact() Number { return NewFloat(n.ToFloat()) }

// binaryKind picks the result representation for a binary op: float if
// either operand is inexact, otherwise rational if either is rational,
// otherwise integer.
func binaryKind(a, b Number) Kind {
	if a.kind == KindFloat || b.kind == KindFloat {
		return KindFloat
	}
	if a.kind == KindRational || b.kind == KindRational {
		return KindRational
	}
	return KindInteger
}

func Add(a, b Number) Number {
	switch binaryKind(a, b) {
	case KindFloat:
		return NewFloat(a.ToFloat() + b.ToFloat())
	case KindRational:
		return NewRat(new(big.Rat).Add(a.asRat(), b.asRat()))
	default:
		return NewBigInt(new(big.Int).Add(a.i, b.i))
	}
}

func Sub(a, b Number) Number {
	switch binaryKind(a, b) {
	case KindFloat:
		return NewFloat(a.ToFloat() - b.ToFloat())
	case KindRational:
		return NewRat(new(big.Rat).Sub(a.asRat(), b.asRat()))
	default:
		return NewBigInt(new(big.Int).Sub(a.i, b.i))
	}
}

func Mul(a, b Number) Number {
	switch binaryKind(a, b) {
	case KindFloat:
		return NewFloat(a.ToFloat() * b.ToFloat())
	case KindRational:
		return NewRat(new(big.Rat).Mul(a.asRat(), b.asRat()))
	default:
		return NewBigInt(new(big.Int).Mul(a.i, b.i))
	}
}

// Div performs exact-rational or inexact division. Division by exact zero
// is a caller-level error (returned as an error) rather than a panic.
func Div(a, b Number) (Number, error) {
	if b.kind != KindFloat && b.IsZero() {
		return Number{}, fmt.Errorf("division by zero")
	}
	if binaryKind(a, b) == KindFloat {
		return NewFloat(a.ToFloat() / b.ToFloat()), nil
	}
	return NewRat(new(big.Rat).Quo(a.asRat(), b.asRat())), nil
}

func Neg(a Number) Number {
	switch a.kind {
	case KindFloat:
		return NewFloat(-a.f)
	case KindRational:
		return NewRat(new(big.Rat).Neg(a.r))
	default:
		return NewBigInt(new(big.Int).Neg(a.i))
	}
}

func Abs(a Number) Number {
	switch a.kind {
	case KindFloat:
		return NewFloat(math.Abs(a.f))
	case KindRational:
		return NewRat(new(big.Rat).Abs(a.r))
	default:
		return NewBigInt(new(big.Int).Abs(a.i))
	}
}

func (n Number) IsZero() bool {
	switch n.kind {
	case KindFloat:
		return n.f == 0
	case KindRational:
		return n.r.Sign() == 0
	default:
		return n.i.Sign() == 0
	}
}

func (n Number) Sign() int {
	switch n.kind {
	case KindFloat:
		switch {
		case n.f > 0:
			return 1
		case n.f < 0:
			return -1
		default:
			return 0
		}
	case KindRational:
		return n.r.Sign()
	default:
		return n.i.Sign()
	}
}

// Cmp returns -1, 0, or 1 as a < b, a == b, or a > b.
func Cmp(a, b Number) int {
	if binaryKind(a, b) == KindFloat {
		af, bf := a.ToFloat(), b.ToFloat()
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return a.asRat().Cmp(b.asRat())
}

// IsInteger reports whether n has an exact or inexact integral value.
func (n Number) IsInteger() bool {
	switch n.kind {
	case KindInteger:
		return true
	case KindRational:
		return false
	default:
		return n.f == math.Trunc(n.f) && !math.IsInf(n.f, 0) && !math.IsNaN(n.f)
	}
}

func (n Number) Floor() Number {
	switch n.kind {
	case KindInteger:
		return n
	case KindRational:
		q := new(big.Int)
		m := new(big.Int)
		q.DivMod(n.r.Num(), n.r.Denom(), m)
		return NewBigInt(q)
	default:
		return NewFloat(math.Floor(n.f))
	}
}

func (n Number) Ceiling() Number { return Neg(Neg(n).Floor()) }

func (n Number) Truncate() Number {
	switch n.kind {
	case KindInteger:
		return n
	case KindRational:
		q := new(big.Int).Quo(n.r.Num(), n.r.Denom())
		return NewBigInt(q)
	default:
		return NewFloat(math.Trunc(n.f))
	}
}

func (n Number) Round() Number {
	switch n.kind {
	case KindInteger:
		return n
	case KindRational:
		// Round half to even, per R4RS.
		floor := n.Floor()
		diff := Sub(n, floor)
		half := NewRat(big.NewRat(1, 2))
		c := Cmp(diff, half)
		if c < 0 {
			return floor
		}
		if c > 0 {
			return Add(floor, NewInt(1))
		}
		if new(big.Int).Mod(floor.i, big.NewInt(2)).Sign() == 0 {
			return floor
		}
		return Add(floor, NewInt(1))
	default:
		return NewFloat(math.RoundToEven(n.f))
	}
}

// Expt raises base to exponent, staying exact when both are exact
// integers and the exponent is non-negative.
func Expt(base, exp Number) Number {
	if base.kind == KindInteger && exp.kind == KindInteger && exp.Sign() >= 0 {
		return NewBigInt(new(big.Int).Exp(base.i, exp.i, nil))
	}
	return NewFloat(math.Pow(base.ToFloat(), exp.ToFloat()))
}

func Sqrt(a Number) Number {
	if a.kind == KindInteger && a.Sign() >= 0 {
		root := new(big.Int).Sqrt(a.i)
		if new(big.Int).Mul(root, root).Cmp(a.i) == 0 {
			return NewBigInt(root)
		}
	}
	return NewFloat(math.Sqrt(a.ToFloat()))
}

func Exp(a Number) Number { return NewFloat(math.Exp(a.ToFloat())) }
func Log(a Number) Number { return NewFloat(math.Log(a.ToFloat())) }
func Sin(a Number) Number { return NewFloat(math.Sin(a.ToFloat())) }
func Cos(a Number) Number { return NewFloat(math.Cos(a.ToFloat())) }
func Tan(a Number) Number { return NewFloat(math.Tan(a.ToFloat())) }
func Atan2(y, x Number) Number { return NewFloat(math.Atan2(y.ToFloat(), x.ToFloat())) }

// Quotient, Remainder, Modulo operate on exact integers (R4RS integer division).
func Quotient(a, b Number) (Number, error) {
	if !a.IsInteger() || !b.IsInteger() {
		return Number{}, fmt.Errorf("quotient: integer arguments required")
	}
	ai, bi := a.Exact().i, b.Exact().i
	if bi.Sign() == 0 {
		return Number{}, fmt.Errorf("division by zero")
	}
	q := new(big.Int).Quo(ai, bi)
	if a.kind == KindFloat || b.kind == KindFloat {
		f, _ := new(big.Float).SetInt(q).Float64()
		return NewFloat(f), nil
	}
	return NewBigInt(q), nil
}

func Remainder(a, b Number) (Number, error) {
	if !a.IsInteger() || !b.IsInteger() {
		return Number{}, fmt.Errorf("remainder: integer arguments required")
	}
	ai, bi := a.Exact().i, b.Exact().i
	if bi.Sign() == 0 {
		return Number{}, fmt.Errorf("division by zero")
	}
	r := new(big.Int).Rem(ai, bi)
	if a.kind == KindFloat || b.kind == KindFloat {
		f, _ := new(big.Float).SetInt(r).Float64()
		return NewFloat(f), nil
	}
	return NewBigInt(r), nil
}

func Modulo(a, b Number) (Number, error) {
	if !a.IsInteger() || !b.IsInteger() {
		return Number{}, fmt.Errorf("modulo: integer arguments required")
	}
	ai, bi := a.Exact().i, b.Exact().i
	if bi.Sign() == 0 {
		return Number{}, fmt.Errorf("division by zero")
	}
	m := new(big.Int).Mod(ai, bi)
	if bi.Sign() < 0 && m.Sign() != 0 {
		m.Add(m, bi)
	}
	if a.kind == KindFloat || b.kind == KindFloat {
		f, _ := new(big.Float).SetInt(m).Float64()
		return NewFloat(f), nil
	}
	return NewBigInt(m), nil
}

// Bitwise operations require exact integers.
func bitwiseOperands(a, b Number) (*big.Int, *big.Int, error) {
	if a.kind != KindInteger || b.kind != KindInteger {
		return nil, nil, fmt.Errorf("bitwise operation requires exact integers")
	}
	return a.i, b.i, nil
}

func BitAnd(a, b Number) (Number, error) {
	ai, bi, err := bitwiseOperands(a, b)
	if err != nil {
		return Number{}, err
	}
	return NewBigInt(new(big.Int).And(ai, bi)), nil
}

func BitOr(a, b Number) (Number, error) {
	ai, bi, err := bitwiseOperands(a, b)
	if err != nil {
		return Number{}, err
	}
	return NewBigInt(new(big.Int).Or(ai, bi)), nil
}

func BitXor(a, b Number) (Number, error) {
	ai, bi, err := bitwiseOperands(a, b)
	if err != nil {
		return Number{}, err
	}
	return NewBigInt(new(big.Int).Xor(ai, bi)), nil
}

func BitNot(a Number) (Number, error) {
	if a.kind != KindInteger {
		return Number{}, fmt.Errorf("bitwise operation requires an exact integer")
	}
	return NewBigInt(new(big.Int).Not(a.i)), nil
}

// BitShift shifts left for positive amounts, right (arithmetic) for negative.
func BitShift(a Number, amount int) (Number, error) {
	if a.kind != KindInteger {
		return Number{}, fmt.Errorf("bitwise operation requires an exact integer")
	}
	if amount >= 0 {
		return NewBigInt(new(big.Int).Lsh(a.i, uint(amount))), nil
	}
	return NewBigInt(new(big.Int).Rsh(a.i, uint(-amount))), nil
}

// String renders the canonical external representation of a Number.
func (n Number) String() string {
	switch n.kind {
	case KindInteger:
		return n.i.String()
	case KindRational:
		return n.r.RatString()
	default:
		if math.IsInf(n.f, 1) {
			return "+inf.0"
		}
		if math.IsInf(n.f, -1) {
			return "-inf.0"
		}
		if math.IsNaN(n.f) {
			return "+nan.0"
		}
		s := fmt.Sprintf("%g", n.f)
		if !hasFloatMarker(s) {
			s += "."
		}
		return s
	}
}

func hasFloatMarker(s string) bool {
	for _, c := range s {
		if c == '.' || c == 'e' || c == 'E' {
			return true
		}
	}
	return false
}
