package datum

import "github.com/heist-scheme/heist/internal/numeric"

// Number is the Datum wrapper around the opaque numeric tower
// (spec §1: "the numeric-tower implementation (core uses it opaquely)").
type Number struct {
	Value numeric.Number
}

func NewNumber(n numeric.Number) Number { return Number{Value: n} }
func NewInt(v int64) Number             { return Number{Value: numeric.NewInt(v)} }

func (n Number) Kind() Kind      { return KindNumber }
func (n Number) Write() string   { return n.Value.String() }
func (n Number) Display() string { return n.Value.String() }
func (n Number) Hash() uint32    { return hashString(n.Value.String()) }
