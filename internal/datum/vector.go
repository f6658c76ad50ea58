package datum

import "strings"

// Vector is a mutable, growable sequence of datums, shared across aliases
// (spec §3). It wraps a pointer to a Go slice so copies of the Vector
// value still observe pushes/mutations made through any alias.
type Vector struct {
	Items *[]Datum
}

func NewVector(items []Datum) Vector {
	cp := make([]Datum, len(items))
	copy(cp, items)
	return Vector{Items: &cp}
}

func (v Vector) Kind() Kind { return KindVector }
func (v Vector) Len() int   { return len(*v.Items) }
func (v Vector) Get(i int) Datum { return (*v.Items)[i] }
func (v Vector) Set(i int, d Datum) { (*v.Items)[i] = d }
func (v Vector) Push(d Datum) { *v.Items = append(*v.Items, d) }
func (v Vector) Hash() uint32 { return 0 }

func (v Vector) Write() string   { return formatVector(v, func(d Datum) string { return d.Write() }) }
func (v Vector) Display() string { return formatVector(v, func(d Datum) string { return d.Display() }) }

func formatVector(v Vector, render func(Datum) string) string {
	var b strings.Builder
	b.WriteString("#(")
	for i, item := range *v.Items {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(render(item))
	}
	b.WriteByte(')')
	return b.String()
}
