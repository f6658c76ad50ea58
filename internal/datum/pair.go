package datum

import "strings"

// Pair is a mutable cons cell. Car and Cdr are shared slots: mutation
// through set-car!/set-cdr! is visible through every alias, and pairs may
// form acyclic lists, dotted lists, or cyclic structures (spec §3, §9).
type Pair struct {
	Car, Cdr Datum
}

func Cons(car, cdr Datum) *Pair { return &Pair{Car: car, Cdr: cdr} }

func (p *Pair) Kind() Kind   { return KindPair }
func (p *Pair) Hash() uint32 { return 0 }

func (p *Pair) Write() string   { return formatPair(p, func(d Datum) string { return d.Write() }) }
func (p *Pair) Display() string { return formatPair(p, func(d Datum) string { return d.Display() }) }

func formatPair(p *Pair, render func(Datum) string) string {
	shape, items, tail := ClassifyList(p)
	var b strings.Builder
	b.WriteByte('(')
	for i, it := range items {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(render(it))
	}
	switch shape {
	case ListCyclic:
		b.WriteString(" ...")
	case ListDotted:
		b.WriteString(" . ")
		b.WriteString(render(tail))
	}
	b.WriteByte(')')
	return b.String()
}

// ListShape classifies a value reachable by walking Cdr pointers.
type ListShape int

const (
	// ListOK is a proper, acyclic, null-terminated list.
	ListOK ListShape = iota
	// ListDotted ends in a non-null, non-pair datum (a dotted list).
	ListDotted
	// ListCyclic contains a cycle, detected via Floyd's tortoise-and-hare
	// (spec §3, §9 "Cyclic pairs").
	ListCyclic
)

// ClassifyList walks d as a list and returns its shape, the elements
// collected before the cycle/tail/end, and (for dotted lists) the final
// non-pair tail.
func ClassifyList(d Datum) (ListShape, []Datum, Datum) {
	var items []Datum
	slow, fast := d, d
	advance := func(x Datum) (Datum, bool) {
		if p, ok := x.(*Pair); ok {
			return p.Cdr, true
		}
		return x, false
	}
	for {
		var ok bool
		fast, ok = advance(fast)
		if !ok {
			break
		}
		if _, isEmpty := fast.(EmptyListType); isEmpty {
			break
		}
		fast, ok = advance(fast)
		if !ok {
			break
		}
		if _, isEmpty := fast.(EmptyListType); isEmpty {
			break
		}
		slow, _ = advance(slow)
		if samePair(slow, fast) {
			// Cyclic: collect items up to (but not past) one full loop.
			items = nil
			cur := d
			seen := map[*Pair]bool{}
			for {
				p, ok := cur.(*Pair)
				if !ok || seen[p] {
					break
				}
				seen[p] = true
				items = append(items, p.Car)
				cur = p.Cdr
			}
			return ListCyclic, items, nil
		}
	}
	// No cycle: walk to the end collecting items.
	items = nil
	cur := d
	for {
		p, ok := cur.(*Pair)
		if !ok {
			break
		}
		items = append(items, p.Car)
		cur = p.Cdr
	}
	if _, isEmpty := cur.(EmptyListType); isEmpty {
		return ListOK, items, nil
	}
	return ListDotted, items, cur
}

func samePair(a, b Datum) bool {
	pa, ok1 := a.(*Pair)
	pb, ok2 := b.(*Pair)
	return ok1 && ok2 && pa == pb
}

// IsProperList reports whether d is an acyclic, null-terminated list.
func IsProperList(d Datum) bool {
	shape, _, _ := ClassifyList(d)
	return shape == ListOK
}

// ListToSlice converts a proper list to a Go slice, in order. The caller
// must have already checked the shape if dotted/cyclic lists matter.
func ListToSlice(d Datum) []Datum {
	_, items, _ := ClassifyList(d)
	return items
}

// SliceToList builds a proper list from a slice, in order.
func SliceToList(items []Datum) Datum {
	var result Datum = EmptyList
	for i := len(items) - 1; i >= 0; i-- {
		result = Cons(items[i], result)
	}
	return result
}

// SliceToImproperList builds a list from items with tail as the final cdr
// (tail may be EmptyList for a proper list or any datum for a dotted one).
func SliceToImproperList(items []Datum, tail Datum) Datum {
	result := tail
	for i := len(items) - 1; i >= 0; i-- {
		result = Cons(items[i], result)
	}
	return result
}
