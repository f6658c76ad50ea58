package datum

// Eq reports pointer/atom identity (Scheme eq?): numbers, characters, and
// booleans compare by value since they are small immediates; aggregates
// compare by identity.
func Eq(a, b Datum) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Symbol:
		return av == b.(Symbol)
	case Boolean:
		return av == b.(Boolean)
	case Character:
		return av.Value == b.(Character).Value && av.IsEOF == b.(Character).IsEOF
	case Number:
		return av.Value.IsExact() == b.(Number).Value.IsExact() && av.Value.String() == b.(Number).Value.String()
	case EmptyListType:
		return true
	case VoidType:
		return true
	case UndefinedType:
		return true
	case DNEType:
		_, ok := b.(DNEType)
		return ok
	case SentinelArgType:
		_, ok := b.(SentinelArgType)
		return ok
	case *Pair:
		return av == b.(*Pair)
	case String:
		return av.Chars == b.(String).Chars
	case Vector:
		return av.Items == b.(Vector).Items
	case HashMap:
		return av.entries == b.(HashMap).entries
	default:
		return a == b
	}
}

// Eqv is eqv?: like Eq but additionally compares numbers/characters by
// value regardless of exactness tagging subtleties already handled above.
func Eqv(a, b Datum) bool { return Eq(a, b) }

// Equal is equal?: structural equality over pairs, vectors, strings, and
// hash-maps, falling back to Eqv for atoms. Cyclic structures are handled
// by bounding recursion via the same tortoise/hare-classified item list.
func Equal(a, b Datum) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case *Pair:
		bShape, bItems, bTail := ClassifyList(b)
		aShape, aItems, aTail := ClassifyList(av)
		if aShape != bShape || len(aItems) != len(bItems) {
			return false
		}
		for i := range aItems {
			if !Equal(aItems[i], bItems[i]) {
				return false
			}
		}
		if aShape == ListDotted {
			return Equal(aTail, bTail)
		}
		return true
	case Vector:
		bv := b.(Vector)
		if av.Len() != bv.Len() {
			return false
		}
		for i := 0; i < av.Len(); i++ {
			if !Equal(av.Get(i), bv.Get(i)) {
				return false
			}
		}
		return true
	case String:
		return av.Go() == b.(String).Go()
	case HashMap:
		bm := b.(HashMap)
		if av.Len() != bm.Len() {
			return false
		}
		for _, e := range av.Pairs() {
			v, ok := bm.Get(e.key)
			if !ok || !Equal(e.value, v) {
				return false
			}
		}
		return true
	default:
		return Eqv(a, b)
	}
}
