package datum

import "testing"

func TestEqIdentityVsValue(t *testing.T) {
	if !Eq(Symbol("x"), Symbol("x")) {
		t.Error("symbols with the same name should be eq?")
	}
	if !Eq(NewInt(1), NewInt(1)) {
		t.Error("exact integers with the same value should be eq?")
	}
	p1, p2 := Cons(NewInt(1), EmptyList), Cons(NewInt(1), EmptyList)
	if Eq(p1, p2) {
		t.Error("distinct pairs should not be eq? even with equal contents")
	}
	if !Eq(p1, p1) {
		t.Error("a pair should be eq? to itself")
	}
}

func TestEqDistinguishesDNESentinels(t *testing.T) {
	if !Eq(DNE, DNE) {
		t.Error("DNE should be eq? to itself")
	}
	if !Eq(SentinelArg, SentinelArg) {
		t.Error("SentinelArg should be eq? to itself")
	}
	if Eq(DNE, SentinelArg) {
		t.Error("DNE and SentinelArg share KindDNE but are distinct sentinels and must not be eq?")
	}
	if Eq(SentinelArg, DNE) {
		t.Error("Eq must be symmetric for DNE/SentinelArg")
	}
}

func TestEqualStructural(t *testing.T) {
	a := SliceToList([]Datum{NewInt(1), NewInt(2), NewInt(3)})
	b := SliceToList([]Datum{NewInt(1), NewInt(2), NewInt(3)})
	if !Equal(a, b) {
		t.Error("structurally identical lists should be equal?")
	}
	if Eq(a, b) {
		t.Error("structurally identical lists built separately should not be eq?")
	}
	c := SliceToList([]Datum{NewInt(1), NewInt(2)})
	if Equal(a, c) {
		t.Error("lists of different length should not be equal?")
	}
}

func TestEqualDottedLists(t *testing.T) {
	a := SliceToImproperList([]Datum{NewInt(1), NewInt(2)}, NewInt(3))
	b := SliceToImproperList([]Datum{NewInt(1), NewInt(2)}, NewInt(3))
	if !Equal(a, b) {
		t.Error("dotted lists with equal items and tail should be equal?")
	}
}

func TestEqualVectorsAndStrings(t *testing.T) {
	v1 := NewVector([]Datum{NewInt(1), NewInt(2)})
	v2 := NewVector([]Datum{NewInt(1), NewInt(2)})
	if !Equal(v1, v2) {
		t.Error("vectors with equal elements should be equal?")
	}
	s1, s2 := NewString("abc"), NewString("abc")
	if !Equal(s1, s2) {
		t.Error("strings with equal contents should be equal?")
	}
	if Eq(s1, s2) {
		t.Error("distinct string objects should not be eq?")
	}
}

func TestClassifyListShapes(t *testing.T) {
	proper := SliceToList([]Datum{NewInt(1), NewInt(2)})
	if shape, items, _ := ClassifyList(proper); shape != ListOK || len(items) != 2 {
		t.Fatalf("proper list: shape=%v items=%v", shape, items)
	}

	dotted := SliceToImproperList([]Datum{NewInt(1)}, NewInt(2))
	shape, _, tail := ClassifyList(dotted)
	if shape != ListDotted || !Equal(tail, NewInt(2)) {
		t.Fatalf("dotted list: shape=%v tail=%v", shape, tail)
	}

	cyclic := Cons(NewInt(1), nil)
	cyclic.Cdr = cyclic
	if shape, _, _ := ClassifyList(cyclic); shape != ListCyclic {
		t.Fatalf("self-cyclic pair: shape=%v, want ListCyclic", shape)
	}
}

func TestSliceRoundTrip(t *testing.T) {
	items := []Datum{NewInt(1), NewInt(2), NewInt(3)}
	list := SliceToList(items)
	back := ListToSlice(list)
	if len(back) != len(items) {
		t.Fatalf("got %d items back, want %d", len(back), len(items))
	}
	for i := range items {
		if !Eq(back[i], items[i]) {
			t.Errorf("item %d: got %v, want %v", i, back[i], items[i])
		}
	}
}

func TestVectorMutationSharedAcrossAliases(t *testing.T) {
	v := NewVector([]Datum{NewInt(1), NewInt(2)})
	alias := v
	alias.Set(0, NewInt(99))
	if v.Get(0).(Number).Value.String() != "99" {
		t.Error("Vector aliases should share backing storage")
	}
}

func TestHashMapGetSetDelete(t *testing.T) {
	h := NewHashMap()
	h.Set(NewString("a"), NewInt(1))
	v, ok := h.Get(NewString("a"))
	if !ok || v.(Number).Value.String() != "1" {
		t.Fatalf("Get after Set: v=%v ok=%v", v, ok)
	}
	if h.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", h.Len())
	}
	h.Delete(NewString("a"))
	if _, ok := h.Get(NewString("a")); ok {
		t.Fatal("expected key removed after Delete")
	}
}

func TestHashMapKeysDoNotCollideAcrossKinds(t *testing.T) {
	h := NewHashMap()
	h.Set(Symbol("foo"), NewInt(1))
	h.Set(NewString("foo"), NewInt(2))
	sym, ok := h.Get(Symbol("foo"))
	if !ok || sym.(Number).Value.String() != "1" {
		t.Fatalf("symbol key: %v %v", sym, ok)
	}
	str, ok := h.Get(NewString("foo"))
	if !ok || str.(Number).Value.String() != "2" {
		t.Fatalf("string key: %v %v", str, ok)
	}
}

func TestStringSetAndAppendMutateSharedBacking(t *testing.T) {
	s := NewString("abc")
	alias := s
	alias.Set(0, 'z')
	if s.Go() != "zbc" {
		t.Error("String aliases should share backing storage on Set")
	}
	s.Append([]rune("def"))
	if alias.Go() != "zbcdef" {
		t.Error("String aliases should observe Append through shared backing")
	}
}
