package datum

import (
	"sort"
	"strings"
)

type hashEntry struct {
	key   Datum
	value Datum
}

// HashMap maps hashable keys (string/number/character/symbol/boolean/nil,
// per spec §3) to datums. It is shared and mutation is observable through
// all aliases, like Pair/Vector/String.
type HashMap struct {
	entries *map[string]hashEntry
}

func NewHashMap() HashMap {
	m := make(map[string]hashEntry)
	return HashMap{entries: &m}
}

func (h HashMap) Kind() Kind { return KindHashMap }
func (h HashMap) Hash() uint32 { return 0 }

// canonicalKey combines the kind tag with the external representation so
// distinct kinds that happen to render similarly (e.g. symbol foo vs.
// string "foo") never collide.
func canonicalKey(d Datum) string {
	return string(d.Kind()) + ":" + d.Write()
}

func (h HashMap) Get(key Datum) (Datum, bool) {
	e, ok := (*h.entries)[canonicalKey(key)]
	if !ok {
		return nil, false
	}
	return e.value, true
}

func (h HashMap) Set(key, value Datum) {
	(*h.entries)[canonicalKey(key)] = hashEntry{key: key, value: value}
}

func (h HashMap) Delete(key Datum) {
	delete(*h.entries, canonicalKey(key))
}

func (h HashMap) Len() int { return len(*h.entries) }

func (h HashMap) Has(key Datum) bool {
	_, ok := (*h.entries)[canonicalKey(key)]
	return ok
}

// Pairs returns (key, value) entries in a stable, sorted-by-canonical-key
// order so Write()/Display() and iteration are deterministic.
func (h HashMap) Pairs() []hashEntry {
	result := make([]hashEntry, 0, len(*h.entries))
	keys := make([]string, 0, len(*h.entries))
	for k := range *h.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		result = append(result, (*h.entries)[k])
	}
	return result
}

func (h HashMap) Write() string   { return formatHashMap(h, func(d Datum) string { return d.Write() }) }
func (h HashMap) Display() string { return formatHashMap(h, func(d Datum) string { return d.Display() }) }

func formatHashMap(h HashMap, render func(Datum) string) string {
	var b strings.Builder
	b.WriteString("#[hash-map")
	for _, e := range h.Pairs() {
		b.WriteByte(' ')
		b.WriteByte('(')
		b.WriteString(render(e.key))
		b.WriteString(" . ")
		b.WriteString(render(e.value))
		b.WriteByte(')')
	}
	b.WriteByte(']')
	return b.String()
}
