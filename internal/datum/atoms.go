package datum

import (
	"fmt"
	"strings"
)

// Character is an 8-bit character value. EOF is represented by the
// distinct IsEOF flag rather than by overloading Value (spec §3).
type Character struct {
	Value int32
	IsEOF bool
}

func NewChar(r rune) Character { return Character{Value: r} }

func (c Character) Kind() Kind { return KindCharacter }
func (c Character) Write() string {
	if c.IsEOF {
		return "#\\eof"
	}
	if name, ok := charName(c.Value); ok {
		return "#\\" + name
	}
	return "#\\" + string(rune(c.Value))
}
func (c Character) Display() string {
	if c.IsEOF {
		return ""
	}
	return string(rune(c.Value))
}
func (c Character) Hash() uint32 { return uint32(c.Value) }

var charNames = map[int32]string{
	' ':  "space",
	'\n': "newline",
	'\t': "tab",
	'\r': "return",
	0:    "nul",
	127:  "delete",
	27:   "escape",
	8:    "backspace",
}

func charName(r int32) (string, bool) {
	name, ok := charNames[r]
	return name, ok
}

// String is a mutable, interior-mutable sequence of characters
// (spec §3: "mutable sequence of characters; interior-mutable").
// Mutation is observable through all aliases, so String is a pointer
// to a shared rune slice.
type String struct {
	Chars *[]rune
}

func NewString(s string) String {
	runes := []rune(s)
	return String{Chars: &runes}
}

func NewStringFromRunes(runes []rune) String {
	r := make([]rune, len(runes))
	copy(r, runes)
	return String{Chars: &r}
}

func (s String) Kind() Kind { return KindString }
func (s String) Go() string { return string(*s.Chars) }
func (s String) Len() int   { return len(*s.Chars) }

func (s String) Write() string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range *s.Chars {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
func (s String) Display() string { return string(*s.Chars) }
func (s String) Hash() uint32    { return hashString(s.Go()) }

// Set mutates the character at index i in place, visible to all aliases.
func (s String) Set(i int, r rune) { (*s.Chars)[i] = r }

// Append grows the underlying rune slice in place.
func (s String) Append(more []rune) { *s.Chars = append(*s.Chars, more...) }

// Symbol is an interned name. Because Go compares strings by value,
// equal Symbol values are indistinguishable regardless of provenance,
// which is exactly what "interned" buys a reader/analyzer in practice.
type Symbol string

func (s Symbol) Kind() Kind      { return KindSymbol }
func (s Symbol) Write() string   { return string(s) }
func (s Symbol) Display() string { return string(s) }
func (s Symbol) Hash() uint32    { return hashString(string(s)) }
func (s Symbol) String() string  { return string(s) }

// Boolean is the primitive true/false datum. Truthiness beyond #f/#t is
// configurable (spec §3 "Falsey values") and lives in the evaluator's
// runtime state, not on Boolean itself.
type Boolean bool

func (b Boolean) Kind() Kind { return KindBoolean }
func (b Boolean) Write() string {
	if b {
		return "#t"
	}
	return "#f"
}
func (b Boolean) Display() string { return b.Write() }
func (b Boolean) Hash() uint32 {
	if b {
		return 1
	}
	return 0
}

var (
	True  = Boolean(true)
	False = Boolean(false)
)

// Unreachable formats an internal invariant violation; the core never
// triggers this in a well-formed program and it indicates a bug in
// analyze/evaluate rather than a user error.
func Unreachable(format string, args ...interface{}) string {
	return fmt.Sprintf("unreachable: "+format, args...)
}
