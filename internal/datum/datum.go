// Package datum defines Datum, the tagged sum of every runtime value the
// core evaluator produces or consumes (spec.md §3 DATA MODEL), along with
// the handful of sentinels (§6 EXTERNAL INTERFACES) the rest of the core
// dispatches on by identity.
//
// Datum mirrors the teacher repo's evaluator.Object convention (a small
// tag-returning interface implemented by a family of concrete struct
// types) but drops the static-type-system plumbing (RuntimeType, witness
// dispatch) that funxy's Object carries — this core is untyped Scheme, not
// a typeclass-dispatched language.
package datum

import "hash/fnv"

// Kind is the tag of a Datum's concrete case.
type Kind string

const (
	KindNumber     Kind = "NUMBER"
	KindCharacter  Kind = "CHARACTER"
	KindString     Kind = "STRING"
	KindSymbol     Kind = "SYMBOL"
	KindBoolean    Kind = "BOOLEAN"
	KindPair       Kind = "PAIR"
	KindEmptyList  Kind = "EMPTY_LIST"
	KindVector     Kind = "VECTOR"
	KindHashMap    Kind = "HASH_MAP"
	KindProcedure  Kind = "PROCEDURE"
	KindPrimitive  Kind = "PRIMITIVE"
	KindSyntaxRule Kind = "SYNTAX_RULES"
	KindDelay      Kind = "DELAY"
	KindPort       Kind = "PORT"
	KindPrototype  Kind = "PROTOTYPE"
	KindInstance   Kind = "OBJECT"
	KindExpression Kind = "EXPRESSION"
	KindVoid       Kind = "VOID"
	KindUndefined  Kind = "UNDEFINED"
	KindDNE        Kind = "DNE"
	KindTailCall   Kind = "TAIL_CALL"
	KindError      Kind = "ERROR"
	KindContinuation Kind = "CONTINUATION"
	KindJump       Kind = "JUMP"
)

// Datum is implemented by every runtime value case in spec.md §3.
type Datum interface {
	Kind() Kind
	// Write renders the external (write-style) representation: strings
	// are quoted, characters use #\ notation, lists detect cycles.
	Write() string
	// Display renders the human-facing representation: strings and
	// characters print their raw content.
	Display() string
	// Hash supports use as a HashMap key for hashable kinds (string,
	// number, character, symbol, boolean, nil); unhashable kinds return 0.
	Hash() uint32
}

func hashBytes(b []byte) uint32 {
	h := fnv.New32a()
	h.Write(b)
	return h.Sum32()
}

func hashString(s string) uint32 { return hashBytes([]byte(s)) }

// IsHashable reports whether d may be used as a HashMap key, per spec §3.
func IsHashable(d Datum) bool {
	switch d.Kind() {
	case KindString, KindNumber, KindCharacter, KindSymbol, KindBoolean, KindEmptyList:
		return true
	default:
		return false
	}
}
