package datum

// EmptyListType is the datum for the empty list, '(). It is a distinct
// singleton so list-shape predicates can test identity.
type EmptyListType struct{}

func (EmptyListType) Kind() Kind      { return KindEmptyList }
func (EmptyListType) Write() string   { return "()" }
func (EmptyListType) Display() string { return "()" }
func (EmptyListType) Hash() uint32    { return hashString("()") }

// EmptyList is the single shared empty-list value.
var EmptyList = EmptyListType{}

// VoidType is returned by forms with no useful value (an `if` with no
// alternative taken, `set!`, `define`, etc).
type VoidType struct{}

func (VoidType) Kind() Kind      { return KindVoid }
func (VoidType) Write() string   { return "" }
func (VoidType) Display() string { return "" }
func (VoidType) Hash() uint32    { return 0 }

// Void is the single shared void value.
var Void = VoidType{}

// UndefinedType marks a letrec-pre-bound name that has not yet been
// assigned (spec §4.1 letrec, §9 design notes on set!-over-undefined).
type UndefinedType struct{}

func (UndefinedType) Kind() Kind      { return KindUndefined }
func (UndefinedType) Write() string   { return "#<undefined>" }
func (UndefinedType) Display() string { return "#<undefined>" }
func (UndefinedType) Hash() uint32    { return 0 }

// Undefined is the single shared undefined-binding sentinel.
var Undefined = UndefinedType{}

// DNEType ("does not exist") marks the absence of a value where nil would
// be ambiguous with the empty list, e.g. a hash-map miss.
type DNEType struct{}

func (DNEType) Kind() Kind      { return KindDNE }
func (DNEType) Write() string   { return "#<dne>" }
func (DNEType) Display() string { return "#<dne>" }
func (DNEType) Hash() uint32    { return 0 }

// DNE is the single shared does-not-exist sentinel.
var DNE = DNEType{}

// SentinelArgType marks an argless application's sole operand, so the
// analyzer/applicator can distinguish "no arguments" from "one argument
// whose value happens to match" (spec §6, §9 Open Questions).
type SentinelArgType struct{}

func (SentinelArgType) Kind() Kind      { return KindDNE }
func (SentinelArgType) Write() string   { return "#!default" }
func (SentinelArgType) Display() string { return "#!default" }
func (SentinelArgType) Hash() uint32    { return 0 }

// SentinelArg is the single shared "no real argument" placeholder.
var SentinelArg = SentinelArgType{}

// EOF is the distinct character/port sentinel for end-of-file.
var EOF = Character{Value: -1, IsEOF: true}
