package reader

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/heist-scheme/heist/internal/datum"
	"github.com/heist-scheme/heist/internal/numeric"
)

// Reader parses a stream of source text into top-level syntax-tree forms.
type Reader struct {
	lex  *lexer
	peek *token
}

func New(src string) *Reader { return &Reader{lex: newLexer(src)} }

// ReadAll parses every top-level form in the source.
func ReadAll(src string) ([]datum.Datum, error) {
	r := New(src)
	var forms []datum.Datum
	for {
		d, err := r.Read()
		if err != nil {
			return nil, err
		}
		if d == nil {
			return forms, nil
		}
		forms = append(forms, d)
	}
}

func (r *Reader) nextToken() (token, error) {
	if r.peek != nil {
		t := *r.peek
		r.peek = nil
		return t, nil
	}
	return r.lex.next()
}

func (r *Reader) peekToken() (token, error) {
	if r.peek == nil {
		t, err := r.lex.next()
		if err != nil {
			return token{}, err
		}
		r.peek = &t
	}
	return *r.peek, nil
}

// Read parses the next top-level form, or returns (nil, nil) at EOF.
func (r *Reader) Read() (datum.Datum, error) {
	t, err := r.nextToken()
	if err != nil {
		return nil, err
	}
	return r.readForm(t)
}

func (r *Reader) readForm(t token) (datum.Datum, error) {
	switch t.kind {
	case tokEOF:
		return nil, nil
	case tokLParen:
		return r.readList(t.line, t.column)
	case tokVecOpen:
		return r.readVector(t.line, t.column)
	case tokRParen:
		return nil, fmt.Errorf("unexpected ) at %d:%d", t.line, t.column)
	case tokQuote:
		return r.readWrapped("quote", t)
	case tokQuasiquote:
		return r.readWrapped("quasiquote", t)
	case tokUnquote:
		return r.readWrapped("unquote", t)
	case tokUnquoteSplicing:
		return r.readWrapped("unquote-splicing", t)
	case tokString:
		return datum.NewString(t.text), nil
	case tokChar:
		return parseChar(t.text)
	case tokDot:
		return nil, fmt.Errorf("unexpected . at %d:%d", t.line, t.column)
	case tokAtom:
		return parseAtom(t.text), nil
	default:
		return nil, fmt.Errorf("unrecognized token at %d:%d", t.line, t.column)
	}
}

func (r *Reader) readWrapped(tag string, t token) (datum.Datum, error) {
	next, err := r.nextToken()
	if err != nil {
		return nil, err
	}
	inner, err := r.readForm(next)
	if err != nil {
		return nil, err
	}
	if inner == nil {
		return nil, fmt.Errorf("%s: missing datum at %d:%d", tag, t.line, t.column)
	}
	return &datum.Expression{Items: []datum.Datum{datum.Symbol(tag), inner}, Line: t.line, Column: t.column}, nil
}

func (r *Reader) readList(line, col int) (datum.Datum, error) {
	var items []datum.Datum
	for {
		t, err := r.peekToken()
		if err != nil {
			return nil, err
		}
		if t.kind == tokEOF {
			return nil, fmt.Errorf("unterminated list starting at %d:%d", line, col)
		}
		if t.kind == tokRParen {
			r.nextToken()
			return &datum.Expression{Items: items, Line: line, Column: col}, nil
		}
		if t.kind == tokDot {
			r.nextToken()
			tailTok, err := r.nextToken()
			if err != nil {
				return nil, err
			}
			tail, err := r.readForm(tailTok)
			if err != nil {
				return nil, err
			}
			closeTok, err := r.nextToken()
			if err != nil {
				return nil, err
			}
			if closeTok.kind != tokRParen {
				return nil, fmt.Errorf("malformed dotted list at %d:%d", line, col)
			}
			items = append(items, datum.DotSymbol, tail)
			return &datum.Expression{Items: items, Line: line, Column: col}, nil
		}
		r.nextToken()
		item, err := r.readForm(t)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
}

func (r *Reader) readVector(line, col int) (datum.Datum, error) {
	var items []datum.Datum
	for {
		t, err := r.peekToken()
		if err != nil {
			return nil, err
		}
		if t.kind == tokEOF {
			return nil, fmt.Errorf("unterminated vector starting at %d:%d", line, col)
		}
		if t.kind == tokRParen {
			r.nextToken()
			return &datum.Expression{Items: append([]datum.Datum{datum.Symbol("vector")}, items...), Line: line, Column: col}, nil
		}
		r.nextToken()
		item, err := r.readForm(t)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
}

func parseChar(text string) (datum.Datum, error) {
	switch strings.ToLower(text) {
	case "space":
		return datum.NewChar(' '), nil
	case "newline", "linefeed":
		return datum.NewChar('\n'), nil
	case "tab":
		return datum.NewChar('\t'), nil
	case "return":
		return datum.NewChar('\r'), nil
	case "nul", "null":
		return datum.NewChar(0), nil
	case "delete", "rubout":
		return datum.NewChar(127), nil
	case "escape", "altmode":
		return datum.NewChar(27), nil
	case "backspace":
		return datum.NewChar(8), nil
	case "eof":
		return datum.EOF, nil
	}
	runes := []rune(text)
	if len(runes) == 1 {
		return datum.NewChar(runes[0]), nil
	}
	return nil, fmt.Errorf("unrecognized character literal #\\%s", text)
}

func parseAtom(text string) datum.Datum {
	switch text {
	case "#t", "#true":
		return datum.True
	case "#f", "#false":
		return datum.False
	case "#!default":
		return datum.SentinelArg
	}
	if n, ok := parseNumber(text); ok {
		return n
	}
	return datum.Symbol(text)
}

func parseNumber(text string) (datum.Datum, bool) {
	if text == "" || text == "+" || text == "-" || text == "..." || text == "." {
		return nil, false
	}
	radix := 10
	body := text
	for strings.HasPrefix(body, "#") && len(body) >= 2 {
		switch body[1] {
		case 'x', 'X':
			radix = 16
		case 'o', 'O':
			radix = 8
		case 'b', 'B':
			radix = 2
		case 'd', 'D':
			radix = 10
		case 'e', 'i':
			// exactness prefix, ignored at the lexical level here
		default:
			return nil, false
		}
		body = body[2:]
	}
	if idx := strings.IndexByte(body, '/'); idx > 0 {
		numStr, denStr := body[:idx], body[idx+1:]
		if isAllDigitsSigned(numStr, radix) && isAllDigitsSigned(denStr, radix) {
			num, ok1 := numeric.ParseInt(numStr, radix)
			den, ok2 := numeric.ParseInt(denStr, radix)
			if ok1 && ok2 {
				denRat, err := ratFromNumber(den)
				if err != nil || denRat.Sign() == 0 {
					return nil, false
				}
				numRat, _ := ratFromNumber(num)
				rat := new(big.Rat).Quo(numRat, denRat)
				return datum.NewNumber(numeric.NewRat(rat)), true
			}
		}
		return nil, false
	}
	if radix == 10 && strings.ContainsAny(body, ".eE") && body != "." {
		if n, ok := numeric.ParseFloat(body); ok {
			return datum.NewNumber(n), true
		}
		return nil, false
	}
	if isAllDigitsSigned(body, radix) {
		if n, ok := numeric.ParseInt(body, radix); ok {
			return datum.NewNumber(n), true
		}
	}
	return nil, false
}

func ratFromNumber(n numeric.Number) (*big.Rat, error) {
	i, ok := new(big.Int).SetString(n.String(), 10)
	if !ok {
		return nil, fmt.Errorf("not an integer: %s", n.String())
	}
	return new(big.Rat).SetInt(i), nil
}

func isAllDigitsSigned(s string, radix int) bool {
	if s == "" {
		return false
	}
	if s[0] == '+' || s[0] == '-' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for _, c := range s {
		if !isDigitInRadix(c, radix) {
			return false
		}
	}
	return true
}

func isDigitInRadix(c rune, radix int) bool {
	var v int
	switch {
	case c >= '0' && c <= '9':
		v = int(c - '0')
	case c >= 'a' && c <= 'z':
		v = int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		v = int(c-'A') + 10
	default:
		return false
	}
	return v < radix
}
