package stcl

import (
	"fmt"
)

// ValueKind identifies the kind of a parsed value.
type ValueKind int

const (
	NumberValue ValueKind = iota
	StringValue
	BooleanValue
	ArrayValue
	HashValue
)

// Value is one parsed value: a number, string, boolean, array, or hash.
type Value struct {
	kind ValueKind
	num  float64
	str  string
	b    bool
	arr  []*Value
	hash *Hash
}

// Kind returns the kind of the value.
func (v *Value) Kind() ValueKind { return v.kind }

// Number returns the numeric value; valid only for NumberValue.
func (v *Value) Number() float64 { return v.num }

// String returns the string value; valid only for StringValue.
func (v *Value) String() string { return v.str }

// Boolean returns the boolean value; valid only for BooleanValue.
func (v *Value) Boolean() bool { return v.b }

// Array returns the element values; valid only for ArrayValue.
func (v *Value) Array() []*Value { return v.arr }

// Hash returns the key-value body; valid only for HashValue.
func (v *Value) Hash() *Hash { return v.hash }

// Hash is an ordered-irrelevant key-value body with typed accessors. Absent
// keys and type mismatches both report "not present"; the merge engine
// treats the two identically.
type Hash struct {
	fields map[string]*Value
}

// Get returns the raw value for a key.
func (h *Hash) Get(key string) (*Value, bool) {
	v, ok := h.fields[key]
	return v, ok
}

// GetString returns the string value for a key.
func (h *Hash) GetString(key string) (string, bool) {
	v, ok := h.fields[key]
	if !ok || v.kind != StringValue {
		return "", false
	}
	return v.str, true
}

// GetNumber returns the numeric value for a key.
func (h *Hash) GetNumber(key string) (float64, bool) {
	v, ok := h.fields[key]
	if !ok || v.kind != NumberValue {
		return 0, false
	}
	return v.num, true
}

// GetBoolean returns the boolean value for a key.
func (h *Hash) GetBoolean(key string) (bool, bool) {
	v, ok := h.fields[key]
	if !ok || v.kind != BooleanValue {
		return false, false
	}
	return v.b, true
}

// GetAngle returns an angle in degrees.
func (h *Hash) GetAngle(key string) (float64, bool) {
	return h.GetNumber(key)
}

// GetLength returns a length scaled by the caller's unit factor, e.g. a
// distance in light years stays in light years with scale 1.
func (h *Hash) GetLength(key string, scale float64) (float64, bool) {
	v, ok := h.GetNumber(key)
	if !ok {
		return 0, false
	}
	return v * scale, true
}

// GetVector3 returns a three-element numeric array.
func (h *Hash) GetVector3(key string) ([3]float64, bool) {
	v, ok := h.fields[key]
	if !ok || v.kind != ArrayValue || len(v.arr) != 3 {
		return [3]float64{}, false
	}
	var out [3]float64
	for i, e := range v.arr {
		if e.kind != NumberValue {
			return [3]float64{}, false
		}
		out[i] = e.num
	}
	return out, true
}

// Parser reads structured values from a token stream.
type Parser struct {
	tok *Tokenizer
}

// NewParser creates a parser over tok.
func NewParser(tok *Tokenizer) *Parser {
	return &Parser{tok: tok}
}

// ReadValue parses the next complete value from the stream.
func (p *Parser) ReadValue() (*Value, error) {
	switch p.tok.NextToken() {
	case TokenNumber:
		return &Value{kind: NumberValue, num: p.tok.Number()}, nil
	case TokenString:
		return &Value{kind: StringValue, str: p.tok.Text()}, nil
	case TokenName:
		switch p.tok.Text() {
		case "true":
			return &Value{kind: BooleanValue, b: true}, nil
		case "false":
			return &Value{kind: BooleanValue, b: false}, nil
		}
		return nil, fmt.Errorf("line %d: unexpected name %q", p.tok.LineNumber(), p.tok.Text())
	case TokenBeginArray:
		return p.readArray()
	case TokenBeginGroup:
		return p.readHash()
	case TokenError:
		return nil, fmt.Errorf("line %d: %s", p.tok.LineNumber(), p.tok.Err())
	case TokenEnd:
		return nil, fmt.Errorf("unexpected end of stream")
	default:
		return nil, fmt.Errorf("line %d: unexpected token", p.tok.LineNumber())
	}
}

func (p *Parser) readArray() (*Value, error) {
	var arr []*Value
	for {
		kind := p.tok.NextToken()
		if kind == TokenEndArray {
			return &Value{kind: ArrayValue, arr: arr}, nil
		}
		if kind == TokenEnd {
			return nil, fmt.Errorf("line %d: unterminated array", p.tok.LineNumber())
		}
		p.tok.PushBack()

		v, err := p.ReadValue()
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

func (p *Parser) readHash() (*Value, error) {
	fields := make(map[string]*Value)
	for {
		switch p.tok.NextToken() {
		case TokenEndGroup:
			return &Value{kind: HashValue, hash: &Hash{fields: fields}}, nil
		case TokenName:
			key := p.tok.Text()
			v, err := p.ReadValue()
			if err != nil {
				return nil, err
			}
			fields[key] = v
		case TokenEnd:
			return nil, fmt.Errorf("line %d: unterminated group", p.tok.LineNumber())
		default:
			return nil, fmt.Errorf("line %d: expected property name", p.tok.LineNumber())
		}
	}
}

// NewHash builds a hash directly; used by tests.
func NewHash(fields map[string]*Value) *Hash {
	return &Hash{fields: fields}
}

// Num wraps a float64 as a Value.
func Num(v float64) *Value { return &Value{kind: NumberValue, num: v} }

// Str wraps a string as a Value.
func Str(s string) *Value { return &Value{kind: StringValue, str: s} }
