// Package models defines data structures shared by the extraction, review and publish steps.
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Decoding errors.
var (
	ErrTrailingData = errors.New("unexpected data after top-level JSON value")
	ErrTooDeep      = errors.New("JSON nesting exceeds maximum depth")
)

// maxDepth bounds array/object nesting, matching encoding/json.
const maxDepth = 10000

// Kind identifies which variant a Value holds.
type Kind int

// Value kinds.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a decoded JSON value of any shape.
// Numbers keep their literal text so nothing is lost to float conversion.
type Value struct {
	obj  *Object
	str  string
	arr  []Value
	kind Kind
	b    bool
}

// Null returns the JSON null value.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number wraps a numeric literal such as "42" or "3.5".
func Number(literal string) Value { return Value{kind: KindNumber, str: literal} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Array wraps a list of values.
func Array(items ...Value) Value { return Value{kind: KindArray, arr: items} }

// ObjectValue wraps an object.
func ObjectValue(o *Object) Value {
	if o == nil {
		o = NewObject()
	}

	return Value{kind: KindObject, obj: o}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsCompound reports whether v is an array or an object.
func (v Value) IsCompound() bool { return v.kind == KindArray || v.kind == KindObject }

// Str returns the string payload and whether v is a string.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}

	return v.str, true
}

// Object returns the object payload and whether v is an object.
func (v Value) Object() (*Object, bool) {
	if v.kind != KindObject {
		return nil, false
	}

	return v.obj, true
}

// String renders v the way it is shown to an operator.
// Strings render bare; compound values render as list/dict literals,
// e.g. ['Go', 'Rust'] or {'min': 10}.
func (v Value) String() string {
	if v.kind == KindString {
		return v.str
	}

	var sb strings.Builder
	v.writeLiteral(&sb)

	return sb.String()
}

func (v Value) writeLiteral(sb *strings.Builder) {
	switch v.kind {
	case KindNull:
		sb.WriteString("None")
	case KindBool:
		if v.b {
			sb.WriteString("True")
		} else {
			sb.WriteString("False")
		}
	case KindNumber:
		sb.WriteString(numberLiteral(v.str))
	case KindString:
		sb.WriteString(quoteLiteral(v.str))
	case KindArray:
		sb.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				sb.WriteString(", ")
			}
			item.writeLiteral(sb)
		}
		sb.WriteByte(']')
	case KindObject:
		sb.WriteByte('{')
		for i, key := range v.obj.Keys() {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(quoteLiteral(key))
			sb.WriteString(": ")
			item, _ := v.obj.Get(key)
			item.writeLiteral(sb)
		}
		sb.WriteByte('}')
	}
}

// quoteLiteral prefers single quotes and switches to double quotes only when
// the text contains a single quote and no double quote.
func quoteLiteral(s string) string {
	quote := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}

	var sb strings.Builder
	sb.WriteByte(quote)

	for _, r := range s {
		switch {
		case r == '\\':
			sb.WriteString(`\\`)
		case r == rune(quote):
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}

	sb.WriteByte(quote)

	return sb.String()
}

// numberLiteral renders a JSON number the way a decoded float or int prints:
// integers keep their digits, fractions and exponents become the shortest
// float form (10.50 -> 10.5, 1e3 -> 1000.0, 1e-5 -> 1e-05).
func numberLiteral(literal string) string {
	if !strings.ContainsAny(literal, ".eE") {
		if literal == "-0" {
			return "0"
		}

		return literal
	}

	f, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) && math.IsInf(f, 0) {
			if f < 0 {
				return "-inf"
			}

			return "inf"
		}

		return literal
	}

	exp := strconv.FormatFloat(f, 'e', -1, 64)

	n, err := strconv.Atoi(exp[strings.IndexByte(exp, 'e')+1:])
	if err != nil || n < -4 || n >= 16 {
		return exp
	}

	fixed := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(fixed, ".") {
		fixed += ".0"
	}

	return fixed
}

// DecodeValue parses a complete JSON document into a Value.
// Object key order is preserved.
func DecodeValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeNext(dec, 0)
	if err != nil {
		return Value{}, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, ErrTrailingData
	}

	return v, nil
}

func decodeNext(dec *json.Decoder, depth int) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		if depth >= maxDepth {
			return Value{}, ErrTooDeep
		}

		switch t {
		case '{':
			return decodeObject(dec, depth+1)
		case '[':
			return decodeArray(dec, depth+1)
		default:
			return Value{}, fmt.Errorf("unexpected delimiter %q", t)
		}
	case bool:
		return Bool(t), nil
	case json.Number:
		return Number(t.String()), nil
	case string:
		return String(t), nil
	case nil:
		return Null(), nil
	default:
		return Value{}, fmt.Errorf("unexpected token %v", t)
	}
}

func decodeObject(dec *json.Decoder, depth int) (Value, error) {
	obj := NewObject()

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}

		key, ok := keyTok.(string)
		if !ok {
			return Value{}, fmt.Errorf("object key is %T, not string", keyTok)
		}

		item, err := decodeNext(dec, depth)
		if err != nil {
			return Value{}, err
		}

		obj.Set(key, item)
	}

	// closing '}'
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}

	return ObjectValue(obj), nil
}

func decodeArray(dec *json.Decoder, depth int) (Value, error) {
	items := []Value{}

	for dec.More() {
		item, err := decodeNext(dec, depth)
		if err != nil {
			return Value{}, err
		}

		items = append(items, item)
	}

	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}

	return Array(items...), nil
}
