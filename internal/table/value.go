package table

import (
	"math"
	"strconv"
	"strings"
)

type Kind uint8

const (
	KindMissing Kind = iota
	KindText
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "missing"
	}
}

// Value is a single immutable cell. The zero Value is missing, which is
// distinct from an empty string, numeric zero and false.
type Value struct {
	kind Kind
	text string
	num  float64
	b    bool
}

// Missing is the absent cell.
var Missing = Value{}

func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Number returns a numeric cell. NaN is stored as missing.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Missing
	}
	return Value{kind: KindNumber, num: f}
}

func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsMissing() bool { return v.kind == KindMissing }

func (v Value) AsText() (string, bool) {
	return v.text, v.kind == KindText
}

func (v Value) AsNumber() (float64, bool) {
	return v.num, v.kind == KindNumber
}

func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// Equal reports whether both cells have the same kind and content. Missing
// equals missing.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == o.text
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	}
	return true
}

// String renders the cell the way it is written to delimited files.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		if v.b {
			return "True"
		}
		return "False"
	}
	return ""
}

// ParseBool accepts only the literal spellings of true and false, in any
// case.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}
