// Package value implements the tagged SQL value type stored in table
// rows and produced by literals, grounded on basic-sql's SqlValue union.
package value

import "fmt"

// Kind tags which variant a Value holds.
type Kind int

const (
	Null Kind = iota
	Integer
	Float
	String
)

// Value is a tagged union over the four storable SQL value kinds. The
// zero Value is Null.
type Value struct {
	kind   Kind
	intVal int32
	fltVal float32
	strVal string
}

// NewNull returns the Null value.
func NewNull() Value { return Value{kind: Null} }

// NewInteger returns an Integer value.
func NewInteger(i int32) Value { return Value{kind: Integer, intVal: i} }

// NewFloat returns a Float value.
func NewFloat(f float32) Value { return Value{kind: Float, fltVal: f} }

// NewString returns a String value.
func NewString(s string) Value { return Value{kind: String, strVal: s} }

// Kind returns the value's tag.
func (v Value) Kind() Kind { return v.kind }

// Integer returns the underlying int32; only meaningful when Kind() == Integer.
func (v Value) Integer() int32 { return v.intVal }

// Float returns the underlying float32; only meaningful when Kind() == Float.
func (v Value) Float() float32 { return v.fltVal }

// String formats the value: Null as the empty string, Integer and Float
// in decimal, and String as its underlying text.
func (v Value) String() string {
	switch v.kind {
	case Null:
		return ""
	case Integer:
		return fmt.Sprintf("%d", v.intVal)
	case Float:
		return fmt.Sprintf("%g", v.fltVal)
	case String:
		return v.strVal
	default:
		return ""
	}
}

// Equal compares two values per basic-sql's SqlValue::operator== rules:
// Integer and Float cross-compare numerically; same-kind String and
// Integer compare directly. Float == Float is additionally supported here
// (see DESIGN.md Open Question 1 — the original panics on this case).
func (a Value) Equal(b Value) bool {
	if a.kind == Null || b.kind == Null {
		return a.kind == Null && b.kind == Null
	}

	if a.kind == Integer && b.kind == Float {
		return float32(a.intVal) == b.fltVal
	}
	if a.kind == Float && b.kind == Integer {
		return a.fltVal == float32(b.intVal)
	}

	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case Integer:
		return a.intVal == b.intVal
	case Float:
		return a.fltVal == b.fltVal
	case String:
		return a.strVal == b.strVal
	default:
		return false
	}
}

// GreaterThan compares two values. As in SqlValue::operator>, Integer and
// Float cross-compare numerically and Float > Float is supported; same-kind
// Integer and String ordering are additions here (see DESIGN.md Open
// Question 7 for Integer > Integer).
func (a Value) GreaterThan(b Value) bool {
	if a.kind == Integer && b.kind == Float {
		return float32(a.intVal) > b.fltVal
	}
	if a.kind == Float && b.kind == Integer {
		return a.fltVal > float32(b.intVal)
	}
	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case Integer:
		return a.intVal > b.intVal
	case Float:
		return a.fltVal > b.fltVal
	case String:
		return a.strVal > b.strVal
	default:
		return false
	}
}

// NotEqual is the negation of Equal, matching SqlWhereClause's NotEqual operator.
func (a Value) NotEqual(b Value) bool {
	return !a.Equal(b)
}
