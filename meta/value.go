package meta

import (
	"fmt"
	"strconv"

	"golang.org/x/exp/constraints"
)

// Value is an immutable tagged union over the types the registry can carry:
// none, bool, int, real, text, enum and object. The zero Value is None.
//
// Values never own the instance behind an object payload.
type Value struct {
	typ Type
	b   bool
	i   int64
	f   float64
	s   string
	e   EnumObject
	o   Object
}

// None is the empty value.
var None Value

func Bool(b bool) Value {
	return Value{typ: TypeBool, b: b}
}

func Int(i int64) Value {
	return Value{typ: TypeInt, i: i}
}

func Real(f float64) Value {
	return Value{typ: TypeReal, f: f}
}

func Text(s string) Value {
	return Value{typ: TypeText, s: s}
}

// FromInt builds an int value from any native integer type.
func FromInt[T constraints.Integer](i T) Value {
	return Int(int64(i))
}

// FromFloat builds a real value from any native float type.
func FromFloat[T constraints.Float](f T) Value {
	return Real(float64(f))
}

func EnumVal(e EnumObject) Value {
	return Value{typ: TypeEnum, e: e}
}

// ObjectVal wraps an object handle. Wrapping Nothing yields an object value
// that holds no instance; it is not None.
func ObjectVal(o Object) Value {
	return Value{typ: TypeObject, o: o}
}

func (v Value) Type() Type {
	return v.typ
}

func (v Value) IsNone() bool {
	return v.typ == TypeNone
}

// Visitor receives the payload of a Value, dispatched on its tag.
type Visitor[R any] interface {
	VisitNone() R
	VisitBool(b bool) R
	VisitInt(i int64) R
	VisitReal(f float64) R
	VisitText(s string) R
	VisitEnum(e EnumObject) R
	VisitObject(o Object) R
}

// Visit calls the method of vis matching the tag of v.
func Visit[R any](v Value, vis Visitor[R]) R {
	switch v.typ {
	case TypeBool:
		return vis.VisitBool(v.b)
	case TypeInt:
		return vis.VisitInt(v.i)
	case TypeReal:
		return vis.VisitReal(v.f)
	case TypeText:
		return vis.VisitText(v.s)
	case TypeEnum:
		return vis.VisitEnum(v.e)
	case TypeObject:
		return vis.VisitObject(v.o)
	default:
		return vis.VisitNone()
	}
}

type formatter struct{}

func (formatter) VisitNone() string {
	return ""
}

func (formatter) VisitBool(b bool) string {
	return strconv.FormatBool(b)
}

func (formatter) VisitInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

func (formatter) VisitReal(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func (formatter) VisitText(s string) string {
	return s
}

func (formatter) VisitEnum(e EnumObject) string {
	return e.String()
}

func (formatter) VisitObject(o Object) string {
	return o.String()
}

// String renders the value in its textual form. Primitive values round trip
// through Parse; enums render their name and objects a diagnostic handle.
func (v Value) String() string {
	return Visit[string](v, formatter{})
}

// Parse reads the textual form of a primitive value of type t.
func Parse(t Type, s string) (Value, error) {
	switch t {
	case TypeNone:
		if s != "" {
			return None, badType(TypeText, TypeNone.String(), fmt.Errorf("unexpected text %q", s))
		}
		return None, nil
	case TypeBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return None, badType(TypeText, t.String(), err)
		}
		return Bool(b), nil
	case TypeInt:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return None, badType(TypeText, t.String(), err)
		}
		return Int(i), nil
	case TypeReal:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return None, badType(TypeText, t.String(), err)
		}
		return Real(f), nil
	case TypeText:
		return Text(s), nil
	}
	return None, badType(TypeText, t.String(), nil)
}
