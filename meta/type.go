package meta

import (
	"fmt"
	"reflect"
)

// Type is the runtime tag of a Value, and the declared type of a property,
// function parameter or array element.
type Type int

const (
	TypeNone Type = iota
	TypeBool
	TypeInt
	TypeReal
	TypeText
	TypeEnum
	TypeObject
	TypeArray
	TypeFunction

	type__firstPrimitive = TypeNone
	type__lastPrimitive  = TypeText
	type__firstNumeric   = TypeBool
	type__lastNumeric    = TypeReal
	type__lastValue      = TypeObject
)

var typeNames = [...]string{
	TypeNone:     "none",
	TypeBool:     "bool",
	TypeInt:      "int",
	TypeReal:     "real",
	TypeText:     "text",
	TypeEnum:     "enum",
	TypeObject:   "object",
	TypeArray:    "array",
	TypeFunction: "function",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// IsPrimitive reports whether values of this type have a textual round trip
// of their own (none, bool, int, real and text).
func (t Type) IsPrimitive() bool {
	return type__firstPrimitive <= t && t <= type__lastPrimitive
}

func (t Type) IsNumeric() bool {
	return type__firstNumeric <= t && t <= type__lastNumeric
}

// IsValueType reports whether a Value can carry this tag. Array and function
// only describe members.
func (t Type) IsValueType() bool {
	return TypeNone <= t && t <= type__lastValue
}

// kindType maps a native kind to the primitive tag it is stored as.
func kindType(k reflect.Kind) (Type, bool) {
	switch k {
	case reflect.Bool:
		return TypeBool, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return TypeInt, true
	case reflect.Float32, reflect.Float64:
		return TypeReal, true
	case reflect.String:
		return TypeText, true
	}
	return TypeNone, false
}
