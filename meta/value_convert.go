package meta

import (
	"reflect"
	"strconv"

	"github.com/pkg/errors"
)

// Directed conversions. None converts to nothing; bool, int, real and text
// convert between each other (text through its standard textual form); enums
// convert to and from their integer and, through their name table, to and
// from text; objects convert only along their class hierarchy.

func (v Value) ToBool() (bool, error) {
	switch v.typ {
	case TypeBool:
		return v.b, nil
	case TypeInt:
		return v.i != 0, nil
	case TypeReal:
		return v.f != 0, nil
	case TypeText:
		b, err := strconv.ParseBool(v.s)
		if err != nil {
			return false, badType(v.typ, TypeBool.String(), err)
		}
		return b, nil
	case TypeEnum:
		return v.e.value != 0, nil
	}
	return false, badType(v.typ, TypeBool.String(), nil)
}

func (v Value) ToInt() (int64, error) {
	switch v.typ {
	case TypeBool:
		if v.b {
			return 1, nil
		}
		return 0, nil
	case TypeInt:
		return v.i, nil
	case TypeReal:
		return int64(v.f), nil
	case TypeText:
		i, err := strconv.ParseInt(v.s, 10, 64)
		if err != nil {
			return 0, badType(v.typ, TypeInt.String(), err)
		}
		return i, nil
	case TypeEnum:
		return v.e.value, nil
	}
	return 0, badType(v.typ, TypeInt.String(), nil)
}

func (v Value) ToReal() (float64, error) {
	switch v.typ {
	case TypeBool:
		if v.b {
			return 1, nil
		}
		return 0, nil
	case TypeInt:
		return float64(v.i), nil
	case TypeReal:
		return v.f, nil
	case TypeText:
		f, err := strconv.ParseFloat(v.s, 64)
		if err != nil {
			return 0, badType(v.typ, TypeReal.String(), err)
		}
		return f, nil
	case TypeEnum:
		return float64(v.e.value), nil
	}
	return 0, badType(v.typ, TypeReal.String(), nil)
}

func (v Value) ToText() (string, error) {
	switch v.typ {
	case TypeBool, TypeInt, TypeReal, TypeText:
		return v.String(), nil
	case TypeEnum:
		if v.e.enum == nil {
			break
		}
		name, err := v.e.enum.Name(v.e.value)
		if err != nil {
			return "", badType(v.typ, TypeText.String(), err)
		}
		return name, nil
	}
	return "", badType(v.typ, TypeText.String(), nil)
}

// ToEnum converts the value to a member of e. Integers are taken as the
// underlying value without checking that e declares it; text must be one of
// the declared names.
func (v Value) ToEnum(e *Enum) (EnumObject, error) {
	to := "enum " + e.ID()
	switch v.typ {
	case TypeEnum:
		return e.Of(v.e.value), nil
	case TypeBool, TypeInt, TypeReal:
		i, _ := v.ToInt()
		return e.Of(i), nil
	case TypeText:
		i, err := e.Value(v.s)
		if err != nil {
			return EnumObject{}, badType(v.typ, to, err)
		}
		return e.Of(i), nil
	}
	return EnumObject{}, badType(v.typ, to, nil)
}

// ToObject converts an object value to an instance of c, adjusting the
// instance pointer along the class hierarchy. An object value holding Nothing
// converts to Nothing.
func (v Value) ToObject(c *Class) (Object, error) {
	to := "class " + c.ID()
	if v.typ != TypeObject {
		return Nothing, badType(v.typ, to, nil)
	}
	if v.o.IsNothing() {
		return Nothing, nil
	}
	o, err := v.o.Cast(c)
	if err != nil {
		return Nothing, badType(v.typ, to, err)
	}
	return o, nil
}

// CompatibleWith reports whether a directed conversion to t would succeed.
// Enum and object targets are only checked by tag here; use IsCompatible for
// a check against a concrete native type.
func (v Value) CompatibleWith(t Type) bool {
	var err error
	switch t {
	case TypeBool:
		_, err = v.ToBool()
	case TypeInt:
		_, err = v.ToInt()
	case TypeReal:
		_, err = v.ToReal()
	case TypeText:
		_, err = v.ToText()
	case TypeEnum:
		switch v.typ {
		case TypeEnum, TypeBool, TypeInt, TypeReal:
		default:
			return false
		}
	case TypeObject:
		return v.typ == TypeObject
	default:
		return false
	}
	return err == nil
}

// registry returns the registry the value's descriptor belongs to, falling
// back to the process-wide one.
func (v Value) registry() *Registry {
	switch v.typ {
	case TypeEnum:
		if v.e.enum != nil && v.e.enum.registry != nil {
			return v.e.enum.registry
		}
	case TypeObject:
		if v.o.class != nil && v.o.class.registry != nil {
			return v.o.class.registry
		}
	}
	return Default()
}

// To converts v to the native type T. T may be a primitive kind, an enum or
// class type registered in the registry v's descriptor belongs to (or the
// default registry), or a pointer to a registered class.
func To[T any](v Value) (T, error) {
	return ToIn[T](v.registry(), v)
}

// ToIn is To with an explicit registry.
func ToIn[T any](r *Registry, v Value) (T, error) {
	var zero T
	rv, err := r.convert(reflect.TypeFor[T](), v)
	if err != nil {
		return zero, err
	}
	return rv.Interface().(T), nil
}

// IsCompatible reports whether To[T] would succeed.
func IsCompatible[T any](v Value) bool {
	_, err := To[T](v)
	return err == nil
}

// MustTo is To for bootstrap and test code; it panics on failure.
func MustTo[T any](v Value) T {
	t, err := To[T](v)
	if err != nil {
		panic(errors.Wrap(err, "MustTo"))
	}
	return t
}
