package meta

import (
	"reflect"
	"unsafe"

	"github.com/pkg/errors"
)

var (
	valueType  = reflect.TypeFor[Value]()
	objectType = reflect.TypeFor[Object]()
)

// codec moves values between a native Go value and a Value for one native
// type. get reads from rv; set writes into rv, which must be settable.
type codec struct {
	typ   Type
	enum  *Enum
	class *Class
	get   func(rv reflect.Value) (Value, error)
	set   func(rv reflect.Value, v Value) error
}

// codecFor builds the codec of native type t. self is the class being
// declared, if any, so that a class may hold pointers to its own type before
// it is registered.
func (r *Registry) codecFor(t reflect.Type, self *Class) (*codec, error) {
	if t == valueType {
		return &codec{
			typ: TypeNone,
			get: func(rv reflect.Value) (Value, error) {
				return rv.Interface().(Value), nil
			},
			set: func(rv reflect.Value, v Value) error {
				rv.Set(reflect.ValueOf(v))
				return nil
			},
		}, nil
	}
	if t == objectType {
		return &codec{
			typ: TypeObject,
			get: func(rv reflect.Value) (Value, error) {
				return ObjectVal(rv.Interface().(Object)), nil
			},
			set: func(rv reflect.Value, v Value) error {
				if v.typ != TypeObject {
					return badType(v.typ, TypeObject.String(), nil)
				}
				rv.Set(reflect.ValueOf(v.o))
				return nil
			},
		}, nil
	}
	if e := r.enumTypes[t]; e != nil {
		return enumCodec(e), nil
	}
	if c := r.classOfType(t, self); c != nil {
		return structCodec(r, c), nil
	}
	if t.Kind() == reflect.Pointer {
		if c := r.classOfType(t.Elem(), self); c != nil {
			return pointerCodec(r, c), nil
		}
	}

	tag, ok := kindType(t.Kind())
	if !ok {
		return nil, errors.WithMessagef(ErrBadType, "native type %s is not supported", t)
	}
	return primitiveCodec(tag, t.Kind()), nil
}

func (r *Registry) classOfType(t reflect.Type, self *Class) *Class {
	if self != nil && self.typ == t {
		return self
	}
	return r.classTypes[t]
}

func primitiveCodec(tag Type, kind reflect.Kind) *codec {
	c := &codec{typ: tag}
	switch tag {
	case TypeBool:
		c.get = func(rv reflect.Value) (Value, error) {
			return Bool(rv.Bool()), nil
		}
		c.set = func(rv reflect.Value, v Value) error {
			b, err := v.ToBool()
			if err != nil {
				return err
			}
			rv.SetBool(b)
			return nil
		}
	case TypeInt:
		unsigned := kind >= reflect.Uint && kind <= reflect.Uintptr
		c.get = func(rv reflect.Value) (Value, error) {
			if unsigned {
				return Int(int64(rv.Uint())), nil
			}
			return Int(rv.Int()), nil
		}
		c.set = func(rv reflect.Value, v Value) error {
			i, err := v.ToInt()
			if err != nil {
				return err
			}
			return setInteger(rv, v.typ, i)
		}
	case TypeReal:
		c.get = func(rv reflect.Value) (Value, error) {
			return Real(rv.Float()), nil
		}
		c.set = func(rv reflect.Value, v Value) error {
			f, err := v.ToReal()
			if err != nil {
				return err
			}
			rv.SetFloat(f)
			return nil
		}
	case TypeText:
		c.get = func(rv reflect.Value) (Value, error) {
			return Text(rv.String()), nil
		}
		c.set = func(rv reflect.Value, v Value) error {
			s, err := v.ToText()
			if err != nil {
				return err
			}
			rv.SetString(s)
			return nil
		}
	}
	return c
}

func enumCodec(e *Enum) *codec {
	unsigned := false
	if e.typ != nil {
		k := e.typ.Kind()
		unsigned = k >= reflect.Uint && k <= reflect.Uintptr
	}
	return &codec{
		typ:  TypeEnum,
		enum: e,
		get: func(rv reflect.Value) (Value, error) {
			if unsigned {
				return EnumVal(e.Of(int64(rv.Uint()))), nil
			}
			return EnumVal(e.Of(rv.Int())), nil
		},
		set: func(rv reflect.Value, v Value) error {
			eo, err := v.ToEnum(e)
			if err != nil {
				return err
			}
			return setInteger(rv, v.typ, eo.value)
		},
	}
}

// setInteger stores i into an integer kind, failing when it does not fit.
func setInteger(rv reflect.Value, from Type, i int64) error {
	if rv.CanUint() {
		if i < 0 || rv.OverflowUint(uint64(i)) {
			return badType(from, rv.Type().String(), errors.Errorf("%d overflows %s", i, rv.Type()))
		}
		rv.SetUint(uint64(i))
		return nil
	}
	if rv.OverflowInt(i) {
		return badType(from, rv.Type().String(), errors.Errorf("%d overflows %s", i, rv.Type()))
	}
	rv.SetInt(i)
	return nil
}

// structCodec handles an instance held by value. Reading an addressable value
// yields a handle to it; writing copies the source instance in.
func structCodec(r *Registry, c *Class) *codec {
	return &codec{
		typ:   TypeObject,
		class: c,
		get: func(rv reflect.Value) (Value, error) {
			if !rv.CanAddr() {
				cp := reflect.New(rv.Type())
				cp.Elem().Set(rv)
				rv = cp.Elem()
			}
			return ObjectVal(r.objectAt(rv.Addr().UnsafePointer(), c)), nil
		},
		set: func(rv reflect.Value, v Value) error {
			o, err := v.ToObject(c)
			if err != nil {
				return err
			}
			if o.IsNothing() {
				return errors.WithMessagef(ErrNullObject, "cannot copy nothing into %q", c.ID())
			}
			rv.Set(reflect.NewAt(c.typ, o.ptr).Elem())
			return nil
		},
	}
}

// pointerCodec handles an instance held by pointer; nil maps to Nothing.
func pointerCodec(r *Registry, c *Class) *codec {
	return &codec{
		typ:   TypeObject,
		class: c,
		get: func(rv reflect.Value) (Value, error) {
			if rv.IsNil() {
				return ObjectVal(Nothing), nil
			}
			return ObjectVal(r.objectAt(rv.UnsafePointer(), c)), nil
		},
		set: func(rv reflect.Value, v Value) error {
			o, err := v.ToObject(c)
			if err != nil {
				return err
			}
			if o.IsNothing() {
				rv.SetZero()
				return nil
			}
			rv.Set(reflect.NewAt(c.typ, o.ptr))
			return nil
		},
	}
}

// convert turns v into a native value of type t.
func (r *Registry) convert(t reflect.Type, v Value) (reflect.Value, error) {
	c, err := r.codecFor(t, nil)
	if err != nil {
		return reflect.Value{}, badType(v.typ, t.String(), err)
	}
	rv := reflect.New(t).Elem()
	if err := c.set(rv, v); err != nil {
		return reflect.Value{}, err
	}
	return rv, nil
}

// ValueOf wraps a native value. Registered enum types become enum values;
// registered classes, by value or by pointer, become object values; a nil x
// is None.
func (r *Registry) ValueOf(x any) (Value, error) {
	if x == nil {
		return None, nil
	}
	rv := reflect.ValueOf(x)
	if v, ok := x.(Value); ok {
		return v, nil
	}
	c, err := r.codecFor(rv.Type(), nil)
	if err != nil {
		return None, err
	}
	return c.get(rv)
}

// MustValueOf is ValueOf for bootstrap and test code; it panics on failure.
func (r *Registry) MustValueOf(x any) Value {
	v, err := r.ValueOf(x)
	if err != nil {
		panic(err)
	}
	return v
}

// fieldAt returns the settable native value of type t stored at ptr.
func fieldAt(t reflect.Type, ptr unsafe.Pointer) reflect.Value {
	return reflect.NewAt(t, ptr).Elem()
}
