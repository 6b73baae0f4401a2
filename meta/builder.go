package meta

import (
	"reflect"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// ClassBuilder declares the metadata of the native struct type T. Methods
// chain; the first error sticks and is returned by Register.
//
//	meta.Declare[Pixel](r, "Pixel").
//		Constructor(NewPixel).
//		Property("color", "Color").
//		Register()
type ClassBuilder[T any] struct {
	r     *Registry
	class *Class
	err   error

	last       *property
	lastFn     *Function
	registered bool
}

// Declare starts the declaration of class id bound to the struct type T.
func Declare[T any](r *Registry, id string) *ClassBuilder[T] {
	t := reflect.TypeFor[T]()
	c := &Class{id: id, typ: t, registry: r}
	b := &ClassBuilder[T]{r: r, class: c}
	if t.Kind() != reflect.Struct {
		return b.fail(errors.Wrapf(ErrBadType, "class %q: %s is not a struct type", id, t))
	}
	if err := r.checkOpen(); err != nil {
		return b.fail(err)
	}
	if r.HasClass(id) {
		return b.fail(errors.Wrapf(ErrDuplicateClass, "class %q", id))
	}
	return b
}

func (b *ClassBuilder[T]) fail(err error) *ClassBuilder[T] {
	if b.err == nil {
		b.err = err
	}
	return b
}

func (b *ClassBuilder[T]) ok() bool {
	if b.err == nil && b.r.frozen {
		b.err = errors.Wrapf(ErrRegistryFrozen, "class %q", b.class.id)
	}
	return b.err == nil
}

// Class returns the class under declaration.
func (b *ClassBuilder[T]) Class() *Class {
	return b.class
}

// Base declares base as a direct base class. T must have a field, embedded
// or named, of the base's native type; its offset is recorded.
func (b *ClassBuilder[T]) Base(base *Class) *ClassBuilder[T] {
	if !b.ok() {
		return b
	}
	if base == nil {
		return b.fail(errors.Wrapf(ErrClassNotFound, "class %q: nil base", b.class.id))
	}
	for i := range b.class.typ.NumField() {
		f := b.class.typ.Field(i)
		if f.Type == base.typ {
			return b.BaseAt(base, int(f.Offset))
		}
	}
	return b.fail(errors.Wrapf(ErrClassUnrelated, "class %q has no field of type %s for base %q",
		b.class.id, base.typ, base.id))
}

// BaseAt declares base as a direct base class found offset bytes into T.
func (b *ClassBuilder[T]) BaseAt(base *Class, offset int) *ClassBuilder[T] {
	if !b.ok() {
		return b
	}
	if b.registered {
		return b.fail(errors.Errorf("class %q: bases must be declared before Register", b.class.id))
	}
	if base.registry != b.r {
		return b.fail(errors.Wrapf(ErrClassNotFound, "class %q: base %q belongs to another registry", b.class.id, base.id))
	}
	for _, link := range b.class.bases {
		if link.base == base {
			return b.fail(errors.Wrapf(ErrDuplicateName, "class %q: base %q", b.class.id, base.id))
		}
	}
	b.class.bases = append(b.class.bases, baseLink{base: base, offset: offset})
	return b
}

// Property binds the struct field called field (promoted fields included)
// as the property name. The property kind follows the field type: simple for
// bool, integer, float and string kinds, enum for registered enum types, user
// for registered classes held by value or pointer, and array for slices
// (dynamic) and fixed-size arrays (static).
func (b *ClassBuilder[T]) Property(name, field string) *ClassBuilder[T] {
	if !b.ok() {
		return b
	}
	sf, ok := b.class.typ.FieldByName(field)
	if !ok {
		return b.fail(errors.Wrapf(ErrPropertyNotFound, "class %q has no field %q", b.class.id, field))
	}
	off, err := fieldOffset(b.class.typ, sf.Index)
	if err != nil {
		return b.fail(errors.Wrapf(err, "class %q field %q", b.class.id, field))
	}
	p, err := b.r.fieldProperty(b.class, name, sf.Type, off)
	if err != nil {
		return b.fail(errors.Wrapf(err, "class %q property %q", b.class.id, name))
	}
	return b.addProperty(p)
}

// Accessor binds a function-backed property. getter is func(*T) F or
// func(T) F; setter is func(*T, F), optionally returning an error, or nil for
// a read-only property.
func (b *ClassBuilder[T]) Accessor(name string, getter, setter any) *ClassBuilder[T] {
	if !b.ok() {
		return b
	}
	p, err := b.r.accessorProperty(b.class, name, getter, setter)
	if err != nil {
		return b.fail(errors.Wrapf(err, "class %q property %q", b.class.id, name))
	}
	return b.addProperty(p)
}

func (b *ClassBuilder[T]) addProperty(p Property) *ClassBuilder[T] {
	if !b.class.properties.add(p.Name(), p) {
		return b.fail(errors.Wrapf(ErrDuplicateName, "class %q property %q", b.class.id, p.Name()))
	}
	b.last = p.(interface{ base() *property }).base()
	return b
}

// Readable sets whether the last declared property can be read.
func (b *ClassBuilder[T]) Readable(readable bool) *ClassBuilder[T] {
	if b.ok() && b.checkLast() {
		b.last.canRead = readable
	}
	return b
}

// ReadableIf makes reading the last declared property depend on the instance.
func (b *ClassBuilder[T]) ReadableIf(pred func(*T) bool) *ClassBuilder[T] {
	if b.ok() && b.checkLast() {
		b.last.readable = func(ptr unsafe.Pointer) bool {
			return pred((*T)(ptr))
		}
	}
	return b
}

// Writable sets whether the last declared property can be written.
func (b *ClassBuilder[T]) Writable(writable bool) *ClassBuilder[T] {
	if b.ok() && b.checkLast() {
		b.last.canWrite = writable
	}
	return b
}

// WritableIf makes writing the last declared property depend on the instance.
func (b *ClassBuilder[T]) WritableIf(pred func(*T) bool) *ClassBuilder[T] {
	if b.ok() && b.checkLast() {
		b.last.writable = func(ptr unsafe.Pointer) bool {
			return pred((*T)(ptr))
		}
	}
	return b
}

func (b *ClassBuilder[T]) checkLast() bool {
	if b.last == nil {
		b.fail(errors.Wrapf(ErrPropertyNotFound, "class %q: no property declared yet", b.class.id))
		return false
	}
	return true
}

// Function binds fn as the function name. fn's first parameter must be *T;
// the remaining parameters and the optional result follow the same type rules
// as properties, and a trailing error result is returned by Call.
func (b *ClassBuilder[T]) Function(name string, fn any) *ClassBuilder[T] {
	if !b.ok() {
		return b
	}
	f, err := newFunction(b.r, b.class, name, fn)
	if err != nil {
		return b.fail(errors.Wrapf(err, "class %q", b.class.id))
	}
	if !b.class.functions.add(name, f) {
		return b.fail(errors.Wrapf(ErrDuplicateName, "class %q function %q", b.class.id, name))
	}
	b.lastFn = f
	return b
}

// CallableIf makes calling the last declared function depend on the instance.
func (b *ClassBuilder[T]) CallableIf(pred func(*T) bool) *ClassBuilder[T] {
	if !b.ok() {
		return b
	}
	if b.lastFn == nil {
		return b.fail(errors.Wrapf(ErrFunctionNotFound, "class %q: no function declared yet", b.class.id))
	}
	b.lastFn.callable = func(ptr unsafe.Pointer) bool {
		return pred((*T)(ptr))
	}
	return b
}

// Constructor adds fn, a func returning *T (and optionally an error), to the
// constructors tried in order by Class.Construct.
func (b *ClassBuilder[T]) Constructor(fn any) *ClassBuilder[T] {
	if !b.ok() {
		return b
	}
	c, err := newConstructor(b.r, b.class, fn)
	if err != nil {
		return b.fail(err)
	}
	b.class.constructors = append(b.class.constructors, c)
	return b
}

// Destructor sets the release callback run by Class.Destroy.
func (b *ClassBuilder[T]) Destructor(fn func(*T)) *ClassBuilder[T] {
	if !b.ok() {
		return b
	}
	c := b.class
	c.destructor = func(o Object) {
		ob, err := o.Cast(c)
		if err != nil || ob.IsNothing() {
			return
		}
		fn((*T)(ob.ptr))
	}
	return b
}

// Identify lets instances seen as T report the identifier of their most
// derived class. The registry only consults it for classes that set one.
func (b *ClassBuilder[T]) Identify(fn func(*T) string) *ClassBuilder[T] {
	if !b.ok() {
		return b
	}
	b.class.identify = func(ptr unsafe.Pointer) string {
		return fn((*T)(ptr))
	}
	return b
}

// Register adds the class to the registry.
func (b *ClassBuilder[T]) Register() (*Class, error) {
	if !b.ok() {
		return nil, b.err
	}
	if !b.registered {
		if err := b.r.addClass(b.class); err != nil {
			b.fail(err)
			return nil, err
		}
		b.registered = true
	}
	return b.class, nil
}

// MustRegister is Register for bootstrap code; it panics on failure.
func (b *ClassBuilder[T]) MustRegister() *Class {
	c, err := b.Register()
	if err != nil {
		panic(err)
	}
	return c
}

// fieldOffset sums the offsets along a field index path. Every intermediate
// field must be a struct held by value.
func fieldOffset(t reflect.Type, index []int) (uintptr, error) {
	var off uintptr
	for i, idx := range index {
		f := t.Field(idx)
		off += f.Offset
		if i < len(index)-1 {
			if f.Type.Kind() != reflect.Struct {
				return 0, errors.WithMessagef(ErrBadType, "field %s is reached through pointer %s", f.Name, f.Type)
			}
			t = f.Type
		}
	}
	return off, nil
}

// EnumBuilder declares the pairs of the native integer type T.
type EnumBuilder[T constraints.Integer] struct {
	r    *Registry
	enum *Enum
	err  error
}

// DeclareEnum starts the declaration of enum id bound to the integer type T.
func DeclareEnum[T constraints.Integer](r *Registry, id string) *EnumBuilder[T] {
	b := &EnumBuilder[T]{
		r:    r,
		enum: newEnum(r, id, reflect.TypeFor[T]()),
	}
	if err := r.checkOpen(); err != nil {
		b.err = err
	} else if r.HasEnum(id) {
		b.err = errors.Wrapf(ErrDuplicateEnum, "enum %q", id)
	}
	return b
}

// Value declares the pair name = value.
func (b *EnumBuilder[T]) Value(name string, value T) *EnumBuilder[T] {
	if b.err == nil {
		b.err = b.enum.add(name, int64(value))
	}
	return b
}

func (b *EnumBuilder[T]) Register() (*Enum, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := b.r.addEnum(b.enum); err != nil {
		b.err = err
		return nil, err
	}
	return b.enum, nil
}

// MustRegister is Register for bootstrap code; it panics on failure.
func (b *EnumBuilder[T]) MustRegister() *Enum {
	e, err := b.Register()
	if err != nil {
		panic(err)
	}
	return e
}
