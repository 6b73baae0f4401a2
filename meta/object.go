package meta

import (
	"fmt"
	"unsafe"

	"github.com/pkg/errors"
)

// Object is a non-owning handle to an instance of a registered class: the
// address of the instance seen as class, plus the most derived class the
// instance is known to be. The zero Object is Nothing.
type Object struct {
	ptr     unsafe.Pointer
	class   *Class
	dynamic *Class
}

// Nothing represents the absence of an instance.
var Nothing Object

func (o Object) IsNothing() bool {
	return o.ptr == nil
}

// Class returns the class the handle views the instance as.
func (o Object) Class() *Class {
	return o.class
}

// DynamicClass returns the most derived class the instance is known to be.
func (o Object) DynamicClass() *Class {
	if o.dynamic == nil {
		return o.class
	}
	return o.dynamic
}

func (o Object) Pointer() unsafe.Pointer {
	return o.ptr
}

// PointerTo returns the address of the instance seen as target.
func (o Object) PointerTo(target *Class) (unsafe.Pointer, error) {
	if o.class == nil {
		return nil, nil
	}
	return o.class.ApplyOffset(o.ptr, target)
}

// Cast views the instance as target. Upcasts always succeed for related
// classes; a downcast succeeds only if the instance is known to be a target.
func (o Object) Cast(target *Class) (Object, error) {
	if o.IsNothing() {
		return Nothing, nil
	}
	ptr, err := o.class.ApplyOffset(o.ptr, target)
	if err != nil {
		return Nothing, err
	}
	dyn := o.DynamicClass()
	if !dyn.DerivesFrom(target) {
		return Nothing, errors.WithMessagef(ErrClassUnrelated, "instance of %q is not a %q", dyn.ID(), target.ID())
	}
	return Object{ptr: ptr, class: target, dynamic: dyn}, nil
}

// Get reads the named property, looking through the base classes.
func (o Object) Get(name string) (Value, error) {
	if o.IsNothing() {
		return None, errors.WithMessagef(ErrNullObject, "get %q", name)
	}
	p, err := o.DynamicClass().LookupProperty(name)
	if err != nil {
		return None, err
	}
	return p.Get(o)
}

// Set writes the named property, looking through the base classes.
func (o Object) Set(name string, v Value) error {
	if o.IsNothing() {
		return errors.WithMessagef(ErrNullObject, "set %q", name)
	}
	p, err := o.DynamicClass().LookupProperty(name)
	if err != nil {
		return err
	}
	return p.Set(o, v)
}

// Call invokes the named function, looking through the base classes.
func (o Object) Call(name string, args Args) (Value, error) {
	if o.IsNothing() {
		return None, errors.WithMessagef(ErrNullObject, "call %q", name)
	}
	f, err := o.DynamicClass().LookupFunction(name)
	if err != nil {
		return None, err
	}
	return f.Call(o, args)
}

// Equal reports whether both handles view the same address as the same class.
func (o Object) Equal(other Object) bool {
	return o.compare(other) == 0
}

func (o Object) compare(other Object) int {
	if c := order(o.class.ID(), other.class.ID()); c != 0 {
		return c
	}
	return order(uintptr(o.ptr), uintptr(other.ptr))
}

func (o Object) String() string {
	if o.IsNothing() {
		return "nothing"
	}
	return fmt.Sprintf("%s@%p", o.class.ID(), o.ptr)
}

// As returns the instance as a *T, where T is the native type of a class
// related to the object's class.
func As[T any](o Object) (*T, error) {
	if o.IsNothing() {
		return nil, nil
	}
	target, err := ClassOf[T](o.class.registry)
	if err != nil {
		return nil, err
	}
	ob, err := o.Cast(target)
	if err != nil {
		return nil, err
	}
	return (*T)(ob.ptr), nil
}
