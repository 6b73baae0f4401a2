package meta

import (
	"unsafe"

	"github.com/pkg/errors"
)

// Property is the common contract of every property kind. Readable and
// Writable are evaluated per instance; Get and Set check them before touching
// the instance.
//
// The instance passed in may be of the owner class or of any class related to
// it; the address is adjusted along the hierarchy first.
type Property interface {
	Name() string
	Type() Type
	Owner() *Class
	Readable(obj Object) bool
	Writable(obj Object) bool
	Get(obj Object) (Value, error)
	Set(obj Object, v Value) error
	Accept(v ClassVisitor)
}

// access reads and writes the value behind an instance address.
type access struct {
	get func(ptr unsafe.Pointer) (Value, error)
	set func(ptr unsafe.Pointer, v Value) error
}

type property struct {
	name  string
	typ   Type
	owner *Class

	canRead  bool
	canWrite bool
	readable func(ptr unsafe.Pointer) bool
	writable func(ptr unsafe.Pointer) bool
}

func (p *property) base() *property {
	return p
}

func (p *property) Name() string {
	return p.name
}

func (p *property) Type() Type {
	return p.typ
}

func (p *property) Owner() *Class {
	return p.owner
}

func (p *property) Readable(obj Object) bool {
	ptr, err := p.resolve(obj)
	return err == nil && p.readableAt(ptr)
}

func (p *property) Writable(obj Object) bool {
	ptr, err := p.resolve(obj)
	return err == nil && p.writableAt(ptr)
}

func (p *property) readableAt(ptr unsafe.Pointer) bool {
	return p.canRead && (p.readable == nil || p.readable(ptr))
}

func (p *property) writableAt(ptr unsafe.Pointer) bool {
	return p.canWrite && (p.writable == nil || p.writable(ptr))
}

// resolve returns the address of obj seen as the owner class.
func (p *property) resolve(obj Object) (unsafe.Pointer, error) {
	if obj.IsNothing() {
		return nil, errors.WithMessagef(ErrNullObject, "property %q", p.name)
	}
	o, err := obj.Cast(p.owner)
	if err != nil {
		return nil, errors.WithMessagef(err, "property %q", p.name)
	}
	return o.ptr, nil
}

func (p *property) forbiddenRead() error {
	return errors.WithMessagef(ErrForbiddenRead, "property %q of class %q", p.name, p.owner.ID())
}

func (p *property) forbiddenWrite() error {
	return errors.WithMessagef(ErrForbiddenWrite, "property %q of class %q", p.name, p.owner.ID())
}

func (p *property) getWith(a access, obj Object) (Value, error) {
	ptr, err := p.resolve(obj)
	if err != nil {
		return None, err
	}
	if !p.readableAt(ptr) {
		return None, p.forbiddenRead()
	}
	return a.get(ptr)
}

func (p *property) setWith(a access, obj Object, v Value) error {
	ptr, err := p.resolve(obj)
	if err != nil {
		return err
	}
	if !p.writableAt(ptr) {
		return p.forbiddenWrite()
	}
	if err := a.set(ptr, v); err != nil {
		return errors.WithMessagef(err, "property %q of class %q", p.name, p.owner.ID())
	}
	return nil
}

// SimpleProperty holds a bool, integer, real or text.
type SimpleProperty struct {
	property
	access access
}

func (p *SimpleProperty) Get(obj Object) (Value, error) {
	return p.getWith(p.access, obj)
}

func (p *SimpleProperty) Set(obj Object, v Value) error {
	return p.setWith(p.access, obj, v)
}

func (p *SimpleProperty) Accept(v ClassVisitor) {
	v.VisitSimple(p)
}

// EnumProperty holds a member of a registered enum.
type EnumProperty struct {
	property
	access access
	enum   *Enum
}

func (p *EnumProperty) Enum() *Enum {
	return p.enum
}

func (p *EnumProperty) Get(obj Object) (Value, error) {
	return p.getWith(p.access, obj)
}

func (p *EnumProperty) Set(obj Object, v Value) error {
	return p.setWith(p.access, obj, v)
}

func (p *EnumProperty) Accept(v ClassVisitor) {
	v.VisitEnum(p)
}

// UserProperty holds a nested instance of a registered class, either by value
// or by pointer. Get on a by-value property returns a handle to the nested
// instance itself; Set copies into it.
type UserProperty struct {
	property
	access  access
	class   *Class
	pointer bool
}

// Class returns the class of the nested instance.
func (p *UserProperty) Class() *Class {
	return p.class
}

// ByPointer reports whether the owner holds the nested instance by pointer.
func (p *UserProperty) ByPointer() bool {
	return p.pointer
}

func (p *UserProperty) Get(obj Object) (Value, error) {
	return p.getWith(p.access, obj)
}

func (p *UserProperty) Set(obj Object, v Value) error {
	return p.setWith(p.access, obj, v)
}

func (p *UserProperty) Accept(v ClassVisitor) {
	v.VisitUser(p)
}

// FunctionProperty reads and writes through a getter/setter pair supplied at
// registration instead of a field. Without a setter it is read-only.
type FunctionProperty struct {
	property
	access access
	enum   *Enum
	class  *Class
}

// Enum returns the enum of an enum-typed accessor, or nil.
func (p *FunctionProperty) Enum() *Enum {
	return p.enum
}

// Class returns the class of an object-typed accessor, or nil.
func (p *FunctionProperty) Class() *Class {
	return p.class
}

func (p *FunctionProperty) Get(obj Object) (Value, error) {
	return p.getWith(p.access, obj)
}

func (p *FunctionProperty) Set(obj Object, v Value) error {
	return p.setWith(p.access, obj, v)
}

func (p *FunctionProperty) Accept(v ClassVisitor) {
	v.VisitFunctionProperty(p)
}
