package meta

import (
	"unsafe"

	"github.com/pkg/errors"
)

// arrayAccess implements the element operations behind an instance address.
// Indices are checked by ArrayProperty before these are called.
type arrayAccess struct {
	size   func(ptr unsafe.Pointer) int
	resize func(ptr unsafe.Pointer, n int)
	get    func(ptr unsafe.Pointer, i int) (Value, error)
	set    func(ptr unsafe.Pointer, i int, v Value) error
	insert func(ptr unsafe.Pointer, before int, v Value) error
	remove func(ptr unsafe.Pointer, i int)
}

// ArrayProperty holds an indexable sequence of elements. A dynamic array
// (a slice) may change length; a static one (a fixed-size array) may not.
//
// Get and Set act on element 0.
type ArrayProperty struct {
	property
	access    arrayAccess
	elemType  Type
	elemEnum  *Enum
	elemClass *Class
	dynamic   bool
}

func (p *ArrayProperty) ElementType() Type {
	return p.elemType
}

// ElementEnum returns the enum of enum elements, or nil.
func (p *ArrayProperty) ElementEnum() *Enum {
	return p.elemEnum
}

// ElementClass returns the class of object elements, or nil.
func (p *ArrayProperty) ElementClass() *Class {
	return p.elemClass
}

// Dynamic reports whether Resize, Insert and Remove are permitted.
func (p *ArrayProperty) Dynamic() bool {
	return p.dynamic
}

func (p *ArrayProperty) Size(obj Object) (int, error) {
	ptr, err := p.resolve(obj)
	if err != nil {
		return 0, err
	}
	if !p.readableAt(ptr) {
		return 0, p.forbiddenRead()
	}
	return p.access.size(ptr), nil
}

func (p *ArrayProperty) Resize(obj Object, n int) error {
	ptr, err := p.resolveWritable(obj, true)
	if err != nil {
		return err
	}
	if n < 0 {
		return errors.WithMessagef(ErrOutOfRange, "resize %q to %d", p.name, n)
	}
	p.access.resize(ptr, n)
	return nil
}

func (p *ArrayProperty) GetAt(obj Object, index int) (Value, error) {
	ptr, err := p.resolve(obj)
	if err != nil {
		return None, err
	}
	if !p.readableAt(ptr) {
		return None, p.forbiddenRead()
	}
	if n := p.access.size(ptr); index < 0 || index >= n {
		return None, p.rangeError(index, n)
	}
	return p.access.get(ptr, index)
}

func (p *ArrayProperty) SetAt(obj Object, index int, v Value) error {
	ptr, err := p.resolveWritable(obj, false)
	if err != nil {
		return err
	}
	if n := p.access.size(ptr); index < 0 || index >= n {
		return p.rangeError(index, n)
	}
	if err := p.access.set(ptr, index, v); err != nil {
		return errors.WithMessagef(err, "property %q of class %q", p.name, p.owner.ID())
	}
	return nil
}

// Insert adds v before the element at index; index may equal the current
// size to append.
func (p *ArrayProperty) Insert(obj Object, before int, v Value) error {
	ptr, err := p.resolveWritable(obj, true)
	if err != nil {
		return err
	}
	if n := p.access.size(ptr) + 1; before < 0 || before >= n {
		return p.rangeError(before, n)
	}
	if err := p.access.insert(ptr, before, v); err != nil {
		return errors.WithMessagef(err, "property %q of class %q", p.name, p.owner.ID())
	}
	return nil
}

func (p *ArrayProperty) Remove(obj Object, index int) error {
	ptr, err := p.resolveWritable(obj, true)
	if err != nil {
		return err
	}
	if n := p.access.size(ptr); index < 0 || index >= n {
		return p.rangeError(index, n)
	}
	p.access.remove(ptr, index)
	return nil
}

func (p *ArrayProperty) Get(obj Object) (Value, error) {
	return p.GetAt(obj, 0)
}

func (p *ArrayProperty) Set(obj Object, v Value) error {
	return p.SetAt(obj, 0, v)
}

func (p *ArrayProperty) Accept(v ClassVisitor) {
	v.VisitArray(p)
}

// resolveWritable checks, in order, that the length may change (when
// resizing is requested) and that the property is writable.
func (p *ArrayProperty) resolveWritable(obj Object, resizing bool) (unsafe.Pointer, error) {
	if resizing && !p.dynamic {
		return nil, errors.WithMessagef(ErrForbiddenWrite, "array %q of class %q is not dynamic", p.name, p.owner.ID())
	}
	ptr, err := p.resolve(obj)
	if err != nil {
		return nil, err
	}
	if !p.writableAt(ptr) {
		return nil, p.forbiddenWrite()
	}
	return ptr, nil
}

func (p *ArrayProperty) rangeError(index, bound int) error {
	return errors.WithMessagef(outOfRange(index, bound), "array %q of class %q", p.name, p.owner.ID())
}
