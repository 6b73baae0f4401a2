package meta

import (
	"reflect"
	"unsafe"

	"github.com/pkg/errors"
)

// fieldProperty builds the property for a field of native type ft stored
// off bytes into instances of owner.
func (r *Registry) fieldProperty(owner *Class, name string, ft reflect.Type, off uintptr) (Property, error) {
	base := property{name: name, owner: owner, canRead: true, canWrite: true}
	at := func(ptr unsafe.Pointer) reflect.Value {
		return fieldAt(ft, unsafe.Add(ptr, off))
	}

	if k := ft.Kind(); k == reflect.Slice || k == reflect.Array {
		elem, err := r.codecFor(ft.Elem(), owner)
		if err != nil {
			return nil, errors.Wrap(err, "array element")
		}
		base.typ = TypeArray
		return &ArrayProperty{
			property:  base,
			access:    arrayAccessFor(ft, elem, at),
			elemType:  elem.typ,
			elemEnum:  elem.enum,
			elemClass: elem.class,
			dynamic:   k == reflect.Slice,
		}, nil
	}

	c, err := r.codecFor(ft, owner)
	if err != nil {
		return nil, err
	}
	base.typ = c.typ
	a := access{
		get: func(ptr unsafe.Pointer) (Value, error) {
			return c.get(at(ptr))
		},
		set: func(ptr unsafe.Pointer, v Value) error {
			return c.set(at(ptr), v)
		},
	}
	switch {
	case c.enum != nil:
		return &EnumProperty{property: base, access: a, enum: c.enum}, nil
	case c.class != nil:
		return &UserProperty{property: base, access: a, class: c.class, pointer: ft.Kind() == reflect.Pointer}, nil
	default:
		return &SimpleProperty{property: base, access: a}, nil
	}
}

// arrayAccessFor implements element access for a slice or array field. The
// length-changing operations are only set for slices.
func arrayAccessFor(ft reflect.Type, elem *codec, at func(unsafe.Pointer) reflect.Value) arrayAccess {
	a := arrayAccess{
		size: func(ptr unsafe.Pointer) int {
			return at(ptr).Len()
		},
		get: func(ptr unsafe.Pointer, i int) (Value, error) {
			return elem.get(at(ptr).Index(i))
		},
		set: func(ptr unsafe.Pointer, i int, v Value) error {
			return elem.set(at(ptr).Index(i), v)
		},
	}
	if ft.Kind() != reflect.Slice {
		return a
	}

	a.resize = func(ptr unsafe.Pointer, n int) {
		s := at(ptr)
		ns := reflect.MakeSlice(ft, n, n)
		reflect.Copy(ns, s)
		s.Set(ns)
	}
	a.insert = func(ptr unsafe.Pointer, before int, v Value) error {
		e := reflect.New(ft.Elem()).Elem()
		if err := elem.set(e, v); err != nil {
			return err
		}
		s := at(ptr)
		ns := reflect.MakeSlice(ft, 0, s.Len()+1)
		ns = reflect.AppendSlice(ns, s.Slice(0, before))
		ns = reflect.Append(ns, e)
		ns = reflect.AppendSlice(ns, s.Slice(before, s.Len()))
		s.Set(ns)
		return nil
	}
	a.remove = func(ptr unsafe.Pointer, i int) {
		s := at(ptr)
		ns := reflect.MakeSlice(ft, 0, s.Len()-1)
		ns = reflect.AppendSlice(ns, s.Slice(0, i))
		ns = reflect.AppendSlice(ns, s.Slice(i+1, s.Len()))
		s.Set(ns)
	}
	return a
}

// accessorProperty builds a property backed by a getter and an optional
// setter instead of a field.
func (r *Registry) accessorProperty(owner *Class, name string, getter, setter any) (*FunctionProperty, error) {
	if getter == nil {
		return nil, errors.WithMessage(ErrBadType, "nil getter")
	}
	ptrType := reflect.PointerTo(owner.typ)

	gv := reflect.ValueOf(getter)
	gt := gv.Type()
	if gt.Kind() != reflect.Func || gt.NumIn() != 1 || gt.NumOut() != 1 {
		return nil, errors.WithMessagef(ErrBadType, "getter %s must take the instance and return one value", gt)
	}
	byValue := gt.In(0) == owner.typ
	if !byValue && gt.In(0) != ptrType {
		return nil, errors.WithMessagef(ErrBadType, "getter %s must take *%s or %s", gt, owner.typ, owner.typ)
	}
	ft := gt.Out(0)
	c, err := r.codecFor(ft, owner)
	if err != nil {
		return nil, err
	}
	recv := func(ptr unsafe.Pointer) reflect.Value {
		p := reflect.NewAt(owner.typ, ptr)
		if byValue {
			return p.Elem()
		}
		return p
	}

	p := &FunctionProperty{
		property: property{name: name, typ: c.typ, owner: owner, canRead: true},
		enum:     c.enum,
		class:    c.class,
	}
	p.access.get = func(ptr unsafe.Pointer) (Value, error) {
		return c.get(gv.Call([]reflect.Value{recv(ptr)})[0])
	}
	if setter == nil {
		p.access.set = func(unsafe.Pointer, Value) error {
			return p.forbiddenWrite()
		}
		return p, nil
	}

	sv := reflect.ValueOf(setter)
	st := sv.Type()
	if st.Kind() != reflect.Func || st.NumIn() != 2 || st.In(0) != ptrType || st.In(1) != ft {
		return nil, errors.WithMessagef(ErrBadType, "setter %s must take *%s and %s", st, owner.typ, ft)
	}
	if st.NumOut() > 1 || (st.NumOut() == 1 && st.Out(0) != errorType) {
		return nil, errors.WithMessagef(ErrBadType, "setter %s may only return an error", st)
	}
	p.canWrite = true
	p.access.set = func(ptr unsafe.Pointer, v Value) error {
		arg := reflect.New(ft).Elem()
		if err := c.set(arg, v); err != nil {
			return err
		}
		out := sv.Call([]reflect.Value{reflect.NewAt(owner.typ, ptr), arg})
		if len(out) == 1 {
			if err, _ := out[0].Interface().(error); err != nil {
				return err
			}
		}
		return nil
	}
	return p, nil
}
