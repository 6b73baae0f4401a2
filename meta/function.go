package meta

import (
	"reflect"
	"unsafe"

	"github.com/pkg/errors"
)

var errorType = reflect.TypeFor[error]()

// Function is a callable member of a class. It is called on an instance with
// an Args list converted, position by position, to its parameter types.
type Function struct {
	name  string
	owner *Class

	fn       reflect.Value
	params   []*codec
	ptypes   []reflect.Type
	result   *codec
	errIndex int // index of a trailing error result, or -1

	callable func(ptr unsafe.Pointer) bool
}

func (f *Function) Name() string {
	return f.name
}

func (f *Function) Owner() *Class {
	return f.owner
}

// ReturnType is TypeNone for functions without a result.
func (f *Function) ReturnType() Type {
	if f.result == nil {
		return TypeNone
	}
	return f.result.typ
}

func (f *Function) ArgCount() int {
	return len(f.params)
}

func (f *Function) ArgType(index int) (Type, error) {
	if index < 0 || index >= len(f.params) {
		return TypeNone, outOfRange(index, len(f.params))
	}
	return f.params[index].typ, nil
}

func (f *Function) Callable(obj Object) bool {
	ptr, err := f.resolve(obj)
	return err == nil && f.callableAt(ptr)
}

func (f *Function) callableAt(ptr unsafe.Pointer) bool {
	return f.callable == nil || f.callable(ptr)
}

func (f *Function) resolve(obj Object) (unsafe.Pointer, error) {
	if obj.IsNothing() {
		return nil, errors.WithMessagef(ErrNullObject, "function %q", f.name)
	}
	o, err := obj.Cast(f.owner)
	if err != nil {
		return nil, errors.WithMessagef(err, "function %q", f.name)
	}
	return o.ptr, nil
}

// Call invokes the function on obj. Extra arguments are ignored.
func (f *Function) Call(obj Object, args Args) (Value, error) {
	ptr, err := f.resolve(obj)
	if err != nil {
		return None, err
	}
	if !f.callableAt(ptr) {
		return None, errors.WithMessagef(ErrForbiddenCall, "function %q of class %q", f.name, f.owner.ID())
	}
	if args.Count() < len(f.params) {
		return None, errors.WithMessagef(ErrNotEnoughArguments, "function %q of class %q takes %d, got %d",
			f.name, f.owner.ID(), len(f.params), args.Count())
	}

	in := make([]reflect.Value, 1+len(f.params))
	in[0] = reflect.NewAt(f.owner.typ, ptr)
	for i, c := range f.params {
		arg := reflect.New(f.ptypes[i]).Elem()
		if err := c.set(arg, args.values[i]); err != nil {
			return None, errors.WithMessagef(ErrBadArgument, "function %q argument %d: %v", f.name, i, err)
		}
		in[1+i] = arg
	}

	out := f.fn.Call(in)
	if f.errIndex >= 0 {
		if err, _ := out[f.errIndex].Interface().(error); err != nil {
			return None, err
		}
	}
	if f.result == nil {
		return None, nil
	}
	return f.result.get(out[0])
}

func (f *Function) Accept(v ClassVisitor) {
	v.VisitFunction(f)
}

// newFunction checks that fn is a func whose first parameter is *T for the
// class's native type, followed by supported parameters, returning at most
// one supported value and optionally a trailing error.
func newFunction(r *Registry, owner *Class, name string, fn any) (*Function, error) {
	if fn == nil {
		return nil, errors.Wrapf(ErrBadType, "function %q: nil func", name)
	}
	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	if ft.Kind() != reflect.Func || ft.IsVariadic() {
		return nil, errors.Wrapf(ErrBadType, "function %q: %T is not a non-variadic func", name, fn)
	}
	if ft.NumIn() < 1 || ft.In(0) != reflect.PointerTo(owner.typ) {
		return nil, errors.Wrapf(ErrBadType, "function %q: first parameter must be *%s", name, owner.typ)
	}

	f := &Function{name: name, owner: owner, fn: fv, errIndex: -1}
	for i := 1; i < ft.NumIn(); i++ {
		c, err := r.codecFor(ft.In(i), owner)
		if err != nil {
			return nil, errors.Wrapf(err, "function %q parameter %d", name, i-1)
		}
		f.params = append(f.params, c)
		f.ptypes = append(f.ptypes, ft.In(i))
	}

	results, errIndex, err := splitResults(ft)
	if err != nil {
		return nil, errors.Wrapf(err, "function %q", name)
	}
	f.errIndex = errIndex
	if len(results) == 1 {
		c, err := r.codecFor(results[0], owner)
		if err != nil {
			return nil, errors.Wrapf(err, "function %q result", name)
		}
		f.result = c
	}
	return f, nil
}

// splitResults separates a trailing error result from the value results of
// ft, allowing at most one value result.
func splitResults(ft reflect.Type) ([]reflect.Type, int, error) {
	var results []reflect.Type
	errIndex := -1
	for i := range ft.NumOut() {
		out := ft.Out(i)
		if i == ft.NumOut()-1 && out == errorType {
			errIndex = i
			break
		}
		results = append(results, out)
	}
	if len(results) > 1 {
		return nil, -1, errors.WithMessagef(ErrBadType, "%s has more than one result", ft)
	}
	return results, errIndex, nil
}
