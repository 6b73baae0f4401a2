package meta

import (
	"reflect"

	"github.com/pkg/errors"
)

// Constructor creates instances of a class from an Args list.
type Constructor struct {
	class    *Class
	fn       reflect.Value
	params   []*codec
	ptypes   []reflect.Type
	errIndex int
}

func (c *Constructor) Class() *Class {
	return c.class
}

func (c *Constructor) ArgCount() int {
	return len(c.params)
}

func (c *Constructor) ArgType(index int) (Type, error) {
	if index < 0 || index >= len(c.params) {
		return TypeNone, outOfRange(index, len(c.params))
	}
	return c.params[index].typ, nil
}

// Matches reports whether args has exactly as many values as the
// constructor has parameters, each convertible to its parameter's type.
func (c *Constructor) Matches(args Args) bool {
	if args.Count() != len(c.params) {
		return false
	}
	for i, p := range c.params {
		probe := reflect.New(c.ptypes[i]).Elem()
		if p.set(probe, args.values[i]) != nil {
			return false
		}
	}
	return true
}

// Create builds a new instance from args. It does not check Matches first.
func (c *Constructor) Create(args Args) (Object, error) {
	if args.Count() < len(c.params) {
		return Nothing, errors.WithMessagef(ErrNotEnoughArguments, "constructor of %q takes %d, got %d",
			c.class.ID(), len(c.params), args.Count())
	}
	in := make([]reflect.Value, len(c.params))
	for i, p := range c.params {
		arg := reflect.New(c.ptypes[i]).Elem()
		if err := p.set(arg, args.values[i]); err != nil {
			return Nothing, errors.WithMessagef(ErrBadArgument, "constructor of %q argument %d: %v", c.class.ID(), i, err)
		}
		in[i] = arg
	}

	out := c.fn.Call(in)
	if c.errIndex >= 0 {
		if err, _ := out[c.errIndex].Interface().(error); err != nil {
			return Nothing, err
		}
	}
	if out[0].IsNil() {
		return Nothing, nil
	}
	return c.class.registry.objectAt(out[0].UnsafePointer(), c.class), nil
}

// newConstructor checks that fn is a func returning *T for the class's
// native type, optionally followed by an error.
func newConstructor(r *Registry, class *Class, fn any) (*Constructor, error) {
	if fn == nil {
		return nil, errors.Wrapf(ErrBadType, "constructor of %q: nil func", class.id)
	}
	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	if ft.Kind() != reflect.Func || ft.IsVariadic() {
		return nil, errors.Wrapf(ErrBadType, "constructor of %q: %T is not a non-variadic func", class.id, fn)
	}
	results, errIndex, err := splitResults(ft)
	if err != nil {
		return nil, errors.Wrapf(err, "constructor of %q", class.id)
	}
	if len(results) != 1 || results[0] != reflect.PointerTo(class.typ) {
		return nil, errors.Wrapf(ErrBadType, "constructor of %q must return *%s", class.id, class.typ)
	}

	c := &Constructor{class: class, fn: fv, errIndex: errIndex}
	for i := range ft.NumIn() {
		p, err := r.codecFor(ft.In(i), class)
		if err != nil {
			return nil, errors.Wrapf(err, "constructor of %q parameter %d", class.id, i)
		}
		c.params = append(c.params, p)
		c.ptypes = append(c.ptypes, ft.In(i))
	}
	return c, nil
}
