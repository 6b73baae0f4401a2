package meta

import (
	"reflect"
	"slices"
	"strconv"

	"github.com/pkg/errors"
)

type EnumPair struct {
	Name  string
	Value int64
}

// Enum is the descriptor of one enumeration: an insertion-ordered table of
// name/value pairs. Names are unique; values may repeat, in which case the
// first declared pair wins a value to name lookup.
type Enum struct {
	id       string
	typ      reflect.Type
	registry *Registry

	pairs  []EnumPair
	names  map[string]int
	values map[int64]int
}

func newEnum(r *Registry, id string, typ reflect.Type) *Enum {
	return &Enum{
		id:       id,
		typ:      typ,
		registry: r,
		names:    make(map[string]int),
		values:   make(map[int64]int),
	}
}

func (e *Enum) add(name string, value int64) error {
	if _, ok := e.names[name]; ok {
		return errors.Wrapf(ErrDuplicateName, "enum %q, name %q", e.id, name)
	}
	e.names[name] = len(e.pairs)
	if _, ok := e.values[value]; !ok {
		e.values[value] = len(e.pairs)
	}
	e.pairs = append(e.pairs, EnumPair{Name: name, Value: value})
	return nil
}

// ID returns the identifier the enum was registered under.
func (e *Enum) ID() string {
	if e == nil {
		return ""
	}
	return e.id
}

// NativeType returns the Go type bound to the enum, or nil.
func (e *Enum) NativeType() reflect.Type {
	return e.typ
}

func (e *Enum) Size() int {
	return len(e.pairs)
}

func (e *Enum) Pair(index int) (EnumPair, error) {
	if index < 0 || index >= len(e.pairs) {
		return EnumPair{}, outOfRange(index, len(e.pairs))
	}
	return e.pairs[index], nil
}

func (e *Enum) Pairs() []EnumPair {
	return slices.Clone(e.pairs)
}

func (e *Enum) HasName(name string) bool {
	_, ok := e.names[name]
	return ok
}

func (e *Enum) HasValue(value int64) bool {
	_, ok := e.values[value]
	return ok
}

// Name returns the name of the first pair declared with value.
func (e *Enum) Name(value int64) (string, error) {
	i, ok := e.values[value]
	if !ok {
		return "", errors.WithMessagef(ErrEnumValueNotFound, "value %d in enum %q", value, e.id)
	}
	return e.pairs[i].Name, nil
}

func (e *Enum) Value(name string) (int64, error) {
	i, ok := e.names[name]
	if !ok {
		return 0, errors.WithMessagef(ErrEnumNameNotFound, "name %q in enum %q", name, e.id)
	}
	return e.pairs[i].Value, nil
}

// Of wraps value as a member of this enum.
func (e *Enum) Of(value int64) EnumObject {
	return EnumObject{value: value, enum: e}
}

// Equal compares descriptors by identifier.
func (e *Enum) Equal(other *Enum) bool {
	return e.ID() == other.ID()
}

// EnumObject is an integer tagged with the enum it belongs to.
type EnumObject struct {
	value int64
	enum  *Enum
}

func (o EnumObject) Value() int64 {
	return o.value
}

func (o EnumObject) Enum() *Enum {
	return o.enum
}

// Name returns the declared name of the value, or "" if the enum has none.
func (o EnumObject) Name() string {
	if o.enum == nil {
		return ""
	}
	name, err := o.enum.Name(o.value)
	if err != nil {
		return ""
	}
	return name
}

func (o EnumObject) String() string {
	if name := o.Name(); name != "" {
		return name
	}
	return strconv.FormatInt(o.value, 10)
}
