package meta

import (
	"reflect"
	"unsafe"

	"github.com/bvisness/camp/utils"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
)

const offsetCacheSize = 1024

// Registry stores class and enum descriptors by identifier and by native
// type.
//
// A registry has two phases. During registration, declarations add
// descriptors from a single goroutine; Freeze ends that phase. After Freeze
// the registry and every descriptor in it are read-only and may be queried
// from any number of goroutines. Registering concurrently, or after Freeze,
// is not supported: after Freeze it fails with ErrRegistryFrozen.
type Registry struct {
	classes    members[*Class]
	enums      members[*Enum]
	classTypes map[reflect.Type]*Class
	enumTypes  map[reflect.Type]*Enum
	frozen     bool

	offsets *lru.Cache
}

func NewRegistry() *Registry {
	return &Registry{
		classTypes: make(map[reflect.Type]*Class),
		enumTypes:  make(map[reflect.Type]*Enum),
		offsets:    utils.Must1(lru.New(offsetCacheSize)),
	}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// Freeze ends the registration phase.
func (r *Registry) Freeze() {
	r.frozen = true
}

func (r *Registry) Frozen() bool {
	return r.frozen
}

func (r *Registry) checkOpen() error {
	if r.frozen {
		return errors.WithStack(ErrRegistryFrozen)
	}
	return nil
}

func (r *Registry) addClass(c *Class) error {
	if err := r.checkOpen(); err != nil {
		return err
	}
	if r.classes.has(c.id) {
		return errors.Wrapf(ErrDuplicateClass, "class %q", c.id)
	}
	if prev := r.classTypes[c.typ]; prev != nil {
		return errors.Wrapf(ErrDuplicateClass, "type %s is already registered as %q", c.typ, prev.id)
	}
	utils.Assert(r.classes.add(c.id, c), "class %q added twice", c.id)
	r.classTypes[c.typ] = c
	return nil
}

func (r *Registry) addEnum(e *Enum) error {
	if err := r.checkOpen(); err != nil {
		return err
	}
	if r.enums.has(e.id) {
		return errors.Wrapf(ErrDuplicateEnum, "enum %q", e.id)
	}
	if e.typ != nil {
		if prev := r.enumTypes[e.typ]; prev != nil {
			return errors.Wrapf(ErrDuplicateEnum, "type %s is already registered as %q", e.typ, prev.id)
		}
	}
	utils.Assert(r.enums.add(e.id, e), "enum %q added twice", e.id)
	if e.typ != nil {
		r.enumTypes[e.typ] = e
	}
	return nil
}

func (r *Registry) ClassCount() int {
	return r.classes.len()
}

func (r *Registry) ClassAt(index int) (*Class, error) {
	c, ok := r.classes.at(index)
	if !ok {
		return nil, outOfRange(index, r.classes.len())
	}
	return c, nil
}

func (r *Registry) HasClass(id string) bool {
	return r.classes.has(id)
}

func (r *Registry) ClassByName(id string) (*Class, error) {
	c, ok := r.classes.get(id)
	if !ok {
		return nil, errors.WithMessagef(ErrClassNotFound, "class %q", id)
	}
	return c, nil
}

// ClassByType returns the class bound to t, or to the type t points to.
func (r *Registry) ClassByType(t reflect.Type) (*Class, error) {
	if t == nil {
		return nil, errors.WithMessage(ErrClassNotFound, "nil type")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	c := r.classTypes[t]
	if c == nil {
		return nil, errors.WithMessagef(ErrClassNotFound, "type %s", t)
	}
	return c, nil
}

// ClassOf returns the class bound to the native type T.
func ClassOf[T any](r *Registry) (*Class, error) {
	return r.ClassByType(reflect.TypeFor[T]())
}

// ClassByInstance returns the class of the instance x, which may be a
// registered struct or a pointer to one. The most derived class is found when
// x implements Identifier, or when its static class was declared with an
// identity callback; otherwise the static type decides.
func (r *Registry) ClassByInstance(x any) (*Class, error) {
	if x == nil {
		return nil, errors.WithMessage(ErrClassNotFound, "nil instance")
	}
	if id, ok := x.(Identifier); ok {
		return r.ClassByName(id.MetaClassID())
	}
	static, err := r.ClassByType(reflect.TypeOf(x))
	if err != nil {
		return nil, err
	}
	rv := reflect.ValueOf(x)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return static, nil
	}
	return r.dynamicClass(rv.UnsafePointer(), static), nil
}

// SafeTypeID returns the identifier of the class or enum of x, or "" when x
// has none. It never fails.
func (r *Registry) SafeTypeID(x any) string {
	if x == nil {
		return ""
	}
	if c, err := r.ClassByInstance(x); err == nil {
		return c.id
	}
	if e, err := r.EnumByType(reflect.TypeOf(x)); err == nil {
		return e.id
	}
	return ""
}

// ObjectOf wraps p, a pointer to an instance of a registered class, viewing
// it as its most derived known class.
func (r *Registry) ObjectOf(p any) (Object, error) {
	rv := reflect.ValueOf(p)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer {
		return Nothing, errors.WithMessagef(ErrBadType, "%T is not a pointer", p)
	}
	static, err := r.ClassByType(rv.Type())
	if err != nil {
		return Nothing, err
	}
	if rv.IsNil() {
		return Nothing, nil
	}
	ptr := rv.UnsafePointer()
	if id, ok := p.(Identifier); ok {
		dyn, err := r.ClassByName(id.MetaClassID())
		if err != nil {
			return Nothing, err
		}
		return r.viewAs(ptr, static, dyn)
	}
	return r.objectAt(ptr, static), nil
}

// objectAt wraps the address of an instance seen as static, resolving its
// dynamic class through the identity callback when static has one.
func (r *Registry) objectAt(ptr unsafe.Pointer, static *Class) Object {
	dyn := r.dynamicClass(ptr, static)
	if dyn == static {
		return Object{ptr: ptr, class: static, dynamic: static}
	}
	o, err := r.viewAs(ptr, static, dyn)
	if err != nil {
		return Object{ptr: ptr, class: static, dynamic: static}
	}
	return o
}

func (r *Registry) viewAs(ptr unsafe.Pointer, static, dyn *Class) (Object, error) {
	if !dyn.DerivesFrom(static) {
		return Nothing, errors.WithMessagef(ErrClassUnrelated, "%q does not derive from %q", dyn.id, static.id)
	}
	p, err := static.ApplyOffset(ptr, dyn)
	if err != nil {
		return Nothing, err
	}
	return Object{ptr: p, class: dyn, dynamic: dyn}, nil
}

func (r *Registry) dynamicClass(ptr unsafe.Pointer, static *Class) *Class {
	if static.identify == nil || ptr == nil {
		return static
	}
	id := static.identify(ptr)
	if id == "" || id == static.id {
		return static
	}
	dyn, ok := r.classes.get(id)
	if !ok || !dyn.DerivesFrom(static) {
		return static
	}
	return dyn
}

func (r *Registry) EnumCount() int {
	return r.enums.len()
}

func (r *Registry) EnumAt(index int) (*Enum, error) {
	e, ok := r.enums.at(index)
	if !ok {
		return nil, outOfRange(index, r.enums.len())
	}
	return e, nil
}

func (r *Registry) HasEnum(id string) bool {
	return r.enums.has(id)
}

func (r *Registry) EnumByName(id string) (*Enum, error) {
	e, ok := r.enums.get(id)
	if !ok {
		return nil, errors.WithMessagef(ErrEnumNotFound, "enum %q", id)
	}
	return e, nil
}

func (r *Registry) EnumByType(t reflect.Type) (*Enum, error) {
	if t == nil {
		return nil, errors.WithMessage(ErrEnumNotFound, "nil type")
	}
	e := r.enumTypes[t]
	if e == nil {
		return nil, errors.WithMessagef(ErrEnumNotFound, "type %s", t)
	}
	return e, nil
}

// EnumOf returns the enum bound to the native type T.
func EnumOf[T any](r *Registry) (*Enum, error) {
	return r.EnumByType(reflect.TypeFor[T]())
}

// Identifier is implemented by types whose instances report the identifier
// of their own most derived class.
type Identifier interface {
	MetaClassID() string
}

type classPair [2]*Class

func (r *Registry) cachedOffset(key classPair) (int, bool) {
	v, ok := r.offsets.Get(key)
	if !ok {
		return 0, false
	}
	return v.(int), true
}

func (r *Registry) cacheOffset(key classPair, off int) {
	r.offsets.Add(key, off)
}
