package meta

import (
	"reflect"
	"unsafe"

	"github.com/pkg/errors"
)

type baseLink struct {
	base   *Class
	offset int
}

// Class is the descriptor of one registered type: its direct bases with the
// byte offset of each base within the derived layout, its own properties and
// functions in declaration order, its constructors and its destructor.
//
// Members of base classes are not merged into the derived tables; use
// LookupProperty/LookupFunction or VisitAll to reach them.
type Class struct {
	id       string
	typ      reflect.Type
	registry *Registry

	bases        []baseLink
	properties   members[Property]
	functions    members[*Function]
	constructors []*Constructor
	destructor   func(Object)
	identify     func(unsafe.Pointer) string
}

// ID returns the identifier the class was registered under.
func (c *Class) ID() string {
	if c == nil {
		return ""
	}
	return c.id
}

// NativeType returns the Go struct type bound to the class.
func (c *Class) NativeType() reflect.Type {
	return c.typ
}

func (c *Class) Registry() *Registry {
	return c.registry
}

func (c *Class) BaseCount() int {
	return len(c.bases)
}

// Base returns the index-th direct base.
func (c *Class) Base(index int) (*Class, error) {
	if index < 0 || index >= len(c.bases) {
		return nil, outOfRange(index, len(c.bases))
	}
	return c.bases[index].base, nil
}

func (c *Class) PropertyCount() int {
	return c.properties.len()
}

func (c *Class) HasProperty(name string) bool {
	return c.properties.has(name)
}

func (c *Class) PropertyAt(index int) (Property, error) {
	p, ok := c.properties.at(index)
	if !ok {
		return nil, outOfRange(index, c.properties.len())
	}
	return p, nil
}

// Property returns the class's own property called name.
func (c *Class) Property(name string) (Property, error) {
	p, ok := c.properties.get(name)
	if !ok {
		return nil, errors.WithMessagef(ErrPropertyNotFound, "property %q in class %q", name, c.id)
	}
	return p, nil
}

func (c *Class) FunctionCount() int {
	return c.functions.len()
}

func (c *Class) HasFunction(name string) bool {
	return c.functions.has(name)
}

func (c *Class) FunctionAt(index int) (*Function, error) {
	f, ok := c.functions.at(index)
	if !ok {
		return nil, outOfRange(index, c.functions.len())
	}
	return f, nil
}

// Function returns the class's own function called name.
func (c *Class) Function(name string) (*Function, error) {
	f, ok := c.functions.get(name)
	if !ok {
		return nil, errors.WithMessagef(ErrFunctionNotFound, "function %q in class %q", name, c.id)
	}
	return f, nil
}

// LookupProperty finds name in the class or, depth first in declaration
// order, in its bases.
func (c *Class) LookupProperty(name string) (Property, error) {
	if p, ok := c.lookupProperty(name); ok {
		return p, nil
	}
	return nil, errors.WithMessagef(ErrPropertyNotFound, "property %q in class %q or its bases", name, c.id)
}

func (c *Class) lookupProperty(name string) (Property, bool) {
	if p, ok := c.properties.get(name); ok {
		return p, true
	}
	for _, link := range c.bases {
		if p, ok := link.base.lookupProperty(name); ok {
			return p, true
		}
	}
	return nil, false
}

// LookupFunction finds name in the class or, depth first in declaration
// order, in its bases.
func (c *Class) LookupFunction(name string) (*Function, error) {
	if f, ok := c.lookupFunction(name); ok {
		return f, nil
	}
	return nil, errors.WithMessagef(ErrFunctionNotFound, "function %q in class %q or its bases", name, c.id)
}

func (c *Class) lookupFunction(name string) (*Function, bool) {
	if f, ok := c.functions.get(name); ok {
		return f, true
	}
	for _, link := range c.bases {
		if f, ok := link.base.lookupFunction(name); ok {
			return f, true
		}
	}
	return nil, false
}

func (c *Class) ConstructorCount() int {
	return len(c.constructors)
}

func (c *Class) ConstructorAt(index int) (*Constructor, error) {
	if index < 0 || index >= len(c.constructors) {
		return nil, outOfRange(index, len(c.constructors))
	}
	return c.constructors[index], nil
}

// Construct creates an instance with the first constructor, in registration
// order, that matches args. It returns Nothing when none does.
func (c *Class) Construct(args Args) Object {
	for _, ctor := range c.constructors {
		if !ctor.Matches(args) {
			continue
		}
		o, err := ctor.Create(args)
		if err != nil {
			return Nothing
		}
		return o
	}
	return Nothing
}

// Destroy runs the registered destructor on o. Destroying Nothing, destroying
// twice or using o afterwards is left to the caller to avoid.
func (c *Class) Destroy(o Object) {
	if c.destructor != nil {
		c.destructor(o)
	}
}

// Visit hands the class's own properties, then its own functions, to v.
func (c *Class) Visit(v ClassVisitor) {
	for _, p := range c.properties.items {
		p.Accept(v)
	}
	for _, f := range c.functions.items {
		f.Accept(v)
	}
}

// VisitAll visits every base depth first, then the class itself.
func (c *Class) VisitAll(v ClassVisitor) {
	for _, link := range c.bases {
		link.base.VisitAll(v)
	}
	c.Visit(v)
}

// BaseOffset returns the byte offset of target within c's layout when target
// is c or one of its (transitive) bases. The search is depth first over the
// bases in declaration order and the first path found wins, which decides
// the offset when target is reachable through more than one path.
func (c *Class) BaseOffset(target *Class) (int, bool) {
	if c == target {
		return 0, true
	}
	for _, link := range c.bases {
		if off, ok := link.base.BaseOffset(target); ok {
			return off + link.offset, true
		}
	}
	return 0, false
}

// DerivesFrom reports whether base is c or one of its bases.
func (c *Class) DerivesFrom(base *Class) bool {
	_, ok := c.BaseOffset(base)
	return ok
}

// ApplyOffset converts the address of an instance seen as c into its address
// seen as target, which must be a base or a derived class of c. A nil pointer
// stays nil whatever the classes.
func (c *Class) ApplyOffset(ptr unsafe.Pointer, target *Class) (unsafe.Pointer, error) {
	if ptr == nil {
		return nil, nil
	}
	off, err := c.offsetTo(target)
	if err != nil {
		return nil, err
	}
	return unsafe.Add(ptr, off), nil
}

func (c *Class) offsetTo(target *Class) (int, error) {
	key := classPair{c, target}
	if c.registry != nil {
		if off, ok := c.registry.cachedOffset(key); ok {
			return off, nil
		}
	}

	off, ok := c.BaseOffset(target)
	if !ok {
		off, ok = target.BaseOffset(c)
		off = -off
	}
	if !ok {
		return 0, errors.WithMessagef(ErrClassUnrelated, "%q and %q", c.ID(), target.ID())
	}

	if c.registry != nil {
		c.registry.cacheOffset(key, off)
	}
	return off, nil
}

// Equal compares descriptors by identifier.
func (c *Class) Equal(other *Class) bool {
	return c.ID() == other.ID()
}
