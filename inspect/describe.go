package inspect

import (
	"fmt"
	"io"
	"strings"

	"github.com/bvisness/camp/meta"
	"gopkg.in/yaml.v3"
)

type ClassDescription struct {
	ID           string                `yaml:"id"`
	Bases        []string              `yaml:"bases,omitempty"`
	Constructors []string              `yaml:"constructors,omitempty"`
	Properties   []PropertyDescription `yaml:"properties,omitempty"`
	Functions    []FunctionDescription `yaml:"functions,omitempty"`
}

type PropertyDescription struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
	Type string `yaml:"type"`

	// Owner is set for members inherited from a base class.
	Owner string `yaml:"owner,omitempty"`
}

type FunctionDescription struct {
	Name    string   `yaml:"name"`
	Params  []string `yaml:"params,omitempty"`
	Returns string   `yaml:"returns,omitempty"`
	Owner   string   `yaml:"owner,omitempty"`
}

type EnumDescription struct {
	ID     string                 `yaml:"id"`
	Values []EnumValueDescription `yaml:"values"`
}

type EnumValueDescription struct {
	Name  string `yaml:"name"`
	Value int64  `yaml:"value"`
}

// DescribeClass collects the members of c and of all its bases.
func DescribeClass(c *meta.Class) ClassDescription {
	d := ClassDescription{ID: c.ID()}
	for i := range c.BaseCount() {
		b, _ := c.Base(i)
		d.Bases = append(d.Bases, b.ID())
	}
	for i := range c.ConstructorCount() {
		ctor, _ := c.ConstructorAt(i)
		params := make([]string, ctor.ArgCount())
		for j := range params {
			t, _ := ctor.ArgType(j)
			params[j] = t.String()
		}
		d.Constructors = append(d.Constructors, "("+strings.Join(params, ", ")+")")
	}

	v := &describer{class: c, d: &d}
	c.VisitAll(v)
	return d
}

func DescribeEnum(e *meta.Enum) EnumDescription {
	d := EnumDescription{ID: e.ID(), Values: []EnumValueDescription{}}
	for _, p := range e.Pairs() {
		d.Values = append(d.Values, EnumValueDescription{Name: p.Name, Value: p.Value})
	}
	return d
}

type describer struct {
	class *meta.Class
	d     *ClassDescription
}

func (v *describer) owner(c *meta.Class) string {
	if c == v.class {
		return ""
	}
	return c.ID()
}

func (v *describer) add(p meta.Property, kind, typ string) {
	v.d.Properties = append(v.d.Properties, PropertyDescription{
		Name:  p.Name(),
		Kind:  kind,
		Type:  typ,
		Owner: v.owner(p.Owner()),
	})
}

func (v *describer) VisitSimple(p *meta.SimpleProperty) {
	v.add(p, "simple", p.Type().String())
}

func (v *describer) VisitArray(p *meta.ArrayProperty) {
	elem := typeName(p.ElementType(), p.ElementEnum(), p.ElementClass())
	if p.Dynamic() {
		v.add(p, "array", "[]"+elem)
	} else {
		v.add(p, "array", "[static]"+elem)
	}
}

func (v *describer) VisitEnum(p *meta.EnumProperty) {
	v.add(p, "enum", typeName(p.Type(), p.Enum(), nil))
}

func (v *describer) VisitUser(p *meta.UserProperty) {
	typ := typeName(p.Type(), nil, p.Class())
	if p.ByPointer() {
		typ = "*" + typ
	}
	v.add(p, "user", typ)
}

func (v *describer) VisitFunctionProperty(p *meta.FunctionProperty) {
	v.add(p, "accessor", typeName(p.Type(), p.Enum(), p.Class()))
}

func (v *describer) VisitFunction(f *meta.Function) {
	fd := FunctionDescription{Name: f.Name(), Owner: v.owner(f.Owner())}
	for i := range f.ArgCount() {
		t, _ := f.ArgType(i)
		fd.Params = append(fd.Params, t.String())
	}
	if rt := f.ReturnType(); rt != meta.TypeNone {
		fd.Returns = rt.String()
	}
	v.d.Functions = append(v.d.Functions, fd)
}

func typeName(t meta.Type, e *meta.Enum, c *meta.Class) string {
	switch {
	case e != nil:
		return e.ID()
	case c != nil:
		return c.ID()
	}
	return t.String()
}

func writeClassText(w io.Writer, d ClassDescription) {
	fmt.Fprintf(w, "class %s", d.ID)
	if len(d.Bases) > 0 {
		fmt.Fprintf(w, " : %s", strings.Join(d.Bases, ", "))
	}
	fmt.Fprintln(w)
	for _, c := range d.Constructors {
		fmt.Fprintf(w, "  new%s\n", c)
	}
	for _, p := range d.Properties {
		fmt.Fprintf(w, "  %s %s %s%s\n", p.Kind, p.Name, p.Type, from(p.Owner))
	}
	for _, f := range d.Functions {
		fmt.Fprintf(w, "  func %s(%s)", f.Name, strings.Join(f.Params, ", "))
		if f.Returns != "" {
			fmt.Fprintf(w, " %s", f.Returns)
		}
		fmt.Fprintf(w, "%s\n", from(f.Owner))
	}
}

func writeEnumText(w io.Writer, d EnumDescription) {
	fmt.Fprintf(w, "enum %s\n", d.ID)
	for _, v := range d.Values {
		fmt.Fprintf(w, "  %s = %d\n", v.Name, v.Value)
	}
}

func from(owner string) string {
	if owner == "" {
		return ""
	}
	return " (from " + owner + ")"
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
