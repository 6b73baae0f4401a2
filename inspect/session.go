// Package inspect interprets a small command language over a registry:
// listing and describing descriptors, creating instances into named
// variables, and reading, writing and calling their members.
package inspect

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/bvisness/camp/meta"
	"github.com/pkg/errors"
)

var (
	ErrUnknownCommand  = errors.New("unknown command")
	ErrUnknownVariable = errors.New("unknown variable")
	ErrVariableExists  = errors.New("variable already defined")
	ErrNoConstructor   = errors.New("no matching constructor")
)

type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatYAML:
		return f, nil
	}
	return "", errors.Errorf("unknown output format %q (want text or yaml)", s)
}

// Session holds the variables of one interpreter run. It is not safe for
// concurrent use.
type Session struct {
	reg    *meta.Registry
	out    io.Writer
	format Format
	vars   map[string]meta.Object

	// aliases maps a variable bound by cast to the variable created by new
	// that owns the instance. Only owners are destroyed.
	aliases map[string]string
}

func NewSession(r *meta.Registry, out io.Writer) *Session {
	return &Session{
		reg:    r,
		out:    out,
		format:  FormatText,
		vars:    make(map[string]meta.Object),
		aliases: make(map[string]string),
	}
}

func (s *Session) SetFormat(f Format) {
	s.format = f
}

// Var returns the instance bound to name.
func (s *Session) Var(name string) (meta.Object, bool) {
	o, ok := s.vars[name]
	return o, ok
}

// Exec runs one command line. Blank lines and comments do nothing.
func (s *Session) Exec(line string) error {
	p, err := newParser(line)
	if err != nil {
		return err
	}
	if p.Done() {
		return nil
	}
	name, _ := p.ReadWord("command")
	cmd, ok := commands[name]
	if !ok {
		return errors.WithMessagef(ErrUnknownCommand, "%q", name)
	}
	if err := cmd.run(s, &p); err != nil {
		return errors.WithMessage(err, name)
	}
	return nil
}

// Run executes every line of in, stopping at the first failure.
func (s *Session) Run(in io.Reader) error {
	sc := bufio.NewScanner(in)
	for n := 1; sc.Scan(); n++ {
		if err := s.Exec(sc.Text()); err != nil {
			return errors.WithMessagef(err, "line %d", n)
		}
	}
	return sc.Err()
}

// Close destroys every instance still owned by a variable, once each, and
// unbinds all variables.
func (s *Session) Close() {
	for _, name := range slices.Sorted(maps.Keys(s.vars)) {
		if _, alias := s.aliases[name]; !alias {
			o := s.vars[name]
			o.DynamicClass().Destroy(o)
		}
	}
	clear(s.vars)
	clear(s.aliases)
}

// unbind removes name. Deleting an owner destroys its instance and unbinds
// its aliases; deleting an alias leaves the instance alone.
func (s *Session) unbind(name string) {
	if _, alias := s.aliases[name]; alias {
		delete(s.aliases, name)
		delete(s.vars, name)
		return
	}
	o := s.vars[name]
	o.DynamicClass().Destroy(o)
	delete(s.vars, name)
	for alias, owner := range s.aliases {
		if owner == name {
			delete(s.aliases, alias)
			delete(s.vars, alias)
		}
	}
}

func (s *Session) owner(name string) string {
	if owner, ok := s.aliases[name]; ok {
		return owner
	}
	return name
}

type command struct {
	usage string
	run   func(s *Session, p *parser) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"help":     {"help", (*Session).help},
		"classes":  {"classes", (*Session).classes},
		"enums":    {"enums", (*Session).enums},
		"describe": {"describe <class|enum>", (*Session).describe},
		"vars":     {"vars", (*Session).listVars},
		"new":      {"new <var> <class> [args...]", (*Session).newVar},
		"delete":   {"delete <var>", (*Session).deleteVar},
		"cast":     {"cast <var> <alias> <class>", (*Session).cast},
		"get":      {"get <var> <property> [index]", (*Session).get},
		"set":      {"set <var> <property> [index] <value>", (*Session).set},
		"size":     {"size <var> <array>", (*Session).size},
		"resize":   {"resize <var> <array> <n>", (*Session).resize},
		"insert":   {"insert <var> <array> <index> <value>", (*Session).insert},
		"remove":   {"remove <var> <array> <index>", (*Session).remove},
		"call":     {"call <var> <function> [args...]", (*Session).call},
		"enum":     {"enum <enum> <name|value>", (*Session).enum},
	}
}

func (s *Session) help(p *parser) error {
	for _, name := range slices.Sorted(maps.Keys(commands)) {
		fmt.Fprintf(s.out, "  %s\n", commands[name].usage)
	}
	return p.ReadEnd("help")
}

func (s *Session) classes(p *parser) error {
	if err := p.ReadEnd("classes"); err != nil {
		return err
	}
	for i := range s.reg.ClassCount() {
		c, _ := s.reg.ClassAt(i)
		d := DescribeClass(c)
		if len(d.Bases) > 0 {
			fmt.Fprintf(s.out, "%s : %s\n", c.ID(), strings.Join(d.Bases, ", "))
		} else {
			fmt.Fprintln(s.out, c.ID())
		}
	}
	return nil
}

func (s *Session) enums(p *parser) error {
	if err := p.ReadEnd("enums"); err != nil {
		return err
	}
	for i := range s.reg.EnumCount() {
		e, _ := s.reg.EnumAt(i)
		fmt.Fprintf(s.out, "%s (%d values)\n", e.ID(), e.Size())
	}
	return nil
}

func (s *Session) describe(p *parser) error {
	id, err := p.ReadWord("class or enum name")
	if err != nil {
		return err
	}
	if err := p.ReadEnd("describe"); err != nil {
		return err
	}

	if c, err := s.reg.ClassByName(id); err == nil {
		d := DescribeClass(c)
		if s.format == FormatYAML {
			return writeYAML(s.out, d)
		}
		writeClassText(s.out, d)
		return nil
	}
	if e, err := s.reg.EnumByName(id); err == nil {
		d := DescribeEnum(e)
		if s.format == FormatYAML {
			return writeYAML(s.out, d)
		}
		writeEnumText(s.out, d)
		return nil
	}
	return errors.WithMessagef(meta.ErrClassNotFound, "no class or enum %q", id)
}

func (s *Session) listVars(p *parser) error {
	if err := p.ReadEnd("vars"); err != nil {
		return err
	}
	for _, name := range slices.Sorted(maps.Keys(s.vars)) {
		fmt.Fprintf(s.out, "$%s: %s\n", name, s.vars[name].DynamicClass().ID())
	}
	return nil
}

func (s *Session) newVar(p *parser) error {
	name, err := s.readNewVar(p)
	if err != nil {
		return err
	}
	c, err := s.readClass(p)
	if err != nil {
		return err
	}
	args, err := s.readArgs(p)
	if err != nil {
		return err
	}
	o := c.Construct(args)
	if o.IsNothing() {
		return errors.WithMessagef(ErrNoConstructor, "class %q with arguments %s", c.ID(), args)
	}
	s.vars[name] = o
	fmt.Fprintf(s.out, "$%s: %s\n", name, o.DynamicClass().ID())
	return nil
}

func (s *Session) deleteVar(p *parser) error {
	name, _, err := s.readObject(p)
	if err != nil {
		return err
	}
	if err := p.ReadEnd("delete"); err != nil {
		return err
	}
	s.unbind(name)
	return nil
}

func (s *Session) cast(p *parser) error {
	src, o, err := s.readObject(p)
	if err != nil {
		return err
	}
	name, err := s.readNewVar(p)
	if err != nil {
		return err
	}
	c, err := s.readClass(p)
	if err != nil {
		return err
	}
	if err := p.ReadEnd("cast"); err != nil {
		return err
	}
	cast, err := o.Cast(c)
	if err != nil {
		return err
	}
	s.vars[name] = cast
	s.aliases[name] = s.owner(src)
	fmt.Fprintf(s.out, "$%s: %s\n", name, cast.Class().ID())
	return nil
}

func (s *Session) get(p *parser) error {
	o, prop, err := s.readProperty(p)
	if err != nil {
		return err
	}
	arr, isArray := prop.(*meta.ArrayProperty)
	if !p.Done() {
		if !isArray {
			return errors.WithMessagef(meta.ErrBadType, "property %q is not an array", prop.Name())
		}
		index, err := p.ReadInt("index")
		if err != nil {
			return err
		}
		if err := p.ReadEnd("get"); err != nil {
			return err
		}
		v, err := arr.GetAt(o, index)
		if err != nil {
			return err
		}
		return s.print(v)
	}
	if isArray {
		return s.printArray(o, arr)
	}
	v, err := prop.Get(o)
	if err != nil {
		return err
	}
	return s.print(v)
}

func (s *Session) set(p *parser) error {
	o, prop, err := s.readProperty(p)
	if err != nil {
		return err
	}
	if p.Remaining() > 1 {
		arr, ok := prop.(*meta.ArrayProperty)
		if !ok {
			return errors.WithMessagef(meta.ErrBadType, "property %q is not an array", prop.Name())
		}
		index, err := p.ReadInt("index")
		if err != nil {
			return err
		}
		v, err := s.readValue(p, "value")
		if err != nil {
			return err
		}
		if err := p.ReadEnd("set"); err != nil {
			return err
		}
		return arr.SetAt(o, index, v)
	}
	v, err := s.readValue(p, "value")
	if err != nil {
		return err
	}
	return prop.Set(o, v)
}

func (s *Session) size(p *parser) error {
	o, arr, err := s.readArray(p)
	if err != nil {
		return err
	}
	if err := p.ReadEnd("size"); err != nil {
		return err
	}
	n, err := arr.Size(o)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, n)
	return nil
}

func (s *Session) resize(p *parser) error {
	o, arr, err := s.readArray(p)
	if err != nil {
		return err
	}
	n, err := p.ReadInt("size")
	if err != nil {
		return err
	}
	if err := p.ReadEnd("resize"); err != nil {
		return err
	}
	return arr.Resize(o, n)
}

func (s *Session) insert(p *parser) error {
	o, arr, err := s.readArray(p)
	if err != nil {
		return err
	}
	index, err := p.ReadInt("index")
	if err != nil {
		return err
	}
	v, err := s.readValue(p, "value")
	if err != nil {
		return err
	}
	if err := p.ReadEnd("insert"); err != nil {
		return err
	}
	return arr.Insert(o, index, v)
}

func (s *Session) remove(p *parser) error {
	o, arr, err := s.readArray(p)
	if err != nil {
		return err
	}
	index, err := p.ReadInt("index")
	if err != nil {
		return err
	}
	if err := p.ReadEnd("remove"); err != nil {
		return err
	}
	return arr.Remove(o, index)
}

func (s *Session) call(p *parser) error {
	_, o, err := s.readObject(p)
	if err != nil {
		return err
	}
	name, err := p.ReadWord("function name")
	if err != nil {
		return err
	}
	fn, err := o.DynamicClass().LookupFunction(name)
	if err != nil {
		return err
	}
	args, err := s.readArgs(p)
	if err != nil {
		return err
	}
	v, err := fn.Call(o, args)
	if err != nil {
		return err
	}
	if v.IsNone() {
		return nil
	}
	return s.print(v)
}

func (s *Session) enum(p *parser) error {
	id, err := p.ReadWord("enum name")
	if err != nil {
		return err
	}
	e, err := s.reg.EnumByName(id)
	if err != nil {
		return err
	}
	key, err := p.ReadWord("name or value")
	if err != nil {
		return err
	}
	if err := p.ReadEnd("enum"); err != nil {
		return err
	}

	if n, perr := strconv.ParseInt(key, 10, 64); perr == nil {
		name, err := e.Name(n)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "%s = %d\n", name, n)
		return nil
	}
	v, err := e.Value(key)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s = %d\n", key, v)
	return nil
}

func (s *Session) print(v meta.Value) error {
	if s.format == FormatYAML {
		return writeYAML(s.out, map[string]string{"type": v.Type().String(), "value": v.String()})
	}
	fmt.Fprintln(s.out, v.String())
	return nil
}

func (s *Session) printArray(o meta.Object, arr *meta.ArrayProperty) error {
	n, err := arr.Size(o)
	if err != nil {
		return err
	}
	elems := make([]string, n)
	for i := range n {
		v, err := arr.GetAt(o, i)
		if err != nil {
			return err
		}
		elems[i] = v.String()
	}
	if s.format == FormatYAML {
		return writeYAML(s.out, elems)
	}
	fmt.Fprintf(s.out, "[%s]\n", strings.Join(elems, ", "))
	return nil
}

func (s *Session) readNewVar(p *parser) (string, error) {
	name, err := p.ReadVar("variable name")
	if err != nil {
		return "", err
	}
	if _, ok := s.vars[name]; ok {
		return "", errors.WithMessagef(ErrVariableExists, "$%s", name)
	}
	return name, nil
}

func (s *Session) readObject(p *parser) (string, meta.Object, error) {
	name, err := p.ReadVar("variable")
	if err != nil {
		return "", meta.Nothing, err
	}
	o, ok := s.vars[name]
	if !ok {
		return "", meta.Nothing, errors.WithMessagef(ErrUnknownVariable, "$%s", name)
	}
	return name, o, nil
}

func (s *Session) readClass(p *parser) (*meta.Class, error) {
	id, err := p.ReadWord("class name")
	if err != nil {
		return nil, err
	}
	return s.reg.ClassByName(id)
}

func (s *Session) readProperty(p *parser) (meta.Object, meta.Property, error) {
	_, o, err := s.readObject(p)
	if err != nil {
		return meta.Nothing, nil, err
	}
	name, err := p.ReadWord("property name")
	if err != nil {
		return meta.Nothing, nil, err
	}
	prop, err := o.DynamicClass().LookupProperty(name)
	if err != nil {
		return meta.Nothing, nil, err
	}
	return o, prop, nil
}

func (s *Session) readArray(p *parser) (meta.Object, *meta.ArrayProperty, error) {
	o, prop, err := s.readProperty(p)
	if err != nil {
		return meta.Nothing, nil, err
	}
	arr, ok := prop.(*meta.ArrayProperty)
	if !ok {
		return meta.Nothing, nil, errors.WithMessagef(meta.ErrBadType, "property %q is not an array", prop.Name())
	}
	return o, arr, nil
}

func (s *Session) readArgs(p *parser) (meta.Args, error) {
	var args meta.Args
	for i := 0; !p.Done(); i++ {
		v, err := s.readValue(p, fmt.Sprintf("argument %d", i))
		if err != nil {
			return meta.NoArgs, err
		}
		args.Append(v)
	}
	return args, nil
}

// readValue reads a literal: quoted text, none, nothing, true, false, an
// integer, a real, $var for an instance, Enum.Name for an enum member, and
// anything else as bare text.
func (s *Session) readValue(p *parser, thing string) (meta.Value, error) {
	at := p.cur
	t, err := p.Read(thing)
	if err != nil {
		return meta.None, err
	}
	if t.quoted {
		return meta.Text(t.text), nil
	}

	switch t.text {
	case "none":
		return meta.None, nil
	case "nothing":
		return meta.ObjectVal(meta.Nothing), nil
	case "true":
		return meta.Bool(true), nil
	case "false":
		return meta.Bool(false), nil
	}
	if i, err := strconv.ParseInt(t.text, 10, 64); err == nil {
		return meta.Int(i), nil
	}
	if f, err := strconv.ParseFloat(t.text, 64); err == nil {
		return meta.Real(f), nil
	}
	if name, ok := strings.CutPrefix(t.text, "$"); ok {
		o, ok := s.vars[name]
		if !ok {
			return meta.None, fmt.Errorf("%s at token %d: %w", thing, at, errors.WithMessagef(ErrUnknownVariable, "$%s", name))
		}
		return meta.ObjectVal(o), nil
	}
	if id, name, ok := strings.Cut(t.text, "."); ok {
		if e, err := s.reg.EnumByName(id); err == nil {
			v, err := e.Value(name)
			if err != nil {
				return meta.None, fmt.Errorf("%s at token %d: %w", thing, at, err)
			}
			return meta.EnumVal(e.Of(v)), nil
		}
	}
	return meta.Text(t.text), nil
}
