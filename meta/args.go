package meta

import (
	"slices"
	"strings"
)

// Args is an ordered list of values passed to constructors and functions.
type Args struct {
	values []Value
}

// NoArgs is the empty argument list.
var NoArgs Args

func ArgsOf(values ...Value) Args {
	return Args{values: slices.Clone(values)}
}

func (a Args) Count() int {
	return len(a.values)
}

func (a Args) At(index int) (Value, error) {
	if index < 0 || index >= len(a.values) {
		return None, outOfRange(index, len(a.values))
	}
	return a.values[index], nil
}

// With returns a new list made of a followed by v; a is left untouched.
func (a Args) With(v Value) Args {
	return Args{values: append(slices.Clip(a.values), v)}
}

// Append adds v to the end of the list in place. Copies of a made before the
// call are not affected.
func (a *Args) Append(v Value) *Args {
	a.values = append(slices.Clip(a.values), v)
	return a
}

func (a Args) Values() []Value {
	return slices.Clone(a.values)
}

func (a Args) String() string {
	strs := make([]string, len(a.values))
	for i, v := range a.values {
		strs[i] = v.String()
	}
	return "(" + strings.Join(strs, ", ") + ")"
}
