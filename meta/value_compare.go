package meta

import (
	"cmp"

	"golang.org/x/exp/constraints"
)

type tagPair [2]Type

// PairTable dispatches a binary operation on the tags of two values. Cases
// are registered per ordered pair, so (a, b) and (b, a) are distinct entries;
// pairs without a case go to the fallback.
type PairTable[R any] struct {
	cases    map[tagPair]func(a, b Value) R
	fallback func(a, b Value) R
}

func NewPairTable[R any](fallback func(a, b Value) R) *PairTable[R] {
	return &PairTable[R]{
		cases:    make(map[tagPair]func(a, b Value) R),
		fallback: fallback,
	}
}

// On registers fn for values tagged ta and tb, in that order.
func (t *PairTable[R]) On(ta, tb Type, fn func(a, b Value) R) *PairTable[R] {
	t.cases[tagPair{ta, tb}] = fn
	return t
}

// OnSame registers fn for two values sharing the tag tt.
func (t *PairTable[R]) OnSame(tt Type, fn func(a, b Value) R) *PairTable[R] {
	return t.On(tt, tt, fn)
}

func (t *PairTable[R]) Visit(a, b Value) R {
	if fn, ok := t.cases[tagPair{a.typ, b.typ}]; ok {
		return fn(a, b)
	}
	return t.fallback(a, b)
}

func order[T constraints.Ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func orderBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}

// Values of different tags order by tag. Values of the same tag order by
// payload; NaN sorts below every other real and equals only NaN; enums by descriptor then value, objects by class then address.
var compareTable = NewPairTable(func(a, b Value) int {
	return order(a.typ, b.typ)
}).
	OnSame(TypeNone, func(a, b Value) int {
		return 0
	}).
	OnSame(TypeBool, func(a, b Value) int {
		return orderBool(a.b, b.b)
	}).
	OnSame(TypeInt, func(a, b Value) int {
		return order(a.i, b.i)
	}).
	OnSame(TypeReal, func(a, b Value) int {
		return cmp.Compare(a.f, b.f)
	}).
	OnSame(TypeText, func(a, b Value) int {
		return order(a.s, b.s)
	}).
	OnSame(TypeEnum, func(a, b Value) int {
		if c := order(a.e.enum.ID(), b.e.enum.ID()); c != 0 {
			return c
		}
		return order(a.e.value, b.e.value)
	}).
	OnSame(TypeObject, func(a, b Value) int {
		return a.o.compare(b.o)
	})

// Compare returns -1, 0 or +1. It is a total order suitable for sorting.
func (v Value) Compare(other Value) int {
	return compareTable.Visit(v, other)
}

func (v Value) Equal(other Value) bool {
	return v.Compare(other) == 0
}

func (v Value) Less(other Value) bool {
	return v.Compare(other) < 0
}
