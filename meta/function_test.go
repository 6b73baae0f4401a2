package meta_test

import (
	"testing"

	"github.com/bvisness/camp/meta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunctions(t *testing.T) {
	f := newFixture(t)

	t.Run("signature", func(t *testing.T) {
		move, err := f.point.Function("Move")
		require.NoError(t, err)
		assert.Equal(t, 2, move.ArgCount())
		assert.Equal(t, meta.TypeNone, move.ReturnType())
		at, err := move.ArgType(1)
		require.NoError(t, err)
		assert.Equal(t, meta.TypeInt, at)
		_, err = move.ArgType(2)
		require.ErrorIs(t, err, meta.ErrOutOfRange)

		swap, err := f.pixel.Function("Swap")
		require.NoError(t, err)
		assert.Equal(t, meta.TypeEnum, swap.ReturnType())
		at, err = swap.ArgType(0)
		require.NoError(t, err)
		assert.Equal(t, meta.TypeObject, at)
	})

	t.Run("call", func(t *testing.T) {
		p := &Point{X: 3, Y: 4}
		o := f.object(t, p)

		v, err := o.Call("Length2", meta.NoArgs)
		require.NoError(t, err)
		assert.Equal(t, meta.Int(25), v)

		v, err = o.Call("Move", meta.ArgsOf(meta.Int(1), meta.Text("2"), meta.Bool(true)))
		require.NoError(t, err)
		assert.True(t, v.IsNone())
		assert.Equal(t, Point{X: 4, Y: 6}, *p)
	})

	t.Run("arguments", func(t *testing.T) {
		p := &Point{}
		o := f.object(t, p)

		_, err := o.Call("Move", meta.ArgsOf(meta.Int(1)))
		require.ErrorIs(t, err, meta.ErrNotEnoughArguments)

		_, err = o.Call("Move", meta.ArgsOf(meta.Text("left"), meta.Int(1)))
		require.ErrorIs(t, err, meta.ErrBadArgument)
		assert.Equal(t, Point{}, *p)

		_, err = o.Call("Jump", meta.NoArgs)
		require.ErrorIs(t, err, meta.ErrFunctionNotFound)
	})

	t.Run("returned errors", func(t *testing.T) {
		o := f.object(t, &Point{X: -1})
		_, err := o.Call("Check", meta.NoArgs)
		require.EqualError(t, err, "negative x -1")

		_, err = f.object(t, &Point{X: 1}).Call("Check", meta.NoArgs)
		require.NoError(t, err)
	})

	t.Run("object and enum arguments", func(t *testing.T) {
		a := &Pixel{Color: Red}
		b := &Pixel{Color: Blue}
		v, err := f.object(t, a).Call("Swap", meta.ArgsOf(meta.ObjectVal(f.object(t, b))))
		require.NoError(t, err)
		assert.Equal(t, "Red", v.String())
		assert.Equal(t, Blue, a.Color)

		_, err = f.object(t, a).Call("Swap", meta.ArgsOf(meta.ObjectVal(f.object(t, &Point{}))))
		require.ErrorIs(t, err, meta.ErrBadArgument)
	})

	t.Run("callable per instance", func(t *testing.T) {
		px := &Pixel{}
		o := f.object(t, px)
		unlock, err := f.pixel.Function("Unlock")
		require.NoError(t, err)

		assert.False(t, unlock.Callable(o))
		_, err = unlock.Call(o, meta.NoArgs)
		require.ErrorIs(t, err, meta.ErrForbiddenCall)

		_, err = o.Call("Lock", meta.NoArgs)
		require.NoError(t, err)
		assert.True(t, unlock.Callable(o))
		_, err = unlock.Call(o, meta.NoArgs)
		require.NoError(t, err)
		assert.False(t, px.locked)
	})

	t.Run("nothing", func(t *testing.T) {
		fn, err := f.point.Function("Length2")
		require.NoError(t, err)
		_, err = fn.Call(meta.Nothing, meta.NoArgs)
		require.ErrorIs(t, err, meta.ErrNullObject)
		_, err = meta.Nothing.Call("Length2", meta.NoArgs)
		require.ErrorIs(t, err, meta.ErrNullObject)
		assert.False(t, fn.Callable(meta.Nothing))
	})
}
