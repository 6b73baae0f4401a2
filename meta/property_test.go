package meta_test

import (
	"testing"

	"github.com/bvisness/camp/meta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func property(t *testing.T, c *meta.Class, name string) meta.Property {
	t.Helper()
	p, err := c.Property(name)
	require.NoError(t, err)
	return p
}

func TestPropertyKinds(t *testing.T) {
	f := newFixture(t)

	color := property(t, f.pixel, "color").(*meta.EnumProperty)
	assert.Equal(t, meta.TypeEnum, color.Type())
	assert.Same(t, f.color, color.Enum())

	pos := property(t, f.pixel, "pos").(*meta.UserProperty)
	assert.Equal(t, meta.TypeObject, pos.Type())
	assert.Same(t, f.point, pos.Class())
	assert.False(t, pos.ByPointer())

	parent := property(t, f.pixel, "parent").(*meta.UserProperty)
	assert.Same(t, f.pixel, parent.Class())
	assert.True(t, parent.ByPointer())

	tags := property(t, f.pixel, "tags").(*meta.ArrayProperty)
	assert.Equal(t, meta.TypeArray, tags.Type())
	assert.Equal(t, meta.TypeText, tags.ElementType())
	assert.True(t, tags.Dynamic())

	grid := property(t, f.pixel, "grid").(*meta.ArrayProperty)
	assert.Equal(t, meta.TypeInt, grid.ElementType())
	assert.False(t, grid.Dynamic())
	assert.Nil(t, grid.ElementEnum())
	assert.Nil(t, grid.ElementClass())

	brightness := property(t, f.pixel, "brightness").(*meta.FunctionProperty)
	assert.Equal(t, meta.TypeReal, brightness.Type())
	assert.Nil(t, brightness.Enum())

	alpha := property(t, f.pixel, "alpha")
	assert.IsType(t, &meta.SimpleProperty{}, alpha)
	assert.Equal(t, meta.TypeReal, alpha.Type())
}

func TestPropertyAccess(t *testing.T) {
	f := newFixture(t)

	t.Run("round trip", func(t *testing.T) {
		px := &Pixel{Color: Green, Alpha: 0.5}
		o := f.object(t, px)

		cases := []struct {
			name string
			in   meta.Value
		}{
			{"color", meta.EnumVal(f.color.Of(int64(Blue)))},
			{"alpha", meta.Real(0.25)},
			{"hex", meta.Text("00ff00")},
		}
		for _, c := range cases {
			p := property(t, f.pixel, c.name)
			require.NoError(t, p.Set(o, c.in))
			got, err := p.Get(o)
			require.NoError(t, err)
			assert.True(t, c.in.Equal(got), "%s: set %s, got %s", c.name, c.in, got)
		}
		assert.Equal(t, Blue, px.Color)
		assert.Equal(t, 0.25, px.Alpha)
		assert.Equal(t, "00ff00", px.hex)
	})

	t.Run("conversions on set", func(t *testing.T) {
		px := &Pixel{}
		o := f.object(t, px)

		require.NoError(t, o.Set("color", meta.Text("Blue")))
		assert.Equal(t, Blue, px.Color)
		require.NoError(t, o.Set("color", meta.Int(1)))
		assert.Equal(t, Green, px.Color)
		require.NoError(t, o.Set("alpha", meta.Text("0.75")))
		assert.Equal(t, 0.75, px.Alpha)

		err := o.Set("color", meta.Text("Pink"))
		require.ErrorIs(t, err, meta.ErrBadType)
		require.ErrorIs(t, err, meta.ErrEnumNameNotFound)
		assert.Equal(t, Green, px.Color)

		v, err := o.Get("color")
		require.NoError(t, err)
		assert.Equal(t, "Green", v.String())
	})

	t.Run("nested instance by value", func(t *testing.T) {
		px := &Pixel{Pos: Point{X: 1, Y: 2}}
		o := f.object(t, px)

		v, err := o.Get("pos")
		require.NoError(t, err)
		pos, err := v.ToObject(f.point)
		require.NoError(t, err)
		require.NoError(t, pos.Set("x", meta.Int(5)))
		assert.Equal(t, 5, px.Pos.X)

		other := f.object(t, &Point{X: 8, Y: 9})
		require.NoError(t, o.Set("pos", meta.ObjectVal(other)))
		assert.Equal(t, Point{X: 8, Y: 9}, px.Pos)

		err = o.Set("pos", meta.ObjectVal(meta.Nothing))
		require.ErrorIs(t, err, meta.ErrNullObject)
		err = o.Set("pos", meta.Int(1))
		require.ErrorIs(t, err, meta.ErrBadType)
	})

	t.Run("nested instance by pointer", func(t *testing.T) {
		px := &Pixel{}
		parent := &Pixel{Color: Blue}
		o := f.object(t, px)

		v, err := o.Get("parent")
		require.NoError(t, err)
		assert.Equal(t, meta.TypeObject, v.Type())
		assert.True(t, meta.MustTo[meta.Object](v).IsNothing())

		require.NoError(t, o.Set("parent", meta.ObjectVal(f.object(t, parent))))
		assert.Same(t, parent, px.Parent)

		v, err = o.Get("parent")
		require.NoError(t, err)
		assert.True(t, v.Equal(meta.ObjectVal(f.object(t, parent))))

		require.NoError(t, o.Set("parent", meta.ObjectVal(meta.Nothing)))
		assert.Nil(t, px.Parent)
	})

	t.Run("read-only accessor", func(t *testing.T) {
		px := &Pixel{Alpha: 0.5}
		o := f.object(t, px)
		p := property(t, f.pixel, "brightness")

		v, err := p.Get(o)
		require.NoError(t, err)
		assert.Equal(t, meta.Real(50), v)

		assert.True(t, p.Readable(o))
		assert.False(t, p.Writable(o))
		require.ErrorIs(t, p.Set(o, meta.Real(1)), meta.ErrForbiddenWrite)
	})

	t.Run("setter errors", func(t *testing.T) {
		px := &Pixel{hex: "ffffff"}
		o := f.object(t, px)
		err := o.Set("hex", meta.Text("red"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `bad hex "red"`)
		assert.Equal(t, "ffffff", px.hex)
	})

	t.Run("null and unrelated objects", func(t *testing.T) {
		p := property(t, f.pixel, "alpha")
		_, err := p.Get(meta.Nothing)
		require.ErrorIs(t, err, meta.ErrNullObject)
		require.ErrorIs(t, p.Set(meta.Nothing, meta.Real(1)), meta.ErrNullObject)
		assert.False(t, p.Readable(meta.Nothing))

		_, err = p.Get(f.object(t, &Point{}))
		require.ErrorIs(t, err, meta.ErrClassUnrelated)

		_, err = f.object(t, &Point{}).Get("alpha")
		require.ErrorIs(t, err, meta.ErrPropertyNotFound)
	})
}

func TestPermissions(t *testing.T) {
	f := newFixture(t)

	t.Run("writable per instance", func(t *testing.T) {
		px := &Pixel{Alpha: 1}
		o := f.object(t, px)
		p := property(t, f.pixel, "alpha")
		assert.True(t, p.Writable(o))

		_, err := o.Call("Lock", meta.NoArgs)
		require.NoError(t, err)
		assert.False(t, p.Writable(o))
		assert.True(t, p.Readable(o))

		err = p.Set(o, meta.Real(0.5))
		require.ErrorIs(t, err, meta.ErrForbiddenWrite)
		assert.Equal(t, 1.0, px.Alpha)

		other := f.object(t, &Pixel{})
		require.NoError(t, p.Set(other, meta.Real(0.5)))
	})

	t.Run("never writable", func(t *testing.T) {
		w := &Widget{Label: "a"}
		o := f.object(t, w)
		require.ErrorIs(t, o.Set("label", meta.Text("b")), meta.ErrForbiddenWrite)
		assert.Equal(t, "a", w.Label)
		require.NoError(t, o.Set("n", meta.Int(4)))
	})

	t.Run("unreadable", func(t *testing.T) {
		r := meta.NewRegistry()
		tagged := meta.Declare[Tagged](r, "Tagged").
			Property("tag", "Tag").
			Readable(false).
			MustRegister()
		both := meta.Declare[Both](r, "Both").
			Property("n", "N").
			ReadableIf(func(b *Both) bool { return b.N > 0 }).
			MustRegister()

		o, err := r.ObjectOf(&Tagged{Tag: "x"})
		require.NoError(t, err)
		p := property(t, tagged, "tag")
		_, err = p.Get(o)
		require.ErrorIs(t, err, meta.ErrForbiddenRead)
		require.NoError(t, p.Set(o, meta.Text("y")))

		b := &Both{}
		bo, err := r.ObjectOf(b)
		require.NoError(t, err)
		n := property(t, both, "n")
		_, err = n.Get(bo)
		require.ErrorIs(t, err, meta.ErrForbiddenRead)
		b.N = 2
		v, err := n.Get(bo)
		require.NoError(t, err)
		assert.Equal(t, meta.Int(2), v)
	})
}

func TestArrayProperty(t *testing.T) {
	f := newFixture(t)

	texts := func(t *testing.T, p *meta.ArrayProperty, o meta.Object) []string {
		t.Helper()
		n, err := p.Size(o)
		require.NoError(t, err)
		out := []string{}
		for i := range n {
			v, err := p.GetAt(o, i)
			require.NoError(t, err)
			out = append(out, v.String())
		}
		return out
	}

	t.Run("dynamic", func(t *testing.T) {
		px := &Pixel{}
		o := f.object(t, px)
		tags := property(t, f.pixel, "tags").(*meta.ArrayProperty)

		require.NoError(t, tags.Insert(o, 0, meta.Text("a")))
		require.NoError(t, tags.Insert(o, 1, meta.Text("c")))
		require.NoError(t, tags.Insert(o, 1, meta.Text("b")))
		assert.Equal(t, []string{"a", "b", "c"}, px.Tags)

		require.NoError(t, tags.Insert(o, 3, meta.Text("d")))
		err := tags.Insert(o, 5, meta.Text("f"))
		require.ErrorIs(t, err, meta.ErrOutOfRange)
		assert.Equal(t, []string{"a", "b", "c", "d"}, texts(t, tags, o))

		require.NoError(t, tags.Remove(o, 0))
		assert.Equal(t, []string{"b", "c", "d"}, px.Tags)
		require.ErrorIs(t, tags.Remove(o, 3), meta.ErrOutOfRange)

		require.NoError(t, tags.SetAt(o, 0, meta.Int(5)))
		first, err := tags.Get(o)
		require.NoError(t, err)
		assert.Equal(t, meta.Text("5"), first)

		require.NoError(t, tags.Resize(o, 5))
		assert.Equal(t, []string{"5", "c", "d", "", ""}, px.Tags)
		require.NoError(t, tags.Resize(o, 1))
		assert.Equal(t, []string{"5"}, px.Tags)
		require.ErrorIs(t, tags.Resize(o, -1), meta.ErrOutOfRange)
	})

	t.Run("bounds", func(t *testing.T) {
		px := &Pixel{Tags: []string{"x", "y"}}
		o := f.object(t, px)
		tags := property(t, f.pixel, "tags").(*meta.ArrayProperty)

		_, err := tags.GetAt(o, 2)
		require.ErrorIs(t, err, meta.ErrOutOfRange)
		_, err = tags.GetAt(o, -1)
		require.ErrorIs(t, err, meta.ErrOutOfRange)
		require.ErrorIs(t, tags.SetAt(o, 2, meta.Text("z")), meta.ErrOutOfRange)

		require.NoError(t, tags.Insert(o, 2, meta.Text("z")))
		assert.Equal(t, []string{"x", "y", "z"}, px.Tags)

		empty := f.object(t, &Pixel{})
		_, err = tags.Get(empty)
		require.ErrorIs(t, err, meta.ErrOutOfRange)
	})

	t.Run("static", func(t *testing.T) {
		px := &Pixel{}
		o := f.object(t, px)
		grid := property(t, f.pixel, "grid").(*meta.ArrayProperty)

		n, err := grid.Size(o)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		require.NoError(t, grid.SetAt(o, 2, meta.Int(9)))
		assert.Equal(t, [3]int{0, 0, 9}, px.Grid)

		require.ErrorIs(t, grid.Insert(o, 0, meta.Int(1)), meta.ErrForbiddenWrite)
		require.ErrorIs(t, grid.Remove(o, 0), meta.ErrForbiddenWrite)
		require.ErrorIs(t, grid.Resize(o, 4), meta.ErrForbiddenWrite)
		require.ErrorIs(t, grid.SetAt(o, 3, meta.Int(1)), meta.ErrOutOfRange)
		assert.Equal(t, [3]int{0, 0, 9}, px.Grid)
	})

	t.Run("failed conversion leaves the array alone", func(t *testing.T) {
		px := &Pixel{}
		o := f.object(t, px)
		grid := property(t, f.pixel, "grid").(*meta.ArrayProperty)
		require.ErrorIs(t, grid.SetAt(o, 0, meta.Text("nine")), meta.ErrBadType)
		assert.Equal(t, [3]int{}, px.Grid)
	})
}
