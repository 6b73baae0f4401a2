package meta_test

import (
	"fmt"
	"testing"

	"github.com/bvisness/camp/meta"
	"github.com/stretchr/testify/require"
)

type Color int

const (
	Red Color = iota
	Green
	Blue
)

type Point struct {
	X, Y int
}

type Pixel struct {
	Color  Color
	Pos    Point
	Alpha  float64
	Tags   []string
	Grid   [3]int
	Parent *Pixel

	locked bool
	hex    string
}

type Base struct {
	ID   int
	Name string
	kind string
}

type Mid struct {
	pad [16]byte
	Base
	Level int
}

type Leaf struct {
	extra [8]byte
	Mid
	Weight float64
}

type Tagged struct {
	Tag string
}

type Both struct {
	Base
	Tagged
	N int
}

type Left struct {
	Base
	L int
}

type Right struct {
	Base
	R int
}

type Diamond struct {
	Left
	Right
}

type Widget struct {
	N     int
	Label string
	ctor  int
}

type fixture struct {
	r *meta.Registry

	color   *meta.Enum
	point   *meta.Class
	pixel   *meta.Class
	base    *meta.Class
	mid     *meta.Class
	leaf    *meta.Class
	tagged  *meta.Class
	both    *meta.Class
	left    *meta.Class
	right   *meta.Class
	diamond *meta.Class
	widget  *meta.Class

	destroyed []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{r: meta.NewRegistry()}
	r := f.r

	f.color = meta.DeclareEnum[Color](r, "Color").
		Value("Red", Red).
		Value("Green", Green).
		Value("Blue", Blue).
		Value("Crimson", Red).
		MustRegister()

	f.point = meta.Declare[Point](r, "Point").
		Constructor(func() *Point { return &Point{} }).
		Constructor(func(x, y int) *Point { return &Point{X: x, Y: y} }).
		Property("x", "X").
		Property("y", "Y").
		Function("Length2", func(p *Point) int { return p.X*p.X + p.Y*p.Y }).
		Function("Move", func(p *Point, dx, dy int) {
			p.X += dx
			p.Y += dy
		}).
		Function("Check", func(p *Point) error {
			if p.X < 0 {
				return fmt.Errorf("negative x %d", p.X)
			}
			return nil
		}).
		MustRegister()

	f.pixel = meta.Declare[Pixel](r, "Pixel").
		Constructor(func(c Color) *Pixel { return &Pixel{Color: c, Alpha: 1} }).
		Property("color", "Color").
		Property("pos", "Pos").
		Property("alpha", "Alpha").
		WritableIf(func(p *Pixel) bool { return !p.locked }).
		Property("tags", "Tags").
		Property("grid", "Grid").
		Property("parent", "Parent").
		Accessor("brightness", func(p Pixel) float64 { return p.Alpha * 100 }, nil).
		Accessor("hex", func(p *Pixel) string { return p.hex }, func(p *Pixel, s string) error {
			if len(s) != 6 {
				return fmt.Errorf("bad hex %q", s)
			}
			p.hex = s
			return nil
		}).
		Function("Swap", func(p *Pixel, other *Pixel) Color {
			old := p.Color
			p.Color = other.Color
			return old
		}).
		Function("Lock", func(p *Pixel) { p.locked = true }).
		Function("Unlock", func(p *Pixel) { p.locked = false }).
		CallableIf(func(p *Pixel) bool { return p.locked }).
		Destructor(func(p *Pixel) { f.destroyed = append(f.destroyed, p.Color.String()) }).
		MustRegister()

	f.base = meta.Declare[Base](r, "Base").
		Constructor(func(id int, name string) *Base { return &Base{ID: id, Name: name} }).
		Property("id", "ID").
		Property("name", "Name").
		Function("Describe", func(b *Base) string { return fmt.Sprintf("%d:%s", b.ID, b.Name) }).
		Identify(func(b *Base) string { return b.kind }).
		MustRegister()

	f.mid = meta.Declare[Mid](r, "Mid").
		Base(f.base).
		Property("level", "Level").
		MustRegister()

	f.leaf = meta.Declare[Leaf](r, "Leaf").
		Base(f.mid).
		Constructor(func(w float64) *Leaf {
			return &Leaf{Mid: Mid{Base: Base{kind: "Leaf"}}, Weight: w}
		}).
		Property("weight", "Weight").
		MustRegister()

	f.tagged = meta.Declare[Tagged](r, "Tagged").
		Property("tag", "Tag").
		MustRegister()

	f.both = meta.Declare[Both](r, "Both").
		Base(f.base).
		Base(f.tagged).
		Property("n", "N").
		MustRegister()

	f.left = meta.Declare[Left](r, "Left").Base(f.base).MustRegister()
	f.right = meta.Declare[Right](r, "Right").Base(f.base).MustRegister()
	f.diamond = meta.Declare[Diamond](r, "Diamond").Base(f.left).Base(f.right).MustRegister()

	f.widget = meta.Declare[Widget](r, "Widget").
		Constructor(func(n int) *Widget { return &Widget{N: n, ctor: 1} }).
		Constructor(func(n int, label string) *Widget { return &Widget{N: n, Label: label, ctor: 2} }).
		Property("n", "N").
		Property("label", "Label").
		Writable(false).
		MustRegister()

	r.Freeze()
	return f
}

func (c Color) String() string {
	switch c {
	case Red:
		return "Red"
	case Green:
		return "Green"
	case Blue:
		return "Blue"
	}
	return fmt.Sprintf("Color(%d)", int(c))
}

func (f *fixture) object(t *testing.T, p any) meta.Object {
	t.Helper()
	o, err := f.r.ObjectOf(p)
	require.NoError(t, err)
	return o
}
