// Package sample declares a small set of graphics types with the meta
// registry. The CLI inspects these, and they double as an example of how a
// program registers its own types at startup.
package sample

import (
	"math"

	"github.com/bvisness/camp/meta"
	"github.com/pkg/errors"
)

type Color int

const (
	Black Color = iota
	Red
	Green
	Blue
	White
)

type Point struct {
	X, Y float64
}

type Pixel struct {
	Color Color
	At    Point
}

type Named struct {
	Name string
	Tags []string
}

// Shape is the common base of the drawable types. kind holds the class id of
// the concrete shape so that a *Shape can be traced back to it.
type Shape struct {
	kind    string
	Visible bool
	Origin  Point
}

func (s *Shape) Move(dx, dy float64) {
	s.Origin.X += dx
	s.Origin.Y += dy
}

type Circle struct {
	Shape
	Named
	Radius float64
}

func NewCircle(radius float64) *Circle {
	return &Circle{Shape: Shape{kind: "Circle", Visible: true}, Radius: radius}
}

func NewNamedCircle(name string, radius float64) *Circle {
	c := NewCircle(radius)
	c.Name = name
	return c
}

func (c *Circle) Area() float64 {
	return math.Pi * c.Radius * c.Radius
}

func (c *Circle) Scale(factor float64) error {
	if factor <= 0 {
		return errors.Errorf("scale factor must be positive, got %g", factor)
	}
	c.Radius *= factor
	return nil
}

type Polygon struct {
	Shape
	Named
	Points  []Point
	Corners [4]int

	locked bool
}

func NewPolygon(name string) *Polygon {
	return &Polygon{Shape: Shape{kind: "Polygon", Visible: true}, Named: Named{Name: name}}
}

func (p *Polygon) AddPoint(x, y float64) int {
	p.Points = append(p.Points, Point{X: x, Y: y})
	return len(p.Points)
}

func (p *Polygon) Perimeter() float64 {
	if len(p.Points) < 2 {
		return 0
	}
	var total float64
	for i, a := range p.Points {
		b := p.Points[(i+1)%len(p.Points)]
		total += math.Hypot(b.X-a.X, b.Y-a.Y)
	}
	return total
}

// Lock freezes the outline; points can no longer be written.
func (p *Polygon) Lock() {
	p.locked = true
}

// Register declares every sample type in r.
func Register(r *meta.Registry) error {
	steps := []func(*meta.Registry) error{
		registerColor,
		registerPoint,
		registerPixel,
		registerNamed,
		registerShape,
		registerCircle,
		registerPolygon,
	}
	for _, step := range steps {
		if err := step(r); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a frozen registry holding the sample types.
func NewRegistry() (*meta.Registry, error) {
	r := meta.NewRegistry()
	if err := Register(r); err != nil {
		return nil, err
	}
	r.Freeze()
	return r, nil
}

func registerColor(r *meta.Registry) error {
	_, err := meta.DeclareEnum[Color](r, "Color").
		Value("Black", Black).
		Value("Red", Red).
		Value("Green", Green).
		Value("Blue", Blue).
		Value("White", White).
		Register()
	return err
}

func registerPoint(r *meta.Registry) error {
	_, err := meta.Declare[Point](r, "Point").
		Constructor(func() *Point { return &Point{} }).
		Constructor(func(x, y float64) *Point { return &Point{X: x, Y: y} }).
		Property("x", "X").
		Property("y", "Y").
		Register()
	return err
}

func registerPixel(r *meta.Registry) error {
	_, err := meta.Declare[Pixel](r, "Pixel").
		Constructor(func(c Color) *Pixel { return &Pixel{Color: c} }).
		Constructor(func(c Color, at Point) *Pixel { return &Pixel{Color: c, At: at} }).
		Property("color", "Color").
		Property("at", "At").
		Register()
	return err
}

func registerNamed(r *meta.Registry) error {
	_, err := meta.Declare[Named](r, "Named").
		Constructor(func(name string) *Named { return &Named{Name: name} }).
		Property("name", "Name").
		Property("tags", "Tags").
		Register()
	return err
}

func registerShape(r *meta.Registry) error {
	_, err := meta.Declare[Shape](r, "Shape").
		Property("visible", "Visible").
		Property("origin", "Origin").
		Accessor("kind", func(s *Shape) string { return s.kind }, nil).
		Function("move", (*Shape).Move).
		Identify(func(s *Shape) string { return s.kind }).
		Register()
	return err
}

func registerCircle(r *meta.Registry) error {
	shape, named, err := bases(r)
	if err != nil {
		return err
	}
	_, err = meta.Declare[Circle](r, "Circle").
		Base(shape).
		Base(named).
		Constructor(NewCircle).
		Constructor(NewNamedCircle).
		Property("radius", "Radius").
		Function("area", (*Circle).Area).
		Function("scale", (*Circle).Scale).
		Register()
	return err
}

func registerPolygon(r *meta.Registry) error {
	shape, named, err := bases(r)
	if err != nil {
		return err
	}
	_, err = meta.Declare[Polygon](r, "Polygon").
		Base(shape).
		Base(named).
		Constructor(NewPolygon).
		Property("points", "Points").
		WritableIf(func(p *Polygon) bool { return !p.locked }).
		Property("corners", "Corners").
		Accessor("count", func(p Polygon) int { return len(p.Points) }, nil).
		Function("addPoint", (*Polygon).AddPoint).
		CallableIf(func(p *Polygon) bool { return !p.locked }).
		Function("perimeter", (*Polygon).Perimeter).
		Function("lock", (*Polygon).Lock).
		Destructor(func(p *Polygon) {
			p.Points = nil
			p.Tags = nil
		}).
		Register()
	return err
}

func bases(r *meta.Registry) (shape, named *meta.Class, err error) {
	if shape, err = meta.ClassOf[Shape](r); err != nil {
		return nil, nil, err
	}
	if named, err = meta.ClassOf[Named](r); err != nil {
		return nil, nil, err
	}
	return shape, named, nil
}
