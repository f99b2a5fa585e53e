package geometry

// Op is a path command.
type Op int

const (
	OpMove Op = iota
	OpLine
	OpCube
	OpClose
)

// Point is a 2D coordinate in surface pixels, y growing downwards.
type Point struct {
	X, Y float64
}

// Segment is one path command. OpMove and OpLine carry one point, OpCube
// carries two control points and the end point, OpClose carries none.
type Segment struct {
	Op     Op
	Points []Point
}

// Path is a sequence of segments.
type Path []Segment

// Params are the style inputs of the transform.
type Params struct {
	Width        float64
	Height       float64
	Amplitude    float64
	SegmentWidth float64
	Shift        float64
}

// Geometry is the frame-local coordinate set of one channel.
type Geometry struct {
	X [Points]float64
	Y [Slots]float64
}

// Compute derives the coordinates of channel from snapshot.
func Compute(snapshot []byte, channel int, p Params) Geometry {
	center := p.Height / 2
	return Geometry{
		X: Xs(p.Width, p.SegmentWidth, p.Shift, channel),
		Y: Ys(Magnitudes(snapshot, channel), p.Amplitude, center),
	}
}

// Channel builds the closed ribbon of channel.
func Channel(snapshot []byte, channel int, p Params) Path {
	return Compute(snapshot, channel, p).Path(p.Width, p.Height)
}

// Path traces the ribbon: along the centre line, over the upper mirror,
// across to the right edge and back under the lower mirror.
func (g Geometry) Path(width, height float64) Path {
	x, y := g.X, g.Y
	m := height / 2
	h := 2 * m

	b := builder{path: make(Path, 0, 20)}
	b.move(0, m)
	b.line(x[0], m+1)

	b.cube(x[1], m+1, x[2], y[0], x[3], y[0])
	b.cube(x[4], y[0], x[4], y[1], x[5], y[1])
	b.cube(x[6], y[1], x[6], y[2], x[7], y[2])
	b.cube(x[8], y[2], x[8], y[3], x[9], y[3])
	b.cube(x[10], y[3], x[10], y[4], x[11], y[4])
	b.cube(x[12], y[4], x[12], m, x[13], m)

	b.line(width, m+1)
	b.line(x[13], m-1)

	b.cube(x[12], m, x[12], h-y[4], x[11], h-y[4])
	b.cube(x[10], h-y[4], x[10], h-y[3], x[9], h-y[3])
	b.cube(x[8], h-y[3], x[8], h-y[2], x[7], h-y[2])
	b.cube(x[6], h-y[2], x[6], h-y[1], x[5], h-y[1])
	b.cube(x[4], h-y[1], x[4], h-y[0], x[3], h-y[0])
	b.cube(x[2], h-y[0], x[1], m, x[0], m)

	b.line(0, m)
	b.close()
	return b.path
}

type builder struct {
	path Path
}

func (b *builder) move(x, y float64) {
	b.path = append(b.path, Segment{Op: OpMove, Points: []Point{{x, y}}})
}

func (b *builder) line(x, y float64) {
	b.path = append(b.path, Segment{Op: OpLine, Points: []Point{{x, y}}})
}

func (b *builder) cube(c1x, c1y, c2x, c2y, x, y float64) {
	b.path = append(b.path, Segment{Op: OpCube, Points: []Point{{c1x, c1y}, {c2x, c2y}, {x, y}}})
}

func (b *builder) close() {
	b.path = append(b.path, Segment{Op: OpClose})
}

// Flatten approximates the path by polylines, one per subpath, splitting each
// cubic into steps straight segments.
func (p Path) Flatten(steps int) [][]Point {
	if steps < 1 {
		steps = 1
	}
	var (
		out     [][]Point
		current []Point
		pen     Point
		start   Point
	)
	flush := func() {
		if len(current) > 1 {
			out = append(out, current)
		}
		current = nil
	}
	for _, seg := range p {
		switch seg.Op {
		case OpMove:
			flush()
			pen = seg.Points[0]
			start = pen
			current = []Point{pen}
		case OpLine:
			pen = seg.Points[0]
			current = append(current, pen)
		case OpCube:
			c1, c2, end := seg.Points[0], seg.Points[1], seg.Points[2]
			for i := 1; i <= steps; i++ {
				current = append(current, cubicAt(pen, c1, c2, end, float64(i)/float64(steps)))
			}
			pen = end
		case OpClose:
			if pen != start {
				current = append(current, start)
			}
			pen = start
			flush()
		}
	}
	flush()
	return out
}

func cubicAt(p0, p1, p2, p3 Point, t float64) Point {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return Point{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}
