package geom

// Point is a position in map pixels.
type Point struct {
	X int32
	Y int32
}

// Size is a width and height in map pixels.
type Size struct {
	Width  int32
	Height int32
}

// IsFlat reports whether the size has a zero dimension.
func (s Size) IsFlat() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Rectangle is an axis-aligned box in map pixels.
// Width and Height are never negative.
type Rectangle struct {
	X      int32
	Y      int32
	Width  int32
	Height int32
}

// Rect builds a rectangle from its top-left corner and size.
func Rect(x, y, width, height int32) Rectangle {
	return Rectangle{X: x, Y: y, Width: width, Height: height}
}

// Right returns the first x coordinate past the right edge.
func (r Rectangle) Right() int32 {
	return r.X + r.Width
}

// Bottom returns the first y coordinate past the bottom edge.
func (r Rectangle) Bottom() int32 {
	return r.Y + r.Height
}

// Center returns the center point, rounded toward the top-left.
func (r Rectangle) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Size returns the rectangle's dimensions.
func (r Rectangle) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// IsEmpty reports whether the rectangle covers no pixels.
func (r Rectangle) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Overlaps reports whether the interiors of r and o intersect.
// Rectangles that only touch edges do not overlap.
func (r Rectangle) Overlaps(o Rectangle) bool {
	return r.X < o.Right() && o.X < r.Right() &&
		r.Y < o.Bottom() && o.Y < r.Bottom()
}

// ContainsPoint reports whether the pixel (x,y) lies inside r.
func (r Rectangle) ContainsPoint(x, y int32) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// ContainsRect reports whether o lies entirely inside r.
func (r Rectangle) ContainsRect(o Rectangle) bool {
	return o.X >= r.X && o.Right() <= r.Right() &&
		o.Y >= r.Y && o.Bottom() <= r.Bottom()
}

// Grown returns r expanded by margin pixels on every side.
func (r Rectangle) Grown(margin int32) Rectangle {
	return Rectangle{
		X:      r.X - margin,
		Y:      r.Y - margin,
		Width:  r.Width + 2*margin,
		Height: r.Height + 2*margin,
	}
}

// Translated returns r moved by (dx,dy).
func (r Rectangle) Translated(dx, dy int32) Rectangle {
	return Rectangle{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// Intersection returns the overlapping area of r and o, or a zero
// rectangle when they do not overlap.
func (r Rectangle) Intersection(o Rectangle) Rectangle {
	x := max32(r.X, o.X)
	y := max32(r.Y, o.Y)
	right := min32(r.Right(), o.Right())
	bottom := min32(r.Bottom(), o.Bottom())
	if right <= x || bottom <= y {
		return Rectangle{}
	}
	return Rectangle{X: x, Y: y, Width: right - x, Height: bottom - y}
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
