package model

import "math"

// BBox represents a bounding box in page coordinates (origin bottom-left).
type BBox struct {
	X0 float64 // Left
	Y0 float64 // Bottom
	X1 float64 // Right
	Y1 float64 // Top
}

// NewBBox creates a bounding box from two corner points, normalizing the
// corner order so that X0 <= X1 and Y0 <= Y1.
func NewBBox(x0, y0, x1, y1 float64) BBox {
	return BBox{
		X0: math.Min(x0, x1),
		Y0: math.Min(y0, y1),
		X1: math.Max(x0, x1),
		Y1: math.Max(y0, y1),
	}
}

// Width returns the horizontal extent of the box.
func (b BBox) Width() float64 {
	return b.X1 - b.X0
}

// Height returns the vertical extent of the box.
func (b BBox) Height() float64 {
	return b.Y1 - b.Y0
}

// MidX returns the horizontal midpoint of the box.
func (b BBox) MidX() float64 {
	return (b.X0 + b.X1) / 2
}

// Union returns the smallest box covering both boxes.
func (b BBox) Union(other BBox) BBox {
	return BBox{
		X0: math.Min(b.X0, other.X0),
		Y0: math.Min(b.Y0, other.Y0),
		X1: math.Max(b.X1, other.X1),
		Y1: math.Max(b.Y1, other.Y1),
	}
}

// ApproxEqual reports whether the two boxes have the same position within
// the given absolute tolerance on every coordinate.
func (b BBox) ApproxEqual(other BBox, tol float64) bool {
	return math.Abs(b.X0-other.X0) <= tol &&
		math.Abs(b.Y0-other.Y0) <= tol &&
		math.Abs(b.X1-other.X1) <= tol &&
		math.Abs(b.Y1-other.Y1) <= tol
}

// Overlaps reports whether the two boxes overlap on both axes, with the
// given tolerance widening each interval. A tolerance of zero tests exact
// interval intersection.
func (b BBox) Overlaps(other BBox, tol float64) bool {
	hoverlap := b.X0-tol <= other.X1 && b.X1+tol >= other.X0
	voverlap := b.Y0-tol <= other.Y1 && b.Y1+tol >= other.Y0
	return hoverlap && voverlap
}

// Touches reports whether the two boxes share an edge exactly: same
// horizontal extent with abutting vertical edges, or same vertical extent
// with abutting horizontal edges. No tolerance is applied; this models a
// single visual line drawn as two abutting primitives.
func (b BBox) Touches(other BBox) bool {
	if b.X0 == other.X0 && b.X1 == other.X1 {
		return b.Y1 == other.Y0 || other.Y1 == b.Y0
	}
	if b.Y0 == other.Y0 && b.Y1 == other.Y1 {
		return b.X1 == other.X0 || other.X1 == b.X0
	}
	return false
}

// Contains reports whether other lies fully inside the box, boundary
// included.
func (b BBox) Contains(other BBox) bool {
	return other.X0 >= b.X0 && other.X1 <= b.X1 &&
		other.Y0 >= b.Y0 && other.Y1 <= b.Y1
}

// Within reports whether the box lies strictly inside other, boundary
// excluded. Used for green-zone retention checks.
func (b BBox) Within(other BBox) bool {
	return b.X0 > other.X0 && b.X1 < other.X1 &&
		b.Y0 > other.Y0 && b.Y1 < other.Y1
}

// HOverlap returns the length of the horizontal overlap between the two
// boxes, or zero if their horizontal intervals are disjoint.
func (b BBox) HOverlap(other BBox) float64 {
	ov := math.Min(b.X1, other.X1) - math.Max(b.X0, other.X0)
	if ov < 0 {
		return 0
	}
	return ov
}

// VOverlap returns the length of the vertical overlap between the two
// boxes, or zero if their vertical intervals are disjoint.
func (b BBox) VOverlap(other BBox) float64 {
	ov := math.Min(b.Y1, other.Y1) - math.Max(b.Y0, other.Y0)
	if ov < 0 {
		return 0
	}
	return ov
}

// VDistance returns the vertical gap between the two boxes, or zero if
// their vertical intervals overlap.
func (b BBox) VDistance(other BBox) float64 {
	if b.Y0-other.Y1 > 0 {
		return b.Y0 - other.Y1
	}
	if other.Y0-b.Y1 > 0 {
		return other.Y0 - b.Y1
	}
	return 0
}

// Distance returns the Euclidean gap between the two boxes, zero if they
// overlap.
func (b BBox) Distance(other BBox) float64 {
	dx := math.Max(0, math.Max(b.X0-other.X1, other.X0-b.X1))
	dy := math.Max(0, math.Max(b.Y0-other.Y1, other.Y0-b.Y1))
	return math.Sqrt(dx*dx + dy*dy)
}
