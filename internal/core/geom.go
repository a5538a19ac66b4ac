// Package core provides fundamental types and utilities for the game.
// It contains no external dependencies (especially no Bubble Tea) to keep game
// logic pure and testable.
package core

// Rect represents an integer axis-aligned rectangle in screen cells.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// RectF is an axis-aligned bounding box in world units, used for hitboxes.
type RectF struct {
	Left, Top     float64
	Right, Bottom float64
}

// RectAround builds a box of size w x h centered on (cx, cy).
func RectAround(cx, cy, w, h float64) RectF {
	return RectF{
		Left:   cx - w/2,
		Top:    cy - h/2,
		Right:  cx + w/2,
		Bottom: cy + h/2,
	}
}

// Width returns the horizontal extent.
func (r RectF) Width() float64 {
	return r.Right - r.Left
}

// Height returns the vertical extent.
func (r RectF) Height() float64 {
	return r.Bottom - r.Top
}

// Intersects reports strict overlap on both axes.
// Boxes that only touch along an edge do not intersect.
func (r RectF) Intersects(o RectF) bool {
	return r.Left < o.Right &&
		r.Right > o.Left &&
		r.Top < o.Bottom &&
		r.Bottom > o.Top
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
