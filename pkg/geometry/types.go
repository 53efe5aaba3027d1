// Package geometry provides basic geometric types used throughout the application.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// DistanceSq returns the squared Euclidean distance to another point.
func (p Point2D) DistanceSq(other Point2D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return dx*dx + dy*dy
}

// Add returns the sum of two points.
func (p Point2D) Add(other Point2D) Point2D {
	return Point2D{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the difference of two points.
func (p Point2D) Sub(other Point2D) Point2D {
	return Point2D{X: p.X - other.X, Y: p.Y - other.Y}
}

// Scale returns the point scaled by a factor.
func (p Point2D) Scale(factor float64) Point2D {
	return Point2D{X: p.X * factor, Y: p.Y * factor}
}

// RotateAround rotates p around pivot by the given angle in degrees.
// Positive angles turn clockwise on screen (y grows downward).
func (p Point2D) RotateAround(pivot Point2D, degrees float64) Point2D {
	rad := degrees * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	d := p.Sub(pivot)
	return Point2D{
		X: pivot.X + d.X*cos - d.Y*sin,
		Y: pivot.Y + d.X*sin + d.Y*cos,
	}
}

// Round returns the nearest integer pixel coordinates.
func (p Point2D) Round() (x, y int) {
	return int(math.Round(p.X)), int(math.Round(p.Y))
}

// RingPoint returns the point at the given radius from center, measured
// clockwise from 12 o'clock in screen coordinates.
func RingPoint(center Point2D, radius, degrees float64) Point2D {
	rad := degrees * math.Pi / 180
	return Point2D{
		X: center.X + radius*math.Sin(rad),
		Y: center.Y - radius*math.Cos(rad),
	}
}

// Centroid computes the centroid (average position) of a set of points.
func Centroid(points []Point2D) Point2D {
	if len(points) == 0 {
		return Point2D{}
	}
	var sumX, sumY float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
	}
	n := float64(len(points))
	return Point2D{X: sumX / n, Y: sumY / n}
}

// Intersect returns the intersection of the infinite line through a1,a2 with
// the infinite line through b1,b2. ok is false when the lines are parallel or
// either line is degenerate.
//
// Solves a1 + t*(a2-a1) = b1 + s*(b2-b1) as a 2x2 linear system.
func Intersect(a1, a2, b1, b2 Point2D) (p Point2D, ok bool) {
	da := a2.Sub(a1)
	db := b2.Sub(b1)

	A := mat.NewDense(2, 2, []float64{
		da.X, -db.X,
		da.Y, -db.Y,
	})
	// Scale-aware singularity check; mat.Det alone says nothing about conditioning.
	det := mat.Det(A)
	scale := math.Hypot(da.X, da.Y) * math.Hypot(db.X, db.Y)
	if scale == 0 || math.Abs(det) < 1e-9*scale {
		return Point2D{}, false
	}

	rhs := mat.NewVecDense(2, []float64{b1.X - a1.X, b1.Y - a1.Y})
	var ts mat.VecDense
	if err := ts.SolveVec(A, rhs); err != nil {
		return Point2D{}, false
	}

	t := ts.AtVec(0)
	return a1.Add(da.Scale(t)), true
}
