package core

import "math"

// Point is a station location in the plane.
type Point struct {
	X, Y float64
}

// DistanceTo returns the Euclidean distance between two points.
func (p Point) DistanceTo(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Vec3 is an ECEF-style vector in kilometres. Orbital station sources
// produce Vec3 positions which are projected onto the plane before the
// interference model sees them.
type Vec3 struct {
	X, Y, Z float64
}

// DistanceTo returns the straight-line distance between two points.
func (v Vec3) DistanceTo(other Vec3) float64 {
	return v.Sub(other).Norm()
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Project drops the Z component, projecting onto the equatorial plane.
func (v Vec3) Project() Point {
	return Point{X: v.X, Y: v.Y}
}

// Interference returns the received power at receiver due to a unit
// transmission at sender under path-loss exponent gamma: 1/d^gamma.
//
// Coincident points give +Inf; callers must not pass them.
func Interference(sender, receiver Point, exponent float64) float64 {
	d := sender.DistanceTo(receiver)
	return 1 / math.Pow(d, exponent)
}

// TotalEnergy sums the interference at receiver from every sender.
func TotalEnergy(senders []Point, receiver Point, exponent float64) float64 {
	var total float64
	for _, s := range senders {
		total += Interference(s, receiver, exponent)
	}
	return total
}

// Coincident reports the first pair of indices whose points are equal.
func Coincident(points []Point) (int, int, bool) {
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			if points[i] == points[j] {
				return i, j, true
			}
		}
	}
	return -1, -1, false
}
