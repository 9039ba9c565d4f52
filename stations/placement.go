// Package stations provides station locations for the hypergraph
// generator: regular placements, scenario files and SGP4-propagated
// satellites.
package stations

import (
	"math"

	"github.com/signalsfoundry/interference-hypergraph/core"
)

// UniformOnCircle returns n points evenly spaced on the unit circle, the
// first at (1, 0). This is the U_n layout used for the feasibility
// transition values.
func UniformOnCircle(n int) []core.Point {
	return OnCircle(n, 1)
}

// OnCircle returns n points evenly spaced on a circle of the given radius
// centred at the origin.
func OnCircle(n int, radius float64) []core.Point {
	if n <= 0 {
		return nil
	}
	degrees := make([]float64, n)
	for i := range degrees {
		degrees[i] = 360 / float64(n) * float64(i)
	}
	return OnCircleAtAngles(radius, degrees...)
}

// OnCircleAtAngles places one point per angle (in degrees) on a circle of
// the given radius.
func OnCircleAtAngles(radius float64, degrees ...float64) []core.Point {
	out := make([]core.Point, len(degrees))
	for i, d := range degrees {
		theta := Radians(d)
		out[i] = core.Point{X: radius * math.Cos(theta), Y: radius * math.Sin(theta)}
	}
	return out
}

// WithCentre returns centre followed by pts.
func WithCentre(centre core.Point, pts []core.Point) []core.Point {
	out := make([]core.Point, 0, len(pts)+1)
	out = append(out, centre)
	return append(out, pts...)
}

// Radians converts degrees to radians.
func Radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
