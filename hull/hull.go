/*
Copyright © 2023 the EVCharge authors.
This file is part of EVCharge.

EVCharge is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

EVCharge is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with EVCharge.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package hull computes buffered convex hulls: convex polygons that enclose
// a disc of a given radius around every point in a set. They are used to
// draw rounded regions around clusters of charging locations.
package hull

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ctessum/geom"
)

// DefaultSamples is the default number of points used to approximate
// each circle in Buffer.
const DefaultSamples = 21

var (
	// ErrNoPoints is returned when Buffer is called without any points.
	ErrNoPoints = errors.New("hull: no input points")

	// ErrSizeMismatch is returned when coordinate or radius slices
	// have different lengths.
	ErrSizeMismatch = errors.New("hull: input size mismatch")

	// ErrTooFewSamples is returned when fewer than three samples per circle
	// are requested.
	ErrTooFewSamples = errors.New("hull: at least 3 samples per circle are required")

	// ErrInvalidRadius is returned for negative, NaN or infinite radii.
	ErrInvalidRadius = errors.New("hull: invalid radius")

	// ErrDegenerate is returned when the sample points do not span
	// an area, for example when every point is coincident and the
	// radius is zero.
	ErrDegenerate = errors.New("hull: degenerate geometry")
)

// Radii holds the buffer radius for each point. A Radii of length one
// is applied to every point.
type Radii []float64

// Radius returns a Radii that applies r to every point.
func Radius(r float64) Radii { return Radii{r} }

// at returns the radius for point i of n.
func (r Radii) at(i int) float64 {
	if len(r) == 1 {
		return r[0]
	}
	return r[i]
}

func (r Radii) check(n int) error {
	if len(r) != 1 && len(r) != n {
		return fmt.Errorf("%w: %d radii for %d points", ErrSizeMismatch, len(r), n)
	}
	for i, v := range r {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: radius %d is %g", ErrInvalidRadius, i, v)
		}
	}
	return nil
}

// Samples returns the points used to approximate the circle of radius r
// around every point (x[i], y[i]). The q angles of each circle are spaced
// evenly over [0, 2π], both ends included, so the last sample of each
// circle is exactly its first.
func Samples(x, y []float64, r Radii, q int) ([]geom.Point, error) {
	n := len(x)
	if n == 0 {
		return nil, ErrNoPoints
	}
	if len(y) != n {
		return nil, fmt.Errorf("%w: %d x coordinates and %d y coordinates", ErrSizeMismatch, n, len(y))
	}
	if q < 3 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewSamples, q)
	}
	if err := r.check(n); err != nil {
		return nil, err
	}

	sin := make([]float64, q)
	cos := make([]float64, q)
	dTheta := 2 * math.Pi / float64(q-1)
	for j := 0; j < q-1; j++ {
		sin[j], cos[j] = snap(math.Sincos(float64(j) * dTheta))
	}
	sin[q-1], cos[q-1] = sin[0], cos[0]

	out := make([]geom.Point, n*q)
	for i := 0; i < n; i++ {
		ri := r.at(i)
		for j := 0; j < q; j++ {
			out[q*i+j] = geom.Point{
				X: x[i] + cos[j]*ri,
				Y: y[i] + sin[j]*ri,
			}
		}
	}
	return out, nil
}

// trigTolerance is the magnitude below which a sine or cosine is taken
// to be zero, so that samples at multiples of π/2 line up exactly.
const trigTolerance = 1.e-15

func snap(sin, cos float64) (float64, float64) {
	if math.Abs(sin) < trigTolerance {
		sin = 0
	}
	if math.Abs(cos) < trigTolerance {
		cos = 0
	}
	return sin, cos
}

// Buffer returns the convex hull of the union of circles of radius r
// around the points (x[i], y[i]), each circle approximated by q samples.
// The vertices are in counter-clockwise order and the ring is not closed.
// A hull with fewer than three vertices, or with an area that is
// negligible next to its extent, is reported as ErrDegenerate; with q = 3
// every circle collapses to a segment, so a single point is always
// degenerate.
func Buffer(x, y []float64, r Radii, q int) ([]geom.Point, error) {
	pts, err := Samples(x, y, r, q)
	if err != nil {
		return nil, err
	}
	h := ConvexHull(pts)
	if len(h) < 3 {
		return nil, fmt.Errorf("%w: hull of %d sample points has %d vertices", ErrDegenerate, len(pts), len(h))
	}
	b := geom.MultiPoint(h).Bounds()
	extent := math.Max(b.Max.X-b.Min.X, b.Max.Y-b.Min.Y)
	if a := area(h); a <= areaTolerance*extent*extent {
		return nil, fmt.Errorf("%w: hull of %d sample points has area %g", ErrDegenerate, len(pts), a)
	}
	return h, nil
}

// areaTolerance is the smallest hull area, relative to the square of its
// extent, that is not treated as a sliver.
const areaTolerance = 1.e-12

// area returns the area of the counter-clockwise ring h.
func area(h []geom.Point) float64 {
	var a float64
	for i := range h {
		a += cross(h[0], h[i], h[(i+1)%len(h)])
	}
	return a / 2
}

// ConvexHull returns the convex hull of points using Andrew's monotone
// chain algorithm. The result is in counter-clockwise order starting from
// the lowest-leftmost point and contains no collinear or repeated vertices.
// points is not modified.
func ConvexHull(points []geom.Point) []geom.Point {
	pts := make([]geom.Point, len(points))
	copy(pts, points)
	if len(pts) <= 1 {
		return pts
	}
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X == pts[j].X {
			return pts[i].Y < pts[j].Y
		}
		return pts[i].X < pts[j].X
	})

	h := make([]geom.Point, 0, 2*len(pts))
	for _, p := range pts { // lower
		for len(h) >= 2 && cross(h[len(h)-2], h[len(h)-1], p) <= 0 {
			h = h[:len(h)-1]
		}
		h = append(h, p)
	}
	lower := len(h) + 1
	for i := len(pts) - 2; i >= 0; i-- { // upper
		p := pts[i]
		for len(h) >= lower && cross(h[len(h)-2], h[len(h)-1], p) <= 0 {
			h = h[:len(h)-1]
		}
		h = append(h, p)
	}
	// The last point is the first one again.
	h = h[:len(h)-1]
	if len(h) == 2 && h[0].Equals(h[1]) {
		h = h[:1]
	}
	return h
}

// cross returns the z component of (a-o)×(b-o); positive when o, a, b
// make a counter-clockwise turn.
func cross(o, a, b geom.Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// Polygon closes the ring of hull vertices and returns it as a polygon.
func Polygon(vertices []geom.Point) geom.Polygon {
	if len(vertices) == 0 {
		return nil
	}
	ring := make(geom.Path, len(vertices), len(vertices)+1)
	copy(ring, vertices)
	ring = append(ring, vertices[0])
	return geom.Polygon{ring}
}
