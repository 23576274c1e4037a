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

package figures

import (
	"fmt"

	"github.com/spatialmodel/evcharge/hull"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/vg/draw"
)

const (
	// DefaultCliqueRadius is the buffer radius around clique members.
	DefaultCliqueRadius = 0.05

	// DefaultCliqueValue is the value of a clique when none are given.
	DefaultCliqueValue = 0.5
)

// Clique is a named group of nodes drawn as one buffered region.
type Clique struct {
	Name  string
	Nodes []int64
}

// CliqueOptions control PlotCliques.
type CliqueOptions struct {
	// R is the buffer radius. Zero means DefaultCliqueRadius.
	R float64

	// Samples is the number of samples per circle. Zero means
	// hull.DefaultSamples.
	Samples int

	// Values holds one value per clique. Nil gives every clique
	// DefaultCliqueValue.
	Values []float64

	// ColorMap colors the regions by value. Nil means viridis.
	ColorMap interface{}

	Scatter ScatterStyle

	// Line, if non-nil, draws the edges underneath everything else.
	Line *draw.LineStyle

	// Polygon styles the regions. Its fill color is replaced by the
	// clique's value color.
	Polygon PolygonStyle

	ColorBar ColorBarStyle
	Axes     AxesOptions
}

// PlotCliques scatters the nodes of g and fills a buffered hull around
// the members of each clique, colored by the clique's value on a scale
// shared by all cliques, with a color bar for that scale.
func PlotCliques(g *Graph, cliques []Clique, fig *Figure, o CliqueOptions) (*Figure, error) {
	values := o.Values
	if values == nil {
		values = make([]float64, len(cliques))
		for i := range values {
			values[i] = DefaultCliqueValue
		}
	}
	if len(values) != len(cliques) {
		return nil, fmt.Errorf("figures: %d values for %d cliques", len(values), len(cliques))
	}
	r := o.R
	if r == 0 {
		r = DefaultCliqueRadius
	}
	q := o.Samples
	if q == 0 {
		q = hull.DefaultSamples
	}
	cm, err := ResolveColorMap(o.ColorMap)
	if err != nil {
		return nil, err
	}
	regions, sc, err := cliqueRegions(g, cliques, values, r, q, cm, o.Polygon)
	if err != nil {
		return nil, err
	}

	fig, err = orNew(fig)
	if err != nil {
		return nil, err
	}
	if o.Line != nil {
		l, err := edgeLines(g, *o.Line)
		if err != nil {
			return nil, err
		}
		fig.Plot.Add(l...)
	}
	m, err := newMarkers(g.Points(), uniform(g.Len(), o.Scatter.color()), uniform(g.Len(), o.Scatter.EdgeColor), o.Scatter)
	if err != nil {
		return nil, err
	}
	fig.Plot.Add(m...)
	for _, reg := range regions {
		fig.Plot.Add(reg)
	}
	if sc != nil {
		if err := fig.AddColorBar(sc, o.ColorBar); err != nil {
			return nil, err
		}
	}
	o.Axes.apply(fig)
	return fig, nil
}

// cliqueRegions returns the buffered hull of each clique filled with the
// color of its value, and the color map stretched over the values.
func cliqueRegions(g *Graph, cliques []Clique, values []float64, r float64, q int, cm palette.ColorMap, sty PolygonStyle) ([]*region, palette.ColorMap, error) {
	fills, sc := colorValues(values, cm)
	out := make([]*region, len(cliques))
	for i, c := range cliques {
		x, y, err := members(g, c)
		if err != nil {
			return nil, nil, err
		}
		h, err := hull.Buffer(x, y, hull.Radius(r), q)
		if err != nil {
			return nil, nil, fmt.Errorf("figures: clique %q: %w", c.Name, err)
		}
		fill := PolygonStyle{Fill: fills[i], Alpha: sty.Alpha}.fill()
		if out[i], err = newRegion(h, fill, sty.Line); err != nil {
			return nil, nil, err
		}
	}
	return out, sc, nil
}

// members returns the coordinates of the nodes in c.
func members(g *Graph, c Clique) (x, y []float64, err error) {
	for _, id := range c.Nodes {
		n := g.Node(id)
		if n == nil {
			return nil, nil, fmt.Errorf("figures: clique %q: no node %d", c.Name, id)
		}
		x = append(x, n.X)
		y = append(y, n.Y)
	}
	return x, y, nil
}

// QHullOptions control PlotQHull.
type QHullOptions struct {
	// Samples is the number of samples per circle. Zero means
	// hull.DefaultSamples.
	Samples int

	Polygon PolygonStyle
	Axes    AxesOptions
}

// PlotQHull fills the buffered hull of the points (x[i], y[i]) with radii r.
func PlotQHull(x, y []float64, r hull.Radii, fig *Figure, o QHullOptions) (*Figure, error) {
	q := o.Samples
	if q == 0 {
		q = hull.DefaultSamples
	}
	h, err := hull.Buffer(x, y, r, q)
	if err != nil {
		return nil, err
	}
	fig, err = orNew(fig)
	if err != nil {
		return nil, err
	}
	reg, err := newRegion(h, o.Polygon.fill(), o.Polygon.Line)
	if err != nil {
		return nil, err
	}
	fig.Plot.Add(reg)
	o.Axes.apply(fig)
	return fig, nil
}
