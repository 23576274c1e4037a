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
	"image/color"

	"github.com/ctessum/geom"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/vg/draw"
)

// GraphOptions control PlotGraph.
type GraphOptions struct {
	// Field, if set, names the numeric node attribute that colors the nodes.
	Field string

	// ColorMap is anything ResolveColorMap accepts. Nil means viridis.
	ColorMap interface{}

	Scatter ScatterStyle

	// Line, if non-nil, draws every edge with this style underneath
	// the nodes.
	Line *draw.LineStyle

	// ColorBar, if non-nil and Field is set, adds a legend for the field.
	ColorBar *ColorBarStyle

	Axes AxesOptions
}

// PlotGraph scatters the nodes of g, optionally colored by a node
// attribute, and draws its edges if a line style is given.
func PlotGraph(g *Graph, fig *Figure, o GraphOptions) (*Figure, error) {
	fig, err := orNew(fig)
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
	fill := uniform(g.Len(), o.Scatter.color())
	if o.Field != "" {
		values, err := g.Field(o.Field)
		if err != nil {
			return nil, err
		}
		cm, err := ResolveColorMap(o.ColorMap)
		if err != nil {
			return nil, err
		}
		var sc palette.ColorMap
		fill, sc = colorValues(values, cm)
		if o.ColorBar != nil && sc != nil {
			if err := fig.AddColorBar(sc, *o.ColorBar); err != nil {
				return nil, err
			}
		}
	}
	m, err := newMarkers(g.Points(), fill, uniform(g.Len(), o.Scatter.EdgeColor), o.Scatter)
	if err != nil {
		return nil, err
	}
	fig.Plot.Add(m...)
	o.Axes.apply(fig)
	return fig, nil
}

// edgeLines returns a line for every edge of g.
func edgeLines(g *Graph, sty draw.LineStyle) ([]plot.Plotter, error) {
	if sty.Color == nil {
		sty.Color = color.Black
	}
	var paths [][]geom.Point
	for _, e := range g.Edges() {
		x, y := g.edgeCoords(e)
		path := make([]geom.Point, len(x))
		for i := range x {
			path[i] = geom.Point{X: x[i], Y: y[i]}
		}
		paths = append(paths, path)
	}
	return newLines(paths, sty)
}

// colorValues maps values onto cm stretched over their range. It also
// returns the stretched map, or nil if values is empty.
func colorValues(values []float64, cm palette.ColorMap) ([]color.Color, palette.ColorMap) {
	out := make([]color.Color, len(values))
	if len(values) == 0 {
		return out, nil
	}
	sc := rescale(cm, floats.Min(values), floats.Max(values))
	for i, v := range values {
		out[i] = colorAt(cm, (v-sc.Min())/(sc.Max()-sc.Min()))
	}
	return out, sc
}

func uniform(n int, c color.Color) []color.Color {
	out := make([]color.Color, n)
	for i := range out {
		out[i] = c
	}
	return out
}

// nodeIndex checks that every route stop is a valid node position.
func nodeIndex(g *Graph, routes [][]int) error {
	for i, r := range routes {
		for _, s := range r {
			if s < 0 || s >= g.Len() {
				return fmt.Errorf("figures: route %d: stop %d out of range [0, %d)", i, s, g.Len())
			}
		}
	}
	return nil
}
