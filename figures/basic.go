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
	"github.com/spatialmodel/evcharge/hull"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// LineOptions control PlotLine.
type LineOptions struct {
	// Line styles the line. A zero width keeps gonum's default.
	Line draw.LineStyle
	Axes AxesOptions
}

// PlotLine draws the polyline through (x[i], y[i]).
func PlotLine(x, y []float64, fig *Figure, o LineOptions) (*Figure, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("figures: PlotLine: %d x and %d y coordinates", len(x), len(y))
	}
	xys := make(plotter.XYs, len(x))
	for i := range x {
		xys[i].X, xys[i].Y = x[i], y[i]
	}
	l, err := plotter.NewLine(xys)
	if err != nil {
		return nil, fmt.Errorf("figures: PlotLine: %w", err)
	}
	if o.Line.Width != 0 {
		l.LineStyle = o.Line
	}
	fig, err = orNew(fig)
	if err != nil {
		return nil, err
	}
	fig.Plot.Add(l)
	o.Axes.apply(fig)
	return fig, nil
}

// BarOptions control PlotBar.
type BarOptions struct {
	// Width of each bar. Zero means a quarter inch.
	Width vg.Length

	// XShift moves every bar along the x axis; bar i is centered at
	// i + XShift.
	XShift float64

	// Color fills the bars. Nil means the default blue.
	Color color.Color

	Line draw.LineStyle
	Axes AxesOptions
}

// PlotBar draws one bar per element of data.
func PlotBar(data []float64, fig *Figure, o BarOptions) (*Figure, error) {
	w := o.Width
	if w == 0 {
		w = vg.Inch / 4
	}
	b, err := plotter.NewBarChart(plotter.Values(data), w)
	if err != nil {
		return nil, fmt.Errorf("figures: PlotBar: %w", err)
	}
	b.XMin = o.XShift
	b.Color = o.Color
	if b.Color == nil {
		b.Color = defaultMarkerColor
	}
	if o.Line.Width != 0 {
		b.LineStyle = o.Line
	}
	fig, err = orNew(fig)
	if err != nil {
		return nil, err
	}
	fig.Plot.Add(b)
	o.Axes.apply(fig)
	return fig, nil
}

// DefaultCircleSamples is the number of vertices PlotCircle uses to
// approximate a circle.
const DefaultCircleSamples = 64

// CircleOptions control PlotCircle.
type CircleOptions struct {
	// Samples is the number of vertices per circle. Zero means
	// DefaultCircleSamples.
	Samples int

	Polygon PolygonStyle
	Axes    AxesOptions
}

// PlotCircle draws a circle of radius r around each center.
func PlotCircle(centers []geom.Point, r hull.Radii, fig *Figure, o CircleOptions) (*Figure, error) {
	q := o.Samples
	if q == 0 {
		q = DefaultCircleSamples
	}
	x := make([]float64, len(centers))
	y := make([]float64, len(centers))
	for i, c := range centers {
		x[i], y[i] = c.X, c.Y
	}
	// One extra sample closes each circle; the duplicate is dropped below.
	samples, err := hull.Samples(x, y, r, q+1)
	if err != nil {
		return nil, err
	}
	circles := make([]plot.Plotter, len(centers))
	for i := range centers {
		if circles[i], err = newRegion(samples[i*(q+1):i*(q+1)+q], o.Polygon.fill(), o.Polygon.Line); err != nil {
			return nil, err
		}
	}
	fig, err = orNew(fig)
	if err != nil {
		return nil, err
	}
	fig.Plot.Add(circles...)
	o.Axes.apply(fig)
	return fig, nil
}
