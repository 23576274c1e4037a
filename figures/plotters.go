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
	"math"

	"github.com/ctessum/geom"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ScatterStyle is the marker style for node scatters.
type ScatterStyle struct {
	// Radius of each marker. Zero means 3 points.
	Radius vg.Length

	// Shape of the markers. Nil means filled circles.
	Shape draw.GlyphDrawer

	// Color fills the markers when they are not colored by a field.
	// Nil means the default blue.
	Color color.Color

	// EdgeColor, if visible, outlines the markers.
	EdgeColor color.Color
}

var defaultMarkerColor = mustParse("#1f77b4")[0]

func (s ScatterStyle) glyph() draw.GlyphStyle {
	g := draw.GlyphStyle{Radius: s.Radius, Shape: s.Shape}
	if g.Radius == 0 {
		g.Radius = vg.Points(3)
	}
	if g.Shape == nil {
		g.Shape = draw.CircleGlyph{}
	}
	return g
}

func (s ScatterStyle) color() color.Color {
	if s.Color == nil {
		return defaultMarkerColor
	}
	return s.Color
}

// outline returns the unfilled glyph that traces the edge of a filled shape.
func outline(shape draw.GlyphDrawer) draw.GlyphDrawer {
	switch shape.(type) {
	case draw.CircleGlyph:
		return draw.RingGlyph{}
	case draw.BoxGlyph:
		return draw.SquareGlyph{}
	case draw.PyramidGlyph:
		return draw.TriangleGlyph{}
	}
	return nil
}

// xys converts points to plotter coordinates.
func xys(pts []geom.Point) plotter.XYs {
	out := make(plotter.XYs, len(pts))
	for i, p := range pts {
		out[i].X, out[i].Y = p.X, p.Y
	}
	return out
}

// glyphs returns a style function that draws point i in colors[i].
// Points without a visible color get no shape and are skipped.
func glyphs(g draw.GlyphStyle, colors []color.Color) func(int) draw.GlyphStyle {
	return func(i int) draw.GlyphStyle {
		if i >= len(colors) || invisible(colors[i]) {
			return draw.GlyphStyle{}
		}
		s := g
		s.Color = colors[i]
		return s
	}
}

// newMarkers scatters pts with a fill color per point. If any edge color
// is visible and the shape has an outline, a second scatter traces the
// edges on top.
func newMarkers(pts []geom.Point, fill, edge []color.Color, sty ScatterStyle) ([]plot.Plotter, error) {
	g := sty.glyph()
	s, err := plotter.NewScatter(xys(pts))
	if err != nil {
		return nil, fmt.Errorf("figures: markers: %w", err)
	}
	s.GlyphStyle = g
	s.GlyphStyleFunc = glyphs(g, fill)
	out := []plot.Plotter{s}

	ring := outline(g.Shape)
	if ring == nil || allInvisible(edge) {
		return out, nil
	}
	e, err := plotter.NewScatter(s.XYs)
	if err != nil {
		return nil, fmt.Errorf("figures: markers: %w", err)
	}
	e.GlyphStyle = g
	e.GlyphStyle.Shape = ring
	e.GlyphStyleFunc = glyphs(e.GlyphStyle, edge)
	return append(out, e), nil
}

func allInvisible(c []color.Color) bool {
	for _, v := range c {
		if !invisible(v) {
			return false
		}
	}
	return true
}

// ArrowStyle is the style of route arrows.
type ArrowStyle struct {
	// Line strokes the arrow shaft. A zero width means 1 point.
	Line draw.LineStyle

	// HeadLength and HeadWidth size the arrow head. Zero means
	// 8 and 6 points.
	HeadLength, HeadWidth vg.Length

	// Color fills the head. Nil uses the line color.
	Color color.Color
}

func (s ArrowStyle) withDefaults() ArrowStyle {
	if s.Line.Width == 0 {
		s.Line.Width = vg.Points(1)
	}
	if s.Line.Color == nil {
		s.Line.Color = color.Black
	}
	if s.HeadLength == 0 {
		s.HeadLength = vg.Points(8)
	}
	if s.HeadWidth == 0 {
		s.HeadWidth = vg.Points(6)
	}
	if s.Color == nil {
		s.Color = s.Line.Color
	}
	return s
}

// arrows draws a directed arrow along each segment.
type arrows struct {
	segs  [][2]geom.Point
	style ArrowStyle
}

// Plot implements the plot.Plotter interface.
func (a *arrows) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	for _, s := range a.segs {
		from := vg.Point{X: trX(s[0].X), Y: trY(s[0].Y)}
		to := vg.Point{X: trX(s[1].X), Y: trY(s[1].Y)}
		dx, dy := to.X-from.X, to.Y-from.Y
		l := vg.Length(math.Hypot(float64(dx), float64(dy)))
		if l == 0 {
			continue
		}
		ux, uy := dx/l, dy/l
		head := a.style.HeadLength
		if head > l {
			head = l
		}
		base := vg.Point{X: to.X - ux*head, Y: to.Y - uy*head}
		c.StrokeLines(a.style.Line, c.ClipLinesXY([]vg.Point{from, base})...)
		hw := a.style.HeadWidth / 2
		c.FillPolygon(a.style.Color, []vg.Point{
			to,
			{X: base.X - uy*hw, Y: base.Y + ux*hw},
			{X: base.X + uy*hw, Y: base.Y - ux*hw},
		})
	}
}

// DataRange implements the plot.DataRanger interface.
func (a *arrows) DataRange() (xmin, xmax, ymin, ymax float64) {
	var mp geom.MultiPoint
	for _, s := range a.segs {
		mp = append(mp, s[0], s[1])
	}
	return boundsOf(mp)
}

// newLines returns one line per path, all stroked with sty.
func newLines(paths [][]geom.Point, sty draw.LineStyle) ([]plot.Plotter, error) {
	out := make([]plot.Plotter, len(paths))
	for i, path := range paths {
		l, err := plotter.NewLine(xys(path))
		if err != nil {
			return nil, fmt.Errorf("figures: lines: %w", err)
		}
		l.LineStyle = sty
		out[i] = l
	}
	return out, nil
}

// PolygonStyle is the style of filled regions.
type PolygonStyle struct {
	// Fill colors the interior. Nil means the default blue.
	Fill color.Color

	// Alpha scales the fill opacity. Zero means opaque.
	Alpha float64

	// Line, if its width is non-zero, outlines the region.
	Line draw.LineStyle
}

func (s PolygonStyle) fill() color.Color {
	c := s.Fill
	if c == nil {
		c = defaultMarkerColor
	}
	if s.Alpha <= 0 || s.Alpha >= 1 {
		return c
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(math.Round(float64(n.A) * s.Alpha))
	return n
}

// region is a filled polygon with a single ring.
type region struct {
	*plotter.Polygon
}

// newRegion fills ring with fill and outlines it with line. An invisible
// fill or a line without width draws nothing.
func newRegion(ring []geom.Point, fill color.Color, line draw.LineStyle) (*region, error) {
	p, err := plotter.NewPolygon(xys(ring))
	if err != nil {
		return nil, fmt.Errorf("figures: polygon: %w", err)
	}
	if !invisible(fill) {
		p.Color = fill
	}
	p.LineStyle = line
	if line.Width <= 0 || invisible(line.Color) {
		p.LineStyle = draw.LineStyle{Color: color.Transparent}
	}
	return &region{Polygon: p}, nil
}

// Plot implements the plot.Plotter interface. A ring that lies entirely
// outside the canvas is skipped, as plotter.Polygon cannot fill it.
func (r *region) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	for _, ring := range r.XYs {
		pts := make([]vg.Point, len(ring))
		for i, q := range ring {
			pts[i] = vg.Point{X: trX(q.X), Y: trY(q.Y)}
		}
		if len(c.ClipPolygonXY(pts)) == 0 {
			return
		}
	}
	r.Polygon.Plot(c, p)
}

// boundsOf returns the extent of mp, or an inverted infinite range
// when mp is empty so that it does not affect the axes.
func boundsOf(mp geom.MultiPoint) (xmin, xmax, ymin, ymax float64) {
	if len(mp) == 0 {
		return math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)
	}
	b := mp.Bounds()
	return b.Min.X, b.Max.X, b.Min.Y, b.Max.Y
}
