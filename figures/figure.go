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

// Package figures holds plotting helpers for charging-infrastructure
// analysis: graphs of candidate sites, vehicle routes, buffered
// "clique" regions and node colorings over geographic coordinates.
//
// Every helper draws onto a Figure. When the figure argument is nil a new
// one is created and returned; otherwise the caller's figure is drawn on
// and returned, and the caller remains responsible for it.
package figures

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/geom"
	"github.com/spf13/cast"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// DefaultSize is the width and height of a new figure.
const DefaultSize = 8 * vg.Inch

const (
	colorBarWidth  = 0.9 * vg.Inch
	colorBarHeight = 0.7 * vg.Inch
)

// Figure is a drawing surface: one set of axes plus the color bars
// drawn beside it.
type Figure struct {
	// Plot holds the axes and everything drawn on them.
	Plot *plot.Plot

	Width, Height vg.Length

	colorBars   []*colorBar
	equalAspect bool
}

type colorBar struct {
	p          *plot.Plot
	horizontal bool
}

// NewFigure returns an empty figure of the given size.
func NewFigure(width, height vg.Length) (*Figure, error) {
	p, err := plot.New()
	if err != nil {
		return nil, fmt.Errorf("figures: creating plot: %w", err)
	}
	return &Figure{Plot: p, Width: width, Height: height}, nil
}

// orNew returns fig, or a new default figure if fig is nil.
func orNew(fig *Figure) (*Figure, error) {
	if fig != nil {
		return fig, nil
	}
	return NewFigure(DefaultSize, DefaultSize)
}

// ColorBarStyle configures a color bar legend.
type ColorBarStyle struct {
	Label string

	// Horizontal places the bar below the axes instead of to the right.
	Horizontal bool

	// Colors is the number of color steps; zero uses gonum's default.
	Colors int
}

// AddColorBar adds a legend for cm spanning cm's range.
func (f *Figure) AddColorBar(cm palette.ColorMap, sty ColorBarStyle) error {
	p, err := plot.New()
	if err != nil {
		return fmt.Errorf("figures: creating color bar: %w", err)
	}
	l := &plotter.ColorBar{
		ColorMap: cm,
		Vertical: !sty.Horizontal,
		Colors:   sty.Colors,
	}
	p.Add(l)
	if sty.Horizontal {
		p.HideY()
		p.X.Padding = 0
		p.X.Label.Text = sty.Label
	} else {
		p.HideX()
		p.Y.Padding = 0
		p.Y.Label.Text = sty.Label
	}
	f.colorBars = append(f.colorBars, &colorBar{p: p, horizontal: sty.Horizontal})
	return nil
}

// Draw draws the figure onto c.
func (f *Figure) Draw(c draw.Canvas) {
	main := c
	for _, cb := range f.colorBars {
		var strip draw.Canvas
		if cb.horizontal {
			main, strip = splitVertical(main, colorBarHeight)
		} else {
			main, strip = splitHorizontal(main, main.Max.X-main.Min.X-colorBarWidth)
		}
		cb.p.Draw(strip)
	}
	if f.equalAspect {
		f.fitAspect(main)
	}
	f.Plot.Draw(main)
}

// splitHorizontal splits c at x
func splitHorizontal(c draw.Canvas, x vg.Length) (left, right draw.Canvas) {
	return draw.Crop(c, 0, c.Min.X-c.Max.X+x, 0, 0), draw.Crop(c, x, 0, 0, 0)
}

// splitVertical splits c into a top part and a bottom strip of height h.
func splitVertical(c draw.Canvas, h vg.Length) (top, bottom draw.Canvas) {
	return draw.Crop(c, 0, 0, h, 0), draw.Crop(c, 0, 0, 0, c.Min.Y-c.Max.Y+h)
}

// fitAspect widens one axis range so that a data unit has the same length
// along both axes when drawn on c.
func (f *Figure) fitAspect(c draw.Canvas) {
	w, h := float64(c.Max.X-c.Min.X), float64(c.Max.Y-c.Min.Y)
	x, y := &f.Plot.X, &f.Plot.Y
	dx, dy := x.Max-x.Min, y.Max-y.Min
	if w <= 0 || h <= 0 || dx <= 0 || dy <= 0 {
		return
	}
	if dx/dy > w/h {
		mid, half := (y.Min+y.Max)/2, dx*h/w/2
		y.Min, y.Max = mid-half, mid+half
	} else {
		mid, half := (x.Min+x.Max)/2, dy*w/h/2
		x.Min, x.Max = mid-half, mid+half
	}
}

// WriterTo returns an io.WriterTo that writes the figure in the given
// format, for example "png", "svg", "pdf" or "eps".
func (f *Figure) WriterTo(format string) (io.WriterTo, error) {
	c, err := draw.NewFormattedCanvas(f.Width, f.Height, format)
	if err != nil {
		return nil, fmt.Errorf("figures: %w", err)
	}
	f.Draw(draw.New(c))
	return c, nil
}

// Save writes the figure to path in the format given by its extension.
func (f *Figure) Save(path string) error {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	wt, err := f.WriterTo(format)
	if err != nil {
		return err
	}
	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("figures: creating figure file: %w", err)
	}
	if _, err = wt.WriteTo(w); err != nil {
		w.Close()
		return fmt.Errorf("figures: writing figure: %w", err)
	}
	return w.Close()
}

// Range is an axis interval.
type Range struct {
	Min, Max float64
}

// AxesOptions are applied to the axes after drawing.
type AxesOptions struct {
	Title, XLabel, YLabel string

	XLim, YLim *Range

	// Bounds, if set, fixes both axes to its extent; see MapBounds.
	Bounds *geom.Bounds

	// EqualAspect makes one data unit the same length along both axes.
	EqualAspect bool

	Grid bool
}

func (o AxesOptions) apply(f *Figure) {
	p := f.Plot
	if o.Title != "" {
		p.Title.Text = o.Title
	}
	if o.XLabel != "" {
		p.X.Label.Text = o.XLabel
	}
	if o.YLabel != "" {
		p.Y.Label.Text = o.YLabel
	}
	if o.Bounds != nil {
		p.X.Min, p.X.Max = o.Bounds.Min.X, o.Bounds.Max.X
		p.Y.Min, p.Y.Max = o.Bounds.Min.Y, o.Bounds.Max.Y
	}
	if o.XLim != nil {
		p.X.Min, p.X.Max = o.XLim.Min, o.XLim.Max
	}
	if o.YLim != nil {
		p.Y.Min, p.Y.Max = o.YLim.Min, o.YLim.Max
	}
	if o.EqualAspect {
		f.equalAspect = true
	}
	if o.Grid {
		p.Add(plotter.NewGrid())
	}
}

// ParseAxesOptions builds AxesOptions from loosely typed properties,
// such as a table in a configuration file. The accepted properties are
// title, xlabel, ylabel, xlim and ylim (two numbers), aspect ("equal" or
// "auto") and grid.
func ParseAxesOptions(props map[string]interface{}) (AxesOptions, error) {
	var o AxesOptions
	for k, v := range props {
		var err error
		switch strings.ToLower(k) {
		case "title":
			o.Title, err = cast.ToStringE(v)
		case "xlabel":
			o.XLabel, err = cast.ToStringE(v)
		case "ylabel":
			o.YLabel, err = cast.ToStringE(v)
		case "xlim":
			o.XLim, err = parseRange(v)
		case "ylim":
			o.YLim, err = parseRange(v)
		case "aspect":
			var s string
			s, err = cast.ToStringE(v)
			switch s {
			case "equal":
				o.EqualAspect = true
			case "auto", "":
			default:
				err = fmt.Errorf("invalid aspect %q", s)
			}
		case "grid":
			o.Grid, err = cast.ToBoolE(v)
		default:
			return o, fmt.Errorf("figures: unknown axes property %q", k)
		}
		if err != nil {
			return o, fmt.Errorf("figures: axes property %q: %w", k, err)
		}
	}
	return o, nil
}

func parseRange(v interface{}) (*Range, error) {
	var s []interface{}
	var err error
	if f, ok := v.([]float64); ok {
		for _, x := range f {
			s = append(s, x)
		}
	} else if s, err = cast.ToSliceE(v); err != nil {
		return nil, err
	}
	if len(s) != 2 {
		return nil, fmt.Errorf("need 2 limits, got %d", len(s))
	}
	var r Range
	if r.Min, err = cast.ToFloat64E(s[0]); err != nil {
		return nil, err
	}
	if r.Max, err = cast.ToFloat64E(s[1]); err != nil {
		return nil, err
	}
	return &r, nil
}

// MapBounds returns the extent of the points (x[i], y[i]) padded on
// every side by margin times the extent's width or height.
func MapBounds(x, y []float64, margin float64) (*geom.Bounds, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, fmt.Errorf("figures: MapBounds: %d x and %d y coordinates", len(x), len(y))
	}
	mp := make(geom.MultiPoint, len(x))
	for i := range x {
		mp[i] = geom.Point{X: x[i], Y: y[i]}
	}
	b := mp.Bounds()
	dx := (b.Max.X - b.Min.X) * margin
	dy := (b.Max.Y - b.Min.Y) * margin
	b.Min.X -= dx
	b.Max.X += dx
	b.Min.Y -= dy
	b.Max.Y += dy
	return b, nil
}
