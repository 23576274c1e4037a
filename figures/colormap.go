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
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

// ErrUnknownColorMap is returned when a color map name is not in the catalog.
var ErrUnknownColorMap = errors.New("figures: unknown color map")

// DefaultColorMap is the name of the color map used when none is given.
const DefaultColorMap = "viridis"

// Steps is the number of discrete colors in a Segmented color map.
const Steps = 256

// Schemes holds the named color sequences in the catalog.
var Schemes = map[string][]string{
	"viridis": {"#440154", "#472c7a", "#3b518b", "#2c718e", "#21908d", "#27ad81", "#5cc863", "#aadc32", "#fde725"},
	"greys":   {"#ffffff", "#000000"},

	// Five, four, three and two pronged schemes from
	// http://vrl.cs.brown.edu/color.
	"scheme_5_0": {"#e7b7a5", "#da9b83", "#b1cdda", "#71909e", "#325666"},
	"scheme_4_0": {"#8de4d3", "#0e503e", "#43e26d", "#2da0a1"},
	"scheme_4_1": {"#069668", "#49edc9", "#2d595a", "#8dd2d8"},
	"scheme_4_2": {"#f2606b", "#ffdf79", "#c6e2b1", "#509bcf"},
	"scheme_3_0": {"#72e5ef", "#1c5b5a", "#2da0a1"},
	"scheme_3_1": {"#256676", "#72b6bc", "#1eefc9"},
	"scheme_3_2": {"#40655e", "#a2e0dd", "#31d0a5"},
	"scheme_3_3": {"#f2606b", "#c6e2b1", "#509bcf"},
	"scheme_2_0": {"#21f0b6", "#2a6866"},
	"scheme_2_1": {"#72e5ef", "#3a427d"},
	"scheme_2_2": {"#1e4d2b", "#c8c372"},

	// https://www.canva.com/learn/100-color-combinations/
	"day_night":   {"#e6df44", "#f0810f", "#063852", "#011a27"},
	"beach_house": {"#d5c9b1", "#e05858", "#bfdccf", "#5f968e"},
	"autumn":      {"#db9501", "#c05805", "#6e6702", "#2e2300"},
	"ocean":       {"#003b46", "#07575b", "#66a5ad", "#c4dfe6"},
	"forest":      {"#7d4427", "#a2c523", "#486b00", "#2e4600"},
	"aqua":        {"#004d47", "#128277", "#52958b", "#b9c4c9"},
	"field":       {"#5a5f37", "#fffae1", "#524a3a", "#919636"},
	"misty":       {"#04202c", "#304040", "#5b7065", "#c9d1c8"},
	"greens":      {"#265c00", "#68a225", "#b3de81", "#fdffff"},
	"citroen":     {"#b38540", "#563e20", "#7e7b15", "#ebdf00"},
	"blues":       {"#1e1f26", "#283655", "#4d648d", "#d0e1f9"},
	"dusk":        {"#363237", "#2d4262", "#73605b", "#d09683"},
	"ice":         {"#1995ad", "#a1d6e2", "#bcbabe", "#f1f1f2"},
}

// morelandMaps holds the catalog entries backed by gonum's
// perceptually uniform color maps.
var morelandMaps = map[string]func() palette.ColorMap{
	"blackbody":            func() palette.ColorMap { return moreland.BlackBody() },
	"extended_blackbody":   func() palette.ColorMap { return moreland.ExtendedBlackBody() },
	"kindlmann":            func() palette.ColorMap { return moreland.Kindlmann() },
	"extended_kindlmann":   func() palette.ColorMap { return moreland.ExtendedKindlmann() },
	"smooth_blue_red":      func() palette.ColorMap { return moreland.SmoothBlueRed() },
	"smooth_blue_tan":      func() palette.ColorMap { return moreland.SmoothBlueTan() },
	"smooth_green_purple":  func() palette.ColorMap { return moreland.SmoothGreenPurple() },
	"smooth_green_red":     func() palette.ColorMap { return moreland.SmoothGreenRed() },
	"smooth_purple_orange": func() palette.ColorMap { return moreland.SmoothPurpleOrange() },
}

// ColorMapNames returns the names of every color map in the catalog.
func ColorMapNames() []string {
	names := make([]string, 0, len(Schemes)+len(morelandMaps))
	for n := range Schemes {
		names = append(names, n)
	}
	for n := range morelandMaps {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NamedColorMap returns a new instance of the catalog color map called
// name, spanning [0, 1].
func NamedColorMap(name string) (palette.ColorMap, error) {
	if s, ok := Schemes[name]; ok {
		return NewSegmented(mustParse(s...)...)
	}
	if f, ok := morelandMaps[name]; ok {
		cm := f()
		cm.SetMax(1)
		cm.SetMin(0)
		return cm, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownColorMap, name)
}

// ResolveColorMap turns v into a color map. v may be the name of a
// catalog color map, a sequence of color strings (see ParseColor),
// a sequence of colors, or a palette.ColorMap, which is returned as is.
func ResolveColorMap(v interface{}) (palette.ColorMap, error) {
	switch t := v.(type) {
	case nil:
		return NamedColorMap(DefaultColorMap)
	case string:
		return NamedColorMap(t)
	case []string:
		c, err := ParseColors(t...)
		if err != nil {
			return nil, err
		}
		return NewSegmented(c...)
	case []color.Color:
		return NewSegmented(t...)
	case palette.ColorMap:
		return t, nil
	default:
		return nil, fmt.Errorf("figures: cannot make a color map from %T", v)
	}
}

// Segmented is a color map that interpolates linearly between evenly
// spaced control colors and quantizes the result to Steps levels.
type Segmented struct {
	controls []color.NRGBA
	min, max float64
	alpha    float64
}

// NewSegmented returns a Segmented color map through the given colors
// in order, spanning [0, 1].
func NewSegmented(colors ...color.Color) (*Segmented, error) {
	if len(colors) == 0 {
		return nil, errors.New("figures: a color map needs at least one color")
	}
	s := &Segmented{
		controls: make([]color.NRGBA, len(colors)),
		max:      1,
		alpha:    1,
	}
	for i, c := range colors {
		s.controls[i] = color.NRGBAModel.Convert(c).(color.NRGBA)
	}
	return s, nil
}

// At implements palette.ColorMap.
func (s *Segmented) At(v float64) (color.Color, error) {
	switch {
	case math.IsNaN(v):
		return nil, palette.ErrNaN
	case v < s.min:
		return nil, palette.ErrUnderflow
	case v > s.max:
		return nil, palette.ErrOverflow
	}
	var t float64
	if s.max > s.min {
		t = (v - s.min) / (s.max - s.min)
	}
	level := int(t * Steps)
	if level >= Steps {
		level = Steps - 1
	}
	return s.interpolate(float64(level) / (Steps - 1)), nil
}

// interpolate returns the color at fraction f ∈ [0, 1] along the controls.
func (s *Segmented) interpolate(f float64) color.NRGBA {
	if len(s.controls) == 1 {
		return s.withAlpha(s.controls[0])
	}
	pos := f * float64(len(s.controls)-1)
	i := int(pos)
	if i >= len(s.controls)-1 {
		return s.withAlpha(s.controls[len(s.controls)-1])
	}
	frac := pos - float64(i)
	a, b := s.controls[i], s.controls[i+1]
	lerp := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*frac))
	}
	return s.withAlpha(color.NRGBA{
		R: lerp(a.R, b.R),
		G: lerp(a.G, b.G),
		B: lerp(a.B, b.B),
		A: lerp(a.A, b.A),
	})
}

func (s *Segmented) withAlpha(c color.NRGBA) color.NRGBA {
	c.A = uint8(math.Round(float64(c.A) * s.alpha))
	return c
}

// Max implements palette.ColorMap.
func (s *Segmented) Max() float64 { return s.max }

// SetMax implements palette.ColorMap.
func (s *Segmented) SetMax(v float64) { s.max = v }

// Min implements palette.ColorMap.
func (s *Segmented) Min() float64 { return s.min }

// SetMin implements palette.ColorMap.
func (s *Segmented) SetMin(v float64) { s.min = v }

// Alpha implements palette.ColorMap.
func (s *Segmented) Alpha() float64 { return s.alpha }

// SetAlpha implements palette.ColorMap. It panics if alpha is outside [0, 1].
func (s *Segmented) SetAlpha(alpha float64) {
	if alpha < 0 || alpha > 1 {
		panic(fmt.Sprintf("figures: invalid alpha %g", alpha))
	}
	s.alpha = alpha
}

// Palette implements palette.ColorMap.
func (s *Segmented) Palette(n int) palette.Palette {
	return colorMapPalette(s, n)
}

type colors []color.Color

func (c colors) Colors() []color.Color { return c }

// colorMapPalette samples n evenly spaced colors from cm.
func colorMapPalette(cm palette.ColorMap, n int) palette.Palette {
	out := make(colors, n)
	for i := range out {
		var t float64
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		out[i] = colorAt(cm, t)
	}
	return out
}

// colorAt returns the color for fraction t of the way through cm's range.
// t is clipped to [0, 1] and NaN maps to transparent.
func colorAt(cm palette.ColorMap, t float64) color.Color {
	if math.IsNaN(t) {
		return Transparent
	}
	t = math.Max(0, math.Min(1, t))
	v := cm.Min() + t*(cm.Max()-cm.Min())
	c, err := cm.At(v)
	if err != nil {
		// Rounding at the ends of the range.
		if t < 0.5 {
			c, err = cm.At(cm.Min())
		} else {
			c, err = cm.At(cm.Max())
		}
		if err != nil {
			return Transparent
		}
	}
	return c
}

// scaled presents a color map over the range [min, max] without
// modifying the underlying map.
type scaled struct {
	base     palette.ColorMap
	min, max float64
}

// rescale returns a view of cm spanning [min, max]. When min == max the
// range is widened by one half on either side so the color bar has
// something to show.
func rescale(cm palette.ColorMap, min, max float64) palette.ColorMap {
	if min == max {
		min, max = min-0.5, max+0.5
	}
	return &scaled{base: cm, min: min, max: max}
}

func (s *scaled) At(v float64) (color.Color, error) {
	switch {
	case math.IsNaN(v):
		return nil, palette.ErrNaN
	case v < s.min:
		return nil, palette.ErrUnderflow
	case v > s.max:
		return nil, palette.ErrOverflow
	}
	return colorAt(s.base, (v-s.min)/(s.max-s.min)), nil
}

func (s *scaled) Max() float64                  { return s.max }
func (s *scaled) SetMax(v float64)              { s.max = v }
func (s *scaled) Min() float64                  { return s.min }
func (s *scaled) SetMin(v float64)              { s.min = v }
func (s *scaled) Alpha() float64                { return s.base.Alpha() }
func (s *scaled) SetAlpha(a float64)            { s.base.SetAlpha(a) }
func (s *scaled) Palette(n int) palette.Palette { return colorMapPalette(s, n) }
