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
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ErrInvalidColor is returned when a color string cannot be parsed.
var ErrInvalidColor = errors.New("figures: invalid color")

// Transparent is the color drawn for "none".
var Transparent = color.NRGBA{}

// shorthand holds the single-letter color codes.
var shorthand = map[string]color.NRGBA{
	"k": {A: 255},
	"w": {R: 255, G: 255, B: 255, A: 255},
	"r": {R: 255, A: 255},
	"g": {G: 128, A: 255},
	"b": {B: 255, A: 255},
	"c": {G: 191, B: 191, A: 255},
	"m": {R: 191, B: 191, A: 255},
	"y": {R: 191, G: 191, A: 255},
}

// ParseColor parses a color given as "#rrggbb", "#rrggbbaa", "none",
// a single-letter shorthand such as "k", or an SVG color name such as
// "whitesmoke".
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "none" || s == "transparent" {
		return Transparent, nil
	}
	if c, ok := shorthand[s]; ok {
		return c, nil
	}
	if strings.HasPrefix(s, "#") {
		return parseHex(s)
	}
	if c, ok := colornames.Map[s]; ok {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
	}
	return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
}

func parseHex(s string) (color.NRGBA, error) {
	h := s[1:]
	if len(h) != 6 && len(h) != 8 {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	if len(h) == 6 {
		v = v<<8 | 0xff
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// ParseColors parses each of the strings with ParseColor.
func ParseColors(s ...string) ([]color.Color, error) {
	out := make([]color.Color, len(s))
	for i, v := range s {
		c, err := ParseColor(v)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// mustParse is for the package's own color tables.
func mustParse(s ...string) []color.Color {
	c, err := ParseColors(s...)
	if err != nil {
		panic(err)
	}
	return c
}

// invisible reports whether c would not show up when drawn.
func invisible(c color.Color) bool {
	if c == nil {
		return true
	}
	_, _, _, a := c.RGBA()
	return a == 0
}
