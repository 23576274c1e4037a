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

package evutil

import (
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spatialmodel/evcharge/figures"
	"github.com/spf13/cast"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Scenario describes a figure: a graph of stations and destinations, and
// optionally the routes that serve them and cliques of nodes to outline.
// Single numbers may be written with or without a decimal point, but the
// numbers in an array must all be written the same way: X = [1.0, 1.5]
// is valid and X = [1, 1.5] is not.
type Scenario struct {
	// Field names the node attribute that colors the nodes when there
	// are no routes.
	Field string

	// ColorMap is a color map name or a list of colors.
	ColorMap interface{}

	// DrawEdges draws the graph edges underneath the nodes.
	DrawEdges bool

	Nodes []ScenarioNode
	Edges []ScenarioEdge

	// Routes hold node positions (not IDs); each starts at its depot.
	Routes [][]int

	Cliques      []ScenarioClique
	CliqueRadius interface{}

	// Axes holds the properties accepted by figures.ParseAxesOptions.
	Axes map[string]interface{}
}

// ScenarioNode is a graph vertex.
type ScenarioNode struct {
	ID    int64
	X, Y  interface{}
	Attrs map[string]interface{}
}

// ScenarioEdge is a graph edge, with optional geometry.
type ScenarioEdge struct {
	From, To int64
	X, Y     []interface{}
}

// ScenarioClique is a named group of node IDs with an optional value.
type ScenarioClique struct {
	Name  string
	Nodes []int64
	Value interface{}
}

// LoadScenario reads a scenario from a TOML file.
func LoadScenario(path string) (*Scenario, error) {
	if path == "" {
		return nil, fmt.Errorf("evcharge: no scenario file specified")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("evcharge: opening scenario: %v", err)
	}
	defer f.Close()
	s := new(Scenario)
	if _, err := toml.DecodeReader(f, s); err != nil {
		if strings.Contains(err.Error(), "homogeneous") {
			return nil, fmt.Errorf("evcharge: reading scenario %s: %v (write every number in an array with a decimal point)", path, err)
		}
		return nil, fmt.Errorf("evcharge: reading scenario %s: %v", path, err)
	}
	return s, nil
}

// attrValue converts a decoded attribute to a graph value.
func attrValue(v interface{}) (figures.Value, error) {
	switch t := v.(type) {
	case bool:
		return figures.Bool(t), nil
	case string:
		return figures.String(t), nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return figures.Value{}, err
	}
	return figures.Float(f), nil
}

func floats(v []interface{}) ([]float64, error) {
	if v == nil {
		return nil, nil
	}
	out := make([]float64, len(v))
	for i, x := range v {
		var err error
		if out[i], err = cast.ToFloat64E(x); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Graph builds the scenario's graph.
func (s *Scenario) Graph() (*figures.Graph, error) {
	g := figures.NewGraph()
	for _, n := range s.Nodes {
		x, err := cast.ToFloat64E(n.X)
		if err != nil {
			return nil, fmt.Errorf("evcharge: node %d x: %v", n.ID, err)
		}
		y, err := cast.ToFloat64E(n.Y)
		if err != nil {
			return nil, fmt.Errorf("evcharge: node %d y: %v", n.ID, err)
		}
		attrs := make(map[string]figures.Value, len(n.Attrs))
		for k, v := range n.Attrs {
			if attrs[k], err = attrValue(v); err != nil {
				return nil, fmt.Errorf("evcharge: node %d attribute %q: %v", n.ID, k, err)
			}
		}
		if _, err := g.AddNode(n.ID, x, y, attrs); err != nil {
			return nil, err
		}
	}
	for _, e := range s.Edges {
		x, err := floats(e.X)
		if err != nil {
			return nil, fmt.Errorf("evcharge: edge %d-%d x: %v", e.From, e.To, err)
		}
		y, err := floats(e.Y)
		if err != nil {
			return nil, fmt.Errorf("evcharge: edge %d-%d y: %v", e.From, e.To, err)
		}
		if _, err := g.AddEdge(e.From, e.To, x, y); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// colorMap converts the decoded color map setting to something
// figures.ResolveColorMap accepts.
func (s *Scenario) colorMap() (interface{}, error) {
	switch t := s.ColorMap.(type) {
	case nil, string:
		return t, nil
	case []interface{}:
		return cast.ToStringSliceE(t)
	default:
		return nil, fmt.Errorf("evcharge: invalid color map %v", t)
	}
}

// cliques returns the scenario's cliques and their values. The values are
// nil unless every clique has one.
func (s *Scenario) cliques() ([]figures.Clique, []float64, error) {
	out := make([]figures.Clique, len(s.Cliques))
	var values []float64
	for i, c := range s.Cliques {
		out[i] = figures.Clique{Name: c.Name, Nodes: c.Nodes}
		if c.Value == nil {
			continue
		}
		v, err := cast.ToFloat64E(c.Value)
		if err != nil {
			return nil, nil, fmt.Errorf("evcharge: clique %q value: %v", c.Name, err)
		}
		values = append(values, v)
	}
	if len(values) != 0 && len(values) != len(out) {
		return nil, nil, fmt.Errorf("evcharge: %d of %d cliques have values", len(values), len(out))
	}
	return out, values, nil
}

// Render draws the scenario. With routes, nodes are colored by depot and
// the routes are drawn as arrows; otherwise nodes are colored by Field.
// Cliques are outlined on top.
func (s *Scenario) Render() (*figures.Figure, error) {
	g, err := s.Graph()
	if err != nil {
		return nil, err
	}
	cm, err := s.colorMap()
	if err != nil {
		return nil, err
	}
	axes, err := figures.ParseAxesOptions(s.Axes)
	if err != nil {
		return nil, err
	}
	var line *draw.LineStyle
	if s.DrawEdges {
		line = &draw.LineStyle{Color: color.Gray{Y: 128}, Width: vg.Points(0.5)}
	}

	var fig *figures.Figure
	switch {
	case len(s.Routes) > 0:
		if line != nil {
			fig, err = figures.NewFigure(figures.DefaultSize, figures.DefaultSize)
			if err != nil {
				return nil, err
			}
			if _, err = figures.PlotGraph(g, fig, figures.GraphOptions{
				Line:    line,
				Scatter: figures.ScatterStyle{Color: figures.Transparent},
			}); err != nil {
				return nil, err
			}
		}
		fig, err = figures.PlotRoutes(g, s.Routes, fig, figures.RoutesOptions{ColorMap: cm, Axes: axes})
	case len(s.Cliques) > 0:
		// The cliques draw the nodes themselves.
	default:
		o := figures.GraphOptions{Field: s.Field, ColorMap: cm, Line: line, Axes: axes}
		if s.Field != "" {
			o.ColorBar = &figures.ColorBarStyle{Label: s.Field}
		}
		fig, err = figures.PlotGraph(g, nil, o)
	}
	if err != nil {
		return nil, err
	}

	if len(s.Cliques) > 0 {
		cliques, values, err := s.cliques()
		if err != nil {
			return nil, err
		}
		var r float64
		if s.CliqueRadius != nil {
			if r, err = cast.ToFloat64E(s.CliqueRadius); err != nil {
				return nil, fmt.Errorf("evcharge: clique radius: %v", err)
			}
		}
		o := figures.CliqueOptions{R: r, Values: values, ColorMap: cm, Axes: axes}
		if fig == nil {
			o.Line = line
		} else {
			o.Scatter.Color = figures.Transparent
		}
		if fig, err = figures.PlotCliques(g, cliques, fig, o); err != nil {
			return nil, err
		}
	}
	return fig, nil
}
