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
	"strconv"

	"github.com/ctessum/geom"
)

var (
	// ErrMissingAttribute is returned when a node lacks a requested attribute.
	ErrMissingAttribute = errors.New("figures: missing attribute")

	// ErrNotNumeric is returned when a string attribute is used as a number.
	ErrNotNumeric = errors.New("figures: attribute is not numeric")
)

type valueKind int

const (
	numberValue valueKind = iota
	stringValue
	boolValue
)

// Value is a scalar node or edge attribute: a number, a string or a boolean.
type Value struct {
	kind valueKind
	num  float64
	str  string
}

// Float returns a numeric Value.
func Float(v float64) Value { return Value{kind: numberValue, num: v} }

// String returns a string Value.
func String(s string) Value { return Value{kind: stringValue, str: s} }

// Bool returns a boolean Value.
func Bool(b bool) Value {
	v := Value{kind: boolValue}
	if b {
		v.num = 1
	}
	return v
}

// Float64 returns v as a number. Booleans are 0 or 1.
func (v Value) Float64() (float64, error) {
	if v.kind == stringValue {
		return 0, fmt.Errorf("%w: %q", ErrNotNumeric, v.str)
	}
	return v.num, nil
}

// Bool reports whether v is a true boolean or a non-zero number.
func (v Value) Bool() bool {
	return v.kind != stringValue && v.num != 0
}

func (v Value) String() string {
	switch v.kind {
	case stringValue:
		return v.str
	case boolValue:
		return strconv.FormatBool(v.num != 0)
	default:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	}
}

// Node is a graph vertex with a location and named attributes.
type Node struct {
	ID    int64
	X, Y  float64
	Attrs map[string]Value
}

// Attr returns the attribute called name.
func (n *Node) Attr(name string) (Value, error) {
	v, ok := n.Attrs[name]
	if !ok {
		return Value{}, fmt.Errorf("%w: node %d has no %q", ErrMissingAttribute, n.ID, name)
	}
	return v, nil
}

// Edge joins two nodes. X and Y, when set, hold the coordinates of the
// edge geometry; otherwise the edge is the segment between its nodes.
type Edge struct {
	From, To int64
	X, Y     []float64
	Attrs    map[string]Value
}

// Graph is a set of located nodes, in insertion order, and the edges
// between them.
type Graph struct {
	nodes []*Node
	index map[int64]int
	edges []*Edge
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{index: make(map[int64]int)}
}

// AddNode adds a node to the graph. attrs may be nil.
func (g *Graph) AddNode(id int64, x, y float64, attrs map[string]Value) (*Node, error) {
	if _, ok := g.index[id]; ok {
		return nil, fmt.Errorf("figures: duplicate node %d", id)
	}
	if attrs == nil {
		attrs = make(map[string]Value)
	}
	n := &Node{ID: id, X: x, Y: y, Attrs: attrs}
	g.index[id] = len(g.nodes)
	g.nodes = append(g.nodes, n)
	return n, nil
}

// AddEdge adds an edge between existing nodes from and to. x and y are
// the optional edge geometry and must have the same length.
func (g *Graph) AddEdge(from, to int64, x, y []float64) (*Edge, error) {
	for _, id := range []int64{from, to} {
		if _, ok := g.index[id]; !ok {
			return nil, fmt.Errorf("figures: edge %d-%d: no node %d", from, to, id)
		}
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("figures: edge %d-%d: %d x and %d y coordinates", from, to, len(x), len(y))
	}
	e := &Edge{From: from, To: to, X: x, Y: y, Attrs: make(map[string]Value)}
	g.edges = append(g.edges, e)
	return e, nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Edges returns the edges in insertion order.
func (g *Graph) Edges() []*Edge { return g.edges }

// Node returns the node with the given ID, or nil.
func (g *Graph) Node(id int64) *Node {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	return g.nodes[i]
}

// Position returns the index of the node with the given ID in node order.
func (g *Graph) Position(id int64) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// Coords returns the node coordinates in node order.
func (g *Graph) Coords() (x, y []float64) {
	x = make([]float64, len(g.nodes))
	y = make([]float64, len(g.nodes))
	for i, n := range g.nodes {
		x[i], y[i] = n.X, n.Y
	}
	return x, y
}

// Points returns the node locations in node order.
func (g *Graph) Points() []geom.Point {
	out := make([]geom.Point, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = geom.Point{X: n.X, Y: n.Y}
	}
	return out
}

// Field returns the numeric attribute called name for every node, in
// node order. It fails if any node lacks the attribute.
func (g *Graph) Field(name string) ([]float64, error) {
	out := make([]float64, len(g.nodes))
	for i, n := range g.nodes {
		v, err := n.Attr(name)
		if err != nil {
			return nil, err
		}
		if out[i], err = v.Float64(); err != nil {
			return nil, fmt.Errorf("figures: node %d attribute %q: %w", n.ID, name, err)
		}
	}
	return out, nil
}

// HasField reports whether every node has the attribute called name.
func (g *Graph) HasField(name string) bool {
	for _, n := range g.nodes {
		if _, ok := n.Attrs[name]; !ok {
			return false
		}
	}
	return len(g.nodes) > 0
}

// AddVertexField sets attribute field of each node, in node order,
// to the matching element of values.
func AddVertexField(g *Graph, field string, values []float64) error {
	if len(values) != len(g.nodes) {
		return fmt.Errorf("figures: %d values for %d nodes", len(values), len(g.nodes))
	}
	for i, n := range g.nodes {
		n.Attrs[field] = Float(values[i])
	}
	return nil
}

// edgeCoords returns the geometry of e, falling back to the straight
// segment between its nodes.
func (g *Graph) edgeCoords(e *Edge) (x, y []float64) {
	if len(e.X) > 0 {
		return e.X, e.Y
	}
	a, b := g.Node(e.From), g.Node(e.To)
	return []float64{a.X, b.X}, []float64{a.Y, b.Y}
}
