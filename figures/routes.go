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
	"image/color"

	"github.com/ctessum/geom"
)

const (
	// RouteDepotField is the node attribute PlotRoutes sets to the
	// position of the depot serving each node.
	RouteDepotField = "route_depot"

	// DepotField is the boolean node attribute marking depots.
	DepotField = "is_depot"
)

// RouteOptions control PlotRoute.
type RouteOptions struct {
	Arrow ArrowStyle
	Axes  AxesOptions
}

// PlotRoute draws an arrow between each pair of consecutive stops of each
// route. Stops are node positions in g's node order and the first stop
// of a route is its depot; a route that does not end at its depot gets a
// final arrow back to it.
func PlotRoute(g *Graph, routes [][]int, fig *Figure, o RouteOptions) (*Figure, error) {
	if err := nodeIndex(g, routes); err != nil {
		return nil, err
	}
	fig, err := orNew(fig)
	if err != nil {
		return nil, err
	}
	fig.Plot.Add(routeArrows(g, routes, o.Arrow))
	o.Axes.apply(fig)
	return fig, nil
}

func routeArrows(g *Graph, routes [][]int, sty ArrowStyle) *arrows {
	pts := g.Points()
	a := &arrows{style: sty.withDefaults()}
	for _, r := range routes {
		for i := 1; i < len(r); i++ {
			a.segs = append(a.segs, [2]geom.Point{pts[r[i-1]], pts[r[i]]})
		}
		if n := len(r); n > 1 && r[n-1] != r[0] {
			a.segs = append(a.segs, [2]geom.Point{pts[r[n-1]], pts[r[0]]})
		}
	}
	return a
}

// RoutesOptions control PlotRoutes.
type RoutesOptions struct {
	// ColorMap colors the nodes by depot. Nil means viridis.
	ColorMap interface{}

	// Destination styles the node markers.
	Destination ScatterStyle

	// Depot styles the markers drawn over depots. Nil colors mean a
	// whitesmoke fill with a black edge.
	Depot ScatterStyle

	Arrow ArrowStyle
	Axes  AxesOptions
}

// PlotRoutes colors every node by the depot of the route that serves it,
// highlights the depots and draws the route arrows. It sets the
// RouteDepotField attribute of every node in g: stops get the position of
// their route's depot and nodes on no route get 0. Depots are the nodes
// whose DepotField attribute is true if every node has one, and the first
// stop of each route otherwise.
func PlotRoutes(g *Graph, routes [][]int, fig *Figure, o RoutesOptions) (*Figure, error) {
	if err := nodeIndex(g, routes); err != nil {
		return nil, err
	}
	depotOf := make([]float64, g.Len())
	for _, r := range routes {
		for _, s := range stops(r) {
			depotOf[s] = float64(r[0])
		}
	}
	if err := AddVertexField(g, RouteDepotField, depotOf); err != nil {
		return nil, err
	}

	fig, err := PlotGraph(g, fig, GraphOptions{
		Field:    RouteDepotField,
		ColorMap: o.ColorMap,
		Scatter:  o.Destination,
	})
	if err != nil {
		return nil, err
	}

	depot := depots(g, routes)
	sty := o.Depot
	if sty.Color == nil {
		sty.Color = color.NRGBA{R: 245, G: 245, B: 245, A: 255}
	}
	if sty.EdgeColor == nil {
		sty.EdgeColor = color.Black
	}
	fill := make([]color.Color, g.Len())
	edge := make([]color.Color, g.Len())
	for i, d := range depot {
		fill[i], edge[i] = Transparent, Transparent
		if d {
			fill[i], edge[i] = sty.Color, sty.EdgeColor
		}
	}
	m, err := newMarkers(g.Points(), fill, edge, sty)
	if err != nil {
		return nil, err
	}
	fig.Plot.Add(m...)

	fig.Plot.Add(routeArrows(g, routes, o.Arrow))
	o.Axes.apply(fig)
	return fig, nil
}

// stops returns the stops of r without a trailing return to the depot.
func stops(r []int) []int {
	if n := len(r); n > 1 && r[n-1] == r[0] {
		return r[:n-1]
	}
	return r
}

// depots flags the depot nodes of g.
func depots(g *Graph, routes [][]int) []bool {
	out := make([]bool, g.Len())
	if g.HasField(DepotField) {
		for i, n := range g.Nodes() {
			out[i] = n.Attrs[DepotField].Bool()
		}
		return out
	}
	for _, r := range routes {
		if len(r) > 0 {
			out[r[0]] = true
		}
	}
	return out
}
