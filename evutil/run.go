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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ctessum/geom/encoding/geojson"
	"github.com/kr/pretty"
	"github.com/skratchdot/open-golang/open"
	"github.com/spatialmodel/evcharge/figures"
	"github.com/spatialmodel/evcharge/hull"
	"github.com/spatialmodel/evcharge/tomtom"
)

// client returns a TomTom client configured from Cfg.
func client() *tomtom.Client {
	return tomtom.NewClient(tomtom.Config{
		Key:             Cfg.GetString("key"),
		SearchURL:       Cfg.GetString("SearchURL"),
		AvailabilityURL: Cfg.GetString("AvailabilityURL"),
		CategorySet:     Cfg.GetInt("CategorySet"),
		Log:             Log,
	})
}

// stations returns the configured station IDs.
func stations() ([]tomtom.StationID, error) {
	s := Cfg.GetStringSlice("Stations")
	if len(s) == 0 {
		return nil, fmt.Errorf("evcharge: no stations specified")
	}
	v := make([]interface{}, len(s))
	for i, id := range s {
		v[i] = id
	}
	return tomtom.IDs(v...)
}

// SearchOutput holds the optional outputs of Search.
type SearchOutput struct {
	// Figure is the path to plot the stations to.
	Figure string

	// Open specifies whether to open Figure after writing it.
	Open bool

	// Hulls is the path to write the buffered hull around the
	// stations to, as GeoJSON.
	Hulls string

	// HullRadius is the buffer radius in degrees.
	HullRadius float64
}

// Search runs a nearby search, prints the response to w and writes the
// requested outputs.
func Search(ctx context.Context, c *tomtom.Client, r tomtom.SearchRequest, o SearchOutput, w io.Writer) error {
	res, err := c.Search(ctx, r)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%# v\n", pretty.Formatter(res))

	found := tomtom.Stations(res)
	if o.Figure != "" {
		if err := plotStations(found, o.Figure, o.Open); err != nil {
			return err
		}
	}
	if o.Hulls != "" {
		if err := writeHull(found, o.HullRadius, o.Hulls); err != nil {
			return err
		}
	}
	return nil
}

// stationGraph returns a graph with one node per station. Stations that
// report availability have their "available" attribute set.
func stationGraph(s []tomtom.Station) (*figures.Graph, error) {
	g := figures.NewGraph()
	for i, st := range s {
		attrs := map[string]figures.Value{
			"name":      figures.String(st.Name),
			"available": figures.Bool(st.ID != ""),
		}
		if _, err := g.AddNode(int64(i), st.Lon, st.Lat, attrs); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func plotStations(s []tomtom.Station, path string, openFile bool) error {
	if len(s) == 0 {
		return fmt.Errorf("evcharge: no stations to plot")
	}
	g, err := stationGraph(s)
	if err != nil {
		return err
	}
	x, y := g.Coords()
	b, err := figures.MapBounds(x, y, 0.1)
	if err != nil {
		return err
	}
	fig, err := figures.PlotGraph(g, nil, figures.GraphOptions{
		Field:    "available",
		ColorMap: []string{"red", "green"},
		Axes: figures.AxesOptions{
			Title:       "Charging stations",
			XLabel:      "Longitude",
			YLabel:      "Latitude",
			Bounds:      b,
			EqualAspect: true,
		},
	})
	if err != nil {
		return err
	}
	return save(fig, path, openFile)
}

func save(fig *figures.Figure, path string, openFile bool) error {
	if err := fig.Save(path); err != nil {
		return err
	}
	Log.WithField("path", path).Info("evcharge: wrote figure")
	if openFile {
		return open.Run(path)
	}
	return nil
}

type feature struct {
	Type       string                 `json:"type"`
	Geometry   *geojson.Geometry      `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

type featureCollection struct {
	Type     string     `json:"type"`
	Features []*feature `json:"features"`
}

// writeHull writes the buffered hull around the stations to path as a
// GeoJSON feature collection with one feature.
func writeHull(s []tomtom.Station, r float64, path string) error {
	x := make([]float64, len(s))
	y := make([]float64, len(s))
	for i, st := range s {
		x[i], y[i] = st.Lon, st.Lat
	}
	h, err := hull.Buffer(x, y, hull.Radius(r), hull.DefaultSamples)
	if err != nil {
		return fmt.Errorf("evcharge: station hull: %w", err)
	}
	geo, err := geojson.ToGeoJSON(hull.Polygon(h))
	if err != nil {
		return err
	}
	out := featureCollection{
		Type: "FeatureCollection",
		Features: []*feature{{
			Type:     "Feature",
			Geometry: geo,
			Properties: map[string]interface{}{
				"stations": len(s),
				"radius":   r,
			},
		}},
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("evcharge: creating hull file: %v", err)
	}
	if err := json.NewEncoder(f).Encode(out); err != nil {
		f.Close()
		return fmt.Errorf("evcharge: writing hull file: %v", err)
	}
	return f.Close()
}

// Availability fetches the availability of ids once and prints one line
// per station to w, in the order given.
func Availability(ctx context.Context, f tomtom.Fetcher, ids []tomtom.StationID, w io.Writer) error {
	res := f.Availability(ctx, ids, tomtom.LogProgress(Log))
	printResults(w, ids, res)
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(res.IDs(tomtom.OK)) == 0 && len(ids) > 0 {
		return fmt.Errorf("evcharge: availability could not be fetched for any station")
	}
	return nil
}

func printResults(w io.Writer, ids []tomtom.StationID, res tomtom.Results) {
	for _, id := range ids {
		r := res[id]
		if r.Status == tomtom.OK {
			fmt.Fprintf(w, "%s\t%s\t%v\n", id, r.Status, r.Value)
			continue
		}
		if r.Err != nil {
			fmt.Fprintf(w, "%s\t%s\t%v\n", id, r.Status, r.Err)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n", id, r.Status)
	}
}

// Poll prints the availability of ids every intervalMinutes until ctx is
// cancelled.
func Poll(ctx context.Context, f tomtom.Fetcher, intervalMinutes float64, ids []tomtom.StationID, w io.Writer) error {
	Log.WithField("interval", intervalMinutes).Info("evcharge: polling availability")
	return tomtom.ScheduleTask(ctx, f, intervalMinutes, ids, tomtom.LogProgress(Log), func(res tomtom.Results) {
		printResults(w, ids, res)
	})
}

// Plot renders the scenario in the TOML file at scenarioPath to
// outputPath.
func Plot(scenarioPath, outputPath string, openFile bool) error {
	if outputPath == "" {
		return fmt.Errorf("evcharge: no output file specified")
	}
	s, err := LoadScenario(scenarioPath)
	if err != nil {
		return err
	}
	fig, err := s.Render()
	if err != nil {
		return err
	}
	return save(fig, outputPath, openFile)
}
