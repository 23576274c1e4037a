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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/evcharge"
	"github.com/spatialmodel/evcharge/tomtom"
)

const searchResponse = `{
	"results": [
		{
			"poi": {"name": "Stationsplein"},
			"position": {"lat": 52.0894, "lon": 5.1101},
			"dataSources": {"chargingAvailability": {"id": "528009010069650"}}
		},
		{
			"poi": {"name": "Jaarbeurs"},
			"position": {"lat": 52.0880, "lon": 5.1050}
		}
	]
}`

// availabilityServer answers with the requested ID, or with a body that
// is not JSON for the IDs in bad.
func availabilityServer(bad ...string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("chargingAvailability")
		for _, b := range bad {
			if id == b {
				fmt.Fprint(w, "<html>oops</html>")
				return
			}
		}
		fmt.Fprintf(w, `{"chargingAvailability": %q}`, id)
	}))
}

// execute runs the command line args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	var buf bytes.Buffer
	Root.SetOutput(&buf)
	defer Root.SetOutput(nil)
	Root.SetArgs(args)
	err := Root.Execute()
	return buf.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if want := "EVCharge v" + evcharge.Version; !strings.Contains(out, want) {
		t.Errorf("%q does not contain %q", out, want)
	}
}

func TestSetConfig(t *testing.T) {
	dir, err := ioutil.TempDir("", "evcharge")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	cfgFile := filepath.Join(dir, "config.toml")
	if err := ioutil.WriteFile(cfgFile, []byte(`LogLevel = "warning"`+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	Cfg.Set("config", cfgFile)
	defer func() {
		Cfg.Set("config", "")
		Cfg.Set("LogLevel", "info")
		Log.SetLevel(logrus.InfoLevel)
	}()
	if err := Root.PersistentPreRunE(nil, nil); err != nil {
		t.Fatal(err)
	}
	if Log.Level != logrus.WarnLevel {
		t.Errorf("log level %v != %v", Log.Level, logrus.WarnLevel)
	}

	Cfg.Set("config", filepath.Join(dir, "missing.toml"))
	if err := Root.PersistentPreRunE(nil, nil); err == nil {
		t.Error("expected an error for a missing configuration file")
	}
}

func TestSearch(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		fmt.Fprint(w, searchResponse)
	}))
	defer srv.Close()

	dir, err := ioutil.TempDir("", "evcharge")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	figFile := filepath.Join(dir, "stations.png")
	hullFile := filepath.Join(dir, "hull.geojson")

	Cfg.Set("SearchURL", srv.URL)
	Cfg.Set("lon", 5.11)
	Cfg.Set("lat", 52.09)
	Cfg.Set("Output", figFile)
	Cfg.Set("Hulls", hullFile)
	Cfg.Set("HullRadius", 0.01)
	defer func() {
		Cfg.Set("Output", "")
		Cfg.Set("Hulls", "")
	}()

	out, err := execute(t, "search")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Stationsplein") {
		t.Errorf("output does not contain the search results: %s", out)
	}
	if !strings.Contains(query, "categorySet=7309") || !strings.Contains(query, "lat=52.09") {
		t.Errorf("query: %s", query)
	}

	if fi, err := os.Stat(figFile); err != nil || fi.Size() == 0 {
		t.Errorf("figure not written: %v", err)
	}

	b, err := ioutil.ReadFile(hullFile)
	if err != nil {
		t.Fatal(err)
	}
	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry   json.RawMessage        `json:"geometry"`
			Properties map[string]interface{} `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(b, &fc); err != nil {
		t.Fatal(err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 1 {
		t.Fatalf("%s with %d features", fc.Type, len(fc.Features))
	}
	if n := fc.Features[0].Properties["stations"]; n != 2.0 {
		t.Errorf("stations property %v != 2", n)
	}
	g, err := geojson.Decode(fc.Features[0].Geometry)
	if err != nil {
		t.Fatal(err)
	}
	poly, ok := g.(geom.Polygon)
	if !ok {
		t.Fatalf("hull is a %T", g)
	}
	for _, p := range []geom.Point{{X: 5.1101, Y: 52.0894}, {X: 5.1050, Y: 52.0880}} {
		if p.Within(poly) != geom.Inside {
			t.Errorf("station %v is not inside the hull", p)
		}
	}
}

func TestAvailability(t *testing.T) {
	srv := availabilityServer("B")
	defer srv.Close()

	Cfg.Set("AvailabilityURL", srv.URL)
	Cfg.Set("Stations", []string{"A", "B", "C"})

	out, err := execute(t, "availability")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("%d lines != 3: %s", len(lines), out)
	}
	for i, want := range []string{"A\tok", "B\tdecode failed", "C\tok"} {
		if !strings.HasPrefix(lines[i], want) {
			t.Errorf("line %d: %q does not start with %q", i, lines[i], want)
		}
	}
}

func TestAvailabilityAllFailed(t *testing.T) {
	srv := availabilityServer("A", "B")
	defer srv.Close()

	var buf bytes.Buffer
	err := Availability(context.Background(), tomtom.NewClient(tomtom.Config{AvailabilityURL: srv.URL, Log: Log}),
		[]tomtom.StationID{"A", "B"}, &buf)
	if err == nil {
		t.Error("expected an error")
	}
	if strings.Count(buf.String(), "decode failed") != 2 {
		t.Errorf("output: %s", buf.String())
	}
}

func TestNoStations(t *testing.T) {
	Cfg.Set("Stations", []string{})
	if _, err := execute(t, "availability"); err == nil {
		t.Error("expected an error")
	}
}

// cancelAfter cancels the polling context after n fetches.
type cancelAfter struct {
	mu     sync.Mutex
	n      int
	cancel context.CancelFunc
}

func (f *cancelAfter) Availability(ctx context.Context, ids []tomtom.StationID, progress tomtom.Progress) tomtom.Results {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n--
	if f.n == 0 {
		f.cancel()
	}
	res := make(tomtom.Results)
	for _, id := range ids {
		res[id] = tomtom.Result{Status: tomtom.OK}
	}
	return res
}

func TestPoll(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := &cancelAfter{n: 3, cancel: cancel}
	var buf bytes.Buffer
	err := Poll(ctx, f, 0.0001, []tomtom.StationID{"A"}, &buf)
	if err != context.Canceled {
		t.Errorf("%v != %v", err, context.Canceled)
	}
	// The batch that was interrupted is not printed.
	if n := strings.Count(buf.String(), "A\tok"); n != 2 {
		t.Errorf("%d batches printed != 2: %s", n, buf.String())
	}
}

const scenario = `
Field = "demand"
ColorMap = ["white", "blue"]
DrawEdges = true
Routes = [[0, 1, 2, 0], [3, 4]]
CliqueRadius = 0.1

[Axes]
title = "Test scenario"
aspect = "equal"

[[Nodes]]
ID = 10
X = 0
Y = 0
  [Nodes.Attrs]
  demand = 0
  name = "depot a"
  is_depot = true

[[Nodes]]
ID = 11
X = 1
Y = 0
  [Nodes.Attrs]
  demand = 2.5
  name = "b"
  is_depot = false

[[Nodes]]
ID = 12
X = 1
Y = 1
  [Nodes.Attrs]
  demand = 1
  name = "c"
  is_depot = false

[[Nodes]]
ID = 13
X = 0
Y = 1
  [Nodes.Attrs]
  demand = 0
  name = "depot b"
  is_depot = true

[[Nodes]]
ID = 14
X = 0.5
Y = 2
  [Nodes.Attrs]
  demand = 4
  name = "e"
  is_depot = false

[[Edges]]
From = 10
To = 11

[[Edges]]
From = 11
To = 12
X = [1.0, 1.5, 1.0]
Y = [0.0, 0.5, 1.0]

[[Cliques]]
Name = "south"
Nodes = [10, 11, 12]
Value = 1

[[Cliques]]
Name = "north"
Nodes = [13, 14]
Value = 3
`

func writeScenario(t *testing.T, dir, contents string) string {
	path := filepath.Join(dir, "scenario.toml")
	if err := ioutil.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	dir, err := ioutil.TempDir("", "evcharge")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	s, err := LoadScenario(writeScenario(t, dir, scenario))
	if err != nil {
		t.Fatal(err)
	}
	g, err := s.Graph()
	if err != nil {
		t.Fatal(err)
	}
	if g.Len() != 5 || len(g.Edges()) != 2 {
		t.Fatalf("%d nodes and %d edges", g.Len(), len(g.Edges()))
	}
	n := g.Node(14)
	if n == nil || n.X != 0.5 || n.Y != 2 {
		t.Fatalf("node 14: %+v", n)
	}
	if v, _ := n.Attr("demand"); v.String() != "4" {
		t.Errorf("demand %v != 4", v)
	}
	if v, _ := g.Node(13).Attr("is_depot"); !v.Bool() {
		t.Error("node 13 should be a depot")
	}
	if v, _ := g.Node(13).Attr("name"); v.String() != "depot b" {
		t.Errorf("name %q", v)
	}
	if e := g.Edges()[1]; len(e.X) != 3 || e.X[1] != 1.5 {
		t.Errorf("edge geometry %v", e.X)
	}

	cliques, values, err := s.cliques()
	if err != nil {
		t.Fatal(err)
	}
	if len(cliques) != 2 || cliques[1].Name != "north" || len(values) != 2 || values[1] != 3 {
		t.Errorf("cliques %v values %v", cliques, values)
	}
	cm, err := s.colorMap()
	if err != nil {
		t.Fatal(err)
	}
	if c, ok := cm.([]string); !ok || len(c) != 2 || c[1] != "blue" {
		t.Errorf("color map %#v", cm)
	}
}

func TestPlot(t *testing.T) {
	dir, err := ioutil.TempDir("", "evcharge")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	noRoutes := strings.Replace(scenario, "Routes = [[0, 1, 2, 0], [3, 4]]", "", 1)
	variants := map[string]string{
		"routes":  scenario,
		"cliques": noRoutes,
		"graph":   strings.Split(noRoutes, "[[Cliques]]")[0],
	}
	for name, contents := range variants {
		t.Run(name, func(t *testing.T) {
			out := filepath.Join(dir, name+".png")
			Cfg.Set("Scenario", writeScenario(t, dir, contents))
			Cfg.Set("Output", out)
			defer Cfg.Set("Output", "")
			if _, err := execute(t, "plot"); err != nil {
				t.Fatal(err)
			}
			if fi, err := os.Stat(out); err != nil || fi.Size() == 0 {
				t.Errorf("figure not written: %v", err)
			}
		})
	}
}

func TestScenarioErrors(t *testing.T) {
	dir, err := ioutil.TempDir("", "evcharge")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	if _, err := LoadScenario(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("missing file: expected an error")
	}
	if err := Plot(writeScenario(t, dir, scenario), "", false); err == nil {
		t.Error("no output: expected an error")
	}

	mixed := strings.Replace(scenario, "X = [1.0, 1.5, 1.0]", "X = [1, 1.5, 1]", 1)
	mixedPath := writeScenario(t, dir, mixed)
	_, err = LoadScenario(mixedPath)
	if err == nil {
		t.Error("mixed array: expected an error")
	} else if msg := err.Error(); !strings.Contains(msg, mixedPath) || !strings.Contains(msg, "decimal point") {
		t.Errorf("mixed array: unclear error %q", msg)
	}

	tests := map[string]string{
		"partial values": strings.Replace(scenario, "Value = 3", "", 1),
		"axes property":  strings.Replace(scenario, `aspect = "equal"`, `colour = "red"`, 1),
		"unknown node":   strings.Replace(scenario, "Nodes = [13, 14]", "Nodes = [13, 99]", 1),
		"bad coordinate": strings.Replace(scenario, "X = 0.5", `X = "east"`, 1),
	}
	for name, contents := range tests {
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario(writeScenario(t, dir, contents))
			if err != nil {
				t.Fatal(err)
			}
			if _, err := s.Render(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
