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

package tomtom

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/kr/pretty"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

const searchResponse = `{
	"summary": {"numResults": 2},
	"results": [
		{
			"poi": {"name": "Stationsplein"},
			"position": {"lat": 52.0894, "lon": 5.1101},
			"dataSources": {"chargingAvailability": {"id": "528009010069650"}}
		},
		{
			"poi": {"name": "No availability"},
			"position": {"lat": 52.1, "lon": 5.2}
		},
		{"poi": {"name": "Nowhere"}}
	]
}`

// testClient returns a client for srv that logs nowhere.
func testClient(srv *httptest.Server, hc *http.Client) *Client {
	log, _ := test.NewNullLogger()
	return NewClient(Config{
		Key:             "secret",
		SearchURL:       srv.URL + "/search",
		AvailabilityURL: srv.URL + "/availability",
		HTTPClient:      hc,
		Log:             log,
	})
}

func TestSearch(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			http.NotFound(w, r)
			return
		}
		got = r.URL.Query()
		fmt.Fprint(w, searchResponse)
	}))
	defer srv.Close()

	res, err := testClient(srv, nil).Search(context.Background(), SearchRequest{Lon: 5.11, Lat: 52.09})
	if err != nil {
		t.Fatal(err)
	}
	want := url.Values{
		"key":         {"secret"},
		"lon":         {"5.11"},
		"lat":         {"52.09"},
		"radius":      {"5000"},
		"limit":       {"100"},
		"categorySet": {"7309"},
	}
	if diff := pretty.Diff(got, want); len(diff) > 0 {
		t.Errorf("query: %v", diff)
	}
	if n := len(SearchResults(res)); n != 3 {
		t.Errorf("%d results != 3", n)
	}

	stations := Stations(res)
	wantStations := []Station{
		{ID: "528009010069650", Name: "Stationsplein", Lon: 5.1101, Lat: 52.0894},
		{Name: "No availability", Lon: 5.2, Lat: 52.1},
	}
	if diff := pretty.Diff(stations, wantStations); len(diff) > 0 {
		t.Errorf("stations: %v", diff)
	}
}

func TestSearchParameters(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	c := NewClient(Config{SearchURL: srv.URL, CategorySet: 7310, Log: logrus.New()})
	if _, err := c.Search(context.Background(), SearchRequest{Radius: 250, Limit: 5}); err != nil {
		t.Fatal(err)
	}
	want := url.Values{
		"lon":         {"0"},
		"lat":         {"0"},
		"radius":      {"250"},
		"limit":       {"5"},
		"categorySet": {"7310"},
	}
	if diff := pretty.Diff(got, want); len(diff) > 0 {
		t.Errorf("query: %v", diff)
	}
}

func TestSearchMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": [`)
	}))
	defer srv.Close()

	_, err := testClient(srv, nil).Search(context.Background(), SearchRequest{Lon: 1, Lat: 2})
	if !errors.Is(err, errDecode) {
		t.Errorf("%v != %v", err, errDecode)
	}
}

func TestSearchTransport(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := testClient(srv, nil)
	srv.Close()

	_, err := c.Search(context.Background(), SearchRequest{Lon: 1, Lat: 2})
	if err == nil || errors.Is(err, errDecode) {
		t.Errorf("expected a transport error, got %v", err)
	}
}

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
		fmt.Fprintf(w, `{"chargingAvailability": %q, "connectors": []}`, id)
	}))
}

func TestAvailabilityDecodeFailure(t *testing.T) {
	srv := availabilityServer("B")
	defer srv.Close()

	var calls []StationID
	res := testClient(srv, nil).Availability(context.Background(), []StationID{"A", "B", "C"},
		func(done, total int, id StationID, r Result) {
			if total != 3 || done != len(calls)+1 {
				t.Errorf("progress %d/%d", done, total)
			}
			calls = append(calls, id)
		})

	if len(res) != 3 {
		t.Fatalf("%d results != 3", len(res))
	}
	for _, id := range []StationID{"A", "C"} {
		r := res[id]
		if r.Status != OK || r.Err != nil {
			t.Errorf("%s: %v, %v", id, r.Status, r.Err)
		}
		if r.Value["chargingAvailability"] != string(id) {
			t.Errorf("%s: value %v", id, r.Value)
		}
	}
	if r := res["B"]; r.Status != DecodeFailed || r.Err == nil || r.Value != nil {
		t.Errorf("B: %+v", r)
	}
	if diff := pretty.Diff(calls, []StationID{"A", "B", "C"}); len(diff) > 0 {
		t.Errorf("progress: %v", diff)
	}
	if diff := pretty.Diff(res.IDs(OK), []StationID{"A", "C"}); len(diff) > 0 {
		t.Errorf("ok: %v", diff)
	}
}

// failFor fails requests for one station.
type failFor struct {
	id StationID
}

func (f failFor) RoundTrip(r *http.Request) (*http.Response, error) {
	if r.URL.Query().Get("chargingAvailability") == string(f.id) {
		return nil, errors.New("connection reset")
	}
	return http.DefaultTransport.RoundTrip(r)
}

func TestAvailabilityTransportFailure(t *testing.T) {
	srv := availabilityServer()
	defer srv.Close()

	c := testClient(srv, &http.Client{Transport: failFor{id: "B"}})
	res := c.Availability(context.Background(), []StationID{"A", "B", "C"}, nil)
	want := map[StationID]Status{"A": OK, "B": TransportFailed, "C": OK}
	for id, s := range want {
		if res[id].Status != s {
			t.Errorf("%s: %v != %v", id, res[id].Status, s)
		}
	}
	if res["B"].Err == nil {
		t.Error("B: missing error")
	}
}

func TestAvailabilityCancel(t *testing.T) {
	srv := availabilityServer()
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	res := testClient(srv, nil).Availability(ctx, []StationID{"A", "B", "C"},
		func(done, total int, id StationID, r Result) { cancel() })

	want := map[StationID]Status{"A": OK, "B": NotAttempted, "C": NotAttempted}
	for id, s := range want {
		if res[id].Status != s {
			t.Errorf("%s: %v != %v", id, res[id].Status, s)
		}
	}
}

func TestLogProgress(t *testing.T) {
	log, hook := test.NewNullLogger()
	p := LogProgress(log)
	p(1, 2, "A", Result{Status: OK})
	p(2, 2, "B", Result{Status: DecodeFailed, Err: errors.New("bad")})

	entries := hook.AllEntries()
	if len(entries) != 2 {
		t.Fatalf("%d entries != 2", len(entries))
	}
	if entries[0].Level != logrus.InfoLevel || entries[0].Data["station"] != StationID("A") {
		t.Errorf("first entry: %v %v", entries[0].Level, entries[0].Data)
	}
	if entries[1].Level != logrus.WarnLevel || entries[1].Data["progress"] != "2/2" {
		t.Errorf("second entry: %v %v", entries[1].Level, entries[1].Data)
	}
}

func TestIDs(t *testing.T) {
	ids, err := IDs(12, "abc", int64(7), 3.5)
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(ids, []StationID{"12", "abc", "7", "3.5"}); len(diff) > 0 {
		t.Error(diff)
	}
	if _, err := IDs(struct{}{}); err == nil {
		t.Error("expected an error")
	}
}

// countingFetcher records how many batches it fetched.
type countingFetcher struct {
	mu    sync.Mutex
	calls int
}

func (f *countingFetcher) Availability(ctx context.Context, ids []StationID, progress Progress) Results {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	out := make(Results)
	for _, id := range ids {
		out[id] = Result{Status: OK}
	}
	return out
}

func TestPoll(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := new(countingFetcher)
	var handled int
	start := time.Now()
	err := Poll(ctx, f, 10*time.Millisecond, []StationID{"A"}, nil, func(r Results) {
		if handled == 0 && time.Since(start) < 10*time.Millisecond {
			t.Error("first fetch before one interval")
		}
		if r["A"].Status != OK {
			t.Errorf("%v", r)
		}
		handled++
		if handled == 3 {
			cancel()
		}
	})
	if err != context.Canceled {
		t.Errorf("%v != %v", err, context.Canceled)
	}
	if handled != 3 || f.calls != 3 {
		t.Errorf("handled %d, fetched %d", handled, f.calls)
	}
}

func TestPollCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := new(countingFetcher)
	err := ScheduleTask(ctx, f, 1, nil, nil, func(Results) { t.Error("handled") })
	if err != context.Canceled {
		t.Errorf("%v != %v", err, context.Canceled)
	}
	if f.calls != 0 {
		t.Errorf("%d fetches", f.calls)
	}
	if err := Poll(context.Background(), f, 0, nil, nil, func(Results) {}); err == nil {
		t.Error("expected an interval error")
	}
}

func TestPollNilHandler(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	f := new(countingFetcher)
	err := Poll(ctx, f, time.Millisecond, []StationID{"A"}, nil, nil)
	if err == nil || err == context.DeadlineExceeded {
		t.Errorf("expected a handler error, got %v", err)
	}
	if f.calls != 0 {
		t.Errorf("%d fetches", f.calls)
	}
	if err := ScheduleTask(ctx, f, 1, nil, nil, nil); err == nil {
		t.Error("ScheduleTask: expected a handler error")
	}
}
