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
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

const (
	// DefaultRadius is the search radius in meters.
	DefaultRadius = 5000

	// DefaultLimit is the maximum number of search results.
	DefaultLimit = 100
)

// SearchRequest is a nearby search around a location.
type SearchRequest struct {
	Lon, Lat float64

	// Radius in meters. Zero means DefaultRadius.
	Radius float64

	// Limit on the number of results. Zero means DefaultLimit.
	Limit int

	// CategorySet restricts the kind of place. Zero means the
	// client's category set.
	CategorySet int
}

func (r SearchRequest) query(categorySet int) url.Values {
	if r.Radius == 0 {
		r.Radius = DefaultRadius
	}
	if r.Limit == 0 {
		r.Limit = DefaultLimit
	}
	if r.CategorySet == 0 {
		r.CategorySet = categorySet
	}
	q := url.Values{}
	q.Set("lon", strconv.FormatFloat(r.Lon, 'f', -1, 64))
	q.Set("lat", strconv.FormatFloat(r.Lat, 'f', -1, 64))
	q.Set("radius", strconv.FormatFloat(r.Radius, 'f', -1, 64))
	q.Set("limit", strconv.Itoa(r.Limit))
	q.Set("categorySet", strconv.Itoa(r.CategorySet))
	return q
}

// Search returns the decoded response of a nearby search. Transport and
// decode failures are returned as errors.
func (c *Client) Search(ctx context.Context, r SearchRequest) (map[string]interface{}, error) {
	res, err := c.get(ctx, c.searchURL, r.query(c.categorySet))
	if err != nil {
		return nil, err
	}
	c.log.WithFields(logrus.Fields{
		"lon":     r.Lon,
		"lat":     r.Lat,
		"results": len(SearchResults(res)),
	}).Debug("tomtom: nearby search")
	return res, nil
}

// Station is the part of a search result needed to place a station.
type Station struct {
	// ID is the availability identifier, if the station reports one.
	ID StationID

	Name     string
	Lon, Lat float64
}

// SearchResults returns the entries of the "results" array of a search
// response.
func SearchResults(res map[string]interface{}) []map[string]interface{} {
	var out []map[string]interface{}
	for _, r := range cast.ToSlice(res["results"]) {
		if m, ok := r.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}

// Stations extracts the located stations from a search response.
// Entries without a position are skipped.
func Stations(res map[string]interface{}) []Station {
	var out []Station
	for _, r := range SearchResults(res) {
		pos := cast.ToStringMap(r["position"])
		if len(pos) == 0 {
			continue
		}
		s := Station{
			Lon:  cast.ToFloat64(pos["lon"]),
			Lat:  cast.ToFloat64(pos["lat"]),
			Name: cast.ToString(cast.ToStringMap(r["poi"])["name"]),
		}
		ds := cast.ToStringMap(r["dataSources"])
		if ca := cast.ToStringMap(ds["chargingAvailability"]); len(ca) > 0 {
			s.ID = StationID(cast.ToString(ca["id"]))
		}
		out = append(out, s)
	}
	return out
}
