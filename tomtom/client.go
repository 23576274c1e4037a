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

// Package tomtom queries the TomTom search API for electric-vehicle
// charging stations and their live availability.
package tomtom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultSearchURL is the nearby-search endpoint.
	DefaultSearchURL = "https://api.tomtom.com/search/2/nearbySearch/.json"

	// DefaultAvailabilityURL is the charging-availability endpoint.
	DefaultAvailabilityURL = "https://api.tomtom.com/search/2/chargingAvailability.json"

	// DefaultCategorySet is TomTom's category for EV charging stations.
	DefaultCategorySet = 7309
)

// Config configures a Client.
type Config struct {
	// Key is the API access key. It is sent with every request.
	Key string

	// SearchURL and AvailabilityURL override the default endpoints.
	SearchURL, AvailabilityURL string

	// CategorySet is the default search category. Zero means
	// DefaultCategorySet.
	CategorySet int

	// HTTPClient performs the requests. Nil means http.DefaultClient.
	HTTPClient *http.Client

	// Log receives request logs. Nil means the logrus standard logger.
	Log logrus.FieldLogger
}

// Client is a TomTom search API client. It issues one request at a time
// and never retries.
type Client struct {
	key                        string
	searchURL, availabilityURL string
	categorySet                int
	hc                         *http.Client
	log                        logrus.FieldLogger
}

// NewClient returns a client for cfg, filling in defaults.
func NewClient(cfg Config) *Client {
	c := &Client{
		key:             cfg.Key,
		searchURL:       cfg.SearchURL,
		availabilityURL: cfg.AvailabilityURL,
		categorySet:     cfg.CategorySet,
		hc:              cfg.HTTPClient,
		log:             cfg.Log,
	}
	if c.searchURL == "" {
		c.searchURL = DefaultSearchURL
	}
	if c.availabilityURL == "" {
		c.availabilityURL = DefaultAvailabilityURL
	}
	if c.categorySet == 0 {
		c.categorySet = DefaultCategorySet
	}
	if c.hc == nil {
		c.hc = http.DefaultClient
	}
	if c.log == nil {
		c.log = logrus.StandardLogger()
	}
	return c
}

// errDecode marks a response body that is not valid JSON.
var errDecode = errors.New("decoding response")

// get requests base with query q and decodes the JSON response body.
// Decode failures wrap errDecode; any other error is a transport failure.
func (c *Client) get(ctx context.Context, base string, q url.Values) (map[string]interface{}, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("tomtom: parsing URL: %w", err)
	}
	if c.key != "" {
		q.Set("key", c.key)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("tomtom: %w", err)
	}
	resp, err := c.hc.Do(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("tomtom: %w", err)
	}
	defer resp.Body.Close()

	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("tomtom: %w (HTTP %s): %v", errDecode, resp.Status, err)
	}
	return out, nil
}
