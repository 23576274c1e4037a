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
	"net/url"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

// StationID identifies a charging station's availability record.
type StationID string

// IDs converts integers, strings and other scalars to station IDs.
func IDs(v ...interface{}) ([]StationID, error) {
	out := make([]StationID, len(v))
	for i, x := range v {
		s, err := cast.ToStringE(x)
		if err != nil {
			return nil, fmt.Errorf("tomtom: station ID %d: %w", i, err)
		}
		out[i] = StationID(s)
	}
	return out, nil
}

// Status is the outcome of fetching one station's availability.
type Status int

const (
	// NotAttempted means the batch stopped before the station was fetched.
	NotAttempted Status = iota
	// OK means the response was fetched and decoded.
	OK
	// TransportFailed means the request could not be completed.
	TransportFailed
	// DecodeFailed means the response body was not valid JSON.
	DecodeFailed
)

func (s Status) String() string {
	switch s {
	case NotAttempted:
		return "not attempted"
	case OK:
		return "ok"
	case TransportFailed:
		return "transport failed"
	case DecodeFailed:
		return "decode failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is one station's availability.
type Result struct {
	Status Status

	// Value is the decoded response when Status is OK.
	Value map[string]interface{}

	// Err is the failure when Status is TransportFailed or DecodeFailed.
	Err error
}

// Results holds the outcome for every requested station.
type Results map[StationID]Result

// IDs returns the stations in r with the given status, sorted.
func (r Results) IDs(s Status) []StationID {
	var out []StationID
	for id, res := range r {
		if res.Status == s {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Progress is told about each station after it has been fetched.
// done counts the stations fetched so far out of total.
type Progress func(done, total int, id StationID, r Result)

// LogProgress returns a Progress that logs each fetch to log.
func LogProgress(log logrus.FieldLogger) Progress {
	return func(done, total int, id StationID, r Result) {
		e := log.WithFields(logrus.Fields{
			"station":  id,
			"status":   r.Status,
			"progress": fmt.Sprintf("%d/%d", done, total),
		})
		if r.Err != nil {
			e.WithError(r.Err).Warn("tomtom: availability")
			return
		}
		e.Info("tomtom: availability")
	}
}

// Availability fetches the availability of each station in turn. A
// failure for one station is recorded in its Result and does not stop
// the batch. If ctx is cancelled the batch stops and the remaining
// stations are left NotAttempted. progress may be nil.
func (c *Client) Availability(ctx context.Context, ids []StationID, progress Progress) Results {
	out := make(Results, len(ids))
	for _, id := range ids {
		out[id] = Result{}
	}
	for i, id := range ids {
		if ctx.Err() != nil {
			break
		}
		q := url.Values{}
		q.Set("chargingAvailability", string(id))
		v, err := c.get(ctx, c.availabilityURL, q)
		var r Result
		switch {
		case err == nil:
			r = Result{Status: OK, Value: v}
		case errors.Is(err, errDecode):
			r = Result{Status: DecodeFailed, Err: err}
		case ctx.Err() != nil:
			// Cancelled mid-request.
			continue
		default:
			r = Result{Status: TransportFailed, Err: err}
		}
		out[id] = r
		if progress != nil {
			progress(i+1, len(ids), id, r)
		}
	}
	return out
}

// Fetcher fetches the availability of a batch of stations.
type Fetcher interface {
	Availability(ctx context.Context, ids []StationID, progress Progress) Results
}
