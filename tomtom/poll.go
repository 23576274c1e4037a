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
	"fmt"
	"time"
)

// Poll fetches the availability of ids every interval and passes each
// batch to handle. The first fetch happens one interval after Poll is
// called. Ticks that arrive while a fetch is running are dropped. Poll
// blocks until ctx is cancelled and then returns ctx.Err(); a batch
// interrupted by cancellation is not handled.
func Poll(ctx context.Context, f Fetcher, interval time.Duration, ids []StationID, progress Progress, handle func(Results)) error {
	if interval <= 0 {
		return fmt.Errorf("tomtom: invalid polling interval %v", interval)
	}
	if handle == nil {
		return fmt.Errorf("tomtom: nil result handler")
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		res := f.Availability(ctx, ids, progress)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		handle(res)
		select {
		case <-t.C:
		default:
		}
	}
}

// ScheduleTask polls every intervalMinutes minutes; see Poll.
func ScheduleTask(ctx context.Context, f Fetcher, intervalMinutes float64, ids []StationID, progress Progress, handle func(Results)) error {
	return Poll(ctx, f, time.Duration(intervalMinutes*float64(time.Minute)), ids, progress, handle)
}
