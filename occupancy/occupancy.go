// Package occupancy computes how many calls hold a channel at once.
//
// The computation is a sweep line: every call with a positive duration
// becomes a +1 event at its start and a -1 event at its end, events are
// ordered by time, and a running sum over them gives the active channel
// count after each event.
package occupancy

import (
	"cdr-analyzer/models"
	"slices"
)

// Events returns the take/release events of the records in processing order.
// Records with a non-positive duration produce no events.
//
// At equal timestamps releases are ordered before takes, so a call ending at
// T and another starting at T never count as overlapping. This matches the
// half-open [start, end) interval of a call.
func Events(records []models.CallRecord) []models.Event {
	events := make([]models.Event, 0, 2*len(records))
	for _, r := range records {
		if r.DurationSeconds <= 0 {
			continue
		}
		events = append(events,
			models.Event{Time: r.Start, Delta: 1},
			models.Event{Time: r.End(), Delta: -1},
		)
	}

	slices.SortStableFunc(events, func(a, b models.Event) int {
		if c := a.Time.Compare(b.Time); c != 0 {
			return c
		}
		return a.Delta - b.Delta
	})
	return events
}

// Compute returns the channel occupancy step function of the records and the
// highest number of simultaneously active channels.
// Empty input, or input with no positive duration, yields no points and a
// peak of 0.
// Time: O(n log n) for the sort + O(n) for the sweep.
func Compute(records []models.CallRecord) ([]models.OccupancyPoint, int) {
	events := Events(records)
	points := make([]models.OccupancyPoint, 0, len(events))

	current, peak := 0, 0
	for _, e := range events {
		current += e.Delta
		points = append(points, models.OccupancyPoint{Time: e.Time, ActiveChannels: current})
		peak = max(peak, current)
	}
	return points, peak
}

// Analyze is Compute packaged as a models.Occupancy.
func Analyze(records []models.CallRecord) models.Occupancy {
	points, peak := Compute(records)
	return models.Occupancy{Points: points, Peak: peak}
}
