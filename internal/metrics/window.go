package metrics

import (
	"math"
	"slices"
	"time"

	"github.com/sanspareilsmyn/deliverylens/internal/event"
)

// maxWindowMinutes is the largest window expressible as a time.Duration.
const maxWindowMinutes = math.MaxInt64 / int64(time.Minute)

// Select returns the events that fall inside the trailing window of
// windowMinutes minutes ending at the most recent event, newest first.
// The lower bound is inclusive. The input slice is left untouched.
func Select(events []event.Event, windowMinutes int) []event.Event {
	if len(events) == 0 {
		return nil
	}

	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b event.Event) int {
		return b.Timestamp.Compare(a.Timestamp)
	})

	if int64(windowMinutes) > maxWindowMinutes {
		return sorted
	}

	cutoff := Cutoff(sorted[0].Timestamp, windowMinutes)
	end := slices.IndexFunc(sorted, func(e event.Event) bool {
		return e.Timestamp.Before(cutoff)
	})
	if end < 0 {
		return sorted
	}
	return slices.Clip(sorted[:end])
}

// Cutoff is the oldest timestamp still inside a window anchored at anchor.
func Cutoff(anchor time.Time, windowMinutes int) time.Time {
	return anchor.Add(-time.Duration(windowMinutes) * time.Minute)
}
