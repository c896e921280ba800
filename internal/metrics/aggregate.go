package metrics

import (
	"slices"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/sanspareilsmyn/deliverylens/internal/event"
)

// MetricResult is the average duration of every event in one minute bucket.
type MetricResult struct {
	Bucket  time.Time
	Average float64
}

// Key renders the bucket as "yyyy-MM-dd HH:mm:00".
func (r MetricResult) Key() string {
	return BucketKey(r.Bucket)
}

// BucketOf truncates ts to the start of its minute.
func BucketOf(ts time.Time) time.Time {
	return ts.Truncate(time.Minute)
}

// BucketKey formats the minute bucket containing ts.
func BucketKey(ts time.Time) string {
	return BucketOf(ts).Format(event.TimestampLayout)
}

// Aggregate groups events into minute buckets and averages their durations.
// Results follow the order in which each bucket is first seen in events.
func Aggregate(events []event.Event) []MetricResult {
	var order []int64
	durations := make(map[int64]stats.Float64Data)

	for _, e := range events {
		key := BucketOf(e.Timestamp).Unix()
		if _, seen := durations[key]; !seen {
			order = append(order, key)
		}
		durations[key] = append(durations[key], float64(e.Duration))
	}

	results := make([]MetricResult, 0, len(order))
	for _, key := range order {
		results = append(results, MetricResult{
			Bucket:  time.Unix(key, 0).UTC(),
			Average: average(durations[key]),
		})
	}
	return results
}

func average(values stats.Float64Data) float64 {
	mean, err := stats.Mean(values)
	if err != nil {
		// Only returned for empty input.
		return 0
	}
	return mean
}

// SortByBucket orders results chronologically, oldest bucket first.
func SortByBucket(results []MetricResult) {
	slices.SortFunc(results, func(a, b MetricResult) int {
		return a.Bucket.Compare(b.Bucket)
	})
}
