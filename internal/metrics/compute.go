package metrics

import (
	"fmt"

	"github.com/sanspareilsmyn/deliverylens/internal/event"
)

// ComputeMetrics selects the events inside the trailing window and returns
// their per-minute average durations. It never returns a partial result.
func ComputeMetrics(events []event.Event, windowMinutes *int) ([]MetricResult, error) {
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, ErrNoEvents)
	}
	if windowMinutes == nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, ErrWindowRequired)
	}
	if *windowMinutes < 0 {
		return nil, fmt.Errorf("%w: %w: %d", ErrInvalidInput, ErrNegativeWindow, *windowMinutes)
	}
	return Aggregate(Select(events, *windowMinutes)), nil
}
