package report

import (
	"context"

	"github.com/sanspareilsmyn/deliverylens/internal/metrics"
)

// Sink publishes a finished report to an external system.
type Sink interface {
	Name() string
	Publish(ctx context.Context, results []metrics.MetricResult) error
	Close() error
}
