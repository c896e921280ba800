package pipeline

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/deliverylens/internal/config"
	"github.com/sanspareilsmyn/deliverylens/internal/metrics"
)

// Exporter records run metrics in a private registry and optionally pushes
// them to a Prometheus Pushgateway, since a batch run is too short to scrape.
type Exporter struct {
	registry *prometheus.Registry
	pushURL  string
	jobName  string
	logger   *zap.Logger

	eventsLoaded  prometheus.Gauge
	buckets       prometheus.Gauge
	bucketAverage *prometheus.GaugeVec
	runDuration   prometheus.Gauge
	lastSuccess   prometheus.Gauge
}

// RunStats is what a finished run reports to the exporter.
type RunStats struct {
	EventsLoaded int
	Results      []metrics.MetricResult
	Duration     time.Duration
	FinishedAt   time.Time
}

// NewExporter creates an exporter with its own registry.
func NewExporter(cfg config.MetricsConfig, logger *zap.Logger) *Exporter {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	e := &Exporter{
		registry: registry,
		pushURL:  cfg.PushgatewayURL,
		jobName:  cfg.JobName,
		logger:   logger,
		eventsLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "deliverylens_events_loaded_total",
			Help: "Number of events loaded in the last run.",
		}),
		buckets: factory.NewGauge(prometheus.GaugeOpts{
			Name: "deliverylens_buckets",
			Help: "Number of one-minute buckets in the last report.",
		}),
		bucketAverage: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "deliverylens_bucket_average_delivery_time",
			Help: "Average event duration per one-minute bucket in the last report.",
		}, []string{"bucket"}),
		runDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "deliverylens_last_run_duration_seconds",
			Help: "Wall time of the last run.",
		}),
		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "deliverylens_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run.",
		}),
	}

	logger.Debug("Exporter initialized",
		zap.String("pushgateway_url", cfg.PushgatewayURL),
		zap.String("job_name", cfg.JobName),
	)
	return e
}

// Registry exposes the underlying registry.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Observe replaces the gauges with the values of a finished run.
func (e *Exporter) Observe(stats RunStats) {
	e.eventsLoaded.Set(float64(stats.EventsLoaded))
	e.buckets.Set(float64(len(stats.Results)))
	e.bucketAverage.Reset()
	for _, r := range stats.Results {
		e.bucketAverage.WithLabelValues(r.Key()).Set(r.Average)
	}
	e.runDuration.Set(stats.Duration.Seconds())
	e.lastSuccess.Set(float64(stats.FinishedAt.Unix()))
}

// Push sends the registry to the Pushgateway. It is a no-op when no URL is
// configured.
func (e *Exporter) Push(ctx context.Context) error {
	if e.pushURL == "" {
		return nil
	}
	err := push.New(e.pushURL, e.jobName).Gatherer(e.registry).PushContext(ctx)
	if err != nil {
		return err
	}
	e.logger.Debug("Metrics pushed", zap.String("pushgateway_url", e.pushURL))
	return nil
}
