package report

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/deliverylens/internal/config"
	"github.com/sanspareilsmyn/deliverylens/internal/metrics"
)

// pointWriter is the subset of api.WriteAPIBlocking used by InfluxSink.
type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// InfluxSink stores each bucket average as a point timestamped at the bucket.
type InfluxSink struct {
	client      influxdb2.Client
	writer      pointWriter
	measurement string
	logger      *zap.Logger
}

// NewInfluxSink creates a sink using the blocking write API.
func NewInfluxSink(cfg config.InfluxSinkConfig, logger *zap.Logger) *InfluxSink {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	logger.Info("InfluxDB sink created",
		zap.String("url", cfg.URL),
		zap.String("org", cfg.Org),
		zap.String("bucket", cfg.Bucket),
		zap.String("measurement", cfg.Measurement),
	)
	return &InfluxSink{
		client:      client,
		writer:      client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		measurement: cfg.Measurement,
		logger:      logger,
	}
}

func (s *InfluxSink) Name() string { return "influxdb" }

func (s *InfluxSink) Publish(ctx context.Context, results []metrics.MetricResult) error {
	points := make([]*write.Point, 0, len(results))
	for _, r := range results {
		points = append(points, influxdb2.NewPoint(
			s.measurement,
			map[string]string{"bucket": r.Key()},
			map[string]interface{}{"average": r.Average},
			r.Bucket,
		))
	}

	if err := s.writer.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	s.logger.Debug("Report written to InfluxDB", zap.Int("points", len(points)))
	return nil
}

func (s *InfluxSink) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	return nil
}
