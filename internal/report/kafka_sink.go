package report

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/deliverylens/internal/config"
	"github.com/sanspareilsmyn/deliverylens/internal/metrics"
)

// messageWriter is the subset of *kafka.Writer used by KafkaSink.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink writes one message per bucket, keyed by the bucket key.
type KafkaSink struct {
	writer messageWriter
	logger *zap.Logger
}

// NewKafkaSink creates a sink writing to cfg.Topic.
func NewKafkaSink(cfg config.KafkaSinkConfig, logger *zap.Logger) *KafkaSink {
	writer := &kafka.Writer{
		Addr:        kafka.TCP(cfg.Brokers...),
		Topic:       cfg.Topic,
		Balancer:    &kafka.Hash{},
		Logger:      kafka.LoggerFunc(logger.Named("kafka-writer").Sugar().Debugf),
		ErrorLogger: kafka.LoggerFunc(logger.Named("kafka-writer-error").Sugar().Errorf),
	}
	logger.Info("Kafka sink created",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", cfg.Topic),
	)
	return newKafkaSink(writer, logger)
}

func newKafkaSink(writer messageWriter, logger *zap.Logger) *KafkaSink {
	return &KafkaSink{writer: writer, logger: logger}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Publish(ctx context.Context, results []metrics.MetricResult) error {
	msgs := make([]kafka.Message, 0, len(results))
	for _, r := range results {
		value, err := NewRecord(r).Line()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrPublishFailed, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(r.Key()),
			Value: value,
			Time:  r.Bucket,
		})
	}

	if err := s.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	s.logger.Debug("Report published to Kafka", zap.Int("messages", len(msgs)))
	return nil
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
