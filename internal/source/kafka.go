package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/deliverylens/internal/config"
	"github.com/sanspareilsmyn/deliverylens/internal/event"
)

// messageReader is the subset of *kafka.Reader used by KafkaLoader.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaLoader drains a topic into a single batch. Draining stops when
// maxMessages have been read or the topic stays idle for idleTimeout.
// Offsets are committed only once the whole batch parsed.
type KafkaLoader struct {
	reader      messageReader
	maxMessages int
	idleTimeout time.Duration
	logger      *zap.Logger
}

// NewKafkaLoader creates a consumer-group reader for the configured topic.
func NewKafkaLoader(cfg config.KafkaConfig, logger *zap.Logger) (*KafkaLoader, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" || cfg.GroupID == "" {
		logger.Error("Kafka input configuration validation failed",
			zap.Strings("brokers", cfg.Brokers),
			zap.String("topic", cfg.Topic),
			zap.String("group_id", cfg.GroupID),
		)
		return nil, ErrInvalidKafkaInput
	}

	readerCfg := kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		Logger:      kafka.LoggerFunc(logger.Named("kafka-reader").Sugar().Debugf),
		ErrorLogger: kafka.LoggerFunc(logger.Named("kafka-reader-error").Sugar().Errorf),
	}

	logger.Info("Kafka loader created",
		zap.String("topic", cfg.Topic),
		zap.String("group_id", cfg.GroupID),
		zap.Strings("brokers", cfg.Brokers),
		zap.Int("max_messages", cfg.MaxMessages),
		zap.Duration("idle_timeout", cfg.IdleTimeout),
	)

	return newKafkaLoader(kafka.NewReader(readerCfg), cfg.MaxMessages, cfg.IdleTimeout, logger), nil
}

func newKafkaLoader(reader messageReader, maxMessages int, idleTimeout time.Duration, logger *zap.Logger) *KafkaLoader {
	return &KafkaLoader{
		reader:      reader,
		maxMessages: maxMessages,
		idleTimeout: idleTimeout,
		logger:      logger,
	}
}

// Load drains the topic and closes the reader.
func (l *KafkaLoader) Load(ctx context.Context) ([]event.Event, error) {
	sugar := l.logger.Sugar()
	defer func() {
		if err := l.reader.Close(); err != nil {
			sugar.Errorw("Failed to close Kafka reader cleanly", zap.Error(err))
		}
	}()

	var (
		events   []event.Event
		messages []kafka.Message
	)
	for l.maxMessages <= 0 || len(events) < l.maxMessages {
		m, err := l.fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if errors.Is(err, context.DeadlineExceeded) {
				sugar.Debugw("Topic idle, batch complete", zap.Int("count", len(events)))
				break
			}
			return nil, fmt.Errorf("%w: %w", ErrKafkaFetchFailed, err)
		}

		ev, err := event.ParseLine(m.Value)
		if err != nil {
			sugar.Errorw("Invalid event message, aborting batch",
				zap.Int("partition", m.Partition),
				zap.Int64("offset", m.Offset),
				zap.Error(err),
			)
			return nil, fmt.Errorf("partition %d offset %d: %w", m.Partition, m.Offset, err)
		}
		events = append(events, ev)
		messages = append(messages, m)
	}

	if len(events) == 0 {
		return nil, ErrEmptyInput
	}

	if err := l.reader.CommitMessages(ctx, messages...); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKafkaCommitFailed, err)
	}

	sugar.Infow("Events drained from Kafka", zap.Int("count", len(events)))
	return events, nil
}

func (l *KafkaLoader) fetch(ctx context.Context) (kafka.Message, error) {
	if l.idleTimeout <= 0 {
		return l.reader.FetchMessage(ctx)
	}
	fetchCtx, cancel := context.WithTimeout(ctx, l.idleTimeout)
	defer cancel()
	return l.reader.FetchMessage(fetchCtx)
}
