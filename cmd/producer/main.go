package main

import (
	"bufio"
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/deliverylens/internal/event"
)

var (
	brokers  = pflag.StringSlice("brokers", []string{"localhost:9092"}, "Kafka brokers")
	topic    = pflag.String("topic", "translation-events", "Topic to produce to")
	file     = pflag.String("file", "", "Replay every line of this events file instead of generating events")
	interval = pflag.Duration("interval", time.Second, "Delay between generated events")
)

var (
	languages = []string{"en", "fr", "pt", "de", "es"}
	clients   = []string{"easyjet", "airbnb", "booking", "taxi-eats"}
)

func main() {
	pflag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()
	sugar := logger.Sugar()

	writer := &kafka.Writer{
		Addr:     kafka.TCP(*brokers...),
		Topic:    *topic,
		Balancer: &kafka.LeastBytes{},
	}
	defer func() {
		if err := writer.Close(); err != nil {
			sugar.Errorw("Error closing kafka writer", zap.Error(err))
		}
	}()
	sugar.Infow("Starting producer", "topic", *topic, "brokers", *brokers)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signals
		sugar.Info("Shutdown signal received, stopping producer...")
		cancel()
	}()

	if *file != "" {
		if err := replay(ctx, writer, *file, sugar); err != nil {
			sugar.Errorw("Replay failed", zap.Error(err))
		}
		return
	}
	generate(ctx, writer, *interval, sugar)
}

// replay sends each non-empty line of path as one message, unchanged.
func replay(ctx context.Context, writer *kafka.Writer, path string, sugar *zap.SugaredLogger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var msgs []kafka.Message
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		msgs = append(msgs, kafka.Message{Value: append([]byte(nil), line...)})
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if err := writer.WriteMessages(ctx, msgs...); err != nil {
		return err
	}
	sugar.Infow("Replayed events file", "path", path, "messages", len(msgs))
	return nil
}

func generate(ctx context.Context, writer *kafka.Writer, interval time.Duration, sugar *zap.SugaredLogger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		select {
		case <-ticker.C:
			msgBytes, err := generateSampleEvent(rng).MarshalJSON()
			if err != nil {
				sugar.Errorw("Error marshalling event", zap.Error(err))
				continue
			}

			err = writer.WriteMessages(ctx, kafka.Message{Value: msgBytes})
			if err != nil {
				if ctx.Err() != nil {
					sugar.Info("Context cancelled, exiting message loop.")
					return
				}
				sugar.Errorw("Error writing message", zap.Error(err))
			} else {
				sugar.Debugw("Produced message", "value", string(msgBytes))
			}

		case <-ctx.Done():
			sugar.Info("Producer loop stopped.")
			return
		}
	}
}

// generateSampleEvent returns a translation event stamped now, with an
// occasional slow delivery mixed in.
func generateSampleEvent(rng *rand.Rand) event.Event {
	source := languages[rng.Intn(len(languages))]
	target := languages[rng.Intn(len(languages))]
	for target == source {
		target = languages[rng.Intn(len(languages))]
	}

	duration := int64(10 + rng.Intn(40))
	if rng.Float64() < 0.05 {
		duration += int64(rng.Intn(100))
	}

	return event.Event{
		Timestamp:      time.Now().UTC(),
		ID:             fmt.Sprintf("%020x", rng.Uint64()),
		SourceLanguage: source,
		TargetLanguage: target,
		ClientName:     clients[rng.Intn(len(clients))],
		EventName:      "translation_delivered",
		Duration:       duration,
		NumberWords:    int64(1 + rng.Intn(200)),
	}
}
