package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/deliverylens/internal/config"
	"github.com/sanspareilsmyn/deliverylens/internal/metrics"
	"github.com/sanspareilsmyn/deliverylens/internal/report"
	"github.com/sanspareilsmyn/deliverylens/internal/source"
)

// Pipeline runs one report: load, compute, write, publish.
type Pipeline struct {
	cfg      *config.Config
	loader   source.Loader
	reporter *report.Reporter
	sinks    []report.Sink
	exporter *Exporter
	logger   *zap.Logger
	now      func() time.Time
}

// Result is the outcome of a successful run.
type Result struct {
	Metrics      []metrics.MetricResult
	OutputPath   string
	EventsLoaded int
	Summary      report.Summary
}

type options struct {
	fs     afero.Fs
	stdout io.Writer
	loader source.Loader
	sinks  []report.Sink
}

// Option customises how New wires the pipeline.
type Option func(*options)

// WithFs sets the filesystem used by the file loader and the reporter.
func WithFs(fsys afero.Fs) Option {
	return func(o *options) { o.fs = fsys }
}

// WithStdout sets where report lines are printed.
func WithStdout(w io.Writer) Option {
	return func(o *options) { o.stdout = w }
}

// WithLoader replaces the configured input source.
func WithLoader(l source.Loader) Option {
	return func(o *options) { o.loader = l }
}

// WithSinks replaces the configured sinks.
func WithSinks(sinks ...report.Sink) Option {
	return func(o *options) { o.sinks = sinks }
}

// New creates and wires up a report pipeline.
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) (*Pipeline, error) {
	initLogger := logger.Named("pipeline.init")
	initLogger.Debug("Creating pipeline components...")

	o := options{fs: afero.NewOsFs(), stdout: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	loader := o.loader
	if loader == nil {
		var err error
		loader, err = newLoader(cfg, o.fs, logger.Named("loader"))
		if err != nil {
			initLogger.Error("Failed to create loader", zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrLoaderCreationFailed, err)
		}
	}
	initLogger.Debug("Loader created", zap.String("driver", cfg.Input.Driver))

	var stdout io.Writer
	if cfg.Report.Stdout {
		stdout = o.stdout
	}
	reporter := report.NewReporter(o.fs, cfg.Report, stdout, logger.Named("reporter"))
	initLogger.Debug("Reporter created", zap.String("directory", cfg.Report.Directory))

	sinks := o.sinks
	if sinks == nil {
		sinks = newSinks(cfg.Sinks, logger)
	}
	initLogger.Debug("Sinks created", zap.Int("count", len(sinks)))

	p := &Pipeline{
		cfg:      cfg,
		loader:   loader,
		reporter: reporter,
		sinks:    sinks,
		exporter: NewExporter(cfg.Metrics, logger.Named("exporter")),
		logger:   logger.Named("pipeline"),
		now:      time.Now,
	}

	initLogger.Info("Pipeline instance created successfully")
	return p, nil
}

func newLoader(cfg *config.Config, fsys afero.Fs, logger *zap.Logger) (source.Loader, error) {
	switch cfg.Input.Driver {
	case "kafka":
		return source.NewKafkaLoader(cfg.Input.Kafka, logger)
	case "file", "":
		return source.NewFileLoader(fsys, cfg.Job.InputPath, logger), nil
	default:
		return nil, fmt.Errorf("unsupported input driver %q", cfg.Input.Driver)
	}
}

func newSinks(cfg config.SinksConfig, logger *zap.Logger) []report.Sink {
	var sinks []report.Sink
	if cfg.Kafka.Enabled {
		sinks = append(sinks, report.NewKafkaSink(cfg.Kafka, logger.Named("sink.kafka")))
	}
	if cfg.InfluxDB.Enabled {
		sinks = append(sinks, report.NewInfluxSink(cfg.InfluxDB, logger.Named("sink.influxdb")))
	}
	return sinks
}

// Exporter returns the run metrics exporter.
func (p *Pipeline) Exporter() *Exporter {
	return p.exporter
}

// Run executes the batch once. Any stage failure aborts the run; nothing is
// published after a failed stage.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	sugar := p.logger.Sugar()
	start := p.now()

	events, err := p.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	sugar.Infow("Events loaded", "count", len(events))

	results, err := metrics.ComputeMetrics(events, p.cfg.Job.WindowMinutes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrComputeFailed, err)
	}
	if p.cfg.Report.Chronological {
		metrics.SortByBucket(results)
	}
	sugar.Infow("Metrics computed",
		"window_minutes", *p.cfg.Job.WindowMinutes,
		"buckets", len(results),
	)

	path, err := p.reporter.Write(results)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReportFailed, err)
	}

	for _, sink := range p.sinks {
		if err := sink.Publish(ctx, results); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrSinkFailed, sink.Name(), err)
		}
		sugar.Debugw("Report published", "sink", sink.Name())
	}

	summary := report.Summarize(results)
	p.logger.Info("Report summary", summary.Field())

	finished := p.now()
	p.exporter.Observe(RunStats{
		EventsLoaded: len(events),
		Results:      results,
		Duration:     finished.Sub(start),
		FinishedAt:   finished,
	})
	if err := p.exporter.Push(ctx); err != nil {
		sugar.Warnw("Failed to push run metrics", zap.Error(err))
	}

	return &Result{
		Metrics:      results,
		OutputPath:   path,
		EventsLoaded: len(events),
		Summary:      summary,
	}, nil
}

// Close releases the sinks.
func (p *Pipeline) Close() error {
	var errs []error
	for _, sink := range p.sinks {
		if err := sink.Close(); err != nil {
			p.logger.Error("Failed to close sink", zap.String("sink", sink.Name()), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
