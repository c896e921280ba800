package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/deliverylens/internal/config"
	"github.com/sanspareilsmyn/deliverylens/internal/metrics"
)

// Record is the flat rendering of one MetricResult.
type Record struct {
	Date                string  `json:"date"`
	AverageDeliveryTime float64 `json:"average_delivery_time"`
}

// NewRecord renders a result.
func NewRecord(r metrics.MetricResult) Record {
	return Record{
		Date:                r.Key(),
		AverageDeliveryTime: r.Average,
	}
}

// Line encodes the record as a single JSON line without the trailing newline.
func (r Record) Line() ([]byte, error) {
	return json.Marshal(r)
}

// Reporter prints report lines and appends them to the report file.
type Reporter struct {
	fs        afero.Fs
	directory string
	filename  string
	stdout    io.Writer
	now       func() time.Time
	logger    *zap.Logger
}

// NewReporter creates a reporter. A nil stdout disables printing.
func NewReporter(fsys afero.Fs, cfg config.ReportConfig, stdout io.Writer, logger *zap.Logger) *Reporter {
	return &Reporter{
		fs:        fsys,
		directory: cfg.Directory,
		filename:  cfg.Filename,
		stdout:    stdout,
		now:       time.Now,
		logger:    logger,
	}
}

// OutputPath is the absolute path the next Write appends to.
func (r *Reporter) OutputPath() (string, error) {
	name := r.filename
	if name == "" {
		name = fmt.Sprintf("metrics_%s.json", r.now().UTC().Format("20060102150405"))
	}
	return filepath.Abs(filepath.Join(r.directory, name))
}

// Write renders every result, one line each, and returns the resolved
// report path. Lines are appended if the file already exists.
func (r *Reporter) Write(results []metrics.MetricResult) (string, error) {
	path, err := r.OutputPath()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	lines := make([][]byte, 0, len(results))
	for _, result := range results {
		line, err := NewRecord(result).Line()
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrWriteFailed, err)
		}
		lines = append(lines, append(line, '\n'))
	}

	if err := r.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	f, err := r.fs.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	for _, line := range lines {
		if _, err := f.Write(line); err != nil {
			_ = f.Close()
			return "", fmt.Errorf("%w: %w", ErrWriteFailed, err)
		}
		if r.stdout != nil {
			if _, err := r.stdout.Write(line); err != nil {
				r.logger.Warn("Failed to print report line", zap.Error(err))
			}
		}
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	r.logger.Info("Report written", zap.String("path", path), zap.Int("lines", len(lines)))
	return path, nil
}
