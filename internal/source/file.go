package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/deliverylens/internal/event"
)

// maxLineSize bounds a single log line.
const maxLineSize = 1 << 20

// FileLoader reads events from a file with one JSON record per line.
type FileLoader struct {
	fs     afero.Fs
	path   string
	logger *zap.Logger
}

// NewFileLoader creates a loader for path on the given filesystem.
func NewFileLoader(fsys afero.Fs, path string, logger *zap.Logger) *FileLoader {
	return &FileLoader{
		fs:     fsys,
		path:   path,
		logger: logger,
	}
}

// Load returns the events in file order.
func (l *FileLoader) Load(ctx context.Context) ([]event.Event, error) {
	if l.path == "" {
		return nil, ErrPathRequired
	}

	info, err := l.fs.Stat(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, l.path)
		}
		return nil, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrReadFailed, l.path)
	}

	f, err := l.fs.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}
	defer f.Close()

	l.logger.Debug("Reading events file", zap.String("path", l.path), zap.Int64("size_bytes", info.Size()))

	var events []event.Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ev, err := event.ParseLine(scanner.Bytes())
		if err != nil {
			l.logger.Error("Invalid event line, aborting batch",
				zap.String("path", l.path),
				zap.Int("line", lineNo),
				zap.Error(err),
			)
			return nil, fmt.Errorf("%s line %d: %w", l.path, lineNo, err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}

	if len(events) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyInput, l.path)
	}

	l.logger.Info("Events loaded", zap.String("path", l.path), zap.Int("count", len(events)))
	return events, nil
}
