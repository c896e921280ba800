package event

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Layouts tried in order when parsing a timestamp.
var timestampLayouts = []string{
	TimestampLayout, // also matches a trailing .fraction
	time.RFC3339Nano,
	time.RFC3339,
}

// ParseLine decodes a single log line into an Event. Any failure is reported
// as ErrParseFailed; callers treat it as fatal for the whole batch.
func ParseLine(line []byte) (Event, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return Event{}, fmt.Errorf("%w: %w", ErrParseFailed, ErrEmptyLine)
	}

	var rec record
	if err := json.Unmarshal(line, &rec); err != nil {
		return Event{}, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	if err := validate.Struct(rec); err != nil {
		return Event{}, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}

	ts, err := ParseTimestamp(*rec.Timestamp)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}

	return Event{
		Timestamp:      ts,
		ID:             rec.TranslationID,
		SourceLanguage: rec.SourceLanguage,
		TargetLanguage: rec.TargetLanguage,
		ClientName:     rec.ClientName,
		EventName:      rec.EventName,
		Duration:       *rec.Duration,
		NumberWords:    rec.NumberWords,
	}, nil
}

// ParseTimestamp parses a timestamp in any supported layout and returns it in
// UTC with the sub-second part dropped.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(time.Second), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}
