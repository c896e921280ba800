package event

import (
	"encoding/json"
	"time"
)

// TimestampLayout is the layout used in translation event logs. Parsing also
// accepts a fractional seconds suffix, which is discarded.
const TimestampLayout = "2006-01-02 15:04:05"

// Event is one translation event read from the log. Only Timestamp and
// Duration take part in aggregation; the rest is carried through untouched.
type Event struct {
	Timestamp      time.Time
	ID             string
	SourceLanguage string
	TargetLanguage string
	ClientName     string
	EventName      string
	Duration       int64
	NumberWords    int64
}

// Equal reports whether both events share the same translation ID.
func (e Event) Equal(other Event) bool {
	return e.ID == other.ID
}

// record mirrors the on-disk line format.
type record struct {
	Timestamp      *string `json:"timestamp" validate:"required"`
	TranslationID  string  `json:"translation_id"`
	SourceLanguage string  `json:"source_language"`
	TargetLanguage string  `json:"target_language"`
	ClientName     string  `json:"client_name"`
	EventName      string  `json:"event_name"`
	Duration       *int64  `json:"duration" validate:"required"`
	NumberWords    int64   `json:"nr_words"`
}

// MarshalJSON renders the event in the log line format, so that encoded
// events can be fed back through ParseLine.
func (e Event) MarshalJSON() ([]byte, error) {
	ts := e.Timestamp.UTC().Format(TimestampLayout + ".000000")
	duration := e.Duration
	return json.Marshal(record{
		Timestamp:      &ts,
		TranslationID:  e.ID,
		SourceLanguage: e.SourceLanguage,
		TargetLanguage: e.TargetLanguage,
		ClientName:     e.ClientName,
		EventName:      e.EventName,
		Duration:       &duration,
		NumberWords:    e.NumberWords,
	})
}
