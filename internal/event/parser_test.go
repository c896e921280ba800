package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLine = `{"timestamp": "2018-12-26 18:11:08.509654","translation_id": "5aa5b2f39f7254a75aa5","source_language": "en","target_language": "fr","client_name": "airliberty","event_name": "translation_delivered","nr_words": 30, "duration": 20}`

func TestParseLine(t *testing.T) {
	ev, err := ParseLine([]byte(sampleLine))
	require.NoError(t, err)

	assert.Equal(t, time.Date(2018, 12, 26, 18, 11, 8, 0, time.UTC), ev.Timestamp)
	assert.Equal(t, "5aa5b2f39f7254a75aa5", ev.ID)
	assert.Equal(t, "en", ev.SourceLanguage)
	assert.Equal(t, "fr", ev.TargetLanguage)
	assert.Equal(t, "airliberty", ev.ClientName)
	assert.Equal(t, "translation_delivered", ev.EventName)
	assert.Equal(t, int64(20), ev.Duration)
	assert.Equal(t, int64(30), ev.NumberWords)
}

func TestParseLine_AcceptsNegativeAndZeroDuration(t *testing.T) {
	ev, err := ParseLine([]byte(`{"timestamp": "2018-12-26 18:11:08", "translation_id": "a", "duration": -5}`))
	require.NoError(t, err)
	assert.Equal(t, int64(-5), ev.Duration)

	ev, err = ParseLine([]byte(`{"timestamp": "2018-12-26 18:11:08", "translation_id": "b", "duration": 0}`))
	require.NoError(t, err)
	assert.Equal(t, int64(0), ev.Duration)
}

func TestParseLine_Errors(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr error
	}{
		{name: "blank", line: "   ", wantErr: ErrEmptyLine},
		{name: "not json", line: "timestamp=2018-12-26", wantErr: ErrParseFailed},
		{name: "truncated json", line: `{"timestamp": "2018-12-26 18:11:08"`, wantErr: ErrParseFailed},
		{name: "missing duration", line: `{"timestamp": "2018-12-26 18:11:08", "translation_id": "a"}`, wantErr: ErrParseFailed},
		{name: "missing timestamp", line: `{"translation_id": "a", "duration": 3}`, wantErr: ErrParseFailed},
		{name: "bad timestamp", line: `{"timestamp": "26/12/2018 18:11", "duration": 3}`, wantErr: ErrInvalidTimestamp},
		{name: "fractional duration", line: `{"timestamp": "2018-12-26 18:11:08", "duration": 3.5}`, wantErr: ErrParseFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLine([]byte(tt.line))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrParseFailed)
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2018, 12, 26, 18, 11, 8, 0, time.UTC)
	tests := []struct {
		name string
		in   string
	}{
		{name: "plain", in: "2018-12-26 18:11:08"},
		{name: "micro fraction", in: "2018-12-26 18:11:08.509654"},
		{name: "rfc3339", in: "2018-12-26T18:11:08Z"},
		{name: "rfc3339 nano", in: "2018-12-26T18:11:08.999999999Z"},
		{name: "rfc3339 offset", in: "2018-12-26T19:11:08+01:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %s", got)
		})
	}
}

func TestEvent_MarshalJSONParsesBack(t *testing.T) {
	original := Event{
		Timestamp:      time.Date(2018, 12, 26, 18, 23, 19, 0, time.UTC),
		ID:             "evt-1",
		SourceLanguage: "en",
		TargetLanguage: "pt",
		ClientName:     "easyjet",
		EventName:      "translation_delivered",
		Duration:       54,
		NumberWords:    100,
	}

	data, err := original.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"timestamp":"2018-12-26 18:23:19.000000"`)

	parsed, err := ParseLine(data)
	require.NoError(t, err)
	assert.Equal(t, original, parsed)
}

func TestEvent_EqualUsesIDOnly(t *testing.T) {
	a := Event{ID: "x", Duration: 10, Timestamp: time.Unix(0, 0)}
	b := Event{ID: "x", Duration: 99, Timestamp: time.Unix(3600, 0)}
	c := Event{ID: "y", Duration: 10, Timestamp: time.Unix(0, 0)}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}
