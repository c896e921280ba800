package report

import (
	"context"
	"errors"
	"testing"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWriter struct {
	written []kafka.Message
	err     error
	closed  bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type fakePointWriter struct {
	points []*write.Point
	err    error
}

func (w *fakePointWriter) WritePoint(_ context.Context, points ...*write.Point) error {
	if w.err != nil {
		return w.err
	}
	w.points = append(w.points, points...)
	return nil
}

func TestKafkaSink_Publish(t *testing.T) {
	writer := &fakeWriter{}
	sink := newKafkaSink(writer, zap.NewNop())

	require.NoError(t, sink.Publish(context.Background(), sampleResults()))
	require.NoError(t, sink.Close())

	require.Len(t, writer.written, 3)
	assert.Equal(t, "2018-12-26 19:03:00", string(writer.written[0].Key))
	assert.JSONEq(t, `{"date":"2018-12-26 19:03:00","average_delivery_time":22}`, string(writer.written[0].Value))
	assert.Equal(t, bucket("19:03"), writer.written[0].Time)
	assert.True(t, writer.closed)
	assert.Equal(t, "kafka", sink.Name())
}

func TestKafkaSink_PublishError(t *testing.T) {
	sink := newKafkaSink(&fakeWriter{err: errors.New("leader not available")}, zap.NewNop())

	err := sink.Publish(context.Background(), sampleResults())
	assert.ErrorIs(t, err, ErrPublishFailed)
}

func TestInfluxSink_Publish(t *testing.T) {
	writer := &fakePointWriter{}
	sink := &InfluxSink{writer: writer, measurement: "translation_delivery_time", logger: zap.NewNop()}

	require.NoError(t, sink.Publish(context.Background(), sampleResults()))
	require.NoError(t, sink.Close())

	require.Len(t, writer.points, 3)
	p := writer.points[2]
	assert.Equal(t, "translation_delivery_time", p.Name())
	assert.Equal(t, bucket("18:37"), p.Time())
	require.Len(t, p.FieldList(), 1)
	assert.Equal(t, "average", p.FieldList()[0].Key)
	assert.Equal(t, 20.8, p.FieldList()[0].Value)
	require.Len(t, p.TagList(), 1)
	assert.Equal(t, "2018-12-26 18:37:00", p.TagList()[0].Value)
}

func TestInfluxSink_PublishError(t *testing.T) {
	sink := &InfluxSink{writer: &fakePointWriter{err: errors.New("unauthorized")}, logger: zap.NewNop()}

	err := sink.Publish(context.Background(), sampleResults())
	assert.ErrorIs(t, err, ErrPublishFailed)
}
