package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/deliverylens/internal/config"
)

// fakeReader serves queued messages, then blocks until the context ends.
type fakeReader struct {
	messages  []kafka.Message
	fetchErr  error
	committed []kafka.Message
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if r.fetchErr != nil {
		return kafka.Message{}, r.fetchErr
	}
	if len(r.messages) > 0 {
		m := r.messages[0]
		r.messages = r.messages[1:]
		return m, nil
	}
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func messages(values ...string) []kafka.Message {
	out := make([]kafka.Message, len(values))
	for i, v := range values {
		out[i] = kafka.Message{Value: []byte(v), Offset: int64(i)}
	}
	return out
}

const (
	msgA = `{"timestamp": "2018-12-26 18:11:05.509654","translation_id": "a","duration": 10}`
	msgB = `{"timestamp": "2018-12-26 18:11:45.100023","translation_id": "b","duration": 20}`
	msgC = `{"timestamp": "2018-12-26 18:12:00.000000","translation_id": "c","duration": 30}`
)

func TestKafkaLoader_DrainsUntilIdle(t *testing.T) {
	reader := &fakeReader{messages: messages(msgA, msgB)}
	loader := newKafkaLoader(reader, 0, 20*time.Millisecond, zap.NewNop())

	events, err := loader.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].ID)
	assert.Equal(t, "b", events[1].ID)
	assert.Len(t, reader.committed, 2)
	assert.True(t, reader.closed)
}

func TestKafkaLoader_StopsAtMaxMessages(t *testing.T) {
	reader := &fakeReader{messages: messages(msgA, msgB, msgC)}
	loader := newKafkaLoader(reader, 2, time.Second, zap.NewNop())

	events, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, events, 2)
	assert.Len(t, reader.messages, 1)
}

func TestKafkaLoader_InvalidMessageAbortsWithoutCommit(t *testing.T) {
	reader := &fakeReader{messages: messages(msgA, `{"duration": 5}`, msgB)}
	loader := newKafkaLoader(reader, 0, 20*time.Millisecond, zap.NewNop())

	events, err := loader.Load(context.Background())
	assert.Nil(t, events)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "offset 1")
	assert.Empty(t, reader.committed)
	assert.True(t, reader.closed)
}

func TestKafkaLoader_EmptyTopic(t *testing.T) {
	loader := newKafkaLoader(&fakeReader{}, 0, 10*time.Millisecond, zap.NewNop())

	_, err := loader.Load(context.Background())
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestKafkaLoader_FetchError(t *testing.T) {
	loader := newKafkaLoader(&fakeReader{fetchErr: errors.New("broker down")}, 0, time.Second, zap.NewNop())

	_, err := loader.Load(context.Background())
	assert.ErrorIs(t, err, ErrKafkaFetchFailed)
}

func TestKafkaLoader_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	loader := newKafkaLoader(&fakeReader{}, 0, 0, zap.NewNop())

	_, err := loader.Load(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewKafkaLoader_InvalidConfig(t *testing.T) {
	_, err := NewKafkaLoader(config.KafkaConfig{Topic: "t", GroupID: "g"}, zap.NewNop())
	assert.ErrorIs(t, err, ErrInvalidKafkaInput)
}
