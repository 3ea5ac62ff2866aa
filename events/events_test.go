package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestNewEvent(t *testing.T) {
	e := New(MatchCreated, 12, map[string]string{"status": "PENDING"})

	assert.Equal(t, MatchCreated, e.Name)
	assert.Equal(t, "match-12", e.Room)
	assert.Equal(t, uint(12), e.MatchID)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", e.ID.String())
	assert.WithinDuration(t, time.Now(), e.OccurredAt, time.Second)

	body, err := e.Encode()
	require.NoError(t, err)

	var frame map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &frame))
	assert.Equal(t, "match-created", frame["event"])
	assert.Equal(t, "match-12", frame["room"])
	assert.Equal(t, "PENDING", frame["data"].(map[string]interface{})["status"])
}

func TestFanoutDeliversToEverySinkEvenWhenOneFails(t *testing.T) {
	first := &recorder{err: errors.New("broker down")}
	second := &recorder{}
	fanout := NewFanout(zap.NewNop()).Add("kafka", first).Add("hub", second)

	err := fanout.Publish(context.Background(), New(NewMessage, 1, nil))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "kafka: broker down")
	assert.Equal(t, 1, first.count())
	assert.Equal(t, 1, second.count())
	assert.Equal(t, []string{"kafka", "hub"}, fanout.Sinks())
}

func TestNotifierFuncAndNop(t *testing.T) {
	var got Name
	f := NotifierFunc(func(_ context.Context, e Event) error {
		got = e.Name
		return nil
	})
	require.NoError(t, f.Publish(context.Background(), New(MatchStatusUpdated, 3, nil)))
	assert.Equal(t, MatchStatusUpdated, got)
	assert.NoError(t, Nop{}.Publish(context.Background(), New(MatchStatusUpdated, 3, nil)))
}

func TestAsyncDeliversQueuedEventsBeforeClose(t *testing.T) {
	next := &recorder{}
	async := NewAsync("archive", next, 8, zap.NewNop())

	for i := 0; i < 5; i++ {
		require.NoError(t, async.Publish(context.Background(), New(NewMessage, 1, i)))
	}
	async.Close()

	assert.Equal(t, 5, next.count())
	assert.ErrorIs(t, async.Publish(context.Background(), New(NewMessage, 1, nil)), ErrClosed)
}

type blockingNotifier struct {
	release chan struct{}
}

func (b *blockingNotifier) Publish(context.Context, Event) error {
	<-b.release
	return nil
}

func TestAsyncDropsWhenQueueIsFull(t *testing.T) {
	next := &blockingNotifier{release: make(chan struct{})}
	async := NewAsync("kafka", next, 1, zap.NewNop())

	// the worker takes one event and blocks, the queue holds one more
	var full bool
	for i := 0; i < 10 && !full; i++ {
		if err := async.Publish(context.Background(), New(NewMessage, 1, i)); errors.Is(err, ErrQueueFull) {
			full = true
		}
	}
	assert.True(t, full, "publish should fail fast once the queue is full")

	close(next.release)
	async.Close()
}

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaNotifierPublish(t *testing.T) {
	writer := &fakeWriter{}
	notifier := &KafkaNotifier{writer: writer}

	event := New(MatchStatusUpdated, 9, map[string]string{"status": "ACCEPTED"})
	require.NoError(t, notifier.Publish(context.Background(), event))

	require.Len(t, writer.msgs, 1)
	msg := writer.msgs[0]
	assert.Equal(t, "match-9", string(msg.Key))
	assert.Equal(t, "event", msg.Headers[0].Key)
	assert.Equal(t, "match-status-updated", string(msg.Headers[0].Value))
	assert.Equal(t, event.ID.String(), string(msg.Headers[1].Value))

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.ID, decoded.ID)

	require.NoError(t, notifier.Close())
	assert.True(t, writer.closed)
}

func TestKafkaNotifierWrapsWriteError(t *testing.T) {
	notifier := &KafkaNotifier{writer: &fakeWriter{err: errors.New("leader not available")}}

	err := notifier.Publish(context.Background(), New(NewMessage, 1, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
}
