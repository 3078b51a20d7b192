package event

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

	"github.com/khoahotran/skillpath/internal/application/service"
	"github.com/khoahotran/skillpath/internal/config"
	"github.com/khoahotran/skillpath/pkg/logger"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestPublishProfileEvent(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaProducerClient{writer: w, logger: logger.NewNop()}
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	err := p.PublishProfileEvent(t.Context(), service.ProfileEvent{
		EventType:  service.ProfileEventPublished,
		ShareID:    "abc",
		OccurredAt: at,
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "abc", string(w.msgs[0].Key))
	assert.JSONEq(t, `{"event_type":"profile.published","share_id":"abc","occurred_at":"2025-03-01T10:00:00Z"}`, string(w.msgs[0].Value))

	w.err = errors.New("broker down")
	err = p.PublishProfileEvent(t.Context(), service.ProfileEvent{ShareID: "abc"})
	assert.ErrorContains(t, err, "broker down")
}

func TestNewEventPublisher_NoBrokers(t *testing.T) {
	p := NewEventPublisher(config.Config{}, logger.NewNop())
	_, ok := p.(*nopPublisher)
	require.True(t, ok)
	assert.NoError(t, p.PublishProfileEvent(t.Context(), service.ProfileEvent{ShareID: "x"}))
}

type fakeReader struct {
	mu        sync.Mutex
	msgs      []kafka.Message
	committed []string
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		r.cancel()
		return kafka.Message{}, context.Canceled
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, string(m.Key))
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func TestConsumer_CommitsHandledAndMalformed(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	ok, _ := json.Marshal(service.ProfileEvent{EventType: service.ProfileEventSyncPending, ShareID: "good"})
	bad, _ := json.Marshal(service.ProfileEvent{EventType: service.ProfileEventSyncPending, ShareID: "fails"})
	r := &fakeReader{
		msgs: []kafka.Message{
			{Key: []byte("good"), Value: ok},
			{Key: []byte("junk"), Value: []byte("{")},
			{Key: []byte("fails"), Value: bad},
		},
		cancel: cancel,
	}
	c := &Consumer{reader: r, logger: logger.NewNop()}

	var seen []string
	err := c.Run(ctx, func(_ context.Context, e service.ProfileEvent) error {
		seen = append(seen, e.ShareID)
		if e.ShareID == "fails" {
			return errors.New("remote still down")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"good", "fails"}, seen)
	assert.Equal(t, []string{"good", "junk"}, r.committed)
}
