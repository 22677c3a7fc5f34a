package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"go.uber.org/zap"

	r "github.com/fjod/storefront/internal/repository"
)

type MockRepository struct {
	mu           sync.Mutex
	OutboxEvents []*r.OutboxEvent
	GetErr       error
	MarkErr      error
	ProcessedIDs []int
}

func (m *MockRepository) InsertEvent(context.Context, string, string, []byte) error {
	return nil
}

func (m *MockRepository) GetUnprocessedEvents(context.Context, int) ([]*r.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	events := m.OutboxEvents
	m.OutboxEvents = nil
	return events, nil
}

func (m *MockRepository) MarkEventAsProcessed(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MarkErr != nil {
		return m.MarkErr
	}
	m.ProcessedIDs = append(m.ProcessedIDs, id)
	return nil
}

func (m *MockRepository) processed() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.ProcessedIDs...)
}

type MockWriter struct {
	Messages []kafkaGo.Message
	FailKeys map[string]bool
}

func (w *MockWriter) WriteMessages(_ context.Context, msgs ...kafkaGo.Message) error {
	for _, m := range msgs {
		if w.FailKeys[string(m.Key)] {
			return errors.New("broker unavailable")
		}
		w.Messages = append(w.Messages, m)
	}
	return nil
}

func (w *MockWriter) Close() error { return nil }

func newTestPoller(repo r.OutboxRepository, w MessageWriter) *OutboxPoller {
	return &OutboxPoller{
		timeout:   time.Second,
		eventTick: 10 * time.Millisecond,
		repo:      repo,
		writer:    w,
		logger:    zap.NewNop(),
	}
}

func TestProcessUnpublishedEvents_PublishesAndMarks(t *testing.T) {
	repo := &MockRepository{OutboxEvents: []*r.OutboxEvent{
		{ID: 1, AggregateId: "design-1", EventType: r.EventDesignSaved, Payload: []byte(`{"design_id":"design-1"}`)},
		{ID: 2, AggregateId: "contact-1", EventType: r.EventContactSubmitted, Payload: []byte(`{"subject":"hi"}`)},
	}}
	writer := &MockWriter{}

	newTestPoller(repo, writer).processUnpublishedEvents(context.Background())

	require.Len(t, writer.Messages, 2)
	assert.Equal(t, "design-1", string(writer.Messages[0].Key))
	assert.Equal(t, "event_type", writer.Messages[0].Headers[0].Key)
	assert.Equal(t, r.EventDesignSaved, string(writer.Messages[0].Headers[0].Value))
	assert.Equal(t, []int{1, 2}, repo.processed())
}

func TestProcessUnpublishedEvents_FailedPublishNotMarked(t *testing.T) {
	repo := &MockRepository{OutboxEvents: []*r.OutboxEvent{
		{ID: 1, AggregateId: "design-1", EventType: r.EventDesignSaved, Payload: []byte(`{}`)},
		{ID: 2, AggregateId: "design-2", EventType: r.EventDesignSaved, Payload: []byte(`{}`)},
	}}
	writer := &MockWriter{FailKeys: map[string]bool{"design-1": true}}

	newTestPoller(repo, writer).processUnpublishedEvents(context.Background())

	assert.Equal(t, []int{2}, repo.processed())
}

func TestProcessUnpublishedEvents_RepositoryError(t *testing.T) {
	repo := &MockRepository{GetErr: errors.New("db down")}
	writer := &MockWriter{}

	newTestPoller(repo, writer).processUnpublishedEvents(context.Background())

	assert.Empty(t, writer.Messages)
	assert.Empty(t, repo.processed())
}

func TestRun_StopsOnCancel(t *testing.T) {
	repo := &MockRepository{OutboxEvents: []*r.OutboxEvent{
		{ID: 7, AggregateId: "design-7", EventType: r.EventDesignSaved, Payload: []byte(`{}`)},
	}}
	poller := newTestPoller(repo, &MockWriter{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(repo.processed()) == 1 }, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancel")
	}
}

func setupKafka(t *testing.T) string {
	ctx := context.Background()

	kafkaContainer, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	})

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers, "broker address should not be empty")

	return brokers[0]
}

func createTopic(t *testing.T, brokerAddr, topic string) {
	conn, err := kafkaGo.Dial("tcp", brokerAddr)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	controllerConn, err := kafkaGo.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	require.NoError(t, err)
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafkaGo.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		t.Logf("topic creation error (may already exist): %v", err)
	}
}

func TestOutboxPoller_PublishesEventsToKafka(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping kafka integration test in short mode")
	}
	brokerAddr := setupKafka(t)
	createTopic(t, brokerAddr, "storefront-events")

	repo := &MockRepository{OutboxEvents: []*r.OutboxEvent{{
		ID:          1,
		AggregateId: "design-123",
		EventType:   r.EventDesignSaved,
		Payload:     json.RawMessage(`{"design_id":"design-123","base_model":"air-runner"}`),
		CreatedAt:   time.Now(),
	}}}

	poller := NewOutboxPoller(repo, zap.NewNop(), "storefront-events", brokerAddr)
	defer poller.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	go poller.Run(ctx)

	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers:  []string{brokerAddr},
		Topic:    "storefront-events",
		GroupID:  "test-consumer",
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "design-123", string(msg.Key))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, "air-runner", payload["base_model"])

	require.Eventually(t, func() bool { return len(repo.processed()) == 1 }, 10*time.Second, 100*time.Millisecond)
}
