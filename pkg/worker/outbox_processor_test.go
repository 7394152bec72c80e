package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carewire/hospital-api/internal/model"
	"github.com/carewire/hospital-api/internal/repository/memory"
	"github.com/carewire/hospital-api/pkg/logger"
	"github.com/carewire/hospital-api/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("workertest", "outbox")

type fakeBroker struct {
	mu        sync.Mutex
	published []string
	fail      bool
}

func (b *fakeBroker) Publish(_ context.Context, channel string, _ interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail {
		return errors.New("broker unavailable")
	}
	b.published = append(b.published, channel)
	return nil
}

func (b *fakeBroker) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, errors.New("not implemented")
}

func (b *fakeBroker) Close() error { return nil }

func (b *fakeBroker) channels() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.published...)
}

func newProcessor(repo *memory.OutboxRepository, broker *fakeBroker) *OutboxProcessor {
	return NewOutboxProcessor(repo, broker, OutboxProcessorConfig{
		BatchSize:     10,
		PollInterval:  time.Second,
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
	}, logger.NewLogger(nil), testMetrics)
}

func TestProcessEventsPublishesAndMarksProcessed(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOutboxRepository()
	broker := &fakeBroker{}

	require.NoError(t, repo.Create(ctx, &model.OutboxEvent{
		EventType: model.EventAppointmentCreated,
		Payload:   []byte(`{"id":"1"}`),
	}))
	require.NoError(t, repo.Create(ctx, &model.OutboxEvent{
		EventType: model.EventInvoiceIssued,
		Payload:   []byte(`{"id":"2"}`),
	}))

	p := newProcessor(repo, broker)
	require.NoError(t, p.processEvents(ctx))

	assert.ElementsMatch(t, []string{model.EventAppointmentCreated, model.EventInvoiceIssued}, broker.channels())

	pending, err := repo.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestProcessEventsMarksFailedAfterRetries(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOutboxRepository()
	broker := &fakeBroker{fail: true}

	require.NoError(t, repo.Create(ctx, &model.OutboxEvent{
		EventType: model.EventReportFiled,
		Payload:   []byte(`{}`),
	}))

	p := newProcessor(repo, broker)
	require.NoError(t, p.processEvents(ctx), "a failed publish is recorded, not returned")

	pending, err := repo.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "failed events leave the pending set")
}

func TestStartStopsOnContextCancel(t *testing.T) {
	repo := memory.NewOutboxRepository()
	broker := &fakeBroker{}
	p := newProcessor(repo, broker)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("processor did not stop on context cancel")
	}
}
