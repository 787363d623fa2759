package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecocare/internal/config"
	"ecocare/internal/dto"
	"ecocare/internal/logger"
	"ecocare/internal/metrics"
	"ecocare/internal/repository/sqlite"
	"ecocare/internal/validation"
)

// recordingBus captures published events.
type recordingBus struct {
	mu     sync.Mutex
	events []dto.DetectionEvent
	err    error
}

func (b *recordingBus) Publish(_ context.Context, e dto.DetectionEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.events = append(b.events, e)
	return nil
}

func (b *recordingBus) Subscribe(ctx context.Context, _ func(dto.DetectionEvent)) error {
	<-ctx.Done()
	return ctx.Err()
}

func (b *recordingBus) Close() error { return nil }

func (b *recordingBus) published() []dto.DetectionEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]dto.DetectionEvent(nil), b.events...)
}

func newTestManager(t *testing.T, b *recordingBus, queueSize int) *Manager {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "ingest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{Realtime: config.RealtimeConfig{QueueSize: queueSize, Workers: 2}}
	m := NewManager(sqlite.NewDetectionRepository(db), b, cfg, logger.Nop())
	m.now = func() time.Time { return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC) }
	return m
}

func ptr[T any](v T) *T { return &v }

func TestRecordDetectionAppliesDefaultsAndNotifies(t *testing.T) {
	b := &recordingBus{}
	m := newTestManager(t, b, 10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = m.Serve(ctx) }()

	det, err := m.RecordDetection(ctx, &dto.NewDetection{
		ProductType:   "Smartphone",
		Brand:         "Apple",
		ModelOrSeries: "iPhone 12",
		Metals:        []string{"Gold"},
	})
	require.NoError(t, err)
	assert.NotZero(t, det.ID)
	assert.Equal(t, 100.0, det.Confidence)
	assert.Equal(t, "", det.Image)
	assert.Equal(t, []string{}, det.Semiconductors)
	assert.Equal(t, time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC), det.CreatedAt)

	require.Eventually(t, func() bool { return len(b.published()) == 1 }, time.Second, 5*time.Millisecond)
	event := b.published()[0]
	assert.Equal(t, det.ID, event.ID)
	assert.Equal(t, "Smartphone", event.ProductType)
	assert.Equal(t, "iPhone 12", event.ModelOrSeries)
	assert.Equal(t, 100.0, event.Confidence)
}

func TestRecordDetectionValidation(t *testing.T) {
	m := newTestManager(t, &recordingBus{}, 10)
	ctx := context.Background()

	_, err := m.RecordDetection(ctx, &dto.NewDetection{Brand: "Apple", ModelOrSeries: "iPhone"})
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = m.RecordDetection(ctx, &dto.NewDetection{ProductType: "  ", Brand: "Apple", ModelOrSeries: "iPhone"})
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = m.RecordDetection(ctx, &dto.NewDetection{ProductType: "Phone", Brand: "Apple", ModelOrSeries: "iPhone", Confidence: ptr(150.0)})
	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "confidence", verr.Fields[0].Field)
}

func TestRecordDetectionDropsWhenQueueFull(t *testing.T) {
	b := &recordingBus{}
	m := newTestManager(t, b, 1)
	ctx := context.Background()
	before := testutil.ToFloat64(metrics.NotificationsDropped)

	// No workers are running, so the second notification has nowhere to go.
	first, err := m.RecordDetection(ctx, &dto.NewDetection{ProductType: "Laptop", Brand: "Dell", ModelOrSeries: "XPS"})
	require.NoError(t, err)
	second, err := m.RecordDetection(ctx, &dto.NewDetection{ProductType: "Laptop", Brand: "HP", ModelOrSeries: "Envy"})
	require.NoError(t, err, "a full queue never fails the insert")
	assert.NotEqual(t, first.ID, second.ID)

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.NotificationsDropped))
	assert.Len(t, m.processingQueue, 1)
}

func TestPublishFailureIsCounted(t *testing.T) {
	b := &recordingBus{err: errors.New("redis down")}
	m := newTestManager(t, b, 10)
	before := testutil.ToFloat64(metrics.NotificationsTotal.WithLabelValues("failed"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = m.Serve(ctx) }()

	_, err := m.RecordDetection(ctx, &dto.NewDetection{ProductType: "Tablet", Brand: "Apple", ModelOrSeries: "iPad"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.NotificationsTotal.WithLabelValues("failed")) == before+1
	}, time.Second, 5*time.Millisecond)
}

func TestServeStopsOnCancel(t *testing.T) {
	m := newTestManager(t, &recordingBus{}, 10)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- m.Serve(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
