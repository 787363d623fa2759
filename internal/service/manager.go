package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"ecocare/internal/config"
	"ecocare/internal/dto"
	"ecocare/internal/logger"
	"ecocare/internal/metrics"
	"ecocare/internal/model"
	"ecocare/internal/repository"
	"ecocare/internal/service/bus"
	"ecocare/internal/validation"
)

// ErrMissingFields is returned when a detection lacks its identifying fields.
var ErrMissingFields = errors.New("product_type, brand, and model_or_series are required")

const publishTimeout = 5 * time.Second

// Manager records detections and fans out a notification for each one.
type Manager struct {
	detections repository.DetectionRepository
	bus        bus.Bus
	logger     *logger.Logger

	processingQueue chan dto.DetectionEvent
	numWorkers      int
	now             func() time.Time

	wg sync.WaitGroup
}

func NewManager(detections repository.DetectionRepository, b bus.Bus, cfg *config.Config, log *logger.Logger) *Manager {
	return &Manager{
		detections:      detections,
		bus:             b,
		logger:          log,
		processingQueue: make(chan dto.DetectionEvent, cfg.Realtime.QueueSize),
		numWorkers:      cfg.Realtime.Workers,
		now:             time.Now,
	}
}

// RecordDetection validates and stores a detection, then queues its
// notification. The notification is dropped when the queue is full.
func (m *Manager) RecordDetection(ctx context.Context, req *dto.NewDetection) (*model.Detection, error) {
	if !req.HasRequired() {
		return nil, ErrMissingFields
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	det := req.ToModel(m.now())
	if _, err := m.detections.Insert(ctx, det); err != nil {
		return nil, err
	}
	metrics.DetectionsIngested.WithLabelValues(det.ProductType).Inc()

	select {
	case m.processingQueue <- dto.NewDetectionEvent(det):
		metrics.NotificationQueueDepth.Set(float64(len(m.processingQueue)))
	default:
		metrics.NotificationsDropped.Inc()
		m.logger.Warn().Int64("detection", det.ID).Msg("⚠️ notification queue full, skipping fan-out")
	}

	return det, nil
}

// Serve runs the notification workers until ctx is cancelled.
func (m *Manager) Serve(ctx context.Context) error {
	m.logger.Info().Int("workers", m.numWorkers).Msg("🎬 notification workers started")

	for i := 0; i < m.numWorkers; i++ {
		m.wg.Add(1)
		go m.notificationWorker(ctx, i)
	}
	m.wg.Wait()

	if pending := len(m.processingQueue); pending > 0 {
		m.logger.Warn().Int("pending", pending).Msg("notifications left unsent at shutdown")
	}
	m.logger.Info().Msg("🛑 all notification workers stopped")
	return ctx.Err()
}

func (m *Manager) String() string {
	return "notification-manager"
}

func (m *Manager) notificationWorker(ctx context.Context, workerID int) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-m.processingQueue:
			metrics.NotificationQueueDepth.Set(float64(len(m.processingQueue)))
			m.publish(ctx, event, workerID)
		}
	}
}

func (m *Manager) publish(ctx context.Context, event dto.DetectionEvent, workerID int) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := m.bus.Publish(ctx, event); err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		m.logger.Error().Err(err).Int("worker", workerID).Int64("detection", event.ID).Msg("failed to publish detection")
		return
	}
	metrics.NotificationsTotal.WithLabelValues("published").Inc()
}
