package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecocare_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ecocare_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Analytics
	AnalyticsQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ecocare_analytics_query_duration_seconds",
			Help:    "Duration of dashboard aggregation queries in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"query", "range"},
	)

	AnalyticsQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecocare_analytics_query_errors_total",
			Help: "Total number of failed aggregation queries",
		},
		[]string{"query"},
	)

	// Ingest and fan-out
	DetectionsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecocare_detections_ingested_total",
			Help: "Total number of stored detections",
		},
		[]string{"product_type"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecocare_notifications_total",
			Help: "Total number of detection notifications by outcome",
		},
		[]string{"status"}, // "published", "failed"
	)

	NotificationsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ecocare_notifications_dropped_total",
			Help: "Notifications dropped because the queue was full",
		},
	)

	NotificationQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ecocare_notification_queue_depth",
			Help: "Notifications waiting for a worker",
		},
	)

	// WebSocket
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ecocare_websocket_connections",
			Help: "Current number of websocket subscribers",
		},
	)

	WSMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecocare_websocket_messages_sent_total",
			Help: "Total number of websocket messages sent",
		},
		[]string{"type"},
	)

	WSClientsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ecocare_websocket_clients_dropped_total",
			Help: "Subscribers disconnected because their send queue was full",
		},
	)
)

// RecordAPIRequest records one served request.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveQuery records the duration of an aggregation query and counts failures.
func ObserveQuery(query, rangeName string, start time.Time, err error) {
	AnalyticsQueryDuration.WithLabelValues(query, rangeName).Observe(time.Since(start).Seconds())
	if err != nil {
		AnalyticsQueryErrors.WithLabelValues(query).Inc()
	}
}
