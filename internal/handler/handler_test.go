package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"ecocare/internal/config"
	"ecocare/internal/logger"
	"ecocare/internal/model"
	"ecocare/internal/repository/sqlite"
	"ecocare/internal/service"
	"ecocare/internal/service/analytics"
	"ecocare/internal/service/bus"
)

var testNow = time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

type testEnv struct {
	db         *sqlite.DB
	detections *sqlite.DetectionRepository
	users      *sqlite.UserRepository
	analytics  *analytics.Service
	manager    *service.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "handler.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	detections := sqlite.NewDetectionRepository(db)
	cfg := &config.Config{Realtime: config.RealtimeConfig{QueueSize: 8, Workers: 1}}

	return &testEnv{
		db:         db,
		detections: detections,
		users:      sqlite.NewUserRepository(db),
		analytics: analytics.NewService(detections, logger.Nop(), analytics.Options{
			Location:               time.UTC,
			LowConfidenceThreshold: 60,
			RepeatedScanThreshold:  40,
			Now:                    func() time.Time { return testNow },
		}),
		manager: service.NewManager(detections, bus.NewLocalBus(logger.Nop()), cfg, logger.Nop()),
	}
}

func (e *testEnv) insert(t *testing.T, dets ...model.Detection) {
	t.Helper()
	require.NoError(t, e.detections.InsertBatch(context.Background(), dets))
}

func get(t *testing.T, h http.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func send(t *testing.T, h http.Handler, method, target string, body interface{}, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var raw []byte
	switch b := body.(type) {
	case nil:
	case string:
		raw = []byte(b)
	default:
		var err error
		raw, err = json.Marshal(b)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}
