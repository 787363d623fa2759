package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecocare/internal/logger"
)

type fakePinger struct {
	err     error
	version int
}

func (f fakePinger) Ping(context.Context) error { return f.err }

func (f fakePinger) SchemaVersion(context.Context) (int, error) { return f.version, nil }

type fakeCounter int

func (c fakeCounter) GetClientCount() int { return int(c) }

func TestHealthHandler(t *testing.T) {
	rec := get(t, HealthHandler(fakePinger{version: 2}, fakeCounter(3)), "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	decode(t, rec, &body)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(2), body["schema_version"])
	assert.Equal(t, float64(3), body["subscribers"])

	rec = get(t, HealthHandler(fakePinger{err: errors.New("disk gone")}, fakeCounter(0)), "/health")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	decode(t, rec, &body)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "disk gone", body["database"])
}

func TestHealthHandler_RealStore(t *testing.T) {
	env := newTestEnv(t)
	rec := get(t, HealthHandler(env.db, fakeCounter(0)), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRootHandler(t *testing.T) {
	rec := get(t, RootHandler(), "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "EcoCare Backend API Running 🌱", rec.Body.String())
}

func TestLogsHandlers(t *testing.T) {
	dir := t.TempDir()
	log, err := logger.New(logger.Options{Level: "info", Directory: dir, Output: io.Discard})
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })

	log.Info().Msg("detection stored")

	rec := get(t, ShowLogsHandler(log), "/logs")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Body.String(), "detection stored")

	rec = send(t, ClearLogsHandler(log), http.MethodDelete, "/logs", nil, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	raw, err := os.ReadFile(filepath.Join(dir, logger.FileName))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "detection stored")
}

func TestShowLogsHandler_FileLoggingDisabled(t *testing.T) {
	rec := get(t, ShowLogsHandler(logger.Nop()), "/logs")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
