package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecocare/internal/config"
	"ecocare/internal/dto"
	"ecocare/internal/logger"
	"ecocare/internal/model"
	"ecocare/internal/repository/sqlite"
	"ecocare/internal/service/bus"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            0,
			ShutdownTimeout: time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Database:  config.DatabaseConfig{Path: filepath.Join(dir, "data", "ecocare.db")},
		Log:       config.LogConfig{Level: "disabled", Format: "json"},
		Analytics: config.AnalyticsConfig{Timezone: "UTC", RecentLimit: 10, HistoryLimit: 50, LowConfidenceThreshold: 60, RepeatedScanThreshold: 40},
		Realtime:  config.RealtimeConfig{QueueSize: 16, Workers: 1},
		Auth:      config.AuthConfig{JWTSecret: "secret"},
		RateLimit: config.RateLimitConfig{IngestRequests: 100, IngestWindow: time.Minute},
	}
}

// startApp runs the supervised services and serves the router on a test server.
func startApp(t *testing.T, cfg *config.Config) (*App, *httptest.Server) {
	t.Helper()
	a, err := NewApp(cfg, logger.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = a.supervisor.Serve(ctx) }()

	srv := httptest.NewServer(a.Handler())
	t.Cleanup(func() {
		srv.Close()
		cancel()
		a.Close()
	})
	return a, srv
}

func TestAddDetectionIsBroadcastToSubscribers(t *testing.T) {
	a, srv := startApp(t, testConfig(t))

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	local, ok := a.bus.(*bus.LocalBus)
	require.True(t, ok, "no redis configured")
	require.Eventually(t, func() bool {
		return a.hubService.GetClientCount() == 1 && local.SubscriberCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	body := `{"product_type":"Smartphone","brand":"Apple","model_or_series":"iPhone 12","metals":["Gold"],"confidence":91}`
	resp, err := http.Post(srv.URL+"/api/dashboard/add", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created model.Detection
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame struct {
		Type string             `json:"type"`
		Data dto.DetectionEvent `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &frame))
	assert.Equal(t, dto.EventDetectionNew, frame.Type)
	assert.Equal(t, created.ID, frame.Data.ID)
	assert.Equal(t, 91.0, frame.Data.Confidence)

	resp, err = http.Get(srv.URL + "/api/dashboard/stats?range=lifetime")
	require.NoError(t, err)
	defer resp.Body.Close()
	var stats map[string]map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, "100%", stats["detectionRate"]["value"])
	assert.Equal(t, float64(1), stats["totalItems"]["value"])
}

func TestProfileRequiresToken(t *testing.T) {
	cfg := testConfig(t)
	a, srv := startApp(t, cfg)

	resp, err := http.Get(srv.URL + "/api/user/profile")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	id, err := sqlite.NewUserRepository(a.db).Insert(context.Background(), &model.User{Name: "Ops", Email: "ops@example.com"})
	require.NoError(t, err)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": id}).SignedString([]byte(cfg.Auth.JWTSecret))
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/user/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var user model.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	assert.Equal(t, "ops@example.com", user.Email)
}

func TestHealthAndMetrics(t *testing.T) {
	_, srv := startApp(t, testConfig(t))

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, float64(2), health["schema_version"])

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewAppFailsOnUnreachableRedis(t *testing.T) {
	cfg := testConfig(t)
	cfg.Realtime.RedisAddr = "127.0.0.1:1"
	cfg.Realtime.RedisChannel = "ecocare:test"

	_, err := NewApp(cfg, logger.Nop())
	assert.Error(t, err)
}

type fakeServer struct {
	listenErr error
	stopped   chan struct{}
}

func (f *fakeServer) ListenAndServe() error {
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.stopped
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(context.Context) error {
	close(f.stopped)
	return nil
}

func TestHTTPServerService(t *testing.T) {
	t.Run("shuts down on cancel", func(t *testing.T) {
		srv := &fakeServer{stopped: make(chan struct{})}
		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- NewHTTPServerService(srv, time.Second).Serve(ctx) }()

		cancel()
		assert.ErrorIs(t, <-errCh, context.Canceled)
	})

	t.Run("reports listen failure", func(t *testing.T) {
		srv := &fakeServer{listenErr: errors.New("address in use"), stopped: make(chan struct{})}
		err := NewHTTPServerService(srv, 0).Serve(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "address in use")
	})
}
