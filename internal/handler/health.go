package handler

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports store reachability.
type Pinger interface {
	Ping(ctx context.Context) error
	SchemaVersion(ctx context.Context) (int, error)
}

// ClientCounter reports connected subscribers.
type ClientCounter interface {
	GetClientCount() int
}

type healthResponse struct {
	Status        string `json:"status"`
	Database      string `json:"database"`
	SchemaVersion int    `json:"schema_version"`
	Subscribers   int    `json:"subscribers"`
	Time          string `json:"time"`
}

// HealthHandler answers 200 when the store is reachable and 503 otherwise.
func HealthHandler(db Pinger, hub ClientCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{
			Status:      "ok",
			Database:    "ok",
			Subscribers: hub.GetClientCount(),
			Time:        time.Now().UTC().Format(time.RFC3339),
		}
		status := http.StatusOK

		if err := db.Ping(ctx); err != nil {
			resp.Status, resp.Database = "degraded", err.Error()
			status = http.StatusServiceUnavailable
		} else if v, err := db.SchemaVersion(ctx); err == nil {
			resp.SchemaVersion = v
		}

		respondJSON(w, status, resp)
	}
}

// RootHandler confirms the API is up.
func RootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("EcoCare Backend API Running 🌱"))
	}
}
