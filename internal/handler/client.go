package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"ecocare/internal/logger"
	ws "ecocare/internal/service/websocket"
)

// NewUpgrader returns a websocket upgrader that accepts the given origins.
// A "*" entry allows any origin.
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	allowAll := false
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[strings.ToLower(origin)] = true
	}

	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return allowAll || origin == "" || allowed[strings.ToLower(origin)]
		},
	}
}

// ViewWebsocketHandler subscribes a dashboard to live detection events.
func ViewWebsocketHandler(hub *ws.HubService, upgrader *websocket.Upgrader, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
			return
		}
		ws.NewClient(hub, conn).Start()
	}
}
