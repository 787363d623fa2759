package bus

import (
	"context"

	"ecocare/internal/dto"
	"ecocare/internal/logger"
	"ecocare/internal/service/websocket"
)

// Forwarder pumps bus events into the local websocket hub.
type Forwarder struct {
	bus Bus
	hub *websocket.HubService
	log *logger.Logger
}

func NewForwarder(b Bus, hub *websocket.HubService, log *logger.Logger) *Forwarder {
	return &Forwarder{bus: b, hub: hub, log: log}
}

// Serve runs until ctx is cancelled or the subscription fails.
func (f *Forwarder) Serve(ctx context.Context) error {
	f.log.Info().Msg("📡 event forwarder started")
	return f.bus.Subscribe(ctx, func(event dto.DetectionEvent) {
		f.hub.Broadcast(websocket.Message{Type: dto.EventDetectionNew, Data: event})
	})
}

func (f *Forwarder) String() string {
	return "event-forwarder"
}
