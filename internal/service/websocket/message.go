package websocket

// Message types exchanged with subscribers.
const (
	MessageTypePing = "ping"
	MessageTypePong = "pong"
)

// Message is the frame written to every subscriber.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}
