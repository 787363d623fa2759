package dto

import (
	"time"

	"ecocare/internal/model"
)

// EventDetectionNew is the realtime event emitted after every insert.
const EventDetectionNew = "detection:new"

// DetectionEvent is the summary of a new record pushed to subscribers.
type DetectionEvent struct {
	ID            int64     `json:"id"`
	ProductType   string    `json:"product_type"`
	Brand         string    `json:"brand"`
	ModelOrSeries string    `json:"model_or_series"`
	Confidence    float64   `json:"confidence"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewDetectionEvent summarizes a stored detection.
func NewDetectionEvent(d *model.Detection) DetectionEvent {
	return DetectionEvent{
		ID:            d.ID,
		ProductType:   d.ProductType,
		Brand:         d.Brand,
		ModelOrSeries: d.ModelOrSeries,
		Confidence:    d.Confidence,
		CreatedAt:     d.CreatedAt,
	}
}
