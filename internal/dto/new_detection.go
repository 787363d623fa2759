package dto

import (
	"strings"
	"time"

	"ecocare/internal/model"
)

// DefaultConfidence is applied when a detection arrives without a score.
const DefaultConfidence = 100

// NewDetection is the payload accepted by the add endpoint.
type NewDetection struct {
	ProductType         string   `json:"product_type" validate:"required"`
	Brand               string   `json:"brand" validate:"required"`
	ModelOrSeries       string   `json:"model_or_series" validate:"required"`
	Metals              []string `json:"metals"`
	Semiconductors      []string `json:"semiconductors"`
	BatteryMaterials    []string `json:"battery_materials"`
	StructuralMaterials []string `json:"structural_materials"`
	Image               string   `json:"image" validate:"max=2048"`
	Confidence          *float64 `json:"confidence" validate:"omitempty,min=0,max=100"`
}

// HasRequired reports whether the identifying fields are all present.
func (n *NewDetection) HasRequired() bool {
	return strings.TrimSpace(n.ProductType) != "" &&
		strings.TrimSpace(n.Brand) != "" &&
		strings.TrimSpace(n.ModelOrSeries) != ""
}

// ToModel builds the record to store, applying defaults.
func (n *NewDetection) ToModel(now time.Time) *model.Detection {
	confidence := float64(DefaultConfidence)
	if n.Confidence != nil {
		confidence = *n.Confidence
	}

	det := &model.Detection{
		ProductType:         strings.TrimSpace(n.ProductType),
		Brand:               strings.TrimSpace(n.Brand),
		ModelOrSeries:       strings.TrimSpace(n.ModelOrSeries),
		Image:               n.Image,
		Metals:              n.Metals,
		Semiconductors:      n.Semiconductors,
		BatteryMaterials:    n.BatteryMaterials,
		StructuralMaterials: n.StructuralMaterials,
		Confidence:          confidence,
		CreatedAt:           now,
	}
	det.Normalize()
	return det
}
