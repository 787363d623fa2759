package model

import "time"

// UnknownProductType marks a scan the classifier could not identify.
const UnknownProductType = "Unknown"

// Detection represents one logged scan of a device.
type Detection struct {
	ID                  int64     `json:"_id"`
	ProductType         string    `json:"product_type"`
	Brand               string    `json:"brand"`
	ModelOrSeries       string    `json:"model_or_series"`
	Image               string    `json:"image"`
	Metals              []string  `json:"metals"`
	Semiconductors      []string  `json:"semiconductors"`
	BatteryMaterials    []string  `json:"battery_materials"`
	StructuralMaterials []string  `json:"structural_materials"`
	Confidence          float64   `json:"confidence"`
	CreatedAt           time.Time `json:"createdAt"`
}

// ComponentCount returns the number of material tags across all lists.
func (d *Detection) ComponentCount() int {
	return len(d.Metals) + len(d.Semiconductors) + len(d.BatteryMaterials) + len(d.StructuralMaterials)
}

// IsUnknown reports whether the product type is the unknown marker.
func (d *Detection) IsUnknown() bool {
	return d.ProductType == UnknownProductType
}

// Normalize replaces nil material lists with empty ones so they encode as [].
func (d *Detection) Normalize() {
	if d.Metals == nil {
		d.Metals = []string{}
	}
	if d.Semiconductors == nil {
		d.Semiconductors = []string{}
	}
	if d.BatteryMaterials == nil {
		d.BatteryMaterials = []string{}
	}
	if d.StructuralMaterials == nil {
		d.StructuralMaterials = []string{}
	}
}

// DetectionPoint is the projection of a detection used for time bucketing.
type DetectionPoint struct {
	CreatedAt      time.Time
	ProductType    string
	ComponentCount int
}

// GroupCount is a count of detections sharing a product type.
type GroupCount struct {
	Name  string
	Count int
}
