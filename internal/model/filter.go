package model

// DetectionFilter contains filtering options for listing detections.
type DetectionFilter struct {
	Window      *Window
	ProductType string // case-insensitive exact match
	Search      string // case-insensitive substring over brand, model and product type
	Limit       int
}

// CountFilter contains filtering options for counting detections.
type CountFilter struct {
	Window          *Window
	ProductType     string  // exact match
	ConfidenceBelow float64 // ignored when zero
}
