package dto

// NameValue is one bar of a grouped count chart.
type NameValue struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// StatValue wraps a single card value.
type StatValue struct {
	Value interface{} `json:"value"`
}

// DashboardStats is the payload of the stats cards.
type DashboardStats struct {
	DetectionRate StatValue `json:"detectionRate"`
	TotalItems    StatValue `json:"totalItems"`
	ErrorItems    StatValue `json:"errorItems"`
}

// Alerts summarizes records needing operator attention.
type Alerts struct {
	Unknown       int `json:"unknown"`
	LowConfidence int `json:"lowConfidence"`
	RepeatedScan  int `json:"repeatedScan"`
}

// TrendPoint is one labelled bucket of a time series.
type TrendPoint struct {
	Day   string `json:"day"`
	Value int    `json:"value"`
}

// Timeline is the bucketed count series together with what was counted.
type Timeline struct {
	Data []TrendPoint `json:"data"`
	Type string       `json:"type"`
}
