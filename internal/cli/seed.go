package cli

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/goccy/go-json"

	"ecocare/internal/model"
	"ecocare/internal/repository/sqlite"
)

// sampleFile is the layout of a samples file: {"samples": [...]}.
type sampleFile struct {
	Samples []sample `json:"samples"`
}

type sample struct {
	DeviceCategory  string `json:"device_category"`
	Brand           string `json:"brand"`
	ModelOrSeries   string `json:"model_or_series"`
	MineralsPresent struct {
		Metals              []string `json:"metals"`
		Semiconductors      []string `json:"semiconductors"`
		BatteryMaterials    []string `json:"battery_materials"`
		StructuralMaterials []string `json:"structural_materials"`
	} `json:"minerals_present"`
	Confidence float64 `json:"confidence"` // 0..1
	Image      string  `json:"image"`
}

// toDetection maps a sample onto a record. Confidence is scaled to a percentage.
func (s sample) toDetection() (model.Detection, error) {
	if strings.TrimSpace(s.Brand) == "" || strings.TrimSpace(s.ModelOrSeries) == "" {
		return model.Detection{}, fmt.Errorf("brand and model_or_series are required")
	}
	if s.Confidence < 0 || s.Confidence > 1 {
		return model.Detection{}, fmt.Errorf("confidence %v is outside 0..1", s.Confidence)
	}

	productType := strings.TrimSpace(s.DeviceCategory)
	if productType == "" {
		productType = model.UnknownProductType
	}

	det := model.Detection{
		ProductType:         productType,
		Brand:               strings.TrimSpace(s.Brand),
		ModelOrSeries:       strings.TrimSpace(s.ModelOrSeries),
		Image:               s.Image,
		Metals:              s.MineralsPresent.Metals,
		Semiconductors:      s.MineralsPresent.Semiconductors,
		BatteryMaterials:    s.MineralsPresent.BatteryMaterials,
		StructuralMaterials: s.MineralsPresent.StructuralMaterials,
		Confidence:          math.Round(s.Confidence*10000) / 100,
	}
	det.Normalize()
	return det, nil
}

func readSamples(path string) ([]model.Detection, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read samples: %w", err)
	}

	var file sampleFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse samples: %w", err)
	}
	if file.Samples == nil {
		return nil, fmt.Errorf("parse samples: %s has no samples array", path)
	}

	detections := make([]model.Detection, 0, len(file.Samples))
	for i, s := range file.Samples {
		det, err := s.toDetection()
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		detections = append(detections, det)
	}
	return detections, nil
}

// Execute implements the go-flags Commander interface for SeedCommand.
func (c *SeedCommand) Execute(args []string) error {
	detections, err := readSamples(c.File)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	repo := sqlite.NewDetectionRepository(db)

	if c.Reset {
		if err := repo.DeleteAll(ctx); err != nil {
			return err
		}
		fmt.Println("Cleared all existing detections")
	}

	if err := repo.InsertBatch(ctx, detections); err != nil {
		return err
	}
	fmt.Printf("Seeded %d detections from %s\n", len(detections), c.File)
	return nil
}
