package cli

import (
	"context"
	"fmt"

	"ecocare/internal/dto"
	"ecocare/internal/model"
	"ecocare/internal/repository/sqlite"
	"ecocare/internal/service/analytics"
)

type statsReport struct {
	Range  model.Range         `json:"range"`
	Stats  *dto.DashboardStats `json:"stats"`
	Alerts *dto.Alerts         `json:"alerts"`
}

// Execute implements the go-flags Commander interface for StatsCommand.
func (c *StatsCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := analytics.NewService(sqlite.NewDetectionRepository(db), commandLogger(c.globals), analytics.Options{
		Location:               loc,
		RecentLimit:            cfg.Analytics.RecentLimit,
		HistoryLimit:           cfg.Analytics.HistoryLimit,
		LowConfidenceThreshold: cfg.Analytics.LowConfidenceThreshold,
		RepeatedScanThreshold:  cfg.Analytics.RepeatedScanThreshold,
	})

	ctx := context.Background()
	r := model.ParseRange(c.Range, analytics.DefaultStatsRange)

	stats, err := svc.Stats(ctx, r)
	if err != nil {
		return err
	}
	alerts, err := svc.Alerts(ctx, r)
	if err != nil {
		return err
	}

	if c.globals.JSON {
		return printJSON(statsReport{Range: r, Stats: stats, Alerts: alerts})
	}

	fmt.Printf("Range:          %s\n", r)
	fmt.Printf("Detection rate: %v\n", stats.DetectionRate.Value)
	fmt.Printf("Total items:    %v\n", stats.TotalItems.Value)
	fmt.Printf("Unknown items:  %v\n", stats.ErrorItems.Value)
	fmt.Printf("Alerts:         unknown=%d lowConfidence=%d repeatedScan=%d\n",
		alerts.Unknown, alerts.LowConfidence, alerts.RepeatedScan)
	return nil
}
