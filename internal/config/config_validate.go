package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or console, got %q", c.Log.Format))
	}

	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("analytics.timezone: %w", err))
	}
	if c.Analytics.RecentLimit <= 0 {
		errs = append(errs, errors.New("analytics.recent_limit must be positive"))
	}
	if c.Analytics.HistoryLimit <= 0 {
		errs = append(errs, errors.New("analytics.history_limit must be positive"))
	}
	if !inPercent(c.Analytics.LowConfidenceThreshold) || !inPercent(c.Analytics.RepeatedScanThreshold) {
		errs = append(errs, errors.New("confidence thresholds must be between 0 and 100"))
	} else if c.Analytics.RepeatedScanThreshold > c.Analytics.LowConfidenceThreshold {
		errs = append(errs, errors.New("analytics.repeated_scan_threshold must not exceed analytics.low_confidence_threshold"))
	}

	if c.Realtime.QueueSize <= 0 {
		errs = append(errs, errors.New("realtime.queue_size must be positive"))
	}
	if c.Realtime.Workers <= 0 {
		errs = append(errs, errors.New("realtime.workers must be positive"))
	}
	if c.Realtime.RedisAddr != "" && c.Realtime.RedisChannel == "" {
		errs = append(errs, errors.New("realtime.redis_channel is required when redis_addr is set"))
	}

	if c.RateLimit.IngestRequests < 0 {
		errs = append(errs, errors.New("rate_limit.ingest_requests must not be negative"))
	}
	if c.RateLimit.IngestRequests > 0 && c.RateLimit.IngestWindow <= 0 {
		errs = append(errs, errors.New("rate_limit.ingest_window must be positive"))
	}

	return errors.Join(errs...)
}

func inPercent(v float64) bool {
	return v >= 0 && v <= 100
}
