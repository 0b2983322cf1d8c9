// Package config provides centralized configuration management for the
// Ads Pulse toolkit. It handles loading configuration from multiple sources,
// validation, and provides a type-safe API for accessing configuration values
// in both the capture and harvest binaries.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. config.yaml next to the executable
//	3. Built-in defaults (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern ADS_* for namespacing:
//
//	ADS_LOGGING_LEVEL=debug
//	ADS_HARVEST_POLICY=min-nonzero
//	ADS_HARVEST_TZ_OFFSET_HOURS=2
//	ADS_HARVEST_WORKERS=4
//	ADS_CAPTURE_SAVE_ALL=true
//
// # Path Management
//
// The package provides centralized path management through the Paths type,
// which handles all file system paths relative to the executable location:
//
//	paths, err := config.GetPaths()
//	spoolPath := paths.GetSpoolPath("capture_20240305_101500.json")
//	reportPath := paths.GetReportPath("ads_daily_metrics.csv")
//
// # Validation
//
// All configuration is validated at load time with struct tags, including a
// registered custom validator for the reduction-policy enum:
//
//	Policy string `validate:"policy"`   // sum|min-nonzero|min|max|median
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
