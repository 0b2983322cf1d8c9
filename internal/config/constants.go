package config

// Application constants shared by the capture and harvest binaries
const (
	// Application Info
	AppName    = "Ads Pulse"
	AppVersion = "1.2.0"

	// File Paths (relative to executable)
	DefaultDataDir    = "data"
	DefaultLogsDir    = "logs"
	DefaultSpoolDir   = "data/spool"
	DefaultReportsDir = "data/reports"

	// Well-known output files
	DailyMetricsCSVName = "ads_daily_metrics.csv"
	PreviewCSVName      = "capture_preview.csv"
	DefaultLogFileName  = "adspulse.log"

	// Harvest defaults
	DefaultPolicy    = "sum"
	DefaultWorkers   = 1
	DefaultMaxDepth  = 200
	DefaultSpoolGlob = "*.json"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)
