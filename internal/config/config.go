package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
	Harvest HarvestConfig `yaml:"harvest" envconfig:"HARVEST"`
	Capture CaptureConfig `yaml:"capture" envconfig:"CAPTURE"`
	Tracing TracingConfig `yaml:"tracing" envconfig:"TRACING"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	ExecutableDir string `yaml:"executable_dir" envconfig:"EXECUTABLE_DIR"`
	DataDir       string `yaml:"data_dir" envconfig:"DATA_DIR"`
	LogsDir       string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// HarvestConfig controls how captured payloads reduce to the daily table
type HarvestConfig struct {
	Policy             string `yaml:"policy" envconfig:"POLICY" validate:"policy"`
	TZOffsetHours      int    `yaml:"tz_offset_hours" envconfig:"TZ_OFFSET_HOURS" validate:"gte=-23,lte=23"`
	IncludeRangeTotals bool   `yaml:"include_range_totals" envconfig:"INCLUDE_RANGE_TOTALS"`
	Derived            bool   `yaml:"derived" envconfig:"DERIVED"`
	KeepRaw            bool   `yaml:"keep_raw" envconfig:"KEEP_RAW"`
	Workers            int    `yaml:"workers" envconfig:"WORKERS" validate:"gte=1,lte=64"`
	Glob               string `yaml:"glob" envconfig:"GLOB" validate:"required"`
	MaxDepth           int    `yaml:"max_depth" envconfig:"MAX_DEPTH" validate:"gte=8,lte=10000"`
}

// CaptureConfig controls which captured responses enter the spool
type CaptureConfig struct {
	SaveAll bool `yaml:"save_all" envconfig:"SAVE_ALL"`
	// URLPattern overrides the built-in relevance regex when non-empty
	URLPattern string `yaml:"url_pattern" envconfig:"URL_PATTERN"`
}

// TracingConfig contains span export configuration
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" envconfig:"ENABLED"`
	SampleRate float64 `yaml:"sample_rate" envconfig:"SAMPLE_RATE" validate:"gte=0,lte=1"`
}

// Load loads configuration from defaults, config file and environment variables
func Load() (*Config, error) {
	return LoadWithFile(getConfigFilePath())
}

// LoadWithFile loads configuration using an explicit config file path.
// An empty path skips the file layer entirely.
// Precedence: environment variables > config file > built-in defaults.
func LoadWithFile(configFile string) (*Config, error) {
	cfg := *Default()

	// Overlay from config file if present
	if configFile != "" {
		if FileExists(configFile) {
			if err := loadFromFile(configFile, &cfg); err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
		}
	}

	// Environment variables win over file values
	if err := envconfig.Process("ADS", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Resolve relative paths
	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile overlays configuration from a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}

	return nil
}

// resolvePaths sets up the executable directory
func (c *Config) resolvePaths() error {
	if c.Paths.ExecutableDir != "" {
		return nil
	}

	paths, err := GetPaths()
	if err != nil {
		return fmt.Errorf("failed to get paths: %w", err)
	}
	c.Paths.ExecutableDir = paths.ExecutableDir

	return nil
}

// GetDataDir returns the resolved data directory path
func (c *Config) GetDataDir() string {
	if filepath.IsAbs(c.Paths.DataDir) {
		return c.Paths.DataDir
	}
	return filepath.Join(c.Paths.ExecutableDir, c.Paths.DataDir)
}

// GetSpoolDir returns the resolved spool directory path
func (c *Config) GetSpoolDir() string {
	return filepath.Join(c.GetDataDir(), "spool")
}

// GetReportsDir returns the resolved reports directory path
func (c *Config) GetReportsDir() string {
	return filepath.Join(c.GetDataDir(), "reports")
}

// GetLogsDir returns the resolved logs directory path
func (c *Config) GetLogsDir() string {
	if filepath.IsAbs(c.Paths.LogsDir) {
		return c.Paths.LogsDir
	}
	return filepath.Join(c.Paths.ExecutableDir, c.Paths.LogsDir)
}

// validate validates the configuration using struct tags plus the
// registered reduction-policy validator
func (c *Config) validate() error {
	v := validator.New()

	if err := v.RegisterValidation("policy", isReductionPolicy); err != nil {
		return fmt.Errorf("failed to register policy validator: %w", err)
	}

	if err := v.Struct(c); err != nil {
		return err
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = filepath.Join(DefaultLogsDir, DefaultLogFileName)
	}

	return nil
}

// isReductionPolicy reports whether the field holds a known reduction policy name
func isReductionPolicy(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "sum", "min-nonzero", "min", "max", "median":
		return true
	}
	return false
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	// Check for config file in common locations
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if FileExists(location) {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   "stdout",
			FilePath: filepath.Join(DefaultLogsDir, DefaultLogFileName),
		},
		Paths: PathsConfig{
			DataDir: DefaultDataDir,
			LogsDir: DefaultLogsDir,
		},
		Harvest: HarvestConfig{
			Policy:   DefaultPolicy,
			Workers:  DefaultWorkers,
			Glob:     DefaultSpoolGlob,
			MaxDepth: DefaultMaxDepth,
		},
		Capture: CaptureConfig{},
		Tracing: TracingConfig{
			SampleRate: 1.0,
		},
	}
}
