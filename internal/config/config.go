package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "BUSGOV"

// Config represents the complete application configuration
type Config struct {
	Registry  RegistryConfig  `yaml:"registry" envconfig:"REGISTRY"`
	Fetch     FetchConfig     `yaml:"fetch" envconfig:"FETCH"`
	Export    ExportConfig    `yaml:"export" envconfig:"EXPORT"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// RegistryConfig describes the bus.gov.ru endpoints
type RegistryConfig struct {
	BaseURL       string        `yaml:"base_url" envconfig:"BASE_URL" default:"https://bus.gov.ru/public-rest/api" validate:"required,url"`
	RatingBaseURL string        `yaml:"rating_base_url" envconfig:"RATING_BASE_URL" default:"https://bus.gov.ru/public-rating/api" validate:"required,url"`
	InfoCardURL   string        `yaml:"info_card_url" envconfig:"INFO_CARD_URL" default:"https://bus.gov.ru/info-card/" validate:"required,url"`
	SelectedYear  int           `yaml:"selected_year" envconfig:"SELECTED_YEAR" default:"2023" validate:"gte=2000,lte=2100"`
	PageSize      int           `yaml:"page_size" envconfig:"PAGE_SIZE" default:"100000" validate:"gt=0"`
	UserAgent     string        `yaml:"user_agent" envconfig:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/93.0.4577.63 Safari/537.36"`
	Timeout       time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"0s" validate:"gte=0"`
}

// FetchConfig controls the per-organization detail loop
type FetchConfig struct {
	Workers int `yaml:"workers" envconfig:"WORKERS" default:"1" validate:"gte=1,lte=32"`
}

// ExportConfig controls where the workbook goes
type ExportConfig struct {
	OutputDir   string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"."`
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"file" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/busgov-extractor.log"`
}

// TelemetryConfig toggles span export
type TelemetryConfig struct {
	Tracing   bool   `yaml:"tracing" envconfig:"TRACING" default:"false"`
	TraceFile string `yaml:"trace_file" envconfig:"TRACE_FILE"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load loads configuration from environment variables and an optional config file.
// An explicit path wins over the well-known locations; env values win over the file.
func Load(path string) (*Config, error) {
	var cfg Config

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := path
	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs lays file values under env values. An env value equal to its
// default counts as unset, so the file can still override defaults.
func mergeConfigs(fileConfig, envConfig Config) Config {
	def := Default()

	if fileConfig.Registry.BaseURL != "" && envConfig.Registry.BaseURL == def.Registry.BaseURL {
		envConfig.Registry.BaseURL = fileConfig.Registry.BaseURL
	}
	if fileConfig.Registry.RatingBaseURL != "" && envConfig.Registry.RatingBaseURL == def.Registry.RatingBaseURL {
		envConfig.Registry.RatingBaseURL = fileConfig.Registry.RatingBaseURL
	}
	if fileConfig.Registry.InfoCardURL != "" && envConfig.Registry.InfoCardURL == def.Registry.InfoCardURL {
		envConfig.Registry.InfoCardURL = fileConfig.Registry.InfoCardURL
	}
	if fileConfig.Registry.SelectedYear != 0 && envConfig.Registry.SelectedYear == def.Registry.SelectedYear {
		envConfig.Registry.SelectedYear = fileConfig.Registry.SelectedYear
	}
	if fileConfig.Registry.PageSize != 0 && envConfig.Registry.PageSize == def.Registry.PageSize {
		envConfig.Registry.PageSize = fileConfig.Registry.PageSize
	}
	if fileConfig.Registry.UserAgent != "" && envConfig.Registry.UserAgent == def.Registry.UserAgent {
		envConfig.Registry.UserAgent = fileConfig.Registry.UserAgent
	}
	if fileConfig.Registry.Timeout != 0 && envConfig.Registry.Timeout == 0 {
		envConfig.Registry.Timeout = fileConfig.Registry.Timeout
	}
	if fileConfig.Fetch.Workers != 0 && envConfig.Fetch.Workers == def.Fetch.Workers {
		envConfig.Fetch.Workers = fileConfig.Fetch.Workers
	}
	if fileConfig.Export.OutputDir != "" && envConfig.Export.OutputDir == def.Export.OutputDir {
		envConfig.Export.OutputDir = fileConfig.Export.OutputDir
	}
	if fileConfig.Export.MetricsFile != "" && envConfig.Export.MetricsFile == "" {
		envConfig.Export.MetricsFile = fileConfig.Export.MetricsFile
	}
	if fileConfig.Logging.Level != "" && envConfig.Logging.Level == def.Logging.Level {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if fileConfig.Logging.Output != "" && envConfig.Logging.Output == def.Logging.Output {
		envConfig.Logging.Output = fileConfig.Logging.Output
	}
	if fileConfig.Logging.FilePath != "" && envConfig.Logging.FilePath == def.Logging.FilePath {
		envConfig.Logging.FilePath = fileConfig.Logging.FilePath
	}
	if fileConfig.Telemetry.Tracing {
		envConfig.Telemetry.Tracing = true
	}
	if fileConfig.Telemetry.TraceFile != "" && envConfig.Telemetry.TraceFile == "" {
		envConfig.Telemetry.TraceFile = fileConfig.Telemetry.TraceFile
	}

	return envConfig
}

// Validate checks struct constraints and normalizes logging settings
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	// Log records are always JSON.
	c.Logging.Format = "json"

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/busgov-extractor.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
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
		Registry: RegistryConfig{
			BaseURL:       DefaultBaseURL,
			RatingBaseURL: DefaultRatingBaseURL,
			InfoCardURL:   DefaultInfoCardURL,
			SelectedYear:  DefaultSelectedYear,
			PageSize:      DefaultPageSize,
			UserAgent:     DefaultUserAgent,
		},
		Fetch: FetchConfig{
			Workers: 1,
		},
		Export: ExportConfig{
			OutputDir: ".",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "file",
			FilePath: "logs/busgov-extractor.log",
		},
	}
}
