package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot the scheduling engine.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Provider ProviderConfig `yaml:"provider"`
	Logging  LoggingConfig  `yaml:"logging"`
	Cache    CacheConfig    `yaml:"cache"`
	Engine   EngineConfig   `yaml:"engine"`
	Analyzer AnalyzerConfig `yaml:"analyzer"`
	Ranker   RankerConfig   `yaml:"ranker"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// ProviderConfig configures the external schedule-data provider client.
// An empty BaseURL disables upstream fetching; callers must then supply
// busy blocks and history inline.
type ProviderConfig struct {
	BaseURL         string        `yaml:"baseURL"`
	BusyPath        string        `yaml:"busyPath"`
	PreferencesPath string        `yaml:"preferencesPath"`
	HistoryPath     string        `yaml:"historyPath"`
	Timeout         time.Duration `yaml:"timeout"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// CacheConfig controls Redis-backed caching of availability results.
// Caching lives in the service layer; the engine packages stay pure.
type CacheConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Addr            string        `yaml:"addr"`
	Username        string        `yaml:"username"`
	Password        string        `yaml:"password"`
	DB              int           `yaml:"db"`
	DialTimeout     time.Duration `yaml:"dialTimeout"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	MaxRetries      int           `yaml:"maxRetries"`
	TLS             bool          `yaml:"tls"`
	AvailabilityTTL time.Duration `yaml:"availabilityTTL"`
	PatternTTL      time.Duration `yaml:"patternTTL"`
}

// EngineConfig holds availability defaults used when a user declares no
// preference template.
type EngineConfig struct {
	DefaultWorkStart string `yaml:"defaultWorkStart"`
	DefaultWorkEnd   string `yaml:"defaultWorkEnd"`
}

// AnalyzerConfig controls pattern analysis granularity.
type AnalyzerConfig struct {
	BucketMinutes int     `yaml:"bucketMinutes"`
	MinFrequency  float64 `yaml:"minFrequency"`
}

// RankerConfig exposes the suggestion scoring weights. These are
// documented defaults, not fixed constants.
type RankerConfig struct {
	PatternWeight            float64 `yaml:"patternWeight"`
	ConvenienceWeight        float64 `yaml:"convenienceWeight"`
	DurationFitWeight        float64 `yaml:"durationFitWeight"`
	FairnessWeight           float64 `yaml:"fairnessWeight"`
	ComfortStartHour         int     `yaml:"comfortStartHour"`
	ComfortEndHour           int     `yaml:"comfortEndHour"`
	DurationToleranceMinutes int     `yaml:"durationToleranceMinutes"`
	OptimalThreshold         float64 `yaml:"optimalThreshold"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("SYNCUP_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8080",
			GracefulTimeout: 10 * time.Second,
		},
		Provider: ProviderConfig{
			BusyPath:        "/api/v1/users/%s/busy",
			PreferencesPath: "/api/v1/users/%s/preferences",
			HistoryPath:     "/api/v1/users/%s/history",
			Timeout:         5 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Cache: CacheConfig{
			Enabled:         false,
			AvailabilityTTL: 2 * time.Minute,
			PatternTTL:      10 * time.Minute,
			DialTimeout:     2 * time.Second,
			ReadTimeout:     500 * time.Millisecond,
			WriteTimeout:    500 * time.Millisecond,
			MaxRetries:      2,
		},
		Engine: EngineConfig{
			DefaultWorkStart: "08:00",
			DefaultWorkEnd:   "21:00",
		},
		Analyzer: AnalyzerConfig{
			BucketMinutes: 30,
			MinFrequency:  0.2,
		},
		Ranker: RankerConfig{
			PatternWeight:            0.35,
			ConvenienceWeight:        0.25,
			DurationFitWeight:        0.2,
			FairnessWeight:           0.2,
			ComfortStartHour:         7,
			ComfortEndHour:           22,
			DurationToleranceMinutes: 30,
			OptimalThreshold:         0.8,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SYNCUP_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("SYNCUP_PROVIDER_BASE_URL"); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := os.Getenv("SYNCUP_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SYNCUP_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("SYNCUP_CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = strings.EqualFold(v, "true") || strings.EqualFold(v, "1")
	}
	if v := os.Getenv("SYNCUP_CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("SYNCUP_CACHE_USERNAME"); v != "" {
		cfg.Cache.Username = v
	}
	if v := os.Getenv("SYNCUP_CACHE_PASSWORD"); v != "" {
		cfg.Cache.Password = v
	}
	if v := os.Getenv("SYNCUP_CACHE_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Cache.DB = db
		}
	}
	if v := os.Getenv("SYNCUP_CACHE_TLS"); strings.EqualFold(v, "true") || strings.EqualFold(v, "1") {
		cfg.Cache.TLS = true
	}
	if v := os.Getenv("SYNCUP_CACHE_AVAILABILITY_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.AvailabilityTTL = d
		}
	}
	if v := os.Getenv("SYNCUP_CACHE_PATTERN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.PatternTTL = d
		}
	}
	if v := os.Getenv("SYNCUP_DEFAULT_WORK_START"); v != "" {
		cfg.Engine.DefaultWorkStart = v
	}
	if v := os.Getenv("SYNCUP_DEFAULT_WORK_END"); v != "" {
		cfg.Engine.DefaultWorkEnd = v
	}
	if v := os.Getenv("SYNCUP_ANALYZER_BUCKET_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Analyzer.BucketMinutes = n
		}
	}
	if v := os.Getenv("SYNCUP_ANALYZER_MIN_FREQUENCY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Analyzer.MinFrequency = f
		}
	}
}
