package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/bryanwahyu/emergency-response/internal/domain/quota"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	OpenAI struct {
		APIKey string `yaml:"apiKey"`
		Model  string `yaml:"model"`
	} `yaml:"openai"`

	GoogleMaps struct {
		APIKey string `yaml:"apiKey"`
	} `yaml:"googleMaps"`

	CostProtection struct {
		DemoMode        bool   `yaml:"demoMode"`
		UsageFile       string `yaml:"usageFile"`
		StoreDriver     string `yaml:"storeDriver"` // file | mysql | postgres
		DSN             string `yaml:"dsn"`
		MaxOpenAI       int    `yaml:"maxDailyOpenAIRequests"`
		MaxGoogleMaps   int    `yaml:"maxDailyGoogleRequests"`
		MaxTwilioCalls  int    `yaml:"maxDailyTwilioCalls"`
		MaxTwilioMinute int    `yaml:"maxDailyTwilioMinutes"`
	} `yaml:"costProtection"`

	Cache struct {
		TTLSeconds     int `yaml:"ttlSeconds"`
		CoordPrecision int `yaml:"coordPrecision"`
	} `yaml:"cache"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`
}

// Load baca file config.yaml, lalu override dari environment. A missing file
// is fine: everything has an env fallback or a default.
func Load(path string) (*Config, error) {
	var cfg Config

	// defaults, demo mode on so a fresh checkout never bills anyone
	cfg.Server.Port = 8000
	cfg.CostProtection.DemoMode = true
	cfg.CostProtection.UsageFile = "api_usage.json"
	cfg.CostProtection.StoreDriver = "file"
	cfg.CostProtection.MaxOpenAI = 50
	cfg.CostProtection.MaxGoogleMaps = 100
	cfg.CostProtection.MaxTwilioCalls = 5
	cfg.CostProtection.MaxTwilioMinute = 10
	cfg.Cache.TTLSeconds = 300
	cfg.Cache.CoordPrecision = 2

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	applyEnv(&cfg)
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.OpenAI.Model = v
	}
	if v := os.Getenv("GOOGLE_MAPS_API_KEY"); v != "" {
		cfg.GoogleMaps.APIKey = v
	}
	if v := os.Getenv("DEMO_MODE"); v != "" {
		cfg.CostProtection.DemoMode = v == "true" || v == "1"
	}
	if v := os.Getenv("USAGE_FILE"); v != "" {
		cfg.CostProtection.UsageFile = v
	}
	if v := os.Getenv("COUNTER_STORE_DRIVER"); v != "" {
		cfg.CostProtection.StoreDriver = v
	}
	if v := os.Getenv("COUNTER_STORE_DSN"); v != "" {
		cfg.CostProtection.DSN = v
	}
	envInt("MAX_DAILY_OPENAI_REQUESTS", &cfg.CostProtection.MaxOpenAI)
	envInt("MAX_DAILY_GOOGLE_REQUESTS", &cfg.CostProtection.MaxGoogleMaps)
	envInt("MAX_DAILY_TWILIO_CALLS", &cfg.CostProtection.MaxTwilioCalls)
	envInt("MAX_DAILY_TWILIO_MINUTES", &cfg.CostProtection.MaxTwilioMinute)
}

func envInt(name string, dst *int) {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// DailyLimits builds the quota limits map.
func (c *Config) DailyLimits() quota.DailyLimits {
	return quota.DailyLimits{
		quota.ResourceOpenAI:        c.CostProtection.MaxOpenAI,
		quota.ResourceGoogleMaps:    c.CostProtection.MaxGoogleMaps,
		quota.ResourceTwilioCalls:   c.CostProtection.MaxTwilioCalls,
		quota.ResourceTwilioMinutes: c.CostProtection.MaxTwilioMinute,
	}
}
