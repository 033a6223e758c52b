package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"

	defaultHTTPAddr = ":8080"
	defaultScanTTL  = 15 * time.Minute
)

type Config struct {
	HomePath           string
	DBDriver           string
	DBDSN              string
	Location           *time.Location
	RedisAddr          string
	HTTPAddr           string
	LogLevel           string
	LogJSON            bool
	RecognizerManifest string
	ScanTTL            time.Duration
}

// fileConfig mirrors <home>/.detox/config.yaml.
type fileConfig struct {
	Database struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`
	Timezone string `yaml:"timezone"`
	Redis    struct {
		Addr string `yaml:"addr"`
	} `yaml:"redis"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Log struct {
		Level string `yaml:"level"`
		JSON  bool   `yaml:"json"`
	} `yaml:"log"`
	Recognizers struct {
		Manifest string `yaml:"manifest"`
	} `yaml:"recognizers"`
	Scans struct {
		TTL string `yaml:"ttl"`
	} `yaml:"scans"`
}

func New(homePath string) (Config, error) {
	if homePath == "" {
		return Config{}, fmt.Errorf("home path is required")
	}
	stateDir := filepath.Join(homePath, ".detox")
	cfg := Config{
		HomePath:           homePath,
		DBDriver:           DriverSQLite,
		DBDSN:              filepath.Join(stateDir, "detox.db"),
		Location:           time.UTC,
		HTTPAddr:           defaultHTTPAddr,
		LogLevel:           "info",
		RecognizerManifest: filepath.Join(stateDir, "recognizers.yaml"),
		ScanTTL:            defaultScanTTL,
	}

	raw, err := os.ReadFile(filepath.Join(stateDir, "config.yaml"))
	switch {
	case err == nil:
		if err := cfg.apply(raw, homePath); err != nil {
			return Config{}, err
		}
	case !os.IsNotExist(err):
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg.DBDriver = getEnv("DETOX_DB_DRIVER", cfg.DBDriver)
	cfg.DBDSN = getEnv("DETOX_DB_DSN", cfg.DBDSN)
	cfg.RedisAddr = getEnv("DETOX_REDIS_ADDR", cfg.RedisAddr)
	cfg.HTTPAddr = getEnv("DETOX_HTTP_ADDR", cfg.HTTPAddr)
	cfg.LogLevel = getEnv("DETOX_LOG_LEVEL", cfg.LogLevel)
	if tz := os.Getenv("DETOX_TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return Config{}, fmt.Errorf("load timezone %q: %w", tz, err)
		}
		cfg.Location = loc
	}

	switch cfg.DBDriver {
	case DriverSQLite, DriverMySQL:
	default:
		return Config{}, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
	return cfg, nil
}

func (c *Config) apply(raw []byte, homePath string) error {
	var fc fileConfig
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode config: %w", err)
	}
	if fc.Database.Driver != "" {
		c.DBDriver = strings.ToLower(fc.Database.Driver)
	}
	if fc.Database.DSN != "" {
		c.DBDSN = fc.Database.DSN
	}
	if fc.Timezone != "" {
		loc, err := time.LoadLocation(fc.Timezone)
		if err != nil {
			return fmt.Errorf("load timezone %q: %w", fc.Timezone, err)
		}
		c.Location = loc
	}
	if fc.Redis.Addr != "" {
		c.RedisAddr = fc.Redis.Addr
	}
	if fc.HTTP.Addr != "" {
		c.HTTPAddr = fc.HTTP.Addr
	}
	if fc.Log.Level != "" {
		c.LogLevel = fc.Log.Level
	}
	c.LogJSON = fc.Log.JSON
	if fc.Recognizers.Manifest != "" {
		manifest := fc.Recognizers.Manifest
		if !filepath.IsAbs(manifest) {
			manifest = filepath.Join(homePath, manifest)
		}
		c.RecognizerManifest = manifest
	}
	if fc.Scans.TTL != "" {
		ttl, err := time.ParseDuration(fc.Scans.TTL)
		if err != nil || ttl <= 0 {
			return fmt.Errorf("invalid scans.ttl %q", fc.Scans.TTL)
		}
		c.ScanTTL = ttl
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
