// Package config loads service settings from the environment, with an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleetquote/internal/costs"
)

type Config struct {
	Port string

	Mongo struct {
		URI      string
		Database string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	ParamsCacheTTL time.Duration

	Maps struct {
		APIKey string
		Region string
	}

	MQTT struct {
		BrokerURL string
		ClientID  string
		Username  string
		Password  string
		QoS       byte
	}

	JWT struct {
		Secret string
		Expiry time.Duration
	}

	TollPolicy costs.TollPolicy

	Log struct {
		Level  string
		Format string
	}
}

// Load reads files (default ".env") into the environment without
// overriding variables already set, then builds the Config. Missing files
// are ignored.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return Config{}, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds the Config from environment variables only.
func FromEnv() (Config, error) {
	var cfg Config
	var err error

	cfg.Port = envOrDefault("PORT", "8080")

	cfg.Mongo.URI = envOrDefault("MONGO_URI", "mongodb://localhost:27017")
	cfg.Mongo.Database = envOrDefault("MONGO_DB", "fleetquote")

	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	if cfg.Redis.DB, err = envOrDefaultInt("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.ParamsCacheTTL, err = envOrDefaultDuration("PARAMS_CACHE_TTL", 10*time.Minute); err != nil {
		return Config{}, err
	}

	cfg.Maps.APIKey = os.Getenv("GOOGLE_MAPS_API_KEY")
	cfg.Maps.Region = envOrDefault("MAPS_REGION", "hn")

	cfg.MQTT.BrokerURL = os.Getenv("MQTT_BROKER_URL")
	cfg.MQTT.ClientID = envOrDefault("MQTT_CLIENT_ID", "fleetquote")
	cfg.MQTT.Username = os.Getenv("MQTT_USERNAME")
	cfg.MQTT.Password = os.Getenv("MQTT_PASSWORD")
	qos, err := envOrDefaultInt("MQTT_QOS", 1)
	if err != nil {
		return Config{}, err
	}
	if qos < 0 || qos > 2 {
		return Config{}, fmt.Errorf("MQTT_QOS must be 0, 1 or 2, got %d", qos)
	}
	cfg.MQTT.QoS = byte(qos)

	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	if cfg.JWT.Expiry, err = envOrDefaultDuration("JWT_EXPIRY", 24*time.Hour); err != nil {
		return Config{}, err
	}

	tolls, err := envOrDefaultBool("QUOTE_TOLLS_IN_TOTAL", false)
	if err != nil {
		return Config{}, err
	}
	if tolls {
		cfg.TollPolicy = costs.TollsWhenRequested
	}

	cfg.Log.Level = envOrDefault("LOG_LEVEL", "info")
	cfg.Log.Format = envOrDefault("LOG_FORMAT", "text")

	return cfg, nil
}

// NewLogger returns a logrus logger configured from the Log settings.
func (c Config) NewLogger() (*log.Logger, error) {
	logger := log.New()

	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	logger.SetLevel(level)

	switch strings.ToLower(c.Log.Format) {
	case "json":
		logger.SetFormatter(&log.JSONFormatter{})
	case "", "text":
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q", c.Log.Format)
	}
	return logger, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envOrDefaultDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func envOrDefaultBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
