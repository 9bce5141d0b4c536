package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

// Config aggregates application configuration. Values come from environment
// variables, then the optional YAML file named by CONFIG_FILE, then defaults.
type Config struct {
	Env                string
	HTTPAddr           string
	StoreDriver        string
	MongoURI           string
	MongoDB            string
	KafkaBrokers       []string
	KafkaTopicPrefix   string
	KafkaConsumerGroup string
	IdempotencyTTL     time.Duration
	OutboxPollInterval time.Duration
	RetryBackoff       []time.Duration
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	AMQPURL            string
	AMQPQueue          string
	JWTSecret          string
	JWTIssuer          string
	SessionTTL         time.Duration
	S3Endpoint         string
	S3PublicEndpoint   string
	S3AccessKey        string
	S3SecretKey        string
	S3Bucket           string
	S3UseSSL           bool
	DefaultCurrency    string
	AdminEmail         string
	AdminPassword      string
}

// Load reads an optional .env file into the environment and parses the configuration.
func Load() (Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}
	src, err := newSource(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return Config{}, err
	}
	return parse(src)
}

// Dev reports whether the process runs in a local development environment.
func (c Config) Dev() bool {
	return c.Env == "dev" || c.Env == "local"
}

func parse(src source) (Config, error) {
	cfg := Config{
		Env:                src.get("APP_ENV", "dev"),
		HTTPAddr:           src.get("HTTP_ADDR", ":8080"),
		StoreDriver:        strings.ToLower(src.get("STORE_DRIVER", StoreMemory)),
		MongoURI:           src.get("MONGO_URI", ""),
		MongoDB:            src.get("MONGO_DB", "homestay"),
		KafkaTopicPrefix:   src.get("KAFKA_TOPIC_PREFIX", ""),
		KafkaConsumerGroup: src.get("KAFKA_CONSUMER_GROUP", "homestay-ratings"),
		RedisAddr:          src.get("REDIS_ADDR", ""),
		RedisPassword:      src.get("REDIS_PASSWORD", ""),
		AMQPURL:            src.get("AMQP_URL", ""),
		AMQPQueue:          src.get("AMQP_QUEUE", "homestay.notifications"),
		JWTSecret:          src.get("JWT_SECRET", ""),
		JWTIssuer:          src.get("JWT_ISSUER", "homestay"),
		S3Endpoint:         src.get("S3_ENDPOINT", ""),
		S3PublicEndpoint:   src.get("S3_PUBLIC_ENDPOINT", ""),
		S3AccessKey:        src.get("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey:        src.get("S3_SECRET_KEY", "minioadmin"),
		S3Bucket:           src.get("S3_BUCKET", "homestay-photos"),
		DefaultCurrency:    strings.ToUpper(src.get("DEFAULT_CURRENCY", "USD")),
		AdminEmail:         src.get("ADMIN_EMAIL", ""),
		AdminPassword:      src.get("ADMIN_PASSWORD", ""),
	}
	if brokers := src.get("KAFKA_BROKERS", ""); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	var err error
	if cfg.IdempotencyTTL, err = src.duration("IDEMP_TTL", 168*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.OutboxPollInterval, err = src.duration("OUTBOX_POLL_INTERVAL", 500*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = src.duration("SESSION_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.S3UseSSL, err = src.boolean("S3_USE_SSL", false); err != nil {
		return Config{}, err
	}
	if raw := src.get("REDIS_DB", ""); raw != "" {
		if cfg.RedisDB, err = strconv.Atoi(raw); err != nil {
			return Config{}, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
	}
	for _, raw := range strings.Split(src.get("RETRY_BACKOFF", "1s,5s,30s"), ",") {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		d, err := time.ParseDuration(val)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RETRY_BACKOFF component %q: %w", raw, err)
		}
		cfg.RetryBackoff = append(cfg.RetryBackoff, d)
	}
	if cfg.S3PublicEndpoint == "" {
		cfg.S3PublicEndpoint = cfg.S3Endpoint
	}

	switch cfg.StoreDriver {
	case StoreMemory:
	case StoreMongo:
		if cfg.MongoURI == "" {
			return Config{}, fmt.Errorf("MONGO_URI is required when STORE_DRIVER=mongo")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.JWTSecret == "" {
		if !cfg.Dev() {
			return Config{}, fmt.Errorf("JWT_SECRET is required outside dev")
		}
		cfg.JWTSecret = "dev-only-secret"
	}
	return cfg, nil
}

// source resolves keys from the environment first and the YAML file second.
type source struct {
	lookup func(string) (string, bool)
	file   map[string]string
}

func newSource(path string) (source, error) {
	src := source{lookup: os.LookupEnv}
	if path == "" {
		return src, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return source{}, fmt.Errorf("read config file: %w", err)
	}
	file := map[string]any{}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &file); err != nil {
		return source{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	src.file = make(map[string]string, len(file))
	for k, v := range file {
		if v != nil {
			src.file[strings.ToUpper(strings.TrimSpace(k))] = fmt.Sprint(v)
		}
	}
	return src, nil
}

func (s source) get(key, def string) string {
	if s.lookup != nil {
		if v, ok := s.lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	if v, ok := s.file[key]; ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (s source) duration(key string, def time.Duration) (time.Duration, error) {
	raw := s.get(key, "")
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func (s source) boolean(key string, def bool) (bool, error) {
	raw := s.get(key, "")
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(raw) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}
