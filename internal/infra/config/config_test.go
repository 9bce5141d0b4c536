package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func mapSource(env map[string]string) source {
	return source{lookup: func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := parse(mapSource(nil))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.StoreDriver != StoreMemory || cfg.HTTPAddr != ":8080" || cfg.DefaultCurrency != "USD" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if len(cfg.RetryBackoff) != 3 || cfg.RetryBackoff[2] != 30*time.Second {
		t.Fatalf("unexpected backoff %v", cfg.RetryBackoff)
	}
	if cfg.JWTSecret == "" {
		t.Fatal("dev config should fall back to a development secret")
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]map[string]string{
		"mongo without uri": {"STORE_DRIVER": "mongo"},
		"unknown driver":    {"STORE_DRIVER": "sqlite"},
		"bad duration":      {"SESSION_TTL": "forever"},
		"bad bool":          {"S3_USE_SSL": "maybe"},
		"bad backoff":       {"RETRY_BACKOFF": "1s,soon"},
		"bad redis db":      {"REDIS_DB": "zero"},
		"prod no secret":    {"APP_ENV": "prod"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := parse(mapSource(env)); err == nil {
				t.Fatalf("expected error for %v", env)
			}
		})
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "homestay.yaml")
	body := "http_addr: \":9090\"\nkafka_brokers: a:9092, b:9092\nstore_driver: mongo\nmongo_uri: mongodb://file\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("ENV_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("MONGO_URI", "mongodb://env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" || cfg.StoreDriver != StoreMongo {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.MongoURI != "mongodb://env" {
		t.Fatalf("env should win, got %s", cfg.MongoURI)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "b:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
}
