// Package config reads process settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	DefaultHTTPAddr        = ":8080"
	DefaultGRPCAddr        = ":50051"
	DefaultMySQLDSN        = "root:root@tcp(localhost:3306)/checkoutsim?parseTime=true"
	DefaultRedisAddr       = "localhost:6379"
	DefaultLogMode         = "development"
	DefaultStressScenarios = 50
)

type Config struct {
	LogMode         string
	HTTPAddr        string
	GRPCAddr        string
	RedisAddr       string
	MySQLDSN        string
	CatalogPath     string // empty means the embedded catalog
	StressScenarios int
}

func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Config{
		LogMode:         envOr(getenv, "LOG_MODE", DefaultLogMode),
		HTTPAddr:        envOr(getenv, "HTTP_ADDR", DefaultHTTPAddr),
		GRPCAddr:        envOr(getenv, "GRPC_ADDR", DefaultGRPCAddr),
		RedisAddr:       envOr(getenv, "REDIS_ADDR", DefaultRedisAddr),
		MySQLDSN:        envOr(getenv, "MYSQL_DSN", DefaultMySQLDSN),
		CatalogPath:     strings.TrimSpace(getenv("CATALOG_PATH")),
		StressScenarios: DefaultStressScenarios,
	}

	if raw := strings.TrimSpace(getenv("STRESS_SCENARIOS")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("STRESS_SCENARIOS must be a positive integer, got %q", raw)
		}
		cfg.StressScenarios = n
	}
	return cfg, nil
}

func envOr(getenv func(string) string, key, fallback string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return fallback
}
