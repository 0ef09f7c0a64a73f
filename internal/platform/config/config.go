package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	strutil "ansdns/pkg/platform/strings"
)

// Backend names accepted by ANSDNS_STATE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendBolt     = "bolt"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr         string
	Environment  string
	LogFormat    string
	StateBackend string
	GenesisPath  string
	TxTimeout    time.Duration

	Bolt     BoltConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	Kafka    KafkaConfig
	Lookups  LookupConfig
}

// BoltConfig locates the embedded state file.
type BoltConfig struct {
	Path string
}

// RedisConfig configures the shared Redis state backend.
type RedisConfig struct {
	URL          string
	Key          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig configures the SQL state backend.
type PostgresConfig struct {
	DSN          string
	Table        string
	MaxOpenConns int
	MaxIdleConns int
}

// KafkaConfig enables the record event stream when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// LookupConfig configures the external molecule and EXM lookups.
type LookupConfig struct {
	EXMBaseURL string
	Timeout    time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:         getenv("ANSDNS_ADDR", ":8080"),
		Environment:  getenv("ANSDNS_ENV", "local"),
		LogFormat:    getenv("ANSDNS_LOG_FORMAT", "json"),
		StateBackend: getenv("ANSDNS_STATE_BACKEND", BackendMemory),
		GenesisPath:  os.Getenv("ANSDNS_GENESIS"),
		Bolt: BoltConfig{
			Path: getenv("ANSDNS_BOLT_PATH", "ansdns.db"),
		},
		Redis: RedisConfig{
			URL: os.Getenv("ANSDNS_REDIS_URL"),
			Key: getenv("ANSDNS_REDIS_KEY", "ansdns:state"),
		},
		Postgres: PostgresConfig{
			DSN:   os.Getenv("ANSDNS_POSTGRES_DSN"),
			Table: getenv("ANSDNS_POSTGRES_TABLE", "contract_state"),
		},
		Kafka: KafkaConfig{
			Brokers: strutil.SplitList(os.Getenv("ANSDNS_KAFKA_BROKERS"), ","),
			Topic:   getenv("ANSDNS_KAFKA_TOPIC", "ansdns.records"),
		},
		Lookups: LookupConfig{
			EXMBaseURL: getenv("ANSDNS_EXM_BASE_URL", "https://api.exm.dev/read"),
		},
	}

	var err error
	if cfg.TxTimeout, err = durationEnv("ANSDNS_TX_TIMEOUT", 30*time.Second); err != nil {
		return Server{}, err
	}
	if cfg.Lookups.Timeout, err = durationEnv("ANSDNS_LOOKUP_TIMEOUT", 10*time.Second); err != nil {
		return Server{}, err
	}
	if cfg.Redis.DialTimeout, err = durationEnv("ANSDNS_REDIS_DIAL_TIMEOUT", 5*time.Second); err != nil {
		return Server{}, err
	}
	if cfg.Redis.ReadTimeout, err = durationEnv("ANSDNS_REDIS_READ_TIMEOUT", 3*time.Second); err != nil {
		return Server{}, err
	}
	if cfg.Redis.WriteTimeout, err = durationEnv("ANSDNS_REDIS_WRITE_TIMEOUT", 3*time.Second); err != nil {
		return Server{}, err
	}
	if cfg.Redis.PoolSize, err = intEnv("ANSDNS_REDIS_POOL_SIZE", 10); err != nil {
		return Server{}, err
	}
	if cfg.Redis.MinIdleConns, err = intEnv("ANSDNS_REDIS_MIN_IDLE_CONNS", 2); err != nil {
		return Server{}, err
	}
	if cfg.Postgres.MaxOpenConns, err = intEnv("ANSDNS_POSTGRES_MAX_OPEN_CONNS", 10); err != nil {
		return Server{}, err
	}
	if cfg.Postgres.MaxIdleConns, err = intEnv("ANSDNS_POSTGRES_MAX_IDLE_CONNS", 5); err != nil {
		return Server{}, err
	}

	if err := cfg.validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func (c Server) validate() error {
	switch c.StateBackend {
	case BackendMemory, BackendBolt:
	case BackendRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("ANSDNS_REDIS_URL is required for the redis backend")
		}
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("ANSDNS_POSTGRES_DSN is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown state backend %q", c.StateBackend)
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}
