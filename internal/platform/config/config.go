package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full process configuration. Values come from defaults, then
// the optional YAML file named by DELPHI_CONFIG, then environment variables.
type Config struct {
	Server    Server      `yaml:"server"`
	Database  Database    `yaml:"database"`
	Redis     RedisConfig `yaml:"redis"`
	Kafka     Kafka       `yaml:"kafka"`
	RateLimit RateLimit   `yaml:"rate_limit"`
	Log       Log         `yaml:"log"`
}

// Server captures HTTP server level configuration and ledger policy switches.
type Server struct {
	Addr              string        `yaml:"addr"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	JWTSigningKey     string        `yaml:"jwt_signing_key"`
	TrustCallerHeader bool          `yaml:"trust_caller_header"`
	// StrictSignerAuthority rejects signatures from accounts that own no
	// property types. Off by default to keep the permissive behaviour.
	StrictSignerAuthority bool `yaml:"strict_signer_authority"`
	// StrictDocumentCIDs requires requirement and claim addresses to be CIDs.
	StrictDocumentCIDs bool `yaml:"strict_document_cids"`
}

// Database configures the PostgreSQL ledger. Empty URL selects in-memory stores.
type Database struct {
	URL             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// RedisConfig configures the account directory. Empty URL selects the in-memory directory.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Kafka configures notification delivery from the audit outbox.
// Relaying only runs when brokers are set and the ledger is on PostgreSQL.
type Kafka struct {
	Brokers       []string      `yaml:"brokers"`
	AuditTopic    string        `yaml:"audit_topic"`
	Partitions    int32         `yaml:"partitions"`
	Replication   int16         `yaml:"replication"`
	RelayInterval time.Duration `yaml:"relay_interval"`
	RelayBatch    int           `yaml:"relay_batch"`
}

// RateLimit bounds mutating requests per caller.
type RateLimit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type Log struct {
	Level string `yaml:"level"`
}

// Default returns the development configuration.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
			JWTSigningKey:   "dev-secret-key-change-in-production",
		},
		Database: Database{
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: Kafka{
			AuditTopic:    "delphi.ledger.events",
			Partitions:    3,
			Replication:   1,
			RelayInterval: time.Second,
			RelayBatch:    100,
		},
		RateLimit: RateLimit{RPS: 20, Burst: 40},
		Log:       Log{Level: "info"},
	}
}

// Load builds the configuration from defaults, the optional YAML file and the environment.
func Load() (Config, error) {
	cfg := Default()
	if path := os.Getenv("DELPHI_CONFIG"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type lookupFunc func(string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	setString(lookup, "DELPHI_ADDR", &cfg.Server.Addr)
	setString(lookup, "JWT_SIGNING_KEY", &cfg.Server.JWTSigningKey)
	setString(lookup, "DATABASE_URL", &cfg.Database.URL)
	setString(lookup, "REDIS_URL", &cfg.Redis.URL)
	setString(lookup, "KAFKA_AUDIT_TOPIC", &cfg.Kafka.AuditTopic)
	setString(lookup, "LOG_LEVEL", &cfg.Log.Level)

	if v, ok := lookup("KAFKA_BROKERS"); ok && v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}

	var err error
	if err = setBool(lookup, "TRUST_CALLER_HEADER", &cfg.Server.TrustCallerHeader); err != nil {
		return err
	}
	if err = setBool(lookup, "STRICT_SIGNER_AUTHORITY", &cfg.Server.StrictSignerAuthority); err != nil {
		return err
	}
	if err = setBool(lookup, "STRICT_DOCUMENT_CIDS", &cfg.Server.StrictDocumentCIDs); err != nil {
		return err
	}
	if err = setDuration(lookup, "SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout); err != nil {
		return err
	}
	if err = setDuration(lookup, "KAFKA_RELAY_INTERVAL", &cfg.Kafka.RelayInterval); err != nil {
		return err
	}
	if err = setInt(lookup, "DATABASE_MAX_OPEN_CONNS", &cfg.Database.MaxOpenConns); err != nil {
		return err
	}
	if err = setInt(lookup, "REDIS_POOL_SIZE", &cfg.Redis.PoolSize); err != nil {
		return err
	}
	if err = setInt(lookup, "RATE_LIMIT_BURST", &cfg.RateLimit.Burst); err != nil {
		return err
	}
	if v, ok := lookup("RATE_LIMIT_RPS"); ok && v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		cfg.RateLimit.RPS = rps
	}
	return nil
}

func setString(lookup lookupFunc, key string, dst *string) {
	if v, ok := lookup(key); ok && v != "" {
		*dst = v
	}
}

func setBool(lookup lookupFunc, key string, dst *bool) error {
	v, ok := lookup(key)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func setInt(lookup lookupFunc, key string, dst *int) error {
	v, ok := lookup(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setDuration(lookup lookupFunc, key string, dst *time.Duration) error {
	v, ok := lookup(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
