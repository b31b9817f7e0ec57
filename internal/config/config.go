package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Sources []SourceConfig
	Pool    PoolConfig
	Mapping MappingConfig
	Dedup   DedupConfig
	Server  ServerConfig
	Search  SearchConfig
	Logging LoggingConfig
}

// SourceConfig holds connection parameters for one listing source
type SourceConfig struct {
	ID       string
	DSN      string // 完整的数据库连接字符串（优先使用）
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// PoolConfig holds connection pool limits applied to every source store
type PoolConfig struct {
	MaxConnections     int
	MaxIdleConnections int
}

// MappingConfig holds column mapping persistence configuration
type MappingConfig struct {
	Store          string // "file" or "database"
	File           string
	DBDriver       string // "postgres" or "sqlite"
	DBDSN          string
	ReloadCron     string
	MatchThreshold float64
}

// DedupConfig holds duplicate detection thresholds
type DedupConfig struct {
	FieldThreshold    float64
	MinMatchingFields int
	SkipUnknownKeys   bool
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
}

// SearchConfig holds search-related configuration
type SearchConfig struct {
	PerSourceLimit int
	ResultLimit    int
	LogEnabled     bool
	LogDSN         string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// Debug reports whether [DEBUG] lines should be written
func (l LoggingConfig) Debug() bool {
	return strings.EqualFold(l.Level, "debug")
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Pool: PoolConfig{
			MaxConnections:     getEnvAsInt("SOURCE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("SOURCE_MAX_IDLE_CONNECTIONS", 2),
		},
		Mapping: MappingConfig{
			Store:          getEnv("MAPPING_STORE", "file"),
			File:           getEnv("MAPPING_FILE", "schema_store.json"),
			DBDriver:       getEnv("MAPPING_DB_DRIVER", "postgres"),
			DBDSN:          getEnv("MAPPING_DB_DSN", ""),
			ReloadCron:     getEnv("MAPPING_RELOAD_CRON", ""),
			MatchThreshold: getEnvAsFloat("COLUMN_MATCH_THRESHOLD", 0.8),
		},
		Dedup: DedupConfig{
			FieldThreshold:    getEnvAsFloat("DEDUP_FIELD_THRESHOLD", 0.85),
			MinMatchingFields: getEnvAsInt("DEDUP_MIN_MATCHING_FIELDS", 2),
			SkipUnknownKeys:   getEnvAsBool("DEDUP_SKIP_UNKNOWN_KEYS", false),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Search: SearchConfig{
			PerSourceLimit: getEnvAsInt("SEARCH_PER_SOURCE_LIMIT", 100),
			ResultLimit:    getEnvAsInt("SEARCH_RESULT_LIMIT", 200),
			LogEnabled:     getEnvAsBool("SEARCH_LOG_ENABLED", false),
			LogDSN:         getEnv("SEARCH_LOG_DSN", ""),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	for _, id := range splitList(getEnv("SOURCES", "source_2,source_3")) {
		cfg.Sources = append(cfg.Sources, loadSource(id))
	}
	if len(cfg.Sources) == 0 {
		return nil, fmt.Errorf("no sources configured (SOURCES is empty)")
	}

	switch cfg.Mapping.Store {
	case "file", "database":
	default:
		return nil, fmt.Errorf("invalid MAPPING_STORE %q (expected file or database)", cfg.Mapping.Store)
	}
	if cfg.Mapping.MatchThreshold <= 0 || cfg.Mapping.MatchThreshold > 1 {
		return nil, fmt.Errorf("COLUMN_MATCH_THRESHOLD must be in (0, 1], got %v", cfg.Mapping.MatchThreshold)
	}

	return cfg, nil
}

// loadSource reads the connection settings of one source; keys are prefixed
// with the upper-cased source id, e.g. SOURCE_2_PG_HOST.
func loadSource(id string) SourceConfig {
	prefix := strings.ToUpper(id) + "_"
	return SourceConfig{
		ID:       id,
		DSN:      getEnv(prefix+"DSN", ""),
		Host:     getEnv(prefix+"PG_HOST", getEnv("PG_HOST", "localhost")),
		Port:     getEnvAsInt(prefix+"PG_PORT", getEnvAsInt("PG_PORT", 5432)),
		User:     getEnv(prefix+"PG_USER", getEnv("PG_USER", "postgres")),
		Password: getEnv(prefix+"PG_PASSWORD", getEnv("PG_PASSWORD", "")),
		Database: getEnv(prefix+"PG_DATABASE", "real_estate_db_"+id),
		SSLMode:  getEnv(prefix+"PG_SSLMODE", getEnv("PG_SSLMODE", "disable")),
	}
}

// GetDSN returns the PostgreSQL connection string of the source
func (s SourceConfig) GetDSN() string {
	// 优先使用完整的 DSN
	if s.DSN != "" {
		return s.DSN
	}

	// 否则从各个字段组装 DSN
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		s.Host,
		s.Port,
		s.User,
		s.Password,
		s.Database,
		s.SSLMode,
	)
}

// Source returns the configuration of the source with the given id
func (c *Config) Source(id string) (SourceConfig, bool) {
	for _, s := range c.Sources {
		if s.ID == id {
			return s, true
		}
	}
	return SourceConfig{}, false
}

// Helper functions

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean value for %s, using default %t", key, defaultValue)
		return defaultValue
	}
	return value
}
