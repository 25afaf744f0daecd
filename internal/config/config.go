package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Person storage backends
const (
	PersonStoreMongo    = "mongo"
	PersonStorePostgres = "postgres"
	PersonStoreMemory   = "memory"
)

// Config holds all configuration values
type Config struct {
	// Server configuration
	Port        int    `json:"port"`
	Environment string `json:"environment"`

	// Person storage backend: mongo, postgres or memory
	PersonStore string `json:"person_store"`

	// MongoDB configuration
	MongoURI      string `json:"mongo_uri"`
	MongoDatabase string `json:"mongo_database"`

	// Collection names
	PersonCollection    string `json:"mongo_person_collection"`
	AuditLogsCollection string `json:"mongo_audit_logs_collection"`

	// PostgreSQL configuration
	PostgresDSN      string `json:"postgres_dsn"`
	PostgresMaxConns int    `json:"postgres_max_conns"`

	// Redis configuration
	RedisURI          string        `json:"redis_uri"`
	RedisPassword     string        `json:"redis_password"`
	RedisDB           int           `json:"redis_db"`
	RedisPoolSize     int           `json:"redis_pool_size"`
	RedisMinIdleConns int           `json:"redis_min_idle_conns"`
	RedisDialTimeout  time.Duration `json:"redis_dial_timeout"`
	RedisReadTimeout  time.Duration `json:"redis_read_timeout"`
	RedisWriteTimeout time.Duration `json:"redis_write_timeout"`

	// Cache TTLs
	PersonCacheTTL time.Duration `json:"person_cache_ttl"`
	CEPCacheTTL    time.Duration `json:"cep_cache_ttl"`

	// CEP lookup (ViaCEP)
	ViaCEPBaseURL string        `json:"viacep_base_url"`
	ViaCEPTimeout time.Duration `json:"viacep_timeout"`

	// Backend API used by the BFF
	BackendAPIURL  string        `json:"backend_api_url"`
	BackendTimeout time.Duration `json:"backend_timeout"`

	// Form sessions (BFF)
	FormSessionTTL time.Duration `json:"form_session_ttl"`
	FormResetDelay time.Duration `json:"form_reset_delay"`
	FormFocusDelay time.Duration `json:"form_focus_delay"`

	// Audit logging
	AuditLogsEnabled bool `json:"audit_logs_enabled"`
	AuditWorkerCount int  `json:"audit_worker_count"`
	AuditBufferSize  int  `json:"audit_buffer_size"`

	// Tracing
	TracingEnabled  bool   `json:"tracing_enabled"`
	TracingEndpoint string `json:"tracing_endpoint"`

	// Fraction of new root traces kept, 0..1
	TracingSampleRatio float64 `json:"tracing_sample_ratio"`

	// Index maintenance
	IndexMaintenanceInterval time.Duration `json:"index_maintenance_interval"`
}

var (
	AppConfig *Config
)

// LoadConfig loads configuration from environment variables
func LoadConfig() error {
	port, err := strconv.Atoi(getEnvOrDefault("PORT", "8080"))
	if err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnvOrDefault("REDIS_DB", "0"))
	if err != nil {
		return fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	personStore := strings.ToLower(getEnvOrDefault("PERSON_STORE", PersonStoreMongo))
	switch personStore {
	case PersonStoreMongo, PersonStorePostgres, PersonStoreMemory:
	default:
		return fmt.Errorf("invalid PERSON_STORE %q: must be one of mongo, postgres, memory", personStore)
	}

	postgresDSN := os.Getenv("POSTGRES_DSN")
	if personStore == PersonStorePostgres && postgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN environment variable is required when PERSON_STORE=postgres")
	}

	sampleRatio, err := strconv.ParseFloat(getEnvOrDefault("TRACING_SAMPLE_RATIO", "1"), 64)
	if err != nil || sampleRatio < 0 || sampleRatio > 1 {
		return fmt.Errorf("invalid TRACING_SAMPLE_RATIO %q: must be a number between 0 and 1", os.Getenv("TRACING_SAMPLE_RATIO"))
	}

	// first malformed duration wins
	var durationErr error
	parse := func(key, def string) time.Duration {
		d, perr := getEnvAsDurationOrDefault(key, def)
		if perr != nil && durationErr == nil {
			durationErr = perr
		}
		return d
	}

	cfg := &Config{
		// Server configuration
		Port:        port,
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),

		PersonStore: personStore,

		// MongoDB configuration
		MongoURI:      getEnvOrDefault("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnvOrDefault("MONGODB_DATABASE", "personia"),

		// Collection names
		PersonCollection:    getEnvOrDefault("MONGODB_PERSON_COLLECTION", "persons"),
		AuditLogsCollection: getEnvOrDefault("MONGODB_AUDIT_LOGS_COLLECTION", "audit_logs"),

		// PostgreSQL configuration
		PostgresDSN:      postgresDSN,
		PostgresMaxConns: getEnvAsIntOrDefault("POSTGRES_MAX_CONNS", 10),

		// Redis configuration
		RedisURI:          getEnvOrDefault("REDIS_URI", "localhost:6379"),
		RedisPassword:     getEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:           redisDB,
		RedisPoolSize:     getEnvAsIntOrDefault("REDIS_POOL_SIZE", 10),
		RedisMinIdleConns: getEnvAsIntOrDefault("REDIS_MIN_IDLE_CONNS", 5),
		RedisDialTimeout:  parse("REDIS_DIAL_TIMEOUT", "5s"),
		RedisReadTimeout:  parse("REDIS_READ_TIMEOUT", "3s"),
		RedisWriteTimeout: parse("REDIS_WRITE_TIMEOUT", "3s"),

		// Cache TTLs
		PersonCacheTTL: parse("PERSON_CACHE_TTL", "10m"),
		CEPCacheTTL:    parse("CEP_CACHE_TTL", "24h"),

		// CEP lookup
		ViaCEPBaseURL: strings.TrimRight(getEnvOrDefault("VIACEP_BASE_URL", "https://viacep.com.br"), "/"),
		ViaCEPTimeout: parse("VIACEP_TIMEOUT", "5s"),

		// Backend API
		BackendAPIURL:  strings.TrimRight(getEnvOrDefault("BACKEND_API_URL", "http://localhost:8080"), "/"),
		BackendTimeout: parse("BACKEND_TIMEOUT", "15s"),

		// Form sessions
		FormSessionTTL: parse("FORM_SESSION_TTL", "30m"),
		FormResetDelay: parse("FORM_RESET_DELAY", "3s"),
		FormFocusDelay: parse("FORM_FOCUS_DELAY", "100ms"),

		// Audit logging
		AuditLogsEnabled: getEnvAsBoolOrDefault("AUDIT_LOGS_ENABLED", true),
		AuditWorkerCount: getEnvAsIntOrDefault("AUDIT_WORKER_COUNT", 2),
		AuditBufferSize:  getEnvAsIntOrDefault("AUDIT_BUFFER_SIZE", 100),

		// Tracing
		TracingEnabled:     getEnvAsBoolOrDefault("TRACING_ENABLED", false),
		TracingEndpoint:    getEnvOrDefault("TRACING_ENDPOINT", "localhost:4317"),
		TracingSampleRatio: sampleRatio,

		IndexMaintenanceInterval: parse("INDEX_MAINTENANCE_INTERVAL", "1h"),
	}
	if durationErr != nil {
		return durationErr
	}

	AppConfig = cfg
	return nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns environment variable as int or default if not set or invalid
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// getEnvAsDurationOrDefault parses a Go duration string, falling back to defaultValue when unset
func getEnvAsDurationOrDefault(key, defaultValue string) (time.Duration, error) {
	raw := getEnvOrDefault(key, defaultValue)
	if raw == "" {
		raw = defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// getEnvAsBoolOrDefault returns environment variable as bool or default if not set or invalid
func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
