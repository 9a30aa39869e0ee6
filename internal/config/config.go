package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Stores soportados por CAR_STORE.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

type Config struct {
	HTTPPort string
	LogLevel string

	CarStore    string
	SQLitePath  string
	DatabaseURL string
	MongoURI    string
	MongoDB     string

	RedisAddr string
	CacheTTL  time.Duration

	UseKafka     bool
	KafkaBrokers []string

	ClickHouseAddr string
	ClickHouseDB   string

	OutboxPeriod time.Duration
	OutboxLimit  int

	SeedDemo    bool
	CORSOrigins []string

	CatalogAPIURL   string
	DefaultPageSize int
}

// LoadConfig lee la configuración del entorno. Un .env en el directorio actual
// se carga si existe; las variables ya definidas tienen prioridad.
func LoadConfig() *Config {
	_ = godotenv.Load()
	return fromEnv(os.Getenv)
}

func fromEnv(lookup func(string) string) *Config {
	getEnv := func(key, fallback string) string {
		if v := strings.TrimSpace(lookup(key)); v != "" {
			return v
		}
		return fallback
	}
	getBool := func(key string, fallback bool) bool {
		b, err := strconv.ParseBool(getEnv(key, ""))
		if err != nil {
			return fallback
		}
		return b
	}
	getInt := func(key string, fallback int) int {
		n, err := strconv.Atoi(getEnv(key, ""))
		if err != nil || n <= 0 {
			return fallback
		}
		return n
	}
	getDuration := func(key string, fallback time.Duration) time.Duration {
		d, err := time.ParseDuration(getEnv(key, ""))
		if err != nil || d <= 0 {
			return fallback
		}
		return d
	}

	return &Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		CarStore:    strings.ToLower(getEnv("CAR_STORE", StoreMemory)),
		SQLitePath:  getEnv("SQLITE_PATH", "./carcatalog.db"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnv("MONGO_DB", "carcatalog"),

		RedisAddr: getEnv("REDIS_ADDR", ""),
		CacheTTL:  getDuration("CACHE_TTL", 5*time.Minute),

		UseKafka:     getBool("USE_KAFKA", false),
		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),

		ClickHouseAddr: getEnv("CLICKHOUSE_ADDR", ""),
		ClickHouseDB:   getEnv("CLICKHOUSE_DB", "default"),

		OutboxPeriod: getDuration("OUTBOX_PERIOD", 1*time.Second),
		OutboxLimit:  getInt("OUTBOX_LIMIT", 10),

		SeedDemo:    getBool("SEED_DEMO", true),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),

		CatalogAPIURL:   getEnv("CATALOG_API_URL", "http://localhost:8080/graphql"),
		DefaultPageSize: getInt("DEFAULT_PAGE_SIZE", 25),
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
