// internal/infrastructure/config/config.go
package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backend types selectable through DB_TYPE or a bound managed service.
const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion  string
	LoggerLevel string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	ContextRoot  string

	// Backend selection
	DBType string

	// MongoDB
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// PostgreSQL
	PostgresURI string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Flight data cache
	UseFlightDataRelatedCaching bool
	FlightDataCacheMaxSize      int
	// FlightDataCacheTTL is in seconds; -1 means entries never expire.
	FlightDataCacheTTL int

	// Loader
	MaxCustomers             int
	MaxDaysToScheduleFlights int
	MaxFlightsPerDay         int
	MileageCSVPath           string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		AppVersion:  getEnv("APP_VERSION", "1.0.0"),
		LoggerLevel: getEnv("LOGGER_LEVEL", "info"),

		Port:         getEnv("PORT", "9080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,
		ContextRoot:  getEnv("CONTEXT_ROOT", "/rest/api"),

		DBType: getEnv("DB_TYPE", BackendMongo),

		MongoURI:      getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "acmeair"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		PostgresURI: getEnv("POSTGRES_DSN", "host=localhost user=acmeair dbname=acmeair port=5432"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		UseFlightDataRelatedCaching: getEnvAsBool("USE_FLIGHT_DATA_RELATED_CACHING", true),
		FlightDataCacheMaxSize:      getEnvAsInt("FLIGHT_DATA_CACHE_MAX_SIZE", 4096),
		FlightDataCacheTTL:          getEnvAsInt("FLIGHT_DATA_CACHE_TTL", -1),

		MaxCustomers:             getEnvAsInt("MAX_CUSTOMERS", 10000),
		MaxDaysToScheduleFlights: getEnvAsInt("MAX_DAYS_TO_SCHEDULE_FLIGHTS", 5),
		MaxFlightsPerDay:         getEnvAsInt("MAX_FLIGHTS_PER_DAY", 10),
		MileageCSVPath:           getEnv("MILEAGE_CSV_PATH", "loader/mileage.csv"),
	}

	// A bound managed service wins over the configured backend type.
	if detected := detectBoundService(os.Getenv("VCAP_SERVICES")); detected != "" {
		config.DBType = detected
	}

	return config, nil
}

// detectBoundService inspects a VCAP_SERVICES payload and returns the backend
// type implied by the first bound service, or "" when nothing is recognized.
func detectBoundService(vcap string) string {
	if vcap == "" {
		return ""
	}
	var services map[string]json.RawMessage
	if err := json.Unmarshal([]byte(vcap), &services); err != nil {
		return ""
	}
	for key := range services {
		lower := strings.ToLower(key)
		switch {
		case strings.Contains(lower, "redis"):
			return BackendRedis
		case strings.Contains(lower, "postgres"), strings.Contains(lower, "elephantsql"):
			return BackendPostgres
		case strings.Contains(lower, "mongo"):
			return BackendMongo
		}
	}
	return ""
}

// CacheTTL returns the flight data cache TTL as a duration; zero means no
// expiry.
func (c *Config) CacheTTL() time.Duration {
	if c.FlightDataCacheTTL < 0 {
		return 0
	}
	return time.Duration(c.FlightDataCacheTTL) * time.Second
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
