package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	API       APIConfig
	Search    SearchConfig
	Location  LocationConfig
	Redis     RedisConfig
	Scheduler SchedulerConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
	LogLevel    string
	LogFormat   string
}

// APIConfig describes how the client reaches the dietprefs backend.
type APIConfig struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables limiting
	Burst     int
}

type SearchConfig struct {
	PageSize int
	Debounce time.Duration
}

// LocationConfig holds the fallback coordinates used when no device
// location is available and UseTestLocation is set.
type LocationConfig struct {
	UseTestLocation bool
	Latitude        float64
	Longitude       float64
}

type RedisConfig struct {
	Enabled     bool
	Host        string
	Port        string
	Password    string
	DB          int
	MetadataTTL time.Duration
}

type SchedulerConfig struct {
	ConfigRefreshSpec string
}

type CORSConfig struct {
	AllowedOrigins []string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8090"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", ""),
			LogFormat:   getEnv("LOG_FORMAT", "console"),
		},
		API: APIConfig{
			BaseURL:   getEnv("DIETPREFS_API_BASE_URL", "http://localhost:8000/api/v1"),
			Timeout:   parseDuration(getEnv("DIETPREFS_API_TIMEOUT", "30s"), 30*time.Second),
			RateLimit: parseFloat(getEnv("DIETPREFS_API_RATE_LIMIT", "10"), 10),
			Burst:     parseInt(getEnv("DIETPREFS_API_BURST", "5"), 5),
		},
		Search: SearchConfig{
			PageSize: parseInt(getEnv("SEARCH_PAGE_SIZE", "10"), 10),
			Debounce: parseDuration(getEnv("SEARCH_DEBOUNCE", "300ms"), 300*time.Millisecond),
		},
		Location: LocationConfig{
			UseTestLocation: getEnv("USE_TEST_LOCATION", "false") == "true",
			Latitude:        parseFloat(getEnv("DEFAULT_LATITUDE", "45.6770"), 45.6770),
			Longitude:       parseFloat(getEnv("DEFAULT_LONGITUDE", "-111.0429"), -111.0429),
		},
		Redis: RedisConfig{
			Enabled:     getEnv("REDIS_ENABLED", "false") == "true",
			Host:        getEnv("REDIS_HOST", "localhost"),
			Port:        getEnv("REDIS_PORT", "6379"),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          parseInt(getEnv("REDIS_DB", "0"), 0),
			MetadataTTL: parseDuration(getEnv("REDIS_METADATA_TTL", "24h"), 24*time.Hour),
		},
		Scheduler: SchedulerConfig{
			ConfigRefreshSpec: getEnv("CONFIG_REFRESH_SPEC", "@every 1h"),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
	}

	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
		if config.Server.Environment == "development" {
			config.Server.LogLevel = "debug"
		}
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Printf("Invalid number %s, using default %g", s, fallback)
		return fallback
	}
	return f
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for i := 0; i < len(s); {
		end := i
		for end < len(s) && s[end] != ',' {
			end++
		}
		result = append(result, s[i:end])
		i = end + 1
	}
	return result
}
