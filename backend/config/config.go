package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	SQLitePath string
	JWTSecret  string
	ServerPort string

	// TimeZone is the single reference zone used for calendar-day boundaries.
	TimeZone string

	CacheTTL        time.Duration
	CacheMaxEntries int
	RedisAddr       string
	RedisPrefix     string

	LogMode string
	LogFile string

	RecomputeWorkers int
	AdminUserIDs     []uint
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	cfg := &Config{
		DBDriver:         getEnv("DB_DRIVER", "postgres"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "5432"),
		DBUser:           getEnv("DB_USER", "postgres"),
		DBPassword:       getEnv("DB_PASSWORD", "postgres"),
		DBName:           getEnv("DB_NAME", "devprep"),
		SQLitePath:       getEnv("SQLITE_PATH", "devprep.db"),
		JWTSecret:        getEnv("JWT_SECRET", "secret"),
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		TimeZone:         getEnv("APP_TIMEZONE", "UTC"),
		CacheTTL:         time.Duration(getEnvInt("CACHE_TTL_SECONDS", 60)) * time.Second,
		CacheMaxEntries:  getEnvInt("CACHE_MAX_ENTRIES", 1000),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPrefix:      getEnv("REDIS_PREFIX", "devprep:"),
		LogMode:          getEnv("LOG_MODE", "dev"),
		LogFile:          getEnv("LOG_FILE", ""),
		RecomputeWorkers: getEnvInt("RECOMPUTE_WORKERS", 4),
		AdminUserIDs:     parseIDs(getEnv("ADMIN_USER_IDS", "1")),
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Location resolves TimeZone, falling back to UTC when it is empty.
func (c *Config) Location() (*time.Location, error) {
	if strings.TrimSpace(c.TimeZone) == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.TimeZone)
}

func (c *Config) IsAdmin(userID uint) bool {
	for _, id := range c.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v := strings.TrimSpace(getEnv(key, ""))
	if v == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return i
}

func parseIDs(raw string) []uint {
	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil || n == 0 {
			continue
		}
		ids = append(ids, uint(n))
	}
	return ids
}
