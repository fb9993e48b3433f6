package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel      string
	FontPath      string
	FontSize      int
	HistoryDB     string
	CacheSize     int
	Port          int
	AuthUser      string
	AuthPass      string
	OutputDir     string
	MaxUploadSize int64
}

// LoadConfig reads the environment, after loading a .env file when one exists.
func LoadConfig() Config {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	return Config{
		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		FontPath:      getEnv("FONT_PATH", ""),
		FontSize:      getEnvAsInt("FONT_SIZE", 40),
		HistoryDB:     getEnv("HISTORY_DB", "cardgen.db"),
		CacheSize:     getEnvAsInt("CACHE_SIZE", 256),
		Port:          getEnvAsInt("PORT", 8080),
		AuthUser:      getEnv("AUTH_USER", "admin"),
		AuthPass:      getEnv("AUTH_PASS", "password"),
		OutputDir:     getEnv("OUTPUT_DIR", "output"),
		MaxUploadSize: getEnvAsInt64("MAX_UPLOAD_SIZE", 10*1024*1024), // 10MB
	}
}

// IsProduction reports whether production logging should be used.
func (c Config) IsProduction() bool {
	return c.LogLevel == "INFO"
}

// HistoryEnabled reports whether runs are recorded.
func (c Config) HistoryEnabled() bool {
	return c.HistoryDB != ""
}

// getEnv returns the value even when it is set but empty, so HISTORY_DB=""
// can switch history off.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}
