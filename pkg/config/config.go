package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Env         string
	MetricsPort string

	DBType          string
	PostgresConnStr string
	SQLitePath      string
	DBMaxOpenConns  int

	JWTSecret   string
	PageSize    int
	MaxPageSize int

	MediaRoot   string
	MediaURL    string
	ImageStore  string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string

	ShoppingListFormat string
	PDFRenderTimeout   time.Duration
	ChromePath         string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment, after loading .env if present.
func Load() *Config {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		MetricsPort: getEnv("METRICS_PORT", "9090"),

		DBType:          strings.ToLower(getEnv("DB_TYPE", "postgres")),
		PostgresConnStr: getEnv("POSTGRES_CONN_STR", ""),
		SQLitePath:      getEnv("SQLITE_PATH", "foodgram.db"),
		DBMaxOpenConns:  getEnvAsInt("DB_MAX_OPEN_CONNS", 25),

		JWTSecret:   getEnv("JWT_SECRET", ""),
		PageSize:    getEnvAsInt("PAGE_SIZE", 6),
		MaxPageSize: getEnvAsInt("MAX_PAGE_SIZE", 100),

		MediaRoot:   getEnv("MEDIA_ROOT", "media"),
		MediaURL:    getEnv("MEDIA_URL", "/media"),
		ImageStore:  strings.ToLower(getEnv("IMAGE_STORE", "local")),
		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		S3PublicURL: getEnv("S3_PUBLIC_URL", ""),

		ShoppingListFormat: strings.ToLower(getEnv("SHOPPING_LIST_FORMAT", "text")),
		PDFRenderTimeout:   getEnvAsDuration("PDF_RENDER_TIMEOUT", 15*time.Second),
		ChromePath:         getEnv("CHROME_PATH", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}
