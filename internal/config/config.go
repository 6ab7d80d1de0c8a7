package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultPort = 3001

type Config struct {
	DatabaseURL string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	Port     int
	HTTPAddr string
	// BaseURL is where the launchpad page reaches this service.
	BaseURL            string
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment, after merging a .env file
// from the working directory if one exists. Variables already set win over .env.
func Load() Config {
	_ = godotenv.Load()

	port := getenvInt("PORT", defaultPort)
	if port <= 0 || port > 65535 {
		port = defaultPort
	}
	portStr := strconv.Itoa(port)

	return Config{
		DatabaseURL:        getenv("DATABASE_URL", "file:notes.db"),
		MaxOpenConns:       getenvInt("DB_MAX_OPEN", 1),
		MaxIdleConns:       getenvInt("DB_MAX_IDLE", 1),
		ConnMaxLifetime:    getenvDuration("DB_CONN_MAX_LIFETIME", 0),
		ConnMaxIdleTime:    getenvDuration("DB_CONN_MAX_IDLE_TIME", 0),
		Port:               port,
		HTTPAddr:           getenv("HTTP_ADDR", ":"+portStr),
		BaseURL:            strings.TrimRight(getenv("BASE_URL", "http://localhost:"+portStr), "/"),
		CORSAllowedOrigins: getenvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		ShutdownTimeout:    getenvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		LogLevel:           getenv("LOG_LEVEL", "info"),
		LogFormat:          getenv("LOG_FORMAT", "json"),
	}
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getenvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
