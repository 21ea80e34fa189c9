package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Server     ServerConfig
	Storage    StorageConfig
	Events     EventsConfig
	Log        LogConfig
	Storefront StorefrontConfig
}

type ServerConfig struct {
	Addr         string
	MenuCacheTTL time.Duration
	SessionTTL   time.Duration
}

type StorageConfig struct {
	MySQLDSN    string
	RedisAddr   string
	AutoMigrate bool
}

// EventsConfig controls order placed events. An empty AMQPURL means events
// are only logged.
type EventsConfig struct {
	AMQPURL     string
	WorkerCount int
	QueueSize   int
}

type LogConfig struct {
	Level  string
	Format string
}

type StorefrontConfig struct {
	APIURL     string
	Session    string
	SessionDir string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Addr:         getEnv("HTTP_ADDR", ":8080"),
			MenuCacheTTL: getDuration("MENU_CACHE_TTL", 5*time.Minute),
			SessionTTL:   getDuration("SESSION_TTL", 7*24*time.Hour),
		},
		Storage: StorageConfig{
			MySQLDSN:    getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/aura_kitchen?parseTime=true"),
			RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
			AutoMigrate: getBool("AUTO_MIGRATE", true),
		},
		Events: EventsConfig{
			AMQPURL:     getEnv("AMQP_URL", ""),
			WorkerCount: getInt("WORKER_COUNT", 4),
			QueueSize:   getInt("EVENT_QUEUE_SIZE", 1000),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Storefront: StorefrontConfig{
			APIURL:     strings.TrimRight(getEnv("AURA_API_URL", "http://localhost:8080"), "/"),
			Session:    getEnv("AURA_SESSION", "default"),
			SessionDir: getEnv("AURA_SESSION_DIR", defaultSessionDir()),
		},
	}, nil
}

// NewLogger builds the process logger from the log settings. Unknown levels
// fall back to info.
func NewLogger(cfg LogConfig) *logrus.Logger {
	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if strings.EqualFold(cfg.Format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

func defaultSessionDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "aura-kitchen")
	}
	return filepath.Join(os.TempDir(), "aura-kitchen")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func getBool(key string, def bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return def
	}
	return b
}

func getDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
