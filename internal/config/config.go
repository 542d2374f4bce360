package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"puzzleboard/internal/game"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Database  DatabaseConfig
	Redis     RedisConfig
	Server    ServerConfig
	Worker    WorkerConfig
	Cache     CacheConfig
	Simulator SimulatorConfig
	Logging   LoggingConfig
	Parser    ParserConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	DB       int
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int
}

// WorkerConfig sizes the persistence pool.
type WorkerConfig struct {
	Count           int
	QueueSize       int
	ShutdownTimeout time.Duration
}

// CacheConfig controls the ranking cache in Redis.
type CacheConfig struct {
	RankingTTL time.Duration
}

// SimulatorConfig controls the demo result feed.
type SimulatorConfig struct {
	Enabled bool
	GroupID string
	Tick    time.Duration
}

type LoggingConfig struct {
	Level       string
	Development bool
}

// ParserConfig points at optional parser overrides.
type ParserConfig struct {
	WinThresholdsFile string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file from the repository root first, then the working directory
	if err := godotenv.Load("../.env"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, using environment variables")
		}
	}

	cfg := &Config{
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "puzzleboard"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Username: getEnv("REDIS_USERNAME", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Server: ServerConfig{
			Port: getEnvAsInt("BACKEND_PORT", 8000),
		},
		Worker: WorkerConfig{
			Count:           getEnvAsInt("WORKER_COUNT", 4),
			QueueSize:       getEnvAsInt("WORKER_QUEUE_SIZE", 1000),
			ShutdownTimeout: getEnvAsDuration("WORKER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Cache: CacheConfig{
			RankingTTL: getEnvAsDuration("RANKING_CACHE_TTL", 5*time.Minute),
		},
		Simulator: SimulatorConfig{
			Enabled: getEnvAsBool("SIMULATOR_ENABLED", false),
			GroupID: getEnv("SIMULATOR_GROUP", "demo"),
			Tick:    getEnvAsDuration("SIMULATOR_TICK", 2*time.Second),
		},
		Logging: LoggingConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
		Parser: ParserConfig{
			WinThresholdsFile: getEnv("WIN_THRESHOLDS_FILE", ""),
		},
	}

	if cfg.Worker.Count < 1 {
		return nil, fmt.Errorf("WORKER_COUNT must be positive, got %d", cfg.Worker.Count)
	}
	if cfg.Worker.QueueSize < 1 {
		return nil, fmt.Errorf("WORKER_QUEUE_SIZE must be positive, got %d", cfg.Worker.QueueSize)
	}

	return cfg, nil
}

// GetDSN returns the PostgreSQL DSN
func (c *Config) GetDSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// LoadWinThresholds reads per-game win thresholds from a YAML mapping of
// game id to threshold. An empty path yields no overrides.
func LoadWinThresholds(path string) (map[game.ID]float64, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read win thresholds: %w", err)
	}
	return parseWinThresholds(data)
}

func parseWinThresholds(data []byte) (map[game.ID]float64, error) {
	var raw map[string]float64
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode win thresholds: %w", err)
	}

	out := make(map[game.ID]float64, len(raw))
	for key, v := range raw {
		id, ok := game.Parse(key)
		if !ok {
			return nil, fmt.Errorf("unknown game %q in win thresholds", key)
		}
		if v < 0 {
			return nil, fmt.Errorf("negative win threshold for %s", id)
		}
		out[id] = v
	}
	return out, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration accepts Go duration strings such as "30s" or "5m".
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}
