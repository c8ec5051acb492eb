package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is read from the environment, optionally seeded from a .env file.
type Config struct {
	Port     int
	Env      string // local, dev, prod
	LogLevel string

	StoreDriver  string // mongo, memory
	MongoURI     string
	Database     string
	SeedFile     string
	StoreTimeout time.Duration

	RedisAddr         string
	RedisPassword     string
	CacheTTL          time.Duration
	CacheFlushOnStart bool

	OpenAIKey        string
	OpenAIBaseURL    string
	OpenAIModel      string
	NarrativeTimeout time.Duration

	CORSOrigins []string
}

// LoadEnv reads .env if present. A missing file is not an error.
func LoadEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load builds the configuration from the environment, applies defaults and
// validates it.
func Load() (Config, error) {
	var errs []string
	cfg := Config{
		Env:               getEnv("ENV", "local"),
		LogLevel:          os.Getenv("LOG_LEVEL"),
		StoreDriver:       getEnv("STORE_DRIVER", "mongo"),
		MongoURI:          os.Getenv("MONGOURI"),
		Database:          getEnv("DB", "capetown"),
		SeedFile:          os.Getenv("SEED_FILE"),
		RedisAddr:         os.Getenv("REDIS_ADD"),
		RedisPassword:     os.Getenv("REDIS_PASS"),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "*")),
		Port:              getInt("PORT", 8080, &errs),
		StoreTimeout:      getDuration("STORE_TIMEOUT", 5*time.Second, &errs),
		CacheTTL:          getDuration("CACHE_TTL", 10*time.Minute, &errs),
		NarrativeTimeout:  getDuration("NARRATIVE_TIMEOUT", 20*time.Second, &errs),
		CacheFlushOnStart: getBool("CACHE_FLUSH_ON_START", false, &errs),
	}
	errs = append(errs, cfg.validate()...)
	if len(errs) > 0 {
		return Config{}, fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

func (c Config) validate() []string {
	var errs []string
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	switch c.Env {
	case "local", "dev", "prod":
	default:
		errs = append(errs, fmt.Sprintf("ENV must be local, dev or prod, got %q", c.Env))
	}
	switch c.StoreDriver {
	case "mongo":
		if c.MongoURI == "" {
			errs = append(errs, "MONGOURI is required when STORE_DRIVER=mongo")
		}
	case "memory":
	default:
		errs = append(errs, fmt.Sprintf("STORE_DRIVER must be mongo or memory, got %q", c.StoreDriver))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, "STORE_TIMEOUT must be positive")
	}
	return errs
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int, errs *[]string) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s must be an integer, got %q", key, raw))
		return def
	}
	return n
}

func getDuration(key string, def time.Duration, errs *[]string) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s must be a duration such as 5s, got %q", key, raw))
		return def
	}
	return d
}

func getBool(key string, def bool, errs *[]string) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s must be true or false, got %q", key, raw))
		return def
	}
	return b
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
