package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const defaultConfigPath = "./config/config.yaml"

type Config struct {
	Env         string `yaml:"env" env:"ENV" env-default:"local"`
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-required:"true"`
	// RedisAddr may be empty; the submit lock then falls back to an in-process lock
	// and onboarding flags are kept per session only.
	RedisAddr  string `yaml:"redis_addr" env:"REDIS_ADDR"`
	HTTPServer `yaml:"http_server"`
	Backend    `yaml:"backend"`
	Scheduler  `yaml:"scheduler"`
	RateLimit  `yaml:"rate_limit"`
}

type HTTPServer struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout         time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"15s"`
}

type Backend struct {
	URL                    string        `yaml:"url" env:"BACKEND_URL" env-required:"true"`
	Timeout                time.Duration `yaml:"timeout" env-default:"10s"`
	LegacyConflictMessages bool          `yaml:"legacy_conflict_messages" env:"BACKEND_LEGACY_CONFLICT_MESSAGES" env-default:"true"`
}

type Scheduler struct {
	SessionTTL            time.Duration `yaml:"session_ttl" env-default:"2h"`
	MaxSessions           int           `yaml:"max_sessions" env-default:"10000"`
	AvailabilityCacheTTL  time.Duration `yaml:"availability_cache_ttl" env-default:"15s"`
	AvailabilityCacheSize int           `yaml:"availability_cache_size" env-default:"1024"`
	StepAdvanceDelay      time.Duration `yaml:"step_advance_delay" env-default:"800ms"`
	SearchDebounce        time.Duration `yaml:"search_debounce" env-default:"300ms"`
	SubmitLockTTL         time.Duration `yaml:"submit_lock_ttl" env-default:"30s"`
	OnboardingTTL         time.Duration `yaml:"onboarding_ttl" env-default:"0s"`
	JournalLimit          int           `yaml:"journal_limit" env-default:"50"`
}

type RateLimit struct {
	RPS   float64 `yaml:"rps" env:"RATE_LIMIT_RPS" env-default:"20"`
	Burst int     `yaml:"burst" env-default:"40"`
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatal(err)
	}

	return cfg
}

// Load reads an optional .env file, then the YAML file at CONFIG_PATH
// (default ./config/config.yaml). Environment variables override the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.New("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, errors.New("failed to read config file: " + err.Error())
	}

	return &cfg, nil
}
