package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	PatientStorePostgres = "postgres"
	PatientStoreFile     = "file"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Store     StoreConfig
	Telemetry TelemetryConfig
	Simulator SimulatorConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port        string
	CORSOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	Enabled       bool
	CacheTTL      time.Duration
}

type StoreConfig struct {
	PatientStore    string
	PatientsFile    string
	ParamIterations int
}

type TelemetryConfig struct {
	OTLPEndpoint string
}

// SimulatorConfig mirrors simulator.Config; it is parsed straight from SIM_* variables.
type SimulatorConfig struct {
	RecommendedRollouts int     `env:"SIM_RECOMMENDED_ROLLOUTS" envDefault:"10"`
	PercentileRollouts  int     `env:"SIM_PERCENTILE_ROLLOUTS" envDefault:"100"`
	FixedMargin         float64 `env:"SIM_FIXED_MARGIN" envDefault:"0.25"`
	MarginJitter        float64 `env:"SIM_MARGIN_JITTER" envDefault:"0.075"`
	LowerPercentile     float64 `env:"SIM_LOWER_PERCENTILE" envDefault:"2.5"`
	UpperPercentile     float64 `env:"SIM_UPPER_PERCENTILE" envDefault:"97.5"`
	Workers             int     `env:"SIM_WORKERS" envDefault:"0"`
	MaxHorizon          int     `env:"SIM_MAX_HORIZON" envDefault:"520"`
	PreviousOutcome     string  `env:"SIM_PREVIOUS_OUTCOME" envDefault:"rolling"`

	BlendAlphaUndershoot float64 `env:"SIM_BLEND_ALPHA_UNDERSHOOT" envDefault:"1.8"`
	BlendAlphaDefault    float64 `env:"SIM_BLEND_ALPHA_DEFAULT" envDefault:"0.5"`
	BlendScaleUndershoot float64 `env:"SIM_BLEND_SCALE_UNDERSHOOT" envDefault:"1.2"`
	BlendScaleDefault    float64 `env:"SIM_BLEND_SCALE_DEFAULT" envDefault:"1.0"`
	BlendDecayUndershoot float64 `env:"SIM_BLEND_DECAY_UNDERSHOOT" envDefault:"0.1"`
	BlendDecayDefault    float64 `env:"SIM_BLEND_DECAY_DEFAULT" envDefault:"0.05"`
	BlendBoundJitter     float64 `env:"SIM_BLEND_BOUND_JITTER" envDefault:"0.1"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, errors.New("invalid redis database")
	}

	cacheTTL, err := time.ParseDuration(getEnv("REDIS_CACHE_TTL", "24h"))
	if err != nil || cacheTTL <= 0 {
		return nil, errors.New("invalid redis cache ttl")
	}

	iterations, err := strconv.Atoi(getEnv("PARAM_ITERATIONS", "5"))
	if err != nil || iterations <= 0 {
		return nil, errors.New("invalid param iterations")
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Rehab Dose Planner"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			CORSOrigins: []string{getEnv("CORS_ORIGIN", "http://localhost:3000")},
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "rehab_dose"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
			Enabled:       getEnv("REDIS_ENABLED", "true") != "false",
			CacheTTL:      cacheTTL,
		},
		Store: StoreConfig{
			PatientStore:    getEnv("PATIENT_STORE", PatientStorePostgres),
			PatientsFile:    getEnv("PATIENTS_FILE", "data/patients.json"),
			ParamIterations: iterations,
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", ""),
		},
	}

	if err := env.Parse(&cfg.Simulator); err != nil {
		return nil, fmt.Errorf("parse simulator env: %w", err)
	}

	switch cfg.Store.PatientStore {
	case PatientStorePostgres, PatientStoreFile:
	default:
		return nil, fmt.Errorf("unknown patient store %q", cfg.Store.PatientStore)
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}
