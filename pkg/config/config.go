package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App            AppConfig
	Server         ServerConfig
	Database       DatabaseConfig
	JWT            JWTConfig
	Redis          RedisConfig
	Recommendation RecommendationConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port           string
	RequestTimeout time.Duration
	AllowOrigins   []string

	// per client IP; zero disables limiting
	RateLimit float64
	RateBurst int
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// bounds dial, read, write and the startup ping
	Timeout  time.Duration
	PoolSize int
}

// Enabled reports whether tokens should be validated against Redis.
func (c RedisConfig) Enabled() bool {
	return c.RedisHost != ""
}

type RecommendationConfig struct {
	RecentViews       int
	NeighborThreshold float64
	MaxNeighbors      int
	SimilarThreshold  float64
	PopularMinRating  float64
	FeaturedMinRating float64
	ComputeTimeout    time.Duration
	CandidateSource   string
	BreakerFailures   int
	BreakerTimeout    time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	redisTimeout, err := getEnvDuration("REDIS_TIMEOUT", 3*time.Second)
	if err != nil {
		return nil, err
	}

	redisPoolSize, err := getEnvInt("REDIS_POOL_SIZE", 10)
	if err != nil {
		return nil, err
	}

	reco, err := loadRecommendation()
	if err != nil {
		return nil, err
	}

	requestTimeout, err := getEnvDuration("REQUEST_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	rateLimit, err := getEnvFloat("RATE_LIMIT_RPS", 20)
	if err != nil {
		return nil, err
	}

	rateBurst, err := getEnvInt("RATE_LIMIT_BURST", 40)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Shop Recommendation API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			RequestTimeout: requestTimeout,
			AllowOrigins:   []string{getEnv("CORS_ORIGIN", "http://localhost:3000")},
			RateLimit:      rateLimit,
			RateBurst:      rateBurst,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "shop_reco"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", ""),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
			Timeout:       redisTimeout,
			PoolSize:      redisPoolSize,
		},
		Recommendation: reco,
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	return cfg, nil
}

func loadRecommendation() (RecommendationConfig, error) {
	var (
		cfg RecommendationConfig
		err error
	)

	if cfg.RecentViews, err = getEnvInt("RECO_RECENT_VIEWS", 20); err != nil {
		return cfg, err
	}
	if cfg.NeighborThreshold, err = getEnvFloat("RECO_NEIGHBOR_THRESHOLD", 0.1); err != nil {
		return cfg, err
	}
	if cfg.MaxNeighbors, err = getEnvInt("RECO_MAX_NEIGHBORS", 10); err != nil {
		return cfg, err
	}
	if cfg.SimilarThreshold, err = getEnvFloat("RECO_SIMILAR_THRESHOLD", 0.1); err != nil {
		return cfg, err
	}
	if cfg.PopularMinRating, err = getEnvFloat("RECO_POPULAR_MIN_RATING", 3.0); err != nil {
		return cfg, err
	}
	if cfg.FeaturedMinRating, err = getEnvFloat("RECO_FEATURED_MIN_RATING", 4.0); err != nil {
		return cfg, err
	}
	if cfg.ComputeTimeout, err = getEnvDuration("RECO_COMPUTE_TIMEOUT", 5*time.Second); err != nil {
		return cfg, err
	}
	if cfg.BreakerFailures, err = getEnvInt("RECO_BREAKER_FAILURES", 5); err != nil {
		return cfg, err
	}
	if cfg.BreakerTimeout, err = getEnvDuration("RECO_BREAKER_TIMEOUT", 30*time.Second); err != nil {
		return cfg, err
	}

	cfg.CandidateSource = getEnv("RECO_CANDIDATE_SOURCE", "scan")
	if cfg.CandidateSource != "scan" && cfg.CandidateSource != "index" {
		return cfg, fmt.Errorf("invalid RECO_CANDIDATE_SOURCE %q: want scan or index", cfg.CandidateSource)
	}

	if cfg.RecentViews <= 0 || cfg.MaxNeighbors <= 0 {
		return cfg, errors.New("RECO_RECENT_VIEWS and RECO_MAX_NEIGHBORS must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return n, nil
}

func getEnvFloat(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}

	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return f, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return d, nil
}
