package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSUrl                string
	JWTSecret              string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	CORSAllowOrigins       string
	AuthzCacheTTL          time.Duration
	FeeSummaryCacheTTL     time.Duration
	ProofMaxSizeMB         int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("HKD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "HKD Portal API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cloudinary.folder", "hkd/proofs")
	v.SetDefault("cors.allow_origins", "http://localhost:3000")
	v.SetDefault("authz.cache_ttl", "2m")
	v.SetDefault("fees.summary_cache_ttl", "5m")
	v.SetDefault("proof.max_size_mb", 5)

	authzTTL, err := time.ParseDuration(v.GetString("authz.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid authz cache ttl: %w", err)
	}
	summaryTTL, err := time.ParseDuration(v.GetString("fees.summary_cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid fee summary cache ttl: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSUrl:                v.GetString("nats.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		CORSAllowOrigins:       v.GetString("cors.allow_origins"),
		AuthzCacheTTL:          authzTTL,
		FeeSummaryCacheTTL:     summaryTTL,
		ProofMaxSizeMB:         v.GetInt("proof.max_size_mb"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.ProofMaxSizeMB <= 0 {
		cfg.ProofMaxSizeMB = 5
	}

	return cfg, nil
}
