package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	OAuth      OAuthConfig
	Cloudinary CloudinaryConfig
	Firebase   FirebaseConfig
	Redis      RedisConfig
	AMQP       AMQPConfig
	RateLimit  RateLimitConfig
	Seed       SeedConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	PublicURL    string // used to build deep links in notifications
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

type FirebaseConfig struct {
	ServiceAccountPath string
}

// RedisConfig is optional; an empty Addr keeps rate limiting in memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AMQPConfig is optional; an empty URL turns event publishing into logging only.
type AMQPConfig struct {
	URL      string
	Exchange string
}

type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

// SeedConfig creates a first staff account on boot when Username is set.
type SeedConfig struct {
	StaffUsername string
	StaffEmail    string
	StaffPassword string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] .env not loaded: %v", err)
	}
	return &Config{
		Server: ServerConfig{
			Port:         getenv("PORT", "8080"),
			Env:          getenv("APP_ENV", "development"),
			PublicURL:    getenv("PUBLIC_URL", ""),
			ReadTimeout:  getenvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getenvDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			DSN:             getenv("DATABASE_DSN", "automarket:automarket@tcp(localhost:3306)/automarket?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    getenvInt("DATABASE_MAX_IDLE", 10),
			MaxOpenConns:    getenvInt("DATABASE_MAX_OPEN", 100),
			ConnMaxLifetime: getenvDuration("DATABASE_CONN_MAX_LIFETIME", time.Hour),
		},
		JWT: JWTConfig{
			AccessSecret:  getenv("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: getenv("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  getenvDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getenvDuration("JWT_REFRESH_EXPIRY", 168*time.Hour),
			Issuer:        getenv("JWT_ISSUER", "automarket"),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     getenv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getenv("GOOGLE_CLIENT_SECRET", ""),
			GoogleRedirectURL:  getenv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/v1/auth/google/callback"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: getenv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getenv("CLOUDINARY_API_KEY", ""),
			APISecret: getenv("CLOUDINARY_API_SECRET", ""),
			Folder:    getenv("CLOUDINARY_FOLDER", "AutoMarket"),
		},
		Firebase: FirebaseConfig{
			ServiceAccountPath: getenv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		},
		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", ""),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getenvInt("REDIS_DB", 0),
		},
		AMQP: AMQPConfig{
			URL:      getenv("RABBITMQ_URL", ""),
			Exchange: getenv("RABBITMQ_EXCHANGE", "automarket.events"),
		},
		RateLimit: RateLimitConfig{
			Limit:  getenvInt("RATE_LIMIT", 100),
			Window: getenvDuration("RATE_LIMIT_WINDOW", 60*time.Second),
		},
		Seed: SeedConfig{
			StaffUsername: getenv("SEED_STAFF_USERNAME", ""),
			StaffEmail:    getenv("SEED_STAFF_EMAIL", ""),
			StaffPassword: getenv("SEED_STAFF_PASSWORD", ""),
		},
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] invalid int for %s: %q, using %d", key, v, def)
		return def
	}
	return n
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[config] invalid duration for %s: %q, using %s", key, v, def)
		return def
	}
	return d
}
