package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName     string `env:"DB_NAME" envDefault:"joinit"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	// Empty disables lifecycle publishing and the activity consumer.
	RabbitURL string `env:"RABBITMQ_URL"`

	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`
	JWTIssuer string `env:"JWT_ISSUER"`

	Timezone     string `env:"TIMEZONE" envDefault:"UTC"`
	PageSize     int    `env:"PAGE_SIZE" envDefault:"10"`
	TxMaxRetries uint   `env:"TX_MAX_RETRIES" envDefault:"3"`
	RateLimitRPS int    `env:"RATE_LIMIT_RPS" envDefault:"20"`

	FileStoreDir     string `env:"FILESTORE_DIR" envDefault:"./media"`
	CloudinaryCloud  string `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey string `env:"CLOUDINARY_API_KEY"`
	CloudinarySecret string `env:"CLOUDINARY_API_SECRET"`
	CloudinaryFolder string `env:"CLOUDINARY_FOLDER" envDefault:"covers"`
	MaxUploadBytes   int64  `env:"MAX_UPLOAD_BYTES" envDefault:"5242880"`
}

// Load reads an optional .env file and decodes the environment into a Config.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := Parse()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// Parse decodes the current environment without touching .env files.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("PAGE_SIZE must be positive, got %d", cfg.PageSize)
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}
	return &cfg, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// Location is the zone in which "today" starts for deadline validation.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryCloud != "" && c.CloudinaryAPIKey != "" && c.CloudinarySecret != ""
}
