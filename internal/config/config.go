package config

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers
const (
	StorageMongo    = "mongo"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Mongo     MongoConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

type StorageConfig struct {
	Driver string
}

type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

// DSN returns the postgres connection string, with credentials escaped
func (c DatabaseConfig) DSN() string {
	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, c.Port),
		Path:   "/" + c.Database,
		RawQuery: url.Values{
			"sslmode":     []string{"disable"},
			"search_path": []string{c.Schema},
		}.Encode(),
	}
	return dsn.String()
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns the redis host:port address
func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type RateLimitConfig struct {
	Enabled       bool
	Requests      int
	WindowSeconds int
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env != "production"
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMongo, StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.RateLimit.Enabled && (c.RateLimit.Requests < 1 || c.RateLimit.WindowSeconds < 1) {
		return fmt.Errorf("rate limit requires positive requests and window, got %d per %ds",
			c.RateLimit.Requests, c.RateLimit.WindowSeconds)
	}

	return nil
}

func Load() *Config {
	// .env values are exported to the process environment without overriding it
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not read .env file: %v", err)
	}

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "")
	viper.SetDefault("STORAGE_DRIVER", StorageMongo)
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DATABASE", "store")
	viper.SetDefault("MONGO_COLLECTION", "products")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("RATE_LIMIT_ENABLED", false)
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Env:            viper.GetString("SERVER_ENV"),
			LogLevel:       viper.GetString("LOG_LEVEL"),
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(viper.GetString("STORAGE_DRIVER")),
		},
		Mongo: MongoConfig{
			URI:        viper.GetString("MONGO_URI"),
			Database:   viper.GetString("MONGO_DATABASE"),
			Collection: viper.GetString("MONGO_COLLECTION"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			Requests:      viper.GetInt("RATE_LIMIT_REQUESTS"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
	}
}

func splitList(value string) []string {
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
