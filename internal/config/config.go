package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Broker    BrokerConfig
	Stream    StreamConfig
	Scan      ScanConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type RateLimitConfig struct {
	GeneralRPS   float64 // Requests per second for general endpoints
	GeneralBurst int     // Burst size for general endpoints
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// BrokerConfig configures the optional MQTT fan-out. When disabled scan
// events are only delivered to in-process SSE subscribers.
type BrokerConfig struct {
	Enabled  bool
	URL      string
	ClientID string
	Username string
	Password string
	Topic    string
	QoS      int
}

// StreamConfig tunes the SSE endpoint.
type StreamConfig struct {
	SubscriberBuffer  int
	KeepAliveInterval time.Duration
}

// ScanConfig tunes the scan client library defaults served to devices.
type ScanConfig struct {
	DebounceWindow time.Duration
	ClientTimeout  time.Duration
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(homeDir)
	}
	viper.AutomaticEnv()

	viper.SetDefault("RATE_LIMIT_GENERAL_RPS", 50)
	viper.SetDefault("RATE_LIMIT_GENERAL_BURST", 100)
	viper.SetDefault("STREAM_SUBSCRIBER_BUFFER", 16)
	viper.SetDefault("STREAM_KEEPALIVE_SECONDS", 25)
	viper.SetDefault("SCAN_DEBOUNCE_MS", 1500)
	viper.SetDefault("SCAN_CLIENT_TIMEOUT_SECONDS", 10)
	viper.SetDefault("BROKER_QOS", 1)

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Printf("Warning: config file not found: %v. Falling back to environment variables only.", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:        viper.GetString("SERVER_PORT"),
			Host:        viper.GetString("SERVER_HOST"),
			Environment: viper.GetString("ENVIRONMENT"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: viper.GetInt("JWT_EXPIRY_HOURS"),
		},
		RateLimit: RateLimitConfig{
			GeneralRPS:   viper.GetFloat64("RATE_LIMIT_GENERAL_RPS"),
			GeneralBurst: viper.GetInt("RATE_LIMIT_GENERAL_BURST"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods:   viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders:   viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
			ExposedHeaders:   viper.GetStringSlice("CORS_EXPOSED_HEADERS"),
			AllowCredentials: viper.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           viper.GetInt("CORS_MAX_AGE"),
		},
		Broker: BrokerConfig{
			Enabled:  viper.GetBool("BROKER_ENABLED"),
			URL:      viper.GetString("BROKER_URL"),
			ClientID: viper.GetString("BROKER_CLIENT_ID"),
			Username: viper.GetString("BROKER_USERNAME"),
			Password: viper.GetString("BROKER_PASSWORD"),
			Topic:    viper.GetString("BROKER_SCAN_TOPIC"),
			QoS:      viper.GetInt("BROKER_QOS"),
		},
		Stream: StreamConfig{
			SubscriberBuffer:  viper.GetInt("STREAM_SUBSCRIBER_BUFFER"),
			KeepAliveInterval: time.Duration(viper.GetInt("STREAM_KEEPALIVE_SECONDS")) * time.Second,
		},
		Scan: ScanConfig{
			DebounceWindow: time.Duration(viper.GetInt("SCAN_DEBOUNCE_MS")) * time.Millisecond,
			ClientTimeout:  time.Duration(viper.GetInt("SCAN_CLIENT_TIMEOUT_SECONDS")) * time.Second,
		},
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}
