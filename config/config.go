package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Crawler  CrawlerConfig  `mapstructure:"crawler"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConnections  int           `mapstructure:"max_connections"`
	MinConnections  int           `mapstructure:"min_connections"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// CrawlerConfig holds the portal endpoints and crawl policy
type CrawlerConfig struct {
	Domain             string        `mapstructure:"domain"`
	DeviceListURL      string        `mapstructure:"device_list_url"`
	DevicePricesURL    string        `mapstructure:"device_prices_url"`
	DeviceAvailableURL string        `mapstructure:"device_available_url"`
	Segments           []string      `mapstructure:"segments"`
	PageConcurrency    int           `mapstructure:"page_concurrency"`
	RequestsPerSecond  float64       `mapstructure:"requests_per_second"`
	Burst              int           `mapstructure:"burst"`
	MaxRetries         int           `mapstructure:"max_retries"`
	InitialBackoff     time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff         time.Duration `mapstructure:"max_backoff"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	UserAgent          string        `mapstructure:"user_agent"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

var globalConfig *Config

// Load loads the configuration from file, .env, and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// .env is optional, log but don't fail
	if err := loadEnvFile(); err != nil {
		log.Warn().Err(err).Msg("Warning: .env file not loaded")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("CATALOG_SERVICE")

	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	globalConfig = &cfg
	return &cfg, nil
}

// loadEnvFile loads the first .env file found near the working directory.
func loadEnvFile() error {
	for _, path := range []string{".", "./config"} {
		envFile := fmt.Sprintf("%s/.env", path)
		if _, err := os.Stat(envFile); err == nil {
			return loadDotEnvFile(envFile)
		}
	}
	return fmt.Errorf("no .env file found")
}

// loadDotEnvFile reads a .env file and sets environment variables
func loadDotEnvFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.Trim(strings.TrimSpace(parts[1]), "\"'")
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}

// bindEnvVars binds environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("database.url", "DATABASE_URL")
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.host", "HOST")
	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("crawler.domain", "CRAWLER_DOMAIN")
	v.BindEnv("crawler.device_list_url", "CRAWLER_DEVICE_LIST_URL")
	v.BindEnv("crawler.device_prices_url", "CRAWLER_DEVICE_PRICES_URL")
	v.BindEnv("crawler.device_available_url", "CRAWLER_DEVICE_AVAILABLE_URL")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.min_connections", 5)
	v.SetDefault("database.max_conn_lifetime", 1*time.Hour)
	v.SetDefault("database.max_conn_idle_time", 30*time.Minute)

	v.SetDefault("crawler.domain", "http://plus.pl")
	v.SetDefault("crawler.device_list_url", "http://plus.pl/ajax/deviceList")
	v.SetDefault("crawler.device_prices_url", "http://plus.pl/ajax/devicePrices")
	v.SetDefault("crawler.device_available_url", "http://plus.pl/ajax/deviceAvailable")
	v.SetDefault("crawler.segments", []string{"IND.NEW.POSTPAID.ACQ"})
	v.SetDefault("crawler.page_concurrency", 4)
	v.SetDefault("crawler.requests_per_second", 2)
	v.SetDefault("crawler.burst", 4)
	v.SetDefault("crawler.max_retries", 3)
	v.SetDefault("crawler.initial_backoff", 100*time.Millisecond)
	v.SetDefault("crawler.max_backoff", 30*time.Second)
	v.SetDefault("crawler.request_timeout", 30*time.Second)
	v.SetDefault("crawler.user_agent", "catalog-service/1.0")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.no_color", false)
}

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// GetDatabaseURL returns the database URL from config or environment
func GetDatabaseURL() string {
	if cfg := Get(); cfg != nil && cfg.Database.URL != "" {
		return cfg.Database.URL
	}
	return os.Getenv("DATABASE_URL")
}
