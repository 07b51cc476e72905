package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	NATS         NATSConfig
	Log          LogConfig
	Renderer     RendererConfig
	Pinata       PinataConfig
	Ledger       LedgerConfig
	Verification VerificationConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type NATSConfig struct {
	URL string
}

type LogConfig struct {
	Level string
	JSON  bool
}

type RendererConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type PinataConfig struct {
	JWT     string
	Gateway string
}

type LedgerConfig struct {
	BaseURL     string
	APIKey      string
	MintAmount  string
	MaxAttempts int
	RetryDelay  time.Duration
}

type VerificationConfig struct {
	// BaseURL is the public frontend address encoded into QR verification
	// links, e.g. https://vishwaspatra.app.
	BaseURL string
}

func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", "5432")
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "postgres")
	v.SetDefault("DATABASE_DBNAME", "vishwaspatra")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("NATS_URL", "nats://localhost:4222")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_JSON", "false")
	v.SetDefault("RENDERER_URL", "https://production-sfo.browserless.io")
	v.SetDefault("RENDERER_TOKEN", "")
	v.SetDefault("RENDERER_TIMEOUT", "60s")
	v.SetDefault("PINATA_JWT", "")
	v.SetDefault("PINATA_GATEWAY", "gateway.pinata.cloud")
	v.SetDefault("TON_GATEWAY_URL", "http://localhost:7300")
	v.SetDefault("TON_API_KEY", "")
	v.SetDefault("TON_MINT_AMOUNT", "0.05")
	v.SetDefault("TON_MAX_ATTEMPTS", "3")
	v.SetDefault("TON_RETRY_DELAY", "3s")
	v.SetDefault("VERIFY_BASE_URL", "http://localhost:3000")

	serverPort, err := strconv.Atoi(v.GetString("SERVER_PORT"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	dbPort, err := strconv.Atoi(v.GetString("DATABASE_PORT"))
	if err != nil {
		return nil, fmt.Errorf("invalid DATABASE_PORT: %w", err)
	}

	logJSON, err := parseBool(v.GetString("LOG_JSON"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_JSON: %w", err)
	}

	rendererTimeout, err := time.ParseDuration(v.GetString("RENDERER_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid RENDERER_TIMEOUT: %w", err)
	}

	maxAttempts, err := strconv.Atoi(v.GetString("TON_MAX_ATTEMPTS"))
	if err != nil {
		return nil, fmt.Errorf("invalid TON_MAX_ATTEMPTS: %w", err)
	}

	retryDelay, err := time.ParseDuration(v.GetString("TON_RETRY_DELAY"))
	if err != nil {
		return nil, fmt.Errorf("invalid TON_RETRY_DELAY: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: serverPort,
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DATABASE_HOST"),
			Port:     dbPort,
			User:     v.GetString("DATABASE_USER"),
			Password: v.GetString("DATABASE_PASSWORD"),
			DBName:   v.GetString("DATABASE_DBNAME"),
			SSLMode:  v.GetString("DATABASE_SSLMODE"),
		},
		NATS: NATSConfig{
			URL: v.GetString("NATS_URL"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
			JSON:  logJSON,
		},
		Renderer: RendererConfig{
			BaseURL: v.GetString("RENDERER_URL"),
			Token:   v.GetString("RENDERER_TOKEN"),
			Timeout: rendererTimeout,
		},
		Pinata: PinataConfig{
			JWT:     v.GetString("PINATA_JWT"),
			Gateway: v.GetString("PINATA_GATEWAY"),
		},
		Ledger: LedgerConfig{
			BaseURL:     v.GetString("TON_GATEWAY_URL"),
			APIKey:      v.GetString("TON_API_KEY"),
			MintAmount:  v.GetString("TON_MINT_AMOUNT"),
			MaxAttempts: maxAttempts,
			RetryDelay:  retryDelay,
		},
		Verification: VerificationConfig{
			BaseURL: v.GetString("VERIFY_BASE_URL"),
		},
	}, nil
}

// parseBool accepts the usual strconv forms but treats empty as false so an
// unset variable does not fail startup.
func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User, c.Database.Password, c.Database.DBName, c.Database.SSLMode)
}

func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
