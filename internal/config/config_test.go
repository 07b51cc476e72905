package config

import (
	"os"
	"testing"
	"time"
)

var envVarsUnderTest = []string{
	"SERVER_HOST", "SERVER_PORT", "DATABASE_HOST", "DATABASE_PORT",
	"DATABASE_USER", "DATABASE_PASSWORD", "DATABASE_DBNAME", "DATABASE_SSLMODE",
	"NATS_URL", "LOG_LEVEL", "LOG_JSON",
	"RENDERER_URL", "RENDERER_TOKEN", "RENDERER_TIMEOUT",
	"PINATA_JWT", "PINATA_GATEWAY",
	"TON_GATEWAY_URL", "TON_API_KEY", "TON_MINT_AMOUNT", "TON_MAX_ATTEMPTS", "TON_RETRY_DELAY",
	"VERIFY_BASE_URL",
}

func saveEnv(t *testing.T) {
	t.Helper()
	original := make(map[string]string)
	for _, envVar := range envVarsUnderTest {
		original[envVar] = os.Getenv(envVar)
		os.Unsetenv(envVar)
	}
	t.Cleanup(func() {
		for envVar, value := range original {
			if value == "" {
				os.Unsetenv(envVar)
			} else {
				os.Setenv(envVar, value)
			}
		}
	})
}

func TestLoad(t *testing.T) {
	saveEnv(t)

	tests := []struct {
		name     string
		envVars  map[string]string
		expected *Config
	}{
		{
			name:    "default_values",
			envVars: map[string]string{},
			expected: &Config{
				Server: ServerConfig{
					Host: "0.0.0.0",
					Port: 8080,
				},
				Database: DatabaseConfig{
					Host:     "localhost",
					Port:     5432,
					User:     "postgres",
					Password: "postgres",
					DBName:   "vishwaspatra",
					SSLMode:  "disable",
				},
				NATS: NATSConfig{
					URL: "nats://localhost:4222",
				},
				Log: LogConfig{
					Level: "info",
					JSON:  false,
				},
				Renderer: RendererConfig{
					BaseURL: "https://production-sfo.browserless.io",
					Token:   "",
					Timeout: 60 * time.Second,
				},
				Pinata: PinataConfig{
					JWT:     "",
					Gateway: "gateway.pinata.cloud",
				},
				Ledger: LedgerConfig{
					BaseURL:     "http://localhost:7300",
					APIKey:      "",
					MintAmount:  "0.05",
					MaxAttempts: 3,
					RetryDelay:  3 * time.Second,
				},
				Verification: VerificationConfig{
					BaseURL: "http://localhost:3000",
				},
			},
		},
		{
			name: "custom_server_config",
			envVars: map[string]string{
				"SERVER_HOST": "127.0.0.1",
				"SERVER_PORT": "9090",
			},
			expected: &Config{
				Server: ServerConfig{Host: "127.0.0.1", Port: 9090},
			},
		},
		{
			name: "custom_database_config",
			envVars: map[string]string{
				"DATABASE_HOST":     "db.example.com",
				"DATABASE_PORT":     "5433",
				"DATABASE_USER":     "testuser",
				"DATABASE_PASSWORD": "testpass",
				"DATABASE_DBNAME":   "testdb",
				"DATABASE_SSLMODE":  "require",
			},
			expected: &Config{
				Database: DatabaseConfig{
					Host:     "db.example.com",
					Port:     5433,
					User:     "testuser",
					Password: "testpass",
					DBName:   "testdb",
					SSLMode:  "require",
				},
			},
		},
		{
			name: "custom_renderer_config",
			envVars: map[string]string{
				"RENDERER_URL":     "https://chrome.internal:3030",
				"RENDERER_TOKEN":   "secret-token",
				"RENDERER_TIMEOUT": "90s",
			},
			expected: &Config{
				Renderer: RendererConfig{
					BaseURL: "https://chrome.internal:3030",
					Token:   "secret-token",
					Timeout: 90 * time.Second,
				},
			},
		},
		{
			name: "custom_ledger_config",
			envVars: map[string]string{
				"TON_GATEWAY_URL":  "http://ton-gw:7300",
				"TON_API_KEY":      "key-123",
				"TON_MINT_AMOUNT":  "0.1",
				"TON_MAX_ATTEMPTS": "5",
				"TON_RETRY_DELAY":  "500ms",
			},
			expected: &Config{
				Ledger: LedgerConfig{
					BaseURL:     "http://ton-gw:7300",
					APIKey:      "key-123",
					MintAmount:  "0.1",
					MaxAttempts: 5,
					RetryDelay:  500 * time.Millisecond,
				},
			},
		},
		{
			name: "custom_verify_base_url",
			envVars: map[string]string{
				"VERIFY_BASE_URL": "https://vishwaspatra.app",
			},
			expected: &Config{
				Verification: VerificationConfig{BaseURL: "https://vishwaspatra.app"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, envVar := range envVarsUnderTest {
				os.Unsetenv(envVar)
			}
			for key, value := range tt.envVars {
				os.Setenv(key, value)
			}

			config, err := Load()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.expected.Server.Host != "" && config.Server.Host != tt.expected.Server.Host {
				t.Errorf("expected server host '%s', but got '%s'", tt.expected.Server.Host, config.Server.Host)
			}
			if tt.expected.Server.Port != 0 && config.Server.Port != tt.expected.Server.Port {
				t.Errorf("expected server port %d, but got %d", tt.expected.Server.Port, config.Server.Port)
			}
			if tt.expected.Database.Host != "" && config.Database != tt.expected.Database {
				t.Errorf("expected database config %+v, but got %+v", tt.expected.Database, config.Database)
			}
			if tt.expected.Renderer.BaseURL != "" && config.Renderer != tt.expected.Renderer {
				t.Errorf("expected renderer config %+v, but got %+v", tt.expected.Renderer, config.Renderer)
			}
			if tt.expected.Ledger.BaseURL != "" && config.Ledger != tt.expected.Ledger {
				t.Errorf("expected ledger config %+v, but got %+v", tt.expected.Ledger, config.Ledger)
			}
			if tt.expected.Verification.BaseURL != "" && config.Verification != tt.expected.Verification {
				t.Errorf("expected verification config %+v, but got %+v", tt.expected.Verification, config.Verification)
			}

			if tt.name == "default_values" {
				if config.NATS != tt.expected.NATS {
					t.Errorf("expected NATS config %+v, but got %+v", tt.expected.NATS, config.NATS)
				}
				if config.Log != tt.expected.Log {
					t.Errorf("expected log config %+v, but got %+v", tt.expected.Log, config.Log)
				}
				if config.Pinata != tt.expected.Pinata {
					t.Errorf("expected pinata config %+v, but got %+v", tt.expected.Pinata, config.Pinata)
				}
			}
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	tests := []struct {
		name        string
		config      *Config
		expectedDSN string
	}{
		{
			name: "default_config",
			config: &Config{
				Database: DatabaseConfig{
					Host:     "localhost",
					Port:     5432,
					User:     "postgres",
					Password: "postgres",
					DBName:   "vishwaspatra",
					SSLMode:  "disable",
				},
			},
			expectedDSN: "host=localhost port=5432 user=postgres password=postgres dbname=vishwaspatra sslmode=disable",
		},
		{
			name: "custom_config",
			config: &Config{
				Database: DatabaseConfig{
					Host:     "db.example.com",
					Port:     5433,
					User:     "testuser",
					Password: "testpass",
					DBName:   "testdb",
					SSLMode:  "require",
				},
			},
			expectedDSN: "host=db.example.com port=5433 user=testuser password=testpass dbname=testdb sslmode=require",
		},
		{
			name: "empty_password",
			config: &Config{
				Database: DatabaseConfig{
					Host:     "localhost",
					Port:     5432,
					User:     "postgres",
					Password: "",
					DBName:   "vishwaspatra",
					SSLMode:  "disable",
				},
			},
			expectedDSN: "host=localhost port=5432 user=postgres password= dbname=vishwaspatra sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn := tt.config.DatabaseDSN()
			if dsn != tt.expectedDSN {
				t.Errorf("expected DSN '%s', but got '%s'", tt.expectedDSN, dsn)
			}
		})
	}
}

func TestServerAddr(t *testing.T) {
	config := &Config{Server: ServerConfig{Host: "0.0.0.0", Port: 8080}}
	if addr := config.ServerAddr(); addr != "0.0.0.0:8080" {
		t.Errorf("expected server addr '0.0.0.0:8080', but got '%s'", addr)
	}
}

func TestInvalidConfiguration(t *testing.T) {
	saveEnv(t)

	tests := []struct {
		name    string
		envVars map[string]string
	}{
		{
			name:    "invalid_server_port",
			envVars: map[string]string{"SERVER_PORT": "invalid"},
		},
		{
			name:    "invalid_database_port",
			envVars: map[string]string{"DATABASE_PORT": "not_a_number"},
		},
		{
			name:    "invalid_log_json",
			envVars: map[string]string{"LOG_JSON": "maybe"},
		},
		{
			name:    "invalid_renderer_timeout",
			envVars: map[string]string{"RENDERER_TIMEOUT": "fast"},
		},
		{
			name:    "invalid_ton_max_attempts",
			envVars: map[string]string{"TON_MAX_ATTEMPTS": "many"},
		},
		{
			name:    "invalid_ton_retry_delay",
			envVars: map[string]string{"TON_RETRY_DELAY": "soon"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, envVar := range envVarsUnderTest {
				os.Unsetenv(envVar)
			}
			for key, value := range tt.envVars {
				os.Setenv(key, value)
			}

			if _, err := Load(); err == nil {
				t.Error("expected error for invalid configuration, but got nil")
			}
		})
	}
}

func TestBooleanConfiguration(t *testing.T) {
	saveEnv(t)

	tests := []struct {
		name         string
		logJSONValue string
		expectedJSON bool
	}{
		{name: "true_value", logJSONValue: "true", expectedJSON: true},
		{name: "false_value", logJSONValue: "false", expectedJSON: false},
		{name: "1_value", logJSONValue: "1", expectedJSON: true},
		{name: "0_value", logJSONValue: "0", expectedJSON: false},
		{name: "empty_value", logJSONValue: "", expectedJSON: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.logJSONValue == "" {
				os.Unsetenv("LOG_JSON")
			} else {
				os.Setenv("LOG_JSON", tt.logJSONValue)
			}

			config, err := Load()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if config.Log.JSON != tt.expectedJSON {
				t.Errorf("expected log JSON %t, but got %t", tt.expectedJSON, config.Log.JSON)
			}
		})
	}
}
