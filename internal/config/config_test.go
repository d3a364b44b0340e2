package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		wantErr     bool
		errorString string
	}{
		{
			name: "valid rest backend config",
			config: Config{
				DataBackend:   "rest",
				RemoteURL:     "https://project.example.co",
				RemoteAnonKey: "anon-key",
				AvatarBucket:  "avatars",
				HTTPTimeout:   15 * time.Second,
			},
			wantErr: false,
		},
		{
			name: "valid sqlite backend config",
			config: Config{
				DataBackend:  "sqlite",
				SQLiteDBPath: "./test.db",
				HTTPTimeout:  15 * time.Second,
			},
			wantErr: false,
		},
		{
			name: "valid memory backend config",
			config: Config{
				DataBackend: "memory",
				HTTPTimeout: 15 * time.Second,
			},
			wantErr: false,
		},
		{
			name: "invalid data backend",
			config: Config{
				DataBackend: "sheets",
				HTTPTimeout: 15 * time.Second,
			},
			wantErr:     true,
			errorString: "invalid data backend 'sheets'",
		},
		{
			name: "rest backend missing URL",
			config: Config{
				DataBackend:   "rest",
				RemoteAnonKey: "anon-key",
				HTTPTimeout:   15 * time.Second,
			},
			wantErr:     true,
			errorString: "remote URL cannot be empty when using rest backend",
		},
		{
			name: "rest backend missing anon key",
			config: Config{
				DataBackend: "rest",
				RemoteURL:   "https://project.example.co",
				HTTPTimeout: 15 * time.Second,
			},
			wantErr:     true,
			errorString: "remote anon key cannot be empty when using rest backend",
		},
		{
			name: "rest backend bad URL scheme",
			config: Config{
				DataBackend:   "rest",
				RemoteURL:     "ftp://project.example.co",
				RemoteAnonKey: "anon-key",
				HTTPTimeout:   15 * time.Second,
			},
			wantErr:     true,
			errorString: "invalid remote URL scheme 'ftp': must be 'http' or 'https'",
		},
		{
			name: "sqlite backend missing database path",
			config: Config{
				DataBackend:  "sqlite",
				SQLiteDBPath: "",
				HTTPTimeout:  15 * time.Second,
			},
			wantErr:     true,
			errorString: "SQLite database path cannot be empty when using sqlite backend",
		},
		{
			name: "invalid AMQP URL scheme",
			config: Config{
				DataBackend:  "memory",
				AMQPURL:      "http://localhost:5672/",
				AMQPExchange: "saldo",
				AMQPQueue:    "transaction_events",
				HTTPTimeout:  15 * time.Second,
			},
			wantErr:     true,
			errorString: "invalid AMQP URL scheme 'http': must be 'amqp' or 'amqps'",
		},
		{
			name: "AMQP URL without exchange",
			config: Config{
				DataBackend: "memory",
				AMQPURL:     "amqp://localhost:5672/",
				AMQPQueue:   "transaction_events",
				HTTPTimeout: 15 * time.Second,
			},
			wantErr:     true,
			errorString: "AMQP exchange name cannot be empty when AMQP URL is provided",
		},
		{
			name: "AMQP URL without queue",
			config: Config{
				DataBackend:  "memory",
				AMQPURL:      "amqp://localhost:5672/",
				AMQPExchange: "saldo",
				HTTPTimeout:  15 * time.Second,
			},
			wantErr:     true,
			errorString: "AMQP queue name cannot be empty when AMQP URL is provided",
		},
		{
			name: "HTTP timeout too short",
			config: Config{
				DataBackend: "memory",
				HTTPTimeout: 500 * time.Millisecond,
			},
			wantErr:     true,
			errorString: "invalid HTTP timeout 500ms: must be at least 1 second",
		},
		{
			name: "HTTP timeout too long",
			config: Config{
				DataBackend: "memory",
				HTTPTimeout: 10 * time.Minute,
			},
			wantErr:     true,
			errorString: "invalid HTTP timeout 10m0s: must be at most 5 minutes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Config.Validate() error = nil, wantErr %v", tt.wantErr)
					return
				}
				if tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Config.Validate() error = %v, want error containing %v", err.Error(), tt.errorString)
				}
			} else {
				if err != nil {
					t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
				}
			}
		})
	}
}

func TestLoad(t *testing.T) {
	originalVars := map[string]string{
		"REMOTE_URL":      os.Getenv("REMOTE_URL"),
		"REMOTE_ANON_KEY": os.Getenv("REMOTE_ANON_KEY"),
		"AVATAR_BUCKET":   os.Getenv("AVATAR_BUCKET"),
		"HTTP_TIMEOUT":    os.Getenv("HTTP_TIMEOUT"),
		"SQLITE_DB_PATH":  os.Getenv("SQLITE_DB_PATH"),
		"AMQP_URL":        os.Getenv("AMQP_URL"),
		"DATA_BACKEND":    os.Getenv("DATA_BACKEND"),
	}

	for key := range originalVars {
		os.Unsetenv(key)
	}

	defer func() {
		for key, value := range originalVars {
			if value != "" {
				os.Setenv(key, value)
			} else {
				os.Unsetenv(key)
			}
		}
	}()

	t.Run("default values", func(t *testing.T) {
		cfg := Load()

		if cfg.DataBackend != "rest" {
			t.Errorf("Load() DataBackend = %v, want rest", cfg.DataBackend)
		}
		if cfg.AvatarBucket != "avatars" {
			t.Errorf("Load() AvatarBucket = %v, want avatars", cfg.AvatarBucket)
		}
		if cfg.HTTPTimeout != 15*time.Second {
			t.Errorf("Load() HTTPTimeout = %v, want 15s", cfg.HTTPTimeout)
		}
		if cfg.SQLiteDBPath != "./data/saldo.db" {
			t.Errorf("Load() SQLiteDBPath = %v, want ./data/saldo.db", cfg.SQLiteDBPath)
		}
		if cfg.AMQPURL != "" {
			t.Errorf("Load() AMQPURL = %v, want empty (feed disabled)", cfg.AMQPURL)
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		os.Setenv("REMOTE_URL", "https://project.example.co")
		os.Setenv("REMOTE_ANON_KEY", "anon-key")
		os.Setenv("DATA_BACKEND", "sqlite")
		os.Setenv("SQLITE_DB_PATH", "/tmp/test.db")
		os.Setenv("HTTP_TIMEOUT", "45s")

		cfg := Load()

		if cfg.RemoteURL != "https://project.example.co" {
			t.Errorf("Load() RemoteURL = %v", cfg.RemoteURL)
		}
		if cfg.RemoteAnonKey != "anon-key" {
			t.Errorf("Load() RemoteAnonKey = %v", cfg.RemoteAnonKey)
		}
		if cfg.DataBackend != "sqlite" {
			t.Errorf("Load() DataBackend = %v, want sqlite", cfg.DataBackend)
		}
		if cfg.SQLiteDBPath != "/tmp/test.db" {
			t.Errorf("Load() SQLiteDBPath = %v, want /tmp/test.db", cfg.SQLiteDBPath)
		}
		if cfg.HTTPTimeout != 45*time.Second {
			t.Errorf("Load() HTTPTimeout = %v, want 45s", cfg.HTTPTimeout)
		}
	})

	t.Run("invalid duration uses default", func(t *testing.T) {
		os.Setenv("HTTP_TIMEOUT", "invalid")

		cfg := Load()
		if cfg.HTTPTimeout != 15*time.Second {
			t.Errorf("Load() HTTPTimeout = %v, want 15s (default for invalid input)", cfg.HTTPTimeout)
		}
	})
}
