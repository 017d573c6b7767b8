package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// Identity provider
	AuthMode       string // "header" or "token"
	AuthHeaderName string
	AuthTokens     string // "token=userId" pairs, comma separated

	// Rate limiting
	RequestsPerMinute int

	// AMQP (optional; empty URL disables audit event publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Audit export worker
	GoogleSpreadsheetID string
	GoogleSheetName     string
	ExportRetryDelay    time.Duration
}

func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/fintrack.db"),

		AuthMode:       getEnv("AUTH_MODE", "header"),
		AuthHeaderName: getEnv("AUTH_HEADER_NAME", "X-User-Id"),
		AuthTokens:     getEnv("AUTH_TOKENS", ""),

		RequestsPerMinute: getEnvInt("REQUESTS_PER_MINUTE", 120),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fintrack"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "audit_events"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "AuditLog"),
		ExportRetryDelay:    getEnvDuration("EXPORT_RETRY_DELAY", 30*time.Second),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	switch c.AuthMode {
	case "header":
		if c.AuthHeaderName == "" {
			errors = append(errors, "auth header name cannot be empty when AUTH_MODE is 'header'")
		}
	case "token":
		if c.AuthTokens == "" {
			errors = append(errors, "AUTH_TOKENS cannot be empty when AUTH_MODE is 'token'")
		} else {
			for _, pair := range strings.Split(c.AuthTokens, ",") {
				if !strings.Contains(pair, "=") {
					errors = append(errors, fmt.Sprintf("invalid AUTH_TOKENS entry '%s': expected token=userId", pair))
				}
			}
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid auth mode '%s': must be 'header' or 'token'", c.AuthMode))
	}

	if c.RequestsPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid requests per minute %d: must be at least 1", c.RequestsPerMinute))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.ExportRetryDelay < time.Second {
		errors = append(errors, fmt.Sprintf("invalid export retry delay %v: must be at least 1 second", c.ExportRetryDelay))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// TokenMap parses AUTH_TOKENS into a token -> userId map.
func (c *Config) TokenMap() map[string]string {
	tokens := make(map[string]string)
	for _, pair := range strings.Split(c.AuthTokens, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		if token, userID, ok := strings.Cut(pair, "="); ok && token != "" && userID != "" {
			tokens[token] = userID
		}
	}
	return tokens
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
