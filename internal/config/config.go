// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr string
	DBPath     string

	// SecretKey is the 32-byte AES-256 key for mailbox tokens at rest. Nil when
	// STUDIOPANEL_SECRET_KEY is unset, which disables mailbox connections.
	SecretKey []byte

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	IdentityHeader string
	AutoProvision  bool

	MailTimeout  time.Duration
	MessageLimit int
}

// HasMailboxCredentials returns true when both Google OAuth client values are
// set. Without them the mailbox connect flow is disabled.
func (c *Config) HasMailboxCredentials() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// Load reads configuration from environment variables and returns a validated Config.
// If STUDIOPANEL_ENV_FILE names a dotenv file it is loaded first; variables
// already present in the environment win over the file.
// Optional variables with defaults: STUDIOPANEL_LISTEN_ADDR (127.0.0.1:8080),
// STUDIOPANEL_DB_PATH (studiopanel.db), STUDIOPANEL_IDENTITY_HEADER
// (X-Forwarded-Email), STUDIOPANEL_AUTO_PROVISION (true),
// STUDIOPANEL_MAIL_TIMEOUT (15s), STUDIOPANEL_MESSAGE_LIMIT (20).
func Load() (*Config, error) {
	if envFile := os.Getenv("STUDIOPANEL_ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("STUDIOPANEL_ENV_FILE %q could not be loaded: %w", envFile, err)
		}
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("STUDIOPANEL_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "studiopanel.db"
	if v, ok := os.LookupEnv("STUDIOPANEL_DB_PATH"); ok {
		dbPath = v
	}

	var secretKey []byte
	if v := os.Getenv("STUDIOPANEL_SECRET_KEY"); v != "" {
		key, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("STUDIOPANEL_SECRET_KEY is not valid hex: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("STUDIOPANEL_SECRET_KEY must be 64 hex chars (32 bytes), got %d bytes", len(key))
		}
		secretKey = key
	}

	redirectURL := os.Getenv("STUDIOPANEL_GOOGLE_REDIRECT_URL")
	if redirectURL == "" {
		redirectURL = "http://" + listenAddr + "/mailbox/callback"
	}

	identityHeader := "X-Forwarded-Email"
	if v := strings.TrimSpace(os.Getenv("STUDIOPANEL_IDENTITY_HEADER")); v != "" {
		identityHeader = v
	}

	autoProvision := true
	if v, ok := os.LookupEnv("STUDIOPANEL_AUTO_PROVISION"); ok {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("STUDIOPANEL_AUTO_PROVISION has invalid boolean %q: %w", v, err)
		}
		autoProvision = parsed
	}

	mailTimeout := 15 * time.Second
	if v, ok := os.LookupEnv("STUDIOPANEL_MAIL_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("STUDIOPANEL_MAIL_TIMEOUT has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("STUDIOPANEL_MAIL_TIMEOUT must be positive, got %s", parsed)
		}
		mailTimeout = parsed
	}

	messageLimit := 20
	if v, ok := os.LookupEnv("STUDIOPANEL_MESSAGE_LIMIT"); ok {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 100 {
			return nil, fmt.Errorf("STUDIOPANEL_MESSAGE_LIMIT must be an integer between 1 and 100, got %q", v)
		}
		messageLimit = parsed
	}

	return &Config{
		ListenAddr:         listenAddr,
		DBPath:             dbPath,
		SecretKey:          secretKey,
		GoogleClientID:     os.Getenv("STUDIOPANEL_GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("STUDIOPANEL_GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  redirectURL,
		IdentityHeader:     identityHeader,
		AutoProvision:      autoProvision,
		MailTimeout:        mailTimeout,
		MessageLimit:       messageLimit,
	}, nil
}
