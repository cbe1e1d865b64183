package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Firebase project
	ProjectID string `mapstructure:"project-id"`
	APIKey    string `mapstructure:"api-key"`
	UserID    string `mapstructure:"user-id"`

	// Session code shape and lifetime
	SessionExpiryHours int `mapstructure:"session-expiry-hours"`
	CodeLength         int `mapstructure:"code-length"`
	MaxCodeValue       int `mapstructure:"max-code-value"`

	// Polling bounds
	PollInterval         time.Duration `mapstructure:"poll-interval"`
	MaxPollDuration      time.Duration `mapstructure:"max-poll-duration"`
	MaxConsecutiveErrors int           `mapstructure:"max-consecutive-errors"`

	// Local paths
	WorkspaceDir string `mapstructure:"workspace-dir"`
	SQLitePath   string `mapstructure:"sqlite-path"`
	FSMDBPath    string `mapstructure:"fsm-db-path"`

	// Blob store backend
	StorageBackend string `mapstructure:"storage-backend"`
	S3Bucket       string `mapstructure:"s3-bucket"`
	S3Region       string `mapstructure:"s3-region"`

	// Transport and limits
	HTTPTimeout time.Duration `mapstructure:"http-timeout"`
	MaxFileSize int64         `mapstructure:"max-file-size"`

	// Retrieval workflow
	FSMMaxRetries int `mapstructure:"fsm-max-retries"`

	// Endpoint overrides (tests, emulators)
	FirestoreBaseURL string `mapstructure:"firestore-base-url"`
	StorageBaseURL   string `mapstructure:"storage-base-url"`
}

// Load reads configuration from environment, config file, and defaults
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("project-id", "markasset-project")
	viper.SetDefault("api-key", "")
	viper.SetDefault("user-id", "anonymous")
	viper.SetDefault("session-expiry-hours", 1)
	viper.SetDefault("code-length", 3)
	viper.SetDefault("max-code-value", 999)
	viper.SetDefault("poll-interval", 3*time.Second)
	viper.SetDefault("max-poll-duration", time.Hour)
	viper.SetDefault("max-consecutive-errors", 10)
	viper.SetDefault("workspace-dir", ".")
	viper.SetDefault("sqlite-path", ".markasset/history.db")
	viper.SetDefault("fsm-db-path", ".markasset/fsm")
	viper.SetDefault("storage-backend", "firebase")
	viper.SetDefault("s3-bucket", "markasset-uploads")
	viper.SetDefault("s3-region", "us-east-1")
	viper.SetDefault("http-timeout", 30*time.Second)
	viper.SetDefault("max-file-size", 1*1024*1024*1024)
	viper.SetDefault("fsm-max-retries", 5)
	viper.SetDefault("firestore-base-url", "")
	viper.SetDefault("storage-base-url", "")

	// Environment variables (will be MARKASSET_PROJECT_ID, etc.)
	viper.SetEnvPrefix("MARKASSET")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// Config file (optional)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.markasset")

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()

	// Unmarshal into config struct
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration for errors
func (c *Config) Validate() error {
	if c.ProjectID == "" {
		return fmt.Errorf("project-id cannot be empty")
	}
	if c.UserID == "" {
		return fmt.Errorf("user-id cannot be empty")
	}
	if c.CodeLength <= 0 {
		return fmt.Errorf("code-length must be positive")
	}
	if c.MaxCodeValue <= 0 {
		return fmt.Errorf("max-code-value must be positive")
	}
	if c.SessionExpiryHours <= 0 {
		return fmt.Errorf("session-expiry-hours must be positive")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll-interval must be positive")
	}
	if c.MaxPollDuration <= 0 {
		return fmt.Errorf("max-poll-duration must be positive")
	}
	if c.MaxConsecutiveErrors <= 0 {
		return fmt.Errorf("max-consecutive-errors must be positive")
	}
	if c.StorageBackend != "firebase" && c.StorageBackend != "s3" {
		return fmt.Errorf("storage-backend must be firebase or s3, got %q", c.StorageBackend)
	}
	if c.StorageBackend == "s3" && c.S3Bucket == "" {
		return fmt.Errorf("s3-bucket cannot be empty with the s3 backend")
	}
	if c.FSMMaxRetries < 0 {
		return fmt.Errorf("fsm-max-retries must be non-negative")
	}
	return nil
}

// TTL is the session lifetime written into new session documents.
func (c *Config) TTL() time.Duration {
	return time.Duration(c.SessionExpiryHours) * time.Hour
}

// FirestoreURL returns the documents root of the project's Firestore database.
func (c *Config) FirestoreURL() string {
	if c.FirestoreBaseURL != "" {
		return c.FirestoreBaseURL
	}
	return fmt.Sprintf("https://firestore.googleapis.com/v1/projects/%s/databases/(default)/documents", c.ProjectID)
}

// StorageURL returns the objects root of the project's Firebase Storage bucket.
func (c *Config) StorageURL() string {
	if c.StorageBaseURL != "" {
		return c.StorageBaseURL
	}
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s.appspot.com/o", c.ProjectID)
}
