package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/mymoney/internal/logging"
	"github.com/cleared-dev/mymoney/internal/store"
)

// FileName is the config file kept at the data root.
const FileName = "mymoney.yaml"

// Config represents the top-level mymoney.yaml configuration.
type Config struct {
	Storage  StorageConfig `yaml:"storage"`
	Archive  ArchiveConfig `yaml:"archive"`
	Git      GitConfig     `yaml:"git"`
	LogLevel string        `yaml:"log_level"`
}

// StorageConfig selects where canonical records are appended.
type StorageConfig struct {
	Backend    string       `yaml:"backend"` // csv, sqlite or sheets
	SQLitePath string       `yaml:"sqlite_path,omitempty"`
	Sheets     SheetsConfig `yaml:"sheets"`
}

// SheetsConfig locates the spreadsheet store.
type SheetsConfig struct {
	Credentials   string `yaml:"credentials,omitempty"` // service account key file
	SpreadsheetID string `yaml:"spreadsheet_id,omitempty"`
	Title         string `yaml:"title"`
	Share         string `yaml:"share,omitempty"`
}

// ArchiveConfig controls what happens to exports after ingest.
type ArchiveConfig struct {
	KeepSource bool   `yaml:"keep_source"`
	GCSBucket  string `yaml:"gcs_bucket,omitempty"`
	GCSPrefix  string `yaml:"gcs_prefix,omitempty"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a mymoney.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// LoadRoot reads <root>/mymoney.yaml, falling back to Default when the
// file does not exist, and applies environment overrides.
func LoadRoot(root string) (*Config, error) {
	cfg, err := Load(filepath.Join(root, FileName))
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = Default(), nil
	}
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, cfg.Validate()
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new data folder.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:    string(store.KindCSV),
			SQLitePath: store.CoreDir + "/mymoney.db",
			Sheets:     SheetsConfig{Title: "MyMoney"},
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "mymoney",
			AuthorEmail: "mymoney@localhost",
		},
		LogLevel: "info",
	}
}

// Validate rejects unknown storage backends and log levels.
func (c *Config) Validate() error {
	if _, err := store.ParseKind(c.Storage.Backend); err != nil {
		return err
	}
	if _, ok := logging.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

// Environment variables that override file settings.
const (
	EnvDataDir           = "MYMONEY_DATA_DIR"
	EnvLogLevel          = "MYMONEY_LOG_LEVEL"
	EnvStorage           = "MYMONEY_STORAGE"
	EnvSheetsCredentials = "MYMONEY_SHEETS_CREDENTIALS"
	EnvSpreadsheetID     = "MYMONEY_SPREADSHEET_ID"
	EnvGCSBucket         = "MYMONEY_GCS_BUCKET"
)

// LoadDotEnv loads a .env file from the working directory into the
// environment. A missing file is not an error.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// ApplyEnv overrides settings with any non-empty MYMONEY_* variables.
func (c *Config) ApplyEnv() {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.LogLevel, EnvLogLevel)
	set(&c.Storage.Backend, EnvStorage)
	set(&c.Storage.Sheets.Credentials, EnvSheetsCredentials)
	set(&c.Storage.Sheets.SpreadsheetID, EnvSpreadsheetID)
	set(&c.Archive.GCSBucket, EnvGCSBucket)
}

// DataDir picks the data root: arg when given, then MYMONEY_DATA_DIR, then
// the working directory.
func DataDir(arg string) string {
	if arg != "" {
		return arg
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		return v
	}
	return "."
}
