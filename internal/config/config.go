package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"

	DirectorySheets = "sheets"
	DirectoryFile   = "file"
)

// DirectoryConfig selects where staff, branch and leave records are read from
type DirectoryConfig struct {
	Source          string `yaml:"source" validate:"required,oneof=sheets file"`
	File            string `yaml:"file,omitempty" validate:"required_if=Source file"`
	SpreadsheetID   string `yaml:"spreadsheetID,omitempty" validate:"required_if=Source sheets"`
	StaffTab        string `yaml:"staffTab,omitempty"`
	BranchTab       string `yaml:"branchTab,omitempty"`
	LeaveTab        string `yaml:"leaveTab,omitempty"`
	CredentialsFile string `yaml:"credentialsFile,omitempty" validate:"required_if=Source sheets"`
	CacheTTL        string `yaml:"cacheTTL,omitempty"`
}

// HTTPConfig configures the API server
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// Config represents the application configuration
type Config struct {
	StoreBackend string          `yaml:"storeBackend" validate:"required,oneof=memory postgres"`
	DatabaseURL  string          `yaml:"databaseURL,omitempty" validate:"required_if=StoreBackend postgres"`
	Timezone     string          `yaml:"timezone,omitempty"`
	Directory    DirectoryConfig `yaml:"directory"`
	HTTP         HTTPConfig      `yaml:"http,omitempty"`
	OutlookRule  string          `yaml:"outlookRule,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Location returns the time zone in which "today" is evaluated
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CacheDuration returns how long a directory snapshot may be reused; zero disables caching
func (d DirectoryConfig) CacheDuration() time.Duration {
	ttl, err := time.ParseDuration(d.CacheTTL)
	if err != nil {
		return 0
	}
	return ttl
}

// LoadWithEnv loads and validates branch_cover_config.<env>.yaml.
// It looks for the config file in the current directory first, then in the user's home directory
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(fmt.Sprintf("branch_cover_config.%s.yaml", env))
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads, defaults and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.OutlookRule == "" {
		cfg.OutlookRule = "FREQ=DAILY;COUNT=7"
	}
	if cfg.Directory.Source == DirectorySheets {
		if cfg.Directory.StaffTab == "" {
			cfg.Directory.StaffTab = "Staff"
		}
		if cfg.Directory.BranchTab == "" {
			cfg.Directory.BranchTab = "Branches"
		}
		if cfg.Directory.LeaveTab == "" {
			cfg.Directory.LeaveTab = "Leave"
		}
	}
}

// Validate validates the configuration struct, time zone, durations and rrule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	if cfg.Directory.CacheTTL != "" {
		if _, err := time.ParseDuration(cfg.Directory.CacheTTL); err != nil {
			return fmt.Errorf("invalid directory.cacheTTL: %w", err)
		}
	}

	if cfg.OutlookRule != "" {
		if _, err := rrule.StrToRRule(cfg.OutlookRule); err != nil {
			return fmt.Errorf("invalid rrule in outlookRule: %w", err)
		}
	}

	return nil
}

// findConfigFile searches for the named file in the current directory and home directory
func findConfigFile(configFileName string) (string, error) {
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", configFileName)
}
