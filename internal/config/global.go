package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/lawcat/config.yml.
type GlobalConfig struct {
	LibraryPath       string    `yaml:"library_path,omitempty"`
	UserAgent         string    `yaml:"user_agent,omitempty"`
	LibrisBaseURL     string    `yaml:"libris_base_url,omitempty"`
	JuridikbokBaseURL string    `yaml:"juridikbok_base_url,omitempty"`
	Log               LogConfig `yaml:"log"`
}

// LogConfig selects where and how log records are written.
type LogConfig struct {
	// Destination can be 'stdout', 'stderr' or 'file' (lawcat.log in the
	// repository cache directory).
	Destination string `yaml:"destination"`
	// Level of logging: 'error', 'warn', 'info', 'debug'.
	Level string `yaml:"level"`
	// Format can be 'json' or 'text'.
	Format string `yaml:"format"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "lawcat"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"

	EnvUserAgent = "LAWCAT_USER_AGENT"
	EnvLogLevel  = "LAWCAT_LOG_LEVEL"
)

// ErrLibraryPathNotConfigured is returned when library_path is not set.
var ErrLibraryPathNotConfigured = errors.New("library_path not configured")

var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/lawcat/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file and applies
// environment overrides. A missing file yields the defaults.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	cfg := GlobalConfig{Log: LogConfig{Destination: "stderr", Level: "warn", Format: "text"}}

	if path := GlobalConfigPath(); path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parsing global config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	if cfg.LibraryPath != "" {
		cfg.LibraryPath = ExpandPath(cfg.LibraryPath)
	}
	if ua := os.Getenv(EnvUserAgent); ua != "" {
		cfg.UserAgent = ua
	}
	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		cfg.Log.Level = lvl
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// ValidateLibraryPath returns the configured library path if it is a
// lawcat repository.
func ValidateLibraryPath() (string, error) {
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return "", err
	}
	if cfg.LibraryPath == "" {
		return "", ErrLibraryPathNotConfigured
	}
	if !IsRepository(cfg.LibraryPath) {
		return "", fmt.Errorf("library_path is not a lawcat repository: %s", cfg.LibraryPath)
	}
	return cfg.LibraryPath, nil
}

// HelpfulConfigMessage explains how to point lawcat at a default library.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No lawcat repository found.

Run 'lawcat init' in a directory, or create %s:
  mkdir -p %s
  echo 'library_path: /path/to/your/library' > %s`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
