package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileSystem interface for file operations (useful for testing).
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // Direct config file path (optional)
	EnvFile    string // Direct .env file path (optional)
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// Load loads shield configuration into cfg. YAML is read first, then a
// .env file, then process environment variables prefixed with SHIELD_
// override both.
func Load(cfg *ShieldConfig, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}

	if lc.ConfigFile == "" {
		lc.ConfigFile = findConfigFile(lc.FileSystem)
	}
	if lc.EnvFile == "" {
		lc.EnvFile = findEnvFile(lc.FileSystem)
	}

	v := viper.New()

	if lc.ConfigFile != "" && lc.FileSystem.Exists(lc.ConfigFile) {
		v.SetConfigFile(lc.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", lc.ConfigFile, err)
		}
	}

	if lc.EnvFile != "" && lc.FileSystem.Exists(lc.EnvFile) {
		if err := lc.FileSystem.LoadEnv(lc.EnvFile); err != nil {
			return fmt.Errorf("failed to load .env file %s: %w", lc.EnvFile, err)
		}
	}

	v.SetEnvPrefix("SHIELD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v, cfg)

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal shield config: %w", err)
	}

	cfg.ApplyDefaults()
	return nil
}

// findConfigFile searches standard locations for a shield config file.
func findConfigFile(fs FileSystem) string {
	for _, path := range []string{"./shield.yml", "./config/shield.yml", "./config.yml"} {
		if fs.Exists(path) {
			return path
		}
	}
	return ""
}

// findEnvFile searches standard locations for a .env file.
func findEnvFile(fs FileSystem) string {
	for _, path := range []string{".env.shield", ".env"} {
		if fs.Exists(path) {
			return path
		}
	}
	return ""
}

// bindEnvKeys registers the nested keys viper should consider for
// environment overrides. AutomaticEnv alone does not see keys that are
// absent from the config file.
func bindEnvKeys(v *viper.Viper, _ *ShieldConfig) {
	keys := []string{
		"logging.level", "logging.format", "logging.output",
		"retry.max_attempts", "retry.backoff", "retry.initial_delay",
		"retry.increment", "retry.multiplier", "retry.max_delay",
		"retry.jitter_factor",
		"timeout.timeout",
		"bulkhead.name", "bulkhead.max_concurrent", "bulkhead.max_wait",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}
