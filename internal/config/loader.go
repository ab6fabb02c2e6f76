package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by [Loader].
const EnvPrefix = "E2EGEN"

// Environment variables with a fixed meaning. Every other key is reachable
// as EnvPrefix plus its upper-cased key path.
const (
	EnvConfigPath = "E2EGEN_CONFIG_PATH"
	EnvOutputDir  = "E2EGEN_OUTPUT_DIR"
	EnvVariant    = "E2EGEN_VARIANT"
	EnvModulePath = "E2EGEN_MODULE_PATH"
	EnvTimeout    = "E2EGEN_TIMEOUT"
	EnvGoVersion  = "E2EGEN_GO_VERSION"
)

const (
	appName        = "e2egen"
	configFileName = "config.yaml"
	localFileName  = ".e2egen.yaml"
)

// Loader handles Viper-based configuration loading.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new [Loader] with a fresh Viper instance bound to the
// E2EGEN_ environment.
func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())

	// Short forms kept from the first releases.
	_ = v.BindEnv("job.module_path", EnvModulePath, EnvPrefix+"_JOB_MODULE_PATH")
	_ = v.BindEnv("job.timeout", EnvTimeout, EnvPrefix+"_JOB_TIMEOUT")

	return &Loader{v: v}
}

// setDefaults registers every scalar key so AutomaticEnv can resolve it
// during Unmarshal. Lists and maps without a scalar form are left to
// [DefaultConfig].
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("output_dir", cfg.OutputDir)
	v.SetDefault("extension", cfg.Extension)
	v.SetDefault("variant", cfg.Variant)
	v.SetDefault("go_version", cfg.GoVersion)
	v.SetDefault("strict", cfg.Strict)
	v.SetDefault("job.module_path", cfg.Job.ModulePath)
	v.SetDefault("job.timeout", cfg.Job.Timeout)
	v.SetDefault("job.runs_on", cfg.Job.RunsOn)
	v.SetDefault("job.notify_action", cfg.Job.NotifyAction)
	v.SetDefault("job.notify_secret", cfg.Job.NotifySecret)
	v.SetDefault("discovery.dir", cfg.Discovery.Dir)
	v.SetDefault("discovery.pattern", cfg.Discovery.Pattern)
}

// Load resolves the configuration from the environment and the first
// config file found.
//
// A .env file in the working directory is loaded into the process
// environment first; variables that are already set are not overridden.
// When no config file exists, [DefaultConfig] with environment overrides
// is returned.
func (l *Loader) Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	if path := os.Getenv(EnvConfigPath); path != "" {
		return l.LoadFromFile(path)
	}

	for _, path := range searchPaths() {
		if _, err := os.Stat(path); err == nil {
			return l.LoadFromFile(path)
		}
	}

	return l.unmarshal()
}

// LoadFromFile loads configuration from the given file on top of
// [DefaultConfig]. The format is derived from the file extension.
// Environment variables still take precedence over the file.
func (l *Loader) LoadFromFile(path string) (*Config, error) {
	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return l.unmarshal()
}

func (l *Loader) unmarshal() (*Config, error) {
	cfg := DefaultConfig()
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	return cfg, nil
}

// ConfigDir returns the platform-standard configuration directory for e2egen.
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(dir, appName), nil
}

// DefaultConfigPath returns the path of the user-level config file.
func DefaultConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// searchPaths lists config file candidates in priority order.
func searchPaths() []string {
	var paths []string
	if p, err := DefaultConfigPath(); err == nil {
		paths = append(paths, p)
	}
	return append(paths, localFileName)
}
