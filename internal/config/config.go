package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
)

// Config holds the console settings.
type Config struct {
	APIURL       string
	Timeout      time.Duration
	LogDir       string
	LogLevel     string
	PollInterval time.Duration
	Token        string // from PRMS_TOKEN only; never read from the file
}

const (
	defaultConfigPath   = "~/.config/prms/config.toml"
	defaultLogDir       = "~/.local/share/prms/logs"
	defaultAPIURL       = "http://127.0.0.1:5000/api"
	defaultTimeout      = 10 * time.Second
	defaultLogLevel     = "info"
	defaultPollInterval = 15 * time.Second
)

// Environment overrides.
const (
	EnvAPIURL   = "PRMS_API_URL"
	EnvTimeout  = "PRMS_TIMEOUT"
	EnvLogLevel = "PRMS_LOG_LEVEL"
	EnvToken    = "PRMS_TOKEN"
)

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		APIURL:       defaultAPIURL,
		Timeout:      defaultTimeout,
		LogDir:       mustExpand(defaultLogDir),
		LogLevel:     defaultLogLevel,
		PollInterval: defaultPollInterval,
	}
}

// LoadEnvFile loads KEY=value pairs from a .env file into the process
// environment without replacing variables that are already set. A missing
// file is not an error.
func LoadEnvFile(path string) error {
	if strings.TrimSpace(path) == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// Load parses the config file, falling back to defaults when missing, then
// applies environment overrides.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := readFile(resolved, &cfg); err != nil {
		return Config{}, err
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL       string `toml:"api_url"`
		Timeout      string `toml:"timeout"`
		LogDir       string `toml:"log_dir"`
		LogLevel     string `toml:"log_level"`
		PollInterval string `toml:"poll_interval"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(raw.LogDir); v != "" {
		cfg.LogDir = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = v
	}
	if err := setDuration(&cfg.Timeout, "timeout", raw.Timeout); err != nil {
		return err
	}
	if err := setDuration(&cfg.PollInterval, "poll_interval", raw.PollInterval); err != nil {
		return err
	}
	return cfg.validate()
}

func applyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvToken)); v != "" {
		cfg.Token = v
	}
	if err := setDuration(&cfg.Timeout, EnvTimeout, os.Getenv(EnvTimeout)); err != nil {
		return err
	}
	return cfg.validate()
}

func setDuration(dst *time.Duration, name, v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	if d <= 0 {
		return fmt.Errorf("parse %s: must be positive", name)
	}
	*dst = d
	return nil
}

func (c Config) validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return nil
}

// Level returns the zerolog level for LogLevel, defaulting to info.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(c.LogLevel)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// LogPath returns the path to the console's log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/prms.log")
	}
	return filepath.Join(c.LogDir, "prms.log")
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

func mustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
