package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/fakeyudi/notegen/internal/display"
	"github.com/fakeyudi/notegen/internal/logging"
)

// EnvPrefix prefixes every environment override, e.g. NOTEGEN_ENDPOINT.
const EnvPrefix = "NOTEGEN"

// Config holds all configurable notegen settings.
type Config struct {
	Endpoint       string        `mapstructure:"endpoint"`
	Style          string        `mapstructure:"style"` // glamour style name or "plain"
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	LogLevel       string        `mapstructure:"log_level"`
	LogFile        string        `mapstructure:"log_file"`   // TUI log; empty means the state dir default
	WrapWidth      int           `mapstructure:"wrap_width"` // 0 wraps at the pane width
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		Endpoint:       "http://127.0.0.1:8000/generate-stream",
		Style:          "auto",
		ConnectTimeout: 30 * time.Second,
		LogLevel:       "info",
	}
}

// Load builds the effective configuration: defaults, then the global file,
// then the project file, then the environment (including a .env file in the
// working directory).
func Load() (Config, error) {
	if err := LoadEnvFile(".env"); err != nil {
		return Config{}, err
	}
	global, err := LoadGlobal()
	if err != nil {
		return Config{}, err
	}
	project, err := LoadProject()
	if err != nil {
		return Config{}, err
	}
	cfg := Merge(global, project)
	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// GlobalPath returns ~/.config/notegen/config.json.
func GlobalPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "notegen", "config.json"), nil
}

// LoadGlobal reads ~/.config/notegen/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	path, err := GlobalPath()
	if err != nil {
		return nil, err
	}
	return loadFile(path, true)
}

// LoadProject reads .notegenconfig in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(".notegenconfig", false)
}

// loadFile reads and parses a JSON config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	v := viper.New()
	v.SetConfigType("json")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults.
func Merge(global, project *Config) Config {
	result := Defaults()
	for _, layer := range []*Config{global, project} {
		if layer == nil {
			continue
		}
		if layer.Endpoint != "" {
			result.Endpoint = layer.Endpoint
		}
		if layer.Style != "" {
			result.Style = layer.Style
		}
		if layer.ConnectTimeout > 0 {
			result.ConnectTimeout = layer.ConnectTimeout
		}
		if layer.LogLevel != "" {
			result.LogLevel = layer.LogLevel
		}
		if layer.LogFile != "" {
			result.LogFile = layer.LogFile
		}
		if layer.WrapWidth > 0 {
			result.WrapWidth = layer.WrapWidth
		}
	}
	return result
}

// LoadEnvFile loads KEY=value pairs from path into the process environment
// without overriding variables that are already set. A missing file is fine.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return &ParseError{Path: path, Err: err}
	}
	return nil
}

// ApplyEnv overrides cfg with NOTEGEN_* environment variables.
func ApplyEnv(cfg *Config) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if s := v.GetString("endpoint"); s != "" {
		cfg.Endpoint = s
	}
	if s := v.GetString("style"); s != "" {
		cfg.Style = s
	}
	if s := v.GetString("log_level"); s != "" {
		cfg.LogLevel = s
	}
	if s := v.GetString("log_file"); s != "" {
		cfg.LogFile = s
	}
	if s := v.GetString("connect_timeout"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("%s_CONNECT_TIMEOUT: %w", EnvPrefix, err)
		}
		cfg.ConnectTimeout = d
	}
	if s := v.GetString("wrap_width"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("%s_WRAP_WIDTH: %w", EnvPrefix, err)
		}
		cfg.WrapWidth = n
	}
	return nil
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", c.Endpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: must be an absolute http or https URL", c.Endpoint)
	}
	if !display.ValidStyle(c.Style) {
		return fmt.Errorf("invalid style %q: must be one of %s", c.Style, strings.Join(display.Styles, ", "))
	}
	if !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log level %q: must be one of %s", c.LogLevel, strings.Join(logging.Levels, ", "))
	}
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("invalid connect timeout %s: must be positive", c.ConnectTimeout)
	}
	if c.WrapWidth < 0 {
		return fmt.Errorf("invalid wrap width %d: must not be negative", c.WrapWidth)
	}
	return nil
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
