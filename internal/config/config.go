// Package config resolves dashboard settings from defaults, an optional TOML
// file, SPECDASH_* environment variables and command-line flags, in that
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/viper"

	"github.com/mpjhorner/specdash/internal/flow"
	"github.com/mpjhorner/specdash/internal/textutil"
	"github.com/mpjhorner/specdash/internal/view"
)

// EnvPrefix prefixes every environment variable the dashboard reads
const EnvPrefix = "SPECDASH"

// Keys
const (
	KeyFlow            = "flow"
	KeyWatch           = "watch"
	KeyRefreshInterval = "refresh_interval"
	KeyDebounce        = "debounce"
	KeyIcons           = "icons"
	KeyNotify          = "notify"
	KeyHighlightCode   = "highlight_code"
	KeyLogFile         = "log_file"
	KeyLogLevel        = "log_level"
	KeySelectFlow      = "select_flow"
)

// Refresh interval bounds
const (
	DefaultRefreshInterval = time.Second
	MinRefreshInterval     = 200 * time.Millisecond
	MaxRefreshInterval     = 5 * time.Second
	DefaultDebounce        = 250 * time.Millisecond
)

// Config is the resolved configuration, built once at startup and passed
// down. Nothing below cmd reads the environment.
type Config struct {
	Flow            string
	Watch           bool
	RefreshInterval time.Duration
	Debounce        time.Duration
	Icons           string
	Notify          bool
	HighlightCode   bool
	LogFile         string
	LogLevel        string
	SelectFlow      bool

	// File is the config file that was read, if any.
	File string
}

// New returns a viper instance carrying the defaults and environment binding
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyFlow, "")
	v.SetDefault(KeyWatch, true)
	v.SetDefault(KeyRefreshInterval, DefaultRefreshInterval.String())
	v.SetDefault(KeyDebounce, DefaultDebounce.String())
	v.SetDefault(KeyIcons, "ascii")
	v.SetDefault(KeyNotify, false)
	v.SetDefault(KeyHighlightCode, true)
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeySelectFlow, false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// DefaultPath returns $XDG_CONFIG_HOME/specdash/config.toml, falling back to
// ~/.config. It returns "" when no home directory is known.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "specdash", "config.toml")
}

// Load reads the config file into v and resolves the settings. An explicit
// file must exist; the default file is optional.
func Load(v *viper.Viper, file string) (Config, error) {
	explicit := file != ""
	if !explicit {
		file = DefaultPath()
	}

	var used string
	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("toml")
		err := v.ReadInConfig()
		switch {
		case err == nil:
			used = v.ConfigFileUsed()
		case explicit || !isNotExist(err):
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg, err := Resolve(v)
	if err != nil {
		return Config{}, err
	}
	cfg.File = used
	return cfg, nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

// Resolve builds a Config from the values already in v
func Resolve(v *viper.Viper) (Config, error) {
	cfg := Config{
		Flow:          strings.ToLower(strings.TrimSpace(v.GetString(KeyFlow))),
		Watch:         v.GetBool(KeyWatch),
		Icons:         strings.ToLower(strings.TrimSpace(v.GetString(KeyIcons))),
		Notify:        v.GetBool(KeyNotify),
		HighlightCode: v.GetBool(KeyHighlightCode),
		LogFile:       v.GetString(KeyLogFile),
		LogLevel:      v.GetString(KeyLogLevel),
		SelectFlow:    v.GetBool(KeySelectFlow),
	}

	if cfg.Flow != "" {
		if _, err := flow.ParseFlow(cfg.Flow); err != nil {
			return Config{}, err
		}
	}
	if cfg.Icons == "" {
		cfg.Icons = "ascii"
	}
	if iconSets := view.IconSetNames(); !lo.Contains(iconSets, cfg.Icons) {
		return Config{}, fmt.Errorf("invalid icons %q: expected one of %s", cfg.Icons, strings.Join(iconSets, ", "))
	}

	interval, err := Duration(v.Get(KeyRefreshInterval))
	if err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", KeyRefreshInterval, err)
	}
	cfg.RefreshInterval = ClampRefreshInterval(interval)

	debounce, err := Duration(v.Get(KeyDebounce))
	if err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", KeyDebounce, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	cfg.Debounce = debounce

	return cfg, nil
}

// ClampRefreshInterval limits d to [200ms, 5s]. Zero or negative values use
// the default.
func ClampRefreshInterval(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultRefreshInterval
	}
	return textutil.ClampDuration(d, MinRefreshInterval, MaxRefreshInterval)
}

// Duration converts a config value to a duration. Bare numbers, including
// numeric strings, are milliseconds; strings may also use Go duration syntax
// such as "1.5s".
func Duration(value any) (time.Duration, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case time.Duration:
		return v, nil
	case int:
		return time.Duration(v) * time.Millisecond, nil
	case int64:
		return time.Duration(v) * time.Millisecond, nil
	case float64:
		return time.Duration(v * float64(time.Millisecond)), nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, nil
		}
		if ms, err := strconv.ParseFloat(s, 64); err == nil {
			return time.Duration(ms * float64(time.Millisecond)), nil
		}
		return time.ParseDuration(s)
	default:
		return 0, fmt.Errorf("unsupported duration value %v", value)
	}
}
