// Package config loads the batchdash settings from flags, BATCHDASH_*
// environment variables and an optional YAML config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Sternrassler/batch-dashboard/pkg/client"
	"github.com/Sternrassler/batch-dashboard/pkg/dashboard"
	"github.com/Sternrassler/batch-dashboard/pkg/endpoint"
	"github.com/Sternrassler/batch-dashboard/pkg/fetch"
	"github.com/Sternrassler/batch-dashboard/pkg/logging"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. BATCHDASH_BASE_URL.
const EnvPrefix = "BATCHDASH"

// Keys of the settings.
const (
	KeyBaseURL           = "base_url"
	KeyAPIBase           = "api_base"
	KeyUserAgent         = "user_agent"
	KeyTimeout           = "timeout"
	KeyCookie            = "cookie"
	KeyLogLevel          = "log_level"
	KeyLogFile           = "log_file"
	KeyStaleTime         = "stale_time"
	KeyFocusThrottle     = "focus_throttle"
	KeyRevalidateOnFocus = "revalidate_on_focus"
	KeyMetricsAddr       = "metrics_addr"
	KeyLocation          = "location"
)

// Config is the resolved batchdash configuration.
type Config struct {
	BaseURL           string
	APIBase           string
	UserAgent         string
	Timeout           time.Duration
	Cookie            string
	LogLevel          string
	LogFile           string
	StaleTime         time.Duration
	FocusThrottle     time.Duration
	RevalidateOnFocus bool
	MetricsAddr       string
	Location          string
}

// Default returns the built-in defaults.
func Default() Config {
	cc := client.DefaultConfig("http://localhost:8080")
	fc := fetch.DefaultConfig()
	return Config{
		BaseURL:           cc.BaseURL,
		APIBase:           endpoint.DefaultBase,
		UserAgent:         cc.UserAgent,
		Timeout:           cc.Timeout,
		LogLevel:          string(logging.LevelInfo),
		StaleTime:         fc.StaleTime,
		FocusThrottle:     fc.FocusThrottle,
		RevalidateOnFocus: fc.RevalidateOnFocus,
		Location:          dashboard.PathHome,
	}
}

// AddFlags registers the settings as flags on fs.
func AddFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("base-url", d.BaseURL, "backend origin")
	fs.String("api-base", d.APIBase, "path prefix of the backend API")
	fs.String("user-agent", d.UserAgent, "User-Agent header")
	fs.Duration("timeout", d.Timeout, "timeout of a single backend request")
	fs.String("cookie", "", "Cookie header sent with every request, e.g. a session id")
	fs.String("log-level", d.LogLevel, "log level (debug, info, warn, error, disabled)")
	fs.String("log-file", "", "write logs to this file")
	fs.Duration("stale-time", d.StaleTime, "age after which cached data is refetched on mount (0 = never)")
	fs.Duration("focus-throttle", d.FocusThrottle, "minimum interval between revalidations of one resource")
	fs.Bool("revalidate-on-focus", d.RevalidateOnFocus, "revalidate watched resources when the terminal regains focus")
	fs.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	fs.String("location", d.Location, "start location, e.g. /job-executions?jobName=importJob")
}

var flagKeys = map[string]string{
	"base-url":            KeyBaseURL,
	"api-base":            KeyAPIBase,
	"user-agent":          KeyUserAgent,
	"timeout":             KeyTimeout,
	"cookie":              KeyCookie,
	"log-level":           KeyLogLevel,
	"log-file":            KeyLogFile,
	"stale-time":          KeyStaleTime,
	"focus-throttle":      KeyFocusThrottle,
	"revalidate-on-focus": KeyRevalidateOnFocus,
	"metrics-addr":        KeyMetricsAddr,
	"location":            KeyLocation,
}

// Load resolves the configuration. Precedence: flags set on the command line,
// environment, config file, defaults. cfgFile may be empty, in which case
// $HOME/.batchdash.yaml is read when present.
func Load(fs *pflag.FlagSet, cfgFile string) (Config, error) {
	v := viper.New()

	d := Default()
	v.SetDefault(KeyBaseURL, d.BaseURL)
	v.SetDefault(KeyAPIBase, d.APIBase)
	v.SetDefault(KeyUserAgent, d.UserAgent)
	v.SetDefault(KeyTimeout, d.Timeout)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyStaleTime, d.StaleTime)
	v.SetDefault(KeyFocusThrottle, d.FocusThrottle)
	v.SetDefault(KeyRevalidateOnFocus, d.RevalidateOnFocus)
	v.SetDefault(KeyLocation, d.Location)

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if err := readConfigFile(v, cfgFile); err != nil {
		return Config{}, err
	}

	cfg := Config{
		BaseURL:           v.GetString(KeyBaseURL),
		APIBase:           v.GetString(KeyAPIBase),
		UserAgent:         v.GetString(KeyUserAgent),
		Timeout:           v.GetDuration(KeyTimeout),
		Cookie:            v.GetString(KeyCookie),
		LogLevel:          v.GetString(KeyLogLevel),
		LogFile:           v.GetString(KeyLogFile),
		StaleTime:         v.GetDuration(KeyStaleTime),
		FocusThrottle:     v.GetDuration(KeyFocusThrottle),
		RevalidateOnFocus: v.GetBool(KeyRevalidateOnFocus),
		MetricsAddr:       v.GetString(KeyMetricsAddr),
		Location:          v.GetString(KeyLocation),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readConfigFile(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		v.AddConfigPath(home)
		v.SetConfigName(".batchdash")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// no default config file is fine
			return nil
		}
		return fmt.Errorf("read config file %s: %w", v.ConfigFileUsed(), err)
	}
	return nil
}

// Validate checks the values that cannot be checked by the components.
func (c Config) Validate() error {
	switch logging.LogLevel(strings.ToLower(c.LogLevel)) {
	case logging.LevelDebug, logging.LevelInfo, logging.LevelWarn, "warning", logging.LevelError, logging.LevelDisabled, "off":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if c.StaleTime < 0 {
		return fmt.Errorf("stale time must be >= 0 (got %s)", c.StaleTime)
	}
	if c.FocusThrottle < 0 {
		return fmt.Errorf("focus throttle must be >= 0 (got %s)", c.FocusThrottle)
	}
	return nil
}

// Dashboard returns the application configuration.
func (c Config) Dashboard() dashboard.Config {
	dc := dashboard.DefaultConfig(c.BaseURL)
	dc.Client.UserAgent = c.UserAgent
	dc.Client.Timeout = c.Timeout
	if c.Cookie != "" {
		dc.Client.Header = map[string][]string{"Cookie": {c.Cookie}}
	}
	dc.APIBase = c.APIBase
	dc.Fetch.StaleTime = c.StaleTime
	dc.Fetch.FocusThrottle = c.FocusThrottle
	dc.Fetch.RevalidateOnFocus = c.RevalidateOnFocus
	dc.Location = c.Location
	return dc
}

// Logging returns the logger configuration.
func (c Config) Logging() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = logging.LogLevel(c.LogLevel)
	lc.File = c.LogFile
	return lc
}
