// Package config holds the settings of the evaluator behind the C ABI and the
// command-line tool.
//
// Settings come from, in increasing priority: the defaults; a YAML or JSON
// file named by MEVAC_CONFIG; and the environment variables MEVAC_LOG_LEVEL,
// MEVAC_LOG_FORMAT, MEVAC_ON_ERROR, MEVAC_MAX_DEPTH and MEVAC_METRICS. A file
// looks like:
//
//	log_level: info
//	log_format: json
//	on_error: nan
//	max_depth: 64
//	metrics: true
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Error policies.
const (
	// OnErrorNaN returns NaN with a status code for failed evaluations.
	OnErrorNaN = "nan"
	// OnErrorAbort panics on failed evaluations. It exists for hosts that
	// depend on failures terminating the process.
	OnErrorAbort = "abort"
)

// EnvFile names the environment variable holding the config file path.
const EnvFile = "MEVAC_CONFIG"

// Config is the evaluator configuration.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// LogFormat is text or json.
	LogFormat string
	// OnError is OnErrorNaN or OnErrorAbort.
	OnError string
	// MaxDepth bounds the nesting of parsed expressions so that hostile input
	// cannot exhaust the stack. Zero means no limit.
	MaxDepth int
	// Metrics enables OpenTelemetry metrics.
	Metrics bool
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		LogLevel:  "warn",
		LogFormat: "text",
		OnError:   OnErrorNaN,
		MaxDepth:  10000,
		Metrics:   false,
	}
}

// Merge overrides fields of c with any present in v. A key holding a value
// of the wrong type is an error rather than being ignored.
func (c Config) Merge(v Values) (Config, error) {
	var errs []error
	str := func(key string, dst *string) {
		if !v.Has(key) {
			return
		}
		if s, ok := v.String(key); ok {
			*dst = s
			return
		}
		errs = append(errs, fmt.Errorf("%s: want a string", key))
	}
	str("log_level", &c.LogLevel)
	str("log_format", &c.LogFormat)
	str("on_error", &c.OnError)
	if v.Has("max_depth") {
		if n, ok := v.Int("max_depth"); ok {
			c.MaxDepth = n
		} else {
			errs = append(errs, errors.New("max_depth: want an integer"))
		}
	}
	if v.Has("metrics") {
		if b, ok := v.Bool("metrics"); ok {
			c.Metrics = b
		} else {
			errs = append(errs, errors.New("metrics: want true or false"))
		}
	}
	return c, errors.Join(errs...)
}

// ApplyEnv overrides fields of c with environment variables found by lookup,
// which is normally os.LookupEnv.
func (c Config) ApplyEnv(lookup func(string) (string, bool)) (Config, error) {
	if s, ok := lookup("MEVAC_LOG_LEVEL"); ok {
		c.LogLevel = strings.ToLower(strings.TrimSpace(s))
	}
	if s, ok := lookup("MEVAC_LOG_FORMAT"); ok {
		c.LogFormat = strings.ToLower(strings.TrimSpace(s))
	}
	if s, ok := lookup("MEVAC_ON_ERROR"); ok {
		c.OnError = strings.ToLower(strings.TrimSpace(s))
	}
	if s, ok := lookup("MEVAC_MAX_DEPTH"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return c, fmt.Errorf("MEVAC_MAX_DEPTH: %w", err)
		}
		c.MaxDepth = n
	}
	if s, ok := lookup("MEVAC_METRICS"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return c, fmt.Errorf("MEVAC_METRICS: %w", err)
		}
		c.Metrics = b
	}
	return c, nil
}

// Validate reports every invalid field of c.
func (c Config) Validate() error {
	var errs []error
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log level %q", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q", c.LogFormat))
	}
	switch c.OnError {
	case OnErrorNaN, OnErrorAbort:
	default:
		errs = append(errs, fmt.Errorf("invalid error policy %q", c.OnError))
	}
	if c.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("negative max depth %d", c.MaxDepth))
	}
	return errors.Join(errs...)
}

// Load builds the configuration from the file named by path, if not empty,
// and then the environment found by lookup.
func Load(path string, lookup func(string) (string, bool)) (Config, error) {
	c := Default()
	if path != "" {
		v, err := readValues(path)
		if err != nil {
			return Default(), err
		}
		c, err = c.Merge(v)
		if err != nil {
			return Default(), fmt.Errorf("config file %s: %w", path, err)
		}
	}
	c, err := c.ApplyEnv(lookup)
	if err != nil {
		return Default(), err
	}
	if err := c.Validate(); err != nil {
		return Default(), fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

// formats maps config file extensions to their decoders.
var formats = map[string]struct {
	name   string
	decode func([]byte, any) error
}{
	".yaml": {"yaml", yaml.Unmarshal},
	".yml":  {"yaml", yaml.Unmarshal},
	".json": {"json", json.Unmarshal},
}

func readValues(path string) (Values, error) {
	ext := strings.ToLower(filepath.Ext(path))
	f, ok := formats[ext]
	if !ok {
		return Values{}, fmt.Errorf("unsupported config file extension: %q", ext)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Values{}, fmt.Errorf("read config file: %w", err)
	}
	var m map[string]any
	if err := f.decode(data, &m); err != nil {
		return Values{}, fmt.Errorf("parse %s: %w", f.name, err)
	}
	return NewValues(m), nil
}

// FromEnv loads the configuration the way the C library does: from the file
// named by MEVAC_CONFIG and the process environment.
func FromEnv() (Config, error) {
	path, _ := os.LookupEnv(EnvFile)
	return Load(path, os.LookupEnv)
}
