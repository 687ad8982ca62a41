package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/mevac/internal/config"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	c := config.Default()
	assert.Equal(t, "warn", c.LogLevel)
	assert.Equal(t, "text", c.LogFormat)
	assert.Equal(t, config.OnErrorNaN, c.OnError)
	assert.Equal(t, 10000, c.MaxDepth)
	assert.False(t, c.Metrics)
	assert.NoError(t, c.Validate())
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "mevac.yaml", "log_level: debug\nlog_format: json\non_error: abort\nmax_depth: 64\nmetrics: true\n")

	c, err := config.Load(path, env(nil))
	require.NoError(t, err)
	assert.Equal(t, config.Config{
		LogLevel:  "debug",
		LogFormat: "json",
		OnError:   config.OnErrorAbort,
		MaxDepth:  64,
		Metrics:   true,
	}, c)
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "mevac.json", `{"log_level": "info", "max_depth": 10}`)

	c, err := config.Load(path, env(nil))
	require.NoError(t, err)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, 10, c.MaxDepth)
	assert.Equal(t, "text", c.LogFormat, "unset keys keep defaults")
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "mevac.yml", "log_level: debug\nmax_depth: 64\n")

	c, err := config.Load(path, env(map[string]string{
		"MEVAC_LOG_LEVEL": " ERROR ",
		"MEVAC_MAX_DEPTH": "8",
		"MEVAC_METRICS":   "true",
		"MEVAC_ON_ERROR":  "abort",
	}))
	require.NoError(t, err)
	assert.Equal(t, "error", c.LogLevel)
	assert.Equal(t, 8, c.MaxDepth)
	assert.True(t, c.Metrics)
	assert.Equal(t, config.OnErrorAbort, c.OnError)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
		env  map[string]string
		msg  string
	}{
		{
			name: "missing file",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") },
			msg:  "read config file",
		},
		{
			name: "bad yaml",
			path: func(t *testing.T) string { return writeFile(t, "bad.yaml", "log_level: [") },
			msg:  "parse yaml",
		},
		{
			name: "bad json",
			path: func(t *testing.T) string { return writeFile(t, "bad.json", "{") },
			msg:  "parse json",
		},
		{
			name: "bad extension",
			path: func(t *testing.T) string { return writeFile(t, "mevac.toml", "") },
			msg:  "unsupported config file extension",
		},
		{
			name: "wrong type in file",
			path: func(t *testing.T) string { return writeFile(t, "mevac.yaml", "max_depth: deep\n") },
			msg:  "max_depth: want an integer",
		},
		{
			name: "bad yml",
			path: func(t *testing.T) string { return writeFile(t, "bad.yml", "metrics: {") },
			msg:  "parse yaml",
		},
		{
			name: "bad depth",
			path: func(*testing.T) string { return "" },
			env:  map[string]string{"MEVAC_MAX_DEPTH": "deep"},
			msg:  "MEVAC_MAX_DEPTH",
		},
		{
			name: "bad metrics",
			path: func(*testing.T) string { return "" },
			env:  map[string]string{"MEVAC_METRICS": "sometimes"},
			msg:  "MEVAC_METRICS",
		},
		{
			name: "bad policy",
			path: func(*testing.T) string { return "" },
			env:  map[string]string{"MEVAC_ON_ERROR": "retry"},
			msg:  "invalid error policy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := config.Load(tt.path(t), env(tt.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
			assert.Equal(t, config.Default(), c, "errors return defaults")
		})
	}
}

func TestValidate(t *testing.T) {
	c := config.Config{LogLevel: "loud", LogFormat: "xml", OnError: "ignore", MaxDepth: -1}
	err := c.Validate()
	require.Error(t, err)
	for _, msg := range []string{"log level", "log format", "error policy", "max depth"} {
		assert.Contains(t, err.Error(), msg)
	}
}

func TestValues(t *testing.T) {
	v := config.NewValues(map[string]any{
		"s":     "str",
		"i":     3,
		"i64":   int64(4),
		"f":     5.0,
		"frac":  5.5,
		"b":     true,
		"wrong": []any{1},
	})

	s, ok := v.String("s")
	assert.True(t, ok)
	assert.Equal(t, "str", s)
	_, ok = v.String("wrong")
	assert.False(t, ok)
	_, ok = v.String("missing")
	assert.False(t, ok)

	for key, want := range map[string]int{"i": 3, "i64": 4, "f": 5} {
		n, ok := v.Int(key)
		assert.True(t, ok, key)
		assert.Equal(t, want, n, key)
	}
	_, ok = v.Int("frac")
	assert.False(t, ok)

	b, ok := v.Bool("b")
	assert.True(t, ok)
	assert.True(t, b)
	_, ok = v.Bool("s")
	assert.False(t, ok)

	assert.True(t, v.Has("wrong"))
	assert.False(t, v.Has("missing"))
	assert.False(t, config.NewValues(nil).Has("s"))
}

func TestMergeWrongTypes(t *testing.T) {
	c, err := config.Default().Merge(config.NewValues(map[string]any{
		"log_level": "debug",
		"max_depth": "deep",
		"metrics":   "yes",
		"on_error":  1,
	}))
	require.Error(t, err)
	for _, msg := range []string{"max_depth", "metrics", "on_error"} {
		assert.Contains(t, err.Error(), msg)
	}
	assert.Equal(t, "debug", c.LogLevel, "well-typed keys still apply")
	assert.Equal(t, 10000, c.MaxDepth)
}
