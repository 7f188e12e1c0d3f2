package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mansiraturi/travelbot/pkg/travelbot/config"
)

// TestNewNilMap verifies a nil map yields a usable empty config.
func TestNewNilMap(t *testing.T) {
	cfg := config.New(nil)
	assert.Equal(t, "fallback", cfg.String("anything", "fallback"))
	assert.False(t, cfg.Has("anything"))
}

// TestDotPathLookup verifies nested sections resolve through dot paths.
func TestDotPathLookup(t *testing.T) {
	cfg := config.New(map[string]any{
		"llm": map[string]any{
			"provider": "googleai",
			"model":    "gemini-1.5-flash",
		},
		"providers": map[string]any{
			"hotels": map[string]any{
				"base_url": "https://hotels.example",
				"timeout":  "20s",
			},
		},
	})

	assert.Equal(t, "googleai", cfg.String("llm.provider", "openai"))
	assert.Equal(t, "https://hotels.example", cfg.String("providers.hotels.base_url", ""))
	assert.Equal(t, 20*time.Second, cfg.Duration("providers.hotels.timeout", time.Second))

	// Missing leaves and paths through scalars fall back to defaults.
	assert.Equal(t, "none", cfg.String("llm.missing", "none"))
	assert.Equal(t, "none", cfg.String("llm.provider.deeper", "none"))
}

// TestSub verifies section extraction.
func TestSub(t *testing.T) {
	cfg := config.New(map[string]any{
		"stores": map[string]any{
			"backend": "redis",
			"redis": map[string]any{
				"addr": "localhost:6379",
			},
		},
		"scalar": 7,
	})

	stores := cfg.Sub("stores")
	assert.Equal(t, "redis", stores.String("backend", "sqlite"))
	assert.Equal(t, "localhost:6379", stores.String("redis.addr", ""))

	// Sub of a scalar or missing key is empty, not a panic.
	assert.False(t, cfg.Sub("scalar").Has("anything"))
	assert.False(t, cfg.Sub("missing").Has("anything"))
}

// TestTypedAccessors verifies coercion and defaults.
func TestTypedAccessors(t *testing.T) {
	cfg := config.New(map[string]any{
		"name":      "travelbot",
		"retries":   3,
		"ratio":     0.1,
		"whole":     float64(5),
		"frac":      5.5,
		"enabled":   true,
		"wait_str":  "45s",
		"wait_num":  30,
		"interests": []any{"food", "museums"},
		"mixed":     []any{"ok", 2},
	})

	assert.Equal(t, "travelbot", cfg.String("name", ""))
	assert.Equal(t, 3, cfg.Int("retries", 0))
	assert.Equal(t, 5, cfg.Int("whole", 0))
	assert.Equal(t, 9, cfg.Int("frac", 9), "fractional floats do not convert")
	assert.InDelta(t, 0.1, cfg.Float("ratio", 0), 1e-9)
	assert.InDelta(t, 3.0, cfg.Float("retries", 0), 1e-9)
	assert.True(t, cfg.Bool("enabled", false))
	assert.Equal(t, 45*time.Second, cfg.Duration("wait_str", 0))
	assert.Equal(t, 30*time.Second, cfg.Duration("wait_num", 0))
	assert.Equal(t, []string{"food", "museums"}, cfg.StringSlice("interests", nil))
	assert.Equal(t, []string{"x"}, cfg.StringSlice("mixed", []string{"x"}))

	// Type mismatches fall back.
	assert.Equal(t, "d", cfg.String("retries", "d"))
	assert.Equal(t, 7, cfg.Int("name", 7))
	assert.False(t, cfg.Bool("name", false))
}

// TestFromYAML verifies YAML parsing into nested sections.
func TestFromYAML(t *testing.T) {
	cfg, err := config.FromYAML([]byte(`
llm:
  provider: openai
step_timeout: 90s
providers:
  flights:
    base_url: https://api.aviationstack.com/v1
`))
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.String("llm.provider", ""))
	assert.Equal(t, 90*time.Second, cfg.Duration("step_timeout", 0))
	assert.Equal(t, "https://api.aviationstack.com/v1", cfg.String("providers.flights.base_url", ""))
}

// TestFromYAMLInvalid verifies malformed YAML errors.
func TestFromYAMLInvalid(t *testing.T) {
	_, err := config.FromYAML([]byte("llm: [unclosed"))
	assert.Error(t, err)
}

// TestFromJSON verifies JSON parsing.
func TestFromJSON(t *testing.T) {
	cfg, err := config.FromJSON([]byte(`{"stores":{"backend":"memory"},"max_attempts":3}`))
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.String("stores.backend", ""))
	assert.Equal(t, 3, cfg.Int("max_attempts", 0))
}

// TestFromFile verifies extension-based format detection.
func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "travelbot.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("llm:\n  provider: googleai\n"), 0o600))

	cfg, err := config.FromFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "googleai", cfg.String("llm.provider", ""))

	t.Run("unsupported extension", func(t *testing.T) {
		badPath := filepath.Join(dir, "travelbot.toml")
		require.NoError(t, os.WriteFile(badPath, []byte(""), 0o600))
		_, err := config.FromFile(badPath)
		assert.ErrorContains(t, err, "unsupported config file extension")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.FromFile(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})
}
