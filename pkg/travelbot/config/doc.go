/*
Package config loads and reads travelbot configuration.

# Overview

config wraps a map[string]any and provides typed accessor methods that
handle missing keys and type mismatches gracefully by returning default
values. Keys may use dot paths to reach nested sections, matching the
shape of travelbot.yaml:

	llm:
	  provider: openai
	  model: gpt-4o-mini
	stores:
	  backend: sqlite
	  path: ./travelbot.db
	providers:
	  flights:
	    base_url: https://api.aviationstack.com/v1
	step_timeout: 90s

# Basic Usage

	cfg, err := config.FromFile("travelbot.yaml")
	if err != nil {
	    log.Fatal(err)
	}

	provider := cfg.String("llm.provider", "openai")
	timeout := cfg.Duration("step_timeout", time.Minute)
	hotels := cfg.Sub("providers.hotels")
	baseURL := hotels.String("base_url", "")

# Type Coercion

Duration handles multiple input types:
  - string: parsed with time.ParseDuration ("30s", "1h30m")
  - int/float64: interpreted as seconds
  - time.Duration: used directly

Numeric types handle reasonable conversions; all methods return the
default value if the key is missing, the value cannot be converted, or
the conversion would lose precision.

# Thread Safety

Config is safe for concurrent read access. The underlying map is not
modified after creation.
*/
package config
