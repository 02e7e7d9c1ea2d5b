/*
Package config provides type-safe configuration extraction and the
settings layer for funcreg.

# Overview

Config wraps a map[string]any and provides typed accessor methods that handle
missing keys and type mismatches gracefully by returning default values.
Keys may be dotted paths into nested maps.

	cfg := config.New(map[string]any{
	    "themes": map[string]any{"theme": "dark"},
	    "retries": 3,
	})

	cfg.String("themes.theme", "default") // "dark"
	cfg.Int("retries", 5)                 // 3
	cfg.Section("themes").String("theme", "") // "dark"

# File Loading

FromFile detects YAML, JSON and TOML by extension:

	cfg, err := config.FromFile("funcreg.toml")

# Settings

LoadSettings merges a file over Defaults. Nested maps merge key by key, so
a file only needs the values it changes:

	# funcreg.yaml
	funcreg_settings:
	  template:
	    apps: ["example.com/app/context:manager"]

Prefixed implements the lookup directly, including the
"<prefix>_settings_prefix" rename.

# Thread Safety

Config is safe for concurrent read access. The underlying map is not
modified after creation.
*/
package config
