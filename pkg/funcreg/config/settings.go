package config

import (
	"slices"
	"strings"
)

// DefaultPrefix is the settings prefix used by LoadSettings.
const DefaultPrefix = "funcreg"

// Defaults returns a fresh copy of the stock settings.
//
//	template.apps               module specs for template context processors
//	template.default_apps       also import the built-in context processors
//	request.apps                module specs for HTTP request handlers
//	gettext.format              format for prefixed message ids (prefix, msg)
//	themes.base_dir             root directory of themed templates
//	themes.theme                active theme
//	themes.use_in_render        apply theming when rendering
//	themes.fallback_to_default  use the default theme when a file is missing
func Defaults() map[string]any {
	return map[string]any{
		"template": map[string]any{
			"apps":         []any{},
			"default_apps": true,
		},
		"request": map[string]any{
			"apps": []any{"funcreg/builtin"},
		},
		"gettext": map[string]any{
			"format": "%s:%s",
		},
		"themes": map[string]any{
			"base_dir":            "themes",
			"theme":               "default",
			"use_in_render":       true,
			"fallback_to_default": true,
		},
	}
}

// MergeNested merges src into dst and returns dst. Nested maps are merged
// key by key; any other value in src replaces the value in dst. src is
// never aliased into dst.
func MergeNested(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, v := range src {
		sm, ok := asMap(v)
		if !ok {
			dst[k] = cloneValue(v)
			continue
		}
		dm, ok := asMap(dst[k])
		if !ok {
			dm = make(map[string]any, len(sm))
		}
		dst[k] = MergeNested(dm, sm)
	}
	return dst
}

// cloneValue copies the slice shapes the decoders produce so dst does not
// share backing arrays with src.
func cloneValue(v any) any {
	switch val := v.(type) {
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			if m, ok := asMap(item); ok {
				out[i] = MergeNested(nil, m)
				continue
			}
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return slices.Clone(val)
	}
	return v
}

// Prefixed resolves a prefixed settings section from src and merges it over
// defaults, which is modified in place.
//
// The section lives under "<prefix>_<name>". If src sets
// "<prefix>_settings_prefix", that value replaces prefix, which lets two
// applications sharing one config file keep separate sections.
func Prefixed(src Config, prefix, name string, defaults map[string]any) Config {
	prefix = strings.ToLower(prefix)
	prefix = src.String(prefix+"_settings_prefix", prefix)
	section := src.Section(strings.ToLower(prefix + "_" + name))
	return New(MergeNested(defaults, section.Raw()))
}

// LoadSettings loads settings from path and merges them over Defaults.
//
// An empty path yields the defaults. The file's "funcreg_settings" section
// is used when present; otherwise the whole file is treated as settings.
func LoadSettings(path string) (Config, error) {
	if path == "" {
		return New(Defaults()), nil
	}

	src, err := FromFile(path)
	if err != nil {
		return Config{}, err
	}

	if src.Has(DefaultPrefix+"_settings") || src.Has(DefaultPrefix+"_settings_prefix") {
		return Prefixed(src, DefaultPrefix, "settings", Defaults()), nil
	}
	return New(MergeNested(Defaults(), src.Raw())), nil
}
