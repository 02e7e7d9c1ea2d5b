package tmplctx

import (
	"fmt"
	"html/template"
	"net/url"
	"reflect"
	"slices"
	"strings"
)

// DefaultMessageFormat joins a message prefix and id.
const DefaultMessageFormat = "%s:%s"

// PrefixKey overrides the message prefix of a Context.
const PrefixKey = "__i18n_prefix"

// PrefixMessage builds a prefixed message id such as "blog:Title".
// format receives the prefix and the message, in that order.
func PrefixMessage(format, prefix, msg string) string {
	if format == "" {
		format = DefaultMessageFormat
	}
	return fmt.Sprintf(format, prefix, msg)
}

// MessagePrefix returns the prefix stored under PrefixKey in c, or app.
func MessagePrefix(c Context, app string) string {
	if p, ok := c[PrefixKey].(string); ok && p != "" {
		return p
	}
	return app
}

// Chunks splits s into consecutive slices of at most n elements.
// n below 1 is treated as 1.
func Chunks[T any](s []T, n int) [][]T {
	n = max(1, n)
	out := make([][]T, 0, (len(s)+n-1)/n)
	for chunk := range slices.Chunk(s, n) {
		out = append(out, chunk)
	}
	return out
}

// ChunksBy splits s into parts columns of roughly equal size.
// Lists shorter than six elements stay in a single chunk.
func ChunksBy[T any](s []T, parts int) [][]T {
	if len(s) < 6 || parts < 1 {
		return [][]T{s}
	}
	return Chunks(s, (len(s)+parts-1)/parts)
}

// ToggleQueryValue adds key to the comma-separated list held by the query
// parameter name, or removes it when present, and returns path?query.
func ToggleQueryValue(u *url.URL, name, key string) string {
	q := u.Query()

	var values []string
	if v := q.Get(name); v != "" {
		values = strings.Split(v, ",")
	}
	if i := slices.Index(values, key); i >= 0 {
		values = slices.Delete(values, i, i+1)
	} else {
		values = append(values, key)
	}

	if len(values) == 0 {
		q.Del(name)
	} else {
		q.Set(name, strings.Join(values, ","))
	}
	return u.Path + "?" + q.Encode()
}

// ReplaceQuery sets key to value, or removes it when value is empty, and
// drops the page parameter so listings restart at the first page.
func ReplaceQuery(u *url.URL, key, value string) string {
	q := u.Query()
	if value != "" {
		q.Set(key, value)
	} else {
		q.Del(key)
	}
	q.Del("page")
	return u.Path + "?" + q.Encode()
}

// chunksAny adapts Chunks to arbitrary slices inside templates.
func chunksAny(list any, n int) ([]any, error) {
	if list == nil {
		return nil, nil
	}
	v := reflect.ValueOf(list)
	if v.Kind() != reflect.Slice {
		return nil, fmt.Errorf("chunks: %T is not a slice", list)
	}
	n = max(1, n)
	out := make([]any, 0, (v.Len()+n-1)/n)
	for i := 0; i < v.Len(); i += n {
		out = append(out, v.Slice(i, min(i+n, v.Len())).Interface())
	}
	return out, nil
}

// FuncMap returns the template helpers:
//
//	chunks         split a list into groups of n
//	split          strings.Split
//	get            map lookup
//	subtract       a - b
//	toggle_query   ToggleQueryValue
//	replace_query  ReplaceQuery
//	prefixed       PrefixMessage with DefaultMessageFormat
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"chunks":   chunksAny,
		"split":    strings.Split,
		"get":      func(m map[string]any, key string) any { return m[key] },
		"subtract": func(a, b int) int { return a - b },
		"toggle_query": func(u *url.URL, name string, key any) string {
			return ToggleQueryValue(u, name, fmt.Sprint(key))
		},
		"replace_query": ReplaceQuery,
		"prefixed": func(prefix, msg string) string {
			return PrefixMessage(DefaultMessageFormat, prefix, msg)
		},
	}
}
