package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/funcreg/pkg/funcreg"
	"github.com/randalmurphal/funcreg/pkg/funcreg/catalog"
	"github.com/randalmurphal/funcreg/pkg/funcreg/config"
	"github.com/randalmurphal/funcreg/pkg/funcreg/httpdispatch"
	"github.com/randalmurphal/funcreg/pkg/funcreg/tmplctx"
)

// run executes the command tree with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSettingsCmd(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		out, err := run(t, "settings")
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(out), &got))
		assert.Equal(t, "default", got["themes"].(map[string]any)["theme"])
	})

	t.Run("prefixed file", func(t *testing.T) {
		path := writeFile(t, "settings.yaml", "funcreg_settings:\n  themes:\n    theme: dark\n")
		out, err := run(t, "settings", "--config", path)
		require.NoError(t, err)
		assert.Contains(t, out, "theme: dark")
		assert.Contains(t, out, "base_dir: themes")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := run(t, "settings", "-c", filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("bad log format", func(t *testing.T) {
		_, err := run(t, "settings", "--log-format", "xml")
		assert.ErrorContains(t, err, `unknown log format "xml"`)
	})
}

func TestModulesCmd(t *testing.T) {
	out, err := run(t, "modules")
	require.NoError(t, err)
	assert.Contains(t, out, "funcreg/builtin:context\n")
	assert.Contains(t, out, "funcreg/builtin:manager\n")
}

func TestManifestCmd(t *testing.T) {
	out, err := run(t, "manifest")
	require.NoError(t, err)

	assert.Contains(t, out, "[request]")
	assert.Contains(t, out, "[context]")
	assert.Contains(t, out, "ping")
	assert.Contains(t, out, "Build version")
	assert.Contains(t, out, "Current time")
}

func TestManifestCmd_BadModule(t *testing.T) {
	path := writeFile(t, "settings.toml", "[request]\napps = [\"example/missing\"]\n")
	_, err := run(t, "manifest", "--config", path)
	assert.ErrorContains(t, err, "module not found")
}

func TestSnapshotAndCatalogCmds(t *testing.T) {
	db := filepath.Join(t.TempDir(), "catalog.db")

	out, err := run(t, "snapshot", "--db", db)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	fields := strings.Split(lines[0], "\t")
	require.Len(t, fields, 3)
	assert.Equal(t, "request", fields[0])
	firstID := fields[1]

	// A second snapshot with the builtin context processors disabled.
	path := writeFile(t, "settings.json", `{"template": {"default_apps": false}}`)
	_, err = run(t, "snapshot", "--db", db, "--config", path)
	require.NoError(t, err)

	out, err = run(t, "catalog", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, firstID)
	assert.Equal(t, 5, len(strings.Split(strings.TrimSpace(out), "\n")), "header plus four snapshots")

	out, err = run(t, "catalog", "show", firstID, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "ping")
	assert.Contains(t, out, "Liveness check")

	out, err = run(t, "catalog", "show", "context", "--json", "--db", db)
	require.NoError(t, err)
	var snap catalog.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, "context", snap.Source)
	assert.Empty(t, snap.Entries)

	store, err := catalog.NewSQLiteStore(db)
	require.NoError(t, err)
	infos, err := store.List()
	require.NoError(t, err)
	require.NoError(t, store.Close())

	var contextIDs []string
	for _, info := range infos {
		if info.Source == "context" {
			contextIDs = append(contextIDs, info.ID)
		}
	}
	require.Len(t, contextIDs, 2)

	out, err = run(t, "catalog", "diff", contextIDs[0], contextIDs[1], "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "- context/request\n- context/now\n", out)

	_, err = run(t, "catalog", "show", "nope", "--db", db)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := newLogger(&buf, "json", 0)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	logger, err = newLogger(&buf, "text", 2)
	require.NoError(t, err)
	logger.Debug("detail")
	assert.Contains(t, buf.String(), "msg=detail")
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func newTestServeHandler(t *testing.T, logger *slog.Logger) http.Handler {
	t.Helper()

	requests := funcreg.New[http.HandlerFunc]()
	requests.MustRegister(httpdispatch.TypeKey, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "pong")
	}, funcreg.WithName("ping"))

	processors := funcreg.New[tmplctx.Processor]()
	processors.MustRegister(tmplctx.TypeKey, func(context.Context, *http.Request) (map[string]any, error) {
		return map[string]any{"site": "funcreg"}, nil
	}, funcreg.WithName("site"))
	processors.MustRegister(tmplctx.TypeKey, func(context.Context, *http.Request) (map[string]any, error) {
		return map[string]any{"title": "Blog"}, nil
	}, funcreg.WithName("title"), funcreg.WithRelated("blog"))
	processors.MustRegister(tmplctx.TypeKey, func(context.Context, *http.Request) (map[string]any, error) {
		return nil, errors.New("boom")
	}, funcreg.WithName("broken"), funcreg.WithRelated("shop"))

	settings := config.New(config.MergeNested(config.Defaults(), map[string]any{
		"themes": map[string]any{"theme": "dark"},
	}))
	fsys := fstest.MapFS{
		"themes/dark/page.html": {
			Data: []byte(`{{.site}}{{with .title}}/{{.}}{{end}} {{prefixed (index . "__i18n_prefix") "Title"}}`),
		},
		"themes/default/plain.html": {Data: []byte(`default {{.site}}`)},
	}

	return newServeHandler(requests, processors, tmplctx.RendererFrom(fsys, settings), logger)
}

func TestServeHandler(t *testing.T) {
	h := newTestServeHandler(t, nil)

	tests := []struct {
		name   string
		path   string
		status int
		body   string
	}{
		{"related context", "/render/blog/page.html", http.StatusOK, "funcreg/Blog blog:Title"},
		{"unrelated context only", "/render/page.html", http.StatusOK, "funcreg :Title"},
		{"default theme fallback", "/render/blog/plain.html", http.StatusOK, "default funcreg"},
		{"missing template", "/render/blog/missing.html", http.StatusNotFound, ""},
		{"processor error", "/render/shop/page.html", http.StatusInternalServerError, ""},
		{"request handler", "/ping", http.StatusOK, "pong"},
		{"unknown handler", "/nope", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestServeHandler_LogsRenderFailures(t *testing.T) {
	var buf bytes.Buffer
	h := newTestServeHandler(t, slog.New(slog.NewJSONHandler(&buf, nil)))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/render/shop/page.html", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "render failed", record["msg"])
	assert.Equal(t, float64(http.StatusInternalServerError), record["status"])
	assert.Contains(t, record["error"], "context processor broken: boom")
	assert.NotEmpty(t, record["request_id"])
}
