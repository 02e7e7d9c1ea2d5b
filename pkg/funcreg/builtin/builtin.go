// Package builtin provides the stock request handlers and template context
// processors. Importing it publishes them as the module "funcreg/builtin":
//
//	funcreg/builtin          request handlers (ping, version)
//	funcreg/builtin:context  context processors (request, now)
package builtin

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/randalmurphal/funcreg/pkg/funcreg"
	"github.com/randalmurphal/funcreg/pkg/funcreg/httpdispatch"
	"github.com/randalmurphal/funcreg/pkg/funcreg/tmplctx"
)

// Module is the module path the registries are provided under.
const Module = "funcreg/builtin"

// Version is reported by the version handler. Set at build time with
// -ldflags "-X github.com/randalmurphal/funcreg/pkg/funcreg/builtin.Version=v1.2.3".
var Version = "dev"

var (
	// Requests holds the built-in request handlers.
	Requests = funcreg.New[http.HandlerFunc]()

	// Context holds the built-in context processors.
	Context = funcreg.New[tmplctx.Processor]()
)

// now is replaced in tests.
var now = time.Now

func init() {
	register := Requests.Registrar(httpdispatch.TypeKey, funcreg.WithLabel("Liveness check"), funcreg.WithPosition(-1))
	register(ping)
	Requests.MustRegister(httpdispatch.TypeKey, version, funcreg.WithLabel("Build version"))

	Context.MustRegister(tmplctx.TypeKey, request, funcreg.WithLabel("Request details"))
	Context.MustRegister(tmplctx.TypeKey, current, funcreg.WithName("now"), funcreg.WithLabel("Current time"))

	funcreg.Provide(Module, funcreg.DefaultAttr, Requests)
	funcreg.Provide(Module, "context", Context)
}

func ping(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "pong")
}

func version(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"version": Version})
}

func request(_ context.Context, r *http.Request) (map[string]any, error) {
	if r == nil {
		return nil, nil
	}
	return map[string]any{
		"request": map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"query":       r.URL.RawQuery,
			"host":        r.Host,
			"remote_addr": r.RemoteAddr,
			"url":         r.URL,
		},
	}, nil
}

func current(context.Context, *http.Request) (map[string]any, error) {
	return map[string]any{"now": now()}, nil
}
