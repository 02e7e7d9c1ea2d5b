// Package httpdispatch serves request handlers registered in a funcreg
// Manager over HTTP.
//
// Unrelated handlers are routed at /{name} and related handlers at
// /{related}/{name}. Lookups happen per request, so handlers registered
// after the router is built are served too. GET / lists the registered
// handlers as JSON.
package httpdispatch

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/randalmurphal/funcreg/pkg/funcreg"
	"github.com/randalmurphal/funcreg/pkg/funcreg/catalog"
	"github.com/randalmurphal/funcreg/pkg/funcreg/config"
	"github.com/randalmurphal/funcreg/pkg/funcreg/observability"
)

// TypeKey is the type key request handlers are registered under.
const TypeKey = "request"

// Manager is a registry of request handlers.
type Manager = funcreg.Manager[http.HandlerFunc]

// Default is the process-wide request handler registry.
var Default = funcreg.New[http.HandlerFunc]()

// Setup imports the handler modules listed under request.apps into m.
func Setup(ctx context.Context, m *Manager, settings config.Config) error {
	return m.ImportModules(ctx, settings.StringSlice("request.apps", nil)...)
}

// Index is the body of GET /.
type Index struct {
	Handlers []catalog.Entry `json:"handlers"`
}

// Dispatcher routes requests to registered handlers.
type Dispatcher struct {
	manager *Manager
	logger  *slog.Logger
	router  chi.Router
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger logs one line per request. A nil logger disables it.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// New creates a Dispatcher serving the handlers of m.
func New(m *Manager, opts ...Option) *Dispatcher {
	d := &Dispatcher{manager: m}
	for _, opt := range opts {
		opt(d)
	}
	d.router = d.Router()
	return d
}

// Router builds a new dispatch router, for mounting under a parent router.
func (d *Dispatcher) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if d.logger != nil {
		r.Use(d.logRequests)
	}

	r.Get("/", d.index)
	r.HandleFunc("/{name}", d.dispatch)
	r.HandleFunc("/{related}/{name}", d.dispatch)
	return r
}

// ServeHTTP implements http.Handler.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.router.ServeHTTP(w, r)
}

func (d *Dispatcher) dispatch(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	related := chi.URLParam(r, "related")

	h, ok := d.manager.Get(TypeKey, name, related)
	if !ok {
		http.NotFound(w, r)
		return
	}
	h.Func(w, r)
}

func (d *Dispatcher) index(w http.ResponseWriter, _ *http.Request) {
	idx := Index{Handlers: []catalog.Entry{}}
	for _, e := range d.manager.Manifest() {
		if e.TypeKey == TypeKey {
			idx.Handlers = append(idx.Handlers, e)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(idx)
}

func (d *Dispatcher) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		related := ""
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			related = rctx.URLParam("related")
		}
		observability.EnrichLogger(d.logger, TypeKey, related).Info("request handled",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
		)
	})
}
