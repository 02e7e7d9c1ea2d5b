package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/randalmurphal/funcreg/pkg/funcreg/catalog"
	"github.com/randalmurphal/funcreg/pkg/funcreg/httpdispatch"
	"github.com/randalmurphal/funcreg/pkg/funcreg/tmplctx"
)

type serveOptions struct {
	addr            string
	catalogPath     string
	templateRoot    string
	shutdownTimeout time.Duration
}

func newServeCmd(global *globalOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve registered request handlers and themed templates over HTTP",
		Long: `serve exposes request handlers at /{name} and /{related}/{name}, and
renders templates at /render/{template} and /render/{app}/{template} with
the context built by the registered context processors.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, global, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&opts.templateRoot, "templates", ".", "directory holding the themes base dir")
	cmd.Flags().StringVar(&opts.catalogPath, "catalog", "", "SQLite catalog to record the served manifest in")
	cmd.Flags().DurationVar(&opts.shutdownTimeout, "shutdown-timeout", 10*time.Second, "graceful shutdown timeout")
	return cmd
}

func runServe(cmd *cobra.Command, global *globalOptions, opts *serveOptions) error {
	settings, logger, err := global.load(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := httpdispatch.Setup(ctx, httpdispatch.Default, settings); err != nil {
		return fmt.Errorf("load request handlers: %w", err)
	}
	if err := tmplctx.Setup(ctx, tmplctx.Default, settings); err != nil {
		return fmt.Errorf("load context processors: %w", err)
	}

	if opts.catalogPath != "" {
		store, err := catalog.NewSQLiteStore(opts.catalogPath)
		if err != nil {
			return err
		}
		snap := catalog.NewSnapshot(httpdispatch.TypeKey, httpdispatch.Default.Manifest())
		err = store.Save(snap)
		_ = store.Close()
		if err != nil {
			return fmt.Errorf("record manifest: %w", err)
		}
		logger.Info("manifest recorded", slog.String("snapshot_id", snap.ID), slog.Int("sequence", snap.Sequence))
	}

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           newServeHandler(httpdispatch.Default, tmplctx.Default, tmplctx.RendererFrom(os.DirFS(opts.templateRoot), settings), logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", opts.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.shutdownTimeout)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// newServeHandler routes /render to the template renderer and everything
// else to the request handler dispatcher.
func newServeHandler(requests *httpdispatch.Manager, processors *tmplctx.Manager, renderer *tmplctx.Renderer, logger *slog.Logger) http.Handler {
	rh := &renderHandler{processors: processors, renderer: renderer, logger: logger}

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Get("/render/{template}", rh.ServeHTTP)
		r.Get("/render/{app}/{template}", rh.ServeHTTP)
	})
	r.Mount("/", httpdispatch.New(requests, httpdispatch.WithLogger(logger)))
	return r
}

// renderHandler renders a themed template with the context of one app.
type renderHandler struct {
	processors *tmplctx.Manager
	renderer   *tmplctx.Renderer
	logger     *slog.Logger
}

func (h *renderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	app := chi.URLParam(r, "app")
	name := chi.URLParam(r, "template")

	data, err := tmplctx.Build(r.Context(), h.processors, r, app)
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	data[tmplctx.PrefixKey] = tmplctx.MessagePrefix(data, app)

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, name, data); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, fs.ErrNotExist) {
			status = http.StatusNotFound
		}
		h.fail(w, r, status, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (h *renderHandler) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	if h.logger != nil {
		h.logger.Error("render failed",
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("error", err.Error()),
		)
	}
	http.Error(w, http.StatusText(status), status)
}
