package tmplctx

import (
	"context"
	"fmt"
	"maps"
	"net/http"

	"github.com/randalmurphal/funcreg/pkg/funcreg"
	"github.com/randalmurphal/funcreg/pkg/funcreg/config"
)

// TypeKey is the type key context processors are registered under.
const TypeKey = "context"

// BuiltinSpec is the module spec of the stock processors, imported by
// Setup when template.default_apps is set.
const BuiltinSpec = "funcreg/builtin:context"

// Context is the data passed to a template.
type Context map[string]any

// Processor contributes values to a template Context for one request.
type Processor func(ctx context.Context, r *http.Request) (map[string]any, error)

// Manager is a registry of context processors.
type Manager = funcreg.Manager[Processor]

// Default is the process-wide context processor registry.
var Default = funcreg.New[Processor]()

// Setup imports the processor modules listed in settings into m.
// Modules come from template.apps, plus BuiltinSpec when
// template.default_apps is true. Like ImportModules, only the first
// successful call has an effect.
func Setup(ctx context.Context, m *Manager, settings config.Config) error {
	specs := settings.StringSlice("template.apps", nil)
	if settings.Bool("template.default_apps", true) {
		specs = append([]string{BuiltinSpec}, specs...)
	}
	return m.ImportModules(ctx, specs...)
}

// Build runs the processors in m and merges their results.
//
// Unrelated processors run first, in registry order, followed by the
// processors related to app when app is not empty. Later processors
// override keys set by earlier ones.
func Build(ctx context.Context, m *Manager, r *http.Request, app string) (Context, error) {
	out := make(Context)

	run := func(handlers []funcreg.Handler[Processor]) error {
		for _, h := range handlers {
			values, err := h.Func(ctx, r)
			if err != nil {
				return fmt.Errorf("context processor %s: %w", h.Name, err)
			}
			maps.Copy(out, values)
		}
		return nil
	}

	if err := run(m.All(TypeKey)); err != nil {
		return nil, err
	}
	if app != "" {
		if err := run(m.All(TypeKey, app)); err != nil {
			return nil, err
		}
	}
	return out, nil
}
