/*
Package funcreg provides a registry of named handlers grouped by type key.

# Overview

A Manager stores values of one handler type F (a func type or an
interface) under string type keys such as "request" or "context". Within
a type key, handlers live either in the unrelated scope or nested one
level under a related key. Each scope keeps insertion order, rejects
duplicate names, and re-sorts by position when a handler carries one.

Managers from several packages merge with Update, and ImportModules pulls
in the registries other packages published with Provide.

# Basic Usage

	type Processor func(ctx context.Context, r *http.Request) map[string]any

	var Manager = funcreg.New[Processor]()

	func user(ctx context.Context, r *http.Request) map[string]any {...}

	func init() {
	    Manager.MustRegister("context", user, funcreg.WithLabel("Current user"))
	    Manager.MustRegister("context", blogNav, funcreg.WithRelated("blog"), funcreg.WithPosition(10))
	}

	for _, h := range Manager.All("context") {
	    maps.Copy(out, h.Func(ctx, r))
	}

Handler names default to the function identifier ("user" above). Use
WithName for closures and WithModuleNames to qualify derived names with
their package path.

# Modules

A module is any package that calls Provide from init. A spec string
"example.com/blog" or "example.com/blog:admin" names the module path and
the attribute, which defaults to "manager":

	import _ "example.com/blog"

	err := Manager.ImportModules(ctx, "example.com/blog", "example.com/shop:context")

ImportModules runs at most once per Manager. Later calls are no-ops.

# Errors

	_, err := m.Register("item", f)
	var conflict *funcreg.NameConflictError
	if errors.As(err, &conflict) {
	    log.Printf("%s already taken", conflict.Name)
	}

	err = m.ImportModules(ctx, "missing/module")
	errors.Is(err, funcreg.ErrModuleNotFound) // true

Lookups never fail: unknown type keys, related keys and names yield
empty results.

# Observability

	m := funcreg.New[Processor](
	    funcreg.WithLogger(logger),
	    funcreg.WithMetrics(true),
	    funcreg.WithTracing(true))

OpenTelemetry metrics: funcreg.handler.registrations, funcreg.module.imports, etc.
OpenTelemetry tracing: funcreg.import > funcreg.module spans.

# Subpackages

  - registry: insertion-ordered keyed store backing each scope
  - catalog: manifest snapshots (memory, SQLite)
  - config: settings loading and typed access
  - observability: logging, metrics, and tracing helpers
  - tmplctx: template context processors and themed templates
  - httpdispatch: serves request handlers over HTTP
  - builtin: stock handlers and processors
*/
package funcreg
