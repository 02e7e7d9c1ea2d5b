/*
Package tmplctx builds template contexts from registered context processors
and renders themed templates.

# Context Processors

A Processor returns values for one request. Processors live in a
funcreg Manager under TypeKey ("context"), either unrelated (run for
every template) or related to an application name:

	tmplctx.Default.MustRegister(tmplctx.TypeKey, user)
	tmplctx.Default.MustRegister(tmplctx.TypeKey, blogNav, funcreg.WithRelated("blog"))

	data, err := tmplctx.Build(ctx, tmplctx.Default, r, "blog")

Setup imports the modules listed under template.apps in the settings,
plus the built-in processors unless template.default_apps is false.

# Expansion

Context.Expand substitutes ${var} and $var placeholders. Brace
placeholders accept dotted paths into nested maps:

	data.Expand("Signed in from ${request.remote_addr}")

Use NewExpander with WithMissingAction to blank out or reject missing
variables.

# Themes

Templates live under <base_dir>/<theme>/. Themes.Resolve falls back to
the "default" theme when fallback_to_default is set:

	r := tmplctx.RendererFrom(os.DirFS("."), settings)
	err := r.Render(w, "blog/post.html", data)

FuncMap adds list chunking, query-string helpers and prefixed message ids
to every Renderer.
*/
package tmplctx
