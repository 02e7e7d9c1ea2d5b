package tmplctx

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"

	"github.com/randalmurphal/funcreg/pkg/funcreg/config"
)

// DefaultTheme is the theme used as fallback.
const DefaultTheme = "default"

// Themes locates templates under <BaseDir>/<Theme>/.
type Themes struct {
	BaseDir           string
	Theme             string
	UseInRender       bool
	FallbackToDefault bool
}

// ThemesFrom reads the themes section of settings.
func ThemesFrom(settings config.Config) Themes {
	s := settings.Section("themes")
	return Themes{
		BaseDir:           s.String("base_dir", "themes"),
		Theme:             s.String("theme", DefaultTheme),
		UseInRender:       s.Bool("use_in_render", true),
		FallbackToDefault: s.Bool("fallback_to_default", true),
	}
}

// Path returns the themed path of name.
func (t Themes) Path(name string) string {
	return path.Join(t.BaseDir, t.Theme, name)
}

// Prefixed returns a function that themes names under prefix, for
// applications that keep their templates in a subdirectory.
func (t Themes) Prefixed(prefix string) func(name string) string {
	return func(name string) string {
		return t.Path(path.Join(prefix, name))
	}
}

// Resolve returns the themed path of name in fsys. When the file is
// missing from the active theme and FallbackToDefault is set, the
// default theme is tried.
func (t Themes) Resolve(fsys fs.FS, name string) (string, error) {
	p := t.Path(name)
	_, err := fs.Stat(fsys, p)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, fs.ErrNotExist) || !t.FallbackToDefault || t.Theme == DefaultTheme {
		return "", fmt.Errorf("resolve template %s: %w", name, err)
	}

	fallback := path.Join(t.BaseDir, DefaultTheme, name)
	if _, err := fs.Stat(fsys, fallback); err != nil {
		return "", fmt.Errorf("resolve template %s: %w", name, err)
	}
	return fallback, nil
}

// Renderer renders html templates from a filesystem with themed lookup.
type Renderer struct {
	FS     fs.FS
	Themes Themes
	Funcs  template.FuncMap
}

// NewRenderer creates a Renderer with the FuncMap helpers installed.
func NewRenderer(fsys fs.FS, themes Themes) *Renderer {
	return &Renderer{FS: fsys, Themes: themes, Funcs: FuncMap()}
}

// RendererFrom builds a Renderer configured by settings: themes from
// the themes section and the prefixed helper using gettext.format.
func RendererFrom(fsys fs.FS, settings config.Config) *Renderer {
	r := NewRenderer(fsys, ThemesFrom(settings))
	format := settings.String("gettext.format", DefaultMessageFormat)
	r.Funcs["prefixed"] = func(prefix, msg string) string {
		return PrefixMessage(format, prefix, msg)
	}
	return r
}

// Render executes the template name with data. The name is themed
// when Themes.UseInRender is set.
func (r *Renderer) Render(w io.Writer, name string, data Context) error {
	p := name
	if r.Themes.UseInRender {
		var err error
		if p, err = r.Themes.Resolve(r.FS, name); err != nil {
			return err
		}
	}

	tmpl, err := template.New(path.Base(p)).Funcs(r.Funcs).ParseFS(r.FS, p)
	if err != nil {
		return fmt.Errorf("parse template %s: %w", p, err)
	}
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render template %s: %w", p, err)
	}
	return nil
}
