package funcreg

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/randalmurphal/funcreg/pkg/funcreg/observability"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultAttr is the attribute looked up when a spec names only a path.
const DefaultAttr = "manager"

// ModuleSpec identifies an exported registry: a module path plus the
// name it was provided under.
type ModuleSpec struct {
	Path string
	Attr string
}

// String renders the spec in "path:attr" form.
func (s ModuleSpec) String() string {
	return s.Path + ":" + s.Attr
}

// ParseModuleSpec parses "path" or "path:attr". The attribute defaults
// to DefaultAttr.
func ParseModuleSpec(spec string) (ModuleSpec, error) {
	spec = strings.TrimSpace(spec)
	path, attr, hasAttr := strings.Cut(spec, ":")
	if !hasAttr {
		attr = DefaultAttr
	}

	switch {
	case path == "":
		return ModuleSpec{}, fmt.Errorf("%w %q: empty module path", ErrInvalidModuleSpec, spec)
	case attr == "":
		return ModuleSpec{}, fmt.Errorf("%w %q: empty attribute", ErrInvalidModuleSpec, spec)
	case strings.Contains(attr, ":"):
		return ModuleSpec{}, fmt.Errorf("%w %q: too many colons", ErrInvalidModuleSpec, spec)
	}
	return ModuleSpec{Path: path, Attr: attr}, nil
}

// ModuleTable maps module paths and attribute names to exported values.
//
// Go has no import-by-name at runtime, so a module makes its registries
// available by calling Provide from an init function. Importing the
// package, usually with a blank import in main, loads the module:
//
//	package handlers
//
//	var Manager = funcreg.New[http.HandlerFunc]()
//
//	func init() {
//	    funcreg.Provide("example.com/app/handlers", "manager", Manager)
//	}
type ModuleTable struct {
	mu      sync.RWMutex
	modules map[string]map[string]any
}

// NewModuleTable creates an empty table.
func NewModuleTable() *ModuleTable {
	return &ModuleTable{modules: make(map[string]map[string]any)}
}

// DefaultModules is the process-wide table used by Provide and by
// Managers built without WithModules.
var DefaultModules = NewModuleTable()

// Provide exports value from the module at path under attr.
//
// Panics if path or attr is empty, or if the pair was already provided.
func (t *ModuleTable) Provide(path, attr string, value any) {
	if path == "" || attr == "" {
		panic("funcreg: module path and attribute cannot be empty")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	attrs, ok := t.modules[path]
	if !ok {
		attrs = make(map[string]any)
		t.modules[path] = attrs
	}
	if _, exists := attrs[attr]; exists {
		panic(fmt.Sprintf("funcreg: duplicate module attribute: %s:%s", path, attr))
	}
	attrs[attr] = value
}

// Lookup returns the value provided under path and attr.
// It returns ErrModuleNotFound or ErrAttributeNotFound when absent.
func (t *ModuleTable) Lookup(path, attr string) (any, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	attrs, ok := t.modules[path]
	if !ok {
		return nil, ErrModuleNotFound
	}
	v, ok := attrs[attr]
	if !ok {
		return nil, ErrAttributeNotFound
	}
	return v, nil
}

// Modules returns the provided module paths, sorted.
func (t *ModuleTable) Modules() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	paths := make([]string, 0, len(t.modules))
	for p := range t.modules {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// Attrs returns the attribute names provided by the module at path, sorted.
func (t *ModuleTable) Attrs(path string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	attrs := make([]string, 0, len(t.modules[path]))
	for a := range t.modules[path] {
		attrs = append(attrs, a)
	}
	slices.Sort(attrs)
	return attrs
}

// Provide exports value in DefaultModules. See ModuleTable.Provide.
func Provide(path, attr string, value any) {
	DefaultModules.Provide(path, attr, value)
}

// ImportModules resolves each spec in the Manager's module table and
// merges the registries found there into m with Update.
//
// Only the first successful call has any effect; later calls return nil
// without looking at their arguments. A failing call leaves m marked as
// not imported, so it may be retried; registries merged before the
// failure stay merged, and merging them again is harmless.
//
// Resolution failures return a *ResolutionError wrapping
// ErrInvalidModuleSpec, ErrModuleNotFound, ErrAttributeNotFound or
// ErrIncompatibleRegistry.
func (m *Manager[F]) ImportModules(ctx context.Context, specs ...string) error {
	m.importMu.Lock()
	defer m.importMu.Unlock()

	if m.imported {
		observability.LogImportSkipped(m.logger, specs)
		return nil
	}

	ctx, span := m.spans.StartImportSpan(ctx, specs)
	done := observability.TimedOperation()

	for _, raw := range specs {
		if err := ctx.Err(); err != nil {
			m.spans.EndSpanWithError(span, err)
			return err
		}
		if err := m.importOne(ctx, raw); err != nil {
			observability.LogImportError(m.logger, raw, err)
			m.spans.EndSpanWithError(span, err)
			return err
		}
	}

	m.imported = true
	observability.LogImport(m.logger, specs, done())
	m.spans.EndSpanWithError(span, nil)
	return nil
}

func (m *Manager[F]) importOne(ctx context.Context, raw string) (err error) {
	ctx, span := m.spans.StartModuleSpan(ctx, raw)
	start := time.Now()
	defer func() {
		m.metrics.RecordImport(ctx, raw, time.Since(start), err)
		m.spans.EndSpanWithError(span, err)
	}()

	spec, err := ParseModuleSpec(raw)
	if err != nil {
		return &ResolutionError{Spec: raw, Err: err}
	}

	value, err := m.modules.Lookup(spec.Path, spec.Attr)
	if err != nil {
		return &ResolutionError{Spec: raw, Err: err}
	}

	other, ok := value.(*Manager[F])
	if !ok {
		return &ResolutionError{
			Spec: raw,
			Err:  fmt.Errorf("%w: %s is %T, want %T", ErrIncompatibleRegistry, spec, value, m),
		}
	}

	m.Update(other)
	m.spans.AddSpanEvent(ctx, "module.merged",
		attribute.String("module.path", spec.Path),
		attribute.String("module.attr", spec.Attr),
	)
	return nil
}
