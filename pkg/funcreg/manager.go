package funcreg

import (
	"cmp"
	"context"
	"log/slog"
	"sync"

	"github.com/randalmurphal/funcreg/pkg/funcreg/catalog"
	"github.com/randalmurphal/funcreg/pkg/funcreg/observability"
	"github.com/randalmurphal/funcreg/pkg/funcreg/registry"
)

// scope is the ordered name -> handler mapping of one (type key, related) pair.
type scope[F any] = registry.Ordered[string, Handler[F]]

func newScope[F any]() *scope[F] {
	return registry.New[string, Handler[F]]()
}

// typeGroup holds every scope of one type key.
type typeGroup[F any] struct {
	unrelated *scope[F]
	related   *registry.Ordered[string, *scope[F]]
}

func newTypeGroup[F any]() *typeGroup[F] {
	return &typeGroup[F]{
		unrelated: newScope[F](),
		related:   registry.New[string, *scope[F]](),
	}
}

// Manager is a registry of named handlers of type F grouped by type key
// and optionally nested one level under a related key.
//
// Manager is safe for concurrent use. Registration normally happens from
// init functions or during startup; lookups may run concurrently with it.
type Manager[F any] struct {
	mu    sync.RWMutex
	types *registry.Ordered[string, *typeGroup[F]]

	importMu sync.Mutex
	imported bool

	logger      *slog.Logger
	metrics     observability.MetricsRecorder
	spans       observability.SpanManager
	modules     *ModuleTable
	moduleNames bool
}

// New creates an empty Manager for handlers of type F.
func New[F any](opts ...Option) *Manager[F] {
	cfg := managerConfig{modules: DefaultModules}
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Manager[F]{
		types:       registry.New[string, *typeGroup[F]](),
		logger:      cfg.logger,
		metrics:     observability.NoopMetrics{},
		spans:       observability.NoopSpanManager{},
		modules:     cfg.modules,
		moduleNames: cfg.moduleNames,
	}
	if cfg.metrics {
		m.metrics = observability.NewMetricsRecorder()
	}
	if cfg.tracing {
		m.spans = observability.NewSpanManager()
	}
	return m
}

// Register adds item under typeKey and returns the stored Handler.
//
// The name comes from WithName, else from Namer, else from the function
// identifier of a func value. Registration fails with a *NameConflictError
// if the name is taken in its scope, or if an unrelated name and a related
// key of the same type key would collide.
//
// Example:
//
//	m := funcreg.New[func() string]()
//	_, err := m.Register("item", hello, funcreg.WithLabel("Hello"))
func (m *Manager[F]) Register(typeKey string, item F, opts ...RegisterOption) (Handler[F], error) {
	cfg := applyRegisterOptions(opts)

	name := cfg.name
	if name == "" {
		var ok bool
		if name, ok = deriveName(item, m.moduleNames); !ok {
			m.metrics.RecordRegister(context.Background(), typeKey, ErrUnnamed)
			observability.LogRegisterError(m.logger, typeKey, cfg.related, ErrUnnamed)
			return Handler[F]{}, ErrUnnamed
		}
	}

	position := cfg.position
	if !cfg.hasPosition {
		position = derivePosition(item)
	}

	h := Handler[F]{
		Name:     name,
		Label:    cfg.label,
		Position: position,
		Func:     item,
	}

	err := m.insert(typeKey, cfg.related, h)
	m.metrics.RecordRegister(context.Background(), typeKey, err)
	if err != nil {
		observability.LogConflict(m.logger, typeKey, cfg.related, name)
		return Handler[F]{}, err
	}
	observability.LogRegister(m.logger, typeKey, cfg.related, name, position)
	return h, nil
}

func (m *Manager[F]) insert(typeKey, related string, h Handler[F]) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	conflict := &NameConflictError{TypeKey: typeKey, Related: related, Name: h.Name}

	group := m.types.GetOrCreate(typeKey, newTypeGroup[F])

	var s *scope[F]
	if related == "" {
		if group.related.Has(h.Name) {
			return conflict
		}
		s = group.unrelated
	} else {
		if group.unrelated.Has(related) {
			return &NameConflictError{TypeKey: typeKey, Name: related}
		}
		s = group.related.GetOrCreate(related, newScope[F])
	}

	if !s.Insert(h.Name, h) {
		return conflict
	}
	if h.Position != 0 {
		sortByPosition(s)
	}
	return nil
}

func sortByPosition[F any](s *scope[F]) {
	s.SortStableFunc(func(a, b Handler[F]) int {
		return cmp.Compare(a.Position, b.Position)
	})
}

// Registrar returns a function that registers its argument under typeKey
// and returns it unchanged, for use in package-level declarations:
//
//	var Manager = funcreg.New[http.HandlerFunc]()
//
//	var ping = Manager.Registrar("request", funcreg.WithName("ping"))(func(w http.ResponseWriter, r *http.Request) {
//	    w.Write([]byte("pong"))
//	})
//
// The returned function panics with the registration error, since a
// conflict at init time is a configuration bug.
func (m *Manager[F]) Registrar(typeKey string, opts ...RegisterOption) func(F) F {
	return func(item F) F {
		if _, err := m.Register(typeKey, item, opts...); err != nil {
			panic(err)
		}
		return item
	}
}

// MustRegister is like Register but panics on error and returns item.
func (m *Manager[F]) MustRegister(typeKey string, item F, opts ...RegisterOption) F {
	return m.Registrar(typeKey, opts...)(item)
}

// Unregister removes the handler registered under name. Use WithRelated to
// select a related scope. Unknown names are ignored.
// It reports whether a handler was removed.
func (m *Manager[F]) Unregister(typeKey, name string, opts ...RegisterOption) bool {
	cfg := applyRegisterOptions(opts)
	removed := m.remove(typeKey, cfg.related, name)

	m.metrics.RecordUnregister(context.Background(), typeKey, removed)
	observability.LogUnregister(m.logger, typeKey, cfg.related, name, removed)
	return removed
}

// UnregisterFunc removes item by its derived name (or WithName) and
// returns it unchanged.
func (m *Manager[F]) UnregisterFunc(typeKey string, item F, opts ...RegisterOption) F {
	cfg := applyRegisterOptions(opts)
	name := cfg.name
	if name == "" {
		var ok bool
		if name, ok = deriveName(item, m.moduleNames); !ok {
			return item
		}
	}
	m.Unregister(typeKey, name, opts...)
	return item
}

func (m *Manager[F]) remove(typeKey, related, name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	group, ok := m.types.Get(typeKey)
	if !ok {
		return false
	}
	if related == "" {
		return group.unrelated.Delete(name)
	}

	s, ok := group.related.Get(related)
	if !ok {
		return false
	}
	removed := s.Delete(name)
	if s.Len() == 0 {
		group.related.Delete(related)
	}
	return removed
}

// All returns the handlers of one scope in order: the unrelated scope of
// typeKey, or the related scope when related is given. Unknown type or
// related keys yield nil.
func (m *Manager[F]) All(typeKey string, related ...string) []Handler[F] {
	m.mu.RLock()
	defer m.mu.RUnlock()

	group, ok := m.types.Get(typeKey)
	if !ok {
		return nil
	}
	if len(related) == 0 || related[0] == "" {
		return group.unrelated.Values()
	}
	s, ok := group.related.Get(related[0])
	if !ok {
		return nil
	}
	return s.Values()
}

// Group returns the nested view of typeKey.
func (m *Manager[F]) Group(typeKey string) Group[F] {
	m.mu.RLock()
	defer m.mu.RUnlock()

	group, ok := m.types.Get(typeKey)
	if !ok {
		return Group[F]{}
	}
	return group.view()
}

func (g *typeGroup[F]) view() Group[F] {
	out := Group[F]{Handlers: g.unrelated.Values()}
	g.related.Range(func(key string, s *scope[F]) bool {
		out.Related = append(out.Related, RelatedGroup[F]{Key: key, Handlers: s.Values()})
		return true
	})
	return out
}

// Get returns the handler registered under name, looking in the related
// scope when related is given.
func (m *Manager[F]) Get(typeKey, name string, related ...string) (Handler[F], bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	group, ok := m.types.Get(typeKey)
	if !ok {
		return Handler[F]{}, false
	}
	s := group.unrelated
	if len(related) > 0 && related[0] != "" {
		if s, ok = group.related.Get(related[0]); !ok {
			return Handler[F]{}, false
		}
	}
	return s.Get(name)
}

// TypeKeys returns the type keys in first-registration order.
func (m *Manager[F]) TypeKeys() []string {
	return m.types.Keys()
}

// Update merges every handler of other into m. Names present in both are
// replaced in place, keeping their slot; new names are appended. Related
// scopes merge key by key. When an incoming unrelated name equals a local
// related key, or the reverse, the incoming entry replaces the local one.
// Scopes receiving a handler with a non-zero position are re-sorted.
func (m *Manager[F]) Update(other *Manager[F]) {
	if other == nil || other == m {
		return
	}

	other.mu.RLock()
	incoming := make(map[string]Group[F], other.types.Len())
	order := other.types.Keys()
	for _, typeKey := range order {
		group, _ := other.types.Get(typeKey)
		incoming[typeKey] = group.view()
	}
	other.mu.RUnlock()

	m.mu.Lock()
	merged := 0
	for _, typeKey := range order {
		in := incoming[typeKey]
		group := m.types.GetOrCreate(typeKey, newTypeGroup[F])

		for _, h := range in.Handlers {
			group.related.Delete(h.Name)
		}
		merged += mergeInto(group.unrelated, in.Handlers)

		for _, rg := range in.Related {
			group.unrelated.Delete(rg.Key)
			s := group.related.GetOrCreate(rg.Key, newScope[F])
			merged += mergeInto(s, rg.Handlers)
		}
	}
	m.mu.Unlock()

	m.metrics.RecordMerge(context.Background(), merged)
	observability.LogMerge(m.logger, merged)
}

func mergeInto[F any](s *scope[F], handlers []Handler[F]) int {
	resort := false
	for _, h := range handlers {
		s.Register(h.Name, h)
		if h.Position != 0 {
			resort = true
		}
	}
	if resort {
		sortByPosition(s)
	}
	return len(handlers)
}

// Manifest describes every registration in order, without the handlers.
func (m *Manager[F]) Manifest() []catalog.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var entries []catalog.Entry
	add := func(typeKey, related string, handlers []Handler[F]) {
		for i, h := range handlers {
			entries = append(entries, catalog.Entry{
				TypeKey:  typeKey,
				Related:  related,
				Name:     h.Name,
				Label:    h.Label,
				Position: h.Position,
				Order:    i,
			})
		}
	}

	m.types.Range(func(typeKey string, group *typeGroup[F]) bool {
		view := group.view()
		add(typeKey, "", view.Handlers)
		for _, rg := range view.Related {
			add(typeKey, rg.Key, rg.Handlers)
		}
		return true
	})
	return entries
}

// Imported reports whether ImportModules has completed successfully.
func (m *Manager[F]) Imported() bool {
	m.importMu.Lock()
	defer m.importMu.Unlock()
	return m.imported
}
