package funcreg

import (
	"reflect"
	"runtime"
	"strings"
)

// Handler pairs a registered value with its display metadata.
type Handler[F any] struct {
	Name     string
	Label    string
	Position int
	Func     F
}

// DisplayLabel returns the label, falling back to the name.
func (h Handler[F]) DisplayLabel() string {
	if h.Label != "" {
		return h.Label
	}
	return h.Name
}

// Namer is implemented by handlers that carry their own name.
type Namer interface {
	Name() string
}

// Positioner is implemented by handlers that carry their own position.
type Positioner interface {
	Position() int
}

// RelatedGroup is the ordered scope of one related key.
type RelatedGroup[F any] struct {
	Key      string
	Handlers []Handler[F]
}

// Group is the nested view of one type key: its unrelated handlers
// followed by every related scope in first-registration order.
type Group[F any] struct {
	Handlers []Handler[F]
	Related  []RelatedGroup[F]
}

// Len returns the number of handlers in the group, related scopes included.
func (g Group[F]) Len() int {
	n := len(g.Handlers)
	for _, r := range g.Related {
		n += len(r.Handlers)
	}
	return n
}

// Lookup returns the handlers of one related scope.
func (g Group[F]) Lookup(related string) ([]Handler[F], bool) {
	for _, r := range g.Related {
		if r.Key == related {
			return r.Handlers, true
		}
	}
	return nil, false
}

// deriveName resolves the name of item. qualified keeps the package path
// of func values.
func deriveName(item any, qualified bool) (string, bool) {
	if n, ok := item.(Namer); ok {
		if name := n.Name(); name != "" {
			return name, true
		}
	}

	v := reflect.ValueOf(item)
	if v.Kind() != reflect.Func || v.IsNil() {
		return "", false
	}
	fn := runtime.FuncForPC(v.Pointer())
	if fn == nil {
		return "", false
	}
	return funcName(fn.Name(), qualified), true
}

// funcName turns a runtime symbol such as "example.com/app/handlers.ping"
// or "example.com/app/handlers.(*T).Serve-fm" into a handler name.
func funcName(symbol string, qualified bool) string {
	symbol = strings.TrimSuffix(symbol, "-fm")
	if qualified {
		return symbol
	}
	if i := strings.LastIndex(symbol, "/"); i >= 0 {
		symbol = symbol[i+1:]
	}
	if i := strings.Index(symbol, "."); i >= 0 {
		symbol = symbol[i+1:]
	}
	return symbol
}

// derivePosition returns the Positioner position of item, or 0.
func derivePosition(item any) int {
	if p, ok := item.(Positioner); ok {
		return p.Position()
	}
	return 0
}
