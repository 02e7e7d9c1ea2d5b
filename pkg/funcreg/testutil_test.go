package funcreg

import (
	"context"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/randalmurphal/funcreg/pkg/funcreg/observability"
)

// Test handler type used across tests.
type textFunc func() string

func f() string { return "f" }

func hello() string { return "hello" }

func goodbye() string { return "goodbye" }

// constant returns a closure; register it with WithName.
func constant(s string) textFunc {
	return func() string { return s }
}

// named implements Namer and Positioner.
type named struct {
	name     string
	position int
}

func (n named) Name() string  { return n.name }
func (n named) Position() int { return n.position }

// assertSameFunc checks two func values point at the same code.
func assertSameFunc(t *testing.T, want, got any) {
	t.Helper()
	assert.Equal(t, reflect.ValueOf(want).Pointer(), reflect.ValueOf(got).Pointer())
}

// handlerNames extracts names in order.
func handlerNames[F any](handlers []Handler[F]) []string {
	names := make([]string, len(handlers))
	for i, h := range handlers {
		names[i] = h.Name
	}
	return names
}

// registerRecorder counts RecordRegister calls by outcome.
type registerRecorder struct {
	observability.NoopMetrics

	mu       sync.Mutex
	accepted int
	rejected []error
}

func (r *registerRecorder) RecordRegister(_ context.Context, _ string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.rejected = append(r.rejected, err)
		return
	}
	r.accepted++
}
