package benchmarks

import (
	"context"
	"strconv"
	"testing"

	"github.com/randalmurphal/funcreg/pkg/funcreg"
)

// Handler for benchmarks.
type Handler func(int) int

// noop does minimal work to measure registry overhead.
func noop(n int) int { return n }

func handlerName(i int) string {
	return "h" + strconv.Itoa(i)
}

func buildManager(n int, related bool) *funcreg.Manager[Handler] {
	m := funcreg.New[Handler]()
	for i := 0; i < n; i++ {
		opts := []funcreg.RegisterOption{funcreg.WithName(handlerName(i))}
		if related {
			opts = append(opts, funcreg.WithRelated("r"+strconv.Itoa(i%10)))
		}
		m.MustRegister("bench", noop, opts...)
	}
	return m
}

// BenchmarkNew measures manager creation overhead.
func BenchmarkNew(b *testing.B) {
	for i := 0; i < b.N; i++ {
		funcreg.New[Handler]()
	}
}

// BenchmarkRegister_DerivedName measures registration with runtime name lookup.
func BenchmarkRegister_DerivedName(b *testing.B) {
	for i := 0; i < b.N; i++ {
		m := funcreg.New[Handler]()
		m.MustRegister("bench", noop)
	}
}

// BenchmarkRegister_100 measures adding 100 named handlers.
func BenchmarkRegister_100(b *testing.B) {
	for i := 0; i < b.N; i++ {
		buildManager(100, false)
	}
}

// BenchmarkRegister_Positioned_100 measures re-sorting on every insert.
func BenchmarkRegister_Positioned_100(b *testing.B) {
	for i := 0; i < b.N; i++ {
		m := funcreg.New[Handler]()
		for j := 0; j < 100; j++ {
			m.MustRegister("bench", noop, funcreg.WithName(handlerName(j)), funcreg.WithPosition(100-j))
		}
	}
}

// BenchmarkGet measures a single lookup in a 100-handler scope.
func BenchmarkGet(b *testing.B) {
	m := buildManager(100, false)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Get("bench", "h50")
	}
}

// BenchmarkAll measures listing a 100-handler scope.
func BenchmarkAll(b *testing.B) {
	m := buildManager(100, false)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.All("bench")
	}
}

// BenchmarkGroup_Related measures the nested view over 10 related scopes.
func BenchmarkGroup_Related(b *testing.B) {
	m := buildManager(100, true)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Group("bench")
	}
}

// BenchmarkUpdate_100 merges a 100-handler registry into an empty one.
func BenchmarkUpdate_100(b *testing.B) {
	other := buildManager(100, true)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		funcreg.New[Handler]().Update(other)
	}
}

// BenchmarkImportModules measures resolving and merging one module.
func BenchmarkImportModules(b *testing.B) {
	table := funcreg.NewModuleTable()
	table.Provide("bench/module", funcreg.DefaultAttr, buildManager(100, false))
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m := funcreg.New[Handler](funcreg.WithModules(table))
		if err := m.ImportModules(ctx, "bench/module"); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkManifest measures describing a 100-handler registry.
func BenchmarkManifest(b *testing.B) {
	m := buildManager(100, true)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Manifest()
	}
}
