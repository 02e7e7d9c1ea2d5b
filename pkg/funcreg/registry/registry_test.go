package registry

import (
	"cmp"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	r := New[string, int]()
	require.NotNil(t, r)
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Keys())
}

func TestRegisterAndGet(t *testing.T) {
	r := New[string, int]()

	r.Register("one", 1)
	r.Register("two", 2)

	v, ok := r.Get("one")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = r.Get("three")
	assert.False(t, ok)
	assert.Equal(t, 0, v)
}

func TestRegisterKeepsSlotOnOverwrite(t *testing.T) {
	r := New[string, string]()

	r.Register("a", "old")
	r.Register("b", "b")
	r.Register("a", "new")

	v, _ := r.Get("a")
	assert.Equal(t, "new", v)
	assert.Equal(t, []string{"a", "b"}, r.Keys())
}

func TestInsert(t *testing.T) {
	r := New[string, int]()

	assert.True(t, r.Insert("key", 1))
	assert.False(t, r.Insert("key", 2))

	v, _ := r.Get("key")
	assert.Equal(t, 1, v, "rejected insert must not replace the value")
	assert.Equal(t, 1, r.Len())
}

func TestKeysPreserveInsertionOrder(t *testing.T) {
	r := New[string, int]()
	for i, k := range []string{"zeta", "alpha", "mid", "beta"} {
		r.Register(k, i)
	}

	assert.Equal(t, []string{"zeta", "alpha", "mid", "beta"}, r.Keys())
	assert.Equal(t, []int{0, 1, 2, 3}, r.Values())
}

func TestKeysReturnsCopy(t *testing.T) {
	r := New[string, int]()
	r.Register("a", 1)

	keys := r.Keys()
	keys[0] = "mutated"

	assert.Equal(t, []string{"a"}, r.Keys())
}

func TestDelete(t *testing.T) {
	r := New[string, int]()
	r.Register("a", 1)
	r.Register("b", 2)
	r.Register("c", 3)

	assert.True(t, r.Delete("b"))
	assert.False(t, r.Has("b"))
	assert.Equal(t, []string{"a", "c"}, r.Keys())

	// Should not panic
	assert.False(t, r.Delete("nonexistent"))
	assert.Equal(t, 2, r.Len())
}

func TestDeleteThenReinsertAppends(t *testing.T) {
	r := New[string, int]()
	r.Register("a", 1)
	r.Register("b", 2)

	r.Delete("a")
	r.Register("a", 3)

	assert.Equal(t, []string{"b", "a"}, r.Keys())
}

func TestSortStableFunc(t *testing.T) {
	tests := []struct {
		name      string
		keys      []string
		positions []int
		want      []string
	}{
		{
			name:      "all zero keeps insertion order",
			keys:      []string{"c", "a", "b"},
			positions: []int{0, 0, 0},
			want:      []string{"c", "a", "b"},
		},
		{
			name:      "ascending by position",
			keys:      []string{"c", "a", "b"},
			positions: []int{3, 1, 2},
			want:      []string{"a", "b", "c"},
		},
		{
			name:      "ties keep insertion order",
			keys:      []string{"first", "second", "third", "fourth"},
			positions: []int{1, 0, 1, 0},
			want:      []string{"second", "fourth", "first", "third"},
		},
		{
			name:      "negative sorts before default",
			keys:      []string{"a", "b"},
			positions: []int{0, -1},
			want:      []string{"b", "a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New[string, int]()
			for i, k := range tt.keys {
				r.Register(k, tt.positions[i])
			}

			r.SortStableFunc(cmp.Compare[int])

			assert.Equal(t, tt.want, r.Keys())
		})
	}
}

func TestRange(t *testing.T) {
	r := New[string, int]()
	r.Register("one", 1)
	r.Register("two", 2)
	r.Register("three", 3)

	var visited []string
	r.Range(func(k string, v int) bool {
		visited = append(visited, k)
		return true
	})

	assert.Equal(t, []string{"one", "two", "three"}, visited)
}

func TestRangeEarlyStop(t *testing.T) {
	r := New[string, int]()
	r.Register("one", 1)
	r.Register("two", 2)

	count := 0
	r.Range(func(k string, v int) bool {
		count++
		return false
	})

	assert.Equal(t, 1, count)
}

func TestRangeAllowsMutation(t *testing.T) {
	r := New[string, int]()
	r.Register("one", 1)
	r.Register("two", 2)

	r.Range(func(k string, v int) bool {
		r.Register("new-"+k, v*10)
		r.Delete(k)
		return true
	})

	assert.Equal(t, []string{"new-one", "new-two"}, r.Keys())
}

func TestGetOrCreate(t *testing.T) {
	r := New[string, int]()

	callCount := 0
	factory := func() int {
		callCount++
		return 42
	}

	assert.Equal(t, 42, r.GetOrCreate("key", factory))
	assert.Equal(t, 42, r.GetOrCreate("key", factory))
	assert.Equal(t, 1, callCount)
	assert.Equal(t, []string{"key"}, r.Keys())
}

// Thread-safety tests

func TestConcurrentInsert(t *testing.T) {
	r := New[int, int]()
	var wg sync.WaitGroup
	var accepted atomic.Int32

	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.Insert(7, 1) {
				accepted.Add(1)
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, int32(1), accepted.Load())
	assert.Equal(t, 1, r.Len())
}

func TestConcurrentRegister(t *testing.T) {
	r := New[int, int]()
	var wg sync.WaitGroup
	n := 1000

	for i := range n {
		wg.Add(1)
		go func(val int) {
			defer wg.Done()
			r.Register(val, val*2)
		}(i)
	}

	wg.Wait()

	assert.Equal(t, n, r.Len())
	assert.Len(t, r.Keys(), n)
}

func TestConcurrentGetOrCreate(t *testing.T) {
	r := New[string, int]()
	var wg sync.WaitGroup
	var callCount atomic.Int32

	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v := r.GetOrCreate("key", func() int {
				callCount.Add(1)
				return 42
			})
			assert.Equal(t, 42, v)
		}()
	}

	wg.Wait()

	assert.Equal(t, int32(1), callCount.Load())
	assert.Equal(t, 1, r.Len())
}
