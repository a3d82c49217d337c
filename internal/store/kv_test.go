package store

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatKey string

func TestKV_SetGetRemove(t *testing.T) {
	kv := NewKV[chatKey, string]()

	_, ok := kv.Get("a")
	assert.False(t, ok)

	kv.Set("a", "https://one.example.com")
	kv.Set("a", "https://two.example.com")

	got, ok := kv.Get("a")
	require.True(t, ok)
	assert.Equal(t, "https://two.example.com", got)
	assert.True(t, kv.Has("a"))

	kv.Remove("a")
	kv.Remove("a")
	assert.False(t, kv.Has("a"))
	assert.Equal(t, 0, kv.Len())
}

func TestKV_KeysAreIsolated(t *testing.T) {
	kv := NewKV[chatKey, int]()
	kv.Set("a", 1)
	kv.Set("b", 2)

	kv.Remove("a")

	got, ok := kv.Get("b")
	require.True(t, ok)
	assert.Equal(t, 2, got)
}

func TestKV_ListIsSorted(t *testing.T) {
	kv := NewKV[chatKey, int]()
	kv.Set("c", 3)
	kv.Set("a", 1)
	kv.Set("b", 2)

	entries := kv.List()
	require.Len(t, entries, 3)
	assert.Equal(t, []chatKey{"a", "b", "c"}, []chatKey{entries[0].Key, entries[1].Key, entries[2].Key})
	assert.Equal(t, 3, entries[2].Value)
}

func TestKV_PointerValues(t *testing.T) {
	type session struct{ base string }
	kv := NewKV[chatKey, *session]()
	s := &session{base: "https://panel.example.com"}
	kv.Set("a", s)

	got, ok := kv.Get("a")
	require.True(t, ok)
	assert.Same(t, s, got)
}

func TestKV_ConcurrentAccess(t *testing.T) {
	kv := NewKV[chatKey, int]()
	var wg sync.WaitGroup

	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := chatKey(strconv.Itoa(i % 20))
				kv.Set(key, w)
				kv.Get(key)
				if i%7 == 0 {
					kv.Remove(key)
				}
				kv.List()
			}
		}(w)
	}
	wg.Wait()

	assert.LessOrEqual(t, kv.Len(), 20)
}
