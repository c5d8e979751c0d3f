package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct{ N int }

func add(s counter, delta int) counter {
	s.N += delta
	return s
}

func TestStore_DispatchAndState(t *testing.T) {
	store := New(counter{}, add)
	assert.Equal(t, 3, store.Dispatch(3).N)
	assert.Equal(t, 5, store.Dispatch(2).N)
	assert.Equal(t, 5, store.State().N)
}

func TestStore_SubscribersSeeDispatchOrder(t *testing.T) {
	store := New(counter{}, add)
	var seen []int
	cancel := store.Subscribe(func(s counter) { seen = append(seen, s.N) })

	store.Dispatch(1)
	store.Dispatch(1)
	cancel()
	cancel()
	store.Dispatch(1)

	assert.Equal(t, []int{1, 2}, seen)
}

func TestStore_ConcurrentDispatchIsSerialized(t *testing.T) {
	store := New(counter{}, add)
	var mu sync.Mutex
	var seen []int
	store.Subscribe(func(s counter) {
		mu.Lock()
		seen = append(seen, s.N)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Dispatch(1)
		}()
	}
	wg.Wait()

	require.Len(t, seen, 50)
	for i, n := range seen {
		assert.Equal(t, i+1, n)
	}
	assert.Equal(t, 50, store.State().N)
}
