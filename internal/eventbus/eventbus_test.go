package eventbus

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type ping struct{ N int }
type pong struct{ S string }

func TestDispatchByType(t *testing.T) {
	b := New()
	var pings []int
	var pongs []string
	On(b, func(_ context.Context, e ping) { pings = append(pings, e.N) })
	On(b, func(_ context.Context, e pong) { pongs = append(pongs, e.S) })

	Emit(context.Background(), b, ping{1})
	Emit(context.Background(), b, pong{"a"})
	Emit(context.Background(), b, ping{2})

	require.Equal(t, []int{1, 2}, pings)
	require.Equal(t, []string{"a"}, pongs)
}

func TestUnsubscribeRemovesOnlyThatHandler(t *testing.T) {
	b := New()
	var first, second int
	unsub := On(b, func(context.Context, ping) { first++ })
	On(b, func(context.Context, ping) { second++ })

	Emit(context.Background(), b, ping{})
	unsub()
	unsub()
	Emit(context.Background(), b, ping{})

	require.Equal(t, 1, first)
	require.Equal(t, 2, second)
}

func TestGlobalBus(t *testing.T) {
	Use(nil)
	unsub := Subscribe(func(context.Context, ping) { t.Fatal("no bus installed") })
	Publish(context.Background(), ping{})
	unsub()

	b := New()
	Use(b)
	defer Use(nil)

	var mu sync.Mutex
	got := 0
	defer Subscribe(func(context.Context, ping) {
		mu.Lock()
		got++
		mu.Unlock()
	})()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Publish(context.Background(), ping{})
		}()
	}
	wg.Wait()
	require.Equal(t, 8, got)
}
