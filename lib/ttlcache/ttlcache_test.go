package ttlcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	current time.Time
}

func (f *fakeClock) now() time.Time {
	return f.current
}

func (f *fakeClock) advance(d time.Duration) {
	f.current = f.current.Add(d)
}

func TestGetBeforeSet(t *testing.T) {
	cache := New[string](time.Second * 90)
	_, ok := cache.Get()
	require.False(t, ok)
}

func TestExpiry(t *testing.T) {
	clock := &fakeClock{current: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cache := NewWithClock[int](time.Second*90, clock.now)

	cache.Set(42)

	value, ok := cache.Get()
	require.True(t, ok)
	require.Equal(t, 42, value)

	clock.advance(time.Second * 89)
	_, ok = cache.Get()
	require.True(t, ok)

	clock.advance(time.Second)
	_, ok = cache.Get()
	require.False(t, ok)
}

func TestSetRestartsWindow(t *testing.T) {
	clock := &fakeClock{current: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cache := NewWithClock[int](time.Second*90, clock.now)

	cache.Set(1)
	clock.advance(time.Second * 60)
	cache.Set(2)
	clock.advance(time.Second * 60)

	value, ok := cache.Get()
	require.True(t, ok)
	require.Equal(t, 2, value)
}

func TestInvalidate(t *testing.T) {
	cache := New[string](time.Minute)
	cache.Set("cached")
	cache.Invalidate()
	_, ok := cache.Get()
	require.False(t, ok)
}
