package keylock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/lpm/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := New()
	ctx := context.Background()

	for i := 0; i < 10000; i++ {
		key := fmt.Sprintf("names/path/p%d", i)
		require.NoError(t, mgr.WithLock(ctx, key, func(context.Context) error { return nil }))
	}
	assert.Equal(t, 0, mgr.Active(), "locks leaked")
}

func TestManager_SerializesSameKey(t *testing.T) {
	mgr := New()
	var inside, maxInside atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = mgr.WithLock(context.Background(), "same", func(context.Context) error {
				n := inside.Add(1)
				if n > maxInside.Load() {
					maxInside.Store(n)
				}
				time.Sleep(time.Millisecond)
				inside.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside.Load())
}

func TestManager_ReturnsFnError(t *testing.T) {
	boom := errors.New("boom")
	err := New().WithLock(context.Background(), "k", func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}

type recordingLocker struct {
	mu     sync.Mutex
	locked []string
	ttls   []time.Duration
	fail   error
}

func (r *recordingLocker) Lock(_ context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if r.fail != nil {
		return nil, r.fail
	}
	r.mu.Lock()
	r.locked = append(r.locked, key)
	r.ttls = append(r.ttls, ttl)
	r.mu.Unlock()
	return func(context.Context) error { return nil }, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	rec := &recordingLocker{}
	mgr := New(WithLocker(rec), WithTTL(time.Second))

	require.NoError(t, mgr.WithLock(context.Background(), "names/path/demo", func(context.Context) error { return nil }))
	assert.Equal(t, []string{"names/path/demo"}, rec.locked)
	assert.Equal(t, []time.Duration{time.Second}, rec.ttls)
}

func TestManager_DistributedLockFailure(t *testing.T) {
	mgr := New(WithLocker(&recordingLocker{fail: errors.New("redis down")}))

	called := false
	err := mgr.WithLock(context.Background(), "k", func(context.Context) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
	assert.Equal(t, 0, mgr.Active())
}
