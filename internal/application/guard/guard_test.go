package guard

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astren/core/internal/domain/entities"
)

func TestTryAcquireRejectsHeldKey(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.TryAcquire("task:delete:42"))
	assert.ErrorIs(t, reg.TryAcquire("task:delete:42"), entities.ErrOperationInFlight)

	// A different key is unaffected.
	require.NoError(t, reg.TryAcquire("task:delete:43"))
}

func TestReleaseAllowsReacquire(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.TryAcquire("task:create:7"))
	reg.Release("task:create:7")
	require.NoError(t, reg.TryAcquire("task:create:7"))
}

func TestReleaseUnheldKeyIsNoop(t *testing.T) {
	reg := NewRegistry()
	reg.Release("never-acquired")
	assert.False(t, reg.Held("never-acquired"))
}

func TestConcurrentAcquireAdmitsExactlyOne(t *testing.T) {
	reg := NewRegistry()

	const workers = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := reg.TryAcquire("task:delete:1"); err == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, admitted)
}

func TestIndependentKeysDoNotContend(t *testing.T) {
	reg := NewRegistry()

	for i := 0; i < 10; i++ {
		require.NoError(t, reg.TryAcquire(fmt.Sprintf("task:delete:%d", i)))
	}
}
