package otp

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyLock(t *testing.T) {
	t.Run("SerializesSameKey", func(t *testing.T) {
		kl := newKeyLock()
		var (
			wg      sync.WaitGroup
			inside  int
			maxSeen int
			mu      sync.Mutex
		)

		for range 20 {
			wg.Go(func() {
				unlock := kl.Lock("u1")
				defer unlock()

				mu.Lock()
				inside++
				maxSeen = max(maxSeen, inside)
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				inside--
				mu.Unlock()
			})
		}
		wg.Wait()

		assert.Equal(t, 1, maxSeen)
		assert.Equal(t, 0, kl.size())
	})

	t.Run("DistinctKeysDoNotBlock", func(t *testing.T) {
		kl := newKeyLock()
		unlockA := kl.Lock("a")
		defer unlockA()

		done := make(chan struct{})
		go func() {
			unlock := kl.Lock("b")
			unlock()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("lock on b waited for a")
		}
		assert.Equal(t, 1, kl.size())
	})
}
