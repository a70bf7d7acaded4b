package chatlock

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithLockSerializesSameChat(t *testing.T) {
	m := NewManager()

	var active, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.WithLock("1@s.whatsapp.net", func() error {
				n := atomic.AddInt32(&active, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&active, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), peak)
}

func TestWithLockReturnsFnError(t *testing.T) {
	m := NewManager()
	want := errors.New("boom")
	assert.ErrorIs(t, m.WithLock("a", func() error { return want }), want)
}

func TestWithLockDifferentChatsRunConcurrently(t *testing.T) {
	m := NewManager()
	inA := make(chan struct{})
	release := make(chan struct{})

	done := make(chan error, 1)
	go func() {
		done <- m.WithLock("a", func() error {
			close(inA)
			<-release
			return nil
		})
	}()
	<-inA

	// "b" must not wait for "a"
	require.NoError(t, m.WithLock("b", func() error { return nil }))
	close(release)
	require.NoError(t, <-done)
}

func TestCleanup(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.WithLock("a", func() error { return nil }))
	require.NoError(t, m.WithLock("b", func() error { return nil }))
	require.Equal(t, 2, m.size())

	m.Cleanup(time.Hour)
	assert.Equal(t, 2, m.size())

	time.Sleep(5 * time.Millisecond)
	m.Cleanup(time.Millisecond)
	assert.Equal(t, 0, m.size())
}
