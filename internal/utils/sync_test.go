package utils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOptionalMutexUnused(t *testing.T) {
	var m OptionalMutex

	// Without UseMutex, nested locking never blocks
	m.Lock()
	m.Lock()
	m.Unlock()
	m.Unlock()

	require.True(t, m.Mutex.TryLock())
	m.Mutex.Unlock()
}

func TestOptionalMutexUsed(t *testing.T) {
	m := OptionalMutex{UseMutex: true}

	m.Lock()
	require.False(t, m.Mutex.TryLock())
	m.Unlock()

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				m.Lock()
				counter++
				m.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 8000, counter)
}
