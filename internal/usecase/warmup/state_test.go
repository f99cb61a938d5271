//go:build unit

package warmup

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateTransitionsOnce(t *testing.T) {
	s := NewState()
	assert.False(t, s.Ready())

	var (
		wg      sync.WaitGroup
		flipped atomic.Int32
	)
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.markReady() {
				flipped.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), flipped.Load())
	assert.True(t, s.Ready())
}

func TestStateReset(t *testing.T) {
	s := NewState()
	s.markReady()

	s.ResetForTest()
	assert.False(t, s.Ready())
	assert.True(t, s.markReady(), "a reset state can become ready again")
}
