package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeClock_DefaultsToEpoch(t *testing.T) {
	c := NewFakeClock(time.Time{})
	assert.True(t, c.Now().Equal(Epoch))
}

func TestFakeClock_AdvanceAndReset(t *testing.T) {
	start := time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC)
	c := NewFakeClock(start)

	got := c.Advance(2 * time.Minute)
	assert.Equal(t, 2025, got.Year())
	assert.True(t, c.Now().Equal(got))

	c.Reset()
	assert.True(t, c.Now().Equal(start))
}

func TestFakeClock_ConcurrentAdvance(t *testing.T) {
	c := NewFakeClock(time.Time{})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Advance(time.Second)
		}()
	}
	wg.Wait()

	assert.Equal(t, 100*time.Second, c.Now().Sub(Epoch))
}
