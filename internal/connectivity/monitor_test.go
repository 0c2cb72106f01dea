package connectivity

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_SetEmitsOnlyOnOnlineEdge(t *testing.T) {
	m := New(false)

	m.Set(false)
	assertNoSignal(t, m)

	m.Set(true)
	assert.True(t, m.Online())
	assertSignal(t, m)

	m.Set(true)
	assertNoSignal(t, m)

	m.Set(false)
	assert.False(t, m.Online())
	assertNoSignal(t, m)
}

func TestMonitor_StartingOnlineDoesNotSignal(t *testing.T) {
	m := New(true)
	assert.True(t, m.Online())
	assertNoSignal(t, m)
}

func TestMonitor_SignalsCoalesce(t *testing.T) {
	m := New(false)
	for i := 0; i < 5; i++ {
		m.Set(true)
		m.Set(false)
	}

	assertSignal(t, m)
	assertNoSignal(t, m)
}

type flakyProber struct {
	calls atomic.Int32
	fail  atomic.Bool
}

func (p *flakyProber) Ping(ctx context.Context) error {
	p.calls.Add(1)
	if p.fail.Load() {
		return errors.New("unreachable")
	}
	return nil
}

func TestMonitor_Watch(t *testing.T) {
	m := New(false)
	p := &flakyProber{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- m.Watch(ctx, p, 10*time.Millisecond) }()

	assertSignal(t, m)
	assert.True(t, m.Online())

	p.fail.Store(true)
	require.Eventually(t, func() bool { return !m.Online() }, time.Second, 5*time.Millisecond)

	p.fail.Store(false)
	assertSignal(t, m)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after cancel")
	}
	assert.Greater(t, p.calls.Load(), int32(2))
}

func assertSignal(t *testing.T, m *Monitor) {
	t.Helper()
	select {
	case <-m.BecameOnline():
	case <-time.After(time.Second):
		t.Fatal("expected a BecameOnline signal")
	}
}

func assertNoSignal(t *testing.T, m *Monitor) {
	t.Helper()
	select {
	case <-m.BecameOnline():
		t.Fatal("unexpected BecameOnline signal")
	default:
	}
}
