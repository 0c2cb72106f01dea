package queue

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iir20/amar-dokan-pos-system/internal/metrics"
	"github.com/iir20/amar-dokan-pos-system/internal/model"
	tu "github.com/iir20/amar-dokan-pos-system/internal/testutil"
)

func mutation(t *testing.T, ids model.IDGenerator, id string) model.Mutation {
	t.Helper()
	m, err := model.NewMutation(ids, model.CollectionExpenses, model.OpDelete, model.DeletePayload{ID: id})
	require.NoError(t, err)
	return m
}

func TestQueue_EnqueueListRemove(t *testing.T) {
	ctx := context.Background()
	clock := tu.NewFakeClock(time.Time{})
	ids := model.NewFixedGenerator("key-a", "key-b", "key-c")
	q := New(tu.OpenStore(t), WithClock(clock))

	var seqs []int64
	for i := 0; i < 3; i++ {
		seq, err := q.Enqueue(ctx, mutation(t, ids, fmt.Sprintf("e%d", i)))
		require.NoError(t, err)
		seqs = append(seqs, seq)
		clock.Advance(time.Minute)
	}

	pending, err := q.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	for i, p := range pending {
		assert.Equal(t, seqs[i], p.Seq)
		assert.True(t, p.EnqueuedAt.Equal(tu.Epoch.Add(time.Duration(i)*time.Minute)))
	}
	assert.Equal(t, "key-a", pending[0].IdempotencyKey)
	assert.JSONEq(t, `{"id":"e0"}`, string(pending[0].Payload))

	require.NoError(t, q.Remove(ctx, seqs[0]))
	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.True(t, model.IsNotFound(q.Remove(ctx, seqs[0])))
}

func TestQueue_RecordFailureKeepsOrder(t *testing.T) {
	ctx := context.Background()
	ids := model.NewFixedGenerator()
	q := New(tu.OpenStore(t))

	first, err := q.Enqueue(ctx, mutation(t, ids, "e1"))
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, mutation(t, ids, "e2"))
	require.NoError(t, err)

	require.NoError(t, q.RecordFailure(ctx, first, errors.New("connection refused")))

	pending, err := q.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first, pending[0].Seq)
	assert.Equal(t, 1, pending[0].Attempts)
	assert.Equal(t, "connection refused", pending[0].LastError)
}

func TestQueue_ReportsDepth(t *testing.T) {
	ctx := context.Background()
	m := metrics.New()
	q := New(tu.OpenStore(t), WithMetrics(m))
	ids := model.NewFixedGenerator()

	seq, err := q.Enqueue(ctx, mutation(t, ids, "e1"))
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, mutation(t, ids, "e2"))
	require.NoError(t, err)
	assertDepth(t, m, 2)

	require.NoError(t, q.Remove(ctx, seq))
	assertDepth(t, m, 1)
}

func assertDepth(t *testing.T, m *metrics.Metrics, want float64) {
	t.Helper()
	n, err := testutil.GatherAndCount(m.Registry(), "dokan_sync_queue_depth")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == "dokan_sync_queue_depth" {
			assert.Equal(t, want, f.GetMetric()[0].GetGauge().GetValue())
			return
		}
	}
	t.Fatal("dokan_sync_queue_depth not gathered")
}
