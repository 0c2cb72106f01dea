package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iir20/amar-dokan-pos-system/internal/model"
)

func TestSyncQueue_OrderAndRemove(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	var seqs []int64
	for _, key := range []string{"k1", "k2", "k3"} {
		seq, err := EnqueueMutation(ctx, s, testMutation(key), testTime)
		require.NoError(t, err)
		seqs = append(seqs, seq)
	}
	assert.Less(t, seqs[0], seqs[1])
	assert.Less(t, seqs[1], seqs[2])

	pending, err := PendingMutations(ctx, s, 0)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, "k1", pending[0].IdempotencyKey)
	assert.Equal(t, model.OpUpdate, pending[0].Operation)
	assert.JSONEq(t, `{"id":"rice"}`, string(pending[0].Payload))
	assert.True(t, pending[0].EnqueuedAt.Equal(testTime))

	require.NoError(t, RemoveMutation(ctx, s, seqs[1]))
	err = RemoveMutation(ctx, s, seqs[1])
	assert.True(t, model.IsNotFound(err))

	pending, err = PendingMutations(ctx, s, 0)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, seqs[0], pending[0].Seq)
	assert.Equal(t, seqs[2], pending[1].Seq)

	first, err := PendingMutations(ctx, s, 1)
	require.NoError(t, err)
	assert.Len(t, first, 1)
}

func TestSyncQueue_NoDeduplication(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := EnqueueMutation(ctx, s, testMutation("same"), testTime)
	require.NoError(t, err)
	_, err = EnqueueMutation(ctx, s, testMutation("same"), testTime)
	require.NoError(t, err)

	n, err := PendingCount(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSyncQueue_SeqNeverReused(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seq1, err := EnqueueMutation(ctx, s, testMutation("k1"), testTime)
	require.NoError(t, err)
	require.NoError(t, RemoveMutation(ctx, s, seq1))

	seq2, err := EnqueueMutation(ctx, s, testMutation("k2"), testTime)
	require.NoError(t, err)
	assert.Greater(t, seq2, seq1)
}

func TestSyncQueue_RecordAttempt(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seq, err := EnqueueMutation(ctx, s, testMutation("k1"), testTime)
	require.NoError(t, err)
	require.NoError(t, RecordAttempt(ctx, s, seq, "timeout"))
	require.NoError(t, RecordAttempt(ctx, s, seq, "503"))

	pending, err := PendingMutations(ctx, s, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].Attempts)
	assert.Equal(t, "503", pending[0].LastError)

	assert.True(t, model.IsNotFound(RecordAttempt(ctx, s, seq+100, "x")))
}

func TestSyncQueue_RejectsInvalidMutation(t *testing.T) {
	s := createTestStore(t)

	m := testMutation("k1")
	m.Operation = "upsert"
	_, err := EnqueueMutation(context.Background(), s, m, testTime)
	assert.True(t, model.IsValidation(err))
}

func TestSession(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, ok, err := LoadSession(ctx, s)
	require.NoError(t, err)
	assert.False(t, ok)

	// Session references an existing user.
	err = SaveSession(ctx, s, Session{Username: "ghost", StartedAt: testTime})
	assert.True(t, model.IsStoreUnavailable(err), "foreign key: %v", err)

	require.NoError(t, Put(ctx, s, model.UserCredential{Username: "karim", PINHash: "x", StoreName: "Karim Store"}))
	require.NoError(t, Put(ctx, s, model.UserCredential{Username: "rahim", PINHash: "y", StoreName: "Rahim Store"}))

	require.NoError(t, SaveSession(ctx, s, Session{Username: "karim", StartedAt: testTime}))
	require.NoError(t, SaveSession(ctx, s, Session{Username: "rahim", StartedAt: testTime}))

	sess, ok, err := LoadSession(ctx, s)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "rahim", sess.Username, "only one session at a time")
	assert.True(t, sess.StartedAt.Equal(testTime))

	require.NoError(t, ClearSession(ctx, s))
	require.NoError(t, ClearSession(ctx, s))
	_, ok, err = LoadSession(ctx, s)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSession_DeletedUserEndsSession(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, Put(ctx, s, model.UserCredential{Username: "karim", PINHash: "x", StoreName: "K"}))
	require.NoError(t, SaveSession(ctx, s, Session{Username: "karim", StartedAt: testTime}))

	require.NoError(t, Delete(ctx, s, model.CollectionUsers, "karim"))

	_, ok, err := LoadSession(ctx, s)
	require.NoError(t, err)
	assert.False(t, ok)
}
