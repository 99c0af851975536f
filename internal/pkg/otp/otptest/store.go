// Package otptest holds the behaviour every otp.Store must share.
package otptest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/signup/internal/pkg/goerror"
	"github.com/shandysiswandi/signup/internal/pkg/otp"
)

// RunStoreSuite runs the store contract against stores built by newStore.
// Each subtest gets a fresh store.
func RunStoreSuite(t *testing.T, newStore func(t *testing.T) otp.Store) {
	t.Helper()

	// Millisecond precision keeps the comparison exact for every backend.
	t0 := time.Now().UTC().Truncate(time.Millisecond).Add(time.Hour)
	rec := func(id, subject string) otp.Record {
		return otp.Record{
			ID:         id,
			SubjectID:  subject,
			CodeDigest: "digest-" + id,
			IssuedAt:   t0,
			ExpiresAt:  t0.Add(10 * time.Minute),
		}
	}

	t.Run("FindMissing", func(t *testing.T) {
		s := newStore(t)

		_, err := s.Find(context.Background(), "nobody")

		assert.ErrorIs(t, err, goerror.ErrNotFound)
	})

	t.Run("ReplaceThenFind", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Replace(ctx, rec("r1", "u1")))
		got, err := s.Find(ctx, "u1")

		require.NoError(t, err)
		assert.Equal(t, "r1", got.ID)
		assert.Equal(t, "u1", got.SubjectID)
		assert.Equal(t, "digest-r1", got.CodeDigest)
		assert.True(t, t0.Equal(got.IssuedAt))
		assert.True(t, t0.Add(10*time.Minute).Equal(got.ExpiresAt))
		assert.Nil(t, got.ConsumedAt)
	})

	t.Run("ReplaceDropsPrevious", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Replace(ctx, rec("r1", "u1")))
		require.NoError(t, s.Replace(ctx, rec("r2", "u1")))

		got, err := s.Find(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "r2", got.ID)

		ok, err := s.Consume(ctx, "u1", "r1", t0.Add(time.Minute))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("ConsumeOnce", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Replace(ctx, rec("r1", "u1")))

		first, err := s.Consume(ctx, "u1", "r1", t0.Add(time.Minute))
		require.NoError(t, err)
		second, err := s.Consume(ctx, "u1", "r1", t0.Add(2*time.Minute))
		require.NoError(t, err)

		assert.True(t, first)
		assert.False(t, second)

		got, err := s.Find(ctx, "u1")
		require.NoError(t, err)
		require.NotNil(t, got.ConsumedAt)
		assert.True(t, t0.Add(time.Minute).Equal(*got.ConsumedAt))
	})

	t.Run("ConsumeExpired", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Replace(ctx, rec("r1", "u1")))

		ok, err := s.Consume(ctx, "u1", "r1", t0.Add(10*time.Minute))

		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("ConsumeMissing", func(t *testing.T) {
		s := newStore(t)

		ok, err := s.Consume(context.Background(), "nobody", "r1", t0)

		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("SubjectsAreIndependent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Replace(ctx, rec("r1", "u1")))
		require.NoError(t, s.Replace(ctx, rec("r2", "u2")))

		ok, err := s.Consume(ctx, "u1", "r1", t0.Add(time.Minute))
		require.NoError(t, err)
		require.True(t, ok)

		got, err := s.Find(ctx, "u2")
		require.NoError(t, err)
		assert.Nil(t, got.ConsumedAt)
	})
}

// RunPurgeSuite checks Purge for stores that delete records themselves.
func RunPurgeSuite(t *testing.T, newStore func(t *testing.T) otp.Store) {
	t.Helper()

	t0 := time.Now().UTC().Truncate(time.Millisecond).Add(time.Hour)
	s := newStore(t)
	ctx := context.Background()

	records := []otp.Record{
		{ID: "live", SubjectID: "live", CodeDigest: "d", IssuedAt: t0, ExpiresAt: t0.Add(10 * time.Minute)},
		{ID: "expired", SubjectID: "expired", CodeDigest: "d", IssuedAt: t0.Add(-20 * time.Minute), ExpiresAt: t0.Add(-10 * time.Minute)},
		{ID: "consumed", SubjectID: "consumed", CodeDigest: "d", IssuedAt: t0, ExpiresAt: t0.Add(10 * time.Minute)},
	}
	for _, r := range records {
		require.NoError(t, s.Replace(ctx, r))
	}
	ok, err := s.Consume(ctx, "consumed", "consumed", t0.Add(time.Second))
	require.NoError(t, err)
	require.True(t, ok)

	n, err := s.Purge(ctx, t0.Add(time.Minute))

	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = s.Find(ctx, "live")
	assert.NoError(t, err)
	_, err = s.Find(ctx, "expired")
	assert.ErrorIs(t, err, goerror.ErrNotFound)
	_, err = s.Find(ctx, "consumed")
	assert.ErrorIs(t, err, goerror.ErrNotFound)
}
