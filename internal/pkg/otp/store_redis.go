package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"

	"github.com/shandysiswandi/signup/internal/pkg/goerror"
)

const redisKeyPrefix = "otp:"

// RedisStore keeps one hash per subject. Keys expire with their record, so
// Purge has nothing to do.
type RedisStore struct {
	client  redis.UniversalClient
	backoff func() retry.Backoff
}

// redisRecord is the hash layout. Times are unix milliseconds; a zero
// consumed_at means unconsumed.
type redisRecord struct {
	ID         string `redis:"id"`
	Digest     string `redis:"digest"`
	IssuedAt   int64  `redis:"issued_at"`
	ExpiresAt  int64  `redis:"expires_at"`
	ConsumedAt int64  `redis:"consumed_at"`
}

// NewRedisStore returns a RedisStore. Consume retries optimistic transaction
// conflicts a few times before giving up.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{
		client: client,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(5, retry.WithJitter(5*time.Millisecond, retry.NewExponential(10*time.Millisecond)))
		},
	}
}

type hashReader interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

func redisKey(subjectID string) string {
	return redisKeyPrefix + subjectID
}

func (s *RedisStore) Replace(ctx context.Context, rec Record) error {
	key := redisKey(rec.SubjectID)

	var consumedAt int64
	if rec.ConsumedAt != nil {
		consumedAt = rec.ConsumedAt.UnixMilli()
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			"id", rec.ID,
			"digest", rec.CodeDigest,
			"issued_at", rec.IssuedAt.UnixMilli(),
			"expires_at", rec.ExpiresAt.UnixMilli(),
			"consumed_at", consumedAt,
		)
		pipe.PExpireAt(ctx, key, rec.ExpiresAt)
		return nil
	})
	return err
}

func (s *RedisStore) Find(ctx context.Context, subjectID string) (Record, error) {
	rec, err := s.read(ctx, s.client, subjectID)
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *RedisStore) read(ctx context.Context, c hashReader, subjectID string) (Record, error) {
	res := c.HGetAll(ctx, redisKey(subjectID))
	if err := res.Err(); err != nil {
		return Record{}, err
	}
	if len(res.Val()) == 0 {
		return Record{}, goerror.ErrNotFound
	}

	var rr redisRecord
	if err := res.Scan(&rr); err != nil {
		return Record{}, fmt.Errorf("otp: scan redis record: %w", err)
	}

	rec := Record{
		ID:         rr.ID,
		SubjectID:  subjectID,
		CodeDigest: rr.Digest,
		IssuedAt:   time.UnixMilli(rr.IssuedAt),
		ExpiresAt:  time.UnixMilli(rr.ExpiresAt),
	}
	if rr.ConsumedAt != 0 {
		t := time.UnixMilli(rr.ConsumedAt)
		rec.ConsumedAt = &t
	}
	return rec, nil
}

func (s *RedisStore) Consume(ctx context.Context, subjectID, recordID string, at time.Time) (bool, error) {
	key := redisKey(subjectID)

	var consumed bool
	err := retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		consumed = false

		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			rec, err := s.read(ctx, tx, subjectID)
			if errors.Is(err, goerror.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			if rec.ID != recordID || !rec.Active(at) {
				return nil
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.HSet(ctx, key, "consumed_at", at.UnixMilli())
				return nil
			})
			if err != nil {
				return err
			}
			consumed = true
			return nil
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return false, err
	}
	return consumed, nil
}

// Purge is a no-op: records expire through PEXPIREAT.
func (s *RedisStore) Purge(context.Context, time.Time) (int64, error) {
	return 0, nil
}
