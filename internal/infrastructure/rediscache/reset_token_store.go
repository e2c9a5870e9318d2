package rediscache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResetTokenStore keeps password reset tokens in Redis with a TTL.
// Keys map token -> user id; expiry makes tokens self-cleaning and
// GETDEL makes consumption one-time.
type ResetTokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

func keyResetToken(token string) string { return "pwd:reset:token:" + token }

func NewResetTokenStore(client *redis.Client, ttl time.Duration) *ResetTokenStore {
	return &ResetTokenStore{client: client, ttl: ttl}
}

// Save stores the token for the given user until the TTL elapses.
func (s *ResetTokenStore) Save(ctx context.Context, token string, userID int64) error {
	return s.client.Set(ctx, keyResetToken(token), strconv.FormatInt(userID, 10), s.ttl).Err()
}

// Consume returns the user id for the token and deletes it atomically.
// An unknown or expired token yields (0, false, nil).
func (s *ResetTokenStore) Consume(ctx context.Context, token string) (int64, bool, error) {
	val, err := s.client.GetDel(ctx, keyResetToken(token)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return id, true, nil
}

// TTL exposes the configured token lifetime (used when composing emails).
func (s *ResetTokenStore) TTL() time.Duration { return s.ttl }
