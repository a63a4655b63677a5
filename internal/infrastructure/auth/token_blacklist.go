package auth

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist tracks revoked tokens so the middleware can reject
// them before their natural expiry. Revocation works at two grains:
// a single token by jti, or every token a user holds (set when a user
// is deactivated).
type TokenBlacklist interface {
	// Revoke blacklists one token by jti. ttl should be the token's
	// remaining lifetime; entries may expire after that.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error

	// IsRevoked reports whether a jti has been revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// RevokeUser invalidates every token the user currently holds by
	// recording a cutoff timestamp.
	RevokeUser(ctx context.Context, userID string, ttl time.Duration) error

	// IsUserRevoked reports whether a token issued at issuedAt falls
	// before the user's revocation cutoff.
	IsUserRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error)
}

// RedisTokenBlacklist is the production TokenBlacklist, sharing the
// process redis client.
type RedisTokenBlacklist struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisTokenBlacklist wraps an existing redis client. The caller
// owns the client's lifecycle.
func NewRedisTokenBlacklist(client *redis.Client) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{
		client:    client,
		keyPrefix: "auth:revoked:",
	}
}

func (b *RedisTokenBlacklist) jtiKey(jti string) string {
	return b.keyPrefix + "jti:" + jti
}

func (b *RedisTokenBlacklist) userKey(userID string) string {
	return b.keyPrefix + "user:" + userID
}

// Revoke blacklists one token by jti.
func (b *RedisTokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := b.client.Set(ctx, b.jtiKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether a jti has been revoked.
func (b *RedisTokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	exists, err := b.client.Exists(ctx, b.jtiKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check token revocation: %w", err)
	}
	return exists > 0, nil
}

// RevokeUser records now as the user's revocation cutoff.
func (b *RedisTokenBlacklist) RevokeUser(ctx context.Context, userID string, ttl time.Duration) error {
	cutoff := time.Now().Unix()
	if err := b.client.Set(ctx, b.userKey(userID), cutoff, ttl).Err(); err != nil {
		return fmt.Errorf("revoke user tokens: %w", err)
	}
	return nil
}

// IsUserRevoked reports whether issuedAt falls at or before the user's
// revocation cutoff.
func (b *RedisTokenBlacklist) IsUserRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error) {
	value, err := b.client.Get(ctx, b.userKey(userID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check user revocation: %w", err)
	}

	cutoff, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return false, fmt.Errorf("parse revocation cutoff: %w", err)
	}

	return issuedAt.Unix() <= cutoff, nil
}

var _ TokenBlacklist = (*RedisTokenBlacklist)(nil)

// InMemoryTokenBlacklist backs tests and single-process setups. It does
// not share state across instances.
type InMemoryTokenBlacklist struct {
	mu          sync.RWMutex
	revokedJTIs map[string]time.Time // jti -> entry expiry
	userCutoffs map[string]time.Time // userID -> revocation cutoff
}

// NewInMemoryTokenBlacklist returns an empty in-memory blacklist.
func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{
		revokedJTIs: make(map[string]time.Time),
		userCutoffs: make(map[string]time.Time),
	}
}

// Revoke blacklists one token by jti.
func (b *InMemoryTokenBlacklist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revokedJTIs[jti] = time.Now().Add(ttl)
	return nil
}

// IsRevoked reports whether a jti has been revoked; expired entries are
// dropped on read.
func (b *InMemoryTokenBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	expiry, exists := b.revokedJTIs[jti]
	if !exists {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(b.revokedJTIs, jti)
		return false, nil
	}
	return true, nil
}

// RevokeUser records now as the user's revocation cutoff.
func (b *InMemoryTokenBlacklist) RevokeUser(_ context.Context, userID string, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.userCutoffs[userID] = time.Now()
	return nil
}

// IsUserRevoked reports whether issuedAt falls at or before the user's
// revocation cutoff. Nanosecond precision so immediately-revoked test
// tokens register.
func (b *InMemoryTokenBlacklist) IsUserRevoked(_ context.Context, userID string, issuedAt time.Time) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	cutoff, exists := b.userCutoffs[userID]
	if !exists {
		return false, nil
	}
	return issuedAt.UnixNano() <= cutoff.UnixNano(), nil
}

var _ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)
