package service

import (
	"context"
	"errors"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const oauthStateTTL = 10 * time.Minute

// NonceStore keeps OAuth2 state values between the redirect to the provider
// and the callback. Take is single use.
type NonceStore interface {
	Put(ctx context.Context, nonce, provider string, ttl time.Duration) error
	Take(ctx context.Context, nonce string) (provider string, ok bool, err error)
}

type RedisNonceStore struct {
	client *redis.Client
}

func NewRedisNonceStore(client *redis.Client) *RedisNonceStore {
	return &RedisNonceStore{client: client}
}

func (s *RedisNonceStore) Put(ctx context.Context, nonce, provider string, ttl time.Duration) error {
	return s.client.Set(ctx, "oauth_state:"+nonce, provider, ttl).Err()
}

func (s *RedisNonceStore) Take(ctx context.Context, nonce string) (string, bool, error) {
	provider, err := s.client.GetDel(ctx, "oauth_state:"+nonce).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return provider, true, nil
}

// MemoryNonceStore is used when Redis is not configured
type MemoryNonceStore struct {
	mu      sync.Mutex
	entries map[string]nonceEntry
	now     func() time.Time
}

type nonceEntry struct {
	provider string
	expires  time.Time
}

func NewMemoryNonceStore() *MemoryNonceStore {
	return &MemoryNonceStore{entries: make(map[string]nonceEntry), now: time.Now}
}

func (s *MemoryNonceStore) Put(_ context.Context, nonce, provider string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, k)
		}
	}
	s.entries[nonce] = nonceEntry{provider: provider, expires: now.Add(ttl)}
	return nil
}

func (s *MemoryNonceStore) Take(_ context.Context, nonce string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[nonce]
	if !ok {
		return "", false, nil
	}
	delete(s.entries, nonce)
	if s.now().After(e.expires) {
		return "", false, nil
	}
	return e.provider, true, nil
}
