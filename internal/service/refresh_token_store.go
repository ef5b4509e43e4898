package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRefreshTTL = 30 * 24 * time.Hour
	refreshKeyPrefix  = "auth:refresh:"
	redisOpTimeout    = 500 * time.Millisecond
)

// RefreshTokenStore registra cada refresh token emitido (por jti) junto a la
// cuenta que lo recibio. Un jti ausente significa sesion cerrada o rotada.
type RefreshTokenStore interface {
	Store(jti, accountID string, ttl time.Duration) error
	// Owner devuelve la cuenta duena del jti, o "" si no esta vigente.
	Owner(jti string) (string, error)
	Revoke(jti string) error
}

type refreshSession struct {
	accountID string
	expiresAt time.Time
}

type memoryRefreshTokenStore struct {
	mu       sync.Mutex
	sessions map[string]refreshSession
	now      func() time.Time
}

func NewMemoryRefreshTokenStore() RefreshTokenStore {
	return &memoryRefreshTokenStore{
		sessions: make(map[string]refreshSession),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *memoryRefreshTokenStore) Store(jti, accountID string, ttl time.Duration) error {
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultRefreshTTL
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[jti] = refreshSession{accountID: accountID, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *memoryRefreshTokenStore) Owner(jti string) (string, error) {
	jti = strings.TrimSpace(jti)
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[jti]
	if !ok {
		return "", nil
	}
	if !s.now().Before(session.expiresAt) {
		delete(s.sessions, jti)
		return "", nil
	}
	return session.accountID, nil
}

func (s *memoryRefreshTokenStore) Revoke(jti string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, strings.TrimSpace(jti))
	return nil
}

type redisKVClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// redisRefreshTokenStore guarda auth:refresh:<jti> = <account id> con TTL.
type redisRefreshTokenStore struct {
	client redisKVClient
}

func NewRedisRefreshTokenStore(client *redis.Client) RefreshTokenStore {
	if client == nil {
		return nil
	}
	return &redisRefreshTokenStore{client: client}
}

func refreshKey(jti string) (string, bool) {
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return "", false
	}
	return refreshKeyPrefix + jti, true
}

func (s *redisRefreshTokenStore) Store(jti, accountID string, ttl time.Duration) error {
	key, ok := refreshKey(jti)
	if !ok {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultRefreshTTL
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	return s.client.Set(ctx, key, accountID, ttl).Err()
}

func (s *redisRefreshTokenStore) Owner(jti string) (string, error) {
	key, ok := refreshKey(jti)
	if !ok {
		return "", nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	owner, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return owner, nil
}

func (s *redisRefreshTokenStore) Revoke(jti string) error {
	key, ok := refreshKey(jti)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	return s.client.Del(ctx, key).Err()
}
