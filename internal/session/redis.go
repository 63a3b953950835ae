package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"meet-and-greet/internal/config"
	"meet-and-greet/internal/wizard"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "wizard:session:"

// Releases the submit lock only if it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisStore struct {
	client  *redis.Client
	ttl     time.Duration
	lockTTL time.Duration
}

func NewRedisClient(cfg *config.Redis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
}

// NewRedisStore keeps sessions as JSON values that expire ttl after their
// last save. lockTTL bounds how long a crashed submit can hold a session.
func NewRedisStore(client *redis.Client, ttl, lockTTL time.Duration) Store {
	return &redisStore{
		client:  client,
		ttl:     ttl,
		lockTTL: lockTTL,
	}
}

func sessionKey(id string) string { return keyPrefix + id }

func lockKey(id string) string { return keyPrefix + id + ":submit" }

func (s *redisStore) Create(ctx context.Context, state wizard.State) (string, error) {
	id := uuid.NewString()

	data, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("encode wizard state: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(id), data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("create wizard session: %w", err)
	}
	return id, nil
}

func (s *redisStore) Load(ctx context.Context, id string) (wizard.State, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return wizard.State{}, ErrNotFound
	}
	if err != nil {
		return wizard.State{}, fmt.Errorf("load wizard session: %w", err)
	}

	var state wizard.State
	if err := json.Unmarshal(data, &state); err != nil {
		return wizard.State{}, fmt.Errorf("decode wizard state: %w", err)
	}
	return state, nil
}

func (s *redisStore) Save(ctx context.Context, id string, state wizard.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode wizard state: %w", err)
	}

	ok, err := s.client.SetXX(ctx, sessionKey(id), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("save wizard session: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *redisStore) Lock(ctx context.Context, id string) (func(), error) {
	token := uuid.NewString()

	ok, err := s.client.SetNX(ctx, lockKey(id), token, s.lockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("lock wizard session: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	return func() {
		// The request context may already be cancelled.
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = unlockScript.Run(ctx, s.client, []string{lockKey(id)}, token).Err()
	}, nil
}
