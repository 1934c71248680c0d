// Package batch runs sequential application batches and tracks their
// progress for pollers.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

// Store persists batch states for progress polling. The orchestrator writes
// through it after every job so a poller never observes a stale count.
type Store interface {
	Save(ctx context.Context, state engine.BatchState) error
	Load(ctx context.Context, batchID string) (engine.BatchState, error)
}

// memoryStore is the default Store.
type memoryStore struct {
	mu     sync.RWMutex
	states map[string]engine.BatchState
}

// NewMemoryStore returns an in-memory Store.
func NewMemoryStore() Store {
	return &memoryStore{states: make(map[string]engine.BatchState)}
}

func (m *memoryStore) Save(_ context.Context, state engine.BatchState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Deep-copy the slices so the running batch can keep appending without
	// racing a concurrent poller.
	cp := state
	cp.JobIDs = append([]string(nil), state.JobIDs...)
	cp.Results = append([]engine.ApplicationResult(nil), state.Results...)
	m.states[state.BatchID] = cp
	return nil
}

func (m *memoryStore) Load(_ context.Context, batchID string) (engine.BatchState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.states[batchID]
	if !ok {
		return engine.BatchState{}, engine.ErrNotFound
	}
	return state, nil
}

// redisStore keeps batch states in Redis for deployments where pollers hit
// a different instance than the one running the batch.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis at url (redis:// form) and stores states
// under the given TTL.
func NewRedisStore(ctx context.Context, url string, ttl time.Duration) (Store, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("batch: parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("batch: ping redis: %w", err)
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &redisStore{client: client, ttl: ttl}, nil
}

func redisBatchKey(batchID string) string { return "ga:batch:" + batchID }

func (r *redisStore) Save(ctx context.Context, state engine.BatchState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("batch: marshal state: %w", err)
	}
	if err := r.client.Set(ctx, redisBatchKey(state.BatchID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("batch: save %s: %w", state.BatchID, err)
	}
	return nil
}

func (r *redisStore) Load(ctx context.Context, batchID string) (engine.BatchState, error) {
	data, err := r.client.Get(ctx, redisBatchKey(batchID)).Bytes()
	if err == redis.Nil {
		return engine.BatchState{}, engine.ErrNotFound
	}
	if err != nil {
		return engine.BatchState{}, fmt.Errorf("batch: load %s: %w", batchID, err)
	}
	var state engine.BatchState
	if err := json.Unmarshal(data, &state); err != nil {
		return engine.BatchState{}, fmt.Errorf("batch: unmarshal %s: %w", batchID, err)
	}
	return state, nil
}
