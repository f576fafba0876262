// internal/stub/lockout.go
package stub

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockoutStore counts failed login attempts per subject inside a rolling
// window. Implementations must expire counters on their own once the window
// passes.
type LockoutStore interface {
	// RecordFailure increments the counter and returns the new count.
	RecordFailure(ctx context.Context, subjectID string) (int64, error)
	// Failures returns the current count without changing it.
	Failures(ctx context.Context, subjectID string) (int64, error)
	// Remaining returns how long the current window still lasts.
	Remaining(ctx context.Context, subjectID string) (time.Duration, error)
	// Reset drops the counter.
	Reset(ctx context.Context, subjectID string) error
}

// --- Redis implementation ---

// RedisLockoutStore keeps attempt counters in redis with the window as TTL,
// so restarting the stub does not forget active lockouts.
type RedisLockoutStore struct {
	client *redis.Client
	window time.Duration
}

func NewRedisLockoutStore(client *redis.Client, window time.Duration) *RedisLockoutStore {
	return &RedisLockoutStore{client: client, window: window}
}

func (r *RedisLockoutStore) key(subjectID string) string {
	return fmt.Sprintf("lockout:login:%s", subjectID)
}

func (r *RedisLockoutStore) RecordFailure(ctx context.Context, subjectID string) (int64, error) {
	key := r.key(subjectID)
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment login attempt: %w", err)
	}
	if count == 1 {
		r.client.Expire(ctx, key, r.window)
	}
	return count, nil
}

func (r *RedisLockoutStore) Failures(ctx context.Context, subjectID string) (int64, error) {
	count, err := r.client.Get(ctx, r.key(subjectID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get login attempts: %w", err)
	}
	return count, nil
}

func (r *RedisLockoutStore) Remaining(ctx context.Context, subjectID string) (time.Duration, error) {
	ttl, err := r.client.TTL(ctx, r.key(subjectID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get lockout ttl: %w", err)
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

func (r *RedisLockoutStore) Reset(ctx context.Context, subjectID string) error {
	return r.client.Del(ctx, r.key(subjectID)).Err()
}

// --- In-memory implementation ---

// MemoryLockoutStore is the default when no redis is configured, and the one
// tests use.
type MemoryLockoutStore struct {
	window time.Duration

	mu      sync.Mutex
	entries map[string]*memoryLockoutEntry
}

type memoryLockoutEntry struct {
	count     int64
	expiresAt time.Time
}

func NewMemoryLockoutStore(window time.Duration) *MemoryLockoutStore {
	return &MemoryLockoutStore{
		window:  window,
		entries: make(map[string]*memoryLockoutEntry),
	}
}

func (m *MemoryLockoutStore) RecordFailure(_ context.Context, subjectID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := m.live(subjectID)
	if entry == nil {
		entry = &memoryLockoutEntry{expiresAt: time.Now().Add(m.window)}
		m.entries[subjectID] = entry
	}
	entry.count++
	return entry.count, nil
}

func (m *MemoryLockoutStore) Failures(_ context.Context, subjectID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry := m.live(subjectID); entry != nil {
		return entry.count, nil
	}
	return 0, nil
}

func (m *MemoryLockoutStore) Remaining(_ context.Context, subjectID string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry := m.live(subjectID); entry != nil {
		return time.Until(entry.expiresAt), nil
	}
	return 0, nil
}

func (m *MemoryLockoutStore) Reset(_ context.Context, subjectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, subjectID)
	return nil
}

// live returns the entry for subjectID, dropping it first when expired.
// Callers must hold mu.
func (m *MemoryLockoutStore) live(subjectID string) *memoryLockoutEntry {
	entry, ok := m.entries[subjectID]
	if !ok {
		return nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(m.entries, subjectID)
		return nil
	}
	return entry
}
