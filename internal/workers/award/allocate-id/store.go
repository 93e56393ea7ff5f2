// internal/workers/award/allocate-id/store.go
package allocateid

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	apperrors "github.com/cinematicsodium/awards/internal/common/errors"
	"github.com/cinematicsodium/awards/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// advanceScript raises each hash field to the given value but never lowers
// it, so a stale writer cannot move the counter backwards.
var advanceScript = redis.NewScript(`
for i = 1, #ARGV, 2 do
  local current = tonumber(redis.call('HGET', KEYS[1], ARGV[i]) or '0')
  local target = tonumber(ARGV[i + 1])
  if target > current then
    redis.call('HSET', KEYS[1], ARGV[i], ARGV[i + 1])
  end
end
return 1
`)

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`)

// RedisCounterStore keeps one hash per fiscal year with an IND and a GRP
// field holding the next serial to try.
type RedisCounterStore struct {
	client  *redis.Client
	prefix  string
	lockTTL time.Duration
}

func NewRedisCounterStore(client *redis.Client, config *Config) *RedisCounterStore {
	return &RedisCounterStore{
		client:  client,
		prefix:  config.KeyPrefix,
		lockTTL: config.LockTTL,
	}
}

func (s *RedisCounterStore) counterKey(fy string) string {
	return fmt.Sprintf("%s:serial:%s", s.prefix, fy)
}

func (s *RedisCounterStore) lockKey(fy string) string {
	return fmt.Sprintf("%s:lock:%s", s.prefix, fy)
}

func (s *RedisCounterStore) Load(ctx context.Context, fy string) (models.SerialCounter, error) {
	fields, err := s.client.HGetAll(ctx, s.counterKey(fy)).Result()
	if err != nil {
		return models.SerialCounter{}, apperrors.NewCounterStoreFailedError("load", err)
	}

	var counter models.SerialCounter
	for field, dst := range map[string]*int{
		string(models.CategoryIND): &counter.IND,
		string(models.CategoryGRP): &counter.GRP,
	} {
		raw, ok := fields[field]
		if !ok {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return models.SerialCounter{}, apperrors.NewCounterStoreFailedError("load",
				fmt.Errorf("field %s: %w", field, err))
		}
		*dst = n
	}
	return counter, nil
}

func (s *RedisCounterStore) Save(ctx context.Context, fy string, counter models.SerialCounter) error {
	err := advanceScript.Run(ctx, s.client, []string{s.counterKey(fy)},
		string(models.CategoryIND), counter.IND,
		string(models.CategoryGRP), counter.GRP,
	).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return apperrors.NewCounterStoreFailedError("save", err)
	}
	return nil
}

// Lock takes the per-fiscal-year batch lock. The returned function releases
// it; releasing a lock that expired and was taken by another batch is a
// no-op.
func (s *RedisCounterStore) Lock(ctx context.Context, fy string) (func(context.Context) error, error) {
	key := s.lockKey(fy)
	token := uuid.NewString()

	ok, err := s.client.SetNX(ctx, key, token, s.lockTTL).Result()
	if err != nil {
		return nil, apperrors.NewCounterStoreFailedError("lock", err)
	}
	if !ok {
		return nil, apperrors.NewBatchLockedError(key)
	}

	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, s.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return apperrors.NewCounterStoreFailedError("unlock", err)
		}
		return nil
	}, nil
}

// MemoryCounterStore is a process-local CounterStore for dry runs.
type MemoryCounterStore struct {
	mu       sync.Mutex
	counters map[string]models.SerialCounter
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{counters: make(map[string]models.SerialCounter)}
}

func (s *MemoryCounterStore) Load(_ context.Context, fy string) (models.SerialCounter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[fy], nil
}

func (s *MemoryCounterStore) Save(_ context.Context, fy string, counter models.SerialCounter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.counters[fy]
	current.IND = max(current.IND, counter.IND)
	current.GRP = max(current.GRP, counter.GRP)
	s.counters[fy] = current
	return nil
}
