// internal/workers/award/allocate-id/handler_test.go
package allocateid

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/cinematicsodium/awards/internal/common/errors"
	"github.com/cinematicsodium/awards/internal/common/logger"
	"github.com/cinematicsodium/awards/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeArchive struct {
	ids   map[string]bool
	err   error
	calls int
}

func newFakeArchive(ids ...string) *fakeArchive {
	a := &fakeArchive{ids: make(map[string]bool)}
	for _, id := range ids {
		a.ids[id] = true
	}
	return a
}

func (a *fakeArchive) Exists(_ context.Context, id string) (bool, error) {
	a.calls++
	if a.err != nil {
		return false, a.err
	}
	return a.ids[id], nil
}

func createTestHandler(t *testing.T, archive Archive, config *Config) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	return NewHandler(config, archive, logger.NewTestLogger(t))
}

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return redis.NewClient(&redis.Options{Addr: mr.Addr()}), mr
}

// ==========================
// Allocation Tests
// ==========================

func TestHandler_Allocate_FirstSerial(t *testing.T) {
	h := createTestHandler(t, newFakeArchive(), nil)

	alloc, err := h.Allocate(context.Background(), models.SerialCounter{}, models.CategoryIND, "25")
	require.NoError(t, err)
	assert.Equal(t, "25-IND-001", alloc.ID)
	assert.Equal(t, 1, alloc.Serial)
	assert.Equal(t, 1, alloc.Attempts)
}

func TestHandler_Allocate_CrashRecovery(t *testing.T) {
	// The previous run archived 25-IND-004 but crashed before committing.
	archive := newFakeArchive("25-IND-001", "25-IND-002", "25-IND-003", "25-IND-004")
	h := createTestHandler(t, archive, nil)

	alloc, err := h.Allocate(context.Background(), models.SerialCounter{IND: 4}, models.CategoryIND, "25")
	require.NoError(t, err)
	assert.Equal(t, "25-IND-005", alloc.ID)
	assert.Equal(t, 2, alloc.Attempts)
}

func TestHandler_Allocate_CategoriesAreIndependent(t *testing.T) {
	h := createTestHandler(t, newFakeArchive("25-IND-007"), nil)
	counter := models.SerialCounter{IND: 7, GRP: 3}

	ind, err := h.Allocate(context.Background(), counter, models.CategoryIND, "25")
	require.NoError(t, err)
	grp, err := h.Allocate(context.Background(), counter, models.CategoryGRP, "25")
	require.NoError(t, err)

	assert.Equal(t, "25-IND-008", ind.ID)
	assert.Equal(t, "25-GRP-003", grp.ID)
}

func TestHandler_Allocate_WithoutCommitReturnsSameID(t *testing.T) {
	h := createTestHandler(t, newFakeArchive(), nil)
	counter := models.SerialCounter{GRP: 12}

	first, err := h.Allocate(context.Background(), counter, models.CategoryGRP, "26")
	require.NoError(t, err)
	second, err := h.Allocate(context.Background(), counter, models.CategoryGRP, "26")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "26-GRP-012", first.ID)
}

func TestHandler_Allocate_Errors(t *testing.T) {
	t.Run("collisions exhausted", func(t *testing.T) {
		archive := newFakeArchive("25-IND-001", "25-IND-002", "25-IND-003")
		h := createTestHandler(t, archive, &Config{MaxCollisionAttempts: 3})

		_, err := h.Allocate(context.Background(), models.SerialCounter{}, models.CategoryIND, "25")
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeIDCollisionExhausted))
		assert.Equal(t, 3, archive.calls)

		stdErr, _ := apperrors.As(err)
		assert.Equal(t, "25-IND-003", stdErr.Metadata["lastTried"])
	})

	t.Run("archive lookup fails", func(t *testing.T) {
		archive := newFakeArchive()
		archive.err = errors.New("connection refused")
		h := createTestHandler(t, archive, nil)

		_, err := h.Allocate(context.Background(), models.SerialCounter{}, models.CategoryIND, "25")
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeArchiveFailed))
		assert.ErrorIs(t, err, archive.err)
	})

	t.Run("unknown category", func(t *testing.T) {
		h := createTestHandler(t, newFakeArchive(), nil)
		_, err := h.Allocate(context.Background(), models.SerialCounter{}, "XYZ", "25")
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConfiguration))
	})
}

func TestHandler_Execute(t *testing.T) {
	h := createTestHandler(t, newFakeArchive(), nil)
	out, err := h.Execute(context.Background(), &Input{
		Counter:    models.SerialCounter{IND: 42},
		Category:   models.CategoryIND,
		FiscalYear: "27",
	})
	require.NoError(t, err)
	assert.Equal(t, "27-IND-042", out.Allocation.ID)
}

func TestCommit(t *testing.T) {
	counter := models.SerialCounter{IND: 4, GRP: 9}

	next := Commit(counter, Allocation{Category: models.CategoryIND, Serial: 5})
	assert.Equal(t, models.SerialCounter{IND: 6, GRP: 9}, next)
	assert.Equal(t, models.SerialCounter{IND: 4, GRP: 9}, counter, "commit returns a new value")

	stale := Commit(next, Allocation{Category: models.CategoryIND, Serial: 2})
	assert.Equal(t, 6, stale.IND, "commit never moves the counter backwards")
}

// ==========================
// Counter Store Tests
// ==========================

func TestRedisCounterStore_LoadSave(t *testing.T) {
	client, mr := setupRedis(t)
	store := NewRedisCounterStore(client, LoadConfig())
	ctx := context.Background()

	counter, err := store.Load(ctx, "25")
	require.NoError(t, err)
	assert.Equal(t, models.SerialCounter{}, counter)

	require.NoError(t, store.Save(ctx, "25", models.SerialCounter{IND: 5, GRP: 2}))
	assert.Equal(t, "5", mr.HGet("awards:serial:25", "IND"))

	counter, err = store.Load(ctx, "25")
	require.NoError(t, err)
	assert.Equal(t, models.SerialCounter{IND: 5, GRP: 2}, counter)

	require.NoError(t, store.Save(ctx, "25", models.SerialCounter{IND: 3, GRP: 4}))
	counter, err = store.Load(ctx, "25")
	require.NoError(t, err)
	assert.Equal(t, models.SerialCounter{IND: 5, GRP: 4}, counter)

	other, err := store.Load(ctx, "26")
	require.NoError(t, err)
	assert.Equal(t, models.SerialCounter{}, other)
}

func TestRedisCounterStore_LoadErrors(t *testing.T) {
	t.Run("redis error", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		store := NewRedisCounterStore(client, LoadConfig())

		mock.ExpectHGetAll("awards:serial:25").SetErr(errors.New("connection reset"))

		_, err := store.Load(context.Background(), "25")
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeCounterStoreFailed))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("corrupt field", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		store := NewRedisCounterStore(client, LoadConfig())

		mock.ExpectHGetAll("awards:serial:25").SetVal(map[string]string{"IND": "four"})

		_, err := store.Load(context.Background(), "25")
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeCounterStoreFailed))
		assert.Contains(t, err.Error(), "field IND")
	})
}

func TestRedisCounterStore_Lock(t *testing.T) {
	client, mr := setupRedis(t)
	store := NewRedisCounterStore(client, &Config{KeyPrefix: "awards", LockTTL: time.Minute})
	ctx := context.Background()

	unlock, err := store.Lock(ctx, "25")
	require.NoError(t, err)
	assert.True(t, mr.Exists("awards:lock:25"))

	_, err = store.Lock(ctx, "25")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeBatchLocked))

	_, err = store.Lock(ctx, "26")
	require.NoError(t, err, "locks are per fiscal year")

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("awards:lock:25"))

	unlock, err = store.Lock(ctx, "25")
	require.NoError(t, err)
	require.NoError(t, mr.Set("awards:lock:25", "someone-else"))
	require.NoError(t, unlock(ctx))
	assert.True(t, mr.Exists("awards:lock:25"), "a lock taken over by another batch is left alone")
}

func TestMemoryCounterStore(t *testing.T) {
	store := NewMemoryCounterStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "25", models.SerialCounter{IND: 3}))
	require.NoError(t, store.Save(ctx, "25", models.SerialCounter{IND: 2, GRP: 5}))

	counter, err := store.Load(ctx, "25")
	require.NoError(t, err)
	assert.Equal(t, models.SerialCounter{IND: 3, GRP: 5}, counter)
}
