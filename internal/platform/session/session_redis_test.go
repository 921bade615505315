package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insurance_backend/internal/feature/auth/domain/entity"
	"insurance_backend/internal/feature/auth/usecase"
)

const week = 7 * 24 * time.Hour

// setupTestRedis creates a miniredis instance for testing.
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return client, mr
}

func newTestSession(id, userID string, age, expiresIn time.Duration) *entity.Session {
	now := time.Now()
	return &entity.Session{
		ID:        id,
		UserID:    userID,
		UserAgent: "test-agent",
		IPAddress: "127.0.0.1",
		CreatedAt: now.Add(-age),
		ExpiresAt: now.Add(expiresIn),
	}
}

func seed(t *testing.T, repo *SessionRedis, sessions ...*entity.Session) {
	t.Helper()
	for _, s := range sessions {
		require.NoError(t, repo.Create(context.Background(), s))
	}
}

func TestSessionRedis_Create(t *testing.T) {
	t.Parallel()

	client, mr := setupTestRedis(t)
	repo := NewSessionRedis(client, "session")
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestSession("s-1", "user-1", 0, week)))

	assert.True(t, mr.Exists("session:s-1"))
	assert.InDelta(t, week.Seconds(), mr.TTL("session:s-1").Seconds(), 5)

	members, err := client.ZRange(ctx, "session:user:user-1", 0, -1).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"s-1"}, members)

	err = repo.Create(ctx, newTestSession("s-2", "user-1", 0, -time.Hour))
	assert.Error(t, err, "expired sessions are rejected")
	assert.False(t, mr.Exists("session:s-2"))
}

func TestSessionRedis_FindByID(t *testing.T) {
	t.Parallel()

	client, _ := setupTestRedis(t)
	repo := NewSessionRedis(client, "session")
	seed(t, repo, newTestSession("find-me", "user-1", 0, week))

	found, err := repo.FindByID(context.Background(), "find-me")
	require.NoError(t, err)
	assert.Equal(t, "user-1", found.UserID)
	assert.Equal(t, "test-agent", found.UserAgent)

	_, err = repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, usecase.ErrSessionNotFound)
}

func TestSessionRedis_FindByUserID(t *testing.T) {
	t.Parallel()

	client, mr := setupTestRedis(t)
	repo := NewSessionRedis(client, "session")
	seed(t, repo,
		newTestSession("newer", "user-1", time.Minute, week),
		newTestSession("older", "user-1", time.Hour, week),
		newTestSession("other", "user-2", 0, week),
	)

	sessions, err := repo.FindByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "older", sessions[0].ID, "oldest first")

	// a payload that expired on its own is pruned from the index
	mr.Del("session:newer")
	sessions, err = repo.FindByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
	members, _ := client.ZRange(context.Background(), "session:user:user-1", 0, -1).Result()
	assert.Equal(t, []string{"older"}, members)

	sessions, err = repo.FindByUserID(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestSessionRedis_Revoke(t *testing.T) {
	t.Parallel()

	client, mr := setupTestRedis(t)
	repo := NewSessionRedis(client, "session")
	seed(t, repo, newTestSession("revoke-me", "user-1", 0, week))

	require.NoError(t, repo.Revoke(context.Background(), "revoke-me"))

	found, err := repo.FindByID(context.Background(), "revoke-me")
	require.NoError(t, err)
	assert.NotNil(t, found.RevokedAt)
	assert.False(t, found.IsValid())
	assert.Equal(t, revokedRetention, mr.TTL("session:revoke-me"))

	count, err := repo.CountByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Zero(t, count)

	assert.ErrorIs(t, repo.Revoke(context.Background(), "missing"), usecase.ErrSessionNotFound)
	assert.ErrorIs(t, repo.Revoke(context.Background(), "revoke-me"), usecase.ErrSessionNotFound, "second revoke")
	assert.Equal(t, revokedRetention, mr.TTL("session:revoke-me"))
}

func TestSessionRedis_RevokeConcurrent(t *testing.T) {
	t.Parallel()

	client, _ := setupTestRedis(t)
	repo := NewSessionRedis(client, "session")
	seed(t, repo, newTestSession("contended", "user-1", 0, week))

	const callers = 8
	var wg sync.WaitGroup
	var won atomic.Int32
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Revoke(context.Background(), "contended")
			if err == nil {
				won.Add(1)
				return
			}
			assert.ErrorIs(t, err, usecase.ErrSessionNotFound)
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, won.Load())
}

func TestSessionRedis_RevokeAllByUserID(t *testing.T) {
	t.Parallel()

	client, mr := setupTestRedis(t)
	repo := NewSessionRedis(client, "session")
	seed(t, repo,
		newTestSession("s-1", "user-1", 0, week),
		newTestSession("s-2", "user-1", 0, week),
		newTestSession("s-3", "user-2", 0, week),
	)

	require.NoError(t, repo.RevokeAllByUserID(context.Background(), "user-1"))

	for _, id := range []string{"s-1", "s-2"} {
		found, err := repo.FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.NotNil(t, found.RevokedAt, id)
	}
	assert.False(t, mr.Exists("session:user:user-1"))

	other, err := repo.FindByID(context.Background(), "s-3")
	require.NoError(t, err)
	assert.Nil(t, other.RevokedAt)
}

func TestSessionRedis_DeleteOldestByUserID(t *testing.T) {
	t.Parallel()

	client, _ := setupTestRedis(t)
	repo := NewSessionRedis(client, "session")
	seed(t, repo,
		newTestSession("oldest", "user-1", 2*time.Hour, week),
		newTestSession("newest", "user-1", time.Hour, week),
	)

	require.NoError(t, repo.DeleteOldestByUserID(context.Background(), "user-1"))

	_, err := repo.FindByID(context.Background(), "oldest")
	assert.ErrorIs(t, err, usecase.ErrSessionNotFound)
	_, err = repo.FindByID(context.Background(), "newest")
	assert.NoError(t, err)

	assert.NoError(t, repo.DeleteOldestByUserID(context.Background(), "nobody"))
}

func TestSessionRedis_DeleteExpired(t *testing.T) {
	t.Parallel()

	client, mr := setupTestRedis(t)
	repo := NewSessionRedis(client, "session")
	seed(t, repo,
		newTestSession("short", "user-1", 0, time.Minute),
		newTestSession("long", "user-1", 0, week),
		newTestSession("other", "user-2", 0, week),
	)

	mr.FastForward(2 * time.Minute)

	removed, err := repo.DeleteExpired(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	members, _ := client.ZRange(context.Background(), "session:user:user-1", 0, -1).Result()
	assert.Equal(t, []string{"long"}, members)
}

func TestSessionRedis_KeyGeneration(t *testing.T) {
	t.Parallel()

	client, _ := setupTestRedis(t)
	repo := NewSessionRedis(client, "test-prefix")

	assert.Equal(t, "test-prefix:session-id", repo.sessionKey("session-id"))
	assert.Equal(t, "test-prefix:user:7f9c", repo.userSessionsKey("7f9c"))
}
