package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRateLimitRepo struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (r *fakeRateLimitRepo) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = make(map[string]int64)
	}
	r.counts[key]++
	return r.counts[key], nil
}

func TestRateLimitAllow(t *testing.T) {
	ctx := context.Background()

	t.Run("allows up to limit then blocks", func(t *testing.T) {
		repo := &fakeRateLimitRepo{}
		svc := NewRateLimitService(repo, testLogger())

		for i := 0; i < 3; i++ {
			ok, err := svc.Allow(ctx, "login", "10.0.0.1", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, ok)
		}

		ok, err := svc.Allow(ctx, "login", "10.0.0.1", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("scopes count independently", func(t *testing.T) {
		repo := &fakeRateLimitRepo{}
		svc := NewRateLimitService(repo, testLogger())

		ok, err := svc.Allow(ctx, "login", "10.0.0.1", 1, time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		// Лимит login исчерпан, register для того же клиента ещё свободен
		ok, err = svc.Allow(ctx, "login", "10.0.0.1", 1, time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = svc.Allow(ctx, "register", "10.0.0.1", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("degrades open when backend is down", func(t *testing.T) {
		repo := &fakeRateLimitRepo{err: errors.New("connection refused")}
		svc := NewRateLimitService(repo, testLogger())

		ok, err := svc.Allow(ctx, "login", "10.0.0.1", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
