package session

import (
	"context"
	"meet-and-greet/internal/model"
	"meet-and-greet/internal/wizard"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func sampleState() wizard.State {
	st := wizard.NewState(model.DefaultPlanCatalog())
	st.Step = wizard.StepMeetingDetails
	st.Draft.FullName = "Jane Doe"
	st.Draft.Email = "jane@example.com"
	return st
}

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore(time.Hour)
		},
		"redis": func(t *testing.T) Store {
			_, client := setupRedis(t)
			return NewRedisStore(client, time.Hour, time.Minute)
		},
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			t.Run("round trip", func(t *testing.T) {
				store := newStore(t)
				ctx := context.Background()

				id, err := store.Create(ctx, sampleState())
				require.NoError(t, err)
				assert.NotEmpty(t, id)

				got, err := store.Load(ctx, id)
				require.NoError(t, err)
				assert.Equal(t, sampleState(), got)

				got.Step = wizard.StepMeetingPlan
				require.NoError(t, store.Save(ctx, id, got))

				again, err := store.Load(ctx, id)
				require.NoError(t, err)
				assert.Equal(t, wizard.StepMeetingPlan, again.Step)
			})

			t.Run("unknown id", func(t *testing.T) {
				store := newStore(t)
				ctx := context.Background()

				_, err := store.Load(ctx, "missing")
				assert.ErrorIs(t, err, ErrNotFound)
				assert.ErrorIs(t, store.Save(ctx, "missing", sampleState()), ErrNotFound)
			})

			t.Run("lock", func(t *testing.T) {
				store := newStore(t)
				ctx := context.Background()

				unlock, err := store.Lock(ctx, "s1")
				require.NoError(t, err)

				_, err = store.Lock(ctx, "s1")
				assert.ErrorIs(t, err, ErrLocked)

				other, err := store.Lock(ctx, "s2")
				require.NoError(t, err)
				other()

				unlock()
				unlock2, err := store.Lock(ctx, "s1")
				require.NoError(t, err)
				unlock2()
			})
		})
	}
}

func TestRedisStore_KeysAndExpiry(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewRedisStore(client, time.Hour, time.Minute)
	ctx := context.Background()

	id, err := store.Create(ctx, sampleState())
	require.NoError(t, err)
	assert.True(t, mr.Exists("wizard:session:"+id))
	assert.Equal(t, time.Hour, mr.TTL("wizard:session:"+id))

	_, err = store.Lock(ctx, id)
	require.NoError(t, err)
	assert.True(t, mr.Exists("wizard:session:"+id+":submit"))

	// A crashed submit frees the session once the lock expires.
	mr.FastForward(2 * time.Minute)
	unlock, err := store.Lock(ctx, id)
	require.NoError(t, err)
	unlock()
	assert.False(t, mr.Exists("wizard:session:"+id+":submit"))

	mr.FastForward(2 * time.Hour)
	_, err = store.Load(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_StaleUnlockKeepsNewLock(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewRedisStore(client, time.Hour, time.Minute)
	ctx := context.Background()

	stale, err := store.Lock(ctx, "s1")
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	_, err = store.Lock(ctx, "s1")
	require.NoError(t, err)

	stale()
	_, err = store.Lock(ctx, "s1")
	assert.ErrorIs(t, err, ErrLocked)
}

func TestMemoryStore_Expiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(time.Hour).(*memoryStore)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	id, err := store.Create(ctx, sampleState())
	require.NoError(t, err)

	now = now.Add(30 * time.Minute)
	_, err = store.Load(ctx, id)
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = store.Load(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_CreateSweepsAbandonedSessions(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(time.Minute).(*memoryStore)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	var held string
	for i := 0; i < 100; i++ {
		id, err := store.Create(ctx, sampleState())
		require.NoError(t, err)
		held = id
	}
	unlock, err := store.Lock(ctx, held)
	require.NoError(t, err)
	require.Len(t, store.entries, 100)

	now = now.Add(time.Hour)
	for i := 0; i < 10; i++ {
		_, err := store.Create(ctx, sampleState())
		require.NoError(t, err)
	}

	assert.Len(t, store.entries, 11)
	assert.Contains(t, store.entries, held)

	unlock()
	_, err = store.Create(ctx, sampleState())
	require.NoError(t, err)
	assert.Len(t, store.entries, 11)
	assert.NotContains(t, store.entries, held)
}
