package consultation

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmacy-consult-sim/internal/simulation"
)

func newRedisRepo(t *testing.T, ttl time.Duration) (*RedisRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisRepository(client, ttl), mr
}

func TestRedisRepository_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRedisRepo(t, time.Hour)

	c := newTestConsultation()
	require.NoError(t, repo.Save(ctx, c))
	assert.Equal(t, 1, c.Version)
	assert.True(t, mr.Exists("consultation:"+c.ID.String()))
	assert.Equal(t, time.Hour, mr.TTL("consultation:"+c.ID.String()))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.TraineeID, got.TraineeID)
	assert.Equal(t, 1, got.Version)
	assert.Equal(t, simulation.PhaseStart, got.Session.Phase)
}

func TestRedisRepository_GetMissing(t *testing.T) {
	repo, _ := newRedisRepo(t, 0)
	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisRepository_StaleWriteConflicts(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRedisRepo(t, 0)

	c := newTestConsultation()
	require.NoError(t, repo.Save(ctx, c))

	first, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)

	first.Session = &simulation.Session{Phase: simulation.PhasePresentation, Score: simulation.StartingScore}
	require.NoError(t, repo.Save(ctx, first))
	assert.Equal(t, 2, first.Version)

	err = repo.Save(ctx, second)
	assert.ErrorIs(t, err, ErrConflict)

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, simulation.PhasePresentation, got.Session.Phase)
}

func TestRedisRepository_DuplicateInsertConflicts(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRedisRepo(t, 0)

	c := newTestConsultation()
	require.NoError(t, repo.Save(ctx, c))

	dup := *c
	dup.Version = 0
	assert.ErrorIs(t, repo.Save(ctx, &dup), ErrConflict)
}

func TestRedisRepository_UpdateAfterExpiryConflicts(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRedisRepo(t, time.Minute)

	c := newTestConsultation()
	require.NoError(t, repo.Save(ctx, c))
	mr.FastForward(2 * time.Minute)

	assert.ErrorIs(t, repo.Save(ctx, c), ErrConflict)
}
