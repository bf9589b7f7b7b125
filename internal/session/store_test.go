package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "magnet-wizard/internal/common/errors"
	"magnet-wizard/internal/common/logger"
	"magnet-wizard/internal/wizard"
)

const testPrefix = "wizard:session:"

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, NewRedisStore(client, testPrefix, 30*time.Minute, logger.NewTestLogger(t))
}

func TestRedisStore_CreateAndGet(t *testing.T) {
	mr, store := setupMiniredis(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	sess, err := store.Create(ctx, now)
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)

	assert.True(t, mr.Exists(testPrefix+sess.ID))
	assert.Equal(t, 30*time.Minute, mr.TTL(testPrefix+sess.ID))

	loaded, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Step)
	assert.True(t, loaded.CreatedAt.Equal(now))
}

func TestRedisStore_SaveRoundTripsWizardState(t *testing.T) {
	_, store := setupMiniredis(t)
	ctx := context.Background()
	now := time.Now().UTC()

	sess, err := store.Create(ctx, now)
	require.NoError(t, err)

	trigger := "Budget cuts"
	_, err = sess.UpdateAnswers(wizard.AnswerPatch{Trigger: &trigger}, now)
	require.NoError(t, err)
	require.NoError(t, sess.Next(now))
	require.NoError(t, store.Save(ctx, sess))

	loaded, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Step)
	assert.Equal(t, "Budget cuts", loaded.Answers.Trigger)
	assert.True(t, loaded.Touched[wizard.FieldTrigger])
}

func TestRedisStore_Expired(t *testing.T) {
	mr, store := setupMiniredis(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, time.Now())
	require.NoError(t, err)

	mr.FastForward(31 * time.Minute)

	_, err = store.Get(ctx, sess.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSessionNotFound))
}

func TestRedisStore_Delete(t *testing.T) {
	mr, store := setupMiniredis(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, time.Now())
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, sess.ID))

	assert.False(t, mr.Exists(testPrefix+sess.ID))
}

func TestRedisStore_CorruptValue(t *testing.T) {
	mr, store := setupMiniredis(t)
	require.NoError(t, mr.Set(testPrefix+"broken", "{not json"))

	_, err := store.Get(context.Background(), "broken")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSessionNotFound))
}

func TestRedisStore_GetMiss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, testPrefix, time.Minute, logger.NewNoOpLogger())

	mock.ExpectGet(testPrefix + "missing").RedisNil()

	_, err := store.Get(context.Background(), "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSessionNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_BackendFailure(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, testPrefix, time.Minute, logger.NewNoOpLogger())

	mock.ExpectGet(testPrefix + "s1").SetErr(errors.New("connection refused"))

	_, err := store.Get(context.Background(), "s1")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSessionStoreFailed))

	stdErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.True(t, stdErr.Retryable)
	assert.NoError(t, mock.ExpectationsWereMet())
}
