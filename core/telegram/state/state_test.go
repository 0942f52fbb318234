package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

const (
	awaitingQuantity State = "awaiting_quantity"
	awaitingAddress  State = "awaiting_address"
)

func newContext(t *testing.T, userID int64, text string) tele.Context {
	t.Helper()
	b, err := tele.NewBot(tele.Settings{Offline: true, Synchronous: true})
	require.NoError(t, err)
	return b.NewContext(tele.Update{
		ID: 1,
		Message: &tele.Message{
			Text:   text,
			Sender: &tele.User{ID: userID},
			Chat:   &tele.Chat{ID: userID},
		},
	})
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	store := NewMemoryStore(time.Minute)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, 7, Session{State: awaitingAddress}))
	s, err := store.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, awaitingAddress, s.State)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, 7)
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Zero(t, store.Len())
}

func TestMachineRoutesOnlyActiveState(t *testing.T) {
	m := NewMachine(NewMemoryStore(0))
	var got Session
	m.Handle(awaitingQuantity, func(_ tele.Context, s Session) error {
		got = s
		return nil
	})

	c := newContext(t, 42, "3")
	assert.False(t, m.InProgress(c), "idle user must not be routed")

	require.NoError(t, m.Enter(c, awaitingQuantity, 99))
	next := newContext(t, 42, "3")
	require.True(t, m.InProgress(next))
	require.NoError(t, m.Dispatch(next))
	assert.Equal(t, int64(99), got.Subject)

	require.NoError(t, m.Reset(next))
	assert.False(t, m.InProgress(newContext(t, 42, "3")))
}

func TestMachineIgnoresStateWithoutHandler(t *testing.T) {
	m := NewMachine(NewMemoryStore(0))
	c := newContext(t, 5, "hello")
	require.NoError(t, m.Enter(c, awaitingAddress, 0))
	assert.False(t, m.InProgress(newContext(t, 5, "hello")))
}

type fakeRedis struct {
	data map[string]string
	ttl  map[string]time.Duration
	err  error
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, exp time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttl[key] = exp
	return redis.NewStatusResult("OK", f.err)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), f.err)
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	fake := &fakeRedis{data: map[string]string{}, ttl: map[string]time.Duration{}}
	store := NewRedisStore(fake, "", 30*time.Minute)

	_, err := store.Get(ctx, 11)
	require.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, store.Set(ctx, 11, Session{State: awaitingQuantity, Subject: 4}))
	assert.Equal(t, 30*time.Minute, fake.ttl["storebot:session:11"])

	s, err := store.Get(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, awaitingQuantity, s.State)
	assert.Equal(t, int64(4), s.Subject)
	assert.False(t, s.UpdatedAt.IsZero())

	require.NoError(t, store.Clear(ctx, 11))
	_, err = store.Get(ctx, 11)
	assert.ErrorIs(t, err, ErrNoSession)

	fake.err = errors.New("connection refused")
	_, err = store.Get(ctx, 11)
	assert.ErrorContains(t, err, "redis get")
}
