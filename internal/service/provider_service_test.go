package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Freeeeeet/calm_scheduler/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeProviderStore struct {
	byTelegram map[int64]*model.Provider
	nextID     int64
	creates    int
	getErr     error
	createErr  error
}

func newFakeProviderStore() *fakeProviderStore {
	return &fakeProviderStore{byTelegram: make(map[int64]*model.Provider)}
}

func (f *fakeProviderStore) Create(_ context.Context, provider *model.Provider) error {
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	provider.ID = f.nextID
	f.byTelegram[*provider.TelegramID] = provider
	return nil
}

func (f *fakeProviderStore) GetByTelegramID(_ context.Context, telegramID int64) (*model.Provider, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.byTelegram[telegramID], nil
}

func TestRegister_NewProvider(t *testing.T) {
	store := newFakeProviderStore()
	svc := NewProviderService(store, zaptest.NewLogger(t))

	provider, err := svc.Register(context.Background(), 42, "  Dr. Smith ", model.GroupExpert)
	require.NoError(t, err)

	assert.Equal(t, int64(1), provider.ID)
	assert.Equal(t, "Dr. Smith", provider.DisplayName)
	assert.Equal(t, model.GroupExpert, provider.Group)
	require.NotNil(t, provider.TelegramID)
	assert.Equal(t, int64(42), *provider.TelegramID)
	assert.Equal(t, 1, store.creates)
}

func TestRegister_AlreadyRegistered(t *testing.T) {
	store := newFakeProviderStore()
	svc := NewProviderService(store, zaptest.NewLogger(t))
	ctx := context.Background()

	first, err := svc.Register(ctx, 42, "Dr. Smith", model.GroupExpert)
	require.NoError(t, err)

	// повторная регистрация не меняет имя и группу
	again, err := svc.Register(ctx, 42, "Someone Else", model.GroupPeer)
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, "Dr. Smith", again.DisplayName)
	assert.Equal(t, 1, store.creates)
}

func TestRegister_EmptyName(t *testing.T) {
	store := newFakeProviderStore()
	svc := NewProviderService(store, zaptest.NewLogger(t))

	_, err := svc.Register(context.Background(), 42, "   ", model.GroupPeer)
	assert.ErrorIs(t, err, ErrEmptyDisplayName)
	assert.Zero(t, store.creates)
}

func TestRegister_StoreErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection refused")

	store := newFakeProviderStore()
	store.getErr = boom
	_, err := NewProviderService(store, zaptest.NewLogger(t)).Register(ctx, 42, "Dr. Smith", model.GroupExpert)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "get provider")

	store = newFakeProviderStore()
	store.createErr = boom
	_, err = NewProviderService(store, zaptest.NewLogger(t)).Register(ctx, 42, "Dr. Smith", model.GroupExpert)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "create provider")
}

func TestGetByTelegramID(t *testing.T) {
	store := newFakeProviderStore()
	svc := NewProviderService(store, zaptest.NewLogger(t))
	ctx := context.Background()

	missing, err := svc.GetByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = svc.Register(ctx, 42, "Dr. Smith", model.GroupExpert)
	require.NoError(t, err)

	found, err := svc.GetByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Smith", found.DisplayName)
}
