package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/store"
)

type memStores struct {
	rows map[uuid.UUID]*store.Store
}

func (m *memStores) FindByID(_ context.Context, id uuid.UUID) (*store.Store, error) {
	st, ok := m.rows[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return st, nil
}

func (m *memStores) FindByShopDomain(_ context.Context, domain string) (*store.Store, error) {
	for _, st := range m.rows {
		if st.ShopDomain == domain {
			return st, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memStores) FindActiveByTenant(_ context.Context, tenantID uuid.UUID) (*store.Store, error) {
	for _, st := range m.rows {
		if st.TenantID == tenantID && st.Active {
			return st, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memStores) FindByTenant(context.Context, uuid.UUID) ([]store.Store, error) {
	return nil, nil
}

func (m *memStores) Save(_ context.Context, st *store.Store) error {
	m.rows[st.ID] = st
	return nil
}

func (m *memStores) SaveWithLock(_ context.Context, st *store.Store) error {
	m.rows[st.ID] = st
	return nil
}

func (m *memStores) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.rows, id)
	return nil
}

type memSessions struct {
	latest map[uuid.UUID]*store.SyncSession
}

func (m *memSessions) FindByID(context.Context, uuid.UUID) (*store.SyncSession, error) {
	return nil, shared.ErrNotFound
}

func (m *memSessions) FindByStore(context.Context, uuid.UUID, shared.Filter) ([]store.SyncSession, error) {
	return nil, nil
}

func (m *memSessions) FindLatestByStore(_ context.Context, storeID uuid.UUID) (*store.SyncSession, error) {
	s, ok := m.latest[storeID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return s, nil
}

func (m *memSessions) Save(_ context.Context, s *store.SyncSession) error {
	m.latest[s.StoreID] = s
	return nil
}

type fakeCache struct {
	invalidated []uuid.UUID
}

func (f *fakeCache) MarkInitialSyncComplete(context.Context, uuid.UUID) error { return nil }

func (f *fakeCache) InitialSyncComplete(context.Context, uuid.UUID) (bool, bool, error) {
	return false, false, nil
}

func (f *fakeCache) Invalidate(_ context.Context, id uuid.UUID) error {
	f.invalidated = append(f.invalidated, id)
	return nil
}

func (f *fakeCache) Close() error { return nil }

type fakePurgeQueue struct {
	enqueued []uuid.UUID
}

func (f *fakePurgeQueue) Enqueue(_ context.Context, storeID uuid.UUID) error {
	f.enqueued = append(f.enqueued, storeID)
	return nil
}

func newService() (*Service, *memStores, *memSessions, *fakeCache, *fakePurgeQueue) {
	stores := &memStores{rows: map[uuid.UUID]*store.Store{}}
	sessions := &memSessions{latest: map[uuid.UUID]*store.SyncSession{}}
	cache := &fakeCache{}
	purge := &fakePurgeQueue{}
	return NewService(stores, sessions, cache, purge, zap.NewNop()), stores, sessions, cache, purge
}

func TestConnectCreatesStore(t *testing.T) {
	svc, stores, _, _, _ := newService()
	tenantID := uuid.New()

	st, err := svc.Connect(context.Background(), tenantID, "  Shop-A.myshopify.com ", "shpat_1")
	require.NoError(t, err)
	assert.True(t, st.Active)
	assert.Equal(t, "shop-a.myshopify.com", st.ShopDomain)
	assert.Len(t, stores.rows, 1)
}

func TestConnectRejectsSecondShopForTenant(t *testing.T) {
	svc, _, _, _, _ := newService()
	tenantID := uuid.New()

	_, err := svc.Connect(context.Background(), tenantID, "shop-a.myshopify.com", "shpat_1")
	require.NoError(t, err)

	_, err = svc.Connect(context.Background(), tenantID, "shop-b.myshopify.com", "shpat_2")
	assert.ErrorIs(t, err, ErrStoreAlreadyConnected)
}

func TestConnectSameShopRotatesToken(t *testing.T) {
	svc, stores, _, _, _ := newService()
	tenantID := uuid.New()

	first, err := svc.Connect(context.Background(), tenantID, "shop-a.myshopify.com", "shpat_1")
	require.NoError(t, err)

	second, err := svc.Connect(context.Background(), tenantID, "shop-a.myshopify.com", "shpat_2")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "shpat_2", second.AccessToken)
	assert.Len(t, stores.rows, 1)
}

func TestConnectRejectsShopOwnedByOtherTenant(t *testing.T) {
	svc, _, _, _, _ := newService()

	_, err := svc.Connect(context.Background(), uuid.New(), "shop-a.myshopify.com", "shpat_1")
	require.NoError(t, err)

	_, err = svc.Connect(context.Background(), uuid.New(), "shop-a.myshopify.com", "shpat_2")
	assert.ErrorIs(t, err, ErrStoreClaimed)
}

func TestReconnectAfterDisconnectReactivates(t *testing.T) {
	svc, _, _, _, purge := newService()
	tenantID := uuid.New()

	st, err := svc.Connect(context.Background(), tenantID, "shop-a.myshopify.com", "shpat_1")
	require.NoError(t, err)
	require.NoError(t, svc.Disconnect(context.Background(), st.ID))
	assert.False(t, st.Active)
	assert.Equal(t, []uuid.UUID{st.ID}, purge.enqueued)

	back, err := svc.Connect(context.Background(), tenantID, "shop-a.myshopify.com", "shpat_3")
	require.NoError(t, err)
	assert.Equal(t, st.ID, back.ID)
	assert.True(t, back.Active)
	assert.Nil(t, back.UninstalledAt)
	assert.Equal(t, "shpat_3", back.AccessToken)
}

func TestDisconnectIsRepeatable(t *testing.T) {
	svc, _, _, cache, purge := newService()

	st, err := svc.Connect(context.Background(), uuid.New(), "shop-a.myshopify.com", "shpat_1")
	require.NoError(t, err)

	require.NoError(t, svc.Disconnect(context.Background(), st.ID))
	require.NoError(t, svc.Disconnect(context.Background(), st.ID))

	// a second disconnect re-queues the purge so a stuck offboarding resumes
	assert.Len(t, purge.enqueued, 2)
	assert.Len(t, cache.invalidated, 2)
}

func TestDisconnectUnknownStore(t *testing.T) {
	svc, _, _, _, _ := newService()
	err := svc.Disconnect(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGetSyncStatus(t *testing.T) {
	svc, _, sessions, _, _ := newService()
	tenantID := uuid.New()

	st, err := svc.Connect(context.Background(), tenantID, "shop-a.myshopify.com", "shpat_1")
	require.NoError(t, err)

	// no run yet
	status, err := svc.GetSyncStatus(context.Background(), st.ID)
	require.NoError(t, err)
	assert.False(t, status.InitialSyncCompleted)
	assert.Nil(t, status.LatestSession)

	session := store.NewSyncSession(tenantID, st.ID)
	require.NoError(t, sessions.Save(context.Background(), session))

	status, err = svc.GetSyncStatus(context.Background(), st.ID)
	require.NoError(t, err)
	require.NotNil(t, status.LatestSession)
	assert.Equal(t, session.ID, status.LatestSession.ID)
	assert.Equal(t, "shop-a.myshopify.com", status.ShopDomain)
}
