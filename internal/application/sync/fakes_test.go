package sync

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/ingest"
	"github.com/storesync/backend/internal/domain/partner"
	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/store"
	"github.com/storesync/backend/internal/domain/trade"
	"github.com/storesync/backend/internal/infrastructure/shopify"
)

// In-memory repositories backing the sync service tests. Insert fails on a
// duplicate key like the real repositories do.

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
	rows  map[uuid.UUID]*store.SyncSession
	saves int
}

func (m *memSessions) FindByID(_ context.Context, id uuid.UUID) (*store.SyncSession, error) {
	s, ok := m.rows[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return s, nil
}

func (m *memSessions) FindByStore(context.Context, uuid.UUID, shared.Filter) ([]store.SyncSession, error) {
	return nil, nil
}

func (m *memSessions) FindLatestByStore(_ context.Context, storeID uuid.UUID) (*store.SyncSession, error) {
	var latest *store.SyncSession
	for _, s := range m.rows {
		if s.StoreID != storeID {
			continue
		}
		if latest == nil || s.StartedAt.After(latest.StartedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, shared.ErrNotFound
	}
	return latest, nil
}

func (m *memSessions) Save(_ context.Context, s *store.SyncSession) error {
	m.rows[s.ID] = s
	m.saves++
	return nil
}

type memProducts struct{ rows map[string]catalog.Product }

func (m *memProducts) FindByPlatformIDs(_ context.Context, _ uuid.UUID, ids []string) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, id := range ids {
		if p, ok := m.rows[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProducts) FindByPlatformID(_ context.Context, _ uuid.UUID, id string) (*catalog.Product, error) {
	p, ok := m.rows[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &p, nil
}

func (m *memProducts) Save(_ context.Context, p *catalog.Product) error {
	m.rows[p.PlatformID] = *p
	return nil
}

func (m *memProducts) Insert(_ context.Context, p *catalog.Product) error {
	if _, ok := m.rows[p.PlatformID]; ok {
		return shared.ErrAlreadyExists
	}
	m.rows[p.PlatformID] = *p
	return nil
}

func (m *memProducts) DeleteByPlatformID(_ context.Context, _ uuid.UUID, id string) error {
	delete(m.rows, id)
	return nil
}

func (m *memProducts) DeletePageForStore(context.Context, uuid.UUID, int) (int64, error) {
	return 0, nil
}

func (m *memProducts) CountForStore(context.Context, uuid.UUID) (int64, error) {
	return int64(len(m.rows)), nil
}

type memVariants struct{ rows map[string]catalog.Variant }

func (m *memVariants) FindByPlatformIDs(_ context.Context, _ uuid.UUID, ids []string) ([]catalog.Variant, error) {
	var out []catalog.Variant
	for _, id := range ids {
		if v, ok := m.rows[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memVariants) FindByInventoryItemIDs(_ context.Context, _ uuid.UUID, itemIDs []string) ([]catalog.Variant, error) {
	var out []catalog.Variant
	for _, v := range m.rows {
		for _, item := range itemIDs {
			if v.InventoryItemID == item {
				out = append(out, v)
				break
			}
		}
	}
	return out, nil
}

func (m *memVariants) FindByProductID(_ context.Context, productID uuid.UUID) ([]catalog.Variant, error) {
	var out []catalog.Variant
	for _, v := range m.rows {
		if v.ProductID == productID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memVariants) Save(_ context.Context, v *catalog.Variant) error {
	m.rows[v.PlatformID] = *v
	return nil
}

func (m *memVariants) Insert(_ context.Context, v *catalog.Variant) error {
	if _, ok := m.rows[v.PlatformID]; ok {
		return shared.ErrAlreadyExists
	}
	m.rows[v.PlatformID] = *v
	return nil
}

func (m *memVariants) DeleteByProductID(_ context.Context, productID uuid.UUID) error {
	for k, v := range m.rows {
		if v.ProductID == productID {
			delete(m.rows, k)
		}
	}
	return nil
}

func (m *memVariants) DeletePageForStore(context.Context, uuid.UUID, int) (int64, error) {
	return 0, nil
}

func (m *memVariants) CountForStore(context.Context, uuid.UUID) (int64, error) {
	return int64(len(m.rows)), nil
}

type memLevels struct{ rows map[string]catalog.InventoryLevel }

func levelKey(itemID, locationID string) string { return itemID + "|" + locationID }

func (m *memLevels) FindByItemIDs(_ context.Context, _ uuid.UUID, itemIDs []string) ([]catalog.InventoryLevel, error) {
	var out []catalog.InventoryLevel
	for _, l := range m.rows {
		for _, item := range itemIDs {
			if l.InventoryItemID == item {
				out = append(out, l)
				break
			}
		}
	}
	return out, nil
}

func (m *memLevels) SumByItemIDs(_ context.Context, _ uuid.UUID, itemIDs []string) (map[string]int, error) {
	sums := make(map[string]int)
	for _, l := range m.rows {
		for _, item := range itemIDs {
			if l.InventoryItemID == item {
				sums[item] += l.Available
				break
			}
		}
	}
	return sums, nil
}

func (m *memLevels) Save(_ context.Context, l *catalog.InventoryLevel) error {
	m.rows[levelKey(l.InventoryItemID, l.LocationID)] = *l
	return nil
}

func (m *memLevels) Insert(_ context.Context, l *catalog.InventoryLevel) error {
	key := levelKey(l.InventoryItemID, l.LocationID)
	if _, ok := m.rows[key]; ok {
		return shared.ErrAlreadyExists
	}
	m.rows[key] = *l
	return nil
}

func (m *memLevels) DeletePageForStore(context.Context, uuid.UUID, int) (int64, error) {
	return 0, nil
}

func (m *memLevels) CountForStore(context.Context, uuid.UUID) (int64, error) {
	return int64(len(m.rows)), nil
}

type memCustomers struct{ rows map[string]partner.Customer }

func (m *memCustomers) FindByPlatformIDs(_ context.Context, _ uuid.UUID, ids []string) ([]partner.Customer, error) {
	var out []partner.Customer
	for _, id := range ids {
		if c, ok := m.rows[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCustomers) FindByPlatformID(_ context.Context, _ uuid.UUID, id string) (*partner.Customer, error) {
	c, ok := m.rows[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &c, nil
}

func (m *memCustomers) Save(_ context.Context, c *partner.Customer) error {
	m.rows[c.PlatformID] = *c
	return nil
}

func (m *memCustomers) Insert(_ context.Context, c *partner.Customer) error {
	if _, ok := m.rows[c.PlatformID]; ok {
		return shared.ErrAlreadyExists
	}
	m.rows[c.PlatformID] = *c
	return nil
}

func (m *memCustomers) DeleteByPlatformID(_ context.Context, _ uuid.UUID, id string) error {
	delete(m.rows, id)
	return nil
}

func (m *memCustomers) DeletePageForStore(context.Context, uuid.UUID, int) (int64, error) {
	return 0, nil
}

func (m *memCustomers) CountForStore(context.Context, uuid.UUID) (int64, error) {
	return int64(len(m.rows)), nil
}

type memOrders struct{ rows map[string]trade.Order }

func (m *memOrders) FindByPlatformIDs(_ context.Context, _ uuid.UUID, ids []string) ([]trade.Order, error) {
	var out []trade.Order
	for _, id := range ids {
		if o, ok := m.rows[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memOrders) FindByPlatformID(_ context.Context, _ uuid.UUID, id string) (*trade.Order, error) {
	o, ok := m.rows[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &o, nil
}

func (m *memOrders) Save(_ context.Context, o *trade.Order) error {
	m.rows[o.PlatformID] = *o
	return nil
}

func (m *memOrders) Insert(_ context.Context, o *trade.Order) error {
	if _, ok := m.rows[o.PlatformID]; ok {
		return shared.ErrAlreadyExists
	}
	m.rows[o.PlatformID] = *o
	return nil
}

func (m *memOrders) DeletePageForStore(context.Context, uuid.UUID, int) (int64, error) {
	return 0, nil
}

func (m *memOrders) CountForStore(context.Context, uuid.UUID) (int64, error) {
	return int64(len(m.rows)), nil
}

type memLineItems struct{ rows map[string]trade.LineItem }

func (m *memLineItems) FindByPlatformIDs(_ context.Context, _ uuid.UUID, ids []string) ([]trade.LineItem, error) {
	var out []trade.LineItem
	for _, id := range ids {
		if li, ok := m.rows[id]; ok {
			out = append(out, li)
		}
	}
	return out, nil
}

func (m *memLineItems) FindByOrderID(_ context.Context, orderID uuid.UUID) ([]trade.LineItem, error) {
	var out []trade.LineItem
	for _, li := range m.rows {
		if li.OrderID == orderID {
			out = append(out, li)
		}
	}
	return out, nil
}

func (m *memLineItems) FindUnlinkedByPlatformProductIDs(_ context.Context, _ uuid.UUID, productIDs []string) ([]trade.LineItem, error) {
	var out []trade.LineItem
	for _, li := range m.rows {
		if li.ProductID != nil {
			continue
		}
		for _, pid := range productIDs {
			if li.PlatformProductID == pid {
				out = append(out, li)
				break
			}
		}
	}
	return out, nil
}

func (m *memLineItems) Save(_ context.Context, li *trade.LineItem) error {
	m.rows[li.PlatformID] = *li
	return nil
}

func (m *memLineItems) Insert(_ context.Context, li *trade.LineItem) error {
	if _, ok := m.rows[li.PlatformID]; ok {
		return shared.ErrAlreadyExists
	}
	m.rows[li.PlatformID] = *li
	return nil
}

func (m *memLineItems) DeletePageForStore(context.Context, uuid.UUID, int) (int64, error) {
	return 0, nil
}

func (m *memLineItems) CountForStore(context.Context, uuid.UUID) (int64, error) {
	return int64(len(m.rows)), nil
}

type memTransactions struct{ rows map[string]trade.Transaction }

func (m *memTransactions) FindByPlatformIDs(_ context.Context, _ uuid.UUID, ids []string) ([]trade.Transaction, error) {
	var out []trade.Transaction
	for _, id := range ids {
		if t, ok := m.rows[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTransactions) Save(_ context.Context, t *trade.Transaction) error {
	m.rows[t.PlatformID] = *t
	return nil
}

func (m *memTransactions) Insert(_ context.Context, t *trade.Transaction) error {
	if _, ok := m.rows[t.PlatformID]; ok {
		return shared.ErrAlreadyExists
	}
	m.rows[t.PlatformID] = *t
	return nil
}

func (m *memTransactions) DeletePageForStore(context.Context, uuid.UUID, int) (int64, error) {
	return 0, nil
}

func (m *memTransactions) CountForStore(context.Context, uuid.UUID) (int64, error) {
	return int64(len(m.rows)), nil
}

type memRefunds struct{ rows map[string]trade.Refund }

func (m *memRefunds) FindByPlatformIDs(_ context.Context, _ uuid.UUID, ids []string) ([]trade.Refund, error) {
	var out []trade.Refund
	for _, id := range ids {
		if r, ok := m.rows[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRefunds) Save(_ context.Context, r *trade.Refund) error {
	m.rows[r.PlatformID] = *r
	return nil
}

func (m *memRefunds) Insert(_ context.Context, r *trade.Refund) error {
	if _, ok := m.rows[r.PlatformID]; ok {
		return shared.ErrAlreadyExists
	}
	m.rows[r.PlatformID] = *r
	return nil
}

func (m *memRefunds) DeletePageForStore(context.Context, uuid.UUID, int) (int64, error) {
	return 0, nil
}

func (m *memRefunds) CountForStore(context.Context, uuid.UUID) (int64, error) {
	return int64(len(m.rows)), nil
}

type memFulfillments struct{ rows map[string]trade.Fulfillment }

func (m *memFulfillments) FindByPlatformIDs(_ context.Context, _ uuid.UUID, ids []string) ([]trade.Fulfillment, error) {
	var out []trade.Fulfillment
	for _, id := range ids {
		if f, ok := m.rows[id]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *memFulfillments) Save(_ context.Context, f *trade.Fulfillment) error {
	m.rows[f.PlatformID] = *f
	return nil
}

func (m *memFulfillments) Insert(_ context.Context, f *trade.Fulfillment) error {
	if _, ok := m.rows[f.PlatformID]; ok {
		return shared.ErrAlreadyExists
	}
	m.rows[f.PlatformID] = *f
	return nil
}

func (m *memFulfillments) DeletePageForStore(context.Context, uuid.UUID, int) (int64, error) {
	return 0, nil
}

func (m *memFulfillments) CountForStore(context.Context, uuid.UUID) (int64, error) {
	return int64(len(m.rows)), nil
}

type fakeStatusCache struct {
	flags map[uuid.UUID]bool
}

func (f *fakeStatusCache) MarkInitialSyncComplete(_ context.Context, id uuid.UUID) error {
	f.flags[id] = true
	return nil
}

func (f *fakeStatusCache) InitialSyncComplete(_ context.Context, id uuid.UUID) (bool, bool, error) {
	v, ok := f.flags[id]
	return ok, v, nil
}

func (f *fakeStatusCache) Invalidate(_ context.Context, id uuid.UUID) error {
	delete(f.flags, id)
	return nil
}

func (f *fakeStatusCache) Close() error { return nil }

// fakeFetcher replays canned pages per resource, optionally invoking a hook
// between pages (used to flip the store inactive mid-run)
type fakeFetcher struct {
	pages       map[string][]shopify.Page
	betweenPage func(resource string, index int)
}

func (f *fakeFetcher) FetchAll(_ context.Context, _ shopify.Credentials, res shopify.Resource, _, _ string, handle func(shopify.Page) error) error {
	for i, page := range f.pages[res.Name] {
		if f.betweenPage != nil {
			f.betweenPage(res.Name, i)
		}
		if err := handle(page); err != nil {
			return err
		}
	}
	return nil
}

type captureNotifier struct {
	sets []*ingest.MutatedSet
}

func (c *captureNotifier) NotifyMutation(_ context.Context, _, _ uuid.UUID, mutated *ingest.MutatedSet) {
	c.sets = append(c.sets, mutated)
}

// harness bundles the full fake world for a sync test
type harness struct {
	store    *store.Store
	stores   *memStores
	sessions *memSessions
	products *memProducts
	variants *memVariants
	levels   *memLevels
	custs    *memCustomers
	orders   *memOrders
	lines    *memLineItems
	txns     *memTransactions
	refunds  *memRefunds
	fulfills *memFulfillments
	cache    *fakeStatusCache
	notifier *captureNotifier
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	st, err := store.NewStore(uuid.New(), "shop-a.myshopify.com", "shpat_test")
	require.NoError(t, err)
	return &harness{
		store:    st,
		stores:   &memStores{rows: map[uuid.UUID]*store.Store{st.ID: st}},
		sessions: &memSessions{rows: map[uuid.UUID]*store.SyncSession{}},
		products: &memProducts{rows: map[string]catalog.Product{}},
		variants: &memVariants{rows: map[string]catalog.Variant{}},
		levels:   &memLevels{rows: map[string]catalog.InventoryLevel{}},
		custs:    &memCustomers{rows: map[string]partner.Customer{}},
		orders:   &memOrders{rows: map[string]trade.Order{}},
		lines:    &memLineItems{rows: map[string]trade.LineItem{}},
		txns:     &memTransactions{rows: map[string]trade.Transaction{}},
		refunds:  &memRefunds{rows: map[string]trade.Refund{}},
		fulfills: &memFulfillments{rows: map[string]trade.Fulfillment{}},
		cache:    &fakeStatusCache{flags: map[uuid.UUID]bool{}},
		notifier: &captureNotifier{},
	}
}

func (h *harness) repos() Repos {
	return Repos{
		Stores:       h.stores,
		Sessions:     h.sessions,
		Products:     h.products,
		Variants:     h.variants,
		Levels:       h.levels,
		Customers:    h.custs,
		Orders:       h.orders,
		LineItems:    h.lines,
		Transactions: h.txns,
		Refunds:      h.refunds,
		Fulfillments: h.fulfills,
	}
}

func rawNodes(t *testing.T, nodes ...any) []json.RawMessage {
	t.Helper()
	out := make([]json.RawMessage, 0, len(nodes))
	for _, n := range nodes {
		data, err := json.Marshal(n)
		require.NoError(t, err)
		out = append(out, data)
	}
	return out
}

func singlePage(nodes []json.RawMessage) []shopify.Page {
	return []shopify.Page{{Nodes: nodes, Cursor: "end", HasNext: false, PageSize: 250}}
}
