package webhook

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/ingest"
	"github.com/storesync/backend/internal/domain/partner"
	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/store"
	"github.com/storesync/backend/internal/domain/trade"
)

// memTable is a keyed in-memory row store shared by the repository fakes.
// Insert fails on a duplicate key like the real repositories do.
type memTable[T any] struct {
	rows  map[string]T
	keyOf func(*T) string
}

func newMemTable[T any](keyOf func(*T) string) *memTable[T] {
	return &memTable[T]{rows: make(map[string]T), keyOf: keyOf}
}

func (m *memTable[T]) findByKeys(keys []string) []T {
	var out []T
	for _, k := range keys {
		if row, ok := m.rows[k]; ok {
			out = append(out, row)
		}
	}
	return out
}

func (m *memTable[T]) get(key string) (*T, bool) {
	row, ok := m.rows[key]
	if !ok {
		return nil, false
	}
	return &row, true
}

func (m *memTable[T]) insert(rec *T) error {
	key := m.keyOf(rec)
	if _, ok := m.rows[key]; ok {
		return shared.ErrAlreadyExists
	}
	m.rows[key] = *rec
	return nil
}

func (m *memTable[T]) save(rec *T) {
	m.rows[m.keyOf(rec)] = *rec
}

type memProducts struct{ *memTable[catalog.Product] }

func (m memProducts) FindByPlatformIDs(_ context.Context, _ uuid.UUID, ids []string) ([]catalog.Product, error) {
	return m.findByKeys(ids), nil
}

func (m memProducts) FindByPlatformID(_ context.Context, _ uuid.UUID, id string) (*catalog.Product, error) {
	p, ok := m.get(id)
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (m memProducts) Save(_ context.Context, p *catalog.Product) error   { m.save(p); return nil }
func (m memProducts) Insert(_ context.Context, p *catalog.Product) error { return m.insert(p) }

func (m memProducts) DeleteByPlatformID(_ context.Context, _ uuid.UUID, id string) error {
	delete(m.rows, id)
	return nil
}

func (m memProducts) DeletePageForStore(context.Context, uuid.UUID, int) (int64, error) {
	return 0, nil
}

func (m memProducts) CountForStore(context.Context, uuid.UUID) (int64, error) {
	return int64(len(m.rows)), nil
}

type memVariants struct{ *memTable[catalog.Variant] }

func (m memVariants) FindByPlatformIDs(_ context.Context, _ uuid.UUID, ids []string) ([]catalog.Variant, error) {
	return m.findByKeys(ids), nil
}

func (m memVariants) FindByInventoryItemIDs(_ context.Context, _ uuid.UUID, itemIDs []string) ([]catalog.Variant, error) {
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

func (m memVariants) FindByProductID(_ context.Context, productID uuid.UUID) ([]catalog.Variant, error) {
	var out []catalog.Variant
	for _, v := range m.rows {
		if v.ProductID == productID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m memVariants) Save(_ context.Context, v *catalog.Variant) error   { m.save(v); return nil }
func (m memVariants) Insert(_ context.Context, v *catalog.Variant) error { return m.insert(v) }

func (m memVariants) DeleteByProductID(_ context.Context, productID uuid.UUID) error {
	for k, v := range m.rows {
		if v.ProductID == productID {
			delete(m.rows, k)
		}
	}
	return nil
}

func (m memVariants) DeletePageForStore(context.Context, uuid.UUID, int) (int64, error) {
	return 0, nil
}

func (m memVariants) CountForStore(context.Context, uuid.UUID) (int64, error) {
	return int64(len(m.rows)), nil
}

type memLevels struct{ *memTable[catalog.InventoryLevel] }

func (m memLevels) FindByItemIDs(_ context.Context, _ uuid.UUID, itemIDs []string) ([]catalog.InventoryLevel, error) {
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

func (m memLevels) SumByItemIDs(_ context.Context, _ uuid.UUID, itemIDs []string) (map[string]int, error) {
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

func (m memLevels) Save(_ context.Context, l *catalog.InventoryLevel) error   { m.save(l); return nil }
func (m memLevels) Insert(_ context.Context, l *catalog.InventoryLevel) error { return m.insert(l) }

func (m memLevels) DeletePageForStore(context.Context, uuid.UUID, int) (int64, error) {
	return 0, nil
}

func (m memLevels) CountForStore(context.Context, uuid.UUID) (int64, error) {
	return int64(len(m.rows)), nil
}

type memCustomers struct{ *memTable[partner.Customer] }

func (m memCustomers) FindByPlatformIDs(_ context.Context, _ uuid.UUID, ids []string) ([]partner.Customer, error) {
	return m.findByKeys(ids), nil
}

func (m memCustomers) FindByPlatformID(_ context.Context, _ uuid.UUID, id string) (*partner.Customer, error) {
	c, ok := m.get(id)
	if !ok {
		return nil, shared.ErrNotFound
	}
	return c, nil
}

func (m memCustomers) Save(_ context.Context, c *partner.Customer) error   { m.save(c); return nil }
func (m memCustomers) Insert(_ context.Context, c *partner.Customer) error { return m.insert(c) }

func (m memCustomers) DeleteByPlatformID(_ context.Context, _ uuid.UUID, id string) error {
	delete(m.rows, id)
	return nil
}

func (m memCustomers) DeletePageForStore(context.Context, uuid.UUID, int) (int64, error) {
	return 0, nil
}

func (m memCustomers) CountForStore(context.Context, uuid.UUID) (int64, error) {
	return int64(len(m.rows)), nil
}

type memOrders struct{ *memTable[trade.Order] }

func (m memOrders) FindByPlatformIDs(_ context.Context, _ uuid.UUID, ids []string) ([]trade.Order, error) {
	return m.findByKeys(ids), nil
}

func (m memOrders) FindByPlatformID(_ context.Context, _ uuid.UUID, id string) (*trade.Order, error) {
	o, ok := m.get(id)
	if !ok {
		return nil, shared.ErrNotFound
	}
	return o, nil
}

func (m memOrders) Save(_ context.Context, o *trade.Order) error   { m.save(o); return nil }
func (m memOrders) Insert(_ context.Context, o *trade.Order) error { return m.insert(o) }

func (m memOrders) DeletePageForStore(context.Context, uuid.UUID, int) (int64, error) {
	return 0, nil
}

func (m memOrders) CountForStore(context.Context, uuid.UUID) (int64, error) {
	return int64(len(m.rows)), nil
}

type memLineItems struct{ *memTable[trade.LineItem] }

func (m memLineItems) FindByPlatformIDs(_ context.Context, _ uuid.UUID, ids []string) ([]trade.LineItem, error) {
	return m.findByKeys(ids), nil
}

func (m memLineItems) FindByOrderID(_ context.Context, orderID uuid.UUID) ([]trade.LineItem, error) {
	var out []trade.LineItem
	for _, li := range m.rows {
		if li.OrderID == orderID {
			out = append(out, li)
		}
	}
	return out, nil
}

func (m memLineItems) FindUnlinkedByPlatformProductIDs(_ context.Context, _ uuid.UUID, productIDs []string) ([]trade.LineItem, error) {
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

func (m memLineItems) Save(_ context.Context, li *trade.LineItem) error   { m.save(li); return nil }
func (m memLineItems) Insert(_ context.Context, li *trade.LineItem) error { return m.insert(li) }

func (m memLineItems) DeletePageForStore(context.Context, uuid.UUID, int) (int64, error) {
	return 0, nil
}

func (m memLineItems) CountForStore(context.Context, uuid.UUID) (int64, error) {
	return int64(len(m.rows)), nil
}

type memTransactions struct{ *memTable[trade.Transaction] }

func (m memTransactions) FindByPlatformIDs(_ context.Context, _ uuid.UUID, ids []string) ([]trade.Transaction, error) {
	return m.findByKeys(ids), nil
}

func (m memTransactions) Save(_ context.Context, t *trade.Transaction) error   { m.save(t); return nil }
func (m memTransactions) Insert(_ context.Context, t *trade.Transaction) error { return m.insert(t) }

func (m memTransactions) DeletePageForStore(context.Context, uuid.UUID, int) (int64, error) {
	return 0, nil
}

func (m memTransactions) CountForStore(context.Context, uuid.UUID) (int64, error) {
	return int64(len(m.rows)), nil
}

type memRefunds struct{ *memTable[trade.Refund] }

func (m memRefunds) FindByPlatformIDs(_ context.Context, _ uuid.UUID, ids []string) ([]trade.Refund, error) {
	return m.findByKeys(ids), nil
}

func (m memRefunds) Save(_ context.Context, r *trade.Refund) error   { m.save(r); return nil }
func (m memRefunds) Insert(_ context.Context, r *trade.Refund) error { return m.insert(r) }

func (m memRefunds) DeletePageForStore(context.Context, uuid.UUID, int) (int64, error) {
	return 0, nil
}

func (m memRefunds) CountForStore(context.Context, uuid.UUID) (int64, error) {
	return int64(len(m.rows)), nil
}

type memFulfillments struct{ *memTable[trade.Fulfillment] }

func (m memFulfillments) FindByPlatformIDs(_ context.Context, _ uuid.UUID, ids []string) ([]trade.Fulfillment, error) {
	return m.findByKeys(ids), nil
}

func (m memFulfillments) Save(_ context.Context, f *trade.Fulfillment) error   { m.save(f); return nil }
func (m memFulfillments) Insert(_ context.Context, f *trade.Fulfillment) error { return m.insert(f) }

func (m memFulfillments) DeletePageForStore(context.Context, uuid.UUID, int) (int64, error) {
	return 0, nil
}

func (m memFulfillments) CountForStore(context.Context, uuid.UUID) (int64, error) {
	return int64(len(m.rows)), nil
}

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

func (m *memStores) Save(_ context.Context, st *store.Store) error         { m.rows[st.ID] = st; return nil }
func (m *memStores) SaveWithLock(_ context.Context, st *store.Store) error { m.rows[st.ID] = st; return nil }

func (m *memStores) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.rows, id)
	return nil
}

type memSessions struct{}

func (memSessions) FindByID(context.Context, uuid.UUID) (*store.SyncSession, error) {
	return nil, shared.ErrNotFound
}

func (memSessions) FindByStore(context.Context, uuid.UUID, shared.Filter) ([]store.SyncSession, error) {
	return nil, nil
}

func (memSessions) FindLatestByStore(context.Context, uuid.UUID) (*store.SyncSession, error) {
	return nil, shared.ErrNotFound
}

func (memSessions) Save(context.Context, *store.SyncSession) error { return nil }

type memPending struct {
	rows map[uuid.UUID]*ingest.PendingWebhook
}

func (m *memPending) FindByID(_ context.Context, id uuid.UUID) (*ingest.PendingWebhook, error) {
	pw, ok := m.rows[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return pw, nil
}

func (m *memPending) FindDue(_ context.Context, now time.Time, limit int) ([]ingest.PendingWebhook, error) {
	var out []ingest.PendingWebhook
	for _, pw := range m.rows {
		if pw.Due(now) {
			out = append(out, *pw)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *memPending) Save(_ context.Context, pw *ingest.PendingWebhook) error {
	m.rows[pw.ID] = pw
	return nil
}

func (m *memPending) DeletePageForStore(context.Context, uuid.UUID, int) (int64, error) {
	return 0, nil
}

func (m *memPending) CountForStore(context.Context, uuid.UUID) (int64, error) {
	return int64(len(m.rows)), nil
}

type fakeLedger struct {
	seen  map[string]bool
	calls int
}

func (f *fakeLedger) RecordOrReject(_ context.Context, eventID, topic, shopDomain string) (bool, error) {
	f.calls++
	key := eventID + "|" + topic + "|" + shopDomain
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}

type fakeFastPath struct {
	keys map[string]bool
}

func (f *fakeFastPath) MarkProcessed(_ context.Context, deliveryID string, _ time.Duration) (bool, error) {
	if f.keys[deliveryID] {
		return false, nil
	}
	f.keys[deliveryID] = true
	return true, nil
}

func (f *fakeFastPath) IsProcessed(_ context.Context, deliveryID string) (bool, error) {
	return f.keys[deliveryID], nil
}

func (f *fakeFastPath) Close() error { return nil }

type fakeNotifier struct {
	sets []*ingest.MutatedSet
}

func (f *fakeNotifier) NotifyMutation(_ context.Context, _, _ uuid.UUID, mutated *ingest.MutatedSet) {
	f.sets = append(f.sets, mutated)
}

type fakeOffboardQueue struct {
	enqueued []uuid.UUID
}

func (f *fakeOffboardQueue) Enqueue(_ context.Context, storeID uuid.UUID) error {
	f.enqueued = append(f.enqueued, storeID)
	return nil
}

type fakeArchiver struct {
	stored map[string][]byte
}

func (f *fakeArchiver) Store(_ context.Context, key string, data []byte) error {
	if f.stored == nil {
		f.stored = make(map[string][]byte)
	}
	f.stored[key] = data
	return nil
}
