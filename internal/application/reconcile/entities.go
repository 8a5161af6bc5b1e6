package reconcile

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/ingest"
	"github.com/storesync/backend/internal/domain/partner"
	"github.com/storesync/backend/internal/domain/trade"
)

// Per-entity reconciler constructors. Each binds the entity's comparison spec
// to its repository; callers never wire field lists by hand.

// ForProducts builds the product reconciler
func ForProducts(repo catalog.ProductRepository) *Reconciler[catalog.Product] {
	return &Reconciler[catalog.Product]{
		Spec:   ingest.ProductSpec,
		Key:    func(p *catalog.Product) string { return p.PlatformID },
		Find:   repo.FindByPlatformIDs,
		Insert: repo.Insert,
		Save:   repo.Save,
		Bump:   func(p *catalog.Product) { p.Touch(); p.IncrementVersion() },
	}
}

// ForVariants builds the variant reconciler
func ForVariants(repo catalog.VariantRepository) *Reconciler[catalog.Variant] {
	return &Reconciler[catalog.Variant]{
		Spec:   ingest.VariantSpec,
		Key:    func(v *catalog.Variant) string { return v.PlatformID },
		Find:   repo.FindByPlatformIDs,
		Insert: repo.Insert,
		Save:   repo.Save,
		Bump:   func(v *catalog.Variant) { v.Touch(); v.IncrementVersion() },
	}
}

// ForInventoryLevels builds the inventory level reconciler. The reconciliation
// key is the (item, location) pair since one item spans locations.
func ForInventoryLevels(repo catalog.InventoryLevelRepository) *Reconciler[catalog.InventoryLevel] {
	return &Reconciler[catalog.InventoryLevel]{
		Spec: ingest.InventoryLevelSpec,
		Key:  func(l *catalog.InventoryLevel) string { return l.InventoryItemID + "|" + l.LocationID },
		Find: func(ctx context.Context, storeID uuid.UUID, keys []string) ([]catalog.InventoryLevel, error) {
			seen := make(map[string]struct{}, len(keys))
			items := make([]string, 0, len(keys))
			for _, k := range keys {
				item, _, _ := strings.Cut(k, "|")
				if _, dup := seen[item]; dup {
					continue
				}
				seen[item] = struct{}{}
				items = append(items, item)
			}
			// Extra locations of the same items come back too; they are simply
			// not matched by any incoming key.
			return repo.FindByItemIDs(ctx, storeID, items)
		},
		Insert: repo.Insert,
		Save:   repo.Save,
		Bump:   func(l *catalog.InventoryLevel) { l.Touch(); l.IncrementVersion() },
	}
}

// ForCustomers builds the customer reconciler
func ForCustomers(repo partner.CustomerRepository) *Reconciler[partner.Customer] {
	return &Reconciler[partner.Customer]{
		Spec:   ingest.CustomerSpec,
		Key:    func(c *partner.Customer) string { return c.PlatformID },
		Find:   repo.FindByPlatformIDs,
		Insert: repo.Insert,
		Save:   repo.Save,
		Bump:   func(c *partner.Customer) { c.Touch(); c.IncrementVersion() },
	}
}

// ForOrders builds the order reconciler (order rows only, children separate)
func ForOrders(repo trade.OrderRepository) *Reconciler[trade.Order] {
	return &Reconciler[trade.Order]{
		Spec:   ingest.OrderSpec,
		Key:    func(o *trade.Order) string { return o.PlatformID },
		Find:   repo.FindByPlatformIDs,
		Insert: repo.Insert,
		Save:   repo.Save,
		Bump:   func(o *trade.Order) { o.Touch(); o.IncrementVersion() },
	}
}

// ForLineItems builds the order line reconciler
func ForLineItems(repo trade.LineItemRepository) *Reconciler[trade.LineItem] {
	return &Reconciler[trade.LineItem]{
		Spec:   ingest.LineItemSpec,
		Key:    func(li *trade.LineItem) string { return li.PlatformID },
		Find:   repo.FindByPlatformIDs,
		Insert: repo.Insert,
		Save:   repo.Save,
		Bump:   func(li *trade.LineItem) { li.Touch() },
	}
}

// ForTransactions builds the transaction reconciler
func ForTransactions(repo trade.TransactionRepository) *Reconciler[trade.Transaction] {
	return &Reconciler[trade.Transaction]{
		Spec:   ingest.TransactionSpec,
		Key:    func(t *trade.Transaction) string { return t.PlatformID },
		Find:   repo.FindByPlatformIDs,
		Insert: repo.Insert,
		Save:   repo.Save,
		Bump:   func(t *trade.Transaction) { t.Touch() },
	}
}

// ForRefunds builds the refund reconciler
func ForRefunds(repo trade.RefundRepository) *Reconciler[trade.Refund] {
	return &Reconciler[trade.Refund]{
		Spec:   ingest.RefundSpec,
		Key:    func(r *trade.Refund) string { return r.PlatformID },
		Find:   repo.FindByPlatformIDs,
		Insert: repo.Insert,
		Save:   repo.Save,
		Bump:   func(r *trade.Refund) { r.Touch() },
	}
}

// ForFulfillments builds the fulfillment reconciler
func ForFulfillments(repo trade.FulfillmentRepository) *Reconciler[trade.Fulfillment] {
	return &Reconciler[trade.Fulfillment]{
		Spec:   ingest.FulfillmentSpec,
		Key:    func(f *trade.Fulfillment) string { return f.PlatformID },
		Find:   repo.FindByPlatformIDs,
		Insert: repo.Insert,
		Save:   repo.Save,
		Bump:   func(f *trade.Fulfillment) { f.Touch() },
	}
}
