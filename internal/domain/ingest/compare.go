package ingest

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/partner"
	"github.com/storesync/backend/internal/domain/trade"
)

// Field declares one tracked field of an entity: how to detect a change and
// how to copy the incoming value onto the stored row. Each entity has exactly
// one comparison spec; reconcilers iterate it instead of maintaining
// hand-written per-entity field lists.
type Field[T any] struct {
	Name    string
	Changed func(existing, incoming *T) bool
	Copy    func(dst, src *T)
}

// CompareSpec is the ordered set of tracked fields for one entity type
type CompareSpec[T any] []Field[T]

// Diff returns the names of tracked fields that differ
func (s CompareSpec[T]) Diff(existing, incoming *T) []string {
	var changed []string
	for _, f := range s {
		if f.Changed(existing, incoming) {
			changed = append(changed, f.Name)
		}
	}
	return changed
}

// Apply copies every tracked field from incoming onto existing
func (s CompareSpec[T]) Apply(existing, incoming *T) {
	for _, f := range s {
		f.Copy(existing, incoming)
	}
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func decimalPtrEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// ProductSpec is the tracked field set for products
var ProductSpec = CompareSpec[catalog.Product]{
	{"title", func(e, i *catalog.Product) bool { return e.Title != i.Title },
		func(d, s *catalog.Product) { d.Title = s.Title }},
	{"handle", func(e, i *catalog.Product) bool { return e.Handle != i.Handle },
		func(d, s *catalog.Product) { d.Handle = s.Handle }},
	{"vendor", func(e, i *catalog.Product) bool { return e.Vendor != i.Vendor },
		func(d, s *catalog.Product) { d.Vendor = s.Vendor }},
	{"product_type", func(e, i *catalog.Product) bool { return e.ProductType != i.ProductType },
		func(d, s *catalog.Product) { d.ProductType = s.ProductType }},
	{"status", func(e, i *catalog.Product) bool { return e.Status != i.Status },
		func(d, s *catalog.Product) { d.Status = s.Status }},
	{"tags", func(e, i *catalog.Product) bool { return e.Tags != i.Tags },
		func(d, s *catalog.Product) { d.Tags = s.Tags }},
	{"published_at", func(e, i *catalog.Product) bool { return !timePtrEqual(e.PublishedAt, i.PublishedAt) },
		func(d, s *catalog.Product) { d.PublishedAt = s.PublishedAt }},
	{"variant_count", func(e, i *catalog.Product) bool { return e.VariantCount != i.VariantCount },
		func(d, s *catalog.Product) { d.VariantCount = s.VariantCount }},
	{"platform_updated_at", func(e, i *catalog.Product) bool { return !e.PlatformUpdatedAt.Equal(i.PlatformUpdatedAt) },
		func(d, s *catalog.Product) { d.PlatformUpdatedAt = s.PlatformUpdatedAt }},
}

// VariantSpec is the tracked field set for variants
var VariantSpec = CompareSpec[catalog.Variant]{
	{"sku", func(e, i *catalog.Variant) bool { return e.SKU != i.SKU },
		func(d, s *catalog.Variant) { d.SKU = s.SKU }},
	{"title", func(e, i *catalog.Variant) bool { return e.Title != i.Title },
		func(d, s *catalog.Variant) { d.Title = s.Title }},
	{"position", func(e, i *catalog.Variant) bool { return e.Position != i.Position },
		func(d, s *catalog.Variant) { d.Position = s.Position }},
	{"price", func(e, i *catalog.Variant) bool { return !e.Price.Equal(i.Price) },
		func(d, s *catalog.Variant) { d.Price = s.Price }},
	{"compare_at_price", func(e, i *catalog.Variant) bool { return !decimalPtrEqual(e.CompareAtPrice, i.CompareAtPrice) },
		func(d, s *catalog.Variant) { d.CompareAtPrice = s.CompareAtPrice }},
	{"unit_cost", func(e, i *catalog.Variant) bool { return !decimalPtrEqual(e.UnitCost, i.UnitCost) },
		func(d, s *catalog.Variant) { d.UnitCost = s.UnitCost }},
	{"inventory_item_id", func(e, i *catalog.Variant) bool { return e.InventoryItemID != i.InventoryItemID },
		func(d, s *catalog.Variant) { d.InventoryItemID = s.InventoryItemID }},
	{"inventory_quantity", func(e, i *catalog.Variant) bool { return e.InventoryQuantity != i.InventoryQuantity },
		func(d, s *catalog.Variant) { d.InventoryQuantity = s.InventoryQuantity }},
	{"product_id", func(e, i *catalog.Variant) bool { return i.ProductID != uuid.Nil && e.ProductID != i.ProductID },
		func(d, s *catalog.Variant) {
			if s.ProductID != uuid.Nil {
				d.ProductID = s.ProductID
			}
		}},
	{"platform_updated_at", func(e, i *catalog.Variant) bool { return !e.PlatformUpdatedAt.Equal(i.PlatformUpdatedAt) },
		func(d, s *catalog.Variant) { d.PlatformUpdatedAt = s.PlatformUpdatedAt }},
}

// InventoryLevelSpec is the tracked field set for per-location inventory
var InventoryLevelSpec = CompareSpec[catalog.InventoryLevel]{
	{"available", func(e, i *catalog.InventoryLevel) bool { return e.Available != i.Available },
		func(d, s *catalog.InventoryLevel) { d.Available = s.Available }},
}

// CustomerSpec is the tracked field set for customers. The aggregated
// orders_count/total_spent columns are reconciler-owned and deliberately not
// part of the platform comparison.
var CustomerSpec = CompareSpec[partner.Customer]{
	{"email", func(e, i *partner.Customer) bool { return e.Email != i.Email },
		func(d, s *partner.Customer) { d.Email = s.Email }},
	{"first_name", func(e, i *partner.Customer) bool { return e.FirstName != i.FirstName },
		func(d, s *partner.Customer) { d.FirstName = s.FirstName }},
	{"last_name", func(e, i *partner.Customer) bool { return e.LastName != i.LastName },
		func(d, s *partner.Customer) { d.LastName = s.LastName }},
	{"phone", func(e, i *partner.Customer) bool { return e.Phone != i.Phone },
		func(d, s *partner.Customer) { d.Phone = s.Phone }},
	{"platform_updated_at", func(e, i *partner.Customer) bool { return !e.PlatformUpdatedAt.Equal(i.PlatformUpdatedAt) },
		func(d, s *partner.Customer) { d.PlatformUpdatedAt = s.PlatformUpdatedAt }},
}

// OrderSpec is the tracked field set for orders
var OrderSpec = CompareSpec[trade.Order]{
	{"name", func(e, i *trade.Order) bool { return e.Name != i.Name },
		func(d, s *trade.Order) { d.Name = s.Name }},
	{"email", func(e, i *trade.Order) bool { return e.Email != i.Email },
		func(d, s *trade.Order) { d.Email = s.Email }},
	{"financial_status", func(e, i *trade.Order) bool { return e.FinancialStatus != i.FinancialStatus },
		func(d, s *trade.Order) { d.FinancialStatus = s.FinancialStatus }},
	{"fulfillment_status", func(e, i *trade.Order) bool { return e.FulfillmentStatus != i.FulfillmentStatus },
		func(d, s *trade.Order) { d.FulfillmentStatus = s.FulfillmentStatus }},
	{"currency", func(e, i *trade.Order) bool { return e.Currency != i.Currency },
		func(d, s *trade.Order) { d.Currency = s.Currency }},
	{"subtotal_price", func(e, i *trade.Order) bool { return !e.SubtotalPrice.Equal(i.SubtotalPrice) },
		func(d, s *trade.Order) { d.SubtotalPrice = s.SubtotalPrice }},
	{"total_discounts", func(e, i *trade.Order) bool { return !e.TotalDiscounts.Equal(i.TotalDiscounts) },
		func(d, s *trade.Order) { d.TotalDiscounts = s.TotalDiscounts }},
	{"total_tax", func(e, i *trade.Order) bool { return !e.TotalTax.Equal(i.TotalTax) },
		func(d, s *trade.Order) { d.TotalTax = s.TotalTax }},
	{"total_price", func(e, i *trade.Order) bool { return !e.TotalPrice.Equal(i.TotalPrice) },
		func(d, s *trade.Order) { d.TotalPrice = s.TotalPrice }},
	{"customer_link", func(e, i *trade.Order) bool {
		return i.CustomerID != nil && !uuidPtrEqual(e.CustomerID, i.CustomerID)
	},
		func(d, s *trade.Order) {
			if s.CustomerID != nil {
				d.CustomerID = s.CustomerID
				d.PlatformCustomerID = s.PlatformCustomerID
			}
		}},
	{"cancelled_at", func(e, i *trade.Order) bool { return !timePtrEqual(e.CancelledAt, i.CancelledAt) },
		func(d, s *trade.Order) { d.CancelledAt = s.CancelledAt }},
	{"closed_at", func(e, i *trade.Order) bool { return !timePtrEqual(e.ClosedAt, i.ClosedAt) },
		func(d, s *trade.Order) { d.ClosedAt = s.ClosedAt }},
	{"platform_updated_at", func(e, i *trade.Order) bool { return !e.PlatformUpdatedAt.Equal(i.PlatformUpdatedAt) },
		func(d, s *trade.Order) { d.PlatformUpdatedAt = s.PlatformUpdatedAt }},
}

// TransactionSpec is the tracked field set for transactions
var TransactionSpec = CompareSpec[trade.Transaction]{
	{"kind", func(e, i *trade.Transaction) bool { return e.Kind != i.Kind },
		func(d, s *trade.Transaction) { d.Kind = s.Kind }},
	{"status", func(e, i *trade.Transaction) bool { return e.Status != i.Status },
		func(d, s *trade.Transaction) { d.Status = s.Status }},
	{"gateway", func(e, i *trade.Transaction) bool { return e.Gateway != i.Gateway },
		func(d, s *trade.Transaction) { d.Gateway = s.Gateway }},
	{"amount", func(e, i *trade.Transaction) bool { return !e.Amount.Equal(i.Amount) },
		func(d, s *trade.Transaction) { d.Amount = s.Amount }},
	{"currency", func(e, i *trade.Transaction) bool { return e.Currency != i.Currency },
		func(d, s *trade.Transaction) { d.Currency = s.Currency }},
}

// RefundSpec is the tracked field set for refunds
var RefundSpec = CompareSpec[trade.Refund]{
	{"note", func(e, i *trade.Refund) bool { return e.Note != i.Note },
		func(d, s *trade.Refund) { d.Note = s.Note }},
	{"amount", func(e, i *trade.Refund) bool { return !e.Amount.Equal(i.Amount) },
		func(d, s *trade.Refund) { d.Amount = s.Amount }},
}

// FulfillmentSpec is the tracked field set for fulfillments
var FulfillmentSpec = CompareSpec[trade.Fulfillment]{
	{"status", func(e, i *trade.Fulfillment) bool { return e.Status != i.Status },
		func(d, s *trade.Fulfillment) { d.Status = s.Status }},
	{"tracking_number", func(e, i *trade.Fulfillment) bool { return e.TrackingNumber != i.TrackingNumber },
		func(d, s *trade.Fulfillment) { d.TrackingNumber = s.TrackingNumber }},
	{"tracking_company", func(e, i *trade.Fulfillment) bool { return e.TrackingCompany != i.TrackingCompany },
		func(d, s *trade.Fulfillment) { d.TrackingCompany = s.TrackingCompany }},
	{"shipped_at", func(e, i *trade.Fulfillment) bool { return !timePtrEqual(e.ShippedAt, i.ShippedAt) },
		func(d, s *trade.Fulfillment) { d.ShippedAt = s.ShippedAt }},
}

// LineItemSpec is the tracked field set for order lines. The product link
// only tightens: a resolved reference is never cleared by a payload that
// could not resolve it.
var LineItemSpec = CompareSpec[trade.LineItem]{
	{"product_link", func(e, i *trade.LineItem) bool {
		return (i.ProductID != nil && !uuidPtrEqual(e.ProductID, i.ProductID)) ||
			(i.VariantID != nil && !uuidPtrEqual(e.VariantID, i.VariantID))
	},
		func(d, s *trade.LineItem) {
			if s.ProductID != nil {
				d.ProductID = s.ProductID
			}
			if s.VariantID != nil {
				d.VariantID = s.VariantID
			}
		}},
	{"title", func(e, i *trade.LineItem) bool { return e.Title != i.Title },
		func(d, s *trade.LineItem) { d.Title = s.Title }},
	{"sku", func(e, i *trade.LineItem) bool { return e.SKU != i.SKU },
		func(d, s *trade.LineItem) { d.SKU = s.SKU }},
	{"quantity", func(e, i *trade.LineItem) bool { return e.Quantity != i.Quantity },
		func(d, s *trade.LineItem) { d.Quantity = s.Quantity }},
	{"price", func(e, i *trade.LineItem) bool { return !e.Price.Equal(i.Price) },
		func(d, s *trade.LineItem) { d.Price = s.Price }},
	{"total_discount", func(e, i *trade.LineItem) bool { return !e.TotalDiscount.Equal(i.TotalDiscount) },
		func(d, s *trade.LineItem) { d.TotalDiscount = s.TotalDiscount }},
}
