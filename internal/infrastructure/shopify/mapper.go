package shopify

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/partner"
	"github.com/storesync/backend/internal/domain/trade"
)

// The mapper turns raw platform records into domain entities. Mapping never
// touches storage: every function is pure, and a record missing its platform
// id is a permanent validation failure, not something to retry.

// VariantCost pairs a variant's platform id with its reported unit cost.
// Costs ride along the product feed and are handed to the margin pipeline
// separately from the mirrored rows.
type VariantCost struct {
	PlatformVariantID string
	UnitCost          decimal.Decimal
}

// MapProductNode maps a GraphQL product node plus its nested variants
func MapProductNode(node ProductNode, tenantID, storeID uuid.UUID) (*catalog.Product, []catalog.Variant, []VariantCost, error) {
	platformID := StripGID(node.ID)
	product, err := catalog.NewProduct(tenantID, storeID, platformID, node.Title)
	if err != nil {
		return nil, nil, nil, err
	}

	product.Handle = node.Handle
	product.Vendor = node.Vendor
	product.ProductType = node.ProductType
	product.Status = mapProductStatus(node.Status)
	product.Tags = JoinTags(node.Tags)

	if product.PublishedAt, err = ParseTimePtr(node.PublishedAt); err != nil {
		return nil, nil, nil, fmt.Errorf("product %s: %w", platformID, err)
	}
	if product.PlatformCreatedAt, err = ParseTime(node.CreatedAt); err != nil {
		return nil, nil, nil, fmt.Errorf("product %s: %w", platformID, err)
	}
	if product.PlatformUpdatedAt, err = ParseTime(node.UpdatedAt); err != nil {
		return nil, nil, nil, fmt.Errorf("product %s: %w", platformID, err)
	}

	variants := make([]catalog.Variant, 0, len(node.Variants.Nodes))
	costs := make([]VariantCost, 0, len(node.Variants.Nodes))
	for _, vn := range node.Variants.Nodes {
		variant, cost, err := mapVariantNode(vn, tenantID, storeID, platformID)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("product %s: %w", platformID, err)
		}
		variants = append(variants, *variant)
		if cost != nil {
			costs = append(costs, *cost)
		}
	}
	product.VariantCount = len(variants)

	return product, variants, costs, nil
}

func mapVariantNode(node VariantNode, tenantID, storeID uuid.UUID, platformProductID string) (*catalog.Variant, *VariantCost, error) {
	platformID := StripGID(node.ID)
	variant, err := catalog.NewVariant(tenantID, storeID, uuid.Nil, platformID, platformProductID)
	if err != nil {
		return nil, nil, err
	}

	variant.SKU = node.SKU
	variant.Title = node.Title
	variant.Position = node.Position
	variant.InventoryItemID = StripGID(node.InventoryItem.ID)
	variant.InventoryQuantity = node.InventoryQuantity

	if variant.Price, err = ParseMoney(node.Price); err != nil {
		return nil, nil, fmt.Errorf("variant %s: %w", platformID, err)
	}
	if variant.CompareAtPrice, err = ParseMoneyPtr(node.CompareAtPrice); err != nil {
		return nil, nil, fmt.Errorf("variant %s: %w", platformID, err)
	}
	if variant.UnitCost, err = ParseMoneyPtr(node.InventoryItem.UnitCost.Amount); err != nil {
		return nil, nil, fmt.Errorf("variant %s: %w", platformID, err)
	}
	if variant.PlatformCreatedAt, err = ParseTime(node.CreatedAt); err != nil {
		return nil, nil, fmt.Errorf("variant %s: %w", platformID, err)
	}
	if variant.PlatformUpdatedAt, err = ParseTime(node.UpdatedAt); err != nil {
		return nil, nil, fmt.Errorf("variant %s: %w", platformID, err)
	}

	var cost *VariantCost
	if variant.UnitCost != nil {
		cost = &VariantCost{PlatformVariantID: platformID, UnitCost: *variant.UnitCost}
	}
	return variant, cost, nil
}

// MapInventoryLevelNode maps a GraphQL inventory level node. Levels without
// an "available" quantity entry map to zero.
func MapInventoryLevelNode(node InventoryLevelNode, tenantID, storeID uuid.UUID) (*catalog.InventoryLevel, error) {
	available := 0
	for _, q := range node.Quantities {
		if q.Name == "available" {
			available = q.Quantity
			break
		}
	}
	return catalog.NewInventoryLevel(tenantID, storeID, StripGID(node.Item.ID), StripGID(node.Location.ID), available)
}

// MapCustomerNode maps a GraphQL customer node
func MapCustomerNode(node CustomerNode, tenantID, storeID uuid.UUID) (*partner.Customer, error) {
	platformID := StripGID(node.ID)
	customer, err := partner.NewCustomer(tenantID, storeID, platformID)
	if err != nil {
		return nil, err
	}

	customer.Email = node.Email
	customer.FirstName = node.FirstName
	customer.LastName = node.LastName
	customer.Phone = node.Phone

	if customer.PlatformCreatedAt, err = ParseTime(node.CreatedAt); err != nil {
		return nil, fmt.Errorf("customer %s: %w", platformID, err)
	}
	if customer.PlatformUpdatedAt, err = ParseTime(node.UpdatedAt); err != nil {
		return nil, fmt.Errorf("customer %s: %w", platformID, err)
	}
	return customer, nil
}

// MapOrderNode maps a GraphQL order node with its nested lines, transactions,
// refunds and fulfillments. Child rows carry only platform references; the
// reconciler resolves internal ids when it lands them.
func MapOrderNode(node OrderNode, tenantID, storeID uuid.UUID) (*trade.Order, error) {
	platformID := StripGID(node.ID)
	order, err := trade.NewOrder(tenantID, storeID, platformID)
	if err != nil {
		return nil, err
	}

	order.Name = node.Name
	order.Email = node.Email
	order.Currency = node.CurrencyCode
	order.FinancialStatus = mapFinancialStatus(node.DisplayFinancialStatus)
	order.FulfillmentStatus = mapFulfillmentState(node.DisplayFulfillmentStatus)
	if node.Customer != nil {
		order.PlatformCustomerID = StripGID(node.Customer.ID)
	}

	if order.SubtotalPrice, err = parseMoneyBag(node.SubtotalPriceSet); err != nil {
		return nil, fmt.Errorf("order %s: subtotal: %w", platformID, err)
	}
	if order.TotalDiscounts, err = parseMoneyBag(node.TotalDiscountsSet); err != nil {
		return nil, fmt.Errorf("order %s: discounts: %w", platformID, err)
	}
	if order.TotalTax, err = parseMoneyBag(node.TotalTaxSet); err != nil {
		return nil, fmt.Errorf("order %s: tax: %w", platformID, err)
	}
	if order.TotalPrice, err = parseMoneyBag(node.TotalPriceSet); err != nil {
		return nil, fmt.Errorf("order %s: total: %w", platformID, err)
	}

	if node.ProcessedAt != "" {
		if order.ProcessedAt, err = ParseTime(node.ProcessedAt); err != nil {
			return nil, fmt.Errorf("order %s: %w", platformID, err)
		}
	}
	if order.CancelledAt, err = ParseTimePtr(node.CancelledAt); err != nil {
		return nil, fmt.Errorf("order %s: %w", platformID, err)
	}
	if order.ClosedAt, err = ParseTimePtr(node.ClosedAt); err != nil {
		return nil, fmt.Errorf("order %s: %w", platformID, err)
	}
	if order.PlatformCreatedAt, err = ParseTime(node.CreatedAt); err != nil {
		return nil, fmt.Errorf("order %s: %w", platformID, err)
	}
	if order.PlatformUpdatedAt, err = ParseTime(node.UpdatedAt); err != nil {
		return nil, fmt.Errorf("order %s: %w", platformID, err)
	}

	for _, ln := range node.LineItems.Nodes {
		line, err := mapLineItemNode(ln, storeID)
		if err != nil {
			return nil, fmt.Errorf("order %s: %w", platformID, err)
		}
		order.LineItems = append(order.LineItems, *line)
	}
	for _, tn := range node.Transactions {
		txn, err := mapTransactionNode(tn, storeID)
		if err != nil {
			return nil, fmt.Errorf("order %s: %w", platformID, err)
		}
		order.Transactions = append(order.Transactions, *txn)
	}
	for _, rn := range node.Refunds {
		refund, err := mapRefundNode(rn, storeID)
		if err != nil {
			return nil, fmt.Errorf("order %s: %w", platformID, err)
		}
		order.Refunds = append(order.Refunds, *refund)
	}
	for _, fn := range node.Fulfillments {
		fulfillment, err := mapFulfillmentNode(fn, storeID)
		if err != nil {
			return nil, fmt.Errorf("order %s: %w", platformID, err)
		}
		order.Fulfillments = append(order.Fulfillments, *fulfillment)
	}

	return order, nil
}

func mapLineItemNode(node LineItemNode, storeID uuid.UUID) (*trade.LineItem, error) {
	line := &trade.LineItem{
		StoreID:    storeID,
		PlatformID: StripGID(node.ID),
		Title:      node.Title,
		SKU:        node.SKU,
		Quantity:   node.Quantity,
	}
	if line.PlatformID == "" {
		return nil, fmt.Errorf("line item missing platform id")
	}
	if node.Product != nil {
		line.PlatformProductID = StripGID(node.Product.ID)
	}
	if node.Variant != nil {
		line.PlatformVariantID = StripGID(node.Variant.ID)
	}

	var err error
	if line.Price, err = parseMoneyBag(node.OriginalUnitPriceSet); err != nil {
		return nil, fmt.Errorf("line %s: %w", line.PlatformID, err)
	}
	if line.TotalDiscount, err = parseMoneyBag(node.TotalDiscountSet); err != nil {
		return nil, fmt.Errorf("line %s: %w", line.PlatformID, err)
	}
	return line, nil
}

func mapTransactionNode(node TransactionNode, storeID uuid.UUID) (*trade.Transaction, error) {
	txn := &trade.Transaction{
		StoreID:    storeID,
		PlatformID: StripGID(node.ID),
		Kind:       trade.TransactionKind(strings.ToLower(node.Kind)),
		Status:     strings.ToLower(node.Status),
		Gateway:    node.Gateway,
		Currency:   node.AmountSet.ShopMoney.CurrencyCode,
	}
	if txn.PlatformID == "" {
		return nil, fmt.Errorf("transaction missing platform id")
	}

	var err error
	if txn.Amount, err = parseMoneyBag(node.AmountSet); err != nil {
		return nil, fmt.Errorf("transaction %s: %w", txn.PlatformID, err)
	}
	if node.ProcessedAt != "" {
		if txn.ProcessedAt, err = ParseTime(node.ProcessedAt); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", txn.PlatformID, err)
		}
	}
	return txn, nil
}

func mapRefundNode(node RefundNode, storeID uuid.UUID) (*trade.Refund, error) {
	refund := &trade.Refund{
		StoreID:    storeID,
		PlatformID: StripGID(node.ID),
		Note:       node.Note,
	}
	if refund.PlatformID == "" {
		return nil, fmt.Errorf("refund missing platform id")
	}

	var err error
	if refund.Amount, err = parseMoneyBag(node.TotalRefundedSet); err != nil {
		return nil, fmt.Errorf("refund %s: %w", refund.PlatformID, err)
	}
	if node.CreatedAt != "" {
		if refund.ProcessedAt, err = ParseTime(node.CreatedAt); err != nil {
			return nil, fmt.Errorf("refund %s: %w", refund.PlatformID, err)
		}
	}
	return refund, nil
}

func mapFulfillmentNode(node FulfillmentNode, storeID uuid.UUID) (*trade.Fulfillment, error) {
	fulfillment := &trade.Fulfillment{
		StoreID:    storeID,
		PlatformID: StripGID(node.ID),
		Status:     strings.ToLower(node.Status),
	}
	if fulfillment.PlatformID == "" {
		return nil, fmt.Errorf("fulfillment missing platform id")
	}
	if len(node.TrackingInfo) > 0 {
		fulfillment.TrackingNumber = node.TrackingInfo[0].Number
		fulfillment.TrackingCompany = node.TrackingInfo[0].Company
	}

	shipped, err := ParseTimePtr(node.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("fulfillment %s: %w", fulfillment.PlatformID, err)
	}
	fulfillment.ShippedAt = shipped
	return fulfillment, nil
}

// Webhook payload mapping. REST payloads carry numeric ids and flat money
// strings; they are normalized to the same canonical form as the GraphQL
// nodes so the reconciler sees one record shape.

// MapProductPayload maps a products/* webhook body
func MapProductPayload(p ProductPayload, tenantID, storeID uuid.UUID) (*catalog.Product, []catalog.Variant, error) {
	if p.ID == 0 {
		return nil, nil, fmt.Errorf("product payload missing id")
	}
	platformID := strconv.FormatInt(p.ID, 10)
	product, err := catalog.NewProduct(tenantID, storeID, platformID, p.Title)
	if err != nil {
		return nil, nil, err
	}

	product.Handle = p.Handle
	product.Vendor = p.Vendor
	product.ProductType = p.ProductType
	product.Status = mapProductStatus(p.Status)
	product.Tags = JoinTags(p.Tags)

	if product.PublishedAt, err = ParseTimePtr(p.PublishedAt); err != nil {
		return nil, nil, fmt.Errorf("product %s: %w", platformID, err)
	}
	if p.CreatedAt != "" {
		if product.PlatformCreatedAt, err = ParseTime(p.CreatedAt); err != nil {
			return nil, nil, fmt.Errorf("product %s: %w", platformID, err)
		}
	}
	if p.UpdatedAt != "" {
		if product.PlatformUpdatedAt, err = ParseTime(p.UpdatedAt); err != nil {
			return nil, nil, fmt.Errorf("product %s: %w", platformID, err)
		}
	}

	variants := make([]catalog.Variant, 0, len(p.Variants))
	for _, vp := range p.Variants {
		variant, err := mapVariantPayload(vp, tenantID, storeID, platformID)
		if err != nil {
			return nil, nil, fmt.Errorf("product %s: %w", platformID, err)
		}
		variants = append(variants, *variant)
	}
	product.VariantCount = len(variants)

	return product, variants, nil
}

func mapVariantPayload(p VariantPayload, tenantID, storeID uuid.UUID, platformProductID string) (*catalog.Variant, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("variant payload missing id")
	}
	platformID := strconv.FormatInt(p.ID, 10)
	variant, err := catalog.NewVariant(tenantID, storeID, uuid.Nil, platformID, platformProductID)
	if err != nil {
		return nil, err
	}

	variant.SKU = p.SKU
	variant.Title = p.Title
	variant.Position = p.Position
	variant.InventoryQuantity = p.InventoryQuantity
	if p.InventoryItemID != 0 {
		variant.InventoryItemID = strconv.FormatInt(p.InventoryItemID, 10)
	}

	if variant.Price, err = ParseMoney(p.Price); err != nil {
		return nil, fmt.Errorf("variant %s: %w", platformID, err)
	}
	if variant.CompareAtPrice, err = ParseMoneyPtr(p.CompareAtPrice); err != nil {
		return nil, fmt.Errorf("variant %s: %w", platformID, err)
	}
	if p.CreatedAt != "" {
		if variant.PlatformCreatedAt, err = ParseTime(p.CreatedAt); err != nil {
			return nil, fmt.Errorf("variant %s: %w", platformID, err)
		}
	}
	if p.UpdatedAt != "" {
		if variant.PlatformUpdatedAt, err = ParseTime(p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("variant %s: %w", platformID, err)
		}
	}
	return variant, nil
}

// MapCustomerPayload maps a customers/* webhook body
func MapCustomerPayload(p CustomerPayload, tenantID, storeID uuid.UUID) (*partner.Customer, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("customer payload missing id")
	}
	platformID := strconv.FormatInt(p.ID, 10)
	customer, err := partner.NewCustomer(tenantID, storeID, platformID)
	if err != nil {
		return nil, err
	}

	customer.Email = p.Email
	customer.FirstName = p.FirstName
	customer.LastName = p.LastName
	customer.Phone = p.Phone

	if p.CreatedAt != "" {
		if customer.PlatformCreatedAt, err = ParseTime(p.CreatedAt); err != nil {
			return nil, fmt.Errorf("customer %s: %w", platformID, err)
		}
	}
	if p.UpdatedAt != "" {
		if customer.PlatformUpdatedAt, err = ParseTime(p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("customer %s: %w", platformID, err)
		}
	}
	return customer, nil
}

// MapOrderPayload maps an orders/* webhook body with its nested lines
func MapOrderPayload(p OrderPayload, tenantID, storeID uuid.UUID) (*trade.Order, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("order payload missing id")
	}
	platformID := strconv.FormatInt(p.ID, 10)
	order, err := trade.NewOrder(tenantID, storeID, platformID)
	if err != nil {
		return nil, err
	}

	order.Name = p.Name
	order.Email = p.Email
	order.Currency = p.Currency
	order.FinancialStatus = mapFinancialStatus(p.FinancialStatus)
	order.FulfillmentStatus = mapFulfillmentState(p.FulfillmentStatus)
	if p.Customer != nil && p.Customer.ID != 0 {
		order.PlatformCustomerID = strconv.FormatInt(p.Customer.ID, 10)
	}

	if order.SubtotalPrice, err = parseMoneyDefault(p.SubtotalPrice); err != nil {
		return nil, fmt.Errorf("order %s: subtotal: %w", platformID, err)
	}
	if order.TotalDiscounts, err = parseMoneyDefault(p.TotalDiscounts); err != nil {
		return nil, fmt.Errorf("order %s: discounts: %w", platformID, err)
	}
	if order.TotalTax, err = parseMoneyDefault(p.TotalTax); err != nil {
		return nil, fmt.Errorf("order %s: tax: %w", platformID, err)
	}
	if order.TotalPrice, err = parseMoneyDefault(p.TotalPrice); err != nil {
		return nil, fmt.Errorf("order %s: total: %w", platformID, err)
	}

	if p.ProcessedAt != "" {
		if order.ProcessedAt, err = ParseTime(p.ProcessedAt); err != nil {
			return nil, fmt.Errorf("order %s: %w", platformID, err)
		}
	}
	if order.CancelledAt, err = ParseTimePtr(p.CancelledAt); err != nil {
		return nil, fmt.Errorf("order %s: %w", platformID, err)
	}
	if order.ClosedAt, err = ParseTimePtr(p.ClosedAt); err != nil {
		return nil, fmt.Errorf("order %s: %w", platformID, err)
	}
	if p.CreatedAt != "" {
		if order.PlatformCreatedAt, err = ParseTime(p.CreatedAt); err != nil {
			return nil, fmt.Errorf("order %s: %w", platformID, err)
		}
	}
	if p.UpdatedAt != "" {
		if order.PlatformUpdatedAt, err = ParseTime(p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("order %s: %w", platformID, err)
		}
	}

	for _, lp := range p.LineItems {
		line, err := mapLineItemPayload(lp, storeID)
		if err != nil {
			return nil, fmt.Errorf("order %s: %w", platformID, err)
		}
		order.LineItems = append(order.LineItems, *line)
	}

	return order, nil
}

func mapLineItemPayload(p LineItemPayload, storeID uuid.UUID) (*trade.LineItem, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("line item payload missing id")
	}
	line := &trade.LineItem{
		StoreID:    storeID,
		PlatformID: strconv.FormatInt(p.ID, 10),
		Title:      p.Title,
		SKU:        p.SKU,
		Quantity:   p.Quantity,
	}
	if p.ProductID != 0 {
		line.PlatformProductID = strconv.FormatInt(p.ProductID, 10)
	}
	if p.VariantID != 0 {
		line.PlatformVariantID = strconv.FormatInt(p.VariantID, 10)
	}

	var err error
	if line.Price, err = parseMoneyDefault(p.Price); err != nil {
		return nil, fmt.Errorf("line %s: %w", line.PlatformID, err)
	}
	if line.TotalDiscount, err = parseMoneyDefault(p.TotalDiscount); err != nil {
		return nil, fmt.Errorf("line %s: %w", line.PlatformID, err)
	}
	return line, nil
}

// MapTransactionPayload maps an order_transactions/create webhook body. The
// returned transaction carries the parent's platform order id in the second
// return; the processor resolves it to an internal order or defers.
func MapTransactionPayload(p TransactionPayload, storeID uuid.UUID) (*trade.Transaction, string, error) {
	if p.ID == 0 {
		return nil, "", fmt.Errorf("transaction payload missing id")
	}
	txn := &trade.Transaction{
		StoreID:    storeID,
		PlatformID: strconv.FormatInt(p.ID, 10),
		Kind:       trade.TransactionKind(strings.ToLower(p.Kind)),
		Status:     strings.ToLower(p.Status),
		Gateway:    p.Gateway,
		Currency:   p.Currency,
	}

	var err error
	if txn.Amount, err = parseMoneyDefault(p.Amount); err != nil {
		return nil, "", fmt.Errorf("transaction %s: %w", txn.PlatformID, err)
	}
	if p.ProcessedAt != "" {
		if txn.ProcessedAt, err = ParseTime(p.ProcessedAt); err != nil {
			return nil, "", fmt.Errorf("transaction %s: %w", txn.PlatformID, err)
		}
	}
	return txn, strconv.FormatInt(p.OrderID, 10), nil
}

// MapRefundPayload maps a refunds/create webhook body. The refund amount is
// the sum of the payload's refund transactions.
func MapRefundPayload(p RefundPayload, storeID uuid.UUID) (*trade.Refund, string, error) {
	if p.ID == 0 {
		return nil, "", fmt.Errorf("refund payload missing id")
	}
	refund := &trade.Refund{
		StoreID:    storeID,
		PlatformID: strconv.FormatInt(p.ID, 10),
		Note:       p.Note,
		Amount:     decimal.Zero,
	}

	for _, t := range p.Transactions {
		amount, err := parseMoneyDefault(t.Amount)
		if err != nil {
			return nil, "", fmt.Errorf("refund %s: %w", refund.PlatformID, err)
		}
		refund.Amount = refund.Amount.Add(amount)
	}

	var err error
	if p.CreatedAt != "" {
		if refund.ProcessedAt, err = ParseTime(p.CreatedAt); err != nil {
			return nil, "", fmt.Errorf("refund %s: %w", refund.PlatformID, err)
		}
	}
	return refund, strconv.FormatInt(p.OrderID, 10), nil
}

// MapFulfillmentPayload maps a fulfillments/* webhook body
func MapFulfillmentPayload(p FulfillmentPayload, storeID uuid.UUID) (*trade.Fulfillment, string, error) {
	if p.ID == 0 {
		return nil, "", fmt.Errorf("fulfillment payload missing id")
	}
	fulfillment := &trade.Fulfillment{
		StoreID:         storeID,
		PlatformID:      strconv.FormatInt(p.ID, 10),
		Status:          strings.ToLower(p.Status),
		TrackingNumber:  p.TrackingNumber,
		TrackingCompany: p.TrackingCompany,
	}

	shipped, err := ParseTimePtr(p.CreatedAt)
	if err != nil {
		return nil, "", fmt.Errorf("fulfillment %s: %w", fulfillment.PlatformID, err)
	}
	fulfillment.ShippedAt = shipped
	return fulfillment, strconv.FormatInt(p.OrderID, 10), nil
}

// MapInventoryLevelPayload maps an inventory_levels/update webhook body
func MapInventoryLevelPayload(p InventoryLevelPayload, tenantID, storeID uuid.UUID) (*catalog.InventoryLevel, error) {
	if p.InventoryItemID == 0 || p.LocationID == 0 {
		return nil, fmt.Errorf("inventory level payload missing item or location id")
	}
	return catalog.NewInventoryLevel(tenantID, storeID,
		strconv.FormatInt(p.InventoryItemID, 10),
		strconv.FormatInt(p.LocationID, 10),
		p.Available)
}

func parseMoneyBag(bag MoneyBag) (decimal.Decimal, error) {
	return parseMoneyDefault(bag.ShopMoney.Amount)
}

// parseMoneyDefault treats an absent amount as zero. Order totals are never
// optional in the domain model, unlike variant compare-at prices.
func parseMoneyDefault(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return ParseMoney(s)
}

func mapProductStatus(s string) catalog.ProductStatus {
	switch strings.ToLower(s) {
	case "draft":
		return catalog.ProductStatusDraft
	case "archived":
		return catalog.ProductStatusArchived
	default:
		return catalog.ProductStatusActive
	}
}

func mapFinancialStatus(s string) trade.FinancialStatus {
	switch strings.ToLower(s) {
	case "authorized":
		return trade.FinancialAuthorized
	case "paid":
		return trade.FinancialPaid
	case "partially_paid":
		return trade.FinancialPartiallyPaid
	case "refunded":
		return trade.FinancialRefunded
	case "partially_refunded":
		return trade.FinancialPartiallyRefunded
	case "voided":
		return trade.FinancialVoided
	default:
		return trade.FinancialPending
	}
}

func mapFulfillmentState(s string) trade.FulfillmentState {
	switch strings.ToLower(s) {
	case "fulfilled":
		return trade.FulfillmentFulfilled
	case "partial", "partially_fulfilled":
		return trade.FulfillmentPartial
	default:
		return trade.FulfillmentUnfulfilled
	}
}
