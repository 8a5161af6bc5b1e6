package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/application/reconcile"
	"github.com/storesync/backend/internal/application/sync"
	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/ingest"
	"github.com/storesync/backend/internal/domain/partner"
	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/store"
	"github.com/storesync/backend/internal/domain/trade"
	"github.com/storesync/backend/internal/infrastructure/config"
	"github.com/storesync/backend/internal/infrastructure/shopify"
)

// Delivery is one verified webhook delivery handed in by the HTTP layer.
// Signature verification already happened; the processor only cares about
// identity and payload.
type Delivery struct {
	EventID    string
	Topic      string
	ShopDomain string
	Payload    []byte
}

// Archiver persists the payload of an abandoned webhook for later forensics
type Archiver interface {
	Store(ctx context.Context, key string, data []byte) error
}

// OffboardQueue accepts stores whose mirrored data must be purged
type OffboardQueue interface {
	Enqueue(ctx context.Context, storeID uuid.UUID) error
}

// CatalogLinker exposes the derived-data maintenance shared with the bulk
// sync: per-variant inventory totals and the nullable line-to-product links
type CatalogLinker interface {
	RefreshVariantTotals(ctx context.Context, storeID uuid.UUID, itemIDs []string) error
	BackfillLineItemLinks(ctx context.Context, storeID uuid.UUID, newProducts []*catalog.Product, newVariants []*catalog.Variant) error
	LinkLineProducts(ctx context.Context, storeID uuid.UUID, lines []*trade.LineItem) error
}

var _ CatalogLinker = (*sync.Service)(nil)

// Processor applies incoming webhook deliveries to the mirrored data set.
// Every delivery is recorded in the durable receipt ledger before any work
// happens, so redeliveries short-circuit as duplicates. Deliveries whose
// parent entity has not landed yet are deferred into the retry queue instead
// of being dropped.
type Processor struct {
	repos    sync.Repos
	ledger   ingest.ReceiptLedger
	fastPath shared.IdempotencyStore
	pending  ingest.PendingWebhookRepository
	notifier sync.MutationNotifier
	linker   CatalogLinker
	offboard OffboardQueue
	config   config.WebhookConfig
	logger   *zap.Logger

	products     *reconcile.Reconciler[catalog.Product]
	variants     *reconcile.Reconciler[catalog.Variant]
	levels       *reconcile.Reconciler[catalog.InventoryLevel]
	customers    *reconcile.Reconciler[partner.Customer]
	orders       *reconcile.Reconciler[trade.Order]
	lineItems    *reconcile.Reconciler[trade.LineItem]
	transactions *reconcile.Reconciler[trade.Transaction]
	refunds      *reconcile.Reconciler[trade.Refund]
	fulfillments *reconcile.Reconciler[trade.Fulfillment]
}

// NewProcessor creates a webhook Processor. fastPath may be nil; the durable
// ledger alone is then the only duplicate gate.
func NewProcessor(repos sync.Repos, ledger ingest.ReceiptLedger, fastPath shared.IdempotencyStore, pending ingest.PendingWebhookRepository, notifier sync.MutationNotifier, linker CatalogLinker, offboard OffboardQueue, cfg config.WebhookConfig, logger *zap.Logger) *Processor {
	return &Processor{
		repos:    repos,
		ledger:   ledger,
		fastPath: fastPath,
		pending:  pending,
		notifier: notifier,
		linker:   linker,
		offboard: offboard,
		config:   cfg,
		logger:   logger,

		products:     reconcile.ForProducts(repos.Products),
		variants:     reconcile.ForVariants(repos.Variants),
		levels:       reconcile.ForInventoryLevels(repos.Levels),
		customers:    reconcile.ForCustomers(repos.Customers),
		orders:       reconcile.ForOrders(repos.Orders),
		lineItems:    reconcile.ForLineItems(repos.LineItems),
		transactions: reconcile.ForTransactions(repos.Transactions),
		refunds:      reconcile.ForRefunds(repos.Refunds),
		fulfillments: reconcile.ForFulfillments(repos.Fulfillments),
	}
}

// HandleDelivery processes one delivery end to end: duplicate gate, store
// lookup, topic dispatch, deferral bookkeeping, recompute notification.
// A non-nil error means nothing conclusive happened and the platform should
// redeliver; every other path acknowledges the delivery.
func (p *Processor) HandleDelivery(ctx context.Context, d Delivery) (ingest.ApplyResult, error) {
	if d.EventID == "" || d.Topic == "" || d.ShopDomain == "" {
		return ingest.ApplyResult{}, shared.NewDomainError("INVALID_DELIVERY", "Webhook delivery is missing identifying headers")
	}
	log := p.logger.With(
		zap.String("event_id", d.EventID),
		zap.String("topic", d.Topic),
		zap.String("shop_domain", d.ShopDomain),
	)

	if p.fastPath != nil {
		seen, err := p.fastPath.IsProcessed(ctx, deliveryKey(d))
		if err != nil {
			log.Warn("Idempotency cache read failed", zap.Error(err))
		} else if seen {
			return ingest.Duplicate(), nil
		}
	}

	fresh, err := p.ledger.RecordOrReject(ctx, d.EventID, d.Topic, d.ShopDomain)
	if err != nil {
		return ingest.ApplyResult{}, fmt.Errorf("record webhook receipt: %w", err)
	}
	if !fresh {
		p.markProcessed(ctx, d, log)
		return ingest.Duplicate(), nil
	}

	st, err := p.repos.Stores.FindByShopDomain(ctx, d.ShopDomain)
	if errors.Is(err, shared.ErrNotFound) {
		// acknowledged, not retried: the platform keeps sending GDPR topics
		// after the shop row is gone
		log.Warn("Webhook for unknown shop dropped")
		return ingest.Applied(), nil
	}
	if err != nil {
		return ingest.ApplyResult{}, err
	}

	mutated := ingest.NewMutatedSet()
	result, err := p.apply(ctx, st, d, mutated)
	if err != nil {
		return result, err
	}

	if result.Outcome == ingest.OutcomeDeferred {
		pw := ingest.NewPendingWebhook(st.TenantID, st.ID, d.EventID, d.Topic, d.ShopDomain, d.Payload, p.config.MaxAttempts, p.config.RetryDelay)
		pw.LastError = result.Reason
		if err := p.pending.Save(ctx, pw); err != nil {
			return result, fmt.Errorf("defer webhook: %w", err)
		}
		log.Info("Webhook deferred", zap.String("reason", result.Reason))
	}

	if !mutated.Empty() {
		p.notifier.NotifyMutation(ctx, st.TenantID, st.ID, mutated)
	}
	p.markProcessed(ctx, d, log)
	return result, nil
}

func deliveryKey(d Delivery) string {
	return d.ShopDomain + ":" + d.Topic + ":" + d.EventID
}

func (p *Processor) markProcessed(ctx context.Context, d Delivery, log *zap.Logger) {
	if p.fastPath == nil {
		return
	}
	if _, err := p.fastPath.MarkProcessed(ctx, deliveryKey(d), p.config.ReceiptTTL); err != nil {
		log.Warn("Idempotency cache write failed", zap.Error(err))
	}
}

// apply dispatches one delivery by topic. Lifecycle topics run even for an
// inactive store; data topics are dropped, they would race the purge.
func (p *Processor) apply(ctx context.Context, st *store.Store, d Delivery, mutated *ingest.MutatedSet) (ingest.ApplyResult, error) {
	switch d.Topic {
	case shopify.TopicAppUninstalled:
		return p.applyUninstall(ctx, st)
	case shopify.TopicCustomersRedact:
		return p.applyCustomerRedact(ctx, st, d)
	case shopify.TopicShopRedact:
		return p.applyShopRedact(ctx, st)
	}

	if !st.Active {
		p.logger.Warn("Webhook for inactive store dropped",
			zap.String("event_id", d.EventID),
			zap.String("topic", d.Topic),
		)
		return ingest.Applied(), nil
	}

	switch d.Topic {
	case shopify.TopicProductsCreate, shopify.TopicProductsUpdate:
		return p.applyProduct(ctx, st, d, mutated)
	case shopify.TopicProductsDelete:
		return p.applyProductDelete(ctx, st, d, mutated)
	case shopify.TopicCustomersCreate, shopify.TopicCustomersUpdate:
		return p.applyCustomer(ctx, st, d, mutated)
	case shopify.TopicCustomersDelete:
		return p.applyCustomerDelete(ctx, st, d, mutated)
	case shopify.TopicOrdersCreate, shopify.TopicOrdersUpdated, shopify.TopicOrdersCancelled:
		return p.applyOrder(ctx, st, d, mutated)
	case shopify.TopicOrderTransactions:
		return p.applyTransaction(ctx, st, d, mutated)
	case shopify.TopicRefundsCreate:
		return p.applyRefund(ctx, st, d, mutated)
	case shopify.TopicFulfillmentsCreate, shopify.TopicFulfillmentsUpdate:
		return p.applyFulfillment(ctx, st, d, mutated)
	case shopify.TopicInventoryLevelsUpdate:
		return p.applyInventoryLevel(ctx, st, d, mutated)
	default:
		p.logger.Info("Ignoring unhandled webhook topic", zap.String("topic", d.Topic))
		return ingest.Applied(), nil
	}
}

// discardMalformed acknowledges a payload that can never be applied.
// Redelivery would fail identically, so retrying is pointless.
func (p *Processor) discardMalformed(d Delivery, err error) (ingest.ApplyResult, error) {
	p.logger.Warn("Discarding malformed webhook payload",
		zap.String("event_id", d.EventID),
		zap.String("topic", d.Topic),
		zap.Error(err),
	)
	return ingest.Applied(), nil
}

func (p *Processor) applyProduct(ctx context.Context, st *store.Store, d Delivery, mutated *ingest.MutatedSet) (ingest.ApplyResult, error) {
	var payload shopify.ProductPayload
	if err := json.Unmarshal(d.Payload, &payload); err != nil {
		return p.discardMalformed(d, err)
	}
	product, variants, err := shopify.MapProductPayload(payload, st.TenantID, st.ID)
	if err != nil {
		return p.discardMalformed(d, err)
	}

	productResult, err := p.products.ReconcileOne(ctx, st.ID, product)
	if err != nil {
		return ingest.ApplyResult{}, err
	}
	productID := firstID(productResult, func(p *catalog.Product) uuid.UUID { return p.ID })
	for _, pr := range productResult.Created {
		mutated.Add(pr.PlatformID)
	}
	for _, pr := range productResult.Updated {
		mutated.Add(pr.PlatformID)
	}

	incoming := make([]*catalog.Variant, 0, len(variants))
	for i := range variants {
		variants[i].ProductID = productID
		incoming = append(incoming, &variants[i])
	}
	variantResult, err := p.variants.ReconcileBatch(ctx, st.ID, incoming)
	if err != nil {
		return ingest.ApplyResult{}, err
	}
	for _, v := range variantResult.Created {
		mutated.Add(v.PlatformID)
	}
	for _, v := range variantResult.Updated {
		mutated.Add(v.PlatformID)
	}

	if err := p.linker.BackfillLineItemLinks(ctx, st.ID, productResult.Created, variantResult.Created); err != nil {
		return ingest.ApplyResult{}, err
	}
	return ingest.Applied(), nil
}

// firstID extracts the internal id of the reconciled row, whichever partition
// it landed in
func firstID[T any](r reconcile.Result[T], id func(*T) uuid.UUID) uuid.UUID {
	for _, lst := range [][]*T{r.Created, r.Updated, r.Unchanged} {
		if len(lst) > 0 {
			return id(lst[0])
		}
	}
	return uuid.Nil
}

func (p *Processor) applyProductDelete(ctx context.Context, st *store.Store, d Delivery, mutated *ingest.MutatedSet) (ingest.ApplyResult, error) {
	var payload shopify.DeletePayload
	if err := json.Unmarshal(d.Payload, &payload); err != nil {
		return p.discardMalformed(d, err)
	}
	if payload.ID == 0 {
		return p.discardMalformed(d, fmt.Errorf("delete payload missing id"))
	}
	platformID := strconv.FormatInt(payload.ID, 10)

	product, err := p.repos.Products.FindByPlatformID(ctx, st.ID, platformID)
	if errors.Is(err, shared.ErrNotFound) {
		return ingest.Applied(), nil // already gone
	}
	if err != nil {
		return ingest.ApplyResult{}, err
	}

	if err := p.repos.Variants.DeleteByProductID(ctx, product.ID); err != nil {
		return ingest.ApplyResult{}, fmt.Errorf("delete variants of %s: %w", platformID, err)
	}
	if err := p.repos.Products.DeleteByPlatformID(ctx, st.ID, platformID); err != nil {
		return ingest.ApplyResult{}, fmt.Errorf("delete product %s: %w", platformID, err)
	}
	mutated.Add(platformID)
	return ingest.Applied(), nil
}

func (p *Processor) applyCustomer(ctx context.Context, st *store.Store, d Delivery, mutated *ingest.MutatedSet) (ingest.ApplyResult, error) {
	var payload shopify.CustomerPayload
	if err := json.Unmarshal(d.Payload, &payload); err != nil {
		return p.discardMalformed(d, err)
	}
	customer, err := shopify.MapCustomerPayload(payload, st.TenantID, st.ID)
	if err != nil {
		return p.discardMalformed(d, err)
	}

	result, err := p.customers.ReconcileOne(ctx, st.ID, customer)
	if err != nil {
		return ingest.ApplyResult{}, err
	}
	for _, c := range result.Created {
		mutated.Add(c.PlatformID)
	}
	for _, c := range result.Updated {
		mutated.Add(c.PlatformID)
	}
	return ingest.Applied(), nil
}

func (p *Processor) applyCustomerDelete(ctx context.Context, st *store.Store, d Delivery, mutated *ingest.MutatedSet) (ingest.ApplyResult, error) {
	var payload shopify.DeletePayload
	if err := json.Unmarshal(d.Payload, &payload); err != nil {
		return p.discardMalformed(d, err)
	}
	if payload.ID == 0 {
		return p.discardMalformed(d, fmt.Errorf("delete payload missing id"))
	}
	platformID := strconv.FormatInt(payload.ID, 10)
	if err := p.repos.Customers.DeleteByPlatformID(ctx, st.ID, platformID); err != nil {
		return ingest.ApplyResult{}, err
	}
	mutated.Add(platformID)
	return ingest.Applied(), nil
}

func (p *Processor) applyOrder(ctx context.Context, st *store.Store, d Delivery, mutated *ingest.MutatedSet) (ingest.ApplyResult, error) {
	var payload shopify.OrderPayload
	if err := json.Unmarshal(d.Payload, &payload); err != nil {
		return p.discardMalformed(d, err)
	}
	order, err := shopify.MapOrderPayload(payload, st.TenantID, st.ID)
	if err != nil {
		return p.discardMalformed(d, err)
	}

	// the customer is a weak reference: an order never waits on it. The
	// payload embeds the customer object, so mirror it first when the row is
	// missing; failing that the order lands with a null link and a later
	// customers webhook tightens it.
	var customer *partner.Customer
	if order.PlatformCustomerID != "" {
		customer, err = p.repos.Customers.FindByPlatformID(ctx, st.ID, order.PlatformCustomerID)
		if errors.Is(err, shared.ErrNotFound) {
			customer, err = p.mirrorEmbeddedCustomer(ctx, st, payload.Customer, mutated)
		}
		if err != nil {
			return ingest.ApplyResult{}, err
		}
		if customer != nil {
			id := customer.ID
			order.CustomerID = &id
		}
	}

	result, err := p.orders.ReconcileOne(ctx, st.ID, order)
	if err != nil {
		return ingest.ApplyResult{}, err
	}
	for _, o := range result.Created {
		mutated.Add(o.PlatformID)
		mutated.AddDate(o.AffectedDate())
	}
	for _, o := range result.Updated {
		mutated.Add(o.PlatformID)
		mutated.AddDate(o.AffectedDate())
	}

	if len(result.Created) > 0 && customer != nil {
		customer.ApplyOrder(order.TotalPrice)
		if err := p.repos.Customers.Save(ctx, customer); err != nil {
			return ingest.ApplyResult{}, fmt.Errorf("save customer aggregates: %w", err)
		}
	}

	orderID := firstID(result, func(o *trade.Order) uuid.UUID { return o.ID })
	lines := make([]*trade.LineItem, 0, len(order.LineItems))
	for i := range order.LineItems {
		order.LineItems[i].OrderID = orderID
		lines = append(lines, &order.LineItems[i])
	}
	if err := p.linker.LinkLineProducts(ctx, st.ID, lines); err != nil {
		return ingest.ApplyResult{}, err
	}
	if _, err := p.lineItems.ReconcileBatch(ctx, st.ID, lines); err != nil {
		return ingest.ApplyResult{}, fmt.Errorf("reconcile lines: %w", err)
	}
	return ingest.Applied(), nil
}

// mirrorEmbeddedCustomer reconciles the customer object nested in an order
// payload so the order can link to it immediately. An unusable embed is not an
// error; the order then carries a null customer link.
func (p *Processor) mirrorEmbeddedCustomer(ctx context.Context, st *store.Store, payload *shopify.CustomerPayload, mutated *ingest.MutatedSet) (*partner.Customer, error) {
	if payload == nil || payload.ID == 0 {
		return nil, nil
	}
	customer, err := shopify.MapCustomerPayload(*payload, st.TenantID, st.ID)
	if err != nil {
		p.logger.Warn("Embedded customer unusable, order keeps a null link", zap.Error(err))
		return nil, nil
	}
	result, err := p.customers.ReconcileOne(ctx, st.ID, customer)
	if err != nil {
		return nil, err
	}
	for _, c := range result.Created {
		mutated.Add(c.PlatformID)
	}
	for _, c := range result.Updated {
		mutated.Add(c.PlatformID)
	}
	for _, lst := range [][]*partner.Customer{result.Created, result.Updated, result.Unchanged} {
		if len(lst) > 0 {
			return lst[0], nil
		}
	}
	return nil, nil
}

func (p *Processor) applyTransaction(ctx context.Context, st *store.Store, d Delivery, mutated *ingest.MutatedSet) (ingest.ApplyResult, error) {
	var payload shopify.TransactionPayload
	if err := json.Unmarshal(d.Payload, &payload); err != nil {
		return p.discardMalformed(d, err)
	}
	txn, orderRef, err := shopify.MapTransactionPayload(payload, st.ID)
	if err != nil {
		return p.discardMalformed(d, err)
	}

	parent, err := p.repos.Orders.FindByPlatformID(ctx, st.ID, orderRef)
	if errors.Is(err, shared.ErrNotFound) {
		return ingest.Deferred(fmt.Sprintf("order %s not mirrored yet", orderRef), 0), nil
	}
	if err != nil {
		return ingest.ApplyResult{}, err
	}
	txn.OrderID = parent.ID

	result, err := p.transactions.ReconcileOne(ctx, st.ID, txn)
	if err != nil {
		return ingest.ApplyResult{}, err
	}
	for _, t := range result.Created {
		mutated.Add(t.PlatformID)
		mutated.AddDate(t.ProcessedAt)
	}
	for _, t := range result.Updated {
		mutated.Add(t.PlatformID)
		mutated.AddDate(t.ProcessedAt)
	}
	return ingest.Applied(), nil
}

func (p *Processor) applyRefund(ctx context.Context, st *store.Store, d Delivery, mutated *ingest.MutatedSet) (ingest.ApplyResult, error) {
	var payload shopify.RefundPayload
	if err := json.Unmarshal(d.Payload, &payload); err != nil {
		return p.discardMalformed(d, err)
	}
	refund, orderRef, err := shopify.MapRefundPayload(payload, st.ID)
	if err != nil {
		return p.discardMalformed(d, err)
	}

	parent, err := p.repos.Orders.FindByPlatformID(ctx, st.ID, orderRef)
	if errors.Is(err, shared.ErrNotFound) {
		return ingest.Deferred(fmt.Sprintf("order %s not mirrored yet", orderRef), 0), nil
	}
	if err != nil {
		return ingest.ApplyResult{}, err
	}
	refund.OrderID = parent.ID

	result, err := p.refunds.ReconcileOne(ctx, st.ID, refund)
	if err != nil {
		return ingest.ApplyResult{}, err
	}
	for _, r := range result.Created {
		mutated.Add(r.PlatformID)
		mutated.AddDate(r.ProcessedAt)
	}
	for _, r := range result.Updated {
		mutated.Add(r.PlatformID)
		mutated.AddDate(r.ProcessedAt)
	}
	return ingest.Applied(), nil
}

func (p *Processor) applyFulfillment(ctx context.Context, st *store.Store, d Delivery, mutated *ingest.MutatedSet) (ingest.ApplyResult, error) {
	var payload shopify.FulfillmentPayload
	if err := json.Unmarshal(d.Payload, &payload); err != nil {
		return p.discardMalformed(d, err)
	}
	fulfillment, orderRef, err := shopify.MapFulfillmentPayload(payload, st.ID)
	if err != nil {
		return p.discardMalformed(d, err)
	}

	parent, err := p.repos.Orders.FindByPlatformID(ctx, st.ID, orderRef)
	if errors.Is(err, shared.ErrNotFound) {
		return ingest.Deferred(fmt.Sprintf("order %s not mirrored yet", orderRef), 0), nil
	}
	if err != nil {
		return ingest.ApplyResult{}, err
	}
	fulfillment.OrderID = parent.ID

	result, err := p.fulfillments.ReconcileOne(ctx, st.ID, fulfillment)
	if err != nil {
		return ingest.ApplyResult{}, err
	}
	for _, f := range result.Created {
		mutated.Add(f.PlatformID)
	}
	for _, f := range result.Updated {
		mutated.Add(f.PlatformID)
	}
	return ingest.Applied(), nil
}

func (p *Processor) applyInventoryLevel(ctx context.Context, st *store.Store, d Delivery, mutated *ingest.MutatedSet) (ingest.ApplyResult, error) {
	var payload shopify.InventoryLevelPayload
	if err := json.Unmarshal(d.Payload, &payload); err != nil {
		return p.discardMalformed(d, err)
	}
	level, err := shopify.MapInventoryLevelPayload(payload, st.TenantID, st.ID)
	if err != nil {
		return p.discardMalformed(d, err)
	}

	result, err := p.levels.ReconcileOne(ctx, st.ID, level)
	if err != nil {
		return ingest.ApplyResult{}, err
	}
	if result.MutatedCount() > 0 {
		mutated.Add(level.InventoryItemID + "|" + level.LocationID)
		if err := p.linker.RefreshVariantTotals(ctx, st.ID, []string{level.InventoryItemID}); err != nil {
			return ingest.ApplyResult{}, err
		}
	}
	return ingest.Applied(), nil
}

func (p *Processor) applyUninstall(ctx context.Context, st *store.Store) (ingest.ApplyResult, error) {
	if st.Active {
		st.Deactivate()
		if err := p.repos.Stores.SaveWithLock(ctx, st); err != nil {
			return ingest.ApplyResult{}, fmt.Errorf("deactivate store: %w", err)
		}
	}
	if err := p.offboard.Enqueue(ctx, st.ID); err != nil {
		return ingest.ApplyResult{}, fmt.Errorf("enqueue offboarding: %w", err)
	}
	p.logger.Info("Store uninstalled, offboarding queued",
		zap.String("store_id", st.ID.String()),
		zap.String("shop_domain", st.ShopDomain),
	)
	return ingest.Applied(), nil
}

func (p *Processor) applyCustomerRedact(ctx context.Context, st *store.Store, d Delivery) (ingest.ApplyResult, error) {
	var payload shopify.RedactPayload
	if err := json.Unmarshal(d.Payload, &payload); err != nil {
		return p.discardMalformed(d, err)
	}
	if payload.Customer == nil || payload.Customer.ID == 0 {
		return p.discardMalformed(d, fmt.Errorf("redact payload missing customer"))
	}
	platformID := strconv.FormatInt(payload.Customer.ID, 10)
	if err := p.repos.Customers.DeleteByPlatformID(ctx, st.ID, platformID); err != nil {
		return ingest.ApplyResult{}, err
	}
	p.logger.Info("Customer redacted",
		zap.String("store_id", st.ID.String()),
		zap.String("platform_customer_id", platformID),
	)
	return ingest.Applied(), nil
}

func (p *Processor) applyShopRedact(ctx context.Context, st *store.Store) (ingest.ApplyResult, error) {
	if err := p.offboard.Enqueue(ctx, st.ID); err != nil {
		return ingest.ApplyResult{}, fmt.Errorf("enqueue offboarding: %w", err)
	}
	return ingest.Applied(), nil
}
