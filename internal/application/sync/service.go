package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/application/reconcile"
	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/ingest"
	"github.com/storesync/backend/internal/domain/partner"
	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/store"
	"github.com/storesync/backend/internal/domain/trade"
	"github.com/storesync/backend/internal/infrastructure/config"
	"github.com/storesync/backend/internal/infrastructure/shopify"
)

// ResourceFetcher walks cursor pagination for one Admin API resource
type ResourceFetcher interface {
	FetchAll(ctx context.Context, creds shopify.Credentials, res shopify.Resource, filter, startCursor string, handle func(shopify.Page) error) error
}

// MutationNotifier receives the mutated set of a reconciliation pass
type MutationNotifier interface {
	NotifyMutation(ctx context.Context, tenantID, storeID uuid.UUID, mutated *ingest.MutatedSet)
}

// CostRecorder receives per-variant unit costs discovered during the product
// stage, feeding the external margin pipeline
type CostRecorder interface {
	RecordUnitCosts(ctx context.Context, storeID uuid.UUID, costs []shopify.VariantCost) error
}

// Metrics counts pipeline activity: pages fetched and records reconciled.
// A nil Metrics disables recording.
type Metrics interface {
	RecordSyncPage(ctx context.Context, storeID uuid.UUID, resource string)
	RecordReconciled(ctx context.Context, resource string, created, updated, unchanged int64)
}

// Repos bundles the repositories the sync service reconciles into
type Repos struct {
	Stores       store.Repository
	Sessions     store.SyncSessionRepository
	Products     catalog.ProductRepository
	Variants     catalog.VariantRepository
	Levels       catalog.InventoryLevelRepository
	Customers    partner.CustomerRepository
	Orders       trade.OrderRepository
	LineItems    trade.LineItemRepository
	Transactions trade.TransactionRepository
	Refunds      trade.RefundRepository
	Fulfillments trade.FulfillmentRepository
}

// Service runs the bulk synchronization of a store: products, inventory,
// customers, then orders, each stage paged through the adaptive fetcher and
// reconciled with change detection. Session state is persisted after every
// page so an operator can see exactly where a run died.
type Service struct {
	repos    Repos
	cache    store.StatusCache
	fetcher  ResourceFetcher
	notifier MutationNotifier
	costs    CostRecorder
	metrics  Metrics
	config   config.SyncConfig
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

// NewService creates a new sync Service
func NewService(repos Repos, cache store.StatusCache, fetcher ResourceFetcher, notifier MutationNotifier, costs CostRecorder, metrics Metrics, cfg config.SyncConfig, logger *zap.Logger) *Service {
	return &Service{
		repos:    repos,
		cache:    cache,
		fetcher:  fetcher,
		notifier: notifier,
		costs:    costs,
		metrics:  metrics,
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

// RunInitialSync executes a full bulk sync for a store. Stages run in a fixed
// order so parents land before their children. The run aborts as soon as the
// store turns inactive; syncing into a purging store would race the purge.
func (s *Service) RunInitialSync(ctx context.Context, storeID uuid.UUID) (*store.SyncSession, error) {
	st, err := s.repos.Stores.FindByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if !st.Active {
		return nil, shared.ErrStoreInactive
	}

	session := store.NewSyncSession(st.TenantID, st.ID)
	if err := s.repos.Sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("create sync session: %w", err)
	}

	log := s.logger.With(
		zap.String("store_id", st.ID.String()),
		zap.String("shop_domain", st.ShopDomain),
		zap.String("session_id", session.ID.String()),
	)
	log.Info("Bulk sync started")

	creds := shopify.Credentials{ShopDomain: st.ShopDomain, AccessToken: st.AccessToken}
	mutated := ingest.NewMutatedSet()

	for _, stage := range store.Stages() {
		if err := s.runStage(ctx, st, session, creds, stage, mutated); err != nil {
			session.FailStage(stage, err.Error())
			if saveErr := s.repos.Sessions.Save(ctx, session); saveErr != nil {
				log.Error("Failed to persist failed session", zap.Error(saveErr))
			}
			log.Error("Bulk sync failed",
				zap.String("stage", string(stage)),
				zap.Error(err),
			)
			return session, err
		}
	}

	session.Complete()
	if err := s.repos.Sessions.Save(ctx, session); err != nil {
		return session, fmt.Errorf("complete sync session: %w", err)
	}

	st.MarkSynced(time.Now())
	if err := s.repos.Stores.SaveWithLock(ctx, st); err != nil {
		return session, fmt.Errorf("mark store synced: %w", err)
	}
	if err := s.cache.MarkInitialSyncComplete(ctx, st.ID); err != nil {
		log.Warn("Status cache write failed", zap.Error(err))
	}

	s.notifier.NotifyMutation(ctx, st.TenantID, st.ID, mutated)

	log.Info("Bulk sync completed",
		zap.Int("products", session.ProductsSynced),
		zap.Int("inventory", session.InventorySynced),
		zap.Int("customers", session.CustomersSynced),
		zap.Int("orders", session.OrdersSynced),
		zap.Int("pages", session.PagesFetched),
	)
	return session, nil
}

type pageApplier func(ctx context.Context, st *store.Store, nodes []json.RawMessage, mutated *ingest.MutatedSet) error

// recordReconciled forwards one batch outcome to the metrics sink
func recordReconciled[T any](ctx context.Context, m Metrics, resource string, r reconcile.Result[T]) {
	if m == nil {
		return
	}
	m.RecordReconciled(ctx, resource, int64(len(r.Created)), int64(len(r.Updated)), int64(len(r.Unchanged)))
}

func (s *Service) runStage(ctx context.Context, st *store.Store, session *store.SyncSession, creds shopify.Credentials, stage store.Stage, mutated *ingest.MutatedSet) error {
	session.StartStage(stage, s.config.InitialPageSize)
	if err := s.repos.Sessions.Save(ctx, session); err != nil {
		return err
	}

	var (
		res   shopify.Resource
		apply pageApplier
	)
	switch stage {
	case store.StageProducts:
		res, apply = shopify.ProductsResource, s.applyProductsPage
	case store.StageInventory:
		res, apply = shopify.InventoryLevelsResource, s.applyInventoryPage
	case store.StageCustomers:
		res, apply = shopify.CustomersResource, s.applyCustomersPage
	case store.StageOrders:
		res, apply = shopify.OrdersResource, s.applyOrdersPage
	default:
		return fmt.Errorf("unknown sync stage %q", stage)
	}

	err := s.fetcher.FetchAll(ctx, creds, res, "", "", func(page shopify.Page) error {
		// a merchant can uninstall mid-run; stop before the next batch lands
		current, err := s.repos.Stores.FindByID(ctx, st.ID)
		if err != nil {
			return err
		}
		if !current.Active {
			return shared.ErrStoreInactive
		}

		if err := apply(ctx, st, page.Nodes, mutated); err != nil {
			return err
		}
		if s.metrics != nil {
			s.metrics.RecordSyncPage(ctx, st.ID, res.Name)
		}
		session.RecordPage(page.Cursor, page.PageSize, len(page.Nodes))
		return s.repos.Sessions.Save(ctx, session)
	})
	if err != nil {
		return err
	}

	session.CompleteStage(stage)
	return s.repos.Sessions.Save(ctx, session)
}

// applyProductsPage reconciles one page of products with their variants and
// forwards discovered unit costs to the margin pipeline
func (s *Service) applyProductsPage(ctx context.Context, st *store.Store, nodes []json.RawMessage, mutated *ingest.MutatedSet) error {
	var (
		products []*catalog.Product
		variants []*catalog.Variant
		costs    []shopify.VariantCost
	)
	for _, raw := range nodes {
		var node shopify.ProductNode
		if err := json.Unmarshal(raw, &node); err != nil {
			return fmt.Errorf("decode product node: %w", err)
		}
		product, productVariants, productCosts, err := shopify.MapProductNode(node, st.TenantID, st.ID)
		if err != nil {
			// a record without an id can never be applied; skip, don't retry
			s.logger.Warn("Skipping malformed product record", zap.Error(err))
			continue
		}
		products = append(products, product)
		for i := range productVariants {
			variants = append(variants, &productVariants[i])
		}
		costs = append(costs, productCosts...)
	}

	productResult, err := s.products.ReconcileBatch(ctx, st.ID, products)
	if err != nil {
		return err
	}
	recordReconciled(ctx, s.metrics, "products", productResult)
	productIDs := make(map[string]uuid.UUID)
	for _, p := range productResult.Created {
		productIDs[p.PlatformID] = p.ID
		mutated.Add(p.PlatformID)
	}
	for _, p := range productResult.Updated {
		productIDs[p.PlatformID] = p.ID
		mutated.Add(p.PlatformID)
	}
	for _, p := range productResult.Unchanged {
		productIDs[p.PlatformID] = p.ID
	}

	for _, v := range variants {
		v.ProductID = productIDs[v.PlatformProductID]
	}
	variantResult, err := s.variants.ReconcileBatch(ctx, st.ID, variants)
	if err != nil {
		return err
	}
	recordReconciled(ctx, s.metrics, "variants", variantResult)
	for _, v := range variantResult.Created {
		mutated.Add(v.PlatformID)
	}
	for _, v := range variantResult.Updated {
		mutated.Add(v.PlatformID)
	}

	if len(costs) > 0 && s.costs != nil {
		if err := s.costs.RecordUnitCosts(ctx, st.ID, costs); err != nil {
			s.logger.Warn("Unit cost recording failed", zap.Error(err))
		}
	}

	return s.BackfillLineItemLinks(ctx, st.ID, productResult.Created, variantResult.Created)
}

// BackfillLineItemLinks resolves the nullable product reference of order lines
// that arrived before their product did. Shared with the webhook pipeline,
// where a products/create delivery can trail the order that sold it.
func (s *Service) BackfillLineItemLinks(ctx context.Context, storeID uuid.UUID, newProducts []*catalog.Product, newVariants []*catalog.Variant) error {
	if len(newProducts) == 0 {
		return nil
	}
	platformIDs := make([]string, 0, len(newProducts))
	productByPlatform := make(map[string]uuid.UUID, len(newProducts))
	for _, p := range newProducts {
		platformIDs = append(platformIDs, p.PlatformID)
		productByPlatform[p.PlatformID] = p.ID
	}
	variantByPlatform := make(map[string]uuid.UUID, len(newVariants))
	for _, v := range newVariants {
		variantByPlatform[v.PlatformID] = v.ID
	}

	lines, err := s.repos.LineItems.FindUnlinkedByPlatformProductIDs(ctx, storeID, platformIDs)
	if err != nil {
		return fmt.Errorf("find unlinked lines: %w", err)
	}
	for i := range lines {
		line := &lines[i]
		productID, ok := productByPlatform[line.PlatformProductID]
		if !ok {
			continue
		}
		line.ProductID = &productID
		if variantID, ok := variantByPlatform[line.PlatformVariantID]; ok {
			line.VariantID = &variantID
		}
		line.Touch()
		if err := s.repos.LineItems.Save(ctx, line); err != nil {
			return fmt.Errorf("backfill line %s: %w", line.PlatformID, err)
		}
	}
	return nil
}

// applyInventoryPage reconciles per-location levels, then refreshes the
// derived per-variant totals for every item touched in the batch
func (s *Service) applyInventoryPage(ctx context.Context, st *store.Store, nodes []json.RawMessage, mutated *ingest.MutatedSet) error {
	var levels []*catalog.InventoryLevel
	for _, raw := range nodes {
		var node shopify.InventoryLevelNode
		if err := json.Unmarshal(raw, &node); err != nil {
			return fmt.Errorf("decode inventory node: %w", err)
		}
		level, err := shopify.MapInventoryLevelNode(node, st.TenantID, st.ID)
		if err != nil {
			s.logger.Warn("Skipping malformed inventory record", zap.Error(err))
			continue
		}
		levels = append(levels, level)
	}

	result, err := s.levels.ReconcileBatch(ctx, st.ID, levels)
	if err != nil {
		return err
	}
	recordReconciled(ctx, s.metrics, "inventory_levels", result)

	touchedItems := make([]string, 0, result.MutatedCount())
	for _, l := range result.Created {
		mutated.Add(l.InventoryItemID + "|" + l.LocationID)
		touchedItems = append(touchedItems, l.InventoryItemID)
	}
	for _, l := range result.Updated {
		mutated.Add(l.InventoryItemID + "|" + l.LocationID)
		touchedItems = append(touchedItems, l.InventoryItemID)
	}

	return s.RefreshVariantTotals(ctx, st.ID, touchedItems)
}

// RefreshVariantTotals recomputes the derived total quantity of the variants
// owning the given inventory items. One grouped sum per batch, not per item.
func (s *Service) RefreshVariantTotals(ctx context.Context, storeID uuid.UUID, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}
	variants, err := s.repos.Variants.FindByInventoryItemIDs(ctx, storeID, itemIDs)
	if err != nil {
		return fmt.Errorf("find variants by items: %w", err)
	}
	if len(variants) == 0 {
		return nil
	}
	sums, err := s.repos.Levels.SumByItemIDs(ctx, storeID, itemIDs)
	if err != nil {
		return fmt.Errorf("sum inventory levels: %w", err)
	}

	for i := range variants {
		v := &variants[i]
		total := sums[v.InventoryItemID]
		if v.InventoryQuantity == total {
			continue
		}
		v.InventoryQuantity = total
		v.Touch()
		v.IncrementVersion()
		if err := s.repos.Variants.Save(ctx, v); err != nil {
			return fmt.Errorf("save variant total %s: %w", v.PlatformID, err)
		}
	}
	return nil
}

// applyCustomersPage reconciles one page of customers
func (s *Service) applyCustomersPage(ctx context.Context, st *store.Store, nodes []json.RawMessage, mutated *ingest.MutatedSet) error {
	var customers []*partner.Customer
	for _, raw := range nodes {
		var node shopify.CustomerNode
		if err := json.Unmarshal(raw, &node); err != nil {
			return fmt.Errorf("decode customer node: %w", err)
		}
		customer, err := shopify.MapCustomerNode(node, st.TenantID, st.ID)
		if err != nil {
			s.logger.Warn("Skipping malformed customer record", zap.Error(err))
			continue
		}
		customers = append(customers, customer)
	}

	result, err := s.customers.ReconcileBatch(ctx, st.ID, customers)
	if err != nil {
		return err
	}
	recordReconciled(ctx, s.metrics, "customers", result)
	for _, c := range result.Created {
		mutated.Add(c.PlatformID)
	}
	for _, c := range result.Updated {
		mutated.Add(c.PlatformID)
	}
	return nil
}

// applyOrdersPage reconciles one page of orders with all their children and
// folds newly created orders into the customer aggregates
func (s *Service) applyOrdersPage(ctx context.Context, st *store.Store, nodes []json.RawMessage, mutated *ingest.MutatedSet) error {
	var incoming []*trade.Order
	for _, raw := range nodes {
		var node shopify.OrderNode
		if err := json.Unmarshal(raw, &node); err != nil {
			return fmt.Errorf("decode order node: %w", err)
		}
		order, err := shopify.MapOrderNode(node, st.TenantID, st.ID)
		if err != nil {
			s.logger.Warn("Skipping malformed order record", zap.Error(err))
			continue
		}
		incoming = append(incoming, order)
	}
	if len(incoming) == 0 {
		return nil
	}

	// resolve customer links before the upsert so created rows land linked
	customerByPlatform, err := s.resolveCustomers(ctx, st.ID, incoming)
	if err != nil {
		return err
	}
	for _, o := range incoming {
		if c, ok := customerByPlatform[o.PlatformCustomerID]; ok {
			id := c.ID
			o.CustomerID = &id
		}
	}

	result, err := s.orders.ReconcileBatch(ctx, st.ID, incoming)
	if err != nil {
		return err
	}
	recordReconciled(ctx, s.metrics, "orders", result)

	orderIDs := make(map[string]uuid.UUID)
	createdKeys := make(map[string]struct{}, len(result.Created))
	for _, o := range result.Created {
		orderIDs[o.PlatformID] = o.ID
		createdKeys[o.PlatformID] = struct{}{}
		mutated.Add(o.PlatformID)
		mutated.AddDate(o.AffectedDate())
	}
	for _, o := range result.Updated {
		orderIDs[o.PlatformID] = o.ID
		mutated.Add(o.PlatformID)
		mutated.AddDate(o.AffectedDate())
	}
	for _, o := range result.Unchanged {
		orderIDs[o.PlatformID] = o.ID
	}

	// customer aggregates move only on creation; updates would double-count
	touchedCustomers := make(map[string]*partner.Customer)
	for _, o := range incoming {
		if _, isNew := createdKeys[o.PlatformID]; !isNew {
			continue
		}
		if c, ok := customerByPlatform[o.PlatformCustomerID]; ok {
			c.ApplyOrder(o.TotalPrice)
			touchedCustomers[c.PlatformID] = c
		}
	}
	for _, c := range touchedCustomers {
		if err := s.repos.Customers.Save(ctx, c); err != nil {
			return fmt.Errorf("save customer aggregates %s: %w", c.PlatformID, err)
		}
	}

	return s.reconcileOrderChildren(ctx, st.ID, incoming, orderIDs, mutated)
}

func (s *Service) resolveCustomers(ctx context.Context, storeID uuid.UUID, orders []*trade.Order) (map[string]*partner.Customer, error) {
	seen := make(map[string]struct{})
	var platformIDs []string
	for _, o := range orders {
		if o.PlatformCustomerID == "" {
			continue
		}
		if _, dup := seen[o.PlatformCustomerID]; dup {
			continue
		}
		seen[o.PlatformCustomerID] = struct{}{}
		platformIDs = append(platformIDs, o.PlatformCustomerID)
	}
	if len(platformIDs) == 0 {
		return map[string]*partner.Customer{}, nil
	}

	customers, err := s.repos.Customers.FindByPlatformIDs(ctx, storeID, platformIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve order customers: %w", err)
	}
	byPlatform := make(map[string]*partner.Customer, len(customers))
	for i := range customers {
		byPlatform[customers[i].PlatformID] = &customers[i]
	}
	return byPlatform, nil
}

// reconcileOrderChildren batches lines, transactions, refunds and fulfillments
// of a whole page into one reconciliation pass per child type
func (s *Service) reconcileOrderChildren(ctx context.Context, storeID uuid.UUID, orders []*trade.Order, orderIDs map[string]uuid.UUID, mutated *ingest.MutatedSet) error {
	var (
		lines        []*trade.LineItem
		transactions []*trade.Transaction
		refunds      []*trade.Refund
		fulfillments []*trade.Fulfillment
	)
	for _, o := range orders {
		orderID, ok := orderIDs[o.PlatformID]
		if !ok {
			continue
		}
		for i := range o.LineItems {
			o.LineItems[i].OrderID = orderID
			lines = append(lines, &o.LineItems[i])
		}
		for i := range o.Transactions {
			o.Transactions[i].OrderID = orderID
			transactions = append(transactions, &o.Transactions[i])
		}
		for i := range o.Refunds {
			o.Refunds[i].OrderID = orderID
			refunds = append(refunds, &o.Refunds[i])
		}
		for i := range o.Fulfillments {
			o.Fulfillments[i].OrderID = orderID
			fulfillments = append(fulfillments, &o.Fulfillments[i])
		}
	}

	if err := s.LinkLineProducts(ctx, storeID, lines); err != nil {
		return err
	}
	lineResult, err := s.lineItems.ReconcileBatch(ctx, storeID, lines)
	if err != nil {
		return fmt.Errorf("reconcile lines: %w", err)
	}
	recordReconciled(ctx, s.metrics, "line_items", lineResult)
	txnResult, err := s.transactions.ReconcileBatch(ctx, storeID, transactions)
	if err != nil {
		return fmt.Errorf("reconcile transactions: %w", err)
	}
	recordReconciled(ctx, s.metrics, "transactions", txnResult)
	refundResult, err := s.refunds.ReconcileBatch(ctx, storeID, refunds)
	if err != nil {
		return fmt.Errorf("reconcile refunds: %w", err)
	}
	recordReconciled(ctx, s.metrics, "refunds", refundResult)
	fulfillResult, err := s.fulfillments.ReconcileBatch(ctx, storeID, fulfillments)
	if err != nil {
		return fmt.Errorf("reconcile fulfillments: %w", err)
	}
	recordReconciled(ctx, s.metrics, "fulfillments", fulfillResult)

	for _, t := range append(txnResult.Created, txnResult.Updated...) {
		mutated.Add(t.PlatformID)
		mutated.AddDate(t.ProcessedAt)
	}
	for _, r := range append(refundResult.Created, refundResult.Updated...) {
		mutated.Add(r.PlatformID)
		mutated.AddDate(r.ProcessedAt)
	}
	return nil
}

// LinkLineProducts resolves the best-effort product references of incoming
// lines against products that already landed. Unresolvable references stay
// nil and are backfilled when the product arrives.
func (s *Service) LinkLineProducts(ctx context.Context, storeID uuid.UUID, lines []*trade.LineItem) error {
	seenProducts := make(map[string]struct{})
	seenVariants := make(map[string]struct{})
	var productIDs, variantIDs []string
	for _, line := range lines {
		if line.PlatformProductID != "" {
			if _, dup := seenProducts[line.PlatformProductID]; !dup {
				seenProducts[line.PlatformProductID] = struct{}{}
				productIDs = append(productIDs, line.PlatformProductID)
			}
		}
		if line.PlatformVariantID != "" {
			if _, dup := seenVariants[line.PlatformVariantID]; !dup {
				seenVariants[line.PlatformVariantID] = struct{}{}
				variantIDs = append(variantIDs, line.PlatformVariantID)
			}
		}
	}
	if len(productIDs) == 0 && len(variantIDs) == 0 {
		return nil
	}

	productByPlatform := make(map[string]uuid.UUID)
	if len(productIDs) > 0 {
		products, err := s.repos.Products.FindByPlatformIDs(ctx, storeID, productIDs)
		if err != nil {
			return fmt.Errorf("resolve line products: %w", err)
		}
		for i := range products {
			productByPlatform[products[i].PlatformID] = products[i].ID
		}
	}
	variantByPlatform := make(map[string]uuid.UUID)
	if len(variantIDs) > 0 {
		variants, err := s.repos.Variants.FindByPlatformIDs(ctx, storeID, variantIDs)
		if err != nil {
			return fmt.Errorf("resolve line variants: %w", err)
		}
		for i := range variants {
			variantByPlatform[variants[i].PlatformID] = variants[i].ID
		}
	}

	for _, line := range lines {
		if id, ok := productByPlatform[line.PlatformProductID]; ok {
			productID := id
			line.ProductID = &productID
		}
		if id, ok := variantByPlatform[line.PlatformVariantID]; ok {
			variantID := id
			line.VariantID = &variantID
		}
	}
	return nil
}
