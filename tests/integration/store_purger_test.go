package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/ingest"
	"github.com/storesync/backend/internal/domain/partner"
	"github.com/storesync/backend/internal/domain/trade"
	"github.com/storesync/backend/internal/infrastructure/persistence"
)

// seedStoreData inserts a small mirrored dataset for one store
func seedStoreData(t *testing.T, tdb *TestDB, tenantID, storeID uuid.UUID, prefix string) {
	t.Helper()
	ctx := context.Background()

	products := persistence.NewGormProductRepository(tdb.DB)
	variants := persistence.NewGormVariantRepository(tdb.DB)
	levels := persistence.NewGormInventoryLevelRepository(tdb.DB)
	customers := persistence.NewGormCustomerRepository(tdb.DB)
	orders := persistence.NewGormOrderRepository(tdb.DB)
	pending := persistence.NewGormPendingWebhookRepository(tdb.DB)

	p, err := catalog.NewProduct(tenantID, storeID, prefix+"-prod-1", "Widget")
	require.NoError(t, err)
	require.NoError(t, products.Insert(ctx, p))

	v, err := catalog.NewVariant(tenantID, storeID, p.ID, prefix+"-var-1", p.PlatformID)
	require.NoError(t, err)
	require.NoError(t, variants.Insert(ctx, v))

	lvl, err := catalog.NewInventoryLevel(tenantID, storeID, prefix+"-item-1", prefix+"-loc-1", 5)
	require.NoError(t, err)
	require.NoError(t, levels.Save(ctx, lvl))

	c, err := partner.NewCustomer(tenantID, storeID, prefix+"-cust-1")
	require.NoError(t, err)
	require.NoError(t, customers.Insert(ctx, c))

	o, err := trade.NewOrder(tenantID, storeID, prefix+"-order-1")
	require.NoError(t, err)
	require.NoError(t, orders.Insert(ctx, o))

	pw := ingest.NewPendingWebhook(tenantID, storeID, prefix+"-evt-1", "orders/create",
		prefix+".myshopify.com", []byte(`{}`), 5, time.Minute)
	require.NoError(t, pending.Save(ctx, pw))
}

func TestStorePurger(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewSharedTestDB(t)
	purger := persistence.NewStorePurger(tdb.DB)
	ctx := context.Background()

	t.Run("deletes all rows of one store and leaves others untouched", func(t *testing.T) {
		tdb.CleanTables()

		doomedTenant, doomedStore := uuid.New(), uuid.New()
		otherTenant, otherStore := uuid.New(), uuid.New()
		seedStoreData(t, tdb, doomedTenant, doomedStore, "doomed")
		seedStoreData(t, tdb, otherTenant, otherStore, "other")

		for _, table := range ingest.PurgeTables() {
			for {
				deleted, err := purger.DeletePage(ctx, table, doomedStore, 2)
				require.NoError(t, err)
				if deleted == 0 {
					break
				}
			}
		}

		for _, table := range ingest.PurgeTables() {
			count, err := purger.Count(ctx, table, doomedStore)
			require.NoError(t, err)
			assert.Zero(t, count, "table %s should be empty for the purged store", table)
		}

		// The second store's data survives
		products := persistence.NewGormProductRepository(tdb.DB)
		_, err := products.FindByPlatformID(ctx, otherStore, "other-prod-1")
		assert.NoError(t, err)

		count, err := purger.Count(ctx, ingest.PurgeOrders, otherStore)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
	})

	t.Run("delete pages honor the batch limit", func(t *testing.T) {
		tdb.CleanTables()

		tenantID, storeID := uuid.New(), uuid.New()
		levels := persistence.NewGormInventoryLevelRepository(tdb.DB)
		for i := 0; i < 5; i++ {
			lvl, err := catalog.NewInventoryLevel(tenantID, storeID, "item-1", uuid.NewString(), i)
			require.NoError(t, err)
			require.NoError(t, levels.Save(ctx, lvl))
		}

		deleted, err := purger.DeletePage(ctx, ingest.PurgeInventoryLevels, storeID, 2)
		require.NoError(t, err)
		assert.EqualValues(t, 2, deleted)

		remaining, err := purger.Count(ctx, ingest.PurgeInventoryLevels, storeID)
		require.NoError(t, err)
		assert.EqualValues(t, 3, remaining)
	})

	t.Run("rejects tables outside the purge list", func(t *testing.T) {
		_, err := purger.DeletePage(ctx, ingest.PurgeTable("stores"), uuid.New(), 10)
		assert.ErrorIs(t, err, ingest.ErrUnknownPurgeTable)
	})
}
