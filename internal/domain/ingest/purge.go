package ingest

import (
	"time"

	"github.com/storesync/backend/internal/domain/shared"
)

// PurgeTable names one table covered by tenant offboarding. The list below is
// a deliberate, reviewed contract: the purge never discovers tables
// dynamically, because a silently omitted table would leak tenant data past
// "deletion". Order matters: children before parents, since the underlying
// store has no foreign-key cascade.
type PurgeTable string

const (
	PurgeLineItems       PurgeTable = "line_items"
	PurgeTransactions    PurgeTable = "transactions"
	PurgeRefunds         PurgeTable = "refunds"
	PurgeFulfillments    PurgeTable = "fulfillments"
	PurgeOrders          PurgeTable = "orders"
	PurgeInventoryLevels PurgeTable = "inventory_levels"
	PurgeVariants        PurgeTable = "variants"
	PurgeProducts        PurgeTable = "products"
	PurgeCustomers       PurgeTable = "customers"
	PurgePendingWebhooks PurgeTable = "pending_webhooks"
	PurgeRecomputeJobs   PurgeTable = "recompute_jobs"
	PurgeSyncSessions    PurgeTable = "sync_sessions"
)

// ErrUnknownPurgeTable is returned when a purge is requested for a table
// outside the fixed list
var ErrUnknownPurgeTable = shared.NewDomainError("UNKNOWN_PURGE_TABLE", "Table is not part of the offboarding purge list")

// PurgeStep is the continuation cursor of an offboarding purge. Each work-queue
// run deletes at most one page and re-enqueues the next step, so no single run
// grows with tenant size and a crashed purge resumes from its last position
// instead of starting over.
type PurgeStep struct {
	// TableIndex is the position in PurgeTables(); len(PurgeTables()) means
	// every table has been swept and the step is in the verification phase.
	TableIndex int

	// RowsDeleted is the running total across all steps of this purge
	RowsDeleted int64

	// SweepAttempt counts verification sweeps that found residual rows
	SweepAttempt int

	// StartedAt is when the purge began, carried through for the final log
	StartedAt time.Time

	// ResumeAt, when set, is the earliest time the step may run; sweeps back
	// off between attempts to let in-flight webhooks settle
	ResumeAt time.Time
}

// Verifying reports whether the step has moved past the table list into the
// empty-table verification phase
func (s *PurgeStep) Verifying() bool {
	return s.TableIndex >= len(PurgeTables())
}

// PurgeTables returns the fixed purge list in deletion order
func PurgeTables() []PurgeTable {
	return []PurgeTable{
		PurgeLineItems,
		PurgeTransactions,
		PurgeRefunds,
		PurgeFulfillments,
		PurgeOrders,
		PurgeInventoryLevels,
		PurgeVariants,
		PurgeProducts,
		PurgeCustomers,
		PurgePendingWebhooks,
		PurgeRecomputeJobs,
		PurgeSyncSessions,
	}
}
