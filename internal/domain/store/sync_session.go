package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/storesync/backend/internal/domain/shared"
)

// StageStatus represents the status of one bulk-sync stage
type StageStatus string

const (
	StagePending    StageStatus = "pending"
	StageProcessing StageStatus = "processing"
	StageCompleted  StageStatus = "completed"
	StageFailed     StageStatus = "failed"
)

// Stage identifies one resource stage of a bulk sync run
type Stage string

const (
	StageProducts  Stage = "products"
	StageInventory Stage = "inventory"
	StageCustomers Stage = "customers"
	StageOrders    Stage = "orders"
)

// Stages lists the bulk-sync stages in execution order
func Stages() []Stage {
	return []Stage{StageProducts, StageInventory, StageCustomers, StageOrders}
}

// SyncSession tracks one bulk synchronization run for a store.
// The cursor and page counters are persisted after every flushed batch so a
// crashed run can be diagnosed; resumption is a caller policy, not automatic.
type SyncSession struct {
	shared.TenantAggregateRoot
	StoreID uuid.UUID `gorm:"type:uuid;not null;index"`

	ProductsStatus  StageStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	InventoryStatus StageStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	CustomersStatus StageStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	OrdersStatus    StageStatus `gorm:"type:varchar(20);not null;default:'pending'"`

	CurrentStage Stage  `gorm:"type:varchar(20)"`
	Cursor       string `gorm:"type:varchar(512)"` // last flushed pagination cursor
	PageSize     int    `gorm:"not null;default:0"`
	PagesFetched int    `gorm:"not null;default:0"`

	ProductsSynced  int `gorm:"not null;default:0"`
	InventorySynced int `gorm:"not null;default:0"`
	CustomersSynced int `gorm:"not null;default:0"`
	OrdersSynced    int `gorm:"not null;default:0"`

	Error       string `gorm:"type:text"`
	StartedAt   time.Time
	CompletedAt *time.Time
}

// TableName returns the table name for GORM
func (SyncSession) TableName() string {
	return "sync_sessions"
}

// NewSyncSession creates a session for a bulk sync run
func NewSyncSession(tenantID, storeID uuid.UUID) *SyncSession {
	return &SyncSession{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		StoreID:             storeID,
		ProductsStatus:      StagePending,
		InventoryStatus:     StagePending,
		CustomersStatus:     StagePending,
		OrdersStatus:        StagePending,
		StartedAt:           time.Now(),
	}
}

// StageStatusFor returns the status of the given stage
func (s *SyncSession) StageStatusFor(stage Stage) StageStatus {
	switch stage {
	case StageProducts:
		return s.ProductsStatus
	case StageInventory:
		return s.InventoryStatus
	case StageCustomers:
		return s.CustomersStatus
	case StageOrders:
		return s.OrdersStatus
	}
	return StagePending
}

func (s *SyncSession) setStageStatus(stage Stage, status StageStatus) {
	switch stage {
	case StageProducts:
		s.ProductsStatus = status
	case StageInventory:
		s.InventoryStatus = status
	case StageCustomers:
		s.CustomersStatus = status
	case StageOrders:
		s.OrdersStatus = status
	}
	s.Touch()
}

// StartStage marks a stage as processing and resets the pagination state
func (s *SyncSession) StartStage(stage Stage, pageSize int) {
	s.CurrentStage = stage
	s.Cursor = ""
	s.PageSize = pageSize
	s.setStageStatus(stage, StageProcessing)
}

// RecordPage persists the pagination position after a flushed batch
func (s *SyncSession) RecordPage(cursor string, pageSize, records int) {
	s.Cursor = cursor
	s.PageSize = pageSize
	s.PagesFetched++
	switch s.CurrentStage {
	case StageProducts:
		s.ProductsSynced += records
	case StageInventory:
		s.InventorySynced += records
	case StageCustomers:
		s.CustomersSynced += records
	case StageOrders:
		s.OrdersSynced += records
	}
	s.Touch()
}

// CompleteStage marks a stage as completed
func (s *SyncSession) CompleteStage(stage Stage) {
	s.setStageStatus(stage, StageCompleted)
}

// FailStage marks a stage as failed and terminates the session.
// A session must never read as completed while an error was swallowed.
func (s *SyncSession) FailStage(stage Stage, reason string) {
	s.setStageStatus(stage, StageFailed)
	s.Error = reason
	now := time.Now()
	s.CompletedAt = &now
}

// Complete marks the whole run as finished
func (s *SyncSession) Complete() {
	now := time.Now()
	s.CompletedAt = &now
	s.Touch()
}

// Completed reports whether every stage finished successfully
func (s *SyncSession) Completed() bool {
	return s.ProductsStatus == StageCompleted &&
		s.InventoryStatus == StageCompleted &&
		s.CustomersStatus == StageCompleted &&
		s.OrdersStatus == StageCompleted
}

// Failed reports whether any stage failed
func (s *SyncSession) Failed() bool {
	return s.ProductsStatus == StageFailed ||
		s.InventoryStatus == StageFailed ||
		s.CustomersStatus == StageFailed ||
		s.OrdersStatus == StageFailed
}
