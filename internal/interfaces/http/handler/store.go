package handler

import (
	"time"

	storeapp "github.com/storesync/backend/internal/application/store"
	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/store"
	"github.com/storesync/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SyncQueue accepts stores whose catalog should be fetched from scratch
type SyncQueue interface {
	EnqueueInitialSync(storeID uuid.UUID) error
}

// StoreHandler handles store connection lifecycle endpoints
type StoreHandler struct {
	BaseHandler
	service *storeapp.Service
	syncs   SyncQueue
}

// NewStoreHandler creates a new StoreHandler
func NewStoreHandler(service *storeapp.Service, syncs SyncQueue) *StoreHandler {
	return &StoreHandler{
		service: service,
		syncs:   syncs,
	}
}

// ConnectStoreRequest represents the store connection request
// @name HandlerConnectStoreRequest
type ConnectStoreRequest struct {
	ShopDomain  string `json:"shop_domain" binding:"required" example:"acme.myshopify.com"`
	AccessToken string `json:"access_token" binding:"required" example:"shpat_xxxxxxxxxxxx"`
}

// StoreResponse represents a connected store in responses. The access token
// is never echoed back.
// @name HandlerStoreResponse
type StoreResponse struct {
	ID                   uuid.UUID  `json:"id"`
	TenantID             uuid.UUID  `json:"tenant_id"`
	ShopDomain           string     `json:"shop_domain"`
	Active               bool       `json:"active"`
	InitialSyncCompleted bool       `json:"initial_sync_completed"`
	LastSyncedAt         *time.Time `json:"last_synced_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

// Connect godoc
// @ID           connectStore
// @Summary      Connect a store
// @Description  Install a shop for the tenant and queue the initial catalog sync
// @Tags         stores
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID  header    string               true  "Tenant ID"
// @Param        request      body      ConnectStoreRequest  true  "Connection parameters"
// @Success      201          {object}  APIResponse[StoreResponse]
// @Failure      400          {object}  ErrorResponse
// @Failure      409          {object}  ErrorResponse  "Shop claimed by another tenant or tenant already connected"
// @Router       /stores [post]
func (h *StoreHandler) Connect(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "X-Tenant-ID header is missing or malformed")
		return
	}

	var req ConnectStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	st, err := h.service.Connect(c.Request.Context(), tenantID, req.ShopDomain, req.AccessToken)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if !st.InitialSyncCompleted {
		if err := h.syncs.EnqueueInitialSync(st.ID); err != nil {
			// connection stands; the sync can be re-triggered manually
			h.Created(c, toStoreResponse(st))
			return
		}
	}

	h.Created(c, toStoreResponse(st))
}

// Disconnect godoc
// @ID           disconnectStore
// @Summary      Disconnect a store
// @Description  Deactivate the store connection and queue its mirrored data for purging
// @Tags         stores
// @Produce      json
// @Param        id  path  string  true  "Store ID"
// @Success      204
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /stores/{id} [delete]
func (h *StoreHandler) Disconnect(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}
	storeID, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	if err := h.service.Disconnect(c.Request.Context(), storeID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// GetSyncStatus godoc
// @ID           getStoreSyncStatus
// @Summary      Get store sync status
// @Description  Returns the store flags plus its most recent sync session
// @Tags         stores
// @Produce      json
// @Param        id  path      string  true  "Store ID"
// @Success      200  {object}  APIResponse[storeapp.SyncStatus]
// @Failure      404  {object}  ErrorResponse
// @Router       /stores/{id}/sync-status [get]
func (h *StoreHandler) GetSyncStatus(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}
	storeID, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	status, err := h.service.GetSyncStatus(c.Request.Context(), storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, status)
}

// TriggerSync godoc
// @ID           triggerStoreSync
// @Summary      Trigger a full sync
// @Description  Queue a fresh catalog fetch for the store
// @Tags         stores
// @Produce      json
// @Param        id  path  string  true  "Store ID"
// @Success      202  {object}  APIResponse[SyncTriggeredResponse]
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      422  {object}  ErrorResponse  "Store is not active"
// @Router       /stores/{id}/sync [post]
func (h *StoreHandler) TriggerSync(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}
	storeID, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	status, err := h.service.GetSyncStatus(c.Request.Context(), storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !status.Active {
		h.UnprocessableEntity(c, dto.ErrCodeStoreInactive, "Store connection is no longer active")
		return
	}

	if err := h.syncs.EnqueueInitialSync(storeID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Accepted(c, SyncTriggeredResponse{StoreID: storeID, Queued: true})
}

// ListSyncSessions godoc
// @ID           listStoreSyncSessions
// @Summary      List sync sessions
// @Description  Returns the store's sync run history, newest first
// @Tags         stores
// @Produce      json
// @Param        id         path      string  true   "Store ID"
// @Param        page       query     int     false  "Page number"
// @Param        page_size  query     int     false  "Page size"
// @Success      200  {object}  APIResponse[[]store.SyncSession]
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /stores/{id}/sync-sessions [get]
func (h *StoreHandler) ListSyncSessions(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}
	storeID, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	query := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	sessions, err := h.service.ListSyncSessions(c.Request.Context(), storeID, shared.Filter{
		Page:     query.Page,
		PageSize: query.PageSize,
		OrderBy:  query.OrderBy,
		OrderDir: query.OrderDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sessions)
}

// SyncTriggeredResponse acknowledges a queued sync
// @name HandlerSyncTriggeredResponse
type SyncTriggeredResponse struct {
	StoreID uuid.UUID `json:"store_id"`
	Queued  bool      `json:"queued"`
}

func toStoreResponse(st *store.Store) StoreResponse {
	return StoreResponse{
		ID:                   st.ID,
		TenantID:             st.TenantID,
		ShopDomain:           st.ShopDomain,
		Active:               st.Active,
		InitialSyncCompleted: st.InitialSyncCompleted,
		LastSyncedAt:         st.LastSyncedAt,
		CreatedAt:            st.CreatedAt,
	}
}
