package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"procurement_tracker/internal/models"
	"procurement_tracker/internal/services"
	"procurement_tracker/internal/state"
)

type APIHandler struct {
	stateStore  *state.Store
	mutations   services.MutationService
	syncService services.SyncService
	userService services.UserService
}

func NewAPIHandler(
	stateStore *state.Store,
	mutations services.MutationService,
	syncService services.SyncService,
	userService services.UserService,
) *APIHandler {
	return &APIHandler{
		stateStore:  stateStore,
		mutations:   mutations,
		syncService: syncService,
		userService: userService,
	}
}

// respondError is the one layer that converts service failures into
// user-visible responses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrItemNotFound),
		errors.Is(err, services.ErrStoreNotFound),
		errors.Is(err, services.ErrSupplierNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrOrderPending):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrSameOrder),
		errors.Is(err, services.ErrStatusMismatch),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrInvalidStatus):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrSyncInFlight):
		c.JSON(http.StatusAccepted, gin.H{"status": string(services.SyncRunning)})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func orderIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return 0, false
	}
	return uint(id), true
}

// GetState returns the full local tree. 503 until hydration completes.
func (h *APIHandler) GetState(c *gin.Context) {
	if !h.stateStore.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "state not hydrated yet"})
		return
	}
	c.JSON(http.StatusOK, h.stateStore.State())
}

func (h *APIHandler) CreateOrder(c *gin.Context) {
	var req struct {
		StoreID       uint               `json:"store_id"`
		SupplierID    uint               `json:"supplier_id"`
		PaymentMethod string             `json:"payment_method"`
		Items         []models.OrderItem `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	order, err := h.mutations.CreateOrder(c.Request.Context(), req.StoreID, req.SupplierID, req.Items, req.PaymentMethod)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *APIHandler) DeleteOrder(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}
	if err := h.mutations.DeleteOrder(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *APIHandler) SetStatus(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}
	var req struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if err := h.mutations.SetStatus(c.Request.Context(), id, req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(req.Status)})
}

func (h *APIHandler) MoveItem(c *gin.Context) {
	var req struct {
		services.MoveItemCommand
		Username string `json:"username"`
		PIN      string `json:"pin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	// Manager mode must be proven, not just claimed.
	if req.ManagerMode {
		ok, err := h.userService.VerifyManagerPIN(req.Username, req.PIN)
		if err != nil || !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "manager verification failed"})
			return
		}
	}

	if err := h.mutations.MoveItem(c.Request.Context(), req.MoveItemCommand); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "moved"})
}

func (h *APIHandler) MergeOrders(c *gin.Context) {
	var req struct {
		SourceID uint `json:"source_id"`
		DestID   uint `json:"dest_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if err := h.mutations.MergeOrders(c.Request.Context(), req.SourceID, req.DestID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "merged"})
}

func (h *APIHandler) SpoilItem(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}
	var req struct {
		ItemID   uint    `json:"item_id"`
		Quantity float64 `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if err := h.mutations.SpoilItem(c.Request.Context(), id, req.ItemID, req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "spoiled"})
}

func (h *APIHandler) UnspoilItem(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}
	var req struct {
		ItemID   uint    `json:"item_id"`
		Quantity float64 `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if err := h.mutations.UnspoilItem(c.Request.Context(), id, req.ItemID, req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "unspoiled"})
}

func (h *APIHandler) AcknowledgeOrder(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}
	if err := h.mutations.AcknowledgeOrder(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "acknowledged"})
}

func (h *APIHandler) SetInvoiceAmount(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}
	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if err := h.mutations.SetInvoiceAmount(c.Request.Context(), id, req.Amount); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *APIHandler) UpsertOrderItem(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}
	var line models.OrderItem
	if err := c.ShouldBindJSON(&line); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if err := h.mutations.UpsertOrderItem(c.Request.Context(), id, line); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *APIHandler) RemoveOrderItem(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}
	var req struct {
		ItemID    uint `json:"item_id"`
		IsSpoiled bool `json:"is_spoiled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if err := h.mutations.RemoveOrderItem(c.Request.Context(), id, req.ItemID, req.IsSpoiled); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

func (h *APIHandler) StartDrag(c *gin.Context) {
	var ref models.DraggedItem
	if err := c.ShouldBindJSON(&ref); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if err := h.mutations.StartDrag(c.Request.Context(), ref); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "dragging"})
}

func (h *APIHandler) EndDrag(c *gin.Context) {
	if err := h.mutations.EndDrag(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

func (h *APIHandler) TriggerSync(c *gin.Context) {
	if err := h.syncService.Sync(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(h.syncService.Status())})
}

func (h *APIHandler) SyncStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": string(h.syncService.Status())})
}

func (h *APIHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.stateStore.State().Settings)
}

func (h *APIHandler) UpdateSettings(c *gin.Context) {
	var settings models.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if _, err := h.stateStore.Dispatch(c.Request.Context(), state.UpdateSettings{Settings: settings}); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
