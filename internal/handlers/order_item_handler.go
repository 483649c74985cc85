package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"tailor_shop/internal/models"
	"tailor_shop/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type OrderItemHandler struct {
	service services.OrderItemService
}

func NewOrderItemHandler(service services.OrderItemService) *OrderItemHandler {
	return &OrderItemHandler{service: service}
}

type statusTransitionRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes" binding:"max=1000"`
}

type recordPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method" binding:"required,max=32"`
	Notes         string          `json:"notes" binding:"max=1000"`
}

type confirmPriceRequest struct {
	FinalPrice decimal.Decimal `json:"final_price"`
	Notes      string          `json:"notes" binding:"max=1000"`
}

type declinePriceRequest struct {
	Notes string `json:"notes" binding:"max=1000"`
}

// Register mounts the order item routes on an authenticated group.
func (h *OrderItemHandler) Register(rg *gin.RouterGroup) {
	items := rg.Group("/order-items/:id")
	items.GET("", h.GetOrderItem)
	items.POST("/status", h.RecordStatusTransition)
	items.GET("/transitions", h.GetAllowedTransitions)
	items.GET("/tracking", h.ListStatusHistory)
	items.POST("/payments", h.RecordPayment)
	items.GET("/payments", h.ListTransactions)
	items.GET("/payments/summary", h.GetPaymentSummary)
	items.POST("/confirm-price", h.ConfirmPrice)
	items.POST("/decline-price", h.DeclinePrice)
}

func (h *OrderItemHandler) GetOrderItem(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	view, err := h.service.GetOrderItem(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *OrderItemHandler) RecordStatusTransition(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	var req statusTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.RecordStatusTransition(c.Request.Context(), services.StatusTransitionCommand{
		OrderItemID: id,
		Status:      status,
		Notes:       req.Notes,
		Actor:       actorFrom(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *OrderItemHandler) GetAllowedTransitions(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	allowed, err := h.service.GetAllowedTransitions(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, allowed)
}

func (h *OrderItemHandler) ListStatusHistory(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	events, err := h.service.ListStatusHistory(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_item_id": id, "tracking": events})
}

func (h *OrderItemHandler) RecordPayment(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.service.RecordPayment(c.Request.Context(), services.RecordPaymentCommand{
		OrderItemID:   id,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		Actor:         actorFrom(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *OrderItemHandler) ListTransactions(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	entries, err := h.service.ListTransactions(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_item_id": id, "transactions": entries})
}

func (h *OrderItemHandler) GetPaymentSummary(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	summary, err := h.service.GetPaymentSummary(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *OrderItemHandler) ConfirmPrice(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	var req confirmPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := h.service.ConfirmPrice(c.Request.Context(), services.ConfirmPriceCommand{
		OrderItemID: id,
		FinalPrice:  req.FinalPrice,
		Notes:       req.Notes,
		Actor:       actorFrom(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeclinePrice accepts an empty body; notes are optional.
func (h *OrderItemHandler) DeclinePrice(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	var req declinePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondBindError(c, err)
		return
	}

	result, err := h.service.DeclinePrice(c.Request.Context(), services.DeclinePriceCommand{
		OrderItemID: id,
		Notes:       req.Notes,
		Actor:       actorFrom(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func itemID(c *gin.Context) (uint, bool) {
	return uintParam(c, "id", "order item id")
}

func uintParam(c *gin.Context, name, label string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + label})
		return 0, false
	}
	return uint(id), true
}
