package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"tailor_shop/internal/models"
	"tailor_shop/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	service services.OrderService
}

func NewOrderHandler(service services.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

type createOrderRequest struct {
	// UserID defaults to the caller. Only admins may order on someone else's behalf.
	UserID        uint                     `json:"user_id"`
	CustomerName  string                   `json:"customer_name" binding:"required,max=100"`
	CustomerPhone string                   `json:"customer_phone" binding:"max=20"`
	Items         []createOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type createOrderItemRequest struct {
	ServiceType    string          `json:"service_type" binding:"required"`
	ServiceName    string          `json:"service_name" binding:"max=100"`
	EstimatedPrice decimal.Decimal `json:"estimated_price"`
	Details        json.RawMessage `json:"details"`
}

func (h *OrderHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/orders", h.CreateOrder)
	rg.GET("/orders/:id", h.GetOrder)
	rg.GET("/users/:id/orders", h.GetOrdersByUser)
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	actor := actorFrom(c)
	cmd := services.CreateOrderCommand{
		UserID:        req.UserID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Actor:         actor,
	}
	if cmd.UserID == 0 {
		cmd.UserID = actor.ID
	}
	for i, in := range req.Items {
		st, err := models.ParseServiceType(in.ServiceType)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("item %d: %v", i+1, err)})
			return
		}
		details, err := models.DecodeServiceDetails(st, in.Details)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("item %d: %v", i+1, err)})
			return
		}
		cmd.Items = append(cmd.Items, services.NewOrderItem{
			ServiceName:    in.ServiceName,
			EstimatedPrice: in.EstimatedPrice,
			Details:        details,
		})
	}

	order, err := h.service.CreateOrder(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := uintParam(c, "id", "order id")
	if !ok {
		return
	}
	order, err := h.service.GetOrder(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) GetOrdersByUser(c *gin.Context) {
	userID, ok := uintParam(c, "id", "user id")
	if !ok {
		return
	}
	orders, err := h.service.GetOrdersByUser(c.Request.Context(), userID, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "orders": orders})
}
