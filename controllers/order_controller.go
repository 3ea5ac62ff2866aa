package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/campuscarry/campuscarry-api/models"
	"github.com/campuscarry/campuscarry-api/services"
	"github.com/gin-gonic/gin"
)

// CreateOrderRequest represents the request body for creating an order
type CreateOrderRequest struct {
	Title               string     `json:"title" binding:"required"`
	Description         string     `json:"description" binding:"required"`
	PickupLocation      string     `json:"pickup_location" binding:"required"`
	DeliveryLocation    string     `json:"delivery_location" binding:"required"`
	Budget              float64    `json:"budget" binding:"required,gt=0"`
	Deadline            *time.Time `json:"deadline"`
	SpecialInstructions *string    `json:"special_instructions"`
}

// UpdateOrderRequest represents a partial edit; omitted fields are left unchanged
type UpdateOrderRequest struct {
	Title               *string             `json:"title"`
	Description         *string             `json:"description"`
	PickupLocation      *string             `json:"pickup_location"`
	DeliveryLocation    *string             `json:"delivery_location"`
	Budget              *float64            `json:"budget" binding:"omitempty,gt=0"`
	Deadline            *time.Time          `json:"deadline"`
	SpecialInstructions *string             `json:"special_instructions"`
	Status              *models.OrderStatus `json:"status" binding:"omitempty,order_status"`
}

type OrderController struct {
	orders *services.OrderService
	users  *services.UserService
}

func NewOrderController(orders *services.OrderService, users *services.UserService) *OrderController {
	return &OrderController{orders: orders, users: users}
}

// queryValues reads a repeatable, comma separated query parameter
func queryValues(c *gin.Context, key string) []string {
	var values []string
	for _, raw := range c.QueryArray(key) {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, strings.ToUpper(v))
			}
		}
	}
	return values
}

// CreateOrder handles POST /api/v1/orders
func (h *OrderController) CreateOrder(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	order, err := h.orders.Create(c.Request.Context(), user.ID, services.CreateOrderInput{
		Title:               req.Title,
		Description:         req.Description,
		PickupLocation:      req.PickupLocation,
		DeliveryLocation:    req.DeliveryLocation,
		Budget:              req.Budget,
		Deadline:            req.Deadline,
		SpecialInstructions: req.SpecialInstructions,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// ListOrders handles GET /api/v1/orders?status=&campus=
func (h *OrderController) ListOrders(c *gin.Context) {
	filter := services.OrderFilter{Campus: c.Query("campus")}
	for _, raw := range queryValues(c, "status") {
		status := models.OrderStatus(raw)
		if !status.Valid() {
			abortWithError(c, services.CodeInvalidInput, "Invalid status filter: "+raw)
			return
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	orders, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// ListMyOrders handles GET /api/v1/orders/mine
func (h *OrderController) ListMyOrders(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}

	orders, err := h.orders.ListByCreator(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrder handles GET /api/v1/orders/:id
func (h *OrderController) GetOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateOrder handles PUT /api/v1/orders/:id
func (h *OrderController) UpdateOrder(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	order, err := h.orders.Update(c.Request.Context(), id, user.ID, services.UpdateOrderInput{
		Title:               req.Title,
		Description:         req.Description,
		PickupLocation:      req.PickupLocation,
		DeliveryLocation:    req.DeliveryLocation,
		Budget:              req.Budget,
		Deadline:            req.Deadline,
		SpecialInstructions: req.SpecialInstructions,
		Status:              req.Status,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// DeleteOrder handles DELETE /api/v1/orders/:id
func (h *OrderController) DeleteOrder(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.orders.Delete(c.Request.Context(), id, user.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
