package controllers

import (
	"net/http"
	"time"

	"github.com/campuscarry/campuscarry-api/models"
	"github.com/campuscarry/campuscarry-api/services"
	"github.com/gin-gonic/gin"
)

type CreateOfferRequest struct {
	DepartureTime     time.Time `json:"departure_time" binding:"required"`
	ReturnTime        time.Time `json:"return_time" binding:"required"`
	DepartureLocation string    `json:"departure_location" binding:"required"`
	ReturnLocation    string    `json:"return_location" binding:"required"`
	MaxCapacity       int       `json:"max_capacity" binding:"omitempty,gt=0"`
	ServiceFee        *float64  `json:"service_fee" binding:"omitempty,gte=0"`
}

type UpdateOfferRequest struct {
	DepartureTime     *time.Time          `json:"departure_time"`
	ReturnTime        *time.Time          `json:"return_time"`
	DepartureLocation *string             `json:"departure_location"`
	ReturnLocation    *string             `json:"return_location"`
	MaxCapacity       *int                `json:"max_capacity" binding:"omitempty,gt=0"`
	ServiceFee        *float64            `json:"service_fee" binding:"omitempty,gte=0"`
	Status            *models.OfferStatus `json:"status" binding:"omitempty,offer_status"`
}

type OfferController struct {
	offers *services.OfferService
	users  *services.UserService
}

func NewOfferController(offers *services.OfferService, users *services.UserService) *OfferController {
	return &OfferController{offers: offers, users: users}
}

// CreateOffer handles POST /api/v1/offers
func (h *OfferController) CreateOffer(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}

	var req CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	offer, err := h.offers.Create(c.Request.Context(), user.ID, services.CreateOfferInput{
		DepartureTime:     req.DepartureTime,
		ReturnTime:        req.ReturnTime,
		DepartureLocation: req.DepartureLocation,
		ReturnLocation:    req.ReturnLocation,
		MaxCapacity:       req.MaxCapacity,
		ServiceFee:        req.ServiceFee,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, offer)
}

// ListOffers handles GET /api/v1/offers?status=&campus=
func (h *OfferController) ListOffers(c *gin.Context) {
	filter := services.OfferFilter{Campus: c.Query("campus")}
	for _, raw := range queryValues(c, "status") {
		status := models.OfferStatus(raw)
		if !status.Valid() {
			abortWithError(c, services.CodeInvalidInput, "Invalid status filter: "+raw)
			return
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	offers, err := h.offers.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, offers)
}

// ListMyOffers handles GET /api/v1/offers/mine
func (h *OfferController) ListMyOffers(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}

	offers, err := h.offers.ListByDeliverer(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, offers)
}

// GetOffer handles GET /api/v1/offers/:id
func (h *OfferController) GetOffer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	offer, err := h.offers.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, offer)
}

// UpdateOffer handles PUT /api/v1/offers/:id
func (h *OfferController) UpdateOffer(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	offer, err := h.offers.Update(c.Request.Context(), id, user.ID, services.UpdateOfferInput{
		DepartureTime:     req.DepartureTime,
		ReturnTime:        req.ReturnTime,
		DepartureLocation: req.DepartureLocation,
		ReturnLocation:    req.ReturnLocation,
		MaxCapacity:       req.MaxCapacity,
		ServiceFee:        req.ServiceFee,
		Status:            req.Status,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, offer)
}

// DeleteOffer handles DELETE /api/v1/offers/:id
func (h *OfferController) DeleteOffer(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.offers.Delete(c.Request.Context(), id, user.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
