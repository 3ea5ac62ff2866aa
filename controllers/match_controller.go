package controllers

import (
	"net/http"

	"github.com/campuscarry/campuscarry-api/models"
	"github.com/campuscarry/campuscarry-api/services"
	"github.com/gin-gonic/gin"
)

// CreateMatchRequest represents the request body for pairing an order with an offer
type CreateMatchRequest struct {
	OrderID uint `json:"order_id" binding:"required"`
	OfferID uint `json:"offer_id" binding:"required"`
}

// UpdateMatchStatusRequest carries the raw target status. The value is validated by the
// lifecycle engine after the caller is known to be a party.
type UpdateMatchStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type MatchController struct {
	matches *services.MatchService
	users   *services.UserService
}

func NewMatchController(matches *services.MatchService, users *services.UserService) *MatchController {
	return &MatchController{matches: matches, users: users}
}

// CreateMatch handles POST /api/v1/matches
func (h *MatchController) CreateMatch(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}

	var req CreateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	match, err := h.matches.CreateMatch(c.Request.Context(), req.OrderID, req.OfferID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, match)
}

// GetMyMatches handles GET /api/v1/matches
func (h *MatchController) GetMyMatches(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}

	matches, err := h.matches.GetMatchesForUser(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, matches)
}

// GetMatch handles GET /api/v1/matches/:id
func (h *MatchController) GetMatch(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	match, err := h.matches.GetMatch(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, match)
}

// GetMatchesForOrder handles GET /api/v1/matches/order/:orderId
func (h *MatchController) GetMatchesForOrder(c *gin.Context) {
	id, ok := pathID(c, "orderId")
	if !ok {
		return
	}

	matches, err := h.matches.GetMatchesForOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, matches)
}

// GetMatchesForOffer handles GET /api/v1/matches/offer/:offerId
func (h *MatchController) GetMatchesForOffer(c *gin.Context) {
	id, ok := pathID(c, "offerId")
	if !ok {
		return
	}

	matches, err := h.matches.GetMatchesForOffer(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, matches)
}

// UpdateMatchStatus handles PUT /api/v1/matches/:id/status
func (h *MatchController) UpdateMatchStatus(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateMatchStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	match, err := h.matches.UpdateMatchStatus(c.Request.Context(), id, models.MatchStatus(req.Status), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, match)
}
