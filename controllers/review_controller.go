package controllers

import (
	"net/http"

	"github.com/campuscarry/campuscarry-api/services"
	"github.com/gin-gonic/gin"
)

// CreateReviewRequest represents the request body for reviewing the other party.
// Rating bounds are enforced by the service so a match that is not completed is reported first.
type CreateReviewRequest struct {
	MatchID    uint    `json:"match_id" binding:"required"`
	RevieweeID uint    `json:"reviewee_id"`
	Rating     int     `json:"rating"`
	Comment    *string `json:"comment"`
}

type ReviewController struct {
	reviews *services.ReviewService
	users   *services.UserService
}

func NewReviewController(reviews *services.ReviewService, users *services.UserService) *ReviewController {
	return &ReviewController{reviews: reviews, users: users}
}

// CreateReview handles POST /api/v1/reviews
func (h *ReviewController) CreateReview(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	review, err := h.reviews.CreateReview(c.Request.Context(), services.CreateReviewInput{
		MatchID:    req.MatchID,
		ReviewerID: user.ID,
		RevieweeID: req.RevieweeID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// GetReview handles GET /api/v1/reviews/:id
func (h *ReviewController) GetReview(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	review, err := h.reviews.GetReview(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// GetUserReviews handles GET /api/v1/reviews/user/:userId
func (h *ReviewController) GetUserReviews(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	reviews, err := h.reviews.GetReviewsForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}
