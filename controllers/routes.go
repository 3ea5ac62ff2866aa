package controllers

import (
	"github.com/campuscarry/campuscarry-api/middleware"
	"github.com/campuscarry/campuscarry-api/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Dependencies are the services the HTTP layer is built on
type Dependencies struct {
	DB       *gorm.DB
	Users    *services.UserService
	Orders   *services.OrderService
	Offers   *services.OfferService
	Matches  *services.MatchService
	Messages *services.MessageService
	Reviews  *services.ReviewService
	Auth0    *services.Auth0Service

	// RequiredScope is checked after auth on every protected route when non-empty
	RequiredScope string
}

// RegisterRoutes mounts the API under /api/v1. auth guards every route that acts on behalf of a user.
func RegisterRoutes(router *gin.Engine, auth gin.HandlerFunc, deps Dependencies) error {
	if err := RegisterValidators(); err != nil {
		return err
	}

	health := NewHealthController(deps.DB)
	users := NewUserController(deps.Users, deps.Auth0)
	orders := NewOrderController(deps.Orders, deps.Users)
	offers := NewOfferController(deps.Offers, deps.Users)
	matches := NewMatchController(deps.Matches, deps.Users)
	messages := NewMessageController(deps.Messages, deps.Users)
	reviews := NewReviewController(deps.Reviews, deps.Users)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", health.Health)
		v1.GET("/database/status", health.DatabaseStatus)

		v1.GET("/users/:id", users.GetUser)
		v1.GET("/orders", orders.ListOrders)
		v1.GET("/orders/:id", orders.GetOrder)
		v1.GET("/offers", offers.ListOffers)
		v1.GET("/offers/:id", offers.GetOffer)
		v1.GET("/matches/:id", matches.GetMatch)
		v1.GET("/matches/order/:orderId", matches.GetMatchesForOrder)
		v1.GET("/matches/offer/:offerId", matches.GetMatchesForOffer)
		v1.GET("/reviews/:id", reviews.GetReview)
		v1.GET("/reviews/user/:userId", reviews.GetUserReviews)
	}

	protected := v1.Group("")
	protected.Use(auth)
	if deps.RequiredScope != "" {
		protected.Use(middleware.RequireScope(deps.RequiredScope))
	}
	{
		protected.POST("/users", users.CreateUser)
		protected.GET("/users/me", users.GetMyProfile)
		protected.PUT("/users/me", users.UpdateMyProfile)

		protected.POST("/orders", orders.CreateOrder)
		protected.GET("/orders/mine", orders.ListMyOrders)
		protected.PUT("/orders/:id", orders.UpdateOrder)
		protected.DELETE("/orders/:id", orders.DeleteOrder)

		protected.POST("/offers", offers.CreateOffer)
		protected.GET("/offers/mine", offers.ListMyOffers)
		protected.PUT("/offers/:id", offers.UpdateOffer)
		protected.DELETE("/offers/:id", offers.DeleteOffer)

		protected.POST("/matches", matches.CreateMatch)
		protected.GET("/matches", matches.GetMyMatches)
		protected.PUT("/matches/:id/status", matches.UpdateMatchStatus)

		protected.POST("/messages", messages.SendMessage)
		protected.GET("/messages/match/:matchId", messages.GetMessages)

		protected.POST("/reviews", reviews.CreateReview)
	}
	return nil
}
